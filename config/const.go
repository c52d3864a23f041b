package config

import "strings"

// AppVersion is the version of the tool, set at build time with -ldflags.
var AppVersion = "0.1.0"

// AppName is the name of the tool.
const AppName = "getnative"

// AppID is the reverse-DNS identifier used by the plot window.
const AppID = "com.github.dixieflatline76.getnative"

// LogWinSubDir is the sub directory for the log files on windows.
var LogWinSubDir = AppName

// LogSubDir is the sub directory for the log files.
var LogSubDir = "." + strings.ToLower(AppName)

// LogExt is the extension for the log files.
var LogExt = ".log"

// ResultsDirName is always appended to the configured output directory.
const ResultsDirName = "results"

// StepWarning is printed once when a non-default stepping is used.
const StepWarning = "Warning for --stepping: " +
	"If you are not completely sure what this parameter does, use the default step size."
