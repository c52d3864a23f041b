package util

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/dixieflatline76/getnative/config"
	"github.com/google/go-github/v63/github"
	"golang.org/x/mod/semver"
)

const (
	githubOwner = "dixieflatline76"
	githubRepo  = "getnative"
)

// CheckForUpdatesResult holds the outcome of the update check.
type CheckForUpdatesResult struct {
	UpdateAvailable bool
	CurrentVersion  string
	LatestVersion   string
	ReleaseURL      string
	ReleaseNotes    string
}

// CheckForUpdates polls GitHub for the latest stable release and compares it
// with config.AppVersion. A nil client uses http.DefaultClient.
func CheckForUpdates(ctx context.Context, httpClient *http.Client) (*CheckForUpdatesResult, error) {
	client := github.NewClient(httpClient)

	release, _, err := client.Repositories.GetLatestRelease(ctx, githubOwner, githubRepo)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest GitHub release: %w", err)
	}

	currentAppVersion := canonicalVersion(config.AppVersion)
	latestVersionTag := canonicalVersion(release.GetTagName())

	result := &CheckForUpdatesResult{
		CurrentVersion: currentAppVersion,
		LatestVersion:  latestVersionTag,
		ReleaseURL:     release.GetHTMLURL(),
		ReleaseNotes:   release.GetBody(),
	}

	if semver.Compare(latestVersionTag, currentAppVersion) > 0 {
		result.UpdateAvailable = true
	}

	return result, nil
}

func canonicalVersion(v string) string {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
