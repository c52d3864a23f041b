package native

import (
	"errors"

	"github.com/dixieflatline76/getnative/pkg/kernel"
)

var (
	// ErrConfiguration marks invalid run parameters. Runs fail with it before any scan.
	ErrConfiguration = errors.New("configuration error")

	// ErrUnsupportedKernel marks a kernel the oracle cannot run.
	ErrUnsupportedKernel = kernel.ErrUnsupported

	// ErrOracle marks a failed evaluation or frame load. The run is aborted.
	ErrOracle = errors.New("resampler failure")

	// ErrNoCandidates is returned when peak detection finds no resolution at all.
	ErrNoCandidates = errors.New("no candidate resolution found")
)
