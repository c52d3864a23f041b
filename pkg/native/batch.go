package native

import (
	"context"
	"errors"
	"fmt"

	"github.com/dixieflatline76/getnative/pkg/kernel"
	"github.com/dixieflatline76/getnative/pkg/source"
	"github.com/dixieflatline76/getnative/util/log"
)

// Outcome is the per-kernel entry of a batch.
type Outcome struct {
	Kernel  kernel.Kernel
	Result  *Result // nil when skipped or failed
	Skipped bool    // kernel not supported by the oracle
	Err     error
}

// Batch is the outcome of running several kernels over the same source.
type Batch struct {
	Outcomes []Outcome
	Best     *Result // lowest error among results that are not overstretched
}

// Converged reports whether any kernel produced a usable estimate.
func (b *Batch) Converged() bool {
	return b.Best != nil
}

// Summary is the closing line printed after a batch.
func (b *Batch) Summary() string {
	if !b.Converged() {
		return "The estimation does not converge. Your input clip might be over-stretched."
	}
	msg := fmt.Sprintf("Native scaling best guess: %s %d x %d", b.Best.Kernel, b.Best.Width, b.Best.Height)
	if b.Best.NearUpperBound {
		msg += "\nWARNING: the resolution above is close to the upper bound, suggesting that the input clip's resolution might already be its native resolution."
	}
	return msg
}

// RunBatch runs every kernel in order with the same options. Unsupported
// kernels are skipped with a warning and runs that find no candidate are
// recorded without aborting the batch; any other error is fatal. onResult,
// when set, is called with each finished result before the next kernel runs.
func (s *Searcher) RunBatch(ctx context.Context, src source.Source, opts Options, kernels []kernel.Kernel, onResult func(*Result) error) (*Batch, error) {
	if len(kernels) == 0 {
		return nil, fmt.Errorf("%w: no kernels to run", ErrConfiguration)
	}

	b := &Batch{}
	for _, k := range kernels {
		o := opts
		o.Kernel = k

		res, err := s.Run(ctx, src, o)
		switch {
		case errors.Is(err, ErrUnsupportedKernel):
			log.Printf("Warning: no descale support for %s (%v), continuing with next kernel when available.", k, err)
			b.Outcomes = append(b.Outcomes, Outcome{Kernel: k, Skipped: true, Err: err})
			continue
		case errors.Is(err, ErrNoCandidates):
			log.Printf("%s: %v", k, err)
			b.Outcomes = append(b.Outcomes, Outcome{Kernel: k, Err: err})
			continue
		case err != nil:
			return nil, fmt.Errorf("%s: %w", k, err)
		}

		if onResult != nil {
			if err := onResult(res); err != nil {
				return nil, err
			}
		}
		b.Outcomes = append(b.Outcomes, Outcome{Kernel: k, Result: res})
		if res.Overstretched {
			log.Debugf("%s: %dx%d is overstretched, excluded from best guess", k, res.Width, res.Height)
			continue
		}
		if b.Best == nil || res.Error < b.Best.Error {
			b.Best = res
		}
	}
	return b, nil
}
