package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dixieflatline76/getnative/pkg/native"
	"golang.org/x/time/rate"
)

// progress prints scan progress on a single terminal line, throttled.
type progress struct {
	mu     sync.Mutex
	w      io.Writer
	every  rate.Sometimes
	active bool
}

func newProgress(w io.Writer) *progress {
	return &progress{w: w, every: rate.Sometimes{Interval: 100 * time.Millisecond}}
}

// Update is the native.WithProgress callback.
func (p *progress) Update(s native.Progress) {
	if s.Done == s.Total {
		p.print(s)
		return
	}
	p.every.Do(func() { p.print(s) })
}

func (p *progress) print(s native.Progress) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active = true
	pct := 100 * float64(s.Done) / float64(s.Total)
	fmt.Fprintf(p.w, "\r%-13s pass %d frame %d: %3.0f%%", s.Phase, s.Pass+1, s.Frame+1, pct)
}

// Finish ends the progress line if one was printed.
func (p *progress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active {
		fmt.Fprintln(p.w)
		p.active = false
	}
}
