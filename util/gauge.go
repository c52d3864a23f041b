package util

import "sync/atomic"

// Gauge is a concurrency safe level counter that remembers its high-water mark.
type Gauge struct {
	value atomic.Int64
	peak  atomic.Int64
}

// NewGauge creates a new Gauge at zero.
func NewGauge() *Gauge {
	return &Gauge{}
}

// Inc raises the level by one and returns the new level.
func (g *Gauge) Inc() int {
	return g.Add(1)
}

// Dec lowers the level by one and returns the new level.
func (g *Gauge) Dec() int {
	return g.Add(-1)
}

// Add moves the level by delta and returns the new level.
func (g *Gauge) Add(delta int) int {
	v := g.value.Add(int64(delta))
	for {
		p := g.peak.Load()
		if v <= p || g.peak.CompareAndSwap(p, v) {
			break
		}
	}
	return int(v)
}

// Value returns the current level.
func (g *Gauge) Value() int {
	return int(g.value.Load())
}

// Peak returns the highest level seen since creation or the last Reset.
func (g *Gauge) Peak() int {
	return int(g.peak.Load())
}

// Reset sets both level and peak back to zero.
func (g *Gauge) Reset() {
	g.value.Store(0)
	g.peak.Store(0)
}
