package util

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGauge(t *testing.T) {
	t.Run("Basic Operations", func(t *testing.T) {
		g := NewGauge()
		assert.Equal(t, 1, g.Inc())
		assert.Equal(t, 2, g.Inc())
		assert.Equal(t, 1, g.Dec())
		assert.Equal(t, 4, g.Add(3))
		assert.Equal(t, 0, g.Add(-4))
		assert.Equal(t, 0, g.Value())
		assert.Equal(t, 4, g.Peak())

		g.Reset()
		assert.Equal(t, 0, g.Value())
		assert.Equal(t, 0, g.Peak())
	})

	t.Run("Concurrency", func(t *testing.T) {
		g := NewGauge()
		var wg sync.WaitGroup
		iterations := 1000

		wg.Add(iterations)
		for i := 0; i < iterations; i++ {
			go func() {
				defer wg.Done()
				g.Inc()
				g.Dec()
			}()
		}
		wg.Wait()

		assert.Equal(t, 0, g.Value())
		assert.GreaterOrEqual(t, g.Peak(), 1)
		assert.LessOrEqual(t, g.Peak(), iterations)
	})
}
