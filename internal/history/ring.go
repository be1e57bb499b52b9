// Package history keeps a bounded in-memory trace of recent step results for
// the web chart and the /history.json endpoint.
package history

import (
	"sync"
	"time"

	"github.com/sweeney/levelsim/internal/sim"
)

// DefaultCapacity covers ~84 seconds at the default 200ms tick.
const DefaultCapacity = 420

// Sample is one recorded step.
type Sample struct {
	Time   time.Time      `json:"time"`
	Result sim.StepResult `json:"result"`
}

// Ring is a fixed-capacity ring of samples. Appends overwrite the oldest
// entry once the ring is full. Safe for concurrent use.
type Ring struct {
	mu      sync.RWMutex
	buf     []Sample
	start   int
	count   int
}

// NewRing creates a ring with the given capacity. Capacity values below 1
// fall back to DefaultCapacity.
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Ring{buf: make([]Sample, capacity)}
}

// Append records a sample, evicting the oldest if the ring is full.
func (r *Ring) Append(ts time.Time, res sim.StepResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.count < len(r.buf) {
		r.buf[(r.start+r.count)%len(r.buf)] = Sample{Time: ts, Result: res}
		r.count++
		return
	}
	r.buf[r.start] = Sample{Time: ts, Result: res}
	r.start = (r.start + 1) % len(r.buf)
}

// Last returns up to n of the most recent samples, oldest first.
// n < 1 returns all recorded samples.
func (r *Ring) Last(n int) []Sample {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if n < 1 || n > r.count {
		n = r.count
	}
	if n == 0 {
		return nil
	}

	out := make([]Sample, n)
	first := r.start + r.count - n
	for i := 0; i < n; i++ {
		out[i] = r.buf[(first+i)%len(r.buf)]
	}
	return out
}

// Len returns the number of recorded samples.
func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.count
}
