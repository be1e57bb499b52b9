package sim

import "math/rand"

// Noise is a source of bounded uniform measurement noise. It is injected
// rather than read from ambient global randomness so runs are reproducible
// under a fixed seed.
type Noise interface {
	// Uniform returns a sample in [-amp, +amp].
	Uniform(amp float64) float64
}

// SeededNoise is a deterministic pseudo-random Noise. Not safe for concurrent
// use; each Tank owns its own.
type SeededNoise struct {
	r *rand.Rand
}

// NewSeededNoise creates a Noise source producing the same sequence for the
// same seed.
func NewSeededNoise(seed int64) *SeededNoise {
	return &SeededNoise{r: rand.New(rand.NewSource(seed))}
}

// Uniform returns a sample in [-amp, +amp].
func (n *SeededNoise) Uniform(amp float64) float64 {
	if amp <= 0 {
		return 0
	}
	return (n.r.Float64()*2 - 1) * amp
}

// NoNoise is a Noise source that always returns zero. Used in tests and for
// noise-free runs.
type NoNoise struct{}

// Uniform returns 0 regardless of amplitude.
func (NoNoise) Uniform(float64) float64 {
	return 0
}
