package prediction

import "math/rand/v2"

// DefaultNoiseAmplitude is the half-width of the perturbation added to each
// estimate when no amplitude is configured.
const DefaultNoiseAmplitude = 2500.0

// NoiseSource yields the random perturbation added to an estimate.
// Implementations must be safe for concurrent use.
type NoiseSource interface {
	Noise() float64
}

type uniformNoise struct {
	amplitude float64
	float     func() float64
}

// NewUniformNoise returns a source drawing uniformly from [-amplitude, +amplitude).
// A non-positive amplitude yields a zero source.
func NewUniformNoise(amplitude float64) NoiseSource {
	if amplitude <= 0 {
		return ZeroNoise{}
	}
	return &uniformNoise{amplitude: amplitude, float: rand.Float64}
}

func (n *uniformNoise) Noise() float64 {
	return (n.float()*2 - 1) * n.amplitude
}

// ZeroNoise makes the estimator deterministic.
type ZeroNoise struct{}

func (ZeroNoise) Noise() float64 { return 0 }

// FixedNoise always returns the same perturbation.
type FixedNoise float64

func (f FixedNoise) Noise() float64 { return float64(f) }
