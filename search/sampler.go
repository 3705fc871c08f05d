package search

import "math"
import "math/rand"

// Sampler draws one value from a dimension's interval.
type Sampler interface {
	Sample(d Dimension) float64
}

// RandomSampler draws independently from each dimension with a private
// seeded generator, so a study with the same seed replays the same
// parameter sequence.
type RandomSampler struct {
	rng *rand.Rand
}

// NewRandomSampler seeds a fresh sampler.
func NewRandomSampler(seed int64) *RandomSampler {
	return &RandomSampler{rng: rand.New(rand.NewSource(seed))}
}

// Sample draws from [Low, High), log-uniformly for Log dimensions.
func (s *RandomSampler) Sample(d Dimension) float64 {
	u := s.rng.Float64()
	if d.Scale == Log {
		lo := math.Log(d.Low)
		hi := math.Log(d.High)
		return math.Exp(lo + u*(hi-lo))
	}
	return d.Low + u*(d.High-d.Low)
}
