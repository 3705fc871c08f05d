package search

import "github.com/pkg/errors"

// Scale selects how a dimension's interval is sampled.
type Scale int

const (
	// Uniform samples the interval linearly.
	Uniform Scale = iota
	// Log samples uniformly in log space, favoring smaller magnitudes.
	Log
)

// Dimension is one named hyperparameter interval. Integer dimensions are
// sampled as floats and truncated on suggestion.
type Dimension struct {
	Name    string
	Low     float64
	High    float64
	Scale   Scale
	Integer bool
}

// Space is an ordered set of dimensions. Order is the suggestion order,
// so a seeded sampler reproduces the same draw sequence.
type Space struct {
	dims []Dimension
}

// NewSpace returns an empty search space.
func NewSpace() *Space {
	return &Space{}
}

// Float adds a float dimension. The receiver is returned for chaining.
func (s *Space) Float(name string, low, high float64, scale Scale) *Space {
	s.dims = append(s.dims, Dimension{Name: name, Low: low, High: high, Scale: scale})
	return s
}

// Int adds an integer dimension.
func (s *Space) Int(name string, low, high int, scale Scale) *Space {
	s.dims = append(s.dims, Dimension{
		Name:    name,
		Low:     float64(low),
		High:    float64(high),
		Scale:   scale,
		Integer: true,
	})
	return s
}

// Dimensions returns the dimension list in suggestion order.
func (s *Space) Dimensions() []Dimension {
	return s.dims
}

// Validate rejects empty, inverted or log-scaled nonpositive intervals
// and duplicate names.
func (s *Space) Validate() error {
	if len(s.dims) == 0 {
		return errors.New("empty search space")
	}
	seen := map[string]bool{}
	for _, d := range s.dims {
		if d.Name == "" {
			return errors.New("unnamed dimension")
		}
		if seen[d.Name] {
			return errors.Errorf("duplicate dimension %q", d.Name)
		}
		seen[d.Name] = true
		if !(d.Low < d.High) {
			return errors.Errorf("dimension %q: low %v must be below high %v", d.Name, d.Low, d.High)
		}
		if d.Scale == Log && d.Low <= 0 {
			return errors.Errorf("dimension %q: log scale needs a positive low, got %v", d.Name, d.Low)
		}
	}
	return nil
}
