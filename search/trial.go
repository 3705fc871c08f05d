package search

import "fmt"

// Trial is one parameter draw of a study. It carries the sampled values
// and relays intermediate objective reports back to the study's pruner.
// It satisfies the training loop's trial contract.
type Trial struct {
	id     int
	study  *Study
	params map[string]float64
	steps  []float64
}

// ID is the zero-based trial number within the study.
func (t *Trial) ID() int {
	return t.id
}

// Float returns the sampled value of a dimension. Asking for a name the
// space never declared is a programming error.
func (t *Trial) Float(name string) float64 {
	v, ok := t.params[name]
	if !ok {
		panic(fmt.Sprintf("search: dimension %q is not in the space", name))
	}
	return v
}

// Int truncates the sampled value, matching how integer dimensions are
// drawn from continuous intervals.
func (t *Trial) Int(name string) int {
	return int(t.Float(name))
}

// Params returns a copy of all sampled values.
func (t *Trial) Params() map[string]float64 {
	out := make(map[string]float64, len(t.params))
	for k, v := range t.params {
		out[k] = v
	}
	return out
}

// Report records the objective value observed at a step.
func (t *Trial) Report(value float64, step int) {
	for len(t.steps) <= step {
		t.steps = append(t.steps, 0)
	}
	t.steps[step] = value
}

// ShouldPrune consults the study's pruner with the value this trial
// reported at the step and the same-step values of finished trials.
func (t *Trial) ShouldPrune(step int) bool {
	if step >= len(t.steps) {
		return false
	}
	others, finished := t.study.stepValues(step)
	return t.study.pruner.Prune(step, t.steps[step], others, finished)
}
