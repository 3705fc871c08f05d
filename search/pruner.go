package search

import "sort"

import "gonum.org/v1/gonum/stat"

// Pruner decides whether a running trial should be abandoned at a step,
// judged against what finished trials reported at the same step. Lower
// values are better.
type Pruner interface {
	Prune(step int, value float64, others []float64, finished int) bool
}

// NeverPrune runs every trial to its natural end.
type NeverPrune struct{}

// Prune always declines.
func (NeverPrune) Prune(int, float64, []float64, int) bool { return false }

// MedianPruner abandons a trial whose intermediate value is worse than
// the median of the values finished trials reported at the same step.
type MedianPruner struct {
	// StartupTrials is the number of trials that must finish before any
	// pruning happens. Zero means the default of 5.
	StartupTrials int
	// WarmupSteps exempts the first steps of every trial.
	WarmupSteps int
}

// Prune applies the median rule. Steps no finished trial reached are
// never pruned.
func (p MedianPruner) Prune(step int, value float64, others []float64, finished int) bool {
	startup := p.StartupTrials
	if startup == 0 {
		startup = 5
	}
	if finished < startup || step < p.WarmupSteps || len(others) == 0 {
		return false
	}
	sorted := append([]float64(nil), others...)
	sort.Float64s(sorted)
	return value > stat.Quantile(0.5, stat.Empirical, sorted, nil)
}
