package trainer

// Trial is the borrowed handle of one hyperparameter-search trial. The
// loop only reports progress through it; it never owns the trial's
// lifecycle.
type Trial interface {
	// Report hands the pruning policy the objective value at an epoch.
	Report(value float64, step int)
	// ShouldPrune asks whether to abandon the run after this epoch.
	ShouldPrune(step int) bool
}

// Status tags how a run ended. Pruning and early stopping are control
// outcomes, not errors.
type Status int

const (
	// Completed means the loop exhausted its epoch budget.
	Completed Status = iota
	// EarlyStopped means the bad-epoch rule fired.
	EarlyStopped
	// Pruned means the attached trial's pruning signal fired.
	Pruned
)

func (s Status) String() string {
	switch s {
	case Completed:
		return "completed"
	case EarlyStopped:
		return "early_stopped"
	case Pruned:
		return "pruned"
	}
	return "unknown"
}

// Result is the outcome of one loop invocation. Objective is
// 1 - best dev F1 at loop exit, the quantity the search minimizes.
type Result struct {
	Status    Status
	Objective float64
	BestF1    float64
	Epochs    int
}
