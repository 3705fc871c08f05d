package search

import "github.com/pkg/errors"
import "go.uber.org/zap"

import "github.com/neurlang/code2vec/trainer"

// Objective trains one configuration and returns its outcome. A pruned
// outcome is a normal result, not an error; errors abort the study.
type Objective func(t *Trial) (trainer.Result, error)

type record struct {
	id     int
	params map[string]float64
	steps  []float64
	value  float64
	status trainer.Status
}

// Study minimizes an objective over a search space by running sampled
// trials sequentially. Not safe for concurrent use.
type Study struct {
	space   *Space
	sampler Sampler
	pruner  Pruner
	logger  *zap.Logger

	trials []record
}

// NewStudy binds a space, a sampler and a pruning policy. A nil pruner
// means trials always run to their natural end; a nil logger is quiet.
func NewStudy(space *Space, sampler Sampler, pruner Pruner, logger *zap.Logger) (*Study, error) {
	if err := space.Validate(); err != nil {
		return nil, err
	}
	if sampler == nil {
		return nil, errors.New("nil sampler")
	}
	if pruner == nil {
		pruner = NeverPrune{}
	}
	return &Study{space: space, sampler: sampler, pruner: pruner, logger: logger}, nil
}

// Optimize runs n trials. Each trial gets a fresh parameter draw; its
// final objective and status are recorded whether it completed, early
// stopped or was pruned.
func (s *Study) Optimize(obj Objective, n int) error {
	if n <= 0 {
		return errors.Errorf("trial count must be positive, got %d", n)
	}
	for i := 0; i < n; i++ {
		t := s.newTrial(len(s.trials))
		if s.logger != nil {
			s.logger.Info("trial start",
				zap.Int("trial", t.id),
				zap.Any("params", t.params))
		}
		res, err := obj(t)
		if err != nil {
			return errors.Wrapf(err, "trial %d", t.id)
		}
		s.trials = append(s.trials, record{
			id:     t.id,
			params: t.params,
			steps:  t.steps,
			value:  res.Objective,
			status: res.Status,
		})
		if s.logger != nil {
			s.logger.Info("trial done",
				zap.Int("trial", t.id),
				zap.String("status", res.Status.String()),
				zap.Float64("objective", res.Objective),
				zap.Int("epochs", res.Epochs))
		}
	}
	return nil
}

func (s *Study) newTrial(id int) *Trial {
	params := make(map[string]float64, len(s.space.dims))
	for _, d := range s.space.Dimensions() {
		params[d.Name] = s.sampler.Sample(d)
	}
	return &Trial{id: id, study: s, params: params}
}

// stepValues collects the values finished (non-pruned) trials reported
// at a step, plus the finished-trial count for startup grace.
func (s *Study) stepValues(step int) (values []float64, finished int) {
	for _, r := range s.trials {
		if r.status == trainer.Pruned {
			continue
		}
		finished++
		if step < len(r.steps) {
			values = append(values, r.steps[step])
		}
	}
	return
}

// Best returns the parameters and objective of the best finished trial.
// Pruned trials never win. ok is false while no trial has finished.
func (s *Study) Best() (params map[string]float64, value float64, ok bool) {
	for _, r := range s.trials {
		if r.status == trainer.Pruned {
			continue
		}
		if !ok || r.value < value {
			params, value, ok = r.params, r.value, true
		}
	}
	return
}

// Trials reports how many trials have run, pruned ones included.
func (s *Study) Trials() int {
	return len(s.trials)
}
