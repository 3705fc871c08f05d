package learning

// SGD is momentum stochastic gradient descent with optional L2 weight
// decay, the alternative optimizer offered to the hyperparameter search.
type SGD struct {
	lr          float64
	momentum    float64
	weightDecay float64

	vel [][]float64
}

// NewSGD builds a momentum-SGD optimizer.
func NewSGD(lr, momentum, weightDecay float64) *SGD {
	return &SGD{lr: lr, momentum: momentum, weightDecay: weightDecay}
}

// ZeroGrad clears all gradients.
func (s *SGD) ZeroGrad(params []*Param) {
	zeroGrads(params)
}

// Step applies one momentum update.
func (s *SGD) Step(params []*Param) {
	if s.vel == nil {
		s.vel = make([][]float64, len(params))
		for i, p := range params {
			s.vel[i] = make([]float64, len(p.Value.RawMatrix().Data))
		}
	}
	for i, p := range params {
		value := p.Value.RawMatrix().Data
		grad := p.Grad.RawMatrix().Data
		vel := s.vel[i]
		for j := range value {
			g := grad[j]
			if s.weightDecay != 0 {
				g += s.weightDecay * value[j]
			}
			vel[j] = s.momentum*vel[j] + g
			value[j] -= s.lr * vel[j]
		}
	}
}
