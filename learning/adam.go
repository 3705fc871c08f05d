package learning

import "math"

// Adam is the Adam optimizer with optional decoupled-style L2 weight
// decay folded into the gradient, matching the reference trainer's
// torch.optim.Adam(lr, betas, weight_decay) configuration.
type Adam struct {
	lr          float64
	beta1       float64
	beta2       float64
	weightDecay float64
	eps         float64

	step int
	m    [][]float64
	v    [][]float64
}

// NewAdam builds an Adam optimizer. Betas come straight from the
// beta_min/beta_max options.
func NewAdam(lr, beta1, beta2, weightDecay float64) *Adam {
	return &Adam{
		lr:          lr,
		beta1:       beta1,
		beta2:       beta2,
		weightDecay: weightDecay,
		eps:         1e-8,
	}
}

// ZeroGrad clears all gradients.
func (a *Adam) ZeroGrad(params []*Param) {
	zeroGrads(params)
}

// Step applies one Adam update. Moments are allocated lazily on the
// first call; the params slice must keep a stable order across steps.
func (a *Adam) Step(params []*Param) {
	if a.m == nil {
		a.m = make([][]float64, len(params))
		a.v = make([][]float64, len(params))
		for i, p := range params {
			a.m[i] = make([]float64, len(p.Value.RawMatrix().Data))
			a.v[i] = make([]float64, len(p.Value.RawMatrix().Data))
		}
	}
	a.step++
	c1 := 1 - math.Pow(a.beta1, float64(a.step))
	c2 := 1 - math.Pow(a.beta2, float64(a.step))

	for i, p := range params {
		value := p.Value.RawMatrix().Data
		grad := p.Grad.RawMatrix().Data
		m := a.m[i]
		v := a.v[i]
		for j := range value {
			g := grad[j]
			if a.weightDecay != 0 {
				g += a.weightDecay * value[j]
			}
			m[j] = a.beta1*m[j] + (1-a.beta1)*g
			v[j] = a.beta2*v[j] + (1-a.beta2)*g*g
			mhat := m[j] / c1
			vhat := v[j] / c2
			value[j] -= a.lr * mhat / (math.Sqrt(vhat) + a.eps)
		}
	}
}
