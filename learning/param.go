// Package learning holds the trainable parameter type and the gradient
// optimizers of the code2vec trainer.
package learning

import "math"
import "math/rand"

import "gonum.org/v1/gonum/mat"

// Param is one named trainable matrix with its accumulated gradient.
// A parameter is exclusively owned by one model instance; optimizers
// mutate Value and Grad in place.
type Param struct {
	Name  string
	Value *mat.Dense
	Grad  *mat.Dense
}

// NewParam allocates a rows×cols parameter with uniform initialization
// in [-bound, bound], the usual embedding-style init bound.
func NewParam(name string, rows, cols int, rng *rand.Rand) *Param {
	bound := 1.0 / math.Sqrt(float64(cols))
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = (rng.Float64()*2 - 1) * bound
	}
	return &Param{
		Name:  name,
		Value: mat.NewDense(rows, cols, data),
		Grad:  mat.NewDense(rows, cols, nil),
	}
}

// ZeroGrad clears the accumulated gradient.
func (p *Param) ZeroGrad() {
	p.Grad.Zero()
}

// Optimizer updates parameters from their accumulated gradients.
type Optimizer interface {
	Step(params []*Param)
	ZeroGrad(params []*Param)
}

func zeroGrads(params []*Param) {
	for _, p := range params {
		p.ZeroGrad()
	}
}
