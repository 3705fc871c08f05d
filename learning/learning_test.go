package learning

import "math/rand"
import "testing"

import "github.com/stretchr/testify/assert"
import "github.com/stretchr/testify/require"
import "gonum.org/v1/gonum/mat"

func TestNewParamBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	p := NewParam("w", 8, 16, rng)
	r, c := p.Value.Dims()
	assert.Equal(t, 8, r)
	assert.Equal(t, 16, c)
	bound := 0.25 // 1/sqrt(16)
	for _, v := range p.Value.RawMatrix().Data {
		assert.LessOrEqual(t, v, bound)
		assert.GreaterOrEqual(t, v, -bound)
	}
	assert.True(t, mat.Equal(p.Grad, mat.NewDense(8, 16, nil)))
}

func TestZeroGrad(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	p := NewParam("w", 2, 2, rng)
	p.Grad.Set(0, 0, 3)
	p.ZeroGrad()
	assert.Equal(t, 0.0, p.Grad.At(0, 0))
}

// One Adam step with unit gradient moves every element by about lr.
func TestAdamStep(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	p := NewParam("w", 2, 3, rng)
	before := append([]float64(nil), p.Value.RawMatrix().Data...)
	for i := range p.Grad.RawMatrix().Data {
		p.Grad.RawMatrix().Data[i] = 1
	}

	opt := NewAdam(0.01, 0.9, 0.999, 0)
	opt.Step([]*Param{p})

	for i, v := range p.Value.RawMatrix().Data {
		assert.InDelta(t, before[i]-0.01, v, 1e-6)
	}
}

func TestAdamConvergesOnQuadratic(t *testing.T) {
	p := &Param{Name: "x", Value: mat.NewDense(1, 1, []float64{5}), Grad: mat.NewDense(1, 1, nil)}
	opt := NewAdam(0.1, 0.9, 0.999, 0)
	params := []*Param{p}
	for i := 0; i < 500; i++ {
		opt.ZeroGrad(params)
		p.Grad.Set(0, 0, 2*p.Value.At(0, 0)) // d/dx x^2
		opt.Step(params)
	}
	assert.InDelta(t, 0, p.Value.At(0, 0), 0.05)
}

func TestSGDStep(t *testing.T) {
	p := &Param{Name: "x", Value: mat.NewDense(1, 1, []float64{1}), Grad: mat.NewDense(1, 1, []float64{2})}
	opt := NewSGD(0.5, 0.9, 0)
	opt.Step([]*Param{p})
	require.InDelta(t, 0.0, p.Value.At(0, 0), 1e-12) // 1 - 0.5*2

	// momentum carries the previous velocity
	p.Grad.Set(0, 0, 0)
	opt.Step([]*Param{p})
	assert.InDelta(t, -0.9, p.Value.At(0, 0), 1e-12) // vel = 0.9*2
}

func TestWeightDecayPullsTowardZero(t *testing.T) {
	p := &Param{Name: "x", Value: mat.NewDense(1, 1, []float64{10}), Grad: mat.NewDense(1, 1, nil)}
	opt := NewSGD(0.1, 0, 0.5)
	opt.Step([]*Param{p})
	assert.InDelta(t, 9.5, p.Value.At(0, 0), 1e-12) // 10 - 0.1*(0.5*10)
}
