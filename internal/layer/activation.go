package layer

import (
	"slices"

	"github.com/sanyaade-teachings/mlpack/internal/activations"
	"gonum.org/v1/gonum/mat"
)

// Activation applies an activation function elementwise. It keeps the
// shape of its input and has no weights.
type Activation struct {
	base
	weightless
	act activations.Activation
}

// NewActivation wraps act as a layer.
func NewActivation(act activations.Activation) *Activation {
	return &Activation{act: act}
}

// NewReLU creates a ReLU layer.
func NewReLU() *Activation { return NewActivation(activations.ReLU{}) }

// NewSigmoid creates a sigmoid layer.
func NewSigmoid() *Activation { return NewActivation(activations.Sigmoid{}) }

// NewTanh creates a tanh layer.
func NewTanh() *Activation { return NewActivation(activations.Tanh{}) }

// NewSoftsign creates a softsign layer.
func NewSoftsign() *Activation { return NewActivation(activations.Softsign{}) }

// Func returns the wrapped activation function.
func (a *Activation) Func() activations.Activation { return a.act }

func (a *Activation) OutputDimensions() []int { return slices.Clone(a.inputDims) }

func (a *Activation) OutputSize() int { return Size(a.inputDims) }

func (a *Activation) Forward(input, output *mat.Dense) {
	output.Apply(func(_, _ int, v float64) float64 {
		return a.act.Activate(v)
	}, input)
}

func (a *Activation) Backward(output, gy, g *mat.Dense) {
	g.Apply(func(i, j int, v float64) float64 {
		return v * a.act.Derivative(output.At(i, j))
	}, gy)
}

func (a *Activation) Clone() Layer {
	c := NewActivation(a.act)
	c.deterministic = a.deterministic
	return c
}
