// Package layer provides neural network layer implementations.
//
// All layers work on batches stored as gonum matrices with one sample per
// row. A layer never owns its weights: the network hands it a view into a
// shared parameter vector through SetWeights, and gradients are written into
// a view of the caller's gradient vector with the same layout.
package layer

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/mat"
)

// Layer is a neural network layer.
type Layer interface {
	// Forward computes output from input. output is already shaped
	// batch × OutputSize().
	Forward(input, output *mat.Dense)

	// Backward propagates gy, the loss gradient with respect to this
	// layer's forward output, to g, the gradient with respect to its input.
	// output is the layer's most recent forward output.
	Backward(output, gy, g *mat.Dense)

	// Gradient writes the loss gradient with respect to the weights into
	// gradient, given the forward input and the delta of the layer output.
	Gradient(input, delta *mat.Dense, gradient []float64)

	// WeightSize is the number of parameters the layer needs.
	WeightSize() int

	// OutputSize is the number of elements of one output sample.
	OutputSize() int

	InputDimensions() []int
	SetInputDimensions(dims []int)
	OutputDimensions() []int

	// SetWeights binds the layer to a view of length WeightSize().
	SetWeights(weights []float64)
	Weights() []float64

	// Loss is an additive penalty term, zero for most layers.
	Loss() float64

	Deterministic() bool
	SetDeterministic(deterministic bool)

	// Clone returns an independent layer with the same configuration and
	// no bound weights.
	Clone() Layer
}

// DefaultInitializer is implemented by layers whose weights start from fixed
// values. The network applies DefaultWeights after the initialization rule
// has filled the parameter vector.
type DefaultInitializer interface {
	DefaultWeights(weights []float64)
}

// FanInOut is implemented by layers whose weights connect a fixed number of
// inputs to a fixed number of outputs.
type FanInOut interface {
	Fans() (in, out int)
}

// Size returns the number of elements described by dims.
func Size(dims []int) int {
	if len(dims) == 0 {
		return 0
	}
	n := 1
	for _, d := range dims {
		n *= d
	}
	return n
}

// base holds the state shared by every layer.
type base struct {
	inputDims     []int
	deterministic bool
}

func (b *base) InputDimensions() []int { return b.inputDims }

func (b *base) SetInputDimensions(dims []int) { b.inputDims = slices.Clone(dims) }

func (b *base) Deterministic() bool { return b.deterministic }

func (b *base) SetDeterministic(deterministic bool) { b.deterministic = deterministic }

func (b *base) Loss() float64 { return 0 }

// weightless is embedded by layers without parameters.
type weightless struct{}

func (weightless) WeightSize() int { return 0 }

func (weightless) Weights() []float64 { return nil }

func (weightless) SetWeights(weights []float64) {
	if len(weights) != 0 {
		panic(fmt.Sprintf("layer: weightless layer given %d weights", len(weights)))
	}
}

func (weightless) Gradient(input, delta *mat.Dense, gradient []float64) {}

// checkShape panics if m is not rows × cols.
func checkShape(name string, m *mat.Dense, rows, cols int) {
	r, c := m.Dims()
	if r != rows || c != cols {
		panic(fmt.Sprintf("layer: %s is %d×%d, want %d×%d", name, r, c, rows, cols))
	}
}
