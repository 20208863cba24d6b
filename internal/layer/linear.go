package layer

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Linear is a fully connected layer computing y = xWᵀ + b.
//
// Its weight view is laid out as W (out × in, row-major) followed by b (out).
// An optional L2 penalty adds ½λ‖W‖² to the loss; biases are not penalized.
type Linear struct {
	base
	in, out int
	lambda  float64

	weights []float64
	w       *mat.Dense
	b       []float64
}

// LinearOption configures a Linear layer.
type LinearOption func(*Linear)

// WithL2 adds an L2 weight penalty with coefficient lambda.
func WithL2(lambda float64) LinearOption {
	return func(l *Linear) { l.lambda = lambda }
}

// NewLinear creates a fully connected layer with in inputs and out outputs.
func NewLinear(in, out int, opts ...LinearOption) *Linear {
	if in <= 0 || out <= 0 {
		panic(fmt.Sprintf("layer: invalid Linear shape %d -> %d", in, out))
	}
	l := &Linear{in: in, out: out}
	l.inputDims = []int{in}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// InSize returns the input size of the layer.
func (l *Linear) InSize() int { return l.in }

// OutSize returns the output size of the layer.
func (l *Linear) OutSize() int { return l.out }

// Lambda returns the L2 penalty coefficient.
func (l *Linear) Lambda() float64 { return l.lambda }

// Fans implements FanInOut.
func (l *Linear) Fans() (int, int) { return l.in, l.out }

// InputDimensions is fixed at construction.
func (l *Linear) InputDimensions() []int { return []int{l.in} }

// SetInputDimensions is a no-op: the input size of a Linear layer is part of
// its configuration. Callers compare InputDimensions afterwards to detect a
// mismatch.
func (l *Linear) SetInputDimensions(dims []int) {}

func (l *Linear) OutputDimensions() []int { return []int{l.out} }

func (l *Linear) OutputSize() int { return l.out }

func (l *Linear) WeightSize() int { return l.out*l.in + l.out }

func (l *Linear) Weights() []float64 { return l.weights }

// SetWeights binds the layer to weights without copying.
func (l *Linear) SetWeights(weights []float64) {
	if len(weights) != l.WeightSize() {
		panic(fmt.Sprintf("layer: Linear needs %d weights, got %d", l.WeightSize(), len(weights)))
	}
	n := l.out * l.in
	l.weights = weights
	l.w = mat.NewDense(l.out, l.in, weights[:n:n])
	l.b = weights[n:]
}

// Forward computes xWᵀ + b for every row of input.
func (l *Linear) Forward(input, output *mat.Dense) {
	batch, _ := input.Dims()
	checkShape("Linear input", input, batch, l.in)
	checkShape("Linear output", output, batch, l.out)

	output.Mul(input, l.w.T())
	for r := 0; r < batch; r++ {
		floats.Add(output.RawRowView(r), l.b)
	}
}

// Backward computes g = gy W.
func (l *Linear) Backward(output, gy, g *mat.Dense) {
	g.Mul(gy, l.w)
}

// Gradient computes dW = deltaᵀ x (+ λW) and db = column sums of delta.
func (l *Linear) Gradient(input, delta *mat.Dense, gradient []float64) {
	n := l.out * l.in
	gw := mat.NewDense(l.out, l.in, gradient[:n:n])
	gw.Mul(delta.T(), input)
	if l.lambda != 0 {
		floats.AddScaled(gradient[:n], l.lambda, l.weights[:n])
	}

	gb := gradient[n:]
	for i := range gb {
		gb[i] = 0
	}
	batch, _ := delta.Dims()
	for r := 0; r < batch; r++ {
		floats.Add(gb, delta.RawRowView(r))
	}
}

// Loss returns ½λ‖W‖².
func (l *Linear) Loss() float64 {
	if l.lambda == 0 || l.weights == nil {
		return 0
	}
	w := l.weights[:l.out*l.in]
	return 0.5 * l.lambda * floats.Dot(w, w)
}

func (l *Linear) Clone() Layer {
	c := NewLinear(l.in, l.out, WithL2(l.lambda))
	c.deterministic = l.deterministic
	return c
}
