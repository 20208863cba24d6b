package layer

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// LayerNorm normalizes every sample across its features to zero mean and
// unit variance, then applies a learned scale γ and shift β.
//
// Its weight view is laid out as γ (size) followed by β (size).
type LayerNorm struct {
	base
	size int
	eps  float64

	weights     []float64
	gamma, beta []float64

	// Normalized input and inverse standard deviation per row from the
	// last forward pass.
	xhat   *mat.Dense
	invStd []float64
}

// NewLayerNorm creates a layer normalization over size features. eps is
// added to the variance for numerical stability.
func NewLayerNorm(size int, eps float64) *LayerNorm {
	if size <= 0 {
		panic(fmt.Sprintf("layer: invalid LayerNorm size %d", size))
	}
	l := &LayerNorm{size: size, eps: eps, xhat: &mat.Dense{}}
	l.inputDims = []int{size}
	return l
}

// Eps returns the variance offset.
func (l *LayerNorm) Eps() float64 { return l.eps }

func (l *LayerNorm) InputDimensions() []int { return []int{l.size} }

// SetInputDimensions is a no-op; the feature count is fixed at construction.
func (l *LayerNorm) SetInputDimensions(dims []int) {}

func (l *LayerNorm) OutputDimensions() []int { return []int{l.size} }

func (l *LayerNorm) OutputSize() int { return l.size }

func (l *LayerNorm) WeightSize() int { return 2 * l.size }

func (l *LayerNorm) Weights() []float64 { return l.weights }

func (l *LayerNorm) SetWeights(weights []float64) {
	if len(weights) != l.WeightSize() {
		panic(fmt.Sprintf("layer: LayerNorm needs %d weights, got %d", l.WeightSize(), len(weights)))
	}
	l.weights = weights
	l.gamma = weights[:l.size:l.size]
	l.beta = weights[l.size:]
}

// DefaultWeights sets γ to one and β to zero, so a fresh layer only
// normalizes.
func (l *LayerNorm) DefaultWeights(weights []float64) {
	for i := range weights {
		if i < l.size {
			weights[i] = 1
		} else {
			weights[i] = 0
		}
	}
}

// normalize writes (x - mean)/sqrt(var + eps) into dst and returns the
// inverse standard deviation.
func (l *LayerNorm) normalize(x, dst []float64) float64 {
	mean, variance := stat.PopMeanVariance(x, nil)
	inv := 1 / math.Sqrt(variance+l.eps)
	for i, v := range x {
		dst[i] = (v - mean) * inv
	}
	return inv
}

func (l *LayerNorm) Forward(input, output *mat.Dense) {
	batch, _ := input.Dims()
	checkShape("LayerNorm input", input, batch, l.size)
	checkShape("LayerNorm output", output, batch, l.size)

	if r, _ := l.xhat.Dims(); r != batch {
		l.xhat = mat.NewDense(batch, l.size, nil)
		l.invStd = make([]float64, batch)
	}
	for r := 0; r < batch; r++ {
		xhat := l.xhat.RawRowView(r)
		l.invStd[r] = l.normalize(input.RawRowView(r), xhat)
		out := output.RawRowView(r)
		floats.MulTo(out, l.gamma, xhat)
		floats.Add(out, l.beta)
	}
}

// Backward computes g = inv/n (n·d - Σd - x̂ Σ(d∘x̂)) with d = gy∘γ, using
// the statistics of the last forward pass.
func (l *LayerNorm) Backward(output, gy, g *mat.Dense) {
	batch, _ := gy.Dims()
	n := float64(l.size)
	d := make([]float64, l.size)
	for r := 0; r < batch; r++ {
		xhat := l.xhat.RawRowView(r)
		floats.MulTo(d, gy.RawRowView(r), l.gamma)
		sum := floats.Sum(d)
		dot := floats.Dot(d, xhat)
		scale := l.invStd[r] / n
		row := g.RawRowView(r)
		for i := range row {
			row[i] = scale * (n*d[i] - sum - xhat[i]*dot)
		}
	}
}

// Gradient computes dγ = Σ delta∘x̂ and dβ = Σ delta over the batch.
func (l *LayerNorm) Gradient(input, delta *mat.Dense, gradient []float64) {
	gg, gb := gradient[:l.size], gradient[l.size:]
	for i := range gradient {
		gradient[i] = 0
	}

	batch, _ := input.Dims()
	xhat := make([]float64, l.size)
	for r := 0; r < batch; r++ {
		l.normalize(input.RawRowView(r), xhat)
		dr := delta.RawRowView(r)
		for i, v := range dr {
			gg[i] += v * xhat[i]
		}
		floats.Add(gb, dr)
	}
}

func (l *LayerNorm) Clone() Layer {
	c := NewLayerNorm(l.size, l.eps)
	c.deterministic = l.deterministic
	return c
}
