package layer

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/sanyaade-teachings/mlpack/internal/activations"
)

func randomDense(rng *rand.Rand, r, c int) *mat.Dense {
	data := make([]float64, r*c)
	for i := range data {
		data[i] = rng.Float64()*2 - 1
	}
	return mat.NewDense(r, c, data)
}

func randomSlice(rng *rand.Rand, n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = rng.Float64()*2 - 1
	}
	return s
}

// weightedSum is a scalar loss whose gradient with respect to out is r.
func weightedSum(out, r *mat.Dense) float64 {
	var e mat.Dense
	e.MulElem(out, r)
	return mat.Sum(&e)
}

// checkGradients compares Backward and Gradient of l against central
// differences of L = Σ forward(x) ∘ R + l.Loss().
func checkGradients(t *testing.T, l Layer, inSize, batch int) {
	t.Helper()
	rng := rand.New(rand.NewSource(7))

	weights := randomSlice(rng, l.WeightSize())
	l.SetWeights(weights)
	l.SetInputDimensions([]int{inSize})
	l.SetDeterministic(true)

	outSize := l.OutputSize()
	x := randomDense(rng, batch, inSize)
	r := randomDense(rng, batch, outSize)
	out := mat.NewDense(batch, outSize, nil)

	loss := func(input *mat.Dense) float64 {
		l.Forward(input, out)
		return weightedSum(out, r) + l.Loss()
	}

	// Input gradient.
	l.Forward(x, out)
	g := mat.NewDense(batch, inSize, nil)
	l.Backward(out, r, g)

	xFlat := mat.DenseCopyOf(x).RawMatrix().Data
	numeric := fd.Gradient(nil, func(p []float64) float64 {
		return loss(mat.NewDense(batch, inSize, p))
	}, xFlat, &fd.Settings{Formula: fd.Central, Step: 1e-6})
	assert.InDeltaSlice(t, numeric, mat.DenseCopyOf(g).RawMatrix().Data, 1e-6, "input gradient")

	if l.WeightSize() == 0 {
		return
	}

	// Weight gradient.
	grad := make([]float64, l.WeightSize())
	l.Gradient(x, r, grad)

	start := append([]float64(nil), weights...)
	numericW := fd.Gradient(nil, func(p []float64) float64 {
		copy(weights, p)
		return loss(x)
	}, start, &fd.Settings{Formula: fd.Central, Step: 1e-6})
	copy(weights, start)
	assert.InDeltaSlice(t, numericW, grad, 1e-6, "weight gradient")
}

func TestLinearForward(t *testing.T) {
	l := NewLinear(2, 3)
	// W = [[1 2] [3 4] [5 6]], b = [0.5 -1 0]
	l.SetWeights([]float64{1, 2, 3, 4, 5, 6, 0.5, -1, 0})

	in := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	out := mat.NewDense(2, 3, nil)
	l.Forward(in, out)

	want := mat.NewDense(2, 3, []float64{1.5, 2, 5, 2.5, 3, 6})
	assert.True(t, mat.Equal(want, out), "got %v", mat.Formatted(out))
}

func TestLinearSetWeightsIsAView(t *testing.T) {
	l := NewLinear(2, 1)
	params := []float64{1, 1, 0}
	l.SetWeights(params)

	in := mat.NewDense(1, 2, []float64{2, 3})
	out := mat.NewDense(1, 1, nil)
	l.Forward(in, out)
	assert.Equal(t, 5.0, out.At(0, 0))

	// Changing the shared vector changes the layer without rebinding.
	params[2] = 10
	l.Forward(in, out)
	assert.Equal(t, 15.0, out.At(0, 0))
}

func TestLinearSetWeightsWrongSizePanics(t *testing.T) {
	l := NewLinear(3, 2)
	assert.Equal(t, 8, l.WeightSize())
	assert.Panics(t, func() { l.SetWeights(make([]float64, 7)) })
}

func TestLinearGradients(t *testing.T) {
	checkGradients(t, NewLinear(4, 3), 4, 5)
}

func TestLinearL2Gradients(t *testing.T) {
	l := NewLinear(3, 2, WithL2(0.3))
	checkGradients(t, l, 3, 4)
	assert.Greater(t, l.Loss(), 0.0)
}

func TestActivationGradients(t *testing.T) {
	for _, act := range []activations.Activation{
		activations.Sigmoid{}, activations.Tanh{}, activations.Softsign{}, activations.Identity{},
	} {
		t.Run(activations.Name(act), func(t *testing.T) {
			checkGradients(t, NewActivation(act), 4, 3)
		})
	}
}

func TestActivationShape(t *testing.T) {
	a := NewReLU()
	a.SetInputDimensions([]int{2, 3})
	assert.Equal(t, []int{2, 3}, a.OutputDimensions())
	assert.Equal(t, 6, a.OutputSize())
	assert.Equal(t, 0, a.WeightSize())
	assert.Panics(t, func() { a.SetWeights([]float64{1}) })
}

func TestFlatten(t *testing.T) {
	f := NewFlatten()
	f.SetInputDimensions([]int{2, 2, 3})
	assert.Equal(t, []int{12}, f.OutputDimensions())
	checkGradients(t, NewFlatten(), 5, 2)
}

func TestDropoutDeterministicPassThrough(t *testing.T) {
	d := NewDropout(0.5, 1)
	d.SetInputDimensions([]int{4})
	d.SetDeterministic(true)

	in := mat.NewDense(2, 4, []float64{1, 2, 3, 4, 5, 6, 7, 8})
	out := mat.NewDense(2, 4, nil)
	d.Forward(in, out)
	assert.True(t, mat.Equal(in, out))
}

func TestDropoutMask(t *testing.T) {
	d := NewDropout(0.5, 3)
	d.SetInputDimensions([]int{50})

	in := mat.NewDense(4, 50, nil)
	in.Apply(func(_, _ int, _ float64) float64 { return 1 }, in)
	out := mat.NewDense(4, 50, nil)
	d.Forward(in, out)

	zeros := 0
	for _, v := range out.RawMatrix().Data {
		if v == 0 {
			zeros++
		} else {
			require.InDelta(t, 2.0, v, 1e-12)
		}
	}
	assert.Greater(t, zeros, 50)
	assert.Less(t, zeros, 150)

	// The backward pass reuses the same mask.
	gy := mat.DenseCopyOf(in)
	g := mat.NewDense(4, 50, nil)
	d.Backward(out, gy, g)
	assert.True(t, mat.Equal(out, g))
}

func TestDropoutInvalidRate(t *testing.T) {
	assert.Panics(t, func() { NewDropout(1, 0) })
	assert.Panics(t, func() { NewDropout(-0.1, 0) })
}

func TestCloneIsUnbound(t *testing.T) {
	l := NewLinear(2, 2, WithL2(0.1))
	l.SetWeights([]float64{1, 2, 3, 4, 5, 6})
	l.SetDeterministic(true)

	c := l.Clone().(*Linear)
	assert.Nil(t, c.Weights())
	assert.Equal(t, 0.1, c.Lambda())
	assert.True(t, c.Deterministic())
	assert.Equal(t, 0.0, c.Loss())
}

func TestConfigRoundTrip(t *testing.T) {
	layers := []Layer{
		NewLinear(3, 2, WithL2(0.01)),
		NewActivation(activations.NewLeakyReLU(0.2)),
		NewDropout(0.25, 9),
		NewFlatten(),
		NewLayerNorm(4, 1e-3),
	}
	layers[1].SetInputDimensions([]int{2})

	for _, l := range layers {
		cfg, err := ConfigOf(l)
		require.NoError(t, err)

		rebuilt, err := FromConfig(cfg)
		require.NoError(t, err)

		cfg2, err := ConfigOf(rebuilt)
		require.NoError(t, err)
		assert.Equal(t, cfg, cfg2)
		assert.Equal(t, l.WeightSize(), rebuilt.WeightSize())
	}

	_, err := FromConfig(Config{Type: "Conv2D"})
	assert.ErrorIs(t, err, ErrUnknownLayer)
}

func TestSize(t *testing.T) {
	assert.Equal(t, 0, Size(nil))
	assert.Equal(t, 7, Size([]int{7}))
	assert.Equal(t, 24, Size([]int{2, 3, 4}))
}

// Ensure the fd-based helper itself agrees with a known derivative.
func TestWeightedSum(t *testing.T) {
	out := mat.NewDense(1, 3, []float64{1, 2, 3})
	r := mat.NewDense(1, 3, []float64{2, 0, -1})
	assert.Equal(t, -1.0, weightedSum(out, r))
	assert.Equal(t, 6.0, floats.Sum(out.RawRowView(0)))
}
