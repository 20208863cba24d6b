package weights

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanyaade-teachings/mlpack/internal/layer"
)

func totalWeights(layers []layer.Layer) int {
	n := 0
	for _, l := range layers {
		n += l.WeightSize()
	}
	return n
}

func TestRandomUniformRangeAndSeed(t *testing.T) {
	layers := []layer.Layer{layer.NewLinear(4, 3), layer.NewReLU(), layer.NewLinear(3, 2)}
	a := make([]float64, totalWeights(layers))
	b := make([]float64, len(a))

	NewRandomUniform(-0.5, 0.5, 11).Initialize(layers, a)
	NewRandomUniform(-0.5, 0.5, 11).Initialize(layers, b)

	assert.Equal(t, a, b, "same seed must give same weights")
	for _, v := range a {
		assert.GreaterOrEqual(t, v, -0.5)
		assert.Less(t, v, 0.5)
	}
}

func TestGlorotBoundsPerLayer(t *testing.T) {
	layers := []layer.Layer{layer.NewLinear(10, 2), layer.NewLinear(2, 2)}
	params := make([]float64, totalWeights(layers))
	Glorot{Seed: 1}.Initialize(layers, params)

	first := params[:layers[0].WeightSize()]
	second := params[layers[0].WeightSize():]
	for _, v := range first {
		assert.LessOrEqual(t, math.Abs(v), math.Sqrt(6.0/12))
	}
	for _, v := range second {
		assert.LessOrEqual(t, math.Abs(v), math.Sqrt(6.0/4))
	}
}

func TestGaussianMoments(t *testing.T) {
	params := make([]float64, 20000)
	NewGaussian(1, 0.5, 3).Initialize(nil, params)

	var sum, sq float64
	for _, v := range params {
		sum += v
		sq += v * v
	}
	mean := sum / float64(len(params))
	std := math.Sqrt(sq/float64(len(params)) - mean*mean)
	assert.InDelta(t, 1.0, mean, 0.02)
	assert.InDelta(t, 0.5, std, 0.02)
}

func TestConst(t *testing.T) {
	params := make([]float64, 5)
	Const{Value: 0.25}.Initialize(nil, params)
	assert.Equal(t, []float64{0.25, 0.25, 0.25, 0.25, 0.25}, params)
}

func TestConfigRoundTrip(t *testing.T) {
	for _, r := range []Rule{
		NewRandomUniform(-1, 1, 5), NewGaussian(0, 0.1, 6), Glorot{Seed: 7}, Const{Value: 2},
	} {
		cfg, err := ConfigOf(r)
		require.NoError(t, err)
		rebuilt, err := FromConfig(cfg)
		require.NoError(t, err)
		assert.Equal(t, r, rebuilt)
	}

	_, err := FromConfig(Config{Type: "Orthogonal"})
	assert.ErrorIs(t, err, ErrUnknownRule)
}
