package net

import (
	"io"
	"log"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/sanyaade-teachings/mlpack/internal/layer"
	"github.com/sanyaade-teachings/mlpack/internal/loss"
	"github.com/sanyaade-teachings/mlpack/internal/opt"
	"github.com/sanyaade-teachings/mlpack/internal/weights"
)

// newMNISTNetwork builds a 784 -> 256 -> 128 -> 10 network.
func newMNISTNetwork() *Network {
	return New(loss.MSE{}, weights.Glorot{Seed: 1},
		WithLayers(
			layer.NewLinear(784, 256), layer.NewTanh(),
			layer.NewLinear(256, 128), layer.NewTanh(),
			layer.NewLinear(128, 10), layer.NewSigmoid(),
		))
}

func benchmarkForward(b *testing.B, batch int) {
	n := newMNISTNetwork()
	x := randomDense(1, batch, 784)
	var out mat.Dense
	n.Forward(x, &out)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		n.Forward(x, &out)
	}
}

func BenchmarkNetworkForward(b *testing.B)        { benchmarkForward(b, 1) }
func BenchmarkNetworkForwardBatch32(b *testing.B) { benchmarkForward(b, 32) }

func BenchmarkNetworkBackward(b *testing.B) {
	n := newMNISTNetwork()
	x, y := randomDense(1, 32, 784), randomDense(2, 32, 10)
	gradient := make([]float64, n.WeightSize())
	var out mat.Dense
	n.Forward(x, &out)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		n.Backward(x, y, gradient)
	}
}

func BenchmarkEvaluateBatchWithGradient(b *testing.B) {
	n := newMNISTNetwork()
	n.ResetData(randomDense(1, 256, 784), randomDense(2, 256, 10))
	gradient := make([]float64, n.WeightSize())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		n.EvaluateBatchWithGradient(nil, (i%8)*32, gradient, 32)
	}
}

// BenchmarkVaryingBatch alternates batch sizes within the hysteresis band, so
// the arenas are cut but not reallocated.
func BenchmarkVaryingBatch(b *testing.B) {
	n := newMNISTNetwork()
	n.ResetData(randomDense(1, 100, 784), randomDense(2, 100, 10))
	gradient := make([]float64, n.WeightSize())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		size := 32
		if i%2 == 1 {
			size = 8
		}
		n.EvaluateBatchWithGradient(nil, 0, gradient, size)
	}
	b.ReportMetric(float64(n.ForwardAllocations()), "allocs/arena")
}

func BenchmarkTrainEpoch(b *testing.B) {
	old := logger
	SetLogger(log.New(io.Discard, "", 0))
	defer SetLogger(old)
	x, y := randomDense(1, 128, 784), randomDense(2, 128, 10)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		n := newMNISTNetwork()
		optimizer := opt.NewMiniBatch(opt.NewAdam(0.001), 32)
		optimizer.MaxIter = 128
		n.Train(x, y, optimizer)
	}
}

func BenchmarkPredict(b *testing.B) {
	n := newMNISTNetwork()
	x := randomDense(1, 256, 784)
	var out mat.Dense

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		n.Predict(x, &out, 64)
	}
}
