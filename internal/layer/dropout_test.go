package layer

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func ones(r, c int) *mat.Dense {
	m := mat.NewDense(r, c, nil)
	m.Apply(func(_, _ int, _ float64) float64 { return 1 }, m)
	return m
}

func TestDropoutZeroRateKeepsEverything(t *testing.T) {
	dropout := NewDropout(0, 5)
	dropout.SetInputDimensions([]int{20})

	input := ones(3, 20)
	output := mat.NewDense(3, 20, nil)
	dropout.Forward(input, output)

	if !mat.Equal(input, output) {
		t.Errorf("Dropout with rate 0 changed its input")
	}
}

func TestDropoutSeedReproducible(t *testing.T) {
	// Two layers with the same seed draw the same masks.
	a := NewDropout(0.3, 11)
	b := a.Clone().(*Dropout)
	a.SetInputDimensions([]int{16})
	b.SetInputDimensions([]int{16})

	input := ones(2, 16)
	outA := mat.NewDense(2, 16, nil)
	outB := mat.NewDense(2, 16, nil)
	for i := 0; i < 3; i++ {
		a.Forward(input, outA)
		b.Forward(input, outB)
		if !mat.Equal(outA, outB) {
			t.Fatalf("Pass %d: masks differ for equal seeds", i)
		}
	}
}

func TestDropoutDeterministicBackward(t *testing.T) {
	dropout := NewDropout(0.5, 2)
	dropout.SetInputDimensions([]int{4})
	dropout.SetDeterministic(true)

	gy := mat.NewDense(1, 4, []float64{1, -2, 3, -4})
	g := mat.NewDense(1, 4, nil)
	dropout.Backward(nil, gy, g)

	if !mat.Equal(gy, g) {
		t.Errorf("Deterministic backward = %v, expected %v", mat.Formatted(g), mat.Formatted(gy))
	}
}

func TestDropoutWeightless(t *testing.T) {
	dropout := NewDropout(0.5, 10)

	if dropout.WeightSize() != 0 {
		t.Errorf("WeightSize = %d, expected 0", dropout.WeightSize())
	}
	dropout.SetWeights(nil)
	if dropout.Weights() != nil {
		t.Errorf("Expected nil weights")
	}

	defer func() {
		if recover() == nil {
			t.Errorf("Expected a panic when binding weights to a weightless layer")
		}
	}()
	dropout.SetWeights([]float64{1, 2, 3})
}

func BenchmarkDropoutForwardTraining(b *testing.B) {
	dropout := NewDropout(0.5, 1024)
	dropout.SetInputDimensions([]int{1024})

	input := ones(32, 1024)
	output := mat.NewDense(32, 1024, nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		dropout.Forward(input, output)
	}
}
