// Package activations provides unit tests for activation functions.
package activations

import (
	"math"
	"testing"
)

// TestReLU tests ReLU activation.
func TestReLU(t *testing.T) {
	relu := ReLU{}

	tests := []struct {
		input    float64
		expected float64
	}{
		{-1.0, 0.0}, // Negative -> 0
		{0.0, 0.0},  // Zero -> 0
		{1.0, 1.0},  // Positive -> identity
		{2.5, 2.5},
		{-0.1, 0.0},
	}

	for _, tt := range tests {
		output := relu.Activate(tt.input)
		if math.Abs(output-tt.expected) > 1e-12 {
			t.Errorf("ReLU(%v) = %v, want %v", tt.input, output, tt.expected)
		}
	}
}

// TestSigmoid tests Sigmoid activation.
func TestSigmoid(t *testing.T) {
	sigmoid := Sigmoid{}

	tests := []struct {
		input    float64
		expected float64
	}{
		{math.Inf(-1), 0.0},
		{-2.0, 1 / (1 + math.Exp(2))},
		{0.0, 0.5},
		{2.0, 1 / (1 + math.Exp(-2))},
		{math.Inf(1), 1.0},
	}

	for _, tt := range tests {
		output := sigmoid.Activate(tt.input)
		if math.Abs(output-tt.expected) > 1e-12 {
			t.Errorf("Sigmoid(%v) = %v, want %v", tt.input, output, tt.expected)
		}
	}
}

// TestSoftsign tests Softsign activation including saturation.
func TestSoftsign(t *testing.T) {
	s := Softsign{}

	tests := []struct {
		input    float64
		expected float64
	}{
		{0, 0},
		{1, 0.5},
		{-3, -0.75},
		{math.Inf(1), 1},
		{math.Inf(-1), -1},
	}

	for _, tt := range tests {
		output := s.Activate(tt.input)
		if math.Abs(output-tt.expected) > 1e-12 {
			t.Errorf("Softsign(%v) = %v, want %v", tt.input, output, tt.expected)
		}
	}
}

// TestSoftsignInverse tests that Inverse undoes Activate.
func TestSoftsignInverse(t *testing.T) {
	s := Softsign{}
	for _, x := range []float64{-5, -0.3, 0, 0.2, 7} {
		got := s.Inverse(s.Activate(x))
		if math.Abs(got-x) > 1e-9 {
			t.Errorf("Inverse(Activate(%v)) = %v", x, got)
		}
	}
	if s.Inverse(1) != math.MaxFloat64 {
		t.Errorf("Inverse(1) = %v, want MaxFloat64", s.Inverse(1))
	}
	if s.Inverse(-1) != -math.MaxFloat64 {
		t.Errorf("Inverse(-1) = %v, want -MaxFloat64", s.Inverse(-1))
	}
}

// TestDerivativesMatchFiniteDifference checks every output-space derivative
// against a central difference of Activate.
func TestDerivativesMatchFiniteDifference(t *testing.T) {
	acts := []Activation{
		Identity{}, ReLU{}, Sigmoid{}, Tanh{}, Softsign{}, NewLeakyReLU(0.1),
	}
	points := []float64{-2.1, -0.7, 0.3, 1.9}
	const h = 1e-6

	for _, act := range acts {
		for _, x := range points {
			numeric := (act.Activate(x+h) - act.Activate(x-h)) / (2 * h)
			analytic := act.Derivative(act.Activate(x))
			if math.Abs(numeric-analytic) > 1e-5 {
				t.Errorf("%s: derivative at %v = %v, want %v", Name(act), x, analytic, numeric)
			}
		}
	}
}

// TestNameRoundTrip tests that persistence tags reconstruct equivalent activations.
func TestNameRoundTrip(t *testing.T) {
	acts := []Activation{
		Identity{}, ReLU{}, Sigmoid{}, Tanh{}, Softsign{}, NewLeakyReLU(0.2),
	}
	for _, act := range acts {
		got, err := FromName(Name(act))
		if err != nil {
			t.Fatalf("FromName(%q) error: %v", Name(act), err)
		}
		if got.Activate(-1.5) != act.Activate(-1.5) {
			t.Errorf("%s: round trip changed behavior", Name(act))
		}
	}

	if _, err := FromName("Swish"); err == nil {
		t.Error("FromName(Swish) should fail")
	}
}
