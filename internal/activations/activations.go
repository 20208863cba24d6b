// Package activations provides elementwise activation functions.
package activations

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Activation is an activation function with derivative.
//
// Derivative is expressed in terms of the activation output y = Activate(x),
// because the backward pass only keeps each layer's forward output around.
type Activation interface {
	// Activate computes f(x)
	Activate(x float64) float64

	// Derivative computes f'(x) given y = f(x)
	Derivative(y float64) float64
}

// Identity passes values through unchanged.
type Identity struct{}

// Activate returns x.
func (Identity) Activate(x float64) float64 { return x }

// Derivative returns 1.
func (Identity) Derivative(y float64) float64 { return 1 }

// ReLU activation function.
type ReLU struct{}

// Activate computes max(0, x)
func (r ReLU) Activate(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

// Derivative returns 1 if y > 0, else 0
func (r ReLU) Derivative(y float64) float64 {
	if y > 0 {
		return 1
	}
	return 0
}

// Sigmoid activation function.
type Sigmoid struct{}

// Activate computes 1 / (1 + exp(-x))
func (s Sigmoid) Activate(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// Derivative computes y * (1 - y)
func (s Sigmoid) Derivative(y float64) float64 {
	return y * (1 - y)
}

// LeakyReLU activation function to prevent dying neurons.
// Alpha must be positive so the sign of the output identifies the branch.
type LeakyReLU struct {
	Alpha float64 // Slope for x <= 0
}

// NewLeakyReLU creates a LeakyReLU with the given alpha value.
func NewLeakyReLU(alpha float64) *LeakyReLU {
	return &LeakyReLU{Alpha: alpha}
}

// Activate computes x if x > 0, else alpha*x
func (l *LeakyReLU) Activate(x float64) float64 {
	if x > 0 {
		return x
	}
	return l.Alpha * x
}

// Derivative returns 1 if y > 0, else alpha
func (l *LeakyReLU) Derivative(y float64) float64 {
	if y > 0 {
		return 1
	}
	return l.Alpha
}

// Tanh activation function.
type Tanh struct{}

// Activate computes tanh(x)
func (t Tanh) Activate(x float64) float64 {
	return math.Tanh(x)
}

// Derivative computes 1 - y^2
func (t Tanh) Derivative(y float64) float64 {
	return 1 - y*y
}

// Softsign computes x / (1 + |x|). It saturates to -1 and 1 at the
// infinities instead of producing NaN.
type Softsign struct{}

// Activate computes x / (1 + |x|)
func (Softsign) Activate(x float64) float64 {
	switch {
	case x >= math.MaxFloat64:
		return 1
	case x <= -math.MaxFloat64:
		return -1
	}
	return x / (1 + math.Abs(x))
}

// Derivative computes (1 - |y|)^2
func (Softsign) Derivative(y float64) float64 {
	d := 1 - math.Abs(y)
	return d * d
}

// Inverse maps an output back to its input. Outputs at or beyond the
// asymptotes map to the largest finite magnitudes.
func (Softsign) Inverse(y float64) float64 {
	if y > 0 {
		if y < 1 {
			return -y / (y - 1)
		}
		return math.MaxFloat64
	}
	if y > -1 {
		return y / (1 + y)
	}
	return -math.MaxFloat64
}

// Name returns the persistence tag of an activation.
func Name(act Activation) string {
	switch a := act.(type) {
	case Identity:
		return "Identity"
	case ReLU:
		return "ReLU"
	case Sigmoid:
		return "Sigmoid"
	case Tanh:
		return "Tanh"
	case Softsign:
		return "Softsign"
	case *LeakyReLU:
		return "LeakyReLU:" + strconv.FormatFloat(a.Alpha, 'g', -1, 64)
	default:
		return fmt.Sprintf("%T", act)
	}
}

// FromName reconstructs an activation from its persistence tag.
func FromName(name string) (Activation, error) {
	kind, arg, hasArg := strings.Cut(name, ":")
	switch kind {
	case "Identity":
		return Identity{}, nil
	case "ReLU":
		return ReLU{}, nil
	case "Sigmoid":
		return Sigmoid{}, nil
	case "Tanh":
		return Tanh{}, nil
	case "Softsign":
		return Softsign{}, nil
	case "LeakyReLU":
		alpha := 0.01
		if hasArg {
			v, err := strconv.ParseFloat(arg, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid LeakyReLU alpha %q: %w", arg, err)
			}
			alpha = v
		}
		return NewLeakyReLU(alpha), nil
	default:
		return nil, fmt.Errorf("unknown activation %q", name)
	}
}
