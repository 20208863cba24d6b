// Package loss provides output layers: loss functions over a batch of
// predictions, one sample per row.
//
// Every loss is averaged over the batch, so the value does not grow with the
// batch size, and the error it produces is the matching gradient.
package loss

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrUnknownLoss is returned when a persisted loss type is not recognized.
var ErrUnknownLoss = errors.New("unknown loss type")

// Loss is a loss function with derivative.
type Loss interface {
	// Forward computes the loss between predicted and true values.
	Forward(prediction, target *mat.Dense) float64

	// Backward writes the gradient of the loss w.r.t. prediction into
	// errOut, resizing it if needed.
	Backward(prediction, target, errOut *mat.Dense)
}

// elementwise applies per-element loss and derivative functions over a batch.
type elementwise struct {
	name  string
	value func(p, t float64) float64
	deriv func(p, t float64) float64
}

func (e elementwise) forward(prediction, target *mat.Dense) float64 {
	batch := checkPair(e.name, prediction, target)
	var sum float64
	r, c := prediction.Dims()
	for i := 0; i < r; i++ {
		p, t := prediction.RawRowView(i), target.RawRowView(i)
		for j := 0; j < c; j++ {
			sum += e.value(p[j], t[j])
		}
	}
	return sum / float64(batch)
}

func (e elementwise) backward(prediction, target, errOut *mat.Dense) {
	batch := checkPair(e.name, prediction, target)
	r, c := prediction.Dims()
	reshape(errOut, r, c)
	scale := 1 / float64(batch)
	for i := 0; i < r; i++ {
		p, t, g := prediction.RawRowView(i), target.RawRowView(i), errOut.RawRowView(i)
		for j := 0; j < c; j++ {
			g[j] = scale * e.deriv(p[j], t[j])
		}
	}
}

// checkPair panics unless prediction and target have the same shape and
// returns the batch size.
func checkPair(name string, prediction, target *mat.Dense) int {
	pr, pc := prediction.Dims()
	tr, tc := target.Dims()
	if pr != tr || pc != tc {
		panic(fmt.Sprintf("%s: prediction is %d×%d but target is %d×%d", name, pr, pc, tr, tc))
	}
	return pr
}

// reshape makes m an r×c matrix, keeping its storage when the shape already
// matches.
func reshape(m *mat.Dense, r, c int) {
	if m.IsEmpty() {
		m.ReuseAs(r, c)
		return
	}
	if mr, mc := m.Dims(); mr != r || mc != c {
		m.Reset()
		m.ReuseAs(r, c)
	}
}

// MSE (Mean Squared Error) loss: sum((p - t)^2) / batch.
type MSE struct{}

var mse = elementwise{
	name:  "MSE",
	value: func(p, t float64) float64 { d := p - t; return d * d },
	deriv: func(p, t float64) float64 { return 2 * (p - t) },
}

func (MSE) Forward(prediction, target *mat.Dense) float64 {
	return mse.forward(prediction, target)
}

func (MSE) Backward(prediction, target, errOut *mat.Dense) {
	mse.backward(prediction, target, errOut)
}

// CrossEntropy is the categorical cross entropy of probability
// predictions: -sum(t * log(p)) / batch. Predictions are clipped at eps.
type CrossEntropy struct{}

const eps = 1e-10

var crossEntropy = elementwise{
	name: "CrossEntropy",
	value: func(p, t float64) float64 {
		return -t * math.Log(math.Max(p, eps))
	},
	deriv: func(p, t float64) float64 {
		return -t / math.Max(p, eps)
	},
}

func (CrossEntropy) Forward(prediction, target *mat.Dense) float64 {
	return crossEntropy.forward(prediction, target)
}

func (CrossEntropy) Backward(prediction, target, errOut *mat.Dense) {
	crossEntropy.backward(prediction, target, errOut)
}

// BCE (Binary Cross Entropy) loss. Requires predictions in (0, 1); they
// are clipped to [eps, 1-eps].
type BCE struct{}

func clip(p float64) float64 {
	return math.Min(math.Max(p, eps), 1-eps)
}

var bce = elementwise{
	name: "BCE",
	value: func(p, t float64) float64 {
		p = clip(p)
		return -(t*math.Log(p) + (1-t)*math.Log(1-p))
	},
	deriv: func(p, t float64) float64 {
		p = clip(p)
		return (p - t) / (p * (1 - p))
	},
}

func (BCE) Forward(prediction, target *mat.Dense) float64 {
	return bce.forward(prediction, target)
}

func (BCE) Backward(prediction, target, errOut *mat.Dense) {
	bce.backward(prediction, target, errOut)
}

// Huber loss for robust regression.
type Huber struct {
	Delta float64 // Threshold for quadratic/linear transition
}

// NewHuber creates a Huber loss with the given delta.
func NewHuber(delta float64) *Huber {
	return &Huber{Delta: delta}
}

func (h Huber) fn() elementwise {
	return elementwise{
		name: "Huber",
		value: func(p, t float64) float64 {
			diff := math.Abs(p - t)
			if diff <= h.Delta {
				return 0.5 * diff * diff
			}
			return h.Delta * (diff - 0.5*h.Delta)
		},
		deriv: func(p, t float64) float64 {
			diff := p - t
			if math.Abs(diff) <= h.Delta {
				return diff
			}
			return h.Delta * math.Copysign(1, diff)
		},
	}
}

func (h Huber) Forward(prediction, target *mat.Dense) float64 {
	return h.fn().forward(prediction, target)
}

func (h Huber) Backward(prediction, target, errOut *mat.Dense) {
	h.fn().backward(prediction, target, errOut)
}

// L1 (Mean Absolute Error) loss.
type L1 struct{}

var l1 = elementwise{
	name:  "L1",
	value: func(p, t float64) float64 { return math.Abs(p - t) },
	deriv: func(p, t float64) float64 {
		switch d := p - t; {
		case d > 0:
			return 1
		case d < 0:
			return -1
		}
		return 0
	},
}

func (L1) Forward(prediction, target *mat.Dense) float64 {
	return l1.forward(prediction, target)
}

func (L1) Backward(prediction, target, errOut *mat.Dense) {
	l1.backward(prediction, target, errOut)
}

// Config identifies a loss for persistence.
type Config struct {
	Type  string
	Delta float64
}

// ConfigOf returns the persisted form of l.
func ConfigOf(l Loss) (Config, error) {
	switch v := l.(type) {
	case MSE:
		return Config{Type: "MSE"}, nil
	case CrossEntropy:
		return Config{Type: "CrossEntropy"}, nil
	case BCE:
		return Config{Type: "BCE"}, nil
	case L1:
		return Config{Type: "L1"}, nil
	case Huber:
		return Config{Type: "Huber", Delta: v.Delta}, nil
	case *Huber:
		return Config{Type: "Huber", Delta: v.Delta}, nil
	default:
		return Config{}, fmt.Errorf("%w: %T", ErrUnknownLoss, l)
	}
}

// FromConfig reconstructs a loss.
func FromConfig(cfg Config) (Loss, error) {
	switch cfg.Type {
	case "MSE":
		return MSE{}, nil
	case "CrossEntropy":
		return CrossEntropy{}, nil
	case "BCE":
		return BCE{}, nil
	case "L1":
		return L1{}, nil
	case "Huber":
		delta := cfg.Delta
		if delta == 0 {
			delta = 1
		}
		return NewHuber(delta), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLoss, cfg.Type)
	}
}
