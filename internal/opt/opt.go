// Package opt provides optimization algorithms that drive a decomposable
// objective, such as a network's loss over its training set.
package opt

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Function is an objective made of NumFunctions separable terms that can be
// evaluated over any contiguous window [begin, begin+batchSize).
type Function interface {
	NumFunctions() int
	Shuffle()
	EvaluateBatch(params []float64, begin, batchSize int) float64
	EvaluateBatchWithGradient(params []float64, begin int, gradient []float64, batchSize int) float64
}

// Optimizer minimizes a Function starting from params, updating params in
// place. It returns the final objective.
type Optimizer interface {
	Optimize(f Function, params []float64, callbacks ...Callback) float64
}

// IterationLimited is implemented by optimizers with a bounded number of
// function evaluations. Zero means no limit.
type IterationLimited interface {
	MaxIterations() int
}

// UpdateRule applies one gradient step to params in place.
type UpdateRule interface {
	Update(params, gradient []float64)
}

// LearningRater is implemented by update rules with an adjustable step size.
type LearningRater interface {
	LearningRate() float64
	SetLearningRate(lr float64)
}

// SGD (Stochastic Gradient Descent) update: params -= lr * gradient.
type SGD struct {
	LR float64
}

// NewSGD creates a vanilla update rule.
func NewSGD(learningRate float64) *SGD {
	return &SGD{LR: learningRate}
}

// Update updates params in-place: params = params - lr * gradient
func (s *SGD) Update(params, gradient []float64) {
	floats.AddScaled(params, -s.LR, gradient)
}

func (s *SGD) LearningRate() float64 { return s.LR }

func (s *SGD) SetLearningRate(lr float64) { s.LR = lr }

// Momentum is SGD with a velocity term.
type Momentum struct {
	LR       float64
	Momentum float64

	velocity []float64
}

// NewMomentum creates a momentum update rule.
func NewMomentum(learningRate, momentum float64) *Momentum {
	return &Momentum{LR: learningRate, Momentum: momentum}
}

// Update computes v = momentum*v - lr*g and params += v.
func (m *Momentum) Update(params, gradient []float64) {
	if len(m.velocity) != len(params) {
		m.velocity = make([]float64, len(params))
	}
	floats.Scale(m.Momentum, m.velocity)
	floats.AddScaled(m.velocity, -m.LR, gradient)
	floats.Add(params, m.velocity)
}

func (m *Momentum) LearningRate() float64 { return m.LR }

func (m *Momentum) SetLearningRate(lr float64) { m.LR = lr }

// Adam optimizer for faster convergence.
type Adam struct {
	LR      float64
	Beta1   float64 // Exponential decay rate for first moment
	Beta2   float64 // Exponential decay rate for second moment
	Epsilon float64 // Small constant for numerical stability

	m, v []float64
	t    int
}

// NewAdam creates a new Adam optimizer with default values.
func NewAdam(learningRate float64) *Adam {
	return &Adam{
		LR:      learningRate,
		Beta1:   0.9,
		Beta2:   0.999,
		Epsilon: 1e-8,
	}
}

// Update applies one bias-corrected Adam step.
func (a *Adam) Update(params, gradient []float64) {
	if len(a.m) != len(params) {
		a.m = make([]float64, len(params))
		a.v = make([]float64, len(params))
		a.t = 0
	}
	a.t++
	c1 := 1 - math.Pow(a.Beta1, float64(a.t))
	c2 := 1 - math.Pow(a.Beta2, float64(a.t))
	for i, g := range gradient {
		a.m[i] = a.Beta1*a.m[i] + (1-a.Beta1)*g
		a.v[i] = a.Beta2*a.v[i] + (1-a.Beta2)*g*g
		mHat := a.m[i] / c1
		vHat := a.v[i] / c2
		params[i] -= a.LR * mHat / (math.Sqrt(vHat) + a.Epsilon)
	}
}

func (a *Adam) LearningRate() float64 { return a.LR }

func (a *Adam) SetLearningRate(lr float64) { a.LR = lr }
