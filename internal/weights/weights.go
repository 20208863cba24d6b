// Package weights provides initialization rules that fill a network's
// parameter vector.
package weights

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sanyaade-teachings/mlpack/internal/layer"
)

// ErrUnknownRule is returned when a persisted rule type is not recognized.
var ErrUnknownRule = errors.New("unknown initialization rule")

// Rule fills params, whose length is the sum of every layer's WeightSize,
// with initial values. Layers occupy consecutive ranges in order.
type Rule interface {
	Initialize(layers []layer.Layer, params []float64)
}

// fill draws every element of params from d.
func fill(params []float64, d interface{ Rand() float64 }) {
	for i := range params {
		params[i] = d.Rand()
	}
}

// RandomUniform draws weights uniformly from [Low, High).
type RandomUniform struct {
	Low, High float64
	Seed      uint64
}

// NewRandomUniform creates a uniform rule.
func NewRandomUniform(low, high float64, seed uint64) RandomUniform {
	return RandomUniform{Low: low, High: high, Seed: seed}
}

func (r RandomUniform) Initialize(layers []layer.Layer, params []float64) {
	fill(params, distuv.Uniform{Min: r.Low, Max: r.High, Src: rand.NewSource(r.Seed)})
}

// Gaussian draws weights from a normal distribution.
type Gaussian struct {
	Mean, StdDev float64
	Seed         uint64
}

// NewGaussian creates a normal rule.
func NewGaussian(mean, stdDev float64, seed uint64) Gaussian {
	return Gaussian{Mean: mean, StdDev: stdDev, Seed: seed}
}

func (g Gaussian) Initialize(layers []layer.Layer, params []float64) {
	fill(params, distuv.Normal{Mu: g.Mean, Sigma: g.StdDev, Src: rand.NewSource(g.Seed)})
}

// Glorot draws each layer's weights uniformly from ±sqrt(6/(fanIn+fanOut)).
// Layers that do not report their fans get ±0.1.
type Glorot struct {
	Seed uint64
}

func (g Glorot) Initialize(layers []layer.Layer, params []float64) {
	src := rand.NewSource(g.Seed)
	offset := 0
	for _, l := range layers {
		n := l.WeightSize()
		bound := 0.1
		if f, ok := l.(layer.FanInOut); ok {
			in, out := f.Fans()
			bound = math.Sqrt(6.0 / float64(in+out))
		}
		fill(params[offset:offset+n], distuv.Uniform{Min: -bound, Max: bound, Src: src})
		offset += n
	}
}

// Const sets every weight to Value.
type Const struct {
	Value float64
}

func (c Const) Initialize(layers []layer.Layer, params []float64) {
	for i := range params {
		params[i] = c.Value
	}
}

// Config identifies a rule for persistence.
type Config struct {
	Type string
	A, B float64
	Seed uint64
}

// ConfigOf returns the persisted form of r.
func ConfigOf(r Rule) (Config, error) {
	switch v := r.(type) {
	case RandomUniform:
		return Config{Type: "RandomUniform", A: v.Low, B: v.High, Seed: v.Seed}, nil
	case Gaussian:
		return Config{Type: "Gaussian", A: v.Mean, B: v.StdDev, Seed: v.Seed}, nil
	case Glorot:
		return Config{Type: "Glorot", Seed: v.Seed}, nil
	case Const:
		return Config{Type: "Const", A: v.Value}, nil
	default:
		return Config{}, fmt.Errorf("%w: %T", ErrUnknownRule, r)
	}
}

// FromConfig reconstructs a rule.
func FromConfig(cfg Config) (Rule, error) {
	switch cfg.Type {
	case "RandomUniform":
		return NewRandomUniform(cfg.A, cfg.B, cfg.Seed), nil
	case "Gaussian":
		return NewGaussian(cfg.A, cfg.B, cfg.Seed), nil
	case "Glorot":
		return Glorot{Seed: cfg.Seed}, nil
	case "Const":
		return Const{Value: cfg.A}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRule, cfg.Type)
	}
}
