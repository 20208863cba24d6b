// Package config describes a network and its optimizer in YAML.
//
// A model file looks like:
//
//	input: [2]
//	loss: {type: MSE}
//	init: {type: Glorot, seed: 1}
//	layers:
//	  - {type: Linear, in: 2, out: 8}
//	  - {type: LayerNorm, in: 8}
//	  - {type: Activation, activation: Tanh}
//	  - {type: Linear, in: 8, out: 1}
//	optimizer:
//	  rule: adam
//	  learning_rate: 0.01
//	  batch_size: 4
//	  max_iterations: 10000
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sanyaade-teachings/mlpack/internal/layer"
	"github.com/sanyaade-teachings/mlpack/internal/loss"
	"github.com/sanyaade-teachings/mlpack/internal/net"
	"github.com/sanyaade-teachings/mlpack/internal/opt"
	"github.com/sanyaade-teachings/mlpack/internal/weights"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid model configuration")

// Config holds a model and training configuration.
type Config struct {
	Input     []int       `yaml:"input"`
	Loss      LossSpec    `yaml:"loss"`
	Init      InitSpec    `yaml:"init"`
	Layers    []LayerSpec `yaml:"layers"`
	Optimizer Optimizer   `yaml:"optimizer"`
	Seed      uint64      `yaml:"seed"`
}

// LossSpec selects the output layer.
type LossSpec struct {
	Type  string  `yaml:"type"`
	Delta float64 `yaml:"delta"`
}

// InitSpec selects the weight initialization rule. A and B are the bounds of
// RandomUniform, the mean and standard deviation of Gaussian, and A is the
// value of Const.
type InitSpec struct {
	Type string  `yaml:"type"`
	A    float64 `yaml:"a"`
	B    float64 `yaml:"b"`
	Seed uint64  `yaml:"seed"`
}

// LayerSpec describes one layer.
type LayerSpec struct {
	Type       string  `yaml:"type"`
	In         int     `yaml:"in"`
	Out        int     `yaml:"out"`
	Lambda     float64 `yaml:"lambda"`
	Rate       float64 `yaml:"rate"`
	Seed       uint64  `yaml:"seed"`
	Eps        float64 `yaml:"eps"`
	Activation string  `yaml:"activation"`
}

// Optimizer holds the training configuration.
type Optimizer struct {
	Rule          string  `yaml:"rule"`
	LearningRate  float64 `yaml:"learning_rate"`
	Momentum      float64 `yaml:"momentum"`
	BatchSize     int     `yaml:"batch_size"`
	MaxIterations int     `yaml:"max_iterations"`
	Tolerance     float64 `yaml:"tolerance"`
	Shuffle       *bool   `yaml:"shuffle"`
}

// Load reads and validates a YAML model file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML model description. Missing loss, init
// and optimizer settings get defaults.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.Loss.Type == "" {
		c.Loss.Type = "MSE"
	}
	if c.Init.Type == "" {
		c.Init = InitSpec{Type: "Glorot", Seed: c.Init.Seed}
	}
	o := &c.Optimizer
	if o.Rule == "" {
		o.Rule = "sgd"
	}
	if o.LearningRate == 0 {
		o.LearningRate = 0.01
	}
	if o.BatchSize == 0 {
		o.BatchSize = 32
	}
	if o.MaxIterations == 0 {
		o.MaxIterations = 100000
	}
	if o.Tolerance == 0 {
		o.Tolerance = 1e-5
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Validate validates the configuration, including that consecutive Linear
// layers agree on their sizes.
func (c *Config) Validate() error {
	if len(c.Layers) == 0 {
		return invalid("at least one layer is required")
	}
	for _, d := range c.Input {
		if d <= 0 {
			return invalid("input dimensions must be positive, got %v", c.Input)
		}
	}

	width := layer.Size(c.Input)
	for i, spec := range c.Layers {
		if _, err := layer.FromConfig(spec.layerConfig()); err != nil {
			return invalid("layer %d: %v", i, err)
		}
		if spec.Type != "Linear" && spec.Type != "LayerNorm" {
			continue
		}
		if width > 0 && spec.In != width {
			return invalid("layer %d: %s takes %d inputs but receives %d", i, spec.Type, spec.In, width)
		}
		if spec.Type == "Linear" {
			width = spec.Out
		} else {
			width = spec.In
		}
	}

	if _, err := loss.FromConfig(loss.Config{Type: c.Loss.Type, Delta: c.Loss.Delta}); err != nil {
		return invalid("%v", err)
	}
	if _, err := weights.FromConfig(c.Init.weightsConfig()); err != nil {
		return invalid("%v", err)
	}

	o := c.Optimizer
	switch strings.ToLower(o.Rule) {
	case "sgd", "momentum", "adam":
	default:
		return invalid("unknown optimizer rule %q", o.Rule)
	}
	if o.LearningRate <= 0 {
		return invalid("learning rate must be positive")
	}
	if o.BatchSize <= 0 {
		return invalid("batch size must be positive")
	}
	if o.MaxIterations < 0 {
		return invalid("max iterations must not be negative")
	}
	return nil
}

func (s LayerSpec) layerConfig() layer.Config {
	return layer.Config{
		Type:       s.Type,
		In:         s.In,
		Out:        s.Out,
		Lambda:     s.Lambda,
		Rate:       s.Rate,
		Seed:       s.Seed,
		Eps:        s.Eps,
		Activation: s.Activation,
	}
}

func (s InitSpec) weightsConfig() weights.Config {
	return weights.Config{Type: s.Type, A: s.A, B: s.B, Seed: s.Seed}
}

// Build creates the network and optimizer described by c.
func (c *Config) Build() (*net.Network, opt.Optimizer, error) {
	lossFn, err := loss.FromConfig(loss.Config{Type: c.Loss.Type, Delta: c.Loss.Delta})
	if err != nil {
		return nil, nil, err
	}
	rule, err := weights.FromConfig(c.Init.weightsConfig())
	if err != nil {
		return nil, nil, err
	}

	opts := []net.Option{net.WithSeed(c.Seed)}
	if len(c.Input) > 0 {
		opts = append(opts, net.WithInputDimensions(c.Input...))
	}
	n := net.New(lossFn, rule, opts...)
	for i, spec := range c.Layers {
		l, err := layer.FromConfig(spec.layerConfig())
		if err != nil {
			return nil, nil, fmt.Errorf("layer %d: %w", i, err)
		}
		n.Add(l)
	}

	return n, c.Optimizer.build(), nil
}

func (o Optimizer) build() *opt.MiniBatch {
	var rule opt.UpdateRule
	switch strings.ToLower(o.Rule) {
	case "momentum":
		rule = opt.NewMomentum(o.LearningRate, o.Momentum)
	case "adam":
		rule = opt.NewAdam(o.LearningRate)
	default:
		rule = opt.NewSGD(o.LearningRate)
	}

	mb := opt.NewMiniBatch(rule, o.BatchSize)
	mb.MaxIter = o.MaxIterations
	mb.Tolerance = o.Tolerance
	if o.Shuffle != nil {
		mb.Shuffle = *o.Shuffle
	}
	return mb
}
