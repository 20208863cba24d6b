package layer

import (
	"errors"
	"fmt"

	"github.com/sanyaade-teachings/mlpack/internal/activations"
)

// ErrUnknownLayer is returned for layer types that cannot be persisted or
// rebuilt.
var ErrUnknownLayer = errors.New("unknown layer type")

// Config holds the weight-independent configuration needed to reconstruct a
// layer.
type Config struct {
	Type string
	In   int
	Out  int
	// L2 coefficient for Linear layers
	Lambda float64
	// Dropout rate and mask seed
	Rate float64
	Seed uint64
	// Variance offset for LayerNorm layers
	Eps float64
	// Activation type for Activation layers
	Activation    string
	InputDims     []int
	Deterministic bool
}

// ConfigOf extracts the configuration from a layer.
func ConfigOf(l Layer) (Config, error) {
	cfg := Config{
		InputDims:     l.InputDimensions(),
		Deterministic: l.Deterministic(),
	}

	switch v := l.(type) {
	case *Linear:
		cfg.Type = "Linear"
		cfg.In = v.InSize()
		cfg.Out = v.OutSize()
		cfg.Lambda = v.Lambda()
	case *Activation:
		cfg.Type = "Activation"
		cfg.Activation = activations.Name(v.Func())
	case *Dropout:
		cfg.Type = "Dropout"
		cfg.Rate = v.Rate()
		cfg.Seed = v.Seed()
	case *LayerNorm:
		cfg.Type = "LayerNorm"
		cfg.In = v.OutputSize()
		cfg.Eps = v.Eps()
	case *Flatten:
		cfg.Type = "Flatten"
	default:
		return Config{}, fmt.Errorf("%w: %T", ErrUnknownLayer, l)
	}
	return cfg, nil
}

// FromConfig creates a new layer from the configuration.
func FromConfig(cfg Config) (Layer, error) {
	var l Layer
	switch cfg.Type {
	case "Linear":
		if cfg.In <= 0 || cfg.Out <= 0 {
			return nil, fmt.Errorf("invalid Linear shape %d -> %d", cfg.In, cfg.Out)
		}
		l = NewLinear(cfg.In, cfg.Out, WithL2(cfg.Lambda))
	case "Activation":
		act, err := activations.FromName(cfg.Activation)
		if err != nil {
			return nil, err
		}
		l = NewActivation(act)
	case "Dropout":
		if cfg.Rate < 0 || cfg.Rate >= 1 {
			return nil, fmt.Errorf("invalid dropout rate %v", cfg.Rate)
		}
		l = NewDropout(cfg.Rate, cfg.Seed)
	case "LayerNorm":
		if cfg.In <= 0 {
			return nil, fmt.Errorf("invalid LayerNorm size %d", cfg.In)
		}
		eps := cfg.Eps
		if eps == 0 {
			eps = 1e-5
		}
		l = NewLayerNorm(cfg.In, eps)
	case "Flatten":
		l = NewFlatten()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLayer, cfg.Type)
	}

	if len(cfg.InputDims) > 0 {
		l.SetInputDimensions(cfg.InputDims)
	}
	l.SetDeterministic(cfg.Deterministic)
	return l, nil
}
