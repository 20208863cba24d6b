package net

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"

	"github.com/sanyaade-teachings/mlpack/internal/layer"
	"github.com/sanyaade-teachings/mlpack/internal/loss"
	"github.com/sanyaade-teachings/mlpack/internal/weights"
)

// model is the persisted form of a network. The training cache and the
// arenas are not part of it.
type model struct {
	Layers     []layer.Config
	Loss       loss.Config
	Rule       weights.Config
	InputDims  []int
	Parameters []float64
	Seed       uint64
}

// Save saves the network to a file using gob encoding.
func (n *Network) Save(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	return n.Encode(file)
}

// Load loads a network from a file written by Save.
func Load(filename string) (*Network, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Decode(file)
}

// Encode writes the network to an io.Writer using gob encoding.
func (n *Network) Encode(w io.Writer) error {
	m := model{
		InputDims:  n.inputDims,
		Parameters: n.parameters,
		Seed:       n.seed,
	}

	for i, l := range n.layers {
		cfg, err := layer.ConfigOf(l)
		if err != nil {
			return fmt.Errorf("failed to encode layer %d: %w", i, err)
		}
		m.Layers = append(m.Layers, cfg)
	}

	var err error
	if m.Loss, err = loss.ConfigOf(n.outputLayer); err != nil {
		return fmt.Errorf("failed to encode loss: %w", err)
	}
	if m.Rule, err = weights.ConfigOf(n.rule); err != nil {
		return fmt.Errorf("failed to encode initialization rule: %w", err)
	}

	if err := gob.NewEncoder(w).Encode(m); err != nil {
		return fmt.Errorf("failed to encode network: %w", err)
	}
	return nil
}

// Decode reads a network written by Encode. The result is in deterministic
// mode with an empty training cache.
func Decode(r io.Reader) (*Network, error) {
	var m model
	if err := gob.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode network: %w", err)
	}

	lossFn, err := loss.FromConfig(m.Loss)
	if err != nil {
		return nil, fmt.Errorf("failed to create loss: %w", err)
	}
	rule, err := weights.FromConfig(m.Rule)
	if err != nil {
		return nil, fmt.Errorf("failed to create initialization rule: %w", err)
	}

	n := New(lossFn, rule, WithSeed(m.Seed), WithInputDimensions(m.InputDims...))
	for i, cfg := range m.Layers {
		l, err := layer.FromConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create layer %d: %w", i, err)
		}
		n.Add(l)
	}

	if len(m.Parameters) > 0 {
		if total := n.WeightSize(); len(m.Parameters) != total {
			return nil, fmt.Errorf("parameter count %d does not match layers (%d)", len(m.Parameters), total)
		}
		n.parameters = m.Parameters
	}

	n.SetDeterministic(true)
	return n, nil
}
