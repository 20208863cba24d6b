package net

import (
	"slices"

	"github.com/sanyaade-teachings/mlpack/internal/layer"
	"gonum.org/v1/gonum/mat"
)

// Clone returns an independent copy of the network: every layer is cloned,
// and the parameters and training cache are copied. The copy binds its own
// layers on first use. The loss and initialization rule are shared; they
// hold no state.
func (n *Network) Clone() *Network {
	c := New(n.outputLayer, n.rule, WithSeed(n.seed))
	c.inputDims = slices.Clone(n.inputDims)
	c.deterministic = n.deterministic
	c.layers = make([]layer.Layer, len(n.layers))
	for i, l := range n.layers {
		c.layers[i] = l.Clone()
		c.layers[i].SetDeterministic(n.deterministic)
	}
	if n.parameters != nil {
		c.parameters = slices.Clone(n.parameters)
	}
	if n.predictors != nil {
		c.predictors = mat.DenseCopyOf(n.predictors)
		c.responses = mat.DenseCopyOf(n.responses)
	}
	return c
}

// Swap exchanges the complete state of n and other, including arenas and
// bindings.
func (n *Network) Swap(other *Network) {
	*n, *other = *other, *n
}

// Move transfers the state of n to a new network without copying and leaves
// n empty, keeping only its loss and initialization rule.
func (n *Network) Move() *Network {
	m := new(Network)
	*m = *n
	*n = *New(m.outputLayer, m.rule)
	return m
}
