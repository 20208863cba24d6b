package net

import (
	"slices"

	"github.com/sanyaade-teachings/mlpack/internal/arena"
	"github.com/sanyaade-teachings/mlpack/internal/layer"
	"gonum.org/v1/gonum/mat"
)

// checkNetwork brings the network to the Ready state for a batch of inputs
// with the given number of columns. Every step is skipped when its result is
// still valid.
func (n *Network) checkNetwork(op string, batch, width int) {
	if len(n.layers) == 0 {
		contract(op, "network has no layers")
	}
	if batch == 0 {
		contract(op, "input has no rows")
	}

	if n.parameters == nil {
		n.initializeWeights()
	}

	if !n.bound || !n.sameParameters() {
		n.bindMemory(op)
	}

	if len(n.inputDims) == 0 {
		n.inputDims = []int{width}
	}
	if !n.dimsResolved || !slices.Equal(n.resolvedDims, n.inputDims) {
		n.resolveDimensions(op)
	}

	if want := layer.Size(n.inputDims); width != want {
		contract(op, "input has %d columns, network expects %d", width, want)
	}

	n.initForwardMemory(batch)
}

// initializeWeights allocates a fresh parameter vector and fills it with the
// initialization rule.
func (n *Network) initializeWeights() {
	n.parameters = make([]float64, n.WeightSize())
	n.rule.Initialize(n.layers, n.parameters)
	for i, view := range n.splitParameters() {
		if d, ok := n.layers[i].(layer.DefaultInitializer); ok {
			d.DefaultWeights(view)
		}
	}
	n.bound = false
}

func (n *Network) sameParameters() bool {
	if len(n.parameters) != n.boundLen {
		return false
	}
	return len(n.parameters) == 0 || &n.parameters[0] == n.boundData
}

// bindMemory hands every layer its view of the parameter vector.
func (n *Network) bindMemory(op string) {
	if total := n.WeightSize(); total != len(n.parameters) {
		contract(op, "layers need %d parameters, vector has %d", total, len(n.parameters))
	}
	for i, view := range n.splitParameters() {
		n.layers[i].SetWeights(view)
	}

	n.bound = true
	n.boundLen = len(n.parameters)
	n.boundData = nil
	if len(n.parameters) > 0 {
		n.boundData = &n.parameters[0]
	}
}

// splitParameters returns each layer's slice of the parameter vector.
func (n *Network) splitParameters() [][]float64 {
	return arena.Slices(n.parameters, n.weightSizes())
}

// resolveDimensions propagates the declared input dimensions through the
// stack and recomputes the arena sizes.
func (n *Network) resolveDimensions(op string) {
	dims := n.inputDims
	n.totalInputSize, n.totalOutputSize = 0, 0
	for i, l := range n.layers {
		l.SetInputDimensions(dims)
		if got, want := layer.Size(l.InputDimensions()), layer.Size(dims); got != want {
			contract(op, "layer %d (%T) takes %d inputs but its predecessor produces %d", i, l, got, want)
		}
		n.totalInputSize += layer.Size(dims)
		n.totalOutputSize += l.OutputSize()
		dims = l.OutputDimensions()
	}

	if len(n.layerOutputs) != len(n.layers) {
		n.layerOutputs = newViews(len(n.layers))
		n.deltas = newViews(len(n.layers))
	}

	n.resolvedDims = slices.Clone(n.inputDims)
	n.dimsResolved = true
	n.lastOutput = nil
	// Views must be recut for the new sizes.
	n.forwardBatch, n.backwardBatch = 0, 0
}

func newViews(count int) []*mat.Dense {
	views := make([]*mat.Dense, count)
	for i := range views {
		views[i] = &mat.Dense{}
	}
	return views
}

// initForwardMemory makes the activation arena hold batch samples for every
// layer and recuts the views if needed.
func (n *Network) initForwardMemory(batch int) {
	if n.forwardArena.Reserve(n.totalOutputSize*batch) || batch != n.forwardBatch {
		n.forwardArena.Views(n.outputSizes(), batch, n.layerOutputs)
		n.forwardBatch = batch
	}
}

// initBackwardMemory does the same for the delta arena.
func (n *Network) initBackwardMemory(batch int) {
	if n.backwardArena.Reserve(n.totalInputSize*batch) || batch != n.backwardBatch {
		n.backwardArena.Views(n.inputSizes(), batch, n.deltas)
		n.backwardBatch = batch
	}
}

// ReleaseMemory frees the activation and delta arenas. Parameters, bindings
// and resolved dimensions are kept; the next pass allocates again. The
// network is left in the DimensionsResolved state.
func (n *Network) ReleaseMemory() {
	n.forwardArena.Release()
	n.backwardArena.Release()
	for i := range n.layerOutputs {
		*n.layerOutputs[i] = mat.Dense{}
		*n.deltas[i] = mat.Dense{}
	}
	n.errBuf.Reset()
	n.lastOutput = nil
	n.forwardBatch, n.backwardBatch = 0, 0
}

// gradientViews slices a caller gradient vector with the parameter layout.
func (n *Network) gradientViews(op string, gradient []float64) [][]float64 {
	if len(gradient) != len(n.parameters) {
		contract(op, "gradient has %d elements, network has %d parameters", len(gradient), len(n.parameters))
	}
	return arena.Slices(gradient, n.weightSizes())
}

func (n *Network) weightSizes() []int {
	sizes := make([]int, len(n.layers))
	for i, l := range n.layers {
		sizes[i] = l.WeightSize()
	}
	return sizes
}

func (n *Network) outputSizes() []int {
	sizes := make([]int, len(n.layers))
	for i, l := range n.layers {
		sizes[i] = l.OutputSize()
	}
	return sizes
}

func (n *Network) inputSizes() []int {
	sizes := make([]int, len(n.layers))
	for i, l := range n.layers {
		sizes[i] = layer.Size(l.InputDimensions())
	}
	return sizes
}
