package net

import (
	"gonum.org/v1/gonum/mat"
)

// Evaluate returns the loss of the network on predictors against responses,
// in deterministic mode, as a single batch.
func (n *Network) Evaluate(predictors, responses *mat.Dense) float64 {
	const op = "Evaluate"
	batch, width := predictors.Dims()
	n.setMode(true)
	n.checkNetwork(op, batch, width)
	return n.score(predictors, responses)
}

// score runs a full forward pass into the activation arena and returns the
// loss of its output.
func (n *Network) score(x, y *mat.Dense) float64 {
	last := len(n.layers) - 1
	n.forward(x, nil, 0, last)
	n.lastOutput = n.layerOutputs[last]
	return n.outputLayer.Forward(n.lastOutput, y) + n.Loss()
}

// NumFunctions returns the number of samples in the training cache.
func (n *Network) NumFunctions() int {
	if n.predictors == nil {
		return 0
	}
	r, _ := n.predictors.Dims()
	return r
}

// ResetData copies predictors and responses into the training cache and
// switches the network to training mode. Weights are initialized if the
// network has none yet.
func (n *Network) ResetData(predictors, responses *mat.Dense) {
	pr, _ := predictors.Dims()
	rr, _ := responses.Dims()
	if pr != rr {
		contract("ResetData", "%d predictor rows but %d response rows", pr, rr)
	}
	n.predictors = mat.DenseCopyOf(predictors)
	n.responses = mat.DenseCopyOf(responses)
	n.setMode(false)
	if n.parameters == nil {
		n.initializeWeights()
	}
}

// Shuffle applies one random row permutation to both halves of the training
// cache.
func (n *Network) Shuffle() {
	if n.predictors == nil {
		return
	}
	n.rng.Shuffle(n.NumFunctions(), func(i, j int) {
		swapRows(n.predictors, i, j)
		swapRows(n.responses, i, j)
	})
}

func swapRows(m *mat.Dense, i, j int) {
	a, b := m.RawRowView(i), m.RawRowView(j)
	for k := range a {
		a[k], b[k] = b[k], a[k]
	}
}

// EvaluateParams returns the loss over the whole training cache in
// deterministic mode.
func (n *Network) EvaluateParams(p []float64) float64 {
	return n.EvaluateBatchMode(p, 0, n.NumFunctions(), true)
}

// EvaluateBatch returns the deterministic loss of the cached samples
// [begin, begin+batchSize).
func (n *Network) EvaluateBatch(p []float64, begin, batchSize int) float64 {
	return n.EvaluateBatchMode(p, begin, batchSize, true)
}

// EvaluateBatchMode is EvaluateBatch with an explicit mode.
//
// p is the parameter vector to evaluate at. When it is not the network's own
// vector it is adopted, and the network keeps it afterwards; nil keeps the
// current parameters.
func (n *Network) EvaluateBatchMode(p []float64, begin, batchSize int, deterministic bool) float64 {
	res, _, _ := n.evaluate("Evaluate", p, begin, batchSize, deterministic)
	return res
}

func (n *Network) evaluate(op string, p []float64, begin, batchSize int, deterministic bool) (float64, *mat.Dense, *mat.Dense) {
	n.adopt(op, p)
	x, y := n.window(op, begin, batchSize)
	n.setMode(deterministic)
	_, width := x.Dims()
	n.checkNetwork(op, batchSize, width)
	return n.score(x, y), x, y
}

// EvaluateWithGradient returns the training-mode loss over the whole training
// cache and writes its gradient into gradient.
func (n *Network) EvaluateWithGradient(p, gradient []float64) float64 {
	return n.EvaluateBatchWithGradient(p, 0, gradient, n.NumFunctions())
}

// EvaluateBatchWithGradient returns the training-mode loss of the cached
// samples [begin, begin+batchSize) and writes its gradient into gradient.
func (n *Network) EvaluateBatchWithGradient(p []float64, begin int, gradient []float64, batchSize int) float64 {
	const op = "EvaluateWithGradient"
	res, x, y := n.evaluate(op, p, begin, batchSize, false)
	n.outputLayer.Backward(n.lastOutput, y, n.errBuf)
	n.backward()
	n.gradient(op, x, gradient)
	return res
}

// BatchGradient writes the gradient of the cached samples
// [begin, begin+batchSize) into gradient.
func (n *Network) BatchGradient(p []float64, begin int, gradient []float64, batchSize int) {
	n.EvaluateBatchWithGradient(p, begin, gradient, batchSize)
}

// adopt makes p the parameter vector unless it already is.
func (n *Network) adopt(op string, p []float64) {
	if p == nil {
		return
	}
	if total := n.WeightSize(); len(p) != total {
		contract(op, "parameter vector has %d elements, network needs %d", len(p), total)
	}
	if len(p) > 0 && len(n.parameters) == len(p) && &p[0] == &n.parameters[0] {
		return
	}
	n.parameters = p
	n.bound = false
}

// window returns row views of the cached samples [begin, begin+size).
func (n *Network) window(op string, begin, size int) (x, y *mat.Dense) {
	if n.predictors == nil {
		contract(op, "no training data; call Train or ResetData first")
	}
	rows := n.NumFunctions()
	if begin < 0 || size <= 0 || begin+size > rows {
		contract(op, "batch [%d, %d) outside %d samples", begin, begin+size, rows)
	}
	_, xc := n.predictors.Dims()
	_, yc := n.responses.Dims()
	x = n.predictors.Slice(begin, begin+size, 0, xc).(*mat.Dense)
	y = n.responses.Slice(begin, begin+size, 0, yc).(*mat.Dense)
	return x, y
}
