package net

import (
	"github.com/sanyaade-teachings/mlpack/internal/layer"
	"gonum.org/v1/gonum/mat"
)

// Forward runs input through every layer and writes the network output to
// output. An empty output is sized to fit; otherwise it must already be
// batch × OutputSize of the last layer. Forward runs in the network's
// current mode; use Predict for inference.
func (n *Network) Forward(input, output *mat.Dense) {
	n.ForwardRange(input, output, 0, len(n.layers)-1)
}

// ForwardRange runs input through layers begin..end inclusive. input must be
// shaped for layer begin and output receives the result of layer end.
// Intermediate results stay in the activation arena. A range with
// end < begin does nothing.
func (n *Network) ForwardRange(input, output *mat.Dense, begin, end int) {
	const op = "Forward"
	if len(n.layers) == 0 {
		contract(op, "network has no layers")
	}
	if end < begin {
		return
	}
	if begin < 0 || end >= len(n.layers) {
		contract(op, "range [%d, %d] outside %d layers", begin, end, len(n.layers))
	}

	batch, width := input.Dims()
	if begin == 0 {
		n.checkNetwork(op, batch, width)
	} else {
		if len(n.inputDims) == 0 {
			contract(op, "input dimensions unknown; run a full pass or declare them first")
		}
		n.checkNetwork(op, batch, layer.Size(n.inputDims))
		if want := n.inputSizes()[begin]; width != want {
			contract(op, "layer %d takes %d inputs, got %d", begin, want, width)
		}
	}

	outSize := n.layers[end].OutputSize()
	if output.IsEmpty() {
		output.ReuseAs(batch, outSize)
	} else if r, c := output.Dims(); r != batch || c != outSize {
		contract(op, "output is %d×%d, want %d×%d", r, c, batch, outSize)
	}

	n.forward(input, output, begin, end)
	if begin == 0 && end == len(n.layers)-1 {
		n.lastOutput = output
	} else {
		n.lastOutput = nil
	}
}

// forward chains layers begin..end. Intermediates are written to the
// activation views, the last result to output. A nil output means the last
// layer writes its own activation view.
func (n *Network) forward(input, output *mat.Dense, begin, end int) {
	if output == nil {
		output = n.layerOutputs[end]
	}
	if begin == end {
		n.layers[begin].Forward(input, output)
		return
	}

	n.layers[begin].Forward(input, n.layerOutputs[begin])
	for i := begin + 1; i < end; i++ {
		n.layers[i].Forward(n.layerOutputs[i-1], n.layerOutputs[i])
	}
	n.layers[end].Forward(n.layerOutputs[end-1], output)
}

// Backward scores the output of the last Forward against targets, propagates
// the error back through the network and writes the parameter gradient into
// gradient, which must have one element per parameter. It returns the loss
// including the layers' penalty terms.
//
// Backward must follow a full-range Forward (or an evaluation) on the same
// input.
func (n *Network) Backward(input, targets *mat.Dense, gradient []float64) float64 {
	const op = "Backward"
	if n.lastOutput == nil {
		contract(op, "no full forward pass to propagate")
	}
	if r, _ := input.Dims(); r != n.forwardBatch {
		contract(op, "input has %d rows, last forward pass had %d", r, n.forwardBatch)
	}

	res := n.outputLayer.Forward(n.lastOutput, targets) + n.Loss()
	n.outputLayer.Backward(n.lastOutput, targets, n.errBuf)
	n.backward()
	n.gradient(op, input, gradient)
	return res
}

// Gradient recomputes the parameter gradient for input from the deltas of
// the last Backward.
func (n *Network) Gradient(input *mat.Dense, gradient []float64) {
	const op = "Gradient"
	if n.lastOutput == nil || n.errBuf.IsEmpty() || n.backwardBatch == 0 {
		contract(op, "no backward pass to take deltas from")
	}
	if r, _ := input.Dims(); r != n.backwardBatch {
		contract(op, "input has %d rows, last backward pass had %d", r, n.backwardBatch)
	}
	n.gradient(op, input, gradient)
}

// backward runs the reverse recurrence: the last layer turns the output
// error into its delta, every earlier layer turns its successor's delta into
// its own. Delta i is the loss gradient with respect to the input of layer i.
func (n *Network) backward() {
	batch, _ := n.lastOutput.Dims()
	n.initBackwardMemory(batch)

	last := len(n.layers) - 1
	n.layers[last].Backward(n.lastOutput, n.errBuf, n.deltas[last])
	for i := last - 1; i >= 0; i-- {
		n.layers[i].Backward(n.layerOutputs[i], n.deltas[i+1], n.deltas[i])
	}
}

// gradient lets every layer compute its parameter gradient from its forward
// input and the delta of its output.
func (n *Network) gradient(op string, input *mat.Dense, gradient []float64) {
	views := n.gradientViews(op, gradient)
	last := len(n.layers) - 1
	if last == 0 {
		n.layers[0].Gradient(input, n.errBuf, views[0])
		return
	}

	n.layers[0].Gradient(input, n.deltas[1], views[0])
	for i := 1; i < last; i++ {
		n.layers[i].Gradient(n.layerOutputs[i-1], n.deltas[i+1], views[i])
	}
	n.layers[last].Gradient(n.layerOutputs[last-1], n.errBuf, views[last])
}
