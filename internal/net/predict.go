package net

import (
	"gonum.org/v1/gonum/mat"
)

// Predict runs predictors through the network in deterministic mode,
// batchSize rows at a time, and writes one output row per sample into
// results. An empty results is sized to fit.
func (n *Network) Predict(predictors, results *mat.Dense, batchSize int) {
	const op = "Predict"
	if len(n.layers) == 0 {
		contract(op, "network has no layers")
	}
	rows, cols := predictors.Dims()
	if rows == 0 {
		contract(op, "input has no rows")
	}
	if batchSize <= 0 {
		batchSize = 1
	}

	// Resolve dimensions first so the output width is known.
	n.setMode(true)
	n.checkNetwork(op, min(batchSize, rows), cols)
	outSize := n.layers[len(n.layers)-1].OutputSize()
	if results.IsEmpty() {
		results.ReuseAs(rows, outSize)
	} else if r, c := results.Dims(); r != rows || c != outSize {
		contract(op, "results is %d×%d, want %d×%d", r, c, rows, outSize)
	}

	for begin := 0; begin < rows; begin += batchSize {
		end := min(begin+batchSize, rows)
		x := predictors.Slice(begin, end, 0, cols).(*mat.Dense)
		y := results.Slice(begin, end, 0, outSize).(*mat.Dense)
		n.Forward(x, y)
	}
}
