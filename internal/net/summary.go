package net

import (
	"fmt"
	"io"
	"strings"
)

// Summary writes a table of the layers with their output shapes and
// parameter counts. Shapes are known once the input dimensions are.
func (n *Network) Summary(w io.Writer) {
	fmt.Fprintln(w, "Model: FFN")
	fmt.Fprintln(w, "_________________________________________________________________")
	fmt.Fprintf(w, "%-25s %-20s %-10s\n", "Layer (type)", "Output Shape", "Param #")
	fmt.Fprintln(w, "=================================================================")

	totalParams := 0
	for i, l := range n.layers {
		lType := fmt.Sprintf("%T", l)
		// Extract simple type name
		if j := strings.LastIndexByte(lType, '.'); j >= 0 {
			lType = lType[j+1:]
		}

		outShape := "(?)"
		if dims := l.OutputDimensions(); len(dims) > 0 {
			outShape = strings.Trim(strings.Join(strings.Fields(fmt.Sprint(dims)), ", "), "[]")
			outShape = "(" + outShape + ")"
		}
		params := l.WeightSize()
		totalParams += params

		fmt.Fprintf(w, "%-25s %-20s %-10d\n", fmt.Sprintf("%s_%d", lType, i), outShape, params)
	}
	fmt.Fprintln(w, "=================================================================")
	fmt.Fprintf(w, "Total params: %d\n", totalParams)
	fmt.Fprintln(w, "_________________________________________________________________")
}
