package layer

import "gonum.org/v1/gonum/mat"

// Flatten collapses multi-dimensional input samples, such as
// channels × height × width, into one flat feature vector. Values are not
// reordered; only the declared output dimensions change.
type Flatten struct {
	base
	weightless
}

// NewFlatten creates a new flatten layer.
func NewFlatten() *Flatten {
	return &Flatten{}
}

func (f *Flatten) OutputDimensions() []int {
	if len(f.inputDims) == 0 {
		return nil
	}
	return []int{Size(f.inputDims)}
}

func (f *Flatten) OutputSize() int { return Size(f.inputDims) }

func (f *Flatten) Forward(input, output *mat.Dense) {
	output.Copy(input)
}

func (f *Flatten) Backward(output, gy, g *mat.Dense) {
	g.Copy(gy)
}

func (f *Flatten) Clone() Layer {
	c := NewFlatten()
	c.deterministic = f.deterministic
	return c
}
