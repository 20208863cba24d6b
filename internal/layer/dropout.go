package layer

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Dropout implements dropout regularization.
// When not deterministic, each input is zeroed with probability rate and the
// survivors are scaled by 1/(1-rate). When deterministic, inputs pass through
// unchanged.
type Dropout struct {
	base
	weightless

	rate float64
	seed uint64
	keep distuv.Bernoulli

	// Mask of the last stochastic forward pass, already scaled.
	mask *mat.Dense
}

// NewDropout creates a new dropout layer. rate must be in [0, 1).
func NewDropout(rate float64, seed uint64) *Dropout {
	if rate < 0 || rate >= 1 {
		panic(fmt.Sprintf("layer: dropout rate %v outside [0, 1)", rate))
	}
	return &Dropout{
		rate: rate,
		seed: seed,
		keep: distuv.Bernoulli{P: 1 - rate, Src: rand.NewSource(seed)},
		mask: &mat.Dense{},
	}
}

// Rate returns the drop probability.
func (d *Dropout) Rate() float64 { return d.rate }

// Seed returns the seed the mask generator started from.
func (d *Dropout) Seed() uint64 { return d.seed }

func (d *Dropout) OutputDimensions() []int { return d.inputDims }

func (d *Dropout) OutputSize() int { return Size(d.inputDims) }

func (d *Dropout) Forward(input, output *mat.Dense) {
	if d.deterministic {
		output.Copy(input)
		return
	}

	r, c := input.Dims()
	if mr, mc := d.mask.Dims(); mr != r || mc != c {
		d.mask = mat.NewDense(r, c, nil)
	}
	scale := 1 / (1 - d.rate)
	raw := d.mask.RawMatrix().Data
	for i := range raw {
		raw[i] = d.keep.Rand() * scale
	}
	output.MulElem(input, d.mask)
}

func (d *Dropout) Backward(output, gy, g *mat.Dense) {
	if d.deterministic {
		g.Copy(gy)
		return
	}
	g.MulElem(gy, d.mask)
}

func (d *Dropout) Clone() Layer {
	c := NewDropout(d.rate, d.seed)
	c.deterministic = d.deterministic
	return c
}
