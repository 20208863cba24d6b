// Package net provides the feed-forward network container.
//
// A Network owns an ordered stack of layers, one flat parameter vector that
// every layer views into, and two arenas holding per-layer activations and
// deltas for the current batch. Samples are matrix rows.
//
// Networks initialize lazily: weights, layer bindings, dimension propagation
// and arena sizing all happen on the first call that needs them, and are
// redone only when something they depend on changes.
//
// A Network is not safe for concurrent use. Use Clone to get an independent
// instance for another goroutine.
package net

import (
	"fmt"
	"log"
	"os"
	"slices"

	"github.com/sanyaade-teachings/mlpack/internal/arena"
	"github.com/sanyaade-teachings/mlpack/internal/layer"
	"github.com/sanyaade-teachings/mlpack/internal/loss"
	"github.com/sanyaade-teachings/mlpack/internal/weights"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

var logger = log.New(os.Stderr, "net: ", log.LstdFlags)

// SetLogger replaces the package logger.
func SetLogger(l *log.Logger) {
	logger = l
}

// ContractError reports a violated precondition, such as mismatched sizes.
// Operations panic with a *ContractError.
type ContractError struct {
	Op  string
	Msg string
}

func (e *ContractError) Error() string {
	return e.Op + ": " + e.Msg
}

func contract(op, format string, args ...any) {
	panic(&ContractError{Op: op, Msg: fmt.Sprintf(format, args...)})
}

// State is the lazy initialization stage a network has reached.
type State int

const (
	// Empty means no parameter vector exists yet.
	Empty State = iota
	// WeightsAllocated means parameters exist but layers are not bound to them.
	WeightsAllocated
	// MemoryBound means every layer views its slice of the parameters.
	MemoryBound
	// DimensionsResolved means input dimensions were propagated through the
	// stack.
	DimensionsResolved
	// Ready means the forward arena is sized for the current batch.
	Ready
)

func (s State) String() string {
	switch s {
	case Empty:
		return "Empty"
	case WeightsAllocated:
		return "WeightsAllocated"
	case MemoryBound:
		return "MemoryBound"
	case DimensionsResolved:
		return "DimensionsResolved"
	case Ready:
		return "Ready"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Network is a feed-forward neural network.
type Network struct {
	layers      []layer.Layer
	outputLayer loss.Loss
	rule        weights.Rule

	inputDims     []int
	deterministic bool

	parameters []float64

	// Binding state. boundData and boundLen identify the parameter vector
	// the layers were last bound to, so a replaced vector is noticed.
	bound     bool
	boundData *float64
	boundLen  int

	resolvedDims    []int
	dimsResolved    bool
	totalInputSize  int
	totalOutputSize int

	forwardArena  arena.Arena
	forwardBatch  int
	layerOutputs  []*mat.Dense
	backwardArena arena.Arena
	backwardBatch int
	deltas        []*mat.Dense

	// Output of the last layer from the most recent full forward pass, and
	// the output layer's error for it.
	lastOutput *mat.Dense
	errBuf     *mat.Dense

	// Training cache.
	predictors *mat.Dense
	responses  *mat.Dense

	// Source of the row permutations drawn by Shuffle.
	seed uint64
	rng  *rand.Rand
}

// Option configures a Network.
type Option func(*Network)

// WithInputDimensions declares the shape of one input sample. Without it the
// network takes the column count of the first input it sees.
func WithInputDimensions(dims ...int) Option {
	return func(n *Network) { n.inputDims = slices.Clone(dims) }
}

// WithSeed seeds the generator used to shuffle the training data.
func WithSeed(seed uint64) Option {
	return func(n *Network) {
		n.seed = seed
		n.rng = rand.New(rand.NewSource(seed))
	}
}

// WithLayers adds layers at construction.
func WithLayers(layers ...layer.Layer) Option {
	return func(n *Network) { n.Add(layers...) }
}

// New creates an empty network that scores its output with outputLayer and
// initializes its weights with rule.
func New(outputLayer loss.Loss, rule weights.Rule, opts ...Option) *Network {
	if outputLayer == nil {
		outputLayer = loss.MSE{}
	}
	if rule == nil {
		rule = weights.NewRandomUniform(-1, 1, 0)
	}
	n := &Network{
		outputLayer: outputLayer,
		rule:        rule,
		errBuf:      &mat.Dense{},
		rng:         rand.New(rand.NewSource(0)),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Add appends layers to the network. Adding a layer discards the current
// parameters and dimension information.
func (n *Network) Add(layers ...layer.Layer) {
	for _, l := range layers {
		l.SetDeterministic(n.deterministic)
	}
	n.layers = append(n.layers, layers...)
	n.parameters = nil
	n.bound = false
	n.dimsResolved = false
	n.lastOutput = nil
}

// Layers returns the network's layers.
func (n *Network) Layers() []layer.Layer {
	return n.layers
}

// OutputLayer returns the loss the network is trained against.
func (n *Network) OutputLayer() loss.Loss {
	return n.outputLayer
}

// Rule returns the weight initialization rule.
func (n *Network) Rule() weights.Rule {
	return n.rule
}

// InputDimensions returns the declared shape of one input sample.
func (n *Network) InputDimensions() []int {
	return slices.Clone(n.inputDims)
}

// SetInputDimensions declares the shape of one input sample. The new shape
// is propagated through the layers on the next pass.
func (n *Network) SetInputDimensions(dims ...int) {
	n.inputDims = slices.Clone(dims)
}

// Parameters returns the parameter vector. It is shared with the layers;
// writes through it change the model.
func (n *Network) Parameters() []float64 {
	return n.parameters
}

// SetParameters adopts p as the parameter vector without copying. The layers
// are rebound to it on the next pass.
func (n *Network) SetParameters(p []float64) {
	if total := n.WeightSize(); len(p) != total {
		contract("SetParameters", "parameter vector has %d elements, network needs %d", len(p), total)
	}
	n.parameters = p
	n.bound = false
}

// Reset draws a fresh set of weights from the initialization rule.
func (n *Network) Reset() {
	n.initializeWeights()
}

// WeightSize returns the total number of parameters of all layers.
func (n *Network) WeightSize() int {
	total := 0
	for _, l := range n.layers {
		total += l.WeightSize()
	}
	return total
}

// Deterministic reports whether the network is in inference mode.
func (n *Network) Deterministic() bool {
	return n.deterministic
}

// SetDeterministic switches between inference and training mode and tells
// every layer.
func (n *Network) SetDeterministic(deterministic bool) {
	n.deterministic = deterministic
	for _, l := range n.layers {
		l.SetDeterministic(deterministic)
	}
}

// setMode changes the mode only when it differs.
func (n *Network) setMode(deterministic bool) {
	if n.deterministic != deterministic {
		n.SetDeterministic(deterministic)
	}
}

// Loss returns the sum of the layers' penalty terms.
func (n *Network) Loss() float64 {
	var sum float64
	for _, l := range n.layers {
		sum += l.Loss()
	}
	return sum
}

// State returns how far lazy initialization has progressed.
func (n *Network) State() State {
	switch {
	case n.parameters == nil:
		return Empty
	case !n.bound || !n.sameParameters():
		return WeightsAllocated
	case !n.dimsResolved:
		return MemoryBound
	case n.forwardBatch == 0:
		return DimensionsResolved
	default:
		return Ready
	}
}

// ForwardAllocations returns how many times the activation arena was
// allocated.
func (n *Network) ForwardAllocations() int {
	return n.forwardArena.Allocations()
}

// BackwardAllocations returns how many times the delta arena was allocated.
func (n *Network) BackwardAllocations() int {
	return n.backwardArena.Allocations()
}

// ForwardCapacity returns the number of elements in the activation arena.
func (n *Network) ForwardCapacity() int {
	return n.forwardArena.Capacity()
}

// BackwardCapacity returns the number of elements in the delta arena.
func (n *Network) BackwardCapacity() int {
	return n.backwardArena.Capacity()
}
