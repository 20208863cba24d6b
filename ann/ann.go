// Package ann re-exports the network, layers, losses and optimizers under
// one import.
package ann

import (
	"github.com/sanyaade-teachings/mlpack/internal/activations"
	"github.com/sanyaade-teachings/mlpack/internal/config"
	"github.com/sanyaade-teachings/mlpack/internal/layer"
	"github.com/sanyaade-teachings/mlpack/internal/loss"
	"github.com/sanyaade-teachings/mlpack/internal/net"
	"github.com/sanyaade-teachings/mlpack/internal/opt"
	"github.com/sanyaade-teachings/mlpack/internal/weights"
)

// Re-export common types and functions for easier access
type (
	Network    = net.Network
	Option     = net.Option
	Layer      = layer.Layer
	Loss       = loss.Loss
	Rule       = weights.Rule
	Optimizer  = opt.Optimizer
	Callback   = opt.Callback
	Activation = activations.Activation
)

// Network creation
func New(outputLayer Loss, rule Rule, opts ...Option) *Network {
	return net.New(outputLayer, rule, opts...)
}

func WithInputDimensions(dims ...int) Option {
	return net.WithInputDimensions(dims...)
}

func WithSeed(seed uint64) Option {
	return net.WithSeed(seed)
}

func WithLayers(layers ...Layer) Option {
	return net.WithLayers(layers...)
}

// Activations
var (
	Identity = activations.Identity{}
	ReLU     = activations.ReLU{}
	Sigmoid  = activations.Sigmoid{}
	Tanh     = activations.Tanh{}
	Softsign = activations.Softsign{}
)

func LeakyReLU(alpha float64) Activation {
	return activations.NewLeakyReLU(alpha)
}

// Layers
func Linear(in, out int) Layer {
	return layer.NewLinear(in, out)
}

// LinearL2 is a Linear layer whose weights carry an L2 penalty.
func LinearL2(in, out int, lambda float64) Layer {
	return layer.NewLinear(in, out, layer.WithL2(lambda))
}

// Dense is a Linear layer followed by an activation.
func Dense(in, out int, act Activation) []Layer {
	return []Layer{layer.NewLinear(in, out), layer.NewActivation(act)}
}

func ActivationLayer(act Activation) Layer {
	return layer.NewActivation(act)
}

func Dropout(rate float64, seed uint64) Layer {
	return layer.NewDropout(rate, seed)
}

func Flatten() Layer {
	return layer.NewFlatten()
}

// Losses
var (
	MSE          = loss.MSE{}
	CrossEntropy = loss.CrossEntropy{}
	BCE          = loss.BCE{}
	L1           = loss.L1{}
)

func Huber(delta float64) Loss {
	return loss.NewHuber(delta)
}

// Initialization rules
func RandomUniform(low, high float64, seed uint64) Rule {
	return weights.NewRandomUniform(low, high, seed)
}

func Gaussian(mean, stdDev float64, seed uint64) Rule {
	return weights.NewGaussian(mean, stdDev, seed)
}

func Glorot(seed uint64) Rule {
	return weights.Glorot{Seed: seed}
}

func Const(value float64) Rule {
	return weights.Const{Value: value}
}

// Optimizers
func SGD(lr float64, batchSize int) *opt.MiniBatch {
	return opt.NewMiniBatch(opt.NewSGD(lr), batchSize)
}

func Momentum(lr, momentum float64, batchSize int) *opt.MiniBatch {
	return opt.NewMiniBatch(opt.NewMomentum(lr, momentum), batchSize)
}

func Adam(lr float64, batchSize int) *opt.MiniBatch {
	return opt.NewMiniBatch(opt.NewAdam(lr), batchSize)
}

func ReduceLROnPlateau(rule opt.LearningRater, factor float64, patience int, threshold, minLR float64) *opt.ReduceLROnPlateau {
	return opt.NewReduceLROnPlateau(rule, factor, patience, threshold, minLR)
}

// Callbacks
func Logger(interval int) opt.Logger {
	return opt.Logger{Interval: interval}
}

func ModelCheckpoint(filename string, n *Network) *opt.ModelCheckpoint {
	return opt.NewModelCheckpoint(filename, n)
}

func EarlyStopping(patience int, threshold float64) *opt.EarlyStopping {
	return opt.NewEarlyStopping(patience, threshold)
}

func SchedulerCallback(scheduler opt.Scheduler) Callback {
	return opt.NewSchedulerCallback(scheduler)
}

// Model persistence
func Load(filename string) (*Network, error) {
	return net.Load(filename)
}

// FromConfig builds a network and optimizer from a YAML model file.
func FromConfig(path string) (*Network, Optimizer, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	return cfg.Build()
}
