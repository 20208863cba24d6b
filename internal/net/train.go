package net

import (
	"time"

	"github.com/sanyaade-teachings/mlpack/internal/opt"
	"gonum.org/v1/gonum/mat"
)

// Train fits the network to predictors and responses with optimizer,
// starting from the current weights if there are any. The data is copied
// into the training cache. It returns the final objective reported by the
// optimizer.
func (n *Network) Train(predictors, responses *mat.Dense, optimizer opt.Optimizer, callbacks ...opt.Callback) float64 {
	n.ResetData(predictors, responses)
	n.warnMaxIterations(optimizer, n.NumFunctions())

	start := time.Now()
	out := optimizer.Optimize(n, n.parameters, callbacks...)
	logger.Printf("final objective of trained model is %g (%v)", out, time.Since(start))
	return out
}

// warnMaxIterations logs when the optimizer stops before one full pass over
// the data.
func (n *Network) warnMaxIterations(optimizer opt.Optimizer, samples int) {
	limited, ok := optimizer.(opt.IterationLimited)
	if !ok {
		return
	}
	if limit := limited.MaxIterations(); limit != 0 && limit < samples {
		logger.Printf("warning: the optimizer's maximum number of iterations (%d) is less than "+
			"the size of the dataset (%d); the optimizer will not pass over the entire dataset. "+
			"Set it to at least %d.", limit, samples, samples)
	}
}
