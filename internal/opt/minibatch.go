package opt

import "math"

// MiniBatch walks the objective in consecutive windows of BatchSize terms,
// applying Rule after each window. A pass over all terms is an epoch; the
// data is reshuffled between epochs when Shuffle is set.
//
// Optimization stops after MaxIter evaluated terms (0 means unbounded), when
// two consecutive epoch objectives differ by less than Tolerance, when a
// callback asks to stop, or when the objective stops being finite.
type MiniBatch struct {
	Rule      UpdateRule
	BatchSize int
	MaxIter   int
	Tolerance float64
	Shuffle   bool
}

// NewMiniBatch creates a mini-batch optimizer with common defaults.
func NewMiniBatch(rule UpdateRule, batchSize int) *MiniBatch {
	return &MiniBatch{
		Rule:      rule,
		BatchSize: batchSize,
		MaxIter:   100000,
		Tolerance: 1e-5,
		Shuffle:   true,
	}
}

// MaxIterations implements IterationLimited.
func (m *MiniBatch) MaxIterations() int { return m.MaxIter }

// Optimize implements Optimizer.
func (m *MiniBatch) Optimize(f Function, params []float64, callbacks ...Callback) float64 {
	n := f.NumFunctions()
	if n == 0 {
		return 0
	}
	batch := m.BatchSize
	if batch <= 0 || batch > n {
		batch = n
	}

	for _, c := range callbacks {
		c.BeginOptimization(params)
	}

	if m.Shuffle {
		f.Shuffle()
	}

	gradient := make([]float64, len(params))
	overall, last := 0.0, math.Inf(1)
	current, epoch := 0, 0

	for i := 0; m.MaxIter == 0 || i < m.MaxIter; {
		size := min(batch, n-current)
		if m.MaxIter > 0 {
			size = min(size, m.MaxIter-i)
		}

		objective := f.EvaluateBatchWithGradient(params, current, gradient, size)
		overall += objective
		m.Rule.Update(params, gradient)

		stop := false
		for _, c := range callbacks {
			stop = c.StepTaken(params, objective) || stop
		}
		if stop {
			break
		}

		i += size
		current += size
		if current < n {
			continue
		}

		epoch++
		if math.IsNaN(overall) || math.IsInf(overall, 0) {
			break
		}
		for _, c := range callbacks {
			stop = c.EndEpoch(epoch, overall, params) || stop
		}
		if stop || math.Abs(last-overall) < m.Tolerance {
			break
		}
		last, overall, current = overall, 0, 0
		if m.Shuffle {
			f.Shuffle()
		}
	}

	final := 0.0
	for begin := 0; begin < n; begin += batch {
		final += f.EvaluateBatch(params, begin, min(batch, n-begin))
	}

	for _, c := range callbacks {
		c.EndOptimization(params)
	}
	return final
}
