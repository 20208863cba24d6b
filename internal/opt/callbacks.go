package opt

import (
	"log"
	"math"
)

// Callback observes an optimization run. StepTaken and EndEpoch return true
// to stop the run early.
type Callback interface {
	BeginOptimization(params []float64)
	EndOptimization(params []float64)
	StepTaken(params []float64, objective float64) bool
	EndEpoch(epoch int, objective float64, params []float64) bool
}

// BaseCallback provides default empty implementations for Callback.
type BaseCallback struct{}

func (BaseCallback) BeginOptimization(params []float64)                     {}
func (BaseCallback) EndOptimization(params []float64)                       {}
func (BaseCallback) StepTaken(params []float64, objective float64) bool     { return false }
func (BaseCallback) EndEpoch(epoch int, objective float64, p []float64) bool { return false }

// SchedulerCallback is a callback that wraps a learning rate scheduler.
type SchedulerCallback struct {
	BaseCallback
	scheduler Scheduler
}

func NewSchedulerCallback(scheduler Scheduler) *SchedulerCallback {
	return &SchedulerCallback{scheduler: scheduler}
}

func (c *SchedulerCallback) EndEpoch(epoch int, objective float64, params []float64) bool {
	c.scheduler.Step()
	c.scheduler.StepWithLoss(objective)
	return false
}

// EarlyStopping stops training when the epoch objective has stopped improving.
type EarlyStopping struct {
	BaseCallback
	Patience  int
	Threshold float64
	Logger    *log.Logger

	bestLoss     float64
	numBadEpochs int
	Stopped      bool
}

func NewEarlyStopping(patience int, threshold float64) *EarlyStopping {
	return &EarlyStopping{
		Patience:  patience,
		Threshold: threshold,
		Logger:    log.Default(),
		bestLoss:  math.Inf(1),
	}
}

func (c *EarlyStopping) BeginOptimization(params []float64) {
	c.bestLoss = math.Inf(1)
	c.numBadEpochs = 0
	c.Stopped = false
}

func (c *EarlyStopping) EndEpoch(epoch int, objective float64, params []float64) bool {
	if objective < c.bestLoss-c.Threshold {
		c.bestLoss = objective
		c.numBadEpochs = 0
	} else {
		c.numBadEpochs++
	}

	if c.numBadEpochs >= c.Patience {
		c.Logger.Printf("early stopping at epoch %d: objective %.6f did not improve for %d epochs", epoch, objective, c.Patience)
		c.Stopped = true
	}
	return c.Stopped
}

// Saver persists a model. *net.Network implements it.
type Saver interface {
	Save(filename string) error
}

// ModelCheckpoint saves the model after every epoch if it's the best so far.
type ModelCheckpoint struct {
	BaseCallback
	Filename string
	Model    Saver
	Logger   *log.Logger

	bestLoss float64
}

func NewModelCheckpoint(filename string, model Saver) *ModelCheckpoint {
	return &ModelCheckpoint{
		Filename: filename,
		Model:    model,
		Logger:   log.Default(),
		bestLoss: math.Inf(1),
	}
}

func (c *ModelCheckpoint) EndEpoch(epoch int, objective float64, params []float64) bool {
	if objective < c.bestLoss {
		c.bestLoss = objective
		if err := c.Model.Save(c.Filename); err != nil {
			c.Logger.Printf("error saving checkpoint: %v", err)
		} else {
			c.Logger.Printf("checkpoint saved: objective %.6f is new best", objective)
		}
	}
	return false
}

// Logger logs training progress.
type Logger struct {
	BaseCallback
	Interval int
	Out      *log.Logger
}

func (c Logger) EndEpoch(epoch int, objective float64, params []float64) bool {
	if c.Interval > 0 && epoch%c.Interval == 0 {
		out := c.Out
		if out == nil {
			out = log.Default()
		}
		out.Printf("epoch %d: objective = %.6f", epoch, objective)
	}
	return false
}
