package opt

import (
	"encoding/csv"
	"log"
	"math"
	"os"
	"strconv"
	"time"
)

// historyHeader names the columns CSVLogger writes, one row per epoch.
var historyHeader = []string{"epoch", "steps", "objective", "best_objective", "elapsed_seconds"}

// CSVLogger records the training history of a run in a CSV file: the epoch,
// the optimizer steps taken during it, its objective, the best objective so
// far and the wall time since the run began.
//
// Failures to open or write the file are reported through Logger and do not
// stop the run.
type CSVLogger struct {
	BaseCallback
	Filename string
	// Append adds rows to an existing history instead of truncating it. The
	// header is written only to an empty file.
	Append bool
	Logger *log.Logger

	file  *os.File
	w     *csv.Writer
	start time.Time
	steps int
	best  float64
}

// NewCSVLogger returns a CSVLogger writing to filename.
func NewCSVLogger(filename string, append bool) *CSVLogger {
	return &CSVLogger{
		Filename: filename,
		Append:   append,
		Logger:   log.Default(),
	}
}

func (c *CSVLogger) BeginOptimization(params []float64) {
	c.start = time.Now()
	c.steps = 0
	c.best = math.Inf(1)
	if err := c.open(); err != nil {
		c.logger().Printf("CSVLogger: %v", err)
	}
}

func (c *CSVLogger) StepTaken(params []float64, objective float64) bool {
	c.steps++
	return false
}

func (c *CSVLogger) EndEpoch(epoch int, objective float64, params []float64) bool {
	if c.w == nil {
		return false
	}
	c.best = math.Min(c.best, objective)
	c.row(
		strconv.Itoa(epoch),
		strconv.Itoa(c.steps),
		strconv.FormatFloat(objective, 'f', 6, 64),
		strconv.FormatFloat(c.best, 'f', 6, 64),
		strconv.FormatFloat(time.Since(c.start).Seconds(), 'f', 2, 64),
	)
	c.steps = 0
	return false
}

func (c *CSVLogger) EndOptimization(params []float64) {
	if c.file == nil {
		return
	}
	c.w.Flush()
	if err := c.file.Close(); err != nil {
		c.logger().Printf("CSVLogger: closing %s: %v", c.Filename, err)
	}
	c.file, c.w = nil, nil
}

func (c *CSVLogger) open() error {
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if c.Append {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	file, err := os.OpenFile(c.Filename, flags, 0o644)
	if err != nil {
		return err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return err
	}

	c.file = file
	c.w = csv.NewWriter(file)
	if info.Size() == 0 {
		c.row(historyHeader...)
	}
	return nil
}

// row writes and flushes one record.
func (c *CSVLogger) row(fields ...string) {
	if err := c.w.Write(fields); err != nil {
		c.logger().Printf("CSVLogger: writing %s: %v", c.Filename, err)
		return
	}
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		c.logger().Printf("CSVLogger: writing %s: %v", c.Filename, err)
	}
}

func (c *CSVLogger) logger() *log.Logger {
	if c.Logger == nil {
		return log.Default()
	}
	return c.Logger
}
