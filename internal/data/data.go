// Package data loads tabular datasets into matrices with one sample per row.
package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/mat"
)

// Dataset holds matching predictor and response rows.
type Dataset struct {
	Predictors *mat.Dense
	Responses  *mat.Dense

	// Mapper holds the column types and category encodings of the source
	// file, indexed by file column. Nil for datasets not read from CSV.
	Mapper *Mapper
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	if d.Predictors == nil {
		return 0
	}
	r, _ := d.Predictors.Dims()
	return r
}

// LoadCSV loads data from a CSV file.
// labelCols specifies the indices of columns to be used as responses, in
// that order. All other columns are used as predictors.
// hasHeader skips the first line if true.
// A column holding any value that is not a number is categorical: its values
// are replaced by category indices, recorded in the dataset's Mapper.
func LoadCSV(filename string, labelCols []int, hasHeader bool) (*Dataset, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ReadCSV(file, labelCols, hasHeader)
}

// ReadCSV is LoadCSV for an io.Reader.
func ReadCSV(r io.Reader, labelCols []int, hasHeader bool) (*Dataset, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("csv file is empty")
	}

	startRow := 0
	if hasHeader {
		startRow = 1
	}

	if len(records) <= startRow {
		return nil, fmt.Errorf("csv file has no data rows")
	}

	numCols := len(records[0])
	labelIndex := make(map[int]int, len(labelCols))
	for i, col := range labelCols {
		if col < 0 || col >= numCols {
			return nil, fmt.Errorf("label column %d outside %d columns", col, numCols)
		}
		if _, dup := labelIndex[col]; dup {
			return nil, fmt.Errorf("label column %d given twice", col)
		}
		labelIndex[col] = i
	}
	numFeatures := numCols - len(labelCols)
	if numFeatures == 0 || len(labelCols) == 0 {
		return nil, fmt.Errorf("need at least one predictor and one response column, have %d and %d",
			numFeatures, len(labelCols))
	}

	mapper := NewMapper(numCols)
	for i := startRow; i < len(records); i++ {
		if len(records[i]) != numCols {
			return nil, fmt.Errorf("inconsistent number of columns at row %d", i)
		}
		for j, valStr := range records[i] {
			mapper.Observe(valStr, j)
		}
	}

	numSamples := len(records) - startRow
	predictors := mat.NewDense(numSamples, numFeatures, nil)
	responses := mat.NewDense(numSamples, len(labelCols), nil)

	for i := startRow; i < len(records); i++ {
		record := records[i]
		row := i - startRow
		feature := 0
		for j, valStr := range record {
			val, err := mapper.Map(valStr, j)
			if err != nil {
				return nil, fmt.Errorf("failed to parse value at row %d, col %d: %w", i, j, err)
			}

			if k, ok := labelIndex[j]; ok {
				responses.Set(row, k, val)
			} else {
				predictors.Set(row, feature, val)
				feature++
			}
		}
	}

	return &Dataset{
		Predictors: predictors,
		Responses:  responses,
		Mapper:     mapper,
	}, nil
}

// Normalize performs min-max normalization on the predictors, column by
// column. Constant columns become zero.
func (d *Dataset) Normalize() {
	if d.Len() == 0 {
		return
	}

	rows, cols := d.Predictors.Dims()
	for j := 0; j < cols; j++ {
		col := mat.Col(nil, j, d.Predictors)
		lo, hi := col[0], col[0]
		for _, v := range col {
			lo = min(lo, v)
			hi = max(hi, v)
		}

		diff := hi - lo
		for i := 0; i < rows; i++ {
			if diff != 0 {
				d.Predictors.Set(i, j, (col[i]-lo)/diff)
			} else {
				d.Predictors.Set(i, j, 0)
			}
		}
	}
}

// Split splits the dataset into two based on the given ratio (0.0 to 1.0).
// Both halves are row views of d. A side with no rows has nil matrices.
func (d *Dataset) Split(ratio float64) (*Dataset, *Dataset) {
	if ratio <= 0 {
		return &Dataset{}, d
	}
	if ratio >= 1 {
		return d, &Dataset{}
	}

	n := d.Len()
	splitIdx := int(float64(n) * ratio)
	return d.rows(0, splitIdx), d.rows(splitIdx, n)
}

func (d *Dataset) rows(begin, end int) *Dataset {
	if begin >= end {
		return &Dataset{}
	}
	_, pc := d.Predictors.Dims()
	_, rc := d.Responses.Dims()
	return &Dataset{
		Predictors: d.Predictors.Slice(begin, end, 0, pc).(*mat.Dense),
		Responses:  d.Responses.Slice(begin, end, 0, rc).(*mat.Dense),
		Mapper:     d.Mapper,
	}
}
