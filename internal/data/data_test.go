package data

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestLoadCSV(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "data.csv")
	content := "f1,f2,l1,f3,l2\n1.0,2.0,0.0,3.0,1.0\n4.0,5.0,1.0,6.0,0.0\n"
	require.NoError(t, os.WriteFile(filename, []byte(content), 0o644))

	// Responses follow the order of labelCols.
	dataset, err := LoadCSV(filename, []int{4, 2}, true)
	require.NoError(t, err)
	assert.Equal(t, 2, dataset.Len())

	assert.True(t, mat.Equal(mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6}), dataset.Predictors))
	assert.True(t, mat.Equal(mat.NewDense(2, 2, []float64{1, 0, 0, 1}), dataset.Responses))
}

func TestReadCSVErrors(t *testing.T) {
	cases := map[string]struct {
		content   string
		labelCols []int
		header    bool
	}{
		"empty":        {"", []int{0}, false},
		"header only":  {"a,b\n", []int{1}, true},
		"ragged":       {"1,2\n1,2,3\n", []int{1}, false},
		"bad label":    {"1,2\n", []int{2}, false},
		"all labels":   {"1,2\n", []int{0, 1}, false},
		"no labels":    {"1,2\n", nil, false},
		"duplicate":    {"1,2,3\n", []int{1, 1}, false},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tc.content), tc.labelCols, tc.header)
			assert.Error(t, err)
		})
	}
}

func TestReadCSVCategorical(t *testing.T) {
	content := "colour,size,label\nred,1.5,yes\nblue,2,no\nred,3,yes\ngreen,4,no\n"
	dataset, err := ReadCSV(strings.NewReader(content), []int{2}, true)
	require.NoError(t, err)

	assert.True(t, mat.Equal(mat.NewDense(4, 2, []float64{0, 1.5, 1, 2, 0, 3, 2, 4}), dataset.Predictors))
	assert.True(t, mat.Equal(mat.NewDense(4, 1, []float64{0, 1, 0, 1}), dataset.Responses))

	m := dataset.Mapper
	require.NotNil(t, m)
	assert.Equal(t, 3, m.Dimensionality())
	assert.Equal(t, Categorical, m.Type(0))
	assert.Equal(t, Numeric, m.Type(1))
	assert.Equal(t, Categorical, m.Type(2))
	assert.Equal(t, 3, m.NumMappings(0))
	assert.Equal(t, 0, m.NumMappings(1))

	s, err := m.UnmapString(2, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "green", s)
	v, err := m.UnmapValue("no", 2)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)

	// Splits keep the encoding of the file they came from.
	train, _ := dataset.Split(0.5)
	assert.Same(t, m, train.Mapper)
}

func TestReadCSVMixedColumn(t *testing.T) {
	// One non-numeric cell makes the whole column categorical, numbers
	// included.
	dataset, err := ReadCSV(strings.NewReader("7,1\nx,0\n7,1\n"), []int{1}, false)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 0}, mat.Col(nil, 0, dataset.Predictors))

	s, err := dataset.Mapper.UnmapString(0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "7", s)
}

func TestLoadCSVMissingFile(t *testing.T) {
	_, err := LoadCSV(filepath.Join(t.TempDir(), "missing.csv"), []int{0}, false)
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	d := &Dataset{
		Predictors: mat.NewDense(3, 2, []float64{0, 5, 5, 5, 10, 5}),
		Responses:  mat.NewDense(3, 1, nil),
	}
	d.Normalize()
	assert.Equal(t, []float64{0, 0, 0.5, 0, 1, 0}, d.Predictors.RawMatrix().Data)
}

func TestSplit(t *testing.T) {
	d := &Dataset{
		Predictors: mat.NewDense(4, 1, []float64{1, 2, 3, 4}),
		Responses:  mat.NewDense(4, 1, []float64{10, 20, 30, 40}),
	}

	train, test := d.Split(0.75)
	assert.Equal(t, 3, train.Len())
	assert.Equal(t, 1, test.Len())
	assert.Equal(t, 40.0, test.Responses.At(0, 0))

	// Views share storage with the original.
	train.Predictors.Set(0, 0, 100)
	assert.Equal(t, 100.0, d.Predictors.At(0, 0))

	all, none := d.Split(1)
	assert.Same(t, d, all)
	assert.Zero(t, none.Len())

	none, all = d.Split(0)
	assert.Zero(t, none.Len())
	assert.Same(t, d, all)

	train, test = d.Split(0.1)
	assert.Zero(t, train.Len())
	assert.Equal(t, 4, test.Len())
}
