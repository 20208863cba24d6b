package data

import (
	"errors"
	"fmt"
	"strconv"
)

// Datatype is the kind of values a dimension holds.
type Datatype int

const (
	Numeric Datatype = iota
	Categorical
)

func (t Datatype) String() string {
	switch t {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	}
	return fmt.Sprintf("Datatype(%d)", int(t))
}

// ErrUnknownValue is returned when a string or value has no mapping in a
// dimension.
var ErrUnknownValue = errors.New("data: unknown value")

// Mapper records, per dimension, whether values are numeric or categorical,
// and for categorical dimensions the string each index stands for.
// Categories are numbered 0, 1, 2... in order of first appearance.
type Mapper struct {
	types  []Datatype
	values []map[string]float64
	labels []map[float64][]string
}

// NewMapper returns a mapper with dims numeric dimensions.
func NewMapper(dims int) *Mapper {
	return &Mapper{
		types:  make([]Datatype, dims),
		values: make([]map[string]float64, dims),
		labels: make([]map[float64][]string, dims),
	}
}

// Dimensionality returns the number of dimensions tracked.
func (m *Mapper) Dimensionality() int { return len(m.types) }

// Type returns the type of dimension dim.
func (m *Mapper) Type(dim int) Datatype {
	m.check(dim)
	return m.types[dim]
}

// SetType overrides the type of dimension dim.
func (m *Mapper) SetType(dim int, t Datatype) {
	m.check(dim)
	m.types[dim] = t
}

// NumMappings returns how many distinct strings dimension dim has mapped.
func (m *Mapper) NumMappings(dim int) int {
	m.check(dim)
	return len(m.values[dim])
}

// Observe is the type-detection pass: a string that does not parse as a
// number makes its dimension categorical.
func (m *Mapper) Observe(s string, dim int) {
	m.check(dim)
	if m.types[dim] == Categorical {
		return
	}
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		m.types[dim] = Categorical
	}
}

// MapString returns the index of s in dimension dim, assigning the next free
// index if s is new. The dimension becomes categorical.
func (m *Mapper) MapString(s string, dim int) float64 {
	m.check(dim)
	m.types[dim] = Categorical
	if v, ok := m.values[dim][s]; ok {
		return v
	}
	if m.values[dim] == nil {
		m.values[dim] = make(map[string]float64)
		m.labels[dim] = make(map[float64][]string)
	}
	v := float64(len(m.values[dim]))
	m.values[dim][s] = v
	m.labels[dim][v] = append(m.labels[dim][v], s)
	return v
}

// Map converts one cell: numeric dimensions are parsed, categorical ones are
// mapped with MapString.
func (m *Mapper) Map(s string, dim int) (float64, error) {
	if m.Type(dim) == Categorical {
		return m.MapString(s, dim), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("dimension %d is numeric: %w", dim, err)
	}
	return v, nil
}

// UnmapValue returns the index s was mapped to in dimension dim.
func (m *Mapper) UnmapValue(s string, dim int) (float64, error) {
	m.check(dim)
	v, ok := m.values[dim][s]
	if !ok {
		return 0, fmt.Errorf("string %q in dimension %d: %w", s, dim, ErrUnknownValue)
	}
	return v, nil
}

// NumUnmappings returns how many strings map to v in dimension dim.
func (m *Mapper) NumUnmappings(v float64, dim int) int {
	m.check(dim)
	return len(m.labels[dim][v])
}

// UnmapString returns the index-th string mapped to v in dimension dim.
func (m *Mapper) UnmapString(v float64, dim, index int) (string, error) {
	m.check(dim)
	strs, ok := m.labels[dim][v]
	if !ok {
		return "", fmt.Errorf("value %v in dimension %d: %w", v, dim, ErrUnknownValue)
	}
	if index < 0 || index >= len(strs) {
		return "", fmt.Errorf("value %v in dimension %d has %d unmappings, asked for %d: %w",
			v, dim, len(strs), index, ErrUnknownValue)
	}
	return strs[index], nil
}

func (m *Mapper) check(dim int) {
	if dim < 0 || dim >= len(m.types) {
		panic(fmt.Sprintf("data: dimension %d outside %d dimensions", dim, len(m.types)))
	}
}
