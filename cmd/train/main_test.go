package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanyaade-teachings/mlpack/internal/opt"
)

type recordingSaver struct {
	saved []string
}

func (r *recordingSaver) Save(filename string) error {
	r.saved = append(r.saved, filename)
	return nil
}

func TestTrainingCallbacksCheckpointFile(t *testing.T) {
	s := &recordingSaver{}
	callbacks, err := trainingCallbacks(s, 0, "", "best.bin", "final.bin")
	require.NoError(t, err)
	require.Len(t, callbacks, 2)

	mc, ok := callbacks[1].(*opt.ModelCheckpoint)
	require.True(t, ok)
	assert.Equal(t, "best.bin", mc.Filename)

	for _, c := range callbacks {
		c.EndEpoch(1, 0.5, nil)
	}
	assert.Equal(t, []string{"best.bin"}, s.saved)
}

func TestTrainingCallbacksOutOnly(t *testing.T) {
	callbacks, err := trainingCallbacks(&recordingSaver{}, 10, "history.csv", "", "final.bin")
	require.NoError(t, err)
	require.Len(t, callbacks, 2)
	assert.IsType(t, &opt.CSVLogger{}, callbacks[1])
}

func TestTrainingCallbacksSameFile(t *testing.T) {
	_, err := trainingCallbacks(&recordingSaver{}, 10, "", "model.bin", "model.bin")
	assert.ErrorContains(t, err, "model.bin")
}

func TestParseColumns(t *testing.T) {
	cols, err := parseColumns("4, 2")
	require.NoError(t, err)
	assert.Equal(t, []int{4, 2}, cols)

	_, err = parseColumns("4,x")
	assert.Error(t, err)
}
