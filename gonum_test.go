package clustergo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestFromDense(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})

	data, rows, cols := FromDense(m)
	assert.Equal(t, 2, rows)
	assert.Equal(t, 3, cols)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, data)
}

func TestCentroidsDense(t *testing.T) {
	km, err := New[float64](2)
	require.NoError(t, err)

	_, err = CentroidsDense(km)
	assert.ErrorIs(t, err, ErrNotFitted)

	data, rows, cols := FromDense(mat.NewDense(6, 1, []float64{0, 0, 0, 10, 10, 10}))
	require.NoError(t, km.SetData(data, rows, cols, cols, RowMajor))
	require.NoError(t, km.SetInitialCentroids([]float64{0, 10}, 1, RowMajor))
	_, err = km.Fit(context.Background())
	require.NoError(t, err)

	dense, err := CentroidsDense(km)
	require.NoError(t, err)
	r, c := dense.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 1, c)
	assert.Equal(t, 0.0, dense.At(0, 0))
	assert.Equal(t, 10.0, dense.At(1, 0))
}
