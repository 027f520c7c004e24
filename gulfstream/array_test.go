package gulfstream

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ArrayTranspose(t *testing.T) {
	// (lon=3, lat=2, time=2) のファイル順
	a := NewArray(3, 2, 2)
	for i := 0; i < 3; i++ {
		for j := 0; j < 2; j++ {
			for k := 0; k < 2; k++ {
				a.Set(float64(100*i+10*j+k), i, j, k)
			}
		}
	}

	b, err := a.Transpose(1, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 2}, b.Shape)
	for i := 0; i < 3; i++ {
		for j := 0; j < 2; j++ {
			for k := 0; k < 2; k++ {
				assert.Equal(t, a.At(i, j, k), b.At(j, i, k))
			}
		}
	}

	// 元の配列は変わらない
	assert.Equal(t, []int{3, 2, 2}, a.Shape)
}

func Test_ArrayTransposeInvalid(t *testing.T) {
	a := NewArray(2, 2, 2)
	_, err := a.Transpose(0, 1)
	assert.True(t, errors.Is(err, ErrShapeMismatch))

	_, err = a.Transpose(0, 0, 1)
	assert.Error(t, err)
}

func Test_ArrayTimeSlice(t *testing.T) {
	a := NewArray(2, 3, 4)
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 4; k++ {
				a.Set(float64(i*100+j*10+k), i, j, k)
			}
		}
	}
	m, err := a.TimeSlice(2)
	require.NoError(t, err)
	r, c := m.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, 112.0, m.At(1, 1))
	assert.Equal(t, 4, a.Times())

	_, err = a.TimeSlice(4)
	assert.Error(t, err)
	_, err = a.TimeSlice(-1)
	assert.Error(t, err)

	_, err = NewArray(2, 3).TimeSlice(0)
	assert.True(t, errors.Is(err, ErrShapeMismatch))
}

func Test_ArraySqueezeMatrix(t *testing.T) {
	a := NewArray(1, 2, 3)
	a.Set(5, 0, 1, 2)
	m, err := a.Matrix()
	require.NoError(t, err)
	assert.Equal(t, 5.0, m.At(1, 2))

	_, err = NewArray(2, 2, 2).Matrix()
	assert.True(t, errors.Is(err, ErrShapeMismatch))
}

func Test_ArrayRange(t *testing.T) {
	a := &Array{Shape: []int{4}, Data: []float64{3, math.NaN(), -1, 2}}
	lo, hi := a.Range()
	assert.Equal(t, -1.0, lo)
	assert.Equal(t, 3.0, hi)
}
