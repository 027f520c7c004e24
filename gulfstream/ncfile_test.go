package gulfstream

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NetCDFRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sst.nc")
	a := NewArray(1, 2, 3)
	for k := range a.Data {
		a.Data[k] = 280 + float64(k)
	}
	cube, err := float32Cube(a)
	require.NoError(t, err)

	require.NoError(t, WriteNetCDF(path, map[string]NCVar{
		"sst": {
			Values:     cube,
			Dimensions: []string{"time", "latitude", "longitude"},
			Attributes: map[string]interface{}{"units": "K"},
		},
		"longitude": {Values: []float64{10, 20, 30}, Dimensions: []string{"longitude"}},
		"latitude":  {Values: []float64{-5, 5}, Dimensions: []string{"latitude"}},
	}))

	vars, err := LoadVariables(path, "sst", "longitude", "latitude")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, vars["sst"].Shape)
	assert.Equal(t, a.Data, vars["sst"].Data)
	assert.Equal(t, []float64{10, 20, 30}, vars["longitude"].Data)

	m, err := vars["sst"].Squeeze().Matrix()
	require.NoError(t, err)
	assert.Equal(t, 285.0, m.At(1, 2))

	_, err = ReadNetCDF(path, "salinity")
	assert.True(t, errors.Is(err, ErrVariableNotFound))
}

func Test_FlattenRagged(t *testing.T) {
	_, _, err := flatten([][]float64{{1, 2}, {3}})
	assert.True(t, errors.Is(err, ErrShapeMismatch))

	data, shape, err := flatten([]int16{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []int{3}, shape)
	assert.Equal(t, []float64{1, 2, 3}, data)
}
