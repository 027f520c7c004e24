package gulfstream

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Synthesize(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Synthesize(SynthConfig{Dir: dir, Times: 3}))
	for _, name := range []string{"adt.mat", "uv.mat", "20171027_9.nc", "land.shp", "lakes.shp"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	vars, err := LoadVariables(filepath.Join(dir, "adt.mat"), "adt_all")
	require.NoError(t, err)
	adt := vars["adt_all"]
	assert.Equal(t, []int{121, 81, 3}, adt.Shape)

	// (-80°, 40°) は陸、(-60°, 35°) は海
	assert.True(t, math.IsNaN(adt.At(0, 40, 0)))
	assert.False(t, math.IsNaN(adt.At(80, 20, 0)))
	lo, hi := adt.Range()
	assert.GreaterOrEqual(t, lo, -0.2)
	assert.LessOrEqual(t, hi, 1.2)
}

func Test_SynthUVFollowsJet(t *testing.T) {
	lon, lat := []float64{-65}, Linspace(30, 50, 81)
	u, v := SynthUV(lon, lat, 1, nil)

	// 軸の上で最も速い
	best, at := 0.0, 0
	for j := range lat {
		if s := math.Hypot(u.At(0, j, 0), v.At(0, j, 0)); s > best {
			best, at = s, j
		}
	}
	assert.InDelta(t, 1.5, best, 0.02)
	assert.InDelta(t, jetAxis(-65, 0), lat[at], 0.25)
}

func Test_SynthesizeInvalid(t *testing.T) {
	assert.Error(t, Synthesize(SynthConfig{Dir: t.TempDir(), Times: 0}))
}
