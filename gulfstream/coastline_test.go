package gulfstream

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_RingsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "land.shp")
	land, lakes := SynthLand()
	require.NoError(t, WriteRings(path, append(land, lakes...)))

	rings, err := LoadRings(path)
	require.NoError(t, err)
	require.Len(t, rings, 2)
	assert.Equal(t, "North America", rings[0].Name)
	assert.Equal(t, len(land[0].Lon), len(rings[0].Lon))
	assert.InDelta(t, -74.0, rings[0].Lon[4], 1e-9)
	assert.InDelta(t, 40.5, rings[0].Lat[4], 1e-9)
}

func Test_LoadRingsTruncated(t *testing.T) {
	// 最後のポリゴンの途中で切れたファイルはエラー
	path := filepath.Join(t.TempDir(), "land.shp")
	land, lakes := SynthLand()
	require.NoError(t, WriteRings(path, append(land, lakes...)))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b[:len(b)-24], 0o644))

	_, err = LoadRings(path)
	assert.Error(t, err)
}

func Test_RingContains(t *testing.T) {
	land, lakes := SynthLand()
	assert.True(t, land[0].Contains(-90, 40))
	assert.False(t, land[0].Contains(-60, 35))
	assert.True(t, lakes[0].Contains(-85, 44))
	assert.False(t, lakes[0].Contains(-80, 44))
}

func Test_RingLayersHidden(t *testing.T) {
	view, err := NewCornerView(Stereographic{Lon0: -65, Lat0: 40}, -80, 30, -50, 50)
	require.NoError(t, err)
	land, _ := SynthLand()
	ps, err := NewRingLayers(view, land, namedColors["indianred"])
	require.NoError(t, err)
	assert.Len(t, ps, 1)

	// 正射図法で裏側になる輪郭は描かない
	ortho, err := NewXYView(Orthographic{Lon0: 100, Lat0: 0}, -EarthRadius, -EarthRadius, EarthRadius, EarthRadius)
	require.NoError(t, err)
	ps, err = NewRingLayers(ortho, land, namedColors["indianred"])
	require.NoError(t, err)
	assert.Empty(t, ps)
}
