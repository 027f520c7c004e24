package gulfstream

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_OrthographicCenter(t *testing.T) {
	p := Orthographic{Lon0: 280, Lat0: 20}
	x, y, ok := p.Forward(280, 20)
	assert.True(t, ok)
	assert.InDelta(t, 0, x, 1e-6)
	assert.InDelta(t, 0, y, 1e-6)

	// 北極は中心より上
	_, y, ok = p.Forward(0, 90)
	assert.True(t, ok)
	assert.InDelta(t, EarthRadius*math.Cos(degreeToRad(20)), y, 1)

	// 裏側は見えない
	_, _, ok = p.Forward(100, -20)
	assert.False(t, ok)
}

func Test_StereographicCorners(t *testing.T) {
	view, err := NewCornerView(Stereographic{Lon0: -65, Lat0: 40}, -80, 30, -50, 50)
	require.NoError(t, err)
	x, y, ok := view.Project(-80, 30)
	assert.True(t, ok)
	assert.InDelta(t, 0, x, 1e-6)
	assert.InDelta(t, 0, y, 1e-6)

	x, y, _ = view.Project(-50, 50)
	assert.InDelta(t, view.Width, x, 1e-6)
	assert.InDelta(t, view.Height, y, 1e-6)

	// 中心は範囲内
	x, y, _ = view.Project(-65, 40)
	assert.True(t, view.Contains(x, y))

	_, err = NewCornerView(Stereographic{Lon0: -65, Lat0: 40}, -50, 50, -80, 30)
	assert.Error(t, err)
}

func Test_NewProjection(t *testing.T) {
	p, err := NewProjection("ortho", 280, 20)
	require.NoError(t, err)
	assert.Equal(t, Orthographic{Lon0: 280, Lat0: 20}, p)

	p, err = NewProjection("", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, PlateCarree{}, p)

	_, err = NewProjection("merc", 0, 0)
	assert.Error(t, err)
}

func Test_ProjectGrid(t *testing.T) {
	view, err := NewXYView(Orthographic{Lon0: 0, Lat0: 0}, -EarthRadius, -EarthRadius, EarthRadius, EarthRadius)
	require.NoError(t, err)
	g := view.ProjectGrid([]float64{0, 180}, []float64{0})
	assert.True(t, g.Visible[0][0])
	assert.False(t, g.Visible[0][1])
	assert.InDelta(t, EarthRadius, g.X.At(0, 0), 1e-6)
}

func Test_PolylineSplits(t *testing.T) {
	view, err := NewXYView(Orthographic{Lon0: 0, Lat0: 0}, -EarthRadius, -EarthRadius, EarthRadius, EarthRadius)
	require.NoError(t, err)

	// 赤道を一周すると裏側で切れる
	lines := view.Parallel(0, -180, 180)
	require.NotEmpty(t, lines)
	for _, l := range lines {
		assert.GreaterOrEqual(t, len(l), 2)
	}

	lines = view.Meridian(0, -60, 60)
	require.Len(t, lines, 1)
	assert.Len(t, lines[0], 241)
}
