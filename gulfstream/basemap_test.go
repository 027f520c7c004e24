package gulfstream

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot"
)

func Test_LatLonLabel(t *testing.T) {
	assert.Equal(t, "30°N", LatLabel(30))
	assert.Equal(t, "15°S", LatLabel(-15))
	assert.Equal(t, "0°", LatLabel(0))

	assert.Equal(t, "75°W", LonLabel(-75))
	assert.Equal(t, "80°W", LonLabel(280))
	assert.Equal(t, "30°E", LonLabel(30))
	assert.Equal(t, "180°", LonLabel(180))
	assert.Equal(t, "0°", LonLabel(360))
}

func Test_crossing(t *testing.T) {
	lines := [][]Point{{{-1, 5}, {1, 7}}}
	y, ok := crossing(lines, false, 0, 10)
	assert.True(t, ok)
	assert.InDelta(t, 6, y, 1e-12)

	_, ok = crossing(lines, false, 0, 5)
	assert.False(t, ok)
	_, ok = crossing(lines, true, 0, 10)
	assert.False(t, ok)
}

func Test_MapOutline(t *testing.T) {
	view, err := NewCornerView(Stereographic{Lon0: -65, Lat0: 40}, -80, 30, -50, 50)
	require.NoError(t, err)
	assert.Len(t, view.Outline(), 4)

	ortho, err := NewXYView(Orthographic{Lon0: 280, Lat0: 20}, -1e6, 0, EarthRadius, 2*EarthRadius/2.5)
	require.NoError(t, err)
	outline := ortho.Outline()
	assert.Len(t, outline, 360)
	// 地球の中心は (1e6, 0) にずれる
	assert.InDelta(t, EarthRadius+1e6, outline[0].X, 1e-6)
}

func Test_OverlayLayers(t *testing.T) {
	dir := t.TempDir()
	land, lakes := SynthLand()
	require.NoError(t, WriteRings(filepath.Join(dir, "land.shp"), land))
	require.NoError(t, WriteRings(filepath.Join(dir, "lakes.shp"), lakes))

	view, err := NewCornerView(Stereographic{Lon0: -65, Lat0: 40}, -80, 30, -50, 50)
	require.NoError(t, err)
	st := DefaultConfig().SSHVideo.Map.Style
	st.Coastline = filepath.Join(dir, "land.shp")
	st.LakeShapes = filepath.Join(dir, "lakes.shp")

	p := NewMapPlot("")
	ps, err := view.OverlayLayers(p, st)
	require.NoError(t, err)
	// 陸1 + 湖1 + 経緯線
	assert.GreaterOrEqual(t, len(ps), 2+len(st.Parallels)+len(st.Meridians))

	// 左端を横切る緯線に目盛りが付く
	ticks := p.Y.Tick.Marker.Ticks(0, view.Height)
	require.NotEmpty(t, ticks)
	labels := []string{}
	for _, tk := range ticks {
		labels = append(labels, tk.Label)
	}
	assert.Contains(t, labels, "36°N")

	xt := p.X.Tick.Marker.Ticks(0, view.Width)
	assert.NotEmpty(t, xt)
	var _ plot.Ticker = p.X.Tick.Marker
}

func Test_OverlayLayersMissingShapefile(t *testing.T) {
	view, err := NewCornerView(Stereographic{Lon0: -65, Lat0: 40}, -80, 30, -50, 50)
	require.NoError(t, err)
	st := MapStyle{
		Continents: "indianred",
		Coastline:  filepath.Join(t.TempDir(), "none.shp"),
		Parallels:  []float64{40},
	}
	ps, err := view.OverlayLayers(NewMapPlot(""), st)
	require.NoError(t, err)
	assert.Len(t, ps, 1)
}

func Test_BackgroundLayers(t *testing.T) {
	view, err := NewCornerView(Stereographic{Lon0: -65, Lat0: 40}, -80, 30, -50, 50)
	require.NoError(t, err)
	ps, err := view.BackgroundLayers(MapStyle{Boundary: "#004080"})
	require.NoError(t, err)
	assert.Len(t, ps, 1)

	ps, err = view.BackgroundLayers(MapStyle{})
	require.NoError(t, err)
	assert.Empty(t, ps)

	_, err = view.BackgroundLayers(MapStyle{Boundary: "not-a-color"})
	assert.Error(t, err)
}
