package gulfstream

import (
	"errors"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot/plotter"
)

func Test_cellEdges(t *testing.T) {
	assert.Equal(t, []float64{-0.5, 0.5, 1.5, 2.5}, cellEdges([]float64{0, 1, 2}))
	assert.Equal(t, []float64{4.5, 5.5}, cellEdges([]float64{5}))
	assert.Empty(t, cellEdges(nil))
}

func Test_NewMesh(t *testing.T) {
	scale, err := NewColorScale("ocean", -1.2, 1.2)
	require.NoError(t, err)
	lon, lat := []float64{0, 1, 2}, []float64{10, 11}
	values := mat.NewDense(2, 3, []float64{0, 0.5, math.NaN(), 1, -1, 0})

	m, err := NewMesh(lonLatView(), lon, lat, values, scale)
	require.NoError(t, err)
	r, c := m.Corners.X.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 4, c)

	xmin, xmax, ymin, ymax := m.DataRange()
	assert.Equal(t, -0.5, xmin)
	assert.Equal(t, 2.5, xmax)
	assert.Equal(t, 9.5, ymin)
	assert.Equal(t, 11.5, ymax)

	_, err = NewMesh(lonLatView(), lon[:2], lat, values, scale)
	assert.True(t, errors.Is(err, ErrShapeMismatch))
}

func Test_NewHeatMap(t *testing.T) {
	scale, err := NewColorScale("hot", 0, 1.6)
	require.NoError(t, err)
	scale.Under = color.NRGBA{139, 69, 19, 255}
	values := mat.NewDense(2, 2, []float64{0, 0.5, math.NaN(), 2})

	hm, err := NewHeatMap([]float64{0, 1}, []float64{0, 1}, values, scale)
	require.NoError(t, err)
	assert.Equal(t, 0.0, hm.Min)
	assert.Equal(t, 1.6, hm.Max)
	assert.Equal(t, scale.Under, hm.Underflow)
	assert.Equal(t, color.Transparent, hm.NaN)

	// 格子の向き: 列が経度、行が緯度
	g := hm.GridXYZ
	c, r := g.Dims()
	assert.Equal(t, 2, c)
	assert.Equal(t, 2, r)
	assert.Equal(t, 0.5, g.Z(1, 0))

	var _ plotter.GridXYZ = lonLatGrid{}
}

func Test_NewIsolinesNaN(t *testing.T) {
	values := mat.NewDense(2, 2, []float64{0.1, math.NaN(), 0.9, 0.5})
	ct := NewIsolines([]float64{0, 1}, []float64{0, 1}, values, []float64{0.2, 0.4}, color.Black)
	assert.InDelta(t, -0.8, ct.GridXYZ.Z(1, 0), 1e-12)
	// 元の値は変更しない
	assert.True(t, math.IsNaN(values.At(0, 1)))
}

func Test_NewLandLayer(t *testing.T) {
	mask := LandMask(mat.NewDense(1, 2, []float64{math.NaN(), 0.3}))
	shade := namedColors["grey"]
	layer, err := NewLandLayer(lonLatView(), []float64{0, 1}, []float64{0}, mask, shade)
	require.NoError(t, err)

	clr, ok := layer.Scale.Color(mask.At(0, 0))
	assert.True(t, ok)
	assert.Equal(t, shade, clr)
	_, ok = layer.Scale.Color(mask.At(0, 1))
	assert.False(t, ok)
}

func Test_NewPlaceLayers(t *testing.T) {
	view, err := NewCornerView(Stereographic{Lon0: -65, Lat0: 40}, -80, 30, -50, 50)
	require.NoError(t, err)
	places := []Place{
		{Name: "New York", Lon: -74.00, Lat: 40.71},
		{Name: "Boston", Lon: -71.06, Lat: 42.36},
	}
	ps, err := NewPlaceLayers(view, places, 50000)
	require.NoError(t, err)
	require.Len(t, ps, 3)

	names, ok := ps[2].(*plotter.Labels)
	require.True(t, ok)
	assert.Equal(t, []string{"New York", "Boston"}, names.Labels)
	x, _, _ := view.Project(-74.00, 40.71)
	assert.InDelta(t, x-50000, names.XYs[0].X, 1e-6)

	ps, err = NewPlaceLayers(view, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, ps)
}

func Test_NewPolylines(t *testing.T) {
	ps, err := NewPolylines([][]Point{{{0, 0}, {1, 1}}, {{2, 2}, {3, 3}, {4, 5}}}, plotter.DefaultLineStyle)
	require.NoError(t, err)
	assert.Len(t, ps, 2)
}
