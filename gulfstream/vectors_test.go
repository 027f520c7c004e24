package gulfstream

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg/draw"
)

// 一様な東向きの流れ
func uniformFlow(nx, ny int, u, v float64) (lon, lat []float64, um, vm, spd *mat.Dense) {
	lon, lat = Linspace(-80, -50, nx), Linspace(30, 50, ny)
	um, vm, spd = mat.NewDense(ny, nx, nil), mat.NewDense(ny, nx, nil), mat.NewDense(ny, nx, nil)
	for i := 0; i < ny; i++ {
		for j := 0; j < nx; j++ {
			um.Set(i, j, u)
			vm.Set(i, j, v)
			spd.Set(i, j, math.Hypot(u, v))
		}
	}
	return lon, lat, um, vm, spd
}

func Test_QuiverAutoScale(t *testing.T) {
	lon, lat, u, v, _ := uniformFlow(5, 4, 1, 0)
	q, err := NewQuiver(lon, lat, u, v, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, q.Step)

	// 20 本 (√20 < 10) で平均の長さ 1
	assert.InDelta(t, 30/(1.8*10), q.autoScale(), 1e-12)

	_, err = NewQuiver(lon, lat[:3], u, v, 1)
	assert.Error(t, err)
}

func Test_QuiverAllNaN(t *testing.T) {
	lon, lat, u, v, _ := uniformFlow(3, 3, math.NaN(), 0)
	q, err := NewQuiver(lon, lat, u, v, 1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, q.autoScale())
}

func Test_StreamplotUniform(t *testing.T) {
	lon, lat, u, v, spd := uniformFlow(31, 21, 1, 0)
	scale, err := NewColorScale("hot", 0, 1.6)
	require.NoError(t, err)

	sp, err := NewStreamplot(lon, lat, u, v, spd, StreamDensity{X: 0.3, Y: 0.3}, scale)
	require.NoError(t, err)
	require.NotEmpty(t, sp.Lines)

	// 東向きの流れでは流線は緯度一定で経度が増える
	for _, line := range sp.Lines {
		for k := 1; k < len(line); k++ {
			assert.InDelta(t, line[0].Y, line[k].Y, 1e-9)
			assert.Greater(t, line[k].X, line[k-1].X)
			assert.InDelta(t, 1.0, line[k].Speed, 1e-9)
		}
	}
}

func Test_StreamplotDeterministic(t *testing.T) {
	lon, lat := Linspace(-80, -50, 41), Linspace(30, 50, 31)
	u, v := mat.NewDense(31, 41, nil), mat.NewDense(31, 41, nil)
	spd := mat.NewDense(31, 41, nil)
	for i := range lat {
		for j := range lon {
			// 渦
			x, y := lon[j]+65, lat[i]-40
			u.Set(i, j, -y)
			v.Set(i, j, x)
			spd.Set(i, j, math.Hypot(x, y))
		}
	}
	scale, err := NewColorScale("hot", 0, 1.6)
	require.NoError(t, err)

	a, err := NewStreamplot(lon, lat, u, v, spd, StreamDensity{X: 0.5, Y: 0.5}, scale)
	require.NoError(t, err)
	b, err := NewStreamplot(lon, lat, u, v, spd, StreamDensity{X: 0.5, Y: 0.5}, scale)
	require.NoError(t, err)
	assert.Equal(t, a.Lines, b.Lines)
}

func Test_StreamplotLand(t *testing.T) {
	lon, lat, u, v, spd := uniformFlow(11, 11, math.NaN(), math.NaN())
	scale, err := NewColorScale("hot", 0, 1.6)
	require.NoError(t, err)
	sp, err := NewStreamplot(lon, lat, u, v, spd, StreamDensity{X: 1, Y: 1}, scale)
	require.NoError(t, err)
	assert.Empty(t, sp.Lines)
}

func Test_streamMask(t *testing.T) {
	m := newStreamMask(3, 3, 7, 7)
	assert.Equal(t, 2.0, m.cellW)
	mx, my := m.cell(5.9, 6)
	assert.Equal(t, 2, mx)
	assert.Equal(t, 2, my)

	m.start(0, 0)
	assert.True(t, m.visit(1, 0))
	assert.True(t, m.visit(1, 0))
	m.undo()
	assert.False(t, m.used[0][1])
	assert.False(t, m.used[0][0])

	m.start(0, 0)
	m.commit()
	m.start(1, 1)
	assert.False(t, m.visit(0, 0))
}

func Test_VectorLayersDraw(t *testing.T) {
	lon, lat, u, v, spd := uniformFlow(9, 7, 0.5, 0.5)
	scale, err := NewColorScale("hot", 0, 1.6)
	require.NoError(t, err)
	q, err := NewQuiver(lon, lat, u, v, 2)
	require.NoError(t, err)
	q.C, q.Colors = spd, scale
	sp, err := NewStreamplot(lon, lat, u, v, spd, StreamDensity{X: 0.2, Y: 0.2}, scale)
	require.NoError(t, err)

	fig := Figure{Width: 2, Height: 2, DPI: 30}
	_, err = fig.Render(func(dc draw.Canvas) error {
		p := plot.New()
		p.Add(q, sp)
		p.Draw(dc)
		return nil
	})
	assert.NoError(t, err)
}
