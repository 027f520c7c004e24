package gulfstream

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	_ plot.Plotter    = (*Mesh)(nil)
	_ plot.DataRanger = (*Mesh)(nil)
	_ plot.Plotter    = (*Quiver)(nil)
	_ plot.Plotter    = (*Streamplot)(nil)
	_ plot.Plotter    = (*Surface3D)(nil)
)

// セル中心の座標列からセル境界の座標列を作ります。
func cellEdges(c []float64) []float64 {
	n := len(c)
	e := make([]float64, n+1)
	switch n {
	case 0:
		return e[:0]
	case 1:
		e[0], e[1] = c[0]-0.5, c[0]+0.5
		return e
	}
	e[0] = c[0] - (c[1]-c[0])/2
	for i := 1; i < n; i++ {
		e[i] = (c[i-1] + c[i]) / 2
	}
	e[n] = c[n-1] + (c[n-1]-c[n-2])/2
	return e
}

// 投影した格子のセルを塗る (pcolor / contourf)
type Mesh struct {
	Corners ProjectedGrid // (rows+1) x (cols+1)
	Values  *mat.Dense    // rows x cols
	Scale   ColorScale
}

// 経度緯度のセル中心 lon, lat の値 values を view で投影した Mesh を作ります。
func NewMesh(view *MapView, lon, lat []float64, values *mat.Dense, scale ColorScale) (*Mesh, error) {
	r, c := values.Dims()
	if r != len(lat) || c != len(lon) {
		return nil, fmt.Errorf("mesh: values %dx%d vs %d lat, %d lon: %w", r, c, len(lat), len(lon), ErrShapeMismatch)
	}
	return &Mesh{
		Corners: view.ProjectGrid(cellEdges(lon), cellEdges(lat)),
		Values:  values,
		Scale:   scale,
	}, nil
}

func (m *Mesh) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	rows, cols := m.Values.Dims()
	vis := m.Corners.Visible
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if !(vis[i][j] && vis[i][j+1] && vis[i+1][j] && vis[i+1][j+1]) {
				continue
			}
			clr, ok := m.Scale.Color(m.Values.At(i, j))
			if !ok {
				continue
			}
			pts := []vg.Point{
				m.corner(trX, trY, i, j),
				m.corner(trX, trY, i, j+1),
				m.corner(trX, trY, i+1, j+1),
				m.corner(trX, trY, i+1, j),
			}
			c.FillPolygon(clr, c.ClipPolygonXY(pts))
		}
	}
}

func (m *Mesh) corner(trX, trY func(float64) vg.Length, i, j int) vg.Point {
	return vg.Point{X: trX(m.Corners.X.At(i, j)), Y: trY(m.Corners.Y.At(i, j))}
}

func (m *Mesh) DataRange() (xmin, xmax, ymin, ymax float64) {
	return gridRange(m.Corners)
}

func gridRange(g ProjectedGrid) (xmin, xmax, ymin, ymax float64) {
	xmin, ymin = math.Inf(1), math.Inf(1)
	xmax, ymax = math.Inf(-1), math.Inf(-1)
	r, c := g.X.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if !g.Visible[i][j] {
				continue
			}
			xmin = math.Min(xmin, g.X.At(i, j))
			xmax = math.Max(xmax, g.X.At(i, j))
			ymin = math.Min(ymin, g.Y.At(i, j))
			ymax = math.Max(ymax, g.Y.At(i, j))
		}
	}
	return xmin, xmax, ymin, ymax
}

// 規則格子 (経度緯度) を plotter.GridXYZ として見せるための型
type lonLatGrid struct {
	lon, lat []float64
	values   *mat.Dense
}

func (g lonLatGrid) Dims() (c, r int)   { return len(g.lon), len(g.lat) }
func (g lonLatGrid) Z(c, r int) float64 { return g.values.At(r, c) }
func (g lonLatGrid) X(c int) float64    { return g.lon[c] }
func (g lonLatGrid) Y(r int) float64    { return g.lat[r] }

// 規則格子の pcolor (plotter.HeatMap)
func NewHeatMap(lon, lat []float64, values *mat.Dense, scale ColorScale) (*plotter.HeatMap, error) {
	r, c := values.Dims()
	if r != len(lat) || c != len(lon) {
		return nil, fmt.Errorf("heatmap: values %dx%d vs %d lat, %d lon: %w", r, c, len(lat), len(lon), ErrShapeMismatch)
	}
	pal := scale.Map.Palette(255)
	hm := plotter.NewHeatMap(lonLatGrid{lon, lat, values}, pal)
	hm.Min, hm.Max = scale.Min, scale.Max
	colors := pal.Colors()
	hm.Underflow, hm.Overflow = colors[0], colors[len(colors)-1]
	if scale.Under != nil {
		hm.Underflow = scale.Under
	}
	if scale.Over != nil {
		hm.Overflow = scale.Over
	}
	hm.NaN = color.Transparent
	return hm, nil
}

// 規則格子の等値線 (plotter.Contour)
func NewIsolines(lon, lat []float64, values *mat.Dense, levels []float64, clr color.Color) *plotter.Contour {
	// NaN は等値線の計算を壊すので範囲外の値に置き換える
	lo := math.Inf(1)
	for _, l := range levels {
		lo = math.Min(lo, l)
	}
	clean := mat.DenseCopyOf(values)
	clean.Apply(func(_, _ int, v float64) float64 {
		if math.IsNaN(v) {
			return lo - 1
		}
		return v
	}, clean)

	ct := plotter.NewContour(lonLatGrid{lon, lat, clean}, levels, nil)
	ct.LineStyles = []draw.LineStyle{{Color: clr, Width: vg.Points(0.5)}}
	return ct
}

// 陸地マスク (1 のセル) を一色で塗る
func NewLandLayer(view *MapView, lon, lat []float64, mask *mat.Dense, shade color.Color) (*Mesh, error) {
	scale := ColorScale{Map: constantMap{shade}, Min: 0, Max: 2}
	return NewMesh(view, lon, lat, mask, scale)
}

// 一色だけのカラーマップ
type constantMap struct {
	c color.Color
}

func (m constantMap) At(float64) (color.Color, error) { return m.c, nil }
func (constantMap) Max() float64                      { return 2 }
func (constantMap) SetMax(float64)                    {}
func (constantMap) Min() float64                      { return 0 }
func (constantMap) SetMin(float64)                    {}
func (constantMap) Alpha() float64                    { return 1 }
func (constantMap) SetAlpha(float64)                  {}
func (m constantMap) Palette(n int) palette.Palette {
	return sampledPalette(m, n)
}

// 折れ線群 (緯線・経線・海岸線)
func NewPolylines(lines [][]Point, style draw.LineStyle) ([]plot.Plotter, error) {
	ps := make([]plot.Plotter, 0, len(lines))
	for _, line := range lines {
		xys := make(plotter.XYs, len(line))
		for i, p := range line {
			xys[i].X, xys[i].Y = p.X, p.Y
		}
		l, err := plotter.NewLine(xys)
		if err != nil {
			return nil, err
		}
		l.LineStyle = style
		ps = append(ps, l)
	}
	return ps, nil
}

// 地名の表示
type Place struct {
	Name string  `yaml:"name"`
	Lon  float64 `yaml:"lon"`
	Lat  float64 `yaml:"lat"`
}

// 地点の丸印と地名
//
// Note:
//
//	地名は地点から dx (表示座標の単位) だけ左にずらして右寄せで描きます。
func NewPlaceLayers(view *MapView, places []Place, dx float64) ([]plot.Plotter, error) {
	if len(places) == 0 {
		return nil, nil
	}
	pts := plotter.XYs{}
	labels := plotter.XYLabels{}
	for _, p := range places {
		x, y, ok := view.Project(p.Lon, p.Lat)
		if !ok {
			logger.Warnf("地点 %s は表示されません", p.Name)
			continue
		}
		pts = append(pts, plotter.XY{X: x, Y: y})
		labels.XYs = append(labels.XYs, plotter.XY{X: x - dx, Y: y})
		labels.Labels = append(labels.Labels, p.Name)
	}
	if len(pts) == 0 {
		return nil, nil
	}

	// 白縁の赤丸
	ring, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	ring.GlyphStyle = draw.GlyphStyle{Color: color.White, Radius: vg.Points(5), Shape: draw.CircleGlyph{}}
	dot, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	dot.GlyphStyle = draw.GlyphStyle{Color: color.NRGBA{255, 0, 0, 255}, Radius: vg.Points(3.5), Shape: draw.CircleGlyph{}}

	names, err := plotter.NewLabels(labels)
	if err != nil {
		return nil, err
	}
	for i := range names.TextStyle {
		names.TextStyle[i].Color = color.White
		names.TextStyle[i].XAlign = text.XRight
		names.TextStyle[i].YAlign = text.YCenter
	}
	return []plot.Plotter{ring, dot, names}, nil
}
