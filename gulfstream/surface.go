package gulfstream

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// 視点 (matplotlib の view_init と同じ意味の角度 [deg])
type Camera struct {
	Elev float64 `yaml:"elev"`
	Azim float64 `yaml:"azim"`
}

// 3次元の曲面 (plot_surface)
//
// Note:
//
//	奥のセルから順に塗り重ねます (画家のアルゴリズム)。
//	表示座標は、箱を x, y が [-1, 1]、z が [-0.75, 0.75] に正規化して
//	視点方向に正射影したものです。
type Surface3D struct {
	Lon, Lat   []float64
	Z          *mat.Dense // 行が緯度、列が経度
	Scale      ColorScale
	XLim, YLim [2]float64
	ZLim       [2]float64
	Camera     Camera
	XTicks     []plot.Tick
	YTicks     []plot.Tick
	ZTicks     []plot.Tick
	Labels     [3]string // x, y, z 軸の名前
	Stride     int
	Pane       color.Color
	Edge       color.Color
}

func NewSurface3D(lon, lat []float64, z *mat.Dense, scale ColorScale, zlim [2]float64, cam Camera) (*Surface3D, error) {
	r, c := z.Dims()
	if r != len(lat) || c != len(lon) {
		return nil, fmt.Errorf("surface: z %dx%d vs %d lat, %d lon: %w", r, c, len(lat), len(lon), ErrShapeMismatch)
	}
	if !(zlim[1] > zlim[0]) {
		return nil, fmt.Errorf("surface: z limits %v are empty", zlim)
	}
	s := &Surface3D{
		Lon: lon, Lat: lat, Z: z,
		Scale:  scale,
		ZLim:   zlim,
		Camera: cam,
		Stride: 1,
		Pane:   color.NRGBA{242, 242, 242, 255},
		Edge:   color.NRGBA{128, 128, 128, 255},
	}
	s.XLim = [2]float64{lon[0], lon[len(lon)-1]}
	s.YLim = [2]float64{lat[0], lat[len(lat)-1]}
	return s, nil
}

type vec3 struct {
	X, Y, Z float64
}

// データ座標を正規化した箱の座標にします。
func (s *Surface3D) normalize(x, y, z float64) vec3 {
	f := func(v float64, lim [2]float64) float64 {
		return 2*(v-lim[0])/(lim[1]-lim[0]) - 1
	}
	return vec3{f(x, s.XLim), f(y, s.YLim), 0.75 * f(z, s.ZLim)}
}

// 正規化座標を画面の (横, 縦) と奥行き (大きいほど手前) に写します。
func (s *Surface3D) view(p vec3) (float64, float64, float64) {
	a, e := degreeToRad(s.Camera.Azim), degreeToRad(s.Camera.Elev)
	sx := -p.X*math.Sin(a) + p.Y*math.Cos(a)
	sy := -p.X*math.Sin(e)*math.Cos(a) - p.Y*math.Sin(e)*math.Sin(a) + p.Z*math.Cos(e)
	depth := p.X*math.Cos(e)*math.Cos(a) + p.Y*math.Cos(e)*math.Sin(a) + p.Z*math.Sin(e)
	return sx, sy, depth
}

func (s *Surface3D) screen(x, y, z float64) (float64, float64, float64) {
	return s.view(s.normalize(x, y, z))
}

type quad struct {
	pts   [4][2]float64
	depth float64
	clr   color.Color
}

func (s *Surface3D) quads() []quad {
	step := max(s.Stride, 1)
	rows, cols := s.Z.Dims()
	qs := []quad{}
	for i := 0; i+step < rows; i += step {
		for j := 0; j+step < cols; j += step {
			ii := [4]int{i, i, i + step, i + step}
			jj := [4]int{j, j + step, j + step, j}
			var q quad
			sum, ok := 0.0, true
			for k := 0; k < 4; k++ {
				z := s.Z.At(ii[k], jj[k])
				if math.IsNaN(z) {
					ok = false
					break
				}
				sum += z
				x, y, d := s.screen(s.Lon[jj[k]], s.Lat[ii[k]], z)
				q.pts[k] = [2]float64{x, y}
				q.depth += d / 4
			}
			if !ok {
				continue
			}
			clr, visible := s.Scale.Color(sum / 4)
			if !visible {
				continue
			}
			q.clr = clr
			qs = append(qs, q)
		}
	}
	sort.SliceStable(qs, func(a, b int) bool { return qs[a].depth < qs[b].depth })
	return qs
}

func (s *Surface3D) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	pt := func(x, y float64) vg.Point { return vg.Point{X: trX(x), Y: trY(y)} }

	s.drawPanes(c, pt)
	for _, q := range s.quads() {
		poly := make([]vg.Point, 4)
		for k, p := range q.pts {
			poly[k] = pt(p[0], p[1])
		}
		c.FillPolygon(q.clr, poly)
		c.StrokeLines(draw.LineStyle{Color: q.clr, Width: vg.Points(0.1)}, append(poly, poly[0]))
	}
	s.drawTicks(c, pt, plt.X.Tick.Label)
}

// 視点から遠い3面を塗り、格子線を描きます。
func (s *Surface3D) drawPanes(c draw.Canvas, pt func(x, y float64) vg.Point) {
	xb, yb := s.backX(), s.backY()
	zb := s.ZLim[0]
	x0, x1, y0, y1, z0, z1 := s.XLim[0], s.XLim[1], s.YLim[0], s.YLim[1], s.ZLim[0], s.ZLim[1]
	panes := [][]vec3{
		{{xb, y0, z0}, {xb, y1, z0}, {xb, y1, z1}, {xb, y0, z1}},
		{{x0, yb, z0}, {x1, yb, z0}, {x1, yb, z1}, {x0, yb, z1}},
		{{x0, y0, zb}, {x1, y0, zb}, {x1, y1, zb}, {x0, y1, zb}},
	}
	edge := draw.LineStyle{Color: s.Edge, Width: vg.Points(0.4)}
	for _, pane := range panes {
		poly := make([]vg.Point, len(pane))
		for k, p := range pane {
			x, y, _ := s.screen(p.X, p.Y, p.Z)
			poly[k] = pt(x, y)
		}
		c.FillPolygon(s.Pane, poly)
		c.StrokeLines(edge, append(poly, poly[0]))
	}

	grid := draw.LineStyle{Color: color.NRGBA{210, 210, 210, 255}, Width: vg.Points(0.3)}
	line := func(a, b vec3) {
		xa, ya, _ := s.screen(a.X, a.Y, a.Z)
		xe, ye, _ := s.screen(b.X, b.Y, b.Z)
		pa, pb := pt(xa, ya), pt(xe, ye)
		c.StrokeLine2(grid, pa.X, pa.Y, pb.X, pb.Y)
	}
	for _, t := range s.XTicks {
		line(vec3{t.Value, y0, zb}, vec3{t.Value, y1, zb})
		line(vec3{t.Value, yb, z0}, vec3{t.Value, yb, z1})
	}
	for _, t := range s.YTicks {
		line(vec3{x0, t.Value, zb}, vec3{x1, t.Value, zb})
		line(vec3{xb, t.Value, z0}, vec3{xb, t.Value, z1})
	}
	for _, t := range s.ZTicks {
		line(vec3{xb, y0, t.Value}, vec3{xb, y1, t.Value})
		line(vec3{x0, yb, t.Value}, vec3{x1, yb, t.Value})
	}
}

// 視点から遠い側の x 面
func (s *Surface3D) backX() float64 {
	_, _, d0 := s.screen(s.XLim[0], s.YLim[0], s.ZLim[0])
	_, _, d1 := s.screen(s.XLim[1], s.YLim[0], s.ZLim[0])
	if d0 < d1 {
		return s.XLim[0]
	}
	return s.XLim[1]
}

// 視点から遠い側の y 面
func (s *Surface3D) backY() float64 {
	_, _, d0 := s.screen(s.XLim[0], s.YLim[0], s.ZLim[0])
	_, _, d1 := s.screen(s.XLim[0], s.YLim[1], s.ZLim[0])
	if d0 < d1 {
		return s.YLim[0]
	}
	return s.YLim[1]
}

func other(lim [2]float64, v float64) float64 {
	if v == lim[0] {
		return lim[1]
	}
	return lim[0]
}

// 手前の辺に沿って目盛りの文字を描きます。
func (s *Surface3D) drawTicks(c draw.Canvas, pt func(x, y float64) vg.Point, style text.Style) {
	xf, yf := other(s.XLim, s.backX()), other(s.YLim, s.backY())
	z0 := s.ZLim[0]
	style.XAlign = text.XCenter
	style.YAlign = text.YTop
	put := func(p vec3, label string, dy vg.Length) {
		x, y, _ := s.screen(p.X, p.Y, p.Z)
		at := pt(x, y)
		at.Y -= dy
		c.FillText(style, at, label)
	}
	for _, t := range s.XTicks {
		put(vec3{t.Value, yf, z0}, t.Label, vg.Points(4))
	}
	for _, t := range s.YTicks {
		put(vec3{xf, t.Value, z0}, t.Label, vg.Points(4))
	}
	midX := (s.XLim[0] + s.XLim[1]) / 2
	midY := (s.YLim[0] + s.YLim[1]) / 2
	put(vec3{midX, yf, z0}, s.Labels[0], 2*style.Height(s.Labels[0])+vg.Points(6))
	put(vec3{xf, midY, z0}, s.Labels[1], 2*style.Height(s.Labels[1])+vg.Points(6))

	style.XAlign = text.XRight
	style.YAlign = text.YCenter
	for _, t := range s.ZTicks {
		x, y, _ := s.screen(xf, s.backY(), t.Value)
		at := pt(x, y)
		at.X -= vg.Points(4)
		c.FillText(style, at, t.Label)
	}
	if s.Labels[2] != "" {
		x, y, _ := s.screen(xf, s.backY(), (s.ZLim[0]+s.ZLim[1])/2)
		at := pt(x, y)
		at.X -= vg.Points(24)
		c.FillText(style, at, s.Labels[2])
	}
}

// 箱の8頂点を含む範囲
func (s *Surface3D) DataRange() (xmin, xmax, ymin, ymax float64) {
	xmin, ymin = math.Inf(1), math.Inf(1)
	xmax, ymax = math.Inf(-1), math.Inf(-1)
	for _, x := range s.XLim {
		for _, y := range s.YLim {
			for _, z := range s.ZLim {
				sx, sy, _ := s.screen(x, y, z)
				xmin, xmax = math.Min(xmin, sx), math.Max(xmax, sx)
				ymin, ymax = math.Min(ymin, sy), math.Max(ymax, sy)
			}
		}
	}
	return xmin, xmax, ymin, ymax
}

// 経度の目盛り (西経は符号を外して表示)
func DegreeTicks(values []float64) []plot.Tick {
	ticks := make([]plot.Tick, len(values))
	for i, v := range values {
		ticks[i] = plot.Tick{Value: v, Label: fmt.Sprintf("%g°", math.Abs(v))}
	}
	return ticks
}

// 数値の目盛り
func NumberTicks(values []float64) []plot.Tick {
	ticks := make([]plot.Tick, len(values))
	for i, v := range values {
		ticks[i] = plot.Tick{Value: v, Label: fmt.Sprintf("%g", v)}
	}
	return ticks
}
