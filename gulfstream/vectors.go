package gulfstream

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// 矢印の描画 (quiver)
type Quiver struct {
	Lon, Lat []float64
	U, V     *mat.Dense
	Step     int         // 間引き (1 なら全点)
	Scale    float64     // 流速 1 [m/s] あたりの矢印の長さ (データ座標)。0 なら自動
	Color    color.Color // 単色の場合。nil なら黒
	C        *mat.Dense  // 矢印の色に使う値 (省略可)
	Colors   ColorScale  // C の色付け
	Width    vg.Length   // 軸の太さ
}

func NewQuiver(lon, lat []float64, u, v *mat.Dense, step int) (*Quiver, error) {
	r, c := u.Dims()
	if vr, vc := v.Dims(); vr != r || vc != c {
		return nil, fmt.Errorf("quiver: u %dx%d vs v %dx%d: %w", r, c, vr, vc, ErrShapeMismatch)
	}
	if r != len(lat) || c != len(lon) {
		return nil, fmt.Errorf("quiver: field %dx%d vs %d lat, %d lon: %w", r, c, len(lat), len(lon), ErrShapeMismatch)
	}
	if step < 1 {
		step = 1
	}
	return &Quiver{Lon: lon, Lat: lat, U: u, V: v, Step: step, Width: vg.Points(0.5)}, nil
}

// 矢印の長さの自動決定
//
// Note:
//
//	平均の矢印の長さが 表示幅 / (1.8 * max(10, √N)) になるようにします。
func (q *Quiver) autoScale() float64 {
	sum, n := 0.0, 0
	for i := 0; i < len(q.Lat); i += q.Step {
		for j := 0; j < len(q.Lon); j += q.Step {
			u, v := q.U.At(i, j), q.V.At(i, j)
			if math.IsNaN(u) || math.IsNaN(v) {
				continue
			}
			sum += math.Hypot(u, v)
			n++
		}
	}
	if n == 0 || sum == 0 {
		return 1
	}
	span := math.Abs(floats.Max(q.Lon) - floats.Min(q.Lon))
	if span == 0 {
		span = 1
	}
	sn := math.Max(10, math.Sqrt(float64(n)))
	return span / (1.8 * sn * (sum / float64(n)))
}

func (q *Quiver) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	k := q.Scale
	if k <= 0 {
		k = q.autoScale()
	}
	clr := q.Color
	if clr == nil {
		clr = color.Black
	}
	for i := 0; i < len(q.Lat); i += q.Step {
		for j := 0; j < len(q.Lon); j += q.Step {
			u, v := q.U.At(i, j), q.V.At(i, j)
			if math.IsNaN(u) || math.IsNaN(v) || (u == 0 && v == 0) {
				continue
			}
			fill := clr
			if q.C != nil {
				var ok bool
				if fill, ok = q.Colors.Color(q.C.At(i, j)); !ok {
					continue
				}
			}
			tail := vg.Point{X: trX(q.Lon[j]), Y: trY(q.Lat[i])}
			tip := vg.Point{X: trX(q.Lon[j] + u*k), Y: trY(q.Lat[i] + v*k)}
			drawArrow(c, tail, tip, q.Width, 4.5*q.Width, 1.5*q.Width, fill)
		}
	}
}

func (q *Quiver) DataRange() (xmin, xmax, ymin, ymax float64) {
	return floats.Min(q.Lon), floats.Max(q.Lon), floats.Min(q.Lat), floats.Max(q.Lat)
}

// tail から tip への矢印を描きます。軸が頭より短いときは頭を縮めます。
func drawArrow(c draw.Canvas, tail, tip vg.Point, width, headLen, headHalf vg.Length, clr color.Color) {
	d := tip.Sub(tail)
	l := vg.Length(math.Hypot(float64(d.X), float64(d.Y)))
	if l == 0 {
		return
	}
	if l < headLen {
		headHalf *= l / headLen
		headLen = l
	}
	ux, uy := d.X/l, d.Y/l
	base := vg.Point{X: tip.X - ux*headLen, Y: tip.Y - uy*headLen}
	n := vg.Point{X: -uy * headHalf, Y: ux * headHalf}

	style := draw.LineStyle{Color: clr, Width: width}
	if base != tail {
		c.StrokeLines(style, c.ClipLinesXY([]vg.Point{tail, base})...)
	}
	c.FillPolygon(clr, c.ClipPolygonXY([]vg.Point{tip, base.Add(n), base.Sub(n)}))
}

// 流線 (streamplot)
type Streamplot struct {
	Lon, Lat      []float64
	Scale         ColorScale
	WidthPerSpeed vg.Length // 流速 1 [m/s] あたりの線の太さ
	ArrowSize     float64
	Lines         [][]streamPoint
}

type streamPoint struct {
	X, Y  float64 // データ座標
	Speed float64
}

// 流線の間隔を決める設定
type StreamDensity struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// 流線を計算します。
//
// Note:
//
//	格子を 30*density の升目に分け、1つの升目を通る流線は1本だけにします。
//	流線の開始点は升目を左下から順に走査して決めるので、結果は入力だけで決まります。
func NewStreamplot(lon, lat []float64, u, v, speed *mat.Dense, density StreamDensity, scale ColorScale) (*Streamplot, error) {
	r, c := u.Dims()
	if vr, vc := v.Dims(); vr != r || vc != c {
		return nil, fmt.Errorf("streamplot: u %dx%d vs v %dx%d: %w", r, c, vr, vc, ErrShapeMismatch)
	}
	if sr, sc := speed.Dims(); sr != r || sc != c {
		return nil, fmt.Errorf("streamplot: u %dx%d vs speed %dx%d: %w", r, c, sr, sc, ErrShapeMismatch)
	}
	if r != len(lat) || c != len(lon) || r < 2 || c < 2 {
		return nil, fmt.Errorf("streamplot: field %dx%d vs %d lat, %d lon: %w", r, c, len(lat), len(lon), ErrShapeMismatch)
	}
	if density.X <= 0 {
		density.X = 1
	}
	if density.Y <= 0 {
		density.Y = 1
	}

	g := newStreamGrid(lon, lat, u, v, speed)
	m := newStreamMask(int(30*density.X), int(30*density.Y), c, r)

	sp := &Streamplot{Lon: lon, Lat: lat, Scale: scale, WidthPerSpeed: vg.Points(2), ArrowSize: 1}
	for my := 0; my < m.ny; my++ {
		for mx := 0; mx < m.nx; mx++ {
			if m.used[my][mx] {
				continue
			}
			x0, y0 := m.toGrid(mx, my)
			if line := g.trajectory(m, x0, y0); line != nil {
				sp.Lines = append(sp.Lines, line)
			}
		}
	}
	logger.Debugf("流線: %d 本", len(sp.Lines))
	return sp, nil
}

// 格子添字の座標系での速度場
type streamGrid struct {
	nx, ny    int
	lon, lat  []float64
	u, v, spd *mat.Dense
}

func newStreamGrid(lon, lat []float64, u, v, speed *mat.Dense) *streamGrid {
	nx, ny := len(lon), len(lat)
	dx := (lon[nx-1] - lon[0]) / float64(nx-1)
	dy := (lat[ny-1] - lat[0]) / float64(ny-1)
	ui := mat.NewDense(ny, nx, nil)
	vi := mat.NewDense(ny, nx, nil)
	ui.Scale(1/dx, u)
	vi.Scale(1/dy, v)
	return &streamGrid{nx: nx, ny: ny, lon: lon, lat: lat, u: ui, v: vi, spd: speed}
}

// 双線形補間。範囲外か NaN を含むときは ok が false
func (g *streamGrid) interp(m *mat.Dense, x, y float64) (float64, bool) {
	if x < 0 || y < 0 || x > float64(g.nx-1) || y > float64(g.ny-1) {
		return 0, false
	}
	i := int(math.Min(math.Floor(y), float64(g.ny-2)))
	j := int(math.Min(math.Floor(x), float64(g.nx-2)))
	fy, fx := y-float64(i), x-float64(j)
	a := m.At(i, j)*(1-fx) + m.At(i, j+1)*fx
	b := m.At(i+1, j)*(1-fx) + m.At(i+1, j+1)*fx
	z := a*(1-fy) + b*fy
	if math.IsNaN(z) {
		return 0, false
	}
	return z, true
}

// 単位速さに正規化した流れの向き
func (g *streamGrid) direction(x, y, sign float64) (float64, float64, bool) {
	u, ok1 := g.interp(g.u, x, y)
	v, ok2 := g.interp(g.v, x, y)
	if !ok1 || !ok2 {
		return 0, 0, false
	}
	s := math.Hypot(u, v)
	if s == 0 {
		return 0, 0, false
	}
	return sign * u / s, sign * v / s, true
}

func (g *streamGrid) point(x, y float64) streamPoint {
	p := streamPoint{X: axisAt(g.lon, x), Y: axisAt(g.lat, y)}
	p.Speed, _ = g.interp(g.spd, x, y)
	return p
}

// 添字 (小数) の位置の座標値
func axisAt(axis []float64, x float64) float64 {
	i := int(math.Min(math.Floor(x), float64(len(axis)-2)))
	return axis[i] + (axis[i+1]-axis[i])*(x-float64(i))
}

// 始点 (x0, y0) から前後に積分した流線。短すぎる場合は nil
func (g *streamGrid) trajectory(m *streamMask, x0, y0 float64) []streamPoint {
	if _, _, ok := g.direction(x0, y0, 1); !ok {
		return nil
	}
	mx, my := m.cell(x0, y0)
	m.start(mx, my)

	h := 0.5 * math.Min(m.cellW, m.cellH)
	maxLen := 4 * float64(max(g.nx, g.ny))

	back, lb := g.integrate(m, x0, y0, -1, h, maxLen)
	m.current = [2]int{mx, my}
	fwd, lf := g.integrate(m, x0, y0, 1, h, maxLen)

	if lb+lf < 0.1*float64(min(g.nx, g.ny)) {
		m.undo()
		return nil
	}
	m.commit()

	line := make([]streamPoint, 0, len(back)+len(fwd)+1)
	for i := len(back) - 1; i >= 0; i-- {
		line = append(line, back[i])
	}
	line = append(line, g.point(x0, y0))
	return append(line, fwd...)
}

// 2次の Runge-Kutta 法で流線をたどります。
func (g *streamGrid) integrate(m *streamMask, x, y, sign, h, maxLen float64) ([]streamPoint, float64) {
	pts := []streamPoint{}
	length := 0.0
	for length < maxLen {
		dx, dy, ok := g.direction(x, y, sign)
		if !ok {
			break
		}
		mdx, mdy, ok := g.direction(x+0.5*h*dx, y+0.5*h*dy, sign)
		if !ok {
			break
		}
		nx, ny := x+h*mdx, y+h*mdy
		if nx < 0 || ny < 0 || nx > float64(g.nx-1) || ny > float64(g.ny-1) {
			break
		}
		if !m.visit(m.cell(nx, ny)) {
			break
		}
		x, y = nx, ny
		length += h
		pts = append(pts, g.point(x, y))
	}
	return pts, length
}

// 流線の升目
type streamMask struct {
	nx, ny       int
	cellW, cellH float64 // 升目の大きさ (格子添字の単位)
	used         [][]bool
	current      [2]int
	visited      [][2]int
}

func newStreamMask(nx, ny, gridX, gridY int) *streamMask {
	nx, ny = max(nx, 1), max(ny, 1)
	m := &streamMask{
		nx:    nx,
		ny:    ny,
		cellW: float64(gridX-1) / float64(nx),
		cellH: float64(gridY-1) / float64(ny),
		used:  make([][]bool, ny),
	}
	for i := range m.used {
		m.used[i] = make([]bool, nx)
	}
	return m
}

func (m *streamMask) cell(x, y float64) (int, int) {
	mx := min(int(x/m.cellW), m.nx-1)
	my := min(int(y/m.cellH), m.ny-1)
	return mx, my
}

// 升目の中心の格子添字
func (m *streamMask) toGrid(mx, my int) (float64, float64) {
	return (float64(mx) + 0.5) * m.cellW, (float64(my) + 0.5) * m.cellH
}

func (m *streamMask) start(mx, my int) {
	m.visited = m.visited[:0]
	m.current = [2]int{mx, my}
	m.used[my][mx] = true
	m.visited = append(m.visited, m.current)
}

// 升目に入れるなら印を付けて true を返します。
func (m *streamMask) visit(mx, my int) bool {
	if m.current == [2]int{mx, my} {
		return true
	}
	if m.used[my][mx] {
		return false
	}
	m.used[my][mx] = true
	m.current = [2]int{mx, my}
	m.visited = append(m.visited, m.current)
	return true
}

func (m *streamMask) undo() {
	for _, c := range m.visited {
		m.used[c[1]][c[0]] = false
	}
	m.visited = m.visited[:0]
}

func (m *streamMask) commit() {
	m.visited = m.visited[:0]
}

func (s *Streamplot) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	for _, line := range s.Lines {
		pts := make([]vg.Point, len(line))
		for i, p := range line {
			pts[i] = vg.Point{X: trX(p.X), Y: trY(p.Y)}
		}
		for i := 0; i+1 < len(line); i++ {
			spd := (line[i].Speed + line[i+1].Speed) / 2
			clr, ok := s.Scale.Color(spd)
			if !ok {
				continue
			}
			w := s.WidthPerSpeed * vg.Length(spd)
			if w < vg.Points(0.2) {
				w = vg.Points(0.2)
			}
			c.StrokeLines(draw.LineStyle{Color: clr, Width: w}, c.ClipLinesXY(pts[i:i+2])...)
		}

		// 流線の中ほどに向きを示す矢じり
		mid := len(line) / 2
		if mid+1 >= len(line) {
			continue
		}
		clr, ok := s.Scale.Color(line[mid].Speed)
		if !ok {
			continue
		}
		size := vg.Points(4 * s.ArrowSize)
		d := pts[mid+1].Sub(pts[mid])
		l := vg.Length(math.Hypot(float64(d.X), float64(d.Y)))
		if l == 0 {
			continue
		}
		tip := pts[mid].Add(vg.Point{X: d.X / l * size, Y: d.Y / l * size})
		drawArrow(c, pts[mid], tip, 0, size, size/2, clr)
	}
}

func (s *Streamplot) DataRange() (xmin, xmax, ymin, ymax float64) {
	return floats.Min(s.Lon), floats.Max(s.Lon), floats.Min(s.Lat), floats.Max(s.Lat)
}
