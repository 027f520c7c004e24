package gulfstream

import (
	"errors"
	"fmt"
	"io/fs"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// 地図の装飾 (海・陸・湖の色と経緯線)
type MapStyle struct {
	Boundary   string    `yaml:"boundary"`   // 地図の地の色
	Continents string    `yaml:"continents"` // 陸の色
	Lakes      string    `yaml:"lakes"`      // 湖の色
	GridColor  string    `yaml:"grid_color"` // 経緯線の色
	Parallels  []float64 `yaml:"parallels"`
	Meridians  []float64 `yaml:"meridians"`
	Coastline  string    `yaml:"coastline"`   // 陸のシェープファイル (省略可)
	LakeShapes string    `yaml:"lake_shapes"` // 湖のシェープファイル (省略可)
}

// 地図の外周。正射図法では地球の縁 (円) になります。
func (m *MapView) Outline() plotter.XYs {
	if _, ok := m.Proj.(Orthographic); ok {
		n := 360
		xys := make(plotter.XYs, n)
		for i := range xys {
			t := 2 * math.Pi * float64(i) / float64(n)
			xys[i] = plotter.XY{X: EarthRadius*math.Cos(t) - m.X0, Y: EarthRadius*math.Sin(t) - m.Y0}
		}
		return xys
	}
	return plotter.XYs{{X: 0, Y: 0}, {X: m.Width, Y: 0}, {X: m.Width, Y: m.Height}, {X: 0, Y: m.Height}}
}

// 表示範囲をプロットの軸に設定します。p.Add の後に呼びます。
func (m *MapView) Frame(p *plot.Plot) {
	p.X.Min, p.X.Max = 0, m.Width
	p.Y.Min, p.Y.Max = 0, m.Height
}

// 地図用のプロットを作ります。軸の線は描かず、経緯線の目盛りだけを表示します。
func NewMapPlot(title string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	for _, ax := range []*plot.Axis{&p.X, &p.Y} {
		ax.Padding = 0
		ax.LineStyle.Width = 0
		ax.Tick.LineStyle.Width = 0
		ax.Tick.Length = 0
	}
	return p
}

// 地図の下地 (海の色)
func (m *MapView) BackgroundLayers(st MapStyle) ([]plot.Plotter, error) {
	if st.Boundary == "" {
		return nil, nil
	}
	fill, err := ParseColor(st.Boundary)
	if err != nil {
		return nil, err
	}
	poly, err := plotter.NewPolygon(m.Outline())
	if err != nil {
		return nil, err
	}
	poly.Color = fill
	poly.LineStyle = draw.LineStyle{Color: fill, Width: 0}
	return []plot.Plotter{poly}, nil
}

// 陸・湖・経緯線を作ります。経緯線の目盛りは p の軸に設定します。
func (m *MapView) OverlayLayers(p *plot.Plot, st MapStyle) ([]plot.Plotter, error) {
	ps := []plot.Plotter{}

	for _, layer := range []struct{ path, color string }{
		{st.Coastline, st.Continents},
		{st.LakeShapes, st.Lakes},
	} {
		if layer.path == "" || layer.color == "" {
			continue
		}
		fill, err := ParseColor(layer.color)
		if err != nil {
			return nil, err
		}
		rings, err := LoadRings(layer.path)
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warnf("シェープファイルがありません: %s", layer.path)
			continue
		}
		if err != nil {
			return nil, err
		}
		lps, err := NewRingLayers(m, rings, fill)
		if err != nil {
			return nil, err
		}
		ps = append(ps, lps...)
	}

	gridColor := st.GridColor
	if gridColor == "" {
		gridColor = "black"
	}
	gc, err := ParseColor(gridColor)
	if err != nil {
		return nil, err
	}
	style := draw.LineStyle{Color: gc, Width: vg.Points(0.5), Dashes: []vg.Length{vg.Points(1), vg.Points(1)}}

	yTicks := []plot.Tick{}
	for _, lat := range st.Parallels {
		lines := m.Parallel(lat, -180, 180)
		lps, err := NewPolylines(lines, style)
		if err != nil {
			return nil, err
		}
		ps = append(ps, lps...)
		if y, ok := crossing(lines, false, 0, m.Height); ok {
			yTicks = append(yTicks, plot.Tick{Value: y, Label: LatLabel(lat)})
		}
	}
	xTicks := []plot.Tick{}
	for _, lon := range st.Meridians {
		lines := m.Meridian(lon, -89.9, 89.9)
		lps, err := NewPolylines(lines, style)
		if err != nil {
			return nil, err
		}
		ps = append(ps, lps...)
		if x, ok := crossing(lines, true, 0, m.Width); ok {
			xTicks = append(xTicks, plot.Tick{Value: x, Label: LonLabel(lon)})
		}
	}
	p.X.Tick.Marker = plot.ConstantTicks(xTicks)
	p.Y.Tick.Marker = plot.ConstantTicks(yTicks)
	return ps, nil
}

// 折れ線が表示範囲の左端 (horizontal が true なら下端) を横切る位置
func crossing(lines [][]Point, horizontal bool, lo, hi float64) (float64, bool) {
	for _, line := range lines {
		for i := 0; i+1 < len(line); i++ {
			a, b := line[i], line[i+1]
			ca, cb, pa, pb := a.X, b.X, a.Y, b.Y
			if horizontal {
				ca, cb, pa, pb = a.Y, b.Y, a.X, b.X
			}
			if (ca > 0) == (cb > 0) || ca == cb {
				continue
			}
			v := pa + (pb-pa)*(0-ca)/(cb-ca)
			if v >= lo && v <= hi {
				return v, true
			}
		}
	}
	return 0, false
}

// 緯度の表示 (30°N)
func LatLabel(lat float64) string {
	switch {
	case lat > 0:
		return fmt.Sprintf("%g°N", lat)
	case lat < 0:
		return fmt.Sprintf("%g°S", -lat)
	}
	return "0°"
}

// 経度の表示 (75°W)。経度は -180..180 に直して表示します。
func LonLabel(lon float64) string {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	lon -= 180
	switch {
	case lon > 0:
		return fmt.Sprintf("%g°E", lon)
	case lon < 0 && lon > -180:
		return fmt.Sprintf("%g°W", -lon)
	}
	return fmt.Sprintf("%g°", math.Abs(lon))
}
