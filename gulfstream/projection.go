package gulfstream

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// 地球半径 [m] (Basemap の球体と同じ値)
const EarthRadius = 6370997.0

// 経度緯度から平面座標への写像
type Projection interface {
	// ok が false の点は投影面に現れない (裏側の半球など)
	Forward(lon, lat float64) (x, y float64, ok bool)
}

// 正射図法 (衛星から見下ろした地球)
type Orthographic struct {
	Lon0, Lat0 float64
}

func (p Orthographic) Forward(lon, lat float64) (float64, float64, bool) {
	phi, phi1 := degreeToRad(lat), degreeToRad(p.Lat0)
	dl := degreeToRad(lon - p.Lon0)
	cosc := math.Sin(phi1)*math.Sin(phi) + math.Cos(phi1)*math.Cos(phi)*math.Cos(dl)
	if cosc < 0 {
		return math.NaN(), math.NaN(), false
	}
	x := EarthRadius * math.Cos(phi) * math.Sin(dl)
	y := EarthRadius * (math.Cos(phi1)*math.Sin(phi) - math.Sin(phi1)*math.Cos(phi)*math.Cos(dl))
	return x, y, true
}

// 斜軸ステレオ図法 (中心で縮尺1)
type Stereographic struct {
	Lon0, Lat0 float64
}

func (p Stereographic) Forward(lon, lat float64) (float64, float64, bool) {
	phi, phi1 := degreeToRad(lat), degreeToRad(p.Lat0)
	dl := degreeToRad(lon - p.Lon0)
	den := 1 + math.Sin(phi1)*math.Sin(phi) + math.Cos(phi1)*math.Cos(phi)*math.Cos(dl)
	if den < 1e-10 {
		// 対蹠点
		return math.NaN(), math.NaN(), false
	}
	k := 2 / den
	x := EarthRadius * k * math.Cos(phi) * math.Sin(dl)
	y := EarthRadius * k * (math.Cos(phi1)*math.Sin(phi) - math.Sin(phi1)*math.Cos(phi)*math.Cos(dl))
	return x, y, true
}

// 経度緯度をそのまま使う (正距円筒)
type PlateCarree struct{}

func (PlateCarree) Forward(lon, lat float64) (float64, float64, bool) {
	return lon, lat, true
}

// 名前から図法を作ります (ortho, stere, cyl)。
func NewProjection(name string, lon0, lat0 float64) (Projection, error) {
	switch name {
	case "ortho":
		return Orthographic{Lon0: lon0, Lat0: lat0}, nil
	case "stere":
		return Stereographic{Lon0: lon0, Lat0: lat0}, nil
	case "cyl", "":
		return PlateCarree{}, nil
	}
	return nil, fmt.Errorf("unknown projection %q", name)
}

// 平面上の点
type Point struct {
	X, Y float64
}

// 図法と表示範囲
//
// Note:
//
//	Basemap と同じく、表示範囲の左下が原点 (0, 0) になるように平行移動します。
type MapView struct {
	Proj   Projection
	X0, Y0 float64 // 平行移動量
	Width  float64
	Height float64
}

// 左下・右上の経度緯度で範囲を指定します。
func NewCornerView(p Projection, llLon, llLat, urLon, urLat float64) (*MapView, error) {
	x0, y0, ok0 := p.Forward(llLon, llLat)
	x1, y1, ok1 := p.Forward(urLon, urLat)
	if !ok0 || !ok1 {
		return nil, fmt.Errorf("map corners (%v,%v)-(%v,%v) are not visible", llLon, llLat, urLon, urLat)
	}
	if x1 <= x0 || y1 <= y0 {
		return nil, fmt.Errorf("map corners (%v,%v)-(%v,%v) do not span a region", llLon, llLat, urLon, urLat)
	}
	return &MapView{Proj: p, X0: x0, Y0: y0, Width: x1 - x0, Height: y1 - y0}, nil
}

// 図法の中心を原点とした平面座標で範囲を指定します。
func NewXYView(p Projection, xmin, ymin, xmax, ymax float64) (*MapView, error) {
	if xmax <= xmin || ymax <= ymin {
		return nil, fmt.Errorf("map extent [%v,%v]x[%v,%v] is empty", xmin, xmax, ymin, ymax)
	}
	return &MapView{Proj: p, X0: xmin, Y0: ymin, Width: xmax - xmin, Height: ymax - ymin}, nil
}

// 1点を表示座標に変換します。
func (m *MapView) Project(lon, lat float64) (x, y float64, ok bool) {
	x, y, ok = m.Proj.Forward(lon, lat)
	if !ok {
		return x, y, false
	}
	return x - m.X0, y - m.Y0, true
}

// 投影済みの格子
type ProjectedGrid struct {
	X, Y    *mat.Dense
	Visible [][]bool
}

// 経度緯度の格子を表示座標に変換します。行は緯度、列は経度です。
func (m *MapView) ProjectGrid(lon, lat []float64) ProjectedGrid {
	g := ProjectedGrid{
		X:       mat.NewDense(len(lat), len(lon), nil),
		Y:       mat.NewDense(len(lat), len(lon), nil),
		Visible: make([][]bool, len(lat)),
	}
	for i, phi := range lat {
		g.Visible[i] = make([]bool, len(lon))
		for j, lam := range lon {
			x, y, ok := m.Project(lam, phi)
			g.X.Set(i, j, x)
			g.Y.Set(i, j, y)
			g.Visible[i][j] = ok
		}
	}
	return g
}

// 経度緯度の折れ線を投影します。見えない点で分割します。
func (m *MapView) Polyline(lon, lat []float64) [][]Point {
	lines := [][]Point{}
	cur := []Point{}
	for i := range lon {
		x, y, ok := m.Project(lon[i], lat[i])
		if !ok {
			if len(cur) > 1 {
				lines = append(lines, cur)
			}
			cur = []Point{}
			continue
		}
		cur = append(cur, Point{x, y})
	}
	if len(cur) > 1 {
		lines = append(lines, cur)
	}
	return lines
}

// 緯線 (緯度 lat、経度 lonMin..lonMax)
func (m *MapView) Parallel(lat, lonMin, lonMax float64) [][]Point {
	n := int(math.Ceil((lonMax-lonMin)/0.5)) + 1
	lon := Linspace(lonMin, lonMax, n)
	lats := make([]float64, n)
	for i := range lats {
		lats[i] = lat
	}
	return m.Polyline(lon, lats)
}

// 経線 (経度 lon、緯度 latMin..latMax)
func (m *MapView) Meridian(lon, latMin, latMax float64) [][]Point {
	n := int(math.Ceil((latMax-latMin)/0.5)) + 1
	lat := Linspace(latMin, latMax, n)
	lons := make([]float64, n)
	for i := range lons {
		lons[i] = lon
	}
	return m.Polyline(lons, lat)
}

// 表示範囲内にあるか
func (m *MapView) Contains(x, y float64) bool {
	return x >= 0 && x <= m.Width && y >= 0 && y <= m.Height
}
