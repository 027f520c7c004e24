package gulfstream

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/jonas-p/go-shp"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg/draw"
)

// 経度緯度の閉じた輪郭 (陸地・湖)
type Ring struct {
	Name string
	Lon  []float64
	Lat  []float64
}

// シェープファイルのポリゴンを読み込みます。
// マルチパートのポリゴンはパートごとに別の輪郭になります。
func LoadRings(path string) ([]Ring, error) {
	shape, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening shapefile: %w", err)
	}
	defer shape.Close()

	rings := []Ring{}
	for shape.Next() {
		n, p := shape.Shape()
		polygon, ok := p.(*shp.Polygon)
		if !ok {
			continue
		}
		name := ""
		if len(shape.Fields()) > 0 {
			name = strings.Trim(shape.ReadAttribute(n, 0), " \x00")
		}
		for part := 0; part < len(polygon.Parts); part++ {
			start := int(polygon.Parts[part])
			end := len(polygon.Points)
			if part+1 < len(polygon.Parts) {
				end = int(polygon.Parts[part+1])
			}
			r := Ring{Name: name}
			for _, pt := range polygon.Points[start:end] {
				r.Lon = append(r.Lon, pt.X)
				r.Lat = append(r.Lat, pt.Y)
			}
			rings = append(rings, r)
		}
	}
	if err := shape.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Debugf("シェープファイル %s: %d 輪郭", path, len(rings))
	return rings, nil
}

// 輪郭をポリゴンのシェープファイルとして書き出します。
func WriteRings(path string, rings []Ring) error {
	w, err := shp.Create(path, shp.POLYGON)
	if err != nil {
		return fmt.Errorf("creating shapefile: %w", err)
	}
	defer w.Close()

	if err := w.SetFields([]shp.Field{shp.StringField("NAME", 40)}); err != nil {
		return err
	}
	for _, r := range rings {
		if len(r.Lon) != len(r.Lat) {
			return fmt.Errorf("ring %q: %d lon vs %d lat: %w", r.Name, len(r.Lon), len(r.Lat), ErrShapeMismatch)
		}
		pts := make([]shp.Point, len(r.Lon))
		for i := range pts {
			pts[i] = shp.Point{X: r.Lon[i], Y: r.Lat[i]}
		}
		polygon := shp.Polygon(*shp.NewPolyLine([][]shp.Point{pts}))
		n := w.Write(&polygon)
		if err := w.WriteAttribute(int(n), 0, r.Name); err != nil {
			return err
		}
	}
	return nil
}

// 輪郭を投影して塗りつぶします。一部でも見えない輪郭は描きません。
func NewRingLayers(view *MapView, rings []Ring, fill color.Color) ([]plot.Plotter, error) {
	ps := []plot.Plotter{}
	for _, r := range rings {
		xys := make(plotter.XYs, 0, len(r.Lon))
		for i := range r.Lon {
			x, y, ok := view.Project(r.Lon[i], r.Lat[i])
			if !ok {
				xys = nil
				break
			}
			xys = append(xys, plotter.XY{X: x, Y: y})
		}
		if len(xys) < 3 {
			continue
		}
		poly, err := plotter.NewPolygon(xys)
		if err != nil {
			return nil, err
		}
		poly.Color = fill
		poly.LineStyle = draw.LineStyle{Color: fill, Width: 0}
		ps = append(ps, poly)
	}
	return ps, nil
}
