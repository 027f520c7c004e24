package gulfstream

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
)

// 流速データ (lat, lon, time)
type UVData struct {
	U, V     *Array
	Speed    *Array
	Lon, Lat []float64
	src      UVSource
}

// u, v を読み込み、流速の大きさを計算します。
func LoadUV(src UVSource) (*UVData, error) {
	vars, err := LoadVariables(src.Input, src.UVar, src.VVar)
	if err != nil {
		return nil, err
	}
	u, err := Canonical(vars, src.UVar, src.Perm)
	if err != nil {
		return nil, err
	}
	v, err := Canonical(vars, src.VVar, src.Perm)
	if err != nil {
		return nil, err
	}
	return NewUVData(src, u, v)
}

func NewUVData(src UVSource, u, v *Array) (*UVData, error) {
	if u.NDim() != 3 {
		return nil, errNotTimeSeries(src.UVar, u)
	}
	speed, err := Speed(u, v)
	if err != nil {
		return nil, err
	}
	lon, lat, err := src.Grid.Coords()
	if err != nil {
		return nil, err
	}
	if lon, lat, err = AlignCoords(lon, lat, u.Shape[0], u.Shape[1]); err != nil {
		return nil, err
	}
	return &UVData{U: u, V: v, Speed: speed, Lon: lon, Lat: lat, src: src}, nil
}

// 時刻 t の u, v, 流速
func (d *UVData) Slice(t int) (u, v, spd *mat.Dense, err error) {
	if u, err = d.U.TimeSlice(t); err != nil {
		return nil, nil, nil, err
	}
	if v, err = d.V.TimeSlice(t); err != nil {
		return nil, nil, nil, err
	}
	if spd, err = d.Speed.TimeSlice(t); err != nil {
		return nil, nil, nil, err
	}
	return u, v, spd, nil
}

// 時刻 t の陸地マスク
//
// Note:
//
//	既定では mask_time の断面から作ったマスクをすべてのコマで使います。
//	海岸線が時間で変わらないことを前提にしているので、
//	land_mask_per_frame を指定するとコマごとに作り直します。
func (d *UVData) LandMask(t int) (*mat.Dense, error) {
	ref := d.src.MaskTime
	if d.src.LandMaskPerFrame {
		ref = t
	}
	spd, err := d.Speed.TimeSlice(ref)
	if err != nil {
		return nil, err
	}
	return LandMask(spd), nil
}

// 陸地マスクを塗るレイヤー
func (d *UVData) LandLayer(t int) (*Mesh, error) {
	mask, err := d.LandMask(t)
	if err != nil {
		return nil, err
	}
	shade, err := ParseColor(d.src.LandColor)
	if err != nil {
		return nil, err
	}
	return NewLandLayer(lonLatView(), d.Lon, d.Lat, mask, shade)
}

// 経度緯度をそのまま座標に使う表示
func lonLatView() *MapView {
	return &MapView{Proj: PlateCarree{}}
}

// 経度緯度の軸を持つプロット
func newLonLatPlot(title string, xlim, ylim [2]float64, xticks, yticks []float64) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Min, p.X.Max = xlim[0], xlim[1]
	p.Y.Min, p.Y.Max = ylim[0], ylim[1]
	p.X.Tick.Marker = plot.ConstantTicks(DegreeTicks(xticks))
	p.Y.Tick.Marker = plot.ConstantTicks(DegreeTicks(yticks))
	return p
}

// p.Add で広がった表示範囲を元に戻します。
func fixLimits(p *plot.Plot, xlim, ylim [2]float64) {
	p.X.Min, p.X.Max = xlim[0], xlim[1]
	p.Y.Min, p.Y.Max = ylim[0], ylim[1]
}
