package gulfstream

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// 合成データの出力設定
type SynthConfig struct {
	Dir   string `yaml:"dir"`
	Times int    `yaml:"times"` // 時間方向のコマ数 (日)
}

// 陸地を表す SST の値 [K]
const sstFill = -32767

// 合成データの陸地と湖
func SynthLand() (land, lakes []Ring) {
	land = []Ring{{
		Name: "North America",
		Lon:  []float64{-100, -81, -80, -76, -74, -70, -66, -60, -52, -55, -60, -100, -100},
		Lat:  []float64{25, 25, 31, 35, 40.5, 41.5, 44.5, 46, 47, 52, 60, 60, 25},
	}}
	lakes = []Ring{{
		Name: "Lake",
		Lon:  []float64{-88, -82, -82, -88, -88},
		Lat:  []float64{42, 42, 46, 46, 42},
	}}
	return land, lakes
}

// 点 (lon, lat) が輪郭の内側か (交差数判定)
func (r Ring) Contains(lon, lat float64) bool {
	in := false
	n := len(r.Lon)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		yi, yj := r.Lat[i], r.Lat[j]
		if (yi > lat) == (yj > lat) {
			continue
		}
		x := r.Lon[i] + (lat-yi)/(yj-yi)*(r.Lon[j]-r.Lon[i])
		if lon < x {
			in = !in
		}
	}
	return in
}

func onLand(rings []Ring, lon, lat float64) bool {
	for _, r := range rings {
		if r.Contains(lon, lat) {
			return true
		}
	}
	return false
}

// 蛇行するジェットの中心緯度
func jetAxis(lon float64, t int) float64 {
	return 38 + 3*math.Sin(2*math.Pi*(lon+80)/15-0.15*float64(t))
}

// 海面高度 (lon, lat, time) を作ります。陸地は NaN です。
func SynthADT(lon, lat []float64, nt int, land []Ring) *Array {
	a := NewArray(len(lon), len(lat), nt)
	for i, x := range lon {
		for j, y := range lat {
			for t := 0; t < nt; t++ {
				v := math.NaN()
				if !onLand(land, x, y) {
					v = 0.5 + 0.7*math.Tanh((jetAxis(x, t)-y)/1.2)
				}
				a.Set(v, i, j, t)
			}
		}
	}
	return a
}

// 流速 (lon, lat, time) を作ります。ジェットの軸に沿って流れ、陸地は NaN です。
func SynthUV(lon, lat []float64, nt int, land []Ring) (u, v *Array) {
	u = NewArray(len(lon), len(lat), nt)
	v = NewArray(len(lon), len(lat), nt)
	const h = 0.01
	for i, x := range lon {
		for j, y := range lat {
			for t := 0; t < nt; t++ {
				if onLand(land, x, y) {
					u.Set(math.NaN(), i, j, t)
					v.Set(math.NaN(), i, j, t)
					continue
				}
				yc := jetAxis(x, t)
				slope := (jetAxis(x+h, t) - jetAxis(x-h, t)) / (2 * h)
				th := math.Atan(slope)
				s := 1.5 / math.Pow(math.Cosh((y-yc)/1.2), 2)
				u.Set(s*math.Cos(th), i, j, t)
				v.Set(s*math.Sin(th), i, j, t)
			}
		}
	}
	return u, v
}

// 全球の水温 (time=1, lat, lon) [K] を作ります。経度は 0..360 です。
func SynthSST(lon, lat []float64, land []Ring) *Array {
	a := NewArray(1, len(lat), len(lon))
	for i, y := range lat {
		for j, x := range lon {
			w := x
			if w > 180 {
				w -= 360
			}
			v := float64(sstFill)
			if !onLand(land, w, y) {
				v = 273.15 + 29 - 27*math.Pow(math.Sin(y*math.Pi/180), 2)
			}
			a.Set(v, 0, i, j)
		}
	}
	return a
}

// """既定の設定で読める合成データ一式を書き出します。
// Args:
//
//	cfg(SynthConfig): 出力先とコマ数
//
// Note:
//
//	adt.mat, uv.mat, 20171027_9.nc, land.shp, lakes.shp を作ります。
//
// """
func Synthesize(cfg SynthConfig) error {
	if cfg.Times < 1 {
		return fmt.Errorf("synth: times must be positive, got %d", cfg.Times)
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return err
	}
	land, lakes := SynthLand()
	lon, lat, err := gulfStreamGrid().Coords()
	if err != nil {
		return err
	}

	logger.Infof("合成データ作成: %s (%d 日)", cfg.Dir, cfg.Times)
	adt := SynthADT(lon, lat, cfg.Times, land)
	if err := WriteMatFile(filepath.Join(cfg.Dir, "adt.mat"), map[string]*Array{"adt_all": adt}, true); err != nil {
		return err
	}
	u, v := SynthUV(lon, lat, cfg.Times, land)
	if err := WriteMatFile(filepath.Join(cfg.Dir, "uv.mat"), map[string]*Array{"u_all": u, "v_all": v}, true); err != nil {
		return err
	}

	glon, glat := Linspace(0, 359, 360), Linspace(-89.5, 89.5, 180)
	cube, err := float32Cube(SynthSST(glon, glat, land))
	if err != nil {
		return err
	}
	err = WriteNetCDF(filepath.Join(cfg.Dir, "20171027_9.nc"), map[string]NCVar{
		"sst": {
			Values:     cube,
			Dimensions: []string{"time", "latitude", "longitude"},
			Attributes: map[string]interface{}{"units": "K", "_FillValue": float32(sstFill)},
		},
		"longitude": {
			Values:     glon,
			Dimensions: []string{"longitude"},
			Attributes: map[string]interface{}{"units": "degrees_east"},
		},
		"latitude": {
			Values:     glat,
			Dimensions: []string{"latitude"},
			Attributes: map[string]interface{}{"units": "degrees_north"},
		},
	})
	if err != nil {
		return err
	}

	if err := WriteRings(filepath.Join(cfg.Dir, "land.shp"), land); err != nil {
		return err
	}
	return WriteRings(filepath.Join(cfg.Dir, "lakes.shp"), lakes)
}
