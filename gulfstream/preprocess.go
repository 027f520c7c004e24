package gulfstream

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// 欠測値の判定方法
const (
	MissingNaN   = "nan"
	MissingBelow = "below"
	MissingAbove = "above"
	MissingEqual = "equal"
)

// 欠測値 (陸地など) の表示用置換規則
type Sentinel struct {
	Kind    string  `yaml:"kind"`    // nan, below, above, equal
	Value   float64 `yaml:"value"`   // below/above/equal の閾値
	Display float64 `yaml:"display"` // 置換後の値
}

// v が欠測値に該当するか
func (s Sentinel) Matches(v float64) bool {
	switch s.Kind {
	case MissingNaN, "":
		return math.IsNaN(v)
	case MissingBelow:
		return v < s.Value
	case MissingAbove:
		return v > s.Value
	case MissingEqual:
		return v == s.Value
	}
	return false
}

func (s Sentinel) validate() error {
	switch s.Kind {
	case MissingNaN, MissingBelow, MissingAbove, MissingEqual, "":
	default:
		return fmt.Errorf("unknown missing value kind %q", s.Kind)
	}
	if s.Matches(s.Display) {
		// 置換後の値が再び欠測と判定されると冪等にならない
		return fmt.Errorf("display value %v is itself a missing value (%s %v)", s.Display, s.Kind, s.Value)
	}
	return nil
}

// 欠測値を表示用の値に置き換えた新しい配列を返します。
func ReplaceMissing(a *Array, s Sentinel) (*Array, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	out := a.Clone()
	for i, v := range out.Data {
		if s.Matches(v) {
			out.Data[i] = s.Display
		}
	}
	return out, nil
}

// 2次元版の ReplaceMissing
func ReplaceMissingDense(m *mat.Dense, s Sentinel) (*mat.Dense, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	out := mat.DenseCopyOf(m)
	out.Apply(func(_, _ int, v float64) float64 {
		if s.Matches(v) {
			return s.Display
		}
		return v
	}, out)
	return out, nil
}

// 流速の大きさ sqrt(u^2+v^2) を計算します。
func Speed(u, v *Array) (*Array, error) {
	if !u.SameShape(v) {
		return nil, fmt.Errorf("speed: u %v vs v %v: %w", u.Shape, v.Shape, ErrShapeMismatch)
	}
	out := NewArray(u.Shape...)
	for i := range out.Data {
		out.Data[i] = math.Sqrt(u.Data[i]*u.Data[i] + v.Data[i]*v.Data[i])
	}
	return out, nil
}

// 参照断面の NaN の位置から陸地マスクを作ります。
// 陸地 (NaN) のセルは 1、海のセルは NaN です。
func LandMask(ref *mat.Dense) *mat.Dense {
	r, c := ref.Dims()
	mask := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if math.IsNaN(ref.At(i, j)) {
				mask.Set(i, j, 1)
			} else {
				mask.Set(i, j, math.NaN())
			}
		}
	}
	return mask
}

// [lo, hi] を n 等分した座標列 (numpy.linspace)
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return []float64{}
	}
	if n == 1 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

// 経度・緯度の座標列から2次元の格子を作ります (numpy.meshgrid)。
// 戻り値の行は緯度、列は経度に対応します。
func Meshgrid(lon, lat []float64) (lonGrid, latGrid *mat.Dense) {
	lonGrid = mat.NewDense(len(lat), len(lon), nil)
	latGrid = mat.NewDense(len(lat), len(lon), nil)
	for i, y := range lat {
		for j, x := range lon {
			lonGrid.Set(i, j, x)
			latGrid.Set(i, j, y)
		}
	}
	return lonGrid, latGrid
}

// データの形状 (rows=緯度, cols=経度) に座標列をそろえます。
//
// Note:
//
//	座標列がセル境界 (データより1つ長い) の場合は最後の要素を落とします。
//	同じ長さの場合はそのまま使います。それ以外は形状不一致です。
func AlignCoords(lon, lat []float64, rows, cols int) ([]float64, []float64, error) {
	align := func(name string, c []float64, n int) ([]float64, error) {
		switch len(c) {
		case n:
			return c, nil
		case n + 1:
			return c[:n], nil
		}
		return nil, fmt.Errorf("%s has %d values for %d grid cells: %w", name, len(c), n, ErrShapeMismatch)
	}
	lonA, err := align("longitude", lon, cols)
	if err != nil {
		return nil, nil, err
	}
	latA, err := align("latitude", lat, rows)
	if err != nil {
		return nil, nil, err
	}
	return lonA, latA, nil
}

// 切り出し範囲 (度)
type Window struct {
	Lon0   float64 `yaml:"lon0"`
	Lat0   float64 `yaml:"lat0"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// lo < c < hi を満たす添字
func WindowIndices(coords []float64, lo, hi float64) []int {
	idx := []int{}
	for i, c := range coords {
		if c > lo && c < hi {
			idx = append(idx, i)
		}
	}
	return idx
}

// 範囲 w に含まれる部分格子を切り出します。
func SelectRegion(field *mat.Dense, lon, lat []float64, w Window) (*mat.Dense, []float64, []float64, error) {
	r, c := field.Dims()
	if r != len(lat) || c != len(lon) {
		return nil, nil, nil, fmt.Errorf("select region: field %dx%d vs %d lat, %d lon: %w", r, c, len(lat), len(lon), ErrShapeMismatch)
	}
	rows := WindowIndices(lat, w.Lat0, w.Lat0+w.Height)
	cols := WindowIndices(lon, w.Lon0, w.Lon0+w.Width)
	if len(rows) == 0 || len(cols) == 0 {
		return nil, nil, nil, fmt.Errorf("select region: window %+v contains no grid cells", w)
	}

	sub := mat.NewDense(len(rows), len(cols), nil)
	lonSub := make([]float64, len(cols))
	latSub := make([]float64, len(rows))
	for i, ri := range rows {
		latSub[i] = lat[ri]
		for j, cj := range cols {
			sub.Set(i, j, field.At(ri, cj))
		}
	}
	for j, cj := range cols {
		lonSub[j] = lon[cj]
	}
	return sub, lonSub, latSub, nil
}

// 行列の各要素に a*x+b を適用します (単位換算)。
func Affine(m *mat.Dense, a, b float64) *mat.Dense {
	out := mat.DenseCopyOf(m)
	out.Apply(func(_, _ int, v float64) float64 { return a*v + b }, out)
	return out
}
