package gulfstream

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
)

// 区分線形のカラーマップ (matplotlib の LinearSegmentedColormap 相当)
type linearMap struct {
	pos      []float64
	colors   []color.NRGBA
	min, max float64
	alpha    float64
}

func newLinearMap(pos []float64, colors ...color.NRGBA) *linearMap {
	return &linearMap{pos: pos, colors: colors, min: 0, max: 1, alpha: 1}
}

func (m *linearMap) At(v float64) (color.Color, error) {
	switch {
	case math.IsNaN(v):
		return nil, palette.ErrNaN
	case v < m.min:
		return nil, palette.ErrUnderflow
	case v > m.max:
		return nil, palette.ErrOverflow
	}
	f := 0.0
	if m.max > m.min {
		f = (v - m.min) / (m.max - m.min)
	}

	k := sort.SearchFloat64s(m.pos, f)
	if k == 0 {
		return m.withAlpha(m.colors[0]), nil
	}
	if k >= len(m.pos) {
		return m.withAlpha(m.colors[len(m.colors)-1]), nil
	}
	t := (f - m.pos[k-1]) / (m.pos[k] - m.pos[k-1])
	a, b := m.colors[k-1], m.colors[k]
	lerp := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + t*(float64(y)-float64(x))))
	}
	return m.withAlpha(color.NRGBA{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: 255}), nil
}

func (m *linearMap) withAlpha(c color.NRGBA) color.Color {
	c.A = uint8(math.Round(255 * m.alpha))
	return c
}

func (m *linearMap) Max() float64           { return m.max }
func (m *linearMap) SetMax(v float64)       { m.max = v }
func (m *linearMap) Min() float64           { return m.min }
func (m *linearMap) SetMin(v float64)       { m.min = v }
func (m *linearMap) Alpha() float64         { return m.alpha }
func (m *linearMap) SetAlpha(alpha float64) { m.alpha = alpha }

func (m *linearMap) Palette(n int) palette.Palette {
	return sampledPalette(m, n)
}

type colors []color.Color

func (c colors) Colors() []color.Color { return c }

func sampledPalette(cm palette.ColorMap, n int) palette.Palette {
	out := make(colors, n)
	for i := range out {
		v := cm.Min()
		if n > 1 {
			v += (cm.Max() - cm.Min()) * float64(i) / float64(n-1)
		}
		c, err := cm.At(v)
		if err != nil {
			c = color.Transparent
		}
		out[i] = c
	}
	return out
}

// 名前からカラーマップを作ります (bone, ocean, hot, greys, coolwarm)。
func ColormapByName(name string) (palette.ColorMap, error) {
	switch strings.ToLower(name) {
	case "bone":
		return newLinearMap([]float64{0, 0.365079, 0.746032, 1},
			color.NRGBA{0, 0, 0, 255},
			color.NRGBA{81, 81, 113, 255},
			color.NRGBA{166, 198, 198, 255},
			color.NRGBA{255, 255, 255, 255}), nil
	case "ocean":
		return newLinearMap([]float64{0, 1.0 / 3, 2.0 / 3, 1},
			color.NRGBA{0, 128, 0, 255},
			color.NRGBA{0, 0, 85, 255},
			color.NRGBA{0, 128, 170, 255},
			color.NRGBA{255, 255, 255, 255}), nil
	case "hot":
		return newLinearMap([]float64{0, 0.365079, 0.746032, 1},
			color.NRGBA{10, 0, 0, 255},
			color.NRGBA{255, 0, 0, 255},
			color.NRGBA{255, 255, 0, 255},
			color.NRGBA{255, 255, 255, 255}), nil
	case "greys":
		return newLinearMap([]float64{0, 1},
			color.NRGBA{255, 255, 255, 255},
			color.NRGBA{0, 0, 0, 255}), nil
	case "coolwarm":
		return moreland.SmoothBlueRed(), nil
	}
	return nil, fmt.Errorf("unknown colormap %q", name)
}

// 名前付きの色 (設定ファイル用)
var namedColors = map[string]color.NRGBA{
	"white":       {255, 255, 255, 255},
	"black":       {0, 0, 0, 255},
	"red":         {255, 0, 0, 255},
	"grey":        {128, 128, 128, 255},
	"saddlebrown": {139, 69, 19, 255},
	"indianred":   {205, 92, 92, 255},
	"aqua":        {0, 255, 255, 255},
	"slateblue":   {106, 90, 205, 255},
	"none":        {0, 0, 0, 0},
}

// 色名または #rrggbb を解釈します。
func ParseColor(s string) (color.Color, error) {
	if c, ok := namedColors[strings.ToLower(s)]; ok {
		return c, nil
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return nil, fmt.Errorf("unknown color %q", s)
	}
	return color.NRGBA{r, g, b, 255}, nil
}

// 値の範囲外の扱い (matplotlib の extend)
const (
	ExtendNeither = "neither"
	ExtendMin     = "min"
	ExtendMax     = "max"
	ExtendBoth    = "both"
)

// 値から色への変換規則
type ColorScale struct {
	Map      palette.ColorMap
	Min, Max float64
	Under    color.Color // nil なら最小色に丸める
	Over     color.Color // nil なら最大色に丸める
	Levels   []float64   // 指定した場合は段彩 (contourf)
	Extend   string      // Levels 使用時の範囲外の扱い
}

// 設定からカラースケールを作ります。
func NewColorScale(name string, min, max float64) (ColorScale, error) {
	cm, err := ColormapByName(name)
	if err != nil {
		return ColorScale{}, err
	}
	if !(max > min) {
		return ColorScale{}, fmt.Errorf("color range [%v, %v] is empty", min, max)
	}
	cm.SetMin(min)
	cm.SetMax(max)
	return ColorScale{Map: cm, Min: min, Max: max}, nil
}

// v の色を返します。ok が false のセルは描画しません。
func (s ColorScale) Color(v float64) (color.Color, bool) {
	if math.IsNaN(v) {
		return nil, false
	}
	if len(s.Levels) > 1 {
		return s.bandColor(v)
	}
	switch {
	case v < s.Min:
		if s.Under != nil {
			return s.Under, true
		}
		v = s.Min
	case v > s.Max:
		if s.Over != nil {
			return s.Over, true
		}
		v = s.Max
	}
	c, err := s.Map.At(v)
	if err != nil {
		return nil, false
	}
	return c, true
}

// 段彩: 区間 [levels[k], levels[k+1]) を区間の中央の色で塗る
func (s ColorScale) bandColor(v float64) (color.Color, bool) {
	lv := s.Levels
	n := len(lv) - 1
	k := sort.SearchFloat64s(lv, v)
	switch {
	case v < lv[0]:
		if s.Extend != ExtendMin && s.Extend != ExtendBoth {
			return nil, false
		}
		if s.Under != nil {
			return s.Under, true
		}
		k = 0
	case v > lv[n]:
		if s.Extend != ExtendMax && s.Extend != ExtendBoth {
			return nil, false
		}
		if s.Over != nil {
			return s.Over, true
		}
		k = n - 1
	default:
		// SearchFloat64s は lv[k] >= v の最小の k
		if k > 0 && (k > n-1 || lv[k] > v) {
			k--
		}
		if k > n-1 {
			k = n - 1
		}
	}
	mid := math.Max(s.Min, math.Min(s.Max, (lv[k]+lv[k+1])/2))
	c, err := s.Map.At(mid)
	if err != nil {
		return nil, false
	}
	return c, true
}
