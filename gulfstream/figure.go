package gulfstream

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// 図の大きさ (インチ) と解像度
type Figure struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	DPI    int     `yaml:"dpi"`
}

func (f Figure) validate() error {
	if f.Width <= 0 || f.Height <= 0 || f.DPI <= 0 {
		return fmt.Errorf("figure %vx%v in at %d dpi is empty", f.Width, f.Height, f.DPI)
	}
	return nil
}

// 白紙のキャンバスに fn で描画します。呼び出しごとに新しいキャンバスを使います。
func (f Figure) Render(fn func(dc draw.Canvas) error) (*vgimg.Canvas, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(f.Width)*vg.Inch, vg.Length(f.Height)*vg.Inch),
		vgimg.UseDPI(f.DPI),
		vgimg.UseBackgroundColor(color.White),
	)
	if err := fn(draw.New(c)); err != nil {
		return nil, err
	}
	return c, nil
}

// 描画結果を画像として返します (動画のコマ用)。
func (f Figure) Image(fn func(dc draw.Canvas) error) (image.Image, error) {
	c, err := f.Render(fn)
	if err != nil {
		return nil, err
	}
	return c.Image(), nil
}

// 描画結果を PNG ファイルに保存します。
func (f Figure) SavePNG(path string, fn func(dc draw.Canvas) error) error {
	c, err := f.Render(fn)
	if err != nil {
		return err
	}
	w, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(w); err != nil {
		w.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return err
	}
	logger.Infof("画像出力: %s", path)
	return nil
}

// カラーバーの設定
type ColorbarSpec struct {
	Label  string    `yaml:"label"`
	Ticks  []float64 `yaml:"ticks"`
	Labels []string  `yaml:"tick_labels"` // 省略時は数値をそのまま表示
}

// カラーバーのプロットを作ります。
func NewColorbar(scale ColorScale, spec ColorbarSpec) (*plot.Plot, error) {
	if len(spec.Labels) > 0 && len(spec.Labels) != len(spec.Ticks) {
		return nil, fmt.Errorf("colorbar: %d tick labels for %d ticks", len(spec.Labels), len(spec.Ticks))
	}
	p := plot.New()
	p.Add(newColorbarBands(scale))
	p.HideX()
	p.Y.Label.Text = spec.Label
	p.Y.Tick.Label.Font.Size = vg.Points(8)
	if len(spec.Ticks) > 0 {
		ticks := NumberTicks(spec.Ticks)
		for i := range spec.Labels {
			ticks[i].Label = spec.Labels[i]
		}
		p.Y.Tick.Marker = plot.ConstantTicks(ticks)
	}
	return p, nil
}

// キャンバスの右側 frac をカラーバーに、残りを本体に割り当てます。
func SplitColorbar(dc draw.Canvas, frac float64) (body, bar draw.Canvas) {
	w := dc.Max.X - dc.Min.X
	h := dc.Max.Y - dc.Min.Y
	barW := vg.Length(frac) * w
	body = draw.Crop(dc, 0, -barW, 0, 0)
	bar = draw.Crop(dc, w-barW, 0, 0.15*h, -0.15*h)
	return body, bar
}

// カラーバー本体。段彩の場合は区間ごと、連続の場合は細かい区間で塗り、
// extend の側には範囲外の色の三角形を付けます。
type colorbarBands struct {
	scale ColorScale
	edges []float64
	tip   float64 // 三角形の高さ (データ単位)
}

func newColorbarBands(scale ColorScale) *colorbarBands {
	edges := scale.Levels
	if len(edges) < 2 {
		edges = Linspace(scale.Min, scale.Max, 256)
	}
	return &colorbarBands{
		scale: scale,
		edges: edges,
		tip:   0.05 * (edges[len(edges)-1] - edges[0]),
	}
}

func (b *colorbarBands) lower() bool {
	return b.scale.Extend == ExtendMin || b.scale.Extend == ExtendBoth
}

func (b *colorbarBands) upper() bool {
	return b.scale.Extend == ExtendMax || b.scale.Extend == ExtendBoth
}

func (b *colorbarBands) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	x0, x1, xm := trX(0), trX(1), trX(0.5)
	lo, hi := b.edges[0], b.edges[len(b.edges)-1]

	for k := 0; k+1 < len(b.edges); k++ {
		col, ok := b.scale.Color((b.edges[k] + b.edges[k+1]) / 2)
		if !ok {
			continue
		}
		y0, y1 := trY(b.edges[k]), trY(b.edges[k+1])
		c.FillPolygon(col, []vg.Point{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}})
	}

	outline := []vg.Point{{X: x0, Y: trY(lo)}}
	if b.lower() {
		if col, ok := b.scale.Color(lo - b.tip); ok {
			c.FillPolygon(col, []vg.Point{{X: x0, Y: trY(lo)}, {X: xm, Y: trY(lo - b.tip)}, {X: x1, Y: trY(lo)}})
		}
		outline = append(outline, vg.Point{X: xm, Y: trY(lo - b.tip)})
	}
	outline = append(outline, vg.Point{X: x1, Y: trY(lo)}, vg.Point{X: x1, Y: trY(hi)})
	if b.upper() {
		if col, ok := b.scale.Color(hi + b.tip); ok {
			c.FillPolygon(col, []vg.Point{{X: x1, Y: trY(hi)}, {X: xm, Y: trY(hi + b.tip)}, {X: x0, Y: trY(hi)}})
		}
		outline = append(outline, vg.Point{X: xm, Y: trY(hi + b.tip)})
	}
	outline = append(outline, vg.Point{X: x0, Y: trY(hi)}, vg.Point{X: x0, Y: trY(lo)})
	c.StrokeLines(draw.LineStyle{Color: color.Black, Width: vg.Points(0.5)}, outline)
}

func (b *colorbarBands) DataRange() (xmin, xmax, ymin, ymax float64) {
	ymin, ymax = b.edges[0], b.edges[len(b.edges)-1]
	if b.lower() {
		ymin -= b.tip
	}
	if b.upper() {
		ymax += b.tip
	}
	return 0, 1, ymin, ymax
}
