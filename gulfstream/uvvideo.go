package gulfstream

import (
	"image"
	"time"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// 流速場の動画 (quiver)
type UVVideoScene struct {
	cfg     UVVideoConfig
	data    *UVData
	scale   ColorScale
	indices []int
	dates   []time.Time
}

func PrepareUVVideo(cfg UVVideoConfig) (*UVVideoScene, error) {
	data, err := LoadUV(cfg.UVSource)
	if err != nil {
		return nil, err
	}
	return NewUVVideoScene(cfg, data)
}

func NewUVVideoScene(cfg UVVideoConfig, data *UVData) (*UVVideoScene, error) {
	scale, err := cfg.Color.Scale()
	if err != nil {
		return nil, err
	}
	nt := data.U.Times()
	indices, err := cfg.Frames.Indices(nt)
	if err != nil {
		return nil, err
	}
	dates, err := cfg.Frames.Dates(nt)
	if err != nil {
		return nil, err
	}
	return &UVVideoScene{cfg: cfg, data: data, scale: scale, indices: indices, dates: dates}, nil
}

func (s *UVVideoScene) Indices() []int {
	return s.indices
}

// 時刻 t のコマを描きます。
func (s *UVVideoScene) Draw(dc draw.Canvas, t int) error {
	cfg := s.cfg
	d := s.data
	u, v, spd, err := d.Slice(t)
	if err != nil {
		return err
	}

	p := newLonLatPlot(cfg.Title+cfg.Frames.Label(s.dates[t]), cfg.XLim, cfg.YLim, cfg.XTicks, cfg.YTicks)
	p.Title.TextStyle.Font.Size = vg.Points(20)
	p.X.Tick.Label.Font.Size = vg.Points(15)
	p.Y.Tick.Label.Font.Size = vg.Points(15)

	q, err := NewQuiver(d.Lon, d.Lat, u, v, cfg.QuiverStep)
	if err != nil {
		return err
	}
	q.C, q.Colors = spd, s.scale
	land, err := d.LandLayer(t)
	if err != nil {
		return err
	}
	p.Add(q, land)
	fixLimits(p, cfg.XLim, cfg.YLim)
	p.Draw(dc)
	return nil
}

func (s *UVVideoScene) Frame(t int) (image.Image, error) {
	return s.cfg.Figure.Image(func(dc draw.Canvas) error {
		return s.Draw(dc, t)
	})
}

// """流速場の動画を書き出します。
// Args:
//
//	cfg(UVVideoConfig): 設定
//	output(string): 出力先。空文字の場合は設定の値
//
// """
func RunUVVideo(cfg UVVideoConfig, output string) error {
	scene, err := PrepareUVVideo(cfg)
	if err != nil {
		return err
	}
	if output == "" {
		output = cfg.Output
	}
	return writeFrames(output, cfg.Video, scene.Indices(), scene.Frame)
}
