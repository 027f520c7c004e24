package gulfstream

import (
	"image"
	"time"

	"gonum.org/v1/plot/vg/draw"
)

// 海面高度の動画 (ステレオ図法の地図に段彩)
type SSHVideoScene struct {
	cfg      SSHVideoConfig
	adt      *Array
	lon, lat []float64
	view     *MapView
	scale    ColorScale
	indices  []int
	dates    []time.Time
}

func PrepareSSHVideo(cfg SSHVideoConfig) (*SSHVideoScene, error) {
	vars, err := LoadVariables(cfg.Input, cfg.Var)
	if err != nil {
		return nil, err
	}
	adt, err := Canonical(vars, cfg.Var, cfg.Perm)
	if err != nil {
		return nil, err
	}
	return NewSSHVideoScene(cfg, adt)
}

// 配置済みの配列 adt (lat, lon, time) から動画の準備をします。
func NewSSHVideoScene(cfg SSHVideoConfig, adt *Array) (*SSHVideoScene, error) {
	if adt.NDim() != 3 {
		return nil, errNotTimeSeries(cfg.Var, adt)
	}
	lon, lat, err := cfg.Grid.Coords()
	if err != nil {
		return nil, err
	}
	if lon, lat, err = AlignCoords(lon, lat, adt.Shape[0], adt.Shape[1]); err != nil {
		return nil, err
	}
	view, err := cfg.Map.View()
	if err != nil {
		return nil, err
	}
	scale, err := cfg.Color.Scale()
	if err != nil {
		return nil, err
	}
	indices, err := cfg.Frames.Indices(adt.Times())
	if err != nil {
		return nil, err
	}
	dates, err := cfg.Frames.Dates(adt.Times())
	if err != nil {
		return nil, err
	}
	return &SSHVideoScene{
		cfg: cfg, adt: adt, lon: lon, lat: lat,
		view: view, scale: scale, indices: indices, dates: dates,
	}, nil
}

// 描画するコマ (時間軸の添字)
func (s *SSHVideoScene) Indices() []int {
	return s.indices
}

// 時刻 t のコマを描きます。コマごとに新しいプロットを作るので前のコマの内容は残りません。
func (s *SSHVideoScene) Draw(dc draw.Canvas, t int) error {
	field, err := s.adt.TimeSlice(t)
	if err != nil {
		return err
	}
	st := s.cfg.Map.Style

	p := NewMapPlot(s.cfg.Title + s.cfg.Frames.Label(s.dates[t]))
	bg, err := s.view.BackgroundLayers(st)
	if err != nil {
		return err
	}
	mesh, err := NewMesh(s.view, s.lon, s.lat, field, s.scale)
	if err != nil {
		return err
	}
	overlay, err := s.view.OverlayLayers(p, st)
	if err != nil {
		return err
	}
	places, err := NewPlaceLayers(s.view, s.cfg.Places, s.cfg.LabelOffset)
	if err != nil {
		return err
	}
	p.Add(bg...)
	p.Add(mesh)
	p.Add(overlay...)
	p.Add(places...)
	s.view.Frame(p)

	body, bar := SplitColorbar(dc, 0.12)
	p.Draw(body)
	cb, err := NewColorbar(s.scale, s.cfg.Colorbar)
	if err != nil {
		return err
	}
	cb.Draw(bar)
	return nil
}

// 時刻 t のコマの画像
func (s *SSHVideoScene) Frame(t int) (image.Image, error) {
	return s.cfg.Figure.Image(func(dc draw.Canvas) error {
		return s.Draw(dc, t)
	})
}

// """海面高度の動画を書き出します。
// Args:
//
//	cfg(SSHVideoConfig): 設定
//	output(string): 出力先。空文字の場合は設定の値
//
// """
func RunSSHVideo(cfg SSHVideoConfig, output string) error {
	scene, err := PrepareSSHVideo(cfg)
	if err != nil {
		return err
	}
	if output == "" {
		output = cfg.Output
	}
	return writeFrames(output, cfg.Video, scene.Indices(), scene.Frame)
}

// コマを順に描いて動画に書き込みます。
func writeFrames(output string, v Video, indices []int, frame func(t int) (image.Image, error)) error {
	return WithVideo(output, v, func(w FrameWriter) error {
		for i, t := range indices {
			logger.Infof("コマ %d/%d (t=%d)", i+1, len(indices), t)
			img, err := frame(t)
			if err != nil {
				return err
			}
			if err := w.WriteFrame(img); err != nil {
				return err
			}
		}
		return nil
	})
}
