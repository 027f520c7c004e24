package gulfstream

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// 流速の4面図 (pcolor, contourf, quiver, streamplot)
type UVSnapshotsScene struct {
	cfg   UVSnapshotsConfig
	data  *UVData
	scale ColorScale
}

func PrepareUVSnapshots(cfg UVSnapshotsConfig) (*UVSnapshotsScene, error) {
	data, err := LoadUV(cfg.UVSource)
	if err != nil {
		return nil, err
	}
	return NewUVSnapshotsScene(cfg, data)
}

func NewUVSnapshotsScene(cfg UVSnapshotsConfig, data *UVData) (*UVSnapshotsScene, error) {
	scale, err := cfg.Color.Scale()
	if err != nil {
		return nil, err
	}
	return &UVSnapshotsScene{cfg: cfg, data: data, scale: scale}, nil
}

// 4つのパネルを作ります。並びは [行][列] です。
func (s *UVSnapshotsScene) Panels() ([][]*plot.Plot, error) {
	cfg := s.cfg
	d := s.data
	u, v, spd, err := d.Slice(cfg.Time)
	if err != nil {
		return nil, err
	}

	panels := make([][]*plot.Plot, 2)
	for i := range panels {
		panels[i] = make([]*plot.Plot, 2)
		for j := range panels[i] {
			panels[i][j] = newLonLatPlot(cfg.Titles[2*i+j], cfg.XLim, cfg.YLim, cfg.XTicks, cfg.YTicks)
		}
	}

	// pcolor
	hm, err := NewHeatMap(d.Lon, d.Lat, spd, s.scale)
	if err != nil {
		return nil, err
	}
	panels[0][0].Add(hm)

	// contourf
	banded := s.scale
	banded.Levels = cfg.Levels
	banded.Extend = ExtendBoth
	mesh, err := NewMesh(lonLatView(), d.Lon, d.Lat, spd, banded)
	if err != nil {
		return nil, err
	}
	panels[0][1].Add(mesh)
	if cfg.Isolines && len(cfg.Levels) > 0 {
		panels[0][1].Add(NewIsolines(d.Lon, d.Lat, spd, cfg.Levels, color.Black))
	}

	// quiver
	q, err := NewQuiver(d.Lon, d.Lat, u, v, cfg.QuiverStep)
	if err != nil {
		return nil, err
	}
	q.C, q.Colors = spd, s.scale
	panels[1][0].Add(q)

	// streamplot
	sp, err := NewStreamplot(d.Lon, d.Lat, u, v, spd, cfg.Density, s.scale)
	if err != nil {
		return nil, err
	}
	sp.WidthPerSpeed = vg.Points(cfg.WidthPerSpeed)
	sp.ArrowSize = cfg.ArrowSize
	panels[1][1].Add(sp)

	for i, row := range panels {
		for j, p := range row {
			land, err := d.LandLayer(cfg.Time)
			if err != nil {
				return nil, err
			}
			p.Add(land)
			fixLimits(p, cfg.XLim, cfg.YLim)

			// 軸を共有するので外側のパネルだけに目盛りの文字を出す
			if i == 0 {
				p.X.Tick.Marker = blankTicks{p.X.Tick.Marker}
			}
			if j == 1 {
				p.Y.Tick.Marker = blankTicks{p.Y.Tick.Marker}
			}
		}
	}
	return panels, nil
}

// 目盛りの位置だけを残して文字を消す
type blankTicks struct {
	plot.Ticker
}

func (t blankTicks) Ticks(min, max float64) []plot.Tick {
	ticks := append([]plot.Tick(nil), t.Ticker.Ticks(min, max)...)
	for i := range ticks {
		ticks[i].Label = ""
	}
	return ticks
}

func (s *UVSnapshotsScene) Draw(dc draw.Canvas) error {
	panels, err := s.Panels()
	if err != nil {
		return err
	}
	body, bar := SplitColorbar(dc, 0.1)
	tiles := draw.Tiles{
		Rows:      2,
		Cols:      2,
		PadX:      vg.Points(2),
		PadY:      vg.Points(14),
		PadTop:    vg.Points(6),
		PadBottom: vg.Points(6),
		PadLeft:   vg.Points(6),
	}
	canvases := plot.Align(panels, tiles, body)
	for i := range panels {
		for j := range panels[i] {
			panels[i][j].Draw(canvases[i][j])
		}
	}

	cb, err := NewColorbar(s.scale, s.cfg.Colorbar)
	if err != nil {
		return err
	}
	cb.Draw(bar)
	return nil
}

// """流速の4面図を PNG に保存します。
// Args:
//
//	cfg(UVSnapshotsConfig): 設定
//	output(string): 出力先。空文字の場合は設定の値
//
// """
func RunUVSnapshots(cfg UVSnapshotsConfig, output string) error {
	scene, err := PrepareUVSnapshots(cfg)
	if err != nil {
		return err
	}
	if output == "" {
		output = cfg.Output
	}
	return cfg.Figure.SavePNG(output, scene.Draw)
}
