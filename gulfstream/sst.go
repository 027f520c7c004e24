package gulfstream

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot/vg/draw"
)

// 海面水温のスナップショット (正射図法)
type SSTScene struct {
	cfg      SSTConfig
	field    *mat.Dense // °C
	lon, lat []float64
	view     *MapView
	scale    ColorScale
}

func PrepareSST(cfg SSTConfig) (*SSTScene, error) {
	vars, err := LoadVariables(cfg.Input, cfg.Var, cfg.LonVar, cfg.LatVar)
	if err != nil {
		return nil, err
	}
	sst, err := vars[cfg.Var].Squeeze().Matrix()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.Var, err)
	}
	return NewSSTScene(cfg, sst, vars[cfg.LonVar].Data, vars[cfg.LatVar].Data)
}

// 全球の水温 sst (lat, lon) から表示範囲を切り出して準備します。
func NewSSTScene(cfg SSTConfig, sst *mat.Dense, lon, lat []float64) (*SSTScene, error) {
	sub, lonSub, latSub, err := SelectRegion(sst, lon, lat, cfg.Window)
	if err != nil {
		return nil, err
	}
	r, c := sub.Dims()
	logger.Debugf("SST 切り出し: %d x %d", r, c)

	// 陸地は大きな負の値で表されているので表示用の値にする
	sub, err = ReplaceMissingDense(sub, cfg.Missing)
	if err != nil {
		return nil, err
	}
	field := Affine(sub, 1, cfg.Offset)

	view, err := cfg.Map.View()
	if err != nil {
		return nil, err
	}
	scale, err := cfg.Color.Scale()
	if err != nil {
		return nil, err
	}
	return &SSTScene{cfg: cfg, field: field, lon: lonSub, lat: latSub, view: view, scale: scale}, nil
}

// 表示する水温 (°C)
func (s *SSTScene) Field() *mat.Dense {
	return s.field
}

func (s *SSTScene) Draw(dc draw.Canvas) error {
	st := s.cfg.Map.Style
	p := NewMapPlot(s.cfg.Title)
	bg, err := s.view.BackgroundLayers(st)
	if err != nil {
		return err
	}
	mesh, err := NewMesh(s.view, s.lon, s.lat, s.field, s.scale)
	if err != nil {
		return err
	}
	overlay, err := s.view.OverlayLayers(p, st)
	if err != nil {
		return err
	}
	p.Add(bg...)
	p.Add(mesh)
	p.Add(overlay...)
	s.view.Frame(p)

	body, bar := SplitColorbar(dc, 0.1)
	p.Draw(body)
	cb, err := NewColorbar(s.scale, s.cfg.Colorbar)
	if err != nil {
		return err
	}
	cb.Draw(bar)
	return nil
}

// """海面水温の図を PNG に保存します。
// Args:
//
//	cfg(SSTConfig): 設定
//	output(string): 出力先。空文字の場合は設定の値
//
// """
func RunSST(cfg SSTConfig, output string) error {
	scene, err := PrepareSST(cfg)
	if err != nil {
		return err
	}
	if output == "" {
		output = cfg.Output
	}
	return scene.cfg.Figure.SavePNG(output, scene.Draw)
}
