package gulfstream

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg/draw"
)

// 海面高度の3次元スナップショット
type SSH3DScene struct {
	Surface  *Surface3D
	Scale    ColorScale
	Colorbar ColorbarSpec
	Figure   Figure
}

// データを読み込み、3次元表示の準備をします。
func PrepareSSH3D(cfg SSH3DConfig) (*SSH3DScene, error) {
	vars, err := LoadVariables(cfg.Input, cfg.Var)
	if err != nil {
		return nil, err
	}
	adt, err := Canonical(vars, cfg.Var, cfg.Perm)
	if err != nil {
		return nil, err
	}
	return NewSSH3DScene(cfg, adt)
}

// 配置済みの配列 adt (lat, lon, time) から3次元表示を組み立てます。
func NewSSH3DScene(cfg SSH3DConfig, adt *Array) (*SSH3DScene, error) {
	snapshot, err := adt.TimeSlice(cfg.Time)
	if err != nil {
		return nil, err
	}
	lon, lat, err := cfg.Grid.Coords()
	if err != nil {
		return nil, err
	}
	rows, cols := snapshot.Dims()
	if lon, lat, err = AlignCoords(lon, lat, rows, cols); err != nil {
		return nil, err
	}

	// 陸地は表示用の値にする
	snapshot, err = ReplaceMissingDense(snapshot, cfg.Missing)
	if err != nil {
		return nil, err
	}

	scale, err := cfg.Color.Scale()
	if err != nil {
		return nil, err
	}
	surf, err := NewSurface3D(lon, lat, snapshot, scale, cfg.ZLim, cfg.Camera)
	if err != nil {
		return nil, err
	}
	surf.XLim, surf.YLim = cfg.XLim, cfg.YLim
	surf.XTicks = DegreeTicks(cfg.XTicks)
	surf.YTicks = DegreeTicks(cfg.YTicks)
	surf.ZTicks = NumberTicks(cfg.ZTicks)
	surf.Labels = cfg.Labels

	return &SSH3DScene{Surface: surf, Scale: scale, Colorbar: cfg.Colorbar, Figure: cfg.Figure}, nil
}

// キャンバスに描画します。
func (s *SSH3DScene) Draw(dc draw.Canvas) error {
	body, bar := SplitColorbar(dc, 0.12)

	p := plot.New()
	p.Add(s.Surface)
	p.HideAxes()
	p.Draw(body)

	cb, err := NewColorbar(s.Scale, s.Colorbar)
	if err != nil {
		return err
	}
	cb.Draw(bar)
	return nil
}

// """3次元スナップショットを PNG に保存します。
// Args:
//
//	cfg(SSH3DConfig): 設定
//	output(string): 出力先。空文字の場合は設定の値
//
// """
func RunSSH3D(cfg SSH3DConfig, output string) error {
	scene, err := PrepareSSH3D(cfg)
	if err != nil {
		return err
	}
	if output == "" {
		output = cfg.Output
	}
	return scene.Figure.SavePNG(output, scene.Draw)
}
