package gulfstream

import (
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"gopkg.in/yaml.v3"
)

// 経度緯度の格子 (np.linspace 相当)
type Grid struct {
	Lon  [2]float64 `yaml:"lon"`
	NLon int        `yaml:"nlon"`
	Lat  [2]float64 `yaml:"lat"`
	NLat int        `yaml:"nlat"`
}

// 格子の経度列と緯度列
func (g Grid) Coords() (lon, lat []float64, err error) {
	if g.NLon < 2 || g.NLat < 2 {
		return nil, nil, fmt.Errorf("grid %dx%d needs at least 2 points per axis", g.NLon, g.NLat)
	}
	return Linspace(g.Lon[0], g.Lon[1], g.NLon), Linspace(g.Lat[0], g.Lat[1], g.NLat), nil
}

// 読み込む配列とその軸の並べ替え
type Source struct {
	Input string `yaml:"input"`
	Var   string `yaml:"var"`
	Perm  []int  `yaml:"perm"` // ファイルの軸順から (lat, lon, time) への並べ替え
}

// 値の色付け
type ColorConfig struct {
	Colormap string    `yaml:"colormap"`
	Min      float64   `yaml:"min"`
	Max      float64   `yaml:"max"`
	Under    string    `yaml:"under"`
	Over     string    `yaml:"over"`
	Levels   []float64 `yaml:"levels"`
	Extend   string    `yaml:"extend"`
}

func (c ColorConfig) Scale() (ColorScale, error) {
	s, err := NewColorScale(c.Colormap, c.Min, c.Max)
	if err != nil {
		return s, err
	}
	if c.Under != "" {
		if s.Under, err = ParseColor(c.Under); err != nil {
			return s, err
		}
	}
	if c.Over != "" {
		if s.Over, err = ParseColor(c.Over); err != nil {
			return s, err
		}
	}
	s.Levels = c.Levels
	s.Extend = c.Extend
	if s.Extend == "" {
		s.Extend = ExtendNeither
	}
	return s, nil
}

// 地図の図法と表示範囲
type MapConfig struct {
	Projection string      `yaml:"projection"`
	Lon0       float64     `yaml:"lon_0"`
	Lat0       float64     `yaml:"lat_0"`
	Corners    *[4]float64 `yaml:"corners"` // 左下経度, 左下緯度, 右上経度, 右上緯度
	Extent     *[4]float64 `yaml:"extent"`  // 中心を原点とした xmin, ymin, xmax, ymax [m]
	Style      MapStyle    `yaml:"style"`
}

func (m MapConfig) View() (*MapView, error) {
	p, err := NewProjection(m.Projection, m.Lon0, m.Lat0)
	if err != nil {
		return nil, err
	}
	switch {
	case m.Corners != nil:
		c := m.Corners
		return NewCornerView(p, c[0], c[1], c[2], c[3])
	case m.Extent != nil:
		e := m.Extent
		return NewXYView(p, e[0], e[1], e[2], e[3])
	}
	return nil, fmt.Errorf("map: either corners or extent is required")
}

// 3次元スナップショット (ssh3d)
type SSH3DConfig struct {
	Source   `yaml:",inline"`
	Grid     Grid         `yaml:"grid"`
	Time     int          `yaml:"time"`
	Missing  Sentinel     `yaml:"missing"`
	Color    ColorConfig  `yaml:"color"`
	XLim     [2]float64   `yaml:"xlim"`
	YLim     [2]float64   `yaml:"ylim"`
	ZLim     [2]float64   `yaml:"zlim"`
	XTicks   []float64    `yaml:"xticks"`
	YTicks   []float64    `yaml:"yticks"`
	ZTicks   []float64    `yaml:"zticks"`
	Labels   [3]string    `yaml:"labels"` // x, y, z 軸の名前
	Camera   Camera       `yaml:"camera"`
	Colorbar ColorbarSpec `yaml:"colorbar"`
	Figure   Figure       `yaml:"figure"`
	Output   string       `yaml:"output"`
}

// SSH の動画 (ssh-video)
type SSHVideoConfig struct {
	Source      `yaml:",inline"`
	Grid        Grid         `yaml:"grid"`
	Map         MapConfig    `yaml:"map"`
	Color       ColorConfig  `yaml:"color"`
	Colorbar    ColorbarSpec `yaml:"colorbar"`
	Title       string       `yaml:"title"`
	Frames      Frames       `yaml:"frames"`
	Places      []Place      `yaml:"places"`
	LabelOffset float64      `yaml:"label_offset"` // 地名をずらす量 [m]
	Video       Video        `yaml:"video"`
	Figure      Figure       `yaml:"figure"`
	Output      string       `yaml:"output"`
}

// SST のスナップショット (sst)
type SSTConfig struct {
	Input    string       `yaml:"input"`
	Var      string       `yaml:"var"`
	LonVar   string       `yaml:"lon_var"`
	LatVar   string       `yaml:"lat_var"`
	Window   Window       `yaml:"window"`
	Missing  Sentinel     `yaml:"missing"`
	Offset   float64      `yaml:"offset"` // 表示前に加える値 (K → °C)
	Map      MapConfig    `yaml:"map"`
	Color    ColorConfig  `yaml:"color"`
	Colorbar ColorbarSpec `yaml:"colorbar"`
	Title    string       `yaml:"title"`
	Figure   Figure       `yaml:"figure"`
	Output   string       `yaml:"output"`
}

// 流速データ (u, v) の読み込み設定
type UVSource struct {
	Input            string `yaml:"input"`
	UVar             string `yaml:"u_var"`
	VVar             string `yaml:"v_var"`
	Perm             []int  `yaml:"perm"`
	Grid             Grid   `yaml:"grid"`
	MaskTime         int    `yaml:"mask_time"`           // 陸地マスクを作る時刻
	LandMaskPerFrame bool   `yaml:"land_mask_per_frame"` // コマごとに陸地マスクを作り直す
	LandColor        string `yaml:"land_color"`
}

// 流速の4面図 (uv-snapshots)
type UVSnapshotsConfig struct {
	UVSource      `yaml:",inline"`
	Time          int           `yaml:"time"`
	Color         ColorConfig   `yaml:"color"`
	Levels        []float64     `yaml:"levels"` // contourf の段彩
	Isolines      bool          `yaml:"isolines"`
	QuiverStep    int           `yaml:"quiver_step"`
	Density       StreamDensity `yaml:"density"`
	WidthPerSpeed float64       `yaml:"width_per_speed"` // 流線の太さ [pt / (m/s)]
	ArrowSize     float64       `yaml:"arrow_size"`
	Titles        [4]string     `yaml:"titles"`
	XLim          [2]float64    `yaml:"xlim"`
	YLim          [2]float64    `yaml:"ylim"`
	XTicks        []float64     `yaml:"xticks"`
	YTicks        []float64     `yaml:"yticks"`
	Colorbar      ColorbarSpec  `yaml:"colorbar"`
	Figure        Figure        `yaml:"figure"`
	Output        string        `yaml:"output"`
}

// 流速の動画 (uv-video)
type UVVideoConfig struct {
	UVSource   `yaml:",inline"`
	Color      ColorConfig `yaml:"color"`
	QuiverStep int         `yaml:"quiver_step"`
	Title      string      `yaml:"title"`
	Frames     Frames      `yaml:"frames"`
	XLim       [2]float64  `yaml:"xlim"`
	YLim       [2]float64  `yaml:"ylim"`
	XTicks     []float64   `yaml:"xticks"`
	YTicks     []float64   `yaml:"yticks"`
	Video      Video       `yaml:"video"`
	Figure     Figure      `yaml:"figure"`
	Output     string      `yaml:"output"`
}

// 全体の設定
type Config struct {
	SSH3D       SSH3DConfig       `yaml:"ssh3d"`
	SSHVideo    SSHVideoConfig    `yaml:"ssh_video"`
	SST         SSTConfig         `yaml:"sst"`
	UVSnapshots UVSnapshotsConfig `yaml:"uv_snapshots"`
	UVVideo     UVVideoConfig     `yaml:"uv_video"`
	Export      ExportConfig      `yaml:"export"`
	Synth       SynthConfig       `yaml:"synth"`
}

// ガルフストリーム周辺の格子 (121 x 81)
func gulfStreamGrid() Grid {
	return Grid{Lon: [2]float64{-80, -50}, NLon: 121, Lat: [2]float64{30, 50}, NLat: 81}
}

func uvSource() UVSource {
	return UVSource{
		Input:     "data/uv.mat",
		UVar:      "u_all",
		VVar:      "v_all",
		Perm:      []int{1, 0, 2},
		Grid:      gulfStreamGrid(),
		MaskTime:  100,
		LandColor: "grey",
	}
}

var (
	lonTicks = []float64{-75, -70, -65, -60, -55}
	latTicks = []float64{32, 36, 40, 44, 48}
)

// 既定の設定
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.SSH3D = SSH3DConfig{
		Source:  Source{Input: "data/adt.mat", Var: "adt_all", Perm: []int{1, 0, 2}},
		Grid:    gulfStreamGrid(),
		Time:    100,
		Missing: Sentinel{Kind: MissingNaN, Display: -0.5},
		Color:   ColorConfig{Colormap: "bone", Min: -0.4, Max: 1.5, Under: "saddlebrown", Extend: ExtendBoth},
		XLim:    [2]float64{-80, -50},
		YLim:    [2]float64{30, 50},
		ZLim:    [2]float64{-1.5, 8},
		XTicks:  lonTicks,
		YTicks:  latTicks,
		ZTicks:  []float64{0, 2, 4, 6, 8},
		Labels:  [3]string{"Longitude", "Latitude", "Height"},
		Camera:  Camera{Elev: 30, Azim: -150},
		Colorbar: ColorbarSpec{
			Label: "Sea surface height (m)",
		},
		Figure: Figure{Width: 11, Height: 6, DPI: 800},
		Output: "gulfStreamSSH3D_snapshot.png",
	}

	cfg.SSHVideo = SSHVideoConfig{
		Source: Source{Input: "data/adt.mat", Var: "adt_all", Perm: []int{1, 0, 2}},
		Grid:   gulfStreamGrid(),
		Map: MapConfig{
			Projection: "stere",
			Lon0:       -65,
			Lat0:       40,
			Corners:    &[4]float64{-80, 30, -50, 50},
			Style: MapStyle{
				Boundary:   "#004080",
				Continents: "indianred",
				Lakes:      "#004080",
				GridColor:  "black",
				Coastline:  "data/land.shp",
				LakeShapes: "data/lakes.shp",
				Parallels:  []float64{30, 33, 36, 39, 42, 45, 48},
				Meridians:  []float64{-80, -75, -70, -65, -60, -55},
			},
		},
		Color: ColorConfig{
			Colormap: "ocean",
			Min:      -1.2,
			Max:      1.2,
			Levels:   Linspace(-1.2, 1.2, 13),
			Extend:   ExtendMax,
		},
		Colorbar: ColorbarSpec{Label: "SSH (m)"},
		Title:    "Sea-surface height     ",
		Frames:   Frames{Start: "1993-01-01", First: 1, Last: 31, Step: 1},
		Places: []Place{
			{Name: "New York", Lon: -74.00, Lat: 40.71},
			{Name: "Cape Hatteras", Lon: -75.54, Lat: 35.25},
			{Name: "Boston", Lon: -71.06, Lat: 42.36},
		},
		LabelOffset: 50000,
		Video: Video{
			FPS:     24,
			Bitrate: 30000,
			Codec:   "libx264",
			Metadata: map[string]string{
				"title":   "Gulf Stream SSH",
				"artist":  "Tom Bolton",
				"comment": "Gulf Stream Visualization of AVISO ADT data.",
			},
		},
		Figure: Figure{Width: 8, Height: 6, DPI: 100},
		Output: "gulfStreamSSH_b.gif",
	}

	cfg.SST = SSTConfig{
		Input:   "data/20171027_9.nc",
		Var:     "sst",
		LonVar:  "longitude",
		LatVar:  "latitude",
		Window:  Window{Lon0: 260, Lat0: 0, Width: 120, Height: 80},
		Missing: Sentinel{Kind: MissingBelow, Value: 0, Display: 290},
		Offset:  -273.15,
		Map: MapConfig{
			Projection: "ortho",
			Lon0:       280,
			Lat0:       20,
			Extent:     &[4]float64{-1e6, 0, EarthRadius, 2 * EarthRadius / 2.5},
			Style: MapStyle{
				Boundary:   "aqua",
				Continents: "grey",
				Lakes:      "slateblue",
				GridColor:  "black",
				Coastline:  "data/land.shp",
				LakeShapes: "data/lakes.shp",
				Parallels:  arange(-90, 120, 15),
				Meridians:  arange(0, 360, 30),
			},
		},
		Color: ColorConfig{Colormap: "coolwarm", Min: 5, Max: 28},
		Colorbar: ColorbarSpec{
			Label:  "Temperature (°C)",
			Ticks:  []float64{5, 10, 15, 20, 25, 28},
			Labels: []string{"<5.0", "10.0", "15.0", "20.0", "25.0", ">28.0"},
		},
		Title:  "Sea-Surface Temperature on 9:00 27/10/2017",
		Figure: Figure{Width: 12, Height: 6, DPI: 400},
		Output: "SST_snapshot.png",
	}

	cfg.UVSnapshots = UVSnapshotsConfig{
		UVSource:      uvSource(),
		Time:          1,
		Color:         ColorConfig{Colormap: "hot", Min: 0, Max: 1.6},
		Levels:        Linspace(0, 1.6, 9),
		QuiverStep:    1,
		Density:       StreamDensity{X: 7, Y: 7},
		WidthPerSpeed: 2,
		ArrowSize:     0.5,
		Titles: [4]string{
			"pcolor of √(u²+v²)",
			"contourf of √(u²+v²)",
			"quiver of (u,v)",
			"streamplot of (u,v)",
		},
		XLim:     [2]float64{-80, -50},
		YLim:     [2]float64{30, 50},
		XTicks:   lonTicks,
		YTicks:   latTicks,
		Colorbar: ColorbarSpec{Label: "Speed (ms⁻¹)"},
		Figure:   Figure{Width: 11, Height: 8, DPI: 600},
		Output:   "gulfStreamUV_snapshots.png",
	}

	cfg.UVVideo = UVVideoConfig{
		UVSource:   uvSource(),
		Color:      ColorConfig{Colormap: "hot", Min: 0, Max: 1.6},
		QuiverStep: 1,
		Title:      "Velocity field    ",
		Frames:     Frames{Start: "1993-01-01", First: 1, Last: 31, Step: 1},
		XLim:       [2]float64{-80, -50},
		YLim:       [2]float64{30, 50},
		XTicks:     lonTicks,
		YTicks:     latTicks,
		Video: Video{
			FPS:     24,
			Bitrate: 30000,
			Codec:   "libx264",
			Metadata: map[string]string{
				"title":   "Gulf Stream UV",
				"artist":  "Tom Bolton",
				"comment": "Gulf Stream Visualization of AVISO UV data.",
			},
		},
		Figure: Figure{Width: 12, Height: 8, DPI: 100},
		Output: "gulfStreamUV.gif",
	}

	cfg.Export = ExportConfig{
		Input: "data/uv.mat",
		Vars:  []string{"u_all", "v_all"},
		Perm:  []int{1, 0, 2},
		Grid:  gulfStreamGrid(),
		Time:  1,
		Start: "1993-01-01",
	}

	cfg.Synth = SynthConfig{Dir: "data", Times: 130}
	return cfg
}

// np.arange(start, stop, step)
func arange(start, stop, step float64) []float64 {
	out := []float64{}
	for v := start; v < stop; v += step {
		out = append(out, v)
	}
	return out
}

// """設定ファイルを読み込みます。
// Args:
//
//	path(string): YAML ファイル。空文字の場合は既定の設定のみ
//
// Returns:
//
//	*Config: 既定の設定をファイルの内容で上書きしたもの
//
// """
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	logger.Debugf("設定:\n%s", spew.Sdump(cfg))
	return cfg, nil
}

// 設定を YAML で書き出します (--dump_config 用)。
func (c *Config) WriteYAML(path string) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// 各描画・出力処理の入力ファイルを path にします (-i 用)。
// 合成データの出力先は変えません。
func (c *Config) SetInput(path string) {
	c.SSH3D.Input = path
	c.SSHVideo.Input = path
	c.SST.Input = path
	c.UVSnapshots.Input = path
	c.UVVideo.Input = path
	c.Export.Input = path
}
