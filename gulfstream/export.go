package gulfstream

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"gonum.org/v1/gonum/mat"
)

// CSV 出力の設定
type ExportConfig struct {
	Input  string   `yaml:"input"`
	Vars   []string `yaml:"vars"`    // 1つならスカラー場、2つなら (u, v)
	LonVar string   `yaml:"lon_var"` // 指定した場合は座標をファイルから読む
	LatVar string   `yaml:"lat_var"`
	Perm   []int    `yaml:"perm"`
	Grid   Grid     `yaml:"grid"`
	Time   int      `yaml:"time"`
	Start  string   `yaml:"start"` // 時間軸 0 番目の日付
	Output string   `yaml:"output"`
}

// CSV形式 (スカラー場)
//
// Note:
//
//	NaN (陸地) のセルは値を空欄にします。
func ScalarToCSV(buf *bytes.Buffer, name string, date time.Time, lon, lat []float64, field *mat.Dense) {
	buf.WriteString("date,lon,lat,")
	buf.WriteString(name)
	buf.WriteString("\n")

	d := date.Format("2006-01-02")
	for i := range lat {
		for j := range lon {
			buf.WriteString(d)
			writeCSVFloat(buf, lon[j])
			writeCSVFloat(buf, lat[i])
			writeCSVFloat(buf, field.At(i, j))
			buf.WriteString("\n")
		}
	}
}

// CSV形式 (流速場)
func CurrentToCSV(buf *bytes.Buffer, date time.Time, lon, lat []float64, u, v *mat.Dense) {
	buf.WriteString("date,lon,lat,u,v,speed,direction,compass\n")

	d := date.Format("2006-01-02")
	for i := range lat {
		for j := range lon {
			uu, vv := u.At(i, j), v.At(i, j)
			spd, dir := Current(uu, vv)
			buf.WriteString(d)
			writeCSVFloat(buf, lon[j])
			writeCSVFloat(buf, lat[i])
			writeCSVFloat(buf, uu)
			writeCSVFloat(buf, vv)
			writeCSVFloat(buf, spd)
			writeCSVFloat(buf, dir)
			buf.WriteString(",")
			if !math.IsNaN(dir) {
				buf.WriteString(Compass16(dir))
			}
			buf.WriteString("\n")
		}
	}
}

func writeCSVFloat(buf *bytes.Buffer, v float64) {
	buf.WriteString(",")
	if math.IsNaN(v) {
		return
	}
	buf.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
}

// """時刻 cfg.Time の断面を CSV に出力します。
// Args:
//
//	cfg(ExportConfig): 設定
//	output(string): 出力先。空文字の場合は設定の値、それも空なら標準出力
//
// """
func RunExport(cfg ExportConfig, output string) error {
	if len(cfg.Vars) != 1 && len(cfg.Vars) != 2 {
		return fmt.Errorf("export: 1 or 2 variables required, got %v", cfg.Vars)
	}
	names := append([]string{}, cfg.Vars...)
	if cfg.LonVar != "" && cfg.LatVar != "" {
		names = append(names, cfg.LonVar, cfg.LatVar)
	}
	vars, err := LoadVariables(cfg.Input, names...)
	if err != nil {
		return err
	}

	fields := make([]*mat.Dense, len(cfg.Vars))
	for i, name := range cfg.Vars {
		a, err := Canonical(vars, name, cfg.Perm)
		if err != nil {
			return err
		}
		// (1, lat, lon) のような単一時刻の配列はそのまま2次元として扱う
		if s := a.Squeeze(); s.NDim() <= 2 {
			fields[i], err = s.Matrix()
		} else {
			fields[i], err = a.TimeSlice(cfg.Time)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	var lon, lat []float64
	if cfg.LonVar != "" && cfg.LatVar != "" {
		lon, lat = vars[cfg.LonVar].Data, vars[cfg.LatVar].Data
	} else if lon, lat, err = cfg.Grid.Coords(); err != nil {
		return err
	}
	rows, cols := fields[0].Dims()
	if lon, lat, err = AlignCoords(lon, lat, rows, cols); err != nil {
		return err
	}

	start, err := time.Parse("2006-01-02", cfg.Start)
	if err != nil {
		return fmt.Errorf("export start date: %w", err)
	}
	date := start.AddDate(0, 0, cfg.Time)

	var buf *bytes.Buffer = bytes.NewBuffer([]byte{})
	if len(fields) == 2 {
		if r, c := fields[1].Dims(); r != rows || c != cols {
			return fmt.Errorf("export: %v %dx%d vs %dx%d: %w", cfg.Vars, rows, cols, r, c, ErrShapeMismatch)
		}
		CurrentToCSV(buf, date, lon, lat, fields[0], fields[1])
	} else {
		ScalarToCSV(buf, cfg.Vars[0], date, lon, lat, fields[0])
	}

	if output == "" {
		output = cfg.Output
	}
	if output == "" {
		fmt.Print(buf.String())
		return nil
	}
	logger.Infof("CSV保存: %s", output)
	return os.WriteFile(output, buf.Bytes(), 0o644)
}
