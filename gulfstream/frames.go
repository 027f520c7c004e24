package gulfstream

import (
	"fmt"
	"sort"
	"time"

	strftime "github.com/hhkbp2/go-strftime"
)

// アニメーションのコマ設定
type Frames struct {
	Start  string `yaml:"start"`  // 時間軸 0 番目の日付 (YYYY-MM-DD)
	First  int    `yaml:"first"`  // 最初のコマ (時間軸の添字)
	Last   int    `yaml:"last"`   // 最後のコマ (含まない)
	Step   int    `yaml:"step"`   // コマ間隔
	From   string `yaml:"from"`   // 指定した場合は First/Last の代わりに日付で範囲指定
	To     string `yaml:"to"`
	Format string `yaml:"format"` // タイトルの日付書式 (strftime)
}

// 開始日 start から n 日分の日付列 (pandas.date_range の freq='D')
func DateRange(start time.Time, n int) []time.Time {
	dates := make([]time.Time, n)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i)
	}
	return dates
}

// 時間軸の長さ nt に対して描画するコマの添字列を返します。
func (f Frames) Indices(nt int) ([]int, error) {
	step := f.Step
	if step <= 0 {
		step = 1
	}
	if f.From != "" || f.To != "" {
		first, last, err := f.dateBounds(nt)
		if err != nil {
			return nil, err
		}
		f.First, f.Last = first, last
	}
	if f.First < 0 || f.Last > nt || f.First >= f.Last {
		return nil, fmt.Errorf("frames [%d,%d) out of range for %d time steps", f.First, f.Last, nt)
	}
	idx := []int{}
	for t := f.First; t < f.Last; t += step {
		idx = append(idx, t)
	}
	return idx, nil
}

func (f Frames) dateBounds(nt int) (int, int, error) {
	if nt == 0 {
		return 0, 0, fmt.Errorf("frames: no time steps")
	}
	dates, err := f.Dates(nt)
	if err != nil {
		return 0, 0, err
	}
	start, end := dates[0], dates[len(dates)-1]
	if f.From != "" {
		if start, err = time.Parse("2006-01-02", f.From); err != nil {
			return 0, 0, fmt.Errorf("frames from: %w", err)
		}
	}
	if f.To != "" {
		if end, err = time.Parse("2006-01-02", f.To); err != nil {
			return 0, 0, fmt.Errorf("frames to: %w", err)
		}
	}
	first, last := FramesBetween(dates, start, end)
	return first, last, nil
}

// 時間軸の日付ラベル
func (f Frames) Dates(nt int) ([]time.Time, error) {
	start, err := time.Parse("2006-01-02", f.Start)
	if err != nil {
		return nil, fmt.Errorf("frame start date: %w", err)
	}
	return DateRange(start, nt), nil
}

// 日付をタイトル用の文字列にします。
func (f Frames) Label(t time.Time) string {
	format := f.Format
	if format == "" {
		format = "%Y-%m-%d"
	}
	return strftime.Format(format, t)
}

// 開始日時 start から 終了日時 end までに含まれるコマの添字範囲 [first, last) を返します。
func FramesBetween(dates []time.Time, start time.Time, end time.Time) (first int, last int) {
	first = sort.Search(len(dates), func(i int) bool {
		return dates[i].After(start) || dates[i].Equal(start)
	})
	last = sort.Search(len(dates), func(i int) bool {
		return dates[i].After(end)
	})
	return first, last
}
