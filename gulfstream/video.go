package gulfstream

import (
	"errors"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"image/png"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ffmpeg が見つからない
var ErrEncoderUnavailable = errors.New("video encoder unavailable")

// 1コマも書き込まれなかった
var ErrNoFrames = errors.New("no video frames written")

// 動画の設定 (matplotlib の FFMpegWriter 相当)
type Video struct {
	FPS      int               `yaml:"fps"`
	Bitrate  int               `yaml:"bitrate"` // kbit/s
	Codec    string            `yaml:"codec"`
	Metadata map[string]string `yaml:"metadata"` // title, artist, comment
	Encoder  string            `yaml:"encoder"`  // gif または ffmpeg。省略時は拡張子で決める
}

// 動画のコマを順に受け取って書き出す
type FrameWriter interface {
	WriteFrame(img image.Image) error
	Close() error
}

// 出力先 path と設定 v から FrameWriter を作ります。
func NewFrameWriter(path string, v Video) (FrameWriter, error) {
	if v.FPS <= 0 {
		return nil, fmt.Errorf("video fps %d must be positive", v.FPS)
	}
	encoder := v.Encoder
	if encoder == "" {
		encoder = "ffmpeg"
		if strings.EqualFold(filepath.Ext(path), ".gif") {
			encoder = "gif"
		}
	}
	switch encoder {
	case "gif":
		return newGIFWriter(path, v)
	case "ffmpeg":
		return newFFmpegWriter(path, v)
	}
	return nil, fmt.Errorf("unknown video encoder %q", encoder)
}

// """動画を書き出します。
// Args:
//
//	path(string): 出力先
//	v(Video): 動画の設定
//	fn(func(FrameWriter) error): コマを書き込む処理
//
// Note:
//
//	fn が失敗しても動画は必ず閉じます。エラーは最初に起きたものを返します。
//
// """
func WithVideo(path string, v Video, fn func(FrameWriter) error) (err error) {
	w, err := NewFrameWriter(path, v)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	return fn(w)
}

// image/gif による書き出し
type gifWriter struct {
	path  string
	delay int // 1/100 秒
	anim  gif.GIF
	done  bool
}

func newGIFWriter(path string, v Video) (*gifWriter, error) {
	// 書き込めない出力先は最初に検出する
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	f.Close()
	delay := 100 / v.FPS
	if delay < 1 {
		delay = 1
	}
	if len(v.Metadata) > 0 {
		logger.Debugf("GIF にはメタデータを書き込みません: %v", v.Metadata)
	}
	return &gifWriter{path: path, delay: delay}, nil
}

func (w *gifWriter) WriteFrame(img image.Image) error {
	if w.done {
		return fmt.Errorf("%s: write after close", w.path)
	}
	b := img.Bounds()
	pm := image.NewPaletted(b, palette.Plan9)
	draw.FloydSteinberg.Draw(pm, b, img, b.Min)
	w.anim.Image = append(w.anim.Image, pm)
	w.anim.Delay = append(w.anim.Delay, w.delay)
	return nil
}

func (w *gifWriter) Close() error {
	if w.done {
		return nil
	}
	w.done = true
	// コマが無い場合は空のファイルを残さない
	if len(w.anim.Image) == 0 {
		if err := os.Remove(w.path); err != nil && !os.IsNotExist(err) {
			return err
		}
		return fmt.Errorf("%s: %w", w.path, ErrNoFrames)
	}
	f, err := os.Create(w.path)
	if err != nil {
		return err
	}
	if err := gif.EncodeAll(f, &w.anim); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", w.path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger.Infof("動画出力: %s (%d コマ)", w.path, len(w.anim.Image))
	return nil
}

// ffmpeg に PNG のコマを流し込む書き出し
type ffmpegWriter struct {
	path  string
	cmd   *exec.Cmd
	stdin io.WriteCloser
	n     int
	done  bool
}

func ffmpegArgs(path string, v Video) []string {
	args := []string{"-y", "-loglevel", "error",
		"-f", "image2pipe", "-vcodec", "png", "-r", strconv.Itoa(v.FPS), "-i", "-"}
	if v.Codec != "" {
		args = append(args, "-vcodec", v.Codec)
	}
	if v.Bitrate > 0 {
		args = append(args, "-b:v", fmt.Sprintf("%dk", v.Bitrate))
	}
	keys := make([]string, 0, len(v.Metadata))
	for k := range v.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "-metadata", k+"="+v.Metadata[k])
	}
	return append(args, path)
}

func newFFmpegWriter(path string, v Video) (*ffmpegWriter, error) {
	bin, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg: %w", ErrEncoderUnavailable)
	}
	cmd := exec.Command(bin, ffmpegArgs(path, v)...)
	cmd.Stderr = os.Stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg: %v: %w", err, ErrEncoderUnavailable)
	}
	return &ffmpegWriter{path: path, cmd: cmd, stdin: stdin}, nil
}

func (w *ffmpegWriter) WriteFrame(img image.Image) error {
	if w.done {
		return fmt.Errorf("%s: write after close", w.path)
	}
	if err := png.Encode(w.stdin, img); err != nil {
		return fmt.Errorf("ffmpeg frame %d: %w", w.n, err)
	}
	w.n++
	return nil
}

func (w *ffmpegWriter) Close() error {
	if w.done {
		return nil
	}
	w.done = true
	w.stdin.Close()
	err := w.cmd.Wait()
	if w.n == 0 {
		if rerr := os.Remove(w.path); rerr != nil && !os.IsNotExist(rerr) {
			return rerr
		}
		return fmt.Errorf("%s: %w", w.path, ErrNoFrames)
	}
	if err != nil {
		return fmt.Errorf("ffmpeg: %w", err)
	}
	logger.Infof("動画出力: %s (%d コマ)", w.path, w.n)
	return nil
}
