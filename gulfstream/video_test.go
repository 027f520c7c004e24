package gulfstream

import (
	"errors"
	"image"
	"image/color"
	"image/gif"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidImage(c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 8, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func readGIF(t *testing.T, path string) *gif.GIF {
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	g, err := gif.DecodeAll(f)
	require.NoError(t, err)
	return g
}

func Test_GIFWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uv.gif")
	err := WithVideo(path, Video{FPS: 24}, func(w FrameWriter) error {
		for _, c := range []color.Color{color.White, color.Black, color.White} {
			if err := w.WriteFrame(solidImage(c)); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	g := readGIF(t, path)
	assert.Len(t, g.Image, 3)
	assert.Equal(t, []int{4, 4, 4}, g.Delay)
}

func Test_GIFWriterEarlyError(t *testing.T) {
	// 途中で失敗しても書き込み済みのコマで閉じる
	path := filepath.Join(t.TempDir(), "ssh.gif")
	boom := errors.New("boom")
	err := WithVideo(path, Video{FPS: 10}, func(w FrameWriter) error {
		if err := w.WriteFrame(solidImage(color.White)); err != nil {
			return err
		}
		return boom
	})
	assert.True(t, errors.Is(err, boom))

	g := readGIF(t, path)
	assert.Len(t, g.Image, 1)
}

func Test_GIFWriterNoFrames(t *testing.T) {
	// 1コマ目の前に失敗した場合はファイルを残さない
	path := filepath.Join(t.TempDir(), "ssh.gif")
	boom := errors.New("boom")
	err := WithVideo(path, Video{FPS: 10}, func(w FrameWriter) error {
		return boom
	})
	assert.True(t, errors.Is(err, boom))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// 失敗が無くてもコマが無ければエラー
	err = WithVideo(path, Video{FPS: 10}, func(w FrameWriter) error {
		return nil
	})
	assert.True(t, errors.Is(err, ErrNoFrames))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func Test_GIFWriterClosed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.gif")
	w, err := NewFrameWriter(path, Video{FPS: 24})
	require.NoError(t, err)
	require.NoError(t, w.WriteFrame(solidImage(color.White)))
	require.NoError(t, w.Close())
	assert.NoError(t, w.Close())
	assert.Error(t, w.WriteFrame(solidImage(color.White)))
}

func Test_NewFrameWriterInvalid(t *testing.T) {
	dir := t.TempDir()
	_, err := NewFrameWriter(filepath.Join(dir, "a.gif"), Video{FPS: 0})
	assert.Error(t, err)
	_, err = NewFrameWriter(filepath.Join(dir, "a.mp4"), Video{FPS: 24, Encoder: "avi"})
	assert.Error(t, err)

	// 書き込めない出力先は最初に失敗する
	_, err = NewFrameWriter(filepath.Join(dir, "no", "such", "a.gif"), Video{FPS: 24})
	assert.Error(t, err)
}

func Test_ffmpegArgs(t *testing.T) {
	v := DefaultConfig().SSHVideo.Video
	args := ffmpegArgs("out.mp4", v)
	assert.Equal(t, "out.mp4", args[len(args)-1])
	assert.Contains(t, args, "libx264")
	assert.Contains(t, args, "30000k")
	assert.Contains(t, args, "24")

	// メタデータは名前順
	meta := []string{}
	for i, a := range args {
		if a == "-metadata" {
			meta = append(meta, args[i+1])
		}
	}
	assert.Equal(t, []string{
		"artist=Tom Bolton",
		"comment=Gulf Stream Visualization of AVISO ADT data.",
		"title=Gulf Stream SSH",
	}, meta)
}
