package gulfstream

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	magicCDF  = []byte("CDF")
	magicHDF5 = []byte("\x89HDF\r\n\x1a\n")
)

// """データファイルから名前付きの数値配列を読み込みます。
// Args:
//
//	path(string): MAT-file (level 5) または NetCDF ファイル
//	names([]string): 読み込む変数名
//
// Returns:
//
//	map[string]*Array: 変数名ごとの配列
//
// """
func LoadVariables(path string, names ...string) (map[string]*Array, error) {
	logger.Infof("データ読み込み: %s %v", path, names)

	head, err := readHead(path, matHeaderSize)
	if err != nil {
		return nil, err
	}

	switch {
	case bytes.HasPrefix(head, magicCDF), bytes.HasPrefix(head, magicHDF5):
		return ReadNetCDF(path, names...)
	case bytes.HasPrefix(head, []byte("MATLAB")):
		return ReadMatFile(path, names...)
	}

	if strings.HasSuffix(strings.ToLower(path), ".mat") {
		return nil, fmt.Errorf("%s: missing MAT-file header: %w", path, ErrUnsupportedFormat)
	}
	return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
}

func readHead(path string, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	head := make([]byte, n)
	k, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return head[:k], nil
}

// 変数 name を取り出し、perm で軸を並べ替えます。
func Canonical(vars map[string]*Array, name string, perm []int) (*Array, error) {
	a, ok := vars[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrVariableNotFound)
	}
	if len(perm) == 0 {
		return a, nil
	}
	return a.Transpose(perm...)
}
