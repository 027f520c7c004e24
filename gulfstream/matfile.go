package gulfstream

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
)

// MAT-file level 5 のデータ型
const (
	miINT8       = 1
	miUINT8      = 2
	miINT16      = 3
	miUINT16     = 4
	miINT32      = 5
	miUINT32     = 6
	miSINGLE     = 7
	miDOUBLE     = 9
	miINT64      = 12
	miUINT64     = 13
	miMATRIX     = 14
	miCOMPRESSED = 15
)

// MATLAB 配列クラス
const (
	mxDOUBLE_CLASS = 6
	mxUINT64_CLASS = 15
)

const matHeaderSize = 128

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrVariableNotFound  = errors.New("variable not found")

	// MAT-file 7.3 (HDF5) は読めない。MATLAB で -v7 を指定して保存し直す
	errMatV73 = fmt.Errorf("MAT-file version 7.3 (HDF5), save with -v7: %w", ErrUnsupportedFormat)
)

// MAT-file (level 5) から数値配列を読み込みます。
// names を指定した場合はその変数だけを返し、見つからない変数はエラーです。
func ReadMatFile(path string, names ...string) (map[string]*Array, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	vars, err := decodeMat(b, names)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return vars, nil
}

func decodeMat(b []byte, names []string) (map[string]*Array, error) {
	if len(b) < matHeaderSize {
		return nil, fmt.Errorf("MAT-file header too short: %w", ErrUnsupportedFormat)
	}

	// エンディアン判定 ("MI" を int16 で書いたもの)
	var order binary.ByteOrder
	switch string(b[126:128]) {
	case "IM":
		order = binary.LittleEndian
	case "MI":
		order = binary.BigEndian
	default:
		return nil, fmt.Errorf("MAT-file endian indicator %q: %w", b[126:128], ErrUnsupportedFormat)
	}
	if order.Uint16(b[124:126]) == 0x0200 {
		return nil, errMatV73
	}

	want := map[string]bool{}
	for _, n := range names {
		want[n] = true
	}

	d := matDecoder{order: order}
	vars := map[string]*Array{}
	rest := b[matHeaderSize:]
	for len(rest) > 0 {
		typ, data, next, err := d.element(rest)
		if err != nil {
			return nil, err
		}
		rest = next

		if typ == miCOMPRESSED {
			zr, err := zlib.NewReader(bytes.NewReader(data))
			if err != nil {
				return nil, fmt.Errorf("MAT-file compressed element: %w", err)
			}
			inflated, err := io.ReadAll(zr)
			zr.Close()
			if err != nil {
				return nil, fmt.Errorf("MAT-file compressed element: %w", err)
			}
			if typ, data, _, err = d.element(inflated); err != nil {
				return nil, err
			}
		}
		if typ != miMATRIX {
			continue
		}

		name, arr, err := d.matrix(data)
		if err != nil {
			return nil, err
		}
		if arr == nil || (len(want) > 0 && !want[name]) {
			continue
		}
		vars[name] = arr
	}

	for _, n := range names {
		if _, ok := vars[n]; !ok {
			return nil, fmt.Errorf("%q: %w", n, ErrVariableNotFound)
		}
	}
	return vars, nil
}

type matDecoder struct {
	order binary.ByteOrder
}

// データ要素を1つ読み、型・本体・残りを返します。
func (d matDecoder) element(b []byte) (uint32, []byte, []byte, error) {
	if len(b) < 8 {
		return 0, nil, nil, fmt.Errorf("MAT-file truncated tag: %w", ErrUnsupportedFormat)
	}
	typ := d.order.Uint32(b[0:4])

	// Small Data Element 形式 (上位16bitにバイト数)
	if n := typ >> 16; n != 0 {
		if n > 4 {
			return 0, nil, nil, fmt.Errorf("MAT-file small element of %d bytes: %w", n, ErrUnsupportedFormat)
		}
		return typ & 0xffff, b[4 : 4+n], b[8:], nil
	}

	n := int(d.order.Uint32(b[4:8]))
	end := 8 + n
	if end > len(b) {
		return 0, nil, nil, fmt.Errorf("MAT-file element of %d bytes exceeds file: %w", n, ErrUnsupportedFormat)
	}
	next := end
	if typ != miCOMPRESSED {
		// 8バイト境界まで詰め物
		next = (end + 7) &^ 7
		if next > len(b) {
			next = len(b)
		}
	}
	return typ, b[8:end], b[next:], nil
}

// miMATRIX 要素を配列に変換します。数値以外のクラスは nil を返します。
func (d matDecoder) matrix(b []byte) (string, *Array, error) {
	typ, flags, b, err := d.element(b)
	if err != nil {
		return "", nil, err
	}
	if typ != miUINT32 || len(flags) < 4 {
		return "", nil, fmt.Errorf("MAT-file array flags: %w", ErrUnsupportedFormat)
	}
	class := d.order.Uint32(flags[0:4]) & 0xff

	typ, dimBytes, b, err := d.element(b)
	if err != nil {
		return "", nil, err
	}
	if typ != miINT32 {
		return "", nil, fmt.Errorf("MAT-file dimensions type %d: %w", typ, ErrUnsupportedFormat)
	}
	dims := make([]int, len(dimBytes)/4)
	for i := range dims {
		dims[i] = int(int32(d.order.Uint32(dimBytes[4*i:])))
	}

	_, nameBytes, b, err := d.element(b)
	if err != nil {
		return "", nil, err
	}
	name := string(nameBytes)

	if class < mxDOUBLE_CLASS || class > mxUINT64_CLASS {
		// cell, struct, char, sparse は対象外
		return name, nil, nil
	}

	typ, pr, _, err := d.element(b)
	if err != nil {
		return "", nil, err
	}
	values, err := d.numeric(typ, pr)
	if err != nil {
		return "", nil, fmt.Errorf("variable %q: %w", name, err)
	}
	if len(values) != product(dims) {
		return "", nil, fmt.Errorf("variable %q: %d values for dims %v: %w", name, len(values), dims, ErrShapeMismatch)
	}

	// 列優先で格納されているので、逆順の形状の行優先配列として読み、軸を逆にする
	rev := make([]int, len(dims))
	perm := make([]int, len(dims))
	for i := range dims {
		rev[i] = dims[len(dims)-1-i]
		perm[i] = len(dims) - 1 - i
	}
	arr, err := (&Array{Shape: rev, Data: values}).Transpose(perm...)
	if err != nil {
		return "", nil, err
	}
	return name, arr, nil
}

func (d matDecoder) numeric(typ uint32, b []byte) ([]float64, error) {
	size := map[uint32]int{
		miINT8: 1, miUINT8: 1, miINT16: 2, miUINT16: 2, miINT32: 4, miUINT32: 4,
		miSINGLE: 4, miDOUBLE: 8, miINT64: 8, miUINT64: 8,
	}[typ]
	if size == 0 {
		return nil, fmt.Errorf("MAT-file numeric type %d: %w", typ, ErrUnsupportedFormat)
	}

	out := make([]float64, len(b)/size)
	for i := range out {
		p := b[i*size:]
		switch typ {
		case miINT8:
			out[i] = float64(int8(p[0]))
		case miUINT8:
			out[i] = float64(p[0])
		case miINT16:
			out[i] = float64(int16(d.order.Uint16(p)))
		case miUINT16:
			out[i] = float64(d.order.Uint16(p))
		case miINT32:
			out[i] = float64(int32(d.order.Uint32(p)))
		case miUINT32:
			out[i] = float64(d.order.Uint32(p))
		case miSINGLE:
			out[i] = float64(math.Float32frombits(d.order.Uint32(p)))
		case miDOUBLE:
			out[i] = math.Float64frombits(d.order.Uint64(p))
		case miINT64:
			out[i] = float64(int64(d.order.Uint64(p)))
		case miUINT64:
			out[i] = float64(d.order.Uint64(p))
		}
	}
	return out, nil
}

// 数値配列を MAT-file (level 5, double) として書き出します。
func WriteMatFile(path string, vars map[string]*Array, compress bool) error {
	var buf bytes.Buffer
	if err := EncodeMat(&buf, vars, compress); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// 変数名の順に MAT-file を書き出します。
func EncodeMat(buf *bytes.Buffer, vars map[string]*Array, compress bool) error {
	le := binary.LittleEndian

	header := make([]byte, matHeaderSize)
	copy(header, bytes.Repeat([]byte{' '}, 116))
	copy(header, "MATLAB 5.0 MAT-file, written by gulfstream")
	le.PutUint16(header[124:], 0x0100)
	copy(header[126:], "IM")
	buf.Write(header)

	names := make([]string, 0, len(vars))
	for n := range vars {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, name := range names {
		elem, err := encodeMatrix(name, vars[name])
		if err != nil {
			return err
		}
		if !compress {
			buf.Write(elem)
			continue
		}

		var z bytes.Buffer
		zw := zlib.NewWriter(&z)
		if _, err := zw.Write(elem); err != nil {
			return err
		}
		if err := zw.Close(); err != nil {
			return err
		}
		writeTag(buf, miCOMPRESSED, z.Len())
		buf.Write(z.Bytes())
	}
	return nil
}

func encodeMatrix(name string, a *Array) ([]byte, error) {
	le := binary.LittleEndian
	var body bytes.Buffer

	// Array Flags
	writeTag(&body, miUINT32, 8)
	flags := make([]byte, 8)
	le.PutUint32(flags, mxDOUBLE_CLASS)
	body.Write(flags)

	// Dimensions (最低2次元)
	dims := append([]int{}, a.Shape...)
	for len(dims) < 2 {
		dims = append(dims, 1)
	}
	writeTag(&body, miINT32, 4*len(dims))
	for _, d := range dims {
		binary.Write(&body, le, int32(d))
	}
	pad8(&body)

	// Array Name
	writeTag(&body, miINT8, len(name))
	body.WriteString(name)
	pad8(&body)

	// Real part (列優先)
	perm := make([]int, len(a.Shape))
	for i := range perm {
		perm[i] = len(perm) - 1 - i
	}
	cm, err := a.Transpose(perm...)
	if err != nil {
		return nil, err
	}
	writeTag(&body, miDOUBLE, 8*len(cm.Data))
	for _, v := range cm.Data {
		binary.Write(&body, le, math.Float64bits(v))
	}

	var elem bytes.Buffer
	writeTag(&elem, miMATRIX, body.Len())
	elem.Write(body.Bytes())
	return elem.Bytes(), nil
}

func writeTag(buf *bytes.Buffer, typ uint32, n int) {
	tag := make([]byte, 8)
	binary.LittleEndian.PutUint32(tag[0:], typ)
	binary.LittleEndian.PutUint32(tag[4:], uint32(n))
	buf.Write(tag)
}

func pad8(buf *bytes.Buffer) {
	if r := buf.Len() % 8; r != 0 {
		buf.Write(make([]byte, 8-r))
	}
}
