package gulfstream

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	// 配列の形状が一致しない
	ErrShapeMismatch = errors.New("shape mismatch")
)

// 多次元配列 (C順 / 行優先)
type Array struct {
	Shape []int
	Data  []float64
}

// 形状 shape のゼロ配列を作成します。
func NewArray(shape ...int) *Array {
	return &Array{Shape: append([]int{}, shape...), Data: make([]float64, product(shape))}
}

func product(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// 次元数
func (a *Array) NDim() int {
	return len(a.Shape)
}

// 要素数
func (a *Array) Len() int {
	return len(a.Data)
}

func (a *Array) strides() []int {
	s := make([]int, len(a.Shape))
	acc := 1
	for i := len(a.Shape) - 1; i >= 0; i-- {
		s[i] = acc
		acc *= a.Shape[i]
	}
	return s
}

func (a *Array) offset(idx []int) int {
	if len(idx) != len(a.Shape) {
		panic(fmt.Sprintf("gulfstream: %d indices for %d-d array", len(idx), len(a.Shape)))
	}
	off := 0
	for i, s := range a.strides() {
		if idx[i] < 0 || idx[i] >= a.Shape[i] {
			panic(fmt.Sprintf("gulfstream: index %d out of range for axis %d (size %d)", idx[i], i, a.Shape[i]))
		}
		off += idx[i] * s
	}
	return off
}

func (a *Array) At(idx ...int) float64 {
	return a.Data[a.offset(idx)]
}

func (a *Array) Set(v float64, idx ...int) {
	a.Data[a.offset(idx)] = v
}

// 複製
func (a *Array) Clone() *Array {
	return &Array{Shape: append([]int{}, a.Shape...), Data: append([]float64{}, a.Data...)}
}

// 同じ形状か
func (a *Array) SameShape(b *Array) bool {
	if len(a.Shape) != len(b.Shape) {
		return false
	}
	for i := range a.Shape {
		if a.Shape[i] != b.Shape[i] {
			return false
		}
	}
	return true
}

// 軸の並べ替え (numpy.transpose と同じ意味)。
// perm[i] は新しい配列の i 番目の軸に対応する元の軸です。
func (a *Array) Transpose(perm ...int) (*Array, error) {
	n := len(a.Shape)
	if len(perm) != n {
		return nil, fmt.Errorf("transpose: %d axes for %d-d array: %w", len(perm), n, ErrShapeMismatch)
	}
	seen := make([]bool, n)
	shape := make([]int, n)
	for i, p := range perm {
		if p < 0 || p >= n || seen[p] {
			return nil, fmt.Errorf("transpose: invalid axis permutation %v", perm)
		}
		seen[p] = true
		shape[i] = a.Shape[p]
	}

	src := a.strides()
	out := NewArray(shape...)
	idx := make([]int, n)
	for k := range out.Data {
		off := 0
		for i := 0; i < n; i++ {
			off += idx[i] * src[perm[i]]
		}
		out.Data[k] = a.Data[off]

		// 次の添字 (最後の軸から繰り上げ)
		for i := n - 1; i >= 0; i-- {
			idx[i]++
			if idx[i] < shape[i] {
				break
			}
			idx[i] = 0
		}
	}
	return out, nil
}

// 大きさ1の軸を取り除きます。
func (a *Array) Squeeze() *Array {
	shape := []int{}
	for _, d := range a.Shape {
		if d != 1 {
			shape = append(shape, d)
		}
	}
	return &Array{Shape: shape, Data: append([]float64{}, a.Data...)}
}

// 3次元配列 (lat, lon, time) から時刻 t の断面を取り出します。
func (a *Array) TimeSlice(t int) (*mat.Dense, error) {
	if a.NDim() != 3 {
		return nil, fmt.Errorf("time slice of %d-d array: %w", a.NDim(), ErrShapeMismatch)
	}
	rows, cols, nt := a.Shape[0], a.Shape[1], a.Shape[2]
	if t < 0 || t >= nt {
		return nil, fmt.Errorf("time index %d out of range [0,%d)", t, nt)
	}
	m := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			m.Set(i, j, a.Data[(i*cols+j)*nt+t])
		}
	}
	return m, nil
}

// 2次元配列を *mat.Dense に変換します。
func (a *Array) Matrix() (*mat.Dense, error) {
	s := a.Squeeze()
	switch s.NDim() {
	case 2:
		return mat.NewDense(s.Shape[0], s.Shape[1], s.Data), nil
	case 1:
		return mat.NewDense(1, s.Shape[0], s.Data), nil
	}
	return nil, fmt.Errorf("matrix from %d-d array: %w", a.NDim(), ErrShapeMismatch)
}

// 時間方向の長さ
func (a *Array) Times() int {
	if a.NDim() < 3 {
		return 1
	}
	return a.Shape[2]
}

// NaN 以外の最小値と最大値
func (a *Array) Range() (min, max float64) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, v := range a.Data {
		if math.IsNaN(v) {
			continue
		}
		min = math.Min(min, v)
		max = math.Max(max, v)
	}
	return min, max
}

func errNotTimeSeries(name string, a *Array) error {
	return fmt.Errorf("%s: expected (lat, lon, time), got shape %v: %w", name, a.Shape, ErrShapeMismatch)
}
