package gulfstream

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/cdf"
	"github.com/batchatco/go-native-netcdf/netcdf/util"
)

// NetCDF (classic / HDF5) から変数を読み込みます。
//
// Note:
//
//	scale_factor, add_offset を持つ変数は展開します。
//	_FillValue のセルは展開せずに元の値のまま残します (陸地の判定に使うため)。
func ReadNetCDF(path string, names ...string) (map[string]*Array, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer nc.Close()

	if len(names) == 0 {
		names = nc.ListVariables()
	}

	vars := map[string]*Array{}
	for _, name := range names {
		vr, err := nc.GetVariable(name)
		if err != nil {
			return nil, fmt.Errorf("%s: %q: %w", path, name, ErrVariableNotFound)
		}
		arr, err := variableArray(vr)
		if err != nil {
			return nil, fmt.Errorf("%s: %q: %w", path, name, err)
		}
		vars[name] = arr
	}
	return vars, nil
}

func variableArray(vr *api.Variable) (*Array, error) {
	data, shape, err := flatten(vr.Values)
	if err != nil {
		return nil, err
	}

	if vr.Attributes != nil {
		scale, hasScale := attrFloat(vr.Attributes, "scale_factor")
		offset, hasOffset := attrFloat(vr.Attributes, "add_offset")
		fill, hasFill := attrFloat(vr.Attributes, "_FillValue")
		if !hasScale {
			scale = 1
		}
		if hasScale || hasOffset {
			for i, v := range data {
				if hasFill && v == fill {
					continue
				}
				data[i] = v*scale + offset
			}
		}
	}
	return &Array{Shape: shape, Data: data}, nil
}

func attrFloat(attrs api.AttributeMap, key string) (float64, bool) {
	v, ok := attrs.Get(key)
	if !ok {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	// 属性は長さ1のスライスで返ることがある
	if rv.Kind() == reflect.Slice {
		if rv.Len() == 0 {
			return 0, false
		}
		rv = rv.Index(0)
	}
	return numberOf(rv)
}

func numberOf(rv reflect.Value) (float64, bool) {
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	}
	return 0, false
}

// 入れ子スライス ([][][]float32 など) を行優先の一次元配列と形状に変換します。
func flatten(values interface{}) ([]float64, []int, error) {
	rv := reflect.ValueOf(values)
	if !rv.IsValid() {
		return nil, nil, fmt.Errorf("variable has no values: %w", ErrUnsupportedFormat)
	}

	shape := []int{}
	for t := rv; t.Kind() == reflect.Slice; {
		shape = append(shape, t.Len())
		if t.Len() == 0 {
			break
		}
		t = t.Index(0)
	}

	data := make([]float64, 0, product(shape))
	var walk func(v reflect.Value, depth int) error
	walk = func(v reflect.Value, depth int) error {
		if v.Kind() != reflect.Slice {
			x, ok := numberOf(v)
			if !ok {
				return fmt.Errorf("non-numeric value of type %s: %w", v.Type(), ErrUnsupportedFormat)
			}
			data = append(data, x)
			return nil
		}
		if v.Len() != shape[depth] {
			return fmt.Errorf("ragged array at depth %d: %w", depth, ErrShapeMismatch)
		}
		for i := 0; i < v.Len(); i++ {
			if err := walk(v.Index(i), depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(rv, 0); err != nil {
		return nil, nil, err
	}
	return data, shape, nil
}

// NetCDF に書き出す変数
type NCVar struct {
	Values     interface{}
	Dimensions []string
	Attributes map[string]interface{}
}

// 変数を CDF classic 形式で書き出します。
func WriteNetCDF(path string, vars map[string]NCVar) (err error) {
	cw, err := cdf.OpenWriter(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := cw.Close(); err == nil {
			err = cerr
		}
	}()

	// 座標変数 (1次元) から先に書く
	names := make([]string, 0, len(vars))
	for n := range vars {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		di, dj := len(vars[names[i]].Dimensions), len(vars[names[j]].Dimensions)
		if di != dj {
			return di < dj
		}
		return names[i] < names[j]
	})

	for _, name := range names {
		v := vars[name]
		keys := make([]string, 0, len(v.Attributes))
		for k := range v.Attributes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		attrs, err := util.NewOrderedMap(keys, v.Attributes)
		if err != nil {
			return err
		}
		if err := cw.AddVar(name, api.Variable{
			Values:     v.Values,
			Dimensions: v.Dimensions,
			Attributes: attrs,
		}); err != nil {
			return fmt.Errorf("netcdf variable %q: %w", name, err)
		}
	}
	return nil
}

// float32 の3次元配列に変換 (書き出し用)
func float32Cube(a *Array) ([][][]float32, error) {
	if a.NDim() != 3 {
		return nil, fmt.Errorf("cube from %d-d array: %w", a.NDim(), ErrShapeMismatch)
	}
	out := make([][][]float32, a.Shape[0])
	for i := range out {
		out[i] = make([][]float32, a.Shape[1])
		for j := range out[i] {
			out[i][j] = make([]float32, a.Shape[2])
			for k := range out[i][j] {
				out[i][j][k] = float32(a.At(i, j, k))
			}
		}
	}
	return out, nil
}
