package gulfstream

import (
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ColormapByName(t *testing.T) {
	for _, name := range []string{"bone", "ocean", "hot", "Greys", "coolwarm"} {
		cm, err := ColormapByName(name)
		require.NoError(t, err, name)
		cm.SetMin(0)
		cm.SetMax(1)
		_, err = cm.At(0.5)
		assert.NoError(t, err, name)
	}
	_, err := ColormapByName("jet")
	assert.Error(t, err)
}

func Test_LinearMapEnds(t *testing.T) {
	cm, err := ColormapByName("bone")
	require.NoError(t, err)
	cm.SetMin(-0.4)
	cm.SetMax(1.5)

	c, err := cm.At(-0.4)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{0, 0, 0, 255}, c)
	c, err = cm.At(1.5)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, c)

	_, err = cm.At(2)
	assert.Error(t, err)
	assert.Len(t, cm.Palette(5).Colors(), 5)
}

func Test_ParseColor(t *testing.T) {
	c, err := ParseColor("#004080")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{0, 0x40, 0x80, 255}, c)

	c, err = ParseColor("SaddleBrown")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{139, 69, 19, 255}, c)

	_, err = ParseColor("chartreuse-ish")
	assert.Error(t, err)
}

func Test_ColorScaleUnderOver(t *testing.T) {
	s, err := NewColorScale("bone", -0.4, 1.5)
	require.NoError(t, err)
	s.Under = color.NRGBA{139, 69, 19, 255}

	// 置換後の陸地 (-0.5) は under 色
	c, ok := s.Color(-0.5)
	assert.True(t, ok)
	assert.Equal(t, s.Under, c)

	// over 未指定なら最大色に丸める
	c, ok = s.Color(10)
	assert.True(t, ok)
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, c)

	_, ok = s.Color(math.NaN())
	assert.False(t, ok)

	_, err = NewColorScale("bone", 1, 1)
	assert.Error(t, err)
}

func Test_ColorScaleBands(t *testing.T) {
	s, err := NewColorScale("ocean", -1.2, 1.2)
	require.NoError(t, err)
	s.Levels = Linspace(-1.2, 1.2, 13)
	s.Extend = ExtendMax

	// 同じ区間の値は同じ色
	a, ok := s.Color(0.01)
	require.True(t, ok)
	b, ok := s.Color(0.19)
	require.True(t, ok)
	assert.Equal(t, a, b)

	c, ok := s.Color(0.21)
	require.True(t, ok)
	assert.NotEqual(t, a, c)

	// 上側だけ延長
	_, ok = s.Color(5)
	assert.True(t, ok)
	_, ok = s.Color(-5)
	assert.False(t, ok)
}
