package gulfstream

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Current(t *testing.T) {
	spd, dir := Current(1.0, 1.0)
	assert.InDelta(t, 1.4142136, spd, 0.0001)
	assert.InDelta(t, 45.0, dir, 1e-9)
	assert.Equal(t, "NE", Compass16(dir))

	// 南向き
	spd, dir = Current(0, -2)
	assert.Equal(t, 2.0, spd)
	assert.InDelta(t, 180.0, dir, 1e-9)
	assert.Equal(t, "S", Compass16(dir))

	// 西向き
	_, dir = Current(-1, 0)
	assert.InDelta(t, 270.0, dir, 1e-9)
	assert.Equal(t, "W", Compass16(dir))
}

func Test_CurrentCalm(t *testing.T) {
	spd, dir := Current(0, 0)
	assert.Equal(t, 0.0, spd)
	assert.True(t, math.IsNaN(dir))
	assert.Equal(t, "-", Compass16(dir))

	spd, _ = Current(math.NaN(), 1)
	assert.True(t, math.IsNaN(spd))
}

func Test_Compass16(t *testing.T) {
	assert.Equal(t, "N", Compass16(0))
	assert.Equal(t, "N", Compass16(359))
	assert.Equal(t, "NNE", Compass16(22.5))
	assert.Equal(t, "WNW", Compass16(292.5))
}
