package gulfstream

import (
	"math"
)

//--------------------------------------
// 流速流向計算
//--------------------------------------

// 東西成分 u, 南北成分 v から流速 spd と流向 dir を計算する
// 流向は流れていく方向を北から時計回りの角度 [0, 360) で表す
func Current(u float64, v float64) (spd float64, dir float64) {
	// 三平方の定理により、東西、南北のベクトル成分から流速を計算
	spd = math.Sqrt(u*u + v*v)
	if spd == 0 || math.IsNaN(spd) {
		return spd, math.NaN()
	}

	// 風向と違い、流向は「向かう先」なので π を足さない
	dir = radToDegree(math.Atan2(u, v))
	if dir < 0 {
		dir += 360
	}
	return spd, dir
}

// 16方位への丸め
func Compass16(dir float64) string {
	if math.IsNaN(dir) {
		return "-"
	}
	names := [...]string{"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE", "S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW"}
	k := int(math.Round(dir/22.5)) % 16
	return names[k]
}

func radToDegree(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

func degreeToRad(deg float64) float64 {
	return deg * math.Pi / 180.0
}
