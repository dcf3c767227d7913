package logic

import (
	"math"

	"golang.org/x/exp/constraints"
	"periph.io/x/conn/v3/physic"
)

// Magnus coefficients (Alduchov & Eskridge, over water).
const (
	magnusB = 17.625
	magnusC = 243.04

	// minHumidityPct keeps the Magnus logarithm finite at 0%.
	minHumidityPct = 0.01
)

// Clamp limits v to [lo, hi]. If lo > hi, the bounds are swapped.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if hi < lo {
		lo, hi = hi, lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// MapRange maps x in [inMin,inMax] linearly onto [outMin,outMax].
// Inputs outside the input range clamp to the nearest output bound.
func MapRange[T constraints.Float](x, inMin, inMax, outMin, outMax T) T {
	if inMax == inMin {
		return outMin
	}
	if x <= inMin {
		return outMin
	}
	if x >= inMax {
		return outMax
	}
	return outMin + (x-inMin)*(outMax-outMin)/(inMax-inMin)
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// CelsiusToFahrenheit converts and rounds to 0.1°F.
func CelsiusToFahrenheit(c float64) float64 {
	t := physic.ZeroCelsius + physic.Temperature(c*float64(physic.Celsius))
	return Round1(t.Fahrenheit())
}

// FahrenheitOf converts a nullable Celsius value.
func FahrenheitOf(c NullFloat) NullFloat {
	if !c.Valid {
		return None
	}
	return Some(CelsiusToFahrenheit(c.Float64))
}

// DewPoint returns the Magnus-formula dew point in °C, rounded to 0.1.
// It is non-decreasing in humidityPct at fixed tempC.
func DewPoint(tempC, humidityPct float64) float64 {
	h := math.Max(humidityPct, minHumidityPct)
	gamma := math.Log(h/100) + magnusB*tempC/(magnusC+tempC)
	return Round1(magnusC * gamma / (magnusB - gamma))
}
