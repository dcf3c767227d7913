// Package logic contains the pure decision logic of the corrosion monitor.
// This package has NO external I/O (no I2C, GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import (
	"fmt"
	"time"
)

// NullFloat is a measurement that may be unavailable.
// A sensor that cannot produce a value yields Valid == false; this is a
// degraded state, not an error.
type NullFloat struct {
	Float64 float64
	Valid   bool
}

// Some returns a valid NullFloat holding v.
func Some(v float64) NullFloat {
	return NullFloat{Float64: v, Valid: true}
}

// None is the unavailable measurement.
var None = NullFloat{}

// String formats the value with one decimal place, or "None".
func (n NullFloat) String() string {
	if !n.Valid {
		return "None"
	}
	return fmt.Sprintf("%3.1f", n.Float64)
}

// CorrosionLevel is the discrete corrosion-risk classification.
type CorrosionLevel int

const (
	CorrosionNormal  CorrosionLevel = 0
	CorrosionWarning CorrosionLevel = 1
	CorrosionAlert   CorrosionLevel = 2
)

// String returns the status text shown on the display.
func (l CorrosionLevel) String() string {
	switch l {
	case CorrosionNormal:
		return "NORMAL"
	case CorrosionWarning:
		return "CORROSION WARNING"
	case CorrosionAlert:
		return "CORROSION ALERT"
	}
	return "UNKNOWN"
}

// RawClimate is one sample from the temperature/humidity sensor,
// before clamping and rounding.
type RawClimate struct {
	TempC       NullFloat
	HumidityPct NullFloat
}

// Reading is the conditioned climate state produced by ClimateModel.
// DewPointC is valid iff both TempC and HumidityPct are valid.
type Reading struct {
	TempC       NullFloat
	TempF       NullFloat
	HumidityPct NullFloat
	DewPointC   NullFloat
	DewPointF   NullFloat
	Level       CorrosionLevel
	// LevelValid reports whether Level was decided from this reading's
	// inputs rather than carried over from an earlier one.
	LevelValid bool
}

// GestureEvent reports what a single detector update did.
type GestureEvent int

const (
	GestureNone GestureEvent = iota
	// GestureDetected: Idle -> Active.
	GestureDetected
	// GestureTimeout: Active -> Idle; the baseline must be recalibrated.
	GestureTimeout
	// AmbientShift: ambient light stepped up while Idle; recalibrate only.
	AmbientShift
)

// NeedsRecalibration reports whether the caller must re-anchor the baseline.
func (e GestureEvent) NeedsRecalibration() bool {
	return e == GestureTimeout || e == AmbientShift
}

// GestureState is the detector's externally visible state.
type GestureState struct {
	Active      bool
	ActivatedAt time.Time
}

// Due lists the cadences that fire for one clock second.
type Due struct {
	Tick    bool
	Refresh bool
	Upload  bool
	// Startup marks the forced first refresh.
	Startup bool
}
