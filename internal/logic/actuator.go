package logic

// FullScale is the raw light sensor full-scale value.
const FullScale = 65535.0

// BrightnessConfig controls the display backlight decisions.
type BrightnessConfig struct {
	// FanOn is the backlight level while the cooling fan runs.
	FanOn float64
	// Idle maps normalized baseline [InMin,InMax] to [OutMin,OutMax].
	InMin  float64
	InMax  float64
	OutMin float64
	OutMax float64
}

// DefaultBrightness matches the workshop display tuning.
var DefaultBrightness = BrightnessConfig{
	FanOn:  0,
	InMin:  0.010,
	InMax:  0.750,
	OutMin: 0.010,
	OutMax: 0.5,
}

// DefaultFanThresholdF is the PCB temperature above which the fan runs.
const DefaultFanThresholdF = 80.0

// Brightness returns the backlight level for the current inputs.
// An active gesture forces full brightness regardless of the fan.
func Brightness(gestureActive, fanOn bool, baseline float64, cfg BrightnessConfig) float64 {
	switch {
	case gestureActive:
		return 1.0
	case fanOn:
		return cfg.FanOn
	default:
		return MapRange(baseline/FullScale, cfg.InMin, cfg.InMax, cfg.OutMin, cfg.OutMax)
	}
}

// FanOn decides the fan state from the PCB temperature. The same threshold
// is used in both directions. An unavailable reading keeps the current state.
func FanOn(pcbF NullFloat, current bool, thresholdF float64) bool {
	if !pcbF.Valid {
		return current
	}
	return pcbF.Float64 > thresholdF
}
