// Package light tracks the ambient light baseline used for gesture
// detection and backlight dimming.
package light

import (
	"fmt"

	"github.com/sweeney/corrosion-monitor/internal/logic"
)

// Sensor samples raw light intensity in [0, 65535].
type Sensor interface {
	Sample() (float64, error)
}

const (
	// ForegroundSamples is the number of samples averaged per foreground read.
	ForegroundSamples = 250

	// CalibrationSamples is the number of samples averaged per recalibration.
	CalibrationSamples = 1000

	// baselineWeight is the share of the old baseline kept on each foreground read.
	baselineWeight = 0.99

	// luxFullScale approximates the PyPortal phototransistor at full scale.
	luxFullScale = 1100.0
)

// Tracker keeps an exponentially weighted ambient baseline. Not safe for
// concurrent use; the monitor loop is its only caller.
type Tracker struct {
	sensor   Sensor
	baseline float64
	raw      float64
}

// NewTracker creates a Tracker and establishes the initial baseline.
func NewTracker(s Sensor) (*Tracker, error) {
	t := &Tracker{sensor: s}
	if err := t.Recalibrate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Foreground averages ForegroundSamples readings into raw, then nudges the
// baseline toward it. On error the baseline is left untouched.
func (t *Tracker) Foreground() (raw, baseline float64, err error) {
	avg, err := t.average(ForegroundSamples)
	if err != nil {
		return 0, t.baseline, fmt.Errorf("foreground: %w", err)
	}
	t.raw = avg
	t.baseline = baselineWeight*t.baseline + (1-baselineWeight)*avg
	return t.raw, t.baseline, nil
}

// Recalibrate replaces the baseline with the mean of CalibrationSamples readings.
func (t *Tracker) Recalibrate() error {
	avg, err := t.average(CalibrationSamples)
	if err != nil {
		return fmt.Errorf("recalibrate: %w", err)
	}
	t.baseline = avg
	return nil
}

// Baseline returns the current ambient baseline.
func (t *Tracker) Baseline() float64 {
	return t.baseline
}

// Raw returns the most recent foreground average.
func (t *Tracker) Raw() float64 {
	return t.raw
}

func (t *Tracker) average(n int) (float64, error) {
	var sum float64
	for i := 0; i < n; i++ {
		v, err := t.sensor.Sample()
		if err != nil {
			return 0, err
		}
		sum += v
	}
	return sum / float64(n), nil
}

// Normalized maps a raw reading to [0, 1].
func Normalized(v float64) float64 {
	return logic.Clamp(v/logic.FullScale, 0, 1)
}

// Lux approximates illuminance for a raw reading.
func Lux(v float64) float64 {
	return logic.Round1(Normalized(v) * luxFullScale)
}
