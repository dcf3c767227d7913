package logic

import "time"

// Gesture defaults.
const (
	DefaultGestureThreshold = 0.90
	DefaultGestureDuration  = 10 * time.Second
)

// GestureDetector tracks the foreground/baseline light ratio and detects a
// hand passing over the light sensor.
//
// While Idle, a ratio below threshold activates; a ratio above 2-threshold is
// an ambient step-change. While Active, nothing is evaluated until the
// duration has elapsed; detections inside the window do not extend it.
type GestureDetector struct {
	threshold float64
	duration  time.Duration
	state     GestureState
}

// NewGestureDetector creates an Idle detector.
func NewGestureDetector(threshold float64, duration time.Duration) *GestureDetector {
	return &GestureDetector{
		threshold: threshold,
		duration:  duration,
	}
}

// Update evaluates one foreground reading against the baseline.
func (g *GestureDetector) Update(raw, baseline float64, now time.Time) GestureEvent {
	if g.state.Active {
		if now.Sub(g.state.ActivatedAt) > g.duration {
			g.state = GestureState{}
			return GestureTimeout
		}
		return GestureNone
	}

	if baseline <= 0 {
		if raw > 0 {
			return AmbientShift
		}
		return GestureNone
	}

	ratio := raw / baseline
	switch {
	case ratio < g.threshold:
		g.state = GestureState{Active: true, ActivatedAt: now}
		return GestureDetected
	case ratio > 2-g.threshold:
		return AmbientShift
	}
	return GestureNone
}

// Active reports whether a gesture window is open.
func (g *GestureDetector) Active() bool {
	return g.state.Active
}
