package logic

import "time"

// CadenceConfig sets the upload cadence: it fires when
// minute % PeriodMinutes == OffsetMinutes and second < WindowSeconds.
type CadenceConfig struct {
	PeriodMinutes int
	OffsetMinutes int
	WindowSeconds int
}

// DefaultCadence uploads at 5, 15, 25, ... minutes past the hour.
var DefaultCadence = CadenceConfig{
	PeriodMinutes: 10,
	OffsetMinutes: 5,
	WindowSeconds: 10,
}

// UploadWindow reports whether t falls inside an upload window.
func (c CadenceConfig) UploadWindow(t time.Time) bool {
	if c.PeriodMinutes <= 0 {
		return false
	}
	return t.Minute()%c.PeriodMinutes == c.OffsetMinutes && t.Second() < c.WindowSeconds
}

// Cadence decides which periodic actions fire for a wall-clock reading.
// Each clock second fires at most once, the first check forces a refresh,
// and each upload window fires at most once.
type Cadence struct {
	cfg        CadenceConfig
	startup    bool
	seen       bool
	lastSecond int64
	uploaded   bool
	lastWindow int64
}

// NewCadence creates a Cadence whose first check forces a refresh.
func NewCadence(cfg CadenceConfig) *Cadence {
	return &Cadence{cfg: cfg, startup: true}
}

// Check returns the cadences due at now. Repeated checks within the same
// clock second return an empty Due.
func (c *Cadence) Check(now time.Time) Due {
	sec := now.Unix()
	if c.seen && sec == c.lastSecond {
		return Due{}
	}
	c.seen = true
	c.lastSecond = sec

	d := Due{Tick: true}

	if now.Second() == 0 || c.startup {
		d.Refresh = true
		d.Startup = c.startup
		c.startup = false
	}

	if c.cfg.UploadWindow(now) {
		window := sec / 60
		if !c.uploaded || window != c.lastWindow {
			d.Upload = true
			c.uploaded = true
			c.lastWindow = window
		}
	}

	return d
}
