// Package display renders the monitor state on a small monochrome screen.
package display

import (
	"fmt"
	"strings"
	"time"

	"github.com/sweeney/corrosion-monitor/internal/logic"
)

// Display receives the monitor state. Setters only record; Show renders.
type Display interface {
	SetTemperature(c logic.NullFloat)
	SetHumidity(pct logic.NullFloat)
	SetDewPoint(c logic.NullFloat)
	SetPCBTemperature(c logic.NullFloat)
	SetCorrosionStatus(level logic.CorrosionLevel)
	SetIcon(icon Icon, on bool)
	SetClockTick(on bool)
	SetBrightness(level float64)
	// Alert shows a transient message; "" clears it.
	Alert(msg string)
	// Show renders the current state. refresh forces a full redraw.
	Show(refresh bool) error
}

// Icon is a status indicator on the top line.
type Icon int

const (
	IconSensor Icon = iota
	IconHeater
	IconClock
	IconStorage
	IconNetwork
	numIcons
)

var iconGlyphs = [numIcons]byte{'S', 'H', 'C', 'D', 'N'}

// String returns the icon's glyph.
func (i Icon) String() string {
	if i < 0 || i >= numIcons {
		return "?"
	}
	return string(iconGlyphs[i])
}

// Scale selects the temperature unit shown.
type Scale string

const (
	Fahrenheit Scale = "F"
	Celsius    Scale = "C"
)

// Columns is the number of 7px glyphs that fit a 128px line.
const Columns = 18

// State holds everything the screen shows. Temperatures are kept in °C and
// converted at render time.
type State struct {
	Scale       Scale
	TempC       logic.NullFloat
	HumidityPct logic.NullFloat
	DewPointC   logic.NullFloat
	PCBC        logic.NullFloat
	Level       logic.CorrosionLevel
	Icons       [numIcons]bool
	ClockTick   bool
	Brightness  float64
	Message     string

	// shownSince is when Message was first rendered; it drives scrolling.
	shownSince time.Time
}

func (s *State) SetTemperature(c logic.NullFloat)              { s.TempC = c }
func (s *State) SetHumidity(pct logic.NullFloat)               { s.HumidityPct = pct }
func (s *State) SetDewPoint(c logic.NullFloat)                 { s.DewPointC = c }
func (s *State) SetPCBTemperature(c logic.NullFloat)           { s.PCBC = c }
func (s *State) SetCorrosionStatus(level logic.CorrosionLevel) { s.Level = level }
func (s *State) SetClockTick(on bool)                          { s.ClockTick = on }

// Alert shows a transient message in place of the status line; "" clears it.
func (s *State) Alert(msg string) {
	s.Message = msg
	s.shownSince = time.Time{}
}

// SetIcon switches a status icon. Unknown icons are ignored.
func (s *State) SetIcon(icon Icon, on bool) {
	if icon >= 0 && icon < numIcons {
		s.Icons[icon] = on
	}
}

// SetBrightness records the backlight level, clamped to [0, 1].
func (s *State) SetBrightness(level float64) {
	s.Brightness = logic.Clamp(level, 0, 1)
}

func (s *State) temp(c logic.NullFloat) string {
	if !c.Valid {
		return "--.-" + string(s.scale())
	}
	v := c.Float64
	if s.scale() == Fahrenheit {
		v = logic.CelsiusToFahrenheit(v)
	}
	return fmt.Sprintf("%.1f%s", v, s.scale())
}

func (s *State) scale() Scale {
	if s.Scale == Celsius {
		return Celsius
	}
	return Fahrenheit
}

// Lines lays out the screen as five text lines of at most Columns glyphs.
func (s *State) Lines(now time.Time) []string {
	sep := " "
	if s.ClockTick {
		sep = ":"
	}
	var icons strings.Builder
	for i, on := range s.Icons {
		if on {
			icons.WriteByte(iconGlyphs[i])
		} else {
			icons.WriteByte(' ')
		}
	}
	clock := fmt.Sprintf("%02d%s%02d", now.Hour(), sep, now.Minute())

	hum := "--%"
	if s.HumidityPct.Valid {
		hum = fmt.Sprintf("%.0f%%", s.HumidityPct.Float64)
	}

	lines := []string{
		fmt.Sprintf("%-*s%s", Columns-len(iconGlyphs), clock, icons.String()),
		fmt.Sprintf("T %s RH %s", s.temp(s.TempC), hum),
		fmt.Sprintf("DP %s", s.temp(s.DewPointC)),
		fmt.Sprintf("PCB %s", s.temp(s.PCBC)),
		s.Level.String(),
	}
	if s.Message != "" {
		if s.shownSince.IsZero() {
			s.shownSince = now
		}
		lines[4] = marquee(s.Message, now.Sub(s.shownSince))
	}
	for i, l := range lines {
		if len(l) > Columns {
			lines[i] = l[:Columns]
		}
	}
	return lines
}

// scrollStep is how many glyphs a long message moves per second.
const scrollStep = 3

// marquee returns the Columns-wide part of msg visible after elapsed.
// Messages that fit are returned as is; longer ones scroll left and wrap.
func marquee(msg string, elapsed time.Duration) string {
	if len(msg) <= Columns {
		return msg
	}
	loop := msg + "   "
	off := 0
	if elapsed > 0 {
		off = int(elapsed/time.Second) * scrollStep % len(loop)
	}
	return (loop + loop)[off : off+Columns]
}
