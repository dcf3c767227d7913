package monitor

import (
	"log"
	"time"

	"github.com/sweeney/corrosion-monitor/internal/datalog"
	"github.com/sweeney/corrosion-monitor/internal/display"
	"github.com/sweeney/corrosion-monitor/internal/logic"
)

// Tick toggles the heartbeat, samples the light sensor and updates the
// gesture and backlight state.
func (c *Controller) Tick(now time.Time) {
	c.clockTick = !c.clockTick
	c.deps.Display.SetClockTick(c.clockTick)

	var baseline float64
	if c.deps.Light != nil {
		raw, b, err := c.deps.Light.Foreground()
		if err != nil {
			log.Printf("gesture: light sample failed: %v", err)
		} else {
			c.updateGesture(raw, b, now)
		}
		baseline = c.deps.Light.Baseline()
	}

	c.brightness = logic.Brightness(c.gesture.Active(), c.fanOn, baseline, c.cfg.Brightness)
	c.deps.Display.SetBrightness(c.brightness)
	c.show(false)
}

func (c *Controller) updateGesture(raw, baseline float64, now time.Time) {
	// The gesture window runs on the local clock; a resync offset must not
	// stretch or shrink it.
	ev := c.gesture.Update(raw, baseline, c.now())
	switch ev {
	case logic.GestureDetected:
		log.Printf("gesture: detected %s", now.Format(datalog.TimestampLayout))
	case logic.GestureTimeout:
		log.Printf("gesture: timeout %s", now.Format(datalog.TimestampLayout))
	case logic.AmbientShift:
		log.Printf("gesture: ambient light shift (raw=%.0f baseline=%.0f)", raw, baseline)
	}
	if ev.NeedsRecalibration() {
		c.recalibrate()
	}
}

func (c *Controller) recalibrate() {
	if c.deps.Light == nil {
		return
	}
	if err := c.deps.Light.Recalibrate(); err != nil {
		log.Printf("light: recalibrate failed: %v", err)
	}
}

// Refresh re-reads the climate and PCB sensors, decides the fan and heater
// and pushes the values to the display. startup forces a full redraw.
func (c *Controller) Refresh(now time.Time, startup bool) {
	c.show(false)
	c.recalibrate()

	c.deps.Display.SetIcon(display.IconSensor, true)
	c.reading = c.climate.Update(c.deps.Climate.Read())
	c.pcbC = c.deps.PCB.Read()
	c.deps.Display.SetIcon(display.IconSensor, false)

	fan := logic.FanOn(logic.FahrenheitOf(c.pcbC), c.fanOn, c.cfg.FanThresholdF)
	if err := c.deps.Fan.Set(fan); err != nil {
		log.Printf("refresh: fan: %v", err)
	} else {
		if fan != c.fanOn {
			log.Printf("refresh: fan %s (pcb=%v°F)", onOff(fan), logic.FahrenheitOf(c.pcbC))
		}
		c.fanOn = fan
	}

	c.deps.Display.SetTemperature(c.reading.TempC)
	c.deps.Display.SetHumidity(c.reading.HumidityPct)
	c.deps.Display.SetDewPoint(c.reading.DewPointC)
	c.deps.Display.SetCorrosionStatus(c.reading.Level)
	c.deps.Display.SetPCBTemperature(c.pcbC)

	if c.climate.HeaterChanged() {
		c.heaterOn = c.climate.HeaterOn()
		c.deps.Display.SetIcon(display.IconHeater, c.heaterOn)
		c.deps.Display.Alert("Sensor heater: " + onOff(c.heaterOn))
	}
	// Written until the sensor accepts it, not only on the edge.
	if c.heaterOn != c.heaterSet {
		if err := c.deps.Climate.SetHeater(c.heaterOn); err != nil {
			log.Printf("refresh: heater: %v", err)
		} else {
			c.heaterSet = c.heaterOn
		}
	}

	ts := now.Format(datalog.TimestampLayout)
	r := c.reading
	log.Printf("refresh: Fahrenheit: %s, %v, %v, %v", ts, r.TempF, r.HumidityPct, r.DewPointF)
	log.Printf("refresh: Celsius:    %s, %v, %v, %v", ts, r.TempC, r.HumidityPct, r.DewPointC)

	c.lastRefresh = now
	c.ready = true
	c.show(startup)
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}
