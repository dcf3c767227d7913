// Package config loads the daemon settings file and secrets.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/sweeney/corrosion-monitor/internal/logic"
)

// Config holds every tunable of the monitor. Zero values are never used:
// Load starts from Default and overlays the settings file.
type Config struct {
	Node       string     `yaml:"node"`
	Feeds      Feeds      `yaml:"feeds"`
	Upload     Upload     `yaml:"upload"`
	Climate    Climate    `yaml:"climate"`
	Fan        Fan        `yaml:"fan"`
	Gesture    Gesture    `yaml:"gesture"`
	Brightness Brightness `yaml:"brightness"`
	Display    Display    `yaml:"display"`
	Hardware   Hardware   `yaml:"hardware"`
	Datalog    Datalog    `yaml:"datalog"`
	Archive    Archive    `yaml:"archive"`
}

// Feeds names the Adafruit IO feed keys.
type Feeds struct {
	Temperature string `yaml:"temperature"`
	Humidity    string `yaml:"humidity"`
	DewPoint    string `yaml:"dewPoint"`
	Corrosion   string `yaml:"corrosion"`
	PCB         string `yaml:"pcb"`
	Status      string `yaml:"status"`
}

// Upload controls the upload cadence and feed client.
type Upload struct {
	PeriodMinutes int           `yaml:"periodMinutes"`
	OffsetMinutes int           `yaml:"offsetMinutes"`
	WindowSeconds int           `yaml:"windowSeconds"`
	PushDelay     time.Duration `yaml:"pushDelay"`
	ResyncTimeout time.Duration `yaml:"resyncTimeout"`
	Backlog       int           `yaml:"backlog"`
	MaxAge        time.Duration `yaml:"maxAge"`
}

// Climate configures the SHT31-D.
type Climate struct {
	Address       uint16        `yaml:"address"`
	TempDelay     time.Duration `yaml:"tempDelay"`
	HumidityDelay time.Duration `yaml:"humidityDelay"`
}

// Fan configures the cooling fan and the PCB sensor that drives it.
type Fan struct {
	Chip       string        `yaml:"chip"`
	Pin        int           `yaml:"pin"`
	ThresholdF float64       `yaml:"thresholdF"`
	PCBAddress uint16        `yaml:"pcbAddress"`
	PCBDelay   time.Duration `yaml:"pcbDelay"`
}

// Gesture configures the light gesture detector.
type Gesture struct {
	Threshold float64       `yaml:"threshold"`
	Duration  time.Duration `yaml:"duration"`
}

// Brightness configures the backlight mapping.
type Brightness struct {
	FanOn  float64 `yaml:"fanOn"`
	InMin  float64 `yaml:"inMin"`
	InMax  float64 `yaml:"inMax"`
	OutMin float64 `yaml:"outMin"`
	OutMax float64 `yaml:"outMax"`
}

// Display configures the OLED.
type Display struct {
	Scale string `yaml:"scale"`
}

// Hardware names the I²C bus and the light sensor ADC channel.
type Hardware struct {
	Bus            string  `yaml:"bus"`
	LightChannel   int     `yaml:"lightChannel"`
	LightReference float64 `yaml:"lightReference"`
}

// Datalog configures the removable-storage CSV log.
type Datalog struct {
	Dir  string `yaml:"dir"`
	File string `yaml:"file"`
}

// Archive configures the ClickHouse writer. It is enabled by CLICKHOUSE_ADDR.
type Archive struct {
	Timeout time.Duration `yaml:"timeout"`
}

// Default returns the workshop defaults.
func Default() Config {
	return Config{
		Node: "shop",
		Feeds: Feeds{
			Temperature: "shop.int-temperature",
			Humidity:    "shop.int-humidity",
			DewPoint:    "shop.int-dewpoint",
			Corrosion:   "shop.int-corrosion-index",
			PCB:         "shop.int-pcb-temperature",
			Status:      "shop.int-status",
		},
		Upload: Upload{
			PeriodMinutes: logic.DefaultCadence.PeriodMinutes,
			OffsetMinutes: logic.DefaultCadence.OffsetMinutes,
			WindowSeconds: logic.DefaultCadence.WindowSeconds,
			PushDelay:     2 * time.Second,
			ResyncTimeout: 10 * time.Second,
			Backlog:       100,
			MaxAge:        time.Hour,
		},
		Climate: Climate{
			Address:       0x44,
			TempDelay:     3 * time.Second,
			HumidityDelay: 4 * time.Second,
		},
		Fan: Fan{
			Chip:       "gpiochip0",
			Pin:        4,
			ThresholdF: logic.DefaultFanThresholdF,
			PCBAddress: 0x48,
			PCBDelay:   500 * time.Millisecond,
		},
		Gesture: Gesture{
			Threshold: logic.DefaultGestureThreshold,
			Duration:  logic.DefaultGestureDuration,
		},
		Brightness: Brightness{
			FanOn:  logic.DefaultBrightness.FanOn,
			InMin:  logic.DefaultBrightness.InMin,
			InMax:  logic.DefaultBrightness.InMax,
			OutMin: logic.DefaultBrightness.OutMin,
			OutMax: logic.DefaultBrightness.OutMax,
		},
		Display: Display{Scale: "F"},
		Hardware: Hardware{
			Bus:            "",
			LightChannel:   0,
			LightReference: 3.3,
		},
		Datalog: Datalog{
			Dir:  "/sd",
			File: "logfile.csv",
		},
		Archive: Archive{Timeout: 5 * time.Second},
	}
}

// Load reads the settings file at path over the defaults. An empty path
// returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
// Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the monitor cannot run with.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...interface{}) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	u := c.Upload
	check(u.PeriodMinutes > 0, "upload.periodMinutes must be positive, got %d", u.PeriodMinutes)
	check(u.OffsetMinutes >= 0 && u.OffsetMinutes < u.PeriodMinutes,
		"upload.offsetMinutes must be in [0,%d), got %d", u.PeriodMinutes, u.OffsetMinutes)
	check(u.WindowSeconds > 0 && u.WindowSeconds <= 60, "upload.windowSeconds must be in (0,60], got %d", u.WindowSeconds)
	check(u.PushDelay >= 0, "upload.pushDelay must not be negative")
	check(u.ResyncTimeout > 0, "upload.resyncTimeout must be positive")
	check(u.Backlog > 0, "upload.backlog must be positive, got %d", u.Backlog)

	check(c.Gesture.Threshold > 0 && c.Gesture.Threshold < 1,
		"gesture.threshold must be in (0,1), got %v", c.Gesture.Threshold)
	check(c.Gesture.Duration > 0, "gesture.duration must be positive")

	b := c.Brightness
	for name, v := range map[string]float64{"fanOn": b.FanOn, "inMin": b.InMin, "inMax": b.InMax, "outMin": b.OutMin, "outMax": b.OutMax} {
		check(v >= 0 && v <= 1, "brightness.%s must be in [0,1], got %v", name, v)
	}
	check(b.InMin < b.InMax, "brightness.inMin must be below inMax")
	check(b.OutMin <= b.OutMax, "brightness.outMin must not exceed outMax")

	check(c.Display.Scale == "F" || c.Display.Scale == "C", "display.scale must be F or C, got %q", c.Display.Scale)
	check(c.Hardware.LightChannel >= 0 && c.Hardware.LightChannel <= 3,
		"hardware.lightChannel must be 0-3, got %d", c.Hardware.LightChannel)
	check(c.Hardware.LightReference > 0, "hardware.lightReference must be positive")
	check(c.Fan.Pin >= 0, "fan.pin must not be negative")
	check(c.Datalog.File != "", "datalog.file must be set")
	check(c.Archive.Timeout > 0, "archive.timeout must be positive")

	for name, key := range map[string]string{
		"temperature": c.Feeds.Temperature,
		"humidity":    c.Feeds.Humidity,
		"dewPoint":    c.Feeds.DewPoint,
		"corrosion":   c.Feeds.Corrosion,
		"pcb":         c.Feeds.PCB,
	} {
		check(key != "", "feeds.%s must be set", name)
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Cadence returns the upload cadence settings.
func (c Config) Cadence() logic.CadenceConfig {
	return logic.CadenceConfig{
		PeriodMinutes: c.Upload.PeriodMinutes,
		OffsetMinutes: c.Upload.OffsetMinutes,
		WindowSeconds: c.Upload.WindowSeconds,
	}
}

// BrightnessConfig returns the backlight mapping.
func (c Config) BrightnessConfig() logic.BrightnessConfig {
	b := c.Brightness
	return logic.BrightnessConfig{FanOn: b.FanOn, InMin: b.InMin, InMax: b.InMax, OutMin: b.OutMin, OutMax: b.OutMax}
}
