// Package monitor owns the corrosion monitor's derived state and runs its
// three cadences: the per-second tick, the per-minute sensor refresh and the
// upload burst.
package monitor

import (
	"context"
	"log"
	"time"

	"github.com/sweeney/corrosion-monitor/internal/archive"
	"github.com/sweeney/corrosion-monitor/internal/datalog"
	"github.com/sweeney/corrosion-monitor/internal/display"
	"github.com/sweeney/corrosion-monitor/internal/feed"
	"github.com/sweeney/corrosion-monitor/internal/gpio"
	"github.com/sweeney/corrosion-monitor/internal/light"
	"github.com/sweeney/corrosion-monitor/internal/logic"
	"github.com/sweeney/corrosion-monitor/internal/sensor"
	"github.com/sweeney/corrosion-monitor/internal/status"
)

// Feeds names the feed key of each uploaded metric.
type Feeds struct {
	Temperature string
	Humidity    string
	DewPoint    string
	PCB         string
	Corrosion   string
}

// Config tunes the controller.
type Config struct {
	Node             string
	Feeds            Feeds
	Cadence          logic.CadenceConfig
	GestureThreshold float64
	GestureDuration  time.Duration
	FanThresholdF    float64
	Brightness       logic.BrightnessConfig
	// PushDelay paces consecutive feed pushes.
	PushDelay time.Duration
	// StoragePulse keeps the storage icon lit after a log write.
	StoragePulse   time.Duration
	ArchiveTimeout time.Duration
}

// DefaultConfig returns the workshop defaults.
func DefaultConfig() Config {
	return Config{
		Node: "shop",
		Feeds: Feeds{
			Temperature: "shop.int-temperature",
			Humidity:    "shop.int-humidity",
			DewPoint:    "shop.int-dewpoint",
			PCB:         "shop.int-pcb-temperature",
			Corrosion:   "shop.int-corrosion-index",
		},
		Cadence:          logic.DefaultCadence,
		GestureThreshold: logic.DefaultGestureThreshold,
		GestureDuration:  logic.DefaultGestureDuration,
		FanThresholdF:    logic.DefaultFanThresholdF,
		Brightness:       logic.DefaultBrightness,
		PushDelay:        2 * time.Second,
		StoragePulse:     time.Second,
		ArchiveTimeout:   5 * time.Second,
	}
}

// Deps are the hardware and network collaborators. Archive and Status may be nil.
type Deps struct {
	Climate sensor.Climate
	PCB     sensor.PCB
	Light   *light.Tracker
	Fan     gpio.Fan
	Display display.Display
	Feed    feed.Uploader
	Log     datalog.Log
	Archive archive.Archiver
	Status  *status.Tracker
}

// Controller holds all derived monitor state. It is driven from one
// goroutine; only the status tracker is shared with readers.
type Controller struct {
	cfg  Config
	deps Deps

	now   func() time.Time
	sleep func(time.Duration)
	// offset corrects the local clock after a successful resync.
	offset time.Duration

	cadence *logic.Cadence
	climate *logic.ClimateModel
	gesture *logic.GestureDetector

	reading    logic.Reading
	pcbC       logic.NullFloat
	fanOn      bool
	heaterOn   bool
	heaterSet  bool // last state the sensor accepted
	brightness float64
	clockTick  bool

	ready       bool
	uploads     int
	lastRefresh time.Time
	lastUpload  time.Time
}

// New creates a Controller. now and sleep are injectable for tests.
func New(cfg Config, deps Deps, now func() time.Time, sleep func(time.Duration)) *Controller {
	return &Controller{
		cfg:     cfg,
		deps:    deps,
		now:     now,
		sleep:   sleep,
		cadence: logic.NewCadence(cfg.Cadence),
		climate: logic.NewClimateModel(),
		gesture: logic.NewGestureDetector(cfg.GestureThreshold, cfg.GestureDuration),
	}
}

// Now returns the corrected wall-clock time.
func (c *Controller) Now() time.Time {
	return c.now().Add(c.offset)
}

// Step runs every cadence due at the current second, in tick, refresh,
// upload order. Calling it more than once per second is harmless.
// A returned error aborted only the upload burst.
func (c *Controller) Step(ctx context.Context) error {
	now := c.Now()
	due := c.cadence.Check(now)
	if due == (logic.Due{}) {
		return nil
	}

	if due.Tick {
		c.Tick(now)
	}
	if due.Refresh {
		c.Refresh(now, due.Startup)
	}

	var err error
	if due.Upload {
		err = c.Upload(ctx, now)
	}

	c.publish()
	return err
}

// Reading returns the last conditioned climate reading.
func (c *Controller) Reading() logic.Reading {
	return c.reading
}

// FanOn reports the commanded fan state.
func (c *Controller) FanOn() bool {
	return c.fanOn
}

// Brightness returns the last backlight level.
func (c *Controller) Brightness() float64 {
	return c.brightness
}

// GestureActive reports whether a gesture is holding the backlight up.
func (c *Controller) GestureActive() bool {
	return c.gesture.Active()
}

// Offset returns the clock correction from the last resync.
func (c *Controller) Offset() time.Duration {
	return c.offset
}

func (c *Controller) publish() {
	if c.deps.Status == nil {
		return
	}
	r := status.Readings{
		Climate:       c.reading,
		PCBC:          c.pcbC,
		FanOn:         c.fanOn,
		HeaterOn:      c.heaterOn,
		GestureActive: c.gesture.Active(),
		Brightness:    c.brightness,
		LastRefresh:   c.lastRefresh,
		LastUpload:    c.lastUpload,
		Uploads:       c.uploads,
		Ready:         c.ready,
	}
	if c.deps.Light != nil {
		r.LightRaw = c.deps.Light.Raw()
		r.LightBaseline = c.deps.Light.Baseline()
	}
	c.deps.Status.Update(r)
	if cs, ok := c.deps.Feed.(feed.ConnectionStatus); ok {
		c.deps.Status.SetFeedConnected(cs.IsConnected())
	}
}

func (c *Controller) show(refresh bool) {
	if err := c.deps.Display.Show(refresh); err != nil {
		log.Printf("display: %v", err)
	}
}

// alert shows msg immediately.
func (c *Controller) alert(msg string) {
	log.Printf("alert: %s", msg)
	c.deps.Display.Alert(msg)
	c.show(false)
}
