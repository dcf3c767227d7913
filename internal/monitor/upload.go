package monitor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sweeney/corrosion-monitor/internal/archive"
	"github.com/sweeney/corrosion-monitor/internal/datalog"
	"github.com/sweeney/corrosion-monitor/internal/display"
	"github.com/sweeney/corrosion-monitor/internal/feed"
	"github.com/sweeney/corrosion-monitor/internal/logic"
)

// metric is one feed push candidate; an invalid value is skipped.
type metric struct {
	feed  string
	value logic.NullFloat
}

// metrics lists the cached values in upload order. The corrosion index is
// only meaningful when the temperature and dew point behind it are known.
func (c *Controller) metrics() []metric {
	r := c.reading
	corrosion := logic.None
	if r.TempF.Valid && r.DewPointF.Valid {
		corrosion = logic.Some(float64(r.Level))
	}
	return []metric{
		{c.cfg.Feeds.Temperature, r.TempF},
		{c.cfg.Feeds.Humidity, r.HumidityPct},
		{c.cfg.Feeds.DewPoint, r.DewPointF},
		{c.cfg.Feeds.PCB, logic.FahrenheitOf(c.pcbC)},
		{c.cfg.Feeds.Corrosion, corrosion},
	}
}

// Upload logs the cached reading, pushes it to the feeds, resyncs the clock
// and archives the record. It uses the values cached by the last refresh.
//
// Transient network failures become display alerts and the burst carries
// on. Any other push error aborts the rest of the burst and is returned.
func (c *Controller) Upload(ctx context.Context, now time.Time) error {
	defer func() {
		c.show(false)
		c.deps.Display.Alert("")
	}()

	c.writeLog(now)

	if err := c.push(); err != nil {
		return fmt.Errorf("upload: %w", err)
	}

	c.resync()
	c.archive(ctx, now)

	c.uploads++
	c.lastUpload = now
	return nil
}

func (c *Controller) writeLog(now time.Time) {
	r := c.reading
	record := datalog.FormatRecord(now, r.TempF, r.HumidityPct, r.DewPointF)
	log.Printf("upload: SD: %s", record)

	c.deps.Display.SetIcon(display.IconStorage, true)
	err := c.deps.Log.Append(record)
	if err == nil {
		c.sleep(c.cfg.StoragePulse)
	}
	c.deps.Display.SetIcon(display.IconStorage, false)

	switch {
	case errors.Is(err, datalog.ErrNoMedium):
		c.alert("-- NO SD CARD")
	case err != nil:
		log.Printf("upload: log write failed: %v", err)
		c.alert("-- SD write error")
	}
}

func (c *Controller) push() error {
	for _, m := range c.metrics() {
		if !m.value.Valid {
			continue
		}
		c.show(false)
		c.deps.Display.SetIcon(display.IconNetwork, true)
		err := c.deps.Feed.Push(m.feed, m.value.Float64)
		c.deps.Display.SetIcon(display.IconNetwork, false)

		if err != nil {
			if !errors.Is(err, feed.ErrTransient) {
				return fmt.Errorf("push %s: %w", m.feed, err)
			}
			log.Printf("upload: push %s: %v", m.feed, err)
			c.alert("-- Upload error -" + m.feed)
		}
		c.sleep(c.cfg.PushDelay)
	}
	return nil
}

// resync corrects the wall clock from the feed's time service. Failure is
// never fatal; the next burst tries again.
func (c *Controller) resync() {
	c.show(false)
	c.deps.Display.SetIcon(display.IconNetwork, true)
	c.deps.Display.SetIcon(display.IconClock, true)
	c.clockTick = false
	c.deps.Display.SetClockTick(false)

	remote, err := c.deps.Feed.ResyncClock()

	c.deps.Display.SetIcon(display.IconClock, false)
	c.deps.Display.SetIcon(display.IconNetwork, false)

	if err == nil && remote.IsZero() {
		err = errors.New("empty time")
	}
	if err != nil {
		log.Printf("upload: resync: %v", err)
		c.alert("-- Get time error -" + err.Error())
		return
	}

	c.offset = remote.Sub(c.now())
	log.Printf("upload: time updated from feed: %s", c.Now().Format(datalog.TimestampLayout))
}

func (c *Controller) archive(ctx context.Context, now time.Time) {
	if c.deps.Archive == nil {
		return
	}
	if c.cfg.ArchiveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.ArchiveTimeout)
		defer cancel()
	}
	rec := archive.NewRecord(now, c.cfg.Node, c.reading, c.pcbC, c.fanOn)
	if err := c.deps.Archive.Save(ctx, rec); err != nil {
		log.Printf("upload: archive: %v", err)
	}
}
