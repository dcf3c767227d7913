// Package status provides a thread-safe status tracker for the corrosion-monitor daemon.
// It is read by HTTP handlers and published in lifecycle events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/corrosion-monitor/internal/logic"
)

// NetworkInfo contains network state. This is a local copy to avoid
// importing internal/feed from status.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	Node             string
	PollMs           int64
	Broker           string
	HTTPPort         string
	UploadPeriodMin  int
	UploadOffsetMin  int
	FanThresholdF    float64
	GestureThreshold float64
}

// Readings is the monitor state published after every tick.
type Readings struct {
	Climate       logic.Reading
	PCBC          logic.NullFloat
	FanOn         bool
	HeaterOn      bool
	GestureActive bool
	Brightness    float64
	LightRaw      float64
	LightBaseline float64
	LastRefresh   time.Time
	LastUpload    time.Time
	Uploads       int
	// Ready is false until the first refresh has completed.
	Ready bool
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type and safe to use after the lock is released.
type Snapshot struct {
	Readings
	StartTime     time.Time
	Now           time.Time
	FeedConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
	subs map[chan struct{}]struct{}
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
		subs: make(map[chan struct{}]struct{}),
	}
}

// Update replaces the monitor readings and wakes subscribers.
// Called from the monitor on every tick.
func (t *Tracker) Update(r Readings) {
	t.mu.Lock()
	t.snap.Readings = r
	t.mu.Unlock()
	t.notify()
}

// SetFeedConnected sets the broker connection status.
func (t *Tracker) SetFeedConnected(connected bool) {
	t.mu.Lock()
	t.snap.FeedConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}

// Subscribe returns a channel that receives a value after each Update.
// Notifications are coalesced; a slow reader sees only the latest change.
func (t *Tracker) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	t.mu.Lock()
	t.subs[ch] = struct{}{}
	t.mu.Unlock()
	return ch
}

// Unsubscribe stops notifications on ch.
func (t *Tracker) Unsubscribe(ch <-chan struct{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for c := range t.subs {
		if c == ch {
			delete(t.subs, c)
			return
		}
	}
}

func (t *Tracker) notify() {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for c := range t.subs {
		select {
		case c <- struct{}{}:
		default:
		}
	}
}
