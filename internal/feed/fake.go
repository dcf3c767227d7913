package feed

import "time"

// Pushed is one recorded feed push.
type Pushed struct {
	Feed  string
	Value float64
}

// FakeUploader records pushes and lifecycle events for test assertions.
type FakeUploader struct {
	// Pushes contains all successful pushes, in order.
	Pushes []Pushed

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// PushErrors maps a feed key to the error its push returns.
	PushErrors map[string]error

	// ResyncTime is returned by ResyncClock; ResyncError takes precedence.
	ResyncTime  time.Time
	ResyncError error
	ResyncCalls int

	// PublishSystemError, if set, will be returned by PublishSystem.
	PublishSystemError error

	// OnPush, if set, is called before each push is recorded.
	OnPush func(feed string)

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFakeUploader creates a connected FakeUploader.
func NewFakeUploader() *FakeUploader {
	return &FakeUploader{Connected: true}
}

// Push records the value unless an error is scripted for the feed.
func (f *FakeUploader) Push(feed string, value float64) error {
	if f.OnPush != nil {
		f.OnPush(feed)
	}
	if err := f.PushErrors[feed]; err != nil {
		return err
	}
	f.Pushes = append(f.Pushes, Pushed{Feed: feed, Value: value})
	return nil
}

// ResyncClock returns the scripted time or error.
func (f *FakeUploader) ResyncClock() (time.Time, error) {
	f.ResyncCalls++
	if f.ResyncError != nil {
		return time.Time{}, f.ResyncError
	}
	return f.ResyncTime, nil
}

// PublishSystem records the system event.
func (f *FakeUploader) PublishSystem(event SystemEvent) error {
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}
	f.SystemEvents = append(f.SystemEvents, event)
	return nil
}

// Close marks the uploader as closed.
func (f *FakeUploader) Close() error {
	f.Closed = true
	return nil
}

// IsConnected reports whether the fake uploader is "connected".
func (f *FakeUploader) IsConnected() bool {
	return f.Connected
}

// Feeds returns the pushed feed keys in order.
func (f *FakeUploader) Feeds() []string {
	out := make([]string, len(f.Pushes))
	for i, p := range f.Pushes {
		out[i] = p.Feed
	}
	return out
}

// Reset clears recorded calls and scripted errors.
func (f *FakeUploader) Reset() {
	f.Pushes = nil
	f.SystemEvents = nil
	f.PushErrors = nil
	f.ResyncError = nil
	f.ResyncCalls = 0
	f.PublishSystemError = nil
	f.Closed = false
	f.Connected = true
}
