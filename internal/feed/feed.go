// Package feed uploads readings to Adafruit IO over MQTT, resynchronizes the
// clock from the broker's time topic and publishes lifecycle events.
package feed

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrTransient marks a recoverable network failure. Callers surface it and
// carry on; the next cadence tries again.
var ErrTransient = errors.New("transient network failure")

// ErrInvalidFeed is returned for a push with an empty or malformed feed key.
var ErrInvalidFeed = errors.New("invalid feed key")

// TimeTopic carries the broker's current time as an ISO-8601 string.
const TimeTopic = "time/ISO-8601"

// DefaultBroker is the Adafruit IO MQTT endpoint.
const DefaultBroker = "tls://io.adafruit.com:8883"

// Uploader pushes feed values and lifecycle events.
type Uploader interface {
	// Push sends one value to a feed. Failures wrap ErrTransient unless the
	// request itself is invalid.
	Push(feed string, value float64) error

	// ResyncClock returns the remote wall-clock time.
	ResyncClock() (time.Time, error)

	// PublishSystem sends a lifecycle event to the status feed.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the broker connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent is a lifecycle event (STARTUP, SHUTDOWN, RECONNECTED).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string
	Reason     string // e.g. "SIGTERM" (shutdown only)
	RawPayload []byte // pre-formatted JSON; if set, FormatSystemPayload returns it directly
	Retained   bool
}

// SystemPayload is the JSON shape of a simple lifecycle event.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}
	return json.Marshal(SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	})
}

// FeedTopic returns the MQTT topic for a user's feed.
func FeedTopic(user, feed string) string {
	return user + "/feeds/" + feed
}

// ValidFeedKey reports whether key is usable as an Adafruit IO feed key:
// lowercase letters, digits, '-' and '.' (group.feed).
func ValidFeedKey(key string) bool {
	if key == "" || strings.HasPrefix(key, ".") || strings.HasSuffix(key, ".") {
		return false
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '.':
		default:
			return false
		}
	}
	return true
}

// FormatValue renders a feed value without trailing zeros.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParseTime parses a time/ISO-8601 payload.
func ParseTime(payload []byte) (time.Time, error) {
	s := strings.TrimSpace(string(payload))
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}
