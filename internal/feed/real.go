package feed

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second

	// DefaultResyncTimeout bounds the wait for a time/ISO-8601 message.
	DefaultResyncTimeout = 5 * time.Second

	// DefaultBacklog is the number of pushes held while offline.
	DefaultBacklog = 100

	// DefaultMaxAge drops queued pushes older than this on replay.
	DefaultMaxAge = 2 * time.Hour

	// replayInterval paces replayed pushes under the Adafruit IO rate limit.
	replayInterval = 2 * time.Second
)

// Options configures a RealUploader.
type Options struct {
	Broker        string // default DefaultBroker
	Username      string
	Key           string
	ClientID      string
	StatusFeed    string // feed key for lifecycle events; empty disables them
	Backlog       int
	MaxAge        time.Duration
	ResyncTimeout time.Duration
}

// RealUploader publishes to Adafruit IO over MQTT.
type RealUploader struct {
	client        paho.Client
	user          string
	statusFeed    string
	resyncTimeout time.Duration
	maxAge        time.Duration
	now           func() time.Time
	sleep         func(time.Duration)

	mu      sync.Mutex
	backlog *backlog
}

func newUploader(client paho.Client, opts Options) *RealUploader {
	if opts.Backlog <= 0 {
		opts.Backlog = DefaultBacklog
	}
	if opts.ResyncTimeout <= 0 {
		opts.ResyncTimeout = DefaultResyncTimeout
	}
	return &RealUploader{
		client:        client,
		user:          opts.Username,
		statusFeed:    opts.StatusFeed,
		resyncTimeout: opts.ResyncTimeout,
		maxAge:        opts.MaxAge,
		now:           time.Now,
		sleep:         time.Sleep,
		backlog:       newBacklog(opts.Backlog),
	}
}

// NewRealUploader connects to the broker. An unreachable broker is not an
// error: the client keeps retrying and pushes are queued meanwhile.
func NewRealUploader(opts Options) (*RealUploader, error) {
	if opts.Username == "" || opts.Key == "" {
		return nil, errors.New("feed: username and key are required")
	}
	if opts.Broker == "" {
		opts.Broker = DefaultBroker
	}
	if opts.ClientID == "" {
		opts.ClientID = "corrosion-monitor"
	}
	if opts.MaxAge == 0 {
		opts.MaxAge = DefaultMaxAge
	}

	u := newUploader(nil, opts)

	po := paho.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetUsername(opts.Username).
		SetPassword(opts.Key).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(paho.Client) {
			log.Printf("feed: connected to %s", opts.Broker)
			u.replay()
		}).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("feed: connection lost: %v", err)
		})

	if opts.StatusFeed != "" {
		will, err := FormatSystemPayload(SystemEvent{
			Timestamp: time.Now(),
			Event:     "SHUTDOWN",
			Reason:    "MQTT_DISCONNECT",
		})
		if err != nil {
			return nil, fmt.Errorf("feed: format will: %w", err)
		}
		po.SetWill(FeedTopic(opts.Username, opts.StatusFeed), string(will), 1, false)
	}

	u.client = paho.NewClient(po)
	token := u.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		log.Printf("feed: %s not reachable yet, retrying in background", opts.Broker)
		return u, nil
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("feed: connect to broker: %w", err)
	}
	return u, nil
}

// Push sends value to the feed. While offline the push is queued and
// ErrTransient is returned.
func (u *RealUploader) Push(feed string, value float64) error {
	if !ValidFeedKey(feed) {
		return fmt.Errorf("feed: push %q: %w", feed, ErrInvalidFeed)
	}
	return u.send(pending{
		topic:   FeedTopic(u.user, feed),
		payload: []byte(FormatValue(value)),
		qos:     1,
	})
}

// PublishSystem sends a lifecycle event to the status feed, if configured.
func (u *RealUploader) PublishSystem(event SystemEvent) error {
	if u.statusFeed == "" {
		return nil
	}
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("feed: format system payload: %w", err)
	}
	return u.send(pending{
		topic:    FeedTopic(u.user, u.statusFeed),
		payload:  payload,
		qos:      1,
		retained: event.Retained,
	})
}

func (u *RealUploader) send(p pending) error {
	if !u.client.IsConnectionOpen() {
		p.queuedAt = u.now()
		u.mu.Lock()
		u.backlog.add(p)
		u.mu.Unlock()
		return fmt.Errorf("feed: offline, queued %s: %w", p.topic, ErrTransient)
	}

	token := u.client.Publish(p.topic, p.qos, p.retained, p.payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("feed: publish %s timeout: %w", p.topic, ErrTransient)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("feed: publish %s: %v: %w", p.topic, err, ErrTransient)
	}
	return nil
}

// replay publishes queued pushes, oldest first.
func (u *RealUploader) replay() {
	var cutoff time.Time
	if u.maxAge > 0 {
		cutoff = u.now().Add(-u.maxAge)
	}

	u.mu.Lock()
	items := u.backlog.take(cutoff)
	u.mu.Unlock()

	if len(items) == 0 {
		return
	}
	log.Printf("feed: replaying %d queued pushes", len(items))

	for i, p := range items {
		if i > 0 {
			u.sleep(replayInterval)
		}
		token := u.client.Publish(p.topic, p.qos, p.retained, p.payload)
		if !token.WaitTimeout(publishTimeout) {
			log.Printf("feed: replay %s: timeout", p.topic)
			continue
		}
		if err := token.Error(); err != nil {
			log.Printf("feed: replay %s: %v", p.topic, err)
		}
	}
}

// ResyncClock subscribes to the broker's time topic and returns the first
// time received.
func (u *RealUploader) ResyncClock() (time.Time, error) {
	if !u.client.IsConnectionOpen() {
		return time.Time{}, fmt.Errorf("feed: resync: offline: %w", ErrTransient)
	}

	got := make(chan []byte, 1)
	token := u.client.Subscribe(TimeTopic, 0, func(_ paho.Client, m paho.Message) {
		select {
		case got <- m.Payload():
		default:
		}
	})
	if !token.WaitTimeout(publishTimeout) {
		return time.Time{}, fmt.Errorf("feed: resync: subscribe timeout: %w", ErrTransient)
	}
	if err := token.Error(); err != nil {
		return time.Time{}, fmt.Errorf("feed: resync: subscribe: %v: %w", err, ErrTransient)
	}
	defer u.client.Unsubscribe(TimeTopic)

	select {
	case payload := <-got:
		t, err := ParseTime(payload)
		if err != nil {
			return time.Time{}, fmt.Errorf("feed: resync: %v: %w", err, ErrTransient)
		}
		return t, nil
	case <-time.After(u.resyncTimeout):
		return time.Time{}, fmt.Errorf("feed: resync: no time received in %v: %w", u.resyncTimeout, ErrTransient)
	}
}

// IsConnected reports whether the client is connected to the broker.
func (u *RealUploader) IsConnected() bool {
	return u.client.IsConnected()
}

// Pending returns the number of queued pushes.
func (u *RealUploader) Pending() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.backlog.size()
}

// Close disconnects from the broker.
func (u *RealUploader) Close() error {
	u.client.Disconnect(1000)
	return nil
}
