package feed

import (
	"log"
	"time"
)

// pending is a publish held while the broker is unreachable.
type pending struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
	queuedAt time.Time
}

// backlog is a fixed-capacity FIFO of pending publishes. When full, the
// oldest entry is overwritten. Not safe for concurrent use.
type backlog struct {
	items   []pending
	head    int // next write position
	count   int
	dropped int // entries overwritten since the last take
}

func newBacklog(capacity int) *backlog {
	if capacity < 1 {
		capacity = 1
	}
	return &backlog{items: make([]pending, capacity)}
}

func (b *backlog) add(p pending) {
	capacity := len(b.items)
	if b.count == capacity {
		if b.dropped == 0 {
			log.Printf("feed: backlog full (%d pushes), dropping oldest", capacity)
		}
		b.dropped++
	} else {
		b.count++
	}
	b.items[b.head] = p
	b.head = (b.head + 1) % capacity
}

// take removes and returns all entries oldest first, skipping those queued
// before cutoff. A zero cutoff keeps everything.
func (b *backlog) take(cutoff time.Time) []pending {
	if b.count == 0 {
		return nil
	}
	capacity := len(b.items)
	start := (b.head - b.count + capacity) % capacity

	out := make([]pending, 0, b.count)
	for i := 0; i < b.count; i++ {
		p := b.items[(start+i)%capacity]
		if !cutoff.IsZero() && p.queuedAt.Before(cutoff) {
			continue
		}
		out = append(out, p)
	}

	b.count = 0
	b.head = 0
	b.dropped = 0
	return out
}

func (b *backlog) size() int {
	return b.count
}
