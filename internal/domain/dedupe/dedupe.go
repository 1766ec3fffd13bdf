// Package dedupe defines idempotency tracking for inbound webhook deliveries.
// Twilio retries a webhook when it does not get a timely answer, so the same
// MessageSid can arrive more than once.
package dedupe

import (
	"context"
	"sync"
)

// Deduper records seen message IDs to ensure at-most-once processing.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) (bool, error)

	// Forget removes id so a later delivery is processed again. Used when a
	// message was recorded but could not be enqueued.
	Forget(ctx context.Context, id string) error
}

// InMemory is a Deduper bounded by a FIFO ring: once full, recording a new
// id evicts the oldest one.
type InMemory struct {
	mu      sync.Mutex
	seen    map[string]int // id -> slot in ring
	ring    []string
	next    int
	maxSize int
}

// NewInMemory creates a new in-memory deduper with configuration options.
func NewInMemory(opts ...Option) *InMemory {
	d := &InMemory{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]int, d.maxSize)
	d.ring = make([]string, d.maxSize)
	return d
}

// SeenAndRecord implements Deduper.
func (d *InMemory) SeenAndRecord(_ context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true, nil
	}

	if old := d.ring[d.next]; old != "" {
		delete(d.seen, old)
	}
	d.ring[d.next] = id
	d.seen[id] = d.next
	d.next = (d.next + 1) % d.maxSize
	return false, nil
}

// Forget implements Deduper.
func (d *InMemory) Forget(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if slot, ok := d.seen[id]; ok {
		delete(d.seen, id)
		d.ring[slot] = ""
	}
	return nil
}

// Size returns the number of remembered ids.
func (d *InMemory) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
