package event

import (
	"time"
)

// Queueable is the contract between producers and the worker. An event cycles
// through the queue until it reports itself processed, dropped or expired.
type Queueable interface {
	Process()
	IsProcessed() bool
	Drop()
	IsDropped() bool
	Expired() bool
	Type() string
}

// Base carries the bookkeeping shared by all events, embed it and add payload
// fields.
type Base struct {
	eventType string
	expireAt  time.Time
	processed bool
	dropped   bool
}

func CreateBase(eventType string, expiresAt time.Time) *Base {
	return &Base{eventType: eventType, expireAt: expiresAt}
}

func (b *Base) Process()          { b.processed = true }
func (b *Base) IsProcessed() bool { return b.processed }
func (b *Base) Drop()             { b.dropped = true }
func (b *Base) IsDropped() bool   { return b.dropped }
func (b *Base) Type() string      { return b.eventType }

func (b *Base) Expired() bool {
	return time.Now().After(b.expireAt)
}

const busCapacity = 100000

type bus struct {
	q chan Queueable
}

var Bus = &bus{q: make(chan Queueable, busCapacity)}

// NQ enqueues without blocking the caller. When the queue is saturated the
// event is marked dropped instead, delayed cleanups are best-effort.
func (b *bus) NQ(event Queueable) {
	select {
	case b.q <- event:
	default:
		event.Drop()
	}
}

// DQ pops the next event, nil when the queue is empty.
func (b *bus) DQ() Queueable {
	select {
	case event := <-b.q:
		return event
	default:
		return nil
	}
}

func (b *bus) Len() int {
	return len(b.q)
}
