package event

import (
	"testing"
	"time"
)

func TestBusOrderAndEmptyDequeue(t *testing.T) {
	t.Parallel()

	b := &bus{q: make(chan Queueable, 4)}
	first := CreateBase("first", time.Now().Add(time.Minute))
	second := CreateBase("second", time.Now().Add(time.Minute))

	b.NQ(first)
	b.NQ(second)
	if b.Len() != 2 {
		t.Fatalf("expected 2 queued events, got %d", b.Len())
	}

	if got := b.DQ(); got == nil || got.Type() != "first" {
		t.Fatalf("expected the first event, got %v", got)
	}
	if got := b.DQ(); got == nil || got.Type() != "second" {
		t.Fatalf("expected the second event, got %v", got)
	}
	if got := b.DQ(); got != nil {
		t.Fatalf("empty queue must yield nil, got %v", got)
	}
}

func TestBusDropsWhenSaturated(t *testing.T) {
	t.Parallel()

	b := &bus{q: make(chan Queueable, 1)}
	kept := CreateBase("kept", time.Now().Add(time.Minute))
	overflow := CreateBase("overflow", time.Now().Add(time.Minute))

	b.NQ(kept)
	b.NQ(overflow)

	if kept.IsDropped() {
		t.Fatal("the queued event must not be dropped")
	}
	if !overflow.IsDropped() {
		t.Fatal("an event that does not fit must be marked dropped")
	}
	if b.Len() != 1 {
		t.Fatalf("expected a single queued event, got %d", b.Len())
	}
}

func TestBaseExpiry(t *testing.T) {
	t.Parallel()

	if CreateBase("fresh", time.Now().Add(time.Minute)).Expired() {
		t.Fatal("an event before its deadline must not be expired")
	}
	if !CreateBase("stale", time.Now().Add(-time.Minute)).Expired() {
		t.Fatal("an event past its deadline must be expired")
	}
}
