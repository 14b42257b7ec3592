// Package alert suppresses duplicate notifications for spreads that stay
// above threshold, re-arming once the spread drops back below it.
package alert

import (
	"math"
	"sync"
	"time"
)

// State records the last notification for one symbol.
type State struct {
	LastSpreadPct  float64
	LastNotifiedAt time.Time
}

// Deduper implements rising-edge alerting: notify on the transition into a
// qualifying spread, not on every cycle the spread remains qualifying.
// Safe for concurrent use.
type Deduper struct {
	threshold float64
	minDelta  float64

	mu     sync.Mutex
	states map[string]State

	now func() time.Time
}

// NewDeduper creates a Deduper. threshold is the minimum qualifying spread
// percentage; minDelta is the minimum movement (in percentage points) from
// the last notified spread before the same symbol notifies again.
func NewDeduper(threshold, minDelta float64) *Deduper {
	return &Deduper{
		threshold: threshold,
		minDelta:  minDelta,
		states:    make(map[string]State),
		now:       time.Now,
	}
}

// ShouldNotify reports whether a notification should fire for this spread.
// A spread below threshold clears the symbol's state so a future crossing
// re-triggers a fresh alert rather than staying permanently suppressed.
func (d *Deduper) ShouldNotify(symbol string, spreadPct float64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if spreadPct < d.threshold {
		delete(d.states, symbol)
		return false
	}

	state, ok := d.states[symbol]
	if !ok {
		return true
	}
	if state.LastSpreadPct < d.threshold {
		return true
	}
	return math.Abs(spreadPct-state.LastSpreadPct) >= d.minDelta
}

// RecordNotified records that a notification was dispatched for symbol.
func (d *Deduper) RecordNotified(symbol string, spreadPct float64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.states[symbol] = State{LastSpreadPct: spreadPct, LastNotifiedAt: d.now()}
}

// Len returns the number of tracked symbols. Exposed for observability.
func (d *Deduper) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.states)
}
