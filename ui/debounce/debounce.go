// Package debounce delays work until its input has settled.
//
// Value is driven by a Bubble Tea update loop: each Set schedules a tick and
// only the tick of the latest Set is honoured. Debouncer is the goroutine
// flavour for code that runs outside the loop, such as file watchers.
package debounce

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// SettledMsg is delivered when the delay of one Set has elapsed.
type SettledMsg struct {
	ID  int
	Seq int
}

// Value holds the last settled copy of a value that changes rapidly.
type Value[T comparable] struct {
	id      int
	delay   time.Duration
	seq     int
	pending T
	settled T
}

// NewValue returns a Value whose settled copy starts at initial. The id tells
// several values apart in the same update loop.
func NewValue[T comparable](id int, delay time.Duration, initial T) *Value[T] {
	return &Value[T]{id: id, delay: delay, pending: initial, settled: initial}
}

// Set records v and returns the tick that will settle it. A zero delay
// settles immediately and returns nil. Calling Set again before the tick
// fires supersedes it.
func (d *Value[T]) Set(v T) tea.Cmd {
	d.seq++
	d.pending = v
	if d.delay <= 0 {
		d.settled = v
		return nil
	}
	msg := SettledMsg{ID: d.id, Seq: d.seq}
	return tea.Tick(d.delay, func(time.Time) tea.Msg {
		return msg
	})
}

// Reset sets both copies to v at once and drops any pending tick.
func (d *Value[T]) Reset(v T) {
	d.seq++
	d.pending = v
	d.settled = v
}

// Settle applies msg if it is the tick of the latest Set for this value. It
// reports whether the settled copy changed.
func (d *Value[T]) Settle(msg SettledMsg) bool {
	if msg.ID != d.id || msg.Seq != d.seq {
		return false
	}
	changed := d.settled != d.pending
	d.settled = d.pending
	return changed
}

// Owns reports whether msg was produced by this value, stale or not.
func (d *Value[T]) Owns(msg SettledMsg) bool {
	return msg.ID == d.id
}

// Get returns the settled copy.
func (d *Value[T]) Get() T {
	return d.settled
}

// Debouncer provides a utility for delaying operations until input has settled
type Debouncer struct {
	delay time.Duration
	timer *time.Timer
	mutex sync.Mutex
}

// New creates a new debouncer with the specified delay
func New(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger schedules callback to run after the delay. A later Trigger before
// the delay expires replaces it.
func (d *Debouncer) Trigger(callback func()) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, callback)
}

// Cancel stops any pending operation
func (d *Debouncer) Cancel() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
