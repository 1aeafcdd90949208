// Package timer measures repeated start/stop intervals and keeps the most
// recent samples for reporting.
package timer

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Timer records up to a fixed number of samples in a ring buffer. It is
// not safe for concurrent use.
type Timer struct {
	Now func() time.Time

	samples []time.Duration
	count   int
	next    int
	last    int

	begin   time.Time
	running bool
}

// New creates a timer keeping the latest n samples.
func New(n int) *Timer {
	if n < 1 {
		n = 1
	}
	return &Timer{
		Now:     time.Now,
		samples: make([]time.Duration, n),
		last:    -1,
	}
}

// Start begins a sample.
func (t *Timer) Start() {
	t.StartAt(t.Now())
}

// StartAt begins a sample at a given time.
func (t *Timer) StartAt(at time.Time) {
	t.begin = at
	t.running = true
}

// Stop ends the running sample and records it. It does nothing when the
// timer is not running.
func (t *Timer) Stop() time.Duration {
	if !t.running {
		return 0
	}
	t.running = false
	d := t.Now().Sub(t.begin)
	t.samples[t.next] = d
	t.last = t.next
	t.next = (t.next + 1) % len(t.samples)
	if t.count < len(t.samples) {
		t.count++
	}
	return d
}

// Cancel discards the running sample.
func (t *Timer) Cancel() { t.running = false }

// Running reports whether a sample is in progress.
func (t *Timer) Running() bool { return t.running }

// Clear drops every sample.
func (t *Timer) Clear() {
	clear(t.samples)
	t.count, t.next, t.last = 0, 0, -1
	t.running = false
}

// Last returns the most recent sample, or 0 if there is none.
func (t *Timer) Last() time.Duration {
	if t.last < 0 {
		return 0
	}
	return t.samples[t.last]
}

// MovingAverage returns the mean of the kept samples.
func (t *Timer) MovingAverage() time.Duration {
	if t.count == 0 {
		return 0
	}
	var sum time.Duration
	for _, d := range t.samples[:t.count] {
		sum += d
	}
	return sum / time.Duration(t.count)
}

// Longest returns the longest kept sample.
func (t *Timer) Longest() time.Duration {
	var m time.Duration
	for _, d := range t.samples[:t.count] {
		m = max(m, d)
	}
	return m
}

// Shortest returns the shortest kept sample.
func (t *Timer) Shortest() time.Duration {
	if t.count == 0 {
		return 0
	}
	m := t.samples[0]
	for _, d := range t.samples[1:t.count] {
		m = min(m, d)
	}
	return m
}

// Jitter returns Longest - Shortest.
func (t *Timer) Jitter() time.Duration { return t.Longest() - t.Shortest() }

// SampleCount returns the number of kept samples.
func (t *Timer) SampleCount() int { return t.count }

// MaxSampleCount returns the ring buffer size.
func (t *Timer) MaxSampleCount() int { return len(t.samples) }

// Times returns the kept samples from oldest to newest.
func (t *Timer) Times() []time.Duration {
	out := make([]time.Duration, 0, t.count)
	if t.count < len(t.samples) {
		return append(out, t.samples[:t.count]...)
	}
	out = append(out, t.samples[t.next:]...)
	return append(out, t.samples[:t.next]...)
}

// Report formats the statistics as a table.
func (t *Timer) Report() string {
	var b strings.Builder
	for _, row := range []struct {
		name string
		v    any
	}{
		{"Last", t.Last()},
		{"Average", t.MovingAverage()},
		{"Max", t.Longest()},
		{"Min", t.Shortest()},
		{"Jitter", t.Jitter()},
		{"Samples", t.SampleCount()},
	} {
		fmt.Fprintf(&b, "%-14s: %v\n", row.name, row.v)
	}
	return b.String()
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (t *Timer) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddDuration("last", t.Last())
	enc.AddDuration("avg", t.MovingAverage())
	enc.AddDuration("max", t.Longest())
	enc.AddDuration("min", t.Shortest())
	enc.AddDuration("jitter", t.Jitter())
	enc.AddInt("samples", t.SampleCount())
	return nil
}

// Field returns the statistics as a structured log field.
func (t *Timer) Field(name string) zap.Field {
	return zap.Object(name, t)
}
