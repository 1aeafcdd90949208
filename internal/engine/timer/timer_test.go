package timer

import (
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func newTimer(n int) (*Timer, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	t := New(n)
	t.Now = clock.Now
	return t, clock
}

func record(t *Timer, c *fakeClock, ds ...time.Duration) {
	for _, d := range ds {
		t.Start()
		c.advance(d)
		t.Stop()
	}
}

func TestEmptyTimer(t *testing.T) {
	tm, _ := newTimer(4)
	if tm.Last() != 0 || tm.MovingAverage() != 0 || tm.Longest() != 0 || tm.Shortest() != 0 {
		t.Error("empty timer reports non-zero statistics")
	}
	if tm.SampleCount() != 0 || tm.MaxSampleCount() != 4 {
		t.Errorf("unexpected counts %d/%d", tm.SampleCount(), tm.MaxSampleCount())
	}
	if len(tm.Times()) != 0 {
		t.Error("empty timer has samples")
	}
}

func TestStatistics(t *testing.T) {
	tm, c := newTimer(8)
	record(tm, c, 3*time.Millisecond, 1*time.Millisecond, 5*time.Millisecond)

	tests := []struct {
		name   string
		got    time.Duration
		expect time.Duration
	}{
		{"last", tm.Last(), 5 * time.Millisecond},
		{"average", tm.MovingAverage(), 3 * time.Millisecond},
		{"longest", tm.Longest(), 5 * time.Millisecond},
		{"shortest", tm.Shortest(), 1 * time.Millisecond},
		{"jitter", tm.Jitter(), 4 * time.Millisecond},
	}
	for _, tt := range tests {
		if tt.got != tt.expect {
			t.Errorf("%s: got %v, want %v", tt.name, tt.got, tt.expect)
		}
	}
}

func TestRingBufferWraps(t *testing.T) {
	tm, c := newTimer(3)
	record(tm, c, 1*time.Millisecond, 2*time.Millisecond, 3*time.Millisecond, 4*time.Millisecond)

	if tm.SampleCount() != 3 {
		t.Fatalf("expected 3 samples, got %d", tm.SampleCount())
	}
	got := tm.Times()
	expect := []time.Duration{2 * time.Millisecond, 3 * time.Millisecond, 4 * time.Millisecond}
	for i := range expect {
		if got[i] != expect[i] {
			t.Errorf("Times()[%d] = %v, want %v", i, got[i], expect[i])
		}
	}
	if tm.Shortest() != 2*time.Millisecond {
		t.Errorf("oldest sample not evicted: shortest %v", tm.Shortest())
	}
	if tm.Last() != 4*time.Millisecond {
		t.Errorf("unexpected last %v", tm.Last())
	}
}

func TestCancelAndStopWithoutStart(t *testing.T) {
	tm, c := newTimer(4)

	if d := tm.Stop(); d != 0 || tm.SampleCount() != 0 {
		t.Error("Stop without Start recorded a sample")
	}

	tm.Start()
	c.advance(time.Second)
	tm.Cancel()
	if tm.Running() {
		t.Error("timer still running after Cancel")
	}
	tm.Stop()
	if tm.SampleCount() != 0 {
		t.Error("cancelled sample was recorded")
	}
}

func TestStartAt(t *testing.T) {
	tm, c := newTimer(2)
	begin := c.now
	c.advance(7 * time.Millisecond)
	tm.StartAt(begin)
	if d := tm.Stop(); d != 7*time.Millisecond {
		t.Errorf("expected 7ms, got %v", d)
	}
}

func TestClear(t *testing.T) {
	tm, c := newTimer(2)
	record(tm, c, time.Millisecond, time.Millisecond)
	tm.Clear()
	if tm.SampleCount() != 0 || tm.Last() != 0 || len(tm.Times()) != 0 {
		t.Error("Clear left samples behind")
	}
	record(tm, c, 2*time.Millisecond)
	if tm.Last() != 2*time.Millisecond || tm.SampleCount() != 1 {
		t.Error("timer unusable after Clear")
	}
}

func TestReport(t *testing.T) {
	tm, c := newTimer(4)
	record(tm, c, 2*time.Millisecond)

	r := tm.Report()
	for _, want := range []string{"Last", "Average", "Max", "Min", "Jitter", "Samples", "2ms"} {
		if !strings.Contains(r, want) {
			t.Errorf("report missing %q:\n%s", want, r)
		}
	}
}

func TestLogField(t *testing.T) {
	tm, c := newTimer(4)
	record(tm, c, 2*time.Millisecond, 4*time.Millisecond)

	core, logs := observer.New(zapcore.InfoLevel)
	zap.New(core).Info("frame", tm.Field("traverse"))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()["traverse"].(map[string]any)
	if fields["samples"] != 2 {
		t.Errorf("unexpected samples field %v", fields["samples"])
	}
	if fields["avg"] != 3*time.Millisecond {
		t.Errorf("unexpected avg field %v", fields["avg"])
	}
}
