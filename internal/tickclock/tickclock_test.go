package tickclock

import (
	"sync/atomic"
	"testing"
	"time"

	"duke2sim/internal/config"
)

func TestRunDemoTickAlwaysAdvancesByOne(t *testing.T) {
	var count uint64
	c := New(config.DefaultTiming(), func(tickNum uint64) {
		atomic.AddUint64(&count, 1)
	})

	for i := 0; i < 10; i++ {
		c.RunDemoTick()
	}

	if got := atomic.LoadUint64(&count); got != 10 {
		t.Errorf("step called %d times, want 10", got)
	}
	if c.TickCount() != 10 {
		t.Errorf("TickCount() = %d, want 10", c.TickCount())
	}
}

func TestStartStopRunsTicks(t *testing.T) {
	var count int64
	c := New(config.DefaultTiming(), func(tickNum uint64) {
		atomic.AddInt64(&count, 1)
	})

	c.Start()
	time.Sleep(250 * time.Millisecond)
	c.Stop()

	got := atomic.LoadInt64(&count)
	if got == 0 {
		t.Error("expected at least one tick to have run")
	}
	// At 15Hz over 250ms we expect roughly 3-4 ticks; generous bound to
	// avoid flakiness under scheduler jitter.
	if got > 10 {
		t.Errorf("tick count %d suspiciously high for 250ms at 15Hz", got)
	}
}

func TestSlowFastTickConversions(t *testing.T) {
	if d := SlowTicksToDuration(140); d != time.Second {
		t.Errorf("SlowTicksToDuration(140) = %v, want 1s", d)
	}
	if d := FastTicksToDuration(280); d != time.Second {
		t.Errorf("FastTicksToDuration(280) = %v, want 1s", d)
	}
	if n := DurationToSlowTicks(time.Second); n != 140 {
		t.Errorf("DurationToSlowTicks(1s) = %d, want 140", n)
	}
	if n := DurationToFastTicks(time.Second); n != 280 {
		t.Errorf("DurationToFastTicks(1s) = %d, want 280", n)
	}
}

func TestGameFrameConversions(t *testing.T) {
	if d := GameFramesToDuration(15); d != time.Second {
		t.Errorf("GameFramesToDuration(15) = %v, want 1s", d)
	}
	if n := DurationToGameFrames(time.Second); n != 15 {
		t.Errorf("DurationToGameFrames(1s) = %d, want 15", n)
	}
}
