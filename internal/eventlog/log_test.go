package eventlog

import (
	"testing"
	"time"
)

func TestEmitAssignsSequence(t *testing.T) {
	l := NewLog()
	if err := l.Start(""); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer l.Stop()

	for i := 0; i < 5; i++ {
		ok := l.EmitSimple(TypeTick, uint64(i), 0, TickPayload{ActiveCount: i})
		if !ok {
			t.Fatalf("Emit %d was dropped unexpectedly", i)
		}
	}

	stats := l.GetStats()
	if stats.Total != 5 {
		t.Errorf("Total = %d, want 5", stats.Total)
	}

	snap := l.Snapshot()
	if len(snap) != 5 {
		t.Fatalf("Snapshot length = %d, want 5", len(snap))
	}
	for i, ev := range snap {
		if ev.Sequence != uint64(i+1) {
			t.Errorf("event %d sequence = %d, want %d", i, ev.Sequence, i+1)
		}
	}
}

func TestEmitBeforeStartIsDropped(t *testing.T) {
	l := NewLog()
	if ok := l.EmitSimple(TypeTick, 0, 0, nil); ok {
		t.Error("Emit before Start() should return false")
	}
}

func TestBufferWrapDropsOldest(t *testing.T) {
	l := NewLog()
	if err := l.Start(""); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer l.Stop()

	total := BufferSize + 10
	for i := 0; i < total; i++ {
		l.EmitSimple(TypeTick, uint64(i), 0, nil)
	}

	stats := l.GetStats()
	if stats.Pending > BufferSize {
		t.Errorf("Pending = %d, exceeds buffer capacity %d", stats.Pending, BufferSize)
	}
	if stats.Dropped == 0 {
		t.Error("expected some events dropped once the ring buffer wraps")
	}
}

func TestTypeString(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{TypeTick, "tick"},
		{TypeActorSpawn, "actor_spawn"},
		{TypeDamage, "damage"},
		{TypePlayerDeath, "player_death"},
		{Type(255), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.typ.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStopFlushesAndClosesCleanly(t *testing.T) {
	l := NewLog()
	if err := l.Start(""); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	l.EmitSimple(TypeTick, 0, 0, nil)

	done := make(chan struct{})
	go func() {
		l.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() did not return in time")
	}
}
