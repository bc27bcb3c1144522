package demo

import (
	"testing"

	"duke2sim/internal/input"
)

func zeroInput() input.PlayerInput {
	return input.PlayerInput{}
}

func TestParseByteDecodesBits(t *testing.T) {
	in := ParseByte(bitUp|bitJump, zeroInput())
	if !in.Up {
		t.Error("bitUp should set Up")
	}
	if !in.Jump.IsPressed || !in.Jump.WasTriggered {
		t.Error("bitJump should set Jump pressed and triggered on first frame")
	}
	if in.Down || in.Left || in.Right || in.Fire.IsPressed || in.Interact.IsPressed {
		t.Error("unset bits should leave their fields false")
	}
}

func TestDecodeStopsAtTerminator(t *testing.T) {
	stream := []byte{bitUp, bitRight, endOfStreamMarker, bitJump}
	frames := Decode(stream)
	if len(frames) != 2 {
		t.Fatalf("Decode returned %d frames, want 2 (stop at terminator)", len(frames))
	}
}

func TestDecodeNextLevelBit(t *testing.T) {
	stream := []byte{bitUp, bitUp | bitNextLevel, bitRight}
	frames := Decode(stream)
	if len(frames) != 3 {
		t.Fatalf("Decode returned %d frames, want 3", len(frames))
	}
	if frames[0].SwitchNextLevel {
		t.Error("frame 0 should not request a level switch")
	}
	if !frames[1].SwitchNextLevel {
		t.Error("frame 1 should request a level switch")
	}
}

func TestPlayerAdvancesThroughLevelSequence(t *testing.T) {
	stream := []byte{bitUp | bitNextLevel, bitRight | bitNextLevel, bitRight | bitNextLevel, bitRight | bitNextLevel}
	p := NewPlayer(stream)

	wantLevels := []int{0, 2, 4, 6, 6}
	for i, want := range wantLevels {
		if got := p.CurrentLevel(); got != want {
			t.Errorf("step %d: CurrentLevel() = %d, want %d", i, got, want)
		}
		if i < len(stream) {
			if _, finished := p.Next(); finished {
				t.Fatalf("step %d: unexpected early finish", i)
			}
		}
	}

	if !p.IsFinished() {
		t.Error("player should be finished after consuming all frames")
	}
	if _, finished := p.Next(); !finished {
		t.Error("Next() after exhaustion should report finished")
	}
}

func TestWasTriggeredOnlyOnRisingEdgeAcrossBytes(t *testing.T) {
	var prev = zeroInput()
	first := ParseByte(bitJump, prev)
	second := ParseByte(bitJump, first)
	if !first.Jump.WasTriggered {
		t.Error("first byte with jump bit set should trigger")
	}
	if second.Jump.WasTriggered {
		t.Error("second byte with jump bit still set should not re-trigger")
	}
}
