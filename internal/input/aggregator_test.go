package input

import "testing"

func TestAggregatorKeyboardEdgeTriggering(t *testing.T) {
	ag := NewAggregator(DefaultBindings())

	ag.HandleEvent(Event{Type: EventKeyDown, Key: KeyLCtrl})
	in, _ := ag.Sample()
	if !in.Jump.IsPressed || !in.Jump.WasTriggered {
		t.Fatal("first sampled tick with jump key down should trigger")
	}

	in, _ = ag.Sample()
	if !in.Jump.IsPressed || in.Jump.WasTriggered {
		t.Fatal("held key should stay pressed but not re-trigger")
	}

	ag.HandleEvent(Event{Type: EventKeyUp, Key: KeyLCtrl})
	in, _ = ag.Sample()
	if in.Jump.IsPressed {
		t.Fatal("key-up should release jump")
	}
}

func TestAggregatorNormalizesRightModifiers(t *testing.T) {
	ag := NewAggregator(DefaultBindings())

	// Default jump binding is LCtrl; the right variant must match it.
	ag.HandleEvent(Event{Type: EventKeyDown, Key: KeyRCtrl})
	in, _ := ag.Sample()
	if !in.Jump.IsPressed {
		t.Error("RCtrl should be folded onto the LCtrl binding")
	}
}

func TestAggregatorIgnoresKeyRepeats(t *testing.T) {
	ag := NewAggregator(DefaultBindings())

	ag.HandleEvent(Event{Type: EventKeyDown, Key: KeyLAlt})
	ag.Sample()
	ag.HandleEvent(Event{Type: EventKeyUp, Key: KeyLAlt})
	ag.HandleEvent(Event{Type: EventKeyDown, Key: KeyLAlt, IsRepeat: true})
	in, _ := ag.Sample()
	if in.Fire.IsPressed {
		t.Error("a repeat event after key-up should not count as pressed")
	}
}

func TestBindingsNormalizedClearsDisallowedAndDuplicates(t *testing.T) {
	b := Bindings{
		Up:       KeyUp,
		Down:     KeyF1,     // disallowed
		Left:     KeyLeft,
		Right:    KeyLeft,   // duplicate of Left
		Jump:     KeyRShift, // folds to LShift
		Fire:     KeyLShift, // duplicate after folding
		Interact: KeyCapsLock,
	}.Normalized()

	if b.Down != KeyUnknown {
		t.Error("F1 must be cleared")
	}
	if b.Right != KeyUnknown {
		t.Error("duplicate binding must be cleared, first wins")
	}
	if b.Jump != KeyLShift {
		t.Errorf("Jump = %v, want LShift after folding RShift", b.Jump)
	}
	if b.Fire != KeyUnknown {
		t.Error("Fire duplicates the folded Jump binding and must be cleared")
	}
	if b.Interact != KeyUnknown {
		t.Error("CapsLock must be cleared")
	}
	if b.Up != KeyUp || b.Left != KeyLeft {
		t.Error("valid bindings must survive normalization")
	}
}

func TestAggregatorStickDeadzones(t *testing.T) {
	ag := NewAggregator(DefaultBindings())

	ag.HandleEvent(Event{Type: EventPadAxisMotion, Axis: AxisLeftX, Value: 5000})
	in, _ := ag.Sample()
	if in.Left || in.Right {
		t.Error("X motion inside the deadzone should not move")
	}

	ag.HandleEvent(Event{Type: EventPadAxisMotion, Axis: AxisLeftX, Value: 15000})
	in, _ = ag.Sample()
	if !in.Right {
		t.Error("X motion past the deadzone should press right")
	}

	// On foot the Y deadzone is wide: 20000 should not crouch.
	ag.HandleEvent(Event{Type: EventPadAxisMotion, Axis: AxisLeftX, Value: 0})
	ag.HandleEvent(Event{Type: EventPadAxisMotion, Axis: AxisLeftY, Value: 20000})
	in, _ = ag.Sample()
	if in.Down {
		t.Error("Y motion inside the on-foot deadzone should not crouch")
	}

	// Flying a ship narrows it: the same deflection now counts.
	ag.SetFlying(true)
	in, _ = ag.Sample()
	if !in.Down {
		t.Error("the same Y deflection should register while flying")
	}
}

func TestAggregatorStickORsOverDPad(t *testing.T) {
	ag := NewAggregator(DefaultBindings())

	ag.HandleEvent(Event{Type: EventPadButtonDown, Button: PadDPadLeft})
	ag.HandleEvent(Event{Type: EventPadAxisMotion, Axis: AxisLeftX, Value: 20000})
	in, _ := ag.Sample()
	if !in.Left || !in.Right {
		t.Error("digital d-pad and analog stick must OR, never cancel each other")
	}
}

func TestAggregatorTriggersFire(t *testing.T) {
	ag := NewAggregator(DefaultBindings())

	ag.HandleEvent(Event{Type: EventPadAxisMotion, Axis: AxisTriggerRight, Value: 2000})
	in, _ := ag.Sample()
	if in.Fire.IsPressed {
		t.Error("trigger below threshold should not fire")
	}

	ag.HandleEvent(Event{Type: EventPadAxisMotion, Axis: AxisTriggerRight, Value: 5000})
	in, _ = ag.Sample()
	if !in.Fire.IsPressed {
		t.Error("trigger past threshold should fire")
	}
}

func TestAggregatorUpDrivesInteract(t *testing.T) {
	ag := NewAggregator(DefaultBindings())

	ag.HandleEvent(Event{Type: EventKeyDown, Key: KeyUp})
	in, _ := ag.Sample()
	if !in.Up || !in.Interact.IsPressed {
		t.Error("Up should additionally press Interact")
	}
}

func TestAggregatorQuickSaveLoadCombos(t *testing.T) {
	ag := NewAggregator(DefaultBindings())

	ag.HandleEvent(Event{Type: EventPadButtonDown, Button: PadBack})
	ag.HandleEvent(Event{Type: EventPadButtonDown, Button: PadFire})
	in, cmd := ag.Sample()
	if cmd != CommandQuickSave {
		t.Fatalf("cmd = %v, want CommandQuickSave", cmd)
	}
	if in.Fire.IsPressed {
		t.Error("the combo's fire press must not reach the simulation")
	}

	ag.HandleEvent(Event{Type: EventPadButtonUp, Button: PadFire})
	ag.HandleEvent(Event{Type: EventPadButtonDown, Button: PadJump})
	in, cmd = ag.Sample()
	if cmd != CommandQuickLoad {
		t.Fatalf("cmd = %v, want CommandQuickLoad", cmd)
	}
	if in.Jump.IsPressed {
		t.Error("the combo's jump press must not reach the simulation")
	}

	ag.HandleEvent(Event{Type: EventPadButtonUp, Button: PadBack})
	_, cmd = ag.Sample()
	if cmd != CommandNone {
		t.Errorf("cmd = %v, want CommandNone without Back held", cmd)
	}
}

func TestAggregatorEscapeSetsCancel(t *testing.T) {
	ag := NewAggregator(DefaultBindings())

	ag.HandleEvent(Event{Type: EventKeyDown, Key: KeyEscape})
	in, _ := ag.Sample()
	if !in.Cancel.IsPressed || !in.Cancel.WasTriggered {
		t.Error("Escape should press and trigger Cancel")
	}
	in, _ = ag.Sample()
	if in.Cancel.WasTriggered {
		t.Error("held Escape should not re-trigger Cancel")
	}
}
