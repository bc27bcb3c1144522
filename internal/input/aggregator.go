package input

// Keycode is a platform-agnostic key identifier. The outer frame maps
// OS scancodes onto these; the aggregator only compares them against
// the configured bindings.
type Keycode int

const (
	KeyUnknown Keycode = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeySpace
	KeyEnter
	KeyEscape
	KeyLCtrl
	KeyRCtrl
	KeyLAlt
	KeyRAlt
	KeyLShift
	KeyRShift
	KeyLGui
	KeyRGui
	KeyCapsLock
	KeyF1
	KeyF2
	KeyF3
	KeyH
	KeyP
)

// normalizeKey folds the right-hand modifier variants onto their left
// form so a binding stored as LCtrl matches either physical key.
func normalizeKey(k Keycode) Keycode {
	switch k {
	case KeyRCtrl:
		return KeyLCtrl
	case KeyRAlt:
		return KeyLAlt
	case KeyRShift:
		return KeyLShift
	case KeyRGui:
		return KeyLGui
	}
	return k
}

// disallowedBinding reports keys that may never be bound to a gameplay
// action: the help/pause/function keys the menus own, Caps Lock, and
// the OS key.
func disallowedBinding(k Keycode) bool {
	switch k {
	case KeyF1, KeyF2, KeyF3, KeyH, KeyP, KeyCapsLock, KeyLGui, KeyRGui:
		return true
	}
	return false
}

// Bindings holds the configurable keyboard mapping for each control.
type Bindings struct {
	Up, Down, Left, Right Keycode
	Jump, Fire, Interact  Keycode
}

// DefaultBindings returns the original's keyboard layout.
func DefaultBindings() Bindings {
	return Bindings{
		Up:       KeyUp,
		Down:     KeyDown,
		Left:     KeyLeft,
		Right:    KeyRight,
		Jump:     KeyLCtrl,
		Fire:     KeyLAlt,
		Interact: KeyEnter,
	}
}

// Normalized returns a copy of b with right-hand modifiers folded to
// their left form, disallowed keys cleared to KeyUnknown, and duplicate
// assignments cleared (the first field in declaration order keeps the
// key). Applied once when bindings are loaded from the options store.
func (b Bindings) Normalized() Bindings {
	keys := []*Keycode{&b.Up, &b.Down, &b.Left, &b.Right, &b.Jump, &b.Fire, &b.Interact}
	seen := make(map[Keycode]bool, len(keys))
	for _, k := range keys {
		*k = normalizeKey(*k)
		if disallowedBinding(*k) || seen[*k] {
			*k = KeyUnknown
			continue
		}
		if *k != KeyUnknown {
			seen[*k] = true
		}
	}
	return b
}

// EventType classifies one OS input event.
type EventType int

const (
	EventKeyDown EventType = iota
	EventKeyUp
	EventPadButtonDown
	EventPadButtonUp
	EventPadAxisMotion
)

// PadButton is a gamepad digital control.
type PadButton int

const (
	PadDPadUp PadButton = iota
	PadDPadDown
	PadDPadLeft
	PadDPadRight
	PadJump
	PadFire
	PadInteract
	PadBack
)

// PadAxis is a gamepad analog control.
type PadAxis int

const (
	AxisLeftX PadAxis = iota
	AxisLeftY
	AxisRightX
	AxisRightY
	AxisTriggerLeft
	AxisTriggerRight
)

const numPadAxes = 6

// Event is one OS key or gamepad event as delivered by the outer frame.
type Event struct {
	Type     EventType
	Key      Keycode
	Button   PadButton
	Axis     PadAxis
	Value    int
	IsRepeat bool
}

// Analog thresholds. The Y deadzone is widened while on foot so stick
// drift doesn't crouch the player mid-walk; flying a ship restores the
// symmetric zone for full 4-way control.
const (
	stickDeadzoneX      = 10000
	stickDeadzoneYFoot  = 24000
	stickDeadzoneYShip  = 10000
	triggerPressedAbove = 3000
)

// Command is a one-shot request the aggregator routes to the menu layer
// instead of the simulation.
type Command int

const (
	CommandNone Command = iota
	CommandQuickSave
	CommandQuickLoad
)

// Aggregator merges keyboard and gamepad events into one PlayerInput
// per logic tick. It is the live counterpart of the demo stream
// decoder; when a demo is playing the aggregator's output is discarded
// entirely in favor of the byte-decoded input.
type Aggregator struct {
	bindings Bindings

	keysDown map[Keycode]bool

	padButtons [PadBack + 1]bool
	padAxes    [numPadAxes]int

	flying bool
	prev   PlayerInput
}

// NewAggregator creates an Aggregator using the given (already loaded)
// bindings, normalizing them on the way in.
func NewAggregator(b Bindings) *Aggregator {
	return &Aggregator{
		bindings: b.Normalized(),
		keysDown: make(map[Keycode]bool),
	}
}

// SetFlying switches the analog Y deadzone between the on-foot and
// ship thresholds. App.TickLive calls this every tick with the
// runner's PlayerFlying state.
func (ag *Aggregator) SetFlying(flying bool) {
	ag.flying = flying
}

// HandleEvent folds one OS event into the aggregator's held state.
// Repeats are ignored; edge detection happens per tick in Sample, not
// per event.
func (ag *Aggregator) HandleEvent(ev Event) {
	switch ev.Type {
	case EventKeyDown:
		if ev.IsRepeat {
			return
		}
		ag.keysDown[normalizeKey(ev.Key)] = true
	case EventKeyUp:
		ag.keysDown[normalizeKey(ev.Key)] = false
	case EventPadButtonDown:
		if int(ev.Button) < len(ag.padButtons) {
			ag.padButtons[ev.Button] = true
		}
	case EventPadButtonUp:
		if int(ev.Button) < len(ag.padButtons) {
			ag.padButtons[ev.Button] = false
		}
	case EventPadAxisMotion:
		if int(ev.Axis) < numPadAxes {
			ag.padAxes[ev.Axis] = ev.Value
		}
	}
}

func (ag *Aggregator) key(k Keycode) bool {
	return k != KeyUnknown && ag.keysDown[k]
}

func (ag *Aggregator) stickX() int {
	if v := ag.padAxes[AxisLeftX]; v < -stickDeadzoneX || v > stickDeadzoneX {
		return v
	}
	if v := ag.padAxes[AxisRightX]; v < -stickDeadzoneX || v > stickDeadzoneX {
		return v
	}
	return 0
}

func (ag *Aggregator) stickY() int {
	dz := stickDeadzoneYFoot
	if ag.flying {
		dz = stickDeadzoneYShip
	}
	if v := ag.padAxes[AxisLeftY]; v < -dz || v > dz {
		return v
	}
	if v := ag.padAxes[AxisRightY]; v < -dz || v > dz {
		return v
	}
	return 0
}

func (ag *Aggregator) triggerPressed() bool {
	return ag.padAxes[AxisTriggerLeft] > triggerPressedAbove ||
		ag.padAxes[AxisTriggerLeft] < -triggerPressedAbove ||
		ag.padAxes[AxisTriggerRight] > triggerPressedAbove ||
		ag.padAxes[AxisTriggerRight] < -triggerPressedAbove
}

// Sample produces this tick's PlayerInput from the currently held
// keyboard and gamepad state, plus any one-shot menu command. Analog
// stick motion is OR'd over the digital d-pad so one device never
// cancels the other; Up additionally drives Interact (doors,
// teleporters, elevators). Back+Fire requests a quicksave and
// Back+Jump a quickload — those combos go to the menu layer and the
// combined button is suppressed from the simulation's input.
func (ag *Aggregator) Sample() (PlayerInput, Command) {
	sx, sy := ag.stickX(), ag.stickY()

	up := ag.key(ag.bindings.Up) || ag.padButtons[PadDPadUp] || sy < 0
	down := ag.key(ag.bindings.Down) || ag.padButtons[PadDPadDown] || sy > 0
	left := ag.key(ag.bindings.Left) || ag.padButtons[PadDPadLeft] || sx < 0
	right := ag.key(ag.bindings.Right) || ag.padButtons[PadDPadRight] || sx > 0

	jump := ag.key(ag.bindings.Jump) || ag.padButtons[PadJump]
	fire := ag.key(ag.bindings.Fire) || ag.padButtons[PadFire] || ag.triggerPressed()
	interact := ag.key(ag.bindings.Interact) || ag.padButtons[PadInteract] || up

	cmd := CommandNone
	if ag.padButtons[PadBack] {
		switch {
		case fire:
			cmd = CommandQuickSave
			fire = false
		case jump:
			cmd = CommandQuickLoad
			jump = false
		}
	}

	cancel := ag.keysDown[KeyEscape]

	in := NextWithCancel(up, down, left, right, jump, fire, interact, cancel, ag.prev)
	ag.prev = in
	return in, cmd
}
