// Package hud implements the heads-up display elements and the
// message typewriter the script sequencer and gameplay drive.
package hud

import (
	"duke2sim/internal/audiomixer"
	"duke2sim/internal/renderer"
)

// State is the per-tick HUD data, derived from the player/session each
// frame — the HUD itself holds no simulation state beyond the message
// typewriter.
type State struct {
	Level        int
	Score        int
	Health       int
	MaxHealth    int
	Weapon       int
	Ammo         int
	MaxAmmo      int
	Inventory    []renderer.TextureID // up to 6 slot icons, in slot order
	RadarDots    []struct{ X, Y int } // one per live Security Camera actor
	LowAmmoBlink bool
	LowHealthPulse bool
}

const maxInventorySlots = 6

// MessagePriority orders which message may preempt another mid-print.
type MessagePriority int

const (
	PriorityNormal MessagePriority = iota
	PriorityHintMachine
	PriorityMenu
)

const (
	ticksPerChar = 4
	lineBreakWaitTicks = 21
	lineBreakChar      = '*'
)

// MessageDisplay owns the single current message line and its
// reveal-by-character typewriter timing.
type MessageDisplay struct {
	text     string
	priority MessagePriority
	revealed int
	ticksLeft int
	waiting  bool
	waitTicksLeft int

	Mixer audiomixer.AudioMixer
	TypeSound audiomixer.SoundID
}

// Show begins (or preempts) displaying a message. A message only
// preempts the current one if its priority is >= the current message's
// priority.
func (m *MessageDisplay) Show(text string, priority MessagePriority) {
	if m.text != "" && priority < m.priority {
		return
	}
	m.text = text
	m.priority = priority
	m.revealed = 0
	m.ticksLeft = ticksPerChar
	m.waiting = false
	m.waitTicksLeft = 0
}

// Clear empties the current message.
func (m *MessageDisplay) Clear() {
	*m = MessageDisplay{Mixer: m.Mixer, TypeSound: m.TypeSound}
}

// Visible returns the portion of the message revealed so far, with the
// line-break marker rendered as a newline rather than printed literally.
func (m *MessageDisplay) Visible() string {
	revealed := m.revealed
	if revealed > len(m.text) {
		revealed = len(m.text)
	}
	out := []byte(m.text[:revealed])
	for i, b := range out {
		if b == lineBreakChar {
			out[i] = '\n'
		}
	}
	return string(out)
}

// Done reports whether the whole message has been revealed.
func (m *MessageDisplay) Done() bool {
	return m.revealed >= len(m.text)
}

// Update advances the typewriter by one tick.
func (m *MessageDisplay) Update() {
	if m.Done() {
		return
	}

	if m.waiting {
		m.waitTicksLeft--
		if m.waitTicksLeft <= 0 {
			m.waiting = false
		}
		return
	}

	m.ticksLeft--
	if m.ticksLeft > 0 {
		return
	}

	ch := m.text[m.revealed]
	m.revealed++
	m.ticksLeft = ticksPerChar

	if ch == lineBreakChar {
		m.waiting = true
		m.waitTicksLeft = lineBreakWaitTicks
		return
	}

	if ch != ' ' && m.Mixer != nil {
		m.Mixer.PlaySound(m.TypeSound)
	}
}
