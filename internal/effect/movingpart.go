package effect

import (
	"duke2sim/internal/telemetry"
	"duke2sim/internal/tilemap"
)

// MovingPart is a moving section of the tile map — a sliding door, a
// platform, a piece of destructible geometry in transit.
type MovingPart struct {
	InUse                          bool
	Left, Top, Right, Bottom       int
	RemainingDistance, StepPerTick int
	Map                            *tilemap.Map
}

func (m *MovingPart) update() bool {
	if m.RemainingDistance == 0 {
		return false
	}

	step := m.StepPerTick
	if step > 0 && step > m.RemainingDistance {
		step = m.RemainingDistance
	}
	if step < 0 && step < -m.RemainingDistance {
		step = -m.RemainingDistance
	}

	if m.Map != nil {
		m.Map.MoveSection(m.Left, m.Top, m.Right, m.Bottom, step)
	}
	m.Left += step
	m.Right += step
	m.RemainingDistance -= absInt(step)

	return m.RemainingDistance > 0
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// MovingPartPool is the fixed-capacity (70-slot, per the original)
// moving-map-part pool.
type MovingPartPool struct {
	slots []MovingPart
}

// NewMovingPartPool creates a pool with the given fixed capacity.
func NewMovingPartPool(capacity int) *MovingPartPool {
	return &MovingPartPool{slots: make([]MovingPart, capacity)}
}

// Capacity returns the pool's fixed size.
func (p *MovingPartPool) Capacity() int { return len(p.slots) }

// Spawn occupies the first free slot. Returns false (silent no-op) if
// the pool is full.
func (p *MovingPartPool) Spawn(part MovingPart) bool {
	for i := range p.slots {
		if !p.slots[i].InUse {
			part.InUse = true
			p.slots[i] = part
			return true
		}
	}
	telemetry.RecordPoolExhausted("movingMapPart")
	return false
}

// Update advances every live moving part by one tick, freeing slots
// that have reached their target distance.
func (p *MovingPartPool) Update() {
	for i := range p.slots {
		if p.slots[i].InUse && !p.slots[i].update() {
			p.slots[i] = MovingPart{}
		}
	}
}

// Count returns the number of active moving parts.
func (p *MovingPartPool) Count() int {
	n := 0
	for i := range p.slots {
		if p.slots[i].InUse {
			n++
		}
	}
	return n
}
