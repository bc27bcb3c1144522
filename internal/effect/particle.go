package effect

import "duke2sim/internal/telemetry"

const particleLifetime = 20

// Particle is one slot in a particle group — small debris from
// explosions, destructible geometry, and weapon impacts.
type Particle struct {
	InUse  bool
	X, Y   float64
	VX, VY float64
	Color  int
	timer  int
}

// ParticleGroups holds the fixed number of particle groups, each with
// its own fixed per-group capacity, matching the original's
// NUM_PARTICLE_GROUPS x PARTICLES_PER_GROUP layout — spawns are
// load-balanced round-robin across groups so one burst can't starve the
// others.
type ParticleGroups struct {
	groups    [][]Particle
	nextGroup int
}

// NewParticleGroups creates the fixed particle-group set.
func NewParticleGroups(numGroups, perGroup int) *ParticleGroups {
	groups := make([][]Particle, numGroups)
	for i := range groups {
		groups[i] = make([]Particle, perGroup)
	}
	return &ParticleGroups{groups: groups}
}

// Spawn places a particle in the first free slot of the next group in
// round-robin order, so a single burst is spread across groups instead
// of filling one.
func (g *ParticleGroups) Spawn(x, y, vx, vy float64, color int) bool {
	for attempt := 0; attempt < len(g.groups); attempt++ {
		groupIdx := (g.nextGroup + attempt) % len(g.groups)
		slots := g.groups[groupIdx]
		for i := range slots {
			if !slots[i].InUse {
				slots[i] = Particle{InUse: true, X: x, Y: y, VX: vx, VY: vy, Color: color, timer: particleLifetime}
				g.nextGroup = (groupIdx + 1) % len(g.groups)
				return true
			}
		}
	}
	telemetry.RecordPoolExhausted("particle")
	return false
}

// Update advances every live particle across all groups by one tick.
func (g *ParticleGroups) Update() {
	for gi := range g.groups {
		slots := g.groups[gi]
		for i := range slots {
			p := &slots[i]
			if !p.InUse {
				continue
			}
			p.X += p.VX
			p.Y += p.VY
			p.VY += 0.2 // light gravity pull
			p.timer--
			if p.timer <= 0 {
				*p = Particle{}
			}
		}
	}
}

// Count returns the total number of live particles across all groups.
func (g *ParticleGroups) Count() int {
	n := 0
	for _, slots := range g.groups {
		for i := range slots {
			if slots[i].InUse {
				n++
			}
		}
	}
	return n
}

// GroupCount returns the number of particle groups.
func (g *ParticleGroups) GroupCount() int { return len(g.groups) }

// Group returns the particle slice for group index gi, or nil if out
// of range — used by the renderer to iterate in pool order.
func (g *ParticleGroups) Group(gi int) []Particle {
	if gi < 0 || gi >= len(g.groups) {
		return nil
	}
	return g.groups[gi]
}
