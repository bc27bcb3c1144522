// Package projectile implements the fixed-capacity player-shot pool:
// shots advance a fixed distance per direction each tick and convert
// into a hit effect on hitting a solid tile or the map edge.
package projectile

import (
	"duke2sim/internal/actor"
	"duke2sim/internal/telemetry"
	"duke2sim/internal/tilemap"
)

// Direction is one of the four axis-aligned shot directions (the
// original game's player shots never travel diagonally).
type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

// speedPxPerTick is the fixed per-tick travel distance for a player
// shot, independent of weapon type.
const speedPxPerTick = 4

const (
	widthPx  = 4
	heightPx = 4
)

// splashRadiusPx extends a shot's damage box by this many pixels on
// every side when AreaEffect is set, so nearby actors the shot's own
// 4x4 hitbox never touched still take the blast.
const splashRadiusPx = 12

// Shot is one live player projectile.
type Shot struct {
	InUse     bool
	X, Y      float64
	Direction Direction
	Damage    int

	// AreaEffect marks a shot whose impact damages every damageable
	// actor within splashRadiusPx of the primary hit, not just the one
	// the shot's own hitbox overlapped — the rocket launcher and flame
	// thrower both work this way.
	AreaEffect bool

	// TrailX/TrailY is a small ring buffer of recent positions used by
	// the renderer to draw a short motion trail.
	TrailX   [4]float64
	TrailY   [4]float64
	trailIdx int
}

func (s *Shot) AABB() tilemap.AABB {
	return tilemap.AABB{X: s.X, Y: s.Y, Width: widthPx, Height: heightPx}
}

func (s *Shot) recordTrail() {
	s.TrailX[s.trailIdx] = s.X
	s.TrailY[s.trailIdx] = s.Y
	s.trailIdx = (s.trailIdx + 1) % 4
}

func (s *Shot) step() {
	switch s.Direction {
	case DirUp:
		s.Y -= speedPxPerTick
	case DirDown:
		s.Y += speedPxPerTick
	case DirLeft:
		s.X -= speedPxPerTick
	case DirRight:
		s.X += speedPxPerTick
	}
}

func collisionDirFor(d Direction) tilemap.Direction {
	switch d {
	case DirUp:
		return tilemap.DirUp
	case DirDown:
		return tilemap.DirDown
	case DirLeft:
		return tilemap.DirLeft
	default:
		return tilemap.DirRight
	}
}

// HitEffectSpawner spawns the sprite-1 hit effect at an impact tile
// when a shot is removed by hitting something solid or leaving the map.
type HitEffectSpawner interface {
	SpawnHitEffect(x, y float64)
}

// ActorKillNotifier is an optional HitEffectSpawner extension, checked
// with a type assertion, notified with a copy of an actor's last state
// the tick a shot's damage reduces its health to zero. Lets the caller
// award score and bonus bookkeeping without the pool needing to know
// what either of those are.
type ActorKillNotifier interface {
	ActorKilled(a *actor.Actor)
}

// Pool is the fixed-capacity (6-slot, per the original) player-shot
// pool.
type Pool struct {
	slots []Shot
}

// NewPool creates a shot pool with the given fixed capacity.
func NewPool(capacity int) *Pool {
	return &Pool{slots: make([]Shot, capacity)}
}

// Capacity returns the pool's fixed size.
func (p *Pool) Capacity() int { return len(p.slots) }

// Spawn occupies the first free slot. Returns false if the pool is
// full — a silent no-op, matching the original's drop-on-exhaustion
// behavior. areaEffect marks a shot (rocket launcher, flame thrower)
// whose impact should splash damage to actors near the primary hit,
// not just the one it directly overlapped.
func (p *Pool) Spawn(x, y float64, dir Direction, damage int, areaEffect bool) bool {
	for i := range p.slots {
		if !p.slots[i].InUse {
			p.slots[i] = Shot{InUse: true, X: x, Y: y, Direction: dir, Damage: damage, AreaEffect: areaEffect}
			return true
		}
	}
	telemetry.RecordPoolExhausted("projectile")
	return false
}

// Get returns a pointer to the slot at index, or nil if out of range.
func (p *Pool) Get(index int) *Shot {
	if index < 0 || index >= len(p.slots) {
		return nil
	}
	return &p.slots[index]
}

// Count returns the number of live shots.
func (p *Pool) Count() int {
	n := 0
	for i := range p.slots {
		if p.slots[i].InUse {
			n++
		}
	}
	return n
}

// Update advances every live shot one tick: move, then check tile
// collision and map-edge exit, converting a removed shot into a hit
// effect via spawner. actorPool, if non-nil, is checked for damageable
// overlaps before the tile check — a shot that hits an actor this tick
// is removed without spawning a hit effect (the actor death effect
// covers that case instead).
func (p *Pool) Update(tiles *tilemap.Map, spawner HitEffectSpawner, actorPool *actor.Pool) {
	for i := range p.slots {
		s := &p.slots[i]
		if !s.InUse {
			continue
		}

		s.recordTrail()
		s.step()

		if actorPool != nil && p.hitsDamageableActor(s, actorPool, spawner) {
			s.InUse = false
			continue
		}

		if tiles == nil {
			continue
		}

		if tiles.Collides(s.AABB(), collisionDirFor(s.Direction)) {
			if spawner != nil {
				spawner.SpawnHitEffect(s.X, s.Y)
			}
			s.InUse = false
			continue
		}

		if s.X < 0 || s.Y < 0 ||
			s.X > float64(tiles.WidthTiles*tiles.TileSizePx) ||
			s.Y > float64(tiles.HeightTiles*tiles.TileSizePx) {
			if spawner != nil {
				spawner.SpawnHitEffect(s.X, s.Y)
			}
			s.InUse = false
		}
	}
}

func overlapsAABB(a, b tilemap.AABB) bool {
	return a.X < b.X+b.Width && a.X+a.Width > b.X &&
		a.Y < b.Y+b.Height && a.Y+a.Height > b.Y
}

// applyDamage deals a shot's damage to a, awarding the kill notification
// when it dies.
func (p *Pool) applyDamage(a *actor.Actor, damage int, spawner HitEffectSpawner) {
	a.Health -= damage
	telemetry.RecordDamage(damage)
	if a.Health <= 0 {
		killed := *a
		*a = actor.Actor{}
		if notifier, ok := spawner.(ActorKillNotifier); ok {
			notifier.ActorKilled(&killed)
		}
	}
}

// hitsDamageableActor finds the first damageable actor the shot's own
// hitbox overlaps and damages it. A shot with AreaEffect set then also
// damages every other damageable actor within splashRadiusPx of the
// primary hit, matching the rocket launcher and flame thrower's area
// effect.
func (p *Pool) hitsDamageableActor(s *Shot, actorPool *actor.Pool, spawner HitEffectSpawner) bool {
	box := s.AABB()
	primary := -1
	for i := 0; i < actorPool.Capacity(); i++ {
		a := actorPool.Get(i)
		if a == nil || !a.InUse || !a.Damageable {
			continue
		}
		if overlapsAABB(box, a.AABB()) {
			primary = i
			break
		}
	}
	if primary < 0 {
		return false
	}

	p.applyDamage(actorPool.Get(primary), s.Damage, spawner)

	if s.AreaEffect {
		blast := tilemap.AABB{
			X:      box.X - splashRadiusPx,
			Y:      box.Y - splashRadiusPx,
			Width:  box.Width + 2*splashRadiusPx,
			Height: box.Height + 2*splashRadiusPx,
		}
		for i := 0; i < actorPool.Capacity(); i++ {
			if i == primary {
				continue
			}
			a := actorPool.Get(i)
			if a == nil || !a.InUse || !a.Damageable {
				continue
			}
			if overlapsAABB(blast, a.AABB()) {
				p.applyDamage(a, s.Damage, spawner)
			}
		}
	}

	return true
}

// TrailPoints returns the shot's recent trail positions oldest-first.
func (s *Shot) TrailPoints() (xs, ys [4]float64) {
	start := s.trailIdx
	for i := 0; i < 4; i++ {
		idx := (start + i) % 4
		xs[i] = s.TrailX[idx]
		ys[i] = s.TrailY[idx]
	}
	return xs, ys
}
