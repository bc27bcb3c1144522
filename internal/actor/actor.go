// Package actor holds the fixed-capacity actor pool and the per-tick
// dispatch loop that drives enemy AI, scenery animation, and
// player/projectile collision against it. Iteration is always in pool
// slot order — never a map — so behavior is deterministic across runs.
package actor

import (
	"duke2sim/internal/telemetry"
	"duke2sim/internal/tilemap"
)

// DrawStyle controls how an actor's sprite is rendered this tick.
type DrawStyle int

const (
	DrawNormal DrawStyle = iota
	DrawWhiteflash
	DrawInvisible
	DrawInFront
	DrawTranslucent
)

// UpdateFunc implements an actor's behavior for one tick: AI, animation
// advance, spawning projectiles/effects, and optionally deleting the
// actor by returning deleted=true.
type UpdateFunc func(a *Actor) (deleted bool)

// Actor is one pool slot. Zero value is an empty (deleted) slot.
type Actor struct {
	InUse bool

	Type int
	X, Y float64
	W, H float64

	Health     int
	ScoreGiven int
	Damageable bool
	Hazardous  bool
	Collectable bool

	GravityAffected    bool
	GravityState       int
	AlwaysUpdate       bool
	RemainActive       bool
	AllowStairStepping bool
	everSeen           bool

	// Var1..Var5 are untyped scratch variables an UpdateFunc (and the
	// runner glue that spawns this actor) interprets however that
	// behavior needs — pickup kind, AI phase, a countdown, a spawn
	// origin index. The pool itself never reads their meaning.
	Var1, Var2, Var3, Var4, Var5 int

	DrawStyle DrawStyle
	Update    UpdateFunc
}

// AABB returns the actor's bounding box.
func (a *Actor) AABB() tilemap.AABB {
	return tilemap.AABB{X: a.X, Y: a.Y, Width: a.W, Height: a.H}
}

func overlaps(a, b tilemap.AABB) bool {
	return a.X < b.X+b.Width && a.X+a.Width > b.X &&
		a.Y < b.Y+b.Height && a.Y+a.Height > b.Y
}

// Pool is the fixed-capacity actor pool.
type Pool struct {
	slots []Actor
}

// NewPool creates a pool with the given fixed capacity.
func NewPool(capacity int) *Pool {
	return &Pool{slots: make([]Actor, capacity)}
}

// Capacity returns the pool's fixed size.
func (p *Pool) Capacity() int { return len(p.slots) }

// Spawn occupies the first free slot with the given actor data,
// returning the slot index and true, or (-1, false) if the pool is
// full. A full pool is a silent no-op by design — callers should not
// treat it as an error.
func (p *Pool) Spawn(a Actor) (int, bool) {
	for i := range p.slots {
		if !p.slots[i].InUse {
			a.InUse = true
			p.slots[i] = a
			return i, true
		}
	}
	telemetry.RecordPoolExhausted("actor")
	return -1, false
}

// Get returns a pointer to the slot at index, or nil if out of range.
func (p *Pool) Get(index int) *Actor {
	if index < 0 || index >= len(p.slots) {
		return nil
	}
	return &p.slots[index]
}

// Delete frees a slot.
func (p *Pool) Delete(index int) {
	if index < 0 || index >= len(p.slots) {
		return
	}
	p.slots[index] = Actor{}
}

// Count returns the number of occupied slots.
func (p *Pool) Count() int {
	n := 0
	for i := range p.slots {
		if p.slots[i].InUse {
			n++
		}
	}
	return n
}

// ViewportChecker reports whether a world-space AABB is currently
// visible; off-screen, non-always-update actors skip dispatch unless
// RemainActive is set and they have been seen before.
type ViewportChecker interface {
	IsVisible(box tilemap.AABB) bool
}

// ProjectileHit describes one projectile overlap candidate supplied by
// the caller for this tick's actor-vs-projectile pass.
type ProjectileHit struct {
	Damage int
	Box    tilemap.AABB
	// OnHit is invoked once if the projectile's box overlapped a
	// damageable actor and should be consumed (removed) by the caller.
	OnHit func()
}

// Dispatch runs the full per-tick pass over every occupied slot in pool
// order: visibility skip, gravity/conveyor integration, the actor's own
// UpdateFunc, then player and projectile collision, matching the
// original dispatch order exactly.
func Dispatch(
	p *Pool,
	tiles *tilemap.Map,
	viewport ViewportChecker,
	playerBox tilemap.AABB,
	onPlayerCollision func(a *Actor),
	projectiles []ProjectileHit,
) {
	for i := range p.slots {
		a := &p.slots[i]
		if !a.InUse {
			continue
		}

		box := a.AABB()
		visible := viewport == nil || viewport.IsVisible(box)
		if visible {
			a.everSeen = true
		}
		if !visible && !a.AlwaysUpdate && (!a.everSeen || !a.RemainActive) {
			continue
		}

		if a.GravityAffected {
			footTile := tilemap.AABB{X: a.X, Y: a.Y + a.H, Width: a.W, Height: 1}
			onGround := tiles != nil && tiles.Collides(footTile, tilemap.DirDown)
			if !onGround {
				fall := tilemap.FallDistance(a.GravityState)
				a.Y += float64(fall)
				if a.GravityState < tilemap.MaxGravityState {
					a.GravityState++
				}
			} else {
				a.GravityState = 0
			}
		}

		if tiles != nil {
			below := tiles.AttributesAt(int(a.X)/tiles.TileSizePx, int(a.Y+a.H)/tiles.TileSizePx)
			if drift := tilemap.ConveyorDrift(below); drift != 0 {
				a.X += driftDistance(tiles, a, drift)
			}
		}

		if a.Update != nil {
			if a.Update(a) {
				*a = Actor{}
				continue
			}
		}

		if a.DrawStyle != DrawInvisible && overlaps(a.AABB(), playerBox) && onPlayerCollision != nil {
			onPlayerCollision(a)
		}

		if a.Damageable {
			for _, hit := range projectiles {
				if !overlaps(a.AABB(), hit.Box) {
					continue
				}
				a.Health -= hit.Damage
				telemetry.RecordDamage(hit.Damage)
				if hit.OnHit != nil {
					hit.OnHit()
				}
				if a.Health <= 0 {
					*a = Actor{}
					break
				}
			}
		}

		if a.InUse && (a.DrawStyle == DrawWhiteflash || a.DrawStyle == DrawTranslucent) {
			a.DrawStyle = DrawNormal
		}
	}
}

// driftDistance resolves a conveyor-belt horizontal push against the
// map: blocked outright by a solid tile ahead, unless the actor's
// AllowStairStepping flag lets it climb a single-tile step instead of
// stopping, matching spec's "actors whose allowStairStepping bit is set
// may climb or descend a single-tile step without blocking".
func driftDistance(tiles *tilemap.Map, a *Actor, drift int) float64 {
	dir := tilemap.DirRight
	if drift < 0 {
		dir = tilemap.DirLeft
	}
	ahead := tilemap.AABB{X: a.X + float64(drift), Y: a.Y, Width: a.W, Height: a.H}
	if !tiles.Collides(ahead, dir) {
		return float64(drift)
	}
	if tilemap.CanStairStep(a.AllowStairStepping, tiles.TileSizePx, tiles.TileSizePx) {
		a.Y -= float64(tiles.TileSizePx)
		return float64(drift)
	}
	return 0
}

// Weapon damage constants, carried over unchanged from the original
// balance table.
const (
	DamageRegular        = 1
	DamageLaser          = 2
	DamageRocketLauncher = 8
	DamageFlameThrower   = 2
	DamageShipLaser      = 5
)
