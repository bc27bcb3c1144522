// Package player implements the player finite state machine, weapon
// and ammo bookkeeping, inventory, and mercy-frame invulnerability.
package player

import (
	"duke2sim/internal/config"
	"duke2sim/internal/input"
	"duke2sim/internal/tilemap"
)

// State is one of the player's finite-state-machine states.
type State int

const (
	StateNormal State = iota
	StateJumping
	StateFalling
	StateRecovering
	StateHanging
	StateDying
	StateClimbingLadder
	StateUsingJetpack
	StateGettingEaten
	StateUsingShip
	StateBlownByFan
	StateRidingElevator
	StateAirlockDeathLeft
	StateAirlockDeathRight
	StateCrouching
	StateLookingUp
)

// Weapon identifies the equipped weapon.
type Weapon int

const (
	WeaponRegular Weapon = iota
	WeaponLaser
	WeaponRocketLauncher
	WeaponFlameThrower
	// WeaponShipLaser is never equipped through EquipWeapon — it is the
	// weapon tryFireWeapon substitutes while State is StateUsingShip.
	WeaponShipLaser
)

// InventoryItem identifies a collectable item slot.
type InventoryItem int

const (
	ItemCircuitBoard InventoryItem = iota
	ItemBlueKey
	ItemRapidFire
	ItemHintGlobe
	ItemCloakingDevice
)

// Orientation is the direction the player currently faces.
type Orientation int

const (
	OrientLeft Orientation = iota
	OrientRight
)

// recoveringTicks is how long a hard landing suppresses firing.
const recoveringTicks = 8

// dyingAnimFrames is the scripted death animation frame sequence.
var dyingAnimFrames = []int{29, 30, 31, 32}

// Player holds all per-player simulation state.
type Player struct {
	cfg config.PlayerConfig

	X, Y        float64
	VelX, VelY  float64
	W, H        float64
	Orientation Orientation

	State        State
	stateTimer   int // ticks remaining in current transient state (recovering, dying, mercy)
	gravityState int

	Health int
	Weapon Weapon
	Ammo   int

	Inventory map[InventoryItem]bool
	Score     int
	Keys      int
	Letters   int

	// HasJetpack enables the sustained-thrust StateUsingJetpack; the
	// jetpack is worn, not carried, so it never occupies an inventory
	// slot.
	HasJetpack bool

	mercyFramesLeft    int
	cloakTicksLeft     int
	rapidFireTicksLeft int
	tickCount          uint64

	tutorialShown [30]bool

	shotThisTick bool

	// elevatorTouchedThisTick is set by RideElevator and cleared at the
	// top of every Update; if a tick passes without it being set again
	// while State is StateRidingElevator, contact with the elevator car
	// has been lost and the player falls.
	elevatorTouchedThisTick bool
	fanDir                  Orientation

	PrevInput input.PlayerInput

	OnSpawnProjectile func(originX, originY float64, orientation Orientation, weapon Weapon)
}

// playerWidthPx and playerHeightPx match the original sprite's hitbox,
// two tiles tall by one tile wide at the default 8px tile size.
const (
	playerWidthPx  = 8
	playerHeightPx = 16
)

// New creates a player at full health with the default weapon and
// config-driven ammo cap.
func New(cfg config.PlayerConfig, x, y float64) *Player {
	return &Player{
		cfg:         cfg,
		X:           x,
		Y:           y,
		W:           playerWidthPx,
		H:           playerHeightPx,
		Orientation: OrientRight,
		Health:      cfg.MaxHealth,
		Weapon:      WeaponRegular,
		Ammo:        cfg.MaxAmmo,
		Inventory:   make(map[InventoryItem]bool),
	}
}

// IsInvulnerable reports whether the player is currently within a mercy
// frame window.
func (p *Player) IsInvulnerable() bool {
	return p.mercyFramesLeft > 0
}

// ShouldBlink reports whether the mercy-frame blink should render the
// sprite invisible this tick (every other tick while invulnerable).
func (p *Player) ShouldBlink() bool {
	return p.IsInvulnerable() && p.tickCount%2 == 0
}

// ApplyDamage applies damage subject to mercy frames; a fatal hit
// transitions into the Dying state regardless of mercy frames. Returns
// true if the damage was actually applied (not absorbed by mercy
// frames).
func (p *Player) ApplyDamage(amount int) bool {
	if isDyingState(p.State) {
		return false
	}
	if p.IsInvulnerable() && amount > 0 {
		return false
	}

	p.Health -= amount
	if p.Health <= 0 {
		p.Health = 0
		p.enterDying()
		return true
	}

	p.mercyFramesLeft = p.cfg.MercyFrames
	return true
}

func (p *Player) enterDying() {
	p.State = StateDying
	p.stateTimer = 0
}

// isDyingState reports whether s is one of the scripted, input-ignoring
// death states: the ordinary fatal-damage death plus the two airlock
// depressurization variants, which play the same frame sequence facing
// in the direction the player was pulled.
func isDyingState(s State) bool {
	return s == StateDying || s == StateAirlockDeathLeft || s == StateAirlockDeathRight
}

// EnterAirlockDeath starts the airlock depressurization death sequence,
// pulled toward dir. Like ordinary death, it ignores all further input
// and ends with the orchestrator restarting from the last checkpoint.
func (p *Player) EnterAirlockDeath(dir Orientation) {
	if dir == OrientLeft {
		p.State = StateAirlockDeathLeft
	} else {
		p.State = StateAirlockDeathRight
	}
	p.stateTimer = 0
}

// DyingAnimationFrame returns the current frame of the scripted death
// animation, or -1 once its four frames have played (the player is
// invisible through the trailing pause). IsDeathSequenceFinished reports
// when that pause is over.
func (p *Player) DyingAnimationFrame() int {
	if !isDyingState(p.State) {
		return -1
	}
	const pauseTicks = 20
	idx := p.stateTimer / 4
	if idx >= len(dyingAnimFrames) {
		return -1
	}
	return dyingAnimFrames[idx]
}

// IsDeathSequenceFinished reports whether the dying animation and its
// trailing pause have completed.
func (p *Player) IsDeathSequenceFinished() bool {
	totalTicks := len(dyingAnimFrames)*4 + 20
	return isDyingState(p.State) && p.stateTimer >= totalTicks
}

// AABB returns the player's current bounding box.
func (p *Player) AABB() tilemap.AABB {
	return tilemap.AABB{X: p.X, Y: p.Y, Width: p.W, Height: p.H}
}

// Update advances the player one tick given the current input and tile
// map, running the full state machine transition set.
func (p *Player) Update(in input.PlayerInput, tiles *tilemap.Map) {
	p.tickCount++
	p.shotThisTick = false

	if p.mercyFramesLeft > 0 {
		p.mercyFramesLeft--
	}
	if p.cloakTicksLeft > 0 {
		p.cloakTicksLeft--
		if p.cloakTicksLeft == 0 {
			delete(p.Inventory, ItemCloakingDevice)
		}
	}
	if p.rapidFireTicksLeft > 0 {
		p.rapidFireTicksLeft--
		if p.rapidFireTicksLeft == 0 {
			delete(p.Inventory, ItemRapidFire)
		}
	}

	if isDyingState(p.State) {
		p.stateTimer++
		p.PrevInput = in
		return
	}

	touchedElevator := p.elevatorTouchedThisTick
	p.elevatorTouchedThisTick = false
	if p.State == StateRidingElevator && !touchedElevator {
		p.State = StateFalling
		p.gravityState = 0
	}

	if p.stateTimer > 0 {
		p.stateTimer--
	}

	p.updateMovementState(in, tiles)
	p.tryFireWeapon(in)

	p.PrevInput = in
}

func (p *Player) standingOn(tiles *tilemap.Map) tilemap.Attribute {
	if tiles == nil {
		return 0
	}
	footTile := tilemap.AABB{X: p.X, Y: p.Y + p.H, Width: p.W, Height: 1}
	tx := int(footTile.X) / tiles.TileSizePx
	ty := int(footTile.Y) / tiles.TileSizePx
	return tiles.AttributesAt(tx, ty)
}

// climbableAhead reports whether the tile immediately in front of the
// player, at chest height, has the CLIMBABLE attribute — the pipe/wall
// grab that enters StateHanging.
func (p *Player) climbableAhead(tiles *tilemap.Map) bool {
	if tiles == nil {
		return false
	}
	x := p.X
	if p.Orientation == OrientRight {
		x = p.X + p.W
	}
	tx := int(x) / tiles.TileSizePx
	ty := int(p.Y+p.H/2) / tiles.TileSizePx
	return tiles.AttributesAt(tx, ty)&tilemap.Climbable != 0
}

// RideElevator carries the player along with an elevator car the
// player is currently standing on; the world runner calls this every
// tick the player's AABB overlaps a live elevator car actor, passing
// its per-tick vertical velocity. Losing contact for one tick (the car
// moved out from under the player, or the player walked off) reverts
// to StateFalling.
func (p *Player) RideElevator(vy float64) {
	p.State = StateRidingElevator
	p.VelY = vy
	p.Y += vy
	p.elevatorTouchedThisTick = true
}

// ApplyFanBlast pushes the player in dir for the given number of ticks,
// matching an electric fan tile's blast. Movement input is ignored for
// the duration; the state reverts to StateFalling once the timer
// elapses.
func (p *Player) ApplyFanBlast(dir Orientation, ticks int) {
	p.State = StateBlownByFan
	p.fanDir = dir
	p.stateTimer = ticks
}

// EnterGettingEaten freezes the player in a predator's grip for ticks;
// if the player hasn't broken free (no escape input is modeled — this
// mirrors the original's unescapable grab) by the time the timer
// elapses, it is fatal.
func (p *Player) EnterGettingEaten(ticks int) {
	p.State = StateGettingEaten
	p.stateTimer = ticks
}

// BoardShip switches the player into the piloted ship state: free
// 4-directional movement at a fixed speed, ignoring gravity, firing
// WeaponShipLaser instead of the equipped weapon.
func (p *Player) BoardShip() {
	p.State = StateUsingShip
	p.VelY = 0
}

// ExitShip leaves the piloted ship, returning control to the normal
// on-foot state machine starting in free-fall.
func (p *Player) ExitShip() {
	p.State = StateFalling
	p.gravityState = 0
}

func (p *Player) updateMovementState(in input.PlayerInput, tiles *tilemap.Map) {
	below := p.standingOn(tiles)
	onLadder := below&tilemap.Ladder != 0

	switch p.State {
	case StateClimbingLadder:
		if !onLadder || (!in.Up && !in.Down) {
			p.State = StateNormal
		}
		return
	case StateRidingElevator:
		return
	case StateHanging:
		if !p.climbableAhead(tiles) || in.Jump.WasTriggered {
			p.State = StateFalling
			p.gravityState = 0
			return
		}
		if in.Up {
			p.Y--
		} else if in.Down {
			p.Y++
		}
		return
	case StateUsingJetpack:
		if !p.HasJetpack || !in.Jump.IsPressed {
			p.State = StateFalling
			p.gravityState = 0
			return
		}
		p.VelY = -1
		p.Y += p.VelY
		if in.Left {
			p.Orientation = OrientLeft
		} else if in.Right {
			p.Orientation = OrientRight
		}
		return
	case StateBlownByFan:
		push := 1.0
		if p.fanDir == OrientLeft {
			push = -1
		}
		p.X += push
		if p.stateTimer <= 0 {
			p.State = StateFalling
			p.gravityState = 0
		}
		return
	case StateGettingEaten:
		if p.stateTimer <= 0 {
			p.enterDying()
		}
		return
	case StateUsingShip:
		p.VelY = 0
		if in.Up {
			p.Y--
		}
		if in.Down {
			p.Y++
		}
		if in.Left {
			p.X--
			p.Orientation = OrientLeft
		}
		if in.Right {
			p.X++
			p.Orientation = OrientRight
		}
		return
	}

	onSolidGround := tiles != nil && tiles.Collides(p.AABB(), tilemap.DirDown)

	if onLadder && in.Up && p.State != StateJumping && p.State != StateFalling {
		p.State = StateClimbingLadder
		p.VelY = 0
		return
	}

	if p.HasJetpack && in.Jump.WasTriggered {
		p.State = StateUsingJetpack
		p.VelY = -1
		p.Y += p.VelY
		return
	}

	if (p.State == StateJumping || p.State == StateFalling) && p.climbableAhead(tiles) && (in.Left || in.Right) {
		p.State = StateHanging
		p.VelY = 0
		return
	}

	if !onSolidGround && p.State != StateJumping {
		if p.State != StateFalling {
			p.gravityState = 0
		}
		p.State = StateFalling
		fall := tilemap.FallDistance(p.gravityState)
		p.Y += float64(fall)
		if p.gravityState < tilemap.MaxGravityState {
			p.gravityState++
		}
		return
	}

	if onSolidGround {
		if p.State == StateFalling && p.gravityState > 4 {
			p.State = StateRecovering
			p.stateTimer = recoveringTicks
			p.gravityState = 0
			return
		}
		p.gravityState = 0
	}

	if p.State == StateRecovering {
		return
	}

	blockedByCeiling := tiles != nil && tiles.Collides(p.AABB(), tilemap.DirUp)
	if in.Jump.WasTriggered && onSolidGround && !blockedByCeiling {
		p.State = StateJumping
		p.VelY = -1
		return
	}

	if p.State == StateJumping {
		p.VelY++
		p.Y += p.VelY
		if p.VelY >= 0 {
			p.State = StateFalling
			p.gravityState = 0
		}
		return
	}

	switch {
	case in.Down && p.VelY == 0:
		p.State = StateCrouching
	case in.Up && p.VelY == 0:
		p.State = StateLookingUp
	default:
		p.State = StateNormal
	}

	if in.Left {
		p.Orientation = OrientLeft
	} else if in.Right {
		p.Orientation = OrientRight
	}

	drift := tilemap.ConveyorDrift(below)
	p.X += float64(drift)
}

// projectileOrigin computes the shot spawn point offset depending on
// the player's current pose and orientation.
func (p *Player) projectileOrigin() (x, y float64) {
	switch p.State {
	case StateCrouching:
		return p.X + p.W/2, p.Y + p.H*0.75
	case StateLookingUp:
		return p.X + p.W/2, p.Y
	default:
		if p.Orientation == OrientRight {
			return p.X + p.W, p.Y + p.H/2
		}
		return p.X, p.Y + p.H/2
	}
}

func (p *Player) tryFireWeapon(in input.PlayerInput) {
	if p.State == StateRecovering || isDyingState(p.State) || p.State == StateGettingEaten {
		return
	}

	rapidFireActive := p.Inventory[ItemRapidFire] && in.Fire.IsPressed && !p.shotThisTick
	if !in.Fire.WasTriggered && !rapidFireActive {
		return
	}
	if p.shotThisTick {
		return
	}

	p.shotThisTick = true

	weapon := p.Weapon
	if p.State == StateUsingShip {
		// The ship's laser is unlimited and never touches the on-foot
		// ammo/weapon bookkeeping.
		weapon = WeaponShipLaser
	} else if p.Weapon != WeaponRegular {
		p.Ammo--
		if p.Ammo <= 0 {
			p.Weapon = WeaponRegular
			p.Ammo = p.cfg.MaxAmmo
		}
	}

	if p.OnSpawnProjectile != nil {
		ox, oy := p.projectileOrigin()
		p.OnSpawnProjectile(ox, oy, p.Orientation, weapon)
	}
}

// EquipWeapon switches the active weapon and resets ammo to the
// weapon-appropriate cap.
func (p *Player) EquipWeapon(w Weapon) {
	p.Weapon = w
	if w == WeaponFlameThrower {
		p.Ammo = p.cfg.MaxAmmoFlamethrower
	} else {
		p.Ammo = p.cfg.MaxAmmo
	}
}

// GrantCloak puts the cloaking device in the inventory for the given
// number of ticks; while it runs the player cannot be hit. Picking up
// another cloak restarts the timer.
func (p *Player) GrantCloak(ticks int) {
	p.Inventory[ItemCloakingDevice] = true
	p.cloakTicksLeft = ticks
}

// GrantRapidFire puts the rapid-fire item in the inventory for the
// given number of ticks, during which holding fire keeps shooting.
func (p *Player) GrantRapidFire(ticks int) {
	p.Inventory[ItemRapidFire] = true
	p.rapidFireTicksLeft = ticks
}

// CloakTicksLeft returns the remaining cloak duration, for the HUD's
// expiry blink.
func (p *Player) CloakTicksLeft() int { return p.cloakTicksLeft }

// RestoreFromSave seeds the cross-level player state a saved game
// carries: weapon, ammo, score, and the shown-tutorial bitset.
// Per-level state (health, keys, letters) always starts fresh.
func (p *Player) RestoreFromSave(weapon Weapon, ammo, score int, tutorialBits uint32) {
	p.Weapon = weapon
	p.Ammo = ammo
	limit := p.cfg.MaxAmmo
	if weapon == WeaponFlameThrower {
		limit = p.cfg.MaxAmmoFlamethrower
	}
	if p.Ammo > limit {
		p.Ammo = limit
	}
	if p.Ammo < 0 {
		p.Ammo = 0
	}
	p.Score = score
	for i := range p.tutorialShown {
		p.tutorialShown[i] = tutorialBits&(1<<uint(i)) != 0
	}
}

// Carryover is the player state that survives a level transition or a
// death restart: score, weapon, ammo, and the shown-tutorial bitset
// persist; health, keys, letters, and timed items always start fresh.
type Carryover struct {
	Valid        bool
	Weapon       Weapon
	Ammo         int
	Score        int
	HasJetpack   bool
	TutorialBits uint32
}

// Carryover exports the cross-level state for seeding the next level's
// player.
func (p *Player) Carryover() Carryover {
	var bits uint32
	for i, shown := range p.tutorialShown {
		if shown {
			bits |= 1 << uint(i)
		}
	}
	return Carryover{
		Valid:        true,
		Weapon:       p.Weapon,
		Ammo:         p.Ammo,
		Score:        p.Score,
		HasJetpack:   p.HasJetpack,
		TutorialBits: bits,
	}
}

// ApplyCarryover seeds a freshly constructed player with the previous
// level's cross-level state. A zero (invalid) carryover is a no-op, so
// the first level of a session starts from the defaults.
func (p *Player) ApplyCarryover(c Carryover) {
	if !c.Valid {
		return
	}
	p.RestoreFromSave(c.Weapon, c.Ammo, c.Score, c.TutorialBits)
	p.HasJetpack = c.HasJetpack
}

// HasShownTutorial reports whether the given tutorial message index has
// already been displayed this session.
func (p *Player) HasShownTutorial(id int) bool {
	if id < 0 || id >= len(p.tutorialShown) {
		return true
	}
	return p.tutorialShown[id]
}

// MarkTutorialShown records that a tutorial message index has now been
// shown, so it is never repeated.
func (p *Player) MarkTutorialShown(id int) {
	if id < 0 || id >= len(p.tutorialShown) {
		return
	}
	p.tutorialShown[id] = true
}
