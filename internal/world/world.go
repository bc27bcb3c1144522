// Package world composes the tile map, player, actor pool, and
// projectile/effect/particle/moving-part pools into the per-tick
// gameplay update the original engine ran inside a single level: the
// in-game world simulation itself, as opposed to the mode-variant
// bookkeeping session.Orchestrator does around it.
//
// Update runs the sub-phases in the fixed order spec'd for a logic
// tick: player state update, actor dispatch in pool order, projectile
// update, effect/particle/moving-part update, then score/HUD update.
// Render assembles the immutable worldrender.Snapshot and hud.State a
// renderer consumes on its own cadence.
package world

import (
	"duke2sim/internal/actor"
	"duke2sim/internal/audiomixer"
	"duke2sim/internal/config"
	"duke2sim/internal/effect"
	"duke2sim/internal/hud"
	"duke2sim/internal/input"
	"duke2sim/internal/player"
	"duke2sim/internal/projectile"
	"duke2sim/internal/renderer"
	"duke2sim/internal/session"
	"duke2sim/internal/telemetry"
	"duke2sim/internal/tilemap"
	"duke2sim/internal/worldrender"
)

// ActorType values the runner itself interprets; everything else is
// opaque behavior data dispatched through Actor.Update.
const (
	ActorTypeGoal                 = -1  // touching this actor finishes the level
	ActorTypeSecurityCamera       = -2  // radar dot + "all cameras destroyed" bonus tracking
	ActorTypeSpinningLaserTurret  = -3  // "all turrets destroyed" bonus tracking
	ActorTypeFireBomb             = -4  // "all fire bombs destroyed" bonus tracking
	ActorTypeBonusGlobe           = -5  // "all bonus globes shot" bonus tracking
	ActorTypeElevatorCar          = -6  // touching carries the player; Var1 is its per-tick vertical velocity in px
	ActorTypeFan                  = -7  // touching blows the player; Var1 is direction (0=left,1=right), Var2 is duration in ticks
	ActorTypeEater                = -8  // touching grabs the player; Var1 is the grab duration in ticks
	ActorTypeShip                 = -9  // touching boards the ship; Interact while piloting disembarks
	ActorTypeAirlockHazard        = -10 // touching is fatal; Var1 is the pull direction (0=left,1=right)
	ActorTypeHintMachine          = -11 // dispenses a hint when touched while carrying a hint globe; Var2 picks the hint, Var3 marks it spent
)

// PickupKind classifies what a collectable actor grants the player on
// contact, so the runner can apply it generically instead of every
// pickup actor needing its own UpdateFunc variant for this part.
type PickupKind int

const (
	PickupNone PickupKind = iota
	PickupHealth
	PickupWeaponLaser
	PickupWeaponRocket
	PickupWeaponFlamethrower
	PickupRapidFire
	PickupCloak
	PickupKey
	PickupCircuitBoard
	PickupHintGlobe
	PickupLetter
	PickupScoreOnly
	PickupJetpack
	PickupMerchandise
)

// PickupTutorialID maps a pickup kind to the tutorial-message index
// shown the first time it's collected, or -1 for none.
var PickupTutorialID = map[PickupKind]int{
	PickupWeaponLaser:        1,
	PickupWeaponRocket:       2,
	PickupWeaponFlamethrower: 3,
	PickupRapidFire:          4,
	PickupCloak:              5,
	PickupJetpack:            6,
}

// PickupMessage maps a pickup kind to its tutorial message text.
var PickupMessage = map[PickupKind]string{
	PickupWeaponLaser:        "Found the laser!",
	PickupWeaponRocket:       "Found the rocket launcher!",
	PickupWeaponFlamethrower: "Found the flame thrower!",
	PickupRapidFire:          "Found rapid fire!",
	PickupCloak:              "Found the cloaking device!",
	PickupJetpack:            "Found the jetpack!",
}

// HintMachineMessages are the per-level hints a hint machine dispenses
// in exchange for a hint globe, indexed by the machine's Var2.
var HintMachineMessages = []string{
	"Bring the hint globe to a hint machine to hear a hint.",
	"Shoot the force field generator to pass the barrier.",
	"Look for a blue key to open the exit door.",
}

func hintMachineMessage(index int) string {
	if index < 0 || index >= len(HintMachineMessages) {
		return HintMachineMessages[0]
	}
	return HintMachineMessages[index]
}

// Pickup is scratch data an actor carries when it is a collectable;
// the runner reads it from Actor.Var1 (cast from PickupKind) — the
// actor record itself only has five untyped scratch ints, matching
// the original's var1..var5 layout, so the runner owns the meaning.
func pickupKindOf(a *actor.Actor) PickupKind {
	return PickupKind(a.Var1)
}

// Runner owns one level's live simulation state: the map, the player,
// and every pool. The session orchestrator owns a Runner's lifecycle
// (construct on level load, discard on level end or death-restart);
// Runner itself only knows how to advance and render one level.
type Runner struct {
	cfg   config.AppConfig
	Tiles *tilemap.Map

	Player      *player.Player
	Actors      *actor.Pool
	Shots       *projectile.Pool
	Effects     *effect.Pool
	Particles   *effect.ParticleGroups
	MovingParts *effect.MovingPartPool

	Message *hud.MessageDisplay
	mixer   audiomixer.AudioMixer

	camera     worldrender.CameraSnapshot
	prevCamera worldrender.CameraSnapshot

	goalReached bool
	tookDamage  bool

	camerasTotal     int
	camerasDestroyed int

	turretsTotal     int
	turretsDestroyed int

	firebombsTotal     int
	firebombsDestroyed int

	globesTotal int
	globesShot  int

	merchandiseTotal     int
	merchandiseCollected int

	collectedLaser        bool
	collectedRocket       bool
	collectedFlamethrower bool

	// TextureForActor maps an actor's Type (and current frame) to the
	// texture the world renderer should draw; nil falls back to
	// identity (TextureID == actor Type), which is enough for tests.
	TextureForActor func(actorType, frame int) renderer.TextureID
}

// New constructs a Runner for one level: a fresh set of pools sized
// per cfg.Limits, an already-populated tile map, and a player at the
// given spawn point.
func New(cfg config.AppConfig, tiles *tilemap.Map, playerX, playerY float64, mixer audiomixer.AudioMixer) *Runner {
	r := &Runner{
		cfg:         cfg,
		Tiles:       tiles,
		Player:      player.New(cfg.Player, playerX, playerY),
		Actors:      actor.NewPool(cfg.Limits.MaxActors),
		Shots:       projectile.NewPool(cfg.Limits.MaxPlayerShots),
		Effects:     effect.NewPool(cfg.Limits.MaxEffects),
		Particles:   effect.NewParticleGroups(cfg.Limits.NumParticleGroups, cfg.Limits.ParticlesPerGroup),
		MovingParts: effect.NewMovingPartPool(cfg.Limits.MaxMovingMapParts),
		Message:     &hud.MessageDisplay{Mixer: mixer, TypeSound: audiomixer.SoundID("TYPEWRITER")},
		mixer:       mixer,
	}
	r.Player.OnSpawnProjectile = r.spawnPlayerShot
	return r
}

// SpawnActor places a into the first free pool slot, counting every
// bonus-tracked actor type (and merchandise pickups) toward its
// respective bonus denominator.
func (r *Runner) SpawnActor(a actor.Actor) (int, bool) {
	switch a.Type {
	case ActorTypeSecurityCamera:
		r.camerasTotal++
	case ActorTypeSpinningLaserTurret:
		r.turretsTotal++
	case ActorTypeFireBomb:
		r.firebombsTotal++
	case ActorTypeBonusGlobe:
		r.globesTotal++
	}
	if a.Collectable && pickupKindOf(&a) == PickupMerchandise {
		r.merchandiseTotal++
	}
	return r.Actors.Spawn(a)
}

func (r *Runner) weaponDamage(w player.Weapon) int {
	switch w {
	case player.WeaponLaser:
		return actor.DamageLaser
	case player.WeaponRocketLauncher:
		return actor.DamageRocketLauncher
	case player.WeaponFlameThrower:
		return actor.DamageFlameThrower
	case player.WeaponShipLaser:
		return actor.DamageShipLaser
	default:
		return actor.DamageRegular
	}
}

// weaponHasAreaEffect reports whether a weapon's hit splashes damage to
// nearby actors rather than stopping at the first one struck.
func weaponHasAreaEffect(w player.Weapon) bool {
	return w == player.WeaponRocketLauncher || w == player.WeaponFlameThrower
}

func (r *Runner) spawnPlayerShot(originX, originY float64, orientation player.Orientation, weapon player.Weapon) {
	dir := projectile.DirRight
	if orientation == player.OrientLeft {
		dir = projectile.DirLeft
	}
	r.Shots.Spawn(originX, originY, dir, r.weaponDamage(weapon), weaponHasAreaEffect(weapon))
}

// SpawnHitEffect implements projectile.HitEffectSpawner: a player shot
// hitting a solid tile or leaving the map spawns sprite-1's impact effect at the hit
// point.
func (r *Runner) SpawnHitEffect(x, y float64) {
	r.Effects.Spawn(effect.PatternBurn, x, y, 0)
}

// ActorKilled implements projectile.ActorKillNotifier: a shot that
// reduces a damageable actor's health to zero awards its score and
// feeds the same bonus bookkeeping a scripted UpdateFunc would via
// NotifyActorDestroyed.
func (r *Runner) ActorKilled(a *actor.Actor) {
	r.Player.Score += a.ScoreGiven
	r.NotifyActorDestroyed(a.Type)
}

type viewport struct {
	camera                worldrender.CameraSnapshot
	cols, rows, tileSizePx int
}

func (v viewport) IsVisible(box tilemap.AABB) bool {
	left := v.camera.X
	top := v.camera.Y
	right := left + float64(v.cols*v.tileSizePx)
	bottom := top + float64(v.rows*v.tileSizePx)
	return box.X < right && box.X+box.Width > left &&
		box.Y < bottom && box.Y+box.Height > top
}

// onActorCollision applies a touched actor's effect on the player:
// collectables grant score/health/weapon/inventory and delete
// themselves; hazards damage the player subject to mercy frames and
// cloak; the designated goal actor finishes the level.
func (r *Runner) onActorCollision(a *actor.Actor) {
	if a.Type == ActorTypeGoal {
		r.goalReached = true
		a.InUse = false
		return
	}

	switch a.Type {
	case ActorTypeSecurityCamera, ActorTypeSpinningLaserTurret, ActorTypeFireBomb, ActorTypeBonusGlobe:
		// These are destroyed by gunfire, not touch; touching one is a
		// no-op collision (matches the original: they're scenery with a
		// hitbox used only for the radar dot / bonus tracking).
		return
	case ActorTypeElevatorCar:
		r.Player.RideElevator(float64(a.Var1))
		return
	case ActorTypeFan:
		dir := player.OrientRight
		if a.Var1 == 0 {
			dir = player.OrientLeft
		}
		r.Player.ApplyFanBlast(dir, a.Var2)
		return
	case ActorTypeEater:
		if r.Player.State != player.StateGettingEaten {
			r.Player.EnterGettingEaten(a.Var1)
		}
		return
	case ActorTypeShip:
		if r.Player.State != player.StateUsingShip {
			r.Player.BoardShip()
		}
		return
	case ActorTypeAirlockHazard:
		dir := player.OrientRight
		if a.Var1 == 0 {
			dir = player.OrientLeft
		}
		r.Player.EnterAirlockDeath(dir)
		return
	case ActorTypeHintMachine:
		if a.Var3 != 0 || !r.Player.Inventory[player.ItemHintGlobe] {
			return
		}
		delete(r.Player.Inventory, player.ItemHintGlobe)
		a.Var3 = 1
		r.Message.Show(hintMachineMessage(a.Var2), hud.PriorityHintMachine)
		return
	}

	if a.Collectable {
		r.applyPickup(a)
		a.InUse = false
		return
	}

	if a.Hazardous {
		if r.Player.Inventory[player.ItemCloakingDevice] {
			return
		}
		applied := r.Player.ApplyDamage(1)
		if applied {
			r.tookDamage = true
		}
	}
}

func (r *Runner) applyPickup(a *actor.Actor) {
	kind := pickupKindOf(a)
	r.Player.Score += a.ScoreGiven

	switch kind {
	case PickupHealth:
		r.Player.Health++
		if r.Player.Health > r.cfg.Player.MaxHealth {
			r.Player.Health = r.cfg.Player.MaxHealth
		}
	case PickupWeaponLaser:
		r.Player.EquipWeapon(player.WeaponLaser)
		r.collectedLaser = true
	case PickupWeaponRocket:
		r.Player.EquipWeapon(player.WeaponRocketLauncher)
		r.collectedRocket = true
	case PickupWeaponFlamethrower:
		r.Player.EquipWeapon(player.WeaponFlameThrower)
		r.collectedFlamethrower = true
	case PickupRapidFire:
		r.Player.GrantRapidFire(r.cfg.Player.RapidFireTicks)
	case PickupCloak:
		r.Player.GrantCloak(r.cfg.Player.CloakTicks)
	case PickupKey:
		r.Player.Keys++
		r.Player.Inventory[player.ItemBlueKey] = true
	case PickupCircuitBoard:
		r.Player.Inventory[player.ItemCircuitBoard] = true
	case PickupHintGlobe:
		r.Player.Inventory[player.ItemHintGlobe] = true
	case PickupLetter:
		r.Player.Letters++
	case PickupJetpack:
		r.Player.HasJetpack = true
	case PickupMerchandise:
		r.merchandiseCollected++
	}

	if msg, ok := PickupMessage[kind]; ok {
		id := PickupTutorialID[kind]
		if !r.Player.HasShownTutorial(id) {
			r.Message.Show(msg, hud.PriorityHintMachine)
			r.Player.MarkTutorialShown(id)
		}
	}
}

// Update advances the level's simulation by exactly one logic tick.
func (r *Runner) Update(in input.PlayerInput) {
	if r.Player.State == player.StateUsingShip && in.Interact.WasTriggered {
		r.Player.ExitShip()
	}
	r.Player.Update(in, r.Tiles)

	vp := viewport{camera: r.camera, cols: r.cfg.Video.ViewportCols, rows: r.cfg.Video.ViewportRows, tileSizePx: r.cfg.Video.TileSizePx}
	actor.Dispatch(r.Actors, r.Tiles, vp, r.Player.AABB(), r.onActorCollision, nil)

	r.Shots.Update(r.Tiles, r, r.Actors)
	r.Effects.Update()
	r.Particles.Update()
	r.MovingParts.Update()
	r.Message.Update()

	r.prevCamera = r.camera
	r.updateCamera()

	telemetry.SetActorCount(r.Actors.Count())
	telemetry.SetEffectCount(r.Effects.Count())
	telemetry.SetParticleCount(r.Particles.Count())
	telemetry.SetProjectileCount(r.Shots.Count())
}

// NotifyActorDestroyed lets an actor's own UpdateFunc report its
// destruction for bonus bookkeeping the generic dispatch loop can't see
// (it only observes the live count, not identity). Camera behavior
// funcs call this right before returning deleted=true.
func (r *Runner) NotifyActorDestroyed(actorType int) {
	switch actorType {
	case ActorTypeSecurityCamera:
		r.camerasDestroyed++
	case ActorTypeSpinningLaserTurret:
		r.turretsDestroyed++
	case ActorTypeFireBomb:
		r.firebombsDestroyed++
	case ActorTypeBonusGlobe:
		r.globesShot++
	}
}

func (r *Runner) updateCamera() {
	targetX := r.Player.X - float64(r.cfg.Video.ViewportCols*r.cfg.Video.TileSizePx)/2
	targetY := r.Player.Y - float64(r.cfg.Video.ViewportRows*r.cfg.Video.TileSizePx)/2
	if targetX < 0 {
		targetX = 0
	}
	if targetY < 0 {
		targetY = 0
	}
	maxX := float64(r.Tiles.WidthTiles*r.Tiles.TileSizePx - r.cfg.Video.ViewportCols*r.cfg.Video.TileSizePx)
	maxY := float64(r.Tiles.HeightTiles*r.Tiles.TileSizePx - r.cfg.Video.ViewportRows*r.cfg.Video.TileSizePx)
	if maxX > 0 && targetX > maxX {
		targetX = maxX
	}
	if maxY > 0 && targetY > maxY {
		targetY = maxY
	}
	r.camera = worldrender.CameraSnapshot{X: targetX, Y: targetY}
}

// GoalReached reports whether the level's goal actor has been touched
// this run.
func (r *Runner) GoalReached() bool { return r.goalReached }

// PlayerFlying reports whether the player is piloting a ship, which
// narrows the input aggregator's analog Y deadzone.
func (r *Runner) PlayerFlying() bool { return r.Player.State == player.StateUsingShip }

// PlayerCarryover exports the cross-level player state the session
// carries into the next level's runner: score and weapon persist,
// per-level state does not.
func (r *Runner) PlayerCarryover() player.Carryover { return r.Player.Carryover() }

// PlayerDied reports whether the player's death sequence (animation
// plus trailing pause) has fully played out.
func (r *Runner) PlayerDied() bool { return r.Player.IsDeathSequenceFinished() }

// AchievedBonuses computes the session.Bonus set earned so far this
// level, for session.Orchestrator.LevelFinished.
func (r *Runner) AchievedBonuses() map[session.Bonus]bool {
	return map[session.Bonus]bool{
		session.BonusTookNoDamage:                       !r.tookDamage,
		session.BonusDestroyedAllCameras:                r.camerasTotal > 0 && r.camerasDestroyed >= r.camerasTotal,
		session.BonusCollectedAllWeapons:                r.collectedLaser && r.collectedRocket && r.collectedFlamethrower,
		session.BonusCollectedAllMerchandise:            r.merchandiseTotal > 0 && r.merchandiseCollected >= r.merchandiseTotal,
		session.BonusDestroyedAllSpinningLaserTurrets:   r.turretsTotal > 0 && r.turretsDestroyed >= r.turretsTotal,
		session.BonusDestroyedAllFireBombs:              r.firebombsTotal > 0 && r.firebombsDestroyed >= r.firebombsTotal,
		session.BonusShotAllBonusGlobes:                 r.globesTotal > 0 && r.globesShot >= r.globesTotal,
	}
}

// textureFor resolves the texture for an actor, falling back to an
// identity mapping when no TextureForActor hook is set.
func (r *Runner) textureFor(actorType, frame int) renderer.TextureID {
	if r.TextureForActor != nil {
		return r.TextureForActor(actorType, frame)
	}
	return renderer.TextureID(actorType)
}

// Snapshot assembles this tick's immutable render input.
func (r *Runner) Snapshot() worldrender.Snapshot {
	snap := worldrender.Snapshot{
		PrevCamera: r.prevCamera,
		CurrCamera: r.camera,
	}

	for i := 0; i < r.Actors.Capacity(); i++ {
		a := r.Actors.Get(i)
		if a == nil || !a.InUse {
			continue
		}
		style := worldrender.StyleNormal
		switch a.DrawStyle {
		case actor.DrawWhiteflash:
			style = worldrender.StyleWhiteflash
		case actor.DrawInvisible:
			style = worldrender.StyleInvisible
		case actor.DrawInFront:
			style = worldrender.StyleInFront
		case actor.DrawTranslucent:
			style = worldrender.StyleTranslucent
		}
		snap.Sprites = append(snap.Sprites, worldrender.SpriteDrawCmd{
			TextureID: r.textureFor(a.Type, 0),
			X:         int(a.X),
			Y:         int(a.Y),
			Style:     style,
		})
		if a.Type == ActorTypeSecurityCamera {
			snap.RadarDots = append(snap.RadarDots, struct{ X, Y int }{int(a.X), int(a.Y)})
		}
	}

	for i := 0; i < r.Shots.Capacity(); i++ {
		s := r.Shots.Get(i)
		if s == nil || !s.InUse {
			continue
		}
		snap.Sprites = append(snap.Sprites, worldrender.SpriteDrawCmd{
			TextureID: r.textureFor(-100-int(s.Direction), 0),
			X:         int(s.X),
			Y:         int(s.Y),
			Style:     worldrender.StyleInFront,
		})
	}

	return snap
}

// HUDState assembles this tick's HUD data from the player.
func (r *Runner) HUDState(level int, score int) hud.State {
	var radar []struct{ X, Y int }
	for i := 0; i < r.Actors.Capacity(); i++ {
		a := r.Actors.Get(i)
		if a != nil && a.InUse && a.Type == ActorTypeSecurityCamera {
			radar = append(radar, struct{ X, Y int }{int(a.X), int(a.Y)})
		}
	}

	return hud.State{
		Level:          level,
		Score:          score,
		Health:         r.Player.Health,
		MaxHealth:      r.cfg.Player.MaxHealth,
		Weapon:         int(r.Player.Weapon),
		Ammo:           r.Player.Ammo,
		MaxAmmo:        r.cfg.Player.MaxAmmo,
		RadarDots:      radar,
		LowAmmoBlink:   r.Player.Ammo > 0 && r.Player.Ammo <= 4,
		LowHealthPulse: r.Player.Health > 0 && r.Player.Health <= 2,
	}
}
