// Package eventlog provides a bounded, rate-limited circular event log
// for deterministic replay and audit: every tick boundary, spawn,
// destroy, damage, death, script transition and level transition is
// recorded with a monotonic sequence number so a recorded session can
// be replayed and diffed against a live run.
package eventlog

import (
	"encoding/json"
	"time"
)

// Type classifies a logged event.
type Type uint8

const (
	TypeUnknown Type = iota
	TypeTick         // tick boundary, carries the accumulator/RNG state
	TypeActorSpawn
	TypeActorDestroy
	TypeDamage
	TypePlayerDeath
	TypeRespawn
	TypeWeaponFire
	TypeItemPickup
	TypeScriptTransition
	TypeLevelTransition
)

// Version guards payload layout for replay compatibility.
const Version uint8 = 1

// Event is the core event-log record.
type Event struct {
	Version   uint8  `json:"version"`
	Type      Type   `json:"type"`
	Timestamp int64  `json:"timestamp"` // unix nano, wall-clock only, never used for replay timing
	Sequence  uint64 `json:"sequence"`  // monotonic, assigned on buffer insert
	TickNum   uint64 `json:"tickNum"`
	ActorID   uint32 `json:"actorId,omitempty"` // pool slot index, 0 means "not actor-scoped"
	Payload   []byte `json:"payload"`
}

func (t Type) String() string {
	switch t {
	case TypeTick:
		return "tick"
	case TypeActorSpawn:
		return "actor_spawn"
	case TypeActorDestroy:
		return "actor_destroy"
	case TypeDamage:
		return "damage"
	case TypePlayerDeath:
		return "player_death"
	case TypeRespawn:
		return "respawn"
	case TypeWeaponFire:
		return "weapon_fire"
	case TypeItemPickup:
		return "item_pickup"
	case TypeScriptTransition:
		return "script_transition"
	case TypeLevelTransition:
		return "level_transition"
	default:
		return "unknown"
	}
}

// TickPayload records the deterministic state carried across a tick
// boundary, enough to detect replay divergence.
type TickPayload struct {
	RNGState    uint64 `json:"rngState"`
	ActiveCount int    `json:"activeCount"`
}

// DamagePayload records a damage application against the player.
type DamagePayload struct {
	SourceActorID uint32 `json:"sourceActorId"`
	Damage        int    `json:"damage"`
	HealthAfter   int    `json:"healthAfter"`
}

// ActorSpawnPayload records an actor entering the pool.
type ActorSpawnPayload struct {
	ActorType int     `json:"actorType"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

// LevelTransitionPayload records moving between levels.
type LevelTransitionPayload struct {
	FromLevel int `json:"fromLevel"`
	ToLevel   int `json:"toLevel"`
}

// ScriptTransitionPayload records the script interpreter changing state.
type ScriptTransitionPayload struct {
	ScriptName string `json:"scriptName"`
	FromState  string `json:"fromState"`
	ToState    string `json:"toState"`
}

// EncodePayload marshals a payload to JSON, returning nil on failure
// rather than propagating the error — a malformed payload must never
// block the tick loop.
func EncodePayload(payload interface{}) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return data
}

// New creates an event stamped with the current wall-clock time.
func New(typ Type, tickNum uint64, actorID uint32, payload interface{}) Event {
	return Event{
		Version:   Version,
		Type:      typ,
		Timestamp: time.Now().UnixNano(),
		TickNum:   tickNum,
		ActorID:   actorID,
		Payload:   EncodePayload(payload),
	}
}
