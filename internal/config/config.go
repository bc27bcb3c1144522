// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for all simulation, rendering, and
// tooling tunables.
//
// IMPORTANT: When changing values, only modify this file.
// All other parts of the codebase should reference these values.
package config

import (
	"os"
	"strconv"
	"time"
)

// =============================================================================
// TICK / TIMING CONFIGURATION
// =============================================================================

// TimingConfig holds the fixed-step simulation rates.
type TimingConfig struct {
	GameHz        int // canonical simulation rate (15 Hz)
	FastTickHz    int // animation-rate unit inherited from the original's PIT (280 Hz)
	SlowTickHz    int // animation-rate unit inherited from the original's PIT (140 Hz)
	MaxCatchUpTicks int // bound on logic ticks consumed per rendered frame outside demo mode
}

// DefaultTiming returns the canonical timing configuration.
func DefaultTiming() TimingConfig {
	return TimingConfig{
		GameHz:          15,
		FastTickHz:      280,
		SlowTickHz:      140,
		MaxCatchUpTicks: 4,
	}
}

// GameStep is the duration of one logic tick at GameHz.
func (t TimingConfig) GameStep() time.Duration {
	return time.Second / time.Duration(t.GameHz)
}

// =============================================================================
// VIDEO / VIEWPORT CONFIGURATION
// =============================================================================

// VideoConfig holds viewport and canvas settings shared between the
// simulation (camera/visibility culling) and any renderer adapter.
type VideoConfig struct {
	TileSizePx      int // pixels per tile (8 in the original)
	ViewportCols    int // classic viewport width in tiles (32)
	ViewportRows    int // classic viewport height in tiles (20)
	WidescreenCols  int // optional wider viewport for modern displays
	MotionSmoothing bool
}

// DefaultVideo returns the default video/viewport configuration.
func DefaultVideo() VideoConfig {
	return VideoConfig{
		TileSizePx:      8,
		ViewportCols:    32,
		ViewportRows:    20,
		WidescreenCols:  40,
		MotionSmoothing: true,
	}
}

// VideoFromEnv returns video configuration with environment variable overrides.
func VideoFromEnv() VideoConfig {
	cfg := DefaultVideo()

	if w := getEnvInt("VIEWPORT_COLS", 0); w > 0 {
		cfg.ViewportCols = w
	}
	if h := getEnvInt("VIEWPORT_ROWS", 0); h > 0 {
		cfg.ViewportRows = h
	}
	if os.Getenv("MOTION_SMOOTHING") == "false" {
		cfg.MotionSmoothing = false
	}

	return cfg
}

// =============================================================================
// GAME RESOURCE LIMITS
// =============================================================================

// ResourceLimits controls the fixed pool capacities the original engine
// enforces. These are never exceeded; spawns beyond capacity are dropped.
type ResourceLimits struct {
	MaxActors         int // actor pool capacity (448)
	MaxPlayerShots    int // player projectile pool capacity (6)
	MaxEffects        int // effect pool capacity (18)
	MaxMovingMapParts int // moving map part pool capacity (70)
	NumParticleGroups int // particle groups (5)
	ParticlesPerGroup int // particles per group (64)
	MaxInventorySlots int // inventory slot capacity (6)
}

// DefaultLimits returns the default resource limits, matching the
// original game's fixed pool sizes exactly.
func DefaultLimits() ResourceLimits {
	return ResourceLimits{
		MaxActors:         448,
		MaxPlayerShots:    6,
		MaxEffects:        18,
		MaxMovingMapParts: 70,
		NumParticleGroups: 5,
		ParticlesPerGroup: 64,
		MaxInventorySlots: 6,
	}
}

// =============================================================================
// PLAYER CONFIGURATION
// =============================================================================

// PlayerConfig holds player balance constants carried over from the
// original game (health/ammo caps, timers).
type PlayerConfig struct {
	MaxHealth            int
	MaxAmmo              int
	MaxAmmoFlamethrower  int
	MercyFrames          int // invulnerability ticks after non-fatal damage
	CloakTicks           int // cloak item duration in ticks
	RapidFireTicks       int // rapid-fire item duration in ticks
	NumTutorialMessages  int
	NumInventorySlots    int
}

// DefaultPlayer returns the default player balance configuration.
func DefaultPlayer() PlayerConfig {
	return PlayerConfig{
		MaxHealth:           9,
		MaxAmmo:             32,
		MaxAmmoFlamethrower: 64,
		MercyFrames:         20,
		CloakTicks:          700,
		RapidFireTicks:      700,
		NumTutorialMessages: 30,
		NumInventorySlots:   6,
	}
}

// =============================================================================
// AUDIO CONFIGURATION
// =============================================================================

// AudioConfig holds audio mixer settings.
type AudioConfig struct {
	SampleRate int     // Audio sample rate in Hz
	Channels   int     // Number of audio channels (1=mono, 2=stereo)
	SoundVolume float64 // Master SFX volume (0.0 to 1.0)
	MusicVolume float64 // Master music volume (0.0 to 1.0)
	Enabled    bool    // Whether audio/music is enabled
}

// DefaultAudio returns the default audio configuration.
func DefaultAudio() AudioConfig {
	return AudioConfig{
		SampleRate:  44100,
		Channels:    2,
		SoundVolume: 0.6,
		MusicVolume: 0.35,
		Enabled:     true,
	}
}

// AudioFromEnv returns audio configuration with environment variable overrides.
func AudioFromEnv() AudioConfig {
	cfg := DefaultAudio()

	if v := getEnvFloat("MUSIC_VOLUME", -1); v >= 0 {
		cfg.MusicVolume = v
	}
	if v := getEnvFloat("SOUND_VOLUME", -1); v >= 0 {
		cfg.SoundVolume = v
	}
	if os.Getenv("AUDIO_ENABLED") == "false" {
		cfg.Enabled = false
	}

	return cfg
}

// =============================================================================
// DEMO CONFIGURATION
// =============================================================================

// DemoConfig holds demo-playback and intro-timeout settings.
type DemoConfig struct {
	TimeoutToDemoTicks int // ticks of no input before a script times out to the demo loop (~2100)
	EpisodeIndex       int // demo's fixed episode index (0)
	LevelSequence      []int
	Difficulty         string // demo's fixed difficulty ("hard")
}

// DefaultDemo returns the default demo configuration.
func DefaultDemo() DemoConfig {
	return DemoConfig{
		TimeoutToDemoTicks: 2100,
		EpisodeIndex:       0,
		LevelSequence:      []int{0, 2, 4, 6},
		Difficulty:         "hard",
	}
}

// =============================================================================
// DEBUG SERVER CONFIGURATION
// =============================================================================

// DebugServerConfig holds the read-only spectator/metrics HTTP server
// settings. This surface never accepts input that mutates simulation
// state.
type DebugServerConfig struct {
	Enabled      bool
	Addr         string
	AllowOrigins []string
}

// DefaultDebugServer returns the default debug server configuration.
func DefaultDebugServer() DebugServerConfig {
	return DebugServerConfig{
		Enabled:      false,
		Addr:         "127.0.0.1:8910",
		AllowOrigins: []string{"http://localhost:3000", "http://127.0.0.1:3000"},
	}
}

// DebugServerFromEnv returns debug server configuration with environment
// variable overrides.
func DebugServerFromEnv() DebugServerConfig {
	cfg := DefaultDebugServer()

	if os.Getenv("DEBUG_SERVER_ENABLED") == "true" {
		cfg.Enabled = true
	}
	if addr := os.Getenv("DEBUG_SERVER_ADDR"); addr != "" {
		cfg.Addr = addr
	}

	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Timing      TimingConfig
	Video       VideoConfig
	Audio       AudioConfig
	Limits      ResourceLimits
	Player      PlayerConfig
	Demo        DemoConfig
	DebugServer DebugServerConfig
	Debug       bool // enables debug-build diagnostics (pool-exhaustion warnings, etc.)
}

// Load returns the complete configuration with defaults only.
func Load() AppConfig {
	return AppConfig{
		Timing:      DefaultTiming(),
		Video:       DefaultVideo(),
		Audio:       DefaultAudio(),
		Limits:      DefaultLimits(),
		Player:      DefaultPlayer(),
		Demo:        DefaultDemo(),
		DebugServer: DefaultDebugServer(),
	}
}

// FromEnv returns the complete configuration layered with environment
// variable overrides. Callers that want `.env` support load it (e.g. via
// godotenv.Load()) before calling FromEnv.
func FromEnv() AppConfig {
	return AppConfig{
		Timing:      DefaultTiming(),
		Video:       VideoFromEnv(),
		Audio:       AudioFromEnv(),
		Limits:      DefaultLimits(),
		Player:      DefaultPlayer(),
		Demo:        DefaultDemo(),
		DebugServer: DebugServerFromEnv(),
		Debug:       os.Getenv("DEBUG") == "true",
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
