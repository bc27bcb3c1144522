package app

import (
	"errors"
	"testing"

	"duke2sim/internal/config"
	"duke2sim/internal/demo"
	"duke2sim/internal/eventlog"
	"duke2sim/internal/hud"
	"duke2sim/internal/input"
	"duke2sim/internal/player"
	"duke2sim/internal/script"
	"duke2sim/internal/session"
	"duke2sim/internal/tilemap"
	"duke2sim/internal/world"
	"duke2sim/internal/worldrender"
)

type fakeRunner struct {
	updates     int
	goalReached bool
	playerDied  bool
	achieved    map[session.Bonus]bool
}

func (r *fakeRunner) Update(in input.PlayerInput) { r.updates++ }
func (r *fakeRunner) GoalReached() bool            { return r.goalReached }
func (r *fakeRunner) PlayerDied() bool             { return r.playerDied }
func (r *fakeRunner) AchievedBonuses() map[session.Bonus]bool {
	if r.achieved == nil {
		return map[session.Bonus]bool{}
	}
	return r.achieved
}
func (r *fakeRunner) PlayerCarryover() player.Carryover     { return player.Carryover{} }
func (r *fakeRunner) Snapshot() worldrender.Snapshot        { return worldrender.Snapshot{} }
func (r *fakeRunner) HUDState(level, score int) hud.State { return hud.State{Level: level, Score: score} }

func waitScript(name string) script.Script {
	return script.Script{Name: name, Actions: []script.Action{{Type: script.ActionWaitForUserInput}}}
}

func newTestApp(t *testing.T, runners map[int]*fakeRunner) *App {
	t.Helper()
	factory := func(levelIndex int, checkpoint session.Checkpoint, carry player.Carryover) (Runner, error) {
		r, ok := runners[levelIndex]
		if !ok {
			r = &fakeRunner{}
			runners[levelIndex] = r
		}
		return r, nil
	}
	scriptFor := func(stage session.Stage) script.Script {
		return waitScript("screen")
	}
	var newsTable [256]int
	return New(session.GameSessionID{Episode: 0, Level: 0, Difficulty: session.DifficultyEasy}, 2, factory, scriptFor, newsTable)
}

func anyPress() input.PlayerInput {
	return input.PlayerInput{Jump: input.Button{WasTriggered: true, IsPressed: true}}
}

func TestNewLoadsLevelZeroRunnerImmediately(t *testing.T) {
	runners := map[int]*fakeRunner{}
	a := newTestApp(t, runners)

	if a.Runner() == nil {
		t.Fatal("expected a runner to be loaded for the initial stage")
	}
	if len(runners) != 1 {
		t.Fatalf("expected exactly one runner built, got %d", len(runners))
	}
}

func TestGoalReachedAdvancesToBonusScreenThenNextLevel(t *testing.T) {
	runners := map[int]*fakeRunner{}
	a := newTestApp(t, runners)

	runners[0].goalReached = true
	a.Tick(input.PlayerInput{})

	if a.Orchestrator().Stage() != session.StageBonusScreen {
		t.Fatalf("Stage() = %v, want StageBonusScreen", a.Orchestrator().Stage())
	}
	if a.Runner() != nil {
		t.Error("expected no active runner during the bonus screen")
	}

	// The bonus screen's placeholder script waits for one input, then
	// finishes, which should advance to level 1's runner.
	a.Tick(anyPress())

	if a.Orchestrator().Stage() != session.StageRunner {
		t.Fatalf("Stage() = %v, want StageRunner after bonus screen finishes", a.Orchestrator().Stage())
	}
	if a.Orchestrator().LevelIndex() != 1 {
		t.Errorf("LevelIndex() = %d, want 1", a.Orchestrator().LevelIndex())
	}
	if _, ok := runners[1]; !ok {
		t.Error("expected level 1's runner to have been constructed")
	}
}

func TestGoalReachedOnLastLevelGoesToEpisodeEnd(t *testing.T) {
	runners := map[int]*fakeRunner{}
	a := newTestApp(t, runners) // levelsInEpisode: 2, so level 1 is last

	runners[0].goalReached = true
	a.Tick(input.PlayerInput{})
	a.Tick(anyPress()) // bonus screen -> level 1

	runners[1].goalReached = true
	a.Tick(input.PlayerInput{})

	if a.Orchestrator().Stage() != session.StageEpisodeEnd {
		t.Fatalf("Stage() = %v, want StageEpisodeEnd", a.Orchestrator().Stage())
	}
}

func TestPlayerDiedRestartsRunnerStage(t *testing.T) {
	runners := map[int]*fakeRunner{}
	a := newTestApp(t, runners)

	runners[0].playerDied = true
	a.Tick(input.PlayerInput{})

	if a.Orchestrator().Stage() != session.StageRunner {
		t.Fatalf("Stage() = %v, want StageRunner after death", a.Orchestrator().Stage())
	}
	if a.Runner() == nil {
		t.Error("expected a fresh runner after the death restart")
	}
}

func TestRequestQuitEventuallyReachesHighScoreStage(t *testing.T) {
	runners := map[int]*fakeRunner{}
	a := newTestApp(t, runners)

	a.RequestQuit()
	for i := 0; i < 64; i++ {
		if a.Orchestrator().Stage() == session.StageHighScoreEntry || a.Orchestrator().Stage() == session.StageHighScoreList {
			break
		}
		a.Tick(input.PlayerInput{})
	}

	stage := a.Orchestrator().Stage()
	if stage != session.StageHighScoreEntry && stage != session.StageHighScoreList {
		t.Fatalf("Stage() = %v after quit fade, want high-score entry or list", stage)
	}
}

func TestHighScoreListFinishingMarksSessionDone(t *testing.T) {
	runners := map[int]*fakeRunner{}
	a := newTestApp(t, runners)
	doneCalled := false
	a.OnSessionDone = func() { doneCalled = true }

	a.RequestQuit()
	for i := 0; i < 64 && !a.Done(); i++ {
		a.Tick(anyPress())
	}

	if !a.Done() {
		t.Fatal("expected the session to be marked done")
	}
	if !doneCalled {
		t.Error("expected OnSessionDone to fire")
	}
}

func TestLevelFactoryErrorIsFatalAndStopsTicking(t *testing.T) {
	wantErr := errors.New("missing level data")
	factory := func(levelIndex int, checkpoint session.Checkpoint, carry player.Carryover) (Runner, error) {
		return nil, wantErr
	}
	var newsTable [256]int
	a := New(session.GameSessionID{}, 1, factory, func(session.Stage) script.Script { return script.Script{} }, newsTable)

	if a.Err() == nil {
		t.Fatal("expected a fatal error from the failing level factory")
	}
	if a.Runner() != nil {
		t.Error("expected no runner after a failed load")
	}

	a.Tick(input.PlayerInput{}) // must be a no-op, not panic
}

func TestEventLogRecordsTicksAndTransitions(t *testing.T) {
	runners := map[int]*fakeRunner{}
	a := newTestApp(t, runners)

	log := eventlog.NewLog()
	if err := log.Start(""); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer log.Stop()
	a.EnableEventLog(log)

	runners[0].goalReached = true
	a.Tick(input.PlayerInput{}) // runner -> bonus screen
	a.Tick(anyPress())          // bonus screen finishes -> level 1 runner

	var sawTick, sawLevelTransition, sawScriptTransition bool
	for _, ev := range log.Snapshot() {
		switch ev.Type {
		case eventlog.TypeTick:
			sawTick = true
		case eventlog.TypeLevelTransition:
			sawLevelTransition = true
		case eventlog.TypeScriptTransition:
			sawScriptTransition = true
		}
	}
	if !sawTick {
		t.Error("expected at least one tick event")
	}
	if !sawLevelTransition {
		t.Error("expected a level transition event for the level 0 -> level 1 switch")
	}
	if !sawScriptTransition {
		t.Error("expected a script transition event entering the bonus screen")
	}
}

func TestTickDemoDrivesRunnerAndSwitchesLevelOnMarker(t *testing.T) {
	runners := map[int]*fakeRunner{}
	a := newTestApp(t, runners)

	// 0x88 = bitRight (0x08) | bitNextLevel (0x80): one frame that also
	// requests an immediate switch to the demo's next level.
	a.EnableDemo(demo.NewPlayer([]byte{0x88}))

	finished := a.TickDemo()
	if finished {
		t.Fatal("expected the demo stream to still have frames")
	}
	if runners[0].updates != 1 {
		t.Errorf("updates = %d, want 1", runners[0].updates)
	}
	if len(runners) != 2 {
		t.Fatalf("expected level-switch to build a second runner, got %d runners", len(runners))
	}
}

func TestTickLiveRoutesQuickSaveComboToMenuLayer(t *testing.T) {
	runners := map[int]*fakeRunner{}
	a := newTestApp(t, runners)

	saved, loaded := 0, 0
	a.OnQuickSave = func() { saved++ }
	a.OnQuickLoad = func() { loaded++ }

	ag := input.NewAggregator(input.DefaultBindings())
	ag.HandleEvent(input.Event{Type: input.EventPadButtonDown, Button: input.PadBack})
	ag.HandleEvent(input.Event{Type: input.EventPadButtonDown, Button: input.PadFire})

	a.TickLive(ag)
	if saved != 1 || loaded != 0 {
		t.Fatalf("saved=%d loaded=%d, want exactly one quicksave", saved, loaded)
	}
	if runners[0].updates != 1 {
		t.Errorf("runner updates = %d, want the tick to still run", runners[0].updates)
	}
}

// realLevelFactory builds levels through the real world/tilemap types,
// mirroring cmd/game's synthetic-level factory, so carryover is tested
// end to end rather than through fakes.
func realLevelFactory(cfg config.AppConfig) LevelFactory {
	return func(levelIndex int, checkpoint session.Checkpoint, carry player.Carryover) (Runner, error) {
		attrs := make([]tilemap.Attribute, 2)
		attrs[1] = tilemap.SolidTop
		tiles := tilemap.New(64, 32, cfg.Video.TileSizePx, attrs)
		for tx := 0; tx < 64; tx++ {
			tiles.SetTile(1, tx, 21)
		}
		r := world.New(cfg, tiles, 16, float64(21*cfg.Video.TileSizePx)-16, nil)
		r.Player.ApplyCarryover(carry)
		return r, nil
	}
}

func TestDemoLevelSwitchPreservesWeaponAndScore(t *testing.T) {
	cfg := config.Load()
	a := New(
		session.GameSessionID{Episode: 0, Level: 0, Difficulty: session.DifficultyHard},
		len(demo.LevelSequence),
		realLevelFactory(cfg),
		func(session.Stage) script.Script { return waitScript("screen") },
		[256]int{},
	)

	first, ok := a.Runner().(*world.Runner)
	if !ok {
		t.Fatalf("Runner() = %T, want *world.Runner", a.Runner())
	}
	first.Player.EquipWeapon(player.WeaponLaser)
	first.Player.Score = 7000
	first.Player.Health = 4
	first.Player.Keys = 2
	first.Player.Letters = 3

	// One demo byte with only the next-level bit set.
	a.EnableDemo(demo.NewPlayer([]byte{0x80, 0xFF}))
	if finished := a.TickDemo(); finished {
		t.Fatal("stream should not be exhausted after the first byte")
	}

	next, ok := a.Runner().(*world.Runner)
	if !ok || next == first {
		t.Fatal("expected a fresh runner after the level switch")
	}
	p := next.Player
	if p.Weapon != player.WeaponLaser {
		t.Errorf("Weapon = %v, want preserved WeaponLaser", p.Weapon)
	}
	if p.Ammo != cfg.Player.MaxAmmo {
		t.Errorf("Ammo = %d, want preserved %d", p.Ammo, cfg.Player.MaxAmmo)
	}
	if p.Score != 7000 {
		t.Errorf("Score = %d, want preserved 7000", p.Score)
	}
	if p.Health != cfg.Player.MaxHealth {
		t.Errorf("Health = %d, want reset to %d", p.Health, cfg.Player.MaxHealth)
	}
	if p.Keys != 0 || p.Letters != 0 {
		t.Errorf("Keys/Letters = %d/%d, want per-level state reset", p.Keys, p.Letters)
	}
}
