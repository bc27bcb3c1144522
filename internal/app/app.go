// Package app is the per-frame orchestration the original engine ran
// as its single cooperative loop: pump input into whichever mode
// variant is active, advance the session's stage machine when that
// mode reports it's finished, and stitch a fresh world runner or
// script sequencer into place at every stage boundary. It owns no
// rendering itself — Runner() and Sequencer() hand the caller whatever
// the active mode needs drawn, at the caller's own render cadence.
package app

import (
	"duke2sim/internal/demo"
	"duke2sim/internal/eventlog"
	"duke2sim/internal/gamelog"
	"duke2sim/internal/hud"
	"duke2sim/internal/input"
	"duke2sim/internal/player"
	"duke2sim/internal/script"
	"duke2sim/internal/session"
	"duke2sim/internal/worldrender"
)

// Runner is whatever a playable level needs to expose for one tick of
// orchestration: advance, report level-finished/player-died, and yield
// its render inputs. *world.Runner satisfies this directly.
type Runner interface {
	Update(in input.PlayerInput)
	GoalReached() bool
	PlayerDied() bool
	AchievedBonuses() map[session.Bonus]bool
	PlayerCarryover() player.Carryover
	Snapshot() worldrender.Snapshot
	HUDState(level, score int) hud.State
}

// LevelFactory builds a fresh Runner for levelIndex, seeding the
// player from checkpoint (the zero Checkpoint means "start of level")
// and from carry, the previous level's persistent player state (score,
// weapon, ammo — a zero Carryover means a fresh session). A non-nil
// error is treated as the fatal "asset missing" error kind: the app
// stops ticking and surfaces the error via Err.
type LevelFactory func(levelIndex int, checkpoint session.Checkpoint, carry player.Carryover) (Runner, error)

// ScriptProvider resolves the script to run for a non-gameplay stage
// (bonus screen, episode-end cutscene, high-score entry/list).
type ScriptProvider func(stage session.Stage) script.Script

// App drives one play session: the stage machine plus whichever mode
// variant (playable world or script-driven screen) is current.
type App struct {
	orch      *session.Orchestrator
	newLevel  LevelFactory
	scriptFor ScriptProvider

	runner Runner
	seq    *script.Sequencer

	// carry is the persistent player state captured from the last live
	// runner, seeded into the next one so weapon/ammo/score survive
	// level transitions and death restarts.
	carry player.Carryover

	demoPlayer *demo.Player

	prevStage   session.Stage
	prevLevel   int
	tickNum     uint64
	fatal       error
	sessionDone bool

	events *eventlog.Log

	// NameProvider supplies the typed high-score name when the entry
	// screen's script finishes; the text-entry widget itself is the
	// in-game menu UI the spec places out of scope. A nil provider
	// submits an empty name.
	NameProvider func() string

	// OnSessionDone fires once, the tick the high-score list screen
	// finishes, so the caller can return to the title/demo loop.
	OnSessionDone func()

	// OnQuickSave and OnQuickLoad receive the aggregator's
	// Back+Fire/Back+Jump combos. They belong to the menu layer, not
	// the simulation — TickLive never lets the combo's button press
	// reach the world.
	OnQuickSave func()
	OnQuickLoad func()
}

// New constructs an App starting a fresh session at level 0 of id,
// using newLevel to build every playable level's Runner and scriptFor
// to resolve every non-gameplay screen's script.
func New(id session.GameSessionID, levelsInEpisode int, newLevel LevelFactory, scriptFor ScriptProvider, newsTable [256]int) *App {
	a := &App{
		newLevel:  newLevel,
		scriptFor: scriptFor,
		prevStage: -1,
		prevLevel: -1,
	}
	a.orch = session.New(id, levelsInEpisode, session.Hooks{})
	a.seq = script.NewSequencer(newsTable, script.Hooks{})
	a.enterStage(a.orch.Stage())
	a.prevStage = a.orch.Stage()
	return a
}

// EnableDemo switches the app to demo-driven input: subsequent ticks
// must go through TickDemo instead of Tick.
func (a *App) EnableDemo(player *demo.Player) {
	a.demoPlayer = player
}

// EnableEventLog attaches a running event log. Every tick, level
// transition, and screen-script transition is recorded against it for
// replay/audit; a nil or never-called App never touches the log.
func (a *App) EnableEventLog(log *eventlog.Log) {
	a.events = log
}

// Orchestrator exposes the underlying stage machine for callers that
// need Score, Stage, or FadeAlpha.
func (a *App) Orchestrator() *session.Orchestrator { return a.orch }

// Runner returns the active level's Runner, or nil outside the runner
// stage.
func (a *App) Runner() Runner { return a.runner }

// Sequencer returns the script sequencer driving the current
// non-gameplay screen. It always exists (constructed once in New) but
// only has a live script loaded while the stage is non-runner.
func (a *App) Sequencer() *script.Sequencer { return a.seq }

// Err returns the fatal initialization error, if level/script
// construction ever failed. Once set, Tick and TickDemo are no-ops.
func (a *App) Err() error { return a.fatal }

// Done reports whether the session has run to completion (the
// high-score list screen finished).
func (a *App) Done() bool { return a.sessionDone }

// RequestQuit begins the quit sequence: a blocking fade-out followed
// by high-score entry or the high-score list, matching the original's
// "checked once per frame" quit flag.
func (a *App) RequestQuit() {
	if a.fatal != nil || a.sessionDone {
		return
	}
	a.orch.PlayerQuit()
}

// CancelActiveScript forwards an OS-level Escape/cancel event straight
// to the running script sequencer, outside the per-tick PlayerInput
// sample. The live input aggregator can route Escape through Tick's
// input.PlayerInput.Cancel instead; this is for callers (an OS event
// handler reacting immediately rather than waiting for the next logic
// tick) that observe the key press before input is even sampled. A
// no-op outside a non-runner stage (the sequencer ignores it once
// already finished).
func (a *App) CancelActiveScript() {
	if a.fatal != nil || a.sessionDone {
		return
	}
	a.seq.Cancel()
}

// Tick advances the app by one logic tick using the given input.
// TickLive and TickDemo both end in a call to it.
func (a *App) Tick(in input.PlayerInput) {
	if a.fatal != nil || a.sessionDone {
		return
	}
	a.tickNum++

	a.orch.UpdateFade()

	stage := a.orch.Stage()
	if stage != a.prevStage {
		a.enterStage(stage)
		a.prevStage = stage
	}

	if stage == session.StageRunner {
		a.tickRunner(in)
	} else {
		a.tickScript(stage, in)
	}

	a.settleStage()
	a.recordTick(stage)
}

func (a *App) recordTick(stage session.Stage) {
	if a.events == nil {
		return
	}
	active := 0
	if stage == session.StageRunner && a.runner != nil {
		active = len(a.runner.Snapshot().Sprites)
	}
	a.events.EmitSimple(eventlog.TypeTick, a.tickNum, 0, eventlog.TickPayload{ActiveCount: active})
}

// settleStage builds the runner or loads the next screen's script as
// soon as a stage transition lands, so the world is ready before the
// caller's next Tick rather than one tick late. Bounded since a chain
// of instantly-resolving screens must not spin forever.
func (a *App) settleStage() {
	for i := 0; i < 4; i++ {
		stage := a.orch.Stage()
		if stage == a.prevStage {
			return
		}
		a.enterStage(stage)
		a.prevStage = stage
	}
}

// TickLive samples the live input aggregator for this tick, routes any
// quicksave/quickload combo to the menu-layer callbacks, keeps the
// aggregator's analog deadzone in step with whether the player is
// flying a ship, and advances one tick. cmd/game does not call it; its
// built-in session runs on TickDemo.
func (a *App) TickLive(ag *input.Aggregator) {
	if fl, ok := a.runner.(interface{ PlayerFlying() bool }); ok {
		ag.SetFlying(fl.PlayerFlying())
	}

	in, cmd := ag.Sample()
	switch cmd {
	case input.CommandQuickSave:
		if a.OnQuickSave != nil {
			a.OnQuickSave()
		}
	case input.CommandQuickLoad:
		if a.OnQuickLoad != nil {
			a.OnQuickLoad()
		}
	}
	a.Tick(in)
}

// TickDemo pulls the next frame from the enabled demo player and
// drives exactly one tick with it, bypassing the tick clock's
// real-time accumulator entirely (one input byte, one logic tick).
// finished reports the demo stream has been fully consumed.
func (a *App) TickDemo() (finished bool) {
	if a.demoPlayer == nil {
		return true
	}
	frame, done := a.demoPlayer.Next()
	if done {
		return true
	}

	a.Tick(frame.Input)
	if frame.SwitchNextLevel {
		a.loadLevel(a.demoPlayer.CurrentLevel(), session.Checkpoint{})
	}
	return false
}

func (a *App) tickRunner(in input.PlayerInput) {
	if a.runner == nil {
		return
	}
	a.runner.Update(in)

	if a.runner.GoalReached() {
		a.orch.LevelFinished(a.runner.AchievedBonuses())
		return
	}
	if a.runner.PlayerDied() {
		a.orch.PlayerDied()
		// PlayerDied restarts in place: the stage was already
		// StageRunner and stays StageRunner, so the generic
		// stage-change detection in settleStage never fires for this
		// transition. Reload explicitly from whatever checkpoint (or
		// none) the orchestrator now holds.
		a.loadLevel(a.orch.LevelIndex(), a.orch.Checkpoint())
	}
}

func (a *App) tickScript(stage session.Stage, in input.PlayerInput) {
	a.seq.Update(in)
	if !a.seq.HasFinishedExecution() {
		return
	}
	a.onScriptFinished(stage)
}

// onScriptFinished routes a finished non-gameplay screen to the next
// stage transition. Every branch only reads data already supplied by
// the caller or the stage itself, never the orchestrator's score/stage
// getters — those take an RLock the caller's in-progress Lock (held
// while a hook runs) would deadlock against, so this app deliberately
// never registers Orchestrator hooks and instead polls Stage() once
// per tick from the outside (see enterStage).
func (a *App) onScriptFinished(stage session.Stage) {
	switch stage {
	case session.StageBonusScreen:
		a.orch.BonusScreenFinished()
	case session.StageEpisodeEnd:
		a.orch.PlayerQuit()
	case session.StageHighScoreEntry:
		name := ""
		if a.NameProvider != nil {
			name = a.NameProvider()
		}
		a.orch.SubmitHighScore(name)
	case session.StageHighScoreList:
		a.sessionDone = true
		if a.OnSessionDone != nil {
			a.OnSessionDone()
		}
	}
}

// enterStage runs once at stage construction and again every time
// Tick observes a stage change: it builds the Runner for the runner
// stage or loads the screen script for every other stage.
func (a *App) enterStage(stage session.Stage) {
	if stage == session.StageRunner {
		a.loadLevel(a.orch.LevelIndex(), a.orch.Checkpoint())
		return
	}
	if a.runner != nil {
		a.carry = a.runner.PlayerCarryover()
	}
	a.runner = nil
	if a.events != nil {
		a.events.EmitSimple(eventlog.TypeScriptTransition, a.tickNum, 0, eventlog.ScriptTransitionPayload{
			FromState: stageName(a.prevStage),
			ToState:   stageName(stage),
		})
	}
	if a.scriptFor == nil {
		return
	}
	a.seq.ExecuteScript(a.scriptFor(stage))
}

func stageName(stage session.Stage) string {
	switch stage {
	case session.StageRunner:
		return "runner"
	case session.StageBonusScreen:
		return "bonus_screen"
	case session.StageEpisodeEnd:
		return "episode_end"
	case session.StageHighScoreEntry:
		return "high_score_entry"
	case session.StageHighScoreList:
		return "high_score_list"
	default:
		return "unknown"
	}
}

func (a *App) loadLevel(levelIndex int, checkpoint session.Checkpoint) {
	if a.newLevel == nil {
		return
	}
	if a.runner != nil {
		a.carry = a.runner.PlayerCarryover()
	}
	r, err := a.newLevel(levelIndex, checkpoint, a.carry)
	if err != nil {
		a.fatal = gamelog.WrapInit(err, "level runner")
		gamelog.Error("app: failed to load level %d: %v", levelIndex, a.fatal)
		return
	}
	a.runner = r
	if a.events != nil && levelIndex != a.prevLevel {
		a.events.EmitSimple(eventlog.TypeLevelTransition, a.tickNum, 0, eventlog.LevelTransitionPayload{
			FromLevel: a.prevLevel,
			ToLevel:   levelIndex,
		})
	}
	a.prevLevel = levelIndex
}
