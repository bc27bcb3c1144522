// Command game is the process entrypoint: it wires config, a
// time.Ticker at the logic step, the per-frame app orchestrator, the event log, and the
// read-only spectator server together and runs a session to
// completion. Real level-asset decoding is out of scope for this
// repository, so every level is built from one small synthetic tilemap
// rather than loaded from original data files, and the session is
// always driven by the deterministic built-in demo stream rather than
// a live input device — exactly the path spec.md's demo-playback
// requirement exists to exercise.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"duke2sim/internal/actor"
	"duke2sim/internal/app"
	"duke2sim/internal/config"
	"duke2sim/internal/debugserver"
	"duke2sim/internal/demo"
	"duke2sim/internal/eventlog"
	"duke2sim/internal/gamelog"
	"duke2sim/internal/player"
	"duke2sim/internal/script"
	"duke2sim/internal/session"
	"duke2sim/internal/telemetry"
	"duke2sim/internal/tilemap"
	"duke2sim/internal/world"
	"duke2sim/internal/worldrender"
)

func main() {
	if err := godotenv.Load(); err != nil {
		gamelog.Info("no .env file found, using environment variables only")
	}

	eventLogPath := flag.String("event-log", "", "path to append newline-delimited JSON events (empty disables file output)")
	flag.Parse()

	cfg := config.FromEnv()
	if cfg.Debug {
		gamelog.SetLevel(gamelog.LevelInfo)
	}

	gamelog.Info("duke2sim starting (tick %dHz, catch-up bound %d)", cfg.Timing.GameHz, cfg.Timing.MaxCatchUpTicks)

	events := eventlog.NewLog()
	if err := events.Start(*eventLogPath); err != nil {
		gamelog.Warn("event log disabled: %v", err)
	} else {
		defer events.Stop()
	}

	snapshots := &snapshotHolder{}

	a := app.New(
		session.GameSessionID{Episode: demo.Episode, Level: demo.LevelSequence[0], Difficulty: session.DifficultyHard},
		len(demo.LevelSequence),
		levelFactory(cfg),
		screenScriptFor,
		[256]int{},
	)
	a.EnableEventLog(events)
	a.EnableDemo(demo.NewPlayer(builtinDemoStream))

	debugCfg := cfg.DebugServer
	if debugCfg.Enabled {
		srv := debugserver.NewServer(debugserver.Config{
			Session:     a.Orchestrator(),
			Snapshots:   snapshots,
			CORSOrigins: debugCfg.AllowOrigins,
		})
		srv.Start(0)
		defer srv.Stop()

		mux := http.NewServeMux()
		mux.Handle("/", srv.Router())
		mux.Handle("/metrics", telemetry.Handler())
		httpSrv := &http.Server{Addr: debugCfg.Addr, Handler: mux}
		go func() {
			gamelog.Info("debug server listening on %s", debugCfg.Addr)
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				gamelog.Error("debug server stopped: %v", err)
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer func() {
			cancel()
			httpSrv.Shutdown(ctx)
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(cfg.Timing.GameStep())
	defer ticker.Stop()

	gamelog.Info("running built-in demo session (episode %d, levels %v, difficulty %s)", demo.Episode, demo.LevelSequence, demo.Difficulty)

runLoop:
	for {
		select {
		case <-ctx.Done():
			gamelog.Info("shutting down")
			break runLoop
		case <-ticker.C:
			finished := a.TickDemo()
			if r := a.Runner(); r != nil {
				snap := r.Snapshot()
				snapshots.set(snap)
			}
			if finished || a.Done() {
				gamelog.Info("demo session finished, final score %d", a.Orchestrator().Score())
				break runLoop
			}
			if err := a.Err(); err != nil {
				gamelog.Error("app stopped: %v", err)
				break runLoop
			}
		}
	}
}

// snapshotHolder is the debugserver.SnapshotSource adapter: the tick
// loop writes the latest render snapshot, the HTTP/WS handlers read it
// from a different goroutine.
type snapshotHolder struct {
	mu   sync.RWMutex
	snap worldrender.Snapshot
}

func (h *snapshotHolder) set(s worldrender.Snapshot) {
	h.mu.Lock()
	h.snap = s
	h.mu.Unlock()
}

func (h *snapshotHolder) Latest() worldrender.Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snap
}

// builtinDemoStream is a short placeholder replay: walk right for a
// few ticks, jump once, then request the next level, three times
// over. A real build
// would read this from assets.Provider.DemoStream() (NUKEM2.MNI);
// asset decoding is out of scope here, so the bytes are inlined.
var builtinDemoStream = []byte{
	0x08, 0x08, 0x08, 0x18, 0x08, 0x08, 0x88,
	0x08, 0x08, 0x08, 0x18, 0x08, 0x08, 0x88,
	0x08, 0x08, 0x08, 0x18, 0x08, 0x08, 0x88,
	0xFF,
}

// levelFactory returns an app.LevelFactory that builds every level
// from one synthetic flat-ground tilemap: a goal actor near the right
// edge and a single security camera, enough to exercise the full
// runner/session/script control flow without a real asset pipeline.
func levelFactory(cfg config.AppConfig) app.LevelFactory {
	return func(levelIndex int, checkpoint session.Checkpoint, carry player.Carryover) (app.Runner, error) {
		attrs := make([]tilemap.Attribute, 2)
		attrs[1] = tilemap.SolidTop
		const widthTiles, heightTiles = 64, 32
		tiles := tilemap.New(widthTiles, heightTiles, cfg.Video.TileSizePx, attrs)
		for tx := 0; tx < widthTiles; tx++ {
			tiles.SetTile(1, tx, heightTiles-11)
		}

		startX, startY := 16.0, float64(heightTiles-11)*float64(cfg.Video.TileSizePx)-16
		if checkpoint.Set {
			startX, startY = checkpoint.X, checkpoint.Y
		}

		r := world.New(cfg, tiles, startX, startY, nil)
		r.Player.ApplyCarryover(carry)
		r.SpawnActor(actor.Actor{
			Type: world.ActorTypeGoal,
			X:    float64(widthTiles-4) * float64(cfg.Video.TileSizePx),
			Y:    startY,
			W:    8, H: 8,
		})
		r.SpawnActor(actor.Actor{
			Type: world.ActorTypeSecurityCamera,
			X:    float64(widthTiles/2) * float64(cfg.Video.TileSizePx),
			Y:    startY - 16,
			W:    8, H: 8,
		})
		return r, nil
	}
}

// screenScriptFor resolves the placeholder screen shown between
// levels. A production build would load these from
// assets.Provider.ScriptBundle(assets.ScriptBundleText); that decode
// is out of scope here, so every non-gameplay stage gets a minimal
// wait-for-input script naming the stage it represents.
func screenScriptFor(stage session.Stage) script.Script {
	name := "screen"
	switch stage {
	case session.StageBonusScreen:
		name = "bonus_screen"
	case session.StageEpisodeEnd:
		name = "episode_end"
	case session.StageHighScoreEntry:
		name = "high_score_entry"
	case session.StageHighScoreList:
		name = "high_score_list"
	}
	return script.Script{
		Name:    name,
		Actions: []script.Action{{Type: script.ActionWaitForUserInput}},
	}
}
