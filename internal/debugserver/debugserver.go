// Package debugserver exposes a read-only HTTP+WebSocket spectator feed
// of the running simulation: current session stage/score, the latest
// render snapshot, and a periodic broadcast of the session state over a
// WebSocket hub. It carries none of the player-mutating surface of a network
// play server — there's no join, no input submission, nothing here
// can affect the simulation it's reporting on.
package debugserver

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"

	"duke2sim/internal/gamelog"
	"duke2sim/internal/session"
	"duke2sim/internal/worldrender"
)

// SessionView is the read-only subset of session.Orchestrator state
// this package reports.
type SessionView interface {
	Stage() session.Stage
	Score() int
	LevelIndex() int
	IsFading() bool
	FadeAlpha() float64
	HighScores() []session.HighScoreEntry
}

// SnapshotSource supplies the latest render snapshot to report. Render
// snapshots are produced on the simulation's own cadence; this package
// only ever reads the latest one, never blocks production of the next.
type SnapshotSource interface {
	Latest() worldrender.Snapshot
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// A read-only local dev/spectator feed; any origin may watch.
		return true
	},
}

// Hub fans out periodic state broadcasts to every connected spectator.
type Hub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]struct{}

	broadcast chan []byte
	register  chan *websocket.Conn
	unregister chan *websocket.Conn
}

// NewHub creates an unstarted broadcast hub. Call Run to start it.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]struct{}),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
	}
}

// Run services the hub's channels until stop is closed.
func (h *Hub) Run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case conn := <-h.register:
			h.mu.Lock()
			h.clients[conn] = struct{}{}
			h.mu.Unlock()
			gamelog.Info("debugserver: spectator connected (%d total)", h.ClientCount())
		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mu.Unlock()
			gamelog.Info("debugserver: spectator disconnected (%d remaining)", h.ClientCount())
		case msg := <-h.broadcast:
			h.mu.RLock()
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					conn.Close()
					h.mu.RUnlock()
					h.mu.Lock()
					delete(h.clients, conn)
					h.mu.Unlock()
					h.mu.RLock()
				}
			}
			h.mu.RUnlock()
		}
	}
}

// ClientCount returns the number of connected spectators.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues a JSON-tagged event for every connected spectator,
// dropping it under backpressure rather than blocking.
func (h *Hub) Broadcast(event string, data interface{}) {
	payload, err := json.Marshal(map[string]interface{}{"event": event, "data": data})
	if err != nil {
		return
	}
	select {
	case h.broadcast <- payload:
	default:
	}
}

// Server serves the spectator HTTP and WebSocket surface.
type Server struct {
	session   SessionView
	snapshots SnapshotSource
	hub       *Hub
	router    *chi.Mux

	stop chan struct{}
}

// Config holds the dependencies a Server reports on.
type Config struct {
	Session   SessionView
	Snapshots SnapshotSource

	// CORSOrigins defaults to allow-all when nil, matching a local
	// spectator tool rather than a production multi-tenant service.
	CORSOrigins []string

	// BroadcastInterval is not read by NewServer; the broadcast cadence
	// is the interval passed to Start (100ms when that is <= 0).
	BroadcastInterval time.Duration
}

// NewServer builds a Server. Router() is safe to mount in tests
// without calling Start(); no goroutine runs until Start is called.
func NewServer(cfg Config) *Server {
	s := &Server{
		session:   cfg.Session,
		snapshots: cfg.Snapshots,
		hub:       NewHub(),
		stop:      make(chan struct{}),
	}

	origins := cfg.CORSOrigins
	if origins == nil {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/session", s.handleSession)
		r.Get("/snapshot", s.handleSnapshot)
		r.Get("/highscores", s.handleHighScores)
	})
	r.Get("/ws", s.handleWS)

	s.router = r
	return s
}

// Router returns the HTTP handler, usable directly with httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start begins the periodic broadcast loop. Call Stop to release it.
func (s *Server) Start(interval time.Duration) {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	go s.hub.Run(s.stop)
	go s.broadcastLoop(interval)
}

// Stop ends the broadcast loop and hub processing.
func (s *Server) Stop() {
	close(s.stop)
}

func (s *Server) broadcastLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if s.hub.ClientCount() == 0 {
				continue
			}
			s.hub.Broadcast("session:state", s.sessionPayload())
		}
	}
}

func (s *Server) sessionPayload() map[string]interface{} {
	return map[string]interface{}{
		"stage":      int(s.session.Stage()),
		"score":      s.session.Score(),
		"levelIndex": s.session.LevelIndex(),
		"isFading":   s.session.IsFading(),
		"fadeAlpha":  s.session.FadeAlpha(),
	}
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.sessionPayload())
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshots.Latest()
	writeJSON(w, map[string]interface{}{
		"camera":        snap.CurrCamera,
		"spriteCount":   len(snap.Sprites),
		"tileDebris":    len(snap.TileDebris),
		"waterAreas":    len(snap.WaterAreas),
		"screenShiftPx": snap.ScreenShiftPx,
		"flashing":      snap.FlashColor != nil,
	})
}

func (s *Server) handleHighScores(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.session.HighScores())
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		gamelog.Warn("debugserver: websocket upgrade failed: %v", err)
		return
	}
	s.hub.register <- conn

	go func() {
		defer func() { s.hub.unregister <- conn }()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
			// Spectator connections are read-only; any inbound
			// message is discarded after keeping the read pump alive.
		}
	}()
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
