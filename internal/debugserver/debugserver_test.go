package debugserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"duke2sim/internal/session"
	"duke2sim/internal/worldrender"
)

type fakeSession struct {
	stage      session.Stage
	score      int
	levelIndex int
	fading     bool
	fadeAlpha  float64
	highScores []session.HighScoreEntry
}

func (f *fakeSession) Stage() session.Stage                    { return f.stage }
func (f *fakeSession) Score() int                              { return f.score }
func (f *fakeSession) LevelIndex() int                         { return f.levelIndex }
func (f *fakeSession) IsFading() bool                           { return f.fading }
func (f *fakeSession) FadeAlpha() float64                       { return f.fadeAlpha }
func (f *fakeSession) HighScores() []session.HighScoreEntry     { return f.highScores }

type fakeSnapshots struct {
	snap worldrender.Snapshot
}

func (f *fakeSnapshots) Latest() worldrender.Snapshot { return f.snap }

func TestHandleSessionReportsCurrentStage(t *testing.T) {
	s := NewServer(Config{
		Session:   &fakeSession{stage: session.StageBonusScreen, score: 42000, levelIndex: 3},
		Snapshots: &fakeSnapshots{},
	})
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/session")
	if err != nil {
		t.Fatalf("GET /api/session: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if int(body["stage"].(float64)) != int(session.StageBonusScreen) {
		t.Errorf("stage = %v, want %d", body["stage"], session.StageBonusScreen)
	}
	if int(body["score"].(float64)) != 42000 {
		t.Errorf("score = %v, want 42000", body["score"])
	}
}

func TestHandleSnapshotReportsSpriteCount(t *testing.T) {
	snap := worldrender.Snapshot{
		Sprites: make([]worldrender.SpriteDrawCmd, 5),
	}
	s := NewServer(Config{
		Session:   &fakeSession{},
		Snapshots: &fakeSnapshots{snap: snap},
	})
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/snapshot")
	if err != nil {
		t.Fatalf("GET /api/snapshot: %v", err)
	}
	defer resp.Body.Close()

	var body map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&body)
	if int(body["spriteCount"].(float64)) != 5 {
		t.Errorf("spriteCount = %v, want 5", body["spriteCount"])
	}
}

func TestHandleHighScoresReturnsList(t *testing.T) {
	s := NewServer(Config{
		Session: &fakeSession{highScores: []session.HighScoreEntry{
			{Name: "AAA", Score: 999000},
		}},
		Snapshots: &fakeSnapshots{},
	})
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/highscores")
	if err != nil {
		t.Fatalf("GET /api/highscores: %v", err)
	}
	defer resp.Body.Close()

	var entries []session.HighScoreEntry
	json.NewDecoder(resp.Body).Decode(&entries)
	if len(entries) != 1 || entries[0].Name != "AAA" {
		t.Errorf("entries = %+v, want one entry named AAA", entries)
	}
}

func TestWebSocketReceivesBroadcastState(t *testing.T) {
	s := NewServer(Config{
		Session:   &fakeSession{stage: session.StageRunner, score: 100},
		Snapshots: &fakeSnapshots{},
	})
	s.Start(10 * time.Millisecond)
	defer s.Stop()

	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(msg, &payload); err != nil {
		t.Fatalf("unmarshal broadcast: %v", err)
	}
	if payload["event"] != "session:state" {
		t.Errorf("event = %v, want session:state", payload["event"])
	}
}

func TestNewServerStartsWithNoSpectators(t *testing.T) {
	s := NewServer(Config{Session: &fakeSession{}, Snapshots: &fakeSnapshots{}})
	if s.hub.ClientCount() != 0 {
		t.Fatalf("expected zero clients before any connection")
	}
}
