package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"chessai/internal/client/api"
	"chessai/internal/client/controller"
	"chessai/internal/client/display"
	"chessai/internal/client/prefs"
	"chessai/internal/client/session"
	"chessai/internal/core"
	"chessai/internal/rules"

	"go.uber.org/zap/zaptest"
)

// scriptTransport answers each move with the next scripted AI reply.
type scriptTransport struct {
	calls    []string
	aiMoves  []string
	colorAI  string
	failNext bool
}

func (t *scriptTransport) SubmitMove(_ context.Context, code string) (*core.GameResponse, error) {
	t.calls = append(t.calls, "move "+code)
	if t.failNext {
		t.failNext = false
		return nil, &api.Error{Status: http.StatusBadRequest, Message: "Illegal move"}
	}
	resp := &core.GameResponse{Status: core.StatusSuccess}
	if len(t.aiMoves) > 0 {
		resp.AIMove = t.aiMoves[0]
		t.aiMoves = t.aiMoves[1:]
	}
	return resp, nil
}

func (t *scriptTransport) SetColor(_ context.Context, c core.Color) (*core.GameResponse, error) {
	t.calls = append(t.calls, "color "+c.String())
	return &core.GameResponse{Status: core.StatusColorSet, AIMove: t.colorAI}, nil
}

func (t *scriptTransport) SetDifficulty(_ context.Context, d core.Difficulty) (*core.GameResponse, error) {
	t.calls = append(t.calls, "difficulty "+string(d))
	return &core.GameResponse{Status: core.StatusDifficultySet}, nil
}

func (t *scriptTransport) NewGame(context.Context) (*core.GameResponse, error) {
	t.calls = append(t.calls, "reset")
	return &core.GameResponse{Status: core.StatusBoardReset}, nil
}

func (t *scriptTransport) Takeback(context.Context) (*core.GameResponse, error) {
	t.calls = append(t.calls, "takeback")
	return &core.GameResponse{Status: core.StatusTakenBack}, nil
}

// syncDispatcher completes every call before Dispatch returns.
type syncDispatcher struct{}

func (syncDispatcher) Dispatch(call controller.Call, done func(*core.GameResponse, error)) {
	done(call(context.Background()))
}

type testSession struct {
	url    string
	client *api.Client
	ctl    *controller.Controller
	mgr    *session.Manager
	view   *display.Terminal
}

func (s *testSession) APIBaseURL() string                 { return s.url }
func (s *testSession) SetAPIBaseURL(u string)             { s.url = u }
func (s *testSession) Client() *api.Client                { return s.client }
func (s *testSession) Controller() *controller.Controller { return s.ctl }
func (s *testSession) Manager() *session.Manager          { return s.mgr }
func (s *testSession) View() *display.Terminal            { return s.view }
func (s *testSession) Stats() (*prefs.Stats, error)       { return prefs.NewStats(), nil }
func (s *testSession) IsVerbose() bool                    { return false }
func (s *testSession) Do(fn func()) bool                  { fn(); return true }

func newTestRegistry(t *testing.T, tr *scriptTransport, baseURL string) (*Registry, *testSession, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	logger := zaptest.NewLogger(t)
	view := display.NewTerminal(&out, display.ThemeOff)
	ctl := controller.New(core.DefaultConfig(), controller.Deps{
		Rules:      rules.New(),
		Transport:  tr,
		Dispatcher: syncDispatcher{},
		Board:      view,
		Status:     view,
		Logger:     logger,
	})
	mgr := session.NewManager(ctl, tr, nil, view, logger)
	ctl.ResetGame()

	s := &testSession{
		url:    baseURL,
		client: api.New(baseURL, logger),
		ctl:    ctl,
		mgr:    mgr,
		view:   view,
	}
	return NewRegistry(s, &out), s, &out
}

func TestBareMoveCodePlaysMove(t *testing.T) {
	tr := &scriptTransport{aiMoves: []string{"e7e5"}}
	r, s, _ := newTestRegistry(t, tr, "http://localhost:0")

	if err := r.Execute("e2e4"); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	hist := s.ctl.History()
	if len(hist) != 2 {
		t.Fatalf("got %d history entries, want 2", len(hist))
	}
	if hist[0].SAN != "e4" || hist[1].SAN != "e5" {
		t.Errorf("history: got %q %q", hist[0].SAN, hist[1].SAN)
	}
	if got := tr.calls; len(got) != 1 || got[0] != "move e2e4" {
		t.Errorf("transport calls: %v", got)
	}
}

func TestBareSquaresClickToMove(t *testing.T) {
	tr := &scriptTransport{aiMoves: []string{"b8c6"}}
	r, s, out := newTestRegistry(t, tr, "http://localhost:0")

	r.Execute("g1")
	if sq, ok := s.ctl.Selection().Selected(); !ok || sq != "g1" {
		t.Fatalf("after click g1: selected %q %v", sq, ok)
	}
	if !strings.Contains(out.String(), "N*") {
		t.Errorf("expected origin marker on g1:\n%s", out.String())
	}

	r.Execute("f3")
	if _, ok := s.ctl.Selection().Selected(); ok {
		t.Error("selection should clear after the move")
	}
	if s.ctl.MoveCount() != 2 {
		t.Errorf("move count: got %d, want 2", s.ctl.MoveCount())
	}
}

func TestMoveRollbackOnServerError(t *testing.T) {
	tr := &scriptTransport{failNext: true}
	r, s, out := newTestRegistry(t, tr, "http://localhost:0")

	r.Execute("move d2d4")
	if s.ctl.MoveCount() != 0 {
		t.Errorf("move count after rollback: got %d, want 0", s.ctl.MoveCount())
	}
	if s.ctl.FEN() != rules.StartingFEN {
		t.Errorf("position not restored: %s", s.ctl.FEN())
	}
	if !strings.Contains(out.String(), "An error occurred: Illegal move") {
		t.Errorf("missing rollback alert:\n%s", out.String())
	}
}

func TestDragIllegalSnapsBack(t *testing.T) {
	tr := &scriptTransport{}
	r, s, out := newTestRegistry(t, tr, "http://localhost:0")

	r.Execute("drag e2 e5")
	if !strings.Contains(out.String(), "Snapback: e2-e5") {
		t.Errorf("expected snapback message:\n%s", out.String())
	}
	if s.ctl.MoveCount() != 0 || len(tr.calls) != 0 {
		t.Errorf("illegal drag reached the server: %v", tr.calls)
	}
}

func TestColorCommandRestartsAsBlack(t *testing.T) {
	tr := &scriptTransport{colorAI: "d2d4"}
	r, s, _ := newTestRegistry(t, tr, "http://localhost:0")

	r.Execute("color black")
	if s.ctl.PlayerColor() != core.ColorBlack {
		t.Fatalf("player color: got %s", s.ctl.PlayerColor())
	}
	if s.ctl.Orientation() != core.ColorBlack {
		t.Errorf("orientation: got %s", s.ctl.Orientation())
	}
	hist := s.ctl.History()
	if len(hist) != 1 || hist[0].SAN != "d4" {
		t.Errorf("history after color switch: %+v", hist)
	}
}

func TestUnknownCommand(t *testing.T) {
	r, _, out := newTestRegistry(t, &scriptTransport{}, "http://localhost:0")
	if err := r.Execute("dance"); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out.String(), "Unknown command: dance") {
		t.Errorf("got %q", out.String())
	}
}

func TestExitReturnsErrExit(t *testing.T) {
	r, _, _ := newTestRegistry(t, &scriptTransport{}, "http://localhost:0")
	if err := r.Execute("exit"); !errors.Is(err, ErrExit) {
		t.Errorf("got %v, want ErrExit", err)
	}
	if err := r.Execute("x"); !errors.Is(err, ErrExit) {
		t.Errorf("short form: got %v, want ErrExit", err)
	}
}

func TestHealthCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/health" {
			http.NotFound(w, req)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(core.HealthResponse{Status: "healthy", Time: 1700000000, Storage: "ok"})
	}))
	defer srv.Close()

	r, _, out := newTestRegistry(t, &scriptTransport{}, srv.URL)
	r.Execute("health")
	for _, want := range []string{"Server Health:", "healthy", "Storage: ok"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("missing %q in:\n%s", want, out.String())
		}
	}
}

func TestURLCommandNormalises(t *testing.T) {
	r, s, _ := newTestRegistry(t, &scriptTransport{}, "http://localhost:0")
	r.Execute("url example.com:9000")
	if s.url != "http://example.com:9000" {
		t.Errorf("session url: got %q", s.url)
	}
	if s.client.BaseURL != "http://example.com:9000" {
		t.Errorf("client url: got %q", s.client.BaseURL)
	}
}
