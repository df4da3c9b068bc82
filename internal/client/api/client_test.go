package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"chessai/internal/core"
)

func TestClientEndpoints(t *testing.T) {
	type seen struct {
		method, path, contentType string
		body                      map[string]string
	}
	var got seen

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = seen{method: r.Method, path: r.URL.Path, contentType: r.Header.Get("Content-Type")}
		got.body = map[string]string{}
		json.NewDecoder(r.Body).Decode(&got.body)

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/move":
			json.NewEncoder(w).Encode(core.GameResponse{Status: core.StatusSuccess, AIMove: "e7e5", FEN: "x"})
		case "/set_color":
			json.NewEncoder(w).Encode(core.GameResponse{Status: core.StatusColorSet, AIMove: "d2d4"})
		case "/reset":
			w.Write([]byte(`{"status":"Board reset","fen":"x","ai_move":null}`))
		default:
			json.NewEncoder(w).Encode(core.GameResponse{Status: "ok"})
		}
	}))
	defer srv.Close()

	c := New(srv.URL+"/", nil)
	ctx := context.Background()

	resp, err := c.SubmitMove(ctx, "e2e4")
	if err != nil {
		t.Fatalf("SubmitMove: %v", err)
	}
	if got.path != "/move" || got.body["move"] != "e2e4" || got.contentType != "application/json" {
		t.Errorf("move request: %+v", got)
	}
	if resp.AIMove != "e7e5" {
		t.Errorf("ai_move: got %q", resp.AIMove)
	}

	resp, err = c.SetColor(ctx, core.ColorBlack)
	if err != nil {
		t.Fatalf("SetColor: %v", err)
	}
	if got.path != "/set_color" || got.body["color"] != "black" || resp.AIMove != "d2d4" {
		t.Errorf("color request: %+v resp %+v", got, resp)
	}

	if _, err := c.SetDifficulty(ctx, core.DifficultyHard); err != nil {
		t.Fatalf("SetDifficulty: %v", err)
	}
	if got.path != "/set_difficulty" || got.body["difficulty"] != "hard" {
		t.Errorf("difficulty request: %+v", got)
	}

	resp, err = c.NewGame(ctx)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	if got.path != "/reset" || got.method != http.MethodPost || resp.AIMove != "" {
		t.Errorf("reset request: %+v resp %+v", got, resp)
	}

	if _, err := c.Takeback(ctx); err != nil {
		t.Fatalf("Takeback: %v", err)
	}
	if got.path != "/takeback" {
		t.Errorf("takeback path: %s", got.path)
	}
}

func TestClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/move":
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(core.ErrorResponse{Error: "Illegal move", Code: core.ErrInvalidMove})
		default:
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("boom"))
		}
	}))
	defer srv.Close()

	c := New(srv.URL, nil)

	_, err := c.SubmitMove(context.Background(), "e2e5")
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("got %T, want *Error", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Detail() != "Illegal move" || apiErr.Code != core.ErrInvalidMove {
		t.Errorf("error: %+v", apiErr)
	}

	_, err = c.Takeback(context.Background())
	if !errors.As(err, &apiErr) {
		t.Fatalf("got %T, want *Error", err)
	}
	if apiErr.Detail() != "Internal Server Error" {
		t.Errorf("detail without body: %q", apiErr.Detail())
	}
}

func TestClientContextAndTrace(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"healthy","time":1}`))
	}))
	defer srv.Close()

	var trace bytes.Buffer
	c := New(srv.URL, nil)
	c.Trace = &trace
	c.SetVerbose(true)

	if _, err := c.Health(context.Background()); err != nil {
		t.Fatalf("Health: %v", err)
	}
	if !bytes.Contains(trace.Bytes(), []byte("GET /health")) {
		t.Errorf("trace missing request line: %q", trace.String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Health(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled context: got %v", err)
	}
}
