package processor

import (
	"context"
	"errors"
	"testing"

	"chessai/internal/core"
	"chessai/internal/rules"
	"chessai/internal/server/storage"

	"go.uber.org/zap/zaptest"
)

// scriptMover replies with scripted moves, then the first legal move.
type scriptMover struct {
	moves []string
	err   error
	calls int
}

func (m *scriptMover) BestMove(_ context.Context, fen string, _ core.Difficulty) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	if len(m.moves) > 0 {
		mv := m.moves[0]
		m.moves = m.moves[1:]
		return mv, nil
	}
	r, err := rules.NewFromFEN(fen)
	if err != nil {
		return "", err
	}
	legal := r.ValidMoveCodes()
	if len(legal) == 0 {
		return "", nil
	}
	return legal[0], nil
}

type memRecorder struct {
	games   []storage.GameRecord
	moves   []storage.MoveRecord
	results map[string]string
}

func (r *memRecorder) RecordNewGame(g storage.GameRecord) error {
	r.games = append(r.games, g)
	return nil
}

func (r *memRecorder) RecordMove(m storage.MoveRecord) error {
	r.moves = append(r.moves, m)
	return nil
}

func (r *memRecorder) DeleteUndoneMoves(gameID string, after int) error {
	kept := r.moves[:0]
	for _, m := range r.moves {
		if m.GameID != gameID || m.MoveNumber <= after {
			kept = append(kept, m)
		}
	}
	r.moves = kept
	return nil
}

func (r *memRecorder) RecordResult(gameID, result string) error {
	if r.results == nil {
		r.results = map[string]string{}
	}
	r.results[gameID] = result
	return nil
}

func newTestProcessor(t *testing.T, m Mover) (*Processor, *memRecorder) {
	t.Helper()
	rec := &memRecorder{}
	return New(m, rec, zaptest.NewLogger(t)), rec
}

func gameData(t *testing.T, resp ProcessorResponse) core.GameResponse {
	t.Helper()
	if !resp.Success {
		t.Fatalf("unexpected failure: %+v", resp.Error)
	}
	data, ok := resp.Data.(core.GameResponse)
	if !ok {
		t.Fatalf("data type %T", resp.Data)
	}
	return data
}

func TestMoveReturnsAIReply(t *testing.T) {
	p, rec := newTestProcessor(t, &scriptMover{moves: []string{"e7e5"}})

	data := gameData(t, p.Execute(context.Background(), NewMoveCommand(core.MoveRequest{Move: "e2e4"})))
	if data.Status != core.StatusSuccess || data.AIMove != "e7e5" {
		t.Errorf("response: %+v", data)
	}
	want := rules.New()
	want.ApplyCode("e2e4")
	want.ApplyCode("e7e5")
	if data.FEN != want.FEN() {
		t.Errorf("fen: got %s, want %s", data.FEN, want.FEN())
	}

	if len(rec.games) != 1 {
		t.Fatalf("games recorded: %d", len(rec.games))
	}
	if len(rec.moves) != 2 {
		t.Fatalf("moves recorded: %d", len(rec.moves))
	}
	if rec.moves[0].Actor != storage.ActorPlayer || rec.moves[0].MoveNumber != 1 {
		t.Errorf("player move record: %+v", rec.moves[0])
	}
	if rec.moves[1].Actor != storage.ActorAI || rec.moves[1].MoveNumber != 2 {
		t.Errorf("ai move record: %+v", rec.moves[1])
	}
}

func TestMoveErrors(t *testing.T) {
	tests := []struct {
		name string
		move string
		code string
		msg  string
	}{
		{"illegal", "e2e5", core.ErrInvalidMove, MsgIllegalMove},
		{"bad format", "e2-e4", core.ErrInvalidMove, MsgInvalidFormat},
		{"control chars", "e2e\x00", core.ErrInvalidMove, MsgInvalidFormat},
		{"opponent piece", "e7e5", core.ErrInvalidMove, MsgIllegalMove},
		{"promotion letter on quiet move", "e2e4q", core.ErrInvalidMove, MsgIllegalMove},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, rec := newTestProcessor(t, &scriptMover{})
			resp := p.Execute(context.Background(), NewMoveCommand(core.MoveRequest{Move: tt.move}))
			if resp.Success {
				t.Fatal("expected failure")
			}
			if resp.Error.Code != tt.code || resp.Error.Error != tt.msg {
				t.Errorf("got %+v", resp.Error)
			}
			if len(rec.moves) != 0 {
				t.Errorf("rejected move was recorded")
			}
		})
	}
}

func TestMoveOutOfTurn(t *testing.T) {
	p, _ := newTestProcessor(t, &scriptMover{moves: []string{"d2d4"}})
	gameData(t, p.Execute(context.Background(), NewSetColorCommand(core.ColorRequest{Color: "black"})))

	// Black to move after the AI opening; force white's turn by taking back.
	p.game.Undo(1)
	resp := p.Execute(context.Background(), NewMoveCommand(core.MoveRequest{Move: "e7e5"}))
	if resp.Success || resp.Error.Code != core.ErrNotYourTurn {
		t.Errorf("got %+v", resp.Error)
	}
}

func TestEngineFailureUndoesPlayerMove(t *testing.T) {
	p, rec := newTestProcessor(t, &scriptMover{err: errors.New("engine gone")})

	resp := p.Execute(context.Background(), NewMoveCommand(core.MoveRequest{Move: "e2e4"}))
	if resp.Success {
		t.Fatal("expected failure")
	}
	if resp.Error.Code != core.ErrEngineError || resp.Error.Error != MsgNoAIMove {
		t.Errorf("got %+v", resp.Error)
	}
	if p.game.FEN() != rules.StartingFEN {
		t.Errorf("player move kept: %s", p.game.FEN())
	}
	if len(rec.moves) != 0 {
		t.Errorf("moves left in storage: %+v", rec.moves)
	}
}

func TestPlayerMateEndsGameWithoutAIMove(t *testing.T) {
	m := &scriptMover{moves: []string{"e7e5", "b8c6", "g8f6"}}
	p, rec := newTestProcessor(t, m)

	ctx := context.Background()
	for _, mv := range []string{"e2e4", "f1c4", "d1h5"} {
		gameData(t, p.Execute(ctx, NewMoveCommand(core.MoveRequest{Move: mv})))
	}
	calls := m.calls

	data := gameData(t, p.Execute(ctx, NewMoveCommand(core.MoveRequest{Move: "h5f7"})))
	if data.Status != core.StatusGameOver || data.Result != "White wins by checkmate!" {
		t.Errorf("response: %+v", data)
	}
	if data.AIMove != "" || m.calls != calls {
		t.Errorf("AI moved after mate: %q", data.AIMove)
	}
	if rec.results[p.game.ID()] != data.Result {
		t.Errorf("result not recorded: %v", rec.results)
	}

	resp := p.Execute(ctx, NewMoveCommand(core.MoveRequest{Move: "a2a3"}))
	if resp.Success || resp.Error.Code != core.ErrGameOver {
		t.Errorf("move after game over: %+v", resp.Error)
	}
}

func TestAIMateReportsMove(t *testing.T) {
	p, _ := newTestProcessor(t, &scriptMover{moves: []string{"e7e5", "d8h4"}})

	ctx := context.Background()
	gameData(t, p.Execute(ctx, NewMoveCommand(core.MoveRequest{Move: "f2f3"})))
	data := gameData(t, p.Execute(ctx, NewMoveCommand(core.MoveRequest{Move: "g2g4"})))
	if data.Status != core.StatusGameOver || data.AIMove != "d8h4" {
		t.Errorf("response: %+v", data)
	}
	if data.Result != "Black wins by checkmate!" {
		t.Errorf("result: %q", data.Result)
	}
}

func TestSetColorBlackAIOpens(t *testing.T) {
	p, rec := newTestProcessor(t, &scriptMover{moves: []string{"d2d4"}})

	data := gameData(t, p.Execute(context.Background(), NewSetColorCommand(core.ColorRequest{Color: "black"})))
	if data.Status != core.StatusColorSet || data.PlayerColor != "black" || data.AIMove != "d2d4" {
		t.Errorf("response: %+v", data)
	}
	if p.game.MoveCount() != 1 || p.game.Turn() != core.ColorBlack {
		t.Errorf("position after AI opening: %s", p.game.FEN())
	}
	if len(rec.games) != 2 || rec.games[1].PlayerColor != "black" {
		t.Errorf("games: %+v", rec.games)
	}

	data = gameData(t, p.Execute(context.Background(), NewSetColorCommand(core.ColorRequest{Color: "white"})))
	if data.AIMove != "" || data.FEN != rules.StartingFEN {
		t.Errorf("white restart: %+v", data)
	}
}

func TestSetDifficulty(t *testing.T) {
	p, _ := newTestProcessor(t, &scriptMover{})

	data := gameData(t, p.Execute(context.Background(), NewSetDifficultyCommand(core.DifficultyRequest{Difficulty: "hard"})))
	if data.Status != core.StatusDifficultySet || data.Difficulty != "hard" {
		t.Errorf("response: %+v", data)
	}
	if p.game.Difficulty() != core.DifficultyHard {
		t.Errorf("difficulty: %s", p.game.Difficulty())
	}

	resp := p.Execute(context.Background(), NewSetDifficultyCommand(core.DifficultyRequest{Difficulty: "extreme"}))
	if resp.Success || resp.Error.Code != core.ErrInvalidRequest {
		t.Errorf("got %+v", resp.Error)
	}
}

func TestResetStartsNewGame(t *testing.T) {
	p, rec := newTestProcessor(t, &scriptMover{})
	ctx := context.Background()
	gameData(t, p.Execute(ctx, NewMoveCommand(core.MoveRequest{Move: "e2e4"})))
	oldID := p.game.ID()

	data := gameData(t, p.Execute(ctx, NewResetCommand()))
	if data.Status != core.StatusBoardReset || data.FEN != rules.StartingFEN || data.AIMove != "" {
		t.Errorf("response: %+v", data)
	}
	if p.game.ID() == oldID {
		t.Error("reset kept the game id")
	}
	if len(rec.games) != 2 {
		t.Errorf("games recorded: %d", len(rec.games))
	}
}

func TestTakeback(t *testing.T) {
	p, rec := newTestProcessor(t, &scriptMover{moves: []string{"e7e5", "b8c6"}})
	ctx := context.Background()

	resp := p.Execute(ctx, NewTakebackCommand())
	if resp.Success || resp.Error.Code != core.ErrNoMoves || resp.Error.Error != MsgNotEnoughMoves {
		t.Fatalf("takeback on empty game: %+v", resp.Error)
	}

	gameData(t, p.Execute(ctx, NewMoveCommand(core.MoveRequest{Move: "e2e4"})))
	afterFirst := p.game.FEN()
	gameData(t, p.Execute(ctx, NewMoveCommand(core.MoveRequest{Move: "g1f3"})))

	data := gameData(t, p.Execute(ctx, NewTakebackCommand()))
	if data.Status != core.StatusTakenBack || data.FEN != afterFirst {
		t.Errorf("response: %+v", data)
	}
	if p.game.MoveCount() != 2 {
		t.Errorf("move count: %d", p.game.MoveCount())
	}
	if len(rec.moves) != 2 || rec.moves[1].MoveUCI != "e7e5" {
		t.Errorf("stored moves after takeback: %+v", rec.moves)
	}
}

func TestStateCommand(t *testing.T) {
	p, _ := newTestProcessor(t, &scriptMover{moves: []string{"c7c5"}})
	ctx := context.Background()
	gameData(t, p.Execute(ctx, NewMoveCommand(core.MoveRequest{Move: "e2e4"})))

	resp := p.Execute(ctx, NewStateCommand())
	st, ok := resp.Data.(core.StateResponse)
	if !resp.Success || !ok {
		t.Fatalf("state: %+v", resp)
	}
	if st.GameID != p.game.ID() || len(st.Moves) != 2 || st.Turn != "white" {
		t.Errorf("state: %+v", st)
	}
}

func TestWrongArgsRejected(t *testing.T) {
	p, _ := newTestProcessor(t, &scriptMover{})
	resp := p.Execute(context.Background(), Command{Type: CmdMove, Args: "e2e4"})
	if resp.Success || resp.Error.Code != core.ErrInvalidRequest {
		t.Errorf("got %+v", resp.Error)
	}
}

func TestIsMoveSafe(t *testing.T) {
	for _, ok := range []string{"e2e4", "a7a8q", "h2h1n"} {
		if !isMoveSafe(ok) {
			t.Errorf("%q rejected", ok)
		}
	}
	for _, bad := range []string{"", "e2", "e2e9", "i2e4", "e7e8k", "e2e4e5"} {
		if isMoveSafe(bad) {
			t.Errorf("%q accepted", bad)
		}
	}
}
