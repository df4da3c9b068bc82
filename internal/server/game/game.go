// Package game holds the server's single game against the AI.
package game

import (
	"fmt"
	"time"

	"chessai/internal/core"
	"chessai/internal/rules"

	"github.com/google/uuid"
	"github.com/notnil/chess"
)

// Result texts reported when a game ends.
const (
	ResultWhiteMates    = "White wins by checkmate!"
	ResultBlackMates    = "Black wins by checkmate!"
	ResultStalemate     = "Draw by stalemate"
	ResultInsufficient  = "Draw by insufficient material"
	ResultSeventyFive   = "Draw by 75-move rule"
	ResultFivefold      = "Draw by fivefold repetition"
	ResultGameOverOther = "Game over"
)

// Game is not safe for concurrent use; the processor serialises access.
type Game struct {
	id         string
	rules      *rules.Rules
	player     core.Color
	difficulty core.Difficulty
	started    time.Time
}

func New(cfg core.Config) *Game {
	return &Game{
		id:         uuid.NewString(),
		rules:      rules.New(),
		player:     cfg.PlayerColor,
		difficulty: cfg.Difficulty,
		started:    time.Now().UTC(),
	}
}

func (g *Game) ID() string                  { return g.id }
func (g *Game) PlayerColor() core.Color     { return g.player }
func (g *Game) Difficulty() core.Difficulty { return g.difficulty }
func (g *Game) StartTime() time.Time        { return g.started }

func (g *Game) SetPlayerColor(c core.Color)     { g.player = c }
func (g *Game) SetDifficulty(d core.Difficulty) { g.difficulty = d }

// Reset starts a fresh game under a new id, keeping color and difficulty.
func (g *Game) Reset() {
	g.id = uuid.NewString()
	g.rules.Reset()
	g.started = time.Now().UTC()
}

func (g *Game) Turn() core.Color     { return g.rules.Turn() }
func (g *Game) FEN() string          { return g.rules.FEN() }
func (g *Game) Moves() []string      { return g.rules.Moves() }
func (g *Game) MoveCount() int       { return g.rules.MoveCount() }
func (g *Game) IsOver() bool         { return g.rules.IsGameOver() }
func (g *Game) LegalMoves() []string { return g.rules.ValidMoveCodes() }

// IsPlayerTurn reports whether the human side is to move.
func (g *Game) IsPlayerTurn() bool {
	return g.rules.Turn() == g.player
}

// Apply plays a move code for the side to move.
func (g *Game) Apply(code string) (core.Move, error) {
	return g.rules.ApplyCode(code)
}

// Undo takes back count moves.
func (g *Game) Undo(count int) error {
	if count < 1 {
		return fmt.Errorf("invalid undo count: %d", count)
	}
	if g.rules.MoveCount() < count {
		return fmt.Errorf("cannot undo %d moves: only %d moves available", count, g.rules.MoveCount())
	}
	for i := 0; i < count; i++ {
		if err := g.rules.Undo(); err != nil {
			return err
		}
	}
	return nil
}

// Result describes how the game ended, or "" while it is running.
func (g *Game) Result() string {
	winner, method := g.rules.Outcome()
	if winner == "" {
		return ""
	}
	switch method {
	case chess.Checkmate:
		if winner == "white" {
			return ResultWhiteMates
		}
		return ResultBlackMates
	case chess.Stalemate:
		return ResultStalemate
	case chess.InsufficientMaterial:
		return ResultInsufficient
	case chess.SeventyFiveMoveRule:
		return ResultSeventyFive
	case chess.FivefoldRepetition:
		return ResultFivefold
	default:
		return ResultGameOverOther
	}
}

// State is the snapshot served on GET /state.
func (g *Game) State() core.StateResponse {
	return core.StateResponse{
		GameID:      g.id,
		FEN:         g.rules.FEN(),
		Turn:        g.rules.Turn().String(),
		PlayerColor: g.player.String(),
		Difficulty:  string(g.difficulty),
		Moves:       g.rules.Moves(),
		Result:      g.Result(),
	}
}
