// Package processor runs the server's game commands: player moves with the
// AI reply, color and difficulty changes, resets and takebacks.
package processor

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode"

	"chessai/internal/core"
	"chessai/internal/server/game"
	"chessai/internal/server/storage"

	"go.uber.org/zap"
)

// Error messages returned to the client
const (
	MsgNotYourTurn      = "Not your turn"
	MsgInvalidFormat    = "Invalid move format"
	MsgIllegalMove      = "Illegal move"
	MsgGameOver         = "Game is over"
	MsgNoAIMove         = "AI could not find a valid move"
	MsgNotEnoughMoves   = "Not enough moves to take back"
	MsgInvalidArguments = "invalid arguments"
)

// Mover chooses the AI move for a position.
type Mover interface {
	BestMove(ctx context.Context, fen string, d core.Difficulty) (string, error)
}

// Recorder persists game history. storage.Store implements it.
type Recorder interface {
	RecordNewGame(record storage.GameRecord) error
	RecordMove(record storage.MoveRecord) error
	DeleteUndoneMoves(gameID string, afterMoveNumber int) error
	RecordResult(gameID, result string) error
}

// Processor owns the single game. Commands run one at a time.
type Processor struct {
	mu     sync.Mutex
	game   *game.Game
	mover  Mover
	store  Recorder
	logger *zap.Logger
}

// New creates a processor with a fresh game. store may be nil.
func New(mover Mover, store Recorder, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Processor{
		game:   game.New(core.DefaultConfig()),
		mover:  mover,
		store:  store,
		logger: logger,
	}
	p.recordNewGame()
	return p
}

func (p *Processor) Execute(ctx context.Context, cmd Command) ProcessorResponse {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch cmd.Type {
	case CmdMove:
		return p.handleMove(ctx, cmd)
	case CmdSetColor:
		return p.handleSetColor(ctx, cmd)
	case CmdSetDifficulty:
		return p.handleSetDifficulty(cmd)
	case CmdReset:
		return p.handleReset(ctx)
	case CmdTakeback:
		return p.handleTakeback()
	case CmdState:
		return ProcessorResponse{Success: true, Data: p.game.State()}
	default:
		return p.errorResponse("unknown command", core.ErrInvalidRequest)
	}
}

// isMoveSafe checks the move code shape before it reaches the rules engine.
func isMoveSafe(move string) bool {
	for _, r := range move {
		if unicode.IsControl(r) {
			return false
		}
	}

	// [a-h][1-8][a-h][1-8][qrbn]?
	if len(move) < 4 || len(move) > 5 {
		return false
	}

	if move[0] < 'a' || move[0] > 'h' ||
		move[1] < '1' || move[1] > '8' ||
		move[2] < 'a' || move[2] > 'h' ||
		move[3] < '1' || move[3] > '8' {
		return false
	}

	if len(move) == 5 {
		promotion := move[4]
		if promotion != 'q' && promotion != 'r' && promotion != 'b' && promotion != 'n' {
			return false
		}
	}

	return true
}

// handleMove applies the player's move and answers with the AI reply.
func (p *Processor) handleMove(ctx context.Context, cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.MoveRequest)
	if !ok {
		return p.errorResponse(MsgInvalidArguments, core.ErrInvalidRequest)
	}

	g := p.game
	if g.IsOver() {
		return p.errorResponse(MsgGameOver, core.ErrGameOver)
	}
	if !g.IsPlayerTurn() {
		return p.errorResponse(MsgNotYourTurn, core.ErrNotYourTurn)
	}

	move := strings.ToLower(strings.TrimSpace(args.Move))
	if !isMoveSafe(move) {
		return p.errorResponse(MsgInvalidFormat, core.ErrInvalidMove)
	}

	if _, err := g.Apply(move); err != nil {
		p.logger.Debug("move rejected", zap.String("move", move), zap.Error(err))
		return p.errorResponse(MsgIllegalMove, core.ErrInvalidMove)
	}
	p.recordMove(move, storage.ActorPlayer)

	if g.IsOver() {
		return p.gameOver("")
	}

	aiMove, err := p.playAI(ctx)
	if err != nil || aiMove == "" {
		// Undo so the server agrees with a client that rolls back.
		if undoErr := g.Undo(1); undoErr != nil {
			p.logger.Error("undo after engine failure", zap.Error(undoErr))
		}
		p.deleteMovesAfter(g.MoveCount())
		p.logger.Error("no AI move", zap.String("fen", g.FEN()), zap.Error(err))
		return p.errorResponse(MsgNoAIMove, core.ErrEngineError)
	}

	if g.IsOver() {
		return p.gameOver(aiMove)
	}

	return ProcessorResponse{
		Success: true,
		Data: core.GameResponse{
			Status: core.StatusSuccess,
			FEN:    g.FEN(),
			AIMove: aiMove,
		},
	}
}

func (p *Processor) handleSetColor(ctx context.Context, cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.ColorRequest)
	if !ok {
		return p.errorResponse(MsgInvalidArguments, core.ErrInvalidRequest)
	}
	color, err := core.ParseColor(args.Color)
	if err != nil {
		return p.errorResponse("Invalid color", core.ErrInvalidRequest)
	}

	p.game.SetPlayerColor(color)
	aiMove := p.restart(ctx)

	return ProcessorResponse{
		Success: true,
		Data: core.GameResponse{
			Status:      core.StatusColorSet,
			FEN:         p.game.FEN(),
			PlayerColor: color.String(),
			AIMove:      aiMove,
		},
	}
}

func (p *Processor) handleSetDifficulty(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.DifficultyRequest)
	if !ok {
		return p.errorResponse(MsgInvalidArguments, core.ErrInvalidRequest)
	}
	d, err := core.ParseDifficulty(args.Difficulty)
	if err != nil {
		return p.errorResponse("Invalid difficulty", core.ErrInvalidRequest)
	}

	p.game.SetDifficulty(d)
	return ProcessorResponse{
		Success: true,
		Data: core.GameResponse{
			Status:     core.StatusDifficultySet,
			Difficulty: string(d),
		},
	}
}

func (p *Processor) handleReset(ctx context.Context) ProcessorResponse {
	aiMove := p.restart(ctx)
	return ProcessorResponse{
		Success: true,
		Data: core.GameResponse{
			Status: core.StatusBoardReset,
			FEN:    p.game.FEN(),
			AIMove: aiMove,
		},
	}
}

// handleTakeback removes the AI's last move and the player's move before it.
func (p *Processor) handleTakeback() ProcessorResponse {
	g := p.game
	if g.MoveCount() < 2 {
		return p.errorResponse(MsgNotEnoughMoves, core.ErrNoMoves)
	}
	if err := g.Undo(2); err != nil {
		return p.errorResponse(err.Error(), core.ErrInternalError)
	}
	p.deleteMovesAfter(g.MoveCount())

	return ProcessorResponse{
		Success: true,
		Data: core.GameResponse{
			Status: core.StatusTakenBack,
			FEN:    g.FEN(),
		},
	}
}

// restart begins a new game. When the player has Black the AI opens, and
// its move is returned; a failed AI opening leaves the start position.
func (p *Processor) restart(ctx context.Context) string {
	p.game.Reset()
	p.recordNewGame()

	if p.game.IsPlayerTurn() {
		return ""
	}
	aiMove, err := p.playAI(ctx)
	if err != nil {
		p.logger.Warn("AI opening move failed", zap.Error(err))
		return ""
	}
	return aiMove
}

// playAI asks the mover for a move and plays it. An empty move means the
// AI has no legal move.
func (p *Processor) playAI(ctx context.Context) (string, error) {
	g := p.game
	aiMove, err := p.mover.BestMove(ctx, g.FEN(), g.Difficulty())
	if err != nil || aiMove == "" {
		return "", err
	}
	if _, err := g.Apply(aiMove); err != nil {
		return "", err
	}
	p.recordMove(aiMove, storage.ActorAI)
	return aiMove, nil
}

func (p *Processor) gameOver(aiMove string) ProcessorResponse {
	result := p.game.Result()
	if p.store != nil {
		p.store.RecordResult(p.game.ID(), result)
	}
	p.logger.Info("game over", zap.String("game", p.game.ID()), zap.String("result", result))
	return ProcessorResponse{
		Success: true,
		Data: core.GameResponse{
			Status: core.StatusGameOver,
			Result: result,
			FEN:    p.game.FEN(),
			AIMove: aiMove,
		},
	}
}

func (p *Processor) recordNewGame() {
	if p.store == nil {
		return
	}
	p.store.RecordNewGame(storage.GameRecord{
		GameID:       p.game.ID(),
		PlayerColor:  p.game.PlayerColor().String(),
		Difficulty:   string(p.game.Difficulty()),
		StartTimeUTC: p.game.StartTime(),
	})
}

func (p *Processor) recordMove(code, actor string) {
	if p.store == nil {
		return
	}
	p.store.RecordMove(storage.MoveRecord{
		GameID:       p.game.ID(),
		MoveNumber:   p.game.MoveCount(),
		MoveUCI:      code,
		FENAfterMove: p.game.FEN(),
		Actor:        actor,
		MoveTimeUTC:  time.Now().UTC(),
	})
}

func (p *Processor) deleteMovesAfter(n int) {
	if p.store == nil {
		return
	}
	p.store.DeleteUndoneMoves(p.game.ID(), n)
}

// errorResponse creates error response
func (p *Processor) errorResponse(message, code string) ProcessorResponse {
	return ProcessorResponse{
		Success: false,
		Error: &core.ErrorResponse{
			Error: message,
			Code:  code,
		},
	}
}
