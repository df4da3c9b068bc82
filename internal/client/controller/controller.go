// Package controller keeps the local game in step with the server game.
//
// A local move is applied optimistically, sent to the server, and either
// confirmed (possibly with the server's reply move) or rolled back. All
// state changes run on a single goroutine; network calls are dispatched
// elsewhere and their completions are posted back.
package controller

import (
	"context"
	"errors"

	"chessai/internal/client/ledger"
	"chessai/internal/client/selection"
	"chessai/internal/core"

	"go.uber.org/zap"
)

var (
	ErrBusy          = errors.New("a request is already in progress")
	ErrGameOver      = errors.New("game is over")
	ErrNotPlayerTurn = errors.New("not your turn")
	ErrIllegalMove   = errors.New("illegal move")
)

// State is the synchronization state.
type State int

const (
	StateIdle State = iota
	StateAwaitingServer
	StateRollingBack
)

func (s State) String() string {
	switch s {
	case StateAwaitingServer:
		return "awaiting-server"
	case StateRollingBack:
		return "rolling-back"
	default:
		return "idle"
	}
}

// RequestKind names the request being waited on.
type RequestKind int

const (
	RequestNone RequestKind = iota
	RequestMove
	RequestColor
	RequestDifficulty
	RequestNewGame
	RequestTakeback
)

func (k RequestKind) String() string {
	switch k {
	case RequestMove:
		return "move"
	case RequestColor:
		return "set-color"
	case RequestDifficulty:
		return "set-difficulty"
	case RequestNewGame:
		return "new-game"
	case RequestTakeback:
		return "takeback"
	default:
		return "none"
	}
}

// Pending describes the outstanding request. Move is set for move requests.
type Pending struct {
	Kind RequestKind
	Move *core.Move
}

// Rules is the local rules engine.
type Rules interface {
	Apply(from, to core.Square, promo core.PieceKind) (core.Move, error)
	ApplyCode(code string) (core.Move, error)
	Undo() error
	LegalMovesFrom(sq core.Square) []core.Move
	PieceColorAt(sq core.Square) (core.Color, bool)
	Turn() core.Color
	FEN() string
	IsGameOver() bool
	Status() core.Status
	Reset()
}

// Transport reaches the game server.
type Transport interface {
	SubmitMove(ctx context.Context, code string) (*core.GameResponse, error)
	SetColor(ctx context.Context, color core.Color) (*core.GameResponse, error)
	SetDifficulty(ctx context.Context, d core.Difficulty) (*core.GameResponse, error)
	NewGame(ctx context.Context) (*core.GameResponse, error)
	Takeback(ctx context.Context) (*core.GameResponse, error)
}

// BoardView renders the position. It is write-only.
type BoardView interface {
	selection.Highlighter
	SetPosition(fen string)
	SetOrientation(color core.Color)
}

// StatusView renders the status line, history and alerts.
type StatusView interface {
	ShowStatus(st core.Status)
	ShowHistory(entries []ledger.Entry, canTakeback bool)
	ShowResult(result string)
	Alert(msg string)
}

// Deps are the collaborators of a Controller.
type Deps struct {
	Rules      Rules
	Transport  Transport
	Dispatcher Dispatcher
	Board      BoardView
	Status     StatusView
	Logger     *zap.Logger
}

// Controller owns the session: configuration, local rules, history,
// selection and the synchronization state.
type Controller struct {
	cfg         core.Config
	orientation core.Color
	rules       Rules
	ledger      *ledger.Ledger
	sel         *selection.Engine
	transport   Transport
	dispatch    Dispatcher
	board       BoardView
	status      StatusView
	logger      *zap.Logger

	state    State
	pending  Pending
	finished bool
	result   string
	onResult func(result string)
}

func New(cfg core.Config, deps Deps) *Controller {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Controller{
		cfg:         cfg,
		orientation: cfg.PlayerColor,
		rules:       deps.Rules,
		ledger:      ledger.New(),
		transport:   deps.Transport,
		dispatch:    deps.Dispatcher,
		board:       deps.Board,
		status:      deps.Status,
		logger:      logger,
	}
	c.sel = selection.New(deps.Rules, c, c, deps.Board)
	return c
}

// OnResult registers a function called when the server reports a finished game.
func (c *Controller) OnResult(fn func(result string)) {
	c.onResult = fn
}

func (c *Controller) Config() core.Config { return c.cfg }

func (c *Controller) PlayerColor() core.Color { return c.cfg.PlayerColor }

// SetPlayerColor changes the local color only. The board is not reset.
func (c *Controller) SetPlayerColor(color core.Color) {
	c.cfg.PlayerColor = color
}

func (c *Controller) SetDifficulty(d core.Difficulty) {
	c.cfg.Difficulty = d
}

func (c *Controller) State() State { return c.state }

func (c *Controller) Pending() Pending { return c.pending }

func (c *Controller) Selection() *selection.Engine { return c.sel }

func (c *Controller) History() []ledger.Entry { return c.ledger.Entries() }

// MoveCount is the number of recorded moves.
func (c *Controller) MoveCount() int { return c.ledger.Count() }

func (c *Controller) CanTakeback() bool { return c.ledger.CanTakeback() }

func (c *Controller) Orientation() core.Color { return c.orientation }

func (c *Controller) FEN() string { return c.rules.FEN() }

func (c *Controller) Status() core.Status { return c.rules.Status() }

// Result is the last result reported by the server, if the game is over.
func (c *Controller) Result() string { return c.result }

// GameOver reports whether no further moves are accepted.
func (c *Controller) GameOver() bool {
	return c.finished || c.rules.IsGameOver()
}

// CanInteract reports whether the player may select or drag pieces: the
// game is running, it is the player's turn and no request is in flight.
func (c *Controller) CanInteract() bool {
	return c.state == StateIdle && !c.GameOver() && c.rules.Turn() == c.cfg.PlayerColor
}

// Flip turns the board around without touching the game.
func (c *Controller) Flip() {
	c.orientation = core.OppositeColor(c.orientation)
	c.board.SetOrientation(c.orientation)
	c.board.SetPosition(c.rules.FEN())
}

// ResetGame clears local game state and shows the start position from the
// player's side.
func (c *Controller) ResetGame() {
	c.rules.Reset()
	c.ledger.Reset()
	c.sel.Clear()
	c.finished = false
	c.result = ""
	c.orientation = c.cfg.PlayerColor
	c.board.SetOrientation(c.orientation)
	c.board.SetPosition(c.rules.FEN())
	c.showHistory()
	c.refreshStatus()
	c.logger.Debug("game reset", zap.String("color", c.cfg.PlayerColor.String()))
}

// ApplyServerMove plays a move chosen by the server and records it.
func (c *Controller) ApplyServerMove(code string) error {
	color := c.rules.Turn()
	mv, err := c.rules.ApplyCode(code)
	if err != nil {
		c.logger.Warn("server move rejected locally", zap.String("move", code), zap.Error(err))
		c.status.Alert("Server move " + code + " could not be applied; use new to resynchronise")
		return err
	}
	c.ledger.Record(mv, color, ledger.ActorAI)
	c.board.SetPosition(c.rules.FEN())
	c.showHistory()
	c.logger.Debug("server move applied", zap.String("move", code), zap.String("san", mv.SAN))
	return nil
}

// TakebackPair undoes the last two moves locally.
func (c *Controller) TakebackPair() error {
	if !c.ledger.CanTakeback() {
		return ledger.ErrTooFewMoves
	}
	for i := 0; i < 2; i++ {
		if err := c.rules.Undo(); err != nil {
			return err
		}
	}
	if err := c.ledger.Takeback(); err != nil {
		return err
	}
	c.sel.Clear()
	c.finished = false
	c.result = ""
	c.board.SetPosition(c.rules.FEN())
	c.showHistory()
	c.refreshStatus()
	return nil
}

// Refresh re-projects the whole session onto the views.
func (c *Controller) Refresh() {
	c.board.SetOrientation(c.orientation)
	c.board.SetPosition(c.rules.FEN())
	c.showHistory()
	c.refreshStatus()
}

func (c *Controller) showHistory() {
	c.status.ShowHistory(c.ledger.Entries(), c.ledger.CanTakeback())
}

func (c *Controller) refreshStatus() {
	c.status.ShowStatus(c.rules.Status())
}

func (c *Controller) begin(kind RequestKind, mv *core.Move) {
	c.state = StateAwaitingServer
	c.pending = Pending{Kind: kind, Move: mv}
	c.logger.Debug("request started", zap.Stringer("kind", kind))
}

func (c *Controller) end() {
	c.logger.Debug("request finished", zap.Stringer("kind", c.pending.Kind))
	c.state = StateIdle
	c.pending = Pending{}
}

func (c *Controller) finish(result string) {
	c.finished = true
	c.result = result
	c.status.ShowResult(result)
	if c.onResult != nil {
		c.onResult(result)
	}
}
