// Package rules adapts github.com/notnil/chess to the square and move types in core.
package rules

import (
	"errors"
	"fmt"

	"chessai/internal/core"

	"github.com/notnil/chess"
)

const StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var (
	ErrIllegalMove = errors.New("illegal move")
	ErrNoHistory   = errors.New("no moves to undo")
)

// Rules is a chess game with undo. The underlying library has no undo, so
// the game is rebuilt from the start position and the move list.
// Rules is not safe for concurrent use.
type Rules struct {
	start string
	codes []string
	game  *chess.Game
}

// New starts a game from the standard position.
func New() *Rules {
	r, _ := NewFromFEN(StartingFEN)
	return r
}

func NewFromFEN(fen string) (*Rules, error) {
	game, err := newGame(fen)
	if err != nil {
		return nil, err
	}
	return &Rules{start: fen, game: game}, nil
}

func newGame(fen string) (*chess.Game, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("invalid FEN: %w", err)
	}
	return chess.NewGame(opt, chess.UseNotation(chess.UCINotation{})), nil
}

// Reset returns to the starting position of this game.
func (r *Rules) Reset() {
	r.codes = nil
	r.game, _ = newGame(r.start)
}

// Apply plays from→to for the side to move. When the move is a promotion
// the promo piece is used, defaulting to a queen.
func (r *Rules) Apply(from, to core.Square, promo core.PieceKind) (core.Move, error) {
	if promo == core.NoPiece {
		promo = core.Queen
	}
	pos := r.game.Position()
	var found *chess.Move
	for _, m := range r.game.ValidMoves() {
		if m.S1().String() != string(from) || m.S2().String() != string(to) {
			continue
		}
		if m.Promo() != chess.NoPieceType && m.Promo() != pieceType(promo) {
			continue
		}
		found = m
		break
	}
	if found == nil {
		return core.Move{}, fmt.Errorf("%w: %s%s", ErrIllegalMove, from, to)
	}

	mv := convertMove(pos, found)
	if err := r.game.Move(found); err != nil {
		return core.Move{}, fmt.Errorf("%w: %v", ErrIllegalMove, err)
	}
	r.codes = append(r.codes, mv.Code())
	return mv, nil
}

// ApplyCode plays a move given as a move code.
func (r *Rules) ApplyCode(code string) (core.Move, error) {
	mc, err := core.ParseMoveCode(code)
	if err != nil {
		return core.Move{}, fmt.Errorf("%w: %v", ErrIllegalMove, err)
	}
	promotes := false
	for _, m := range r.game.ValidMoves() {
		if m.S1().String() == string(mc.From) && m.S2().String() == string(mc.To) && m.Promo() != chess.NoPieceType {
			promotes = true
			break
		}
	}
	// A bare code must not silently promote, and a promotion letter is
	// only valid on a promoting move.
	switch {
	case promotes && mc.Promotion == core.NoPiece:
		return core.Move{}, fmt.Errorf("%w: %s needs a promotion piece", ErrIllegalMove, code)
	case !promotes && mc.Promotion != core.NoPiece:
		return core.Move{}, fmt.Errorf("%w: %s is not a promotion", ErrIllegalMove, code)
	}
	return r.Apply(mc.From, mc.To, mc.Promotion)
}

// Undo takes back the last move.
func (r *Rules) Undo() error {
	if len(r.codes) == 0 {
		return ErrNoHistory
	}
	codes := r.codes[:len(r.codes)-1]
	game, err := newGame(r.start)
	if err != nil {
		return err
	}
	for _, code := range codes {
		m, err := chess.UCINotation{}.Decode(game.Position(), code)
		if err != nil {
			return fmt.Errorf("replay %s: %w", code, err)
		}
		if err := game.Move(m); err != nil {
			return fmt.Errorf("replay %s: %w", code, err)
		}
	}
	r.game = game
	r.codes = codes
	return nil
}

// LegalMovesFrom lists the legal moves of the piece on sq. Promotions are
// reported once, as queen promotions.
func (r *Rules) LegalMovesFrom(sq core.Square) []core.Move {
	pos := r.game.Position()
	var moves []core.Move
	for _, m := range r.game.ValidMoves() {
		if m.S1().String() != string(sq) {
			continue
		}
		if m.Promo() != chess.NoPieceType && m.Promo() != chess.Queen {
			continue
		}
		moves = append(moves, convertMove(pos, m))
	}
	return moves
}

// PieceColorAt reports the color of the piece on sq, if any.
func (r *Rules) PieceColorAt(sq core.Square) (core.Color, bool) {
	if !sq.Valid() {
		return 0, false
	}
	p := r.game.Position().Board().Piece(toSquare(sq))
	if p == chess.NoPiece {
		return 0, false
	}
	return fromColor(p.Color()), true
}

func (r *Rules) Turn() core.Color {
	return fromColor(r.game.Position().Turn())
}

func (r *Rules) FEN() string {
	return r.game.Position().String()
}

// IsGameOver covers checkmate, stalemate, insufficient material and the
// automatic fivefold and 75-move draws.
func (r *Rules) IsGameOver() bool {
	return r.game.Outcome() != chess.NoOutcome
}

// Outcome returns the winner ("white", "black", "draw") and the method name,
// or empty strings while the game is running.
func (r *Rules) Outcome() (winner string, method chess.Method) {
	switch r.game.Outcome() {
	case chess.WhiteWon:
		winner = "white"
	case chess.BlackWon:
		winner = "black"
	case chess.Draw:
		winner = "draw"
	}
	return winner, r.game.Method()
}

func (r *Rules) Status() core.Status {
	st := core.Status{
		Turn: r.Turn(),
		FEN:  r.FEN(),
	}
	if moves := r.game.Moves(); len(moves) > 0 {
		st.Check = moves[len(moves)-1].HasTag(chess.Check)
	}
	switch r.game.Outcome() {
	case chess.WhiteWon, chess.BlackWon:
		st.Checkmate = r.game.Method() == chess.Checkmate
	case chess.Draw:
		st.Draw = true
	}
	return st
}

// Moves returns the move codes played so far.
func (r *Rules) Moves() []string {
	return append([]string(nil), r.codes...)
}

func (r *Rules) MoveCount() int {
	return len(r.codes)
}

// ValidMoveCodes lists every legal move in the current position.
func (r *Rules) ValidMoveCodes() []string {
	pos := r.game.Position()
	moves := r.game.ValidMoves()
	codes := make([]string, 0, len(moves))
	for _, m := range moves {
		codes = append(codes, chess.UCINotation{}.Encode(pos, m))
	}
	return codes
}

func convertMove(pos *chess.Position, m *chess.Move) core.Move {
	mv := core.Move{
		From: core.Square(m.S1().String()),
		To:   core.Square(m.S2().String()),
		SAN:  chess.AlgebraicNotation{}.Encode(pos, m),
	}
	if m.Promo() != chess.NoPieceType {
		mv.Promotion = pieceKind(m.Promo())
		mv.Flags |= core.FlagPromotion
	}
	if m.HasTag(chess.Capture) {
		mv.Flags |= core.FlagCapture
	}
	if m.HasTag(chess.EnPassant) {
		mv.Flags |= core.FlagEnPassant
	}
	if m.HasTag(chess.KingSideCastle) || m.HasTag(chess.QueenSideCastle) {
		mv.Flags |= core.FlagCastle
	}
	if m.HasTag(chess.Check) {
		mv.Flags |= core.FlagCheck
	}
	return mv
}

func toSquare(sq core.Square) chess.Square {
	return chess.NewSquare(chess.File(sq.File()), chess.Rank(sq.Rank()))
}

func fromColor(c chess.Color) core.Color {
	if c == chess.Black {
		return core.ColorBlack
	}
	return core.ColorWhite
}

func pieceType(p core.PieceKind) chess.PieceType {
	switch p {
	case core.Rook:
		return chess.Rook
	case core.Bishop:
		return chess.Bishop
	case core.Knight:
		return chess.Knight
	default:
		return chess.Queen
	}
}

func pieceKind(p chess.PieceType) core.PieceKind {
	switch p {
	case chess.Rook:
		return core.Rook
	case chess.Bishop:
		return core.Bishop
	case chess.Knight:
		return core.Knight
	case chess.Queen:
		return core.Queen
	default:
		return core.NoPiece
	}
}
