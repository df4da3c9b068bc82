// Package selection implements click-to-move piece selection and the
// highlights that go with it.
package selection

import (
	"chessai/internal/core"
)

// Highlight is the marking applied to a square.
type Highlight int

const (
	HighlightNone Highlight = iota
	HighlightOrigin
	HighlightQuiet
	HighlightCapture
)

func (h Highlight) String() string {
	switch h {
	case HighlightOrigin:
		return "origin"
	case HighlightQuiet:
		return "quiet"
	case HighlightCapture:
		return "capture"
	default:
		return "none"
	}
}

// Rules answers the position queries selection needs.
type Rules interface {
	LegalMovesFrom(sq core.Square) []core.Move
	PieceColorAt(sq core.Square) (core.Color, bool)
}

// Gate reports whether the local player may interact with the board.
type Gate interface {
	CanInteract() bool
	PlayerColor() core.Color
}

// Mover submits a move chosen by clicking.
type Mover interface {
	ExecuteLocalMove(from, to core.Square, promo core.PieceKind) error
}

// Highlighter is the board view. Every square has a cell, so SetHighlight
// never fails.
type Highlighter interface {
	SetHighlight(sq core.Square, h Highlight)
}

// Engine is the selection state machine. It is either idle or holds an
// origin square with its candidate moves.
type Engine struct {
	rules  Rules
	gate   Gate
	mover  Mover
	view   Highlighter
	marks  map[core.Square]Highlight
	origin core.Square
	moves  []core.Move
}

func New(rules Rules, gate Gate, mover Mover, view Highlighter) *Engine {
	return &Engine{
		rules: rules,
		gate:  gate,
		mover: mover,
		view:  view,
		marks: make(map[core.Square]Highlight),
	}
}

// Selected returns the origin square, if a piece is selected.
func (e *Engine) Selected() (core.Square, bool) {
	return e.origin, e.origin != ""
}

// Candidates returns the legal moves of the selected piece.
func (e *Engine) Candidates() []core.Move {
	return append([]core.Move(nil), e.moves...)
}

// Highlights returns the current highlight set.
func (e *Engine) Highlights() map[core.Square]Highlight {
	out := make(map[core.Square]Highlight, len(e.marks))
	for sq, h := range e.marks {
		out[sq] = h
	}
	return out
}

// Select makes sq the origin and highlights its legal destinations.
// A piece with no legal moves leaves the engine idle.
func (e *Engine) Select(sq core.Square) {
	e.Clear()
	moves := e.rules.LegalMovesFrom(sq)
	if len(moves) == 0 {
		return
	}
	e.origin = sq
	e.moves = moves
	e.mark(sq, HighlightOrigin)
	for _, m := range moves {
		h := HighlightQuiet
		if m.Flags.IsCapture() {
			h = HighlightCapture
		}
		e.mark(m.To, h)
	}
}

// Clear removes every highlight and returns to idle. Safe to call twice.
func (e *Engine) Clear() {
	for sq := range e.marks {
		if e.view != nil {
			e.view.SetHighlight(sq, HighlightNone)
		}
	}
	clear(e.marks)
	e.origin = ""
	e.moves = nil
}

// Click handles a click on sq.
func (e *Engine) Click(sq core.Square) {
	if !sq.Valid() || !e.gate.CanInteract() {
		return
	}

	if e.origin == "" {
		if e.ownPiece(sq) {
			e.Select(sq)
		}
		return
	}

	if sq == e.origin {
		e.Clear()
		return
	}
	for _, m := range e.moves {
		if m.To == sq {
			from := e.origin
			e.Clear()
			// The gate has checked turn and idleness, and sq is a legal
			// destination, so the move is accepted.
			_ = e.mover.ExecuteLocalMove(from, sq, core.Queen)
			return
		}
	}
	if e.ownPiece(sq) {
		e.Select(sq)
		return
	}
	e.Clear()
}

func (e *Engine) ownPiece(sq core.Square) bool {
	c, ok := e.rules.PieceColorAt(sq)
	return ok && c == e.gate.PlayerColor()
}

func (e *Engine) mark(sq core.Square, h Highlight) {
	e.marks[sq] = h
	if e.view != nil {
		e.view.SetHighlight(sq, h)
	}
}
