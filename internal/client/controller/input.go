package controller

import (
	"errors"

	"chessai/internal/core"
)

// DropResult tells the board whether a dropped piece stays.
type DropResult int

const (
	DropAccepted DropResult = iota
	DropSnapback
)

// Click forwards a square click to the selection engine. While a request
// is in flight the click is refused with an alert.
func (c *Controller) Click(sq core.Square) {
	if c.state != StateIdle {
		c.sel.Clear()
		c.status.Alert(ErrBusy.Error())
		return
	}
	c.sel.Click(sq)
}

// DragStart reports whether the piece on sq may be picked up.
// Any selection is cleared first.
func (c *Controller) DragStart(sq core.Square) bool {
	c.sel.Clear()
	if c.GameOver() {
		return false
	}
	color, ok := c.rules.PieceColorAt(sq)
	if !ok || color != c.cfg.PlayerColor {
		return false
	}
	return c.rules.Turn() == c.cfg.PlayerColor
}

// Drop attempts from→to after a drag. Promotions always become queens.
func (c *Controller) Drop(from, to core.Square) (DropResult, error) {
	c.sel.Clear()
	if from == to {
		return DropSnapback, nil
	}
	if err := c.ExecuteLocalMove(from, to, core.Queen); err != nil {
		if !errors.Is(err, ErrIllegalMove) {
			c.status.Alert(err.Error())
		}
		return DropSnapback, err
	}
	return DropAccepted, nil
}

// SnapEnd re-projects the rules position after a drop animation, which
// picks up castling rook moves, en passant removals and promotions.
func (c *Controller) SnapEnd() {
	c.board.SetPosition(c.rules.FEN())
}
