package controller

import (
	"context"
	"errors"
	"fmt"

	"chessai/internal/client/ledger"
	"chessai/internal/core"

	"go.uber.org/zap"
)

// Call performs one server request.
type Call func(ctx context.Context) (*core.GameResponse, error)

// detailer is implemented by transport errors that carry a server message.
type detailer interface {
	Detail() string
}

func errorDetail(err error) string {
	var d detailer
	if errors.As(err, &d) && d.Detail() != "" {
		return d.Detail()
	}
	return err.Error()
}

// ExecuteLocalMove applies the player's move locally and submits it.
// It returns ErrIllegalMove when the rules engine refuses the move, in
// which case nothing changes and the view should snap back.
func (c *Controller) ExecuteLocalMove(from, to core.Square, promo core.PieceKind) error {
	if c.state != StateIdle {
		return ErrBusy
	}
	if c.GameOver() {
		return ErrGameOver
	}
	color := c.rules.Turn()
	if color != c.cfg.PlayerColor {
		return ErrNotPlayerTurn
	}

	mv, err := c.rules.Apply(from, to, promo)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIllegalMove, err)
	}
	c.sel.Clear()
	c.ledger.Record(mv, color, ledger.ActorPlayer)
	c.board.SetPosition(c.rules.FEN())
	c.showHistory()

	c.begin(RequestMove, &mv)
	code := mv.Code()
	c.logger.Debug("submitting move", zap.String("move", code), zap.String("san", mv.SAN))
	c.dispatch.Dispatch(func(ctx context.Context) (*core.GameResponse, error) {
		return c.transport.SubmitMove(ctx, code)
	}, c.moveDone)
	return nil
}

// RejectedError is a move refusal reported in the body of a successful reply.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string  { return "server rejected move: " + e.Message }
func (e *RejectedError) Detail() string { return e.Message }

func (c *Controller) moveDone(resp *core.GameResponse, err error) {
	if err == nil && resp != nil && resp.Error != "" {
		err = &RejectedError{Message: resp.Error}
	}
	if err != nil {
		c.rollback(err)
		return
	}
	if resp == nil {
		resp = &core.GameResponse{}
	}

	switch {
	case resp.Status == core.StatusGameOver:
		if resp.AIMove != "" {
			c.ApplyServerMove(resp.AIMove)
		}
		c.finish(resp.Result)
	case resp.AIMove != "":
		c.ApplyServerMove(resp.AIMove)
	}
	c.end()
	c.refreshStatus()
}

// rollback undoes the pending player move after the server refused it.
func (c *Controller) rollback(cause error) {
	c.state = StateRollingBack
	move := ""
	if c.pending.Move != nil {
		move = c.pending.Move.Code()
	}
	c.logger.Info("rolling back move", zap.String("move", move), zap.Error(cause))

	if err := c.rules.Undo(); err != nil {
		c.logger.Error("undo during rollback failed", zap.Error(err))
	}
	c.ledger.Pop()
	c.sel.Clear()
	c.board.SetPosition(c.rules.FEN())
	c.showHistory()
	c.refreshStatus()
	c.status.Alert("An error occurred: " + errorDetail(cause))
	c.end()
}

// Request runs an auxiliary server call under the same single-request
// rule as moves. Exactly one of onSuccess or onFailure runs, on the
// controller goroutine, after the controller is idle again.
func (c *Controller) Request(kind RequestKind, call Call, onSuccess func(*core.GameResponse), onFailure func(error)) error {
	if c.state != StateIdle {
		return ErrBusy
	}
	c.begin(kind, nil)
	c.dispatch.Dispatch(call, func(resp *core.GameResponse, err error) {
		c.end()
		if err != nil {
			c.logger.Info("request failed", zap.Stringer("kind", kind), zap.Error(err))
			if onFailure != nil {
				onFailure(err)
			}
			return
		}
		if resp == nil {
			resp = &core.GameResponse{}
		}
		if onSuccess != nil {
			onSuccess(resp)
		}
	})
	return nil
}
