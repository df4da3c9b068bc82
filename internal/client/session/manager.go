// Package session manages the game configuration (player color, AI
// difficulty) and the session-level actions: new game and takeback.
package session

import (
	"context"

	"chessai/internal/client/controller"
	"chessai/internal/client/ledger"
	"chessai/internal/client/prefs"
	"chessai/internal/core"

	"go.uber.org/zap"
)

// Alert messages shown when an auxiliary request fails.
const (
	MsgColorFailed      = "Failed to set color"
	MsgDifficultyFailed = "Failed to set difficulty"
	MsgNewGameFailed    = "Failed to start a new game"
	MsgTakebackFailed   = "Cannot take back moves"
)

// Store persists preferences and results. It may be nil.
type Store interface {
	SaveConfig(cfg core.Config) error
	LoadPreferences() (*prefs.Preferences, error)
	RecordGame(outcome prefs.Outcome, difficulty core.Difficulty) error
}

// Alerter shows a message to the user.
type Alerter interface {
	Alert(msg string)
}

// Manager drives configuration changes through the controller so they
// share its single-request rule.
type Manager struct {
	ctl       *controller.Controller
	transport controller.Transport
	store     Store
	alerts    Alerter
	logger    *zap.Logger
}

func NewManager(ctl *controller.Controller, transport controller.Transport, store Store, alerts Alerter, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		ctl:       ctl,
		transport: transport,
		store:     store,
		alerts:    alerts,
		logger:    logger,
	}
	ctl.OnResult(m.recordResult)
	return m
}

// Init loads saved preferences, resets the local game and brings the
// server to the same configuration. The color request also resets the
// server board, and the AI opens if the player is Black.
func (m *Manager) Init() error {
	if m.store != nil {
		p, err := m.store.LoadPreferences()
		if err != nil {
			m.logger.Warn("load preferences", zap.Error(err))
		} else {
			cfg := p.Config()
			m.ctl.SetPlayerColor(cfg.PlayerColor)
			m.ctl.SetDifficulty(cfg.Difficulty)
		}
	}
	m.ctl.ResetGame()

	cfg := m.ctl.Config()
	return m.requestDifficulty(cfg.Difficulty, func() {
		if err := m.requestColor(cfg.PlayerColor, cfg.PlayerColor); err != nil {
			m.logger.Warn("initial color sync", zap.Error(err))
		}
	})
}

// SetPlayerColor switches sides. The choice is kept locally and the server
// is asked to switch; on confirmation the game restarts with the board
// oriented for the new color. A failed request restores the old color.
func (m *Manager) SetPlayerColor(color core.Color) error {
	if m.ctl.State() != controller.StateIdle {
		return controller.ErrBusy
	}
	prev := m.ctl.PlayerColor()
	m.ctl.SetPlayerColor(color)
	m.save()
	return m.requestColor(color, prev)
}

func (m *Manager) requestColor(color, prev core.Color) error {
	return m.ctl.Request(controller.RequestColor, func(ctx context.Context) (*core.GameResponse, error) {
		return m.transport.SetColor(ctx, color)
	}, func(resp *core.GameResponse) {
		m.restart(resp.AIMove)
	}, func(err error) {
		m.ctl.SetPlayerColor(prev)
		m.save()
		m.alerts.Alert(MsgColorFailed)
	})
}

// SetDifficulty changes the AI strength. The local value is kept even if
// the server does not confirm it.
func (m *Manager) SetDifficulty(d core.Difficulty) error {
	if m.ctl.State() != controller.StateIdle {
		return controller.ErrBusy
	}
	m.ctl.SetDifficulty(d)
	m.save()
	return m.requestDifficulty(d, nil)
}

func (m *Manager) requestDifficulty(d core.Difficulty, then func()) error {
	return m.ctl.Request(controller.RequestDifficulty, func(ctx context.Context) (*core.GameResponse, error) {
		return m.transport.SetDifficulty(ctx, d)
	}, func(*core.GameResponse) {
		m.logger.Debug("difficulty set", zap.String("difficulty", string(d)))
		if then != nil {
			then()
		}
	}, func(err error) {
		m.alerts.Alert(MsgDifficultyFailed)
		if then != nil {
			then()
		}
	})
}

// NewGame restarts the game with the current color.
func (m *Manager) NewGame() error {
	return m.ctl.Request(controller.RequestNewGame, func(ctx context.Context) (*core.GameResponse, error) {
		return m.transport.NewGame(ctx)
	}, func(resp *core.GameResponse) {
		m.restart(resp.AIMove)
	}, func(err error) {
		m.alerts.Alert(MsgNewGameFailed)
	})
}

// Takeback undoes the last two moves on both sides.
func (m *Manager) Takeback() error {
	if !m.ctl.CanTakeback() {
		m.alerts.Alert(MsgTakebackFailed)
		return ledger.ErrTooFewMoves
	}
	return m.ctl.Request(controller.RequestTakeback, func(ctx context.Context) (*core.GameResponse, error) {
		return m.transport.Takeback(ctx)
	}, func(*core.GameResponse) {
		if err := m.ctl.TakebackPair(); err != nil {
			m.logger.Error("local takeback failed", zap.Error(err))
			m.alerts.Alert(MsgTakebackFailed)
		}
	}, func(err error) {
		m.alerts.Alert(MsgTakebackFailed)
	})
}

func (m *Manager) restart(aiMove string) {
	m.ctl.ResetGame()
	if aiMove != "" {
		if err := m.ctl.ApplyServerMove(aiMove); err == nil {
			m.ctl.Refresh()
		}
	}
}

func (m *Manager) save() {
	if m.store == nil {
		return
	}
	if err := m.store.SaveConfig(m.ctl.Config()); err != nil {
		m.logger.Warn("save preferences", zap.Error(err))
	}
}

func (m *Manager) recordResult(result string) {
	if m.store == nil {
		return
	}
	cfg := m.ctl.Config()
	if err := m.store.RecordGame(prefs.OutcomeFor(result, cfg.PlayerColor), cfg.Difficulty); err != nil {
		m.logger.Warn("record game", zap.Error(err))
	}
}
