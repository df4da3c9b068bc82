package processor

import (
	"chessai/internal/core"
)

// CommandType defines the type of command being executed
type CommandType int

const (
	CmdMove CommandType = iota
	CmdSetColor
	CmdSetDifficulty
	CmdReset
	CmdTakeback
	CmdState
)

func (t CommandType) String() string {
	switch t {
	case CmdMove:
		return "move"
	case CmdSetColor:
		return "set-color"
	case CmdSetDifficulty:
		return "set-difficulty"
	case CmdReset:
		return "reset"
	case CmdTakeback:
		return "takeback"
	case CmdState:
		return "state"
	default:
		return "unknown"
	}
}

// Command is a unified structure for all processor operations
type Command struct {
	Type CommandType
	Args any // Command-specific arguments
}

// ProcessorResponse wraps the response with metadata
type ProcessorResponse struct {
	Success bool                `json:"success"`
	Data    any                 `json:"data,omitempty"`
	Error   *core.ErrorResponse `json:"error,omitempty"`
}

func NewMoveCommand(req core.MoveRequest) Command {
	return Command{Type: CmdMove, Args: req}
}

func NewSetColorCommand(req core.ColorRequest) Command {
	return Command{Type: CmdSetColor, Args: req}
}

func NewSetDifficultyCommand(req core.DifficultyRequest) Command {
	return Command{Type: CmdSetDifficulty, Args: req}
}

func NewResetCommand() Command {
	return Command{Type: CmdReset}
}

func NewTakebackCommand() Command {
	return Command{Type: CmdTakeback}
}

func NewStateCommand() Command {
	return Command{Type: CmdState}
}
