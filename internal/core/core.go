// Package core holds the types shared by the chess client and the reference server.
package core

import (
	"fmt"
	"strings"
)

// Color identifies a side. The zero value is not a valid color.
type Color byte

const (
	ColorWhite Color = 'w'
	ColorBlack Color = 'b'
)

// ParseColor accepts "white"/"black" and the FEN letters "w"/"b".
func ParseColor(s string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white", "w":
		return ColorWhite, nil
	case "black", "b":
		return ColorBlack, nil
	default:
		return 0, fmt.Errorf("invalid color %q: use white or black", s)
	}
}

// String returns the wire name, "white" or "black".
func (c Color) String() string {
	switch c {
	case ColorWhite:
		return "white"
	case ColorBlack:
		return "black"
	default:
		return "none"
	}
}

// Name returns the capitalised name used in status text.
func (c Color) Name() string {
	switch c {
	case ColorWhite:
		return "White"
	case ColorBlack:
		return "Black"
	default:
		return "None"
	}
}

func (c Color) Valid() bool {
	return c == ColorWhite || c == ColorBlack
}

func OppositeColor(c Color) Color {
	if c == ColorWhite {
		return ColorBlack
	}
	return ColorWhite
}

// Difficulty is the AI strength requested from the server.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("invalid difficulty %q: use easy, medium or hard", s)
	}
	return d, nil
}

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Config is the per-session game configuration.
type Config struct {
	PlayerColor Color
	Difficulty  Difficulty
}

// DefaultConfig is the configuration used before any preference is loaded.
func DefaultConfig() Config {
	return Config{PlayerColor: ColorWhite, Difficulty: DifficultyMedium}
}
