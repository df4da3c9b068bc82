package core

import (
	"fmt"
	"strings"
)

// PieceKind is a promotion target. NoPiece means the move is not a promotion.
type PieceKind byte

const (
	NoPiece PieceKind = 0
	Queen   PieceKind = 'q'
	Rook    PieceKind = 'r'
	Bishop  PieceKind = 'b'
	Knight  PieceKind = 'n'
)

func (p PieceKind) Valid() bool {
	switch p {
	case NoPiece, Queen, Rook, Bishop, Knight:
		return true
	}
	return false
}

// MoveFlag is a bit set of move properties.
type MoveFlag uint8

const (
	FlagCapture MoveFlag = 1 << iota
	FlagEnPassant
	FlagCastle
	FlagPromotion
	FlagCheck

	flagMask = FlagCapture | FlagEnPassant | FlagCastle | FlagPromotion | FlagCheck
)

// Valid reports whether f only uses known flags.
func (f MoveFlag) Valid() bool {
	return f&^flagMask == 0
}

func (f MoveFlag) Has(flag MoveFlag) bool {
	return f&flag != 0
}

// IsCapture is true for ordinary and en passant captures.
func (f MoveFlag) IsCapture() bool {
	return f.Has(FlagCapture | FlagEnPassant)
}

func (f MoveFlag) String() string {
	var parts []string
	names := []struct {
		flag MoveFlag
		name string
	}{
		{FlagCapture, "capture"},
		{FlagEnPassant, "en-passant"},
		{FlagCastle, "castle"},
		{FlagPromotion, "promotion"},
		{FlagCheck, "check"},
	}
	for _, n := range names {
		if f.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// Move is a move produced by the rules engine.
type Move struct {
	From      Square
	To        Square
	Promotion PieceKind
	SAN       string
	Flags     MoveFlag
}

// Code renders the move code sent over the wire: from, to and an optional
// promotion letter, e.g. "e2e4" or "e7e8q".
func (m Move) Code() string {
	code := string(m.From) + string(m.To)
	if m.Promotion != NoPiece {
		code += string(rune(m.Promotion))
	}
	return code
}

// MoveCode is a parsed move code.
type MoveCode struct {
	From      Square
	To        Square
	Promotion PieceKind
}

func (c MoveCode) String() string {
	return Move{From: c.From, To: c.To, Promotion: c.Promotion}.Code()
}

// ParseMoveCode parses a 4 or 5 character move code.
func ParseMoveCode(s string) (MoveCode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) < 4 || len(s) > 5 {
		return MoveCode{}, fmt.Errorf("invalid move code %q: expected 4 or 5 characters", s)
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return MoveCode{}, fmt.Errorf("invalid move code %q: %w", s, err)
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return MoveCode{}, fmt.Errorf("invalid move code %q: %w", s, err)
	}
	mc := MoveCode{From: from, To: to}
	if len(s) == 5 {
		mc.Promotion = PieceKind(s[4])
		if mc.Promotion == NoPiece || !mc.Promotion.Valid() {
			return MoveCode{}, fmt.Errorf("invalid move code %q: bad promotion piece", s)
		}
	}
	return mc, nil
}
