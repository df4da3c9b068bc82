package core

import "fmt"

// Square is an algebraic board coordinate such as "e4".
type Square string

// AllSquares lists every square from a1 to h8, file-major within each rank.
var AllSquares = func() [64]Square {
	var sq [64]Square
	for i := range sq {
		sq[i] = Square([]byte{byte('a' + i%8), byte('1' + i/8)})
	}
	return sq
}()

func ParseSquare(s string) (Square, error) {
	sq := Square(s)
	if !sq.Valid() {
		return "", fmt.Errorf("invalid square %q", s)
	}
	return sq, nil
}

func (s Square) Valid() bool {
	return len(s) == 2 && s[0] >= 'a' && s[0] <= 'h' && s[1] >= '1' && s[1] <= '8'
}

// File returns 0..7 for files a..h.
func (s Square) File() int { return int(s[0] - 'a') }

// Rank returns 0..7 for ranks 1..8.
func (s Square) Rank() int { return int(s[1] - '1') }

// Index returns 0..63 with a1 = 0 and h8 = 63. The square must be valid.
func (s Square) Index() int {
	return s.Rank()*8 + s.File()
}

// IsLight reports whether the square is a light square.
func (s Square) IsLight() bool {
	return (s.File()+s.Rank())%2 == 1
}
