// Package ledger keeps the numbered move history shown next to the board.
package ledger

import (
	"errors"
	"fmt"

	"chessai/internal/core"
)

// Actor records who made a move.
type Actor int

const (
	ActorPlayer Actor = iota
	ActorAI
)

func (a Actor) String() string {
	if a == ActorAI {
		return "ai"
	}
	return "player"
}

var ErrTooFewMoves = errors.New("fewer than two moves recorded")

// Entry is one recorded move.
type Entry struct {
	MoveNumber int
	Actor      Actor
	Color      core.Color
	SAN        string
}

// Text renders the entry: "N. san" for White, "san" for Black.
func (e Entry) Text() string {
	if e.Color == core.ColorWhite {
		return fmt.Sprintf("%d. %s", e.MoveNumber, e.SAN)
	}
	return e.SAN
}

// Ledger is the move history. Its entry count is the move counter shown to
// the user. Not safe for concurrent use.
type Ledger struct {
	entries []Entry
	next    int
}

func New() *Ledger {
	return &Ledger{next: 1}
}

// Record appends a move made by color. A Black move completes the current
// move number and advances the counter.
func (l *Ledger) Record(move core.Move, color core.Color, actor Actor) Entry {
	e := Entry{
		MoveNumber: l.next,
		Actor:      actor,
		Color:      color,
		SAN:        move.SAN,
	}
	l.entries = append(l.entries, e)
	if color == core.ColorBlack {
		l.next++
	}
	return e
}

// Takeback removes the last two entries.
func (l *Ledger) Takeback() error {
	if len(l.entries) < 2 {
		return ErrTooFewMoves
	}
	l.truncate(len(l.entries) - 2)
	return nil
}

// Pop removes the last entry. It is used when a move is rolled back.
func (l *Ledger) Pop() (Entry, bool) {
	if len(l.entries) == 0 {
		return Entry{}, false
	}
	last := l.entries[len(l.entries)-1]
	l.truncate(len(l.entries) - 1)
	return last, true
}

// truncate keeps the first n entries and re-derives the counter from the
// new tail.
func (l *Ledger) truncate(n int) {
	l.entries = l.entries[:n]
	if n == 0 {
		l.next = 1
		return
	}
	last := l.entries[n-1]
	l.next = last.MoveNumber
	if last.Color == core.ColorBlack {
		l.next++
	}
}

func (l *Ledger) Reset() {
	l.entries = nil
	l.next = 1
}

func (l *Ledger) Count() int {
	return len(l.entries)
}

// CanTakeback reports whether a takeback may be offered.
func (l *Ledger) CanTakeback() bool {
	return len(l.entries) >= 2
}

// NextMoveNumber is the number the next White move will carry.
func (l *Ledger) NextMoveNumber() int {
	return l.next
}

// Entries returns a copy of the history, oldest first.
func (l *Ledger) Entries() []Entry {
	return append([]Entry(nil), l.entries...)
}
