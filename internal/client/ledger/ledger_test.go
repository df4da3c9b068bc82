package ledger

import (
	"testing"

	"chessai/internal/core"
)

func mv(san string) core.Move {
	return core.Move{SAN: san}
}

// play records alternating moves starting with White.
func play(l *Ledger, sans ...string) {
	color := core.ColorWhite
	for i, san := range sans {
		actor := ActorPlayer
		if i%2 == 1 {
			actor = ActorAI
		}
		l.Record(mv(san), color, actor)
		color = core.OppositeColor(color)
	}
}

func texts(l *Ledger) []string {
	var out []string
	for _, e := range l.Entries() {
		out = append(out, e.Text())
	}
	return out
}

func TestRecordNumbering(t *testing.T) {
	l := New()
	play(l, "e4", "e5", "Nf3", "Nc6", "Bb5")

	want := []string{"1. e4", "e5", "2. Nf3", "Nc6", "3. Bb5"}
	got := texts(l)
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d: got %q, want %q", i, got[i], want[i])
		}
	}

	// The k-th entry carries ceil(k/2) when moves alternate from White.
	for i, e := range l.Entries() {
		k := i + 1
		if e.MoveNumber != (k+1)/2 {
			t.Errorf("entry %d: move number %d, want %d", k, e.MoveNumber, (k+1)/2)
		}
	}
	if l.NextMoveNumber() != 3 {
		t.Errorf("next move number: got %d, want 3", l.NextMoveNumber())
	}
}

func TestTakeback(t *testing.T) {
	t.Run("too few moves", func(t *testing.T) {
		l := New()
		play(l, "e4")
		if err := l.Takeback(); err != ErrTooFewMoves {
			t.Fatalf("got %v, want ErrTooFewMoves", err)
		}
		if l.Count() != 1 {
			t.Errorf("count changed to %d", l.Count())
		}
	})

	t.Run("even remainder decrements counter", func(t *testing.T) {
		l := New()
		play(l, "e4", "e5", "Nf3", "Nc6")
		if err := l.Takeback(); err != nil {
			t.Fatal(err)
		}
		if l.Count() != 2 {
			t.Fatalf("count: got %d, want 2", l.Count())
		}
		if l.NextMoveNumber() != 2 {
			t.Errorf("next move number: got %d, want 2", l.NextMoveNumber())
		}
		l.Record(mv("d4"), core.ColorWhite, ActorPlayer)
		if got := l.Entries()[2].Text(); got != "2. d4" {
			t.Errorf("re-recorded entry: got %q, want %q", got, "2. d4")
		}
	})

	t.Run("odd remainder keeps counter", func(t *testing.T) {
		l := New()
		play(l, "e4", "e5", "Nf3", "Nc6", "Bb5")
		if err := l.Takeback(); err != nil {
			t.Fatal(err)
		}
		if l.Count() != 3 {
			t.Fatalf("count: got %d, want 3", l.Count())
		}
		if l.NextMoveNumber() != 2 {
			t.Errorf("next move number: got %d, want 2", l.NextMoveNumber())
		}
	})

	t.Run("ledger starting with black player reply", func(t *testing.T) {
		// Player is Black: AI opens, player replies, AI answers.
		l := New()
		l.Record(mv("d4"), core.ColorWhite, ActorAI)
		l.Record(mv("d5"), core.ColorBlack, ActorPlayer)
		l.Record(mv("c4"), core.ColorWhite, ActorAI)
		if err := l.Takeback(); err != nil {
			t.Fatal(err)
		}
		l.Record(mv("Nf6"), core.ColorBlack, ActorPlayer)
		l.Record(mv("Nf3"), core.ColorWhite, ActorAI)
		want := []string{"1. d4", "Nf6", "2. Nf3"}
		got := texts(l)
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("entry %d: got %q, want %q", i, got[i], want[i])
			}
		}
	})
}

func TestPop(t *testing.T) {
	l := New()
	if _, ok := l.Pop(); ok {
		t.Fatal("pop on empty ledger reported an entry")
	}

	play(l, "e4", "e5")
	before := l.NextMoveNumber()
	l.Record(mv("Nf3"), core.ColorWhite, ActorPlayer)
	e, ok := l.Pop()
	if !ok || e.SAN != "Nf3" {
		t.Fatalf("pop: got %+v, %v", e, ok)
	}
	if l.Count() != 2 || l.NextMoveNumber() != before {
		t.Errorf("after pop: count %d next %d, want 2 and %d", l.Count(), l.NextMoveNumber(), before)
	}

	l.Record(mv("Nc3"), core.ColorBlack, ActorPlayer)
	l.Pop()
	if l.NextMoveNumber() != before {
		t.Errorf("black pop: next %d, want %d", l.NextMoveNumber(), before)
	}
}

func TestReset(t *testing.T) {
	l := New()
	play(l, "e4", "e5", "Nf3")
	l.Reset()
	if l.Count() != 0 || l.NextMoveNumber() != 1 || l.CanTakeback() {
		t.Fatalf("reset left count=%d next=%d", l.Count(), l.NextMoveNumber())
	}
	play(l, "d4")
	if got := l.Entries()[0].Text(); got != "1. d4" {
		t.Errorf("got %q after reset, want %q", got, "1. d4")
	}
}
