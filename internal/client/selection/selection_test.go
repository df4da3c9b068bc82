package selection

import (
	"testing"

	"chessai/internal/core"
	"chessai/internal/rules"
)

type stubGate struct {
	open  bool
	color core.Color
}

func (g *stubGate) CanInteract() bool       { return g.open }
func (g *stubGate) PlayerColor() core.Color { return g.color }

type recordMover struct {
	calls []core.MoveCode
}

func (m *recordMover) ExecuteLocalMove(from, to core.Square, promo core.PieceKind) error {
	m.calls = append(m.calls, core.MoveCode{From: from, To: to, Promotion: promo})
	return nil
}

// cellView mirrors the board's fixed square table.
type cellView struct {
	cells [64]Highlight
}

func (v *cellView) SetHighlight(sq core.Square, h Highlight) {
	v.cells[sq.Index()] = h
}

func (v *cellView) marked() int {
	n := 0
	for _, h := range v.cells {
		if h != HighlightNone {
			n++
		}
	}
	return n
}

func newEngine(t *testing.T, fen string) (*Engine, *stubGate, *recordMover, *cellView) {
	t.Helper()
	r, err := rules.NewFromFEN(fen)
	if err != nil {
		t.Fatalf("NewFromFEN: %v", err)
	}
	gate := &stubGate{open: true, color: core.ColorWhite}
	mover := &recordMover{}
	view := &cellView{}
	return New(r, gate, mover, view), gate, mover, view
}

func TestSelectHighlightsCandidates(t *testing.T) {
	e, _, _, view := newEngine(t, rules.StartingFEN)

	e.Click("e2")
	origin, ok := e.Selected()
	if !ok || origin != "e2" {
		t.Fatalf("selected: got %q %v, want e2", origin, ok)
	}

	marks := e.Highlights()
	want := map[core.Square]Highlight{
		"e2": HighlightOrigin,
		"e3": HighlightQuiet,
		"e4": HighlightQuiet,
	}
	if len(marks) != len(want) {
		t.Fatalf("got %d highlights, want %d: %v", len(marks), len(want), marks)
	}
	for sq, h := range want {
		if marks[sq] != h {
			t.Errorf("%s: got %v, want %v", sq, marks[sq], h)
		}
		if view.cells[sq.Index()] != h {
			t.Errorf("view %s: got %v, want %v", sq, view.cells[sq.Index()], h)
		}
	}
}

func TestCaptureHighlight(t *testing.T) {
	// White pawn on e4 can take d5 or advance to e5.
	e, _, _, _ := newEngine(t, "rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 2")
	e.Click("e4")
	marks := e.Highlights()
	if marks["d5"] != HighlightCapture {
		t.Errorf("d5: got %v, want capture", marks["d5"])
	}
	if marks["e5"] != HighlightQuiet {
		t.Errorf("e5: got %v, want quiet", marks["e5"])
	}
}

func TestEnPassantIsCapture(t *testing.T) {
	e, _, _, _ := newEngine(t, "rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3")
	e.Click("e5")
	if got := e.Highlights()["f6"]; got != HighlightCapture {
		t.Errorf("f6: got %v, want capture", got)
	}
}

func TestClickTransitions(t *testing.T) {
	t.Run("opponent piece while idle is ignored", func(t *testing.T) {
		e, _, mover, _ := newEngine(t, rules.StartingFEN)
		e.Click("e7")
		if _, ok := e.Selected(); ok {
			t.Fatal("selected an opponent piece")
		}
		if len(mover.calls) != 0 {
			t.Fatal("unexpected move")
		}
	})

	t.Run("empty square while idle is ignored", func(t *testing.T) {
		e, _, _, view := newEngine(t, rules.StartingFEN)
		e.Click("e4")
		if _, ok := e.Selected(); ok || view.marked() != 0 {
			t.Fatal("empty square changed state")
		}
	})

	t.Run("piece without moves stays idle", func(t *testing.T) {
		e, _, _, view := newEngine(t, rules.StartingFEN)
		e.Click("a1")
		if _, ok := e.Selected(); ok || view.marked() != 0 {
			t.Fatal("rook without moves was selected")
		}
	})

	t.Run("clicking origin again clears", func(t *testing.T) {
		e, _, _, view := newEngine(t, rules.StartingFEN)
		e.Click("g1")
		e.Click("g1")
		if _, ok := e.Selected(); ok || view.marked() != 0 {
			t.Fatal("origin click did not clear")
		}
	})

	t.Run("candidate executes move", func(t *testing.T) {
		e, _, mover, view := newEngine(t, rules.StartingFEN)
		e.Click("g1")
		e.Click("f3")
		if len(mover.calls) != 1 {
			t.Fatalf("got %d moves, want 1", len(mover.calls))
		}
		if got := mover.calls[0].String(); got != "g1f3q" {
			// Promotion defaults to queen; the rules engine ignores it for
			// non-promotions.
			t.Errorf("move: got %q", got)
		}
		if _, ok := e.Selected(); ok || view.marked() != 0 {
			t.Fatal("selection not cleared after move")
		}
	})

	t.Run("other own piece reselects", func(t *testing.T) {
		e, _, mover, _ := newEngine(t, rules.StartingFEN)
		e.Click("g1")
		e.Click("b1")
		origin, _ := e.Selected()
		if origin != "b1" {
			t.Fatalf("origin: got %q, want b1", origin)
		}
		marks := e.Highlights()
		if _, stale := marks["f3"]; stale {
			t.Error("stale highlight on f3")
		}
		if marks["c3"] != HighlightQuiet || marks["a3"] != HighlightQuiet {
			t.Errorf("b1 candidates missing: %v", marks)
		}
		if len(mover.calls) != 0 {
			t.Fatal("unexpected move")
		}
	})

	t.Run("unrelated square clears", func(t *testing.T) {
		e, _, mover, view := newEngine(t, rules.StartingFEN)
		e.Click("g1")
		e.Click("d5")
		if _, ok := e.Selected(); ok || view.marked() != 0 {
			t.Fatal("unrelated click did not clear")
		}
		if len(mover.calls) != 0 {
			t.Fatal("unexpected move")
		}
	})

	t.Run("closed gate ignores clicks", func(t *testing.T) {
		e, gate, _, _ := newEngine(t, rules.StartingFEN)
		gate.open = false
		e.Click("e2")
		if _, ok := e.Selected(); ok {
			t.Fatal("selected while gate closed")
		}
	})
}

func TestClearIdempotent(t *testing.T) {
	e, _, _, view := newEngine(t, rules.StartingFEN)
	e.Clear()
	e.Click("e2")
	e.Clear()
	e.Clear()
	if view.marked() != 0 || len(e.Highlights()) != 0 {
		t.Fatal("highlights survived clear")
	}
}

func TestHighlightInvariant(t *testing.T) {
	e, _, _, view := newEngine(t, rules.StartingFEN)
	for _, sq := range []core.Square{"e2", "g1", "b1", "d2", "d2", "h7", "c1"} {
		e.Click(sq)
		origin, selected := e.Selected()
		marks := e.Highlights()
		if !selected {
			if len(marks) != 0 || view.marked() != 0 {
				t.Fatalf("after %s: idle with highlights %v", sq, marks)
			}
			continue
		}
		if marks[origin] != HighlightOrigin {
			t.Fatalf("after %s: origin %s not marked", sq, origin)
		}
		if len(marks) != len(e.Candidates())+1 {
			t.Fatalf("after %s: %d highlights for %d candidates", sq, len(marks), len(e.Candidates()))
		}
		for _, m := range e.Candidates() {
			want := HighlightQuiet
			if m.Flags.IsCapture() {
				want = HighlightCapture
			}
			if marks[m.To] != want {
				t.Fatalf("after %s: %s marked %v, want %v", sq, m.To, marks[m.To], want)
			}
		}
	}
}
