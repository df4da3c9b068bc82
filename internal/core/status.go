package core

// Status is a snapshot of the local position used for the status line.
type Status struct {
	Turn      Color
	Check     bool
	Checkmate bool
	Draw      bool
	FEN       string
}

func (s Status) GameOver() bool {
	return s.Checkmate || s.Draw
}

// Text renders the human readable status line.
func (s Status) Text() string {
	switch {
	case s.Checkmate:
		return "Game over, " + s.Turn.Name() + " is in checkmate."
	case s.Draw:
		return "Game over, drawn position"
	}
	text := s.Turn.Name() + " to move"
	if s.Check {
		text += ", " + s.Turn.Name() + " is in check"
	}
	return text
}
