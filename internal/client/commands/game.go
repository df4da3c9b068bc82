package commands

import (
	"errors"
	"fmt"
	"sort"

	"chessai/internal/client/controller"
	"chessai/internal/client/display"
	"chessai/internal/core"
)

var errStopped = errors.New("client is shutting down")

func (r *Registry) registerGameCommands() {
	r.Register(&Command{
		Name:        "click",
		ShortName:   "k",
		Description: "Click a square to select, move or deselect",
		Usage:       "click <square>",
		Handler:     r.clickHandler,
	})

	r.Register(&Command{
		Name:        "drag",
		ShortName:   "g",
		Description: "Drag a piece from one square to another",
		Usage:       "drag <from> <to>",
		Handler:     r.dragHandler,
	})

	r.Register(&Command{
		Name:        "move",
		ShortName:   "m",
		Description: "Make a move",
		Usage:       "move <uci-move>",
		Handler:     moveHandler,
	})

	r.Register(&Command{
		Name:        "new",
		ShortName:   "n",
		Description: "Start a new game",
		Usage:       "new",
		Handler:     newGameHandler,
	})

	r.Register(&Command{
		Name:        "takeback",
		ShortName:   "u",
		Description: "Take back your last move and the reply",
		Usage:       "takeback",
		Handler:     takebackHandler,
	})

	r.Register(&Command{
		Name:        "show",
		ShortName:   "h",
		Description: "Show board and game status",
		Usage:       "show",
		Handler:     showBoardHandler,
	})

	r.Register(&Command{
		Name:        "flip",
		ShortName:   "f",
		Description: "Flip the board",
		Usage:       "flip",
		Handler:     flipHandler,
	})

	r.Register(&Command{
		Name:        "history",
		ShortName:   "l",
		Description: "List the moves played",
		Usage:       "history",
		Handler:     r.historyHandler,
	})

	r.Register(&Command{
		Name:        "status",
		ShortName:   "i",
		Description: "Show session and request state",
		Usage:       "status",
		Handler:     r.statusHandler,
	})
}

func (r *Registry) registerSettingsCommands() {
	r.Register(&Command{
		Name:        "color",
		ShortName:   "c",
		Description: "Play as white or black (restarts the game)",
		Usage:       "color <white|black>",
		Handler:     colorHandler,
	})

	r.Register(&Command{
		Name:        "difficulty",
		ShortName:   "d",
		Description: "Set AI difficulty",
		Usage:       "difficulty <easy|medium|hard>",
		Handler:     difficultyHandler,
	})

	r.Register(&Command{
		Name:        "theme",
		ShortName:   "t",
		Description: "Set board colors",
		Usage:       "theme <off|brown|green|gray>",
		Handler:     themeHandler,
	})

	r.Register(&Command{
		Name:        "stats",
		ShortName:   "a",
		Description: "Show results against the AI",
		Usage:       "stats",
		Handler:     r.statsHandler,
	})
}

// run executes fn on the controller goroutine and returns its error.
func run(s Session, fn func() error) error {
	var err error
	if !s.Do(func() { err = fn() }) {
		return errStopped
	}
	return err
}

func (r *Registry) clickHandler(s Session, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: click <square>")
	}
	sq, err := core.ParseSquare(args[0])
	if err != nil {
		return err
	}
	err = run(s, func() error {
		ctl := s.Controller()
		if ctl.State() != controller.StateIdle {
			return controller.ErrBusy
		}
		if !ctl.CanInteract() {
			if ctl.GameOver() {
				return controller.ErrGameOver
			}
			return controller.ErrNotPlayerTurn
		}
		ctl.Click(sq)
		return nil
	})
	if err != nil {
		return err
	}
	s.View().Flush()
	return nil
}

func (r *Registry) dragHandler(s Session, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: drag <from> <to>")
	}
	from, err := core.ParseSquare(args[0])
	if err != nil {
		return err
	}
	to, err := core.ParseSquare(args[1])
	if err != nil {
		return err
	}

	var illegal bool
	err = run(s, func() error {
		ctl := s.Controller()
		if !ctl.DragStart(from) {
			return fmt.Errorf("cannot pick up a piece on %s", from)
		}
		// Drop alerts on its own for anything but an illegal move.
		_, dropErr := ctl.Drop(from, to)
		ctl.SnapEnd()
		illegal = errors.Is(dropErr, controller.ErrIllegalMove)
		return nil
	})
	if illegal {
		fmt.Fprintf(r.out, "%sSnapback: %s-%s is not legal%s\n", display.Yellow, from, to, display.Reset)
	}
	s.View().Flush()
	return err
}

func moveHandler(s Session, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: move <uci-move>")
	}
	mc, err := core.ParseMoveCode(args[0])
	if err != nil {
		return err
	}
	promo := mc.Promotion
	if promo == core.NoPiece {
		promo = core.Queen
	}
	err = run(s, func() error {
		return s.Controller().ExecuteLocalMove(mc.From, mc.To, promo)
	})
	s.View().Flush()
	return err
}

func newGameHandler(s Session, args []string) error {
	return run(s, func() error { return s.Manager().NewGame() })
}

func takebackHandler(s Session, args []string) error {
	return run(s, func() error { return s.Manager().Takeback() })
}

func colorHandler(s Session, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: color <white|black>")
	}
	color, err := core.ParseColor(args[0])
	if err != nil {
		return err
	}
	return run(s, func() error { return s.Manager().SetPlayerColor(color) })
}

func difficultyHandler(s Session, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: difficulty <easy|medium|hard>")
	}
	d, err := core.ParseDifficulty(args[0])
	if err != nil {
		return err
	}
	return run(s, func() error { return s.Manager().SetDifficulty(d) })
}

func themeHandler(s Session, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: theme <off|brown|green|gray>")
	}
	theme, err := display.ParseTheme(args[0])
	if err != nil {
		return err
	}
	if err := s.View().SetTheme(theme); err != nil {
		return err
	}
	s.View().Render()
	return nil
}

func showBoardHandler(s Session, args []string) error {
	return run(s, func() error {
		s.Controller().Refresh()
		return nil
	})
}

func flipHandler(s Session, args []string) error {
	err := run(s, func() error {
		s.Controller().Flip()
		return nil
	})
	s.View().Flush()
	return err
}

func (r *Registry) historyHandler(s Session, args []string) error {
	return run(s, func() error {
		display.PrintHistory(r.out, s.Controller().History(), core.ColorWhite)
		return nil
	})
}

func (r *Registry) statusHandler(s Session, args []string) error {
	return run(s, func() error {
		ctl := s.Controller()
		cfg := ctl.Config()
		st := ctl.Status()

		fmt.Fprintf(r.out, "%sSession:%s\n", display.Cyan, display.Reset)
		fmt.Fprintf(r.out, "  Playing:    %s\n", display.ColorForTurn(cfg.PlayerColor))
		fmt.Fprintf(r.out, "  Difficulty: %s\n", cfg.Difficulty)
		fmt.Fprintf(r.out, "  Turn:       %s\n", display.ColorForTurn(st.Turn))
		fmt.Fprintf(r.out, "  Moves:      %d\n", ctl.MoveCount())
		fmt.Fprintf(r.out, "  Takeback:   %t\n", ctl.CanTakeback())
		fmt.Fprintf(r.out, "  Sync:       %s", ctl.State())
		if p := ctl.Pending(); p.Kind != controller.RequestNone {
			fmt.Fprintf(r.out, " (%s", p.Kind)
			if p.Move != nil {
				fmt.Fprintf(r.out, " %s", p.Move.Code())
			}
			fmt.Fprint(r.out, ")")
		}
		fmt.Fprintln(r.out)
		if sel, ok := ctl.Selection().Selected(); ok {
			fmt.Fprintf(r.out, "  Selected:   %s\n", sel)
		}
		if res := ctl.Result(); res != "" {
			fmt.Fprintf(r.out, "  Result:     %s%s%s\n", display.Magenta, res, display.Reset)
		}
		fmt.Fprintf(r.out, "  %s\n", st.Text())
		return nil
	})
}

func (r *Registry) statsHandler(s Session, args []string) error {
	st, err := s.Stats()
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "%sResults:%s\n", display.Cyan, display.Reset)
	fmt.Fprintf(r.out, "  Games:  %d\n", st.GamesPlayed)
	fmt.Fprintf(r.out, "  Wins:   %d\n", st.Wins)
	fmt.Fprintf(r.out, "  Losses: %d\n", st.Losses)
	fmt.Fprintf(r.out, "  Draws:  %d\n", st.Draws)
	fmt.Fprintf(r.out, "  Rate:   %.1f%%\n", st.WinRate())

	if len(st.WinsByDiff) > 0 {
		levels := make([]string, 0, len(st.WinsByDiff))
		for d := range st.WinsByDiff {
			levels = append(levels, d)
		}
		sort.Strings(levels)
		for _, d := range levels {
			fmt.Fprintf(r.out, "  Wins on %-7s %d\n", d+":", st.WinsByDiff[d])
		}
	}
	return nil
}
