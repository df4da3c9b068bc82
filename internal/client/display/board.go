// Package display renders the board, status line and messages to a terminal.
package display

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"chessai/internal/client/ledger"
	"chessai/internal/client/selection"
	"chessai/internal/core"
)

type Theme string

const (
	ThemeOff   Theme = "off"
	ThemeBrown Theme = "brown"
	ThemeGreen Theme = "green"
	ThemeGray  Theme = "gray"
)

type themeColors struct {
	lightBg string
	darkBg  string
	white   string
	black   string
}

var themes = map[Theme]themeColors{
	ThemeOff: {},
	ThemeBrown: {
		lightBg: "\033[48;5;230m", // Beige
		darkBg:  "\033[48;5;94m",  // Brown
		white:   "\033[97m",
		black:   "\033[30m",
	},
	ThemeGreen: {
		lightBg: "\033[48;5;157m", // Light green
		darkBg:  "\033[48;5;22m",  // Dark green
		white:   "\033[97m",
		black:   "\033[30m",
	},
	ThemeGray: {
		lightBg: "\033[48;5;251m", // Light gray
		darkBg:  "\033[48;5;240m", // Dark gray
		white:   "\033[97m",
		black:   "\033[30m",
	},
}

var highlightBg = map[selection.Highlight]string{
	selection.HighlightOrigin:  "\033[48;5;220m",
	selection.HighlightQuiet:   "\033[48;5;114m",
	selection.HighlightCapture: "\033[48;5;203m",
}

// Markers used when the theme has no colors.
var highlightMark = map[selection.Highlight]byte{
	selection.HighlightNone:    ' ',
	selection.HighlightOrigin:  '*',
	selection.HighlightQuiet:   '+',
	selection.HighlightCapture: 'x',
}

func ParseTheme(s string) (Theme, error) {
	t := Theme(strings.ToLower(s))
	if _, ok := themes[t]; !ok {
		return "", fmt.Errorf("invalid theme: %s (use: off, brown, green, gray)", s)
	}
	return t, nil
}

type cell struct {
	piece byte
	mark  selection.Highlight
}

// Terminal is the board and status view. Its cell table covers all 64
// squares from construction, indexed by core.Square.Index.
type Terminal struct {
	mu          sync.Mutex
	out         io.Writer
	theme       Theme
	cells       [64]cell
	orientation core.Color
	status      core.Status
	history     []ledger.Entry
	canTakeback bool
	dirty       bool
}

func NewTerminal(out io.Writer, theme Theme) *Terminal {
	if _, ok := themes[theme]; !ok || !Enabled() {
		theme = ThemeOff
	}
	return &Terminal{
		out:         out,
		theme:       theme,
		orientation: core.ColorWhite,
	}
}

func (t *Terminal) SetTheme(theme Theme) error {
	if _, ok := themes[theme]; !ok {
		return fmt.Errorf("invalid theme: %s (use: off, brown, green, gray)", theme)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.theme = theme
	t.dirty = true
	return nil
}

// SetPosition loads piece placement from a FEN string.
func (t *Terminal) SetPosition(fen string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	placement, _, _ := strings.Cut(fen, " ")
	for i := range t.cells {
		t.cells[i].piece = 0
	}
	rank := 7
	file := 0
	for _, ch := range placement {
		switch {
		case ch == '/':
			rank--
			file = 0
		case ch >= '1' && ch <= '8':
			file += int(ch - '0')
		default:
			if rank >= 0 && file < 8 {
				t.cells[rank*8+file].piece = byte(ch)
			}
			file++
		}
	}
	t.dirty = true
}

func (t *Terminal) SetOrientation(color core.Color) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.orientation = color
	t.dirty = true
}

func (t *Terminal) SetHighlight(sq core.Square, h selection.Highlight) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cells[sq.Index()].mark = h
	t.dirty = true
}

// ShowStatus records the status and redraws the board with it.
func (t *Terminal) ShowStatus(st core.Status) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = st
	t.render()
}

func (t *Terminal) ShowHistory(entries []ledger.Entry, canTakeback bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.history = entries
	t.canTakeback = canTakeback
	t.dirty = true
}

func (t *Terminal) ShowResult(result string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "\n%s*** %s ***%s\n", Magenta, result, Reset)
}

func (t *Terminal) Alert(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "%s! %s%s\n", Red, msg, Reset)
}

// Flush redraws the board if anything changed since the last draw.
func (t *Terminal) Flush() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.dirty {
		t.render()
	}
}

// Render redraws unconditionally.
func (t *Terminal) Render() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.render()
}

func (t *Terminal) render() {
	fmt.Fprint(t.out, t.boardString())
	fmt.Fprintf(t.out, "%s\n", t.statusLine())
	t.dirty = false
}

func (t *Terminal) statusLine() string {
	var sb strings.Builder
	switch {
	case t.status.GameOver():
		sb.WriteString(Magenta + t.status.Text() + Reset)
	case t.status.Check:
		sb.WriteString(Red + t.status.Text() + Reset)
	default:
		sb.WriteString(t.status.Text())
	}
	sb.WriteString(fmt.Sprintf("\n%sMoves: %d%s", Cyan, len(t.history), Reset))
	if len(t.history) > 0 {
		sb.WriteString("  " + HistoryLine(t.history))
	}
	if t.canTakeback {
		sb.WriteString(fmt.Sprintf("  %s[takeback]%s", Green, Reset))
	}
	if t.status.FEN != "" {
		sb.WriteString(fmt.Sprintf("\n%sFEN: %s%s", White, t.status.FEN, Reset))
	}
	return sb.String()
}

func (t *Terminal) boardString() string {
	theme := themes[t.theme]
	files := "a b c d e f g h"
	ranks := []int{7, 6, 5, 4, 3, 2, 1, 0}
	fileOrder := []int{0, 1, 2, 3, 4, 5, 6, 7}
	if t.orientation == core.ColorBlack {
		files = "h g f e d c b a"
		ranks = []int{0, 1, 2, 3, 4, 5, 6, 7}
		fileOrder = []int{7, 6, 5, 4, 3, 2, 1, 0}
	}

	var sb strings.Builder
	sb.WriteString("\n   " + files + "\n")
	for _, r := range ranks {
		sb.WriteString(fmt.Sprintf("%d  ", r+1))
		for _, f := range fileOrder {
			sq := core.AllSquares[r*8+f]
			c := t.cells[sq.Index()]
			glyph := byte('.')
			if c.piece != 0 {
				glyph = c.piece
			}

			if t.theme == ThemeOff {
				sb.WriteByte(glyph)
				sb.WriteByte(highlightMark[c.mark])
				continue
			}

			bg := theme.darkBg
			if sq.IsLight() {
				bg = theme.lightBg
			}
			if hl, ok := highlightBg[c.mark]; ok {
				bg = hl
			}
			if c.piece == 0 {
				sb.WriteString(fmt.Sprintf("%s  %s", bg, Reset))
				continue
			}
			fg := theme.black
			if c.piece >= 'A' && c.piece <= 'Z' {
				fg = theme.white
			}
			sb.WriteString(fmt.Sprintf("%s%s%c %s", bg, fg, c.piece, Reset))
		}
		sb.WriteString(fmt.Sprintf(" %d\n", r+1))
	}
	sb.WriteString("   " + files + "\n")
	return sb.String()
}
