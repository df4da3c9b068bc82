package display

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"chessai/internal/client/ledger"
	"chessai/internal/core"
)

// PrettyPrintJSON prints formatted JSON
func PrettyPrintJSON(w io.Writer, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(w, "%sError formatting JSON: %s%s\n", Red, err.Error(), Reset)
		return
	}
	fmt.Fprintln(w, string(data))
}

// ColorForTurn returns colored turn indicator
func ColorForTurn(c core.Color) string {
	if c == core.ColorWhite {
		return Blue + "White" + Reset
	}
	return Red + "Black" + Reset
}

// HistoryLine renders entries as "1. e4 e5 2. Nf3".
func HistoryLine(entries []ledger.Entry) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, e.Text())
	}
	return strings.Join(parts, " ")
}

// PrintHistory writes one row per entry with the actor that played it.
func PrintHistory(w io.Writer, entries []ledger.Entry, startColor core.Color) {
	if len(entries) == 0 {
		fmt.Fprintf(w, "No moves yet. %s to start!\n", startColor.Name())
		return
	}
	for _, e := range entries {
		who := Cyan + "you" + Reset
		if e.Actor == ledger.ActorAI {
			who = Magenta + "ai " + Reset
		}
		text := e.Text()
		if e.Color == core.ColorBlack {
			text = fmt.Sprintf("%d... %s", e.MoveNumber, e.SAN)
		}
		fmt.Fprintf(w, "  %s  %s\n", who, text)
	}
}
