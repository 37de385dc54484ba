package game

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

var sideColors = map[Side]string{
	Human: "4", // Blue
	AI:    "1", // Red
}

// Render writes the board to w, one row per line as "(owner,dice)" tokens.
// Owners are coloured according to out's profile; termenv.Ascii renders
// plain text.
func Render(w io.Writer, gs *GameState, out *termenv.Output) error {
	var b strings.Builder
	for _, row := range gs.Grid() {
		tokens := make([]string, len(row))
		for i, cell := range row {
			owner := out.String(string(cell.Owner)).Foreground(out.Color(sideColors[cell.Owner]))
			tokens[i] = fmt.Sprintf("(%s,%d)", owner, cell.Dice)
		}
		b.WriteString(strings.Join(tokens, "  "))
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}
