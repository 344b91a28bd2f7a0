package cli

import (
	"fmt"
	"strings"

	"github.com/benbeisheim/chessrules/internal/model"
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
	markBg  string
	white   string
	black   string
	reset   string
}

var themes = map[Theme]themeColors{
	ThemeOff: {},
	ThemeBrown: {
		lightBg: "\033[48;5;230m", // Beige
		darkBg:  "\033[48;5;94m",  // Brown
		markBg:  "\033[48;5;179m",
		white:   "\033[97m",
		black:   "\033[30m",
		reset:   "\033[0m",
	},
	ThemeGreen: {
		lightBg: "\033[48;5;157m", // Light green
		darkBg:  "\033[48;5;22m",  // Dark green
		markBg:  "\033[48;5;186m",
		white:   "\033[97m",
		black:   "\033[30m",
		reset:   "\033[0m",
	},
	ThemeGray: {
		lightBg: "\033[48;5;251m", // Light gray
		darkBg:  "\033[48;5;240m", // Dark gray
		markBg:  "\033[48;5;110m",
		white:   "\033[97m",
		black:   "\033[30m",
		reset:   "\033[0m",
	},
}

// DisplayBoard prints the board with rank and file labels. Squares in
// marked are flagged with '*' (or a highlight color when themed).
func (c *CLI) DisplayBoard(marked []model.Position) {
	theme := themes[c.theme]
	isMarked := make(map[model.Position]bool, len(marked))
	for _, p := range marked {
		isMarked[p] = true
	}

	var sb strings.Builder
	sb.WriteString("\n  a b c d e f g h\n")
	view := c.match.Board()
	for r := 0; r < model.BoardSize; r++ {
		rank := model.BoardSize - r
		sb.WriteString(fmt.Sprintf("%d ", rank))
		for f := 0; f < model.BoardSize; f++ {
			pos := model.Position{Row: r, Col: f}
			piece, occupied := view.Occupant(pos)

			symbol := '.'
			if occupied {
				symbol = piece.Symbol()
			} else if isMarked[pos] {
				symbol = '*'
			}

			if c.theme == ThemeOff {
				sb.WriteString(fmt.Sprintf("%c ", symbol))
				continue
			}

			bg := theme.darkBg
			if (r+f)%2 == 0 {
				bg = theme.lightBg
			}
			if isMarked[pos] {
				bg = theme.markBg
			}
			if !occupied {
				sb.WriteString(fmt.Sprintf("%s  %s", bg, theme.reset))
				continue
			}
			fg := theme.black
			if piece.Color == model.White {
				fg = theme.white
			}
			sb.WriteString(fmt.Sprintf("%s%s%c %s", bg, fg, symbol, theme.reset))
		}
		sb.WriteString(fmt.Sprintf(" %d\n", rank))
	}
	sb.WriteString("  a b c d e f g h\n")

	c.println(sb.String())
}
