package tui

import (
	"fmt"

	"github.com/benbeisheim/chessrules/internal/model"
	"github.com/gdamore/tcell/v2"
)

const (
	squareWidth = 3
	originX     = 2 // leaves room for rank labels
	originY     = 1 // leaves room for file labels
)

var glyphs = map[model.Color]map[model.Kind]rune{
	model.White: {
		model.King: '♔', model.Queen: '♕', model.Rook: '♖',
		model.Bishop: '♗', model.Knight: '♘', model.Pawn: '♙',
	},
	model.Black: {
		model.King: '♚', model.Queen: '♛', model.Rook: '♜',
		model.Bishop: '♝', model.Knight: '♞', model.Pawn: '♟',
	},
}

type palette struct {
	light, dark, selected, target tcell.Color
}

// palettes are keyed by the same theme names the text client accepts.
var palettes = map[string]palette{
	"brown": {
		light:    tcell.NewRGBColor(0xf0, 0xd9, 0xb5),
		dark:     tcell.NewRGBColor(0xb5, 0x88, 0x63),
		selected: tcell.ColorIndianRed,
		target:   tcell.NewRGBColor(0x9f, 0xc0, 0x6a),
	},
	"green": {
		light:    tcell.NewRGBColor(0xee, 0xee, 0xd2),
		dark:     tcell.NewRGBColor(0x76, 0x96, 0x56),
		selected: tcell.ColorGold,
		target:   tcell.NewRGBColor(0xba, 0xca, 0x44),
	},
	"gray": {
		light:    tcell.ColorSilver,
		dark:     tcell.ColorGray,
		selected: tcell.ColorSteelBlue,
		target:   tcell.ColorLightSkyBlue,
	},
	"off": {
		light:    tcell.ColorWhite,
		dark:     tcell.ColorDarkGray,
		selected: tcell.ColorYellow,
		target:   tcell.ColorAqua,
	},
}

const defaultTheme = "brown"

// App draws a match on a terminal screen. The first click selects one of
// the mover's pieces, the second plays it.
type App struct {
	screen   tcell.Screen
	match    *model.Match
	selected *model.Position
	targets  []model.Position
	status   string
	colors   palette
}

// New draws match on screen in the named theme; unknown themes fall back
// to brown.
func New(screen tcell.Screen, match *model.Match, theme string) *App {
	colors, ok := palettes[theme]
	if !ok {
		colors = palettes[defaultTheme]
	}
	return &App{screen: screen, match: match, colors: colors}
}

// Run processes events until Esc, q or Ctrl-C. The screen must already be
// initialised; Run does not finalise it.
func (a *App) Run() error {
	a.screen.EnableMouse()
	a.draw()
	for {
		switch ev := a.screen.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventResize:
			a.screen.Sync()
			a.draw()
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
				return nil
			}
		case *tcell.EventMouse:
			if ev.Buttons()&tcell.Button1 == 0 {
				continue
			}
			if pos, ok := cellAt(ev.Position()); ok {
				a.Click(pos)
				a.draw()
			}
		}
	}
}

// cellAt maps screen coordinates onto a board square.
func cellAt(x, y int) (model.Position, bool) {
	if x < originX || y < originY {
		return model.Position{}, false
	}
	pos := model.Position{Row: y - originY, Col: (x - originX) / squareWidth}
	return pos, pos.Valid()
}

// Click handles one click on pos: clicking the selected square deselects
// it, clicking an own piece (re)selects, anything else attempts the move.
func (a *App) Click(pos model.Position) {
	switch {
	case a.selected != nil && *a.selected == pos:
		a.clearSelection()
		a.status = ""
	case a.selected == nil || a.ownPiece(pos):
		a.selectPiece(pos)
	default:
		from := *a.selected
		a.clearSelection()
		if err := a.match.PlayTurn(from, pos); err != nil {
			a.status = err.Error()
			return
		}
		a.status = ""
	}
}

func (a *App) ownPiece(pos model.Position) bool {
	piece, ok := a.match.Board().Occupant(pos)
	return ok && piece.Color == a.match.CurrentPlayerColor()
}

func (a *App) selectPiece(pos model.Position) {
	if !a.ownPiece(pos) {
		a.clearSelection()
		a.status = fmt.Sprintf("select a %s piece", a.match.CurrentPlayerColor())
		return
	}
	a.selected = &pos
	a.targets = a.match.LegalDestinations(pos)
	a.status = ""
}

func (a *App) clearSelection() {
	a.selected = nil
	a.targets = nil
}

func (a *App) isTarget(pos model.Position) bool {
	for _, t := range a.targets {
		if t == pos {
			return true
		}
	}
	return false
}

func (a *App) draw() {
	a.screen.Clear()
	labelStyle := tcell.StyleDefault

	for col := 0; col < model.BoardSize; col++ {
		a.screen.SetContent(originX+col*squareWidth+1, 0, rune('a'+col), nil, labelStyle)
	}

	view := a.match.Board()
	for row := 0; row < model.BoardSize; row++ {
		a.screen.SetContent(0, originY+row, rune('0'+model.BoardSize-row), nil, labelStyle)
		for col := 0; col < model.BoardSize; col++ {
			pos := model.Position{Row: row, Col: col}
			style := tcell.StyleDefault.Background(a.squareColor(pos)).Foreground(tcell.ColorBlack)

			glyph := ' '
			if piece, ok := view.Occupant(pos); ok {
				glyph = glyphs[piece.Color][piece.Kind]
			} else if a.isTarget(pos) {
				glyph = '·'
			}

			x := originX + col*squareWidth
			a.screen.SetContent(x, originY+row, ' ', nil, style)
			a.screen.SetContent(x+1, originY+row, glyph, nil, style)
			a.screen.SetContent(x+2, originY+row, ' ', nil, style)
		}
	}

	a.drawText(0, originY+model.BoardSize+1, fmt.Sprintf("%s to move", a.match.CurrentPlayerColor()))
	a.drawText(0, originY+model.BoardSize+2, a.status)
	a.drawText(0, originY+model.BoardSize+3, "click a piece, then its destination; q or Esc quits")
	a.screen.Show()
}

func (a *App) squareColor(pos model.Position) tcell.Color {
	switch {
	case a.selected != nil && *a.selected == pos:
		return a.colors.selected
	case a.isTarget(pos):
		return a.colors.target
	case (pos.Row+pos.Col)%2 == 0:
		return a.colors.light
	default:
		return a.colors.dark
	}
}

func (a *App) drawText(x, y int, text string) {
	for i, r := range []rune(text) {
		a.screen.SetContent(x+i, y, r, nil, tcell.StyleDefault)
	}
}
