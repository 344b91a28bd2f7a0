package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/benbeisheim/chessrules/internal/model"
	"github.com/chzyer/readline"
	"golang.org/x/term"
)

type CommandType int

const (
	CmdNone CommandType = iota
	CmdMove
	CmdMoves
	CmdBoard
	CmdHistory
	CmdHelp
	CmdQuit
)

type Command struct {
	Type CommandType
	Args []string
	Raw  string
}

// ParseCommand turns one input line into a command. Anything that is not a
// keyword is treated as a move.
func ParseCommand(input string) Command {
	input = strings.TrimSpace(input)
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return Command{Type: CmdNone}
	}

	args := parts[1:]
	switch strings.ToLower(parts[0]) {
	case "moves":
		return Command{Type: CmdMoves, Args: args, Raw: input}
	case "board":
		return Command{Type: CmdBoard, Raw: input}
	case "history":
		return Command{Type: CmdHistory, Raw: input}
	case "help", "?":
		return Command{Type: CmdHelp, Raw: input}
	case "quit", "exit":
		return Command{Type: CmdQuit, Raw: input}
	default:
		return Command{Type: CmdMove, Args: parts, Raw: input}
	}
}

// parseMove accepts "e2 e4" and "e2e4".
func parseMove(args []string) (model.Position, model.Position, error) {
	if len(args) == 1 && len(args[0]) == 4 {
		args = []string{args[0][:2], args[0][2:]}
	}
	if len(args) != 2 {
		return model.Position{}, model.Position{}, errors.New("please enter a move as: <from> <to>  e.g.,  e2 e4")
	}
	from, err := model.ParsePosition(args[0])
	if err != nil {
		return model.Position{}, model.Position{}, err
	}
	to, err := model.ParsePosition(args[1])
	if err != nil {
		return model.Position{}, model.Position{}, err
	}
	return from, to, nil
}

// CLI plays a local two-player match on a terminal.
type CLI struct {
	match  *model.Match
	output io.Writer
	theme  Theme
}

func New(match *model.Match, output io.Writer, theme Theme) *CLI {
	if _, ok := themes[theme]; !ok {
		theme = ThemeOff
	}
	return &CLI{match: match, output: output, theme: theme}
}

// ColorSupported reports whether w is a terminal that can show themes.
func ColorSupported(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (c *CLI) Prompt() string {
	return fmt.Sprintf("%s to move > ", c.match.CurrentPlayerColor())
}

// Execute runs one command and reports whether the session should end.
func (c *CLI) Execute(cmd Command) (quit bool) {
	switch cmd.Type {
	case CmdNone:
	case CmdQuit:
		c.println("Goodbye!")
		return true
	case CmdHelp:
		c.ShowHelp()
	case CmdBoard:
		c.DisplayBoard(nil)
	case CmdHistory:
		c.ShowHistory()
	case CmdMoves:
		c.showDestinations(cmd.Args)
	case CmdMove:
		from, to, err := parseMove(cmd.Args)
		if err != nil {
			c.ShowError(err)
			return false
		}
		if err := c.match.PlayTurn(from, to); err != nil {
			c.ShowError(err)
			return false
		}
		c.DisplayBoard(nil)
	}
	return false
}

func (c *CLI) showDestinations(args []string) {
	if len(args) != 1 {
		c.ShowError(errors.New("usage: moves <square>"))
		return
	}
	pos, err := model.ParsePosition(args[0])
	if err != nil {
		c.ShowError(err)
		return
	}
	destinations := c.match.LegalDestinations(pos)
	if len(destinations) == 0 {
		c.println(fmt.Sprintf("%s has no moves", pos))
		return
	}
	squares := make([]string, len(destinations))
	for i, d := range destinations {
		squares[i] = d.String()
	}
	c.println(fmt.Sprintf("%s: %s", pos, strings.Join(squares, " ")))
	c.DisplayBoard(destinations)
}

// Run reads commands with line editing until quit or EOF.
func (c *CLI) Run(historyFile string) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          c.Prompt(),
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdout:          c.output,
	})
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer rl.Close()

	c.ShowWelcome()
	c.DisplayBoard(nil)
	for {
		rl.SetPrompt(c.Prompt())
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if c.Execute(ParseCommand(line)) {
			return nil
		}
	}
}

// Demo plays e4 e5 Nf3 Nc6, printing the board after each move.
func (c *CLI) Demo() error {
	moves := [][2]string{{"e2", "e4"}, {"e7", "e5"}, {"g1", "f3"}, {"b8", "c6"}}

	c.DisplayBoard(nil)
	for _, m := range moves {
		from, to, err := parseMove(m[:])
		if err != nil {
			return err
		}
		mover := c.match.CurrentPlayerColor()
		if err := c.match.PlayTurn(from, to); err != nil {
			return fmt.Errorf("demo move %s %s: %w", m[0], m[1], err)
		}
		c.println(fmt.Sprintf("%s plays %s", mover, lastNotation(c.match)))
		c.DisplayBoard(nil)
	}
	return nil
}

func lastNotation(m *model.Match) string {
	moves := m.Moves()
	if len(moves) == 0 {
		return ""
	}
	last := moves[len(moves)-1]
	if last.BlackPly != nil {
		return last.BlackPly.Notation
	}
	return last.WhitePly.Notation
}

func (c *CLI) println(msg string) {
	fmt.Fprintln(c.output, msg)
}

func (c *CLI) ShowError(err error) {
	c.println(fmt.Sprintf("Move failed: %v", err))
}

func (c *CLI) ShowWelcome() {
	c.println("Welcome to CLI Chess! Enter moves in algebraic coordinate form, e.g., 'e2 e4'.")
	c.println("Type 'help' for commands or 'quit' to exit.")
	c.println("")
}

func (c *CLI) ShowHelp() {
	c.println(`Commands:
  <from> <to>      - Make a move (e.g., e2 e4 or e2e4)
  moves <square>   - List where the piece on a square can go
  board            - Show the board again
  history          - Show the moves played so far
  quit/exit        - Exit the program
  help/?           - Show this help message`)
}

func (c *CLI) ShowHistory() {
	moves := c.match.Moves()
	if len(moves) == 0 {
		c.println("No moves yet.")
		return
	}
	for i, move := range moves {
		black := "..."
		if move.BlackPly != nil {
			black = move.BlackPly.Notation
		}
		c.println(fmt.Sprintf("%d. %s %s", i+1, move.WhitePly.Notation, black))
	}
}
