package model

import (
	"io"
	"log"
	"os"
)

// Match drives one game: it owns the board, the two players and whose turn
// it is. A Match is not safe for concurrent use; callers serialize PlayTurn.
type Match struct {
	board    *Board
	players  [2]*Player
	turn     int
	lastMove *SimpleMove
	logger   *log.Logger
}

type Option func(*Match)

// WithLogger routes move rejection diagnostics to logger.
func WithLogger(logger *log.Logger) Option {
	return func(m *Match) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithPlayerNames sets display names for white and black.
func WithPlayerNames(white, black string) Option {
	return func(m *Match) {
		m.players[0].Name = white
		m.players[1].Name = black
	}
}

// WithRatings sets ratings for white and black.
func WithRatings(white, black int) Option {
	return func(m *Match) {
		m.players[0].Rating = &white
		m.players[1].Rating = &black
	}
}

// WithBoard starts the match from a prepared board instead of the standard
// layout.
func WithBoard(board *Board) Option {
	return func(m *Match) {
		if board != nil {
			m.board = board
		}
	}
}

// NewMatch returns a match in the starting position with white to move.
func NewMatch(opts ...Option) *Match {
	m := &Match{
		players: [2]*Player{NewPlayer(White), NewPlayer(Black)},
		logger:  defaultLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.board == nil {
		m.board = NewBoard(m.logger)
	}
	return m
}

func defaultLogger() *log.Logger {
	return log.New(os.Stderr, "model: ", log.LstdFlags)
}

// DiscardLogger is a logger that drops everything, handy for tests and
// front ends that report errors themselves.
func DiscardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func (m *Match) CurrentPlayer() *Player {
	return m.players[m.turn]
}

func (m *Match) CurrentPlayerColor() Color {
	return m.CurrentPlayer().Color
}

// Players returns white and black, in that order.
func (m *Match) Players() [2]*Player {
	return m.players
}

func (m *Match) BoardSnapshot() Snapshot {
	return m.board.Snapshot()
}

// Board exposes the board read-only to renderers.
func (m *Match) Board() BoardView {
	return m.board
}

func (m *Match) String() string {
	return m.board.String()
}

func (m *Match) LegalDestinations(pos Position) []Position {
	return m.board.LegalDestinations(pos)
}

// LastMove is nil before the first successful turn.
func (m *Match) LastMove() *SimpleMove {
	return m.lastMove
}

// PlayTurn moves the current player's piece from start to end and passes
// the turn. The piece on start must belong to the player to move, otherwise
// the board's legality check is never reached. On error the turn is not
// passed.
func (m *Match) PlayTurn(start, end Position) error {
	if !start.Valid() || !end.Valid() {
		return moveError(ErrInvalidCoordinate, start, end, nil)
	}
	piece, ok := m.board.Occupant(start)
	if !ok {
		m.logger.Printf("rejected %s -> %s: no piece at start square", start, end)
		return moveError(ErrEmptySource, start, end, nil)
	}
	if piece.Color != m.CurrentPlayerColor() {
		m.logger.Printf("rejected %s -> %s: not %s's piece", start, end, m.CurrentPlayerColor())
		return moveError(ErrWrongTurn, start, end, &piece)
	}

	var captured *Piece
	if target, ok := m.board.Occupant(end); ok {
		captured = &target
	}
	if err := m.board.MovePiece(start, end); err != nil {
		return err
	}

	m.CurrentPlayer().record(newPly(piece, start, end, captured))
	m.lastMove = &SimpleMove{From: start, To: end}
	m.switchTurn()
	return nil
}

func (m *Match) switchTurn() {
	m.turn = 1 - m.turn
}

// Moves pairs the players' histories into numbered moves.
func (m *Match) Moves() []Move {
	white, black := m.players[0].History, m.players[1].History
	moves := make([]Move, 0, len(white))
	for i, ply := range white {
		move := Move{WhitePly: ply}
		if i < len(black) {
			reply := black[i]
			move.BlackPly = &reply
		}
		moves = append(moves, move)
	}
	return moves
}
