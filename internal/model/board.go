package model

import (
	"log"
	"strings"
)

// Snapshot is a copy of the grid for rendering; nil cells are empty.
type Snapshot [BoardSize][BoardSize]*Piece

// Board owns the 8x8 grid. MovePiece is the only mutating operation.
type Board struct {
	cells  [BoardSize][BoardSize]*Piece
	logger *log.Logger
}

var backRank = [BoardSize]Kind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewBoard returns a board in the standard starting layout.
func NewBoard(logger *log.Logger) *Board {
	if logger == nil {
		logger = defaultLogger()
	}
	board := &Board{logger: logger}
	for col := 0; col < BoardSize; col++ {
		board.cells[0][col] = &Piece{Kind: backRank[col], Color: Black}
		board.cells[1][col] = &Piece{Kind: Pawn, Color: Black}
		board.cells[6][col] = &Piece{Kind: Pawn, Color: White}
		board.cells[7][col] = &Piece{Kind: backRank[col], Color: White}
	}
	return board
}

// NewEmptyBoard returns a board with no pieces, for setting up positions.
func NewEmptyBoard(logger *log.Logger) *Board {
	if logger == nil {
		logger = defaultLogger()
	}
	return &Board{logger: logger}
}

// Place puts piece on pos, replacing any occupant. It exists to set up
// positions before play and is not a move.
func (b *Board) Place(pos Position, piece Piece) {
	if !pos.Valid() {
		return
	}
	b.cells[pos.Row][pos.Col] = &piece
}

func (b *Board) Occupant(pos Position) (Piece, bool) {
	if !pos.Valid() || b.cells[pos.Row][pos.Col] == nil {
		return Piece{}, false
	}
	return *b.cells[pos.Row][pos.Col], true
}

// IsEmpty reports whether pos is on the board and unoccupied.
func (b *Board) IsEmpty(pos Position) bool {
	return pos.Valid() && b.cells[pos.Row][pos.Col] == nil
}

// IsEnemy reports whether pos holds a piece whose color differs from color.
func (b *Board) IsEnemy(pos Position, color Color) bool {
	piece, ok := b.Occupant(pos)
	return ok && piece.Color != color
}

// CollectLineMoves walks each direction from pos until the edge, a friendly
// piece, or an enemy piece; the enemy cell is included and ends the ray.
func (b *Board) CollectLineMoves(pos Position, color Color, dirs []Position) []Position {
	moves := []Position{}
	for _, dir := range dirs {
		target := pos.offset(dir)
		for target.Valid() {
			if b.IsEmpty(target) {
				moves = append(moves, target)
			} else if b.IsEnemy(target, color) {
				moves = append(moves, target)
				break
			} else {
				break
			}
			target = target.offset(dir)
		}
	}
	return moves
}

// LegalDestinations returns the destination set of the piece on pos, or nil
// when pos is empty.
func (b *Board) LegalDestinations(pos Position) []Position {
	piece, ok := b.Occupant(pos)
	if !ok {
		return nil
	}
	return piece.LegalDestinations(pos, b)
}

// MovePiece relocates the piece on start to end, capturing whatever stood
// there. The board is unchanged when an error is returned.
func (b *Board) MovePiece(start, end Position) error {
	if !start.Valid() || !end.Valid() {
		b.logger.Printf("rejected %s -> %s: off the board", start, end)
		return moveError(ErrInvalidCoordinate, start, end, nil)
	}
	piece := b.cells[start.Row][start.Col]
	if piece == nil {
		b.logger.Printf("rejected %s -> %s: no piece at start square", start, end)
		return moveError(ErrEmptySource, start, end, nil)
	}
	if !containsPosition(piece.LegalDestinations(start, b), end) {
		b.logger.Printf("rejected %s -> %s: illegal move for %s", start, end, piece.Kind)
		return moveError(ErrIllegalDestination, start, end, piece)
	}
	b.cells[end.Row][end.Col] = piece
	b.cells[start.Row][start.Col] = nil
	return nil
}

func (b *Board) Snapshot() Snapshot {
	var snap Snapshot
	for row := range b.cells {
		for col, piece := range b.cells[row] {
			if piece != nil {
				p := *piece
				snap[row][col] = &p
			}
		}
	}
	return snap
}

// String renders one line per row, symbols separated by spaces, '.' for empty.
func (b *Board) String() string {
	return b.Snapshot().String()
}

func (s Snapshot) String() string {
	rows := make([]string, 0, BoardSize)
	for _, row := range s {
		cells := make([]string, 0, BoardSize)
		for _, piece := range row {
			if piece == nil {
				cells = append(cells, ".")
			} else {
				cells = append(cells, string(piece.Symbol()))
			}
		}
		rows = append(rows, strings.Join(cells, " "))
	}
	return strings.Join(rows, "\n")
}
