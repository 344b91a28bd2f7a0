package model

import "unicode"

type Kind string

const (
	King   Kind = "king"
	Queen  Kind = "queen"
	Rook   Kind = "rook"
	Bishop Kind = "bishop"
	Knight Kind = "knight"
	Pawn   Kind = "pawn"
)

// Letter is the uppercase display letter for the kind.
func (k Kind) Letter() rune {
	switch k {
	case King:
		return 'K'
	case Queen:
		return 'Q'
	case Rook:
		return 'R'
	case Bishop:
		return 'B'
	case Knight:
		return 'N'
	case Pawn:
		return 'P'
	}
	return '?'
}

// notation is the SAN prefix; pawns have none.
func (k Kind) notation() string {
	if k == Pawn {
		return ""
	}
	return string(k.Letter())
}

type Color string

const (
	White Color = "white"
	Black Color = "black"
)

func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

// Piece is an immutable (kind, color) pair.
type Piece struct {
	Kind  Kind  `json:"type"`
	Color Color `json:"color"`
}

// Symbol returns the display letter, uppercase for white and lowercase for black.
func (p Piece) Symbol() rune {
	if p.Color == White {
		return p.Kind.Letter()
	}
	return unicode.ToLower(p.Kind.Letter())
}

// BoardView is the read-only access a piece gets while computing its moves.
type BoardView interface {
	Occupant(pos Position) (Piece, bool)
	IsEmpty(pos Position) bool
	IsEnemy(pos Position, color Color) bool
	CollectLineMoves(pos Position, color Color, dirs []Position) []Position
}

var (
	rookDirs   = []Position{{Row: 1, Col: 0}, {Row: -1, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: -1}}
	bishopDirs = []Position{{Row: 1, Col: 1}, {Row: -1, Col: -1}, {Row: 1, Col: -1}, {Row: -1, Col: 1}}
	queenDirs  = append(append([]Position{}, rookDirs...), bishopDirs...)
	kingDirs   = queenDirs
	knightDirs = []Position{{Row: 2, Col: 1}, {Row: 2, Col: -1}, {Row: -2, Col: 1}, {Row: -2, Col: -1}, {Row: 1, Col: 2}, {Row: 1, Col: -2}, {Row: -1, Col: 2}, {Row: -1, Col: -2}}
)

// LegalDestinations lists every cell the piece standing at pos may move to.
// Only movement geometry and occupancy are considered; a move that leaves
// the own king attacked is still listed.
func (p Piece) LegalDestinations(pos Position, board BoardView) []Position {
	switch p.Kind {
	case King:
		return p.stepMoves(pos, board, kingDirs)
	case Knight:
		return p.stepMoves(pos, board, knightDirs)
	case Rook:
		return board.CollectLineMoves(pos, p.Color, rookDirs)
	case Bishop:
		return board.CollectLineMoves(pos, p.Color, bishopDirs)
	case Queen:
		return board.CollectLineMoves(pos, p.Color, queenDirs)
	case Pawn:
		return p.pawnMoves(pos, board)
	default:
		return nil
	}
}

func (p Piece) stepMoves(pos Position, board BoardView, dirs []Position) []Position {
	moves := []Position{}
	for _, dir := range dirs {
		target := pos.offset(dir)
		if target.Valid() && (board.IsEmpty(target) || board.IsEnemy(target, p.Color)) {
			moves = append(moves, target)
		}
	}
	return moves
}

func (p Piece) pawnMoves(pos Position, board BoardView) []Position {
	moves := []Position{}
	dir, startRow := -1, 6
	if p.Color == Black {
		dir, startRow = 1, 1
	}
	forward := Position{Row: pos.Row + dir, Col: pos.Col}
	if !forward.Valid() {
		return moves
	}
	if board.IsEmpty(forward) {
		moves = append(moves, forward)
		double := Position{Row: forward.Row + dir, Col: pos.Col}
		if pos.Row == startRow && board.IsEmpty(double) {
			moves = append(moves, double)
		}
	}
	// Captures stay on the single-step row even when a double step exists.
	for _, dc := range []int{-1, 1} {
		target := Position{Row: forward.Row, Col: pos.Col + dc}
		if target.Valid() && board.IsEnemy(target, p.Color) {
			moves = append(moves, target)
		}
	}
	return moves
}
