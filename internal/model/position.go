package model

import (
	"fmt"
	"strings"
)

// BoardSize is the number of rows and columns on the board.
const BoardSize = 8

// Position addresses a cell as (row, col). Row 0 is black's back rank and
// row 7 is white's back rank.
type Position struct {
	Row int `json:"row" validate:"min=0,max=7"`
	Col int `json:"col" validate:"min=0,max=7"`
}

// Valid reports whether p lies on the board.
func (p Position) Valid() bool {
	return p.Row >= 0 && p.Row < BoardSize && p.Col >= 0 && p.Col < BoardSize
}

func (p Position) offset(dir Position) Position {
	return Position{Row: p.Row + dir.Row, Col: p.Col + dir.Col}
}

// String renders p in algebraic form, e.g. (6,4) -> "e2". Off-board
// positions render as "(row,col)".
func (p Position) String() string {
	if !p.Valid() {
		return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
	}
	return fmt.Sprintf("%c%d", 'a'+p.Col, BoardSize-p.Row)
}

func (p Position) file() string {
	return fmt.Sprintf("%c", 'a'+p.Col)
}

// ParsePosition translates algebraic notation ("e2") into a Position.
// Files a-h map to columns 0-7 and ranks 8-1 map to rows 0-7.
func ParsePosition(square string) (Position, error) {
	s := strings.ToLower(strings.TrimSpace(square))
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return Position{}, fmt.Errorf("%w: %q", ErrInvalidCoordinate, square)
	}
	return Position{Row: BoardSize - int(s[1]-'0'), Col: int(s[0] - 'a')}, nil
}

func containsPosition(set []Position, p Position) bool {
	for _, q := range set {
		if q == p {
			return true
		}
	}
	return false
}
