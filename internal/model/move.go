package model

import "fmt"

// Ply is one side's half of a move as recorded in a player's history.
type Ply struct {
	Piece    Piece    `json:"piece"`
	From     Position `json:"from"`
	To       Position `json:"to"`
	Captured *Piece   `json:"capturedPiece"`
	Notation string   `json:"notation"`
}

// Move pairs white's ply with black's reply; BlackPly is nil until black moves.
type Move struct {
	WhitePly Ply  `json:"whitePly"`
	BlackPly *Ply `json:"blackPly"`
}

type SimpleMove struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}

func newPly(piece Piece, from, to Position, captured *Piece) Ply {
	return Ply{
		Piece:    piece,
		From:     from,
		To:       to,
		Captured: captured,
		Notation: notation(piece, from, to, captured != nil),
	}
}

// notation renders a ply in short algebraic form without check markers,
// e.g. "e4", "Nf3", "exd5", "Bxf7".
func notation(piece Piece, from, to Position, capture bool) string {
	prefix := piece.Kind.notation()
	if piece.Kind == Pawn && from.Col != to.Col {
		prefix = from.file()
	}
	captureMark := ""
	if capture {
		captureMark = "x"
	}
	return fmt.Sprintf("%s%s%s", prefix, captureMark, to)
}
