package model

import (
	"errors"
	"fmt"
)

// Move rejection reasons. Every failure from Board.MovePiece or
// Match.PlayTurn wraps exactly one of these.
var (
	ErrEmptySource        = errors.New("no piece at start square")
	ErrWrongTurn          = errors.New("not your piece")
	ErrIllegalDestination = errors.New("illegal destination")
	ErrInvalidCoordinate  = errors.New("invalid coordinate")
)

// MoveError carries the attempted move alongside the rejection reason.
type MoveError struct {
	Err   error
	From  Position
	To    Position
	Piece *Piece // nil when the start square was empty
}

func (e *MoveError) Error() string {
	if e.Piece != nil {
		return fmt.Sprintf("%s %s -> %s: %v", e.Piece.Kind, e.From, e.To, e.Err)
	}
	return fmt.Sprintf("%s -> %s: %v", e.From, e.To, e.Err)
}

func (e *MoveError) Unwrap() error {
	return e.Err
}

func moveError(err error, from, to Position, piece *Piece) *MoveError {
	return &MoveError{Err: err, From: from, To: to, Piece: piece}
}
