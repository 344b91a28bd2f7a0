package service

import "errors"

var (
	ErrMatchNotFound = errors.New("match not found")
	ErrMatchExists   = errors.New("match already exists")
	ErrMatchFull     = errors.New("match is full")
	ErrNotSeated     = errors.New("player is not seated in this match")
	ErrAlreadyQueued = errors.New("player already in queue")

	ErrAlreadyConnected = errors.New("player already connected to this match")
)
