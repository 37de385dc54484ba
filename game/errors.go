package game

import "errors"

var (
	// ErrInvalidMove is returned when a move is not among the valid moves of
	// the source cell's owner.
	ErrInvalidMove = errors.New("invalid move")
	// ErrConfiguration is returned for non-positive dimensions, malformed
	// boards and non-positive search budgets.
	ErrConfiguration = errors.New("invalid configuration")
)
