// errors.go defines the error kinds surfaced over the engine boundary.

package engine

import "errors"

var (
	// ErrMalformedNotation is returned when a position or move string
	// violates the notation grammar. The engine keeps its prior state.
	ErrMalformedNotation = errors.New("malformed notation")

	// ErrIllegalMove is returned when a move received over the boundary
	// is not legal in the current position.
	ErrIllegalMove = errors.New("illegal move")

	// ErrProtocolViolation is returned when a command arrives in a state
	// that forbids it, e.g. a new search while one is running.
	ErrProtocolViolation = errors.New("protocol violation")

	// ErrResourceExhaustion is returned when the transposition table
	// cannot be allocated. The previous table stays in use.
	ErrResourceExhaustion = errors.New("resource exhaustion")
)
