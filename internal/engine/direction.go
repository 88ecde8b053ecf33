package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Direction is a move direction. The numeric values double as the action
// indices exposed by the environment adapter.
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
)

// NumDirections is the size of the action space.
const NumDirections = 4

var (
	// ErrInvalidDirection is returned when a move is requested with a value
	// outside Left, Right, Up and Down.
	ErrInvalidDirection = errors.New("engine: invalid direction")

	// ErrGameOver is returned when a move is requested on a finished game.
	ErrGameOver = errors.New("engine: game is over, reset to continue")
)

// Directions returns all directions in action-index order.
func Directions() []Direction {
	return []Direction{Left, Right, Up, Down}
}

// Valid reports whether d is one of the four recognized directions.
func (d Direction) Valid() bool {
	return d >= Left && d <= Down
}

// String returns a human-readable name for the direction.
func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// ParseDirection converts a name ("left", "l", "a", ...) to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "l", "a":
		return Left, nil
	case "right", "r", "d":
		return Right, nil
	case "up", "u", "w":
		return Up, nil
	case "down", "s":
		return Down, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// DirectionFromAction converts an action index (0=left, 1=right, 2=up,
// 3=down) to a Direction.
func DirectionFromAction(action int) (Direction, error) {
	d := Direction(action)
	if !d.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidDirection, action)
	}
	return d, nil
}
