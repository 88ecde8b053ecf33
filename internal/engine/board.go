package engine

import (
	"fmt"
	"strings"
)

// Size is the board dimension.
const Size = 4

// Cells is the number of cells on the board.
const Cells = Size * Size

// WinTile is the tile value that ends the game with a win.
const WinTile = 2048

// Board is the 4x4 grid, indexed [row][col]. Zero means empty.
type Board [Size][Size]int

// Cell is a board coordinate.
type Cell struct {
	Row, Col int
}

// Flatten returns the board in row-major order.
func (b Board) Flatten() [Cells]int {
	var out [Cells]int
	for r := range Size {
		for c := range Size {
			out[r*Size+c] = b[r][c]
		}
	}
	return out
}

// Unflatten builds a board from a row-major slice of 16 values.
func Unflatten(values []int) (Board, error) {
	var b Board
	if len(values) != Cells {
		return b, fmt.Errorf("engine: expected %d values, got %d", Cells, len(values))
	}
	for i, v := range values {
		b[i/Size][i%Size] = v
	}
	return b, nil
}

// EmptyCells returns the coordinates of all empty cells in row-major order.
func (b Board) EmptyCells() []Cell {
	var cells []Cell
	for r := range Size {
		for c := range Size {
			if b[r][c] == 0 {
				cells = append(cells, Cell{Row: r, Col: c})
			}
		}
	}
	return cells
}

// HasEmptyCell reports whether at least one cell is zero.
func (b Board) HasEmptyCell() bool {
	return b.Contains(0)
}

// Contains reports whether any cell equals v.
func (b Board) Contains(v int) bool {
	for r := range Size {
		for c := range Size {
			if b[r][c] == v {
				return true
			}
		}
	}
	return false
}

// MaxTile returns the highest tile value on the board.
func (b Board) MaxTile() int {
	maxVal := 0
	for r := range Size {
		for c := range Size {
			if b[r][c] > maxVal {
				maxVal = b[r][c]
			}
		}
	}
	return maxVal
}

// Sum returns the total of all tile values.
func (b Board) Sum() int {
	total := 0
	for r := range Size {
		for c := range Size {
			total += b[r][c]
		}
	}
	return total
}

// Count returns the number of non-empty cells.
func (b Board) Count() int {
	n := 0
	for r := range Size {
		for c := range Size {
			if b[r][c] != 0 {
				n++
			}
		}
	}
	return n
}

// Validate checks that every non-zero cell is a power of two in
// [2, WinTile]. The game ends when WinTile forms, so no larger tile is
// reachable.
func (b Board) Validate() error {
	for r := range Size {
		for c := range Size {
			v := b[r][c]
			if v == 0 {
				continue
			}
			if v < 2 || v&(v-1) != 0 {
				return fmt.Errorf("engine: cell (%d,%d) holds %d, not a power of two", r, c, v)
			}
			if v > WinTile {
				return fmt.Errorf("engine: cell (%d,%d) holds %d, above %d", r, c, v, WinTile)
			}
		}
	}
	return nil
}

// String renders the board as a small ASCII grid.
func (b Board) String() string {
	line := "+------+------+------+------+"
	var sb strings.Builder
	sb.WriteString(line)
	sb.WriteByte('\n')
	for r := range Size {
		sb.WriteByte('|')
		for c := range Size {
			if b[r][c] == 0 {
				sb.WriteString("      |")
			} else {
				fmt.Fprintf(&sb, "%5d |", b[r][c])
			}
		}
		sb.WriteByte('\n')
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// stack slides every non-zero value of each row to the left, keeping order.
func stack(b Board) Board {
	var out Board
	for r := range Size {
		k := 0
		for c := range Size {
			if b[r][c] != 0 {
				out[r][k] = b[r][c]
				k++
			}
		}
	}
	return out
}

// combine merges equal neighbours left to right in one sweep per row and
// returns the score gained. A merged cell is followed by a zero, so it can
// never take part in a second merge during the same sweep.
func combine(b Board) (Board, int) {
	score := 0
	for r := range Size {
		for c := range Size - 1 {
			if b[r][c] != 0 && b[r][c] == b[r][c+1] {
				b[r][c] *= 2
				b[r][c+1] = 0
				score += b[r][c]
			}
		}
	}
	return b, score
}

// reverseRows mirrors the board left to right.
func reverseRows(b Board) Board {
	var out Board
	for r := range Size {
		for c := range Size {
			out[r][c] = b[r][Size-1-c]
		}
	}
	return out
}

// transpose returns the matrix transpose.
func transpose(b Board) Board {
	var out Board
	for r := range Size {
		for c := range Size {
			out[r][c] = b[c][r]
		}
	}
	return out
}

// moveLeft is the canonical move: stack, combine, stack.
func moveLeft(b Board) (Board, int) {
	b, score := combine(stack(b))
	return stack(b), score
}

// orientation maps a direction onto the canonical left move and back.
type orientation struct {
	to   func(Board) Board
	from func(Board) Board
}

func identity(b Board) Board { return b }

var orientations = [NumDirections]orientation{
	Left:  {to: identity, from: identity},
	Right: {to: reverseRows, from: reverseRows},
	Up:    {to: transpose, from: transpose},
	Down: {
		to:   func(b Board) Board { return reverseRows(transpose(b)) },
		from: func(b Board) Board { return transpose(reverseRows(b)) },
	},
}

// Slide applies the move in direction d without spawning a tile.
// It returns the new board and the score gained from merges.
// The caller must pass a valid direction.
func Slide(b Board, d Direction) (Board, int) {
	o := orientations[d]
	moved, score := moveLeft(o.to(b))
	return o.from(moved), score
}

// LeftMoveExists reports whether a move to the left changes the board.
func LeftMoveExists(b Board) bool {
	for r := range Size {
		for c := range Size - 1 {
			if canEnter(b[r][c+1], b[r][c]) {
				return true
			}
		}
	}
	return false
}

// RightMoveExists reports whether a move to the right changes the board.
func RightMoveExists(b Board) bool {
	for r := range Size {
		for c := range Size - 1 {
			if canEnter(b[r][c], b[r][c+1]) {
				return true
			}
		}
	}
	return false
}

// UpMoveExists reports whether a move up changes the board.
func UpMoveExists(b Board) bool {
	for c := range Size {
		for r := range Size - 1 {
			if canEnter(b[r+1][c], b[r][c]) {
				return true
			}
		}
	}
	return false
}

// DownMoveExists reports whether a move down changes the board.
func DownMoveExists(b Board) bool {
	for c := range Size {
		for r := range Size - 1 {
			if canEnter(b[r][c], b[r+1][c]) {
				return true
			}
		}
	}
	return false
}

// canEnter reports whether a tile valued from can travel into the adjacent
// cell valued to: either the cell is empty or the two merge.
func canEnter(from, to int) bool {
	if from == 0 {
		return false
	}
	return to == 0 || to == from
}

// HorizontalMoveExists reports whether a left or right move is legal.
func HorizontalMoveExists(b Board) bool {
	return LeftMoveExists(b) || RightMoveExists(b)
}

// VerticalMoveExists reports whether an up or down move is legal.
func VerticalMoveExists(b Board) bool {
	return UpMoveExists(b) || DownMoveExists(b)
}

// MoveExists reports whether moving in direction d is legal.
func MoveExists(b Board, d Direction) bool {
	switch d {
	case Left:
		return LeftMoveExists(b)
	case Right:
		return RightMoveExists(b)
	case Up:
		return UpMoveExists(b)
	case Down:
		return DownMoveExists(b)
	default:
		return false
	}
}

// Terminal evaluates the board. A 2048 tile anywhere is a win (1.0, true);
// a full board with no horizontal or vertical move is a loss (0.0, true);
// anything else is still in play (0.0, false).
func Terminal(b Board) (reward float64, done bool) {
	if b.Contains(WinTile) {
		return 1.0, true
	}
	if !b.HasEmptyCell() && !HorizontalMoveExists(b) && !VerticalMoveExists(b) {
		return 0.0, true
	}
	return 0.0, false
}
