// Package engine implements the 2048 board engine: a 4x4 grid, directional
// moves with single-sweep merges, seeded tile spawning, scoring and
// terminal detection.
//
// The engine is a pure in-memory state machine. It performs no I/O, never
// logs, and is not safe for concurrent use; parallel simulations each own
// an Engine.
package engine

import "fmt"

// Outcome classifies the board for observers.
type Outcome int

const (
	Playing Outcome = iota
	Won
	Lost
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Playing:
		return "playing"
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return "unknown"
	}
}

// Engine owns one game: the board, the cumulative score and the random
// source used for tile placement.
type Engine struct {
	board Board
	score int
	moves int
	seed  uint64
	src   *Source
}

// New creates an engine seeded with seed and starts a game.
func New(seed uint64) *Engine {
	e := &Engine{
		seed: seed,
		src:  NewSource(seed),
	}
	e.StartGame()
	return e
}

// StartGame clears the board, places two 2-tiles at distinct random cells
// and resets the score.
func (e *Engine) StartGame() {
	e.board = Board{}
	e.score = 0
	e.moves = 0

	cell := e.src.Coord()
	e.board[cell.Row][cell.Col] = 2
	cell = e.drawEmpty()
	e.board[cell.Row][cell.Col] = 2
}

// Reset starts a new game and returns the flattened board.
func (e *Engine) Reset() [Cells]int {
	e.StartGame()
	return e.board.Flatten()
}

// Seed re-seeds the random source. The current board is kept; call Reset
// to start a game from the new seed.
func (e *Engine) Seed(seed uint64) {
	e.seed = seed
	e.src.Seed(seed)
}

// drawEmpty redraws coordinates until it lands on an empty cell.
// The caller must ensure the board has one.
func (e *Engine) drawEmpty() Cell {
	for {
		cell := e.src.Coord()
		if e.board[cell.Row][cell.Col] == 0 {
			return cell
		}
	}
}

// spawnTile places a 2 or a 4 on a random empty cell. It does nothing on a
// full board.
func (e *Engine) spawnTile() {
	if !e.board.HasEmptyCell() {
		return
	}
	cell := e.drawEmpty()
	e.board[cell.Row][cell.Col] = e.src.TileValue()
}

// Move applies a move in direction d.
//
// An illegal move (nothing can slide or merge that way) leaves the board,
// the score and the random source untouched; the terminal status is still
// evaluated and returned. A legal move merges, adds the merged values to the
// score and spawns one tile.
func (e *Engine) Move(d Direction) (obs [Cells]int, reward float64, done bool, err error) {
	if !d.Valid() {
		return e.board.Flatten(), 0, false, fmt.Errorf("%w: %d", ErrInvalidDirection, int(d))
	}
	if e.Done() {
		reward, done = e.IsTerminal()
		return e.board.Flatten(), reward, done, ErrGameOver
	}

	if MoveExists(e.board, d) {
		board, gained := Slide(e.board, d)
		e.board = board
		e.score += gained
		e.moves++
		e.spawnTile()
	}

	reward, done = e.IsTerminal()
	return e.board.Flatten(), reward, done, nil
}

// Step is Move keyed by action index: 0=left, 1=right, 2=up, 3=down.
func (e *Engine) Step(action int) ([Cells]int, float64, bool, error) {
	d, err := DirectionFromAction(action)
	if err != nil {
		return e.board.Flatten(), 0, false, err
	}
	return e.Move(d)
}

// CanMove reports whether a move in direction d would change the board.
func (e *Engine) CanMove(d Direction) bool {
	return MoveExists(e.board, d)
}

// IsTerminal returns (1.0, true) on a win, (0.0, true) when stuck and
// (0.0, false) otherwise.
func (e *Engine) IsTerminal() (reward float64, done bool) {
	return Terminal(e.board)
}

// Done reports whether the game has reached a terminal state.
func (e *Engine) Done() bool {
	_, done := e.IsTerminal()
	return done
}

// Outcome classifies the current board.
func (e *Engine) Outcome() Outcome {
	reward, done := e.IsTerminal()
	switch {
	case !done:
		return Playing
	case reward > 0:
		return Won
	default:
		return Lost
	}
}

// Board returns a copy of the board.
func (e *Engine) Board() Board {
	return e.board
}

// Observation returns the board flattened in row-major order.
func (e *Engine) Observation() [Cells]int {
	return e.board.Flatten()
}

// Score returns the cumulative merge score of the current game.
func (e *Engine) Score() int {
	return e.score
}

// Moves returns the number of legal moves made in the current game.
func (e *Engine) Moves() int {
	return e.moves
}

// SeedValue returns the seed the source was last seeded with.
func (e *Engine) SeedValue() uint64 {
	return e.seed
}

// Clone returns an independent deep copy of the engine.
func (e *Engine) Clone() *Engine {
	c := *e
	c.src = e.src.Clone()
	return &c
}
