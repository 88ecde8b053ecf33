package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sourceState(t *testing.T, e *Engine) []byte {
	t.Helper()
	state, err := e.src.MarshalBinary()
	require.NoError(t, err)
	return state
}

func TestStartGame(t *testing.T) {
	for seed := range uint64(200) {
		e := New(seed)
		b := e.Board()

		require.Equal(t, 2, b.Count(), "seed %d: expected exactly two tiles\n%s", seed, b)
		for _, v := range b.Flatten() {
			if v != 0 && v != 2 {
				t.Fatalf("seed %d: start tile %d, want 2", seed, v)
			}
		}
		assert.Equal(t, 4, b.Sum())
		assert.Equal(t, 0, e.Score())
		assert.Equal(t, 0, e.Moves())
		assert.Equal(t, Playing, e.Outcome())
	}
}

func TestDeterministicStart(t *testing.T) {
	e1 := New(12345)
	e2 := New(12345)
	assert.Equal(t, e1.Board(), e2.Board(), "same seed should produce same initial board")
}

func TestResetClearsGame(t *testing.T) {
	e := New(3)
	for _, d := range []Direction{Left, Up, Right, Down, Left, Up} {
		_, _, _, err := e.Move(d)
		require.NoError(t, err)
	}

	obs := e.Reset()
	assert.Equal(t, e.Board().Flatten(), obs)
	assert.Equal(t, 0, e.Score())
	assert.Equal(t, 0, e.Moves())
	assert.Equal(t, 2, e.Board().Count())
}

func TestLegalMoveSpawnsOneTile(t *testing.T) {
	for seed := range uint64(50) {
		e := New(seed)
		for step := 0; !e.Done() && step < 200; step++ {
			d := Directions()[step%NumDirections]
			before := e.Board()
			beforeScore := e.Score()
			legal := e.CanMove(d)
			slid, gained := Slide(before, d)

			_, _, _, err := e.Move(d)
			require.NoError(t, err)
			after := e.Board()

			if !legal {
				require.Equal(t, before, after)
				require.Equal(t, beforeScore, e.Score())
				continue
			}

			spawned := after.Sum() - before.Sum()
			require.Contains(t, []int{2, 4}, spawned, "seed %d step %d", seed, step)
			require.Equal(t, beforeScore+gained, e.Score())
			require.Equal(t, slid.Count()+1, after.Count())
			require.NoError(t, after.Validate())
		}
	}
}

func TestIllegalMoveIsNoOp(t *testing.T) {
	e := New(1)
	e.board = Board{
		{4, 2, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}
	e.score = 12
	stateBefore := sourceState(t, e)
	movesBefore := e.Moves()

	obs, reward, done, err := e.Move(Left)
	require.NoError(t, err)

	assert.Equal(t, e.board.Flatten(), obs)
	assert.Equal(t, Board{{4, 2, 0, 0}}, e.Board())
	assert.Equal(t, 12, e.Score())
	assert.Equal(t, movesBefore, e.Moves())
	assert.Equal(t, stateBefore, sourceState(t, e), "illegal move must not consume random draws")
	assert.False(t, done)
	assert.Equal(t, 0.0, reward)
}

func TestIllegalMoveReportsTermination(t *testing.T) {
	e := New(1)
	e.board = Board{
		{1024, 1024, 2, 4},
		{2, 4, 8, 16},
		{4, 8, 16, 32},
		{8, 16, 32, 64},
	}
	// Up is illegal, the game is still on because left merges.
	_, reward, done, err := e.Move(Up)
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, 0.0, reward)

	_, reward, done, err = e.Move(Left)
	require.NoError(t, err)
	assert.True(t, done, "forming 2048 ends the game")
	assert.Equal(t, 1.0, reward)
	assert.Equal(t, Won, e.Outcome())
	assert.Equal(t, 2048, e.Score())
}

func TestWinRegardlessOfEmptyCells(t *testing.T) {
	e := New(5)
	e.board = Board{{2048}}
	reward, done := e.IsTerminal()
	assert.True(t, done)
	assert.Equal(t, 1.0, reward)
	assert.Equal(t, Won, e.Outcome())
}

func TestStuckBoardLoses(t *testing.T) {
	e := New(5)
	e.board = Board{
		{2, 4, 2, 4},
		{4, 2, 4, 2},
		{2, 4, 2, 4},
		{4, 2, 4, 2},
	}
	reward, done := e.IsTerminal()
	assert.True(t, done)
	assert.Equal(t, 0.0, reward)
	assert.Equal(t, Lost, e.Outcome())

	for _, d := range Directions() {
		assert.False(t, e.CanMove(d), "direction %s", d)
	}
}

func TestMoveAfterGameOver(t *testing.T) {
	e := New(5)
	e.board = Board{{2048, 2, 0, 0}}
	before := e.Board()

	_, reward, done, err := e.Move(Right)
	require.ErrorIs(t, err, ErrGameOver)
	assert.True(t, done)
	assert.Equal(t, 1.0, reward)
	assert.Equal(t, before, e.Board())

	e.Reset()
	_, _, _, err = e.Move(Left)
	require.NoError(t, err)
}

func TestInvalidDirection(t *testing.T) {
	e := New(8)
	before := e.Board()

	for _, action := range []int{-1, 4, 100} {
		_, _, _, err := e.Step(action)
		require.ErrorIs(t, err, ErrInvalidDirection, "action %d", action)
	}
	_, _, _, err := e.Move(Direction(7))
	require.ErrorIs(t, err, ErrInvalidDirection)

	assert.Equal(t, before, e.Board())
}

func TestStepUsesActionIndices(t *testing.T) {
	board := Board{
		{0, 0, 0, 0},
		{0, 2, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}
	want := map[int]Cell{
		0: {Row: 1, Col: 0},
		1: {Row: 1, Col: 3},
		2: {Row: 0, Col: 1},
		3: {Row: 3, Col: 1},
	}
	for action, cell := range want {
		e := New(11)
		e.board = board
		_, _, _, err := e.Step(action)
		require.NoError(t, err)
		assert.Equal(t, 2, e.board[cell.Row][cell.Col], "action %d", action)
	}
}

func TestSpawnSkippedOnFullBoard(t *testing.T) {
	e := New(2)
	e.board = Board{
		{2, 4, 2, 4},
		{4, 2, 4, 2},
		{2, 4, 2, 4},
		{4, 2, 4, 2},
	}
	before := e.Board()
	e.spawnTile()
	assert.Equal(t, before, e.Board())
}

func TestRandomGamesTerminate(t *testing.T) {
	for seed := range uint64(20) {
		e := New(seed)
		actions := NewSource(seed + 1000)
		steps := 0
		for !e.Done() {
			require.Less(t, steps, 100000, "seed %d did not terminate", seed)
			_, _, _, err := e.Step(actions.r.IntN(NumDirections))
			require.NoError(t, err)
			steps++
		}
		require.NoError(t, e.Board().Validate())
		assert.NotEqual(t, Playing, e.Outcome())
	}
}

func TestSeedRestartsStream(t *testing.T) {
	e := New(1)
	e.Seed(77)
	e.Reset()

	fresh := New(77)
	assert.Equal(t, fresh.Board(), e.Board())
	assert.Equal(t, uint64(77), e.SeedValue())
}

func TestCloneIsIndependent(t *testing.T) {
	e := New(21)
	c := e.Clone()

	_, _, _, err := e.Move(Left)
	require.NoError(t, err)
	_, _, _, err = e.Move(Up)
	require.NoError(t, err)

	fresh := New(21)
	assert.Equal(t, fresh.Board(), c.Board())
	assert.Equal(t, fresh.Snapshot(), c.Snapshot())
}

func TestParseDirection(t *testing.T) {
	for in, want := range map[string]Direction{
		"left": Left, "A": Left, "right": Right, "d": Right,
		"Up": Up, "w": Up, "down": Down, "s": Down,
	} {
		got, err := ParseDirection(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseDirection("sideways")
	assert.True(t, errors.Is(err, ErrInvalidDirection))
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "playing", Playing.String())
	assert.Equal(t, "won", Won.String())
	assert.Equal(t, "lost", Lost.String())
	assert.Equal(t, "left", Left.String())
	assert.Equal(t, "direction(9)", Direction(9).String())
}
