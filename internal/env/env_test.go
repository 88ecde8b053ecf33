package env

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/gym2048/internal/engine"
)

// withBoard returns a snapshot of a fresh engine with its board replaced.
func withBoard(seed uint64, b engine.Board) engine.Snapshot {
	snap := engine.New(seed).Snapshot()
	snap.Board = b
	return snap
}

// nearWin has a 1024 pair that merges into 2048 on a left move.
var nearWin = engine.Board{
	{1024, 1024, 0, 0},
	{2, 4, 8, 16},
	{0, 0, 0, 0},
	{0, 0, 0, 0},
}

func TestSpaces(t *testing.T) {
	as := ActionSpace()
	assert.Equal(t, 4, as.N)
	assert.True(t, as.Contains(0))
	assert.True(t, as.Contains(3))
	assert.False(t, as.Contains(4))
	assert.False(t, as.Contains(-1))

	r := rand.New(rand.NewPCG(1, 2))
	for range 100 {
		assert.True(t, as.Contains(as.Sample(r)))
	}

	os := ObservationSpace()
	assert.Equal(t, Box{Low: 0, High: 2048, Shape: 16}, os)
	obs := New(1).Reset()
	assert.True(t, os.Contains(obs[:]))
	assert.False(t, os.Contains(make([]int, 15)))
	assert.False(t, os.Contains(append(make([]int, 15), 4096)))
}

func TestNewSamplerIsReproducible(t *testing.T) {
	a, b := NewSampler(12), NewSampler(12)
	other := NewSampler(13)
	space := ActionSpace()

	same, differs := true, false
	for range 64 {
		x, y, z := space.Sample(a), space.Sample(b), space.Sample(other)
		same = same && x == y
		differs = differs || x != z
	}
	assert.True(t, same, "equal seeds must give equal action sequences")
	assert.True(t, differs, "different seeds should give different action sequences")
}

func TestResetObservation(t *testing.T) {
	e := New(42)
	obs := e.Reset()
	assert.Equal(t, e.Board().Flatten(), obs)

	count := 0
	for _, v := range obs {
		if v != 0 {
			assert.Equal(t, 2, v)
			count++
		}
	}
	assert.Equal(t, 2, count)
	assert.Equal(t, ID, e.ID())
}

func TestStepResult(t *testing.T) {
	e := New(3)
	_, err := e.Restore(withBoard(3, engine.Board{{2, 2, 0, 0}}))
	require.NoError(t, err)

	res, err := e.Step(int(engine.Left))
	require.NoError(t, err)
	assert.Equal(t, e.Board().Flatten(), res.Observation)
	assert.Equal(t, 0.0, res.Reward)
	assert.False(t, res.Done)
	assert.True(t, res.Info.Legal)
	assert.Equal(t, 4, res.Info.Score)
	assert.Equal(t, 1, res.Info.Moves)
	assert.Equal(t, 4, res.Info.MaxTile)
	assert.Equal(t, engine.Playing, res.Info.Outcome)
}

func TestStepIllegalMove(t *testing.T) {
	e := New(3)
	_, err := e.Restore(withBoard(3, engine.Board{{4, 2, 0, 0}}))
	require.NoError(t, err)

	res, err := e.Step(int(engine.Left))
	require.NoError(t, err)
	assert.False(t, res.Info.Legal)
	assert.Equal(t, engine.Board{{4, 2, 0, 0}}, e.Board())
	assert.Equal(t, 0, res.Info.Moves)
}

func TestStepInvalidAction(t *testing.T) {
	e := New(3)
	before := e.Board()
	_, err := e.Step(7)
	require.ErrorIs(t, err, engine.ErrInvalidDirection)
	assert.Equal(t, before, e.Board())
}

func TestWinReward(t *testing.T) {
	e := New(4)
	_, err := e.Restore(withBoard(4, nearWin))
	require.NoError(t, err)

	res, err := e.Step(int(engine.Left))
	require.NoError(t, err)
	assert.True(t, res.Done)
	assert.Equal(t, 1.0, res.Reward)
	assert.Equal(t, engine.Won, e.Outcome())

	_, err = e.Step(int(engine.Left))
	require.ErrorIs(t, err, engine.ErrGameOver)
}

func TestSeedReproducesGames(t *testing.T) {
	a := New(1)
	b := New(2)
	assert.Equal(t, uint64(99), a.Seed(99))
	b.Seed(99)
	assert.Equal(t, a.Reset(), b.Reset())

	for i := range 40 {
		ra, errA := a.Step(i % 4)
		rb, errB := b.Step(i % 4)
		if errA != nil || errB != nil {
			require.ErrorIs(t, errA, engine.ErrGameOver)
			require.ErrorIs(t, errB, engine.ErrGameOver)
			break
		}
		require.Equal(t, ra, rb)
	}
}

func TestAccumulatingReward(t *testing.T) {
	a := NewAccumulating(5)
	assert.Equal(t, AccumulatingID, a.ID())
	_, err := a.SetState(State{Snapshot: withBoard(5, nearWin), RunningReward: 0})
	require.NoError(t, err)

	res, err := a.Step(int(engine.Up))
	require.NoError(t, err)
	assert.False(t, res.Done)
	assert.Equal(t, 0.0, res.Reward)

	res, err = a.Step(int(engine.Left))
	require.NoError(t, err)
	assert.True(t, res.Done)
	assert.Equal(t, 1.0, res.Reward)
	assert.Equal(t, 1.0, a.RunningReward())

	a.Reset()
	assert.Equal(t, 0.0, a.RunningReward())
}

func TestAccumulatingPaysRunningTotalOnlyWhenDone(t *testing.T) {
	a := NewAccumulating(6)
	_, err := a.SetState(State{Snapshot: withBoard(6, nearWin), RunningReward: 2.5})
	require.NoError(t, err)

	res, err := a.Step(int(engine.Left))
	require.NoError(t, err)
	assert.True(t, res.Done)
	assert.Equal(t, 3.5, res.Reward)
}

func TestAccumulatingActionMask(t *testing.T) {
	a := NewAccumulating(1)
	assert.Equal(t, [4]uint8{1, 1, 1, 1}, a.ActionMask())
}

func TestAccumulatingStateRoundTrip(t *testing.T) {
	a := NewAccumulating(8)
	for i := range 10 {
		_, err := a.Step(i % 4)
		require.NoError(t, err)
	}
	state := a.GetState()

	b := NewAccumulating(1000)
	obs, err := b.SetState(state)
	require.NoError(t, err)
	assert.Equal(t, a.Board().Flatten(), obs)
	assert.Equal(t, a.Score(), b.Score())

	for i := range 60 {
		ra, errA := a.Step((i * 3) % 4)
		rb, errB := b.Step((i * 3) % 4)
		require.Equal(t, errA, errB)
		require.Equal(t, ra, rb)
		if errA != nil {
			break
		}
	}
}

func TestSetStateRejectsInvalid(t *testing.T) {
	a := NewAccumulating(1)
	before := a.GetState()
	_, err := a.SetState(State{Snapshot: withBoard(1, engine.Board{{3}}), RunningReward: 9})
	require.ErrorIs(t, err, engine.ErrInvalidSnapshot)
	assert.Equal(t, before, a.GetState())
}

func TestEnvironmentsSatisfyInterface(t *testing.T) {
	var _ Environment = New(1)
	var _ Environment = NewAccumulating(1)
}
