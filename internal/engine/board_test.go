package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoveLeftRow(t *testing.T) {
	tests := []struct {
		name     string
		input    [Size]int
		expected [Size]int
		score    int
	}{
		{
			name:     "simple merge",
			input:    [Size]int{2, 2, 0, 0},
			expected: [Size]int{4, 0, 0, 0},
			score:    4,
		},
		{
			name:     "merge with trailing tile",
			input:    [Size]int{2, 2, 2, 0},
			expected: [Size]int{4, 2, 0, 0},
			score:    4,
		},
		{
			name:     "double merge is a single sweep",
			input:    [Size]int{2, 2, 2, 2},
			expected: [Size]int{4, 4, 0, 0},
			score:    8,
		},
		{
			name:     "merge product is not merged again",
			input:    [Size]int{4, 2, 2, 0},
			expected: [Size]int{4, 4, 0, 0},
			score:    4,
		},
		{
			name:     "gaps between equal tiles",
			input:    [Size]int{0, 2, 0, 2},
			expected: [Size]int{4, 0, 0, 0},
			score:    4,
		},
		{
			name:     "merge then slide",
			input:    [Size]int{2, 0, 2, 4},
			expected: [Size]int{4, 4, 0, 0},
			score:    4,
		},
		{
			name:     "no merge possible",
			input:    [Size]int{2, 4, 8, 16},
			expected: [Size]int{2, 4, 8, 16},
			score:    0,
		},
		{
			name:     "slide with multiple gaps",
			input:    [Size]int{2, 0, 0, 2},
			expected: [Size]int{4, 0, 0, 0},
			score:    4,
		},
		{
			name:     "empty row",
			input:    [Size]int{0, 0, 0, 0},
			expected: [Size]int{0, 0, 0, 0},
			score:    0,
		},
		{
			name:     "single tile",
			input:    [Size]int{0, 4, 0, 0},
			expected: [Size]int{4, 0, 0, 0},
			score:    0,
		},
		{
			name:     "four equal large tiles",
			input:    [Size]int{4, 4, 4, 4},
			expected: [Size]int{8, 8, 0, 0},
			score:    16,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, score := moveLeft(Board{tt.input})
			assert.Equal(t, tt.expected, result[0], "moveLeft(%v)", tt.input)
			assert.Equal(t, tt.score, score, "moveLeft(%v) score", tt.input)
		})
	}
}

var mixedBoard = Board{
	{2, 2, 0, 0},
	{4, 0, 4, 0},
	{2, 2, 2, 2},
	{0, 0, 0, 2},
}

func TestSlide(t *testing.T) {
	tests := []struct {
		name     string
		board    Board
		dir      Direction
		expected Board
		score    int
	}{
		{
			name:  "left",
			board: mixedBoard,
			dir:   Left,
			expected: Board{
				{4, 0, 0, 0},
				{8, 0, 0, 0},
				{4, 4, 0, 0},
				{2, 0, 0, 0},
			},
			score: 20,
		},
		{
			name:  "right",
			board: mixedBoard,
			dir:   Right,
			expected: Board{
				{0, 0, 0, 4},
				{0, 0, 0, 8},
				{0, 0, 4, 4},
				{0, 0, 0, 2},
			},
			score: 20,
		},
		{
			name: "up",
			board: Board{
				{2, 4, 2, 0},
				{2, 0, 2, 0},
				{0, 4, 2, 0},
				{0, 0, 2, 2},
			},
			dir: Up,
			expected: Board{
				{4, 8, 4, 2},
				{0, 0, 4, 0},
				{0, 0, 0, 0},
				{0, 0, 0, 0},
			},
			score: 20,
		},
		{
			name: "down",
			board: Board{
				{2, 4, 2, 2},
				{2, 0, 2, 0},
				{0, 4, 2, 0},
				{0, 0, 2, 0},
			},
			dir: Down,
			expected: Board{
				{0, 0, 0, 0},
				{0, 0, 0, 0},
				{0, 0, 4, 0},
				{4, 8, 4, 2},
			},
			score: 20,
		},
		{
			name: "down merges nearest the bottom first",
			board: Board{
				{2, 0, 0, 0},
				{2, 0, 0, 0},
				{2, 0, 0, 0},
				{0, 0, 0, 0},
			},
			dir: Down,
			expected: Board{
				{0, 0, 0, 0},
				{0, 0, 0, 0},
				{2, 0, 0, 0},
				{4, 0, 0, 0},
			},
			score: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, score := Slide(tt.board, tt.dir)
			if diff := cmp.Diff(tt.expected, result); diff != "" {
				t.Errorf("Slide(%s) mismatch (-want +got):\n%s", tt.dir, diff)
			}
			assert.Equal(t, tt.score, score)
		})
	}
}

func TestSlidePreservesSum(t *testing.T) {
	boards := []Board{
		mixedBoard,
		{
			{2, 4, 8, 16},
			{16, 8, 4, 2},
			{2, 2, 4, 4},
			{1024, 1024, 0, 2},
		},
	}
	for _, b := range boards {
		for _, d := range Directions() {
			result, _ := Slide(b, d)
			assert.Equal(t, b.Sum(), result.Sum(), "Slide(%s) changed the tile sum", d)
		}
	}
}

func TestTransformsAreInvolutions(t *testing.T) {
	assert.Equal(t, mixedBoard, reverseRows(reverseRows(mixedBoard)))
	assert.Equal(t, mixedBoard, transpose(transpose(mixedBoard)))
	for _, d := range Directions() {
		o := orientations[d]
		assert.Equal(t, mixedBoard, o.from(o.to(mixedBoard)), "orientation %s", d)
	}
}

func TestMoveExists(t *testing.T) {
	tests := []struct {
		name                  string
		board                 Board
		left, right, up, down bool
	}{
		{
			name:  "left aligned tiles",
			board: Board{{4, 2, 0, 0}},
			left:  false, right: true, up: false, down: true,
		},
		{
			name:  "right aligned tiles",
			board: Board{{0, 0, 4, 2}},
			left:  true, right: false, up: false, down: true,
		},
		{
			name:  "mergeable pair in a full row",
			board: Board{{2, 2, 4, 8}},
			left:  true, right: true, up: false, down: true,
		},
		{
			name: "column of distinct tiles at the bottom",
			board: Board{
				{0, 0, 0, 0},
				{0, 0, 0, 0},
				{2, 0, 0, 0},
				{4, 0, 0, 0},
			},
			left: false, right: true, up: true, down: false,
		},
		{
			name:  "empty board",
			board: Board{},
			left:  false, right: false, up: false, down: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.left, LeftMoveExists(tt.board), "left")
			assert.Equal(t, tt.right, RightMoveExists(tt.board), "right")
			assert.Equal(t, tt.up, UpMoveExists(tt.board), "up")
			assert.Equal(t, tt.down, DownMoveExists(tt.board), "down")
			assert.Equal(t, tt.left || tt.right, HorizontalMoveExists(tt.board))
			assert.Equal(t, tt.up || tt.down, VerticalMoveExists(tt.board))
		})
	}
}

func TestMoveExistsMatchesSlide(t *testing.T) {
	src := NewSource(99)
	for range 500 {
		var b Board
		for r := range Size {
			for c := range Size {
				// Roughly half empty, the rest small powers of two.
				if n := src.r.IntN(8); n > 3 {
					b[r][c] = 1 << n
				}
			}
		}
		for _, d := range Directions() {
			moved, _ := Slide(b, d)
			assert.Equal(t, moved != b, MoveExists(b, d), "board %v direction %s", b, d)
		}
	}
}

func TestTerminal(t *testing.T) {
	t.Run("win with empty cells", func(t *testing.T) {
		reward, done := Terminal(Board{{2048, 0, 0, 0}})
		assert.True(t, done)
		assert.Equal(t, 1.0, reward)
	})

	t.Run("stuck full board", func(t *testing.T) {
		reward, done := Terminal(Board{
			{2, 4, 8, 16},
			{32, 64, 128, 256},
			{512, 1024, 4, 8},
			{16, 32, 64, 128},
		})
		assert.True(t, done)
		assert.Equal(t, 0.0, reward)
	})

	t.Run("full board with a merge", func(t *testing.T) {
		reward, done := Terminal(Board{
			{2, 2, 8, 16},
			{32, 64, 128, 256},
			{512, 1024, 4, 8},
			{16, 32, 64, 128},
		})
		assert.False(t, done)
		assert.Equal(t, 0.0, reward)
	})

	t.Run("board with an empty cell", func(t *testing.T) {
		_, done := Terminal(Board{
			{2, 4, 8, 16},
			{32, 64, 128, 256},
			{512, 1024, 0, 8},
			{16, 32, 64, 128},
		})
		assert.False(t, done)
	})
}

func TestFlattenRoundTrip(t *testing.T) {
	flat := mixedBoard.Flatten()
	assert.Equal(t, [Cells]int{2, 2, 0, 0, 4, 0, 4, 0, 2, 2, 2, 2, 0, 0, 0, 2}, flat)

	b, err := Unflatten(flat[:])
	require.NoError(t, err)
	assert.Equal(t, mixedBoard, b)

	_, err = Unflatten([]int{1, 2, 3})
	require.Error(t, err)
}

func TestBoardValidate(t *testing.T) {
	require.NoError(t, mixedBoard.Validate())
	require.Error(t, Board{{3}}.Validate())
	require.Error(t, Board{{1}}.Validate())
	require.Error(t, Board{{0, -2}}.Validate())
	require.NoError(t, Board{{WinTile}}.Validate())
	require.Error(t, Board{{4096}}.Validate())
}

func TestBoardHelpers(t *testing.T) {
	b := Board{
		{2, 0, 8, 0},
		{0, 64, 0, 256},
		{512, 0, 2048, 0},
		{0, 16, 0, 64},
	}
	assert.Len(t, b.EmptyCells(), 8)
	assert.Equal(t, 8, b.Count())
	assert.Equal(t, 2048, b.MaxTile())
	assert.True(t, b.HasEmptyCell())
	assert.Contains(t, b.String(), " 2048 |")
}
