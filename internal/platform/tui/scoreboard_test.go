package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/gym2048/internal/env"
	_ "github.com/vovakirdan/gym2048/internal/env/builtin"
	"github.com/vovakirdan/gym2048/internal/storage"
)

type fakeSource map[string][]storage.Episode

func (f fakeSource) TopEpisodes(_ context.Context, envID string, limit int) ([]storage.Episode, error) {
	eps := f[envID]
	if len(eps) > limit {
		eps = eps[:limit]
	}
	return eps, nil
}

func TestScoreboardStartsOnRequestedEnv(t *testing.T) {
	m := NewScoreboardModel(fakeSource{}, env.ID, 100, 30)
	assert.Equal(t, env.ID, m.CurrentEnv())

	m = NewScoreboardModel(fakeSource{}, "unknown", 100, 30)
	assert.Equal(t, env.AccumulatingID, m.CurrentEnv(), "falls back to the first environment")
}

func TestScoreboardCyclesEnvs(t *testing.T) {
	source := fakeSource{
		env.ID: {{EnvID: env.ID, Score: 4242, MaxTile: 256, Moves: 300, Outcome: "lost", CreatedAt: time.Now()}},
	}
	m := NewScoreboardModel(source, env.AccumulatingID, 100, 30)
	assert.Contains(t, m.View(), "No episodes recorded yet.")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m, ok := next.(ScoreboardModel)
	require.True(t, ok)
	assert.Equal(t, env.ID, m.CurrentEnv())
	assert.Contains(t, m.View(), "4242")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m = next.(ScoreboardModel)
	assert.Equal(t, env.AccumulatingID, m.CurrentEnv())
}

func TestScoreboardNarrowLayout(t *testing.T) {
	m := NewScoreboardModel(fakeSource{}, env.ID, 60, 20)
	assert.False(t, m.showSidebar)
	assert.Contains(t, m.View(), "< "+env.ID+" >")
}
