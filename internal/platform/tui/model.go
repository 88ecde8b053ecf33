package tui

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/gym2048/internal/engine"
	"github.com/vovakirdan/gym2048/internal/env"
	"github.com/vovakirdan/gym2048/internal/storage"
)

// Recorder persists finished games. *storage.Store satisfies it.
type Recorder interface {
	SaveEpisode(ctx context.Context, e storage.Episode) (string, error)
}

// Options configures the game screen.
type Options struct {
	Autoplay bool          // start with random actions running
	Delay    time.Duration // pause between autoplay steps
	Seed     uint64        // seeds the autoplay action sampler
}

const defaultDelay = 500 * time.Millisecond

// Model is the Bubble Tea model for watching or playing one environment.
// It is the only caller of Step and Reset; rendering goes through the
// read-only Observer view.
type Model struct {
	env      env.Environment
	recorder Recorder
	keys     KeyMap
	help     help.Model
	sampler  *rand.Rand

	autoplay bool
	delay    time.Duration
	ticking  bool // a tick is in flight

	width    int
	height   int
	games    int
	recorded bool // current game already saved
	lastErr  error
	quitting bool
}

// NewModel creates a model around e. recorder may be nil.
func NewModel(e env.Environment, recorder Recorder, opts Options) Model {
	if opts.Delay <= 0 {
		opts.Delay = defaultDelay
	}
	return Model{
		env:      e,
		recorder: recorder,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		sampler:  env.NewSampler(opts.Seed),
		autoplay: opts.Autoplay,
		delay:    opts.Delay,
		games:    1,
	}
}

// Init starts the autoplay loop when enabled.
func (m Model) Init() tea.Cmd {
	if m.autoplay {
		return tickCmd(m.delay)
	}
	return nil
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cmd, dir := m.keys.Map(msg)
	switch cmd {
	case CommandQuit:
		m.quitting = true
		return m, tea.Quit

	case CommandMove:
		m.step(int(dir))

	case CommandReset:
		m.reset()
		if m.autoplay && !m.ticking {
			m.ticking = true
			return m, tickCmd(m.delay)
		}

	case CommandAutoplay:
		m.autoplay = !m.autoplay
		if m.autoplay && !m.ticking {
			m.ticking = true
			return m, tickCmd(m.delay)
		}
	}
	return m, nil
}

// handleTick plays one random action. The loop stops when autoplay is
// switched off or the game ends.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	m.ticking = false
	if !m.autoplay {
		return m, nil
	}
	if _, done := m.env.IsTerminal(); done {
		return m, nil
	}

	m.step(env.ActionSpace().Sample(m.sampler))

	if _, done := m.env.IsTerminal(); done {
		return m, nil
	}
	m.ticking = true
	return m, tickCmd(m.delay)
}

// step applies action and records the game once it ends.
func (m *Model) step(action int) {
	res, err := m.env.Step(action)
	if err != nil {
		if !errors.Is(err, engine.ErrGameOver) {
			m.lastErr = err
		}
		return
	}
	m.lastErr = nil
	if res.Done {
		m.record()
	}
}

func (m *Model) reset() {
	m.env.Reset()
	m.recorded = false
	m.lastErr = nil
	m.games++
}

// record saves the finished game once.
func (m *Model) record() {
	if m.recorded || m.recorder == nil {
		return
	}
	m.recorded = true
	state := m.env.GetState()
	//nolint:errcheck // Best-effort save, the game continues regardless
	m.recorder.SaveEpisode(context.Background(), storage.Episode{
		EnvID:   m.env.ID(),
		Seed:    state.Snapshot.Seed,
		Score:   m.env.Score(),
		MaxTile: m.env.Board().MaxTile(),
		Moves:   state.Snapshot.Moves,
		Outcome: m.env.Outcome().String(),
	})
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(RenderGame(m.env))
	b.WriteString("\n\n")

	mode := "manual"
	if m.autoplay {
		mode = fmt.Sprintf("autoplay every %s", m.delay)
	}
	status := fmt.Sprintf("%s · game %d · %s", m.env.ID(), m.games, mode)
	if m.lastErr != nil {
		status = m.lastErr.Error()
	}
	b.WriteString(hudStyle.Render(status))
	b.WriteString("\n")
	b.WriteString(hudStyle.Render(m.help.View(m.keys)))

	if m.width == 0 || m.height == 0 {
		return b.String()
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, b.String())
}

// Env returns the environment driven by the model.
func (m Model) Env() env.Environment {
	return m.env
}

// Run starts the Bubble Tea program for e and returns the environment in
// its final state.
func Run(e env.Environment, recorder Recorder, opts Options) (env.Environment, error) {
	model := NewModel(e, recorder, opts)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	final, err := p.Run()
	if err != nil {
		return e, err
	}
	if m, ok := final.(Model); ok {
		return m.Env(), nil
	}
	return e, nil
}
