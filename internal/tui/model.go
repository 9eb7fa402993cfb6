// Package tui is the full screen metronome renderer. It draws the state it
// receives from the controller and forwards key presses as intents; all
// timing stays in the controller.
package tui

import (
	"context"
	"math"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/pkg/errors"

	"github.com/dimfu/tempo/internal/metronome"
)

const (
	fps           = 60
	unlockTimeout = 5 * time.Second
	volumeStep    = 0.01
)

// Controller is the part of the metronome the renderer talks to.
type Controller interface {
	IncreaseBPM()
	DecreaseBPM()
	SetTimeSignature(n int) error
	SetVolume(v float64)
	Toggle(ctx context.Context) error
	Snapshot() metronome.State
	Watch(size int) <-chan metronome.State
}

// Muter switches audio off so the metronome can run silently.
type Muter interface {
	SetMuted(muted bool)
	Muted() bool
}

// StateMsg carries a controller snapshot into the program.
type StateMsg metronome.State

type toggledMsg struct{ err error }

type frameMsg time.Time

type Model struct {
	ctx   context.Context
	ctrl  Controller
	muter Muter

	state metronome.State
	err   error
	muted bool

	keys   keyMap
	help   help.Model
	volume progress.Model

	spring   harmonica.Spring
	angle    float64
	velocity float64

	width int
}

type Option func(*Model)

// WithMuter enables the mute key.
func WithMuter(m Muter) Option {
	return func(model *Model) { model.muter = m }
}

func New(ctx context.Context, ctrl Controller, opts ...Option) Model {
	m := Model{
		ctx:    ctx,
		ctrl:   ctrl,
		state:  ctrl.Snapshot(),
		keys:   defaultKeyMap(),
		help:   help.New(),
		volume: progress.New(progress.WithDefaultGradient(), progress.WithWidth(20), progress.WithoutPercentage()),
		spring: harmonica.NewSpring(harmonica.FPS(fps), 8.0, 0.4),
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.muter != nil {
		m.muted = m.muter.Muted()
	}
	return m
}

func frame() tea.Cmd {
	return tea.Tick(time.Second/fps, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return frame()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case StateMsg:
		m.state = metronome.State(msg)

	case toggledMsg:
		m.err = msg.err
		m.state = m.ctrl.Snapshot()

	case frameMsg:
		m.angle, m.velocity = m.spring.Update(m.angle, m.velocity, m.state.Angle())
		return m, frame()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Faster):
		m.ctrl.IncreaseBPM()

	case key.Matches(msg, m.keys.Slower):
		m.ctrl.DecreaseBPM()

	case key.Matches(msg, m.keys.Meter):
		n := int(msg.Runes[0] - '0')
		if err := m.ctrl.SetTimeSignature(n); err != nil {
			m.err = err
		}

	case key.Matches(msg, m.keys.Louder):
		m.ctrl.SetVolume(stepVolume(m.state.Volume, volumeStep))

	case key.Matches(msg, m.keys.Softer):
		m.ctrl.SetVolume(stepVolume(m.state.Volume, -volumeStep))

	case key.Matches(msg, m.keys.Mute):
		if m.muter == nil {
			return m, nil
		}
		m.muted = !m.muted
		m.muter.SetMuted(m.muted)
		if m.muted {
			m.err = nil
		}

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Toggle):
		return m, m.toggle()
	}

	m.state = m.ctrl.Snapshot()
	return m, nil
}

// toggle runs the start/stop off the update loop since starting waits for
// the audio output.
func (m Model) toggle() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, unlockTimeout)
		defer cancel()
		return toggledMsg{err: ctrl.Toggle(ctx)}
	}
}

func (m Model) State() metronome.State { return m.state }

func (m Model) Err() error { return m.err }

func stepVolume(v, step float64) float64 {
	return math.Round((v+step)*100) / 100
}

// Run shows the renderer until the user quits or ctx is done.
func Run(ctx context.Context, ctrl Controller, opts ...Option) error {
	p := tea.NewProgram(New(ctx, ctrl, opts...), tea.WithAltScreen(), tea.WithContext(ctx))

	updates := ctrl.Watch(16)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case s := <-updates:
				p.Send(StateMsg(s))
			case <-done:
				return
			}
		}
	}()

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return errors.Wrap(err, "run tui")
	}
	return nil
}
