// Package plain renders the metronome as a single live terminal line and
// reads intents from raw key presses.
package plain

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/eiannone/keyboard"
	"github.com/gosuri/uilive"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/dimfu/tempo/internal/metronome"
)

const unlockTimeout = 5 * time.Second

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

type Muter interface {
	SetMuted(muted bool)
	Muted() bool
}

type Renderer struct {
	ctrl  Controller
	muter Muter
	out   io.Writer
	keys  bool
	log   zerolog.Logger

	status string
}

type Option func(*Renderer)

func WithMuter(m Muter) Option {
	return func(r *Renderer) { r.muter = m }
}

// WithKeys enables raw key input. Without it the renderer only displays.
func WithKeys(enabled bool) Option {
	return func(r *Renderer) { r.keys = enabled }
}

func WithLogger(log zerolog.Logger) Option {
	return func(r *Renderer) { r.log = log }
}

func New(ctrl Controller, out io.Writer, opts ...Option) *Renderer {
	r := &Renderer{
		ctrl: ctrl,
		out:  out,
		log:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Line renders s as one line of text.
func Line(s metronome.State) string {
	dots := make([]string, s.TimeSignature)
	for i := range dots {
		dots[i] = "○"
		if s.Playing && i == s.Beat {
			dots[i] = "●"
		}
	}
	status := "stopped"
	if s.Playing {
		status = "playing"
	}
	return fmt.Sprintf("[%s] %d BPM %s %d beats vol %.2f %s",
		strings.Join(dots, " "), s.BPM, metronome.TempoName(s.BPM), s.TimeSignature, s.Volume, status)
}

// Run draws every update until ctx is done or the user quits.
func (r *Renderer) Run(ctx context.Context) error {
	w := uilive.New()
	w.Out = r.out
	w.Start()
	defer w.Stop()

	var keys <-chan keyboard.KeyEvent
	if r.keys {
		events, err := keyboard.GetKeys(10)
		if err != nil {
			return errors.Wrap(err, "open keyboard")
		}
		defer keyboard.Close()
		keys = events
	}

	updates := r.ctrl.Watch(16)
	r.draw(w, r.ctrl.Snapshot())

	for {
		select {
		case <-ctx.Done():
			return nil
		case s := <-updates:
			r.draw(w, s)
		case ev := <-keys:
			if ev.Err != nil {
				return errors.Wrap(ev.Err, "read key")
			}
			if quit := r.handle(ctx, ev); quit {
				return nil
			}
			r.draw(w, r.ctrl.Snapshot())
		}
	}
}

func (r *Renderer) draw(w io.Writer, s metronome.State) {
	line := Line(s)
	if r.muter != nil && r.muter.Muted() {
		line += " (muted)"
	}
	if r.status != "" {
		line += " - " + r.status
	}
	fmt.Fprintln(w, line)
}

// handle applies one key press and reports whether the user asked to quit.
func (r *Renderer) handle(ctx context.Context, ev keyboard.KeyEvent) bool {
	switch ev.Key {
	case keyboard.KeyCtrlC, keyboard.KeyEsc:
		return true
	case keyboard.KeyArrowUp:
		r.ctrl.IncreaseBPM()
		return false
	case keyboard.KeyArrowDown:
		r.ctrl.DecreaseBPM()
		return false
	case keyboard.KeySpace, keyboard.KeyEnter:
		r.toggle(ctx)
		return false
	}

	switch ev.Rune {
	case 'q':
		return true
	case '+', '=':
		r.ctrl.IncreaseBPM()
	case '-', '_':
		r.ctrl.DecreaseBPM()
	case '2', '3', '4', '6':
		if err := r.ctrl.SetTimeSignature(int(ev.Rune - '0')); err != nil {
			r.status = err.Error()
		}
	case ']':
		r.ctrl.SetVolume(stepVolume(r.ctrl.Snapshot().Volume, 0.01))
	case '[':
		r.ctrl.SetVolume(stepVolume(r.ctrl.Snapshot().Volume, -0.01))
	case 'm':
		if r.muter != nil {
			r.muter.SetMuted(!r.muter.Muted())
			r.status = ""
		}
	case ' ':
		r.toggle(ctx)
	}
	return false
}

func (r *Renderer) toggle(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, unlockTimeout)
	defer cancel()
	if err := r.ctrl.Toggle(ctx); err != nil {
		r.log.Warn().Err(err).Msg("toggle failed")
		r.status = err.Error()
		if errors.Is(err, metronome.ErrAudioUnavailable) && r.muter != nil {
			r.status += ", press m to run silently"
		}
		return
	}
	r.status = ""
}

func stepVolume(v, step float64) float64 {
	return math.Round((v+step)*100) / 100
}
