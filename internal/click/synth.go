// Package click synthesizes the metronome click and plays it on an audio
// output that has to be unlocked before the first sound.
package click

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/faiface/beep"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var (
	ErrClosed            = errors.New("audio context closed")
	ErrUnsupportedOutput = errors.New("unsupported audio output")
)

// Output is an audio device clicks are played on.
type Output interface {
	// Init opens the device. It is called once, on the first unlock.
	Init(sr beep.SampleRate) error
	Play(s beep.Streamer)
	Close() error
}

type ContextState int

const (
	Suspended ContextState = iota
	Running
	Closed
)

func (s ContextState) String() string {
	switch s {
	case Suspended:
		return "suspended"
	case Running:
		return "running"
	case Closed:
		return "closed"
	}
	return "unknown"
}

type Option func(*Synth)

func WithLogger(log zerolog.Logger) Option {
	return func(s *Synth) { s.log = log }
}

func WithSampleRate(sr beep.SampleRate) Option {
	return func(s *Synth) { s.sr = sr }
}

// Synth owns the shared audio context. Each click gets its own streamer so
// overlapping clicks never interfere.
type Synth struct {
	mu    sync.Mutex
	out   Output
	state ContextState
	muted bool

	resuming *resumption

	sr     beep.SampleRate
	played atomic.Uint64
	log    zerolog.Logger
}

// resumption is one in-flight initialisation of the output.
type resumption struct {
	done chan struct{}
	err  error
}

func New(out Output, opts ...Option) *Synth {
	s := &Synth{
		out: out,
		sr:  SampleRate,
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Synth) State() ContextState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetMuted silences the synth. A muted synth unlocks without touching the
// output, so the metronome keeps running when no audio device is available.
func (s *Synth) SetMuted(muted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.muted = muted
	s.log.Info().Bool("muted", muted).Msg("mute changed")
}

func (s *Synth) Muted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.muted
}

// Played returns the number of clicks that finished playing.
func (s *Synth) Played() uint64 {
	return s.played.Load()
}

// Unlock resumes a suspended audio context and waits for it to be running.
// The output is initialised at most once at a time: a caller that gives up
// leaves the attempt running and later callers wait on the same result.
func (s *Synth) Unlock(ctx context.Context) error {
	s.mu.Lock()
	switch {
	case s.muted:
		s.mu.Unlock()
		return nil
	case s.state == Running:
		s.mu.Unlock()
		return nil
	case s.state == Closed:
		s.mu.Unlock()
		return ErrClosed
	}
	r := s.resuming
	if r == nil {
		r = &resumption{done: make(chan struct{})}
		s.resuming = r
		go s.resume(r)
	}
	s.mu.Unlock()

	select {
	case <-r.done:
		if r.err != nil {
			return errors.Wrap(r.err, "resume audio context")
		}
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "resume audio context")
	}
}

// resume opens the output for the in-flight attempt r.
func (s *Synth) resume(r *resumption) {
	err := s.out.Init(s.sr)

	s.mu.Lock()
	switch {
	case err != nil:
		s.log.Warn().Err(err).Msg("audio context resume failed")
	case s.state == Suspended:
		s.state = Running
		s.log.Info().Int("sample_rate", int(s.sr)).Msg("audio context running")
	case s.state == Closed:
		if cerr := s.out.Close(); cerr != nil {
			s.log.Error().Err(cerr).Msg("closing audio output opened after close")
		}
	}
	s.resuming = nil
	s.mu.Unlock()

	r.err = err
	close(r.done)
}

// PlayClick plays one click for beat. It does nothing while the context is
// not running or the synth is muted.
func (s *Synth) PlayClick(beat int, volume float64) {
	s.mu.Lock()
	if s.muted || s.state != Running {
		s.mu.Unlock()
		s.log.Debug().Int("beat", beat).Msg("click skipped")
		return
	}
	s.mu.Unlock()

	s.out.Play(beep.Seq(Tone(s.sr, beat, volume), beep.Callback(func() {
		s.played.Add(1)
	})))
}

// Close releases the audio context.
func (s *Synth) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Closed {
		return nil
	}
	wasRunning := s.state == Running
	s.state = Closed
	if !wasRunning {
		return nil
	}
	return errors.Wrap(s.out.Close(), "close audio output")
}
