// Package metronome keeps tempo, meter and the beat counter of a metronome
// and drives them from a single periodic timer.
//
// A Controller is either stopped or running. While running exactly one timer
// is armed; every change of tempo or meter disarms it before a new one is
// armed with the new interval. Each tick advances the beat modulo the time
// signature and is announced to the listeners registered with OnBeat.
package metronome

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var (
	ErrInvalidTimeSignature = errors.New("unsupported time signature")
	ErrAudioUnavailable     = errors.New("audio unavailable")
)

// Unlocker prepares the audio output before the first beat is played.
type Unlocker interface {
	Unlock(ctx context.Context) error
}

// Listener receives state snapshots.
type Listener func(State)

type Option func(*Controller)

// WithTicker replaces the timer factory, mostly for tests.
func WithTicker(fn TickerFunc) Option {
	return func(c *Controller) { c.newTicker = fn }
}

// WithUnlocker sets the audio output unlocked on every start.
func WithUnlocker(u Unlocker) Option {
	return func(c *Controller) { c.unlocker = u }
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// WithState sets the initial tempo, meter and volume. Values out of range are
// clamped and an unsupported meter falls back to the default.
func WithState(s State) Option {
	return func(c *Controller) {
		c.state.BPM = clampTempo(s.BPM)
		c.state.Volume = clampVolume(s.Volume)
		if ValidTimeSignature(s.TimeSignature) {
			c.state.TimeSignature = s.TimeSignature
		}
	}
}

type Controller struct {
	mu       sync.Mutex
	state    State
	timer    *timer
	gen      uint64
	onBeat   []Listener
	onChange []Listener

	// toggleMu serializes start/stop so an unlock in flight cannot race a
	// second toggle. emitMu keeps notifications in tick order.
	toggleMu sync.Mutex
	emitMu   sync.Mutex

	newTicker TickerFunc
	unlocker  Unlocker
	log       zerolog.Logger
}

// timer is the scoped resource held while running.
type timer struct {
	ticker   Ticker
	done     chan struct{}
	gen      uint64
	interval time.Duration
	next     time.Time
}

func New(opts ...Option) *Controller {
	c := &Controller{
		state:     DefaultState(),
		newTicker: NewTicker,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnBeat registers fn to be called every time the beat advances, including
// the downbeat played when the metronome starts. Listeners run on the timer
// goroutine one at a time; they must not block or call back into the
// Controller.
func (c *Controller) OnBeat(fn Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onBeat = append(c.onBeat, fn)
}

// OnChange registers fn to be called after every user driven change. The
// same rules as for OnBeat apply.
func (c *Controller) OnChange(fn Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = append(c.onChange, fn)
}

// Watch returns a channel receiving every beat and change. A reader that
// falls behind loses the oldest pending snapshots, never the latest one.
func (c *Controller) Watch(size int) <-chan State {
	if size < 1 {
		size = 1
	}
	ch := make(chan State, size)
	fn := func(s State) {
		for {
			select {
			case ch <- s:
				return
			default:
			}
			select {
			case <-ch:
			default:
			}
		}
	}
	c.OnBeat(fn)
	c.OnChange(fn)
	return ch
}

func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Playing
}

// Interval returns the current time between beats.
func (c *Controller) Interval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return BeatInterval(c.state.BPM)
}

func (c *Controller) IncreaseBPM() {
	c.mu.Lock()
	c.setBPM(c.state.BPM + 1)
}

func (c *Controller) DecreaseBPM() {
	c.mu.Lock()
	c.setBPM(c.state.BPM - 1)
}

// SetBPM sets the tempo, clamped to [MinTempo, MaxTempo].
func (c *Controller) SetBPM(bpm int) {
	c.mu.Lock()
	c.setBPM(bpm)
}

// setBPM expects c.mu to be held and releases it.
func (c *Controller) setBPM(bpm int) {
	bpm = clampTempo(bpm)
	if bpm == c.state.BPM {
		c.mu.Unlock()
		return
	}
	c.state.BPM = bpm
	if c.state.Playing {
		c.arm()
	}
	c.changed()
}

// SetTimeSignature sets the number of beats per measure. A beat past the end
// of the new measure is clamped to its last beat so the next tick lands on
// the downbeat; otherwise the beat is kept.
func (c *Controller) SetTimeSignature(n int) error {
	if !ValidTimeSignature(n) {
		return errors.Wrapf(ErrInvalidTimeSignature, "%d beats per measure", n)
	}

	c.mu.Lock()
	if n == c.state.TimeSignature {
		c.mu.Unlock()
		return nil
	}
	c.state.TimeSignature = n
	if c.state.Beat >= n {
		c.state.Beat = n - 1
	}
	if c.state.Playing {
		c.arm()
	}
	c.changed()
	return nil
}

// SetVolume sets the click volume, clamped to [0, MaxVolume].
func (c *Controller) SetVolume(v float64) {
	c.mu.Lock()
	v = clampVolume(v)
	if v == c.state.Volume {
		c.mu.Unlock()
		return
	}
	c.state.Volume = v
	c.changed()
}

// Toggle starts a stopped metronome or stops a running one. Starting waits
// for the audio output to unlock; if that fails the metronome stays stopped
// and the returned error wraps ErrAudioUnavailable.
func (c *Controller) Toggle(ctx context.Context) error {
	c.toggleMu.Lock()
	defer c.toggleMu.Unlock()

	if c.Playing() {
		c.Stop()
		return nil
	}

	if c.unlocker != nil {
		if err := c.unlocker.Unlock(ctx); err != nil {
			c.log.Warn().Err(err).Msg("audio unlock failed, staying stopped")
			return fmt.Errorf("%w: %w", ErrAudioUnavailable, err)
		}
	}

	c.mu.Lock()
	if c.state.Playing {
		c.mu.Unlock()
		return nil
	}
	c.state.Playing = true
	c.state.Beat = 0
	c.arm()
	s := c.state
	beat, change := c.listeners()

	c.emitMu.Lock()
	c.mu.Unlock()
	defer c.emitMu.Unlock()

	c.log.Info().Int("bpm", s.BPM).Int("timesig", s.TimeSignature).Msg("metronome started")
	notify(change, s)
	notify(beat, s)
	return nil
}

// Stop disarms the timer and resets the beat. It is a no-op when stopped.
func (c *Controller) Stop() {
	c.mu.Lock()
	if !c.state.Playing {
		c.mu.Unlock()
		return
	}
	c.disarm()
	c.state.Playing = false
	c.state.Beat = 0
	c.log.Info().Msg("metronome stopped")
	c.changed()
}

// Close releases the timer. The controller must not be used afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disarm()
	c.state.Playing = false
	c.state.Beat = 0
}

// arm replaces the active timer with one running at the current tempo.
// Callers hold c.mu.
func (c *Controller) arm() {
	c.disarm()

	c.gen++
	interval := BeatInterval(c.state.BPM)
	t := &timer{
		ticker:   c.newTicker(interval),
		done:     make(chan struct{}),
		gen:      c.gen,
		interval: interval,
		next:     time.Now().Add(interval),
	}
	c.timer = t
	c.log.Debug().Dur("interval", interval).Uint64("gen", t.gen).Msg("timer armed")

	go c.run(t)
}

// disarm stops the active timer, if any. Callers hold c.mu.
func (c *Controller) disarm() {
	if c.timer == nil {
		return
	}
	c.timer.ticker.Stop()
	close(c.timer.done)
	c.log.Debug().Uint64("gen", c.timer.gen).Msg("timer disarmed")
	c.timer = nil
}

func (c *Controller) run(t *timer) {
	for {
		select {
		case <-t.done:
			return
		case now := <-t.ticker.C():
			if !c.tick(t, now) {
				return
			}
		}
	}
}

// tick advances the beat if t is still the active timer.
func (c *Controller) tick(t *timer, now time.Time) bool {
	c.mu.Lock()
	if c.timer == nil || c.timer.gen != t.gen {
		c.mu.Unlock()
		return false
	}

	drift := now.Sub(t.next)
	if drift > 10*time.Millisecond || drift < -10*time.Millisecond {
		c.log.Debug().Dur("drift", drift).Msg("tick drifted")
		t.next = now
	}
	t.next = t.next.Add(t.interval)

	c.state.Beat = (c.state.Beat + 1) % c.state.TimeSignature
	s := c.state
	beat, _ := c.listeners()

	c.emitMu.Lock()
	c.mu.Unlock()
	notify(beat, s)
	c.emitMu.Unlock()
	return true
}

// changed notifies change listeners. Callers hold c.mu, which is released.
func (c *Controller) changed() {
	s := c.state
	_, change := c.listeners()

	c.emitMu.Lock()
	c.mu.Unlock()
	notify(change, s)
	c.emitMu.Unlock()
}

func (c *Controller) listeners() (beat, change []Listener) {
	return append([]Listener(nil), c.onBeat...), append([]Listener(nil), c.onChange...)
}

func notify(ls []Listener, s State) {
	for _, fn := range ls {
		fn(s)
	}
}
