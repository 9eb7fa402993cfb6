package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"

	"github.com/dimfu/tempo/internal/metronome"
)

type fakeController struct {
	state     metronome.State
	toggleErr error
	toggles   int
}

func newFake() *fakeController {
	return &fakeController{state: metronome.DefaultState()}
}

func (f *fakeController) IncreaseBPM() { f.state.BPM++ }
func (f *fakeController) DecreaseBPM() { f.state.BPM-- }

func (f *fakeController) SetTimeSignature(n int) error {
	if !metronome.ValidTimeSignature(n) {
		return metronome.ErrInvalidTimeSignature
	}
	f.state.TimeSignature = n
	return nil
}

func (f *fakeController) SetVolume(v float64) { f.state.Volume = v }

func (f *fakeController) Toggle(ctx context.Context) error {
	f.toggles++
	if f.toggleErr != nil {
		return f.toggleErr
	}
	f.state.Playing = !f.state.Playing
	return nil
}

func (f *fakeController) Snapshot() metronome.State { return f.state }

func (f *fakeController) Watch(size int) <-chan metronome.State {
	return make(chan metronome.State, size)
}

type fakeMuter struct{ muted bool }

func (f *fakeMuter) SetMuted(m bool) { f.muted = m }
func (f *fakeMuter) Muted() bool     { return f.muted }

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestInitReturnsFrameCmd(t *testing.T) {
	m := New(context.Background(), newFake())
	if m.Init() == nil {
		t.Fatal("Init() returned nil")
	}
}

func TestTempoKeys(t *testing.T) {
	ctrl := newFake()
	m := New(context.Background(), ctrl)

	m, _ = update(m, runes("+"))
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyUp})
	if ctrl.state.BPM != 122 {
		t.Errorf("bpm = %d, want 122", ctrl.state.BPM)
	}
	m, _ = update(m, runes("-"))
	if m.State().BPM != 121 {
		t.Errorf("model bpm = %d, want 121", m.State().BPM)
	}
}

func TestMeterKeys(t *testing.T) {
	ctrl := newFake()
	m := New(context.Background(), ctrl)
	for _, k := range []string{"2", "3", "6", "4"} {
		m, _ = update(m, runes(k))
		if got := ctrl.state.TimeSignature; got != int(k[0]-'0') {
			t.Errorf("key %s: time signature %d", k, got)
		}
	}
	m, _ = update(m, runes("5"))
	if ctrl.state.TimeSignature != 4 {
		t.Error("unbound key changed the meter")
	}
}

func TestVolumeKeys(t *testing.T) {
	ctrl := newFake()
	m := New(context.Background(), ctrl)
	m, _ = update(m, runes("]"))
	if ctrl.state.Volume != 0.11 {
		t.Errorf("volume = %v, want 0.11", ctrl.state.Volume)
	}
	m, _ = update(m, runes("["))
	update(m, runes("["))
	if ctrl.state.Volume != 0.09 {
		t.Errorf("volume = %v, want 0.09", ctrl.state.Volume)
	}
}

func TestToggleRunsAsCommand(t *testing.T) {
	ctrl := newFake()
	m := New(context.Background(), ctrl)

	m, cmd := update(m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
	if cmd == nil {
		t.Fatal("toggle returned no command")
	}
	if ctrl.toggles != 0 {
		t.Fatal("toggle ran inside Update")
	}
	m, _ = update(m, cmd())
	if ctrl.toggles != 1 || !m.State().Playing {
		t.Errorf("toggles=%d playing=%v", ctrl.toggles, m.State().Playing)
	}
	if m.Err() != nil {
		t.Errorf("unexpected error %v", m.Err())
	}
}

func TestToggleFailureShowsError(t *testing.T) {
	ctrl := newFake()
	ctrl.toggleErr = errors.Wrap(metronome.ErrAudioUnavailable, "no device")
	m := New(context.Background(), ctrl, WithMuter(&fakeMuter{}))

	_, cmd := update(m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
	m, _ = update(m, cmd())
	if m.State().Playing {
		t.Error("playing after failed start")
	}
	if !errors.Is(m.Err(), metronome.ErrAudioUnavailable) {
		t.Fatalf("err = %v", m.Err())
	}
	if !strings.Contains(m.View(), "press m") {
		t.Error("view does not offer silent mode")
	}
}

func TestMuteClearsError(t *testing.T) {
	muter := &fakeMuter{}
	m := New(context.Background(), newFake(), WithMuter(muter))
	m.err = metronome.ErrAudioUnavailable

	m, _ = update(m, runes("m"))
	if !muter.muted {
		t.Error("muter not muted")
	}
	if m.Err() != nil {
		t.Error("error kept after mute")
	}
	if !strings.Contains(m.View(), "muted") {
		t.Error("view does not show muted")
	}
}

func TestStateMsg(t *testing.T) {
	m := New(context.Background(), newFake())
	s := metronome.State{BPM: 168, TimeSignature: 3, Playing: true, Beat: 2, Volume: 0.2}
	m, _ = update(m, StateMsg(s))
	if m.State() != s {
		t.Errorf("state = %+v", m.State())
	}
	view := m.View()
	for _, want := range []string{"168 BPM", "Presto", "3 beats", "playing"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestFrameMovesPendulumTowardTarget(t *testing.T) {
	m := New(context.Background(), newFake())
	m, _ = update(m, StateMsg(metronome.State{BPM: 120, TimeSignature: 4, Playing: true, Beat: 1}))
	for i := 0; i < 5; i++ {
		var cmd tea.Cmd
		m, cmd = update(m, frameMsg{})
		if cmd == nil {
			t.Fatal("frame did not schedule the next frame")
		}
	}
	if m.angle <= 0 {
		t.Errorf("angle = %v, want swinging toward %v", m.angle, metronome.PendulumAngle)
	}
}

func TestQuit(t *testing.T) {
	m := New(context.Background(), newFake())
	_, cmd := update(m, runes("q"))
	if cmd == nil {
		t.Fatal("no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestLights(t *testing.T) {
	s := metronome.State{TimeSignature: 6}
	if got := strings.Count(lights(s), "●"); got != 6 {
		t.Errorf("%d lights, want 6", got)
	}
}
