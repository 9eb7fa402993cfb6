package click

import (
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Speaker plays clicks on the default device through beep's speaker.
type Speaker struct {
	// Latency is the size of the speaker buffer. Zero means 100ms.
	Latency time.Duration
}

func (sp *Speaker) Init(sr beep.SampleRate) error {
	latency := sp.Latency
	if latency <= 0 {
		latency = time.Second / 10
	}
	if err := speaker.Init(sr, sr.N(latency)); err != nil {
		return errors.Wrap(err, "error while initializing speaker")
	}
	return nil
}

func (sp *Speaker) Play(s beep.Streamer) {
	speaker.Play(s)
}

func (sp *Speaker) Close() error {
	speaker.Clear()
	speaker.Close()
	return nil
}

// Discard accepts every click and plays nothing.
type Discard struct{}

func (Discard) Init(beep.SampleRate) error { return nil }

func (Discard) Play(s beep.Streamer) {
	buf := make([][2]float64, 512)
	for {
		if _, ok := s.Stream(buf); !ok {
			return
		}
	}
}

func (Discard) Close() error { return nil }

// NewOutput returns the output registered under name.
func NewOutput(name string, log zerolog.Logger) (Output, error) {
	switch name {
	case "", "speaker":
		return &Speaker{}, nil
	case "pulse":
		return newPulse(log)
	case "none":
		return Discard{}, nil
	}
	return nil, errors.Wrapf(ErrUnsupportedOutput, "%q", name)
}
