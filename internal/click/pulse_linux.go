//go:build linux

package click

import (
	"sync"

	"github.com/faiface/beep"
	"github.com/jfreymuth/pulse"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Pulse plays clicks through a PulseAudio server. Every click gets its own
// playback stream.
type Pulse struct {
	mu     sync.Mutex
	client *pulse.Client
	sr     beep.SampleRate
	wg     sync.WaitGroup
	log    zerolog.Logger
}

func newPulse(log zerolog.Logger) (Output, error) {
	return &Pulse{log: log}, nil
}

func (p *Pulse) Init(sr beep.SampleRate) error {
	c, err := pulse.NewClient(pulse.ClientApplicationName("tempo"))
	if err != nil {
		return errors.Wrap(err, "connect to pulseaudio")
	}
	p.mu.Lock()
	p.client = c
	p.sr = sr
	p.mu.Unlock()
	return nil
}

func (p *Pulse) Play(s beep.Streamer) {
	p.mu.Lock()
	c := p.client
	p.mu.Unlock()
	if c == nil {
		return
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		var frames [][2]float64
		reader := pulse.Float32Reader(func(buf []float32) (int, error) {
			n := len(buf) / 2
			if cap(frames) < n {
				frames = make([][2]float64, n)
			}
			frames = frames[:n]
			got, ok := s.Stream(frames)
			if !ok || got == 0 {
				return 0, pulse.EndOfData
			}
			for i := 0; i < got; i++ {
				buf[i*2] = float32(frames[i][0])
				buf[i*2+1] = float32(frames[i][1])
			}
			return got * 2, nil
		})

		stream, err := c.NewPlayback(reader,
			pulse.PlaybackStereo,
			pulse.PlaybackSampleRate(int(p.sr)),
			pulse.PlaybackLatency(0.05),
		)
		if err != nil {
			p.log.Debug().Err(err).Msg("pulse playback failed, click dropped")
			return
		}
		stream.Start()
		stream.Drain()
		stream.Stop()
		stream.Close()
	}()
}

func (p *Pulse) Close() error {
	p.wg.Wait()
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		p.client.Close()
		p.client = nil
	}
	return nil
}
