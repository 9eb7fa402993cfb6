package click

import (
	"math"
	"time"

	"github.com/faiface/beep"
)

const (
	SampleRate = beep.SampleRate(44100)

	AccentFrequency = 1000.0
	BeatFrequency   = 600.0

	Length = 100 * time.Millisecond

	// releaseGain is the gain the envelope decays to at the end of a click.
	releaseGain = 0.01
)

// Frequency returns the pitch of the click for beat. The downbeat is accented.
func Frequency(beat int) float64 {
	if beat == 0 {
		return AccentFrequency
	}
	return BeatFrequency
}

// tone is a single square wave click. It stops by itself after Length and is
// never reused.
type tone struct {
	sr     beep.SampleRate
	freq   float64
	volume float64
	pos    int
	n      int
}

// Tone returns a new click streamer for beat at the given volume.
func Tone(sr beep.SampleRate, beat int, volume float64) beep.Streamer {
	return &tone{
		sr:     sr,
		freq:   Frequency(beat),
		volume: volume,
		n:      sr.N(Length),
	}
}

func (t *tone) Stream(samples [][2]float64) (n int, ok bool) {
	if t.pos >= t.n {
		return 0, false
	}
	for i := range samples {
		if t.pos >= t.n {
			return i, true
		}
		v := t.gain(t.pos) * t.square(t.pos)
		samples[i][0] = v
		samples[i][1] = v
		t.pos++
	}
	return len(samples), true
}

func (t *tone) Err() error { return nil }

func (t *tone) square(pos int) float64 {
	phase := float64(pos) * t.freq / float64(t.sr)
	if phase-math.Floor(phase) < 0.5 {
		return 1
	}
	return -1
}

// gain follows an exponential ramp from volume to releaseGain over Length.
func (t *tone) gain(pos int) float64 {
	if t.volume <= 0 {
		return 0
	}
	elapsed := float64(pos) / float64(t.sr)
	return t.volume * math.Pow(releaseGain/t.volume, elapsed/Length.Seconds())
}
