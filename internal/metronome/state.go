package metronome

import "math"

// State is a snapshot of the metronome as seen by renderers and listeners.
type State struct {
	BPM           int
	TimeSignature int
	Playing       bool
	Beat          int
	Volume        float64
}

// DefaultState is the state a metronome starts with.
func DefaultState() State {
	return State{
		BPM:           DefaultTempo,
		TimeSignature: DefaultTimeSignature,
		Volume:        DefaultVolume,
	}
}

// Downbeat reports whether the current beat is the first of the measure.
func (s State) Downbeat() bool {
	return s.Beat == 0
}

// TempoName returns the Italian tempo marking for bpm.
func TempoName(bpm int) string {
	switch {
	case bpm < 60:
		return "Largo"
	case bpm < 76:
		return "Adagio"
	case bpm < 108:
		return "Andante"
	case bpm < 120:
		return "Moderato"
	case bpm < 168:
		return "Allegro"
	default:
		return "Presto"
	}
}

// Angle returns the pendulum target angle in degrees. The pendulum swings
// to alternate sides on even and odd beats and rests at 0 when stopped.
func (s State) Angle() float64 {
	if !s.Playing {
		return 0
	}
	if s.Beat%2 == 0 {
		return -PendulumAngle
	}
	return PendulumAngle
}

// ValidTimeSignature reports whether n beats per measure is supported.
func ValidTimeSignature(n int) bool {
	for _, ts := range TimeSignatures {
		if ts == n {
			return true
		}
	}
	return false
}

func clampTempo(bpm int) int {
	if bpm < MinTempo {
		return MinTempo
	}
	if bpm > MaxTempo {
		return MaxTempo
	}
	return bpm
}

func clampVolume(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > MaxVolume {
		return MaxVolume
	}
	return v
}
