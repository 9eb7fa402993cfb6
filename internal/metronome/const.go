package metronome

import "time"

const (
	MinTempo = 40
	MaxTempo = 200

	DefaultTempo         = 120
	DefaultTimeSignature = 4
	DefaultVolume        = 0.1
	MaxVolume            = 0.3
)

// TimeSignatures lists the supported number of beats per measure.
var TimeSignatures = []int{2, 3, 4, 6}

// PendulumAngle is the swing of the pendulum in degrees on either side of center.
const PendulumAngle = 25.0

// BeatInterval returns the time between two beats at the given tempo.
func BeatInterval(bpm int) time.Duration {
	return time.Duration(60000.0 / float64(bpm) * float64(time.Millisecond))
}
