package metronome

import "time"

// Ticker is the periodic timer driving the beat loop.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates a Ticker firing every d.
type TickerFunc func(d time.Duration) Ticker

type timeTicker struct {
	*time.Ticker
}

func (t timeTicker) C() <-chan time.Time { return t.Ticker.C }

// NewTicker is the default TickerFunc backed by time.Ticker.
func NewTicker(d time.Duration) Ticker {
	return timeTicker{time.NewTicker(d)}
}
