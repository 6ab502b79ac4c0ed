package streams

import (
	"sync"

	"github.com/faiface/beep"
)

// Offline is a Sink with no device behind it. Time only moves when someone
// pulls samples, which makes it the sink for file renders and tests.
type Offline struct {
	*Bus
	mu sync.Mutex
}

func NewOffline(rate beep.SampleRate) *Offline {
	return &Offline{Bus: NewBus(Format(rate))}
}

// Play adds s to the mix at the current audio time
func (o *Offline) Play(s beep.Streamer) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.add(s)
	return nil
}

// Voices is how many graphs are still sounding
func (o *Offline) Voices() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.Bus.Voices()
}

func (o *Offline) SetVolume(level float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Bus.SetVolume(level)
}

// Stream pulls samples out of the mix, advancing the clock
func (o *Offline) Stream(samples [][2]float64) (n int, ok bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.Bus.Stream(samples)
}

// Render pulls n samples and returns them
func (o *Offline) Render(n int) [][2]float64 {
	out := make([][2]float64, n)
	o.Stream(out)
	return out
}

// Advance pulls and discards the next d seconds of audio
func (o *Offline) Advance(seconds float64) {
	o.Render(o.SampleRate().N(durationOf(seconds)))
}
