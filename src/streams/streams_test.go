package streams

import (
	"sync"
	"testing"
	"time"

	"github.com/faiface/beep"
	"github.com/pkg/errors"
)

type fakeDevice struct {
	mu      sync.Mutex
	fails   int
	inits   int
	playing []beep.Streamer
}

func (d *fakeDevice) Init(rate beep.SampleRate, bufferSize int) error {
	d.inits++
	if d.fails > 0 {
		d.fails--
		return errors.New("device busy")
	}
	return nil
}

func (d *fakeDevice) Play(s ...beep.Streamer) { d.playing = append(d.playing, s...) }
func (d *fakeDevice) Lock()                   { d.mu.Lock() }
func (d *fakeDevice) Unlock()                 { d.mu.Unlock() }

func constant(v float64, n int) beep.Streamer {
	return beep.Take(n, beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i] = [2]float64{v, v}
		}
		return len(samples), true
	}))
}

func TestSpeakerRetriesAcquisition(t *testing.T) {
	dev := &fakeDevice{fails: 2}
	s := NewSpeaker(44100, 50*time.Millisecond)
	s.dev = dev

	for i := 0; i < 2; i++ {
		if err := s.Play(constant(1, 10)); err == nil {
			t.Fatalf("attempt %d: Play succeeded on a failing device", i)
		}
		if s.Ready() {
			t.Fatalf("attempt %d: sink reports ready", i)
		}
	}
	if err := s.Play(constant(1, 10)); err != nil {
		t.Fatalf("third Play: %v", err)
	}
	if !s.Ready() || dev.inits != 3 {
		t.Fatalf("ready=%v inits=%d, want ready after 3 inits", s.Ready(), dev.inits)
	}
	if err := s.Play(constant(1, 10)); err != nil || dev.inits != 3 {
		t.Fatalf("device reopened: err=%v inits=%d", err, dev.inits)
	}
	if len(dev.playing) != 1 || dev.playing[0] != beep.Streamer(s.Bus) {
		t.Fatalf("device is not playing the bus")
	}
	if s.Voices() != 2 {
		t.Errorf("Voices = %d, want 2", s.Voices())
	}
}

func TestOfflineClockAndMix(t *testing.T) {
	o := NewOffline(1000)
	if o.Now() != 0 {
		t.Fatalf("Now = %v before rendering", o.Now())
	}

	o.Play(constant(0.25, 100))
	o.Play(constant(0.5, 50))
	out := o.Render(200)

	if o.Now() != 0.2 {
		t.Errorf("Now = %v, want 0.2", o.Now())
	}
	if out[0][0] != 0.75 || out[75][0] != 0.25 || out[150][0] != 0 {
		t.Errorf("mix = %v %v %v, want 0.75 0.25 0", out[0][0], out[75][0], out[150][0])
	}

	// drained streamers leave the mix on the next pull
	o.Render(100)
	if o.Voices() != 0 {
		t.Errorf("%d voices left after draining", o.Voices())
	}

	o.Advance(0.2)
	if o.Now() != 0.5 {
		t.Errorf("Now = %v after Advance, want 0.5", o.Now())
	}
}

func TestMasterVolume(t *testing.T) {
	o := NewOffline(1000)
	o.SetVolume(-1)
	o.Play(constant(1, 10))
	if got := o.Render(1)[0][0]; got != 0.5 {
		t.Errorf("at -1 got %v, want 0.5", got)
	}
	o.SetVolume(-16)
	if got := o.Render(1)[0][0]; got != 0 {
		t.Errorf("muted bus got %v", got)
	}
}
