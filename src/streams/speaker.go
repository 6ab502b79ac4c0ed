package streams

import (
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/pkg/errors"

	"tjweldon/drumkit/src/util"
)

var logger = util.Logger{}.Ctx("streams")

// device is the slice of beep/speaker the Speaker sink uses
type device interface {
	Init(rate beep.SampleRate, bufferSize int) error
	Play(s ...beep.Streamer)
	Lock()
	Unlock()
}

type beepSpeaker struct{}

func (beepSpeaker) Init(rate beep.SampleRate, bufferSize int) error {
	return speaker.Init(rate, bufferSize)
}
func (beepSpeaker) Play(s ...beep.Streamer) { speaker.Play(s...) }
func (beepSpeaker) Lock()                   { speaker.Lock() }
func (beepSpeaker) Unlock()                 { speaker.Unlock() }

// Speaker is the Sink for the system audio device. The device is opened on
// the first Play rather than at construction, and a failed open is retried
// on the next Play.
type Speaker struct {
	*Bus
	latency time.Duration
	dev     device

	mu    sync.Mutex
	ready bool
}

// NewSpeaker builds the sink; latency is the device buffer length
func NewSpeaker(rate beep.SampleRate, latency time.Duration) *Speaker {
	return &Speaker{Bus: NewBus(Format(rate)), latency: latency, dev: beepSpeaker{}}
}

func (s *Speaker) acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}

	logger := logger.Ctx("Speaker.acquire").Vol(util.Normal)
	rate := s.SampleRate()
	if err := s.dev.Init(rate, rate.N(s.latency)); err != nil {
		return errors.Wrap(err, "open audio device")
	}
	s.dev.Play(s.Bus)
	s.ready = true
	logger.Log("audio device open at", rate, "Hz")
	return nil
}

// Play opens the device if needed and adds st to the mix
func (s *Speaker) Play(st beep.Streamer) error {
	if err := s.acquire(); err != nil {
		return err
	}
	s.dev.Lock()
	s.add(st)
	s.dev.Unlock()
	return nil
}

// Ready reports whether the device has been opened
func (s *Speaker) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

func (s *Speaker) SetVolume(level float64) {
	s.dev.Lock()
	s.Bus.SetVolume(level)
	s.dev.Unlock()
}

// Voices is how many graphs are still sounding
func (s *Speaker) Voices() int {
	s.dev.Lock()
	defer s.dev.Unlock()
	return s.Bus.Voices()
}

// SetSessionHint takes how the app wants the platform to treat its audio.
// beep exposes no session API, so the hint is only logged.
func (s *Speaker) SetSessionHint(h SessionHint) error {
	logger.Ctx("Speaker").Vol(util.Normal).Log("session hint", h)
	return nil
}

func durationOf(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

