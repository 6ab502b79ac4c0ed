package sequencer

import (
	"math"
	"time"

	"github.com/faiface/beep"
	"github.com/pkg/errors"
)

// Steps is the length of the step cycle
const Steps = 16

const (
	MinTempo Tempo = 1
	MaxTempo Tempo = 400
)

// ErrTempoRange is returned for a tempo outside [MinTempo, MaxTempo]
var ErrTempoRange = errors.New("tempo out of range")

// Tempo is a type that represents a tempo in beats per minute
type Tempo float64

// Validate rejects tempos the clock cannot run at
func (t Tempo) Validate() error {
	if math.IsNaN(float64(t)) || t < MinTempo || t > MaxTempo {
		return errors.Wrapf(ErrTempoRange, "%v bpm not in [%v, %v]", float64(t), float64(MinTempo), float64(MaxTempo))
	}
	return nil
}

// Quantum returns the duration of a single beat
func (t Tempo) Quantum() time.Duration {
	return time.Duration(float64(time.Minute) / float64(t))
}

// StepMillis is the length of one sixteenth note in milliseconds
func (t Tempo) StepMillis() float64 {
	return 60000 / float64(t) / 4
}

// Step returns the duration of one sixteenth note
func (t Tempo) Step() time.Duration {
	return t.Quantum() / time.Duration(Sixteenth)
}

// Count returns the number of samples in a single beat for a given format.
func (t Tempo) Count(of beep.Format) (samples int) {
	return of.SampleRate.N(t.Quantum())
}

// StepAt is the position in the step cycle after elapsed at tempo t
func StepAt(elapsed time.Duration, t Tempo) int {
	ms := float64(elapsed) / float64(time.Millisecond)
	step := int(math.Floor(ms/t.StepMillis())) % Steps
	if step < 0 {
		step += Steps
	}
	return step
}

// Timing is a span both as a duration and as a sample count
type Timing struct {
	Duration time.Duration
	Samples  int
}

func (Timing) From(t Tempo, f beep.Format) Timing {
	return Timing{Duration: t.Quantum(), Samples: t.Count(f)}
}

// Bar is four beats
func (t Timing) Bar() Timing {
	return Timing{Duration: 4 * t.Duration, Samples: 4 * t.Samples}
}

func (t Timing) Quantise(q Quantisation) Timing {
	return Timing{
		Samples:  t.Samples / int(q),
		Duration: t.Duration / time.Duration(q),
	}
}

// Quantisation is the number of steps a beat is divided into
type Quantisation int

// Sixteenth is the clock's step: four to a beat
const Sixteenth Quantisation = 4
