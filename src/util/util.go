package util

import (
	"fmt"
	"log"
)

type number interface {
	~int | ~int64 | ~float64
}

// Clamp pins v into [lo, hi]
func Clamp[T number](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

type LogVolume int

const (
	Silent LogVolume = 1 << iota
	Quieter
	Quiet
	Normal
	Loud
	Louder
	Loudest
)

func (lv LogVolume) String() string {
	switch lv {
	case Silent:
		return "Silent"
	case Quieter:
		return "Quieter"
	case Quiet:
		return "Quiet"
	case Normal:
		return "Normal"
	case Loud:
		return "Loud"
	case Louder:
		return "Louder"
	case Loudest:
		return "Loudest"
	default:
		return fmt.Sprintf("%d", lv)
	}
}

// initialise the log level as Loud by default so only the noisier
// per-chunk messages are hidden
var filterBelow = func(lv LogVolume) *LogVolume { return &lv }(Loud)

// FilterBelow sets the log level below which messages will not be printed
func (lv LogVolume) FilterBelow() LogVolume {
	*filterBelow = lv
	return lv
}

// Verbosity maps a count of -v flags onto a filter level
func Verbosity(count int) LogVolume {
	lv := Loud
	for i := 0; i < count && lv > Silent; i++ {
		lv >>= 1
	}
	return lv
}

// Logger is a context-aware logger
type Logger struct {
	prefixes []any
	Volume   LogVolume
}

// Ctx returns a copy of the logger with the given prefix added after all pre-existing prefixes
func (l Logger) Ctx(prefix string) Logger {
	prefixes := make([]any, 0, len(l.prefixes)+1)
	prefixes = append(prefixes, l.prefixes...)
	return Logger{append(prefixes, prefix+":"), l.Volume}
}

// Vol is like a -v option. A Loud logger will print all messages,
// a Silent one will print none
func (l Logger) Vol(v LogVolume) Logger {
	l.Volume = v
	return l
}

// Log shares its interface with log.Println
func (l Logger) Log(msgs ...any) {
	if l.Volume >= *filterBelow {
		l.emit(l.Volume.String(), msgs)
	}
}

// Warn reports a recoverable problem. It prints whatever the volume.
func (l Logger) Warn(msgs ...any) {
	l.emit("Warn", msgs)
}

func (l Logger) emit(tag string, msgs []any) {
	line := make([]any, 0, len(l.prefixes)+len(msgs)+1)
	line = append(line, fmt.Sprintf("[%s]", tag))
	line = append(line, l.prefixes...)
	log.Println(append(line, msgs...)...)
}
