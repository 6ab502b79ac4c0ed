// Package kit names the fixed set of voices the drum machine can play.
package kit

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// VoiceID identifies one of the four built-in percussion voices
type VoiceID int

const (
	Kick VoiceID = iota
	Snare
	Hihat
	Glitch
)

// Count is the number of voices, and so the number of pattern rows
const Count = 4

// ErrUnknownVoice is returned when parsing a name that is not a voice
var ErrUnknownVoice = errors.New("unknown voice")

// All lists the voices in row order
func All() []VoiceID { return []VoiceID{Kick, Snare, Hihat, Glitch} }

func (v VoiceID) Valid() bool { return v >= Kick && v <= Glitch }

func (v VoiceID) String() string {
	switch v {
	case Kick:
		return "kick"
	case Snare:
		return "snare"
	case Hihat:
		return "hihat"
	case Glitch:
		return "glitch"
	default:
		return fmt.Sprintf("voice(%d)", int(v))
	}
}

// Parse accepts the lower-case voice names and the single-key shortcuts
// a, s, h and j
func Parse(name string) (VoiceID, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "kick", "a":
		return Kick, nil
	case "snare", "s":
		return Snare, nil
	case "hihat", "hat", "h":
		return Hihat, nil
	case "glitch", "j":
		return Glitch, nil
	}
	return 0, errors.Wrapf(ErrUnknownVoice, "%q", name)
}

func (v VoiceID) MarshalText() ([]byte, error) {
	if !v.Valid() {
		return nil, errors.Wrapf(ErrUnknownVoice, "%d", int(v))
	}
	return []byte(v.String()), nil
}

func (v *VoiceID) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
