package kit

import (
	"testing"

	"github.com/pkg/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want VoiceID
	}{
		{"kick", Kick},
		{"Snare", Snare},
		{" hihat ", Hihat},
		{"hat", Hihat},
		{"j", Glitch},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	if _, err := Parse("cowbell"); errors.Cause(err) != ErrUnknownVoice {
		t.Errorf("Parse(cowbell) error = %v, want ErrUnknownVoice", err)
	}
}

func TestTextRoundTrip(t *testing.T) {
	for _, v := range All() {
		text, err := v.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", v, err)
		}
		var back VoiceID
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%s): %v", text, err)
		}
		if back != v {
			t.Errorf("round trip of %v gave %v", v, back)
		}
	}

	if _, err := VoiceID(9).MarshalText(); err == nil {
		t.Error("MarshalText accepted an out of range voice")
	}
}
