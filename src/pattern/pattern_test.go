package pattern

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"

	"tjweldon/drumkit/src/kit"
)

func TestNewIsEmpty(t *testing.T) {
	s := New()
	for _, v := range kit.All() {
		for step := 0; step < Steps; step++ {
			on, err := s.Get(v, step)
			if err != nil || on {
				t.Fatalf("Get(%v, %d) = %v, %v", v, step, on, err)
			}
		}
	}
	if s.Selected() != kit.Kick {
		t.Errorf("selected %v, want kick", s.Selected())
	}
}

func TestToggleInvolutive(t *testing.T) {
	s := seeded(t)
	for _, v := range kit.All() {
		for step := 0; step < Steps; step++ {
			before, _ := s.Get(v, step)
			first, err := s.Toggle(v, step)
			if err != nil {
				t.Fatal(err)
			}
			if first == before {
				t.Fatalf("Toggle(%v, %d) did not flip", v, step)
			}
			second, _ := s.Toggle(v, step)
			if second != before {
				t.Fatalf("Toggle twice on (%v, %d) = %v, want %v", v, step, second, before)
			}
		}
	}
}

// seeded holds a busy grid, so cells start both on and off
func seeded(t *testing.T) *Store {
	t.Helper()
	g, err := Preset("beatbox")
	if err != nil {
		t.Fatal(err)
	}
	s := New()
	s.Replace(g)
	return s
}

func TestOutOfRange(t *testing.T) {
	s := New()
	cases := []struct {
		name  string
		voice kit.VoiceID
		step  int
	}{
		{"negative step", kit.Kick, -1},
		{"step 16", kit.Snare, Steps},
		{"bad voice", kit.VoiceID(7), 0},
		{"negative voice", kit.VoiceID(-1), 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := s.Toggle(tc.voice, tc.step); !errors.Is(err, ErrOutOfRange) {
				t.Errorf("Toggle err = %v", err)
			}
			if _, err := s.Get(tc.voice, tc.step); !errors.Is(err, ErrOutOfRange) {
				t.Errorf("Get err = %v", err)
			}
			if err := s.Set(tc.voice, tc.step, true); !errors.Is(err, ErrOutOfRange) {
				t.Errorf("Set err = %v", err)
			}
		})
	}
	if err := s.Select(kit.VoiceID(9)); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Select err = %v", err)
	}
}

func TestActiveAndObservers(t *testing.T) {
	s := New()
	var changes []Change
	s.OnChange(func(c Change) { changes = append(changes, c) })

	_ = s.Set(kit.Hihat, 3, true)
	_, _ = s.Toggle(kit.Kick, 3)
	_ = s.Select(kit.Glitch)

	got := s.Active(3)
	if len(got) != 2 || got[0] != kit.Kick || got[1] != kit.Hihat {
		t.Errorf("Active(3) = %v, want [kick hihat]", got)
	}
	if s.Active(4) != nil || s.Active(99) != nil {
		t.Error("Active on an empty or invalid step is not nil")
	}
	if len(changes) != 3 {
		t.Fatalf("%d changes, want 3", len(changes))
	}
	if c := changes[1]; c.Voice != kit.Kick || c.Step != 3 || !c.On {
		t.Errorf("toggle change = %+v", c)
	}
	if c := changes[2]; c.Step != -1 || c.Selected != kit.Glitch {
		t.Errorf("select change = %+v", c)
	}

	s.Clear()
	if s.Grid() != (Grid{}) {
		t.Error("Clear left cells on")
	}
}

func TestPresets(t *testing.T) {
	for _, name := range Presets() {
		if _, err := Preset(name); err != nil {
			t.Errorf("Preset(%q): %v", name, err)
		}
	}
	g, _ := Preset("four-on-the-floor")
	for step := 0; step < Steps; step++ {
		if g[kit.Kick][step] != (step%4 == 0) {
			t.Errorf("four-on-the-floor kick step %d = %v", step, g[kit.Kick][step])
		}
	}
	if _, err := Preset("polka"); !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("unknown preset err = %v", err)
	}
}

func TestJSONShape(t *testing.T) {
	s := New()
	_ = s.Set(kit.Snare, 4, true)
	_ = s.Select(kit.Hihat)

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	var raw struct {
		ActiveInstrument string            `json:"activeInstrument"`
		Pattern          map[string][]bool `json:"pattern"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if raw.ActiveInstrument != "hihat" {
		t.Errorf("activeInstrument = %q", raw.ActiveInstrument)
	}
	for _, name := range []string{"kick", "snare", "hihat", "glitch"} {
		if len(raw.Pattern[name]) != Steps {
			t.Errorf("%s row has %d steps", name, len(raw.Pattern[name]))
		}
	}
	if !raw.Pattern["snare"][4] {
		t.Error("snare step 4 lost")
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pattern.json")

	s := seeded(t)
	_ = s.Select(kit.Snare)
	if err := s.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded := Load(path)
	if loaded.Grid() != s.Grid() {
		t.Error("grid changed across save and load")
	}
	if loaded.Selected() != kit.Snare {
		t.Errorf("selected %v after load", loaded.Selected())
	}
}

func TestLoadFallsBack(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		name    string
		content string
	}{
		{"not json", "{{{"},
		{"no pattern", `{"activeInstrument":"snare"}`},
		{"short row", `{"activeInstrument":"kick","pattern":{"kick":[true],"snare":[],"hihat":[],"glitch":[]}}`},
		{"missing row", `{"activeInstrument":"kick","pattern":{"kick":[false,false,false,false,false,false,false,false,false,false,false,false,false,false,false,false]}}`},
		{"unknown voice", `{"activeInstrument":"cowbell","pattern":{}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.name+".json")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatal(err)
			}
			s := Load(path)
			if s.Grid() != (Grid{}) || s.Selected() != kit.Kick {
				t.Errorf("did not fall back to the default: %v", s.Grid())
			}
		})
	}

	if s := Load(filepath.Join(dir, "absent.json")); s.Grid() != (Grid{}) {
		t.Error("missing file did not give an empty grid")
	}
}

func TestResolve(t *testing.T) {
	p, err := Resolve("")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(p) != "pattern.json" || p[0] == '~' {
		t.Errorf("Resolve(\"\") = %q", p)
	}
	if p, _ := Resolve("/tmp/x.json"); p != "/tmp/x.json" {
		t.Errorf("absolute path rewritten to %q", p)
	}
}
