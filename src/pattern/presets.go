package pattern

import (
	"sort"

	"github.com/pkg/errors"

	"tjweldon/drumkit/src/kit"
)

// ErrUnknownPreset is returned by Preset for a name not in the table
var ErrUnknownPreset = errors.New("unknown preset")

// loop repeats seq until it fills a row, so {true, false, false, false}
// lands on every beat
func loop(seq ...bool) (row [Steps]bool) {
	if len(seq) == 0 {
		return row
	}
	for i := range row {
		row[i] = seq[i%len(seq)]
	}
	return row
}

// at switches on the listed steps
func at(steps ...int) (row [Steps]bool) {
	for _, s := range steps {
		row[s] = true
	}
	return row
}

var presets = map[string]Grid{
	"empty": {},

	"four-on-the-floor": {
		kit.Kick:  loop(true, false, false, false),
		kit.Snare: at(4, 12),
		kit.Hihat: loop(false, false, true, false),
	},

	// kick on the beat, claps on the offbeat and busy hats
	"beatbox": {
		kit.Kick:   at(0, 4, 8, 12),
		kit.Snare:  at(2, 6, 10, 14),
		kit.Hihat:  at(0, 2, 3, 4, 6, 7, 8, 10, 11, 12, 14),
		kit.Glitch: at(15),
	},

	"breakbeat": {
		kit.Kick:   at(0, 2, 10),
		kit.Snare:  at(4, 12),
		kit.Hihat:  loop(true, false),
		kit.Glitch: at(7, 13),
	},
}

// Presets lists the preset names in sorted order
func Presets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preset returns the named grid
func Preset(name string) (Grid, error) {
	g, ok := presets[name]
	if !ok {
		return Grid{}, errors.Wrapf(ErrUnknownPreset, "%q", name)
	}
	return g, nil
}
