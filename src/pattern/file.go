package pattern

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"

	"tjweldon/drumkit/src/kit"
	"tjweldon/drumkit/src/util"
)

// DefaultFile is where the pattern lives between runs
const DefaultFile = "~/.config/drumkit/pattern.json"

// ErrMalformed is returned when a saved pattern cannot be read back
var ErrMalformed = errors.New("malformed pattern")

// document is the on-disk shape. Rows are keyed by voice name.
type document struct {
	ActiveInstrument kit.VoiceID       `json:"activeInstrument"`
	Pattern          map[string][]bool `json:"pattern"`
}

// Resolve expands a leading ~ in path, falling back to DefaultFile when path
// is empty
func Resolve(path string) (string, error) {
	if path == "" {
		path = DefaultFile
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", errors.Wrapf(err, "expanding %s", path)
	}
	return expanded, nil
}

func (s *Store) MarshalJSON() ([]byte, error) {
	g := s.Grid()
	doc := document{ActiveInstrument: s.Selected(), Pattern: map[string][]bool{}}
	for _, v := range kit.All() {
		row := g[v]
		doc.Pattern[v.String()] = row[:]
	}
	return json.Marshal(doc)
}

// UnmarshalJSON only accepts a document with every row present and exactly
// Steps long. On error the store is left as it was.
func (s *Store) UnmarshalJSON(data []byte) error {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return errors.Wrap(ErrMalformed, err.Error())
	}
	if doc.Pattern == nil {
		return errors.Wrap(ErrMalformed, "no pattern")
	}

	var g Grid
	for _, v := range kit.All() {
		row, ok := doc.Pattern[v.String()]
		if !ok {
			return errors.Wrapf(ErrMalformed, "missing %v row", v)
		}
		if len(row) != Steps {
			return errors.Wrapf(ErrMalformed, "%v row has %d steps", v, len(row))
		}
		copy(g[v][:], row)
	}

	s.Replace(g)
	// a missing activeInstrument decodes as the zero voice
	return s.Select(doc.ActiveInstrument)
}

// Load reads the pattern at path. A missing or unreadable file is not an
// error: the caller gets an empty pattern and a warning is logged.
func Load(path string) *Store {
	logger := logger.Ctx("Load")
	s := New()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Vol(util.Normal).Log("no saved pattern at", path)
		return s
	}
	if err != nil {
		logger.Warn(errors.Wrapf(err, "reading %s", path))
		return s
	}
	if err := s.UnmarshalJSON(data); err != nil {
		logger.Warn(errors.Wrapf(err, "loading %s", path))
		return s
	}
	return s
}

// Save writes the pattern to path, creating its directory. The file is
// replaced atomically.
func (s *Store) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding pattern")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "creating %s", filepath.Dir(path))
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".pattern-*.json")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "writing %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "closing %s", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "saving %s", path)
	}
	logger.Ctx("Save").Vol(util.Normal).Log("saved", path)
	return nil
}
