// Package pattern is the 4x16 grid of which voice plays on which step, plus
// the instrument currently being edited.
package pattern

import (
	"sync"

	"github.com/pkg/errors"

	"tjweldon/drumkit/src/kit"
	"tjweldon/drumkit/src/util"
)

var logger = util.Logger{}.Ctx("pattern")

// Steps is the number of columns in the grid
const Steps = 16

// ErrOutOfRange is returned for a voice or step outside the grid
var ErrOutOfRange = errors.New("cell out of range")

// Grid is indexed by voice, then step
type Grid [kit.Count][Steps]bool

// Change describes one mutation of a Store. Step is -1 when the whole grid
// was replaced.
type Change struct {
	Voice    kit.VoiceID
	Step     int
	On       bool
	Selected kit.VoiceID
}

// Store holds the grid and the selected instrument. The grid is always fully
// populated; the zero value is an empty pattern with the kick selected.
type Store struct {
	mu        sync.RWMutex
	grid      Grid
	selected  kit.VoiceID
	observers []func(Change)
}

func New() *Store { return &Store{} }

func check(v kit.VoiceID, step int) error {
	if !v.Valid() || step < 0 || step >= Steps {
		return errors.Wrapf(ErrOutOfRange, "%v step %d", v, step)
	}
	return nil
}

// OnChange registers f to hear about every mutation
func (s *Store) OnChange(f func(Change)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, f)
}

func (s *Store) notify(c Change) {
	s.mu.RLock()
	observers := append([]func(Change){}, s.observers...)
	s.mu.RUnlock()
	for _, f := range observers {
		f(c)
	}
}

// Get reads one cell
func (s *Store) Get(v kit.VoiceID, step int) (bool, error) {
	if err := check(v, step); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grid[v][step], nil
}

// Toggle flips one cell and returns its new value
func (s *Store) Toggle(v kit.VoiceID, step int) (bool, error) {
	if err := check(v, step); err != nil {
		return false, err
	}
	s.mu.Lock()
	s.grid[v][step] = !s.grid[v][step]
	c := Change{Voice: v, Step: step, On: s.grid[v][step], Selected: s.selected}
	s.mu.Unlock()

	logger.Ctx("Toggle").Vol(util.Quiet).Log(v, "step", step, "->", c.On)
	s.notify(c)
	return c.On, nil
}

// Set writes one cell
func (s *Store) Set(v kit.VoiceID, step int, on bool) error {
	if err := check(v, step); err != nil {
		return err
	}
	s.mu.Lock()
	s.grid[v][step] = on
	c := Change{Voice: v, Step: step, On: on, Selected: s.selected}
	s.mu.Unlock()

	s.notify(c)
	return nil
}

// Active lists the voices switched on at step, in row order
func (s *Store) Active(step int) []kit.VoiceID {
	if step < 0 || step >= Steps {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []kit.VoiceID
	for _, v := range kit.All() {
		if s.grid[v][step] {
			out = append(out, v)
		}
	}
	return out
}

// Grid returns a copy of the whole grid
func (s *Store) Grid() Grid {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grid
}

// Replace swaps in a whole grid
func (s *Store) Replace(g Grid) {
	s.mu.Lock()
	s.grid = g
	c := Change{Step: -1, Selected: s.selected}
	s.mu.Unlock()
	s.notify(c)
}

// Clear switches every cell off
func (s *Store) Clear() { s.Replace(Grid{}) }

// Select changes the instrument being edited
func (s *Store) Select(v kit.VoiceID) error {
	if !v.Valid() {
		return errors.Wrapf(ErrOutOfRange, "%v", v)
	}
	s.mu.Lock()
	s.selected = v
	s.mu.Unlock()
	s.notify(Change{Voice: v, Step: -1, Selected: v})
	return nil
}

func (s *Store) Selected() kit.VoiceID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}
