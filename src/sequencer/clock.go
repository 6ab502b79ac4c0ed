package sequencer

import (
	"context"
	"sync"
	"time"

	"tjweldon/drumkit/src/util"
)

var logger = util.Logger{}.Ctx("sequencer")

// State of the Clock
type State int

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// DefaultPoll is the UI-rate cadence the clock re-reads wall time at
const DefaultPoll = time.Second / 60

// Clock turns a tempo and wall time into a 16 step position. While running
// it re-reads the time every poll interval and tells its observers only when
// the step changes.
//
// The step is always computed from the start time, so it never drifts, but
// a tempo change does not move the start time: the step can jump when the
// tempo changes mid-bar.
type Clock struct {
	now      func() time.Time
	interval time.Duration

	mu        sync.Mutex
	state     State
	tempo     Tempo
	start     time.Time
	current   int
	last      int
	observers []func(step int)
	cancel    context.CancelFunc

	// run counts starts, so a poll loop can tell whether it is still current
	run int
	// seq counts announcements; a delivery stops once a newer one begins
	seq int
}

// Option configures a Clock
type Option func(*Clock)

// WithNow replaces the wall clock
func WithNow(now func() time.Time) Option { return func(c *Clock) { c.now = now } }

// WithPoll sets the poll interval. Zero or less turns the background loop
// off; the owner then calls Poll itself.
func WithPoll(d time.Duration) Option { return func(c *Clock) { c.interval = d } }

func NewClock(t Tempo, opts ...Option) *Clock {
	c := &Clock{now: time.Now, interval: DefaultPoll, tempo: util.Clamp(t, MinTempo, MaxTempo), last: -1}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnStepChange registers f to be called with each new step. f runs on the
// polling goroutine and must not block. It may call Stop, Start or Toggle;
// observers not yet called for the old step are then skipped.
func (c *Clock) OnStepChange(f func(step int)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, f)
}

// Start moves Stopped to Running from the current time. Step 0 is
// announced straight away. Starting a running clock does nothing.
func (c *Clock) Start(ctx context.Context) {
	c.mu.Lock()
	if c.state == Running {
		c.mu.Unlock()
		return
	}
	c.state = Running
	c.start = c.now()
	c.current = 0
	c.last = -1
	c.run++
	run := c.run

	var loopCtx context.Context
	if c.interval > 0 {
		loopCtx, c.cancel = context.WithCancel(ctx)
	}
	logger.Ctx("Clock.Start").Vol(util.Normal).Log("running at", float64(c.tempo), "bpm")
	c.mu.Unlock()

	c.Poll()
	if loopCtx != nil {
		go c.loop(loopCtx, run)
	}
}

// Stop moves Running to Stopped: the poll loop ends, the step resets to 0
// and the start time is cleared. Voices already playing are not touched.
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Stopped {
		return
	}
	c.halt()
	logger.Ctx("Clock.Stop").Vol(util.Normal).Log("stopped")
}

// halt moves to Stopped. c.mu must be held.
func (c *Clock) halt() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.state = Stopped
	c.start = time.Time{}
	c.current = 0
	c.last = -1
	c.seq++
}

// Toggle starts a stopped clock or stops a running one and returns the new
// state
func (c *Clock) Toggle(ctx context.Context) State {
	if c.State() == Running {
		c.Stop()
		return Stopped
	}
	c.Start(ctx)
	return Running
}

// SetTempo changes the tempo. The start time is deliberately left alone.
func (c *Clock) SetTempo(t Tempo) error {
	if err := t.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	c.tempo = t
	c.mu.Unlock()
	return nil
}

// loop polls until ctx ends. If the context that ended was the one Start
// was given, rather than a Stop, the clock stops too.
func (c *Clock) loop(ctx context.Context, run int) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			c.mu.Lock()
			if c.run == run && c.state == Running {
				c.halt()
				logger.Ctx("Clock.loop").Vol(util.Normal).Log("stopped:", ctx.Err())
			}
			c.mu.Unlock()
			return
		case <-ticker.C:
			c.Poll()
		}
	}
}

// Poll recomputes the step and notifies observers if it moved. It does
// nothing while stopped.
func (c *Clock) Poll() {
	c.mu.Lock()
	if c.state != Running {
		c.mu.Unlock()
		return
	}
	step := StepAt(c.now().Sub(c.start), c.tempo)
	c.current = step
	if step == c.last {
		c.mu.Unlock()
		return
	}
	c.last = step
	c.seq++
	seq := c.seq
	observers := append([]func(int){}, c.observers...)
	c.mu.Unlock()

	logger.Ctx("Clock.Poll").Vol(util.Quieter).Log("step", step)
	for _, f := range observers {
		if !c.announcing(seq) {
			return
		}
		f(step)
	}
}

func (c *Clock) announcing(seq int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq == seq
}

func (c *Clock) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Clock) Tempo() Tempo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tempo
}

// Step is the current step; 0 while stopped
func (c *Clock) Step() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Started returns the start time and whether the clock is running. The two
// are always set together.
func (c *Clock) Started() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.start, c.state == Running
}
