package synth

import (
	"math"
	"sort"
)

// CurveKind says how a parameter travels from the previous scheduled point
// to a new one
type CurveKind int

const (
	// Step jumps to the value at the scheduled time
	Step CurveKind = iota
	// Linear ramps in a straight line, arriving at the scheduled time
	Linear
	// Exponential ramps geometrically, arriving at the scheduled time
	Exponential
)

// Floor is the smallest magnitude an exponential ramp may target. An
// exponential curve never reaches zero, so "silence" is Floor.
const Floor = 0.001

// Segment is one point of an envelope, relative to the trigger time
type Segment struct {
	Offset float64
	Value  float64
	Curve  CurveKind
}

// Set, Lin and Exp build segments without the field names
func Set(offset, value float64) Segment { return Segment{offset, value, Step} }
func Lin(offset, value float64) Segment { return Segment{offset, value, Linear} }
func Exp(offset, value float64) Segment { return Segment{offset, value, Exponential} }

type automation struct {
	time  float64
	value float64
	curve CurveKind
}

// Param is a value that can be automated against the audio clock. Points are
// kept in time order; scheduling a point drops every point at or after its
// time, so later calls replace the trajectory from their time onward. Two
// points may share a time only when a set cuts a ramp short.
type Param struct {
	initial float64
	events  []automation
}

// NewParam returns a parameter holding v until something is scheduled
func NewParam(v float64) *Param {
	return &Param{initial: v}
}

// Const returns a parameter that never changes
func Const(v float64) *Param { return NewParam(v) }

func (p *Param) SetValueAtTime(v, t float64) *Param {
	return p.schedule(automation{t, v, Step})
}

func (p *Param) LinearRampToValueAtTime(v, t float64) *Param {
	return p.schedule(automation{t, v, Linear})
}

func (p *Param) ExponentialRampToValueAtTime(v, t float64) *Param {
	return p.schedule(automation{t, floored(v), Exponential})
}

// Apply schedules segs against the absolute trigger time t0
func (p *Param) Apply(t0 float64, segs ...Segment) *Param {
	for _, s := range segs {
		switch s.Curve {
		case Linear:
			p.LinearRampToValueAtTime(s.Value, t0+s.Offset)
		case Exponential:
			p.ExponentialRampToValueAtTime(s.Value, t0+s.Offset)
		default:
			p.SetValueAtTime(s.Value, t0+s.Offset)
		}
	}
	return p
}

// Last returns the time of the final scheduled point, or 0 when nothing is
// scheduled
func (p *Param) Last() float64 {
	if len(p.events) == 0 {
		return 0
	}
	return p.events[len(p.events)-1].time
}

func (p *Param) schedule(a automation) *Param {
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].time >= a.time })

	// a set in the middle of a ramp keeps the ramp up to the set
	if a.curve == Step && i > 0 && i < len(p.events) &&
		p.events[i].curve != Step && p.events[i].time > a.time {
		cut := automation{a.time, p.ValueAt(a.time), p.events[i].curve}
		p.events = append(p.events[:i], cut, a)
		return p
	}

	p.events = append(p.events[:i], a)
	return p
}

// ValueAt evaluates the parameter at absolute time t
func (p *Param) ValueAt(t float64) float64 {
	if len(p.events) == 0 || t < p.events[0].time {
		return p.initial
	}

	// index of the last point at or before t
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].time > t }) - 1
	cur := p.events[i]
	if i+1 == len(p.events) {
		return cur.value
	}

	next := p.events[i+1]
	frac := (t - cur.time) / (next.time - cur.time)
	switch next.curve {
	case Linear:
		return cur.value + (next.value-cur.value)*frac
	case Exponential:
		if cur.value == 0 || cur.value*next.value < 0 {
			return cur.value
		}
		return cur.value * math.Pow(next.value/cur.value, frac)
	default:
		return cur.value
	}
}

func floored(v float64) float64 {
	switch {
	case v >= 0 && v < Floor:
		return Floor
	case v < 0 && v > -Floor:
		return -Floor
	}
	return v
}
