package voices

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/faiface/beep"
	"github.com/pkg/errors"

	"tjweldon/drumkit/src/kit"
	"tjweldon/drumkit/src/streams"
	"tjweldon/drumkit/src/synth"
)

const rate = beep.SampleRate(22050)

func render(s beep.Streamer) (out []float64) {
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		for _, v := range buf[:n] {
			out = append(out, v[0])
		}
		if !ok {
			return out
		}
	}
}

func peak(xs []float64) (p float64) {
	for _, x := range xs {
		p = math.Max(p, math.Abs(x))
	}
	return p
}

func TestVoicesRenderAndRelease(t *testing.T) {
	tests := []struct {
		id       kit.VoiceID
		min, max float64 // stop time bounds, seconds after trigger
	}{
		{kit.Kick, 0.15, 0.15},
		{kit.Snare, 0.149, 0.15},
		{kit.Hihat, 0.068, 0.092},
		{kit.Glitch, 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.id.String(), func(t *testing.T) {
			s := New(streams.NewOffline(rate), rand.New(rand.NewSource(1)))
			g := s.Build(tt.id, 1)

			stop := g.StopTime() - g.Origin()
			if stop < tt.min-1e-9 || stop > tt.max+1e-9 {
				t.Fatalf("stop %.4fs after trigger, want [%v, %v]", stop, tt.min, tt.max)
			}

			out := render(g)
			if len(out) != g.Len() {
				t.Fatalf("rendered %d samples, want %d", len(out), g.Len())
			}
			if !g.Released() {
				t.Fatal("graph not released after playing out")
			}
			p := peak(out)
			if p == 0 || p > 1 || math.IsNaN(p) {
				t.Fatalf("peak %v, want audible and within [-1, 1]", p)
			}
			tail := out[len(out)-rate.N(25*time.Millisecond):]
			if peak(tail) > 0.01 {
				t.Errorf("tail peak %v, want decayed", peak(tail))
			}
		})
	}
}

func TestOverlappingKicksAreIndependent(t *testing.T) {
	s := New(streams.NewOffline(rate), rand.New(rand.NewSource(2)))

	first := s.Build(kit.Kick, 0)
	second := s.Build(kit.Kick, 0.008)
	reference := render(s.Build(kit.Kick, 0.008))

	first.Release()
	got := render(second)
	if len(got) != len(reference) {
		t.Fatalf("len %d, want %d", len(got), len(reference))
	}
	for i := range got {
		if got[i] != reference[i] {
			t.Fatalf("sample %d = %v, want %v: releasing one kick changed the other", i, got[i], reference[i])
		}
	}
}

func TestTriggerTwiceWithin10ms(t *testing.T) {
	sink := streams.NewOffline(rate)
	s := New(sink, rand.New(rand.NewSource(3)))

	s.Trigger(kit.Kick)
	sink.Advance(0.004)
	s.Trigger(kit.Kick)

	if s.Live() != 2 || sink.Voices() != 2 {
		t.Fatalf("live=%d voices=%d, want 2 overlapping graphs", s.Live(), sink.Voices())
	}

	sink.Advance(0.3)
	if s.Live() != 0 {
		t.Errorf("%d graphs still live after both finished", s.Live())
	}
}

type flakySink struct {
	*streams.Offline
	fail  bool
	calls int
}

func (f *flakySink) Play(s beep.Streamer) error {
	f.calls++
	if f.fail {
		return errors.New("not allowed to start audio yet")
	}
	return f.Offline.Play(s)
}

func TestTriggerSurvivesSinkFailure(t *testing.T) {
	sink := &flakySink{Offline: streams.NewOffline(rate), fail: true}
	s := New(sink, rand.New(rand.NewSource(4)))

	s.Trigger(kit.Snare)
	s.Trigger(kit.Snare)
	if sink.calls != 2 {
		t.Fatalf("sink asked %d times, want every trigger to retry", sink.calls)
	}
	if s.Live() != 0 {
		t.Fatalf("dropped hits left %d graphs live", s.Live())
	}

	sink.fail = false
	s.Trigger(kit.Snare)
	if sink.Voices() != 1 {
		t.Errorf("voices = %d after the sink recovered, want 1", sink.Voices())
	}
}

func TestHihatIsHumanized(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	seen := map[int]bool{}
	var prev hihatDraw
	for i := 0; i < 500; i++ {
		d := drawHihat(r)
		seen[d.bits] = true

		switch {
		case d.decay < hihatDecay*0.85 || d.decay > hihatDecay*1.15:
			t.Fatalf("decay %v outside ±15%%", d.decay)
		case d.bits < 10 || d.bits > 12:
			t.Fatalf("bit depth %d outside 10-12", d.bits)
		case d.drift < 0.97 || d.drift > 1.03:
			t.Fatalf("drift %v outside ±3%%", d.drift)
		case d.band < 5500 || d.band > 6500:
			t.Fatalf("band %v outside 5.5-6.5kHz", d.band)
		case d.noiseBand < 3500 || d.noiseBand > 4500:
			t.Fatalf("noise band %v outside 3.5-4.5kHz", d.noiseBand)
		}
		for _, pair := range d.wobble {
			for _, c := range pair {
				if a := math.Abs(c); a < 5 || a > 15 {
					t.Fatalf("wobble %v cents outside 5-15", c)
				}
			}
		}
		if i > 0 && d == prev {
			t.Fatal("two hits drew identical parameters")
		}
		prev = d
	}
	if len(seen) != 3 {
		t.Errorf("bit depths seen %v, want 10, 11 and 12", seen)
	}
}

func TestSeededSynthIsRepeatable(t *testing.T) {
	a := New(streams.NewOffline(rate), rand.New(rand.NewSource(9)))
	b := New(streams.NewOffline(rate), rand.New(rand.NewSource(9)))

	x, y := render(a.Build(kit.Hihat, 0)), render(b.Build(kit.Hihat, 0))
	if len(x) != len(y) {
		t.Fatalf("lengths differ: %d vs %d", len(x), len(y))
	}
	for i := range x {
		if x[i] != y[i] {
			t.Fatalf("sample %d differs", i)
		}
	}

	z := render(a.Build(kit.Hihat, 0))
	same := len(z) == len(x)
	for i := 0; same && i < len(x); i++ {
		same = x[i] == z[i]
	}
	if same {
		t.Error("consecutive hihats were identical")
	}
}

func TestKickPitch(t *testing.T) {
	s := New(streams.NewOffline(rate), rand.New(rand.NewSource(6)))
	s.SetKickPitch(12)
	g := s.Build(kit.Kick, 0)
	for _, n := range g.Nodes() {
		if o, ok := n.(*synth.Oscillator); ok {
			if f := o.Frequency.ValueAt(1); math.Abs(f-120) > 1e-9 && math.Abs(f-180) > 1e-9 {
				t.Errorf("settled frequency %v, want 120 carrier or 180 modulator", f)
			}
		}
	}
}

func TestVoicesStayBoundedAcrossSeeds(t *testing.T) {
	for _, id := range kit.All() {
		t.Run(id.String(), func(t *testing.T) {
			for seed := int64(1); seed <= 8; seed++ {
				s := New(streams.NewOffline(rate), rand.New(rand.NewSource(seed)))
				out := render(s.Build(id, 0))
				for i, v := range out {
					if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > 1 {
						t.Fatalf("seed %d: sample %d = %v", seed, i, v)
					}
				}
				if peak(out) == 0 {
					t.Errorf("seed %d: silent", seed)
				}
			}
		})
	}
}
