package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/faiface/beep"
	"github.com/pkg/errors"

	"tjweldon/drumkit/src/kit"
	"tjweldon/drumkit/src/pattern"
	"tjweldon/drumkit/src/playback"
	"tjweldon/drumkit/src/sequencer"
	"tjweldon/drumkit/src/streams"
	"tjweldon/drumkit/src/util"
)

var logger = util.Logger{}.Ctx("drumkit")

// Latency is the speaker buffer length
const Latency = time.Second / 10

type PlayCmd struct {
	Bars int `arg:"--bars" help:"stop after this many bars, 0 plays until interrupted"`
}

type RenderCmd struct {
	Out  string `arg:"--out,required" help:"wav file to write"`
	Bars int    `arg:"--bars" default:"4" help:"bars of pattern to render"`
	Seed int64  `arg:"--seed" help:"seed for the voices' randomness, 0 picks one"`
}

type TriggerCmd struct {
	Voice string `arg:"positional,required" help:"kick, snare, hihat or glitch (or a, s, h, j)"`
}

type ToggleCmd struct {
	Voice string `arg:"positional,required"`
	Step  int    `arg:"positional,required" help:"0 to 15"`
}

type SelectCmd struct {
	Voice string `arg:"positional,required"`
}

type PresetCmd struct {
	Name string `arg:"positional" help:"preset to load; lists the presets when empty"`
}

type ShowCmd struct{}
type ClearCmd struct{}

type Args struct {
	Play    *PlayCmd    `arg:"subcommand:play" help:"play the pattern through the speaker"`
	Render  *RenderCmd  `arg:"subcommand:render" help:"render the pattern to a wav file"`
	Trigger *TriggerCmd `arg:"subcommand:trigger" help:"play one hit of a voice"`
	Toggle  *ToggleCmd  `arg:"subcommand:toggle" help:"flip one step of the pattern"`
	Select  *SelectCmd  `arg:"subcommand:select" help:"choose the instrument being edited"`
	Preset  *PresetCmd  `arg:"subcommand:preset" help:"replace the pattern with a preset"`
	Clear   *ClearCmd   `arg:"subcommand:clear" help:"switch every step off"`
	Show    *ShowCmd    `arg:"subcommand:show" help:"print the pattern"`

	BPM        float64 `arg:"--bpm,env:DRUMKIT_BPM" default:"120" help:"tempo, 1 to 400"`
	Pattern    string  `arg:"--pattern,env:DRUMKIT_PATTERN" help:"pattern file [default: ~/.config/drumkit/pattern.json]"`
	SampleRate int     `arg:"--sample-rate,env:DRUMKIT_SAMPLE_RATE" default:"44100"`
	KickPitch  float64 `arg:"--kick-pitch" help:"kick pitch shift in semitones"`
	Volume     float64 `arg:"--volume,env:DRUMKIT_VOLUME" help:"master level in doublings, -1 halves, -16 mutes"`
	Verbose    int     `arg:"-v" help:"log verbosity, higher is chattier"`
}

func (Args) Description() string {
	return "drumkit is a 16 step drum machine with synthesized voices"
}

func main() {
	var args Args
	p := arg.MustParse(&args)
	if p.Subcommand() == nil {
		p.Fail("missing command")
	}
	util.Verbosity(args.Verbose).FilterBelow()

	tempo := sequencer.Tempo(args.BPM)
	if err := tempo.Validate(); err != nil {
		p.Fail(err.Error())
	}
	if args.SampleRate < 8000 {
		p.Fail("sample rate must be at least 8000")
	}

	if err := run(args); err != nil {
		logger.Vol(util.Loudest).Log(err)
		os.Exit(1)
	}
}

func run(args Args) error {
	path, err := pattern.Resolve(args.Pattern)
	if err != nil {
		return err
	}
	store := pattern.Load(path)
	rate := beep.SampleRate(args.SampleRate)
	tempo := sequencer.Tempo(args.BPM)

	switch {
	case args.Play != nil:
		return play(store, rate, tempo, args)

	case args.Render != nil:
		return render(store, rate, tempo, args)

	case args.Trigger != nil:
		id, err := kit.Parse(args.Trigger.Voice)
		if err != nil {
			return err
		}
		return trigger(id, rate, args)

	case args.Toggle != nil:
		id, err := kit.Parse(args.Toggle.Voice)
		if err != nil {
			return err
		}
		if _, err := store.Toggle(id, args.Toggle.Step); err != nil {
			return err
		}

	case args.Select != nil:
		id, err := kit.Parse(args.Select.Voice)
		if err != nil {
			return err
		}
		if err := store.Select(id); err != nil {
			return err
		}

	case args.Preset != nil:
		if args.Preset.Name == "" {
			fmt.Println(strings.Join(pattern.Presets(), "\n"))
			return nil
		}
		g, err := pattern.Preset(args.Preset.Name)
		if err != nil {
			return err
		}
		store.Replace(g)

	case args.Clear != nil:
		store.Clear()

	case args.Show != nil:
		fmt.Print(show(store, -1))
		return nil
	}

	if err := store.Save(path); err != nil {
		return err
	}
	fmt.Print(show(store, -1))
	return nil
}

// show draws the grid with the selected row marked and, when step is in
// range, a cursor over that column
func show(store *pattern.Store, step int) string {
	var b strings.Builder
	b.WriteString("         ")
	for i := 0; i < pattern.Steps; i++ {
		switch {
		case i == step:
			b.WriteByte('v')
		case i%4 == 0:
			b.WriteByte('|')
		default:
			b.WriteByte(' ')
		}
	}
	b.WriteByte('\n')

	g := store.Grid()
	for _, v := range kit.All() {
		mark := ' '
		if v == store.Selected() {
			mark = '>'
		}
		fmt.Fprintf(&b, "%c %-6s ", mark, v)
		for _, on := range g[v] {
			if on {
				b.WriteByte('x')
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func play(store *pattern.Store, rate beep.SampleRate, tempo sequencer.Tempo, args Args) error {
	logger := logger.Ctx("play")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink := streams.NewSpeaker(rate, Latency)
	engine := playback.New(sink, store, sequencer.NewClock(tempo), rand.New(rand.NewSource(time.Now().UnixNano())))
	engine.SetKickPitch(args.KickPitch)
	engine.SetVolume(args.Volume)

	if args.Play.Bars > 0 {
		bar := sequencer.Timing{}.From(tempo, streams.Format(rate)).Bar()
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(args.Play.Bars)*bar.Duration)
		defer cancel()
	}

	engine.OnStepChange(func(step int) {
		logger.Vol(util.Quiet).Log("\n" + show(store, step))
	})

	engine.Play(ctx)
	logger.Vol(util.Loud).Log("playing at", args.BPM, "bpm, ctrl-c to stop")
	<-ctx.Done()
	engine.Stop()

	engine.RingOut(playback.MaxTail)
	return nil
}

func render(store *pattern.Store, rate beep.SampleRate, tempo sequencer.Tempo, args Args) error {
	f, err := os.Create(args.Render.Out)
	if err != nil {
		return errors.Wrapf(err, "creating %s", args.Render.Out)
	}
	defer f.Close()

	seed := args.Render.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	err = playback.Render(f, store, playback.RenderOptions{
		Bars:       args.Render.Bars,
		Tempo:      tempo,
		SampleRate: rate,
		Seed:       seed,
		KickPitch:  args.KickPitch,
		Volume:     args.Volume,
	})
	if err != nil {
		return err
	}
	return errors.Wrapf(f.Close(), "closing %s", args.Render.Out)
}

// trigger plays one hit through the speaker and waits for it to finish
func trigger(id kit.VoiceID, rate beep.SampleRate, args Args) error {
	sink := streams.NewSpeaker(rate, Latency)
	engine := playback.New(sink, pattern.New(), sequencer.NewClock(sequencer.MinTempo), rand.New(rand.NewSource(time.Now().UnixNano())))
	engine.SetKickPitch(args.KickPitch)
	engine.SetVolume(args.Volume)
	if err := engine.Trigger(id); err != nil {
		return err
	}
	if !sink.Ready() {
		return errors.New("audio device unavailable")
	}
	engine.RingOut(playback.MaxTail)
	return nil
}
