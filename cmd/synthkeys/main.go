package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/oisee/synthkeys/pkg/audio"
	"github.com/oisee/synthkeys/pkg/gui"
	"github.com/oisee/synthkeys/pkg/keyboard"
	"github.com/oisee/synthkeys/pkg/patch"
	"github.com/oisee/synthkeys/pkg/synth"
	"github.com/oisee/synthkeys/pkg/tui"
	"github.com/oisee/synthkeys/pkg/visual"
)

type options struct {
	patch    string
	gui      bool
	rate     int
	latency  time.Duration
	debug    bool
	logFile  string
	seed     uint64
	harmony  bool
	harmonyP float64
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("synthkeys", flag.ContinueOnError)
	fs.StringVar(&o.patch, "patch", "", "Lua patch file to start with")
	fs.BoolVar(&o.gui, "gui", false, "Open a window instead of the terminal UI")
	fs.IntVar(&o.rate, "rate", audio.DefaultSampleRate, "Sample rate in Hz")
	fs.DurationVar(&o.latency, "latency", 50*time.Millisecond, "Audio device buffer")
	fs.BoolVar(&o.debug, "debug", false, "Log at debug level")
	fs.StringVar(&o.logFile, "log", "", "Write the log to this file")
	fs.Uint64Var(&o.seed, "seed", 0, "Seed for harmony and visuals (0 picks one)")
	fs.BoolVar(&o.harmony, "harmony", false, "Start with harmony enabled")
	fs.Float64Var(&o.harmonyP, "harmony-p", synth.HarmonyProbability, "Chance of a ghost fifth per note")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() > 0 && o.patch == "" {
		o.patch = fs.Arg(0)
	}
	if o.rate < 8000 || o.rate > 192000 {
		return o, errors.Errorf("sample rate %d out of range", o.rate)
	}
	if o.harmonyP < 0 || o.harmonyP > 1 {
		return o, errors.Errorf("harmony probability %g out of range", o.harmonyP)
	}
	return o, nil
}

// newLogger writes to the log file if given. Otherwise window mode logs to
// stderr and terminal mode, which owns the screen, logs nowhere.
func newLogger(o options) (*slog.Logger, io.Closer, error) {
	level := slog.LevelInfo
	if o.debug {
		level = slog.LevelDebug
	}
	var w io.Writer = io.Discard
	var closer io.Closer = io.NopCloser(nil)
	switch {
	case o.logFile != "":
		f, err := os.OpenFile(o.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, errors.Wrap(err, "open log file")
		}
		w, closer = f, f
	case o.gui:
		w = os.Stderr
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level, AddSource: o.debug})), closer, nil
}

func main() {
	o, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if err := run(o); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(o options) error {
	if !o.gui && !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("stdin is not a terminal; use -gui")
	}

	logger, closer, err := newLogger(o)
	if err != nil {
		return err
	}
	defer closer.Close()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := synth.DefaultConfig()
	cfg.Harmony = o.harmony
	if o.patch != "" {
		if cfg, err = patch.LoadFile(ctx, o.patch, cfg); err != nil {
			return err
		}
		logger.Info("patch loaded", "file", o.patch, "mode", cfg.Mode)
	}

	seed := o.seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	logger.Debug("random seed", "seed", seed)

	actx := audio.NewContext(o.rate)
	scene := visual.NewScene(rand.New(rand.NewPCG(seed, 1)))
	s := synth.New(actx, cfg.MasterVolume,
		synth.WithObserver(scene),
		synth.WithLogger(logger),
		synth.WithRand(rand.New(rand.NewPCG(seed, 2))),
		synth.WithHarmonyProbability(o.harmonyP),
	)
	panel := synth.NewPanel(s, cfg)
	router := keyboard.NewRouter(s, keyboard.NewKeyMap(), panel.Config, logger)

	out, err := audio.NewRealtimeOutput(actx, o.rate, 2, o.latency)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g := background(ctx, out, actx, logger)

	// Window systems want the main goroutine, so the front end runs here.
	uiErr := frontEnd(ctx, o, s, router, scene, panel, logger)
	cancel()
	if err := g.Wait(); err != nil {
		if uiErr != nil {
			logger.Error("shutdown", "err", err)
			return uiErr
		}
		return err
	}
	return uiErr
}

// background starts the goroutines that live as long as ctx: the graph monitor
// and the audio output, which is closed once ctx ends.
func background(ctx context.Context, out io.Closer, actx *audio.Context, logger *slog.Logger) *errgroup.Group {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		logger.Debug("closing audio output")
		return errors.Wrap(out.Close(), "close audio output")
	})
	g.Go(func() error {
		return monitor(gctx, actx, logger)
	})
	return g
}

func frontEnd(ctx context.Context, o options, s *synth.Synth, r *keyboard.Router, scene *visual.Scene, panel *synth.Panel, logger *slog.Logger) error {
	if o.gui {
		return gui.Run(ctx, gui.New(s, r, scene, panel, logger))
	}
	p := tea.NewProgram(tui.NewModel(s, r, scene, panel, logger), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrap(err, "terminal ui")
	}
	return nil
}

// monitor logs graph occupancy while debugging. It runs beside the control
// goroutine, so it only reads the graph through its lock.
func monitor(ctx context.Context, actx *audio.Context, logger *slog.Logger) error {
	t := time.NewTicker(2 * time.Second)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			logger.Debug("graph", "time", actx.CurrentTime(), "live", actx.Live())
		}
	}
}
