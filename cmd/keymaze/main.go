package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
	"github.com/pkg/profile"
	"go.uber.org/zap"

	"github.com/lixenwraith/keymaze/audio"
	"github.com/lixenwraith/keymaze/config"
	"github.com/lixenwraith/keymaze/core"
	"github.com/lixenwraith/keymaze/engine"
	"github.com/lixenwraith/keymaze/input"
	"github.com/lixenwraith/keymaze/level"
	"github.com/lixenwraith/keymaze/logging"
	"github.com/lixenwraith/keymaze/systems"
)

type options struct {
	quiet       bool
	verbosity   logging.VerbosityFlag
	configPath  string
	noGrabMouse bool
	mute        bool
	profileMode string
	mapPath     string
}

func parseFlags(args []string) (*options, error) {
	fs := flag.NewFlagSet("keymaze", flag.ContinueOnError)
	opts := &options{}
	fs.BoolVar(&opts.quiet, "q", false, "Disable logging")
	fs.Var(&opts.verbosity, "v", "Increase log verbosity (repeatable)")
	fs.StringVar(&opts.configPath, "config", "", "TOML settings file")
	fs.BoolVar(&opts.noGrabMouse, "no-grab-mouse", false, "Do not use mouse motion for looking")
	fs.BoolVar(&opts.mute, "mute", false, "Disable sound")
	fs.StringVar(&opts.profileMode, "profile", "", "Write a profile: cpu, mem, block, mutex, goroutine or trace")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: keymaze [flags] <map>\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return nil, errors.New("expected exactly one map file")
	}
	opts.mapPath = fs.Arg(0)
	return opts, nil
}

func profileOption(mode string) (func(*profile.Profile), error) {
	switch mode {
	case "cpu":
		return profile.CPUProfile, nil
	case "mem":
		return profile.MemProfile, nil
	case "block":
		return profile.BlockProfile, nil
	case "mutex":
		return profile.MutexProfile, nil
	case "goroutine":
		return profile.GoroutineProfile, nil
	case "trace":
		return profile.TraceProfile, nil
	default:
		return nil, errors.Errorf("unknown profile mode %q", mode)
	}
}

// loadConfig applies the settings file, then flags on top of it
func loadConfig(opts *options) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return nil, err
		}
	}
	if opts.noGrabMouse {
		cfg.Display.GrabMouse = false
	}
	if opts.mute {
		cfg.Audio.Enabled = false
	}
	return cfg, nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, err := parseFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		reportError(opts, err)
		return 1
	}

	logger, done, err := logging.New(logging.Options{
		Quiet:     opts.quiet,
		Verbosity: int(opts.verbosity),
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Dir:       cfg.Logging.Dir,
		MaxSize:   int64(cfg.Logging.MaxSizeMB) << 20,
	})
	if err != nil {
		reportError(opts, err)
		return 1
	}
	defer done()
	zap.ReplaceGlobals(logger)

	if opts.profileMode != "" {
		mode, err := profileOption(opts.profileMode)
		if err != nil {
			reportError(opts, err)
			return 2
		}
		defer profile.Start(mode, profile.ProfilePath("."), profile.Quiet).Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := play(ctx, cfg, opts.mapPath); err != nil {
		logging.LogError(logger, err)
		reportError(opts, err)
		return 1
	}
	return 0
}

// reportError prints the error chain to stderr once the terminal is released
func reportError(opts *options, err error) {
	if opts.quiet {
		return
	}
	stderr, done, lerr := logging.New(logging.Options{Verbosity: 0})
	if lerr != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	defer done()
	logging.LogError(stderr, err)
}

func play(ctx context.Context, cfg *config.Config, mapPath string) error {
	m, err := level.Load(mapPath)
	if err != nil {
		return err
	}
	world := engine.NewWorld()
	if err := level.Build(world, m, filepath.Dir(mapPath)); err != nil {
		return errors.Wrapf(err, "couldn't build world from %s", mapPath)
	}
	zap.L().Info("level loaded",
		zap.String("map", mapPath),
		zap.Int("width", m.Dims.Width),
		zap.Int("height", m.Dims.Height),
		zap.Int("entities", world.EntityCount()))

	termOpts, err := cfg.TerminalOptions()
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return errors.Wrap(err, "couldn't create terminal screen")
	}
	if err := screen.Init(); err != nil {
		return errors.Wrap(err, "couldn't initialize terminal")
	}
	core.RegisterScreen(screen)
	defer func() {
		core.RegisterScreen(nil)
		screen.Fini()
	}()
	screen.HideCursor()

	source := input.NewTerminalSource(screen, termOpts)
	core.Go(source.Run)

	// An uninitialized manager drops every cue
	var player audio.Player = audio.NewSoundManager()
	if cfg.Audio.Enabled {
		sm := audio.NewSoundManager()
		sm.SetVolume(cfg.Audio.Volume)
		if err := sm.Initialize(); err != nil {
			zap.L().Warn("audio unavailable, continuing without sound", zap.Error(err))
		} else {
			defer sm.Cleanup()
		}
		player = sm
	}

	renderOpts := systems.RenderOptions{
		FOV:        cfg.Display.FOV,
		MaxDepth:   cfg.Display.MaxDepth,
		Minimap:    cfg.Display.Minimap,
		Background: m.ClearColor.Color(),
	}
	controlOpts := systems.ControlOptions{
		MoveDivisor: cfg.Controls.MoveDivisor,
		LookDivisor: cfg.Controls.LookDivisor,
	}

	audioSystem := systems.NewAudioSystem(player)
	audioSystem.Attach(world)
	pipeline := engine.NewPipeline(
		systems.NewControlSystem(source, controlOpts),
		systems.NewRenderSystem(screen, renderOpts),
		systems.NewHoldSystem(),
		systems.NewSinkingDoorSystem(),
		systems.NewSnagSystem(),
		systems.NewSpinningKeySystem(),
		systems.NewTheFloorIsLavaSystem(),
		systems.NewUnlockSystem(),
		systems.NewWinSystem(),
		audioSystem,
	)

	state := engine.NewPlaying(world)
	engine.Subscribe(world.Events, func(ev engine.StateChanged) {
		zap.L().Info("game state changed", zap.Stringer("from", ev.From), zap.Stringer("to", ev.To))
	})

	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	clock := engine.NewFrameClock(engine.NewMonotonicTimeProvider())
	err = engine.Run(ctx, state, pipeline, clock, cfg.Display.FrameInterval)
	if err != nil && !errors.Is(err, context.Canceled) {
		return errors.Wrap(err, "frame loop stopped")
	}
	return nil
}
