package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/dimfu/tempo/internal/click"
	"github.com/dimfu/tempo/internal/metronome"
	"github.com/dimfu/tempo/internal/plain"
	"github.com/dimfu/tempo/internal/tui"
)

var (
	tempo      = flag.Int("tempo", metronome.DefaultTempo, "beats per minute, between 40 and 200")
	timesig    = flag.String("timesig", "4/4", "beats per measure: 2, 3, 4 or 6, optionally with a note value like 6/8")
	volume     = flag.Float64("volume", metronome.DefaultVolume, "click volume, between 0 and 0.3")
	preset     = flag.String("preset", "", "name of a preset from the config file")
	configPath = flag.String("config", "", "config file (.json, .toml or .yaml), default ~/.tempo.{json,toml,yaml}")
	uiMode     = flag.String("ui", "", "renderer: auto, tui or plain")
	output     = flag.String("output", "", "audio output: speaker, pulse or none")
	autostart  = flag.Bool("start", false, "start playing right away")
	logPath    = flag.String("log", "", "log file, - for stderr (default $TEMPO_LOG_PATH or the user cache dir)")
	verbose    = flag.Bool("v", false, "debug logging")
)

func main() {
	flag.Parse()

	path, err := resolveLogPath(*logPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, closer, err := newLogger(path, *verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	err = run(log)
	closer.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig merges defaults, the config file, the selected preset and the
// flags set on the command line, in that order.
func loadConfig() (*Config, error) {
	cm, err := NewConfigManager(*configPath)
	if err != nil {
		return nil, err
	}
	if *preset != "" {
		if err := cm.ApplyPreset(*preset); err != nil {
			return nil, err
		}
	}

	cfg := cm.Config
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "tempo":
			cfg.Tempo = *tempo
		case "timesig":
			cfg.Timesig = *timesig
		case "volume":
			cfg.Volume = *volume
		case "ui":
			cfg.UI = *uiMode
		case "output":
			cfg.Output = *output
		}
	})
	return cfg, nil
}

func run(log zerolog.Logger) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	beats, err := ValidTimeSig(cfg.Timesig)
	if err != nil {
		return errors.Wrapf(err, "timesig %q", cfg.Timesig)
	}
	if !ValidTempo(cfg.Tempo) {
		log.Warn().Int("tempo", cfg.Tempo).Msgf("tempo is out of range, clamping to %v..%v", metronome.MinTempo, metronome.MaxTempo)
	}
	if cfg.Volume < 0 || cfg.Volume > metronome.MaxVolume {
		log.Warn().Float64("volume", cfg.Volume).Msg("volume is out of range, clamping")
	}

	out, err := click.NewOutput(cfg.Output, log.With().Str("component", "output").Logger())
	if err != nil {
		return err
	}
	synth := click.New(out, click.WithLogger(log.With().Str("component", "click").Logger()))
	defer func() {
		if err := synth.Close(); err != nil {
			log.Error().Err(err).Msg("closing audio")
		}
	}()

	ctrl := metronome.New(
		metronome.WithState(metronome.State{BPM: cfg.Tempo, TimeSignature: beats, Volume: cfg.Volume}),
		metronome.WithUnlocker(synth),
		metronome.WithLogger(log.With().Str("component", "metronome").Logger()),
	)
	defer ctrl.Close()

	ctrl.OnBeat(func(s metronome.State) {
		synth.PlayClick(s.Beat, s.Volume)
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *autostart {
		if err := ctrl.Toggle(ctx); err != nil {
			log.Error().Err(err).Msg("autostart failed")
		}
	}

	mode := cfg.UI
	if mode == "" || mode == "auto" {
		mode = "plain"
		if isTerminal(os.Stdout) {
			mode = "tui"
		}
	}
	log.Info().Str("ui", mode).Str("output", cfg.Output).Msg("starting")

	switch mode {
	case "tui":
		return tui.Run(ctx, ctrl, tui.WithMuter(synth))
	case "plain":
		r := plain.New(ctrl, os.Stdout,
			plain.WithMuter(synth),
			plain.WithKeys(isTerminal(os.Stdin)),
			plain.WithLogger(log),
		)
		return r.Run(ctx)
	}
	return errors.Errorf("unknown ui %q", mode)
}
