// Command sonido-voz analyzes a voice recording and optionally writes an
// effects-processed copy.
//
// Usage:
//
//	sonido-voz -in FILE [flags]
//
// Examples:
//
//	sonido-voz -in take.wav
//	sonido-voz -in take.mp3 -out take-fx.wav -noise 40 -semitones -3
//	sonido-voz -in take.ogg -config voz.yaml -log-format json
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/RyanBlaney/sonido-voz/logging"
	"github.com/RyanBlaney/sonido-voz/transcode"
	"github.com/RyanBlaney/sonido-voz/voice"
	"github.com/RyanBlaney/sonido-voz/voice/config"
)

type options struct {
	in         string
	out        string
	configPath string
	noise      float64
	semitones  float64
	gain       float64
	logLevel   string
	logFormat  string
}

func main() {
	opts := parseFlags()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "sonido-voz: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.in, "in", "", "input audio file (wav, mp3, ogg)")
	flag.StringVar(&opts.out, "out", "", "write the processed audio to this WAV file")
	flag.StringVar(&opts.configPath, "config", "", "path to a YAML configuration file")
	flag.Float64Var(&opts.noise, "noise", 0, "noise reduction amount, 0-100")
	flag.Float64Var(&opts.semitones, "semitones", 0, "pitch shift in semitones")
	flag.Float64Var(&opts.gain, "gain", 1, "volume gain factor")
	flag.StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	flag.StringVar(&opts.logFormat, "log-format", "", "log format override (text, json)")
	flag.Parse()
	return opts
}

func run(ctx context.Context, opts options, stdout io.Writer) error {
	if opts.in == "" {
		return errors.New("missing -in")
	}

	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg = loaded
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.Logging.Format = opts.logFormat
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		return err
	}
	logging.SetGlobalLogger(logger)

	format, err := transcode.FormatFromPath(opts.in)
	if err != nil {
		return err
	}
	decoder := transcode.NewDecoder(&cfg.Decoder)
	if !decoder.Supports(format) {
		return fmt.Errorf("%w: %s", transcode.ErrUnsupportedFormat, format)
	}

	f, err := os.Open(opts.in)
	if err != nil {
		return err
	}
	defer f.Close()

	session := voice.NewSession(voice.NewAnalyzer(cfg), decoder)
	defer session.Close()

	logger.Info("Analyzing recording", logging.Fields{
		"input":      opts.in,
		"format":     string(format),
		"session_id": session.ID,
	})

	report, err := session.Load(ctx, f, format)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if opts.out == "" {
		return nil
	}

	result, err := session.ApplyEffects(ctx, voice.EffectParameters{
		NoiseReductionAmount: opts.noise,
		PitchShiftSemitones:  opts.semitones,
		Gain:                 opts.gain,
	})
	if err != nil {
		return err
	}
	if result.Degraded {
		logger.Warn("Output written without pitch shift", logging.Fields{
			"error": result.ShiftErr.Error(),
		})
	}

	out, err := os.Create(opts.out)
	if err != nil {
		return err
	}
	if err := session.ExportWAV(out, result.Buffer); err != nil {
		out.Close()
		return fmt.Errorf("export %s: %w", opts.out, err)
	}
	if err := out.Close(); err != nil {
		return err
	}

	logger.Info("Processed audio written", logging.Fields{
		"output":      opts.out,
		"samples":     result.Buffer.Len(),
		"sample_rate": result.Buffer.SampleRate(),
		"noise":       result.Applied.NoiseReductionAmount,
		"semitones":   result.Applied.PitchShiftSemitones,
		"gain":        result.Applied.Gain,
	})

	return nil
}

func initLogger(cfg config.LoggingConfig) (logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var logger logging.Logger
	switch strings.ToLower(cfg.Format) {
	case "json":
		logger = logging.NewLogrusLogger(os.Stderr, true)
	default:
		logger = logging.NewWriterLogger(os.Stderr)
	}
	logger.SetLevel(level)
	return logger, nil
}
