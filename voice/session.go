package voice

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/RyanBlaney/sonido-voz/logging"
	"github.com/RyanBlaney/sonido-voz/transcode"
	"github.com/google/uuid"
)

var (
	// ErrSuperseded is returned by a Load that was overtaken by a newer Load
	ErrSuperseded = errors.New("load superseded by a newer load")

	// ErrNoBuffer is returned when an operation needs a loaded buffer
	ErrNoBuffer = errors.New("no audio loaded")
)

// Session holds the state for one loaded file: the current buffer, its
// report and the last effect parameters. Loading replaces all of it. Only the
// most recent Load may install its result.
type Session struct {
	ID string

	analyzer *Analyzer
	decoder  *transcode.Decoder
	logger   logging.Logger

	mu          sync.Mutex
	generation  uint64
	cancel      context.CancelFunc
	buffer      *transcode.SampleBuffer
	report      *FeatureReport
	lastEffects *EffectParameters
}

// NewSession creates an empty session. Nil arguments select defaults.
func NewSession(analyzer *Analyzer, decoder *transcode.Decoder) *Session {
	if analyzer == nil {
		analyzer = NewAnalyzer(nil)
	}
	if decoder == nil {
		decoder = transcode.NewDecoder(&analyzer.Config().Decoder)
	}

	id := uuid.NewString()
	return &Session{
		ID:       id,
		analyzer: analyzer,
		decoder:  decoder,
		logger: logging.WithFields(logging.Fields{
			"component":  "voice_session",
			"session_id": id,
		}),
	}
}

// Load decodes r, analyzes it and makes it the current buffer. A Load that
// starts while another is running cancels the older one, which then returns
// ErrSuperseded.
func (s *Session) Load(ctx context.Context, r io.ReadSeeker, format transcode.Format) (*FeatureReport, error) {
	return s.load(ctx, func(ctx context.Context) (*transcode.SampleBuffer, error) {
		return s.decoder.Decode(ctx, r, format)
	})
}

// LoadBuffer analyzes an already decoded buffer and makes it current
func (s *Session) LoadBuffer(ctx context.Context, buf *transcode.SampleBuffer) (*FeatureReport, error) {
	return s.load(ctx, func(context.Context) (*transcode.SampleBuffer, error) {
		return buf, nil
	})
}

func (s *Session) load(ctx context.Context, source func(context.Context) (*transcode.SampleBuffer, error)) (*FeatureReport, error) {
	loadCtx, cancel := context.WithCancel(logging.ContextWithFields(ctx, logging.Fields{"session_id": s.ID}))
	defer cancel()

	s.mu.Lock()
	s.generation++
	gen := s.generation
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	s.buffer = nil
	s.report = nil
	s.lastEffects = nil
	s.mu.Unlock()

	logger := s.logger.WithFields(logging.Fields{
		"function":   "Load",
		"generation": gen,
	})

	buf, err := source(loadCtx)
	if err == nil {
		var report *FeatureReport
		report, err = s.analyzer.Analyze(loadCtx, buf)
		if err == nil {
			report.SessionID = s.ID

			s.mu.Lock()
			defer s.mu.Unlock()
			if gen != s.generation {
				logger.Debug("Discarding superseded load result")
				return nil, ErrSuperseded
			}
			s.buffer = buf
			s.report = report
			s.cancel = nil
			return report, nil
		}
	}

	if s.superseded(gen) {
		logger.Debug("Load superseded", logging.Fields{"error": err.Error()})
		return nil, ErrSuperseded
	}
	logger.Error(err, "Failed to load audio")
	return nil, err
}

func (s *Session) superseded(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen != s.generation
}

// Buffer returns the current buffer, or nil when nothing is loaded
func (s *Session) Buffer() *transcode.SampleBuffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffer
}

// Report returns the report of the current buffer
func (s *Session) Report() *FeatureReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.report
}

// LastEffects returns the parameters of the last successful ApplyEffects
func (s *Session) LastEffects() (EffectParameters, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastEffects == nil {
		return EffectParameters{}, false
	}
	return *s.lastEffects, true
}

// ApplyEffects runs the effects chain on the current buffer. The current
// buffer itself is left untouched.
func (s *Session) ApplyEffects(ctx context.Context, params EffectParameters) (*EffectsResult, error) {
	buf := s.Buffer()
	if buf == nil {
		return nil, ErrNoBuffer
	}

	result, err := s.analyzer.ApplyEffects(logging.ContextWithFields(ctx, logging.Fields{"session_id": s.ID}), buf, params)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.buffer == buf {
		applied := result.Applied
		s.lastEffects = &applied
	}
	s.mu.Unlock()

	return result, nil
}

// ExportWAV writes buf as 16-bit mono WAV; a nil buf exports the current buffer
func (s *Session) ExportWAV(w io.WriteSeeker, buf *transcode.SampleBuffer) error {
	if buf == nil {
		buf = s.Buffer()
	}
	if buf == nil {
		return ErrNoBuffer
	}
	return transcode.EncodeWAV(w, buf)
}

// Close cancels any load in progress and drops the session state
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.generation++
	s.buffer = nil
	s.report = nil
	s.lastEffects = nil
}
