package transcode

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/RyanBlaney/sonido-voz/logging"
	"github.com/go-audio/wav"
	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
)

// Format names an input container/codec
type Format string

const (
	FormatWAV Format = "wav"
	FormatMP3 Format = "mp3"
	FormatOGG Format = "ogg"
	FormatAAC Format = "aac"
)

// FormatFromPath infers the format from a file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		return FormatWAV, nil
	case ".mp3":
		return FormatMP3, nil
	case ".ogg", ".oga":
		return FormatOGG, nil
	case ".aac", ".m4a":
		return FormatAAC, nil
	default:
		return "", fmt.Errorf("%w: extension %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// DecoderConfig holds decoder configuration
type DecoderConfig struct {
	MaxDuration time.Duration `json:"max_duration" yaml:"max_duration"` // 0 means no limit
	ChunkFrames int           `json:"chunk_frames" yaml:"chunk_frames"` // frames read between cancellation checks
}

// DefaultDecoderConfig returns default decoder configuration
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		MaxDuration: 0,
		ChunkFrames: 8192,
	}
}

// pcmStream is interleaved float32 audio straight out of a codec
type pcmStream struct {
	samples    []float32
	sampleRate int
	channels   int
}

type decodeFunc func(ctx context.Context, r io.ReadSeeker, chunkFrames int) (*pcmStream, error)

// Decoder turns encoded audio into a mono SampleBuffer
type Decoder struct {
	config *DecoderConfig
	codecs map[Format]decodeFunc
}

// NewDecoder creates a new audio decoder
func NewDecoder(config *DecoderConfig) *Decoder {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	if config.ChunkFrames <= 0 {
		config.ChunkFrames = DefaultDecoderConfig().ChunkFrames
	}
	return &Decoder{
		config: config,
		codecs: map[Format]decodeFunc{
			FormatWAV: decodeWAV,
			FormatMP3: decodeMP3,
			FormatOGG: decodeOGG,
		},
	}
}

// Supports reports whether format can be decoded
func (d *Decoder) Supports(format Format) bool {
	_, ok := d.codecs[format]
	return ok
}

// Decode reads the whole stream, averages its channels to mono and returns
// the result. Failures are returned as *DecodeError.
func (d *Decoder) Decode(ctx context.Context, r io.ReadSeeker, format Format) (*SampleBuffer, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "audio_decoder",
		"function":  "Decode",
		"format":    string(format),
	})

	logger.Debug("Starting audio decode")

	codec, ok := d.codecs[format]
	if !ok {
		err := &DecodeError{Format: format, Err: ErrUnsupportedFormat}
		logger.Error(err, "No decoder for format")
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stream, err := codec(ctx, r, d.config.ChunkFrames)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		decodeErr := &DecodeError{Format: format, Err: err}
		logger.Error(decodeErr, "Failed to decode audio")
		return nil, decodeErr
	}

	if stream.channels <= 0 {
		return nil, &DecodeError{Format: format, Err: ErrNoChannels}
	}
	if stream.sampleRate <= 0 {
		return nil, &DecodeError{Format: format, Err: ErrInvalidSampleRate}
	}

	mono := mixToMono(stream.samples, stream.channels)
	if d.config.MaxDuration > 0 {
		limit := int(d.config.MaxDuration.Seconds() * float64(stream.sampleRate))
		if limit < len(mono) {
			mono = mono[:limit]
		}
	}

	buf := &SampleBuffer{samples: mono, sampleRate: stream.sampleRate}

	logger.Debug("Audio decode completed", logging.Fields{
		"input_sample_rate": stream.sampleRate,
		"input_channels":    stream.channels,
		"samples":           buf.Len(),
		"duration":          buf.Duration().String(),
	})

	return buf, nil
}

// mixToMono averages interleaved frames; a trailing partial frame is dropped
func mixToMono(interleaved []float32, channels int) []float32 {
	if channels == 1 {
		return interleaved
	}

	frames := len(interleaved) / channels
	mono := make([]float32, frames)
	inv := float32(1.0) / float32(channels)

	for f := range frames {
		var sum float32
		base := f * channels
		for c := range channels {
			sum += interleaved[base+c]
		}
		mono[f] = sum * inv
	}
	return mono
}

func decodeWAV(ctx context.Context, r io.ReadSeeker, _ int) (*pcmStream, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, ErrInvalidWAV
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("could not read PCM buffer: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if buf.Format == nil {
		return nil, ErrInvalidWAV
	}

	bitDepth := int(decoder.BitDepth)
	if bitDepth <= 0 || bitDepth > 32 {
		return nil, fmt.Errorf("%w: bit depth %d", ErrInvalidWAV, bitDepth)
	}
	scale := float32(1.0) / float32(uint64(1)<<(bitDepth-1))

	// 8-bit PCM is unsigned with silence at 128
	offset := 0
	if bitDepth == 8 {
		offset = 128
	}

	samples := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float32(v-offset) * scale
	}

	return &pcmStream{
		samples:    samples,
		sampleRate: buf.Format.SampleRate,
		channels:   buf.Format.NumChannels,
	}, nil
}

// go-mp3 always emits 16-bit little-endian interleaved stereo
func decodeMP3(ctx context.Context, r io.ReadSeeker, chunkFrames int) (*pcmStream, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("open mp3 stream: %w", err)
	}

	const channels = 2
	chunk := make([]byte, chunkFrames*channels*2)
	var samples []float32

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, err := io.ReadFull(dec, chunk)
		for i := 0; i+1 < n; i += 2 {
			v := int16(binary.LittleEndian.Uint16(chunk[i : i+2]))
			samples = append(samples, float32(v)/32768.0)
		}

		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read mp3 frames: %w", err)
		}
	}

	return &pcmStream{
		samples:    samples,
		sampleRate: dec.SampleRate(),
		channels:   channels,
	}, nil
}

func decodeOGG(ctx context.Context, r io.ReadSeeker, _ int) (*pcmStream, error) {
	samples, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read ogg vorbis stream: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &pcmStream{
		samples:    samples,
		sampleRate: format.SampleRate,
		channels:   format.Channels,
	}, nil
}
