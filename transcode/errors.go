package transcode

import (
	"errors"
	"fmt"
)

var (
	// ErrDecodeFailure is matched by every *DecodeError
	ErrDecodeFailure = errors.New("audio decode failed")

	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrInvalidWAV        = errors.New("invalid WAV file")
	ErrNoChannels        = errors.New("decoded stream has no channels")
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
)

// DecodeError wraps a decoder failure with the format that was attempted
type DecodeError struct {
	Format Format
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrDecodeFailure
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecodeFailure
}
