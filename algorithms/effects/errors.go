package effects

import (
	"errors"
	"fmt"
)

// ErrShiftFailed is matched by every error returned from PitchShifter.Shift
var ErrShiftFailed = errors.New("pitch shift failed")

// ShiftError reports a failure inside the phase vocoder
type ShiftError struct {
	Semitones float64
	Cause     error
}

func (e *ShiftError) Error() string {
	return fmt.Sprintf("pitch shift by %.2f semitones: %v", e.Semitones, e.Cause)
}

func (e *ShiftError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrShiftFailed
func (e *ShiftError) Is(target error) bool {
	return target == ErrShiftFailed
}
