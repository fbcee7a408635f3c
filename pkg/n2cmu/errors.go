package n2cmu

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout indicates the expected bytes didn't arrive in time.
	ErrTimeout = errors.New("read timeout")
	// ErrNotReady indicates the channel never became ready.
	ErrNotReady = errors.New("channel not ready")
	// ErrTrainingNotConfigured indicates the device reports zero epochs.
	ErrTrainingNotConfigured = errors.New("training not configured: epoch count is 0")
	// ErrShortBuffer indicates a caller buffer is smaller than the
	// length derived from the device topology.
	ErrShortBuffer = errors.New("buffer shorter than topology")
	// ErrBatchTooLarge indicates the training rows don't fit in 16 bits.
	ErrBatchTooLarge = errors.New("too many training rows")
)

// ShortBufferError reports the derived length a buffer must hold.
type ShortBufferError struct {
	Name string
	Want int
	Got  int
}

// Error implements error.
func (e *ShortBufferError) Error() string {
	return fmt.Sprintf("%s: %v: want %d, got %d", e.Name, ErrShortBuffer, e.Want, e.Got)
}

// Unwrap allows errors.Is(err, ErrShortBuffer).
func (e *ShortBufferError) Unwrap() error {
	return ErrShortBuffer
}
