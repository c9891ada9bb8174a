package anim

import (
	"errors"
	"fmt"
)

var (
	ErrNilConfig     = errors.New("anim: nil animation config")
	ErrUnknownPolicy = errors.New("anim: unknown failure policy")
	ErrFrameRange    = errors.New("anim: frame index out of range")
)

// FrameError ties a failure to the frame it happened on.
type FrameError struct {
	Index int
	Err   error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame %d: %v", e.Index, e.Err)
}

func (e *FrameError) Unwrap() error { return e.Err }
