package parallel

import "errors"

var (
	ErrOutOfMemory    = errors.New("context allocation failed")
	ErrEngineInit     = errors.New("engine init failed")
	ErrOutputTooSmall = errors.New("output buffer too small")
	ErrBadFrame       = errors.New("bad frame")
	ErrEngine         = errors.New("engine failure")
	ErrTimeout        = errors.New("wait deadline exceeded")
)
