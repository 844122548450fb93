package anychargen

import "errors"

const Namespace = "anychargen"

var (
	ErrInvalidInput   = errors.New(Namespace + ": invalid input")
	ErrOutputTooLarge = errors.New(Namespace + ": requested output exceeds the configured limit")
	ErrInvalidConfig  = errors.New(Namespace + ": invalid configuration")
	ErrClosed         = errors.New(Namespace + ": scheduler is closed")
)
