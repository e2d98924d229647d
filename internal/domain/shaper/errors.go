package shaper

import "errors"

// Sentinel kinds for shaper configuration errors.
var (
	ErrUnknownPolicy  = errors.New("unknown health normalization policy")
	ErrInvalidCeiling = errors.New("health ceiling must be a positive finite number")
	ErrInvalidCutoffs = errors.New("risk cutoffs must be finite with low below high")
)
