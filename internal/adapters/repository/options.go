package repository

import "github.com/okian/assetopt/internal/domain/model"

// Option applies a configuration option to a MemorySource.
type Option func(*MemorySource)

// WithNumbers registers a numeric field. The map is copied.
func WithNumbers(field model.Field, values map[int]float64) Option {
	return func(s *MemorySource) {
		cloneInto(s.numbers, field, values)
	}
}

// WithTexts registers a string field. The map is copied.
func WithTexts(field model.Field, values map[int]string) Option {
	return func(s *MemorySource) {
		cloneInto(s.texts, field, values)
	}
}
