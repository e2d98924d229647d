// Package repository provides read-only raw asset sources.
package repository

import (
	"context"
	"maps"
	"slices"

	"github.com/okian/assetopt/internal/domain/model"
)

// MemorySource is an immutable in-memory model.RawSource. Each field is an
// id-indexed map; ids absent from a map report the field as missing.
// It is safe for concurrent readers.
type MemorySource struct {
	ids     []int
	numbers map[model.Field]map[int]float64
	texts   map[model.Field]map[int]string
}

var _ model.RawSource = (*MemorySource)(nil)

// NewMemorySource returns a source over ids, in that order.
func NewMemorySource(ids []int, opts ...Option) *MemorySource {
	s := &MemorySource{
		ids:     slices.Clone(ids),
		numbers: make(map[model.Field]map[int]float64),
		texts:   make(map[model.Field]map[int]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IDs returns a copy of the id universe.
func (s *MemorySource) IDs(_ context.Context) []int {
	return slices.Clone(s.ids)
}

// Number looks up a numeric field.
func (s *MemorySource) Number(_ context.Context, field model.Field, id int) (float64, bool) {
	v, ok := s.numbers[field][id]
	return v, ok
}

// Text looks up a string field.
func (s *MemorySource) Text(_ context.Context, field model.Field, id int) (string, bool) {
	v, ok := s.texts[field][id]
	return v, ok
}

// Len reports the size of the id universe.
func (s *MemorySource) Len() int {
	return len(s.ids)
}

func cloneInto[V any](dst map[model.Field]map[int]V, field model.Field, values map[int]V) {
	if len(values) == 0 {
		return
	}
	dst[field] = maps.Clone(values)
}
