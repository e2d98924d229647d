package repository

import (
	_ "embed"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/okian/assetopt/internal/domain/model"
)

//go:embed sample_assets.yaml
var sampleDataset []byte

// Dataset is the on-disk layout: one id-indexed map per raw field, plus an
// optional explicit id order.
type Dataset struct {
	IDs        []int           `yaml:"ids,omitempty"`
	SAIDI      map[int]float64 `yaml:"saidi,omitempty"`
	SAIFI      map[int]float64 `yaml:"saifi,omitempty"`
	Health     map[int]float64 `yaml:"health,omitempty"`
	Cost       map[int]float64 `yaml:"cost,omitempty"`
	Type       map[int]string  `yaml:"type,omitempty"`
	Category   map[int]float64 `yaml:"category,omitempty"`
	RequestIDs map[int]string  `yaml:"request_ids,omitempty"`
	Operations map[int]string  `yaml:"operations,omitempty"`
}

// Source validates d and builds a MemorySource. Without explicit ids the
// universe is every id mentioned by any field, ascending.
func (d Dataset) Source() (*MemorySource, error) {
	ids := d.IDs
	if len(ids) == 0 {
		ids = d.mentionedIDs()
	}
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, id)
		}
		seen[id] = struct{}{}
	}
	return NewMemorySource(ids,
		WithNumbers(model.FieldSAIDI, d.SAIDI),
		WithNumbers(model.FieldSAIFI, d.SAIFI),
		WithNumbers(model.FieldHealth, d.Health),
		WithNumbers(model.FieldCost, d.Cost),
		WithNumbers(model.FieldCategory, d.Category),
		WithTexts(model.FieldType, d.Type),
		WithTexts(model.FieldRequestID, d.RequestIDs),
		WithTexts(model.FieldOperation, d.Operations),
	), nil
}

func (d Dataset) mentionedIDs() []int {
	set := make(map[int]struct{})
	for _, m := range []map[int]float64{d.SAIDI, d.SAIFI, d.Health, d.Cost, d.Category} {
		for id := range m {
			set[id] = struct{}{}
		}
	}
	for _, m := range []map[int]string{d.Type, d.RequestIDs, d.Operations} {
		for id := range m {
			set[id] = struct{}{}
		}
	}
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// ParseYAML decodes a dataset document.
func ParseYAML(b []byte) (*MemorySource, error) {
	var d Dataset
	if err := yaml.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadDataset, err)
	}
	return d.Source()
}

// LoadYAML reads and decodes a dataset file.
func LoadYAML(path string) (*MemorySource, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadDataset, err)
	}
	return ParseYAML(b)
}

// Default returns the embedded sample dataset.
func Default() *MemorySource {
	s, err := ParseYAML(sampleDataset)
	if err != nil {
		panic("repository: embedded sample dataset is invalid: " + err.Error())
	}
	return s
}
