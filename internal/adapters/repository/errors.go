package repository

import "errors"

// Sentinel kinds for dataset errors.
var (
	ErrDuplicateID = errors.New("duplicate asset id")
	ErrLoadDataset = errors.New("load dataset failed")
)
