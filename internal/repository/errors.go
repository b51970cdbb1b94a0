package repository

import "errors"

// Repository errors shared by all in-memory stores.
var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)
