// Package apperr defines sentinel errors shared across packages.
package apperr

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrDataSource        = errors.New("data source error")
	ErrMissingIdentifier = errors.New("missing identifier")
	ErrUnsupportedFormat = errors.New("unsupported note format")
)
