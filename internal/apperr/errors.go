// Package apperr holds the sentinel errors shared across layers.
package apperr

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidSelector = errors.New("invalid selector")
	ErrNotMarkdown     = errors.New("not a markdown file")
)
