package ports

import (
	"context"
)

// Dataset names one logical table and every place it may be read from.
// Which location is used is decided by the source selector, not the caller.
type Dataset struct {
	Name          string
	SpreadsheetID string
	Range         string
	PublishedURL  string
	Table         string
	File          string
}

// RowSource provides read-only access to a dataset as raw rows of string
// cells, header row first. Implementations never cache: every call
// re-reads the upstream.
type RowSource interface {
	FetchRows(ctx context.Context, ds Dataset) ([][]string, error)
}

// RowSourceFunc adapts a function to RowSource.
type RowSourceFunc func(ctx context.Context, ds Dataset) ([][]string, error)

// FetchRows calls f.
func (f RowSourceFunc) FetchRows(ctx context.Context, ds Dataset) ([][]string, error) {
	return f(ctx, ds)
}
