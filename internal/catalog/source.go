package catalog

import (
	"context"
	"errors"
)

// Source supplies raw package records. Implementations exist for an
// upstream HTTP catalog and for the local SQLite store.
type Source interface {
	// Package returns one package by ID.
	Package(ctx context.Context, id string) (*Package, error)
	// List returns every package the source knows about.
	List(ctx context.Context) ([]Package, error)
}

// ErrPackageNotFound is returned when no package exists for an ID.
var ErrPackageNotFound = errors.New("package not found")

// ErrCatalogUnavailable is returned when the catalog source cannot be reached.
// A booking cannot start without its package, so callers treat this as terminal
// for the current attempt.
var ErrCatalogUnavailable = errors.New("catalog unavailable")
