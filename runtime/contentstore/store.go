// Package contentstore implements the eviction target for oversized tool
// results (C7 ResultInterpreter's collaborator): large outputs are written
// here and replaced in working state with a bounded pointer string.
package contentstore

import (
	"context"
	"fmt"
)

// Store is the contract consumed by Interpreter. Paths returned by Write
// are opaque identifiers meaningful only to the same Store implementation;
// callers must not construct them by hand.
type Store interface {
	Write(ctx context.Context, filename string, content string) (path string, err error)
	Read(ctx context.Context, path string) (content string, err error)
}

// ErrOutsideBase is returned when a resolved path would escape the store's
// base directory — this aborts eviction per spec.md §4.7 ("any violation
// aborts eviction and the run is failed").
type ErrOutsideBase struct {
	Path string
}

func (e *ErrOutsideBase) Error() string {
	return fmt.Sprintf("contentstore: resolved path %q escapes the configured base directory", e.Path)
}
