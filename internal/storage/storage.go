// Package storage holds the persistent key-value backing of the expense
// store and its SQLite implementation.
package storage

import (
	"context"
	"errors"
)

// KV is a synchronous string-keyed store. Writes are last-write-wins and
// there is no transaction across keys.
type KV interface {
	// Get returns the value for key; ok is false when the key was never set.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
}

// ErrClosed is returned by operations on a closed backend.
var ErrClosed = errors.New("storage closed")
