// Package kv is the durable string-keyed store behind the local mirror copy.
//
// Three drivers share the Store interface:
//   - "file"   one file per key under a root directory (default)
//   - "redis"  one redis string per key, optionally prefixed
//   - "memory" process-local map, for tests and throwaway sessions
package kv

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("kv: key not found")

// Store is a string-keyed persistent key-value store.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Options selects and configures a driver for Open.
type Options struct {
	Driver string // file, redis, memory

	Dir string // file

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// Open builds the Store named by opts.Driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case "", "file":
		return NewFileStore(opts.Dir)
	case "redis":
		return NewRedisStore(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB, opts.RedisPrefix)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("kv: unsupported driver %q (supported: file, redis, memory)", opts.Driver)
	}
}

// Close releases driver resources when the store holds any.
func Close(s Store) error {
	if c, ok := s.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
