// Package kv provides the key-value substrates the object store is built on.
//
// A substrate is a flat namespace of string slots. Each slot holds an
// opaque text value. The store engine keeps one slot per record type.
//
// Implementations:
//
//   - [Memory] - in-process map, with optional quota and availability toggle
//   - [Dir] - one file per slot in a directory
//   - [SQLite] - a single slots table in a SQLite database
//   - [DynamoDB] - one item per slot in a DynamoDB table
package kv

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable is returned when the substrate cannot be used.
	ErrUnavailable = errors.New("kv: substrate unavailable")

	// ErrQuotaExceeded is returned when a write would exceed the substrate quota.
	ErrQuotaExceeded = errors.New("kv: quota exceeded")
)

// Substrate is a synchronous key-value facility addressed by slot name.
type Substrate interface {
	// Available reports whether the substrate can currently be used.
	// It returns nil or an error wrapping ErrUnavailable.
	Available(ctx context.Context) error

	// Get returns the value stored at key. ok is false when the slot is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value at key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes the slot. Removing an absent slot is not an error.
	Remove(ctx context.Context, key string) error
}
