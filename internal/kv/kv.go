// Package kv provides the key-value storage boundary used for durable
// conversational state. The rest of the application only sees the Store
// interface; pebble, redis, and in-memory backends implement it.
package kv

import "errors"

// ErrNotFound is returned by Get when a key does not exist.
var ErrNotFound = errors.New("kv: key not found")

// Store is the minimal key-value contract consumed by the services.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(key string) ([]byte, error)

	// Put stores value under key, replacing any existing value.
	Put(key string, value []byte) error

	// Has reports whether key exists.
	Has(key string) bool

	// Remove deletes key. Removing a missing key is not an error.
	Remove(key string) error

	// Close releases backend resources.
	Close() error
}
