// Package store defines the key-value port that persisted todo state goes
// through. Backends live in subpackages so callers that only need the port do
// not pull in every driver.
package store

import "errors"

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store closed")

// KV is a string-keyed, string-valued store.
type KV interface {
	// Get returns the value for key; ok is false when the key is absent.
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Remove(key string) error
	// Clear removes every key.
	Clear() error
	Close() error
}
