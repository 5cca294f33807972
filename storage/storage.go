// Package storage holds the durable local state of the storefront: the cart
// snapshot and the bearer credential. Values are opaque strings keyed by a
// fixed name, the way a browser's local storage works.
package storage

import (
	"context"

	"github.com/pkg/errors"
)

// Well-known keys
const (
	CartKey  = "cart"
	TokenKey = "token"
)

// ErrNotFound is returned by Get when nothing is stored under the key
var ErrNotFound = errors.New("storage: key not found")

// Store is a small string key/value store
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close(ctx context.Context) error
}

// Lookup returns the value under key, treating a missing key as ("", false, nil)
func Lookup(ctx context.Context, s Store, key string) (string, bool, error) {
	v, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}
