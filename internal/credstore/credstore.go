// Package credstore persists the username/password pair bound on first login.
package credstore

import (
	"context"
	"errors"
)

// Keys under which the bound credentials are stored.
const (
	KeyUsername = "username"
	KeyPassword = "password"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("credential not found")

// Store is a minimal key/value store.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
