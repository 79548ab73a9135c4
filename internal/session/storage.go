package session

import (
	"context"
	"errors"
)

// Persisted keys. All three are written and cleared together.
const (
	KeyUser      = "user"
	KeyToken     = "token"
	KeyExpiresAt = "expiresAt"
)

var ErrStorage = errors.New("session storage failure")

// Storage is the key/value persistence behind one browser session. Save must
// write every given key or none of them.
type Storage interface {
	Load(ctx context.Context) (map[string]string, error)
	Save(ctx context.Context, values map[string]string) error
	Clear(ctx context.Context) error
}

// Backend hands out Storage scoped to one opaque session key.
type Backend interface {
	Scope(key string) Storage
}
