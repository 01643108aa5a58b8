// Package metadata stores small string values (tokens, the serialized user
// list) under fixed keys in the client state database.
package metadata

import (
	"context"
)

// Repository is a key/value store. Get reports ok=false for absent keys.
type Repository interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key string, value string) error
	SetMany(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, keys ...string) error
	List(ctx context.Context) (map[string]string, error)
	Clear(ctx context.Context) error
}
