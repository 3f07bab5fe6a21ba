package ports

import "context"

// TokenKey is the storage key of the bearer credential.
const TokenKey = "vpa_token"

// Storage is the client's persistent key/value storage.
// Get returns "" with a nil error when key is absent.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
