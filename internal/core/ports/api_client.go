package ports

import (
	"context"
	"net/url"

	"github.com/vehicle-parking/vpa-client/internal/core/envelope"
)

// APIClient is the HTTP adapter every store talks through. Paths are relative
// to the configured API base. Non-2xx responses come back as *domain.APIError.
type APIClient interface {
	Get(ctx context.Context, path string, query url.Values) (*envelope.Envelope, error)
	Post(ctx context.Context, path string, payload any) (*envelope.Envelope, error)
	Put(ctx context.Context, path string, payload any) (*envelope.Envelope, error)
	Delete(ctx context.Context, path string) (*envelope.Envelope, error)
	// GetRaw returns the undecoded body and its content type, for file downloads.
	GetRaw(ctx context.Context, path string, query url.Values) ([]byte, string, error)
}
