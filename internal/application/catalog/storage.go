package catalog

import (
	"context"
	"io"
	"time"
)

// AssetStorage abstracts object storage for product and collection media
type AssetStorage interface {
	// Upload stores an asset and returns its public URL
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)

	// GenerateUploadURL returns a presigned PUT URL for direct admin uploads
	GenerateUploadURL(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// PublicURL returns the public URL for a stored asset key
	PublicURL(key string) string

	// Delete removes an asset
	Delete(ctx context.Context, key string) error

	// Exists reports whether an asset key is stored
	Exists(ctx context.Context, key string) (bool, error)
}
