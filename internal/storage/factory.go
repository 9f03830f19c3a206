package storage

import (
	"context"
	"fmt"
	"log/slog"
)

// NewStorage creates the Store for the URI scheme:
//   - file:// -> FileStorage
//   - oci:// -> OCIStorage (requires token)
//   - s3:// or s3+http:// -> S3Storage
func NewStorage(ctx context.Context, uri *StorageURI, token string, logger *slog.Logger) (Store, error) {
	switch uri.Scheme {
	case "file":
		return NewFileStorage(uri.Path, token, logger)

	case "oci":
		if token == "" {
			return nil, fmt.Errorf("%w: OCI storage requires authentication token (--storage-token or EIX_STORAGE_TOKEN)", ErrTokenRequired)
		}
		return NewOCIStorage(uri, token, logger)

	case "s3", "s3+http":
		return NewS3Storage(ctx, uri, token, logger)

	default:
		return nil, fmt.Errorf("unsupported storage scheme: %s", uri.Scheme)
	}
}
