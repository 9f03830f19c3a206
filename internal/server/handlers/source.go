package handlers

import (
	"context"

	"github.com/wiredhikari/eix/internal/models"
)

// IndexSource yields the index currently being served. It returns
// storage.ErrNotFound when no index has been built.
type IndexSource interface {
	Index(ctx context.Context) (*models.Index, error)
}
