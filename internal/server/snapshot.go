package server

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/wiredhikari/eix/internal/models"
	"github.com/wiredhikari/eix/internal/storage"
)

// Snapshot is the index being served. Readers never block a reload; a
// failed reload keeps the previous index.
type Snapshot struct {
	store   storage.Store
	logger  *slog.Logger
	current atomic.Pointer[models.Index]
	lastErr atomic.Pointer[error]
}

// NewSnapshot creates an empty snapshot over store
func NewSnapshot(store storage.Store, logger *slog.Logger) *Snapshot {
	return &Snapshot{store: store, logger: logger}
}

// Reload loads the index from storage and swaps it in
func (s *Snapshot) Reload(ctx context.Context) error {
	idx, err := s.store.Load(ctx)
	if err != nil {
		s.lastErr.Store(&err)
		return err
	}
	s.current.Store(idx)
	s.lastErr.Store(nil)
	s.logger.Info("Index loaded",
		"packages", idx.Len(),
		"overlays", len(idx.Overlays),
		"created_at", idx.CreatedAt)
	return nil
}

// Set replaces the served index directly
func (s *Snapshot) Set(idx *models.Index) {
	s.current.Store(idx)
}

// Index returns the served index. Before any successful load it returns the
// load error, storage.ErrNotFound if there was none.
func (s *Snapshot) Index(ctx context.Context) (*models.Index, error) {
	if idx := s.current.Load(); idx != nil {
		return idx, nil
	}
	if errp := s.lastErr.Load(); errp != nil {
		return nil, *errp
	}
	return nil, storage.ErrNotFound
}
