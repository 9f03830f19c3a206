package storage

import (
	"context"
	"errors"

	"github.com/wiredhikari/eix/internal/models"
)

var (
	// ErrNotFound is returned by Load when no index has been saved yet
	ErrNotFound = errors.New("index not found")

	// ErrStorageUnavailable is returned when storage operations fail
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrTokenRequired is returned when a storage scheme requires a token but none was provided
	ErrTokenRequired = errors.New("storage token required")
)

// Store persists one whole index
type Store interface {
	// Load returns the saved index, or ErrNotFound
	Load(ctx context.Context) (*models.Index, error)

	// Save replaces the saved index
	Save(ctx context.Context, idx *models.Index) error

	// Close closes the storage
	Close() error
}
