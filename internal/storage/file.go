package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/wiredhikari/eix/internal/models"
)

// Size above which a saved index is logged as unusually large
const fileSizeWarnMB = 50

// FileStorage implements Store on a local JSON file
type FileStorage struct {
	filePath string
	mu       sync.Mutex
	logger   *slog.Logger
}

// NewFileStorage creates a new file-based storage
// The token parameter is accepted but ignored for file storage (for interface compatibility)
func NewFileStorage(filePath string, token string, logger *slog.Logger) (*FileStorage, error) {
	if token != "" {
		logger.Warn("Storage token provided but file storage does not use authentication",
			"file_path", filePath)
	}
	if filePath == "" {
		return nil, fmt.Errorf("file storage requires a path")
	}
	return &FileStorage{filePath: filePath, logger: logger}, nil
}

// Load reads the index file
func (fs *FileStorage) Load(ctx context.Context) (*models.Index, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	data, err := os.ReadFile(fs.filePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		fs.logger.Error("Storage read failed", "file_path", fs.filePath, "error", err)
		return nil, fmt.Errorf("%w: failed to read index file: %v", ErrStorageUnavailable, err)
	}

	idx, err := Decode(data)
	if err != nil {
		return nil, err
	}
	fs.logger.Info("Index file loaded",
		"file_path", fs.filePath,
		"package_count", idx.Len())
	return idx, nil
}

// Save writes the index atomically (temp file + rename)
func (fs *FileStorage) Save(ctx context.Context, idx *models.Index) error {
	data, err := Encode(idx)
	if err != nil {
		return err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := fs.writeAtomic(data); err != nil {
		fs.logger.Error("Storage write failed",
			"file_path", fs.filePath,
			"error", err)
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	sizeMB := float64(len(data)) / (1024 * 1024)
	if sizeMB > fileSizeWarnMB {
		fs.logger.Warn("Index file size exceeds recommended threshold",
			"file_path", fs.filePath,
			"current_size_mb", sizeMB,
			"threshold_mb", fileSizeWarnMB,
			"package_count", idx.Len())
	}
	fs.logger.Info("Index file saved",
		"file_path", fs.filePath,
		"package_count", idx.Len(),
		"size_bytes", len(data))
	return nil
}

func (fs *FileStorage) writeAtomic(data []byte) error {
	dir := filepath.Dir(fs.filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, ".eix-index-*.json.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()
	committed := false
	defer func() {
		if !committed {
			tempFile.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tempPath, fs.filePath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	committed = true
	return nil
}

// Close closes the storage (no-op for file storage)
func (fs *FileStorage) Close() error {
	return nil
}
