package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/wiredhikari/eix/internal/models"
)

// IndexFormat tags the document layout written by Encode
const IndexFormat = "eix-index/1"

// Document is the persisted form of an index
type Document struct {
	Format    string                 `json:"format"`
	CreatedAt time.Time              `json:"created_at"`
	Overlays  []models.Overlay       `json:"overlays"`
	Packages  []models.PackageRecord `json:"packages"`
}

// Encode serializes idx with packages in sorted order
func Encode(idx *models.Index) ([]byte, error) {
	doc := Document{
		Format:    IndexFormat,
		CreatedAt: idx.CreatedAt,
		Overlays:  idx.Overlays,
		Packages:  make([]models.PackageRecord, 0, idx.Len()),
	}
	if doc.Overlays == nil {
		doc.Overlays = []models.Overlay{}
	}
	for _, p := range idx.Packages() {
		doc.Packages = append(doc.Packages, p.ToRecord())
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal index: %w", err)
	}
	return data, nil
}

// Decode parses an encoded index. Every package is rebuilt by inserting its
// versions, so derived flags in the document are ignored.
func Decode(data []byte) (*models.Index, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse index (invalid JSON syntax): %w", err)
	}
	if doc.Format != IndexFormat {
		return nil, fmt.Errorf("unsupported index format %q (want %q)", doc.Format, IndexFormat)
	}

	idx := models.NewIndex(doc.Overlays)
	idx.CreatedAt = doc.CreatedAt
	for _, rec := range doc.Packages {
		if idx.Get(rec.Category, rec.Name) != nil {
			return nil, fmt.Errorf("package %s/%s appears twice", rec.Category, rec.Name)
		}
		p, err := rec.ToPackage()
		if err != nil {
			return nil, fmt.Errorf("failed to decode package: %w", err)
		}
		idx.Add(p)
	}
	return idx, nil
}
