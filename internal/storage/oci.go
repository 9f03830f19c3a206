package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content/memory"
	"oras.land/oras-go/v2/errdef"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/retry"

	"github.com/wiredhikari/eix/internal/models"
)

const (
	OCIPushTimeout = 60 * time.Second
	OCIPullTimeout = 30 * time.Second
)

const (
	OCIConfigMediaType = "application/vnd.oci.image.config.v1+json"
	OCILayerMediaType  = "application/vnd.eix.index.v1+json"
	OCILayerTitle      = "index.json"
)

// OCIStorage implements Store as a single-layer artifact in an OCI registry
type OCIStorage struct {
	repository *remote.Repository
	reference  string
	logger     *slog.Logger
}

// NewOCIStorage prepares a repository client. The token is either USER:PASSWORD
// or a bare registry token. Registries on localhost are reached over plain HTTP.
func NewOCIStorage(uri *StorageURI, token string, logger *slog.Logger) (*OCIStorage, error) {
	if !uri.IsOCIScheme() {
		return nil, fmt.Errorf("expected OCI URI, got scheme: %s", uri.Scheme)
	}

	reference := uri.OCIReference()
	repo, err := remote.NewRepository(reference)
	if err != nil {
		return nil, CategorizeOCIError(OpConnect, fmt.Errorf("invalid OCI reference %q: %w", reference, err))
	}
	repo.PlainHTTP = isLoopbackHost(uri.Host)

	if token != "" {
		repo.Client = &auth.Client{
			Client:     retry.DefaultClient,
			Cache:      auth.NewCache(),
			Credential: auth.StaticCredential(repo.Reference.Registry, ociCredential(token)),
		}
	}

	logger.Info("OCI storage ready",
		"reference", reference,
		"has_token", token != "",
		"plain_http", repo.PlainHTTP)
	return &OCIStorage{repository: repo, reference: reference, logger: logger}, nil
}

func ociCredential(token string) auth.Credential {
	if user, pass, ok := strings.Cut(token, ":"); ok && user != "" {
		return auth.Credential{Username: user, Password: pass}
	}
	return auth.Credential{Username: "token", Password: token}
}

func isLoopbackHost(host string) bool {
	name, _, _ := strings.Cut(host, ":")
	return name == "localhost" || name == "127.0.0.1"
}

// isOCINotFound matches the ways registries report a missing tag or repository
func isOCINotFound(err error) bool {
	if errors.Is(err, errdef.ErrNotFound) {
		return true
	}
	msg := err.Error()
	return containsHTTPStatus(msg, 404) ||
		strings.Contains(msg, "NAME_UNKNOWN") ||
		strings.Contains(msg, "MANIFEST_UNKNOWN")
}

// Load pulls the tagged artifact and decodes its first layer
func (s *OCIStorage) Load(ctx context.Context) (*models.Index, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, OCIPullTimeout)
	defer cancel()

	store := memory.New()
	tag := s.repository.Reference.Reference
	desc, err := oras.Copy(ctx, s.repository, tag, store, "", oras.DefaultCopyOptions)
	if err != nil {
		if isOCINotFound(err) {
			return nil, ErrNotFound
		}
		s.logger.Error("OCI pull failed",
			"reference", s.reference,
			"error", err,
			"duration_ms", time.Since(start).Milliseconds())
		return nil, CategorizeOCIError(OpDownload, err)
	}

	manifestJSON, err := fetchAll(ctx, store, desc)
	if err != nil {
		return nil, CategorizeOCIError(OpDownload, fmt.Errorf("failed to fetch manifest: %w", err))
	}
	var manifest ocispec.Manifest
	if err := json.Unmarshal(manifestJSON, &manifest); err != nil {
		return nil, CategorizeOCIError(OpDownload, fmt.Errorf("failed to parse manifest: %w", err))
	}
	if len(manifest.Layers) == 0 {
		return nil, CategorizeOCIError(OpDownload, fmt.Errorf("artifact has no layers"))
	}

	data, err := fetchAll(ctx, store, manifest.Layers[0])
	if err != nil {
		return nil, CategorizeOCIError(OpDownload, fmt.Errorf("failed to fetch index layer: %w", err))
	}

	idx, err := Decode(data)
	if err != nil {
		return nil, err
	}
	s.logger.Info("OCI index loaded",
		"reference", s.reference,
		"digest", manifest.Layers[0].Digest,
		"size_bytes", len(data),
		"package_count", idx.Len(),
		"duration_ms", time.Since(start).Milliseconds())
	return idx, nil
}

// Save builds the artifact in memory and copies it to the registry tag
func (s *OCIStorage) Save(ctx context.Context, idx *models.Index) error {
	data, err := Encode(idx)
	if err != nil {
		return err
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, OCIPushTimeout)
	defer cancel()

	store := memory.New()
	configDesc, err := pushBlob(ctx, store, OCIConfigMediaType, []byte("{}"), nil)
	if err != nil {
		return CategorizeOCIError(OpUpload, fmt.Errorf("failed to push config: %w", err))
	}
	layerDesc, err := pushBlob(ctx, store, OCILayerMediaType, data, map[string]string{
		ocispec.AnnotationTitle: OCILayerTitle,
	})
	if err != nil {
		return CategorizeOCIError(OpUpload, fmt.Errorf("failed to push layer: %w", err))
	}

	manifest := ocispec.Manifest{
		MediaType: ocispec.MediaTypeImageManifest,
		Config:    configDesc,
		Layers:    []ocispec.Descriptor{layerDesc},
		Annotations: map[string]string{
			ocispec.AnnotationCreated: idx.CreatedAt.UTC().Format(time.RFC3339),
			"org.eix.format":          IndexFormat,
		},
	}
	manifest.SchemaVersion = 2
	manifestJSON, err := json.Marshal(manifest)
	if err != nil {
		return CategorizeOCIError(OpUpload, fmt.Errorf("failed to marshal manifest: %w", err))
	}
	manifestDesc, err := pushBlob(ctx, store, ocispec.MediaTypeImageManifest, manifestJSON, nil)
	if err != nil {
		return CategorizeOCIError(OpUpload, fmt.Errorf("failed to push manifest: %w", err))
	}

	tag := s.repository.Reference.Reference
	if err := store.Tag(ctx, manifestDesc, tag); err != nil {
		return CategorizeOCIError(OpUpload, fmt.Errorf("failed to tag manifest: %w", err))
	}
	if _, err := oras.Copy(ctx, store, tag, s.repository, tag, oras.DefaultCopyOptions); err != nil {
		s.logger.Error("OCI push failed",
			"reference", s.reference,
			"error", err,
			"duration_ms", time.Since(start).Milliseconds())
		return CategorizeOCIError(OpUpload, err)
	}

	s.logger.Info("OCI index saved",
		"reference", s.reference,
		"digest", layerDesc.Digest,
		"size_bytes", len(data),
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// Close is a no-op
func (s *OCIStorage) Close() error {
	return nil
}

func pushBlob(ctx context.Context, store *memory.Store, mediaType string, data []byte, annotations map[string]string) (ocispec.Descriptor, error) {
	desc := ocispec.Descriptor{
		MediaType:   mediaType,
		Digest:      digest.FromBytes(data),
		Size:        int64(len(data)),
		Annotations: annotations,
	}
	return desc, store.Push(ctx, desc, bytes.NewReader(data))
}

func fetchAll(ctx context.Context, store *memory.Store, desc ocispec.Descriptor) ([]byte, error) {
	rc, err := store.Fetch(ctx, desc)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
