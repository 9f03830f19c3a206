package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/wiredhikari/eix/internal/models"
)

const (
	S3UploadTimeout   = 60 * time.Second
	S3DownloadTimeout = 30 * time.Second
)

var (
	regionDotted = regexp.MustCompile(`s3\.([a-z]{2}-[a-z]+-\d+)\.amazonaws\.com`)
	regionDashed = regexp.MustCompile(`s3-([a-z]{2}-[a-z]+-\d+)\.amazonaws\.com`)
)

// S3Storage implements Store on one object of an S3-compatible bucket
type S3Storage struct {
	client *minio.Client
	bucket string
	key    string
	logger *slog.Logger
}

// NewS3Storage connects to the endpoint of uri and checks the bucket exists.
// The token is ACCESS_KEY:SECRET_KEY; when empty the AWS_* environment is used.
func NewS3Storage(ctx context.Context, uri *StorageURI, token string, logger *slog.Logger) (*S3Storage, error) {
	if !uri.IsS3Scheme() {
		return nil, fmt.Errorf("expected S3 URI, got scheme: %s", uri.Scheme)
	}

	accessKey, secretKey, err := ParseS3Token(token)
	if err != nil {
		return nil, fmt.Errorf("failed to parse S3 credentials: %w", err)
	}

	region := uri.S3Region()
	if region == "" {
		region = ExtractRegionFromEndpoint(uri.S3Endpoint())
	}

	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: uri.S3UseSSL(),
		Region: region,
	}
	client, err := minio.New(uri.S3Endpoint(), opts)
	if err != nil {
		return nil, CategorizeS3Error(OpConnect, fmt.Errorf("failed to create S3 client: %w", err))
	}

	s := &S3Storage{
		client: client,
		bucket: uri.S3Bucket(),
		key:    uri.S3Key(),
		logger: logger,
	}

	exists, err := client.BucketExists(ctx, s.bucket)
	if err != nil {
		return nil, CategorizeS3Error(OpConnect, err)
	}
	if !exists {
		return nil, CategorizeS3Error(OpConnect, fmt.Errorf("bucket %q does not exist", s.bucket))
	}

	logger.Info("S3 storage ready",
		"endpoint", uri.S3Endpoint(),
		"bucket", s.bucket,
		"key", s.key,
		"ssl", opts.Secure,
		"region", region)
	return s, nil
}

// Load downloads and decodes the index object
func (s *S3Storage) Load(ctx context.Context) (*models.Index, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, S3DownloadTimeout)
	defer cancel()

	if _, err := s.client.StatObject(ctx, s.bucket, s.key, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrNotFound
		}
		return nil, CategorizeS3Error(OpDownload, err)
	}

	obj, err := s.client.GetObject(ctx, s.bucket, s.key, minio.GetObjectOptions{})
	if err != nil {
		return nil, CategorizeS3Error(OpDownload, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		s.logger.Error("S3 download failed",
			"bucket", s.bucket,
			"key", s.key,
			"error", err,
			"duration_ms", time.Since(start).Milliseconds())
		return nil, CategorizeS3Error(OpDownload, err)
	}

	idx, err := Decode(data)
	if err != nil {
		return nil, err
	}
	s.logger.Info("S3 index loaded",
		"bucket", s.bucket,
		"key", s.key,
		"size_bytes", len(data),
		"package_count", idx.Len(),
		"duration_ms", time.Since(start).Milliseconds())
	return idx, nil
}

// Save encodes and uploads the index object
func (s *S3Storage) Save(ctx context.Context, idx *models.Index) error {
	data, err := Encode(idx)
	if err != nil {
		return err
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, S3UploadTimeout)
	defer cancel()

	_, err = s.client.PutObject(ctx, s.bucket, s.key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		s.logger.Error("S3 upload failed",
			"bucket", s.bucket,
			"key", s.key,
			"error", err,
			"duration_ms", time.Since(start).Milliseconds())
		return CategorizeS3Error(OpUpload, err)
	}

	s.logger.Info("S3 index saved",
		"bucket", s.bucket,
		"key", s.key,
		"size_bytes", len(data),
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// Close is a no-op
func (s *S3Storage) Close() error {
	return nil
}

// ParseS3Token splits ACCESS_KEY:SECRET_KEY. An empty token falls back to
// AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY, and to anonymous access when
// neither is set.
func ParseS3Token(token string) (accessKey, secretKey string, err error) {
	if token == "" {
		accessKey = os.Getenv("AWS_ACCESS_KEY_ID")
		secretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
		if (accessKey == "") != (secretKey == "") {
			return "", "", fmt.Errorf("S3 credentials incomplete: set both AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY, or EIX_STORAGE_TOKEN=ACCESS_KEY:SECRET_KEY")
		}
		return accessKey, secretKey, nil
	}

	accessKey, secretKey, ok := strings.Cut(token, ":")
	if !ok {
		return "", "", fmt.Errorf("invalid token format: expected ACCESS_KEY:SECRET_KEY")
	}
	if accessKey == "" {
		return "", "", fmt.Errorf("invalid token format: access key cannot be empty")
	}
	if secretKey == "" {
		return "", "", fmt.Errorf("invalid token format: secret key cannot be empty")
	}
	return accessKey, secretKey, nil
}

// ExtractRegionFromEndpoint reads the region out of an AWS endpoint name
func ExtractRegionFromEndpoint(endpoint string) string {
	for _, re := range []*regexp.Regexp{regionDotted, regionDashed} {
		if m := re.FindStringSubmatch(endpoint); len(m) > 1 {
			return m[1]
		}
	}
	return ""
}
