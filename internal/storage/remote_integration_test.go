package storage

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Remote backends run only when these are set
const (
	envS3Endpoint  = "EIX_TEST_S3_ENDPOINT"
	envS3Bucket    = "EIX_TEST_S3_BUCKET"
	envS3AccessKey = "EIX_TEST_S3_ACCESS_KEY"
	envS3SecretKey = "EIX_TEST_S3_SECRET_KEY"
	envS3UseSSL    = "EIX_TEST_S3_USE_SSL" // "true" or "false", default "true"

	envOCIURI   = "EIX_TEST_OCI_URI"
	envOCIToken = "EIX_TEST_OCI_TOKEN"
)

func s3TestConfig(t *testing.T) (uri, token string) {
	for _, env := range []string{envS3Endpoint, envS3Bucket, envS3AccessKey, envS3SecretKey} {
		if os.Getenv(env) == "" {
			t.Skipf("S3 integration tests require %s environment variable", env)
		}
	}
	scheme := "s3"
	if os.Getenv(envS3UseSSL) == "false" {
		scheme = "s3+http"
	}
	// unique key for test isolation
	key := fmt.Sprintf("test/index-%d.json", time.Now().UnixNano())
	uri = fmt.Sprintf("%s://%s/%s/%s", scheme, os.Getenv(envS3Endpoint), os.Getenv(envS3Bucket), key)
	return uri, os.Getenv(envS3AccessKey) + ":" + os.Getenv(envS3SecretKey)
}

func ociTestConfig(t *testing.T) (uri, token string) {
	uri, token = os.Getenv(envOCIURI), os.Getenv(envOCIToken)
	if uri == "" || token == "" {
		t.Skipf("Skipping OCI integration test (set %s and %s to run)", envOCIURI, envOCIToken)
	}
	return uri, token
}

func testRemoteLifecycle(t *testing.T, uri, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	parsed, err := ParseStorageURI(uri)
	require.NoError(t, err)
	store, err := NewStorage(ctx, parsed, token, newTestLogger())
	require.NoError(t, err)
	defer store.Close()

	want := sampleIndex(t)
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want.Len(), got.Len())
	assert.Equal(t, want.Overlays, got.Overlays)

	foo := got.Get("dev-libs", "foo")
	require.NotNil(t, foo)
	assert.Equal(t, want.Get("dev-libs", "foo").DuplicateStatus(), foo.DuplicateStatus())
	assert.Equal(t, want.Get("dev-libs", "foo").ToRecord(), foo.ToRecord())
}

func TestS3Storage_Integration(t *testing.T) {
	uri, token := s3TestConfig(t)
	t.Logf("Testing with S3 URI: %s", uri)
	testRemoteLifecycle(t, uri, token)
}

func TestOCIStorage_Integration(t *testing.T) {
	uri, token := ociTestConfig(t)
	t.Logf("Testing with OCI URI: %s", uri)
	testRemoteLifecycle(t, uri, token)
}
