package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOCIStorage_InvalidScheme(t *testing.T) {
	uri, err := ParseStorageURI("file://./index.json")
	require.NoError(t, err)

	_, err = NewOCIStorage(uri, "token", newTestLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected OCI URI")
}

func TestNewOCIStorage_Reference(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		reference string
		plainHTTP bool
	}{
		{"remote registry", "oci://ghcr.io/gentoo/eix-index:amd64", "ghcr.io/gentoo/eix-index:amd64", false},
		{"local registry", "oci://localhost:5000/eix/index", "localhost:5000/eix/index:latest", true},
		{"loopback address", "oci://127.0.0.1:5000/eix/index", "127.0.0.1:5000/eix/index:latest", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uri, err := ParseStorageURI(tt.input)
			require.NoError(t, err)

			s, err := NewOCIStorage(uri, "token", newTestLogger())
			require.NoError(t, err)
			assert.Equal(t, tt.reference, s.reference)
			assert.Equal(t, tt.plainHTTP, s.repository.PlainHTTP)
			assert.NoError(t, s.Close())
		})
	}
}

func TestOCICredential(t *testing.T) {
	cred := ociCredential("alice:s3cret")
	assert.Equal(t, "alice", cred.Username)
	assert.Equal(t, "s3cret", cred.Password)

	cred = ociCredential("ghp_abcdef")
	assert.Equal(t, "token", cred.Username)
	assert.Equal(t, "ghp_abcdef", cred.Password)
}
