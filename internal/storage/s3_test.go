package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewS3Storage_InvalidScheme(t *testing.T) {
	uri := &StorageURI{Scheme: "file", Path: "./index.json", Raw: "file://./index.json"}

	_, err := NewS3Storage(context.Background(), uri, "access:secret", newTestLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected S3 URI")
}

func TestNewS3Storage_Unreachable(t *testing.T) {
	uri, err := ParseStorageURI("s3+http://127.0.0.1:1/eix/index.json")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err = NewStorage(ctx, uri, "access:secret", newTestLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.NotContains(t, err.Error(), "unsupported storage scheme")
}

func TestParseS3Token(t *testing.T) {
	tests := []struct {
		name        string
		token       string
		envAccess   string
		envSecret   string
		wantAccess  string
		wantSecret  string
		errContains string
	}{
		{name: "valid token", token: "AKIA:secret", wantAccess: "AKIA", wantSecret: "secret"},
		{name: "secret with colon", token: "AKIA:se:cret", wantAccess: "AKIA", wantSecret: "se:cret"},
		{name: "missing colon", token: "AKIA", errContains: "expected ACCESS_KEY:SECRET_KEY"},
		{name: "empty access key", token: ":secret", errContains: "access key cannot be empty"},
		{name: "empty secret key", token: "AKIA:", errContains: "secret key cannot be empty"},
		{name: "environment", envAccess: "ENVKEY", envSecret: "envsecret", wantAccess: "ENVKEY", wantSecret: "envsecret"},
		{name: "anonymous", wantAccess: "", wantSecret: ""},
		{name: "incomplete environment", envAccess: "ENVKEY", errContains: "credentials incomplete"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("AWS_ACCESS_KEY_ID", tt.envAccess)
			t.Setenv("AWS_SECRET_ACCESS_KEY", tt.envSecret)

			access, secret, err := ParseS3Token(tt.token)
			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAccess, access)
			assert.Equal(t, tt.wantSecret, secret)
		})
	}
}

func TestExtractRegionFromEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		expected string
	}{
		{"s3.eu-west-1.amazonaws.com", "eu-west-1"},
		{"s3-us-west-2.amazonaws.com", "us-west-2"},
		{"s3.amazonaws.com", ""},
		{"localhost:9000", ""},
	}

	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractRegionFromEndpoint(tt.endpoint))
		})
	}
}
