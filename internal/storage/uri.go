package storage

import (
	"fmt"
	"net/url"
	"strings"
)

// SupportedSchemes lists every storage URI scheme NewStorage accepts
var SupportedSchemes = []string{"file", "s3", "s3+http", "oci"}

// DefaultOCITag is used when an oci:// URI carries no tag
const DefaultOCITag = "latest"

// StorageURI represents a parsed storage backend URI
type StorageURI struct {
	Scheme string // file, s3, s3+http or oci
	Host   string // endpoint or registry; empty for file://
	Path   string // file path, "bucket/key" for s3, repository for oci
	Tag    string // oci only
	Region string // s3 only, from ?region=
	Raw    string // Original URI string for logging/debugging
}

// NormalizeStorageURI ensures the URI has a scheme, prepending "file://" if missing
func NormalizeStorageURI(uri string) string {
	if uri == "" || strings.Contains(uri, "://") {
		return uri
	}
	return "file://" + uri
}

// ParseStorageURI parses a storage URI string into its components
func ParseStorageURI(uri string) (*StorageURI, error) {
	if uri == "" {
		return nil, fmt.Errorf("storage URI cannot be empty")
	}

	parsed, err := url.Parse(NormalizeStorageURI(uri))
	if err != nil {
		return nil, fmt.Errorf("invalid URI format: %w", err)
	}

	switch parsed.Scheme {
	case "file":
		return parseFileURI(parsed, uri)
	case "s3", "s3+http":
		return parseS3URI(parsed, uri)
	case "oci":
		return parseOCIURI(parsed, uri)
	default:
		return nil, fmt.Errorf("unsupported storage scheme %q; supported schemes: %s",
			parsed.Scheme, strings.Join(SupportedSchemes, ", "))
	}
}

func parseFileURI(parsed *url.URL, raw string) (*StorageURI, error) {
	path := parsed.Path
	if path == "" && parsed.Opaque != "" {
		path = parsed.Opaque
	}
	// file://./index.json, file://dir/index.json and file://C:/index.json are relative to the host part
	if parsed.Host != "" {
		path = parsed.Host + path
	}
	if path == "" {
		return nil, fmt.Errorf("storage URI must have a path")
	}
	return &StorageURI{Scheme: "file", Path: path, Raw: raw}, nil
}

func parseS3URI(parsed *url.URL, raw string) (*StorageURI, error) {
	if parsed.Fragment != "" {
		return nil, fmt.Errorf("S3 URI does not support fragments")
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("S3 URI must include endpoint host: s3://<endpoint>/<bucket>/<key>")
	}
	query := parsed.Query()
	for key := range query {
		if key != "region" {
			return nil, fmt.Errorf("S3 URI does not support query parameter %q", key)
		}
	}
	path := strings.TrimPrefix(parsed.Path, "/")
	if path == "" {
		return nil, fmt.Errorf("S3 URI must include bucket and path: s3://<endpoint>/<bucket>/<key>")
	}
	bucket, key, _ := strings.Cut(path, "/")
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("S3 URI must include object key path: s3://<endpoint>/<bucket>/<key>")
	}
	return &StorageURI{
		Scheme: parsed.Scheme,
		Host:   parsed.Host,
		Path:   path,
		Region: query.Get("region"),
		Raw:    raw,
	}, nil
}

func parseOCIURI(parsed *url.URL, raw string) (*StorageURI, error) {
	if parsed.RawQuery != "" {
		return nil, fmt.Errorf("OCI URI does not support query parameters")
	}
	if parsed.Fragment != "" {
		return nil, fmt.Errorf("OCI URI does not support fragments")
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("OCI URI must include registry host: oci://<registry>/<repository>[:tag]")
	}
	repo := strings.TrimPrefix(parsed.Path, "/")
	if repo == "" {
		return nil, fmt.Errorf("OCI URI must include repository path: oci://<registry>/<repository>[:tag]")
	}
	tag := DefaultOCITag
	if i := strings.LastIndex(repo, ":"); i > 0 {
		repo, tag = repo[:i], repo[i+1:]
	}
	if tag == "" {
		return nil, fmt.Errorf("OCI URI has an empty tag")
	}
	return &StorageURI{Scheme: "oci", Host: parsed.Host, Path: repo, Tag: tag, Raw: raw}, nil
}

// IsFileScheme returns true if this is a file:// URI
func (u *StorageURI) IsFileScheme() bool {
	return u.Scheme == "file"
}

// IsOCIScheme returns true if this is an oci:// URI
func (u *StorageURI) IsOCIScheme() bool {
	return u.Scheme == "oci"
}

// IsS3Scheme returns true for s3:// and s3+http:// URIs
func (u *StorageURI) IsS3Scheme() bool {
	return u.Scheme == "s3" || u.Scheme == "s3+http"
}

// OCIReference returns "registry/repository:tag"
func (u *StorageURI) OCIReference() string {
	return fmt.Sprintf("%s/%s:%s", u.Host, u.Path, u.Tag)
}

// S3Endpoint returns the endpoint host (with port)
func (u *StorageURI) S3Endpoint() string {
	return u.Host
}

// S3Bucket returns the first path segment
func (u *StorageURI) S3Bucket() string {
	bucket, _, _ := strings.Cut(u.Path, "/")
	return bucket
}

// S3Key returns the object key below the bucket
func (u *StorageURI) S3Key() string {
	_, key, _ := strings.Cut(u.Path, "/")
	return key
}

// S3Region returns the ?region= value, if any
func (u *StorageURI) S3Region() string {
	return u.Region
}

// S3UseSSL is false only for s3+http://
func (u *StorageURI) S3UseSSL() bool {
	return u.Scheme == "s3"
}

// String returns the original URI string
func (u *StorageURI) String() string {
	return u.Raw
}
