package storage

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
)

// Remote backends
const (
	BackendS3  = "S3"
	BackendOCI = "OCI"
)

// Error categories for remote backends
const (
	CategoryAuth    = "authentication"
	CategoryNetwork = "network"
	CategoryStorage = "storage"
)

// Remote operations for error context
const (
	OpUpload   = "upload"
	OpDownload = "download"
	OpConnect  = "connect"
)

// RemoteError wraps an S3 or OCI failure with a category
type RemoteError struct {
	Backend  string // S3 or OCI
	Category string // authentication, network or storage
	Op       string // upload, download or connect
	Err      error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s %s error during %s: %v", e.Backend, e.Category, e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Is matches ErrStorageUnavailable
func (e *RemoteError) Is(target error) bool {
	return target == ErrStorageUnavailable
}

// IsAuth reports whether err is an authentication failure of a remote backend
func IsAuth(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Category == CategoryAuth
}

// networkError classifies transport-level failures; ok=false when err is not one
func networkError(backend, op string, err error) (*RemoteError, bool) {
	target := "S3 endpoint"
	if backend == BackendOCI {
		target = "OCI registry"
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &RemoteError{backend, CategoryNetwork, op, fmt.Errorf("cannot resolve %s hostname", target)}, true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return &RemoteError{backend, CategoryNetwork, op, fmt.Errorf("timeout: unable to reach %s", target)}, true
		}
		return &RemoteError{backend, CategoryNetwork, op, fmt.Errorf("unable to reach %s", target)}, true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &RemoteError{backend, CategoryNetwork, op, fmt.Errorf("unable to reach %s: %v", target, urlErr.Err)}, true
	}
	return nil, false
}

// CategorizeS3Error classifies a minio-go error
func CategorizeS3Error(op string, err error) *RemoteError {
	if err == nil {
		return nil
	}

	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		switch resp.Code {
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken":
			return &RemoteError{BackendS3, CategoryAuth, op, fmt.Errorf("%s: verify storage.token (ACCESS:SECRET)", resp.Code)}
		case "NoSuchBucket":
			return &RemoteError{BackendS3, CategoryStorage, op, fmt.Errorf("bucket not found: verify bucket exists and name is correct")}
		case "NoSuchKey":
			return &RemoteError{BackendS3, CategoryStorage, op, fmt.Errorf("object not found")}
		case "":
		default:
			return &RemoteError{BackendS3, CategoryStorage, op, fmt.Errorf("%s: %s", resp.Code, resp.Message)}
		}
	}

	if re, ok := networkError(BackendS3, op, err); ok {
		return re
	}
	return &RemoteError{BackendS3, CategoryStorage, op, err}
}

// CategorizeOCIError classifies an oras-go error by HTTP status and transport failure
func CategorizeOCIError(op string, err error) *RemoteError {
	if err == nil {
		return nil
	}

	msg := err.Error()
	switch {
	case containsHTTPStatus(msg, 401) || strings.Contains(msg, "UNAUTHORIZED"):
		return &RemoteError{BackendOCI, CategoryAuth, op, fmt.Errorf("authentication failed: verify storage token is valid")}
	case containsHTTPStatus(msg, 403) || strings.Contains(msg, "DENIED"):
		return &RemoteError{BackendOCI, CategoryAuth, op, fmt.Errorf("access denied: token lacks push or pull permission")}
	}

	if re, ok := networkError(BackendOCI, op, err); ok {
		return re
	}

	switch {
	case containsHTTPStatus(msg, 404) || strings.Contains(msg, "NOT_FOUND"):
		return &RemoteError{BackendOCI, CategoryStorage, op, fmt.Errorf("repository not found or not initialized")}
	case containsHTTPStatus(msg, 500) || containsHTTPStatus(msg, 503):
		return &RemoteError{BackendOCI, CategoryStorage, op, fmt.Errorf("OCI registry unavailable: %v", err)}
	}
	return &RemoteError{BackendOCI, CategoryStorage, op, err}
}

// containsHTTPStatus reports whether msg carries the status code as a separate token
func containsHTTPStatus(msg string, status int) bool {
	code := fmt.Sprint(status)
	for _, field := range strings.FieldsFunc(msg, func(r rune) bool {
		return r == ' ' || r == ':' || r == ';' || r == ',' || r == '(' || r == ')'
	}) {
		if field == code {
			return true
		}
	}
	return false
}
