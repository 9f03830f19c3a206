// Package cache reads the per-version metadata cache files written by the package manager.
package cache

import (
	"errors"
	"fmt"
)

// ErrCacheIO is returned when a cache file is missing, unreadable or too short
var ErrCacheIO = errors.New("cache file unreadable")

// Cache operations for error context
const (
	OpSlotKeywords = "read slot and keywords"
	OpMetadata     = "read metadata"
)

// Error wraps a cache read failure with the operation and path
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches ErrCacheIO
func (e *Error) Is(target error) bool {
	return target == ErrCacheIO
}

// MetadataSink receives the descriptive fields of one version
type MetadataSink interface {
	SetHomepage(string)
	SetLicense(string)
	SetDescription(string)
	SetProvide(string)
}

// Reader extracts fields from one cache layout
type Reader interface {
	ReadSlotAndKeywords(path string) (slot, keywords string, err error)
	ReadMetadata(path string, sink MetadataSink) error
}

// Supported cache methods
const (
	MethodFlat    = "flat"
	MethodMD5Dict = "md5-dict"
)

// Methods lists the names accepted by NewReader
var Methods = []string{MethodFlat, MethodMD5Dict}

// NewReader returns the Reader for a cache method name
func NewReader(method string) (Reader, error) {
	switch method {
	case MethodFlat:
		return FlatReader{}, nil
	case MethodMD5Dict:
		return MD5DictReader{}, nil
	default:
		return nil, fmt.Errorf("unsupported cache method %q; supported methods: %v", method, Methods)
	}
}
