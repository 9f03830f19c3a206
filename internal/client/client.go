// Package client queries a remote eix server.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/wiredhikari/eix/internal/models"
	"github.com/wiredhikari/eix/internal/output"
	"github.com/wiredhikari/eix/internal/query"
)

const (
	// URLEnvVar is the environment variable for server URL
	URLEnvVar = "EIX_SERVER_URL"

	// TokenEnvVar is the environment variable for the "user:password" credentials
	TokenEnvVar = "EIX_SERVER_TOKEN"
)

// ResolveURL resolves the server URL using precedence:
// 1. flagURL (--server flag)
// 2. Environment variable (EIX_SERVER_URL)
// Returns "" when neither is set, meaning the local index is used.
func ResolveURL(flagURL string) string {
	if flagURL != "" {
		return NormalizeURL(flagURL)
	}
	return NormalizeURL(os.Getenv(URLEnvVar))
}

// ResolveToken resolves the credentials: --server-token flag, then EIX_SERVER_TOKEN
func ResolveToken(flagToken string) string {
	if flagToken != "" {
		return flagToken
	}
	return os.Getenv(TokenEnvVar)
}

// NormalizeURL removes trailing slashes from URLs
func NormalizeURL(u string) string {
	return strings.TrimRight(u, "/")
}

// APIError is an error response of the server
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("server returned %d", e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsNotFound reports whether err is a 404 from the server
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsBadRequest reports whether the server rejected the request parameters
func IsBadRequest(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest
}

// Client wraps HTTP client for query API calls
type Client struct {
	BaseURL    string
	Token      string // "user:password" for basic auth, empty for none
	HTTPClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: NormalizeURL(baseURL),
		Token:   token,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// get executes a GET request and decodes a 200 response into out
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	u := c.BaseURL + "/api/v1" + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	if c.Token != "" {
		user, pass, _ := strings.Cut(c.Token, ":")
		req.SetBasicAuth(user, pass)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", c.BaseURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var e struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(body, &e) == nil {
			apiErr.Code = e.Error.Code
			apiErr.Message = e.Error.Message
		}
		return apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// CriteriaValues encodes c as the query parameters of GET /packages
func CriteriaValues(c query.Criteria) url.Values {
	v := url.Values{}
	if c.Pattern != "" {
		v.Set("q", c.Pattern)
	}
	if len(c.Fields) > 0 {
		v.Set("field", strings.Join(c.Fields, ","))
	}
	if c.Category != "" {
		v.Set("category", c.Category)
	}
	if c.Duplicates != nil {
		v.Set("dup", c.Duplicates.String())
	}
	if c.Overlay != nil {
		v.Set("overlay", strconv.FormatUint(uint64(*c.Overlay), 10))
	}
	if c.SlotsMany {
		v.Set("slots", "many")
	}
	if c.SystemOnly {
		v.Set("system", "true")
	}
	if c.StableOnly {
		v.Set("stable", "true")
	}
	return v
}

// Search runs a query on the server
func (c *Client) Search(ctx context.Context, criteria query.Criteria) ([]output.Summary, error) {
	var resp struct {
		Count    int              `json:"count"`
		Packages []output.Summary `json:"packages"`
	}
	if err := c.get(ctx, "/packages", CriteriaValues(criteria), &resp); err != nil {
		return nil, err
	}
	return resp.Packages, nil
}

// Package fetches one package and rebuilds it locally
func (c *Client) Package(ctx context.Context, category, name string) (*models.Package, error) {
	var record models.PackageRecord
	if err := c.get(ctx, packagePath(category, name), nil, &record); err != nil {
		return nil, err
	}
	p, err := record.ToPackage()
	if err != nil {
		return nil, fmt.Errorf("server sent an invalid package: %w", err)
	}
	return p, nil
}

// Best fetches the best visible version of a package
func (c *Client) Best(ctx context.Context, category, name string) (*models.Version, error) {
	var resp struct {
		Package string               `json:"package"`
		Version models.VersionRecord `json:"version"`
	}
	if err := c.get(ctx, packagePath(category, name)+"/best", nil, &resp); err != nil {
		return nil, err
	}
	v, err := resp.Version.ToVersion()
	if err != nil {
		return nil, fmt.Errorf("server sent an invalid version: %w", err)
	}
	return v, nil
}

func packagePath(category, name string) string {
	return "/packages/" + url.PathEscape(category) + "/" + url.PathEscape(name)
}
