package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/depviz-io/depviz/pkg/cache"
	"github.com/depviz-io/depviz/pkg/errors"
)

const (
	defaultBaseURL = "https://registry.npmjs.org"
	httpTimeout    = 10 * time.Second
	userAgent      = "depviz/1.0"
)

// Client fetches package metadata from the live npm registry.
// Responses are cached by package name; retries with exponential backoff
// are applied to transient failures (5xx, network errors).
type Client struct {
	http    *http.Client
	cache   cache.Cache
	ttl     time.Duration
	baseURL string
}

// NewClient creates a registry client backed by the given cache.
// Pass cache.NewNullCache() to disable caching.
func NewClient(c cache.Cache, ttl time.Duration) *Client {
	return &Client{
		http:    &http.Client{Timeout: httpTimeout},
		cache:   c,
		ttl:     ttl,
		baseURL: defaultBaseURL,
	}
}

// NewClientWithBaseURL creates a client against a non-default registry URL.
// Used for registry mirrors and in tests.
func NewClientWithBaseURL(c cache.Cache, ttl time.Duration, baseURL string) *Client {
	client := NewClient(c, ttl)
	client.baseURL = strings.TrimSuffix(baseURL, "/")
	return client
}

// Name returns the source identifier.
func (c *Client) Name() string { return "npm" }

// Fetch retrieves pkg's registry document and resolves selector against it.
func (c *Client) Fetch(ctx context.Context, pkg, selector string) (*VersionMetadata, error) {
	pkg = strings.ToLower(strings.TrimSpace(pkg))
	if err := errors.ValidateNpmPackageName(pkg); err != nil {
		return nil, err
	}

	body, err := c.document(ctx, pkg)
	if err != nil {
		return nil, err
	}

	var doc packageDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedMetadata, err, "package %s: invalid registry response", pkg)
	}
	return resolveVersion(pkg, &doc, selector)
}

// document returns the raw registry document for pkg, from cache when fresh.
func (c *Client) document(ctx context.Context, pkg string) ([]byte, error) {
	key := "npm:" + pkg
	if data, ok, _ := c.cache.Get(ctx, key); ok {
		return data, nil
	}

	var body []byte
	err := cache.RetryWithBackoff(ctx, func() error {
		var fetchErr error
		body, fetchErr = c.get(ctx, c.baseURL+"/"+pkg)
		return fetchErr
	})
	if err != nil {
		if cache.IsRetryable(err) {
			return nil, errors.Wrap(errors.ErrCodeRegistryUnavailable, err, "package %s: registry unreachable", pkg)
		}
		return nil, err
	}

	_ = c.cache.Set(ctx, key, body, c.ttl)
	return body, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// Transport errors (including timeouts) are retryable.
		return nil, cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode, url); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

func checkStatus(code int, url string) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodePackageNotFound, "package not found: %s", url)
	case code >= 500:
		return cache.Retryable(fmt.Errorf("%w: status %d", cache.ErrNetwork, code))
	default:
		return errors.New(errors.ErrCodeRegistryUnavailable, "unexpected status %d from %s", code, url)
	}
}
