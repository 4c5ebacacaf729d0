package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/depviz-io/depviz/pkg/cache"
	"github.com/depviz-io/depviz/pkg/errors"
)

func registryDoc() map[string]any {
	return map[string]any{
		"name":      "express",
		"dist-tags": map[string]string{"latest": "4.18.2"},
		"versions": map[string]any{
			"4.18.2": map[string]any{
				"dependencies":    map[string]string{"accepts": "~1.3.8", "body-parser": "1.20.1"},
				"devDependencies": map[string]string{"mocha": "^10.0.0"},
			},
		},
	}
}

func TestClientFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/express" {
			t.Errorf("path = %s, want /express", r.URL.Path)
		}
		json.NewEncoder(w).Encode(registryDoc())
	}))
	defer server.Close()

	c := NewClientWithBaseURL(cache.NewNullCache(), time.Hour, server.URL)

	meta, err := c.Fetch(context.Background(), "express", "latest")
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if meta.Version != "4.18.2" {
		t.Errorf("Version = %s, want 4.18.2", meta.Version)
	}
	if len(meta.Dependencies) != 2 {
		t.Errorf("Dependencies = %d entries, want 2", len(meta.Dependencies))
	}
	if meta.DevDependencies["mocha"] != "^10.0.0" {
		t.Errorf("DevDependencies[mocha] = %q", meta.DevDependencies["mocha"])
	}
}

func TestClientFetchNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	c := NewClientWithBaseURL(cache.NewNullCache(), time.Hour, server.URL)

	_, err := c.Fetch(context.Background(), "no-such-package", "latest")
	if !errors.Is(err, errors.ErrCodePackageNotFound) {
		t.Errorf("error = %v, want PACKAGE_NOT_FOUND", err)
	}
}

func TestClientFetchMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	c := NewClientWithBaseURL(cache.NewNullCache(), time.Hour, server.URL)

	_, err := c.Fetch(context.Background(), "broken", "latest")
	if !errors.Is(err, errors.ErrCodeMalformedMetadata) {
		t.Errorf("error = %v, want MALFORMED_METADATA", err)
	}
}

func TestClientFetchInvalidName(t *testing.T) {
	c := NewClient(cache.NewNullCache(), time.Hour)

	_, err := c.Fetch(context.Background(), "../evil", "latest")
	if !errors.Is(err, errors.ErrCodeInvalidPackage) {
		t.Errorf("error = %v, want INVALID_PACKAGE", err)
	}
}

func TestClientFetchUsesCache(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		json.NewEncoder(w).Encode(registryDoc())
	}))
	defer server.Close()

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	c := NewClientWithBaseURL(fc, time.Hour, server.URL)

	for range 3 {
		if _, err := c.Fetch(context.Background(), "express", "latest"); err != nil {
			t.Fatalf("Fetch() error: %v", err)
		}
	}
	if hits != 1 {
		t.Errorf("registry hit %d times, want 1 (cache)", hits)
	}
}

func TestCheckStatus(t *testing.T) {
	if err := checkStatus(http.StatusOK, "u"); err != nil {
		t.Errorf("status 200 error = %v", err)
	}
	if err := checkStatus(http.StatusNotFound, "u"); !errors.Is(err, errors.ErrCodePackageNotFound) {
		t.Errorf("status 404 error = %v, want PACKAGE_NOT_FOUND", err)
	}
	if err := checkStatus(http.StatusBadGateway, "u"); !cache.IsRetryable(err) {
		t.Errorf("status 502 error = %v, want retryable", err)
	}
	if err := checkStatus(http.StatusForbidden, "u"); !errors.Is(err, errors.ErrCodeRegistryUnavailable) {
		t.Errorf("status 403 error = %v, want REGISTRY_UNAVAILABLE", err)
	}
}
