package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// HTTPSource fetches package records from an upstream catalog API.
type HTTPSource struct {
	name       string
	baseURL    string
	httpClient *http.Client
}

// NewHTTPSource creates a new HTTPSource.
func NewHTTPSource(name, baseURL string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		name:    name,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name returns the source name.
func (s *HTTPSource) Name() string {
	return s.name
}

// Package fetches one package by ID from the upstream catalog.
func (s *HTTPSource) Package(ctx context.Context, id string) (*Package, error) {
	endpoint, err := url.JoinPath(s.baseURL, "api", "packages", id)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	var pkg Package
	if err := s.getJSON(ctx, endpoint, &pkg); err != nil {
		return nil, err
	}
	return &pkg, nil
}

// List fetches the full catalog from the upstream.
func (s *HTTPSource) List(ctx context.Context) ([]Package, error) {
	endpoint, err := url.JoinPath(s.baseURL, "api", "packages")
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	var packages []Package
	if err := s.getJSON(ctx, endpoint, &packages); err != nil {
		return nil, err
	}
	return packages, nil
}

func (s *HTTPSource) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCatalogUnavailable, s.name, err)
	}
	defer func() {
		_ = resp.Body.Close() // Explicitly ignore close error
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrPackageNotFound
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: %s returned status %d: %s", ErrCatalogUnavailable, s.name, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse catalog response: %w", err)
	}
	return nil
}
