// Package remote fetches catalog snapshots from the storefront REST API.
// One Fetch is one GET; retries are the caller's business.
package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kailas-cloud/catalogsearch/internal/domain"
	"github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
	"github.com/kailas-cloud/catalogsearch/internal/source"
)

// Defaults.
const (
	DefaultTimeout = 10 * time.Second
	// MaxBodyBytes bounds the catalog response size.
	MaxBodyBytes = 32 << 20
	moviesPath   = "/movies"
)

// Source fetches GET <baseURL>/movies.
type Source struct {
	url     string
	client  *http.Client
	timeout time.Duration
	now     func() time.Time
}

// Option configures a Source.
type Option func(*Source)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Source) { s.client = c }
}

// WithTimeout bounds a single fetch.
func WithTimeout(d time.Duration) Option {
	return func(s *Source) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New creates a remote source for baseURL.
func New(baseURL string, opts ...Option) (*Source, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("%w: remote catalog url is required", domain.ErrInvalidArgument)
	}
	s := &Source{
		url:     baseURL + moviesPath,
		client:  http.DefaultClient,
		timeout: DefaultTimeout,
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// URL returns the endpoint being fetched.
func (s *Source) URL() string { return s.url }

// Fetch performs a single GET and parses the JSON body.
func (s *Source) Fetch(ctx context.Context) (catalog.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, http.NoBody)
	if err != nil {
		return catalog.Snapshot{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return catalog.Snapshot{}, fmt.Errorf("%w: GET %s: %w", domain.ErrSourceUnavailable, s.url, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return catalog.Snapshot{}, fmt.Errorf("%w: GET %s: status %d", domain.ErrSourceUnavailable, s.url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes+1))
	if err != nil {
		return catalog.Snapshot{}, fmt.Errorf("%w: read body: %w", domain.ErrSourceUnavailable, err)
	}
	if len(data) > MaxBodyBytes {
		return catalog.Snapshot{}, fmt.Errorf("%w: catalog response exceeds %d bytes", domain.ErrInvalidSnapshot, MaxBodyBytes)
	}

	snap, err := source.Parse(data, source.FormatJSON, s.now())
	if err != nil {
		return catalog.Snapshot{}, fmt.Errorf("parse %s: %w", s.url, err)
	}
	return snap, nil
}
