package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/heisync/internal/core/domain"
	"github.com/custodia-labs/heisync/internal/core/ports/driven"
	"github.com/custodia-labs/heisync/internal/core/ports/driving"
	"github.com/custodia-labs/heisync/internal/logger"
)

// Ensure Fetcher implements the interface.
var _ driving.RemoteFetcher = (*Fetcher)(nil)

const (
	// DefaultFetchTimeout is the default HTTP request timeout.
	DefaultFetchTimeout = 30 * time.Second

	// maxDocumentSize caps how much of a response body is read.
	maxDocumentSize = 32 << 20

	acceptHeader = "application/vnd.api+json, application/json"
)

// Fetcher retrieves JSON:API documents with a single GET per call.
// There is no retry and no backoff.
type Fetcher struct {
	client    driven.HTTPDoer
	validator driving.DocumentValidator
	limiter   *rate.Limiter
}

// NewFetcher creates a fetcher. A nil client uses an *http.Client with
// DefaultFetchTimeout.
func NewFetcher(client driven.HTTPDoer, validator driving.DocumentValidator) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}
	return &Fetcher{
		client:    client,
		validator: validator,
		limiter:   rate.NewLimiter(rate.Inf, 1),
	}
}

// SetRateLimit throttles outgoing requests to rps per second.
// Zero or less removes the limit.
func (f *Fetcher) SetRateLimit(rps float64) {
	if rps <= 0 {
		f.limiter.SetLimit(rate.Inf)
		return
	}
	f.limiter.SetLimit(rate.Limit(rps))
}

// Get returns the normalised document at endpoint, or "" on any failure.
func (f *Fetcher) Get(ctx context.Context, endpoint string) string {
	content, err := f.Fetch(ctx, endpoint)
	if err != nil {
		logger.Error("fetch %s: %v", endpoint, err)
		return ""
	}
	return content
}

// Fetch returns the normalised document at endpoint.
// A non-2xx response body is still used as the payload; it only fails if
// it is not a valid document.
func (f *Fetcher) Fetch(ctx context.Context, endpoint string) (string, error) {
	body, err := f.do(ctx, endpoint)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrFetchFailed, err)
	}

	if err := f.validator.Check(body); err != nil {
		return "", err
	}

	// Re-encode to normalise formatting.
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrInvalidDocument, err)
	}
	normalised, err := json.Marshal(decoded)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrInvalidDocument, err)
	}
	return string(normalised), nil
}

func (f *Fetcher) do(ctx context.Context, endpoint string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", acceptHeader)

	logger.Debug("GET %s", endpoint)
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Warn("GET %s: status %d, using response body", endpoint, resp.StatusCode)
	}
	return body, nil
}
