package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/desertthunder/duesync/internal/shared"
	"golang.org/x/oauth2"
)

const maxErrorBody = 512

// APIError is returned for any non-2xx response from a service.
//
// It matches [shared.ErrAPIRequest] with errors.Is, and additionally
// [shared.ErrInvalidCredentials] for 401 and 403 responses.
type APIError struct {
	Service    string
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s API error: %s %s: status %d: %s", strings.ToLower(e.Service), e.Method, e.URL, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s API error: %s %s: status %d", strings.ToLower(e.Service), e.Method, e.URL, e.StatusCode)
}

func (e *APIError) Unwrap() []error {
	errs := []error{shared.ErrAPIRequest}
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		errs = append(errs, shared.ErrInvalidCredentials)
	case http.StatusNotFound:
		errs = append(errs, shared.ErrTaskNotFound)
	}
	return errs
}

// IsUnauthorized reports whether err is an [APIError] for a rejected API key.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden)
}

// NewBearerClient returns an [http.Client] that sends apiKey as a bearer token on every request.
//
// The token source is static; API keys are never refreshed.
func NewBearerClient(ctx context.Context, apiKey string, timeout time.Duration) *http.Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: apiKey, TokenType: "Bearer"})
	client := oauth2.NewClient(ctx, src)
	client.Timeout = timeout
	return client
}

// doRequest sends body (if any) as JSON and decodes the response into result (if any).
//
// The response headers are returned so callers can follow pagination links.
func doRequest(ctx context.Context, client *http.Client, service, method, url string, headers map[string]string, body, result any) (http.Header, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s request failed: %v", shared.ErrAPIRequest, strings.ToLower(service), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{
			Service:    service,
			Method:     method,
			URL:        url,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return resp.Header, nil
}
