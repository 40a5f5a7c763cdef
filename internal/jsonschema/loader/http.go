package loader

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// loadHTTP fetches url with the configured client. A declared Content-Length
// over the limit is refused before the body is read.
func (l *Loader) loadHTTP(ctx context.Context, url string) ([]byte, error) {
	if l.http == nil {
		return nil, errors.New("jsonschema loader: http client is not configured")
	}
	if url == "" {
		return nil, errors.New("jsonschema loader: url is required")
	}
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/schema+json, application/json, application/yaml;q=0.9, */*;q=0.5")

	resp, err := l.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("jsonschema loader: %s: unexpected status %s", url, resp.Status)
	}
	if err := l.checkSize(resp.ContentLength, url); err != nil {
		return nil, err
	}
	return l.readLimited(resp.Body, url)
}
