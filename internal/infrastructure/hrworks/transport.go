package hrworks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/badgeclock/rfid-terminal/internal/core/domain"
)

// maxBodySize caps how much of a response body is kept for diagnostics.
const maxBodySize = 64 << 10

// Response is a raw HR platform answer. Non-2xx statuses are not errors at
// this level; callers classify them.
type Response struct {
	StatusCode int
	Body       []byte
}

// Success reports a 2xx status.
func (r *Response) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Transport handles low-level HTTP to the HR platform.
type Transport struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewTransport creates a transport rooted at baseURL. A nil client selects a
// fresh http.Client; request deadlines come from the caller's context.
func NewTransport(baseURL string, client *http.Client) *Transport {
	if client == nil {
		client = &http.Client{}
	}
	return &Transport{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: client,
	}
}

// buildURL joins path to the base URL and encodes query.
func (t *Transport) buildURL(path string, query map[string]string) (string, error) {
	u, err := url.Parse(t.BaseURL + path)
	if err != nil {
		return "", fmt.Errorf("build url %s: %w", path, err)
	}
	if len(query) > 0 {
		q := u.Query()
		for k, v := range query {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// Do sends one request. data, when non-nil, is sent as JSON; token, when
// non-empty, as bearer credential. Network failures are returned wrapped in
// domain.ErrTimeout or domain.ErrRemoteUnreachable.
func (t *Transport) Do(ctx context.Context, method, path string, query map[string]string, data any, token string) (*Response, error) {
	fullURL, err := t.buildURL(path, query)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		return nil, classify(method, path, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, classify(method, path, err)
	}
	return &Response{StatusCode: resp.StatusCode, Body: b}, nil
}

func classify(method, path string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%s %s: %w: %v", method, path, domain.ErrTimeout, err)
	}
	return fmt.Errorf("%s %s: %w: %v", method, path, domain.ErrRemoteUnreachable, err)
}
