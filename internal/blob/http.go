package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// HTTPStore talks to a remote blob service over plain HTTP:
// PUT/GET/HEAD {baseURL}/{name}. A 404 from GET or HEAD maps to ErrNotFound.
type HTTPStore struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

var _ Store = (*HTTPStore)(nil)

// NewHTTPStore creates a client for the blob service at baseURL. token, if
// non-empty, is sent as a bearer token on every request.
func NewHTTPStore(baseURL, token string) *HTTPStore {
	return &HTTPStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (s *HTTPStore) newRequest(ctx context.Context, method, name string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+"/"+name, body)
	if err != nil {
		return nil, fmt.Errorf("creating %s request: %w", method, err)
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	return req, nil
}

// Put uploads content under name, overwriting any previous blob.
func (s *HTTPStore) Put(ctx context.Context, name string, content []byte) error {
	req, err := s.newRequest(ctx, http.MethodPut, name, bytes.NewReader(content))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("putting blob %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("put %s failed (status %d): %s", name, resp.StatusCode, body)
	}
	return nil
}

// Get fetches the blob content by name.
func (s *HTTPStore) Get(ctx context.Context, name string) ([]byte, error) {
	req, err := s.newRequest(ctx, http.MethodGet, name, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("getting blob %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("get %s failed (status %d): %s", name, resp.StatusCode, body)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading blob %s: %w", name, err)
	}
	return content, nil
}

// Head checks for the blob's existence and returns its metadata.
func (s *HTTPStore) Head(ctx context.Context, name string) (*Metadata, error) {
	req, err := s.newRequest(ctx, http.MethodHead, name, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("heading blob %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("head %s failed (status %d)", name, resp.StatusCode)
	}

	meta := &Metadata{Name: name}
	if cl := resp.Header.Get("Content-Length"); cl != "" {
		if size, err := strconv.ParseInt(cl, 10, 64); err == nil {
			meta.Size = size
		}
	}
	if lm := resp.Header.Get("Last-Modified"); lm != "" {
		if t, err := http.ParseTime(lm); err == nil {
			meta.UpdatedAt = t
		}
	}
	return meta, nil
}
