package kvstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var _ Store = (*RESTStore)(nil)

// RESTStore talks to an Upstash-style key-value REST service:
// GET /get/{key} returns {"result": <value|null>} or 404 when absent,
// POST /set/{key} with {"value": "<string>"} overwrites the key.
type RESTStore struct {
	baseURL    string
	token      string
	userAgent  string
	httpClient *http.Client
}

type getEnvelope struct {
	Result any `json:"result"`
}

type setRequest struct {
	Value string `json:"value"`
}

func NewRESTStore(baseURL, token, userAgent string) *RESTStore {
	return &RESTStore{
		baseURL:   strings.TrimRight(baseURL, "/"),
		token:     token,
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (s *RESTStore) Get(ctx context.Context, key string) (any, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.baseURL+"/get/"+EncodeKey(key), nil)
	if err != nil {
		return nil, false, err
	}
	s.setHeaders(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("unexpected status %d for key %s", resp.StatusCode, key)
	}

	var envelope getEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, false, fmt.Errorf("malformed response for key %s: %w", key, err)
	}

	if envelope.Result == nil {
		return nil, false, nil
	}

	return envelope.Result, true, nil
}

func (s *RESTStore) Set(ctx context.Context, key string, value string) error {
	payload, err := json.Marshal(setRequest{Value: value})
	if err != nil {
		return fmt.Errorf("failed to marshal value for key %s: %w", key, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/set/"+EncodeKey(key), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	s.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d setting key %s", resp.StatusCode, key)
	}

	return nil
}

// Ping probes the store with a read. Both 200 and 404 mean the service is
// reachable and authorized.
func (s *RESTStore) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.baseURL+"/get/"+EncodeKey("health-probe"), nil)
	if err != nil {
		return err
	}
	s.setHeaders(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return nil
}

func (s *RESTStore) Enabled() bool {
	return true
}

func (s *RESTStore) Name() string {
	return "rest"
}

func (s *RESTStore) Close() error {
	s.httpClient.CloseIdleConnections()
	return nil
}

func (s *RESTStore) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+s.token)
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}
}
