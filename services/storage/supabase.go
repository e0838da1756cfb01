package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// SupabaseStore talks to Supabase Storage over its REST API using the
// service role key.
type SupabaseStore struct {
	baseURL    string
	serviceKey string
	bucket     string
	client     *http.Client
}

func NewSupabaseStore(baseURL, serviceKey, bucket string, client *http.Client) (*SupabaseStore, error) {
	if baseURL == "" || serviceKey == "" {
		return nil, errors.New("supabase storage needs a project URL and a service role key")
	}
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}
	return &SupabaseStore{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		bucket:     bucket,
		client:     client,
	}, nil
}

func (s *SupabaseStore) objectPath(key string) string {
	return url.PathEscape(s.bucket) + "/" + escapeKey(key)
}

func (s *SupabaseStore) Put(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s", s.baseURL, s.objectPath(key))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, r)
	if err != nil {
		return "", errors.Wrap(err, "create storage request")
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("apikey", s.serviceKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "false")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "send storage request")
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", errors.Errorf("storage returned status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return s.PublicURL(key), nil
}

func (s *SupabaseStore) PublicURL(key string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s", s.baseURL, s.objectPath(key))
}

// escapeKey escapes each path segment but keeps the separators.
func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
