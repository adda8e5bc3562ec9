package uploads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SupabaseStore keeps images in a public Supabase storage bucket.
type SupabaseStore struct {
	BaseURL   string
	SecretKey string
	Bucket    string
	Client    *http.Client
}

func (s *SupabaseStore) client() *http.Client {
	if s.Client == nil {
		s.Client = &http.Client{Timeout: 30 * time.Second}
	}
	return s.Client
}

func (s *SupabaseStore) do(req *http.Request) ([]byte, error) {
	// Match @supabase/supabase-js: both apikey and Authorization Bearer (same key)
	req.Header.Set("apikey", s.SecretKey)
	req.Header.Set("Authorization", "Bearer "+s.SecretKey)
	resp, err := s.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("supabase request: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyStr := string(body)
		if resp.StatusCode == 400 || resp.StatusCode == 403 {
			if strings.Contains(bodyStr, "Invalid Compact JWS") || strings.Contains(bodyStr, "Unauthorized") {
				return nil, fmt.Errorf("supabase storage requires the service_role key, not the anon key (raw body: %s)", bodyStr)
			}
		}
		return nil, fmt.Errorf("supabase error: status %d body: %s", resp.StatusCode, bodyStr)
	}
	return body, nil
}

func (s *SupabaseStore) base() (string, error) {
	if s.BaseURL == "" {
		return "", fmt.Errorf("supabase: SUPABASE_URL is not set")
	}
	if s.SecretKey == "" {
		return "", fmt.Errorf("supabase: SUPABASE_SERVICE_ROLE_KEY is not set")
	}
	return strings.TrimRight(s.BaseURL, "/"), nil
}

// Upload stores the object under a random name and returns its public url.
func (s *SupabaseStore) Upload(ctx context.Context, name, contentType string, data []byte) (StoredImage, error) {
	base, err := s.base()
	if err != nil {
		return StoredImage{}, err
	}
	objectPath := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString(), strings.ToLower(path.Ext(name)))
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", base, s.Bucket, objectPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return StoredImage{}, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "false")
	if _, err := s.do(req); err != nil {
		return StoredImage{}, err
	}
	return StoredImage{
		URL:      fmt.Sprintf("%s/storage/v1/object/public/%s/%s", base, s.Bucket, objectPath),
		PublicID: objectPath,
	}, nil
}

// Delete removes the object from the bucket.
func (s *SupabaseStore) Delete(ctx context.Context, publicID string) error {
	base, err := s.base()
	if err != nil {
		return err
	}
	body, _ := json.Marshal(map[string]interface{}{"prefixes": []string{publicID}})
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s", base, s.Bucket)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	_, err = s.do(req)
	return err
}
