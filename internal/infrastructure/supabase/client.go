package supabase

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

	"github.com/google/uuid"
)

// ErrUnauthorized is returned when the auth server rejects the presented token.
var ErrUnauthorized = errors.New("supabase: unauthorized")

// ErrNotFound is returned when the auth server has no such user.
var ErrNotFound = errors.New("supabase: user not found")

// Client talks to the Supabase auth (GoTrue) HTTP API.
type Client struct {
	BaseURL    string
	ServiceKey string
	HTTP       *http.Client
}

// User is the subset of the GoTrue user object the service reads.
type User struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	BannedUntil *time.Time `json:"banned_until"`
	CreatedAt   time.Time  `json:"created_at"`
}

// APIError carries a non-2xx response from Supabase.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("supabase error: status %d body: %s", e.Status, e.Body)
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP == nil {
		c.HTTP = &http.Client{Timeout: 10 * time.Second}
	}
	return c.HTTP
}

func (c *Client) do(ctx context.Context, method, path, bearer string, body interface{}, out interface{}) error {
	if c.BaseURL == "" {
		return fmt.Errorf("supabase: SUPABASE_URL is not set")
	}
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}
	url := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	// Match @supabase/supabase-js: apikey header plus bearer.
	req.Header.Set("apikey", c.ServiceKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("supabase request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, string(respBody))
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return &APIError{Status: resp.StatusCode, Body: string(respBody)}
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("supabase response decode: %w", err)
	}
	return nil
}

// GetUser resolves an end-user access token (GET /auth/v1/user).
func (c *Client) GetUser(ctx context.Context, accessToken string) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/auth/v1/user", accessToken, nil, &u); err != nil {
		return nil, err
	}
	if u.ID == "" {
		return nil, ErrUnauthorized
	}
	return &u, nil
}

// DeleteUser removes a user from the auth platform. An unknown id yields ErrNotFound.
func (c *Client) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/auth/v1/admin/users/"+id.String(), c.ServiceKey, nil, nil)
}

// SetBannedUntil sets or clears (nil) the platform ban marker of a user.
func (c *Client) SetBannedUntil(ctx context.Context, id uuid.UUID, until *time.Time) error {
	body := map[string]interface{}{"ban_duration": "none"}
	if until != nil {
		d := time.Until(*until).Truncate(time.Hour)
		if d <= 0 {
			d = time.Hour
		}
		body["ban_duration"] = fmt.Sprintf("%dh", int64(d.Hours()))
	}
	return c.do(ctx, http.MethodPut, "/auth/v1/admin/users/"+id.String(), c.ServiceKey, body, nil)
}
