package emails

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const brevoAPI = "https://api.brevo.com/v3/smtp/email"

// BrevoSendRequest matches Brevo API v3 send transactional email body.
type BrevoSendRequest struct {
	Sender      BrevoSender   `json:"sender"`
	To          []BrevoTo     `json:"to"`
	Subject     string        `json:"subject"`
	HTMLContent string        `json:"htmlContent"`
	ReplyTo     *BrevoReplyTo `json:"replyTo,omitempty"`
}

type BrevoSender struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type BrevoTo struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type BrevoReplyTo struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Sender sends transactional emails. A nil Sender means email is disabled.
type Sender interface {
	SendWelcome(ctx context.Context, toEmail, firstName string) error
	SendListingDecision(ctx context.Context, toEmail, firstName, title string, approved bool) error
}

// BrevoClient sends emails via the Brevo (Sendinblue) API.
type BrevoClient struct {
	APIKey   string
	MailFrom string
	SiteURL  string
	BaseURL  string // defaults to the Brevo API; overridden in tests
	Client   *http.Client
}

func (c *BrevoClient) from() string {
	if c.MailFrom != "" {
		return c.MailFrom
	}
	return "noreply@homelinks.in"
}

func (c *BrevoClient) site() string {
	if c.SiteURL != "" {
		return c.SiteURL
	}
	return "https://homelinks.in"
}

// send sends one email via Brevo API. Without an API key it does nothing.
func (c *BrevoClient) send(ctx context.Context, toEmail, subject, html string) error {
	if c.APIKey == "" {
		return nil
	}
	body := BrevoSendRequest{
		Sender:      BrevoSender{Email: c.from(), Name: siteName},
		To:          []BrevoTo{{Email: toEmail}},
		Subject:     subject,
		HTMLContent: html,
		ReplyTo:     &BrevoReplyTo{Email: supportEmail, Name: siteName + " Support"},
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return err
	}
	url := c.BaseURL
	if url == "" {
		url = brevoAPI
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.Client == nil {
		c.Client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("brevo send failed: status %d: %s", resp.StatusCode, msg)
	}
	return nil
}

// SendWelcome is sent after a local signup.
func (c *BrevoClient) SendWelcome(ctx context.Context, toEmail, firstName string) error {
	return c.send(ctx, toEmail, "Welcome to "+siteName+"!", Layout(welcomeContent(firstName, c.site())))
}

// SendListingDecision tells the owner whether their listing was approved or disapproved.
func (c *BrevoClient) SendListingDecision(ctx context.Context, toEmail, firstName, title string, approved bool) error {
	subject := "Your property listing was not approved"
	if approved {
		subject = "Your property listing is live"
	}
	return c.send(ctx, toEmail, subject, Layout(decisionContent(firstName, title, approved, c.site())))
}
