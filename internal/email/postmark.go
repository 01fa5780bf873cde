package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
)

const defaultAPIURL = "https://api.postmarkapp.com/email"

// ErrNotConfigured is returned when no Postmark server token is set.
var ErrNotConfigured = errors.New("email client not configured: missing server token")

type Client struct {
	serverToken string
	fromEmail   string
	baseURL     string
	apiURL      string
	httpClient  *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithAPIURL points the client at another Postmark-compatible endpoint.
func WithAPIURL(u string) Option {
	return func(cl *Client) {
		cl.apiURL = u
	}
}

func NewClient(serverToken, fromEmail, baseURL string, opts ...Option) *Client {
	c := &Client{
		serverToken: serverToken,
		fromEmail:   fromEmail,
		baseURL:     baseURL,
		apiURL:      defaultAPIURL,
		httpClient:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured returns true if the server token is set.
func (c *Client) Configured() bool {
	return c.serverToken != ""
}

type postmarkEmail struct {
	From     string `json:"From"`
	To       string `json:"To"`
	Subject  string `json:"Subject"`
	HtmlBody string `json:"HtmlBody"`
	TextBody string `json:"TextBody"`
	Tag      string `json:"Tag,omitempty"`
}

// Invitation is the content of an invitation notice.
type Invitation struct {
	To            string
	HouseholdName string
	InviterName   string
}

// SendInvitation tells the invitee they have a pending invitation and where
// to answer it.
func (c *Client) SendInvitation(ctx context.Context, inv Invitation) error {
	link := c.baseURL + "/invitations"
	subject := fmt.Sprintf("%s invited you to join %s", inv.InviterName, inv.HouseholdName)
	textBody := fmt.Sprintf(
		"%s has invited you to join the household %q on Homestead.\n\nAccept or decline the invitation here:\n\n%s\n",
		inv.InviterName, inv.HouseholdName, link,
	)
	htmlBody := fmt.Sprintf(
		`<p>%s has invited you to join the household <strong>%s</strong> on Homestead.</p><p><a href="%s">Accept or decline the invitation</a></p>`,
		html.EscapeString(inv.InviterName), html.EscapeString(inv.HouseholdName), html.EscapeString(link),
	)

	return c.send(ctx, postmarkEmail{
		From:     c.fromEmail,
		To:       inv.To,
		Subject:  subject,
		HtmlBody: htmlBody,
		TextBody: textBody,
		Tag:      "invitation",
	})
}

func (c *Client) send(ctx context.Context, payload postmarkEmail) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Postmark-Server-Token", c.serverToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("postmark API error: status %d", resp.StatusCode)
	}

	return nil
}
