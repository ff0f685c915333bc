package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"time"
)

const defaultResendURL = "https://api.resend.com/emails"

// ResendMailer delivers transactional email through the Resend HTTP API.
type ResendMailer struct {
	APIKey   string
	From     string
	Endpoint string
	client   *http.Client
}

type resendEmail struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text"`
}

func NewResendMailer(apiKey, from string) *ResendMailer {
	return &ResendMailer{
		APIKey:   apiKey,
		From:     from,
		Endpoint: defaultResendURL,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// SendMagicLink emails a sign-in link to address.
func (m *ResendMailer) SendMagicLink(ctx context.Context, address, link string) error {
	escaped := html.EscapeString(link)
	body, err := json.Marshal(resendEmail{
		From:    m.From,
		To:      []string{address},
		Subject: "Sign in to Reelshelf",
		HTML: `<p>Click the link below to sign in. The link can be used once and expires in 24 hours.</p>` +
			`<p><a href="` + escaped + `">Sign in</a></p>`,
		Text: "Sign in to Reelshelf:\n" + link + "\n",
	})
	if err != nil {
		return fmt.Errorf("failed to encode email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("email request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("email provider returned status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}
