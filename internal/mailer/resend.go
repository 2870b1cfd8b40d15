package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const resendEndpoint = "https://api.resend.com/emails"

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text,omitempty"`
}

// ResendTransport posts to the Resend HTTP API.
type ResendTransport struct {
	apiKey   string
	from     string
	endpoint string
	client   *http.Client
}

func NewResendTransport(apiKey, from string, client *http.Client) *ResendTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &ResendTransport{apiKey: apiKey, from: from, endpoint: resendEndpoint, client: client}
}

// WithEndpoint points the transport at another URL.
func (t *ResendTransport) WithEndpoint(endpoint string) *ResendTransport {
	t.endpoint = endpoint
	return t
}

func (t *ResendTransport) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(resendRequest{
		From:    t.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("resend API error: status %d", resp.StatusCode)
	}
	return nil
}
