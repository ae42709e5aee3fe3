package notification

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

// ZeptoClient talks to a ZeptoMail-compatible transactional email API.
type ZeptoClient struct {
	url        string
	token      string
	from       string
	fromName   string
	httpClient *http.Client
}

func NewZeptoClient(url, token, from, fromName string) *ZeptoClient {
	return &ZeptoClient{
		url:      url,
		token:    token,
		from:     from,
		fromName: fromName,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type Attachment struct {
	Name     string `json:"name"`
	Content  string `json:"content"` // base64
	MimeType string `json:"mime_type"`
}

type sendRequest struct {
	From struct {
		Address string `json:"address"`
		Name    string `json:"name,omitempty"`
	} `json:"from"`
	To []struct {
		EmailAddress struct {
			Address string `json:"address"`
		} `json:"email_address"`
	} `json:"to"`
	Subject     string       `json:"subject"`
	HTMLBody    string       `json:"htmlbody"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

func (c *ZeptoClient) Send(ctx context.Context, to, subject, html string, attachments []Attachment) error {
	if to == "" || subject == "" || html == "" {
		return fmt.Errorf("email: mandatory field missing")
	}
	if c.token == "" || c.from == "" {
		return fmt.Errorf("email: credentials are not configured")
	}

	var req sendRequest
	req.From.Address = c.from
	req.From.Name = c.fromName
	req.To = make([]struct {
		EmailAddress struct {
			Address string `json:"address"`
		} `json:"email_address"`
	}, 1)
	req.To[0].EmailAddress.Address = to
	req.Subject = subject
	req.HTMLBody = html
	req.Attachments = attachments

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Zoho-enczapikey "+c.token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("send email: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return nil
}
