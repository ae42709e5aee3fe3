// Package instamojo wraps the payment provider's HTTP API: payment-request
// creation, server-side payment verification and webhook authentication.
package instamojo

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// StatusPaid is the provider's sentinel for a captured payment.
const StatusPaid = "Credit"

// GatewayError carries the upstream response so callers can attach it to
// diagnostics. Any network failure or non-2xx answer becomes a GatewayError.
type GatewayError struct {
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("gateway error: status=%d %s", e.StatusCode, e.Message)
	}
	return "gateway error: " + e.Message
}

type Buyer struct {
	Name  string
	Email string
	Phone string
}

// Session is a provider-side payment request: the id we store on the record
// and the hosted page the participant is redirected to.
type Session struct {
	ID      string
	LongURL string
}

// VerifiedPayment is the provider's answer to a server-side verify call.
// PaymentRequestID is extracted from the payment_request resource URL.
type VerifiedPayment struct {
	Status           string
	PaymentRequestID string
}

type Client struct {
	baseURL    string
	apiKey     string
	authToken  string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey, authToken string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		authToken: authToken,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type createRequest struct {
	Purpose     string `json:"purpose"`
	Amount      string `json:"amount"`
	BuyerName   string `json:"buyer_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	RedirectURL string `json:"redirect_url"`
	Webhook     string `json:"webhook,omitempty"`
}

type createResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	PaymentRequest struct {
		ID      string `json:"id"`
		LongURL string `json:"longurl"`
	} `json:"payment_request"`
}

// CreateSession creates a payment request and returns the hosted page URL.
func (c *Client) CreateSession(ctx context.Context, purpose, amount string, buyer Buyer, redirectURL, webhookURL string) (*Session, error) {
	if c.apiKey == "" || c.authToken == "" {
		return nil, &GatewayError{Message: "gateway credentials are not configured"}
	}

	body, err := json.Marshal(createRequest{
		Purpose:     purpose,
		Amount:      amount,
		BuyerName:   buyer.Name,
		Email:       buyer.Email,
		Phone:       buyer.Phone,
		RedirectURL: redirectURL,
		Webhook:     webhookURL,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal payment request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payment-requests/", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &GatewayError{Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &GatewayError{StatusCode: resp.StatusCode, Message: string(raw)}
	}

	var out createResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &GatewayError{StatusCode: resp.StatusCode, Message: "decode response: " + err.Error()}
	}
	if !out.Success {
		return nil, &GatewayError{StatusCode: resp.StatusCode, Message: out.Message}
	}

	return &Session{ID: out.PaymentRequest.ID, LongURL: out.PaymentRequest.LongURL}, nil
}

type verifyResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Payment struct {
		Status         string `json:"status"`
		PaymentRequest string `json:"payment_request"`
	} `json:"payment"`
}

// VerifyPayment fetches a payment by id from the provider. Callers must check
// both the status sentinel and that PaymentRequestID matches the session
// stored on the record, to reject cross-record replays.
func (c *Client) VerifyPayment(ctx context.Context, paymentID string) (*VerifiedPayment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/payments/"+paymentID+"/", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &GatewayError{Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, &GatewayError{StatusCode: resp.StatusCode, Message: string(raw)}
	}

	var out verifyResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &GatewayError{StatusCode: resp.StatusCode, Message: "decode response: " + err.Error()}
	}
	if !out.Success {
		return nil, &GatewayError{StatusCode: resp.StatusCode, Message: out.Message}
	}

	return &VerifiedPayment{
		Status:           out.Payment.Status,
		PaymentRequestID: ExtractID(out.Payment.PaymentRequest),
	}, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("X-Auth-Token", c.authToken)
}

// VerifySignature authenticates a webhook delivery: HMAC-SHA256 over the raw
// payload under the shared secret, compared in constant time. This must pass
// before anything in the payload is trusted.
func VerifySignature(rawBody []byte, signature, secret string) bool {
	if secret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(signature))))
}

// ExtractID pulls the trailing id segment out of a provider resource URL
// ("https://host/api/1.1/payment-requests/abc123/" -> "abc123").
func ExtractID(val string) string {
	if val == "" {
		return ""
	}
	val = strings.TrimRight(val, "/")
	if i := strings.LastIndex(val, "/"); i >= 0 {
		return val[i+1:]
	}
	return val
}
