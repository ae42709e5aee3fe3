package payment

import (
	"encoding/json"
	"fmt"
	"net/url"
)

func parseWebhookForm(raw []byte) (WebhookPayload, error) {
	values, err := url.ParseQuery(string(raw))
	if err != nil {
		return WebhookPayload{}, fmt.Errorf("parse webhook form: %w", err)
	}
	return WebhookPayload{
		Status:    values.Get("status"),
		Amount:    values.Get("amount"),
		PaymentID: values.Get("payment_id"),
	}, nil
}

func parseWebhookJSON(raw []byte) (WebhookPayload, error) {
	var body struct {
		Status    string          `json:"status"`
		Amount    json.RawMessage `json:"amount"`
		PaymentID string          `json:"payment_id"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return WebhookPayload{}, fmt.Errorf("parse webhook json: %w", err)
	}
	// Amount may arrive as a number or a decimal string.
	amount := string(body.Amount)
	var asString string
	if json.Unmarshal(body.Amount, &asString) == nil {
		amount = asString
	}
	return WebhookPayload{
		Status:    body.Status,
		Amount:    amount,
		PaymentID: body.PaymentID,
	}, nil
}
