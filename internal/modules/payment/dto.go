package payment

import "festreg/internal/domain"

type SubmitInput struct {
	Name           string `form:"name"`
	Email          string `form:"email"`
	Mobile         string `form:"mobile"`
	Address        string `form:"address"`
	State          string `form:"state"`
	Pin            string `form:"pin"`
	AadhaarNumber  string `form:"aadhaarNumber"`
	WorkPlace      string `form:"workPlace"`
	PassportNumber string `form:"passportNumber"`
	CompetitionID  int64  `form:"competition"`
	AcceptedTerms  bool   `form:"acceptedTerms"`
	// Client-declared amount; validated against the competition price and then
	// discarded. The persisted amount is always the competition price.
	Amount string `form:"amount"`
}

// Document is the uploaded passport file held in memory until the duplicate
// check passes.
type Document struct {
	Buffer   []byte
	Filename string
}

type SubmitResult struct {
	Registration *domain.Registration `json:"registration"`
	PaymentURL   string               `json:"payment_url,omitempty"`
	// RetryAllowed signals that an earlier non-successful registration for the
	// same person already exists; no new record was created.
	RetryAllowed bool `json:"retry_allowed"`
}

// CallbackParams are the gateway's user-redirect query parameters.
type CallbackParams struct {
	PaymentID        string
	PaymentRequestID string
	PaymentStatus    string
}

// WebhookPayload is the parsed server-to-server notification. RecordID comes
// from the server-controlled webhook URL, never from attacker-controllable
// payload fields alone.
type WebhookPayload struct {
	RecordID  int64
	Status    string
	Amount    string
	PaymentID string
}

type ErrorResponse struct {
	Error string `json:"error"`
}
