// Package notification renders receipt PDFs and sends confirmation email.
// Sends are fire-and-forget relative to the payment flow: a failure here is
// logged and must never alter payment state or the HTTP response.
package notification

import (
	"context"
	"encoding/base64"
	"fmt"
	"html"
	"strings"
	"time"
)

type emailSender interface {
	Send(ctx context.Context, to, subject, html string, attachments []Attachment) error
}

type Service struct {
	mail    emailSender
	loggerf func(format string, args ...interface{})
}

func NewService(mail emailSender, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{mail: mail, loggerf: loggerf}
}

// SendConfirmation renders the receipt and emails it to the participant.
func (s *Service) SendConfirmation(ctx context.Context, data ReceiptData) error {
	if data.Email == "" {
		return fmt.Errorf("confirmation: participant email missing")
	}
	if data.Date.IsZero() {
		data.Date = time.Now()
	}

	pdf, err := RenderReceipt(data)
	if err != nil {
		return fmt.Errorf("render receipt: %w", err)
	}

	body := confirmationHTML(data)
	attachments := []Attachment{{
		Name:     "Receipt-" + data.RegistrationID + ".pdf",
		Content:  base64.StdEncoding.EncodeToString(pdf),
		MimeType: "application/pdf",
	}}

	if err := s.mail.Send(ctx, data.Email, "Registration Confirmation", body, attachments); err != nil {
		return fmt.Errorf("send confirmation: %w", err)
	}
	return nil
}

func confirmationHTML(data ReceiptData) string {
	city := "Local Chapter"
	if data.City != "" {
		city = strings.ToUpper(data.City) + " Chapter"
	}
	var b strings.Builder
	b.WriteString(`<div style="font-family: Arial, sans-serif; padding: 16px;">`)
	b.WriteString("<h2>Registration Successful</h2>")
	fmt.Fprintf(&b, "<p>Dear %s,</p>", html.EscapeString(data.Name))
	fmt.Fprintf(&b, "<p>Thank you for registering for the <b>%s</b> at the <b>%s</b>.</p>",
		html.EscapeString(data.CompetitionName), html.EscapeString(city))
	fmt.Fprintf(&b, "<p><b>Registration ID:</b> %s</p>", html.EscapeString(data.RegistrationID))
	fmt.Fprintf(&b, "<p><b>Payment ID:</b> %s</p>", html.EscapeString(data.PaymentID))
	fmt.Fprintf(&b, "<p><b>Amount Paid:</b> %.2f</p>", data.Amount)
	b.WriteString("<p>Please find your receipt attached as a PDF.</p>")
	b.WriteString("</div>")
	return b.String()
}

// Dispatcher decouples confirmation sends from the request that committed the
// status change. Jobs run on a single background goroutine with a bounded
// per-send timeout; a full queue drops the job with a log line instead of
// blocking the caller.
type Dispatcher struct {
	svc     *Service
	jobs    chan ReceiptData
	done    chan struct{}
	loggerf func(format string, args ...interface{})
}

func NewDispatcher(svc *Service, queueSize int, loggerf func(format string, args ...interface{})) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 64
	}
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	d := &Dispatcher{
		svc:     svc,
		jobs:    make(chan ReceiptData, queueSize),
		done:    make(chan struct{}),
		loggerf: loggerf,
	}
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for job := range d.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := d.svc.SendConfirmation(ctx, job); err != nil {
			d.loggerf("level=error msg=confirmation send failed registration_id=%s err=%v", job.RegistrationID, err)
		} else {
			d.loggerf("level=info msg=confirmation sent registration_id=%s email=%s", job.RegistrationID, job.Email)
		}
		cancel()
	}
}

// Enqueue never blocks and never fails the caller.
func (d *Dispatcher) Enqueue(data ReceiptData) {
	select {
	case d.jobs <- data:
	default:
		d.loggerf("level=error msg=confirmation queue full, dropping registration_id=%s", data.RegistrationID)
	}
}

// Close drains the queue and stops the worker.
func (d *Dispatcher) Close() {
	close(d.jobs)
	<-d.done
}
