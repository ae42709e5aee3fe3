package notification

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type mockSender struct {
	mu          sync.Mutex
	calls       int
	to          string
	subject     string
	html        string
	attachments []Attachment
	err         error
}

func (m *mockSender) Send(ctx context.Context, to, subject, html string, attachments []Attachment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.to = to
	m.subject = subject
	m.html = html
	m.attachments = attachments
	return m.err
}

func sampleReceipt() ReceiptData {
	return ReceiptData{
		RegistrationID:  "REG-TEST-0001",
		Name:            "Asha Rao",
		Email:           "asha@example.org",
		Mobile:          "9876543210",
		CompetitionName: "Brewers Cup",
		City:            "bengaluru",
		Amount:          2000,
		PaymentID:       "MOJO123",
		Date:            time.Date(2026, 2, 14, 10, 0, 0, 0, time.UTC),
	}
}

func TestSendConfirmation(t *testing.T) {
	sender := &mockSender{}
	svc := NewService(sender, nil)

	if err := svc.SendConfirmation(context.Background(), sampleReceipt()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sender.calls != 1 || sender.to != "asha@example.org" {
		t.Fatalf("unexpected send calls=%d to=%q", sender.calls, sender.to)
	}
	if !strings.Contains(sender.html, "REG-TEST-0001") || !strings.Contains(sender.html, "Brewers Cup") {
		t.Fatalf("confirmation body missing registration details")
	}
	if !strings.Contains(sender.html, "BENGALURU Chapter") {
		t.Fatalf("confirmation body missing chapter line: %s", sender.html)
	}
	if len(sender.attachments) != 1 {
		t.Fatalf("expected one attachment, got %d", len(sender.attachments))
	}
	att := sender.attachments[0]
	if att.Name != "Receipt-REG-TEST-0001.pdf" || att.MimeType != "application/pdf" {
		t.Fatalf("unexpected attachment %+v", att)
	}
	pdf, err := base64.StdEncoding.DecodeString(att.Content)
	if err != nil {
		t.Fatalf("attachment is not base64: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("attachment is not a PDF")
	}
}

func TestSendConfirmation_MissingEmail(t *testing.T) {
	sender := &mockSender{}
	svc := NewService(sender, nil)

	data := sampleReceipt()
	data.Email = ""
	if err := svc.SendConfirmation(context.Background(), data); err == nil {
		t.Fatalf("expected error for missing email")
	}
	if sender.calls != 0 {
		t.Fatalf("nothing may be sent without a recipient")
	}
}

func TestSendConfirmation_EscapesHTML(t *testing.T) {
	sender := &mockSender{}
	svc := NewService(sender, nil)

	data := sampleReceipt()
	data.Name = `<script>alert("x")</script>`
	if err := svc.SendConfirmation(context.Background(), data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(sender.html, "<script>") {
		t.Fatalf("participant input must be escaped")
	}
}

func TestRenderReceipt(t *testing.T) {
	pdf, err := RenderReceipt(sampleReceipt())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("expected a PDF document")
	}
	if len(pdf) < 1000 {
		t.Fatalf("suspiciously small receipt: %d bytes", len(pdf))
	}
}

func TestDispatcher_DrainsOnClose(t *testing.T) {
	sender := &mockSender{}
	d := NewDispatcher(NewService(sender, nil), 4, nil)

	for i := 0; i < 3; i++ {
		d.Enqueue(sampleReceipt())
	}
	d.Close()

	sender.mu.Lock()
	defer sender.mu.Unlock()
	if sender.calls != 3 {
		t.Fatalf("expected 3 sends after drain, got %d", sender.calls)
	}
}

func TestDispatcher_SendFailureDoesNotStopWorker(t *testing.T) {
	sender := &mockSender{err: errors.New("smtp down")}
	var logged int
	d := NewDispatcher(NewService(sender, nil), 4, func(string, ...interface{}) { logged++ })

	d.Enqueue(sampleReceipt())
	d.Enqueue(sampleReceipt())
	d.Close()

	sender.mu.Lock()
	defer sender.mu.Unlock()
	if sender.calls != 2 {
		t.Fatalf("worker must keep processing after a failure, got %d sends", sender.calls)
	}
}
