package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestZeptoClient_Send(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Zoho-enczapikey tok" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		var in map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if in["subject"] != "Registration Confirmation" {
			t.Errorf("unexpected subject %v", in["subject"])
		}
		if in["htmlbody"] == "" {
			t.Errorf("missing htmlbody")
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":[{"code":"EM_104"}]}`))
	}))
	defer srv.Close()

	c := NewZeptoClient(srv.URL, "tok", "noreply@example.org", "Registrations")
	err := c.Send(context.Background(), "asha@example.org", "Registration Confirmation", "<p>hi</p>", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestZeptoClient_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"code":"TM_4001"}}`))
	}))
	defer srv.Close()

	c := NewZeptoClient(srv.URL, "tok", "noreply@example.org", "")
	if err := c.Send(context.Background(), "asha@example.org", "s", "<p>hi</p>", nil); err == nil {
		t.Fatalf("expected error on non-2xx response")
	}
}

func TestZeptoClient_MissingCredentials(t *testing.T) {
	c := NewZeptoClient("https://unused.example", "", "", "")
	if err := c.Send(context.Background(), "asha@example.org", "s", "<p>hi</p>", nil); err == nil {
		t.Fatalf("expected error without credentials")
	}
}
