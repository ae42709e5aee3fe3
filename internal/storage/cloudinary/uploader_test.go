package cloudinary

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testUploader(t *testing.T, handler http.HandlerFunc) (*Uploader, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	u := NewUploader(srv.URL, "democloud", "key", "secret", "festreg")
	u.now = func() time.Time { return time.Unix(1700000000, 0) }
	return u, srv
}

func TestUpload_PDFGoesToRawEndpoint(t *testing.T) {
	var gotPath string
	u, _ := testUploader(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if got := r.FormValue("folder"); got != "festreg/Asha_Rao" {
			t.Errorf("unexpected folder %q", got)
		}
		if !strings.HasPrefix(r.FormValue("public_id"), "passport-") {
			t.Errorf("unexpected public_id %q", r.FormValue("public_id"))
		}
		if r.FormValue("api_key") != "key" {
			t.Errorf("missing api_key field")
		}
		w.Write([]byte(`{"secure_url":"https://res.example/festreg/doc.pdf"}`))
	})

	url, err := u.Upload(context.Background(), []byte("%PDF-1.4"), "scan.pdf", "Asha Rao")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "https://res.example/festreg/doc.pdf" {
		t.Fatalf("unexpected url %q", url)
	}
	if gotPath != "/democloud/raw/upload" {
		t.Fatalf("pdf must hit the raw endpoint, got %q", gotPath)
	}
}

func TestUpload_ImageGoesToImageEndpoint(t *testing.T) {
	var gotPath string
	u, _ := testUploader(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"secure_url":"https://res.example/festreg/doc.jpg"}`))
	})

	if _, err := u.Upload(context.Background(), []byte{0xff, 0xd8}, "scan.JPG", "asha"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/democloud/image/upload" {
		t.Fatalf("image must hit the image endpoint, got %q", gotPath)
	}
}

func TestUpload_SignatureCoversSortedParams(t *testing.T) {
	u, _ := testUploader(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		payload := "folder=" + r.FormValue("folder") +
			"&public_id=" + r.FormValue("public_id") +
			"&timestamp=" + r.FormValue("timestamp")
		sum := sha1.Sum([]byte(payload + "secret"))
		if r.FormValue("signature") != hex.EncodeToString(sum[:]) {
			t.Errorf("signature does not match sorted params")
		}
		w.Write([]byte(`{"secure_url":"https://res.example/ok"}`))
	})

	if _, err := u.Upload(context.Background(), []byte("data"), "scan.png", "asha"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUpload_UpstreamError(t *testing.T) {
	u, _ := testUploader(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Invalid Signature"}}`))
	})

	_, err := u.Upload(context.Background(), []byte("data"), "scan.png", "asha")
	var uerr *UploadError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected UploadError, got %v", err)
	}
	if uerr.StatusCode != http.StatusUnauthorized || !strings.Contains(uerr.Message, "Invalid Signature") {
		t.Fatalf("unexpected error %v", uerr)
	}
}

func TestUpload_EmptyBuffer(t *testing.T) {
	u := NewUploader("https://unused.example", "c", "k", "s", "festreg")
	_, err := u.Upload(context.Background(), nil, "scan.pdf", "asha")
	var uerr *UploadError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected UploadError, got %v", err)
	}
}

func TestUpload_MissingCredentials(t *testing.T) {
	u := NewUploader("https://unused.example", "", "", "", "festreg")
	_, err := u.Upload(context.Background(), []byte("data"), "scan.pdf", "asha")
	var uerr *UploadError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected UploadError, got %v", err)
	}
}

func TestSanitizeFolder(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Asha Rao", "Asha_Rao"},
		{"weird/../path", "weird____path"},
		{"", "participant"},
		{"   ", "participant"},
		{strings.Repeat("a", 60), strings.Repeat("a", 40)},
	}
	for _, c := range cases {
		if got := sanitizeFolder(c.in); got != c.want {
			t.Errorf("sanitizeFolder(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
