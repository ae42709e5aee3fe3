// Package cloudinary pushes uploaded documents to external object storage and
// returns the durable URL recorded on the registration.
package cloudinary

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type UploadError struct {
	StatusCode int
	Message    string
}

func (e *UploadError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("upload error: status=%d %s", e.StatusCode, e.Message)
	}
	return "upload error: " + e.Message
}

type Uploader struct {
	baseURL    string
	cloudName  string
	apiKey     string
	apiSecret  string
	rootFolder string
	httpClient *http.Client

	now func() time.Time
}

func NewUploader(baseURL, cloudName, apiKey, apiSecret, rootFolder string) *Uploader {
	return &Uploader{
		baseURL:    strings.TrimRight(baseURL, "/"),
		cloudName:  cloudName,
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		rootFolder: rootFolder,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		now: time.Now,
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload stores buf under <root>/<ownerFolder>/ and returns the durable HTTPS
// URL. The stored name is a fresh uuid plus the original extension; the
// client-supplied filename only contributes its extension, which also selects
// the resource category (pdf goes to the raw endpoint, everything else to
// image).
func (u *Uploader) Upload(ctx context.Context, buf []byte, filename, ownerFolder string) (string, error) {
	if u.cloudName == "" || u.apiKey == "" || u.apiSecret == "" {
		return "", &UploadError{Message: "storage credentials are not configured"}
	}
	if len(buf) == 0 {
		return "", &UploadError{Message: "empty file buffer"}
	}

	ext := strings.ToLower(filepath.Ext(filename))
	resourceType := "image"
	if ext == ".pdf" {
		resourceType = "raw"
	}

	folder := u.rootFolder + "/" + sanitizeFolder(ownerFolder)
	publicID := "passport-" + uuid.New().String()
	timestamp := strconv.FormatInt(u.now().Unix(), 10)

	params := map[string]string{
		"folder":    folder,
		"public_id": publicID,
		"timestamp": timestamp,
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range params {
		_ = w.WriteField(k, v)
	}
	_ = w.WriteField("api_key", u.apiKey)
	_ = w.WriteField("signature", u.sign(params))

	part, err := w.CreateFormFile("file", publicID+ext)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(buf); err != nil {
		return "", fmt.Errorf("write form file: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	url := fmt.Sprintf("%s/%s/%s/upload", u.baseURL, u.cloudName, resourceType)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", &UploadError{Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var out uploadResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", &UploadError{StatusCode: resp.StatusCode, Message: "decode response: " + err.Error()}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := out.Error.Message
		if msg == "" {
			msg = string(raw)
		}
		return "", &UploadError{StatusCode: resp.StatusCode, Message: msg}
	}
	if out.SecureURL == "" {
		return "", &UploadError{StatusCode: resp.StatusCode, Message: "response missing secure_url"}
	}
	return out.SecureURL, nil
}

// sign builds the provider's request signature: SHA-1 over the sorted
// key=value pairs joined with '&', with the API secret appended.
func (u *Uploader) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}
	h := sha1.Sum([]byte(strings.Join(pairs, "&") + u.apiSecret))
	return hex.EncodeToString(h[:])
}

func sanitizeFolder(name string) string {
	name = strings.TrimSpace(name)
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return '_'
	}, name)
	if len(name) > 40 {
		name = name[:40]
	}
	if name == "" {
		return "participant"
	}
	return name
}
