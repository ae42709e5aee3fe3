package payment

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"festreg/internal/gateway/instamojo"
)

const maxDocumentSize = 5 * 1024 * 1024 // 5 MB

var allowedDocumentExts = map[string]bool{
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

type Handler struct {
	service       *Service
	webhookSecret string
	loggerf       func(format string, args ...interface{})
}

func NewHandler(service *Service, webhookSecret string, loggerf func(format string, args ...interface{})) *Handler {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Handler{service: service, webhookSecret: webhookSecret, loggerf: loggerf}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/payment/register-and-pay", h.RegisterAndPay)
	rg.GET("/payment/callback", h.Callback)
	rg.POST("/payment/retry/:id", h.Retry)
	rg.POST("/payment/webhook", h.Webhook)
}

func (h *Handler) RegisterAndPay(c *gin.Context) {
	var in SubmitInput
	if err := c.ShouldBind(&in); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	doc, err := ReadDocument(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	result, err := h.service.Submit(c.Request.Context(), in, doc)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if result.RetryAllowed {
		c.JSON(http.StatusOK, gin.H{
			"success":       true,
			"registration":  result.Registration,
			"retry_allowed": true,
			"message":       "Existing pending registration found. Proceed to retry payment.",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"registration_id": result.Registration.ID,
		"payment_url":     result.PaymentURL,
		"message":         "Registration created. Redirecting to payment.",
	})
}

func (h *Handler) Callback(c *gin.Context) {
	recordID, err := strconv.ParseInt(c.Query("registration_id"), 10, 64)
	if err != nil {
		// Invoked by a browser: redirect instead of erroring out.
		c.Redirect(http.StatusFound, h.service.frontendBaseURL+"/registration-error?message=RegistrationNotFound")
		return
	}

	target := h.service.Confirm(c.Request.Context(), recordID, CallbackParams{
		PaymentID:        c.Query("payment_id"),
		PaymentRequestID: instamojo.ExtractID(c.Query("payment_request_id")),
		PaymentStatus:    c.Query("payment_status"),
	})
	c.Redirect(http.StatusFound, target)
}

func (h *Handler) Retry(c *gin.Context) {
	recordID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid registration id"})
		return
	}

	result, err := h.service.Retry(c.Request.Context(), recordID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"registration_id": result.Registration.ID,
		"payment_url":     result.PaymentURL,
		"message":         "Payment retry initiated.",
	})
}

// Webhook authenticates and applies a gateway status notification. After
// authentication every outcome acks with 2xx: the gateway treats anything else
// as "retry", and retrying cannot fix a record we could not process.
func (h *Handler) Webhook(c *gin.Context) {
	rawBody, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unreadable body"})
		return
	}

	signature := c.GetHeader("X-Webhook-Signature")
	if !instamojo.VerifySignature(rawBody, signature, h.webhookSecret) {
		h.loggerf("level=error msg=webhook signature mismatch remote=%s", c.ClientIP())
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid signature"})
		return
	}

	recordID, err := strconv.ParseInt(c.Query("registration_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "missing registration_id"})
		return
	}

	payload, err := parseWebhookBody(rawBody, c.ContentType())
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}
	payload.RecordID = recordID

	if err := h.service.ConfirmWebhook(c.Request.Context(), payload); err != nil {
		h.loggerf("level=error msg=webhook processing failed registration_id=%d err=%v", recordID, err)
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ReadDocument pulls the optional passport file out of a multipart request,
// enforcing the size cap and extension whitelist. Absence is not an error.
func ReadDocument(c *gin.Context) (*Document, error) {
	fileHeader, err := c.FormFile("passportFile")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, errors.New("file upload error: " + err.Error())
	}
	if fileHeader.Size > maxDocumentSize {
		return nil, errors.New("the uploaded file must be under 5MB")
	}
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedDocumentExts[ext] {
		return nil, errors.New("passport file must be a PDF or image (JPG/PNG)")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return nil, errors.New("file upload error: " + err.Error())
	}
	defer f.Close()

	buf, err := io.ReadAll(io.LimitReader(f, maxDocumentSize+1))
	if err != nil {
		return nil, errors.New("file upload error: " + err.Error())
	}
	if len(buf) > maxDocumentSize {
		return nil, errors.New("the uploaded file must be under 5MB")
	}
	return &Document{Buffer: buf, Filename: fileHeader.Filename}, nil
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrValidation), errors.Is(err, ErrAmountMismatch):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrUploadFailed):
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrPaymentInitiation):
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	default:
		h.loggerf("level=error msg=unexpected payment error err=%v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

// parseWebhookBody accepts either the gateway's form-encoded delivery or a
// JSON equivalent.
func parseWebhookBody(raw []byte, contentType string) (WebhookPayload, error) {
	if strings.Contains(contentType, "application/json") {
		return parseWebhookJSON(raw)
	}
	return parseWebhookForm(raw)
}
