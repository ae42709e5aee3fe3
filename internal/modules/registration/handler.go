package registration

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"festreg/internal/modules/payment"
	"festreg/internal/repository"
)

type Handler struct {
	service *Service
	loggerf func(format string, args ...interface{})
}

func NewHandler(service *Service, loggerf func(format string, args ...interface{})) *Handler {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Handler{service: service, loggerf: loggerf}
}

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/registration", h.Create)
	rg.GET("/registration/:id", h.GetByID)
	rg.GET("/verify/:regId", h.Verify)
}

// RegisterAdminRoutes uses the plural collection path: the public surface owns
// /registration/:id and gin does not allow a static sibling under a wildcard.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/registrations", h.List)
	rg.GET("/registrations/export", h.ExportCSV)
	rg.PATCH("/registrations", h.UpdateStatus)
	rg.DELETE("/registrations/:id", h.Delete)
}

func (h *Handler) Create(c *gin.Context) {
	var in payment.SubmitInput
	if err := c.ShouldBind(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := payment.ReadDocument(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Create(c.Request.Context(), in, doc)
	if err != nil {
		h.writeError(c, err)
		return
	}

	status := http.StatusCreated
	if result.RetryAllowed {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{
		"success":       true,
		"registration":  result.Registration,
		"retry_allowed": result.RetryAllowed,
	})
}

func (h *Handler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid registration id"})
		return
	}
	reg, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reg)
}

// Verify answers a check-in scan with the minimum needed at the venue.
func (h *Handler) Verify(c *gin.Context) {
	reg, err := h.service.Verify(c.Request.Context(), c.Param("regId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"registration_id":  reg.RegistrationID,
		"name":             reg.Name,
		"competition_name": reg.CompetitionName,
		"payment_status":   reg.PaymentStatus,
	})
}

func (h *Handler) List(c *gin.Context) {
	f, err := filterFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	regs, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, regs)
}

type updateStatusRequest struct {
	RegistrationID string `json:"registrationId" binding:"required"`
	PaymentStatus  string `json:"paymentStatus" binding:"required"`
	PaymentID      string `json:"paymentId"`
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "registrationId and paymentStatus are required"})
		return
	}
	reg, err := h.service.UpdateStatus(c.Request.Context(), req.RegistrationID, req.PaymentStatus, req.PaymentID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "registration": reg})
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid registration id"})
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Registration successfully deleted."})
}

func (h *Handler) ExportCSV(c *gin.Context) {
	f, err := filterFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="registrations_report.csv"`)

	n, err := h.service.ExportCSV(c.Request.Context(), f, c.Writer)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "No registrations found."})
			return
		}
		h.loggerf("level=error msg=csv export failed err=%v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export registrations"})
		return
	}
	h.loggerf("level=info msg=csv export written rows=%d", n)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, payment.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, payment.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidStatus),
		errors.Is(err, payment.ErrValidation), errors.Is(err, payment.ErrAmountMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, payment.ErrUploadFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		h.loggerf("level=error msg=unexpected registration error err=%v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func filterFromQuery(c *gin.Context) (repository.RegistrationFilter, error) {
	var f repository.RegistrationFilter
	if v := c.Query("competitionId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return f, errors.New("invalid competitionId")
		}
		f.CompetitionID = id
	}
	f.PaymentStatus = c.Query("paymentStatus")

	start, end := c.Query("startDate"), c.Query("endDate")
	if start != "" && end != "" {
		st, err := time.Parse("2006-01-02", start)
		if err != nil {
			return f, errors.New("invalid startDate")
		}
		en, err := time.Parse("2006-01-02", end)
		if err != nil {
			return f, errors.New("invalid endDate")
		}
		en = en.Add(24*time.Hour - time.Second)
		f.StartDate = &st
		f.EndDate = &en
	}
	return f, nil
}
