package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/campusworks/cmcs/internal/application/service"
	"github.com/campusworks/cmcs/internal/domain/claims"
	"github.com/campusworks/cmcs/internal/domain/entity"
	"github.com/campusworks/cmcs/pkg/utils"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	claimService  service.ClaimService
	reportService service.ReportService
	ring          *utils.Ring
	logger        Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	claimService service.ClaimService,
	reportService service.ReportService,
	ring *utils.Ring,
	logger Logger,
) *Handlers {
	return &Handlers{
		claimService:  claimService,
		reportService: reportService,
		ring:          ring,
		logger:        logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// SubmitClaimRequest is the submission payload. Hours and rate arrive as
// strings so decimal precision survives the JSON round trip.
type SubmitClaimRequest struct {
	LecturerName   string `json:"lecturer_name" binding:"required"`
	HoursWorked    string `json:"hours_worked" binding:"required"`
	HourlyRate     string `json:"hourly_rate" binding:"required"`
	Notes          string `json:"notes"`
	ClaimMonth     int    `json:"claim_month"`
	ClaimYear      int    `json:"claim_year"`
	SubmissionDate string `json:"submission_date"`
}

// DecisionRequest carries approval comments or a rejection reason
type DecisionRequest struct {
	Comments string `json:"comments"`
	Reason   string `json:"reason"`
}

// AddDocumentRequest is the attachment metadata payload
type AddDocumentRequest struct {
	FileName string `json:"file_name" binding:"required"`
	FilePath string `json:"file_path" binding:"required"`
	FileSize int64  `json:"file_size"`
	MimeType string `json:"mime_type"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// SubmitClaim handles POST /api/v1/claims
func (h *Handlers) SubmitClaim(c *gin.Context) {
	var req SubmitClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	hours, err := decimal.NewFromString(req.HoursWorked)
	if err != nil || hours.LessThanOrEqual(decimal.Zero) {
		h.badRequest(c, "hours_worked must be a positive decimal")
		return
	}
	rate, err := decimal.NewFromString(req.HourlyRate)
	if err != nil || rate.LessThanOrEqual(decimal.Zero) {
		h.badRequest(c, "hourly_rate must be a positive decimal")
		return
	}

	claim := &entity.Claim{
		LecturerName: req.LecturerName,
		HoursWorked:  hours,
		HourlyRate:   rate,
		Notes:        req.Notes,
		ClaimMonth:   time.Month(req.ClaimMonth),
		ClaimYear:    req.ClaimYear,
	}
	if req.SubmissionDate != "" {
		date, err := time.Parse(time.RFC3339, req.SubmissionDate)
		if err != nil {
			h.badRequest(c, "submission_date must be RFC3339")
			return
		}
		claim.SubmissionDate = date
	}

	id, err := h.claimService.SubmitClaim(c.Request.Context(), claim)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    gin.H{"id": id, "total_amount": claim.TotalAmount().StringFixed(2)},
	})
}

// GetClaim handles GET /api/v1/claims/:id
func (h *Handlers) GetClaim(c *gin.Context) {
	id, ok := h.claimID(c)
	if !ok {
		return
	}

	claim, err := h.claimService.GetClaimByID(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: claim})
}

// GetClaimHistory handles GET /api/v1/claims/:id/history
func (h *Handlers) GetClaimHistory(c *gin.Context) {
	id, ok := h.claimID(c)
	if !ok {
		return
	}

	history, err := h.claimService.GetClaimHistory(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: history})
}

// ApproveClaim handles POST /api/v1/claims/:id/approve
func (h *Handlers) ApproveClaim(c *gin.Context) {
	id, ok := h.claimID(c)
	if !ok {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req DecisionRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.claimService.ApproveClaim(c.Request.Context(), id, actor, req.Comments); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// RejectClaim handles POST /api/v1/claims/:id/reject
func (h *Handlers) RejectClaim(c *gin.Context) {
	id, ok := h.claimID(c)
	if !ok {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req DecisionRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.claimService.RejectClaim(c.Request.Context(), id, actor, req.Reason); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// AddDocument handles POST /api/v1/claims/:id/documents
func (h *Handlers) AddDocument(c *gin.Context) {
	id, ok := h.claimID(c)
	if !ok {
		return
	}

	var req AddDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	doc := &entity.Document{
		ClaimID:  id,
		FileName: req.FileName,
		FilePath: req.FilePath,
		FileSize: req.FileSize,
		MimeType: req.MimeType,
	}
	if err := h.claimService.AddDocument(c.Request.Context(), doc); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: gin.H{"id": doc.ID}})
}

// PendingClaims handles GET /api/v1/approvals/queue
func (h *Handlers) PendingClaims(c *gin.Context) {
	role, err := entity.ParseRole(c.GetHeader("X-Actor-Role"))
	if err != nil {
		h.badRequest(c, err.Error())
		return
	}

	list, err := h.claimService.GetPendingClaims(c.Request.Context(), role)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: list})
}

// LecturerClaims handles GET /api/v1/lecturers/:name/claims
func (h *Handlers) LecturerClaims(c *gin.Context) {
	list, err := h.claimService.GetClaimsByLecturer(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: list})
}

// Dashboard handles GET /api/v1/dashboard
func (h *Handlers) Dashboard(c *gin.Context) {
	stats, err := h.reportService.GetDashboardStats(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: stats})
}

// OverallReport handles GET /api/v1/reports/overall
func (h *Handlers) OverallReport(c *gin.Context) {
	report, err := h.reportService.GetOverallReport(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: report})
}

// MonthlyReport handles GET /api/v1/reports/monthly?year=&month=
func (h *Handlers) MonthlyReport(c *gin.Context) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		h.badRequest(c, "year query parameter is required")
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		h.badRequest(c, "month query parameter must be 1-12")
		return
	}

	report, err := h.reportService.GetMonthlyReport(c.Request.Context(), year, time.Month(month))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: report})
}

// LecturerReports handles GET /api/v1/reports/lecturers
func (h *Handlers) LecturerReports(c *gin.Context) {
	reports, err := h.reportService.GetLecturerReports(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: reports})
}

// MonthlyBreakdown handles GET /api/v1/reports/monthly-breakdown?year=
func (h *Handlers) MonthlyBreakdown(c *gin.Context) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		h.badRequest(c, "year query parameter is required")
		return
	}

	rows, err := h.reportService.GetMonthlyBreakdown(c.Request.Context(), year)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: rows})
}

// ApprovedClaims handles GET /api/v1/reports/approved-claims?start=&end=
func (h *Handlers) ApprovedClaims(c *gin.Context) {
	start, end, ok := h.dateWindow(c)
	if !ok {
		return
	}

	list, err := h.reportService.GetApprovedClaimsBetween(c.Request.Context(), start, end)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: list})
}

// PaymentSummary handles GET /api/v1/reports/payments?start=&end=
func (h *Handlers) PaymentSummary(c *gin.Context) {
	start, end, ok := h.dateWindow(c)
	if !ok {
		return
	}

	payments, err := h.reportService.GetLecturerPaymentSummary(c.Request.Context(), start, end)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: payments})
}

// RecentLogs handles GET /api/v1/admin/logs?limit=
func (h *Handlers) RecentLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	c.JSON(http.StatusOK, Response{Success: true, Data: h.ring.Recent(limit)})
}

func (h *Handlers) claimID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.badRequest(c, "invalid claim ID")
		return 0, false
	}
	return id, true
}

// actor reads the authenticated identity set upstream. Credential checks
// happened before the request reached this service.
func (h *Handlers) actor(c *gin.Context) (claims.Actor, bool) {
	name := c.GetHeader("X-Actor-Name")
	if name == "" {
		h.badRequest(c, "X-Actor-Name header is required")
		return claims.Actor{}, false
	}
	role, err := entity.ParseRole(c.GetHeader("X-Actor-Role"))
	if err != nil {
		h.badRequest(c, err.Error())
		return claims.Actor{}, false
	}
	return claims.Actor{Name: name, Role: role}, true
}

func (h *Handlers) dateWindow(c *gin.Context) (time.Time, time.Time, bool) {
	start, err := time.Parse("2006-01-02", c.Query("start"))
	if err != nil {
		h.badRequest(c, "start query parameter must be YYYY-MM-DD")
		return time.Time{}, time.Time{}, false
	}
	end, err := time.Parse("2006-01-02", c.Query("end"))
	if err != nil {
		h.badRequest(c, "end query parameter must be YYYY-MM-DD")
		return time.Time{}, time.Time{}, false
	}
	// make the end date inclusive
	end = end.Add(24*time.Hour - time.Nanosecond)
	return start, end, true
}

func (h *Handlers) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: msg})
}

// respondError maps the domain error taxonomy onto HTTP status codes.
func (h *Handlers) respondError(c *gin.Context, err error) {
	switch {
	case claims.IsValidation(err):
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
	case claims.IsNotFound(err):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: err.Error()})
	case claims.IsStateViolation(err):
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
	default:
		h.logger.Error("Request failed", "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal error"})
	}
}
