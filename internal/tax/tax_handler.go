package tax

import (
	"context"
	"net/http"
	"time"

	"go-payroll/internal/rateconfig"
	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// RateReader is the transparency slice of the rate configuration service:
// which definitions are in effect on a date.
type RateReader interface {
	ActiveSet(ctx context.Context, date time.Time) ([]rateconfig.RateDefinition, error)
}

type Handler struct {
	engine *Engine
	rates  RateReader
}

func NewHandler(engine *Engine, rates RateReader) *Handler {
	return &Handler{engine: engine, rates: rates}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Calculate(c *gin.Context) {
	var req CalculateTaxesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "Invalid input", err.Error())
		return
	}

	date := time.Now().UTC()
	if req.Date != nil && *req.Date != "" {
		parsed, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "invalid date format, expected YYYY-MM-DD", nil)
			return
		}
		date = parsed
	}

	breakdown, err := h.engine.ComputeBreakdown(c.Request.Context(), req.GrossSalary, date)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp := CalculateTaxesResponse{
		GrossSalary: req.GrossSalary,
		Date:        rateconfig.Day(date).Format("2006-01-02"),
		Breakdown:   breakdown,
		NetPay:      Round2(sanitizeSalary(req.GrossSalary) - breakdown.TotalDeductions),
	}

	response.Success(c, http.StatusOK, resp, nil)
}

// GetRates exposes the active rate table for a date so the caller can show
// which rules are in effect.
func (h *Handler) GetRates(c *gin.Context) {
	date := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "invalid date format, expected YYYY-MM-DD", nil)
			return
		}
		date = parsed
	}

	defs, err := h.rates.ActiveSet(c.Request.Context(), date)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, defs, nil)
}

func (h *Handler) GetDeadlines(c *gin.Context) {
	response.Success(c, http.StatusOK, UpcomingDeadlines(time.Now()), nil)
}
