package rateconfig

import (
	"net/http"
	"time"

	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

// dateQuery reads an optional ?date=YYYY-MM-DD, defaulting to today.
func dateQuery(c *gin.Context) (time.Time, bool) {
	raw := c.Query("date")
	if raw == "" {
		return time.Now().UTC(), true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "invalid date format, expected YYYY-MM-DD", nil)
		return time.Time{}, false
	}
	return t, true
}

func (h *Handler) GetActiveSet(c *gin.Context) {
	date, ok := dateQuery(c)
	if !ok {
		return
	}

	defs, err := h.service.ActiveSet(c.Request.Context(), date)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, mapToListResponse(defs), nil)
}

func (h *Handler) GetHistory(c *gin.Context) {
	category := Category(c.Param("category"))

	valid := false
	for _, known := range Categories() {
		if category == known {
			valid = true
			break
		}
	}
	if !valid {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "unknown tax category", nil)
		return
	}

	defs, err := h.service.History(c.Request.Context(), category)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, mapToListResponse(defs), nil)
}

func (h *Handler) Create(c *gin.Context) {
	actorID := c.GetString("user_id")

	var req CreateRateDefinitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		mapped := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, mapped.Status, mapped.Code, mapped.Message, nil)
		return
	}

	resp, err := h.service.Create(c.Request.Context(), actorID, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) Deactivate(c *gin.Context) {
	id := c.Param("id")

	resp, err := h.service.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
