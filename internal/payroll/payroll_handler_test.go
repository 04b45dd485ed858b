package payroll_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-payroll/internal/payroll"
	payrollerrors "go-payroll/internal/payroll/errors"
	"go-payroll/internal/shared/contextutil"
	"go-payroll/internal/tax"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *apiError       `json:"error"`
}

func mustDecodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	err := json.Unmarshal(body, &env)
	assert.NoError(t, err)
	return env
}

type fakePayrollService struct {
	calculateBatchFn   func(ctx context.Context, entries []payroll.SalaryEntry, date time.Time) (payroll.BatchPayrollResponse, error)
	calculateWorkersFn func(ctx context.Context, userID string, date time.Time) (payroll.BatchPayrollResponse, error)
	calculateWorkerFn  func(ctx context.Context, userID, workerID string, date time.Time) (payroll.PayrollLine, error)
}

func (f *fakePayrollService) CalculateBatch(ctx context.Context, entries []payroll.SalaryEntry, date time.Time) (payroll.BatchPayrollResponse, error) {
	return f.calculateBatchFn(ctx, entries, date)
}

func (f *fakePayrollService) CalculateWorkers(ctx context.Context, userID string, date time.Time) (payroll.BatchPayrollResponse, error) {
	return f.calculateWorkersFn(ctx, userID, date)
}

func (f *fakePayrollService) CalculateWorker(ctx context.Context, userID, workerID string, date time.Time) (payroll.PayrollLine, error) {
	return f.calculateWorkerFn(ctx, userID, workerID, date)
}

func TestPayrollHandler_Calculate(t *testing.T) {
	svc := &fakePayrollService{
		calculateBatchFn: func(ctx context.Context, entries []payroll.SalaryEntry, date time.Time) (payroll.BatchPayrollResponse, error) {
			assert.Len(t, entries, 2)
			assert.Equal(t, "Gardener", entries[0].Label)
			return payroll.BatchPayrollResponse{
				Date: "2025-06-01",
				Lines: []payroll.PayrollLine{
					{WorkerName: "Gardener", GrossSalary: 15000, NetPay: 13462.5},
					{WorkerName: "Cook", GrossSalary: 24000, NetPay: 21540},
				},
				Summary: payroll.BatchSummary{WorkerCount: 2},
			}, nil
		},
	}

	h := payroll.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body := `{"salaries":[{"label":"Gardener","gross_salary":15000},{"label":"Cook","gross_salary":24000}],"date":"2025-06-01"}`
	c.Request = httptest.NewRequest(http.MethodPost, "/payroll/calculate", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Calculate(c)

	assert.Equal(t, http.StatusOK, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.True(t, env.Ok)
}

func TestPayrollHandler_Calculate_EmptySalaries(t *testing.T) {
	h := payroll.NewHandler(&fakePayrollService{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Request = httptest.NewRequest(http.MethodPost, "/payroll/calculate", strings.NewReader(`{"salaries":[]}`))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Calculate(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.False(t, env.Ok)
}

func TestPayrollHandler_GetWorkerPayroll(t *testing.T) {
	userID := uuid.New().String()
	workerID := uuid.New().String()

	t.Run("found", func(t *testing.T) {
		svc := &fakePayrollService{
			calculateWorkerFn: func(ctx context.Context, uid, wid string, date time.Time) (payroll.PayrollLine, error) {
				assert.Equal(t, userID, uid)
				assert.Equal(t, workerID, wid)
				return payroll.PayrollLine{
					WorkerID:    wid,
					WorkerName:  "Amina",
					GrossSalary: 15000,
					TaxBreakdown: tax.Breakdown{
						Pension: 900, HealthLevy: 412.5, HousingLevy: 225, TotalDeductions: 1537.5,
					},
					NetPay: 13462.5,
				}, nil
			},
		}

		h := payroll.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		c.Request = httptest.NewRequest(http.MethodGet, "/payroll/workers/"+workerID, nil)
		c.Request = c.Request.WithContext(contextutil.WithUserID(c.Request.Context(), userID))
		c.Params = []gin.Param{{Key: "id", Value: workerID}}

		h.GetWorkerPayroll(c)

		assert.Equal(t, http.StatusOK, w.Code)
		env := mustDecodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)

		var line payroll.PayrollLine
		assert.NoError(t, json.Unmarshal(env.Data, &line))
		assert.Equal(t, 13462.5, line.NetPay)
	})

	t.Run("not found", func(t *testing.T) {
		svc := &fakePayrollService{
			calculateWorkerFn: func(ctx context.Context, uid, wid string, date time.Time) (payroll.PayrollLine, error) {
				return payroll.PayrollLine{}, payrollerrors.ErrWorkerNotFound
			},
		}

		h := payroll.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		c.Request = httptest.NewRequest(http.MethodGet, "/payroll/workers/"+workerID, nil)
		c.Params = []gin.Param{{Key: "id", Value: workerID}}

		h.GetWorkerPayroll(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
		env := mustDecodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		if assert.NotNil(t, env.Error) {
			assert.Equal(t, "NOT_FOUND", env.Error.Code)
		}
	})
}
