package tax_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-payroll/internal/rateconfig"
	"go-payroll/internal/tax"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error json.RawMessage `json:"error"`
}

func mustDecodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	err := json.Unmarshal(body, &env)
	assert.NoError(t, err)
	return env
}

type fakeRateReader struct {
	activeSetFn func(ctx context.Context, date time.Time) ([]rateconfig.RateDefinition, error)
}

func (f *fakeRateReader) ActiveSet(ctx context.Context, date time.Time) ([]rateconfig.RateDefinition, error) {
	if f.activeSetFn != nil {
		return f.activeSetFn(ctx, date)
	}
	return nil, nil
}

func TestTaxHandler_Calculate(t *testing.T) {
	h := tax.NewHandler(defaultEngine(), &fakeRateReader{})

	t.Run("computes breakdown for a dated request", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		body := `{"gross_salary":15000,"date":"2025-06-01"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/taxes/calculate", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Calculate(c)

		assert.Equal(t, http.StatusOK, w.Code)
		env := mustDecodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)

		var resp tax.CalculateTaxesResponse
		assert.NoError(t, json.Unmarshal(env.Data, &resp))
		assert.Equal(t, "2025-06-01", resp.Date)
		assert.Equal(t, 1537.5, resp.Breakdown.TotalDeductions)
		assert.Equal(t, 13462.5, resp.NetPay)
	})

	t.Run("rejects malformed date", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		body := `{"gross_salary":15000,"date":"01/06/2025"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/taxes/calculate", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Calculate(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTaxHandler_GetRates(t *testing.T) {
	reader := &fakeRateReader{
		activeSetFn: func(ctx context.Context, date time.Time) ([]rateconfig.RateDefinition, error) {
			return []rateconfig.RateDefinition{
				{Category: rateconfig.CategoryPAYE, RateShape: rateconfig.ShapeGraduated},
				{Category: rateconfig.CategoryHousingLevy, RateShape: rateconfig.ShapePercentage},
			}, nil
		},
	}
	h := tax.NewHandler(defaultEngine(), reader)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/taxes/rates?date=2025-06-01", nil)

	h.GetRates(c)

	assert.Equal(t, http.StatusOK, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.True(t, env.Ok)
}

func TestTaxHandler_GetDeadlines(t *testing.T) {
	h := tax.NewHandler(defaultEngine(), &fakeRateReader{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/taxes/deadlines", nil)

	h.GetDeadlines(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var env struct {
		Ok   bool           `json:"ok"`
		Data []tax.Deadline `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Len(t, env.Data, 4)
}
