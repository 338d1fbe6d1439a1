package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/erp/ledger/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type settleBody struct {
	SettlementDate string          `json:"settlement_date" binding:"required,datetime=2006-01-02"`
	PaidAmount     decimal.Decimal `json:"paid_amount" binding:"dgte0"`
	TotalAmount    decimal.Decimal `json:"total_amount" binding:"dgt0"`
	Note           string          `json:"note" binding:"max=10"`
}

func newValidationRouter() *gin.Engine {
	SetupValidator()

	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var req settleBody
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(req.TotalAmount.String()))
	})
	return router
}

func postJSON(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSetupValidator(t *testing.T) {
	SetupValidator()
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	assert.True(t, ok)
	assert.NotNil(t, v)
}

func TestValidation_ReportsJSONFieldNames(t *testing.T) {
	router := newValidationRouter()

	w := postJSON(router, `{"settlement_date":"15/01/2024","paid_amount":"-1","total_amount":"0","note":"far too long a note"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)

	messages := map[string]string{}
	for _, d := range resp.Error.Details {
		messages[d.Field] = d.Message
	}
	assert.Equal(t, "Must be a date in 2006-01-02 format", messages["settlement_date"])
	assert.Equal(t, "Must not be negative", messages["paid_amount"])
	assert.Equal(t, "Must be greater than 0", messages["total_amount"])
	assert.Equal(t, "Must be at most 10 characters", messages["note"])
}

func TestValidation_AcceptsDecimalNumbersAndStrings(t *testing.T) {
	router := newValidationRouter()

	w := postJSON(router, `{"settlement_date":"2024-01-15","paid_amount":0,"total_amount":1000.50}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1000.5", decodeResponse(t, w).Data)

	w = postJSON(router, `{"settlement_date":"2024-01-15","paid_amount":"10.00","total_amount":"0.01"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestValidation_MissingDecimalFailsPositiveCheck(t *testing.T) {
	router := newValidationRouter()

	w := postJSON(router, `{"settlement_date":"2024-01-15"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "total_amount", resp.Error.Details[0].Field)
}

func TestValidation_MalformedJSON(t *testing.T) {
	router := newValidationRouter()

	w := postJSON(router, `{"settlement_date":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "Invalid request body")
	assert.Empty(t, resp.Error.Details)
}
