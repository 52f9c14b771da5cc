package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"matchbet-server/internal/calculator"
	"matchbet-server/internal/observability"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := New(calculator.New(calculator.DefaultConfig()), observability.NewLogger())

	router := gin.New()
	router.POST("/calculator", h.HandleCalculate)
	router.POST("/calculator/batch", h.HandleCalculateBatch)
	return router
}

func post(t *testing.T, router *gin.Engine, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return w, out
}

func qualifying(back, lay string) map[string]interface{} {
	return map[string]interface{}{
		"bet_type":   "qualifying",
		"back_stake": "10",
		"back_odds":  back,
		"lay_odds":   lay,
		"commission": "0.05",
	}
}

func TestHandleCalculate(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
		wantCode   string
		check      func(t *testing.T, out map[string]interface{})
	}{
		{
			name:       "qualifying bet",
			body:       qualifying("2.00", "2.10"),
			wantStatus: http.StatusOK,
			check: func(t *testing.T, out map[string]interface{}) {
				assert.InDelta(t, 9.76, out["lay_stake"], 1e-9)
				assert.InDelta(t, 10.73, out["liability"], 1e-9)
			},
		},
		{
			name: "free bet stake not returned",
			body: map[string]interface{}{
				"bet_type":   "free_bet_snr",
				"back_stake": 30,
				"back_odds":  4,
				"lay_odds":   4,
				"commission": 0,
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, out map[string]interface{}) {
				assert.InDelta(t, 22.5, out["lay_stake"], 1e-9)
			},
		},
		{
			name:       "unknown bet type",
			body:       map[string]interface{}{"bet_type": "accumulator"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
		},
		{
			name:       "odds below minimum",
			body:       qualifying("1.00", "2.10"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "lay below back",
			body:       qualifying("2.10", "2.00"),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "CALCULATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, out := post(t, router, "/calculator", tt.body)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, out["code"])
			}
			if tt.check != nil {
				tt.check(t, out)
			}
		})
	}
}

func TestHandleCalculateBatch(t *testing.T) {
	router := newTestRouter()

	w, out := post(t, router, "/calculator/batch", map[string]interface{}{
		"calculations": []interface{}{
			qualifying("2.00", "2.10"),
			qualifying("3.00", "3.05"),
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, out["results"], 2)
	require.NotNil(t, out["best_opportunity"])

	many := make([]interface{}, 21)
	for i := range many {
		many[i] = qualifying("2.00", "2.10")
	}
	w, out = post(t, router, "/calculator/batch", map[string]interface{}{"calculations": many})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_INPUT", out["code"])

	w, _ = post(t, router, "/calculator/batch", map[string]interface{}{"calculations": []interface{}{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
