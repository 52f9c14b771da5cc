package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"matchbet-server/internal/clock"
	"matchbet-server/internal/jobs/workers"
	"matchbet-server/internal/observability"
	"matchbet-server/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLister struct {
	due       []store.ExpirableProgress
	err       error
	lastLimit int
}

func (s *stubLister) ListExpirableProgress(_ context.Context, _ time.Time, limit int) ([]store.ExpirableProgress, error) {
	s.lastLimit = limit
	return s.due, s.err
}

type stubExpirer struct{}

func (stubExpirer) MarkExpired(_ context.Context, userID, offerID uuid.UUID) (store.UserOfferProgress, error) {
	return store.UserOfferProgress{UserID: userID, OfferID: offerID, Stage: store.StageExpired}, nil
}

func newRouter(lister *stubLister) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := observability.NewLogger()
	clk := clock.NewFixed(time.Date(2026, 6, 1, 3, 0, 0, 0, time.UTC))
	worker := workers.NewExpiryWorker(lister, stubExpirer{}, clk, 50, logger)
	h := New(nil, worker, clk, logger)

	r := gin.New()
	r.POST("/admin/jobs/expiry-sweep", h.HandleTriggerExpirySweep)
	return r
}

func TestHandleTriggerExpirySweep_Inline(t *testing.T) {
	lister := &stubLister{due: []store.ExpirableProgress{
		{ProgressID: uuid.New(), UserID: uuid.New(), OfferID: uuid.New(), ExpiryDays: 7},
		{ProgressID: uuid.New(), UserID: uuid.New(), OfferID: uuid.New(), ExpiryDays: 30},
	}}
	r := newRouter(lister)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/jobs/expiry-sweep", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var result workers.SweepResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, workers.SweepResult{Scanned: 2, Expired: 2}, result)
	assert.Equal(t, 50, lister.lastLimit)
}

func TestHandleTriggerExpirySweep_BatchOverride(t *testing.T) {
	lister := &stubLister{}
	r := newRouter(lister)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/jobs/expiry-sweep", bytes.NewBufferString(`{"batch_size":5}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, lister.lastLimit)
}

func TestHandleTriggerExpirySweep_Errors(t *testing.T) {
	t.Run("batch too large", func(t *testing.T) {
		r := newRouter(&stubLister{})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/admin/jobs/expiry-sweep", bytes.NewBufferString(`{"batch_size":10000}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("store failure", func(t *testing.T) {
		r := newRouter(&stubLister{err: errors.New("connection refused")})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/jobs/expiry-sweep", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
