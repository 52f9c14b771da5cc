package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithFields_DoesNotAliasParent(t *testing.T) {
	base := WithFields(context.Background(), Field{Key: "user_id", Value: "u1"})
	a := WithFields(base, Field{Key: "command", Value: "skip"})
	b := WithFields(base, Field{Key: "command", Value: "complete"})

	assert.Len(t, Fields(base), 1)
	require.Len(t, Fields(a), 2)
	require.Len(t, Fields(b), 2)
	assert.Equal(t, "skip", Fields(a)[1].Value)
	assert.Equal(t, "complete", Fields(b)[1].Value)
}

func TestLogger_IncludesContextFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := NewLoggerWithCore(core)

	ctx := WithFields(context.Background(), Field{Key: "offer_id", Value: "o1"})
	logger.Error(ctx, "transition failed", errors.New("boom"))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "transition failed", entries[0].Message)
	assert.Equal(t, "o1", entries[0].ContextMap()["offer_id"])
	assert.Equal(t, "boom", entries[0].ContextMap()["error"])
}

func TestGetRealClientIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "viewer address with port", header: "203.0.113.7:443", want: "203.0.113.7"},
		{name: "falls back to remote addr", header: "", want: "192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Request.RemoteAddr = "192.0.2.1:1234"
			if tt.header != "" {
				c.Request.Header.Set("CloudFront-Viewer-Address", tt.header)
			}
			assert.Equal(t, tt.want, GetRealClientIP(c))
		})
	}
}

func TestMiddleware_SetsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, _ := observer.New(zap.InfoLevel)

	router := gin.New()
	router.Use(Middleware(NewLoggerWithCore(core)))

	var seen []Field
	router.GET("/ping", func(c *gin.Context) {
		seen = Fields(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	require.NotEmpty(t, seen)
	assert.Equal(t, "request_id", seen[0].Key)
}

func TestMiddleware_RecoversPanic(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)

	router := gin.New()
	router.Use(Middleware(NewLoggerWithCore(core)))
	router.GET("/boom", func(c *gin.Context) {
		panic("unexpected")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotEmpty(t, logs.FilterMessage("Recovered from panic").All())
}

func TestMiddleware_LogsAuthenticatedUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)

	router := gin.New()
	router.Use(Middleware(NewLoggerWithCore(core)))
	router.GET("/api/v1/progress/:progress_id", func(c *gin.Context) {
		c.Set("User-ID", "user-42")
		c.Status(http.StatusNoContent)
	})
	router.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/progress/abc", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	entries := logs.FilterMessage("Request processed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "user-42", fields["user_id"])
	assert.Equal(t, "/api/v1/progress/:progress_id", fields["route"])
	assert.EqualValues(t, http.StatusNoContent, fields["status"])
}

func TestLogger_SetLevel(t *testing.T) {
	logger := NewLogger()

	require.NoError(t, logger.SetLevel("debug"))
	assert.True(t, logger.zapLogger.Core().Enabled(zap.DebugLevel))

	require.NoError(t, logger.SetLevel("warn"))
	assert.False(t, logger.zapLogger.Core().Enabled(zap.InfoLevel))

	assert.Error(t, logger.SetLevel("chatty"))
}
