package logger_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yashrajoria/food-ordering-backend/logger"
)

func TestRequestLogger_EmitsOneEntryPerRequest(t *testing.T) {
	core, observed := observer.New(zap.InfoLevel)
	logger.Log = zap.New(core)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(logger.RequestLogger())
	r.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping?x=1", nil)
	req.Header.Set("X-Request-ID", "req-42")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)

	entries := observed.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "Request completed", entries[0].Message)

	fields := entries[0].ContextMap()
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, http.MethodGet, fields["method"])
	assert.Equal(t, "/ping", fields["path"])
	assert.Equal(t, int64(http.StatusNoContent), fields["status"])
}
