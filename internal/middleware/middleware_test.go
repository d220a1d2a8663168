package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestAjaxRequired(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ajax", AjaxRequired(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing header", header: "", want: http.StatusForbidden},
		{name: "wrong value", header: "fetch", want: http.StatusForbidden},
		{name: "xhr", header: "XMLHttpRequest", want: http.StatusNoContent},
		{name: "xhr lower case", header: "xmlhttprequest", want: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ajax", nil)
			if tt.header != "" {
				req.Header.Set(RequestedWithHeader, tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRequestLoggerRecordsStatusAndRecoversPanics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.InfoLevel)

	router := gin.New()
	router.Use(RequestLogger(zap.New(core)))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "request", entries[0].Message)
		assert.Equal(t, "request_panic", entries[1].Message)
		assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	}
}
