package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_LevelByStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	testCases := []struct {
		status int
		want   zapcore.Level
	}{
		{http.StatusOK, zapcore.InfoLevel},
		{http.StatusConflict, zapcore.WarnLevel},
		{http.StatusBadGateway, zapcore.ErrorLevel},
	}
	for _, tc := range testCases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			r := gin.New()
			r.Use(Logger(zap.New(core)))
			r.GET("/users/:id", func(c *gin.Context) { c.Status(tc.status) })

			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users/u1", nil))

			entries := logs.All()
			if len(entries) != 1 {
				t.Fatalf("entries = %d", len(entries))
			}
			e := entries[0]
			if e.Level != tc.want {
				t.Errorf("level = %s, want %s", e.Level, tc.want)
			}
			fields := e.ContextMap()
			if fields["path"] != "/users/:id" || fields["status"] != int64(tc.status) {
				t.Errorf("fields = %v", fields)
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(Recovery(zap.New(core)))
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", w.Code)
	}
	if logs.FilterMessage("http panic").Len() != 1 {
		t.Errorf("panic not logged: %v", logs.All())
	}
}
