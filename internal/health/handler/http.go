package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger checks a backing store, e.g. *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Server serves liveness and readiness.
type Server struct {
	pinger Pinger
}

// NewServer returns a health Server. pinger may be nil; then readiness skips the store check.
func NewServer(pinger Pinger) *Server {
	return &Server{pinger: pinger}
}

// Register mounts the routes on r.
func (s *Server) Register(r gin.IRoutes) {
	r.GET("/healthz", s.Live)
	r.GET("/readyz", s.Ready)
}

// Live always reports ok while the process serves requests.
func (s *Server) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready pings the store when one is configured.
func (s *Server) Ready(c *gin.Context) {
	if s.pinger != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.pinger.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
