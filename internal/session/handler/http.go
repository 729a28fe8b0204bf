package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/audit"
	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/mirror"
	mirrorhandler "github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/mirror/handler"
	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/platform/httpapi"
	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/security"
	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/session"
)

// Loader fetches the mirror after a successful login.
type Loader interface {
	Load(ctx context.Context) (mirror.LoadResult, error)
}

// Server serves login and logout.
type Server struct {
	gate   *session.Gate
	tokens *security.TokenProvider
	loader Loader
	audit  audit.AuditLogger
	log    *zap.Logger
	secure bool
}

// Option configures a Server.
type Option func(*Server)

// WithSecureCookie marks the session cookie Secure.
func WithSecureCookie(secure bool) Option {
	return func(s *Server) { s.secure = secure }
}

// WithAudit records login and logout events.
func WithAudit(a audit.AuditLogger) Option {
	return func(s *Server) {
		if a != nil {
			s.audit = a
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// NewServer returns a session Server.
func NewServer(gate *session.Gate, tokens *security.TokenProvider, loader Loader, opts ...Option) *Server {
	s := &Server{gate: gate, tokens: tokens, loader: loader, audit: audit.Nop{}, log: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Register mounts the routes on rg.
func (s *Server) Register(rg gin.IRoutes) {
	rg.POST("/auth/login", s.Login)
	rg.POST("/auth/logout", s.Logout)
}

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string                      `json:"token"`
	ExpiresAt time.Time                   `json:"expires_at"`
	Load      *mirrorhandler.LoadResponse `json:"load,omitempty"`
	LoadError string                      `json:"load_error,omitempty"`
	Notice    *httpapi.Notice             `json:"notice"`
}

// Login checks the admin password, issues a session token and loads the mirror. A failed load
// does not fail the login.
func (s *Server) Login(c *gin.Context) {
	ctx := c.Request.Context()
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || !s.gate.Check(req.Password) {
		s.audit.LogEvent(ctx, audit.ActionLoginFailure, "session", "", "")
		c.AbortWithStatusJSON(http.StatusUnauthorized, httpapi.ErrorResponse{
			Error:  "Invalid admin password",
			Notice: &httpapi.Notice{Type: httpapi.NoticeError, Message: "Invalid password. Please try again."},
		})
		return
	}

	token, jti, expiresAt, err := s.tokens.Issue()
	if err != nil {
		s.log.Error("session: issue token", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, httpapi.ErrorResponse{Error: "failed to issue session"})
		return
	}
	s.audit.LogEvent(ctx, audit.ActionLoginSuccess, "session", jti, "")
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, token, int(time.Until(expiresAt).Seconds()), "/", "", s.secure, true)

	resp := loginResponse{Token: token, ExpiresAt: expiresAt, Notice: httpapi.Success("Welcome to Admin Dashboard!")}
	res, err := s.loader.Load(ctx)
	if err != nil {
		resp.LoadError = err.Error()
	} else {
		resp.Load = &mirrorhandler.LoadResponse{Users: res.Users, Workspaces: res.Workspaces, Memberships: res.Memberships}
	}
	if n := mirrorhandler.LoadNotice(res, err); n != nil {
		resp.Notice = n
	}
	c.JSON(http.StatusOK, resp)
}

// Logout clears the session cookie. Tokens are stateless and stay valid until they expire.
func (s *Server) Logout(c *gin.Context) {
	s.audit.LogEvent(c.Request.Context(), audit.ActionLogout, "session", "", "")
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, "", -1, "/", "", s.secure, true)
	c.JSON(http.StatusOK, gin.H{"notice": httpapi.Info("Logged out successfully")})
}
