// Package server wires the HTTP API: middleware, public routes and the authenticated /api/v1 group.
package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/audit"
	healthhandler "github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/health/handler"
	membershiphandler "github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/membership/handler"
	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/mirror"
	mirrorhandler "github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/mirror/handler"
	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/security"
	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/server/middleware"
	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/session"
	sessionhandler "github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/session/handler"
	userhandler "github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/user/handler"
	workspacehandler "github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/workspace/handler"
)

// Deps holds the services behind the HTTP API.
type Deps struct {
	Mirror *mirror.Manager
	Gate   *session.Gate
	Tokens *security.TokenProvider
	// Audit records login, logout and reload events. If nil, nothing is recorded.
	Audit audit.AuditLogger
	// HealthPinger is used by /readyz (e.g. *sql.DB). If nil, readiness skips the store check.
	HealthPinger healthhandler.Pinger
	Logger       *zap.Logger
	// SecureCookie marks the session cookie Secure; set in production.
	SecureCookie bool
}

// NewRouter returns the gin engine serving the API.
//
// Route → handler mapping:
//   - /healthz, /readyz                         → internal/health/handler
//   - /api/v1/auth/login, /api/v1/auth/logout   → internal/session/handler (public)
//   - /api/v1/reload, /api/v1/stats              → internal/mirror/handler
//   - /api/v1/users...                           → internal/user/handler
//   - /api/v1/workspaces...                      → internal/workspace/handler
//   - /api/v1/memberships...                     → internal/membership/handler
func NewRouter(deps Deps) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	r := gin.New()
	r.Use(middleware.Recovery(log), middleware.Logger(log), middleware.ClientIP())

	healthhandler.NewServer(deps.HealthPinger).Register(r)

	public := r.Group("/api/v1")
	sessionhandler.NewServer(deps.Gate, deps.Tokens, deps.Mirror,
		sessionhandler.WithAudit(deps.Audit),
		sessionhandler.WithLogger(log),
		sessionhandler.WithSecureCookie(deps.SecureCookie),
	).Register(public)

	api := r.Group("/api/v1", middleware.Auth(deps.Tokens))
	mirrorhandler.NewServer(deps.Mirror, deps.Audit).Register(api)
	userhandler.NewServer(deps.Mirror).Register(api)
	workspacehandler.NewServer(deps.Mirror).Register(api)
	membershiphandler.NewServer(deps.Mirror).Register(api)
	return r
}
