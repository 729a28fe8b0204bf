package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/mirror"
	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/platform/httpapi"
	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/user/domain"
)

// Mirror is the subset of the mirror manager the user routes need.
type Mirror interface {
	Snapshot() mirror.State
	SetUserRole(ctx context.Context, userID string, role domain.Role) (mirror.CascadeReport, error)
	DeleteUser(ctx context.Context, userID string) (mirror.CascadeReport, error)
}

// Server serves the user routes.
type Server struct {
	mirror Mirror
}

// NewServer returns a user Server backed by m.
func NewServer(m Mirror) *Server {
	return &Server{mirror: m}
}

// Register mounts the routes on rg.
func (s *Server) Register(rg gin.IRoutes) {
	rg.GET("/users", s.ListUsers)
	rg.GET("/users/:id/workspaces", s.UserWorkspaces)
	rg.PATCH("/users/:id/role", s.SetRole)
	rg.DELETE("/users/:id", s.DeleteUser)
}

type userRow struct {
	httpapi.User
	WorkspaceCount int `json:"workspace_count"`
}

// ListUsers filters users by ?q= and ?role=.
func (s *Server) ListUsers(c *gin.Context) {
	st := s.mirror.Snapshot()
	users := st.FilterUsers(strings.TrimSpace(c.Query("q")), c.DefaultQuery("role", mirror.RoleAll))
	rows := make([]userRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, userRow{User: httpapi.FromUser(u), WorkspaceCount: st.MembershipCountByUser(u.ID)})
	}
	c.JSON(http.StatusOK, gin.H{"users": rows, "total": len(st.Users)})
}

type userWorkspace struct {
	MembershipID string            `json:"membership_id"`
	Role         string            `json:"role"`
	Workspace    httpapi.Workspace `json:"workspace"`
}

// UserWorkspaces lists the workspaces the user belongs to.
func (s *Server) UserWorkspaces(c *gin.Context) {
	st := s.mirror.Snapshot()
	u, ok := st.FindUser(c.Param("id"))
	if !ok {
		httpapi.NotFound(c, "user")
		return
	}
	list := st.WorkspacesForUser(u.ID)
	rows := make([]userWorkspace, 0, len(list))
	for _, uw := range list {
		rows = append(rows, userWorkspace{MembershipID: uw.MembershipID, Role: string(uw.Role), Workspace: httpapi.FromWorkspace(uw.Workspace)})
	}
	body := gin.H{"user": httpapi.FromUser(u), "workspaces": rows}
	if len(rows) == 0 {
		body["notice"] = httpapi.Info(fmt.Sprintf("%s is not in any workspace", u.Name))
	}
	c.JSON(http.StatusOK, body)
}

type roleRequest struct {
	Role string `json:"role"`
}

// SetRole changes the user's global role and propagates it to the user's memberships.
func (s *Server) SetRole(c *gin.Context) {
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.BadRequest(c, "invalid request body")
		return
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		httpapi.Fail(c, err, "Failed to update role")
		return
	}
	report, err := s.mirror.SetUserRole(c.Request.Context(), c.Param("id"), role)
	if err != nil {
		httpapi.Fail(c, err, httpapi.Pick(err, "Failed to update role", "Error updating role"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"cascade": httpapi.FromCascade(report),
		"notice":  httpapi.Success(fmt.Sprintf("User role updated to %s", role)),
	})
}

// DeleteUser removes the user and its memberships.
func (s *Server) DeleteUser(c *gin.Context) {
	report, err := s.mirror.DeleteUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpapi.Fail(c, err, "Error deleting user")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"cascade": httpapi.FromCascade(report),
		"notice":  httpapi.Success("User deleted successfully from system!"),
	})
}
