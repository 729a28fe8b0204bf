package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/membership/domain"
	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/mirror"
	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/platform/httpapi"
	userdomain "github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/user/domain"
)

// Mirror is the subset of the mirror manager the membership routes need.
type Mirror interface {
	Snapshot() mirror.State
	AddMembership(ctx context.Context, userID, workspaceID string, role userdomain.Role) (*domain.Membership, error)
	RemoveMembership(ctx context.Context, membershipID string) error
	SetMembershipRole(ctx context.Context, membershipID string, role userdomain.Role) error
}

// Server serves the membership routes.
type Server struct {
	mirror Mirror
}

// NewServer returns a membership Server backed by m.
func NewServer(m Mirror) *Server {
	return &Server{mirror: m}
}

// Register mounts the routes on rg.
func (s *Server) Register(rg gin.IRoutes) {
	rg.GET("/memberships", s.ListMemberships)
	rg.POST("/memberships", s.AddMembership)
	rg.PATCH("/memberships/:id/role", s.SetRole)
	rg.DELETE("/memberships/:id", s.RemoveMembership)
}

// ListMemberships filters memberships by ?q= over user name, user email and workspace name.
func (s *Server) ListMemberships(c *gin.Context) {
	st := s.mirror.Snapshot()
	views := st.FilterMemberships(strings.TrimSpace(c.Query("q")))
	rows := make([]httpapi.Membership, 0, len(views))
	for _, v := range views {
		row := httpapi.FromMembership(v.Membership)
		row.User = httpapi.FromUserSummary(&v.User)
		row.Workspace = httpapi.FromWorkspaceSummary(&v.Workspace)
		rows = append(rows, row)
	}
	c.JSON(http.StatusOK, gin.H{"memberships": rows, "total": len(st.Memberships)})
}

type addRequest struct {
	UserID      string `json:"user_id"`
	WorkspaceID string `json:"workspace_id"`
	Role        string `json:"role"`
}

// AddMembership adds a user to a workspace. An omitted role means member.
func (s *Server) AddMembership(c *gin.Context) {
	var req addRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.BadRequest(c, "invalid request body")
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		httpapi.BadRequest(c, "Please select a user first")
		return
	}
	var role userdomain.Role
	if strings.TrimSpace(req.Role) != "" {
		r, err := userdomain.ParseRole(req.Role)
		if err != nil {
			httpapi.Fail(c, err, "Error adding user to workspace")
			return
		}
		role = r
	}
	created, err := s.mirror.AddMembership(c.Request.Context(), strings.TrimSpace(req.UserID), strings.TrimSpace(req.WorkspaceID), role)
	if err != nil {
		httpapi.Fail(c, err, "Error adding user to workspace")
		return
	}
	userName, workspaceName := "User", "workspace"
	if created.User != nil && created.User.Name != "" {
		userName = created.User.Name
	}
	if created.Workspace != nil && created.Workspace.Name != "" {
		workspaceName = created.Workspace.Name
	}
	c.JSON(http.StatusCreated, gin.H{
		"membership": httpapi.FromMembership(*created),
		"notice":     httpapi.Success(fmt.Sprintf("%s added to %s as %s", userName, workspaceName, created.Role)),
	})
}

type roleRequest struct {
	Role string `json:"role"`
}

// SetRole changes the role of one membership.
func (s *Server) SetRole(c *gin.Context) {
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.BadRequest(c, "invalid request body")
		return
	}
	role, err := userdomain.ParseRole(req.Role)
	if err != nil {
		httpapi.Fail(c, err, "Error updating role")
		return
	}
	if err := s.mirror.SetMembershipRole(c.Request.Context(), c.Param("id"), role); err != nil {
		httpapi.Fail(c, err, "Error updating role")
		return
	}
	c.JSON(http.StatusOK, gin.H{"notice": httpapi.Success("Role updated successfully!")})
}

// RemoveMembership removes a user from a workspace.
func (s *Server) RemoveMembership(c *gin.Context) {
	id := c.Param("id")
	userName, workspaceName := "User", "workspace"
	st := s.mirror.Snapshot()
	if m, ok := st.FindMembership(id); ok {
		if u, ok := st.FindUser(m.UserID); ok && u.Name != "" {
			userName = u.Name
		}
		if w, ok := st.FindWorkspace(m.WorkspaceID); ok && w.Name != "" {
			workspaceName = w.Name
		}
	}
	if err := s.mirror.RemoveMembership(c.Request.Context(), id); err != nil {
		httpapi.Fail(c, err, httpapi.Pick(err, "Error removing user from workspace", "Error removing user"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"notice": httpapi.Success(fmt.Sprintf("%s removed from %s", userName, workspaceName))})
}
