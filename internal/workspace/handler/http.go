package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/mirror"
	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/platform/httpapi"
)

// Mirror is the subset of the mirror manager the workspace routes need.
type Mirror interface {
	Snapshot() mirror.State
	DeleteWorkspace(ctx context.Context, workspaceID string) (mirror.CascadeReport, error)
}

// Server serves the workspace routes.
type Server struct {
	mirror Mirror
}

// NewServer returns a workspace Server backed by m.
func NewServer(m Mirror) *Server {
	return &Server{mirror: m}
}

// Register mounts the routes on rg.
func (s *Server) Register(rg gin.IRoutes) {
	rg.GET("/workspaces", s.ListWorkspaces)
	rg.GET("/workspaces/:id/members", s.Members)
	rg.GET("/workspaces/:id/candidates", s.Candidates)
	rg.DELETE("/workspaces/:id", s.DeleteWorkspace)
}

type workspaceRow struct {
	httpapi.Workspace
	CreatorName string `json:"creator_name"`
	MemberCount int    `json:"member_count"`
}

// ListWorkspaces filters workspaces by ?q=.
func (s *Server) ListWorkspaces(c *gin.Context) {
	st := s.mirror.Snapshot()
	list := st.FilterWorkspaces(strings.TrimSpace(c.Query("q")))
	rows := make([]workspaceRow, 0, len(list))
	for _, w := range list {
		rows = append(rows, workspaceRow{
			Workspace:   httpapi.FromWorkspace(w),
			CreatorName: st.CreatorName(w.CreatedBy),
			MemberCount: st.MembershipCountByWorkspace(w.ID),
		})
	}
	c.JSON(http.StatusOK, gin.H{"workspaces": rows, "total": len(st.Workspaces)})
}

type member struct {
	MembershipID string               `json:"membership_id"`
	UserID       string               `json:"user_id"`
	Role         string               `json:"role"`
	Name         string               `json:"name"`
	User         *httpapi.UserSummary `json:"user"`
}

// Members lists the workspace's members. Members that cannot be resolved are named Unknown.
func (s *Server) Members(c *gin.Context) {
	st := s.mirror.Snapshot()
	w, ok := st.FindWorkspace(c.Param("id"))
	if !ok {
		httpapi.NotFound(c, "workspace")
		return
	}
	list := st.MembersOfWorkspace(w.ID)
	rows := make([]member, 0, len(list))
	for _, m := range list {
		name := mirror.UnknownName
		if m.User != nil && m.User.Name != "" {
			name = m.User.Name
		}
		rows = append(rows, member{
			MembershipID: m.MembershipID,
			UserID:       m.UserID,
			Role:         string(m.Role),
			Name:         name,
			User:         httpapi.FromUserSummary(m.User),
		})
	}
	c.JSON(http.StatusOK, gin.H{"workspace": httpapi.FromWorkspace(w), "members": rows})
}

// Candidates lists users that can still be added to the workspace.
func (s *Server) Candidates(c *gin.Context) {
	st := s.mirror.Snapshot()
	w, ok := st.FindWorkspace(c.Param("id"))
	if !ok {
		httpapi.NotFound(c, "workspace")
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": httpapi.FromUsers(st.CandidatesForWorkspace(w.ID))})
}

// DeleteWorkspace removes the workspace and its memberships.
func (s *Server) DeleteWorkspace(c *gin.Context) {
	id := c.Param("id")
	name := id
	if w, ok := s.mirror.Snapshot().FindWorkspace(id); ok {
		name = w.Name
	}
	report, err := s.mirror.DeleteWorkspace(c.Request.Context(), id)
	if err != nil {
		httpapi.Fail(c, err, "Error deleting workspace")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"cascade": httpapi.FromCascade(report),
		"notice":  httpapi.Success(fmt.Sprintf(`Workspace "%s" deleted successfully!`, name)),
	})
}
