// Package handler serves the mirror-wide routes: reload and statistics.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/audit"
	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/mirror"
	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/platform/httpapi"
)

// Mirror is the subset of the mirror manager these routes need.
type Mirror interface {
	Snapshot() mirror.State
	Load(ctx context.Context) (mirror.LoadResult, error)
}

// Server serves reload and stats.
type Server struct {
	mirror Mirror
	audit  audit.AuditLogger
	now    func() time.Time
}

// NewServer returns a Server. a may be nil.
func NewServer(m Mirror, a audit.AuditLogger) *Server {
	if a == nil {
		a = audit.Nop{}
	}
	return &Server{mirror: m, audit: a, now: time.Now}
}

// Register mounts the routes on rg.
func (s *Server) Register(rg gin.IRoutes) {
	rg.POST("/reload", s.Reload)
	rg.GET("/stats", s.Stats)
}

// LoadResponse reports the collection sizes after a load.
type LoadResponse struct {
	Users       int        `json:"users"`
	Workspaces  int        `json:"workspaces"`
	Memberships int        `json:"memberships"`
	LoadedAt    *time.Time `json:"loaded_at,omitempty"`
}

// LoadNotice returns the notice for a load outcome, or nil when there is nothing to say.
func LoadNotice(res mirror.LoadResult, err error) *httpapi.Notice {
	switch {
	case err != nil:
		return &httpapi.Notice{Type: httpapi.NoticeError, Message: "Failed to load data. Please refresh."}
	case res.Empty:
		return httpapi.Info("No users found in database")
	default:
		return nil
	}
}

// Reload replaces the mirror with a fresh fetch of all three collections.
func (s *Server) Reload(c *gin.Context) {
	res, err := s.mirror.Load(c.Request.Context())
	if err != nil {
		httpapi.Fail(c, err, "Failed to load data. Please refresh.")
		return
	}
	s.audit.LogEvent(c.Request.Context(), audit.ActionReload, "mirror", "", "")
	loadedAt := s.mirror.Snapshot().LoadedAt
	body := gin.H{"load": LoadResponse{
		Users:       res.Users,
		Workspaces:  res.Workspaces,
		Memberships: res.Memberships,
		LoadedAt:    &loadedAt,
	}}
	if n := LoadNotice(res, nil); n != nil {
		body["notice"] = n
	}
	c.JSON(http.StatusOK, body)
}

type roleShare struct {
	Role    string  `json:"role"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

type workspaceRank struct {
	WorkspaceID string `json:"workspace_id"`
	Name        string `json:"name"`
	CreatorName string `json:"creator_name"`
	Members     int    `json:"members"`
}

type statsResponse struct {
	TotalUsers          int             `json:"total_users"`
	TotalWorkspaces     int             `json:"total_workspaces"`
	TotalMemberships    int             `json:"total_memberships"`
	Admins              int             `json:"admins"`
	Roles               []roleShare     `json:"roles"`
	MembersPerWorkspace int             `json:"members_per_workspace"`
	WorkspacesPerUser   int             `json:"workspaces_per_user"`
	LargestWorkspace    int             `json:"largest_workspace"`
	TopWorkspaces       []workspaceRank `json:"top_workspaces"`
	NewUsers            int             `json:"new_users"`
	NewWorkspaces       int             `json:"new_workspaces"`
}

// Stats returns the dashboard statistics computed from the current mirror.
func (s *Server) Stats(c *gin.Context) {
	st := s.mirror.Snapshot().Stats(s.now())
	out := statsResponse{
		TotalUsers:          st.TotalUsers,
		TotalWorkspaces:     st.TotalWorkspaces,
		TotalMemberships:    st.TotalMemberships,
		Admins:              st.Admins,
		Roles:               make([]roleShare, 0, len(st.Roles)),
		MembersPerWorkspace: st.MembersPerWorkspace,
		WorkspacesPerUser:   st.WorkspacesPerUser,
		LargestWorkspace:    st.LargestWorkspace,
		TopWorkspaces:       make([]workspaceRank, 0, len(st.TopWorkspaces)),
		NewUsers:            st.NewUsers,
		NewWorkspaces:       st.NewWorkspaces,
	}
	for _, r := range st.Roles {
		out.Roles = append(out.Roles, roleShare{Role: string(r.Role), Count: r.Count, Percent: r.Percent})
	}
	for _, w := range st.TopWorkspaces {
		out.TopWorkspaces = append(out.TopWorkspaces, workspaceRank(w))
	}
	c.JSON(http.StatusOK, out)
}
