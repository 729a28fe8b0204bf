package httpapi

import (
	"time"

	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/membership/domain"
	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/mirror"
	userdomain "github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/user/domain"
	workspacedomain "github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/workspace/domain"
)

// User is the JSON form of a user.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// UserSummary is the JSON form of an embedded user.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Workspace is the JSON form of a workspace.
type Workspace struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// WorkspaceSummary is the JSON form of an embedded workspace.
type WorkspaceSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Membership is the JSON form of a membership with its embeds.
type Membership struct {
	ID          string            `json:"id"`
	UserID      string            `json:"user_id"`
	WorkspaceID string            `json:"workspace_id"`
	Role        string            `json:"role"`
	CreatedAt   time.Time         `json:"created_at"`
	User        *UserSummary      `json:"user,omitempty"`
	Workspace   *WorkspaceSummary `json:"workspace,omitempty"`
}

// Cascade is the JSON form of a mirror.CascadeReport.
type Cascade struct {
	Attempted int    `json:"attempted"`
	Failed    int    `json:"failed"`
	Error     string `json:"error,omitempty"`
}

func FromUser(u userdomain.User) User {
	return User{ID: u.ID, Name: u.Name, Email: u.Email, Role: string(u.Role), CreatedAt: u.CreatedAt}
}

func FromUsers(users []userdomain.User) []User {
	out := make([]User, 0, len(users))
	for _, u := range users {
		out = append(out, FromUser(u))
	}
	return out
}

func FromUserSummary(s *userdomain.Summary) *UserSummary {
	if s == nil {
		return nil
	}
	return &UserSummary{ID: s.ID, Name: s.Name, Email: s.Email, Role: string(s.Role)}
}

func FromWorkspace(w workspacedomain.Workspace) Workspace {
	return Workspace{ID: w.ID, Name: w.Name, CreatedBy: w.CreatedBy, CreatedAt: w.CreatedAt}
}

func FromWorkspaceSummary(s *workspacedomain.Summary) *WorkspaceSummary {
	if s == nil {
		return nil
	}
	return &WorkspaceSummary{ID: s.ID, Name: s.Name}
}

func FromMembership(m domain.Membership) Membership {
	return Membership{
		ID:          m.ID,
		UserID:      m.UserID,
		WorkspaceID: m.WorkspaceID,
		Role:        string(m.Role),
		CreatedAt:   m.CreatedAt,
		User:        FromUserSummary(m.User),
		Workspace:   FromWorkspaceSummary(m.Workspace),
	}
}

func FromCascade(r mirror.CascadeReport) Cascade {
	c := Cascade{Attempted: r.Attempted, Failed: r.Failed}
	if r.Err != nil {
		c.Error = r.Err.Error()
	}
	return c
}
