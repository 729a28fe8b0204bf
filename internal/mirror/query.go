package mirror

import (
	"strings"

	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/membership/domain"
	userdomain "github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/user/domain"
	workspacedomain "github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/workspace/domain"
)

// UnknownName is shown for creators and members that cannot be resolved.
const UnknownName = "Unknown"

// RoleAll is the role filter wildcard.
const RoleAll = "all"

// UserWorkspace is a workspace a user belongs to, with the membership that links them.
type UserWorkspace struct {
	MembershipID string
	Role         userdomain.Role
	Workspace    workspacedomain.Workspace
}

// WorkspaceMember is a member of a workspace. User is nil when neither the mirror nor the embed knows the user.
type WorkspaceMember struct {
	MembershipID string
	UserID       string
	Role         userdomain.Role
	User         *userdomain.Summary
}

// MembershipView is a membership with both sides resolved.
type MembershipView struct {
	Membership domain.Membership
	User       userdomain.Summary
	Workspace  workspacedomain.Summary
}

func (s State) FindUser(id string) (userdomain.User, bool) {
	for _, u := range s.Users {
		if u.ID == id {
			return u, true
		}
	}
	return userdomain.User{}, false
}

func (s State) FindWorkspace(id string) (workspacedomain.Workspace, bool) {
	for _, w := range s.Workspaces {
		if w.ID == id {
			return w, true
		}
	}
	return workspacedomain.Workspace{}, false
}

func (s State) FindMembership(id string) (domain.Membership, bool) {
	for _, m := range s.Memberships {
		if m.ID == id {
			return m, true
		}
	}
	return domain.Membership{}, false
}

// HasMembership reports whether the pair is already materialized.
func (s State) HasMembership(p domain.Pair) bool {
	for _, m := range s.Memberships {
		if m.Pair() == p {
			return true
		}
	}
	return false
}

// MembershipCountByUser counts memberships referencing userID.
func (s State) MembershipCountByUser(userID string) int {
	n := 0
	for _, m := range s.Memberships {
		if m.UserID == userID {
			n++
		}
	}
	return n
}

// MembershipCountByWorkspace counts memberships referencing workspaceID.
func (s State) MembershipCountByWorkspace(workspaceID string) int {
	n := 0
	for _, m := range s.Memberships {
		if m.WorkspaceID == workspaceID {
			n++
		}
	}
	return n
}

// WorkspacesForUser joins the user's memberships with mirrored workspaces. Memberships whose
// workspace is not mirrored are left out.
func (s State) WorkspacesForUser(userID string) []UserWorkspace {
	var out []UserWorkspace
	for _, m := range s.Memberships {
		if m.UserID != userID {
			continue
		}
		w, ok := s.FindWorkspace(m.WorkspaceID)
		if !ok {
			continue
		}
		out = append(out, UserWorkspace{MembershipID: m.ID, Role: m.Role, Workspace: w})
	}
	return out
}

// MembersOfWorkspace joins the workspace's memberships with mirrored users, falling back to the embedded summary.
func (s State) MembersOfWorkspace(workspaceID string) []WorkspaceMember {
	var out []WorkspaceMember
	for _, m := range s.Memberships {
		if m.WorkspaceID != workspaceID {
			continue
		}
		out = append(out, WorkspaceMember{
			MembershipID: m.ID,
			UserID:       m.UserID,
			Role:         m.Role,
			User:         s.memberUser(m),
		})
	}
	return out
}

// CreatorName resolves a workspace creator to a display name.
func (s State) CreatorName(userID string) string {
	if u, ok := s.FindUser(userID); ok && u.Name != "" {
		return u.Name
	}
	return UnknownName
}

// FilterUsers returns users whose name or email contains query (case-insensitive) and whose role
// equals role. An empty role or RoleAll matches every role.
func (s State) FilterUsers(query, role string) []userdomain.User {
	out := make([]userdomain.User, 0, len(s.Users))
	for _, u := range s.Users {
		if !matches(query, u.Name, u.Email) {
			continue
		}
		if role != "" && role != RoleAll && string(u.Role) != role {
			continue
		}
		out = append(out, u)
	}
	return out
}

// FilterWorkspaces returns workspaces whose name contains query (case-insensitive).
func (s State) FilterWorkspaces(query string) []workspacedomain.Workspace {
	out := make([]workspacedomain.Workspace, 0, len(s.Workspaces))
	for _, w := range s.Workspaces {
		if matches(query, w.Name) {
			out = append(out, w)
		}
	}
	return out
}

// FilterMemberships returns memberships whose user name, user email or workspace name contains query.
// Memberships whose user or workspace cannot be resolved are never returned.
func (s State) FilterMemberships(query string) []MembershipView {
	out := make([]MembershipView, 0, len(s.Memberships))
	for _, m := range s.Memberships {
		u := s.userSummary(m)
		w := s.workspaceSummary(m)
		if u == nil || w == nil {
			continue
		}
		if matches(query, u.Name, u.Email, w.Name) {
			out = append(out, MembershipView{Membership: m, User: *u, Workspace: *w})
		}
	}
	return out
}

// CandidatesForWorkspace returns users that are not yet members of workspaceID.
func (s State) CandidatesForWorkspace(workspaceID string) []userdomain.User {
	out := make([]userdomain.User, 0, len(s.Users))
	for _, u := range s.Users {
		if !s.HasMembership(domain.Pair{UserID: u.ID, WorkspaceID: workspaceID}) {
			out = append(out, u)
		}
	}
	return out
}

// userSummary prefers the embedded summary and falls back to the mirrored user.
func (s State) userSummary(m domain.Membership) *userdomain.Summary {
	if m.User != nil {
		u := *m.User
		return &u
	}
	if u, ok := s.FindUser(m.UserID); ok {
		sum := u.Summary()
		return &sum
	}
	return nil
}

// memberUser prefers the mirrored user and falls back to the embedded summary.
func (s State) memberUser(m domain.Membership) *userdomain.Summary {
	if u, ok := s.FindUser(m.UserID); ok {
		sum := u.Summary()
		return &sum
	}
	if m.User != nil {
		u := *m.User
		return &u
	}
	return nil
}

func (s State) workspaceSummary(m domain.Membership) *workspacedomain.Summary {
	if m.Workspace != nil {
		w := *m.Workspace
		return &w
	}
	if w, ok := s.FindWorkspace(m.WorkspaceID); ok {
		sum := w.Summary()
		return &sum
	}
	return nil
}

// matches reports whether any field contains query, ignoring case. An empty query matches everything.
func matches(query string, fields ...string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
