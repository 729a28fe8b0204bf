package domain

import (
	"time"

	userdomain "github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/user/domain"
	workspacedomain "github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/workspace/domain"
)

// Membership links a user to a workspace with a role scoped to that association.
// User and Workspace are display summaries embedded by the gateway; either may be nil.
type Membership struct {
	ID          string
	UserID      string
	WorkspaceID string
	Role        userdomain.Role
	CreatedAt   time.Time

	User      *userdomain.Summary
	Workspace *workspacedomain.Summary
}

// Pair identifies the (user, workspace) association a membership materializes.
type Pair struct {
	UserID      string
	WorkspaceID string
}

// Pair returns the (user, workspace) key of m.
func (m Membership) Pair() Pair {
	return Pair{UserID: m.UserID, WorkspaceID: m.WorkspaceID}
}
