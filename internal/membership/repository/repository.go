package repository

import (
	"context"

	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/membership/domain"
	userdomain "github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/user/domain"
)

// Repository defines remote persistence for workspace memberships.
// Rows returned by List and Create carry embedded user and workspace summaries when resolvable.
type Repository interface {
	List(ctx context.Context) ([]domain.Membership, error)
	// Create inserts one membership and returns the stored row. It does not check for duplicates.
	Create(ctx context.Context, userID, workspaceID string, role userdomain.Role) (*domain.Membership, error)
	UpdateRole(ctx context.Context, id string, role userdomain.Role) error
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) error
	DeleteByWorkspace(ctx context.Context, workspaceID string) error
}
