package repository

import (
	"context"

	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/user/domain"
)

// Repository defines remote persistence for user profiles.
type Repository interface {
	// List returns every user, newest first.
	List(ctx context.Context) ([]domain.User, error)
	// Create inserts u. ID and CreatedAt are assigned when empty.
	Create(ctx context.Context, u *domain.User) error
	UpdateRole(ctx context.Context, id string, role domain.Role) error
	Delete(ctx context.Context, id string) error
}
