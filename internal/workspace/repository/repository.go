package repository

import (
	"context"

	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/workspace/domain"
)

// Repository defines remote persistence for workspaces.
type Repository interface {
	// List returns every workspace, newest first.
	List(ctx context.Context) ([]domain.Workspace, error)
	// Create inserts w. ID and CreatedAt are assigned when empty.
	Create(ctx context.Context, w *domain.Workspace) error
	Delete(ctx context.Context, id string) error
}
