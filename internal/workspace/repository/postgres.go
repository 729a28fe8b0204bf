package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/db"
	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/workspace/domain"
)

const (
	listWorkspacesSQL  = `SELECT id, name, created_by, created_at FROM workspaces ORDER BY created_at DESC`
	createWorkspaceSQL = `INSERT INTO workspaces (id, name, created_by, created_at) VALUES ($1, $2, $3, $4)`
	deleteWorkspaceSQL = `DELETE FROM workspaces WHERE id = $1`
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a workspace repository that uses the given db for persistence.
func NewPostgresRepository(conn *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

// List returns all workspaces ordered by created_at descending.
func (r *PostgresRepository) List(ctx context.Context) ([]domain.Workspace, error) {
	rows, err := r.db.QueryContext(ctx, listWorkspacesSQL)
	if err != nil {
		return nil, db.Classify("workspaces.select", err)
	}
	defer rows.Close()
	var out []domain.Workspace
	for rows.Next() {
		var (
			w         domain.Workspace
			createdBy sql.NullString
		)
		if err := rows.Scan(&w.ID, &w.Name, &createdBy, &w.CreatedAt); err != nil {
			return nil, db.Classify("workspaces.select", err)
		}
		w.CreatedBy = createdBy.String
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, db.Classify("workspaces.select", err)
	}
	return out, nil
}

// Create persists w, assigning a UUID and creation time when unset. An empty CreatedBy is stored as NULL.
func (r *PostgresRepository) Create(ctx context.Context, w *domain.Workspace) error {
	if err := w.Validate(); err != nil {
		return err
	}
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now().UTC()
	}
	createdBy := sql.NullString{String: w.CreatedBy, Valid: w.CreatedBy != ""}
	_, err := r.db.ExecContext(ctx, createWorkspaceSQL, w.ID, w.Name, createdBy, w.CreatedAt)
	return db.Classify("workspaces.insert", err)
}

// Delete removes the workspace with id. Memberships are not touched.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, deleteWorkspaceSQL, id)
	return db.Classify("workspaces.delete", err)
}
