package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/db"
	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/membership/domain"
	userdomain "github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/user/domain"
	workspacedomain "github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/workspace/domain"
)

const selectMembershipSQL = `
SELECT m.id, m.user_id, m.workspace_id, m.role, m.created_at,
       p.id, p.name, p.email, p.role,
       w.id, w.name
FROM workspace_members m
LEFT JOIN profiles p ON p.id = m.user_id
LEFT JOIN workspaces w ON w.id = m.workspace_id`

// createMembershipSQL inserts and returns the row with its embeds in one
// statement, so a failed read-back can never follow a committed insert.
const createMembershipSQL = `
WITH m AS (
  INSERT INTO workspace_members (id, user_id, workspace_id, role, created_at)
  VALUES ($1, $2, $3, $4, $5)
  RETURNING id, user_id, workspace_id, role, created_at
)
SELECT m.id, m.user_id, m.workspace_id, m.role, m.created_at,
       p.id, p.name, p.email, p.role,
       w.id, w.name
FROM m
LEFT JOIN profiles p ON p.id = m.user_id
LEFT JOIN workspaces w ON w.id = m.workspace_id`

const (
	listMembershipsSQL   = selectMembershipSQL
	updateMemberRoleSQL  = `UPDATE workspace_members SET role = $2 WHERE id = $1`
	deleteMembershipSQL  = `DELETE FROM workspace_members WHERE id = $1`
	deleteByUserSQL      = `DELETE FROM workspace_members WHERE user_id = $1`
	deleteByWorkspaceSQL = `DELETE FROM workspace_members WHERE workspace_id = $1`
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a membership repository that uses the given db for persistence.
func NewPostgresRepository(conn *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMembership(s scanner) (domain.Membership, error) {
	var (
		m                           domain.Membership
		role                        string
		userID, userName, userEmail sql.NullString
		userRole                    sql.NullString
		workspaceID, workspaceName  sql.NullString
	)
	if err := s.Scan(&m.ID, &m.UserID, &m.WorkspaceID, &role, &m.CreatedAt,
		&userID, &userName, &userEmail, &userRole,
		&workspaceID, &workspaceName); err != nil {
		return domain.Membership{}, err
	}
	m.Role = userdomain.Role(role)
	if userID.Valid {
		m.User = &userdomain.Summary{
			ID: userID.String, Name: userName.String, Email: userEmail.String, Role: userdomain.Role(userRole.String),
		}
	}
	if workspaceID.Valid {
		m.Workspace = &workspacedomain.Summary{ID: workspaceID.String, Name: workspaceName.String}
	}
	return m, nil
}

// List returns all memberships joined with their user and workspace summaries.
func (r *PostgresRepository) List(ctx context.Context) ([]domain.Membership, error) {
	rows, err := r.db.QueryContext(ctx, listMembershipsSQL)
	if err != nil {
		return nil, db.Classify("workspace_members.select", err)
	}
	defer rows.Close()
	var out []domain.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, db.Classify("workspace_members.select", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, db.Classify("workspace_members.select", err)
	}
	return out, nil
}

// Create inserts a membership with a new UUID and returns it with its embeds.
func (r *PostgresRepository) Create(ctx context.Context, userID, workspaceID string, role userdomain.Role) (*domain.Membership, error) {
	id := uuid.New().String()
	row := r.db.QueryRowContext(ctx, createMembershipSQL, id, userID, workspaceID, string(role), time.Now().UTC())
	m, err := scanMembership(row)
	if err != nil {
		return nil, db.Classify("workspace_members.insert", err)
	}
	return &m, nil
}

func (r *PostgresRepository) UpdateRole(ctx context.Context, id string, role userdomain.Role) error {
	_, err := r.db.ExecContext(ctx, updateMemberRoleSQL, id, string(role))
	return db.Classify("workspace_members.update", err)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, deleteMembershipSQL, id)
	return db.Classify("workspace_members.delete", err)
}

func (r *PostgresRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, deleteByUserSQL, userID)
	return db.Classify("workspace_members.delete", err)
}

func (r *PostgresRepository) DeleteByWorkspace(ctx context.Context, workspaceID string) error {
	_, err := r.db.ExecContext(ctx, deleteByWorkspaceSQL, workspaceID)
	return db.Classify("workspace_members.delete", err)
}
