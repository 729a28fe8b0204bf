package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/db"
	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/user/domain"
)

const (
	listUsersSQL      = `SELECT id, name, email, role, created_at FROM profiles ORDER BY created_at DESC`
	createUserSQL     = `INSERT INTO profiles (id, name, email, role, created_at) VALUES ($1, $2, $3, $4, $5)`
	updateUserRoleSQL = `UPDATE profiles SET role = $2 WHERE id = $1`
	deleteUserSQL     = `DELETE FROM profiles WHERE id = $1`
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a user repository that uses the given db for persistence.
func NewPostgresRepository(conn *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

// List returns all profiles ordered by created_at descending.
func (r *PostgresRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, listUsersSQL)
	if err != nil {
		return nil, db.Classify("profiles.select", err)
	}
	defer rows.Close()
	var out []domain.User
	for rows.Next() {
		var (
			u    domain.User
			name sql.NullString
			role string
		)
		if err := rows.Scan(&u.ID, &name, &u.Email, &role, &u.CreatedAt); err != nil {
			return nil, db.Classify("profiles.select", err)
		}
		u.Name = name.String
		u.Role = domain.Role(role)
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, db.Classify("profiles.select", err)
	}
	return out, nil
}

// Create persists u, assigning a UUID and creation time when unset.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, createUserSQL, u.ID, u.Name, u.Email, string(u.Role), u.CreatedAt)
	return db.Classify("profiles.insert", err)
}

// UpdateRole sets the global role of the profile with id. Updating a missing id is not an error.
func (r *PostgresRepository) UpdateRole(ctx context.Context, id string, role domain.Role) error {
	_, err := r.db.ExecContext(ctx, updateUserRoleSQL, id, string(role))
	return db.Classify("profiles.update", err)
}

// Delete removes the profile with id. Memberships are not touched.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, deleteUserSQL, id)
	return db.Classify("profiles.delete", err)
}
