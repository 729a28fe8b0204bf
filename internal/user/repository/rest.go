package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/postgrest"
	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/user/domain"
)

// Table is the remote table holding user profiles.
const Table = "profiles"

// Row is the wire shape of a profiles row.
type Row struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// ToDomain converts the row to a domain user.
func (r Row) ToDomain() domain.User {
	return domain.User{ID: r.ID, Name: r.Name, Email: r.Email, Role: domain.Role(r.Role), CreatedAt: r.CreatedAt}
}

// RESTRepository stores profiles through the hosted store's PostgREST API.
type RESTRepository struct {
	client *postgrest.Client
}

// NewRESTRepository returns a user repository backed by client.
func NewRESTRepository(client *postgrest.Client) *RESTRepository {
	return &RESTRepository{client: client}
}

func (r *RESTRepository) List(ctx context.Context) ([]domain.User, error) {
	var rows []Row
	if err := r.client.From(Table).Select("*").Order("created_at", false).Execute(ctx, &rows); err != nil {
		return nil, err
	}
	out := make([]domain.User, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

func (r *RESTRepository) Create(ctx context.Context, u *domain.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	row := Row{ID: u.ID, Name: u.Name, Email: u.Email, Role: string(u.Role), CreatedAt: u.CreatedAt}
	return r.client.From(Table).Insert([]Row{row}).Execute(ctx, nil)
}

func (r *RESTRepository) UpdateRole(ctx context.Context, id string, role domain.Role) error {
	return r.client.From(Table).Update(map[string]string{"role": string(role)}).Eq("id", id).Execute(ctx, nil)
}

func (r *RESTRepository) Delete(ctx context.Context, id string) error {
	return r.client.From(Table).Delete().Eq("id", id).Execute(ctx, nil)
}
