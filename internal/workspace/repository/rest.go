package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/postgrest"
	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/workspace/domain"
)

// Table is the remote table holding workspaces.
const Table = "workspaces"

// Row is the wire shape of a workspaces row. created_by is nullable.
type Row struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	CreatedBy *string   `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// ToDomain converts the row to a domain workspace.
func (r Row) ToDomain() domain.Workspace {
	w := domain.Workspace{ID: r.ID, Name: r.Name, CreatedAt: r.CreatedAt}
	if r.CreatedBy != nil {
		w.CreatedBy = *r.CreatedBy
	}
	return w
}

// RESTRepository stores workspaces through the hosted store's PostgREST API.
type RESTRepository struct {
	client *postgrest.Client
}

// NewRESTRepository returns a workspace repository backed by client.
func NewRESTRepository(client *postgrest.Client) *RESTRepository {
	return &RESTRepository{client: client}
}

func (r *RESTRepository) List(ctx context.Context) ([]domain.Workspace, error) {
	var rows []Row
	if err := r.client.From(Table).Select("*").Order("created_at", false).Execute(ctx, &rows); err != nil {
		return nil, err
	}
	out := make([]domain.Workspace, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

func (r *RESTRepository) Create(ctx context.Context, w *domain.Workspace) error {
	if err := w.Validate(); err != nil {
		return err
	}
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now().UTC()
	}
	row := Row{ID: w.ID, Name: w.Name, CreatedAt: w.CreatedAt}
	if w.CreatedBy != "" {
		createdBy := w.CreatedBy
		row.CreatedBy = &createdBy
	}
	return r.client.From(Table).Insert([]Row{row}).Execute(ctx, nil)
}

func (r *RESTRepository) Delete(ctx context.Context, id string) error {
	return r.client.From(Table).Delete().Eq("id", id).Execute(ctx, nil)
}
