package repository

import (
	"context"
	"time"

	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/membership/domain"
	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/postgrest"
	userdomain "github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/user/domain"
	workspacedomain "github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/workspace/domain"
)

// Table is the remote table holding memberships.
const Table = "workspace_members"

// EmbedColumns selects a membership row with its user and workspace summaries.
const EmbedColumns = "*,user:profiles(id,name,email,role),workspace:workspaces(id,name)"

// Row is the wire shape of a workspace_members row with optional embeds.
type Row struct {
	ID          string        `json:"id,omitempty"`
	UserID      string        `json:"user_id"`
	WorkspaceID string        `json:"workspace_id"`
	Role        string        `json:"role"`
	CreatedAt   *time.Time    `json:"created_at,omitempty"`
	User        *userEmbed    `json:"user,omitempty"`
	Workspace   *workspaceRef `json:"workspace,omitempty"`
}

type userEmbed struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type workspaceRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ToDomain converts the row to a domain membership.
func (r Row) ToDomain() domain.Membership {
	m := domain.Membership{
		ID:          r.ID,
		UserID:      r.UserID,
		WorkspaceID: r.WorkspaceID,
		Role:        userdomain.Role(r.Role),
	}
	if r.CreatedAt != nil {
		m.CreatedAt = *r.CreatedAt
	}
	if r.User != nil {
		m.User = &userdomain.Summary{ID: r.User.ID, Name: r.User.Name, Email: r.User.Email, Role: userdomain.Role(r.User.Role)}
	}
	if r.Workspace != nil {
		m.Workspace = &workspacedomain.Summary{ID: r.Workspace.ID, Name: r.Workspace.Name}
	}
	return m
}

// RESTRepository stores memberships through the hosted store's PostgREST API.
type RESTRepository struct {
	client *postgrest.Client
}

// NewRESTRepository returns a membership repository backed by client.
func NewRESTRepository(client *postgrest.Client) *RESTRepository {
	return &RESTRepository{client: client}
}

func (r *RESTRepository) List(ctx context.Context) ([]domain.Membership, error) {
	var rows []Row
	if err := r.client.From(Table).Select(EmbedColumns).Execute(ctx, &rows); err != nil {
		return nil, err
	}
	out := make([]domain.Membership, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// Create lets the store assign id and created_at and returns the representation with embeds.
func (r *RESTRepository) Create(ctx context.Context, userID, workspaceID string, role userdomain.Role) (*domain.Membership, error) {
	in := []Row{{UserID: userID, WorkspaceID: workspaceID, Role: string(role)}}
	var out Row
	if err := r.client.From(Table).Insert(in).Select(EmbedColumns).Single().Execute(ctx, &out); err != nil {
		return nil, err
	}
	m := out.ToDomain()
	return &m, nil
}

func (r *RESTRepository) UpdateRole(ctx context.Context, id string, role userdomain.Role) error {
	return r.client.From(Table).Update(map[string]string{"role": string(role)}).Eq("id", id).Execute(ctx, nil)
}

func (r *RESTRepository) Delete(ctx context.Context, id string) error {
	return r.client.From(Table).Delete().Eq("id", id).Execute(ctx, nil)
}

func (r *RESTRepository) DeleteByUser(ctx context.Context, userID string) error {
	return r.client.From(Table).Delete().Eq("user_id", userID).Execute(ctx, nil)
}

func (r *RESTRepository) DeleteByWorkspace(ctx context.Context, workspaceID string) error {
	return r.client.From(Table).Delete().Eq("workspace_id", workspaceID).Execute(ctx, nil)
}
