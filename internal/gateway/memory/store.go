// Package memory provides an in-memory remote data gateway used by tests and by REMOTE_BACKEND=memory.
//
// Operations are named like their remote counterparts ("profiles.update", "workspace_members.delete").
// Any operation can be made to fail with Fail, and Hook runs a callback before an operation takes effect.
package memory

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/gateway"
	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/membership/domain"
	userdomain "github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/user/domain"
	workspacedomain "github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/workspace/domain"
)

// ErrUnavailable is a network-like failure for use with Fail.
var ErrUnavailable = errors.New("memory gateway: connection refused")

const (
	OpUsersSelect       = "profiles.select"
	OpUsersInsert       = "profiles.insert"
	OpUsersUpdate       = "profiles.update"
	OpUsersDelete       = "profiles.delete"
	OpWorkspacesSelect  = "workspaces.select"
	OpWorkspacesInsert  = "workspaces.insert"
	OpWorkspacesDelete  = "workspaces.delete"
	OpMembershipsSelect = "workspace_members.select"
	OpMembershipsInsert = "workspace_members.insert"
	OpMembershipsUpdate = "workspace_members.update"
	OpMembershipsDelete = "workspace_members.delete"
)

// Store holds users, workspaces and memberships. It is safe for concurrent use.
type Store struct {
	mu          sync.Mutex
	users       []userdomain.User
	workspaces  []workspacedomain.Workspace
	memberships []domain.Membership
	failures    map[string]error
	hooks       map[string]func(context.Context)
	calls       map[string]int
	nowF        func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		failures: make(map[string]error),
		hooks:    make(map[string]func(context.Context)),
		calls:    make(map[string]int),
		nowF:     func() time.Time { return time.Now().UTC() },
	}
}

// Gateway returns a gateway.Gateway whose repositories are backed by s.
func (s *Store) Gateway() gateway.Gateway {
	return gateway.Gateway{
		Users:       &UserRepository{s: s},
		Workspaces:  &WorkspaceRepository{s: s},
		Memberships: &MembershipRepository{s: s},
	}
}

// Fail makes every later call of op return err. A nil err clears the failure.
func (s *Store) Fail(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

// Hook runs fn before op takes effect, outside the store lock. A nil fn removes the hook.
func (s *Store) Hook(op string, fn func(context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn == nil {
		delete(s.hooks, op)
		return
	}
	s.hooks[op] = fn
}

// Calls returns how many times op was invoked, failed calls included.
func (s *Store) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// PutUser stores u directly, bypassing call accounting and failures.
func (s *Store) PutUser(u userdomain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append(s.users, u)
}

// PutWorkspace stores w directly.
func (s *Store) PutWorkspace(w workspacedomain.Workspace) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workspaces = append(s.workspaces, w)
}

// PutMembership stores m directly. Embeds are resolved on read.
func (s *Store) PutMembership(m domain.Membership) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memberships = append(s.memberships, m)
}

// begin records the call, runs the hook and reports an injected failure.
func (s *Store) begin(ctx context.Context, op string) error {
	s.mu.Lock()
	s.calls[op]++
	hook := s.hooks[op]
	s.mu.Unlock()
	if hook != nil {
		hook(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failures[op]
}

// embed resolves summaries for m. Caller must hold s.mu.
func (s *Store) embed(m domain.Membership) domain.Membership {
	m.User, m.Workspace = nil, nil
	for _, u := range s.users {
		if u.ID == m.UserID {
			sum := u.Summary()
			m.User = &sum
			break
		}
	}
	for _, w := range s.workspaces {
		if w.ID == m.WorkspaceID {
			sum := w.Summary()
			m.Workspace = &sum
			break
		}
	}
	return m
}

// UserRepository implements the user repository over a Store.
type UserRepository struct{ s *Store }

func (r *UserRepository) List(ctx context.Context) ([]userdomain.User, error) {
	if err := r.s.begin(ctx, OpUsersSelect); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	out := slices.Clone(r.s.users)
	r.s.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *UserRepository) Create(ctx context.Context, u *userdomain.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	if err := r.s.begin(ctx, OpUsersInsert); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = r.s.nowF()
	}
	r.s.users = append(r.s.users, *u)
	return nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, id string, role userdomain.Role) error {
	if err := r.s.begin(ctx, OpUsersUpdate); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.users {
		if r.s.users[i].ID == id {
			r.s.users[i].Role = role
		}
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	if err := r.s.begin(ctx, OpUsersDelete); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users = slices.DeleteFunc(r.s.users, func(u userdomain.User) bool { return u.ID == id })
	return nil
}

// WorkspaceRepository implements the workspace repository over a Store.
type WorkspaceRepository struct{ s *Store }

func (r *WorkspaceRepository) List(ctx context.Context) ([]workspacedomain.Workspace, error) {
	if err := r.s.begin(ctx, OpWorkspacesSelect); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	out := slices.Clone(r.s.workspaces)
	r.s.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *WorkspaceRepository) Create(ctx context.Context, w *workspacedomain.Workspace) error {
	if err := w.Validate(); err != nil {
		return err
	}
	if err := r.s.begin(ctx, OpWorkspacesInsert); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = r.s.nowF()
	}
	r.s.workspaces = append(r.s.workspaces, *w)
	return nil
}

func (r *WorkspaceRepository) Delete(ctx context.Context, id string) error {
	if err := r.s.begin(ctx, OpWorkspacesDelete); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.workspaces = slices.DeleteFunc(r.s.workspaces, func(w workspacedomain.Workspace) bool { return w.ID == id })
	return nil
}

// MembershipRepository implements the membership repository over a Store.
// Like the hosted schema, it does not enforce a unique (user, workspace) pair.
type MembershipRepository struct{ s *Store }

func (r *MembershipRepository) List(ctx context.Context) ([]domain.Membership, error) {
	if err := r.s.begin(ctx, OpMembershipsSelect); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.Membership, len(r.s.memberships))
	for i, m := range r.s.memberships {
		out[i] = r.s.embed(m)
	}
	return out, nil
}

func (r *MembershipRepository) Create(ctx context.Context, userID, workspaceID string, role userdomain.Role) (*domain.Membership, error) {
	if err := r.s.begin(ctx, OpMembershipsInsert); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m := domain.Membership{
		ID:          uuid.New().String(),
		UserID:      userID,
		WorkspaceID: workspaceID,
		Role:        role,
		CreatedAt:   r.s.nowF(),
	}
	r.s.memberships = append(r.s.memberships, m)
	out := r.s.embed(m)
	return &out, nil
}

func (r *MembershipRepository) UpdateRole(ctx context.Context, id string, role userdomain.Role) error {
	if err := r.s.begin(ctx, OpMembershipsUpdate); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.memberships {
		if r.s.memberships[i].ID == id {
			r.s.memberships[i].Role = role
		}
	}
	return nil
}

func (r *MembershipRepository) Delete(ctx context.Context, id string) error {
	return r.deleteWhere(ctx, func(m domain.Membership) bool { return m.ID == id })
}

func (r *MembershipRepository) DeleteByUser(ctx context.Context, userID string) error {
	return r.deleteWhere(ctx, func(m domain.Membership) bool { return m.UserID == userID })
}

func (r *MembershipRepository) DeleteByWorkspace(ctx context.Context, workspaceID string) error {
	return r.deleteWhere(ctx, func(m domain.Membership) bool { return m.WorkspaceID == workspaceID })
}

func (r *MembershipRepository) deleteWhere(ctx context.Context, match func(domain.Membership) bool) error {
	if err := r.s.begin(ctx, OpMembershipsDelete); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.memberships = slices.DeleteFunc(r.s.memberships, match)
	return nil
}
