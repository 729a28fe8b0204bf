// Package seed loads a YAML fixture of users, workspaces and memberships into a gateway.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/gateway"
	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/membership/domain"
	userdomain "github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/user/domain"
	workspacedomain "github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/workspace/domain"
)

// Fixture is the seed file layout. Users and workspaces are referenced by a fixture-local key.
type Fixture struct {
	Users       []User       `yaml:"users"`
	Workspaces  []Workspace  `yaml:"workspaces"`
	Memberships []Membership `yaml:"memberships"`
}

type User struct {
	Key   string `yaml:"key"`
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
	Role  string `yaml:"role"`
}

type Workspace struct {
	Key       string `yaml:"key"`
	Name      string `yaml:"name"`
	CreatedBy string `yaml:"created_by"`
}

type Membership struct {
	User      string `yaml:"user"`
	Workspace string `yaml:"workspace"`
	Role      string `yaml:"role"`
}

// Result counts what Apply created and skipped.
type Result struct {
	UsersCreated       int
	WorkspacesCreated  int
	MembershipsCreated int
	Skipped            int
}

// LoadFile reads and validates a fixture.
func LoadFile(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and validates a fixture. Unknown fields are rejected.
func Parse(data []byte) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("seed: decode: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks roles, keys and references.
func (f *Fixture) Validate() error {
	users := map[string]bool{}
	for i, u := range f.Users {
		if u.Key == "" || u.Email == "" {
			return fmt.Errorf("seed: users[%d]: key and email are required", i)
		}
		if users[u.Key] {
			return fmt.Errorf("seed: users[%d]: duplicate key %q", i, u.Key)
		}
		users[u.Key] = true
		if u.Role != "" {
			if _, err := userdomain.ParseRole(u.Role); err != nil {
				return fmt.Errorf("seed: users[%d]: %w", i, err)
			}
		}
	}
	workspaces := map[string]bool{}
	for i, w := range f.Workspaces {
		if w.Key == "" || w.Name == "" {
			return fmt.Errorf("seed: workspaces[%d]: key and name are required", i)
		}
		if workspaces[w.Key] {
			return fmt.Errorf("seed: workspaces[%d]: duplicate key %q", i, w.Key)
		}
		workspaces[w.Key] = true
		if w.CreatedBy != "" && !users[w.CreatedBy] {
			return fmt.Errorf("seed: workspaces[%d]: unknown creator %q", i, w.CreatedBy)
		}
	}
	for i, m := range f.Memberships {
		if !users[m.User] || !workspaces[m.Workspace] {
			return fmt.Errorf("seed: memberships[%d]: unknown user %q or workspace %q", i, m.User, m.Workspace)
		}
		if m.Role != "" {
			if _, err := userdomain.ParseRole(m.Role); err != nil {
				return fmt.Errorf("seed: memberships[%d]: %w", i, err)
			}
		}
	}
	return nil
}

// Apply inserts the fixture through gw. Users matching an existing email and workspaces matching
// an existing name are reused; memberships whose pair already exists are skipped.
func Apply(ctx context.Context, gw gateway.Gateway, f *Fixture, log *zap.Logger) (Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var res Result

	existingUsers, err := gw.Users.List(ctx)
	if err != nil {
		return res, fmt.Errorf("seed: list users: %w", err)
	}
	byEmail := make(map[string]string, len(existingUsers))
	for _, u := range existingUsers {
		byEmail[strings.ToLower(u.Email)] = u.ID
	}
	userIDs := make(map[string]string, len(f.Users))
	for _, fu := range f.Users {
		if id, ok := byEmail[strings.ToLower(fu.Email)]; ok {
			userIDs[fu.Key] = id
			res.Skipped++
			continue
		}
		role, _ := userdomain.ParseRole(fu.Role)
		u := &userdomain.User{Name: fu.Name, Email: fu.Email, Role: role}
		if err := gw.Users.Create(ctx, u); err != nil {
			return res, fmt.Errorf("seed: create user %q: %w", fu.Email, err)
		}
		userIDs[fu.Key] = u.ID
		res.UsersCreated++
	}

	existingWorkspaces, err := gw.Workspaces.List(ctx)
	if err != nil {
		return res, fmt.Errorf("seed: list workspaces: %w", err)
	}
	byName := make(map[string]string, len(existingWorkspaces))
	for _, w := range existingWorkspaces {
		byName[w.Name] = w.ID
	}
	workspaceIDs := make(map[string]string, len(f.Workspaces))
	for _, fw := range f.Workspaces {
		if id, ok := byName[fw.Name]; ok {
			workspaceIDs[fw.Key] = id
			res.Skipped++
			continue
		}
		w := &workspacedomain.Workspace{Name: fw.Name, CreatedBy: userIDs[fw.CreatedBy]}
		if err := gw.Workspaces.Create(ctx, w); err != nil {
			return res, fmt.Errorf("seed: create workspace %q: %w", fw.Name, err)
		}
		workspaceIDs[fw.Key] = w.ID
		res.WorkspacesCreated++
	}

	existing, err := gw.Memberships.List(ctx)
	if err != nil {
		return res, fmt.Errorf("seed: list memberships: %w", err)
	}
	pairs := make(map[domain.Pair]bool, len(existing))
	for _, m := range existing {
		pairs[m.Pair()] = true
	}
	for _, fm := range f.Memberships {
		pair := domain.Pair{UserID: userIDs[fm.User], WorkspaceID: workspaceIDs[fm.Workspace]}
		if pairs[pair] {
			res.Skipped++
			continue
		}
		role := userdomain.RoleMember
		if fm.Role != "" {
			role, _ = userdomain.ParseRole(fm.Role)
		}
		if _, err := gw.Memberships.Create(ctx, pair.UserID, pair.WorkspaceID, role); err != nil {
			return res, fmt.Errorf("seed: add %s to %s: %w", fm.User, fm.Workspace, err)
		}
		pairs[pair] = true
		res.MembershipsCreated++
	}

	log.Info("seed applied",
		zap.Int("users", res.UsersCreated),
		zap.Int("workspaces", res.WorkspacesCreated),
		zap.Int("memberships", res.MembershipsCreated),
		zap.Int("skipped", res.Skipped))
	return res, nil
}
