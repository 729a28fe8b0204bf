// Package mirror keeps a local copy of users, workspaces and memberships consistent with the
// remote store.
//
// The local copy is a State value. Operations on Manager first perform their remote effect through
// the gateway and, only once it is confirmed, apply a Patch to the current State. Patches never
// modify the State they receive; they return a new one sharing untouched collections.
package mirror

import (
	"slices"
	"time"

	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/membership/domain"
	userdomain "github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/user/domain"
	workspacedomain "github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/workspace/domain"
)

// State is the mirrored content of the three remote collections, in remote order.
type State struct {
	Users       []userdomain.User
	Workspaces  []workspacedomain.Workspace
	Memberships []domain.Membership
	LoadedAt    time.Time
}

// Clone returns a deep copy of s. Embedded summaries are copied too.
func (s State) Clone() State {
	out := State{
		Users:       slices.Clone(s.Users),
		Workspaces:  slices.Clone(s.Workspaces),
		Memberships: slices.Clone(s.Memberships),
		LoadedAt:    s.LoadedAt,
	}
	for i := range out.Memberships {
		out.Memberships[i] = cloneMembership(out.Memberships[i])
	}
	return out
}

func cloneMembership(m domain.Membership) domain.Membership {
	if m.User != nil {
		u := *m.User
		m.User = &u
	}
	if m.Workspace != nil {
		w := *m.Workspace
		m.Workspace = &w
	}
	return m
}
