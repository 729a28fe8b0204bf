package mirror

import (
	"slices"

	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/membership/domain"
	userdomain "github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/user/domain"
	workspacedomain "github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/workspace/domain"
)

// Patch is a pure, idempotent local update: Patch(Patch(s)) equals Patch(s).
type Patch func(State) State

// Compose applies patches left to right.
func Compose(patches ...Patch) Patch {
	return func(s State) State {
		for _, p := range patches {
			s = p(s)
		}
		return s
	}
}

// ReplaceAll discards the current state in favor of next.
func ReplaceAll(next State) Patch {
	return func(State) State { return next }
}

// SetUserRole sets the global role of userID, including the summary embedded in that user's memberships.
func SetUserRole(userID string, role userdomain.Role) Patch {
	return func(s State) State {
		s.Users = mapped(s.Users, func(u userdomain.User) userdomain.User {
			if u.ID == userID {
				u.Role = role
			}
			return u
		})
		s.Memberships = mapped(s.Memberships, func(m domain.Membership) domain.Membership {
			if m.User != nil && m.User.ID == userID && m.User.Role != role {
				u := *m.User
				u.Role = role
				m.User = &u
			}
			return m
		})
		return s
	}
}

// SetRoleForMemberships sets role on the memberships whose ID is in ids.
func SetRoleForMemberships(ids []string, role userdomain.Role) Patch {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return func(s State) State {
		s.Memberships = mapped(s.Memberships, func(m domain.Membership) domain.Membership {
			if _, ok := set[m.ID]; ok {
				m.Role = role
			}
			return m
		})
		return s
	}
}

// SetMembershipRole sets the role of one membership.
func SetMembershipRole(membershipID string, role userdomain.Role) Patch {
	return SetRoleForMemberships([]string{membershipID}, role)
}

// RemoveUser drops userID and every membership referencing it.
func RemoveUser(userID string) Patch {
	return func(s State) State {
		s.Users = without(s.Users, func(u userdomain.User) bool { return u.ID == userID })
		s.Memberships = without(s.Memberships, func(m domain.Membership) bool { return m.UserID == userID })
		return s
	}
}

// RemoveWorkspace drops workspaceID and every membership referencing it.
func RemoveWorkspace(workspaceID string) Patch {
	return func(s State) State {
		s.Workspaces = without(s.Workspaces, func(w workspacedomain.Workspace) bool { return w.ID == workspaceID })
		s.Memberships = without(s.Memberships, func(m domain.Membership) bool { return m.WorkspaceID == workspaceID })
		return s
	}
}

// RemoveMembership drops one membership.
func RemoveMembership(membershipID string) Patch {
	return func(s State) State {
		s.Memberships = without(s.Memberships, func(m domain.Membership) bool { return m.ID == membershipID })
		return s
	}
}

// AppendMembership adds m at the end unless a membership with the same ID is already present.
func AppendMembership(m domain.Membership) Patch {
	return func(s State) State {
		if slices.ContainsFunc(s.Memberships, func(x domain.Membership) bool { return x.ID == m.ID }) {
			return s
		}
		next := make([]domain.Membership, 0, len(s.Memberships)+1)
		next = append(next, s.Memberships...)
		s.Memberships = append(next, cloneMembership(m))
		return s
	}
}

// without returns in minus the elements matching drop. in is returned unchanged when nothing matches.
func without[T any](in []T, drop func(T) bool) []T {
	if !slices.ContainsFunc(in, drop) {
		return in
	}
	out := make([]T, 0, len(in))
	for _, v := range in {
		if !drop(v) {
			out = append(out, v)
		}
	}
	return out
}

// mapped returns a new slice holding f applied to every element of in.
func mapped[T any](in []T, f func(T) T) []T {
	out := make([]T, len(in))
	for i, v := range in {
		out[i] = f(v)
	}
	return out
}
