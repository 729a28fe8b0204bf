package mirror

import (
	"math"
	"sort"
	"time"

	userdomain "github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/user/domain"
)

// RecentWindow is how far back Stats counts new users and workspaces.
const RecentWindow = 7 * 24 * time.Hour

// TopWorkspaceLimit caps Stats.TopWorkspaces.
const TopWorkspaceLimit = 5

// Stats summarizes the mirror for the statistics view.
type Stats struct {
	TotalUsers          int
	TotalWorkspaces     int
	TotalMemberships    int
	Admins              int
	Roles               []RoleShare
	MembersPerWorkspace int
	WorkspacesPerUser   int
	LargestWorkspace    int
	TopWorkspaces       []WorkspaceRank
	NewUsers            int
	NewWorkspaces       int
}

// RoleShare is the number of users holding Role and their share of all users in percent.
type RoleShare struct {
	Role    userdomain.Role
	Count   int
	Percent float64
}

// WorkspaceRank is one entry of the top workspaces by member count.
type WorkspaceRank struct {
	WorkspaceID string
	Name        string
	CreatorName string
	Members     int
}

// Stats computes statistics relative to now.
func (s State) Stats(now time.Time) Stats {
	st := Stats{
		TotalUsers:       len(s.Users),
		TotalWorkspaces:  len(s.Workspaces),
		TotalMemberships: len(s.Memberships),
	}

	for _, role := range userdomain.Roles() {
		share := RoleShare{Role: role}
		for _, u := range s.Users {
			if u.Role == role {
				share.Count++
			}
		}
		if st.TotalUsers > 0 {
			share.Percent = float64(share.Count) / float64(st.TotalUsers) * 100
		}
		if role == userdomain.RoleAdmin {
			st.Admins = share.Count
		}
		st.Roles = append(st.Roles, share)
	}

	if st.TotalWorkspaces > 0 {
		st.MembersPerWorkspace = roundHalfUp(float64(st.TotalMemberships) / float64(st.TotalWorkspaces))
	}
	if st.TotalUsers > 0 {
		st.WorkspacesPerUser = roundHalfUp(float64(st.TotalMemberships) / float64(st.TotalUsers))
	}

	counts := make(map[string]int, len(s.Workspaces))
	for _, m := range s.Memberships {
		counts[m.WorkspaceID]++
	}
	ranks := make([]WorkspaceRank, 0, len(s.Workspaces))
	for _, w := range s.Workspaces {
		n := counts[w.ID]
		if n > st.LargestWorkspace {
			st.LargestWorkspace = n
		}
		ranks = append(ranks, WorkspaceRank{WorkspaceID: w.ID, Name: w.Name, CreatorName: s.CreatorName(w.CreatedBy), Members: n})
	}
	sort.SliceStable(ranks, func(i, j int) bool { return ranks[i].Members > ranks[j].Members })
	if len(ranks) > TopWorkspaceLimit {
		ranks = ranks[:TopWorkspaceLimit]
	}
	st.TopWorkspaces = ranks

	since := now.Add(-RecentWindow)
	for _, u := range s.Users {
		if u.CreatedAt.After(since) {
			st.NewUsers++
		}
	}
	for _, w := range s.Workspaces {
		if w.CreatedAt.After(since) {
			st.NewWorkspaces++
		}
	}
	return st
}

func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
