package mirror

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/gateway/memory"
	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/membership/domain"
	membershiprepo "github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/membership/repository"
	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/platform/remote"
	userdomain "github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/user/domain"
	workspacedomain "github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/workspace/domain"
)

var t0 = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

// recordingAudit keeps the actions it was asked to log.
type recordingAudit struct {
	mu      sync.Mutex
	actions []string
}

func (r *recordingAudit) LogEvent(_ context.Context, action, _, _, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, action)
}

func (r *recordingAudit) has(action string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.actions {
		if a == action {
			return true
		}
	}
	return false
}

// flakyMemberships fails UpdateRole for selected membership IDs.
type flakyMemberships struct {
	membershiprepo.Repository
	failIDs map[string]bool
}

func (f *flakyMemberships) UpdateRole(ctx context.Context, id string, role userdomain.Role) error {
	if f.failIDs[id] {
		return remote.Reject("workspace_members.update", "42501", "permission denied")
	}
	return f.Repository.UpdateRole(ctx, id, role)
}

// seededStore returns a store holding users x and y, workspaces w1..w3, and memberships of x in all three.
func seededStore() *memory.Store {
	s := memory.NewStore()
	s.PutUser(userdomain.User{ID: "x", Name: "Xavier", Email: "xavier@example.com", Role: userdomain.RoleMember, CreatedAt: t0})
	s.PutUser(userdomain.User{ID: "y", Name: "Yara", Email: "yara@example.com", Role: userdomain.RoleClient, CreatedAt: t0.Add(-time.Hour)})
	for i, id := range []string{"w1", "w2", "w3"} {
		s.PutWorkspace(workspacedomain.Workspace{ID: id, Name: "Team " + id, CreatedBy: "y", CreatedAt: t0.Add(-time.Duration(i) * time.Minute)})
		s.PutMembership(domain.Membership{ID: "m-x-" + id, UserID: "x", WorkspaceID: id, Role: userdomain.RoleMember, CreatedAt: t0})
	}
	s.PutMembership(domain.Membership{ID: "m-y-w1", UserID: "y", WorkspaceID: "w1", Role: userdomain.RoleClient, CreatedAt: t0})
	return s
}

func loadedManager(t *testing.T, s *memory.Store, opts ...Option) *Manager {
	t.Helper()
	m := NewManager(s.Gateway(), opts...)
	if _, err := m.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return m
}

func TestLoad_ReplacesState(t *testing.T) {
	s := seededStore()
	m := NewManager(s.Gateway(), WithClock(func() time.Time { return t0 }))

	res, err := m.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.Users != 2 || res.Workspaces != 3 || res.Memberships != 4 || res.Empty {
		t.Errorf("result = %+v", res)
	}
	st := m.Snapshot()
	if !st.LoadedAt.Equal(t0) {
		t.Errorf("LoadedAt = %v", st.LoadedAt)
	}
	if st.Users[0].ID != "x" {
		t.Errorf("users should be newest first, got %q first", st.Users[0].ID)
	}
	if st.Memberships[0].User == nil || st.Memberships[0].Workspace == nil {
		t.Errorf("memberships should carry embeds: %+v", st.Memberships[0])
	}
}

func TestLoad_EmptyUsersIsInformational(t *testing.T) {
	m := NewManager(memory.NewStore().Gateway())
	res, err := m.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !res.Empty {
		t.Error("Empty should be set when no users are returned")
	}
	if len(m.Snapshot().Users) != 0 {
		t.Error("users should be empty")
	}
}

func TestLoad_FailureKeepsPriorState(t *testing.T) {
	testCases := []struct {
		name string
		op   string
		err  error
	}{
		{"users rejected", memory.OpUsersSelect, remote.Reject(memory.OpUsersSelect, "42501", "denied")},
		{"workspaces unavailable", memory.OpWorkspacesSelect, memory.ErrUnavailable},
		{"memberships unavailable", memory.OpMembershipsSelect, memory.ErrUnavailable},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := seededStore()
			m := loadedManager(t, s)
			before := m.Snapshot()

			s.PutUser(userdomain.User{ID: "z", Email: "z@example.com", CreatedAt: t0.Add(time.Hour)})
			s.Fail(tc.op, tc.err)
			if _, err := m.Load(context.Background()); !errors.Is(err, tc.err) {
				t.Fatalf("err = %v, want %v", err, tc.err)
			}
			after := m.Snapshot()
			if len(after.Users) != len(before.Users) || !after.LoadedAt.Equal(before.LoadedAt) {
				t.Errorf("state changed after failed load: %d users", len(after.Users))
			}
		})
	}
}

func TestSetUserRole_PropagatesToMemberships(t *testing.T) {
	s := memory.NewStore()
	s.PutUser(userdomain.User{ID: "x", Email: "x@example.com", Role: userdomain.RoleMember})
	s.PutWorkspace(workspacedomain.Workspace{ID: "w1", Name: "One"})
	s.PutWorkspace(workspacedomain.Workspace{ID: "w2", Name: "Two"})
	s.PutMembership(domain.Membership{ID: "m1", UserID: "x", WorkspaceID: "w1", Role: userdomain.RoleMember})
	s.PutMembership(domain.Membership{ID: "m2", UserID: "x", WorkspaceID: "w2", Role: userdomain.RoleMember})
	rec := &recordingAudit{}
	m := loadedManager(t, s, WithAudit(rec))

	report, err := m.SetUserRole(context.Background(), "x", userdomain.RoleAdmin)
	if err != nil {
		t.Fatalf("SetUserRole: %v", err)
	}
	if report.Attempted != 2 || !report.OK() {
		t.Errorf("report = %+v", report)
	}
	st := m.Snapshot()
	if u, _ := st.FindUser("x"); u.Role != userdomain.RoleAdmin {
		t.Errorf("user role = %q, want admin", u.Role)
	}
	for _, ms := range st.Memberships {
		if ms.Role != userdomain.RoleAdmin {
			t.Errorf("membership %s role = %q, want admin", ms.ID, ms.Role)
		}
		if ms.User != nil && ms.User.Role != userdomain.RoleAdmin {
			t.Errorf("membership %s embedded user role = %q", ms.ID, ms.User.Role)
		}
	}
	if got := s.Calls(memory.OpMembershipsUpdate); got != 2 {
		t.Errorf("remote membership updates = %d, want 2", got)
	}
	if !rec.has("user_role_changed") {
		t.Error("role change should be audited")
	}
}

func TestSetUserRole_RemoteFailureLeavesMirror(t *testing.T) {
	for _, failure := range []error{remote.Reject(memory.OpUsersUpdate, "42501", "denied"), memory.ErrUnavailable} {
		s := seededStore()
		m := loadedManager(t, s)
		s.Fail(memory.OpUsersUpdate, failure)

		_, err := m.SetUserRole(context.Background(), "x", userdomain.RoleAdmin)
		if !errors.Is(err, failure) {
			t.Fatalf("err = %v, want %v", err, failure)
		}
		st := m.Snapshot()
		if u, _ := st.FindUser("x"); u.Role != userdomain.RoleMember {
			t.Errorf("user role = %q, want unchanged member", u.Role)
		}
		if s.Calls(memory.OpMembershipsUpdate) != 0 {
			t.Error("no membership update should be issued after the user update fails")
		}
	}
}

func TestSetUserRole_InvalidRole(t *testing.T) {
	s := seededStore()
	m := loadedManager(t, s)
	_, err := m.SetUserRole(context.Background(), "x", userdomain.Role("owner"))
	if !errors.Is(err, ErrInvalidRole) || Classify(err) != OutcomeInvalid {
		t.Fatalf("err = %v, want invalid role", err)
	}
	if s.Calls(memory.OpUsersUpdate) != 0 {
		t.Error("invalid role must not reach the store")
	}
}

func TestSetUserRole_PartialCascade(t *testing.T) {
	testCases := []struct {
		name      string
		strict    bool
		wantRoles map[string]userdomain.Role
	}{
		{"best effort patches every membership", false, map[string]userdomain.Role{
			"m-x-w1": userdomain.RoleAdmin, "m-x-w2": userdomain.RoleAdmin, "m-x-w3": userdomain.RoleAdmin,
		}},
		{"strict patches confirmed memberships only", true, map[string]userdomain.Role{
			"m-x-w1": userdomain.RoleAdmin, "m-x-w2": userdomain.RoleMember, "m-x-w3": userdomain.RoleAdmin,
		}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := seededStore()
			gw := s.Gateway()
			gw.Memberships = &flakyMemberships{Repository: gw.Memberships, failIDs: map[string]bool{"m-x-w2": true}}
			rec := &recordingAudit{}
			m := NewManager(gw, WithStrictCascade(tc.strict), WithAudit(rec))
			if _, err := m.Load(context.Background()); err != nil {
				t.Fatalf("Load: %v", err)
			}

			report, err := m.SetUserRole(context.Background(), "x", userdomain.RoleAdmin)
			if err != nil {
				t.Fatalf("cascade failures must not fail the operation: %v", err)
			}
			if report.Attempted != 3 || report.Failed != 1 || !remote.IsRejected(report.Err) {
				t.Errorf("report = %+v", report)
			}
			st := m.Snapshot()
			for id, want := range tc.wantRoles {
				ms, _ := st.FindMembership(id)
				if ms.Role != want {
					t.Errorf("%s role = %q, want %q", id, ms.Role, want)
				}
			}
			if !rec.has("cascade_failed") {
				t.Error("cascade failure should be audited")
			}
		})
	}
}

func TestDeleteUser_RemovesMemberships(t *testing.T) {
	s := seededStore()
	m := loadedManager(t, s)

	report, err := m.DeleteUser(context.Background(), "x")
	if err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if !report.OK() {
		t.Errorf("report = %+v", report)
	}
	st := m.Snapshot()
	if _, ok := st.FindUser("x"); ok {
		t.Error("user x should be gone")
	}
	if n := st.MembershipCountByUser("x"); n != 0 {
		t.Errorf("memberships of x = %d, want 0", n)
	}
	if n := st.MembershipCountByUser("y"); n != 1 {
		t.Errorf("memberships of y = %d, want 1", n)
	}
}

func TestDeleteUser_CascadeFailureDoesNotBlock(t *testing.T) {
	s := seededStore()
	rec := &recordingAudit{}
	m := loadedManager(t, s, WithAudit(rec))
	if n := m.Snapshot().MembershipCountByUser("x"); n != 3 {
		t.Fatalf("precondition: x has %d memberships, want 3", n)
	}
	s.Fail(memory.OpMembershipsDelete, memory.ErrUnavailable)

	report, err := m.DeleteUser(context.Background(), "x")
	if err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if report.OK() || !errors.Is(report.Err, memory.ErrUnavailable) {
		t.Errorf("report = %+v, want the cascade failure", report)
	}
	st := m.Snapshot()
	if _, ok := st.FindUser("x"); ok {
		t.Error("user x should be removed locally")
	}
	if n := st.MembershipCountByUser("x"); n != 0 {
		t.Errorf("local memberships of x = %d, want 0", n)
	}
	if !rec.has("cascade_failed") || !rec.has("user_deleted") {
		t.Errorf("audit actions = %v", rec.actions)
	}
}

func TestDeleteUser_StrictCascadeAborts(t *testing.T) {
	s := seededStore()
	m := loadedManager(t, s, WithStrictCascade(true))
	s.Fail(memory.OpMembershipsDelete, remote.Reject(memory.OpMembershipsDelete, "42501", "denied"))

	_, err := m.DeleteUser(context.Background(), "x")
	if !errors.Is(err, ErrCascadeFailed) || Classify(err) != OutcomeRejected {
		t.Fatalf("err = %v (%s), want rejected cascade failure", err, Classify(err))
	}
	if s.Calls(memory.OpUsersDelete) != 0 {
		t.Error("user delete must not be issued after a strict cascade failure")
	}
	if _, ok := m.Snapshot().FindUser("x"); !ok {
		t.Error("user x should remain in the mirror")
	}
}

func TestDeleteUser_ParentFailureLeavesMirror(t *testing.T) {
	s := seededStore()
	m := loadedManager(t, s)
	s.Fail(memory.OpUsersDelete, remote.Reject(memory.OpUsersDelete, "23503", "still referenced"))

	_, err := m.DeleteUser(context.Background(), "x")
	if Classify(err) != OutcomeRejected {
		t.Fatalf("err = %v, want rejected", err)
	}
	st := m.Snapshot()
	if _, ok := st.FindUser("x"); !ok {
		t.Error("user x should still be mirrored")
	}
	if n := st.MembershipCountByUser("x"); n != 3 {
		t.Errorf("local memberships of x = %d, want 3 untouched", n)
	}
}

func TestDeleteWorkspace_RemovesMemberships(t *testing.T) {
	testCases := []struct {
		name        string
		cascadeFail bool
	}{
		{"cascade ok", false},
		{"cascade fails", true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := seededStore()
			m := loadedManager(t, s)
			if tc.cascadeFail {
				s.Fail(memory.OpMembershipsDelete, memory.ErrUnavailable)
			}
			report, err := m.DeleteWorkspace(context.Background(), "w1")
			if err != nil {
				t.Fatalf("DeleteWorkspace: %v", err)
			}
			if report.OK() == tc.cascadeFail {
				t.Errorf("report = %+v", report)
			}
			st := m.Snapshot()
			if _, ok := st.FindWorkspace("w1"); ok {
				t.Error("workspace w1 should be gone")
			}
			if n := st.MembershipCountByWorkspace("w1"); n != 0 {
				t.Errorf("memberships of w1 = %d, want 0", n)
			}
			if len(st.Memberships) != 2 {
				t.Errorf("remaining memberships = %d, want 2", len(st.Memberships))
			}
		})
	}
}

func TestAddMembership_AppendsCreatedRow(t *testing.T) {
	s := seededStore()
	m := loadedManager(t, s)

	created, err := m.AddMembership(context.Background(), "y", "w2", "")
	if err != nil {
		t.Fatalf("AddMembership: %v", err)
	}
	if created.Role != userdomain.RoleMember {
		t.Errorf("role = %q, want default member", created.Role)
	}
	if created.User == nil || created.User.Name != "Yara" || created.Workspace == nil {
		t.Errorf("created = %+v, want embeds", created)
	}
	st := m.Snapshot()
	if !st.HasMembership(domain.Pair{UserID: "y", WorkspaceID: "w2"}) {
		t.Error("pair should be mirrored")
	}
	if last := st.Memberships[len(st.Memberships)-1]; last.ID != created.ID {
		t.Errorf("created membership should be appended last, got %q", last.ID)
	}
}

func TestAddMembership_DuplicateSkipsRemote(t *testing.T) {
	s := seededStore()
	m := loadedManager(t, s)

	if _, err := m.AddMembership(context.Background(), "y", "w3", userdomain.RoleClient); err != nil {
		t.Fatalf("first AddMembership: %v", err)
	}
	_, err := m.AddMembership(context.Background(), "y", "w3", userdomain.RoleAdmin)
	if !errors.Is(err, ErrDuplicateMembership) || Classify(err) != OutcomeDuplicate {
		t.Fatalf("second AddMembership err = %v, want duplicate", err)
	}
	if got := s.Calls(memory.OpMembershipsInsert); got != 1 {
		t.Errorf("remote inserts = %d, want 1", got)
	}
	n := 0
	for _, ms := range m.Snapshot().Memberships {
		if ms.Pair() == (domain.Pair{UserID: "y", WorkspaceID: "w3"}) {
			n++
		}
	}
	if n != 1 {
		t.Errorf("records for pair = %d, want 1", n)
	}
}

func TestAddMembership_ConcurrentSamePair(t *testing.T) {
	s := seededStore()
	m := loadedManager(t, s)

	entered := make(chan struct{})
	release := make(chan struct{})
	s.Hook(memory.OpMembershipsInsert, func(context.Context) {
		close(entered)
		<-release
	})

	done := make(chan error, 1)
	go func() {
		_, err := m.AddMembership(context.Background(), "y", "w2", userdomain.RoleMember)
		done <- err
	}()
	<-entered

	_, err := m.AddMembership(context.Background(), "y", "w2", userdomain.RoleMember)
	if !errors.Is(err, ErrDuplicateMembership) {
		t.Errorf("in-flight pair err = %v, want duplicate", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first AddMembership: %v", err)
	}
	if got := s.Calls(memory.OpMembershipsInsert); got != 1 {
		t.Errorf("remote inserts = %d, want 1", got)
	}
}

func TestAddMembership_FailureReleasesPair(t *testing.T) {
	s := seededStore()
	m := loadedManager(t, s)
	s.Fail(memory.OpMembershipsInsert, memory.ErrUnavailable)

	_, err := m.AddMembership(context.Background(), "y", "w2", userdomain.RoleMember)
	if Classify(err) != OutcomeFailed {
		t.Fatalf("err = %v, want failed", err)
	}
	if m.Snapshot().HasMembership(domain.Pair{UserID: "y", WorkspaceID: "w2"}) {
		t.Error("failed insert must not be mirrored")
	}

	s.Fail(memory.OpMembershipsInsert, nil)
	if _, err := m.AddMembership(context.Background(), "y", "w2", userdomain.RoleMember); err != nil {
		t.Errorf("retry after failure: %v", err)
	}
}

func TestAddMembership_Invalid(t *testing.T) {
	s := seededStore()
	m := loadedManager(t, s)
	testCases := []struct {
		name        string
		userID      string
		workspaceID string
		role        userdomain.Role
	}{
		{"bad role", "y", "w2", "owner"},
		{"missing user", "", "w2", userdomain.RoleMember},
		{"missing workspace", "y", "", userdomain.RoleMember},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := m.AddMembership(context.Background(), tc.userID, tc.workspaceID, tc.role)
			if Classify(err) != OutcomeInvalid {
				t.Errorf("err = %v, want invalid", err)
			}
		})
	}
	if s.Calls(memory.OpMembershipsInsert) != 0 {
		t.Error("invalid input must not reach the store")
	}
}

func TestRemoveMembership(t *testing.T) {
	s := seededStore()
	m := loadedManager(t, s)

	s.Fail(memory.OpMembershipsDelete, remote.Reject(memory.OpMembershipsDelete, "42501", "denied"))
	if err := m.RemoveMembership(context.Background(), "m-y-w1"); Classify(err) != OutcomeRejected {
		t.Fatalf("err = %v, want rejected", err)
	}
	if _, ok := m.Snapshot().FindMembership("m-y-w1"); !ok {
		t.Fatal("rejected delete must leave the membership")
	}

	s.Fail(memory.OpMembershipsDelete, nil)
	if err := m.RemoveMembership(context.Background(), "m-y-w1"); err != nil {
		t.Fatalf("RemoveMembership: %v", err)
	}
	if _, ok := m.Snapshot().FindMembership("m-y-w1"); ok {
		t.Error("membership should be removed")
	}
}

func TestSetMembershipRole(t *testing.T) {
	s := seededStore()
	m := loadedManager(t, s)

	if err := m.SetMembershipRole(context.Background(), "m-x-w1", userdomain.RoleClient); err != nil {
		t.Fatalf("SetMembershipRole: %v", err)
	}
	st := m.Snapshot()
	if ms, _ := st.FindMembership("m-x-w1"); ms.Role != userdomain.RoleClient {
		t.Errorf("role = %q, want client", ms.Role)
	}
	if u, _ := st.FindUser("x"); u.Role != userdomain.RoleMember {
		t.Errorf("user role should stay independent, got %q", u.Role)
	}

	s.Fail(memory.OpMembershipsUpdate, memory.ErrUnavailable)
	if err := m.SetMembershipRole(context.Background(), "m-x-w1", userdomain.RoleAdmin); Classify(err) != OutcomeFailed {
		t.Fatalf("err = %v, want failed", err)
	}
	if ms, _ := m.Snapshot().FindMembership("m-x-w1"); ms.Role != userdomain.RoleClient {
		t.Errorf("role = %q after failed update, want client", ms.Role)
	}
}

func TestSnapshot_IsACopy(t *testing.T) {
	m := loadedManager(t, seededStore())
	st := m.Snapshot()
	st.Users[0].Name = "mutated"
	st.Memberships[0].User.Name = "mutated"
	again := m.Snapshot()
	if again.Users[0].Name == "mutated" || again.Memberships[0].User.Name == "mutated" {
		t.Error("mutating a snapshot must not affect the mirror")
	}
}

func TestManager_CountsOperations(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	s := seededStore()
	m := loadedManager(t, s, WithMeterProvider(mp))
	_, _ = m.AddMembership(context.Background(), "x", "w1", userdomain.RoleMember)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	counts := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, mt := range sm.Metrics {
			if mt.Name != "mirror.operations" {
				continue
			}
			sum, ok := mt.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("data = %T", mt.Data)
			}
			for _, dp := range sum.DataPoints {
				op, _ := dp.Attributes.Value("op")
				outcome, _ := dp.Attributes.Value("outcome")
				counts[op.AsString()+"/"+outcome.AsString()] += dp.Value
			}
		}
	}
	if counts["load/success"] != 1 || counts["add_membership/duplicate"] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want Outcome
	}{
		{"nil", nil, OutcomeSuccess},
		{"duplicate", ErrDuplicateMembership, OutcomeDuplicate},
		{"invalid role", userdomain.ErrInvalidRole, OutcomeInvalid},
		{"rejected", remote.Reject("profiles.update", "42501", "denied"), OutcomeRejected},
		{"wrapped rejected", errors.Join(errors.New("ctx"), &remote.RejectedError{}), OutcomeRejected},
		{"network", memory.ErrUnavailable, OutcomeFailed},
		{"canceled", context.Canceled, OutcomeFailed},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.err); got != tc.want {
				t.Errorf("Classify(%v) = %q, want %q", tc.err, got, tc.want)
			}
		})
	}
}
