package mirror

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/gateway"
	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/postgrest"
	userdomain "github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/user/domain"
	userrepo "github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/user/repository"
)

// restStore is a minimal PostgREST backend holding one user, one workspace and the user's memberships.
// afterCommit runs once a profiles write has been applied, before the response is sent.
type restStore struct {
	mu          sync.Mutex
	userRole    string
	userDeleted bool
	memberships map[string]string // id -> role
	afterCommit func()
}

func newRESTStore() *restStore {
	return &restStore{userRole: "member", memberships: map[string]string{"m1": "member", "m2": "member"}}
}

func (s *restStore) commit() {
	if s.afterCommit != nil {
		s.afterCommit()
	}
}

func (s *restStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	table := strings.TrimPrefix(r.URL.Path, "/rest/v1/")
	id := strings.TrimPrefix(r.URL.Query().Get("id"), "eq.")
	var body map[string]string
	if r.Method == http.MethodPatch {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	switch r.Method + " " + table {
	case "GET profiles":
		if s.userDeleted {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_ = json.NewEncoder(w).Encode([]map[string]string{
			{"id": "x", "name": "Xavier", "email": "xavier@example.com", "role": s.userRole, "created_at": "2024-05-01T09:00:00Z"},
		})
	case "GET workspaces":
		_, _ = w.Write([]byte(`[{"id":"w1","name":"Ops","created_by":null,"created_at":"2024-05-01T09:00:00Z"},
			{"id":"w2","name":"Sales","created_by":null,"created_at":"2024-05-01T08:00:00Z"}]`))
	case "GET workspace_members":
		rows := []map[string]string{}
		for mid, role := range s.memberships {
			ws := "w1"
			if mid == "m2" {
				ws = "w2"
			}
			rows = append(rows, map[string]string{"id": mid, "user_id": "x", "workspace_id": ws, "role": role})
		}
		_ = json.NewEncoder(w).Encode(rows)
	case "PATCH profiles":
		s.userRole = body["role"]
		s.commit()
		w.WriteHeader(http.StatusNoContent)
	case "PATCH workspace_members":
		s.memberships[id] = body["role"]
		w.WriteHeader(http.StatusNoContent)
	case "DELETE workspace_members":
		s.memberships = map[string]string{}
		w.WriteHeader(http.StatusNoContent)
	case "DELETE profiles":
		s.userDeleted = true
		s.commit()
		w.WriteHeader(http.StatusNoContent)
	case "POST workspace_members":
		s.commit()
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"m9","user_id":"x","workspace_id":"w3","role":"member"}`))
	default:
		http.Error(w, `{"message":"unexpected request"}`, http.StatusNotFound)
	}
}

// cancelingUsers cancels the caller's context as the users fetch begins.
type cancelingUsers struct {
	userrepo.Repository
	cancel context.CancelFunc
}

func (c cancelingUsers) List(ctx context.Context) ([]userdomain.User, error) {
	c.cancel()
	return c.Repository.List(ctx)
}

func restManager(t *testing.T, store *restStore) *Manager {
	t.Helper()
	srv := httptest.NewServer(store)
	t.Cleanup(srv.Close)
	client, err := postgrest.NewClient(srv.URL, "anon", srv.Client())
	if err != nil {
		t.Fatal(err)
	}
	m := NewManager(gateway.NewREST(client))
	if _, err := m.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return m
}

func TestDeleteUser_CallerCancelAfterCommit(t *testing.T) {
	store := newRESTStore()
	m := restManager(t, store)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store.afterCommit = cancel

	if _, err := m.DeleteUser(ctx, "x"); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if !store.userDeleted {
		t.Fatal("store should have deleted the user")
	}
	if _, ok := m.Snapshot().FindUser("x"); ok {
		t.Error("mirror still holds a user the store deleted")
	}
}

func TestSetUserRole_CallerCancelAfterUserUpdate(t *testing.T) {
	store := newRESTStore()
	m := restManager(t, store)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store.afterCommit = cancel

	report, err := m.SetUserRole(ctx, "x", userdomain.RoleAdmin)
	if err != nil {
		t.Fatalf("SetUserRole: %v", err)
	}
	if report.Attempted != 2 || !report.OK() {
		t.Errorf("report = %+v", report)
	}
	for id, role := range store.memberships {
		if role != "admin" {
			t.Errorf("remote membership %s role = %q", id, role)
		}
	}
	for _, ms := range m.Snapshot().Memberships {
		if ms.Role != userdomain.RoleAdmin {
			t.Errorf("mirrored membership %s role = %q", ms.ID, ms.Role)
		}
	}
}

func TestAddMembership_CallerCancelAfterInsert(t *testing.T) {
	store := newRESTStore()
	m := restManager(t, store)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store.afterCommit = cancel

	created, err := m.AddMembership(ctx, "x", "w3", "")
	if err != nil {
		t.Fatalf("AddMembership: %v", err)
	}
	if created.ID != "m9" {
		t.Errorf("created = %+v", created)
	}
	if _, ok := m.Snapshot().FindMembership("m9"); !ok {
		t.Error("mirror is missing the inserted membership")
	}
}

func TestLoad_IgnoresCallerCancelAfterStart(t *testing.T) {
	srv := httptest.NewServer(newRESTStore())
	defer srv.Close()
	client, err := postgrest.NewClient(srv.URL, "anon", srv.Client())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	gw := gateway.NewREST(client)
	gw.Users = cancelingUsers{Repository: gw.Users, cancel: cancel}

	res, err := NewManager(gw).Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.Users != 1 || res.Memberships != 2 {
		t.Errorf("result = %+v", res)
	}
}
