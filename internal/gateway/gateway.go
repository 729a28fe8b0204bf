// Package gateway bundles the per-entity repositories that make up the remote data gateway.
package gateway

import (
	"database/sql"

	membershiprepo "github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/membership/repository"
	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/postgrest"
	userrepo "github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/user/repository"
	workspacerepo "github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/workspace/repository"
)

// Gateway is the set of remote repositories the mirror manager and seed command talk to.
type Gateway struct {
	Users       userrepo.Repository
	Workspaces  workspacerepo.Repository
	Memberships membershiprepo.Repository
}

// NewREST returns a Gateway served by the hosted store's PostgREST API.
func NewREST(client *postgrest.Client) Gateway {
	return Gateway{
		Users:       userrepo.NewRESTRepository(client),
		Workspaces:  workspacerepo.NewRESTRepository(client),
		Memberships: membershiprepo.NewRESTRepository(client),
	}
}

// NewPostgres returns a Gateway that talks to Postgres directly.
func NewPostgres(conn *sql.DB) Gateway {
	return Gateway{
		Users:       userrepo.NewPostgresRepository(conn),
		Workspaces:  workspacerepo.NewPostgresRepository(conn),
		Memberships: membershiprepo.NewPostgresRepository(conn),
	}
}
