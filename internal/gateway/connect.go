package gateway

import (
	"database/sql"
	"fmt"

	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/config"
	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/db"
	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/postgrest"
)

// Connect returns the Gateway for cfg.RemoteBackend. For the postgres backend the open *sql.DB
// is returned as well and the caller must close it; it is nil otherwise. The memory backend has
// no remote side and is rejected here.
func Connect(cfg *config.Config) (Gateway, *sql.DB, error) {
	switch cfg.RemoteBackend {
	case config.BackendREST:
		client, err := postgrest.NewClient(cfg.RemoteURL, cfg.RemoteToken, nil)
		if err != nil {
			return Gateway{}, nil, err
		}
		return NewREST(client), nil, nil
	case config.BackendPostgres:
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return Gateway{}, nil, fmt.Errorf("open database: %w", err)
		}
		return NewPostgres(conn), conn, nil
	default:
		return Gateway{}, nil, fmt.Errorf("gateway: backend %q has no remote connection", cfg.RemoteBackend)
	}
}
