package db

import "embed"

// MigrationFS embeds the schema for profiles, workspaces and workspace_members.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
