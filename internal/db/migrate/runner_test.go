package migrate

import (
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/db"
)

func TestParseDirection(t *testing.T) {
	testCases := []struct {
		in      string
		want    Direction
		wantErr bool
	}{
		{"up", Up, false},
		{"down", Down, false},
		{"", "", true},
		{"UP", "", true},
		{"sideways", "", true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseDirection(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseDirection(%q) err = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("ParseDirection(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestRun_EmptyDSN(t *testing.T) {
	for _, dsn := range []string{"", "   "} {
		if err := Run(dsn, Up); !errors.Is(err, ErrNoDatabaseURL) {
			t.Errorf("Run(%q) err = %v, want ErrNoDatabaseURL", dsn, err)
		}
	}
}

func TestRun_InvalidDirection(t *testing.T) {
	err := Run("postgres://localhost/test", Direction("left"))
	if err == nil || !strings.Contains(err.Error(), "direction") {
		t.Errorf("err = %v, want direction error", err)
	}
}

func TestRun_InvalidDSN(t *testing.T) {
	for _, dsn := range []string{"invalid-dsn", "://localhost/test", "postgres://localhost with spaces/test"} {
		if err := Run(dsn, Up); err == nil {
			t.Errorf("Run(%q) should return error", dsn)
		}
	}
}

func TestMigrationFS_PairsUpAndDown(t *testing.T) {
	files, err := fs.Glob(db.MigrationFS, "migrations/*.sql")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	ups, downs := 0, 0
	for _, f := range files {
		switch {
		case strings.HasSuffix(f, ".up.sql"):
			ups++
			if _, err := fs.Stat(db.MigrationFS, strings.TrimSuffix(f, ".up.sql")+".down.sql"); err != nil {
				t.Errorf("%s has no down migration", f)
			}
		case strings.HasSuffix(f, ".down.sql"):
			downs++
		}
	}
	if ups != 3 || downs != 3 {
		t.Errorf("ups = %d, downs = %d, want 3 each", ups, downs)
	}
}
