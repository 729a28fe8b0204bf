// seed loads a YAML fixture of users, workspaces and memberships into the remote store.
// Rows that already exist are left alone, so it can be run repeatedly.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/config"
	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/gateway"
	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/logging"
	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/seed"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(1)
	}
}

func run() error {
	var file string
	flagSet := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	flagSet.StringVarP(&file, "file", "f", "seed.yaml", "fixture to load")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Read()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := cfg.ValidateRemote(); err != nil {
		return err
	}
	if cfg.RemoteBackend == config.BackendMemory {
		return errors.New("REMOTE_BACKEND=memory has nothing to seed; use the server's --seed-file instead")
	}
	log, err := logging.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	fixture, err := seed.LoadFile(file)
	if err != nil {
		return err
	}
	gw, conn, err := gateway.Connect(cfg)
	if err != nil {
		return err
	}
	if conn != nil {
		defer conn.Close()
	}

	res, err := seed.Apply(context.Background(), gw, fixture, log)
	if err != nil {
		return err
	}
	log.Info("seed complete", zap.String("file", file), zap.Int("skipped", res.Skipped))
	return nil
}
