// migrate applies the embedded schema to DATABASE_URL.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/config"
	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/db/migrate"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

func run() error {
	var direction string
	flagSet := pflag.NewFlagSet("migrate", pflag.ContinueOnError)
	flagSet.StringVar(&direction, "direction", string(migrate.Up), "migration direction: up or down")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	d, err := migrate.ParseDirection(direction)
	if err != nil {
		return err
	}

	cfg, err := config.Read()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}
	return migrate.Run(cfg.DatabaseURL, d)
}
