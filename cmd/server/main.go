// server runs the admin dashboard HTTP API over the configured remote backend.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/audit"
	auditkafka "github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/audit/kafka"
	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/config"
	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/gateway"
	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/gateway/memory"
	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/logging"
	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/mirror"
	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/security"
	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/seed"
	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/server"
	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/session"
	telemetry "github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/telemetry/otel"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var seedFile string
	flagSet := pflag.NewFlagSet("server", pflag.ContinueOnError)
	flagSet.StringVar(&seedFile, "seed-file", "", "YAML fixture applied to the remote store before the first load")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log, err := logging.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := telemetry.NewProviders(ctx, cfg.OTelEndpoint, cfg.OTelServiceName, cfg.OTelInsecure)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			log.Warn("telemetry shutdown", zap.Error(err))
		}
	}()
	sinks := audit.Fanout{telemetry.NewAuditSink(providers.LoggerProvider)}
	if brokers := cfg.AuditKafkaBrokers(); len(brokers) > 0 {
		kafkaSink, err := auditkafka.NewSink(brokers, cfg.AuditKafkaTopic, log.Named("audit.kafka"))
		if err != nil {
			return err
		}
		defer func() {
			if err := kafkaSink.Close(); err != nil {
				log.Warn("audit kafka close", zap.Error(err))
			}
		}()
		sinks = append(sinks, kafkaSink)
	}
	auditLog := audit.NewLogger(sinks, audit.ClientIP, log)

	var deps server.Deps
	gw, conn, err := connect(cfg)
	if err != nil {
		return err
	}
	if conn != nil {
		defer conn.Close()
		deps.HealthPinger = conn
	}

	if seedFile != "" {
		fixture, err := seed.LoadFile(seedFile)
		if err != nil {
			return err
		}
		if _, err := seed.Apply(ctx, gw, fixture, log); err != nil {
			return err
		}
	}

	gate, err := session.NewGate(cfg.AdminPassword, cfg.AdminPasswordHash)
	if err != nil {
		return fmt.Errorf("session gate: %w", err)
	}
	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		if secret, err = security.RandomSecret(32); err != nil {
			return err
		}
		log.Warn("SESSION_SECRET is not set; sessions will not survive a restart")
	}
	tokens, err := security.NewTokenProvider(secret, cfg.SessionIssuer, cfg.SessionAudience, cfg.SessionTTL())
	if err != nil {
		return fmt.Errorf("session tokens: %w", err)
	}

	deps.Mirror = mirror.NewManager(gw,
		mirror.WithLogger(log),
		mirror.WithAudit(auditLog),
		mirror.WithStrictCascade(cfg.StrictCascade()),
		mirror.WithTracerProvider(providers.TracerProvider),
		mirror.WithMeterProvider(providers.MeterProvider),
	)
	deps.Gate = gate
	deps.Tokens = tokens
	deps.Audit = auditLog
	deps.Logger = log
	deps.SecureCookie = cfg.IsProduction()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.NewRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("backend", cfg.RemoteBackend),
			zap.String("cascade", cfg.CascadeMode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("HTTP server stopped")
	return nil
}

// connect builds the gateway for cfg. The memory backend starts empty unless --seed-file fills it.
func connect(cfg *config.Config) (gateway.Gateway, *sql.DB, error) {
	if cfg.RemoteBackend == config.BackendMemory {
		return memory.NewStore().Gateway(), nil, nil
	}
	return gateway.Connect(cfg)
}
