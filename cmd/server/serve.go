package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"swimtrack/internal/adapters/email"
	web "swimtrack/internal/adapters/http"
	"swimtrack/internal/adapters/http/perf"
	"swimtrack/internal/adapters/storage"
	"swimtrack/internal/application/orchestrators"
	"swimtrack/internal/config"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(load func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and monitor page",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func newMigrateCmd(load func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQLite schema migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			db, err := openSQLite(cmd.Context(), cfg.Storage.Database)
			if err != nil {
				return err
			}
			defer db.Close()
			v, err := storage.SchemaVersion(db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is at schema version %d\n", cfg.Storage.Database, v)
			return nil
		},
	}
}

// newNotifier picks the Resend sender when a key is configured.
func newNotifier(cfg *config.Config) *email.Notifier {
	var sender email.Sender = email.NewNoopSender()
	if cfg.Email.ResendKey != "" {
		sender = email.NewResendSender(cfg.Email.ResendKey, cfg.Email.From)
		slog.Info("email_sender", "provider", "resend")
	} else if cfg.IsProduction() {
		slog.Warn("email_sender", "provider", "noop", "hint", "email.resend_key is not set, mail delivery is disabled")
	}
	t := cfg.Email.Notifications
	return email.NewNotifier(sender, email.NotifierConfig{
		From:    cfg.Email.From,
		ReplyTo: cfg.Email.ReplyTo,
		Toggles: email.Toggles{
			OrganizerRegistration: t.OrganizerRegistration,
			PasswordReset:         t.PasswordReset,
			CompetitionResult:     t.CompetitionResult,
		},
	})
}

// serve runs the server until ctx ends, then drains open requests.
func serve(ctx context.Context, cfg *config.Config) error {
	collector := perf.NewCollector(perf.DefaultRingSize)
	be, err := openBackend(ctx, cfg, collector)
	if err != nil {
		return err
	}
	defer be.close()

	generated, err := orchestrators.ExecuteSeedAdmin(ctx, orchestrators.SeedAdminInput{
		Email:    cfg.Admin.Email,
		Password: cfg.Admin.Password,
	}, orchestrators.SeedAdminDeps{
		AccountStore: be.stores.AccountStore,
		GenerateID:   func() string { return uuid.New().String() },
		Now:          time.Now,
	})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if generated != "" {
		slog.Warn("admin_seeded", "email", cfg.Admin.Email, "password", generated, "hint", "change this password after first login")
	}

	loc, _ := cfg.Location()
	handler, err := web.NewMux(be.stores, web.Options{
		StaticDir:     cfg.Server.StaticDir,
		CSRFKey:       []byte(cfg.Security.CSRFKey),
		APIKey:        cfg.Security.APIKey,
		CORSOrigins:   cfg.Security.CORSOrigins,
		AuthRateLimit: cfg.Security.RateLimit,
		Production:    cfg.IsProduction(),
		PollInterval:  cfg.Monitor.PollInterval,
		Location:      loc,
		Version:       version,
		Notifier:      newNotifier(cfg),
		Collector:     collector,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		slog.Info("server_started", "addr", cfg.Server.Addr, "version", version, "env", cfg.Server.Env, "storage", cfg.Storage.Type)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("server_stopping")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
