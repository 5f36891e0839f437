package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"

	web "swimtrack/internal/adapters/http"
	"swimtrack/internal/adapters/http/perf"
	"swimtrack/internal/adapters/storage"
	accountStore "swimtrack/internal/adapters/storage/account"
	competitionStore "swimtrack/internal/adapters/storage/competition"
	lapStore "swimtrack/internal/adapters/storage/lapcount"
	"swimtrack/internal/adapters/storage/memory"
	refereeStore "swimtrack/internal/adapters/storage/referee"
	"swimtrack/internal/adapters/storage/remote"
	sessionStore "swimtrack/internal/adapters/storage/swimsession"
	swimmerStore "swimtrack/internal/adapters/storage/swimmer"
	teamStore "swimtrack/internal/adapters/storage/team"
	"swimtrack/internal/config"
)

// backend is an opened storage backend and how to release it.
type backend struct {
	stores web.Stores
	close  func() error
}

// openSQLite opens and migrates the SQLite database at path.
// WAL mode, foreign keys and busy timeout are set on every connection.
func openSQLite(ctx context.Context, path string) (*sql.DB, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}
	if err := storage.MigrateDB(db, path); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}

// openBackend builds the stores for cfg.Storage.Type. With the remote
// backend, accounts stay in the local SQLite database.
// PRE: cfg passed Validate
// POST: every store in backend.stores is non-nil
func openBackend(ctx context.Context, cfg *config.Config, collector *perf.Collector) (*backend, error) {
	switch cfg.Storage.Type {
	case config.StorageMemory:
		db := memory.New()
		slog.Warn("storage_memory", "hint", "data is lost on restart")
		return &backend{
			stores: web.Stores{
				AccountStore:     db.Accounts(),
				CompetitionStore: db.Competitions(),
				TeamStore:        db.Teams(),
				SwimmerStore:     db.Swimmers(),
				RefereeStore:     db.Referees(),
				SwimSessionStore: db.SwimSessions(),
				LapCountStore:    db.LapCounts(),
			},
			close: func() error { return nil },
		}, nil

	case config.StorageRemote:
		db, err := openSQLite(ctx, cfg.Storage.Database)
		if err != nil {
			return nil, err
		}
		rc := cfg.Storage.Remote
		client, err := remote.NewClient(remote.Config{
			BaseURL: rc.BaseURL,
			Token:   rc.Token,
			Timeout: rc.Timeout,
			Endpoints: remote.Endpoints{
				Competitions: rc.Endpoints.Competitions,
				Teams:        rc.Endpoints.Teams,
				Swimmers:     rc.Endpoints.Swimmers,
				Referees:     rc.Endpoints.Referees,
				SwimSessions: rc.Endpoints.SwimSessions,
				LapCounts:    rc.Endpoints.LapCounts,
			},
		})
		if err != nil {
			db.Close()
			return nil, err
		}
		timed := storage.NewTimedDB(db, collector, 0)
		slog.Info("storage_remote", "base_url", rc.BaseURL, "accounts", cfg.Storage.Database)
		return &backend{
			stores: web.Stores{
				AccountStore:     accountStore.NewSQLiteStore(timed),
				CompetitionStore: client.Competitions(),
				TeamStore:        client.Teams(),
				SwimmerStore:     client.Swimmers(),
				RefereeStore:     client.Referees(),
				SwimSessionStore: client.SwimSessions(),
				LapCountStore:    client.LapCounts(),
				Ping:             client.Ping,
			},
			close: timed.Close,
		}, nil

	default:
		db, err := openSQLite(ctx, cfg.Storage.Database)
		if err != nil {
			return nil, err
		}
		timed := storage.NewTimedDB(db, collector, 0)
		slog.Info("storage_sqlite", "path", cfg.Storage.Database, "schema", storage.LatestSchemaVersion())
		return &backend{
			stores: web.Stores{
				AccountStore:     accountStore.NewSQLiteStore(timed),
				CompetitionStore: competitionStore.NewSQLiteStore(timed),
				TeamStore:        teamStore.NewSQLiteStore(timed),
				SwimmerStore:     swimmerStore.NewSQLiteStore(timed),
				RefereeStore:     refereeStore.NewSQLiteStore(timed),
				SwimSessionStore: sessionStore.NewSQLiteStore(timed),
				LapCountStore:    lapStore.NewSQLiteStore(timed),
				Ping:             timed.PingContext,
			},
			close: timed.Close,
		}, nil
	}
}
