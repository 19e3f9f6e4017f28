// Package cli is the interactive shell of the roamsync client. It wires the
// local sqlite state, the session refresher, and the transport together and
// exposes them as REPL commands.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"

	"github.com/roamsync/roamsync/internal/client/config"
	"github.com/roamsync/roamsync/internal/client/probe"
	"github.com/roamsync/roamsync/internal/client/repositories/outbox"
	"github.com/roamsync/roamsync/internal/client/repositories/readcache"
	"github.com/roamsync/roamsync/internal/client/repositories/vault"
	"github.com/roamsync/roamsync/internal/client/services"
	"github.com/roamsync/roamsync/internal/client/session"
	"github.com/roamsync/roamsync/internal/client/storage"
	"github.com/roamsync/roamsync/internal/client/transport"
	"github.com/roamsync/roamsync/internal/logging"
)

type App struct {
	config *config.Config
	db     *sql.DB
	auth   *services.AuthService
	trips  *services.TripService
	sync   *services.SyncService
	probe  *probe.Probe
	reader *bufio.Reader
	user   string
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := storage.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	httpClient := &http.Client{}
	vaultRepo := vault.NewSQLiteRepository(db)
	outboxRepo := outbox.NewSQLiteRepository(db)
	cacheRepo := readcache.NewSQLiteRepository(db)

	refresher := session.NewRefresher(cfg.ServerAddr, httpClient, vaultRepo, log)
	tr := transport.New(cfg.ServerAddr, httpClient, refresher, log)
	pr := probe.New(cfg.ServerAddr, httpClient)

	syncSvc := services.NewSyncService(tr, pr, outboxRepo, log)

	app := &App{
		config: cfg,
		db:     db,
		auth:   services.NewAuthService(cfg.ServerAddr, httpClient, vaultRepo, tr, log),
		trips:  services.NewTripService(tr, pr, syncSvc, cacheRepo, log),
		sync:   syncSvc,
		probe:  pr,
		reader: bufio.NewReader(os.Stdin),
	}

	// Restore the prompt's identity from a previous run.
	if sess, err := app.auth.Session(ctx); err == nil {
		app.user = sess.User.Email
	}

	return app, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Root(ctx)
}

func (a *App) Close() {
	_ = a.db.Close()
}

func (a *App) isLoggedIn() bool {
	return a.user != ""
}
