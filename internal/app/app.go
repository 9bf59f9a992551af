// Package app wires configuration, stores and the HTTP surface into a
// runnable server.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Jslock56/competehq/internal/config"
	"github.com/Jslock56/competehq/internal/interfaces/httpapi"
	"github.com/Jslock56/competehq/internal/localstore"
	idgen "github.com/Jslock56/competehq/internal/platform/id"
	"github.com/Jslock56/competehq/internal/platform/logging"
	"github.com/Jslock56/competehq/internal/platform/netprobe"
	"github.com/Jslock56/competehq/internal/remote"
	"github.com/Jslock56/competehq/internal/storage"
	syncsvc "github.com/Jslock56/competehq/internal/sync"
)

// App owns the HTTP server and every resource behind it.
type App struct {
	Server *http.Server

	closers []func() error
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	a := &App{}

	local, err := newLocalStore(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	a.closers = append(a.closers, local.Close)

	remoteClient, err := newRemoteClient(cfg, logger)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("build remote client: %w", err)
	}
	a.closers = append(a.closers, remoteClient.Close)

	tracker := syncsvc.NewTracker(local)
	adapter := storage.New(remoteClient, local, tracker, logger)
	syncer := syncsvc.NewService(remoteClient, local, tracker, logger, cfg.SyncWorkers)

	handler := httpapi.NewHandler(adapter, syncer, idgen.NewRandomGenerator(), logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if server.Addr == "" {
		_ = a.Close()
		return nil, fmt.Errorf("http server addr cannot be empty")
	}
	a.Server = server

	// A failed first connect is fine: the adapter serves from the local
	// store until GoOnline or a sync brings the remote back.
	if err := remoteClient.Connect(context.Background()); err != nil {
		logger.Warn("initial remote connect failed, starting offline", "error", err)
	}

	return a, nil
}

// Close releases stores and connections in reverse wiring order.
func (a *App) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func newLocalStore(cfg config.Config, logger *logging.Logger) (localstore.Store, error) {
	if cfg.LocalStorePath == "" {
		logger.Info("local store in memory", "reason", "LOCAL_STORE_PATH empty")
		return localstore.NewMemory(), nil
	}

	store, err := localstore.OpenSQLite(cfg.LocalStorePath)
	if err != nil {
		return nil, err
	}
	logger.Info("local store opened", "path", cfg.LocalStorePath)
	return store, nil
}

func newRemoteClient(cfg config.Config, logger *logging.Logger) (remote.Client, error) {
	if !cfg.RemoteEnabled() {
		logger.Info("remote store in memory", "reason", "DB_URL empty")
		return remote.NewMemory(), nil
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	probe := netprobe.New(cfg.ProbeURL, cfg.ProbeTimeout)
	return postgresClient(cfg, db, probe, logger), nil
}
