package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/Joseda-hg/lazytareas/internal/api"
	"github.com/Joseda-hg/lazytareas/internal/config"
	"github.com/Joseda-hg/lazytareas/internal/db"
	"github.com/Joseda-hg/lazytareas/internal/session"
	"github.com/Joseda-hg/lazytareas/internal/telemetry"
	"go.uber.org/zap"
)

// App holds the services shared by every command.
type App struct {
	cfg      config.Config
	logger   *zap.Logger
	conn     *sql.DB
	store    *db.Store
	session  *session.Store
	client   *api.Client
	out      io.Writer
	shutdown telemetry.Shutdown
}

func loadConfig(cli *CLI) (config.Config, string, error) {
	cfgPath := cli.Config
	if cfgPath == "" {
		defaultPath, err := config.DefaultConfigPath()
		if err != nil {
			return config.Config{}, "", err
		}
		cfgPath = defaultPath
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, "", err
	}
	if cli.API != "" {
		cfg.APIURL = cli.API
	}
	if cli.DB != "" {
		cfg.DBPath = cli.DB
	}
	if cli.LogLevel != "" {
		cfg.LogLevel = cli.LogLevel
	}
	if cli.OTLPEndpoint != "" {
		cfg.OTLPEndpoint = cli.OTLPEndpoint
	}
	cfg.ResolvePaths(cfgPath)
	return cfg, cfgPath, nil
}

func newApp(ctx context.Context, cli *CLI) (*App, error) {
	cfg, cfgPath, err := loadConfig(cli)
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(cfgPath); os.IsNotExist(statErr) {
		if err := config.Save(cfgPath, cfg); err != nil {
			return nil, fmt.Errorf("write default config: %w", err)
		}
	}

	logger, err := telemetry.NewLogger(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	shutdown, err := telemetry.Setup(ctx, cfg.OTLPEndpoint, Version())
	if err != nil {
		logger.Warn("telemetry disabled", zap.Error(err))
		shutdown = func(context.Context) error { return nil }
	}

	conn, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	store := db.NewStore(conn)

	sess := session.New(store, logger.Named("session"))
	if err := sess.Restore(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("restore session: %w", err)
	}

	client, err := api.New(cfg.APIURL, sess,
		api.WithLogger(logger.Named("api")),
		api.WithTimeout(cfg.RequestTimeout.Std()),
		api.OnUnauthorized(func() { logger.Info("server rejected the session") }),
	)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	logger.Debug("started",
		zap.String("version", Version()),
		zap.String("config", cfgPath),
		zap.String("api", cfg.APIURL),
		zap.String("db", cfg.DBPath),
	)
	return &App{
		cfg:      cfg,
		logger:   logger,
		conn:     conn,
		store:    store,
		session:  sess,
		client:   client,
		out:      os.Stdout,
		shutdown: shutdown,
	}, nil
}

func (a *App) Close() {
	if err := a.shutdown(context.Background()); err != nil {
		a.logger.Warn("telemetry shutdown", zap.Error(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Warn("close db", zap.Error(err))
	}
	_ = a.logger.Sync()
}

func (a *App) requireSession() error {
	if !a.session.Authenticated() {
		return fmt.Errorf("not signed in, run lazytareas login first")
	}
	return nil
}
