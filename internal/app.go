package internal

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/starford/tagnote/internal/noteservice"
	"github.com/starford/tagnote/internal/notestore"
	"github.com/starford/tagnote/internal/sse"
)

// tagsThrottle bounds how often tags.updated is sent to SSE clients.
const tagsThrottle = 2 * time.Second

// App holds the long-lived components shared by every command.
type App struct {
	Config  *Config
	Logger  *slog.Logger
	Store   *notestore.Store
	Broker  *sse.Broker
	Service *noteservice.Service

	logFile io.Closer
}

// Open builds the logger, opens the note store and wires the service.
// The caller must Close the returned App.
func Open(opts ...Option) (*App, error) {
	app := &application{logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	logger, logFile := newLogger(cfg.App, app.logOutput)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("inbox_path", cfg.Inbox.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	if dir := filepath.Dir(cfg.SQLite.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			closeQuietly(logFile)
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	store, err := notestore.Open(cfg.SQLite.Path, logger)
	if err != nil {
		closeQuietly(logFile)
		return nil, fmt.Errorf("init note store: %w", err)
	}

	broker := sse.NewBroker(tagsThrottle)

	return &App{
		Config:  cfg,
		Logger:  logger,
		Store:   store,
		Broker:  broker,
		Service: noteservice.NewService(store, broker, logger),
		logFile: logFile,
	}, nil
}

// Close stops the broker and releases the store and the log file.
func (a *App) Close() error {
	a.Broker.Close()
	err := a.Store.Close()
	if a.logFile != nil {
		err = errors.Join(err, a.logFile.Close())
	}
	return err
}

// newLogger returns a JSON logger writing to console and, when configured,
// to a size-rotated file.
func newLogger(cfg ApplicationConfig, console io.Writer) (*slog.Logger, io.Closer) {
	var out io.Writer = console
	var closer io.Closer
	if cfg.LogFile.Path != "" {
		rotated := &lumberjack.Logger{
			Filename:   cfg.LogFile.Path,
			MaxSize:    cfg.LogFile.MaxSizeMB,
			MaxBackups: cfg.LogFile.MaxBackups,
			MaxAge:     cfg.LogFile.MaxAgeDays,
			Compress:   cfg.LogFile.Compress,
		}
		out = io.MultiWriter(console, rotated)
		closer = rotated
	}
	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})), closer
}

func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}
