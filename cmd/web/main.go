package main

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/joho/godotenv"
	"github.com/myrjola/casebook/internal/content"
	"github.com/myrjola/casebook/internal/errors"
	"github.com/myrjola/casebook/internal/game"
	"github.com/myrjola/casebook/internal/logging"
	"github.com/myrjola/casebook/internal/pprofserver"
	"github.com/myrjola/casebook/internal/repositories"
	"github.com/myrjola/casebook/internal/sqlite"
)

type application struct {
	logger         *slog.Logger
	game           *game.Service
	sessionManager *scs.SessionManager
	requestTimeout time.Duration
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	cfg, err := loadConfig(lookupEnv)
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	loc, err := cfg.location()
	if err != nil {
		return errors.Wrap(err, "config location")
	}

	// Initialise pprof listening on localhost so that it's not open to the world.
	if cfg.PprofPort != "" {
		pprofserver.Launch(ctx, cfg.PprofPort, logger)
	}

	var db *sqlite.Database
	if db, err = sqlite.NewDatabase(ctx, cfg.SqliteURL, logger); err != nil {
		return errors.Wrap(err, "open database", slog.String("url", cfg.SqliteURL))
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "failed to close database", errors.SlogError(closeErr))
		}
	}()
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db", slog.String("url", cfg.SqliteURL))

	corpus := content.Embedded()
	if cfg.ContentDir != "" {
		corpus = os.DirFS(cfg.ContentDir)
	}
	var contentRepo *content.Repository
	if contentRepo, err = content.Load(corpus, logger); err != nil {
		return errors.Wrap(err, "load content")
	}

	dailySelector, weeklySelector := cfg.selectors(loc)
	service := game.NewService(
		contentRepo,
		repositories.NewProgressRepository(db, logger),
		repositories.NewWeeklyProgressRepository(db, logger),
		repositories.NewStatsRepository(db, logger),
		game.Options{
			DailySelector:  dailySelector,
			WeeklySelector: weeklySelector,
			Location:       loc,
			Now:            time.Now,
		},
		logger,
	)

	sessionStore := sqlite3store.NewWithCleanupInterval(db.ReadWrite.DB, 24*time.Hour) //nolint:mnd // daily
	defer sessionStore.StopCleanup()
	sessionManager := scs.New()
	sessionManager.Store = sessionStore
	sessionManager.Lifetime = cfg.SessionLifetime
	sessionManager.Cookie.Secure = true

	app := application{
		logger:         logger,
		game:           service,
		sessionManager: sessionManager,
		requestTimeout: cfg.RequestTimeout,
	}

	if err = app.configureAndStartServer(ctx, cfg.Addr); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

func main() {
	ctx := context.Background()
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   true,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.LogAttrs(ctx, slog.LevelError, "failed to load .env", errors.SlogError(err))
		os.Exit(1)
	}

	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
