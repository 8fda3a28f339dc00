// Package server initializes and runs the ReadNest backend: it opens the
// remote store when reachable, prepares the file fallback, wires one hybrid
// coordinator per entity class, and serves the HTTP API with graceful
// shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/readnest/readnest/internal/feed"
	"github.com/readnest/readnest/internal/logging"
	"github.com/readnest/readnest/internal/models"
	"github.com/readnest/readnest/internal/server/api"
	"github.com/readnest/readnest/internal/server/config"
	"github.com/readnest/readnest/internal/storage"
	"github.com/readnest/readnest/internal/storage/hybrid"
	"github.com/readnest/readnest/internal/storage/jsonfile"
	"github.com/readnest/readnest/internal/storage/postgres"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	handler http.Handler
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	db := openRemote(ctx, cfg, logger)

	local, err := newFileStores(cfg.DataDir, logger)
	if err != nil {
		return nil, fmt.Errorf("file store init error: %w", err)
	}

	var (
		remoteJournals  storage.Store[models.JournalEntry, models.JournalPatch]
		remoteFeeds     storage.Store[models.FeedSubscription, models.FeedPatch]
		remoteArticles  storage.Store[models.Article, models.ArticlePatch]
		remoteDocuments storage.Store[models.Document, models.DocumentPatch]
	)
	if db != nil {
		remoteJournals = postgres.NewJournalStore(db)
		remoteFeeds = postgres.NewFeedStore(db)
		remoteArticles = postgres.NewArticleStore(db)
		remoteDocuments = postgres.NewDocumentStore(db)
	}

	journals := hybrid.New[models.JournalEntry, models.JournalPatch]("journals", remoteJournals, local.journals, logger)
	feeds := hybrid.New[models.FeedSubscription, models.FeedPatch]("feeds", remoteFeeds, local.feeds, logger)
	articles := hybrid.New[models.Article, models.ArticlePatch]("articles", remoteArticles, local.articles, logger)
	documents := hybrid.New[models.Document, models.DocumentPatch]("documents", remoteDocuments, local.documents, logger)

	fetcher := feed.NewFetcher(logger, cfg.FetchTimeout, cfg.MaxFeedEntries)
	feedSvc := feed.NewService(fetcher, feeds, articles, logger)

	srv := &api.Server{
		Journals:  journals,
		Feeds:     feeds,
		Articles:  articles,
		Documents: documents,
		FeedSvc:   feedSvc,
		Statuses: map[string]func() bool{
			"journals":  journals.Degraded,
			"feeds":     feeds.Degraded,
			"articles":  articles.Degraded,
			"documents": documents.Degraded,
		},
		SecretKey: []byte(cfg.SecretKey),
		Log:       logger,
	}

	return &App{config: cfg, logger: logger, db: db, handler: srv.NewRouter()}, nil
}

// openRemote opens and migrates the remote store. Any failure is logged and
// leaves the app on file storage; it never prevents startup.
func openRemote(ctx context.Context, cfg *config.Config, logger logging.Logger) *sql.DB {
	if cfg.DatabaseDSN == "" {
		logger.Warn(ctx, "no database DSN configured, running on file storage")
		return nil
	}

	db, err := postgres.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Warn(ctx, "remote store unreachable, running on file storage", "error", err)
		if db != nil {
			db.Close()
		}
		return nil
	}

	if err := postgres.RunMigrations(ctx, db); err != nil {
		logger.Warn(ctx, "migrations failed, running on file storage", "error", err)
		db.Close()
		return nil
	}

	return db
}

type fileStores struct {
	journals  storage.Store[models.JournalEntry, models.JournalPatch]
	feeds     storage.Store[models.FeedSubscription, models.FeedPatch]
	articles  storage.Store[models.Article, models.ArticlePatch]
	documents storage.Store[models.Document, models.DocumentPatch]
}

func newFileStores(dir string, logger logging.Logger) (*fileStores, error) {
	journals, err := jsonfile.NewJournalStore(dir, logger)
	if err != nil {
		return nil, err
	}
	feeds, err := jsonfile.NewFeedStore(dir, logger)
	if err != nil {
		return nil, err
	}
	articles, err := jsonfile.NewArticleStore(dir, logger)
	if err != nil {
		return nil, err
	}
	documents, err := jsonfile.NewDocumentStore(dir, logger)
	if err != nil {
		return nil, err
	}
	return &fileStores{journals: journals, feeds: feeds, articles: articles, documents: documents}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "addr", app.config.Addr)

	app.initSignalHandler(cancelFunc)

	httpServer := &http.Server{
		Addr:    app.config.Addr,
		Handler: app.handler,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "shutdown error", "error", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error(ctx, "server error", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "db close error", "error", err)
		}
	}

	app.logger.Info(ctx, "Shutdown complete")
}
