// Package api exposes the HTTP JSON surface over the storage coordinators
// and the feed service.
package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/readnest/readnest/internal/feed"
	"github.com/readnest/readnest/internal/logging"
	"github.com/readnest/readnest/internal/models"
	"github.com/readnest/readnest/internal/server/auth"
	"github.com/readnest/readnest/internal/storage"
)

type ctxKey int

const ownerKey ctxKey = iota

// Server bundles the handlers' dependencies. Statuses reports, per entity
// class, whether its coordinator has degraded to file storage; it feeds the
// health endpoint only.
type Server struct {
	Journals  storage.Store[models.JournalEntry, models.JournalPatch]
	Feeds     storage.Store[models.FeedSubscription, models.FeedPatch]
	Articles  storage.Store[models.Article, models.ArticlePatch]
	Documents storage.Store[models.Document, models.DocumentPatch]
	FeedSvc   *feed.Service
	Statuses  map[string]func() bool
	SecretKey []byte
	Log       logging.Logger
}

// NewRouter builds the chi router for the /api surface.
func (s *Server) NewRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(s.resolveOwner)

	r.Get("/healthz", s.healthz)

	r.Route("/api", func(r chi.Router) {
		r.Route("/journals", func(r chi.Router) {
			r.Get("/", s.listJournals)
			r.Post("/", s.createJournal)
			r.Get("/search", s.searchJournals)
			r.Get("/{id}", s.getJournal)
			r.Put("/{id}", s.updateJournal)
			r.Delete("/{id}", s.deleteJournal)
		})
		r.Route("/feeds", func(r chi.Router) {
			r.Get("/", s.listFeeds)
			r.Post("/", s.subscribeFeed)
			r.Post("/refresh", s.ingestFeedURL)
			r.Get("/{id}", s.getFeed)
			r.Put("/{id}", s.updateFeed)
			r.Delete("/{id}", s.deleteFeed)
			r.Post("/{id}/refresh", s.refreshFeed)
		})
		r.Route("/articles", func(r chi.Router) {
			r.Get("/", s.listArticles)
			r.Get("/search", s.searchArticles)
			r.Get("/{id}", s.getArticle)
			r.Delete("/{id}", s.deleteArticle)
		})
		r.Route("/documents", func(r chi.Router) {
			r.Get("/", s.listDocuments)
			r.Post("/", s.createDocument)
			r.Get("/{id}", s.getDocument)
			r.Patch("/{id}", s.updateDocument)
			r.Delete("/{id}", s.deleteDocument)
		})
	})

	return r
}

// resolveOwner extracts the user id from an optional bearer token. Requests
// without a token act on the anonymous owner; a token that fails
// verification is rejected.
func (s *Server) resolveOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")
		userID, err := auth.GetUserIDFromToken(token, s.SecretKey)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ownerKey, userID)))
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.Log.Info(r.Context(), "request",
			"method", r.Method, "path", r.URL.Path,
			"status", ww.Status(), "duration", time.Since(start))
	})
}

func owner(r *http.Request) string {
	if v, ok := r.Context().Value(ownerKey).(string); ok {
		return v
	}
	return ""
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	storageModes := make(map[string]string, len(s.Statuses))
	for name, degraded := range s.Statuses {
		mode := "db"
		if degraded() {
			mode = "file"
		}
		storageModes[name] = mode
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"storage": storageModes,
	})
}
