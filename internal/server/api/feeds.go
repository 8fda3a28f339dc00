package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/readnest/readnest/internal/models"
)

type subscribeRequest struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

func (s *Server) listFeeds(w http.ResponseWriter, r *http.Request) {
	feeds, err := s.Feeds.List(r.Context(), owner(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, feeds)
}

func (s *Server) subscribeFeed(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "missing url")
		return
	}

	sub, added, err := s.FeedSvc.Subscribe(r.Context(), req.URL, req.Name, owner(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"subscription": sub,
		"new_articles": added,
	})
}

// ingestFeedURL fetches a feed once and stores its new articles without
// creating a subscription.
func (s *Server) ingestFeedURL(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "missing url")
		return
	}

	added, err := s.FeedSvc.IngestURL(r.Context(), req.URL, req.Name, owner(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"new_articles": added})
}

func (s *Server) getFeed(w http.ResponseWriter, r *http.Request) {
	sub, err := s.Feeds.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (s *Server) updateFeed(w http.ResponseWriter, r *http.Request) {
	var patch models.FeedPatch
	if !decodeBody(w, r, &patch) {
		return
	}

	updated, err := s.Feeds.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteFeed(w http.ResponseWriter, r *http.Request) {
	if err := s.Feeds.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) refreshFeed(w http.ResponseWriter, r *http.Request) {
	sub, added, err := s.FeedSvc.Refresh(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"subscription": sub,
		"new_articles": added,
	})
}
