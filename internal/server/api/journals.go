package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/readnest/readnest/internal/models"
)

func (s *Server) listJournals(w http.ResponseWriter, r *http.Request) {
	entries, err := s.Journals.List(r.Context(), owner(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) createJournal(w http.ResponseWriter, r *http.Request) {
	var entry models.JournalEntry
	if !decodeBody(w, r, &entry) {
		return
	}
	entry.Owner = owner(r)

	created, err := s.Journals.Create(r.Context(), &entry)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) getJournal(w http.ResponseWriter, r *http.Request) {
	entry, err := s.Journals.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) updateJournal(w http.ResponseWriter, r *http.Request) {
	var patch models.JournalPatch
	if !decodeBody(w, r, &patch) {
		return
	}

	updated, err := s.Journals.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteJournal(w http.ResponseWriter, r *http.Request) {
	if err := s.Journals.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) searchJournals(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}
	entries, err := s.Journals.Search(r.Context(), owner(r), q)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
