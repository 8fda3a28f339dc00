package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/readnest/readnest/internal/models"
)

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.Documents.List(r.Context(), owner(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) createDocument(w http.ResponseWriter, r *http.Request) {
	var doc models.Document
	if !decodeBody(w, r, &doc) {
		return
	}
	if doc.Name == "" {
		writeError(w, http.StatusBadRequest, "missing name")
		return
	}
	if doc.Status != "" && !models.ValidDocumentStatus(doc.Status) {
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}
	doc.Owner = owner(r)

	created, err := s.Documents.Create(r.Context(), &doc)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.Documents.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) updateDocument(w http.ResponseWriter, r *http.Request) {
	var patch models.DocumentPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	if patch.Status != nil && !models.ValidDocumentStatus(*patch.Status) {
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}

	updated, err := s.Documents.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.Documents.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
