package rest

import (
	"net/http"

	"github.com/dmitrijs2005/secondmind/internal/server/models"
	"github.com/go-chi/chi/v5"
)

type uploadURLResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type downloadURLResponse struct {
	URL string `json:"url"`
}

func (s *HTTPServer) handleList(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := caller(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		recs, err := s.svc.Entities.List(r.Context(), kind, id.UserID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, recs)
	}
}

// handleUpsert answers 200 with an empty body on success.
func (s *HTTPServer) handleUpsert(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := caller(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		var payload map[string]any
		if err := decodeJSON(r, &payload); err != nil {
			s.writeError(w, r, err)
			return
		}

		if err := s.svc.Entities.Upsert(r.Context(), kind, id.UserID, payload); err != nil {
			s.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func (s *HTTPServer) handleDelete(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := caller(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		if err := s.svc.Entities.Delete(r.Context(), kind, id.UserID, chi.URLParam(r, "external_id")); err != nil {
			s.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func (s *HTTPServer) handleUploadURL(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	key, url, err := s.svc.Documents.UploadURL(r.Context(), id.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, uploadURLResponse{Key: key, URL: url})
}

func (s *HTTPServer) handleDownloadURL(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	url, err := s.svc.Documents.DownloadURL(r.Context(), id.UserID, chi.URLParam(r, "external_id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, downloadURLResponse{URL: url})
}
