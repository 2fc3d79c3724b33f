package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"carousel/internal/store"
)

type itemPayload struct {
	AccountID int64  `json:"account_id"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	SourceURL string `json:"source_url"`
}

func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		var statuses []store.ItemStatus
		for _, value := range r.URL.Query()["status"] {
			trimmed := strings.TrimSpace(value)
			if trimmed == "" {
				continue
			}
			statuses = append(statuses, store.ItemStatus(trimmed))
		}
		items, err := s.store.ListItems(r.Context(), statuses...)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		views := make([]itemView, 0, len(items))
		for _, item := range items {
			views = append(views, viewItem(item))
		}
		s.writeJSON(w, http.StatusOK, map[string]any{"items": views})
	case http.MethodPost:
		var payload itemPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		kind, ok := store.ParseKind(payload.Kind)
		if !ok {
			s.writeError(w, http.StatusBadRequest, "kind must be image or video")
			return
		}
		if payload.AccountID == 0 || strings.TrimSpace(payload.SourceURL) == "" {
			s.writeError(w, http.StatusBadRequest, "account_id and source_url are required")
			return
		}
		account, err := s.store.GetAccount(r.Context(), payload.AccountID)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if account == nil {
			s.writeError(w, http.StatusNotFound, "account not found")
			return
		}
		item, err := s.store.AddItem(r.Context(), payload.AccountID, payload.Name, kind, payload.SourceURL)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.writeJSON(w, http.StatusCreated, viewItem(item))
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r.URL.Path, "/api/items/")
	if !ok {
		s.writeError(w, http.StatusNotFound, "item not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		item, err := s.store.GetItem(r.Context(), id)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if item == nil {
			s.writeError(w, http.StatusNotFound, "item not found")
			return
		}
		s.writeJSON(w, http.StatusOK, viewItem(item))
	case http.MethodDelete:
		deleted, err := s.store.DeleteItem(r.Context(), id)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if !deleted {
			s.writeError(w, http.StatusNotFound, "item not found")
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
