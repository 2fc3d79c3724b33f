package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"carousel/internal/store"
)

type accountPayload struct {
	Username    string `json:"username"`
	IGUserID    string `json:"ig_user_id"`
	AccessToken string `json:"access_token"`
	Email       string `json:"email"`
}

type accountView struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	IGUserID       string `json:"ig_user_id"`
	Email          string `json:"email,omitempty"`
	HasCredentials bool   `json:"has_credentials"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

// viewAccount hides the access token from API responses.
func viewAccount(account *store.Account) accountView {
	return accountView{
		ID:             account.ID,
		Username:       account.Username,
		IGUserID:       account.IGUserID,
		Email:          account.Email,
		HasCredentials: account.HasCredentials(),
		CreatedAt:      account.CreatedAt.Format(timeFormat),
		UpdatedAt:      account.UpdatedAt.Format(timeFormat),
	}
}

func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		accounts, err := s.store.ListAccounts(r.Context())
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		views := make([]accountView, 0, len(accounts))
		for _, account := range accounts {
			views = append(views, viewAccount(account))
		}
		s.writeJSON(w, http.StatusOK, map[string]any{"accounts": views})
	case http.MethodPost:
		var payload accountPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if strings.TrimSpace(payload.Username) == "" {
			s.writeError(w, http.StatusBadRequest, "username is required")
			return
		}
		account, err := s.store.CreateAccount(r.Context(), &store.Account{
			Username:    payload.Username,
			IGUserID:    payload.IGUserID,
			AccessToken: payload.AccessToken,
			Email:       payload.Email,
		})
		if err != nil {
			s.writeError(w, http.StatusConflict, err.Error())
			return
		}
		s.writeJSON(w, http.StatusCreated, viewAccount(account))
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r.URL.Path, "/api/accounts/")
	if !ok {
		s.writeError(w, http.StatusNotFound, "account not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		account, err := s.store.GetAccount(r.Context(), id)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if account == nil {
			s.writeError(w, http.StatusNotFound, "account not found")
			return
		}
		s.writeJSON(w, http.StatusOK, viewAccount(account))
	case http.MethodPut:
		account, err := s.store.GetAccount(r.Context(), id)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if account == nil {
			s.writeError(w, http.StatusNotFound, "account not found")
			return
		}
		var payload accountPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if payload.Username != "" {
			account.Username = payload.Username
		}
		if payload.IGUserID != "" {
			account.IGUserID = payload.IGUserID
		}
		if payload.AccessToken != "" {
			account.AccessToken = payload.AccessToken
		}
		if payload.Email != "" {
			account.Email = payload.Email
		}
		if err := s.store.UpdateAccount(r.Context(), account); err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, viewAccount(account))
	case http.MethodDelete:
		deleted, err := s.store.DeleteAccount(r.Context(), id)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if !deleted {
			s.writeError(w, http.StatusNotFound, "account not found")
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// pathID extracts the trailing numeric id from an exact-prefix route.
func pathID(path, prefix string) (int64, bool) {
	raw := strings.TrimPrefix(path, prefix)
	if raw == "" || strings.Contains(raw, "/") {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
