package api

import (
	"net/http"
)

// TriggerManual is the trigger label recorded for API-initiated runs.
const TriggerManual = "manual"

// handleTriggerAll starts a run across every account and blocks until it
// finishes. Per-account failures are reported inside the summary rather than
// as an HTTP error, so a partially failed run still returns 200.
func (s *Server) handleTriggerAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.runner == nil {
		s.writeError(w, http.StatusServiceUnavailable, "runner unavailable")
		return
	}
	summary, err := s.runner.RunForAllAccounts(r.Context(), TriggerManual)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleTriggerAccount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.runner == nil {
		s.writeError(w, http.StatusServiceUnavailable, "runner unavailable")
		return
	}
	id, ok := pathID(r.URL.Path, "/api/scheduler/trigger/account/")
	if !ok {
		s.writeError(w, http.StatusNotFound, "account not found")
		return
	}
	summary, err := s.runner.RunForAccount(r.Context(), id, TriggerManual)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}
