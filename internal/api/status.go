package api

import "net/http"

// handleEngineStatus reports the worker state and engine counters.
func (s *Server) handleEngineStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.engine.Stats())
}
