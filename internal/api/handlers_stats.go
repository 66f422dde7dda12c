package api

import (
	"net/http"
)

func (s *Server) handleToolStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		jsonError(w, "tool stats unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"documents": s.store.Len(),
		"stats":     s.stats.Snapshot(),
	})
}
