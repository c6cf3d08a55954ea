package http

import (
	"context"
	"net/http"
	"time"
)

const dashboardTimeout = 7 * time.Second

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), dashboardTimeout)
	defer cancel()

	summary, err := s.dashboard.Summary(ctx, userOf(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
