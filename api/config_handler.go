package api

import (
	"net/http"

	"github.com/seenimoa/startuplens/internal/config"
)

// handleGetConfigKeys reports which provider credentials are set and where
// they came from. Values are masked.
func (s *Server) handleGetConfigKeys(w http.ResponseWriter, r *http.Request) {
	if s.cfg == nil {
		s.writeJSON(w, http.StatusOK, []config.KeyStatus{})
		return
	}
	s.writeJSON(w, http.StatusOK, config.CheckAPIKeys(s.cfg))
}
