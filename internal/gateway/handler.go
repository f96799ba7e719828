package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
)

// HandleBoardConnection upgrades a viewer's HTTP request to a websocket
// connection and pushes the current snapshot.
func (s *Service) HandleBoardConnection(w http.ResponseWriter, r *http.Request) {
	// In production the user identity would come from a session; here any
	// submitted name is trusted as an opaque label.
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		userID = "anonymous"
	}

	conn, err := s.cm.UpgradeConnection(w, r, userID)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to upgrade websocket connection")
		return
	}

	s.sendSnapshot(conn)
}

// HandleItems serves the pull endpoint: the full item set as a JSON array.
func (s *Service) HandleItems(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(s.app.Snapshot()); err != nil {
		log.Error().Err(err).Msg("failed to encode items")
	}
}

// HandleConnectionStats returns statistics about active connections.
func (s *Service) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"total_connections":%d}`, s.cm.ConnectionCount())
}

// RegisterRoutes registers the board's HTTP routes.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/items", s.HandleItems)
	mux.HandleFunc("/ws/board", s.HandleBoardConnection)
	mux.HandleFunc("/ws/stats", s.HandleConnectionStats)
	log.Info().Msg("gateway routes registered")
}
