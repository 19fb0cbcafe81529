package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/himalgames/monopoly-backend/internal/apperror"
	"github.com/himalgames/monopoly-backend/internal/board"
)

func (that *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

func (that *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	game, err := that.games.GetGameByID(r.Context(), id)
	if errors.Is(err, apperror.ErrGameNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		that.logger.Error("failed to get game", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	that.writeJSON(w, game)
}

func (that *Server) handleListOpenGames(w http.ResponseWriter, r *http.Request) {
	games, err := that.games.ListOpenGames(r.Context())
	if err != nil {
		that.logger.Error("failed to list open games", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	that.writeJSON(w, map[string]interface{}{"games": games})
}

func (that *Server) handleFindPlayerGame(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	game, err := that.games.FindGameByPlayer(r.Context(), id)
	if errors.Is(err, apperror.ErrGameNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		that.logger.Error("failed to find player game", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	that.writeJSON(w, game)
}

// handleGetBoard serves the static board and card tables so clients render
// from the same data the engine plays on.
func (that *Server) handleGetBoard(w http.ResponseWriter, _ *http.Request) {
	that.writeJSON(w, map[string]interface{}{
		"tiles":           board.Tiles,
		"chance_cards":    board.ChanceCards,
		"community_cards": board.CommunityCards,
	})
}

func (that *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		that.logger.Error("failed to encode response", "error", err)
	}
}
