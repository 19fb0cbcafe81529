package rest

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/himalgames/monopoly-backend/internal/service"
)

type Server struct {
	logger *slog.Logger
	games  service.GameService
}

func New(logger *slog.Logger, games service.GameService) *Server {
	return &Server{
		logger: logger.With("component", "rest_server"),
		games:  games,
	}
}

func (that *Server) Start(port string) error {
	router := mux.NewRouter()
	router.HandleFunc("/ping", that.handlePing).Methods(http.MethodGet)
	router.HandleFunc("/games", that.handleListOpenGames).Methods(http.MethodGet)
	router.HandleFunc("/games/{id}", that.handleGetGame).Methods(http.MethodGet)
	router.HandleFunc("/players/{id}/game", that.handleFindPlayerGame).Methods(http.MethodGet)
	router.HandleFunc("/board", that.handleGetBoard).Methods(http.MethodGet)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
