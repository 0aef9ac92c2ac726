package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type roomLister interface {
	ListJoinableRooms(ctx context.Context) ([]string, error)
}

func Start(port string, rooms roomLister) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", pingHandler)
	mux.HandleFunc("/rooms", roomsHandler(rooms))

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func pingHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

// roomsHandler exposes the joinable-room list for clients that want to
// poll it before opening a websocket.
func roomsHandler(rooms roomLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		joinable, err := rooms.ListJoinableRooms(r.Context())
		if err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err = json.NewEncoder(w).Encode(map[string][]string{"rooms": joinable}); err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
	}
}
