package rest

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

func pingHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

// outcomeHandler serves the per-player result record of a finished game,
// 404 while the game is still running or unknown.
func outcomeHandler(outcomes outcomeReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := mux.Vars(r)["id"]

		result, err := outcomes.Outcome(r.Context(), gameID)
		if err != nil {
			http.Error(w, "game outcome not available", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err = json.NewEncoder(w).Encode(result); err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}
}
