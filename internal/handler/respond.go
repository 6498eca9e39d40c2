package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dukerupert/hearth/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseIDParam(r *http.Request) (int64, error) {
	idStr := r.PathValue("id")
	return strconv.ParseInt(idStr, 10, 64)
}

// writeStoreError maps the store's sentinel errors to status codes, falling
// back to a fixed 500 so persistence detail never leaks to the client.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrAlreadyReviewed):
		writeError(w, http.StatusConflict, "completion already reviewed")
	case errors.Is(err, store.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "chore is not open for completion")
	case errors.Is(err, store.ErrOutOfStock):
		writeError(w, http.StatusConflict, "reward out of stock")
	case errors.Is(err, store.ErrInsufficientPoints):
		writeError(w, http.StatusConflict, "insufficient points")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
