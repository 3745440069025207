package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/emrgen/taxonomy/internal/service"
	"github.com/emrgen/taxonomy/internal/store"
	"github.com/sirupsen/logrus"
)

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logrus.Errorf("encoding response: %v", err)
	}
}

// writeError maps service and store errors onto the API's status codes:
// 404 for missing entries/versions, 409 for stale base versions, 400 for
// rejected payloads, 500 otherwise.
func writeError(w http.ResponseWriter, err error) {
	var validation *service.ValidationError
	switch {
	case errors.Is(err, store.ErrEntryNotFound),
		errors.Is(err, store.ErrSnapshotNotFound),
		errors.Is(err, store.ErrTaxonNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, service.ErrVersionConflict):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "validation failed", Fields: validation.Fields})
	default:
		logrus.Errorf("internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: msg})
}
