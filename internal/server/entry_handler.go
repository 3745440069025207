package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/emrgen/taxonomy/internal/service"
	"github.com/go-chi/chi/v5"
)

// NewEntryHandler creates the handler group for entry CRUD and versions.
func NewEntryHandler(entries *service.EntryService) *EntryHandler {
	return &EntryHandler{entries: entries}
}

type EntryHandler struct {
	entries *service.EntryService
}

func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var request service.CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		badRequest(w, "malformed request body")
		return
	}

	entry, err := h.entries.CreateEntry(r.Context(), &request)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

func (h *EntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}

	entry, err := h.entries.GetEntry(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

// Update is the versioned save path: the body must carry the baseVersion the
// caller edited from.
func (h *EntryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}

	var request service.UpdateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		badRequest(w, "malformed request body")
		return
	}

	entry, err := h.entries.UpdateEntry(r.Context(), id, &request)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

// Delete soft deletes by default. With ?erase=true the live row is removed
// for good. Snapshots are kept either way.
func (h *EntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}

	var err error
	if r.URL.Query().Get("erase") == "true" {
		err = h.entries.EraseEntry(r.Context(), id)
	} else {
		err = h.entries.DeleteEntry(r.Context(), id)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *EntryHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}

	versions, err := h.entries.ListEntryVersions(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"versions": versions})
}

func (h *EntryHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}

	entry, err := h.entries.GetEntryVersion(r.Context(), id, chi.URLParam(r, "version"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

type restoreRequest struct {
	Version     int64  `json:"version"`
	BaseVersion int64  `json:"baseVersion"`
	ChangedBy   string `json:"changedBy,omitempty"`
}

func (h *EntryHandler) Restore(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}

	var request restoreRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		badRequest(w, "malformed request body")
		return
	}

	entry, err := h.entries.RestoreEntryVersion(r.Context(), id, request.Version, request.BaseVersion, request.ChangedBy)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

func entryID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		badRequest(w, "entry id must be a positive integer")
		return 0, false
	}
	return uint(id), true
}
