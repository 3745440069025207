package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/emrgen/taxonomy/internal/service"
	"github.com/go-chi/chi/v5"
)

func NewTaxonHandler(taxa *service.TaxonService) *TaxonHandler {
	return &TaxonHandler{taxa: taxa}
}

type TaxonHandler struct {
	taxa *service.TaxonService
}

func (h *TaxonHandler) Create(w http.ResponseWriter, r *http.Request) {
	var request service.CreateTaxonRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		badRequest(w, "malformed request body")
		return
	}

	taxon, err := h.taxa.CreateTaxon(r.Context(), &request)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, taxon)
}

func (h *TaxonHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		badRequest(w, "taxon id must be a positive integer")
		return
	}

	taxon, err := h.taxa.GetTaxon(r.Context(), uint(id))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, taxon)
}

func (h *TaxonHandler) List(w http.ResponseWriter, r *http.Request) {
	taxa, err := h.taxa.ListTaxa(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"taxa": taxa})
}
