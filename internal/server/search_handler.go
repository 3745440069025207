package server

import (
	"net/http"
	"strconv"

	"github.com/emrgen/taxonomy/internal/service"
)

// NewSearchHandler creates the handler for the entry search endpoint.
func NewSearchHandler(search *service.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

type SearchHandler struct {
	search *service.SearchService
}

// Search handles GET /v1/entries?q=&page=&page_size=&taxon_id=.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	request := &service.SearchRequest{
		Query:    query.Get("q"),
		Page:     intParam(query.Get("page")),
		PageSize: intParam(query.Get("page_size")),
	}
	if taxonID, err := strconv.ParseUint(query.Get("taxon_id"), 10, 32); err == nil {
		request.TaxonID = uint(taxonID)
	}

	page, err := h.search.Search(r.Context(), request)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func intParam(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
