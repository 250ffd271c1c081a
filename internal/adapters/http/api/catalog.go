package api

import (
	"net/http"
	"strconv"

	"github.com/okian/obesiscope/internal/app/form"
)

// CatalogHandler proxies the feature description and the stored history.
type CatalogHandler struct {
	catalog  Catalog
	maxLimit int
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(c Catalog, maxLimit int) *CatalogHandler {
	if maxLimit <= 0 {
		maxLimit = 100
	}
	return &CatalogHandler{catalog: c, maxLimit: maxLimit}
}

// HandleFeatures handles GET /api/features.
func (h *CatalogHandler) HandleFeatures(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	info, err := h.catalog.Features(r.Context()).Unwrap()
	if err != nil {
		writeError(w, http.StatusBadGateway, "upstream_error", errorMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// HandleHistory handles GET /api/history?limit=N. Without a limit the
// configured maximum applies.
func (h *CatalogHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	n := h.maxLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		if v > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", ErrBadRequest)
			return
		}
		n = v
	}
	entries, err := h.catalog.History(r.Context(), n).Unwrap()
	if err != nil {
		writeError(w, http.StatusBadGateway, "upstream_error", errorMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

type messageError string

func (e messageError) Error() string { return string(e) }

func errorMessage(err error) error { return messageError(form.UserMessage(err)) }
