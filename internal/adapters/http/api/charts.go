package api

import (
	"fmt"
	"net/http"
	"strconv"
)

// ChartHandler serves rendered chart images.
type ChartHandler struct {
	store ChartStore
}

// NewChartHandler creates a new chart handler.
func NewChartHandler(store ChartStore) *ChartHandler {
	return &ChartHandler{store: store}
}

// HandleChart handles GET /charts/{key}.
func (h *ChartHandler) HandleChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	key := r.PathValue("key")
	handle, ok := h.store.Get(key)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", fmt.Errorf("%w: %s", ErrUnknownChart, key))
		return
	}
	data := handle.Bytes()
	if data == nil {
		writeError(w, http.StatusNotFound, "not_found", fmt.Errorf("%w: %s", ErrUnknownChart, key))
		return
	}
	w.Header().Set("Content-Type", handle.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
