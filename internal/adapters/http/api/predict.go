package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/okian/obesiscope/internal/adapters/backend"
	"github.com/okian/obesiscope/internal/app/form"
	"github.com/okian/obesiscope/internal/domain/prediction"
	"github.com/okian/obesiscope/pkg/logger"
)

const maxFormBytes = 64 << 10

// PredictHandler serves the prediction form endpoints.
type PredictHandler struct {
	form   FormController
	logger logger.Logger
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(f FormController, l logger.Logger) *PredictHandler {
	return &PredictHandler{form: f, logger: l}
}

type totalResponse struct {
	Total string `json:"total"`
	Error string `json:"error,omitempty"`
}

// HandlePredict handles POST /api/predict. The body is either a JSON
// request using the service field names or an urlencoded form with the
// same keys. The response is the resulting form state.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)

	view := &form.RecordingView{}
	req, err := decodeRequest(r)
	if err != nil {
		if errors.Is(err, prediction.ErrValidation) {
			view.ShowError(form.UserMessage(err))
			writeJSON(w, http.StatusUnprocessableEntity, view.State())
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	_, err = h.form.Submit(r.Context(), view, req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, view.State())
	case errors.Is(err, prediction.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, view.State())
	case errors.Is(err, backend.ErrServer), errors.Is(err, backend.ErrNetwork), errors.Is(err, backend.ErrDecode):
		writeJSON(w, http.StatusBadGateway, view.State())
	default:
		h.logger.Error(r.Context(), "unexpected prediction error", logger.Error(err))
		writeJSON(w, http.StatusInternalServerError, view.State())
	}
}

// HandleTotal handles GET /api/total.
func (h *PredictHandler) HandleTotal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	total, err := h.form.LoadTotal(r.Context())
	if err != nil {
		writeJSON(w, http.StatusBadGateway, totalResponse{Total: total, Error: form.UserMessage(err)})
		return
	}
	writeJSON(w, http.StatusOK, totalResponse{Total: total})
}

func decodeRequest(r *http.Request) (prediction.Request, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		var req prediction.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return prediction.Request{}, fmt.Errorf("%w: %w", ErrBadRequest, err)
		}
		return req, nil
	}

	if err := r.ParseForm(); err != nil {
		return prediction.Request{}, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	values := make(map[string]string, len(r.PostForm))
	for k := range r.PostForm {
		values[k] = r.PostForm.Get(k)
	}
	return prediction.ParseForm(values)
}
