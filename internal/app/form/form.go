// Package form drives the prediction form: it validates a request, submits
// it to the prediction service and renders either a result panel or an
// error message on a View.
package form

import (
	"context"
	"errors"
	"strconv"

	"github.com/okian/obesiscope/internal/adapters/backend"
	"github.com/okian/obesiscope/internal/domain/prediction"
	"github.com/okian/obesiscope/pkg/logger"
	"github.com/okian/obesiscope/pkg/metrics"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// User-visible strings.
const (
	SubmitLabel       = "Prever"
	BusyLabel         = "Processando..."
	TotalErrorMessage = "Erro ao carregar dados"
	NetworkMessage    = "Não foi possível conectar ao servidor"
)

// Backend is the part of the prediction service the form needs.
type Backend interface {
	Predict(ctx context.Context, r prediction.Request) backend.Result[prediction.Result]
	Total(ctx context.Context) backend.Result[int]
}

// View receives the form's presentation state.
type View interface {
	// SetBusy disables the submit control while a request is in flight.
	SetBusy(busy bool)
	ShowResult(p ResultPanel)
	// ShowError shows message in the error style and hides the details.
	ShowError(message string)
}

// Detail is one line of the details list.
type Detail struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ResultPanel is everything shown after a successful prediction.
type ResultPanel struct {
	Category     prediction.Category `json:"category"`
	Label        string              `json:"label"`
	PredictionID prediction.ID       `json:"prediction_id"`
	Details      []Detail            `json:"details"`
}

// NewResultPanel builds the panel for res from the request that produced it.
func NewResultPanel(req prediction.Request, res prediction.Result) ResultPanel {
	cat := prediction.Category(res.Prediction)
	return ResultPanel{
		Category:     cat,
		Label:        prediction.Label(cat),
		PredictionID: res.PredictionID,
		Details: []Detail{
			{Label: "Idade", Value: strconv.Itoa(req.Age) + " anos"},
			{Label: "Gênero", Value: prediction.GenderLabel(req.Gender)},
			{Label: "IMC", Value: prediction.FormatBMI(prediction.BMI(req.Weight, req.Height))},
			{Label: "Atividade Física", Value: prediction.ActivityPhrase(req.FAF)},
			{Label: "Fumante", Value: prediction.YesNoLabel(req.Smoke)},
		},
	}
}

// Controller owns one form.
type Controller struct {
	backend Backend
	logger  logger.Logger
}

// Option applies a configuration option to the Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewController returns a controller submitting to b.
func NewController(b Backend, opts ...Option) *Controller {
	c := &Controller{backend: b, logger: logger.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit validates req and, if it passes, asks the service for a
// prediction. The outcome is rendered on v and also returned. The view is
// never left busy.
func (c *Controller) Submit(ctx context.Context, v View, req prediction.Request) (ResultPanel, error) {
	metrics.RecordPredictionSubmitted()

	if err := prediction.Validate(req); err != nil {
		var ve *prediction.ValidationError
		if errors.As(err, &ve) {
			metrics.RecordValidationFailure(ve.Field)
		}
		c.logger.Debug(ctx, "prediction request rejected", logger.Error(err))
		v.ShowError(UserMessage(err))
		return ResultPanel{}, err
	}

	v.SetBusy(true)
	defer v.SetBusy(false)

	res, err := c.backend.Predict(ctx, req).Unwrap()
	if err != nil {
		c.logger.Warn(ctx, "prediction failed", logger.Error(err))
		v.ShowError(UserMessage(err))
		return ResultPanel{}, err
	}

	panel := NewResultPanel(req, res)
	metrics.RecordPredictionSucceeded(string(panel.Category))
	c.logger.Info(ctx, "prediction completed",
		logger.String("prediction", res.Prediction),
		logger.String("prediction_id", string(res.PredictionID)))
	v.ShowResult(panel)
	return panel, nil
}

// LoadTotal returns the total number of predictions formatted for display,
// or TotalErrorMessage with the cause.
func (c *Controller) LoadTotal(ctx context.Context) (string, error) {
	n, err := c.backend.Total(ctx).Unwrap()
	if err != nil {
		c.logger.Warn(ctx, "failed to load total predictions", logger.Error(err))
		return TotalErrorMessage, err
	}
	return FormatCount(n), nil
}

// UserMessage converts err into the text shown to the user.
func UserMessage(err error) string {
	var ve *prediction.ValidationError
	var se *backend.ServerError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return ve.Message
	case errors.As(err, &se):
		return se.Message
	case errors.Is(err, backend.ErrNetwork):
		return NetworkMessage
	case errors.Is(err, backend.ErrDecode):
		return backend.GenericServerMessage
	default:
		return err.Error()
	}
}

// FormatCount groups thousands with dots, as pt-BR does.
func FormatCount(n int) string {
	return message.NewPrinter(language.BrazilianPortuguese).Sprintf("%d", n)
}
