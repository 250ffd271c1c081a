// Package backend is the HTTP+JSON client for the prediction service.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/okian/obesiscope/internal/domain/prediction"
	"github.com/okian/obesiscope/internal/domain/stats"
	"github.com/okian/obesiscope/pkg/logger"
	"github.com/okian/obesiscope/pkg/metrics"
	"github.com/tidwall/gjson"
)

// Service endpoints.
const (
	EndpointPredict       = "/predict"
	EndpointTotal         = "/total_predictions"
	EndpointDistribution  = "/predictions/distribution"
	EndpointGenderStats   = "/predictions/gender-stats"
	EndpointAgeStats      = "/predictions/age-stats"
	EndpointActivityStats = "/predictions/activity-stats"
	EndpointFeatures      = "/features"
	EndpointHistory       = "/predictions"
)

// RequestIDHeader correlates console logs with service logs.
const RequestIDHeader = "X-Request-ID"

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 4 << 20
)

// Client talks to one prediction service origin.
type Client struct {
	baseURL string
	http    *http.Client
	logger  logger.Logger
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the service origin.
func (c *Client) BaseURL() string { return c.baseURL }

// do issues one request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, method, endpoint string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal %s request: %w", endpoint, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, &NetworkError{Endpoint: endpoint, Err: err}
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordBackendError(endpoint, "network")
		c.logger.Warn(ctx, "backend request failed",
			logger.String("endpoint", endpoint),
			logger.String("request_id", reqID),
			logger.Error(err))
		return nil, &NetworkError{Endpoint: endpoint, Err: err}
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Debug(ctx, "failed to close response body", logger.Error(cerr))
		}
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	metrics.RecordBackendRequest(endpoint, strconv.Itoa(resp.StatusCode), time.Since(start))
	if err != nil {
		metrics.RecordBackendError(endpoint, "network")
		return nil, &NetworkError{Endpoint: endpoint, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.RecordBackendError(endpoint, "server")
		msg := GenericServerMessage
		if m := gjson.GetBytes(data, "error"); m.Type == gjson.String && m.String() != "" {
			msg = m.String()
		}
		c.logger.Warn(ctx, "backend returned error status",
			logger.String("endpoint", endpoint),
			logger.String("request_id", reqID),
			logger.Int("status", resp.StatusCode),
			logger.String("message", msg))
		return nil, &ServerError{Endpoint: endpoint, Status: resp.StatusCode, Message: msg}
	}

	c.logger.Debug(ctx, "backend request completed",
		logger.String("endpoint", endpoint),
		logger.String("request_id", reqID),
		logger.Duration("took", time.Since(start)))
	return data, nil
}

func getJSON[T any](ctx context.Context, c *Client, endpoint string) Result[T] {
	var zero T
	data, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fail[T](err)
	}
	if err := json.Unmarshal(data, &zero); err != nil {
		metrics.RecordBackendError(endpoint, "decode")
		return fail[T](fmt.Errorf("%w: %s: %w", ErrDecode, endpoint, err))
	}
	return ok(zero)
}

func getParsed[T any](ctx context.Context, c *Client, endpoint string, parse func([]byte) (T, error)) Result[T] {
	data, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fail[T](err)
	}
	v, err := parse(data)
	if err != nil {
		metrics.RecordBackendError(endpoint, "decode")
		return fail[T](fmt.Errorf("%w: %s: %w", ErrDecode, endpoint, err))
	}
	return ok(v)
}

// Predict submits a validated request for classification.
func (c *Client) Predict(ctx context.Context, r prediction.Request) Result[prediction.Result] {
	data, err := c.do(ctx, http.MethodPost, EndpointPredict, r)
	if err != nil {
		return fail[prediction.Result](err)
	}
	var res prediction.Result
	if err := json.Unmarshal(data, &res); err != nil {
		metrics.RecordBackendError(EndpointPredict, "decode")
		return fail[prediction.Result](fmt.Errorf("%w: %s: %w", ErrDecode, EndpointPredict, err))
	}
	return ok(res)
}

// Total returns the number of stored predictions.
func (c *Client) Total(ctx context.Context) Result[int] {
	r := getJSON[stats.Total](ctx, c, EndpointTotal)
	if !r.OK() {
		return fail[int](r.Err)
	}
	if r.Value.TotalPredictions == nil {
		return fail[int](fmt.Errorf("%w: %s: missing total_predictions", ErrDecode, EndpointTotal))
	}
	return ok(*r.Value.TotalPredictions)
}

// Distribution returns predictions per category in service order.
func (c *Client) Distribution(ctx context.Context) Result[stats.OrderedCounts] {
	return getParsed(ctx, c, EndpointDistribution, stats.ParseOrderedCounts)
}

// GenderStats returns the gender-segmented distribution.
func (c *Client) GenderStats(ctx context.Context) Result[stats.GenderStats] {
	return getParsed(ctx, c, EndpointGenderStats, stats.ParseGenderStats)
}

// AgeStats returns the age-bucketed summary.
func (c *Client) AgeStats(ctx context.Context) Result[[]stats.AgeBucket] {
	return getJSON[[]stats.AgeBucket](ctx, c, EndpointAgeStats)
}

// ActivityStats returns average weight per activity level.
func (c *Client) ActivityStats(ctx context.Context) Result[[]stats.ActivityLevel] {
	return getJSON[[]stats.ActivityLevel](ctx, c, EndpointActivityStats)
}

// Features returns the service's description of the model inputs.
func (c *Client) Features(ctx context.Context) Result[prediction.FeatureInfo] {
	return getJSON[prediction.FeatureInfo](ctx, c, EndpointFeatures)
}

// History returns up to limit stored predictions, newest first.
func (c *Client) History(ctx context.Context, limit int) Result[[]stats.HistoryEntry] {
	r := getJSON[[]stats.HistoryEntry](ctx, c, EndpointHistory)
	if r.OK() && limit > 0 && len(r.Value) > limit {
		r.Value = r.Value[:limit]
	}
	return r
}
