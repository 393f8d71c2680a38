// Package sweatstack is a typed client for the read-only parts of the
// SweatStack API: activity metadata, time-series data, and mean-max curves.
package sweatstack

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"k8s.io/klog/v2"

	"github.com/sweatstack/sweatstack-mcp/internal/metrics"
	"github.com/sweatstack/sweatstack-mcp/internal/version"
	"github.com/sweatstack/sweatstack-mcp/pkg/frame"
)

var tracer = otel.Tracer("sweatstack-client")

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 4096

// Client talks to the SweatStack HTTP API. It is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	apiKey     string
	httpClient *http.Client
	limiter    *RateLimiter
	timeout    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRateLimit caps the request rate. Zero disables limiting.
func WithRateLimit(requestsPerSecond int) Option {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = NewRateLimiter(requestsPerSecond)
	}
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// NewClient creates a client for the API at baseURL authenticated with apiKey.
func NewClient(baseURL, apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key cannot be empty")
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL: u,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GetActivity fetches the metadata of one activity.
func (c *Client) GetActivity(ctx context.Context, activityID string) (*Activity, error) {
	if activityID == "" {
		return nil, fmt.Errorf("activity id cannot be empty")
	}

	var activity Activity
	path := "/api/v1/activities/" + url.PathEscape(activityID)
	if err := c.get(ctx, "get_activity", path, nil, &activity); err != nil {
		return nil, fmt.Errorf("failed to get activity %s: %w", activityID, err)
	}
	return &activity, nil
}

// ListActivities returns activity summaries, newest first.
func (c *Client) ListActivities(ctx context.Context, opts ListOptions) ([]ActivitySummary, error) {
	query := url.Values{}
	for _, s := range opts.Sports {
		query.Add("sports", string(s))
	}
	if opts.Start != nil {
		query.Set("start", opts.Start.Format(time.RFC3339))
	}
	if opts.End != nil {
		query.Set("end", opts.End.Format(time.RFC3339))
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		query.Set("offset", strconv.Itoa(opts.Offset))
	}

	var activities []ActivitySummary
	if err := c.get(ctx, "list_activities", "/api/v1/activities/", query, &activities); err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return activities, nil
}

// GetLatestActivity returns the metadata of the most recent activity. An
// empty sport matches any sport.
func (c *Client) GetLatestActivity(ctx context.Context, sport Sport) (*Activity, error) {
	opts := ListOptions{Limit: 1}
	if sport != "" {
		opts.Sports = []Sport{sport}
	}

	activities, err := c.ListActivities(ctx, opts)
	if err != nil {
		return nil, err
	}
	if len(activities) == 0 {
		if sport != "" {
			return nil, fmt.Errorf("%w for sport %s", ErrNoActivities, sport)
		}
		return nil, ErrNoActivities
	}

	return c.GetActivity(ctx, activities[0].ID)
}

// GetActivityData fetches the time series of an activity.
func (c *Client) GetActivityData(ctx context.Context, activityID string, opts ...DataOption) (*frame.Frame, error) {
	if activityID == "" {
		return nil, fmt.Errorf("activity id cannot be empty")
	}

	var o dataOptions
	for _, opt := range opts {
		opt(&o)
	}

	query := url.Values{}
	if o.adaptiveSamplingOn != "" {
		query.Set("adaptive_sampling_on", string(o.adaptiveSamplingOn))
	}

	var data frame.Frame
	path := "/api/v1/activities/" + url.PathEscape(activityID) + "/data"
	if err := c.get(ctx, "get_activity_data", path, query, &data); err != nil {
		return nil, fmt.Errorf("failed to get data for activity %s: %w", activityID, err)
	}
	return &data, nil
}

// GetActivityMeanMax fetches the mean-max curve of one metric.
func (c *Client) GetActivityMeanMax(ctx context.Context, activityID string, metric Metric) ([]MeanMaxPoint, error) {
	if activityID == "" {
		return nil, fmt.Errorf("activity id cannot be empty")
	}

	query := url.Values{}
	query.Set("metric", string(metric))

	var points []MeanMaxPoint
	path := "/api/v1/activities/" + url.PathEscape(activityID) + "/mean-max"
	if err := c.get(ctx, "get_activity_mean_max", path, query, &points); err != nil {
		return nil, fmt.Errorf("failed to get %s mean-max for activity %s: %w", metric, activityID, err)
	}
	return points, nil
}

// get performs an authenticated GET and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, operation, path string, query url.Values, out any) error {
	ctx, span := tracer.Start(ctx, "sweatstack."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("sweatstack.operation", operation),
			attribute.String("http.path", path),
		),
	)
	defer span.End()

	if err := c.limiter.Wait(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rate limiter wait failed")
		return err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to build request")
		return fmt.Errorf("failed to build request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "sweatstack-mcp/"+version.Version)
	req.Header.Set("X-Request-ID", requestID)
	span.SetAttributes(attribute.String("http.request_id", requestID))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.APIRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.APIRequestsTotal.WithLabelValues(operation, "transport_error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		klog.V(2).InfoS("SweatStack request failed", "operation", operation, "requestID", requestID, "error", err)
		return err
	}
	defer resp.Body.Close()

	metrics.APIRequestsTotal.WithLabelValues(operation, statusClass(resp.StatusCode)).Inc()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	klog.V(4).InfoS("SweatStack request completed",
		"operation", operation,
		"path", path,
		"status", resp.StatusCode,
		"requestID", requestID,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Message:    parseErrorBody(body),
			RequestID:  requestID,
		}
		span.RecordError(apiErr)
		span.SetStatus(codes.Error, "unexpected status")
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to decode response")
		return fmt.Errorf("failed to decode response: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
