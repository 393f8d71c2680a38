// Package tools provides MCP (Model Context Protocol) tools for reading
// SweatStack activity data. Every tool is read-only and re-fetches from the
// API on each call. The tools can be served standalone or embedded into an
// existing MCP server.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"k8s.io/klog/v2"

	"github.com/sweatstack/sweatstack-mcp/internal/cel"
	"github.com/sweatstack/sweatstack-mcp/internal/config"
	"github.com/sweatstack/sweatstack-mcp/internal/plot"
	"github.com/sweatstack/sweatstack-mcp/internal/timeutil"
	"github.com/sweatstack/sweatstack-mcp/pkg/frame"
	"github.com/sweatstack/sweatstack-mcp/pkg/sweatstack"
)

const (
	defaultListLimit = 20
	maxListLimit     = 200
)

// ActivityClient is the subset of the SweatStack API the tools use.
type ActivityClient interface {
	GetActivity(ctx context.Context, activityID string) (*sweatstack.Activity, error)
	GetLatestActivity(ctx context.Context, sport sweatstack.Sport) (*sweatstack.Activity, error)
	ListActivities(ctx context.Context, opts sweatstack.ListOptions) ([]sweatstack.ActivitySummary, error)
	GetActivityData(ctx context.Context, activityID string, opts ...sweatstack.DataOption) (*frame.Frame, error)
	GetActivityMeanMax(ctx context.Context, activityID string, metric sweatstack.Metric) ([]sweatstack.MeanMaxPoint, error)
}

// ToolProvider exposes SweatStack queries as MCP tools.
type ToolProvider struct {
	client ActivityClient
	now    func() time.Time
}

// NewToolProvider creates a ToolProvider backed by a SweatStack API client
// built from cfg.
func NewToolProvider(cfg *config.Config) (*ToolProvider, error) {
	client, err := sweatstack.NewClient(cfg.BaseURL, cfg.APIKey,
		sweatstack.WithRateLimit(cfg.RequestsPerSecond),
		sweatstack.WithTimeout(cfg.Timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create SweatStack client: %w", err)
	}
	return NewToolProviderWithClient(client), nil
}

// NewToolProviderWithClient creates a ToolProvider with an existing client.
func NewToolProviderWithClient(client ActivityClient) *ToolProvider {
	return &ToolProvider{
		client: client,
		now:    time.Now,
	}
}

// RegisterTools registers all SweatStack tools with an MCP server.
func (p *ToolProvider) RegisterTools(server *mcp.Server) {
	sportEnum := enumOf(sweatstack.Sports())
	metricEnum := enumOf(sweatstack.Metrics)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_activity_details",
		Description: "Get the details for an activity from SweatStack: sport, start and end time, recorded metrics, summary values and laps. Returns JSON.",
		InputSchema: inputSchema[ActivityIDArgs](nil),
		Annotations: readOnly("Activity details"),
	}, instrument("get_activity_details", p.handleGetActivityDetails))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_latest_activity_details",
		Description: "Get the details of the latest activity from SweatStack. If sport is provided, get the latest activity for that sport. Returns JSON.",
		InputSchema: inputSchema[LatestActivityArgs](map[string][]any{"sport": sportEnum}),
		Annotations: readOnly("Latest activity details"),
	}, instrument("get_latest_activity_details", p.handleGetLatestActivityDetails))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_activity_data",
		Description: "Get the timeseries data for an activity from SweatStack. Data is downsampled around power or speed to reduce its size. Includes a cumulative distance column. Returns a CSV string.",
		InputSchema: inputSchema[ActivityIDArgs](nil),
		Annotations: readOnly("Activity data"),
	}, instrument("get_activity_data", p.handleGetActivityData))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_latest_activity_data",
		Description: "Get the timeseries data for the latest activity from SweatStack, optionally for one sport. Data is downsampled around power or speed to reduce its size. Returns a CSV string.",
		InputSchema: inputSchema[LatestActivityArgs](map[string][]any{"sport": sportEnum}),
		Annotations: readOnly("Latest activity data"),
	}, instrument("get_latest_activity_data", p.handleGetLatestActivityData))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_activity_mean_max_values",
		Description: "Get the mean-max curve of an activity: for each duration, the maximum average value sustained over any window of that length. It is different from the timeseries data and should not be used to calculate mean values. Only power and speed are supported. Returns a CSV string.",
		InputSchema: inputSchema[MeanMaxArgs](map[string][]any{"metric": enumOf(sweatstack.MeanMaxMetrics)}),
		Annotations: readOnly("Activity mean-max curve"),
	}, instrument("get_activity_mean_max_values", p.handleGetActivityMeanMaxValues))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_activity_plot",
		Description: "Get a plot of the timeseries data for an activity for a specific metric. Returns a JPEG image, or a message when the metric was not recorded.",
		InputSchema: inputSchema[PlotArgs](map[string][]any{"metric": metricEnum}),
		Annotations: readOnly("Activity plot"),
	}, instrument("get_activity_plot", p.handleGetActivityPlot))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_latest_activity_plot",
		Description: "Get a plot of the timeseries data for the latest activity for a specific metric, optionally for one sport. Returns a JPEG image, or a message when the metric was not recorded.",
		InputSchema: inputSchema[LatestPlotArgs](map[string][]any{"metric": metricEnum, "sport": sportEnum}),
		Annotations: readOnly("Latest activity plot"),
	}, instrument("get_latest_activity_plot", p.handleGetLatestActivityPlot))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_activities",
		Description: "List activities from SweatStack, newest first. Use this to find activity ids for the other tools. Returns a CSV string with id, name, sport, start, end, duration, distance and metrics.",
		InputSchema: inputSchema[ListActivitiesArgs](map[string][]any{"sport": sportEnum}),
		Annotations: readOnly("List activities"),
	}, instrument("list_activities", p.handleListActivities))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_activity_metric_summary",
		Description: "Get the mean and max of one metric over the full timeseries of an activity. Returns a CSV string with activity_id, mean and max.",
		InputSchema: inputSchema[MetricSummaryArgs](map[string][]any{"metric": metricEnum}),
		Annotations: readOnly("Activity metric summary"),
	}, instrument("get_activity_metric_summary", p.handleGetActivityMetricSummary))
}

// ActivityIDArgs identifies a single activity.
type ActivityIDArgs struct {
	ActivityID string `json:"activity_id" jsonschema:"The SweatStack activity id"`
}

// LatestActivityArgs selects the latest activity, optionally of one sport.
type LatestActivityArgs struct {
	Sport string `json:"sport,omitempty" jsonschema:"Only consider activities of this sport. Omit for any sport."`
}

// MeanMaxArgs contains the arguments for the get_activity_mean_max_values tool.
type MeanMaxArgs struct {
	ActivityID string `json:"activity_id" jsonschema:"The SweatStack activity id"`
	Metric     string `json:"metric" jsonschema:"Metric of the mean-max curve: power or speed"`
}

// PlotArgs contains the arguments for the get_activity_plot tool.
type PlotArgs struct {
	ActivityID string `json:"activity_id" jsonschema:"The SweatStack activity id"`
	Metric     string `json:"metric" jsonschema:"Metric to plot against elapsed time"`
}

// LatestPlotArgs contains the arguments for the get_latest_activity_plot tool.
type LatestPlotArgs struct {
	Metric string `json:"metric" jsonschema:"Metric to plot against elapsed time"`
	Sport  string `json:"sport,omitempty" jsonschema:"Only consider activities of this sport. Omit for any sport."`
}

// ListActivitiesArgs contains the arguments for the list_activities tool.
type ListActivitiesArgs struct {
	Sport     string `json:"sport,omitempty" jsonschema:"Only list activities of this sport"`
	StartTime string `json:"start_time,omitempty" jsonschema:"Only list activities starting after this time. Supports relative times (e.g. 'now-7d'), dates (2024-05-01) or RFC3339 timestamps."`
	EndTime   string `json:"end_time,omitempty" jsonschema:"Only list activities starting before this time. Same formats as start_time."`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum activities to return (default: 20, max: 200)"`
	Filter    string `json:"filter,omitempty" jsonschema:"CEL filter applied to the returned page. Available fields: activity.id, activity.name, activity.sport, activity.start, activity.end, activity.duration (seconds), activity.distance (meters), activity.metrics. Example: activity.duration > 3600 && 'power' in activity.metrics"`
}

// MetricSummaryArgs contains the arguments for the get_activity_metric_summary tool.
type MetricSummaryArgs struct {
	ActivityID string `json:"activity_id" jsonschema:"The SweatStack activity id"`
	Metric     string `json:"metric" jsonschema:"Metric to summarize"`
}

func (p *ToolProvider) handleGetActivityDetails(ctx context.Context, req *mcp.CallToolRequest, args ActivityIDArgs) (*mcp.CallToolResult, any, error) {
	if errs := validateActivityID(args.ActivityID); len(errs) > 0 {
		return validationResult(errs), nil, nil
	}

	activity, err := p.client.GetActivity(ctx, args.ActivityID)
	if err != nil {
		return errorResult(err.Error()), nil, nil
	}
	return jsonResult(activity)
}

func (p *ToolProvider) handleGetLatestActivityDetails(ctx context.Context, req *mcp.CallToolRequest, args LatestActivityArgs) (*mcp.CallToolResult, any, error) {
	activity, errResult := p.latestActivity(ctx, args.Sport)
	if errResult != nil {
		return errResult, nil, nil
	}
	return jsonResult(activity)
}

func (p *ToolProvider) handleGetActivityData(ctx context.Context, req *mcp.CallToolRequest, args ActivityIDArgs) (*mcp.CallToolResult, any, error) {
	if errs := validateActivityID(args.ActivityID); len(errs) > 0 {
		return validationResult(errs), nil, nil
	}

	activity, err := p.client.GetActivity(ctx, args.ActivityID)
	if err != nil {
		return errorResult(err.Error()), nil, nil
	}
	return p.activityData(ctx, activity), nil, nil
}

func (p *ToolProvider) handleGetLatestActivityData(ctx context.Context, req *mcp.CallToolRequest, args LatestActivityArgs) (*mcp.CallToolResult, any, error) {
	activity, errResult := p.latestActivity(ctx, args.Sport)
	if errResult != nil {
		return errResult, nil, nil
	}
	return p.activityData(ctx, activity), nil, nil
}

// activityData fetches the time series of activity downsampled around its
// anchor metric and reshapes it to CSV.
func (p *ToolProvider) activityData(ctx context.Context, activity *sweatstack.Activity) *mcp.CallToolResult {
	opts := dataOptionsFor(activity)
	klog.V(3).InfoS("Fetching activity data", "activityID", activity.ID, "sport", activity.Sport, "adaptiveSampling", len(opts) > 0)

	data, err := p.client.GetActivityData(ctx, activity.ID, opts...)
	if err != nil {
		return errorResult(err.Error())
	}

	csv, err := AgentFriendlyCSV(data)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to format activity data: %v", err))
	}
	return textResult(csv)
}

func (p *ToolProvider) handleGetActivityMeanMaxValues(ctx context.Context, req *mcp.CallToolRequest, args MeanMaxArgs) (*mcp.CallToolResult, any, error) {
	errs := validateActivityID(args.ActivityID)
	metric, metricErrs := parseMetricArg(args.Metric, sweatstack.ParseMeanMaxMetric)
	if errs = append(errs, metricErrs...); len(errs) > 0 {
		return validationResult(errs), nil, nil
	}

	points, err := p.client.GetActivityMeanMax(ctx, args.ActivityID, metric)
	if err != nil {
		return errorResult(err.Error()), nil, nil
	}

	table := frame.NewRows(len(points))
	durations := make([]any, len(points))
	values := make([]any, len(points))
	for i, point := range points {
		durations[i] = point.Duration
		values[i] = point.Value
	}
	if err := table.Set("duration", durations); err != nil {
		return errorResult(err.Error()), nil, nil
	}
	if err := table.Set(string(metric), values); err != nil {
		return errorResult(err.Error()), nil, nil
	}
	return csvResult(table)
}

func (p *ToolProvider) handleGetActivityPlot(ctx context.Context, req *mcp.CallToolRequest, args PlotArgs) (*mcp.CallToolResult, any, error) {
	errs := validateActivityID(args.ActivityID)
	metric, metricErrs := parseMetricArg(args.Metric, sweatstack.ParseMetric)
	if errs = append(errs, metricErrs...); len(errs) > 0 {
		return validationResult(errs), nil, nil
	}
	return p.activityPlot(ctx, args.ActivityID, metric), nil, nil
}

func (p *ToolProvider) handleGetLatestActivityPlot(ctx context.Context, req *mcp.CallToolRequest, args LatestPlotArgs) (*mcp.CallToolResult, any, error) {
	metric, errs := parseMetricArg(args.Metric, sweatstack.ParseMetric)
	if len(errs) > 0 {
		return validationResult(errs), nil, nil
	}

	activity, errResult := p.latestActivity(ctx, args.Sport)
	if errResult != nil {
		return errResult, nil, nil
	}
	return p.activityPlot(ctx, activity.ID, metric), nil, nil
}

// activityPlot renders one metric of an activity. A metric that was not
// recorded is reported as text rather than as an error.
func (p *ToolProvider) activityPlot(ctx context.Context, activityID string, metric sweatstack.Metric) *mcp.CallToolResult {
	data, err := p.client.GetActivityData(ctx, activityID)
	if err != nil {
		return errorResult(err.Error())
	}

	if !data.Has(string(metric)) {
		return textResult(fmt.Sprintf("Metric %s not found in this activity. Try a different metric or activity.", metric))
	}

	img, err := plot.Render(data, string(metric), plot.Options{
		Title:  "Activity " + activityID,
		YLabel: string(metric),
	})
	if errors.Is(err, plot.ErrNoValues) {
		return textResult(fmt.Sprintf("Metric %s has no values in this activity. Try a different metric or activity.", metric))
	}
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to render plot: %v", err))
	}
	return imageResult(img, plot.MIMEType)
}

func (p *ToolProvider) handleListActivities(ctx context.Context, req *mcp.CallToolRequest, args ListActivitiesArgs) (*mcp.CallToolResult, any, error) {
	limit := args.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	opts := sweatstack.ListOptions{Limit: limit}
	sport, errs := parseSportArg(args.Sport)
	if len(errs) > 0 {
		return validationResult(errs), nil, nil
	}
	if sport != "" {
		opts.Sports = []sweatstack.Sport{sport}
	}

	window, err := timeutil.ParseWindow(args.StartTime, args.EndTime, p.now())
	if err != nil {
		return errorResult(err.Error()), nil, nil
	}
	opts.Start = window.Start
	opts.End = window.End

	var filter *cel.CompiledActivityFilter
	if args.Filter != "" {
		filter, err = cel.CompileActivityFilter(args.Filter)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
	}

	activities, err := p.client.ListActivities(ctx, opts)
	if err != nil {
		return errorResult(err.Error()), nil, nil
	}

	activities, err = filter.Apply(ctx, activities)
	if err != nil {
		return errorResult(err.Error()), nil, nil
	}

	table, err := activityTable(activities)
	if err != nil {
		return errorResult(err.Error()), nil, nil
	}
	return csvResult(table)
}

func activityTable(activities []sweatstack.ActivitySummary) (*frame.Frame, error) {
	columns := []string{"id", "name", "sport", "start", "end", "duration", "distance", "metrics"}
	cells := make(map[string][]any, len(columns))
	for _, name := range columns {
		cells[name] = make([]any, len(activities))
	}

	for i, a := range activities {
		cells["id"][i] = a.ID
		cells["name"][i] = a.Name
		cells["sport"][i] = string(a.Sport)
		cells["start"][i] = a.Start
		cells["end"][i] = a.End
		cells["duration"][i] = a.Duration
		cells["distance"][i] = a.Distance
		cells["metrics"][i] = strings.Join(sweatstack.Names(a.Metrics), ";")
	}

	table := frame.NewRows(len(activities))
	for _, name := range columns {
		if err := table.Set(name, cells[name]); err != nil {
			return nil, err
		}
	}
	return table, nil
}

func (p *ToolProvider) handleGetActivityMetricSummary(ctx context.Context, req *mcp.CallToolRequest, args MetricSummaryArgs) (*mcp.CallToolResult, any, error) {
	errs := validateActivityID(args.ActivityID)
	metric, metricErrs := parseMetricArg(args.Metric, sweatstack.ParseMetric)
	if errs = append(errs, metricErrs...); len(errs) > 0 {
		return validationResult(errs), nil, nil
	}

	data, err := p.client.GetActivityData(ctx, args.ActivityID)
	if err != nil {
		return errorResult(err.Error()), nil, nil
	}
	if !data.Has(string(metric)) {
		return errorResult(fmt.Sprintf("Metric %s not found in activity %s", metric, args.ActivityID)), nil, nil
	}

	table, err := MetricSummary(data, string(metric), args.ActivityID)
	if err != nil {
		return errorResult(err.Error()), nil, nil
	}
	return csvResult(table)
}

// latestActivity resolves the latest activity of an optional sport. A non-nil
// result reports the failure to the caller.
func (p *ToolProvider) latestActivity(ctx context.Context, sportName string) (*sweatstack.Activity, *mcp.CallToolResult) {
	sport, errs := parseSportArg(sportName)
	if len(errs) > 0 {
		return nil, validationResult(errs)
	}

	activity, err := p.client.GetLatestActivity(ctx, sport)
	if err != nil {
		return nil, errorResult(err.Error())
	}
	return activity, nil
}

// Helper functions

func readOnly(title string) *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		Title:          title,
		ReadOnlyHint:   true,
		IdempotentHint: true,
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: message},
		},
	}
}

func imageResult(data []byte, mimeType string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.ImageContent{Data: data, MIMEType: mimeType},
		},
	}
}

func jsonResult(v any) (*mcp.CallToolResult, any, error) {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to format results: %v", err)), nil, nil
	}
	return textResult(string(jsonBytes)), nil, nil
}

func csvResult(table *frame.Frame) (*mcp.CallToolResult, any, error) {
	csv, err := table.CSV()
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to format results: %v", err)), nil, nil
	}
	return textResult(csv), nil, nil
}
