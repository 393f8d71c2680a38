package tools

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sweatstack/sweatstack-mcp/pkg/frame"
	"github.com/sweatstack/sweatstack-mcp/pkg/sweatstack"
)

// =============================================================================
// Mock Client Implementation
// =============================================================================

type mockClient struct {
	getActivityFunc       func(ctx context.Context, activityID string) (*sweatstack.Activity, error)
	getLatestActivityFunc func(ctx context.Context, sport sweatstack.Sport) (*sweatstack.Activity, error)
	listActivitiesFunc    func(ctx context.Context, opts sweatstack.ListOptions) ([]sweatstack.ActivitySummary, error)
	getActivityDataFunc   func(ctx context.Context, activityID string, opts ...sweatstack.DataOption) (*frame.Frame, error)
	getMeanMaxFunc        func(ctx context.Context, activityID string, metric sweatstack.Metric) ([]sweatstack.MeanMaxPoint, error)

	dataCalls []dataCall
}

type dataCall struct {
	activityID string
	options    int
}

func newMockClient() *mockClient {
	return &mockClient{}
}

func (m *mockClient) GetActivity(ctx context.Context, activityID string) (*sweatstack.Activity, error) {
	if m.getActivityFunc != nil {
		return m.getActivityFunc(ctx, activityID)
	}
	return &sweatstack.Activity{
		ID:      activityID,
		Sport:   sweatstack.SportCyclingRoad,
		Start:   time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		End:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Metrics: []sweatstack.Metric{sweatstack.MetricPower, sweatstack.MetricSpeed},
	}, nil
}

func (m *mockClient) GetLatestActivity(ctx context.Context, sport sweatstack.Sport) (*sweatstack.Activity, error) {
	if m.getLatestActivityFunc != nil {
		return m.getLatestActivityFunc(ctx, sport)
	}
	if sport == "" {
		sport = sweatstack.SportRunning
	}
	return &sweatstack.Activity{
		ID:      "latest",
		Sport:   sport,
		Metrics: []sweatstack.Metric{sweatstack.MetricSpeed},
	}, nil
}

func (m *mockClient) ListActivities(ctx context.Context, opts sweatstack.ListOptions) ([]sweatstack.ActivitySummary, error) {
	if m.listActivitiesFunc != nil {
		return m.listActivitiesFunc(ctx, opts)
	}
	return []sweatstack.ActivitySummary{
		{ID: "ride", Name: "Morning ride", Sport: sweatstack.SportCyclingRoad, Duration: 7200, Distance: 60000, Metrics: []sweatstack.Metric{sweatstack.MetricPower, sweatstack.MetricSpeed}},
		{ID: "run", Name: "Easy run", Sport: sweatstack.SportRunning, Duration: 2400, Distance: 8000, Metrics: []sweatstack.Metric{sweatstack.MetricSpeed}},
	}, nil
}

func (m *mockClient) GetActivityData(ctx context.Context, activityID string, opts ...sweatstack.DataOption) (*frame.Frame, error) {
	m.dataCalls = append(m.dataCalls, dataCall{activityID: activityID, options: len(opts)})
	if m.getActivityDataFunc != nil {
		return m.getActivityDataFunc(ctx, activityID, opts...)
	}
	return sampleData(activityID), nil
}

func (m *mockClient) GetActivityMeanMax(ctx context.Context, activityID string, metric sweatstack.Metric) ([]sweatstack.MeanMaxPoint, error) {
	if m.getMeanMaxFunc != nil {
		return m.getMeanMaxFunc(ctx, activityID, metric)
	}
	return []sweatstack.MeanMaxPoint{
		{Duration: 1, Value: 500},
		{Duration: 60, Value: 350.5},
	}, nil
}

// sampleData is two one-second samples of the same activity at 5 m/s.
func sampleData(activityID string) *frame.Frame {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	data := frame.New([]time.Time{start, start.Add(time.Second)})
	_ = data.Set("activity_id", []any{activityID, activityID})
	_ = data.Set("duration", []any{1.0, 1.0})
	_ = data.Set("speed", []any{5.0, 5.0})
	_ = data.Set("power", []any{200.0, 240.0})
	return data
}

// =============================================================================
// Test Helper Functions
// =============================================================================

func createTestProvider(client *mockClient) *ToolProvider {
	provider := NewToolProviderWithClient(client)
	provider.now = func() time.Time {
		return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	}
	return provider
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("Expected content but got none")
	}
	textContent, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("Expected TextContent but got %T", result.Content[0])
	}
	return textContent.Text
}

func successText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result.IsError {
		t.Fatalf("Expected success but got error: %s", resultText(t, result))
	}
	return resultText(t, result)
}

func parseJSONResult(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	text := successText(t, result)

	var output map[string]any
	if err := json.Unmarshal([]byte(text), &output); err != nil {
		t.Fatalf("Failed to parse JSON output: %v\nContent: %s", err, text)
	}
	return output
}

// =============================================================================
// Activity Details
// =============================================================================

func TestGetActivityDetails(t *testing.T) {
	provider := createTestProvider(newMockClient())

	result, _, err := provider.handleGetActivityDetails(context.Background(), nil, ActivityIDArgs{ActivityID: "act-1"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	output := parseJSONResult(t, result)
	if output["id"] != "act-1" {
		t.Errorf("Expected id=act-1, got %v", output["id"])
	}
	if output["sport"] != "cycling.road" {
		t.Errorf("Expected sport=cycling.road, got %v", output["sport"])
	}
}

func TestGetActivityDetailsRequiresID(t *testing.T) {
	provider := createTestProvider(newMockClient())

	result, _, _ := provider.handleGetActivityDetails(context.Background(), nil, ActivityIDArgs{})
	if !result.IsError {
		t.Error("Expected error when activity_id is missing")
	}
}

func TestGetActivityDetailsAPIError(t *testing.T) {
	client := newMockClient()
	client.getActivityFunc = func(ctx context.Context, activityID string) (*sweatstack.Activity, error) {
		return nil, &sweatstack.APIError{StatusCode: 404, Message: "Activity not found"}
	}
	provider := createTestProvider(client)

	result, _, err := provider.handleGetActivityDetails(context.Background(), nil, ActivityIDArgs{ActivityID: "missing"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("Expected error result")
	}
	if !strings.Contains(resultText(t, result), "Activity not found") {
		t.Errorf("Expected API message in result, got %q", resultText(t, result))
	}
}

func TestGetLatestActivityDetails(t *testing.T) {
	client := newMockClient()
	var gotSport sweatstack.Sport
	client.getLatestActivityFunc = func(ctx context.Context, sport sweatstack.Sport) (*sweatstack.Activity, error) {
		gotSport = sport
		return &sweatstack.Activity{ID: "latest", Sport: sport}, nil
	}
	provider := createTestProvider(client)

	result, _, err := provider.handleGetLatestActivityDetails(context.Background(), nil, LatestActivityArgs{Sport: "running"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	output := parseJSONResult(t, result)
	if output["id"] != "latest" {
		t.Errorf("Expected id=latest, got %v", output["id"])
	}
	if gotSport != sweatstack.SportRunning {
		t.Errorf("Expected sport filter running, got %q", gotSport)
	}
}

func TestGetLatestActivityDetailsAnySport(t *testing.T) {
	client := newMockClient()
	gotSport := sweatstack.Sport("unset")
	client.getLatestActivityFunc = func(ctx context.Context, sport sweatstack.Sport) (*sweatstack.Activity, error) {
		gotSport = sport
		return &sweatstack.Activity{ID: "latest"}, nil
	}
	provider := createTestProvider(client)

	result, _, _ := provider.handleGetLatestActivityDetails(context.Background(), nil, LatestActivityArgs{})
	successText(t, result)
	if gotSport != "" {
		t.Errorf("Expected no sport filter, got %q", gotSport)
	}
}

func TestGetLatestActivityDetailsInvalidSport(t *testing.T) {
	provider := createTestProvider(newMockClient())

	result, _, _ := provider.handleGetLatestActivityDetails(context.Background(), nil, LatestActivityArgs{Sport: "quidditch"})
	if !result.IsError {
		t.Fatal("Expected error for unknown sport")
	}
	if !strings.Contains(resultText(t, result), "Unknown sport") {
		t.Errorf("Unexpected message: %s", resultText(t, result))
	}
}

func TestGetLatestActivityDetailsNoActivities(t *testing.T) {
	client := newMockClient()
	client.getLatestActivityFunc = func(ctx context.Context, sport sweatstack.Sport) (*sweatstack.Activity, error) {
		return nil, sweatstack.ErrNoActivities
	}
	provider := createTestProvider(client)

	result, _, _ := provider.handleGetLatestActivityDetails(context.Background(), nil, LatestActivityArgs{})
	if !result.IsError {
		t.Error("Expected error when there are no activities")
	}
}

// =============================================================================
// Activity Data
// =============================================================================

func TestGetActivityData(t *testing.T) {
	client := newMockClient()
	provider := createTestProvider(client)

	result, _, err := provider.handleGetActivityData(context.Background(), nil, ActivityIDArgs{ActivityID: "A"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := "datetime,activity_id,distance,power,speed\n" +
		"2024-05-01 10:00:00,A,5,200,5\n" +
		"2024-05-01 10:00:01,A,10,240,5\n"
	if got := successText(t, result); got != want {
		t.Errorf("Unexpected CSV:\n%s\nwant:\n%s", got, want)
	}

	if len(client.dataCalls) != 1 || client.dataCalls[0].options != 1 {
		t.Errorf("Expected one adaptive sampling data request, got %+v", client.dataCalls)
	}
}

func TestGetActivityDataWithoutAnchorMetric(t *testing.T) {
	client := newMockClient()
	client.getActivityFunc = func(ctx context.Context, activityID string) (*sweatstack.Activity, error) {
		return &sweatstack.Activity{ID: activityID, Sport: sweatstack.SportSwimming, Metrics: []sweatstack.Metric{sweatstack.MetricHeartRate}}, nil
	}
	provider := createTestProvider(client)

	result, _, _ := provider.handleGetActivityData(context.Background(), nil, ActivityIDArgs{ActivityID: "swim"})
	successText(t, result)

	if len(client.dataCalls) != 1 || client.dataCalls[0].options != 0 {
		t.Errorf("Expected a data request without adaptive sampling, got %+v", client.dataCalls)
	}
}

func TestGetActivityDataMetadataError(t *testing.T) {
	client := newMockClient()
	client.getActivityFunc = func(ctx context.Context, activityID string) (*sweatstack.Activity, error) {
		return nil, errors.New("connection refused")
	}
	provider := createTestProvider(client)

	result, _, _ := provider.handleGetActivityData(context.Background(), nil, ActivityIDArgs{ActivityID: "A"})
	if !result.IsError {
		t.Fatal("Expected error result")
	}
	if len(client.dataCalls) != 0 {
		t.Error("Expected no data request after a metadata failure")
	}
}

func TestGetLatestActivityData(t *testing.T) {
	client := newMockClient()
	provider := createTestProvider(client)

	result, _, err := provider.handleGetLatestActivityData(context.Background(), nil, LatestActivityArgs{Sport: "running"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	text := successText(t, result)
	if !strings.HasPrefix(text, "datetime,") {
		t.Errorf("Expected datetime as first column, got %q", text)
	}
	if len(client.dataCalls) != 1 || client.dataCalls[0].activityID != "latest" {
		t.Errorf("Expected data for the latest activity, got %+v", client.dataCalls)
	}
}

// =============================================================================
// Mean-max
// =============================================================================

func TestGetActivityMeanMaxValues(t *testing.T) {
	client := newMockClient()
	var gotMetric sweatstack.Metric
	client.getMeanMaxFunc = func(ctx context.Context, activityID string, metric sweatstack.Metric) ([]sweatstack.MeanMaxPoint, error) {
		gotMetric = metric
		return []sweatstack.MeanMaxPoint{{Duration: 1, Value: 500}, {Duration: 60, Value: 350.5}}, nil
	}
	provider := createTestProvider(client)

	result, _, err := provider.handleGetActivityMeanMaxValues(context.Background(), nil, MeanMaxArgs{ActivityID: "A", Metric: "Power"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := "duration,power\n1,500\n60,350.5\n"
	if got := successText(t, result); got != want {
		t.Errorf("Unexpected CSV:\n%s\nwant:\n%s", got, want)
	}
	if gotMetric != sweatstack.MetricPower {
		t.Errorf("Expected power, got %q", gotMetric)
	}
}

func TestGetActivityMeanMaxValuesRejectsMetric(t *testing.T) {
	provider := createTestProvider(newMockClient())

	result, _, _ := provider.handleGetActivityMeanMaxValues(context.Background(), nil, MeanMaxArgs{ActivityID: "A", Metric: "heart_rate"})
	if !result.IsError {
		t.Error("Expected error for a metric without mean-max support")
	}
}

// =============================================================================
// Plots
// =============================================================================

func TestGetActivityPlot(t *testing.T) {
	provider := createTestProvider(newMockClient())

	result, _, err := provider.handleGetActivityPlot(context.Background(), nil, PlotArgs{ActivityID: "A", Metric: "power"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("Expected success but got error: %s", resultText(t, result))
	}

	image, ok := result.Content[0].(*mcp.ImageContent)
	if !ok {
		t.Fatalf("Expected ImageContent but got %T", result.Content[0])
	}
	if image.MIMEType != "image/jpeg" {
		t.Errorf("Expected image/jpeg, got %s", image.MIMEType)
	}
	if len(image.Data) < 2 || image.Data[0] != 0xFF || image.Data[1] != 0xD8 {
		t.Error("Expected JPEG data")
	}
}

func TestGetActivityPlotMetricNotFound(t *testing.T) {
	provider := createTestProvider(newMockClient())

	result, _, _ := provider.handleGetActivityPlot(context.Background(), nil, PlotArgs{ActivityID: "A", Metric: "heart_rate"})
	if result.IsError {
		t.Fatal("Expected a text message, not an error")
	}
	if !strings.Contains(resultText(t, result), "not found") {
		t.Errorf("Expected 'not found' message, got %q", resultText(t, result))
	}
}

func TestGetActivityPlotUnknownMetric(t *testing.T) {
	provider := createTestProvider(newMockClient())

	result, _, _ := provider.handleGetActivityPlot(context.Background(), nil, PlotArgs{ActivityID: "A", Metric: "watts"})
	if !result.IsError {
		t.Fatal("Expected error for unknown metric")
	}
	if !strings.Contains(resultText(t, result), "Unknown metric") {
		t.Errorf("Unexpected message: %s", resultText(t, result))
	}
}

func TestGetActivityPlotNoValues(t *testing.T) {
	client := newMockClient()
	client.getActivityDataFunc = func(ctx context.Context, activityID string, opts ...sweatstack.DataOption) (*frame.Frame, error) {
		data := frame.New([]time.Time{time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)})
		_ = data.Set("power", []any{nil})
		return data, nil
	}
	provider := createTestProvider(client)

	result, _, _ := provider.handleGetActivityPlot(context.Background(), nil, PlotArgs{ActivityID: "A", Metric: "power"})
	if result.IsError {
		t.Fatal("Expected a text message, not an error")
	}
	if _, ok := result.Content[0].(*mcp.TextContent); !ok {
		t.Errorf("Expected TextContent but got %T", result.Content[0])
	}
}

func TestGetLatestActivityPlot(t *testing.T) {
	client := newMockClient()
	provider := createTestProvider(client)

	result, _, _ := provider.handleGetLatestActivityPlot(context.Background(), nil, LatestPlotArgs{Metric: "speed"})
	if result.IsError {
		t.Fatalf("Expected success but got error: %s", resultText(t, result))
	}
	if _, ok := result.Content[0].(*mcp.ImageContent); !ok {
		t.Errorf("Expected ImageContent but got %T", result.Content[0])
	}
	if len(client.dataCalls) != 1 || client.dataCalls[0].activityID != "latest" {
		t.Errorf("Expected data for the latest activity, got %+v", client.dataCalls)
	}
}

// =============================================================================
// List Activities
// =============================================================================

func TestListActivities(t *testing.T) {
	client := newMockClient()
	var gotOpts sweatstack.ListOptions
	client.listActivitiesFunc = func(ctx context.Context, opts sweatstack.ListOptions) ([]sweatstack.ActivitySummary, error) {
		gotOpts = opts
		return []sweatstack.ActivitySummary{
			{
				ID:       "ride",
				Name:     "Morning ride",
				Sport:    sweatstack.SportCyclingRoad,
				Start:    time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
				End:      time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
				Duration: 7200,
				Distance: 60000,
				Metrics:  []sweatstack.Metric{sweatstack.MetricPower, sweatstack.MetricSpeed},
			},
		}, nil
	}
	provider := createTestProvider(client)

	result, _, err := provider.handleListActivities(context.Background(), nil, ListActivitiesArgs{
		Sport:     "cycling",
		StartTime: "now-7d",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := "id,name,sport,start,end,duration,distance,metrics\n" +
		"ride,Morning ride,cycling.road,2024-05-01 08:00:00,2024-05-01 10:00:00,7200,60000,power;speed\n"
	if got := successText(t, result); got != want {
		t.Errorf("Unexpected CSV:\n%s\nwant:\n%s", got, want)
	}

	if gotOpts.Limit != defaultListLimit {
		t.Errorf("Expected default limit %d, got %d", defaultListLimit, gotOpts.Limit)
	}
	if len(gotOpts.Sports) != 1 || gotOpts.Sports[0] != sweatstack.SportCycling {
		t.Errorf("Expected cycling sport filter, got %v", gotOpts.Sports)
	}
	wantStart := time.Date(2024, 5, 25, 12, 0, 0, 0, time.UTC)
	if gotOpts.Start == nil || !gotOpts.Start.Equal(wantStart) {
		t.Errorf("Expected start %s, got %v", wantStart, gotOpts.Start)
	}
	if gotOpts.End != nil {
		t.Errorf("Expected no end, got %v", gotOpts.End)
	}
}

func TestListActivitiesLimit(t *testing.T) {
	tests := []struct {
		limit int
		want  int
	}{
		{limit: 0, want: defaultListLimit},
		{limit: -5, want: defaultListLimit},
		{limit: 50, want: 50},
		{limit: 5000, want: maxListLimit},
	}

	for _, tt := range tests {
		client := newMockClient()
		var got int
		client.listActivitiesFunc = func(ctx context.Context, opts sweatstack.ListOptions) ([]sweatstack.ActivitySummary, error) {
			got = opts.Limit
			return nil, nil
		}
		provider := createTestProvider(client)

		result, _, _ := provider.handleListActivities(context.Background(), nil, ListActivitiesArgs{Limit: tt.limit})
		successText(t, result)
		if got != tt.want {
			t.Errorf("limit %d: expected %d, got %d", tt.limit, tt.want, got)
		}
	}
}

func TestListActivitiesWithFilter(t *testing.T) {
	provider := createTestProvider(newMockClient())

	result, _, _ := provider.handleListActivities(context.Background(), nil, ListActivitiesArgs{
		Filter: `"power" in activity.metrics`,
	})

	text := successText(t, result)
	if !strings.Contains(text, "ride,") || strings.Contains(text, "run,") {
		t.Errorf("Expected only the ride, got:\n%s", text)
	}
}

func TestListActivitiesInvalidFilter(t *testing.T) {
	client := newMockClient()
	called := false
	client.listActivitiesFunc = func(ctx context.Context, opts sweatstack.ListOptions) ([]sweatstack.ActivitySummary, error) {
		called = true
		return nil, nil
	}
	provider := createTestProvider(client)

	result, _, _ := provider.handleListActivities(context.Background(), nil, ListActivitiesArgs{Filter: `activity.power > 200`})
	if !result.IsError {
		t.Fatal("Expected error for invalid filter")
	}
	if called {
		t.Error("Expected no API call for an invalid filter")
	}
}

func TestListActivitiesInvalidTime(t *testing.T) {
	provider := createTestProvider(newMockClient())

	result, _, _ := provider.handleListActivities(context.Background(), nil, ListActivitiesArgs{StartTime: "yesterday"})
	if !result.IsError {
		t.Fatal("Expected error for invalid start_time")
	}
	if !strings.Contains(resultText(t, result), "start_time") {
		t.Errorf("Unexpected message: %s", resultText(t, result))
	}
}

// =============================================================================
// Metric Summary
// =============================================================================

func TestGetActivityMetricSummary(t *testing.T) {
	provider := createTestProvider(newMockClient())

	result, _, err := provider.handleGetActivityMetricSummary(context.Background(), nil, MetricSummaryArgs{ActivityID: "A", Metric: "power"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := "activity_id,mean,max\nA,220,240\n"
	if got := successText(t, result); got != want {
		t.Errorf("Unexpected CSV:\n%s\nwant:\n%s", got, want)
	}
}

func TestGetActivityMetricSummaryMissingColumn(t *testing.T) {
	provider := createTestProvider(newMockClient())

	result, _, _ := provider.handleGetActivityMetricSummary(context.Background(), nil, MetricSummaryArgs{ActivityID: "A", Metric: "cadence"})
	if !result.IsError {
		t.Fatal("Expected error for missing column")
	}
	if !strings.Contains(resultText(t, result), "not found") {
		t.Errorf("Unexpected message: %s", resultText(t, result))
	}
}

// =============================================================================
// Test Tool Registration
// =============================================================================

func connectTestSession(t *testing.T, provider *ToolProvider) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	server := provider.NewMCPServer(ServerConfig{Version: "test"})
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("Failed to connect server: %v", err)
	}
	t.Cleanup(func() { _ = serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("Failed to connect client: %v", err)
	}
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func TestRegisterTools(t *testing.T) {
	session := connectTestSession(t, createTestProvider(newMockClient()))

	result, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools failed: %v", err)
	}

	want := map[string]bool{
		"get_activity_details":         false,
		"get_latest_activity_details":  false,
		"get_activity_data":            false,
		"get_latest_activity_data":     false,
		"get_activity_mean_max_values": false,
		"get_activity_plot":            false,
		"get_latest_activity_plot":     false,
		"list_activities":              false,
		"get_activity_metric_summary":  false,
	}
	for _, tool := range result.Tools {
		if _, ok := want[tool.Name]; !ok {
			t.Errorf("Unexpected tool %s", tool.Name)
			continue
		}
		want[tool.Name] = true
		if tool.Annotations == nil || !tool.Annotations.ReadOnlyHint {
			t.Errorf("Tool %s is not marked read-only", tool.Name)
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("Tool %s not registered", name)
		}
	}
}

func TestCallToolOverSession(t *testing.T) {
	session := connectTestSession(t, createTestProvider(newMockClient()))

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "get_activity_mean_max_values",
		Arguments: map[string]any{"activity_id": "A", "metric": "speed"},
	})
	if err != nil {
		t.Fatalf("CallTool failed: %v", err)
	}
	if got := successText(t, result); !strings.HasPrefix(got, "duration,speed\n") {
		t.Errorf("Unexpected output: %q", got)
	}
}

func TestCallToolRejectsEnumViolation(t *testing.T) {
	session := connectTestSession(t, createTestProvider(newMockClient()))

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "get_activity_mean_max_values",
		Arguments: map[string]any{"activity_id": "A", "metric": "heart_rate"},
	})
	if err == nil && !result.IsError {
		t.Error("Expected metric outside the enum to be rejected")
	}
}
