package cel

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/cel-go/cel"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"

	"github.com/sweatstack/sweatstack-mcp/internal/metrics"
	"github.com/sweatstack/sweatstack-mcp/pkg/sweatstack"
)

var tracer = otel.Tracer("sweatstack-cel-filter")

// activityFields lists the fields of the activity variable a filter may read.
var activityFields = map[string]string{
	"id":       "activity id",
	"name":     "activity name",
	"sport":    `sport name, e.g. "cycling.road"`,
	"start":    "start timestamp",
	"end":      "end timestamp",
	"duration": "duration in seconds",
	"distance": "distance in meters",
	"metrics":  "list of recorded metric names",
}

func activityFieldNames() []string {
	names := make([]string, 0, len(activityFields))
	for name := range activityFields {
		names = append(names, "activity."+name)
	}
	sort.Strings(names)
	return names
}

// ActivityEnvironment creates a CEL environment for activity filtering.
//
// Available fields:
//   - activity.id, activity.name
//   - activity.sport - sport name, e.g. "cycling.road"
//   - activity.start, activity.end - timestamps
//   - activity.duration - seconds
//   - activity.distance - meters
//   - activity.metrics - list of recorded metric names
//
// Supports standard CEL operators (==, !=, <, >, &&, ||, !, in), string methods
// (startsWith, endsWith, contains), and timestamp comparisons.
func ActivityEnvironment() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("activity", cel.MapType(cel.StringType, cel.DynType)),
		cel.CrossTypeNumericComparisons(true),
	)
}

type activityFieldValidator struct{}

func (activityFieldValidator) ValidateSelectExpr(sel *expr.Expr_Select) error {
	ident := sel.GetOperand().GetIdentExpr()
	if ident == nil || ident.GetName() != "activity" {
		return nil
	}
	if _, ok := activityFields[sel.GetField()]; !ok {
		return fmt.Errorf("field 'activity.%s' is not available for filtering", sel.GetField())
	}
	return nil
}

// CompiledActivityFilter holds a compiled CEL program that is evaluated once
// per listed activity.
type CompiledActivityFilter struct {
	expression string
	program    cel.Program
}

// CompileActivityFilter compiles and validates a CEL filter expression.
// Errors carry the position of the problem and the fields a filter may use.
func CompileActivityFilter(filterExpr string) (*CompiledActivityFilter, error) {
	startTime := time.Now()
	defer func() {
		metrics.CELFilterParseDuration.Observe(time.Since(startTime).Seconds())
	}()

	if filterExpr == "" {
		metrics.CELFilterErrors.WithLabelValues("empty").Inc()
		return nil, fmt.Errorf("filter expression cannot be empty")
	}

	env, err := ActivityEnvironment()
	if err != nil {
		metrics.CELFilterErrors.WithLabelValues("environment").Inc()
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	ast, issues := env.Compile(filterExpr)
	if issues != nil && issues.Err() != nil {
		metrics.CELFilterErrors.WithLabelValues("compilation").Inc()
		return nil, fmt.Errorf("%s", formatFilterError(issues.Err()))
	}

	if !ast.OutputType().IsExactType(cel.BoolType) {
		metrics.CELFilterErrors.WithLabelValues("type_mismatch").Inc()
		typeErr := fmt.Errorf("filter expression must return a boolean, got %v", ast.OutputType())
		return nil, fmt.Errorf("%s", formatFilterError(typeErr))
	}

	if err := ValidateFieldAccess(ast.Expr(), activityFieldValidator{}); err != nil {
		metrics.CELFilterErrors.WithLabelValues("invalid_field").Inc()
		return nil, fmt.Errorf("%s", formatFilterError(err))
	}

	program, err := env.Program(ast)
	if err != nil {
		metrics.CELFilterErrors.WithLabelValues("program").Inc()
		return nil, fmt.Errorf("failed to create CEL program: %w", err)
	}

	return &CompiledActivityFilter{expression: filterExpr, program: program}, nil
}

// Evaluate reports whether the activity matches the filter. A nil filter
// matches everything.
func (f *CompiledActivityFilter) Evaluate(activity sweatstack.ActivitySummary) (bool, error) {
	if f == nil || f.program == nil {
		return true, nil
	}

	result, _, err := f.program.Eval(map[string]any{
		"activity": ActivityToMap(activity),
	})
	if err != nil {
		metrics.CELFilterErrors.WithLabelValues("evaluation").Inc()
		return false, fmt.Errorf("CEL evaluation error for activity %s: %w", activity.ID, err)
	}

	matched, ok := result.Value().(bool)
	if !ok {
		return false, fmt.Errorf("CEL result is not a boolean: %T", result.Value())
	}
	return matched, nil
}

// Apply returns the activities that match the filter, preserving order.
func (f *CompiledActivityFilter) Apply(ctx context.Context, activities []sweatstack.ActivitySummary) ([]sweatstack.ActivitySummary, error) {
	if f == nil {
		return activities, nil
	}

	_, span := tracer.Start(ctx, "cel.activity_filter.apply",
		trace.WithAttributes(
			attribute.String("cel.expression", f.expression),
			attribute.Int("cel.input_count", len(activities)),
		),
	)
	defer span.End()

	matched := make([]sweatstack.ActivitySummary, 0, len(activities))
	for _, activity := range activities {
		ok, err := f.Evaluate(activity)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "evaluation failed")
			return nil, err
		}
		if ok {
			matched = append(matched, activity)
		}
	}

	span.SetAttributes(attribute.Int("cel.match_count", len(matched)))
	span.SetStatus(codes.Ok, "")
	return matched, nil
}

// ActivityToMap converts an activity summary to the map bound to the
// activity variable.
func ActivityToMap(activity sweatstack.ActivitySummary) map[string]any {
	names := make([]string, len(activity.Metrics))
	for i, m := range activity.Metrics {
		names[i] = string(m)
	}

	return map[string]any{
		"id":       activity.ID,
		"name":     activity.Name,
		"sport":    string(activity.Sport),
		"start":    activity.Start,
		"end":      activity.End,
		"duration": activity.Duration,
		"distance": activity.Distance,
		"metrics":  names,
	}
}
