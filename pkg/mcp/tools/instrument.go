package tools

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"k8s.io/klog/v2"

	"github.com/sweatstack/sweatstack-mcp/internal/metrics"
)

var tracer = otel.Tracer("sweatstack-mcp-tools")

// instrument wraps a tool handler with a span, call metrics and a log line.
func instrument[In any](name string, handler func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, any, error)) mcp.ToolHandlerFor[In, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, args In) (*mcp.CallToolResult, any, error) {
		ctx, span := tracer.Start(ctx, "mcp.tool."+name,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("mcp.tool", name)),
		)
		defer span.End()

		start := time.Now()
		result, out, err := handler(ctx, req, args)
		duration := time.Since(start)

		status := "ok"
		switch {
		case err != nil:
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, "tool failed")
		case result != nil && result.IsError:
			status = "error"
			span.SetStatus(codes.Error, "tool returned an error result")
		default:
			span.SetStatus(codes.Ok, "")
		}

		metrics.ToolCallsTotal.WithLabelValues(name, status).Inc()
		metrics.ToolDuration.WithLabelValues(name).Observe(duration.Seconds())

		if status == "ok" {
			klog.V(2).InfoS("Tool call completed", "tool", name, "duration", duration)
		} else {
			klog.InfoS("Tool call failed", "tool", name, "duration", duration, "message", resultMessage(result, err))
		}
		return result, out, err
	}
}

func resultMessage(result *mcp.CallToolResult, err error) string {
	if err != nil {
		return err.Error()
	}
	if result == nil {
		return ""
	}
	for _, c := range result.Content {
		if text, ok := c.(*mcp.TextContent); ok {
			return text.Text
		}
	}
	return ""
}
