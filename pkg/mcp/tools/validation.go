package tools

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/sweatstack/sweatstack-mcp/pkg/sweatstack"
)

// capitalizeFirst capitalizes the first letter of a string.
func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// validationResult turns argument errors into a tool error. A single error
// reads as a sentence with the fix; several are listed per argument.
func validationResult(errs field.ErrorList) *mcp.CallToolResult {
	if len(errs) == 1 {
		return errorResult(fmt.Sprintf("%s. Please correct this and try again.", capitalizeFirst(detailOf(errs[0]))))
	}

	var msg strings.Builder
	msg.WriteString("Some arguments are missing or invalid:")
	for _, err := range errs {
		fmt.Fprintf(&msg, "\n  - %s: %s", err.Field, detailOf(err))
	}
	return errorResult(msg.String())
}

func detailOf(err *field.Error) string {
	if err.Detail != "" {
		return err.Detail
	}
	return err.ErrorBody()
}

func validateActivityID(id string) field.ErrorList {
	if strings.TrimSpace(id) == "" {
		return field.ErrorList{field.Required(field.NewPath("activity_id"),
			"provide the id of an activity, e.g. from list_activities")}
	}
	return nil
}

// parseSportArg resolves an optional sport argument. Empty means any sport.
func parseSportArg(name string) (sweatstack.Sport, field.ErrorList) {
	if name == "" {
		return "", nil
	}
	sport, err := sweatstack.ParseSport(name)
	if err != nil {
		return "", field.ErrorList{field.Invalid(field.NewPath("sport"), name, err.Error())}
	}
	return sport, nil
}

// parseMetricArg resolves a required metric argument with parse.
func parseMetricArg(name string, parse func(string) (sweatstack.Metric, error)) (sweatstack.Metric, field.ErrorList) {
	path := field.NewPath("metric")
	if name == "" {
		return "", field.ErrorList{field.Required(path, "provide a metric, e.g. power or speed")}
	}
	metric, err := parse(name)
	if err != nil {
		return "", field.ErrorList{field.Invalid(path, name, err.Error())}
	}
	return metric, nil
}
