package tools

import (
	"strings"
	"testing"

	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/sweatstack/sweatstack-mcp/pkg/sweatstack"
)

func TestValidationResult_MessageFormat(t *testing.T) {
	t.Run("single error includes detail and action in message", func(t *testing.T) {
		result := validationResult(validateActivityID(""))

		expectedMsg := "Provide the id of an activity, e.g. from list_activities. Please correct this and try again."
		if !result.IsError {
			t.Fatal("expected an error result")
		}
		if got := resultText(t, result); got != expectedMsg {
			t.Errorf("unexpected message:\ngot:  %s\nwant: %s", got, expectedMsg)
		}
	})

	t.Run("multiple errors are listed per argument", func(t *testing.T) {
		errs := validateActivityID(" ")
		_, metricErrs := parseMetricArg("watts", sweatstack.ParseMeanMaxMetric)
		errs = append(errs, metricErrs...)

		got := resultText(t, validationResult(errs))
		if !strings.HasPrefix(got, "Some arguments are missing or invalid:") {
			t.Errorf("unexpected summary: %s", got)
		}
		for _, want := range []string{"\n  - activity_id: provide the id", "\n  - metric: unknown metric \"watts\""} {
			if !strings.Contains(got, want) {
				t.Errorf("expected %q in message:\n%s", want, got)
			}
		}
	})
}

func TestParseSportArg(t *testing.T) {
	sport, errs := parseSportArg("")
	if len(errs) != 0 || sport != "" {
		t.Errorf("expected any sport, got %q %v", sport, errs)
	}

	sport, errs = parseSportArg("cycling.road")
	if len(errs) != 0 || sport != sweatstack.SportCyclingRoad {
		t.Errorf("expected cycling.road, got %q %v", sport, errs)
	}

	_, errs = parseSportArg("quidditch")
	if len(errs) != 1 || errs[0].Type != field.ErrorTypeInvalid {
		t.Errorf("expected one invalid error, got %v", errs)
	}
}

func TestParseMetricArg(t *testing.T) {
	metric, errs := parseMetricArg(" Speed ", sweatstack.ParseMetric)
	if len(errs) != 0 || metric != sweatstack.MetricSpeed {
		t.Errorf("expected speed, got %q %v", metric, errs)
	}

	_, errs = parseMetricArg("", sweatstack.ParseMetric)
	if len(errs) != 1 || errs[0].Type != field.ErrorTypeRequired {
		t.Errorf("expected one required error, got %v", errs)
	}
}
