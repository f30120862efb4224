package render

import (
	"fmt"
	"time"

	"github.com/matzehuels/flowlens/pkg/flow"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// FormatValue renders the right-hand side of a condition. References and
// literal text win over dates, dates over numbers, numbers over booleans.
func FormatValue(v flow.ElementValue) string {
	for _, s := range []string{
		v.StringValue,
		v.SObjectValue,
		v.ApexValue,
		v.ElementReference,
		v.FormulaExpression,
		v.SetupReference,
		v.TransformValueReference,
		v.FormulaDataType,
	} {
		if s != "" {
			return s
		}
	}
	if v.DateTimeValue != "" {
		return formatDate(v.DateTimeValue)
	}
	if v.DateValue != "" {
		return formatDate(v.DateValue)
	}
	if v.NumberValue != "" {
		return v.NumberValue
	}
	return v.BooleanValue
}

// formatDate prints a date as M/D/YYYY in UTC. Unparseable input is returned
// unchanged.
func formatDate(s string) string {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return fmt.Sprintf("%d/%d/%d", int(t.Month()), t.Day(), t.Year())
		}
	}
	return s
}
