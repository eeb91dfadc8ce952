package correlation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alertlens/alertlens/internal/nerdgraph"
)

// Threshold operators returned by the alerts API.
const (
	OperatorAbove         = "ABOVE"
	OperatorAboveOrEquals = "ABOVE_OR_EQUALS"
	OperatorBelow         = "BELOW"
	OperatorBelowOrEquals = "BELOW_OR_EQUALS"
	OperatorGreaterThan   = "GREATER_THAN"
	OperatorLessThan      = "LESS_THAN"
)

// TermSeparator joins multiple formatted terms of one condition.
const TermSeparator = " ; "

// FormatTerm renders a threshold rule as a stable human-readable string,
// e.g. "Critical: above 90 for at least 5 minutes (3 occurrences)".
// Duration renders as minutes when evenly divisible by 60, else seconds; a
// zero duration renders no duration clause. A nil term yields "".
func FormatTerm(term *nerdgraph.ThresholdTerm) string {
	if term == nil {
		return ""
	}

	var b strings.Builder
	if term.Priority != "" {
		b.WriteString(capitalize(term.Priority))
		b.WriteString(": ")
	}
	b.WriteString(operatorPhrase(term.Operator))
	b.WriteString(" ")
	b.WriteString(strconv.FormatFloat(term.Threshold, 'f', -1, 64))

	if term.ThresholdDuration > 0 {
		if term.ThresholdDuration%60 == 0 {
			b.WriteString(fmt.Sprintf(" for at least %d %s",
				term.ThresholdDuration/60, pluralize(term.ThresholdDuration/60, "minute")))
		} else {
			b.WriteString(fmt.Sprintf(" for at least %d %s",
				term.ThresholdDuration, pluralize(term.ThresholdDuration, "second")))
		}
	}
	if term.ThresholdOccurrences > 0 {
		b.WriteString(fmt.Sprintf(" (%d %s)",
			term.ThresholdOccurrences, pluralize(term.ThresholdOccurrences, "occurrence")))
	}
	return b.String()
}

// FormatTerms renders all terms of a condition joined by TermSeparator.
func FormatTerms(terms []nerdgraph.ThresholdTerm) string {
	if len(terms) == 0 {
		return ""
	}
	parts := make([]string, 0, len(terms))
	for i := range terms {
		parts = append(parts, FormatTerm(&terms[i]))
	}
	return strings.Join(parts, TermSeparator)
}

func operatorPhrase(op string) string {
	switch op {
	case OperatorAbove:
		return "above"
	case OperatorAboveOrEquals:
		return "above or equal"
	case OperatorBelow:
		return "below"
	case OperatorBelowOrEquals:
		return "below or equal"
	case OperatorGreaterThan:
		return "greater than"
	case OperatorLessThan:
		return "less than"
	default:
		return strings.ToLower(strings.ReplaceAll(op, "_", " "))
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	return strings.ToUpper(lower[:1]) + lower[1:]
}

func pluralize(n int, unit string) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}
