package recurrence

import (
	"fmt"
	"strings"
)

var frequencyUnits = map[Frequency]string{
	Daily:    "days",
	Weekly:   "weeks",
	Monthly:  "months",
	Annually: "years",
}

var frequencyLabels = map[Frequency]string{
	Daily:    "Daily",
	Weekly:   "Weekly",
	Monthly:  "Monthly",
	Annually: "Annually",
}

// Describe renders a short human-readable clause for a recurrence
// specification, e.g. "Weekly", "Every 2 weeks on Mon, Wed" or
// "Daily until 12 Dec 2025". It returns "" for an empty or unparsable
// specification and never panics.
func Describe(spec string) string {
	if strings.TrimSpace(spec) == "" {
		return ""
	}
	rule, err := Parse(spec)
	if err != nil {
		return ""
	}

	var b strings.Builder
	if rule.Interval > 1 {
		fmt.Fprintf(&b, "Every %d %s", rule.Interval, frequencyUnits[rule.Frequency])
	} else {
		b.WriteString(frequencyLabels[rule.Frequency])
	}

	if len(rule.Weekdays) > 0 {
		names := make([]string, 0, len(rule.Weekdays))
		for _, day := range rule.Weekdays {
			names = append(names, day.String()[:3])
		}
		b.WriteString(" on ")
		b.WriteString(strings.Join(names, ", "))
	}

	switch {
	case !rule.Until.IsZero():
		fmt.Fprintf(&b, " until %s", rule.Until.Format("2 Jan 2006"))
	case rule.Count == 1:
		b.WriteString(" (once)")
	case rule.Count > 1:
		fmt.Fprintf(&b, " (%d times)", rule.Count)
	}

	return b.String()
}
