package recurrence

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrUnparsable is returned when a specification matches neither of the two
// accepted encodings, or decodes to invalid rule values. Callers are
// expected to degrade to "not recurring" rather than fail the event.
var ErrUnparsable = errors.New("unparsable recurrence specification")

var weekdayCodes = map[string]time.Weekday{
	"MO": time.Monday,
	"TU": time.Tuesday,
	"WE": time.Wednesday,
	"TH": time.Thursday,
	"FR": time.Friday,
	"SA": time.Saturday,
	"SU": time.Sunday,
}

var frequencies = map[string]Frequency{
	"daily":    Daily,
	"weekly":   Weekly,
	"monthly":  Monthly,
	"annually": Annually,
}

// Parse decodes a recurrence specification string into a normalized Rule.
// Two encodings are accepted, tried in order:
//
//  1. the structured JSON form written by the web client, e.g.
//     {"frequency":"weekly","interval":2,"days":["MO","WE"],"count":10}
//  2. the compact legacy form, e.g. FREQ=WEEKLY;BYDAY=MO;UNTIL=20251231
//
// Parse has no side effects and never panics; any failure is ErrUnparsable.
func Parse(spec string) (*Rule, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, ErrUnparsable
	}
	if rule, err := parseStructured(spec); err == nil {
		return rule, nil
	}
	if rule, err := parseLegacy(spec); err == nil {
		return rule, nil
	}
	return nil, ErrUnparsable
}

type structuredSpec struct {
	Frequency string   `json:"frequency"`
	Interval  *int     `json:"interval"`
	Days      []string `json:"days"`
	Until     string   `json:"until"`
	Count     *int     `json:"count"`
}

func parseStructured(spec string) (*Rule, error) {
	var s structuredSpec
	if err := json.Unmarshal([]byte(spec), &s); err != nil {
		return nil, ErrUnparsable
	}

	freq, ok := frequencies[strings.ToLower(s.Frequency)]
	if !ok {
		return nil, ErrUnparsable
	}

	rule := &Rule{Frequency: freq, Interval: 1}

	if s.Interval != nil {
		if *s.Interval < 1 {
			return nil, ErrUnparsable
		}
		rule.Interval = *s.Interval
	}

	if len(s.Days) > 0 {
		if freq != Weekly {
			return nil, ErrUnparsable
		}
		days, err := parseWeekdays(s.Days)
		if err != nil {
			return nil, err
		}
		rule.Weekdays = days
	}

	if s.Until != "" && s.Count != nil {
		// at most one end condition
		return nil, ErrUnparsable
	}
	if s.Until != "" {
		until, err := parseUntilTimestamp(s.Until)
		if err != nil {
			return nil, err
		}
		rule.Until = until
	}
	if s.Count != nil {
		if *s.Count < 1 {
			return nil, ErrUnparsable
		}
		rule.Count = *s.Count
	}

	return rule, nil
}

// parseLegacy decodes the semicolon-separated KEY=VALUE form. Unknown keys
// are skipped so interop strings carrying extra rule parts still yield
// their recognized subset; a pair without '=' or an empty value for a
// recognized key fails the whole spec.
func parseLegacy(spec string) (*Rule, error) {
	rule := &Rule{Interval: 1}

	for _, pair := range strings.Split(spec, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, found := strings.Cut(pair, "=")
		if !found {
			return nil, ErrUnparsable
		}
		key = strings.ToUpper(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "FREQ":
			switch strings.ToUpper(value) {
			case "DAILY":
				rule.Frequency = Daily
			case "WEEKLY":
				rule.Frequency = Weekly
			case "MONTHLY":
				rule.Frequency = Monthly
			case "YEARLY", "ANNUALLY":
				rule.Frequency = Annually
			default:
				return nil, ErrUnparsable
			}
		case "BYDAY":
			days, err := parseWeekdays(strings.Split(value, ","))
			if err != nil {
				return nil, err
			}
			rule.Weekdays = days
		case "UNTIL":
			// 8-digit date, read as end of that day in UTC
			if len(value) != 8 {
				return nil, ErrUnparsable
			}
			until, err := time.ParseInLocation("20060102", value, time.UTC)
			if err != nil {
				return nil, ErrUnparsable
			}
			rule.Until = endOfDay(until)
		case "COUNT":
			count, err := strconv.Atoi(value)
			if err != nil || count < 1 {
				return nil, ErrUnparsable
			}
			rule.Count = count
		}
	}

	if rule.Frequency == "" {
		return nil, ErrUnparsable
	}
	if !rule.Until.IsZero() && rule.Count > 0 {
		return nil, ErrUnparsable
	}
	if len(rule.Weekdays) > 0 && rule.Frequency != Weekly {
		return nil, ErrUnparsable
	}
	return rule, nil
}

func parseWeekdays(codes []string) ([]time.Weekday, error) {
	if len(codes) == 0 {
		return nil, ErrUnparsable
	}
	days := make([]time.Weekday, 0, len(codes))
	seen := map[time.Weekday]bool{}
	for _, code := range codes {
		day, ok := weekdayCodes[strings.ToUpper(strings.TrimSpace(code))]
		if !ok {
			return nil, ErrUnparsable
		}
		if !seen[day] {
			seen[day] = true
			days = append(days, day)
		}
	}
	return days, nil
}

// parseUntilTimestamp accepts an RFC3339 timestamp or a bare date; a bare
// date is read with end-of-day semantics.
func parseUntilTimestamp(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", value, time.UTC); err == nil {
		return endOfDay(t), nil
	}
	return time.Time{}, ErrUnparsable
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}
