package recurrence

import "time"

// ExpandSpec expands a master event using its own raw specification.
// An empty specification returns no occurrences without invoking the
// parser; an unparsable one silently disables recurrence so the caller
// can still render the master as a plain event.
func ExpandSpec(master Master, horizon Horizon) []Occurrence {
	if master.Spec == "" {
		return nil
	}
	rule, err := Parse(master.Spec)
	if err != nil {
		return nil
	}
	return Expand(master, *rule, horizon)
}

// Expand materializes the concrete occurrences of a master event under a
// rule, ordered ascending by start time. The master's own occurrence is
// never re-emitted; the sequence starts strictly after master.Start.
//
// All date stepping is civil (wall clock) arithmetic in master.Start's
// Location, so a 09:00 event stays at 09:00 local time across DST
// transitions. Emission stops at whichever bound is reached first: the
// rule's Count, the rule's Until (inclusive), or the horizon ceiling.
func Expand(master Master, rule Rule, horizon Horizon) []Occurrence {
	maxInstances := horizon.MaxInstances
	if maxInstances <= 0 {
		maxInstances = DefaultMaxInstances
	}
	interval := rule.Interval
	if interval < 1 {
		interval = 1
	}

	var duration time.Duration
	if !master.End.IsZero() {
		duration = master.End.Sub(master.Start)
	}

	var out []Occurrence

	withinUntil := func(start time.Time) bool {
		return rule.Until.IsZero() || !start.After(rule.Until)
	}
	// emit reports whether generation may continue afterwards
	emit := func(start time.Time) bool {
		out = append(out, newOccurrence(master, start, duration))
		if rule.Count > 0 && len(out) >= rule.Count {
			return false
		}
		return len(out) < maxInstances
	}

	if rule.Frequency == Weekly && len(rule.Weekdays) > 0 {
		// A single "add N weeks" step cannot expand a rule like "every
		// Monday and Wednesday": one occurrence is due per matching
		// weekday per interval block. Scan day by day; blocks are 7-day
		// windows anchored at the master's start date.
		wanted := make(map[time.Weekday]bool, len(rule.Weekdays))
		for _, day := range rule.Weekdays {
			wanted[day] = true
		}
		for offset := 1; ; offset++ {
			candidate := master.Start.AddDate(0, 0, offset)
			if !withinUntil(candidate) {
				break
			}
			if (offset/7)%interval != 0 || !wanted[candidate.Weekday()] {
				continue
			}
			if !emit(candidate) {
				break
			}
		}
		return out
	}

	for step := 1; ; step++ {
		var candidate time.Time
		switch rule.Frequency {
		case Daily:
			candidate = master.Start.AddDate(0, 0, step*interval)
		case Weekly:
			candidate = master.Start.AddDate(0, 0, 7*step*interval)
		case Monthly:
			candidate = addMonths(master.Start, step*interval)
		case Annually:
			candidate = addYears(master.Start, step*interval)
		default:
			return out
		}
		if !withinUntil(candidate) {
			break
		}
		if !emit(candidate) {
			break
		}
	}
	return out
}

func newOccurrence(master Master, start time.Time, duration time.Duration) Occurrence {
	occurrence := Occurrence{
		ID:          master.ID + ":" + start.Format("2006-01-02"),
		MasterID:    master.ID,
		Title:       master.Title,
		Description: master.Description,
		Location:    master.Location,
		Start:       start,
		AllDay:      master.AllDay,
		UserID:      master.UserID,
		Color:       master.Color,
		Generated:   true,
	}
	if !master.End.IsZero() {
		occurrence.End = start.Add(duration)
	}
	return occurrence
}

// addMonths steps from the original civil anchor, clamping the
// day-of-month to the target month's last day instead of rolling into the
// following month (31 Jan + 1 month is 28/29 Feb, never 2/3 Mar). Because
// each step is computed from the anchor, 31 Jan recovers to 31 Mar once
// the month has that day again.
func addMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	total := int(month) - 1 + months
	year += total / 12
	month = time.Month(total%12 + 1)
	if last := daysInMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// addYears applies the same clamping for Feb 29 anchors in non-leap years.
func addYears(t time.Time, years int) time.Time {
	year, month, day := t.Date()
	year += years
	if last := daysInMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
