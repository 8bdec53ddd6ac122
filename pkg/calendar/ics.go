package calendar

import (
	"time"

	ics "github.com/arran4/golang-ical"
)

// buildICS renders the given events as an iCalendar document. Recurring
// series are exported as their already expanded occurrences, so consumers
// do not need RRULE support.
func buildICS(events []Event, now time.Time) (string, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//FamHub//Calendar//EN")

	for _, event := range events {
		entry := cal.AddEvent(event.Uid)
		entry.SetCreatedTime(now)
		entry.SetDtStampTime(now)
		entry.SetSummary(event.Title)
		if event.Description != "" {
			entry.SetDescription(event.Description)
		}
		if event.Location != "" {
			entry.SetLocation(event.Location)
		}
		if event.AllDay {
			entry.SetAllDayStartAt(event.StartTime)
			if !event.EndTime.IsZero() {
				entry.SetAllDayEndAt(event.EndTime)
			}
		} else {
			entry.SetStartAt(event.StartTime)
			if !event.EndTime.IsZero() {
				entry.SetEndAt(event.EndTime)
			}
		}
	}
	return cal.Serialize(), nil
}
