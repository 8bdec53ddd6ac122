package calendar

import (
	"errors"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var ErrUnrecognizedPhrase = errors.New("could not recognize a date in the phrase")

// defaultQuickAddDuration is used when the phrase names a start but no end.
const defaultQuickAddDuration = time.Hour

// parseQuickAdd extracts a start time from a natural language phrase and
// uses the rest of the phrase as the event title.
func parseQuickAdd(text string, now time.Time) (Event, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Event{}, ErrUnrecognizedPhrase
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	result, err := w.Parse(text, now)
	if err != nil || result == nil {
		return Event{}, ErrUnrecognizedPhrase
	}

	title := strings.TrimSpace(strings.Replace(text, result.Text, "", 1))
	title = strings.Trim(title, " ,;-")
	if title == "" {
		title = text
	}

	start := result.Time
	return Event{
		Title:     title,
		StartTime: start,
		EndTime:   start.Add(defaultQuickAddDuration),
	}, nil
}
