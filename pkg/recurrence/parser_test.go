package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Structured(t *testing.T) {
	testCases := []struct {
		name string
		spec string
		want *Rule
	}{
		{
			name: "minimal daily",
			spec: `{"frequency":"daily"}`,
			want: &Rule{Frequency: Daily, Interval: 1},
		},
		{
			name: "weekly with interval and days",
			spec: `{"frequency":"weekly","interval":2,"days":["MO","WE"]}`,
			want: &Rule{
				Frequency: Weekly,
				Interval:  2,
				Weekdays:  []time.Weekday{time.Monday, time.Wednesday},
			},
		},
		{
			name: "monthly with count",
			spec: `{"frequency":"monthly","count":10}`,
			want: &Rule{Frequency: Monthly, Interval: 1, Count: 10},
		},
		{
			name: "annually with RFC3339 until",
			spec: `{"frequency":"annually","until":"2030-06-15T00:00:00Z"}`,
			want: &Rule{
				Frequency: Annually,
				Interval:  1,
				Until:     time.Date(2030, 6, 15, 0, 0, 0, 0, time.UTC),
			},
		},
		{
			name: "date-only until is read as end of day",
			spec: `{"frequency":"daily","until":"2025-12-12"}`,
			want: &Rule{
				Frequency: Daily,
				Interval:  1,
				Until:     time.Date(2025, 12, 12, 23, 59, 59, 0, time.UTC),
			},
		},
		{
			name: "duplicate day codes are collapsed",
			spec: `{"frequency":"weekly","days":["MO","mo","WE"]}`,
			want: &Rule{
				Frequency: Weekly,
				Interval:  1,
				Weekdays:  []time.Weekday{time.Monday, time.Wednesday},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rule, err := Parse(tc.spec)
			require.NoError(t, err)
			assert.Equal(t, tc.want, rule)
		})
	}
}

func TestParse_Legacy(t *testing.T) {
	testCases := []struct {
		name string
		spec string
		want *Rule
	}{
		{
			name: "daily with count",
			spec: "FREQ=DAILY;COUNT=5",
			want: &Rule{Frequency: Daily, Interval: 1, Count: 5},
		},
		{
			name: "weekly with single day",
			spec: "FREQ=WEEKLY;BYDAY=MO",
			want: &Rule{Frequency: Weekly, Interval: 1, Weekdays: []time.Weekday{time.Monday}},
		},
		{
			name: "weekly with day list and until",
			spec: "FREQ=WEEKLY;BYDAY=MO,TU,WE,TH,FR;UNTIL=20251225",
			want: &Rule{
				Frequency: Weekly,
				Interval:  1,
				Weekdays: []time.Weekday{
					time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
				},
				Until: time.Date(2025, 12, 25, 23, 59, 59, 0, time.UTC),
			},
		},
		{
			name: "yearly alias",
			spec: "FREQ=YEARLY",
			want: &Rule{Frequency: Annually, Interval: 1},
		},
		{
			name: "lowercase keys and values",
			spec: "freq=monthly",
			want: &Rule{Frequency: Monthly, Interval: 1},
		},
		{
			name: "unknown keys are ignored",
			spec: "FREQ=DAILY;WKST=MO;INTERVAL=2",
			want: &Rule{Frequency: Daily, Interval: 1},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rule, err := Parse(tc.spec)
			require.NoError(t, err)
			assert.Equal(t, tc.want, rule)
		})
	}
}

func TestParse_Unparsable(t *testing.T) {
	testCases := []struct {
		name string
		spec string
	}{
		{name: "empty string", spec: ""},
		{name: "whitespace only", spec: "   "},
		{name: "free text", spec: "every other thursday"},
		{name: "legacy FREQ without value", spec: "FREQ="},
		{name: "legacy pair without equals", spec: "FREQ=DAILY;NONSENSE"},
		{name: "legacy without FREQ", spec: "COUNT=3"},
		{name: "legacy until not 8 digits", spec: "FREQ=DAILY;UNTIL=2025-12-31"},
		{name: "legacy until not a date", spec: "FREQ=DAILY;UNTIL=20251341"},
		{name: "legacy count not a number", spec: "FREQ=DAILY;COUNT=many"},
		{name: "legacy zero count", spec: "FREQ=DAILY;COUNT=0"},
		{name: "legacy both until and count", spec: "FREQ=DAILY;UNTIL=20251231;COUNT=3"},
		{name: "legacy day list on daily", spec: "FREQ=DAILY;BYDAY=MO"},
		{name: "legacy bad day code", spec: "FREQ=WEEKLY;BYDAY=XX"},
		{name: "structured unknown frequency", spec: `{"frequency":"hourly"}`},
		{name: "structured missing frequency", spec: `{"interval":2}`},
		{name: "structured zero interval", spec: `{"frequency":"daily","interval":0}`},
		{name: "structured negative count", spec: `{"frequency":"daily","count":-1}`},
		{name: "structured both end conditions", spec: `{"frequency":"daily","until":"2025-12-31","count":3}`},
		{name: "structured days on monthly", spec: `{"frequency":"monthly","days":["MO"]}`},
		{name: "structured bad until", spec: `{"frequency":"daily","until":"soon"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rule, err := Parse(tc.spec)
			assert.ErrorIs(t, err, ErrUnparsable)
			assert.Nil(t, rule)
		})
	}
}
