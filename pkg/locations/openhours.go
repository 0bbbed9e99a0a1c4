package locations

import "time"

// DateFormat is the ISO date layout used for open-hours keys.
const DateFormat = "2006-01-02"

// TimestampFormat is the UTC timestamp layout used for event boundaries.
const TimestampFormat = "2006-01-02T15:04:05Z"

// WindowDays is the length of the open-hours window.
const WindowDays = 7

// Event is one calendar event inside a day bucket. All fields are
// best-effort: anything the feed omitted stays null.
type Event struct {
	Summary      *string `json:"summary"`
	UID          *string `json:"uid"`
	Start        *string `json:"start"`
	End          *string `json:"end"`
	Sequence     *int    `json:"sequence"`
	RecurrenceID *string `json:"recurrenceId"`
	LastModified *string `json:"lastModified"`
}

// OpenHours maps an ISO date to that day's events in feed order. A
// populated table always has exactly WindowDays keys, even when every day
// is empty.
type OpenHours map[string][]Event

// Window returns the WindowDays consecutive ISO date keys starting at
// today (UTC). The keys are computed once per run and reused everywhere so
// every table in a run agrees on its window.
func Window(today time.Time) []string {
	today = today.UTC()
	days := make([]string, WindowDays)
	for i := range days {
		days[i] = today.AddDate(0, 0, i).Format(DateFormat)
	}
	return days
}

// NewOpenHours returns a table with WindowDays empty day buckets starting
// at today (UTC).
func NewOpenHours(today time.Time) OpenHours {
	hours := make(OpenHours, WindowDays)
	for _, day := range Window(today) {
		hours[day] = []Event{}
	}
	return hours
}

// Combine appends other's events onto the corresponding day buckets,
// adding any day keys this table does not already have.
func (h OpenHours) Combine(other OpenHours) {
	for day, events := range other {
		h[day] = append(h[day], events...)
	}
}
