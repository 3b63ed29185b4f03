package scoring

import "time"

// DayOf normalizes a timestamp to midnight of its calendar day in loc.
// All engine inputs and outputs carry days in this form.
func DayOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// dayKey is the comparison form of a day. Rows coming back from a DATE
// column may carry a different location than the engine's; the formatted
// date is what actually identifies the day.
func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
