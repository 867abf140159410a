package timex

import "time"

// Layout is the fixed-width text form used where a backend has no native
// timestamp type. Lexical order equals chronological order.
const Layout = "2006-01-02T15:04:05.000000Z"

// Resolution is the precision every stored timestamp is truncated to.
const Resolution = time.Microsecond

// Normalize returns t in UTC truncated to Resolution.
func Normalize(t time.Time) time.Time {
	return t.UTC().Truncate(Resolution)
}

// Format renders t in Layout after normalisation.
func Format(t time.Time) string {
	return Normalize(t).Format(Layout)
}

// Parse reads a timestamp written by Format. RFC3339 input is accepted too.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return time.Time{}, err
		}
	}
	return Normalize(t), nil
}

// Next returns the timestamp a mutation should stamp on a row whose current
// value is prev: now, or prev plus one Resolution step if the clock has not
// moved past prev.
func Next(prev, now time.Time) time.Time {
	now = Normalize(now)
	floor := Normalize(prev).Add(Resolution)
	if now.Before(floor) {
		return floor
	}
	return now
}
