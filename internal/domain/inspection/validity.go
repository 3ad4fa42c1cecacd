package inspection

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date into UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// DateOf drops the time-of-day component, keeping the calendar date of t in its own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddMonths adds n calendar months to the date of t. When the target month is
// shorter than the source day, the result is the last day of the target month.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
}

// ComputeValidityDate returns the expiry date of an inspection performed on
// visit for a vehicle of category c.
func ComputeValidityDate(c VehicleCategory, visit time.Time) (time.Time, error) {
	months, err := c.ValidityMonths()
	if err != nil {
		return time.Time{}, err
	}
	if visit.IsZero() {
		return time.Time{}, fmt.Errorf("%w: visit date is required", ErrInvalidDate)
	}
	return AddMonths(DateOf(visit), months), nil
}
