package audit

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date format accepted for range bounds.
const DateLayout = "2006-01-02"

// ErrInvalidRange is returned for malformed dates or a start after the end.
var ErrInvalidRange = errors.New("invalid date range")

// DateRange is an inclusive window over changed_at. A zero bound is open.
//
// Start is 00:00:00 UTC of the first day and End is the last instant of the
// final day, so a range of a single date covers that whole day.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ParseDateRange parses YYYY-MM-DD bounds. An empty string leaves that side
// unbounded.
func ParseDateRange(start, end string) (DateRange, error) {
	var r DateRange
	if s := strings.TrimSpace(start); s != "" {
		t, err := time.ParseInLocation(DateLayout, s, time.UTC)
		if err != nil {
			return DateRange{}, fmt.Errorf("%w: start %q: expected YYYY-MM-DD", ErrInvalidRange, start)
		}
		r.Start = t
	}
	if s := strings.TrimSpace(end); s != "" {
		t, err := time.ParseInLocation(DateLayout, s, time.UTC)
		if err != nil {
			return DateRange{}, fmt.Errorf("%w: end %q: expected YYYY-MM-DD", ErrInvalidRange, end)
		}
		r.End = t.Add(24*time.Hour - time.Nanosecond)
	}
	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

// NewDateRange builds a range from explicit instants, normalized to UTC.
func NewDateRange(start, end time.Time) (DateRange, error) {
	r := DateRange{Start: start.UTC(), End: end.UTC()}
	if start.IsZero() {
		r.Start = time.Time{}
	}
	if end.IsZero() {
		r.End = time.Time{}
	}
	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

// Validate rejects a start that falls after the end.
func (r DateRange) Validate() error {
	if r.HasStart() && r.HasEnd() && r.Start.After(r.End) {
		return fmt.Errorf("%w: start %s is after end %s", ErrInvalidRange,
			r.Start.Format(DateLayout), r.End.Format(DateLayout))
	}
	return nil
}

func (r DateRange) HasStart() bool { return !r.Start.IsZero() }
func (r DateRange) HasEnd() bool   { return !r.End.IsZero() }

// Contains reports whether t falls inside the range, bounds included.
func (r DateRange) Contains(t time.Time) bool {
	if r.HasStart() && t.Before(r.Start) {
		return false
	}
	if r.HasEnd() && t.After(r.End) {
		return false
	}
	return true
}

// String renders the range as "from..to" with open sides left blank.
func (r DateRange) String() string {
	var from, to string
	if r.HasStart() {
		from = r.Start.Format(DateLayout)
	}
	if r.HasEnd() {
		to = r.End.Format(DateLayout)
	}
	return from + ".." + to
}
