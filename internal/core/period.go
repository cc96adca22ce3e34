package core

import (
	"errors"
	"time"
)

const (
	PeriodWeek   Period = "week"
	PeriodMonth  Period = "month"
	PeriodYear   Period = "year"
	PeriodCustom Period = "custom"
)

var (
	ErrStartAfterEnd = errors.New("start date must be before end date")
	ErrUnknownPeriod = errors.New("unknown period")
)

// Period names a summary window kind.
type Period string

// Window is an inclusive range of calendar days.
type Window struct {
	Start Date
	End   Date
}

// ResolvePeriod returns the window of kind p that contains today.
// Custom windows need explicit dates; use CustomWindow for those.
func ResolvePeriod(p Period, today Date) (Window, error) {
	y, m, _ := today.Date()
	switch p {
	case PeriodWeek:
		// Monday is day 0 of the week.
		offset := (int(today.Weekday()) + 6) % 7
		start := today.AddDays(-offset)
		return Window{Start: start, End: start.AddDays(6)}, nil
	case PeriodMonth:
		return Window{
			Start: NewDate(y, int(m), 1),
			End:   NewDate(y, int(m), DaysIn(y, m)),
		}, nil
	case PeriodYear:
		return Window{Start: NewDate(y, 1, 1), End: NewDate(y, 12, 31)}, nil
	default:
		return Window{}, ErrUnknownPeriod
	}
}

// CustomWindow validates a caller-supplied window.
func CustomWindow(start, end Date) (Window, error) {
	if start.After(end.Time) {
		return Window{}, ErrStartAfterEnd
	}
	return Window{Start: start, End: end}, nil
}

// DaysIn returns the number of days in the month, leap years included.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Bounds converts the window into the instant range it covers in loc:
// midnight of the first day through the last nanosecond of the last day.
func (w Window) Bounds(loc *time.Location) (since, until time.Time) {
	return w.Start.StartIn(loc), w.End.EndIn(loc)
}

// Today returns the calendar day of now in loc.
func Today(now time.Time, loc *time.Location) Date {
	return DateOf(now.In(loc))
}
