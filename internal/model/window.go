package model

import (
	"fmt"
	"time"
)

// DateWindow is an inclusive range of calendar dates. Time of day is ignored.
type DateWindow struct {
	Start time.Time
	End   time.Time
}

// NewDateWindow returns a window covering start through end.
func NewDateWindow(start, end time.Time) (DateWindow, error) {
	w := DateWindow{Start: civilDate(start), End: civilDate(end)}
	if w.Start.After(w.End) {
		return DateWindow{}, fmt.Errorf("%w: %s is after %s", ErrInvalidWindow,
			w.Start.Format(DateFormat), w.End.Format(DateFormat))
	}
	return w, nil
}

// FiscalYearWindow returns the window for a whole fiscal year.
// Fiscal years follow the calendar year.
func FiscalYearWindow(year int) DateWindow {
	return DateWindow{
		Start: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
	}
}

// Contains reports whether t falls on a date inside the window.
func (w DateWindow) Contains(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	d := civilDate(t)
	return !d.Before(civilDate(w.Start)) && !d.After(civilDate(w.End))
}

// FiscalYear is the fiscal year the window closes in.
func (w DateWindow) FiscalYear() int {
	return w.End.Year()
}

func (w DateWindow) String() string {
	return w.Start.Format(DateFormat) + ".." + w.End.Format(DateFormat)
}

// DateFormat is the on-disk and CLI date layout.
const DateFormat = "2006-01-02"

func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
