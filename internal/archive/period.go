// Package archive closes a finished month: it snapshots the month's expenses
// and invoices into a single monthly archive row and then prunes the
// archived rows from the live tables.
package archive

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidPeriod is returned for a month outside 1-12 or a non-positive year.
var ErrInvalidPeriod = errors.New("invalid archive period")

// Period identifies one calendar month.
type Period struct {
	Month time.Month
	Year  int
}

// ShouldRun reports whether an archival pass is due. Archival only runs on the
// first day of the month.
func ShouldRun(now time.Time) bool {
	return now.Day() == 1
}

// PreviousPeriod returns the month before the one containing now.
func PreviousPeriod(now time.Time) Period {
	if now.Month() == time.January {
		return Period{Month: time.December, Year: now.Year() - 1}
	}
	return Period{Month: now.Month() - 1, Year: now.Year()}
}

// ParsePeriod parses a "YYYY-MM" string.
func ParsePeriod(s string) (Period, error) {
	yearStr, monthStr, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return Period{}, fmt.Errorf("%w: %q is not YYYY-MM", ErrInvalidPeriod, s)
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return Period{}, fmt.Errorf("%w: bad year %q", ErrInvalidPeriod, yearStr)
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil {
		return Period{}, fmt.Errorf("%w: bad month %q", ErrInvalidPeriod, monthStr)
	}
	p := Period{Month: time.Month(month), Year: year}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// Validate checks the month is in range and the year is positive.
func (p Period) Validate() error {
	if p.Month < time.January || p.Month > time.December {
		return fmt.Errorf("%w: month %d", ErrInvalidPeriod, int(p.Month))
	}
	if p.Year <= 0 {
		return fmt.Errorf("%w: year %d", ErrInvalidPeriod, p.Year)
	}
	return nil
}

// DateRange returns the first and last calendar day of the period, both
// inclusive, as UTC midnights. The last day is day 0 of the following month,
// so February gets 29 days in leap years.
func (p Period) DateRange() (start, end time.Time) {
	start = time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
	end = time.Date(p.Year, p.Month+1, 0, 0, 0, 0, 0, time.UTC)
	return start, end
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}
