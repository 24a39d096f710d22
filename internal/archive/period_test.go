package archive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestShouldRun(t *testing.T) {
	require.True(t, ShouldRun(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	require.True(t, ShouldRun(time.Date(2024, 3, 1, 23, 59, 0, 0, time.UTC)))
	require.False(t, ShouldRun(time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)))
	require.False(t, ShouldRun(time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC)))
}

func TestPreviousPeriod(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want Period
	}{
		{"january wraps to december", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Period{time.December, 2023}},
		{"march to february", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Period{time.February, 2024}},
		{"december to november", time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC), Period{time.November, 2024}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, PreviousPeriod(tt.now))
		})
	}
}

func TestPreviousPeriod_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		year := rapid.IntRange(2, 9999).Draw(t, "year")
		month := rapid.IntRange(1, 12).Draw(t, "month")
		day := rapid.IntRange(1, 28).Draw(t, "day")
		now := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)

		p := PreviousPeriod(now)
		if month == 1 {
			require.Equal(t, Period{time.December, year - 1}, p)
		} else {
			require.Equal(t, Period{time.Month(month - 1), year}, p)
		}
		require.NoError(t, p.Validate())
	})
}

func TestPeriod_DateRange(t *testing.T) {
	tests := []struct {
		name      string
		period    Period
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "leap february",
			period:    Period{time.February, 2024},
			wantStart: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "common february",
			period:    Period{time.February, 2023},
			wantStart: time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "december",
			period:    Period{time.December, 2023},
			wantStart: time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "century non-leap",
			period:    Period{time.February, 1900},
			wantStart: time.Date(1900, 2, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(1900, 2, 28, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := tt.period.DateRange()
			require.Equal(t, tt.wantStart, start)
			require.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestPeriod_DateRange_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := Period{
			Month: time.Month(rapid.IntRange(1, 12).Draw(t, "month")),
			Year:  rapid.IntRange(1, 9999).Draw(t, "year"),
		}
		start, end := p.DateRange()

		require.Equal(t, 1, start.Day())
		require.Equal(t, p.Month, start.Month())
		require.Equal(t, p.Month, end.Month())
		require.Equal(t, p.Year, end.Year())
		// The day after the end is the first of the next month.
		require.Equal(t, 1, end.AddDate(0, 0, 1).Day())
	})
}

func TestParsePeriod(t *testing.T) {
	t.Run("parses YYYY-MM", func(t *testing.T) {
		p, err := ParsePeriod("2024-02")
		require.NoError(t, err)
		require.Equal(t, Period{time.February, 2024}, p)
		require.Equal(t, "2024-02", p.String())
	})

	for _, in := range []string{"", "2024", "2024-13", "2024-00", "abcd-01", "2024-xx", "0-05"} {
		t.Run("rejects "+in, func(t *testing.T) {
			_, err := ParsePeriod(in)
			require.ErrorIs(t, err, ErrInvalidPeriod)
		})
	}
}

func TestPeriod_String_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := Period{
			Month: time.Month(rapid.IntRange(1, 12).Draw(t, "month")),
			Year:  rapid.IntRange(1, 9999).Draw(t, "year"),
		}
		got, err := ParsePeriod(p.String())
		require.NoError(t, err)
		require.Equal(t, p, got)
	})
}
