package timeparse_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/poliswatch/internal/domain"
	"github.com/jonesrussell/poliswatch/internal/timeparse"
)

func TestParseFeedTimestampRoundTrip(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"2024-01-05 14:30:00 +01:00",
		"2024-06-30 23:59:59 +02:00",
		"2023-12-31 00:00:00 -05:00",
		"2024-02-29 12:00:00 +00:00",
	}

	for _, input := range inputs {
		ts, err := timeparse.ParseFeedTimestamp(input)
		require.NoError(t, err, input)
		assert.Equal(t, input, ts.Format(timeparse.FeedLayout))
	}
}

func TestParseFeedTimestampPreservesOffset(t *testing.T) {
	t.Parallel()

	ts, err := timeparse.ParseFeedTimestamp("2024-01-05 14:30:00 +01:00")
	require.NoError(t, err)

	_, offset := ts.Zone()
	assert.Equal(t, 3600, offset)
	assert.Equal(t, 2024, ts.Year())
	assert.Equal(t, time.January, ts.Month())
	assert.Equal(t, 5, ts.Day())
	assert.Equal(t, 14, ts.Hour())
	assert.Equal(t, 30, ts.Minute())
}

func TestParseFeedTimestampRejectsBadInput(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"   ",
		"2024-01-05 14:30:00",
		"2024-01-05T14:30:00+01:00",
		"not a timestamp",
		"2024-13-40 99:99:99 +01:00",
	}

	for _, input := range inputs {
		_, err := timeparse.ParseFeedTimestamp(input)
		require.Error(t, err, "input %q", input)

		var parseErr *domain.ParseError
		assert.True(t, errors.As(err, &parseErr), "input %q", input)
	}
}

func TestEventTimeFromTitle(t *testing.T) {
	t.Parallel()

	cet := time.FixedZone("CET", 3600)

	tests := []struct {
		name     string
		title    string
		fallback time.Time
		want     time.Time
	}{
		{
			name:     "leading fragment parsed",
			title:    "12 januari 22.16, Mordbrand, Helsingborg",
			fallback: time.Date(2024, time.January, 12, 23, 0, 0, 0, cet),
			want:     time.Date(2024, time.January, 12, 22, 16, 0, 0, cet),
		},
		{
			name:     "month name is case-insensitive",
			title:    "12 JANUARI 22.16, Mordbrand, Helsingborg",
			fallback: time.Date(2024, time.January, 12, 23, 0, 0, 0, cet),
			want:     time.Date(2024, time.January, 12, 22, 16, 0, 0, cet),
		},
		{
			name:     "december event published in january rolls back a year",
			title:    "31 december 23.50, Brand, Kiruna",
			fallback: time.Date(2024, time.January, 2, 0, 10, 0, 0, cet),
			want:     time.Date(2023, time.December, 31, 23, 50, 0, 0, cet),
		},
		{
			name:     "event published just after midnight rolls back a day",
			title:    "5 januari 23.50, Rattfylleri, Lund",
			fallback: time.Date(2024, time.January, 5, 0, 10, 0, 0, cet),
			want:     time.Date(2024, time.January, 4, 23, 50, 0, 0, cet),
		},
		{
			name:     "no leading fragment returns fallback",
			title:    "Sammanfattning natt, Polisregion Nord",
			fallback: time.Date(2024, time.March, 1, 8, 0, 0, 0, cet),
			want:     time.Date(2024, time.March, 1, 8, 0, 0, 0, cet),
		},
		{
			name:     "unknown month returns fallback",
			title:    "12 janury 22.16, Mordbrand, Helsingborg",
			fallback: time.Date(2024, time.January, 12, 23, 0, 0, 0, cet),
			want:     time.Date(2024, time.January, 12, 23, 0, 0, 0, cet),
		},
		{
			name:     "impossible calendar date returns fallback",
			title:    "30 februari 10.00, Inbrott, Umeå",
			fallback: time.Date(2024, time.March, 1, 11, 0, 0, 0, cet),
			want:     time.Date(2024, time.March, 1, 11, 0, 0, 0, cet),
		},
		{
			name:     "impossible clock time returns fallback",
			title:    "12 januari 25.61, Inbrott, Umeå",
			fallback: time.Date(2024, time.January, 12, 23, 0, 0, 0, cet),
			want:     time.Date(2024, time.January, 12, 23, 0, 0, 0, cet),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := timeparse.EventTimeFromTitle(tt.title, tt.fallback)
			assert.True(t, tt.want.Equal(got), "want %v, got %v", tt.want, got)
		})
	}
}

func TestEventTimeFromTitleBorrowsFallbackOffset(t *testing.T) {
	t.Parallel()

	cest := time.FixedZone("CEST", 2*3600)
	fallback := time.Date(2024, time.July, 10, 9, 0, 0, 0, cest)

	got := timeparse.EventTimeFromTitle("10 juli 08.45, Trafikolycka, Visby", fallback)

	_, offset := got.Zone()
	assert.Equal(t, 2*3600, offset)
	assert.Equal(t, "2024-07-10 08:45:00 +02:00", got.Format(timeparse.FeedLayout))
}
