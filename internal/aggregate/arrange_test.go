package aggregate_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/poliswatch/internal/aggregate"
	"github.com/jonesrussell/poliswatch/internal/domain"
)

// arrangeNow is Monday evening in Central European Time.
var arrangeNow = time.Date(2026, time.January, 12, 23, 0, 0, 0, time.FixedZone("CET", 3600))

func publishedAt(t *testing.T, value string) time.Time {
	t.Helper()

	ts, err := time.Parse("2006-01-02 15:04:05 -07:00", value)
	require.NoError(t, err)

	return ts
}

func eventPublished(id int64, ts time.Time) domain.EnrichedEvent {
	return domain.EnrichedEvent{ID: id, PublishedAt: ts}
}

func ids(events []domain.EnrichedEvent) []int64 {
	out := make([]int64, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.ID)
	}

	return out
}

func TestArrange_GroupsTodayFirstNewestFirst(t *testing.T) {
	t.Parallel()

	events := []domain.EnrichedEvent{
		eventPublished(1, publishedAt(t, "2026-01-11 23:30:00 +01:00")),
		eventPublished(2, publishedAt(t, "2026-01-12 09:00:00 +01:00")),
		eventPublished(3, publishedAt(t, "2026-01-10 12:00:00 +01:00")),
		eventPublished(4, publishedAt(t, "2026-01-12 22:00:00 +01:00")),
		eventPublished(5, publishedAt(t, "2026-01-11 08:00:00 +01:00")),
	}

	got := aggregate.Arrange(events, arrangeNow, 10)

	assert.Equal(t, []int64{4, 2, 1, 5, 3}, ids(got))
}

func TestArrange_KeepsAllOfTodayPastTheCap(t *testing.T) {
	t.Parallel()

	events := []domain.EnrichedEvent{
		eventPublished(1, publishedAt(t, "2026-01-12 08:00:00 +01:00")),
		eventPublished(2, publishedAt(t, "2026-01-12 14:00:00 +01:00")),
		eventPublished(3, publishedAt(t, "2026-01-12 21:00:00 +01:00")),
		eventPublished(4, publishedAt(t, "2026-01-11 22:00:00 +01:00")),
		eventPublished(5, publishedAt(t, "2026-01-11 10:00:00 +01:00")),
	}

	got := aggregate.Arrange(events, arrangeNow, 2)

	assert.Equal(t, []int64{3, 2, 1}, ids(got))
}

func TestArrange_FillsRemainderInSortedOrder(t *testing.T) {
	t.Parallel()

	events := []domain.EnrichedEvent{
		eventPublished(1, publishedAt(t, "2026-01-12 20:00:00 +01:00")),
		eventPublished(2, publishedAt(t, "2026-01-11 23:00:00 +01:00")),
		eventPublished(3, publishedAt(t, "2026-01-11 12:00:00 +01:00")),
		eventPublished(4, publishedAt(t, "2026-01-11 06:00:00 +01:00")),
		eventPublished(5, publishedAt(t, "2026-01-10 18:00:00 +01:00")),
	}

	got := aggregate.Arrange(events, arrangeNow, 3)

	assert.Equal(t, []int64{1, 2, 3}, ids(got))
}

func TestArrange_ZeroCapStillKeepsToday(t *testing.T) {
	t.Parallel()

	events := []domain.EnrichedEvent{
		eventPublished(1, publishedAt(t, "2026-01-12 10:00:00 +01:00")),
		eventPublished(2, publishedAt(t, "2026-01-12 16:00:00 +01:00")),
		eventPublished(3, publishedAt(t, "2026-01-11 16:00:00 +01:00")),
	}

	got := aggregate.Arrange(events, arrangeNow, 0)

	assert.Equal(t, []int64{2, 1}, ids(got))
}

func TestArrange_DayGroupUsesClockLocation(t *testing.T) {
	t.Parallel()

	// Just past midnight in an offset one hour east of the events.
	now := time.Date(2026, time.January, 13, 0, 15, 0, 0, time.FixedZone("EET", 2*3600))

	events := []domain.EnrichedEvent{
		// 23:30 +01:00 is 00:30 on the 13th in the clock's offset: today.
		eventPublished(1, publishedAt(t, "2026-01-12 23:30:00 +01:00")),
		// 22:00 +01:00 is 23:00 on the 12th in the clock's offset: yesterday.
		eventPublished(2, publishedAt(t, "2026-01-12 22:00:00 +01:00")),
	}

	got := aggregate.Arrange(events, now, 1)

	assert.Equal(t, []int64{1}, ids(got))
}

func TestArrange_EmptyInput(t *testing.T) {
	t.Parallel()

	got := aggregate.Arrange(nil, arrangeNow, 5)
	assert.Empty(t, got)
}

func TestArrange_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	events := []domain.EnrichedEvent{
		eventPublished(1, publishedAt(t, "2026-01-11 23:00:00 +01:00")),
		eventPublished(2, publishedAt(t, "2026-01-12 09:00:00 +01:00")),
	}

	_ = aggregate.Arrange(events, arrangeNow, 5)

	assert.Equal(t, []int64{1, 2}, ids(events))
}
