package aggregate

import (
	"sort"
	"time"

	"github.com/jonesrussell/poliswatch/internal/domain"
)

// Day groups, ordered by display priority.
const (
	groupToday = iota
	groupYesterday
	groupOlder
)

// Arrange orders events by publish day group (today first, then
// yesterday, then older) with the newest publish time first inside each
// group, then trims to maxItems. Today's events are always kept, even
// past the cap; remaining capacity is filled from the rest in order.
func Arrange(events []domain.EnrichedEvent, now time.Time, maxItems int) []domain.EnrichedEvent {
	sorted := make([]domain.EnrichedEvent, len(events))
	copy(sorted, events)

	sort.SliceStable(sorted, func(i, j int) bool {
		gi := dayGroup(sorted[i].PublishedAt, now)
		gj := dayGroup(sorted[j].PublishedAt, now)

		if gi != gj {
			return gi < gj
		}

		return sorted[i].PublishedAt.After(sorted[j].PublishedAt)
	})

	today := 0
	for _, ev := range sorted {
		if dayGroup(ev.PublishedAt, now) != groupToday {
			break
		}

		today++
	}

	capacity := maxItems - today
	if capacity < 0 {
		capacity = 0
	}

	keep := today + capacity
	if keep > len(sorted) {
		keep = len(sorted)
	}

	return sorted[:keep]
}

// dayGroup classifies ts by calendar day in now's location.
func dayGroup(ts, now time.Time) int {
	local := ts.In(now.Location())

	if sameDay(local, now) {
		return groupToday
	}

	if sameDay(local, now.AddDate(0, 0, -1)) {
		return groupYesterday
	}

	return groupOlder
}

// sameDay reports whether a and b fall on the same calendar date.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()

	return ay == by && am == bm && ad == bd
}
