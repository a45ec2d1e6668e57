package itinerary

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activities(n int) []Activity {
	out := make([]Activity, n)
	for i := range out {
		out[i] = Activity{ID: fmt.Sprintf("a-%d", i), Name: fmt.Sprintf("A %d", i), DurationHours: 2}
	}
	return out
}

func TestChunkFallback(t *testing.T) {
	t.Run("every activity lands in exactly one day", func(t *testing.T) {
		for n := 0; n <= 12; n++ {
			for d := -1; d <= 5; d++ {
				days := ChunkFallback(activities(n), d, 3)

				wantDays := d
				if wantDays < 1 {
					wantDays = 1
				}
				require.Len(t, days, wantDays, "n=%d d=%d", n, d)

				seen := map[string]int{}
				for _, day := range days {
					for _, s := range day.Stops {
						seen[s.ActivityID]++
					}
				}
				assert.Len(t, seen, n, "n=%d d=%d", n, d)
				for id, count := range seen {
					assert.Equal(t, 1, count, "activity %s placed %d times", id, count)
				}
				assertWellFormed(t, days)
			}
		}
	})

	t.Run("keeps input order and chunks by ceil", func(t *testing.T) {
		days := ChunkFallback(activities(5), 2, 3)

		require.Len(t, days, 2)
		require.Len(t, days[0].Stops, 3)
		require.Len(t, days[1].Stops, 2)
		assert.Equal(t, "a-0", days[0].Stops[0].ActivityID)
		assert.Equal(t, "a-3", days[1].Stops[0].ActivityID)
		assert.Equal(t, fallbackDayNote, days[0].Notes)
	})

	t.Run("places stops back to back from nine", func(t *testing.T) {
		days := ChunkFallback(activities(3), 1, 3)

		stops := days[0].Stops
		require.Len(t, stops, 3)
		assert.Equal(t, "09:00", stops[0].StartTime)
		assert.Equal(t, "13:00", stops[0].EndTime)
		assert.Equal(t, "13:00", stops[1].StartTime)
		assert.Equal(t, "21:00", stops[2].EndTime)
		assert.Equal(t, 4.0, stops[0].DurationHours)
	})

	t.Run("block length is at least two hours", func(t *testing.T) {
		days := ChunkFallback(activities(2), 1, 12)
		assert.Equal(t, "11:00", days[0].Stops[0].EndTime)
	})

	t.Run("shrinks blocks that would pass midnight", func(t *testing.T) {
		days := ChunkFallback(activities(10), 1, 6)

		stops := days[0].Stops
		require.Len(t, stops, 10)
		end, _ := ParseTimeToMinutes(stops[9].EndTime)
		assert.LessOrEqual(t, end, minutesPerDay)
		assertWellFormed(t, days)
	})

	t.Run("very large day starts at midnight", func(t *testing.T) {
		days := ChunkFallback(activities(1000), 1, 3)

		stops := days[0].Stops
		require.Len(t, stops, 1000)
		assert.Equal(t, "00:00", stops[0].StartTime)
		assert.Equal(t, "16:40", stops[999].EndTime)
		assertWellFormed(t, days)
	})

	t.Run("more stops than minutes in a day are truncated", func(t *testing.T) {
		days := ChunkFallback(activities(1500), 1, 3)

		stops := days[0].Stops
		require.Len(t, stops, minutesPerDay)
		assert.Equal(t, "24:00", stops[len(stops)-1].EndTime)
		assertWellFormed(t, days)
	})

	t.Run("empty catalog gives empty days", func(t *testing.T) {
		days := ChunkFallback(nil, 3, 3)

		require.Len(t, days, 3)
		for i, d := range days {
			assert.Equal(t, i+1, d.Day)
			assert.Empty(t, d.Stops)
			assert.NotNil(t, d.Meals)
		}
	})
}
