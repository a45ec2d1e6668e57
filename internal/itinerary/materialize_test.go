package itinerary

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog(t *testing.T) Catalog {
	t.Helper()
	attractions := decodePlaces(t, `[
		{"name": "De Young Museum", "category": "museum", "coord": {"lat": 37.7715, "lng": -122.4687}},
		{"name": "Golden Gate Park", "category": "park", "coord": {"lat": 37.7694, "lng": -122.4862}},
		{"name": "Coit Tower", "category": "tower"}
	]`)
	dining := decodePlaces(t, `[{"name": "Zuni Cafe", "price_level": 2}]`)
	return NormalizeCatalog(attractions, dining, 8)
}

func proposal(t *testing.T, raw string) map[string]json.RawMessage {
	t.Helper()
	var obj map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(raw), &obj))
	return obj
}

func assertWellFormed(t *testing.T, days []DayPlan) {
	t.Helper()
	for i, d := range days {
		assert.Equal(t, i+1, d.Day, "days must be numbered 1..N")
		for _, s := range d.Stops {
			start, _ := ParseTimeToMinutes(s.StartTime)
			end, _ := ParseTimeToMinutes(s.EndTime)
			assert.Greater(t, end, start, "stop %q on day %d", s.Name, d.Day)
		}
		for _, m := range d.Meals {
			start, _ := ParseTimeToMinutes(m.StartTime)
			end, _ := ParseTimeToMinutes(m.EndTime)
			assert.Greater(t, end, start, "meal %q on day %d", m.Name, d.Day)
		}
	}
}

func TestMaterialize(t *testing.T) {
	catalog := testCatalog(t)

	t.Run("resolves blocks and chains start times", func(t *testing.T) {
		p := proposal(t, `{"days": [{"day": 1, "theme": "Parks", "blocks": [
			{"type": "activity", "activity_id": "de-young-museum", "start_time": "10:00"},
			{"type": "travel", "duration_hours": 0.5},
			{"activity_name": "golden gate PARK", "notes": "picnic"},
			{"type": "meal", "activity_id": "zuni-cafe", "start_time": "7:00 PM"}
		]}]}`)

		m := Materialize(p, catalog, "09:00", 1)

		require.True(t, m.Usable())
		assert.Empty(t, m.Warnings)
		require.Len(t, m.Days, 1)
		day := m.Days[0]
		assert.Equal(t, "Parks", day.Theme)

		require.Len(t, day.Stops, 3)
		assert.Equal(t, "de-young-museum", day.Stops[0].ActivityID)
		assert.Equal(t, "10:00", day.Stops[0].StartTime)
		assert.Equal(t, "12:30", day.Stops[0].EndTime)

		assert.Equal(t, BlockTravel, day.Stops[1].Type)
		assert.Equal(t, "Travel time", day.Stops[1].Name)
		assert.Equal(t, "12:30", day.Stops[1].StartTime)
		assert.Equal(t, "13:30", day.Stops[1].EndTime, "travel blocks last at least an hour")

		assert.Equal(t, "golden-gate-park", day.Stops[2].ActivityID)
		assert.Equal(t, "13:30", day.Stops[2].StartTime)
		assert.Equal(t, "15:30", day.Stops[2].EndTime)
		assert.Equal(t, "picnic", day.Stops[2].Notes)
		require.NotNil(t, day.Stops[2].Coord)

		require.Len(t, day.Meals, 1)
		assert.Equal(t, "zuni-cafe", day.Meals[0].MealID)
		assert.Equal(t, "19:00", day.Meals[0].StartTime)
		assert.Equal(t, "20:00", day.Meals[0].EndTime)
		require.NotNil(t, day.Meals[0].PriceLevel)
		assert.Equal(t, 2, *day.Meals[0].PriceLevel)
	})

	t.Run("activity length comes from the catalog", func(t *testing.T) {
		p := proposal(t, `{"days": [{"blocks": [
			{"activity_id": "coit-tower", "start_time": "10:00", "duration_hours": 4}
		]}]}`)

		m := Materialize(p, catalog, "09:00", 1)

		require.Len(t, m.Days, 1)
		require.Len(t, m.Days[0].Stops, 1)
		assert.Equal(t, "10:00", m.Days[0].Stops[0].StartTime)
		assert.Equal(t, "11:30", m.Days[0].Stops[0].EndTime)
		assert.Equal(t, 1.5, m.Days[0].Stops[0].DurationHours)
	})

	t.Run("repairs blocks that end before they start", func(t *testing.T) {
		p := proposal(t, `{"days": [{"blocks": [
			{"activity_id": "coit-tower", "start_time": "11:00", "end_time": "10:00"},
			{"type": "meal", "activity_id": "zuni-cafe", "start_time": "13:00", "end_time": "13:00"},
			{"type": "flex", "start_time": "15:00", "end_time": "14:00"}
		]}]}`)

		m := Materialize(p, catalog, "09:00", 1)

		require.Len(t, m.Days, 1)
		day := m.Days[0]
		require.Len(t, day.Stops, 2)
		assert.Equal(t, "12:30", day.Stops[0].EndTime)
		assert.Equal(t, "Flex time", day.Stops[1].Name)
		assert.Equal(t, "16:00", day.Stops[1].EndTime)
		assert.Equal(t, "14:00", day.Meals[0].EndTime)
		assertWellFormed(t, m.Days)
	})

	t.Run("caps blocks at midnight and drops ones that cannot fit", func(t *testing.T) {
		p := proposal(t, `{"days": [{"blocks": [
			{"activity_id": "golden-gate-park", "start_time": "23:00"},
			{"type": "flex", "name": "Late walk"}
		]}]}`)

		m := Materialize(p, catalog, "09:00", 1)

		require.Len(t, m.Days, 1)
		require.Len(t, m.Days[0].Stops, 1)
		assert.Equal(t, "24:00", m.Days[0].Stops[0].EndTime)
		require.Len(t, m.Warnings, 1)
		assert.Contains(t, m.Warnings[0], "Late walk")
		assertWellFormed(t, m.Days)
	})

	t.Run("resequences days by proposed number", func(t *testing.T) {
		p := proposal(t, `{"days": [
			{"day": 7, "theme": "last", "blocks": [{"activity_id": "coit-tower"}]},
			{"day": 2, "theme": "first", "blocks": [{"activity_id": "de-young-museum"}]},
			{"day": 5, "theme": "middle", "blocks": []}
		]}`)

		m := Materialize(p, catalog, "09:00", 3)

		require.Len(t, m.Days, 3)
		assert.Equal(t, "first", m.Days[0].Theme)
		assert.Equal(t, "middle", m.Days[1].Theme)
		assert.Equal(t, "last", m.Days[2].Theme)
		assert.Empty(t, m.Days[1].Stops, "days with no resolved blocks are kept")
		assertWellFormed(t, m.Days)
	})

	t.Run("uses the day start and the default", func(t *testing.T) {
		p := proposal(t, `{"days": [
			{"day_start": "8:30 AM", "blocks": [{"activity_id": "coit-tower"}]},
			{"blocks": [{"activity_id": "coit-tower"}]}
		]}`)

		m := Materialize(p, catalog, "10:00", 2)

		require.Len(t, m.Days, 2)
		assert.Equal(t, "08:30", m.Days[0].Stops[0].StartTime)
		assert.Equal(t, "10:00", m.Days[1].Stops[0].StartTime)
	})

	t.Run("drops unknown activities with a warning", func(t *testing.T) {
		p := proposal(t, `{"days": [{"day": 1, "blocks": [{"type": "activity", "activity_id": "nonexistent", "start_time": "09:00"}]}]}`)

		m := Materialize(p, catalog, "09:00", 1)

		assert.False(t, m.Usable())
		assert.Empty(t, m.Days)
		require.Len(t, m.Warnings, 2)
		assert.Contains(t, m.Warnings[0], "nonexistent")
		assert.Equal(t, warnNoUsableDays, m.Warnings[1])
	})

	t.Run("one usable day keeps the schedule", func(t *testing.T) {
		p := proposal(t, `{"days": [
			{"day": 1, "blocks": [{"activity_id": "nonexistent"}]},
			{"day": 2, "blocks": [{"activity_id": "coit-tower"}]}
		]}`)

		m := Materialize(p, catalog, "09:00", 2)

		require.True(t, m.Usable())
		require.Len(t, m.Days, 2)
		assert.Empty(t, m.Days[0].Stops)
		assert.Len(t, m.Days[1].Stops, 1)
	})

	t.Run("warns when days are missing", func(t *testing.T) {
		for _, raw := range []string{`{}`, `{"days": "soon"}`, `{"days": null}`} {
			m := Materialize(proposal(t, raw), catalog, "09:00", 1)
			assert.False(t, m.Usable(), raw)
			assert.Equal(t, []string{warnMissingDays}, m.Warnings, raw)
		}
	})

	t.Run("skips malformed days and blocks", func(t *testing.T) {
		p := proposal(t, `{"days": [
			"day one",
			{"blocks": [17, {"activity_id": "coit-tower"}]}
		]}`)

		m := Materialize(p, catalog, "09:00", 2)

		require.Len(t, m.Days, 1)
		assert.Equal(t, 1, m.Days[0].Day)
		assert.Contains(t, m.Warnings, "Skipping day entry 1: not an object.")
		assert.Contains(t, m.Warnings, "Day 2: skipping block 1: not an object.")
		assert.Contains(t, m.Warnings, "Schedule covers 1 day(s) but 2 were requested.")
	})

	t.Run("collects unplaced references", func(t *testing.T) {
		p := proposal(t, `{"days": [{"blocks": [{"activity_id": "coit-tower"}]}],
			"unplaced": ["golden-gate-park", {"activity_id": "de-young-museum"}, {"name": "Somewhere"}, 3, {}]}`)

		m := Materialize(p, catalog, "09:00", 1)

		assert.Equal(t, []string{"golden-gate-park", "de-young-museum", "Somewhere", "3"}, m.Unplaced)
	})
}
