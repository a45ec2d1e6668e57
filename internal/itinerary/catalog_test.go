package itinerary

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodePlaces(t *testing.T, raw string) []RawPlace {
	t.Helper()
	var places []RawPlace
	require.NoError(t, json.Unmarshal([]byte(raw), &places))
	return places
}

func TestNormalizeCatalog(t *testing.T) {
	t.Run("duplicate names get suffixed ids", func(t *testing.T) {
		attractions := decodePlaces(t, `[
			{"name": "Golden Gate Bridge", "category": "tourist_attraction"},
			{"name": "Golden Gate Bridge", "category": "viewpoint"},
			{"name": "golden gate bridge"}
		]`)

		c := NormalizeCatalog(attractions, nil, 8)

		require.Len(t, c.Activities, 3)
		assert.Equal(t, "golden-gate-bridge", c.Activities[0].ID)
		assert.Equal(t, "golden-gate-bridge-2", c.Activities[1].ID)
		assert.Equal(t, "golden-gate-bridge-3", c.Activities[2].ID)
	})

	t.Run("ids are unique across source ids and names", func(t *testing.T) {
		var attractions []RawPlace
		for i := 0; i < 20; i++ {
			attractions = append(attractions, RawPlace{
				ID:   FlexString(fmt.Sprintf("place %d", i%3)),
				Name: FlexString(fmt.Sprintf("Place %d", i%5)),
			})
		}
		c := NormalizeCatalog(attractions, nil, 8)

		seen := map[string]bool{}
		for _, a := range c.Activities {
			assert.False(t, seen[a.ID], "duplicate id %s", a.ID)
			seen[a.ID] = true
			_, ok := c.Activity(a.ID)
			assert.True(t, ok)
		}
		assert.Len(t, c.Activities, 20)
	})

	t.Run("source id wins over name", func(t *testing.T) {
		c := NormalizeCatalog(decodePlaces(t, `[{"id": "ChIJ 123", "name": "Coit Tower"}]`), nil, 8)
		require.Len(t, c.Activities, 1)
		assert.Equal(t, "chij-123", c.Activities[0].ID)
	})

	t.Run("drops nameless and malformed records", func(t *testing.T) {
		attractions := decodePlaces(t, `[
			{"name": "   "},
			"not an object",
			42,
			null,
			{"name": "Alcatraz Island", "rating": "4.7", "review_count": "12000", "coord": {"lat": "37.8270", "lng": -122.4230}}
		]`)

		c := NormalizeCatalog(attractions, nil, 8)

		require.Len(t, c.Activities, 1)
		a := c.Activities[0]
		assert.Equal(t, "alcatraz-island", a.ID)
		require.NotNil(t, a.Rating)
		assert.InDelta(t, 4.7, *a.Rating, 1e-9)
		assert.Equal(t, 12000, a.ReviewCount)
		require.NotNil(t, a.Coord)
		assert.Equal(t, "37.83_-122.42", a.AreaBucket)
		assert.Equal(t, "google", a.Source)
	})

	t.Run("meal options keep order and are capped", func(t *testing.T) {
		var dining []RawPlace
		for i := 0; i < 10; i++ {
			dining = append(dining, RawPlace{Name: FlexString(fmt.Sprintf("Diner %d", i))})
		}

		c := NormalizeCatalog(nil, dining, 8)

		require.Len(t, c.Meals, 8)
		for i, m := range c.Meals {
			assert.Equal(t, fmt.Sprintf("diner-%d", i), m.ID)
		}
		_, ok := c.MealByName("DINER 3")
		assert.True(t, ok)
		_, ok = c.Meal("diner-9")
		assert.False(t, ok)
	})

	t.Run("price levels accept enums and numbers", func(t *testing.T) {
		dining := decodePlaces(t, `[
			{"name": "A", "price_level": "PRICE_LEVEL_MODERATE"},
			{"name": "B", "price_level": 3},
			{"name": "C", "price_level": "9"}
		]`)

		c := NormalizeCatalog(nil, dining, 8)

		require.Len(t, c.Meals, 3)
		require.NotNil(t, c.Meals[0].PriceLevel)
		assert.Equal(t, 2, *c.Meals[0].PriceLevel)
		require.NotNil(t, c.Meals[1].PriceLevel)
		assert.Equal(t, 3, *c.Meals[1].PriceLevel)
		assert.Nil(t, c.Meals[2].PriceLevel)
	})

	t.Run("is deterministic", func(t *testing.T) {
		attractions := decodePlaces(t, `[
			{"name": "De Young Museum", "category": "museum", "hours": ["Monday: Closed", "Tuesday: 9:30 AM – 5:15 PM"]},
			{"name": "Twin Peaks", "category": "viewpoint", "coord": {"lat": 37.7544, "lng": -122.4477}},
			{"name": "Twin Peaks"}
		]`)
		dining := decodePlaces(t, `[{"name": "Zuni Café", "price_level": 3}, {"name": "Tartine"}]`)

		first, err := json.Marshal(NormalizeCatalog(attractions, dining, 8))
		require.NoError(t, err)
		second, err := json.Marshal(NormalizeCatalog(attractions, dining, 8))
		require.NoError(t, err)

		assert.Equal(t, string(first), string(second))
	})
}

func TestEstimateDuration(t *testing.T) {
	tests := map[string]float64{
		"theme_park":         3.5,
		"Zoo":                3.5,
		"aquarium":           3.5,
		"art_gallery":        2.5,
		"Museum":             2.5,
		"park":               2.0,
		"botanical garden":   2.0,
		"tourist_attraction": 1.5,
		"observation tower":  1.5,
		"shopping_mall":      1.5,
		"restaurant":         2.0,
		"":                   2.0,
	}
	for category, want := range tests {
		t.Run(category, func(t *testing.T) {
			assert.Equal(t, want, EstimateDuration(category))
		})
	}
}

func TestDeriveIdealWindow(t *testing.T) {
	hours := func(open, close string) map[string]OpeningHours {
		return map[string]OpeningHours{"monday": {Open: strPtr(open), Close: strPtr(close)}}
	}

	assert.Equal(t, WindowMorning, DeriveIdealWindow(hours("07:00", "15:00"), "museum"))
	assert.Equal(t, WindowEvening, DeriveIdealWindow(hours("10:00", "22:00"), "museum"))
	assert.Equal(t, WindowEvening, DeriveIdealWindow(hours("18:00", "02:00"), ""), "closing after midnight")
	assert.Equal(t, WindowAfternoon, DeriveIdealWindow(hours("09:00", "17:00"), "museum"))
	assert.Equal(t, WindowSunset, DeriveIdealWindow(hours("09:00", "17:00"), "observatory"))
	assert.Equal(t, WindowSunset, DeriveIdealWindow(nil, "Viewpoint"))
	assert.Equal(t, WindowEvening, DeriveIdealWindow(nil, "night_club"))
	assert.Equal(t, WindowAfternoon, DeriveIdealWindow(map[string]OpeningHours{"sunday": {}}, ""))
}

func TestAreaBucket(t *testing.T) {
	assert.Equal(t, "", AreaBucket(nil))
	assert.Equal(t, "37.82_-122.48", AreaBucket(&Coordinate{Lat: 37.8199, Lng: -122.4783}))
	assert.Equal(t, "0_0", AreaBucket(&Coordinate{Lat: 0.001, Lng: -0.001}))
	assert.Equal(t, "40.7_-74", AreaBucket(&Coordinate{Lat: 40.7, Lng: -74.0}))
}

func TestParseOpeningHours(t *testing.T) {
	got := ParseOpeningHours([]string{
		"Monday: 9:00 AM – 5:00 PM",
		"Tuesday: Closed",
		"Wednesday: Open 24 hours",
		"Thursday: 9 – 11:30 PM",
		"Friday: 11:00 AM – 2:00 PM, 5:00 – 10:00 PM",
		"Saturday: whenever",
		"not a line",
	})

	require.Contains(t, got, "monday")
	assert.Equal(t, "09:00", *got["monday"].Open)
	assert.Equal(t, "17:00", *got["monday"].Close)

	require.Contains(t, got, "tuesday")
	assert.Nil(t, got["tuesday"].Open)
	assert.Nil(t, got["tuesday"].Close)

	assert.Equal(t, "00:00", *got["wednesday"].Open)
	assert.Equal(t, "24:00", *got["wednesday"].Close)

	assert.Equal(t, "21:00", *got["thursday"].Open)
	assert.Equal(t, "23:30", *got["thursday"].Close)

	assert.Equal(t, "11:00", *got["friday"].Open)
	assert.Equal(t, "22:00", *got["friday"].Close)

	assert.NotContains(t, got, "saturday")
	assert.Len(t, got, 5)
}
