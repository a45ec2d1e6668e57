package itinerary

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPlanningContext(t *testing.T) {
	t.Run("empty input does not panic", func(t *testing.T) {
		var out string
		assert.NotPanics(t, func() { out = FormatPlanningContext(ContextInput{}) })
		assert.Contains(t, out, "=== USER PREFERENCES ===")
		assert.Contains(t, out, "Destination: N/A")
		assert.NotContains(t, out, "ITINERARY OUTLINE")
	})

	t.Run("renders itinerary, enrichment and research", func(t *testing.T) {
		req := tripRequest(t, "2")
		req.Research.Hotels = []Hotel{{Name: "Hotel Zephyr", Price: "189"}}
		req.Research.FuelPrices = &FuelPrices{Location: "San Francisco", Regular: "5.10"}
		req.Research.Distances = []Distance{{OriginName: "A", DestName: "B", DistanceM: FlexFloat{Value: 2500, Valid: true}, DurationS: FlexFloat{Value: 600, Valid: true}}}

		days := []DayPlan{
			{
				Day:   1,
				Stops: []Stop{{Name: "A", StreetViewURL: "https://img.example/a"}, {Name: "B"}},
				Meals: []Meal{{Name: "Zuni Cafe", StartTime: "12:30"}},
				Route: &RouteInfo{DistanceM: 5000, DurationS: 1200, Mode: "WALK"},
			},
			{Day: 2, Stops: []Stop{}},
		}
		meta := &PlanningMeta{Strategy: StrategyLLM, Warnings: []string{"Day 2: dropped activity block \"x\"."}}

		out := FormatPlanningContext(ContextInput{
			Preferences:         req.Preferences,
			Research:            req.Research,
			Days:                days,
			Meta:                meta,
			Budget:              &BudgetRange{Low: 800, High: 1200, Expected: 1000},
			SelectedAttractions: req.Attractions,
		})

		assert.Contains(t, out, "Destination: San Francisco")
		assert.Contains(t, out, "Day 1: A, B")
		assert.Contains(t, out, "Meal at 12:30: Zuni Cafe")
		assert.Contains(t, out, "5.0 km, 20 min (WALK)")
		assert.Contains(t, out, "Street View preview: A: https://img.example/a")
		assert.Contains(t, out, "Day 2: Flex time / explore")
		assert.Contains(t, out, "Budget range (USD): $800")
		assert.Contains(t, out, "=== USER-APPROVED ATTRACTIONS ===")
		assert.Contains(t, out, "Hotel Zephyr - $189 USD")
		assert.Contains(t, out, "Regular: $5.10/gallon")
		assert.NotContains(t, out, "CAR RENTAL DAILY RATES")
		assert.Contains(t, out, "A → B: 2.5 km, 10 min drive")
		assert.Contains(t, out, "=== PLANNING NOTES ===")
	})

	t.Run("car rental daily rates from the fuel record", func(t *testing.T) {
		var research Research
		require.NoError(t, json.Unmarshal([]byte(`{"fuel_prices": {
			"location": "Denver", "regular": 3.2,
			"economy_car_daily": 42, "compact_car_daily": "48.5", "suv_daily": 0
		}}`), &research))

		out := FormatPlanningContext(ContextInput{Research: research})

		assert.Contains(t, out, "=== CAR RENTAL DAILY RATES ===\nEconomy: $42/day\nCompact: $48.5/day")
		assert.NotContains(t, out, "Midsize")
		assert.NotContains(t, out, "SUV")
	})
}
