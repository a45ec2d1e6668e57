package itinerary

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"ai-trip-planner/internal/maps"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRouter struct {
	mu    sync.Mutex
	calls [][]maps.LatLng
	err   error
}

func (f *fakeRouter) ComputeRoute(_ context.Context, points []maps.LatLng, mode string) (maps.Route, error) {
	f.mu.Lock()
	f.calls = append(f.calls, points)
	f.mu.Unlock()
	if f.err != nil {
		return maps.Route{}, f.err
	}
	return maps.Route{
		DistanceMeters:  1000 * len(points),
		DurationSeconds: 600 * len(points),
		Polyline:        "abc" + mode,
	}, nil
}

type fakeImagery struct {
	missing map[maps.LatLng]bool
	fail    bool
}

func (f *fakeImagery) ImageURL(_ context.Context, at maps.LatLng, radiusM int, source string) (string, error) {
	if f.fail {
		return "", errors.New("quota exceeded")
	}
	if f.missing[at] {
		return "", nil
	}
	return fmt.Sprintf("https://img.example/%v,%v?r=%d&s=%s", at.Lat, at.Lng, radiusM, source), nil
}

func stopAt(name string, lat, lng float64) Stop {
	return Stop{Type: BlockActivity, Name: name, Coord: &Coordinate{Lat: lat, Lng: lng}, StartTime: "09:00", EndTime: "10:00"}
}

func TestEnricher(t *testing.T) {
	ctx := context.Background()

	t.Run("routes days with two or more geocoded stops", func(t *testing.T) {
		days := []DayPlan{
			{Day: 1, Stops: []Stop{stopAt("A", 1, 1), {Name: "No coords"}, stopAt("B", 2, 2), stopAt("C", 3, 3)}},
			{Day: 2, Stops: []Stop{stopAt("D", 4, 4), {Name: "No coords"}}},
			{Day: 3, Stops: []Stop{}},
		}
		router := &fakeRouter{}

		NewEnricher(router, nil, 75, "outdoor", nil).Enrich(ctx, days, "WALK")

		require.NotNil(t, days[0].Route)
		assert.Equal(t, 3000, days[0].Route.DistanceM)
		assert.Equal(t, 1800, days[0].Route.DurationS)
		assert.Equal(t, "WALK", days[0].Route.Mode)
		assert.Nil(t, days[1].Route)
		assert.Empty(t, days[1].RouteError)
		assert.Nil(t, days[2].Route)

		require.Len(t, router.calls, 1)
		assert.Equal(t, []maps.LatLng{{Lat: 1, Lng: 1}, {Lat: 2, Lng: 2}, {Lat: 3, Lng: 3}}, router.calls[0], "stop order is preserved")
	})

	t.Run("route failures become a day-level error", func(t *testing.T) {
		days := []DayPlan{{Day: 1, Stops: []Stop{stopAt("A", 1, 1), stopAt("B", 2, 2)}}}

		NewEnricher(&fakeRouter{err: errors.New("routes api returned 403")}, nil, 75, "outdoor", nil).Enrich(ctx, days, "DRIVE")

		assert.Nil(t, days[0].Route)
		assert.Equal(t, "routes api returned 403", days[0].RouteError)
	})

	t.Run("attaches imagery only when available", func(t *testing.T) {
		days := []DayPlan{
			{Day: 1, Stops: []Stop{stopAt("A", 1, 1), stopAt("B", 2, 2), {Name: "Flex"}}},
			{Day: 2, Stops: []Stop{stopAt("C", 3, 3)}},
		}
		imagery := &fakeImagery{missing: map[maps.LatLng]bool{{Lat: 2, Lng: 2}: true}}

		NewEnricher(nil, imagery, 50, "outdoor", nil).Enrich(ctx, days, "DRIVE")

		assert.Equal(t, "https://img.example/1,1?r=50&s=outdoor", days[0].Stops[0].StreetViewURL)
		assert.Empty(t, days[0].Stops[1].StreetViewURL)
		assert.Empty(t, days[0].Stops[2].StreetViewURL)
		assert.NotEmpty(t, days[1].Stops[0].StreetViewURL)
		assert.Nil(t, days[0].Route, "routing disabled")
	})

	t.Run("imagery failures are silent", func(t *testing.T) {
		days := []DayPlan{{Day: 1, Stops: []Stop{stopAt("A", 1, 1), stopAt("B", 2, 2)}}}

		NewEnricher(&fakeRouter{}, &fakeImagery{fail: true}, 75, "outdoor", nil).Enrich(ctx, days, "DRIVE")

		assert.NotNil(t, days[0].Route)
		assert.Empty(t, days[0].Stops[0].StreetViewURL)
		assert.Empty(t, days[0].Stops[1].StreetViewURL)
	})

	t.Run("keeps day numbering and stop order", func(t *testing.T) {
		var days []DayPlan
		for d := 1; d <= 8; d++ {
			days = append(days, DayPlan{Day: d, Stops: []Stop{
				stopAt(fmt.Sprintf("%d-a", d), float64(d), 1),
				stopAt(fmt.Sprintf("%d-b", d), float64(d), 2),
			}})
		}

		NewEnricher(&fakeRouter{}, &fakeImagery{}, 75, "outdoor", nil).Enrich(ctx, days, "DRIVE")

		for i, d := range days {
			assert.Equal(t, i+1, d.Day)
			assert.Equal(t, fmt.Sprintf("%d-a", i+1), d.Stops[0].Name)
			assert.Equal(t, fmt.Sprintf("%d-b", i+1), d.Stops[1].Name)
			assert.NotNil(t, d.Route)
		}
	})

	t.Run("nil enricher and no collaborators are no-ops", func(t *testing.T) {
		days := []DayPlan{{Day: 1, Stops: []Stop{stopAt("A", 1, 1), stopAt("B", 2, 2)}}}

		var e *Enricher
		e.Enrich(ctx, days, "DRIVE")
		NewEnricher(nil, nil, 75, "outdoor", nil).Enrich(ctx, days, "DRIVE")

		assert.Nil(t, days[0].Route)
		assert.Empty(t, days[0].Stops[0].StreetViewURL)
	})

	t.Run("cancelled context leaves days valid", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		days := []DayPlan{{Day: 1, Stops: []Stop{stopAt("A", 1, 1), stopAt("B", 2, 2)}}}

		NewEnricher(&fakeRouter{err: context.Canceled}, &fakeImagery{}, 75, "outdoor", nil).Enrich(cctx, days, "DRIVE")

		assert.Empty(t, days[0].RouteError)
		assert.Empty(t, days[0].Stops[0].StreetViewURL)
		assert.Equal(t, 1, days[0].Day)
	})
}
