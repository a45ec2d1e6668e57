package itinerary

import (
	"context"

	"ai-trip-planner/internal/logger"
	"ai-trip-planner/internal/maps"

	"golang.org/x/sync/errgroup"
)

// Enricher attaches routes and street-level imagery to finished days.
// Either collaborator may be nil, which disables that half.
type Enricher struct {
	router  maps.Router
	imagery maps.Imagery
	radiusM int
	source  string
	log     *logger.Logger
}

func NewEnricher(router maps.Router, imagery maps.Imagery, radiusM int, source string, log *logger.Logger) *Enricher {
	if log == nil {
		log = logger.Nop()
	}
	return &Enricher{
		router:  router,
		imagery: imagery,
		radiusM: radiusM,
		source:  source,
		log:     log.With("component", "Enricher"),
	}
}

// Enrich runs one task per day for routing and one per geocoded stop for
// imagery, then waits for all of them. Each task writes only its own day's
// Route/RouteError or its own stop's StreetViewURL. Failures never
// propagate; when ctx ends early the days are returned as far as enriched.
func (e *Enricher) Enrich(ctx context.Context, days []DayPlan, mode string) {
	if e == nil || (e.router == nil && e.imagery == nil) {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range days {
		day := &days[i]
		g.Go(func() error {
			e.enrichDay(gctx, day, mode)
			return nil
		})
	}
	_ = g.Wait()
}

func (e *Enricher) enrichDay(ctx context.Context, day *DayPlan, mode string) {
	g, gctx := errgroup.WithContext(ctx)

	if e.router != nil {
		if points := geocodedPoints(day.Stops); len(points) >= 2 {
			g.Go(func() error {
				route, err := e.router.ComputeRoute(gctx, points, mode)
				if err != nil {
					if gctx.Err() != nil {
						return nil
					}
					e.log.Warn("route enrichment failed", "day", day.Day, "error", err)
					day.RouteError = err.Error()
					return nil
				}
				day.Route = &RouteInfo{
					DistanceM: route.DistanceMeters,
					DurationS: route.DurationSeconds,
					Polyline:  route.Polyline,
					Legs:      route.Legs,
					Mode:      mode,
				}
				return nil
			})
		}
	}

	if e.imagery != nil {
		for j := range day.Stops {
			stop := &day.Stops[j]
			if stop.Coord == nil {
				continue
			}
			at := maps.LatLng{Lat: stop.Coord.Lat, Lng: stop.Coord.Lng}
			g.Go(func() error {
				imageURL, err := e.imagery.ImageURL(gctx, at, e.radiusM, e.source)
				if err != nil {
					e.log.Debug("imagery lookup failed", "day", day.Day, "stop", stop.Name, "error", err)
					return nil
				}
				if imageURL != "" && gctx.Err() == nil {
					stop.StreetViewURL = imageURL
				}
				return nil
			})
		}
	}

	_ = g.Wait()
}

// geocodedPoints keeps stop order and skips stops without coordinates.
func geocodedPoints(stops []Stop) []maps.LatLng {
	var points []maps.LatLng
	for _, s := range stops {
		if s.Coord == nil {
			continue
		}
		points = append(points, maps.LatLng{Lat: s.Coord.Lat, Lng: s.Coord.Lng})
	}
	return points
}
