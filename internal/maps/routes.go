package maps

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	routesEndpoint  = "https://routes.googleapis.com/directions/v2:computeRoutes"
	routesFieldMask = "routes.distanceMeters,routes.duration,routes.polyline.encodedPolyline,routes.legs"
)

// RoutesClient calls the Google Routes API v2.
type RoutesClient struct {
	APIKey     string
	Endpoint   string
	HTTPClient *http.Client
}

// NewRoutesClient creates a Routes API client.
func NewRoutesClient(apiKey string) *RoutesClient {
	return &RoutesClient{
		APIKey:     apiKey,
		Endpoint:   routesEndpoint,
		HTTPClient: &http.Client{Timeout: 20 * time.Second},
	}
}

type routeWaypoint struct {
	Location struct {
		LatLng struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"latLng"`
	} `json:"location"`
}

func waypoint(p LatLng) routeWaypoint {
	var w routeWaypoint
	w.Location.LatLng.Latitude = p.Lat
	w.Location.LatLng.Longitude = p.Lng
	return w
}

type computeRoutesRequest struct {
	Origin            routeWaypoint   `json:"origin"`
	Destination       routeWaypoint   `json:"destination"`
	Intermediates     []routeWaypoint `json:"intermediates,omitempty"`
	TravelMode        string          `json:"travelMode"`
	RoutingPreference string          `json:"routingPreference,omitempty"`
	PolylineQuality   string          `json:"polylineQuality"`
	PolylineEncoding  string          `json:"polylineEncoding"`
}

type computeRoutesResponse struct {
	Routes []struct {
		DistanceMeters int    `json:"distanceMeters"`
		Duration       string `json:"duration"`
		Polyline       struct {
			EncodedPolyline string `json:"encodedPolyline"`
		} `json:"polyline"`
		Legs []json.RawMessage `json:"legs"`
	} `json:"routes"`
}

// ComputeRoute requests one route through points without reordering them.
func (c *RoutesClient) ComputeRoute(ctx context.Context, points []LatLng, mode string) (Route, error) {
	if c.APIKey == "" {
		return Route{}, fmt.Errorf("GOOGLE_MAPS_API_KEY is not set")
	}
	if len(points) < 2 {
		return Route{}, fmt.Errorf("route needs at least 2 points, got %d", len(points))
	}

	travelMode := NormalizeTravelMode(mode)
	body := computeRoutesRequest{
		Origin:           waypoint(points[0]),
		Destination:      waypoint(points[len(points)-1]),
		TravelMode:       travelMode,
		PolylineQuality:  "OVERVIEW",
		PolylineEncoding: "ENCODED_POLYLINE",
	}
	for _, p := range points[1 : len(points)-1] {
		body.Intermediates = append(body.Intermediates, waypoint(p))
	}
	if travelMode == "DRIVE" || travelMode == "TWO_WHEELER" {
		body.RoutingPreference = "TRAFFIC_AWARE"
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return Route{}, fmt.Errorf("failed to marshal route request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return Route{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.APIKey)
	req.Header.Set("X-Goog-FieldMask", routesFieldMask)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return Route{}, fmt.Errorf("failed to call routes api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 800))
		return Route{}, fmt.Errorf("routes api error: status=%d body=%s", resp.StatusCode, string(snippet))
	}

	var decoded computeRoutesResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Route{}, fmt.Errorf("failed to decode routes response: %w", err)
	}
	if len(decoded.Routes) == 0 {
		return Route{}, fmt.Errorf("no route returned")
	}

	r := decoded.Routes[0]
	legs := r.Legs
	if legs == nil {
		legs = []json.RawMessage{}
	}
	return Route{
		DistanceMeters:  r.DistanceMeters,
		DurationSeconds: parseDurationSeconds(r.Duration),
		Polyline:        r.Polyline.EncodedPolyline,
		Legs:            legs,
	}, nil
}

// parseDurationSeconds reads protobuf durations such as "123s" or "3.5s".
func parseDurationSeconds(s string) int {
	s = strings.TrimSuffix(strings.TrimSpace(s), "s")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int(f)
}

// NormalizeTravelMode maps loose mode names onto Routes API enums.
func NormalizeTravelMode(mode string) string {
	switch strings.ToUpper(strings.TrimSpace(mode)) {
	case "WALK", "WALKING":
		return "WALK"
	case "BICYCLE", "BICYCLING", "BIKE":
		return "BICYCLE"
	case "TRANSIT":
		return "TRANSIT"
	case "TWO_WHEELER", "MOTORCYCLE", "SCOOTER":
		return "TWO_WHEELER"
	default:
		return "DRIVE"
	}
}
