package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	streetViewImageEndpoint    = "https://maps.googleapis.com/maps/api/streetview"
	streetViewMetadataEndpoint = "https://maps.googleapis.com/maps/api/streetview/metadata"
)

// StreetViewClient checks Street View coverage and builds static image URLs.
type StreetViewClient struct {
	APIKey           string
	MetadataEndpoint string
	ImageEndpoint    string
	HTTPClient       *http.Client
}

func NewStreetViewClient(apiKey string) *StreetViewClient {
	return &StreetViewClient{
		APIKey:           apiKey,
		MetadataEndpoint: streetViewMetadataEndpoint,
		ImageEndpoint:    streetViewImageEndpoint,
		HTTPClient:       &http.Client{Timeout: 10 * time.Second},
	}
}

// ImageURL returns a static image URL when the metadata endpoint reports a
// panorama within radiusM of at, and "" otherwise.
func (c *StreetViewClient) ImageURL(ctx context.Context, at LatLng, radiusM int, source string) (string, error) {
	if c.APIKey == "" {
		return "", fmt.Errorf("GOOGLE_MAPS_API_KEY is not set")
	}

	q := url.Values{}
	q.Set("key", c.APIKey)
	q.Set("location", formatLocation(at))
	if radiusM > 0 {
		q.Set("radius", strconv.Itoa(radiusM))
	}
	if source != "" {
		q.Set("source", source)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.MetadataEndpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call street view metadata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 400))
		return "", fmt.Errorf("street view metadata error: status=%d body=%s", resp.StatusCode, string(snippet))
	}

	var meta struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return "", fmt.Errorf("failed to decode street view metadata: %w", err)
	}
	if !strings.EqualFold(meta.Status, "OK") {
		return "", nil
	}
	return c.staticImageURL(at), nil
}

func (c *StreetViewClient) staticImageURL(at LatLng) string {
	q := url.Values{}
	q.Set("key", c.APIKey)
	q.Set("location", formatLocation(at))
	q.Set("size", "640x400")
	q.Set("pitch", "0")
	q.Set("fov", "90")
	return c.ImageEndpoint + "?" + q.Encode()
}

func formatLocation(p LatLng) string {
	return strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lng, 'f', -1, 64)
}
