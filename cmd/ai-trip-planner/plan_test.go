package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTripRequest(t *testing.T) {
	body := `{"preferences":{"destination_city":"Kyoto","travel_days":"3"},"attractions":[{"name":"Fushimi Inari"}]}`

	t.Run("from stdin", func(t *testing.T) {
		req, err := readTripRequest("-", strings.NewReader(body))
		require.NoError(t, err)
		assert.Equal(t, "Kyoto", req.Preferences.DestinationCity.String())
		assert.Len(t, req.Attractions, 1)
	})

	t.Run("from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "trip.json")
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

		req, err := readTripRequest(path, nil)
		require.NoError(t, err)
		assert.Equal(t, 3, int(req.Preferences.TravelDays))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := readTripRequest(filepath.Join(t.TempDir(), "nope.json"), nil)
		assert.ErrorContains(t, err, "failed to open trip request")
	})

	t.Run("bad json", func(t *testing.T) {
		_, err := readTripRequest("-", strings.NewReader("{"))
		assert.ErrorContains(t, err, "failed to decode trip request")
	})
}

func TestCommandTree(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"plan", "history", "usage", "metrics-cleanup"} {
		assert.True(t, names[want], want)
	}

	f := planCmd.Flags().Lookup("input")
	require.NotNil(t, f)
	assert.Equal(t, "-", f.DefValue)
}
