package ghost

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ai-trip-planner/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestCreatePost(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		var (
			gotAuth string
			gotBody map[string][]map[string]any
		)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/ghost/api/admin/posts/", r.URL.Path)
			assert.Equal(t, "html", r.URL.Query().Get("source"))
			gotAuth = r.Header.Get("Authorization")
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"posts": [{"id": "p1", "title": "3 Days in Lisbon", "slug": "3-days-in-lisbon", "url": "https://blog.example/3-days-in-lisbon/", "status": "draft"}]}`))
		}))
		defer server.Close()

		client := NewClient(&config.Config{GhostURL: server.URL + "/", GhostAdminKey: "key-id:" + testSecret})

		post, err := client.CreatePost(ctx, PostInput{
			Title:   "3 Days in Lisbon",
			HTML:    "<h2>Day 1</h2>",
			Excerpt: "Castles and tascas",
			Tags:    []string{"Lisbon", " ", "itinerary"},
		})

		require.NoError(t, err)
		assert.Equal(t, "p1", post.ID)
		assert.Equal(t, "https://blog.example/3-days-in-lisbon/", post.URL)

		require.True(t, strings.HasPrefix(gotAuth, "Ghost "))
		token, err := jwt.Parse(strings.TrimPrefix(gotAuth, "Ghost "), func(tok *jwt.Token) (any, error) {
			assert.Equal(t, "key-id", tok.Header["kid"])
			return hex.DecodeString(testSecret)
		}, jwt.WithAudience("/admin/"))
		require.NoError(t, err)
		assert.True(t, token.Valid)

		require.Len(t, gotBody["posts"], 1)
		sent := gotBody["posts"][0]
		assert.Equal(t, "draft", sent["status"])
		assert.Equal(t, "Castles and tascas", sent["custom_excerpt"])
		assert.Len(t, sent["tags"], 2)
	})

	t.Run("Publish", func(t *testing.T) {
		var status string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body map[string][]map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			status, _ = body["posts"][0]["status"].(string)
			_, _ = w.Write([]byte(`{"posts": [{"id": "p2", "status": "published"}]}`))
		}))
		defer server.Close()

		client := NewClient(&config.Config{GhostURL: server.URL, GhostAdminKey: "id:" + testSecret})
		_, err := client.CreatePost(ctx, PostInput{Title: "t", HTML: "h", Publish: true})

		require.NoError(t, err)
		assert.Equal(t, "published", status)
	})

	t.Run("ServerError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"errors": [{"message": "Invalid token"}]}`))
		}))
		defer server.Close()

		client := NewClient(&config.Config{GhostURL: server.URL, GhostAdminKey: "id:" + testSecret})
		_, err := client.CreatePost(ctx, PostInput{Title: "t"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 401")
		assert.Contains(t, err.Error(), "Invalid token")
	})

	t.Run("EmptyResponse", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"posts": []}`))
		}))
		defer server.Close()

		client := NewClient(&config.Config{GhostURL: server.URL, GhostAdminKey: "id:" + testSecret})
		_, err := client.CreatePost(ctx, PostInput{Title: "t"})

		assert.EqualError(t, err, "no post returned from api")
	})

	t.Run("NotConfigured", func(t *testing.T) {
		_, err := NewClient(&config.Config{}).CreatePost(ctx, PostInput{Title: "t"})
		assert.ErrorIs(t, err, ErrNotConfigured)
	})
}

func TestCreateAdminToken(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	t.Run("rejects malformed keys", func(t *testing.T) {
		for _, key := range []string{"no-colon", ":" + testSecret, "id:", "id:not-hex"} {
			c := &ghostClient{adminKey: key}
			_, err := c.createAdminToken(now)
			assert.Error(t, err, key)
		}
	})

	t.Run("sets kid and a five minute expiry", func(t *testing.T) {
		c := &ghostClient{adminKey: "abc:" + testSecret}
		signed, err := c.createAdminToken(now)
		require.NoError(t, err)

		claims := jwt.MapClaims{}
		_, _, err = jwt.NewParser().ParseUnverified(signed, claims)
		require.NoError(t, err)
		assert.Equal(t, float64(now.Unix()), claims["iat"])
		assert.Equal(t, float64(now.Add(5*time.Minute).Unix()), claims["exp"])
		assert.Equal(t, "/admin/", claims["aud"])
	})
}
