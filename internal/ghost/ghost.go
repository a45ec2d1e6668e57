package ghost

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ai-trip-planner/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotConfigured is returned when no Ghost URL or admin key is set.
var ErrNotConfigured = errors.New("ghost publishing not configured")

// Post is a post as returned by the Ghost Admin API.
type Post struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Slug   string `json:"slug"`
	URL    string `json:"url"`
	Status string `json:"status"`
}

// PostInput describes an itinerary post to create.
type PostInput struct {
	Title   string
	HTML    string
	Excerpt string
	Tags    []string
	Publish bool
}

type postsEnvelope struct {
	Posts []Post `json:"posts"`
}

type tag struct {
	Name string `json:"name"`
}

type newPost struct {
	Title         string `json:"title"`
	HTML          string `json:"html"`
	Status        string `json:"status"`
	CustomExcerpt string `json:"custom_excerpt,omitempty"`
	Tags          []tag  `json:"tags,omitempty"`
}

// Client publishes itineraries to a Ghost blog.
type Client interface {
	CreatePost(ctx context.Context, in PostInput) (*Post, error)
}

type ghostClient struct {
	httpClient *http.Client
	baseURL    string
	adminKey   string
}

// NewClient creates a Ghost Admin API client from cfg.
func NewClient(cfg *config.Config) Client {
	return &ghostClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(cfg.GhostURL, "/"),
		adminKey:   cfg.GhostAdminKey,
	}
}

// CreatePost creates a draft, or a published post when in.Publish is set.
func (c *ghostClient) CreatePost(ctx context.Context, in PostInput) (*Post, error) {
	if c.baseURL == "" || c.adminKey == "" {
		return nil, ErrNotConfigured
	}

	token, err := c.createAdminToken(time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to create admin token: %w", err)
	}

	status := "draft"
	if in.Publish {
		status = "published"
	}
	post := newPost{
		Title:         in.Title,
		HTML:          in.HTML,
		Status:        status,
		CustomExcerpt: in.Excerpt,
	}
	for _, name := range in.Tags {
		if name = strings.TrimSpace(name); name != "" {
			post.Tags = append(post.Tags, tag{Name: name})
		}
	}

	body, err := json.Marshal(map[string][]newPost{"posts": {post}})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal post: %w", err)
	}

	url := fmt.Sprintf("%s/ghost/api/admin/posts/?source=html", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Ghost "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Version", "v5.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("admin api error: status %d, body: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var envelope postsEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(envelope.Posts) == 0 {
		return nil, fmt.Errorf("no post returned from api")
	}
	return &envelope.Posts[0], nil
}

// createAdminToken signs a short-lived JWT from an "id:secret" admin key.
func (c *ghostClient) createAdminToken(now time.Time) (string, error) {
	id, secretHex, ok := strings.Cut(c.adminKey, ":")
	if !ok || id == "" || secretHex == "" {
		return "", fmt.Errorf("invalid admin key format: expected id:secret")
	}

	secret, err := hex.DecodeString(secretHex)
	if err != nil {
		return "", fmt.Errorf("failed to decode secret hex: %w", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iat": now.Unix(),
		"exp": now.Add(5 * time.Minute).Unix(),
		"aud": "/admin/",
	})
	token.Header["kid"] = id

	return token.SignedString(secret)
}
