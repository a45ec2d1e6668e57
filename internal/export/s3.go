package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"time"

	"ai-trip-planner/internal/itinerary"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// putObjectAPI is the subset of the S3 client the exporter needs.
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// UploadResult describes one exported object.
type UploadResult struct {
	Key       string
	PublicURL string
	ETag      string
	Size      int64
}

// Document is the archived form of a planning run.
type Document struct {
	ExportedAt time.Time             `json:"exported_at"`
	UserID     string                `json:"user_id"`
	Title      string                `json:"title"`
	Request    itinerary.TripRequest `json:"request"`
	Result     itinerary.Result      `json:"result"`
}

// S3Exporter archives itineraries as JSON and HTML objects in a bucket.
type S3Exporter struct {
	client     putObjectAPI
	bucketName string
	region     string
	now        func() time.Time
}

// NewS3Exporter loads the default AWS credential chain. A non-empty region
// overrides the one found in the environment.
func NewS3Exporter(ctx context.Context, bucketName, region string) (*S3Exporter, error) {
	if bucketName == "" {
		return nil, fmt.Errorf("S3 bucket name not set")
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	if region != "" {
		cfg.Region = region
	}
	return newS3Exporter(s3.NewFromConfig(cfg), bucketName, cfg.Region), nil
}

func newS3Exporter(client putObjectAPI, bucketName, region string) *S3Exporter {
	return &S3Exporter{client: client, bucketName: bucketName, region: region, now: time.Now}
}

// Export uploads the run as <prefix>.json and its rendered <prefix>.html,
// returning the JSON object first.
func (e *S3Exporter) Export(ctx context.Context, userID string, req itinerary.TripRequest, result itinerary.Result) ([]UploadResult, error) {
	now := e.now().UTC()
	doc := Document{
		ExportedAt: now,
		UserID:     userID,
		Title:      itinerary.Title(req.Preferences, len(result.Days)),
		Request:    req,
		Result:     result,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal itinerary: %w", err)
	}
	body, err := itinerary.RenderHTML(result)
	if err != nil {
		return nil, err
	}

	prefix := ObjectPrefix(userID, result.Meta.RunID, now)
	jsonRes, err := e.upload(ctx, prefix+".json", "application/json", data)
	if err != nil {
		return nil, err
	}
	page := fmt.Sprintf("<!doctype html>\n<html><head><meta charset=\"utf-8\"><title>%s</title></head><body>\n%s</body></html>\n",
		html.EscapeString(doc.Title), body)
	htmlRes, err := e.upload(ctx, prefix+".html", "text/html; charset=utf-8", []byte(page))
	if err != nil {
		return nil, err
	}
	return []UploadResult{jsonRes, htmlRes}, nil
}

func (e *S3Exporter) upload(ctx context.Context, key, contentType string, data []byte) (UploadResult, error) {
	key = strings.TrimPrefix(key, "/")
	out, err := e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(e.bucketName),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=300"),
		Metadata: map[string]string{
			"uploaded-by": "ai-trip-planner",
		},
	})
	if err != nil {
		return UploadResult{}, fmt.Errorf("failed to upload %s to S3: %w", key, err)
	}

	res := UploadResult{
		Key:       key,
		PublicURL: fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", e.bucketName, e.region, key),
		Size:      int64(len(data)),
	}
	if out != nil && out.ETag != nil {
		res.ETag = strings.Trim(*out.ETag, `"`)
	}
	return res, nil
}

// ObjectPrefix is itineraries/<user>/<yyyy-mm-dd>/<run id>, with path
// separators stripped from the user id.
func ObjectPrefix(userID, runID string, at time.Time) string {
	user := strings.NewReplacer("/", "_", "\\", "_").Replace(strings.TrimSpace(userID))
	if user == "" {
		user = "anonymous"
	}
	if runID == "" {
		runID = at.UTC().Format("150405")
	}
	return fmt.Sprintf("itineraries/%s/%s/%s", user, at.UTC().Format("2006-01-02"), runID)
}
