package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gearinhere/internal/domain"
	"gearinhere/internal/monitoring"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	postsPath      = "/wp-json/wp/v2/posts"
	categoriesPath = "/wp-json/wp/v2/categories"
)

// Options configures the content API client.
type Options struct {
	SiteURL     string
	Username    string
	AppPassword string
	Timeout     time.Duration
}

// PostRequest is one create-post call.
type PostRequest struct {
	Title    string
	Content  string
	Category *int64
	Tags     []string
	Draft    bool
}

type postBody struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Status     string   `json:"status"`
	Categories []int64  `json:"categories,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// WordPress creates posts through the WordPress REST API using an application password.
type WordPress struct {
	client  *resty.Client
	metrics *monitoring.Metrics
	logger  *zap.Logger
}

func NewWordPress(opts Options, m *monitoring.Metrics, l *zap.Logger) *WordPress {
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(opts.SiteURL, "/"))
	client.SetBasicAuth(opts.Username, opts.AppPassword)
	client.SetHeader("Accept", "application/json")
	client.SetTimeout(opts.Timeout)

	return &WordPress{client: client, metrics: m, logger: l}
}

// newBody builds the JSON body for req. Categories and tags are left out
// when there is nothing to send.
func newBody(req PostRequest) postBody {
	body := postBody{
		Title:   req.Title,
		Content: req.Content,
		Status:  "publish",
		Tags:    CleanTags(req.Tags),
	}
	if req.Draft {
		body.Status = "draft"
	}
	if req.Category != nil {
		body.Categories = []int64{*req.Category}
	}
	return body
}

// Publish creates one post. The remote status and parsed body are returned as-is;
// only transport failures are errors, the caller judges the status code.
func (wp *WordPress) Publish(ctx context.Context, req PostRequest) (*domain.PublishResult, error) {
	start := time.Now()
	defer wp.metrics.ObserveStage("publish", start)

	res, err := wp.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(newBody(req)).
		Post(postsPath)
	if err != nil {
		wp.metrics.IncPublish("error")
		wp.logger.Error("create post request failed", zap.String("title", req.Title), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrPublish, err)
	}

	result := &domain.PublishResult{StatusCode: res.StatusCode()}
	if err := json.Unmarshal(res.Body(), &result.Body); err != nil {
		wp.logger.Debug("content api answered with a non-json body", zap.Int("status_code", res.StatusCode()))
	}
	if id, ok := result.Body["id"].(float64); ok {
		result.PostID = int64(id)
	}

	if result.StatusCode == http.StatusCreated {
		wp.metrics.IncPublish("created")
		wp.logger.Info("created post",
			zap.Int64("post_id", result.PostID), zap.String("title", req.Title), zap.Bool("draft", req.Draft))
	} else {
		wp.metrics.IncPublish("rejected")
		wp.logger.Warn("content api rejected post",
			zap.Int("status_code", result.StatusCode), zap.String("title", req.Title), zap.ByteString("body", res.Body()))
	}
	return result, nil
}

// ResolveCategory turns operator input into a category ID. Numeric input is
// used directly, anything else is looked up as a slug. Empty input means no category.
func (wp *WordPress) ResolveCategory(ctx context.Context, value string) (*int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if id, err := strconv.ParseInt(value, 10, 64); err == nil {
		return &id, nil
	}

	var found []struct {
		ID int64 `json:"id"`
	}
	res, err := wp.client.R().
		SetContext(ctx).
		SetQueryParam("slug", value).
		Get(categoriesPath)
	if err != nil {
		return nil, fmt.Errorf("lookup category %q: %w", value, err)
	}
	if res.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("lookup category %q: status %d", value, res.StatusCode())
	}
	if err := json.Unmarshal(res.Body(), &found); err != nil {
		return nil, fmt.Errorf("lookup category %q: %w", value, err)
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("%w: %q", domain.ErrCategoryNotFound, value)
	}
	return &found[0].ID, nil
}

// CleanTags trims every tag and drops the empty ones.
func CleanTags(tags []string) []string {
	var out []string
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// ParseTags splits comma-separated operator input into clean tags.
func ParseTags(raw string) []string {
	return CleanTags(strings.Split(raw, ","))
}
