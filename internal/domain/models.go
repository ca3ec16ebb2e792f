package domain

import (
	"fmt"
	"strings"
	"time"
)

// Source selects which extraction policy applies to a product page.
type Source string

const (
	SourceKickstarter Source = "kickstarter"
	SourceAmazon      Source = "amazon"
)

// ParseSource normalises operator input into a known Source.
func ParseSource(raw string) (Source, error) {
	switch s := Source(strings.ToLower(strings.TrimSpace(raw))); s {
	case SourceKickstarter, SourceAmazon:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %q (available: kickstarter, amazon)", ErrInvalidSource, raw)
	}
}

// DefaultTitle is the post title used when the page yielded none.
func (s Source) DefaultTitle() string {
	if s == SourceAmazon {
		return "Amazon Product"
	}
	return "Kickstarter Project"
}

// ProductSnapshot holds the metadata extracted from one product page.
// Title, Description and Image are nil when the page has no matching markup.
// An amazon Image is resolved against URL; og:image content is kept as given.
type ProductSnapshot struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Image       *string   `json:"image"`
	URL         string    `json:"url"`
	ScrapedAt   time.Time `json:"scraped_at"`
}

// Draft is a generated review awaiting operator edits and publication.
type Draft struct {
	ID          string           `json:"id"`
	Source      Source           `json:"source"`
	Snapshot    *ProductSnapshot `json:"snapshot"`
	Prompt      string           `json:"prompt"`
	Content     string           `json:"content"`
	AutoRefresh bool             `json:"auto_refresh"`
	Notices     []string         `json:"notices,omitempty"`
	PostID      int64            `json:"post_id,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// Title returns the snapshot title or the source default when absent.
func (d *Draft) Title() string {
	if d.Snapshot != nil && d.Snapshot.Title != nil && *d.Snapshot.Title != "" {
		return *d.Snapshot.Title
	}
	return d.Source.DefaultTitle()
}

// DraftRequest is the operator input for the extract and generate stages.
type DraftRequest struct {
	URL         string `json:"url"`
	Source      string `json:"source"`
	AutoRefresh bool   `json:"auto_refresh"`
}

// PublishOptions is the operator input for the publish stage.
type PublishOptions struct {
	Title       string `json:"title,omitempty"` // overrides the draft title
	Category    string `json:"category,omitempty"`
	Tags        string `json:"tags,omitempty"` // comma-separated
	SaveAsDraft bool   `json:"save_as_draft"`
}

// PublishResult is the remote answer to a create-post call.
type PublishResult struct {
	StatusCode int            `json:"status_code"`
	Body       map[string]any `json:"body,omitempty"`
	PostID     int64          `json:"post_id,omitempty"`
}

// Operator notices attached to drafts.
const (
	NoticeNoImage       = "No image found for this product."
	NoticeImageFailed   = "Image preview failed to load."
	NoticeAutoRefresh   = "Auto-refresh is enabled. (Backend scheduler setup required)"
	NoticePublishFailed = "Failed to publish. Check credentials or connection."
)
