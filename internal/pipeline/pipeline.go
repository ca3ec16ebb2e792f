package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"gearinhere/internal/domain"
	"gearinhere/internal/prompt"
	"gearinhere/internal/publisher"
	"gearinhere/internal/storage"
	"gearinhere/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SnapshotExtractor fetches and parses one product page.
type SnapshotExtractor interface {
	Extract(ctx context.Context, rawURL string, source domain.Source) (*domain.ProductSnapshot, error)
}

// ImageChecker verifies that a preview image loads.
type ImageChecker interface {
	Probe(ctx context.Context, imageURL string) error
}

// ReviewGenerator drafts review text from a prompt.
type ReviewGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// PostPublisher creates posts on the content API.
type PostPublisher interface {
	Publish(ctx context.Context, req publisher.PostRequest) (*domain.PublishResult, error)
	ResolveCategory(ctx context.Context, value string) (*int64, error)
}

// Pipeline runs scrape, compose, generate and publish in order. Each call is
// independent; drafts are the only state and they live in the store.
type Pipeline struct {
	extractor SnapshotExtractor
	images    ImageChecker
	generator ReviewGenerator
	publisher PostPublisher
	drafts    storage.DraftStore
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

func New(ex SnapshotExtractor, img ImageChecker, gen ReviewGenerator, pub PostPublisher, drafts storage.DraftStore, l *zap.Logger) *Pipeline {
	return &Pipeline{
		extractor: ex,
		images:    img,
		generator: gen,
		publisher: pub,
		drafts:    drafts,
		logger:    l,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Prepare extracts the product, composes the prompt and generates the review.
// The resulting draft is stored so the operator can edit it before publishing.
func (p *Pipeline) Prepare(ctx context.Context, req domain.DraftRequest) (*domain.Draft, error) {
	if _, err := utils.ParseHTTPURL(req.URL); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidURL, err)
	}
	source, err := domain.ParseSource(req.Source)
	if err != nil {
		return nil, err
	}

	snapshot, err := p.extractor.Extract(ctx, req.URL, source)
	if err != nil {
		return nil, err
	}

	draft := &domain.Draft{
		ID:          p.newID(),
		Source:      source,
		Snapshot:    snapshot,
		AutoRefresh: req.AutoRefresh,
	}

	// Image problems only affect the preview.
	switch {
	case snapshot.Image == nil:
		draft.Notices = append(draft.Notices, domain.NoticeNoImage)
	case p.images != nil:
		if err := p.images.Probe(ctx, *snapshot.Image); err != nil {
			p.logger.Warn("image preview failed", zap.String("url", req.URL), zap.String("image", *snapshot.Image), zap.Error(err))
			draft.Notices = append(draft.Notices, domain.NoticeImageFailed)
		}
	}

	draft.Prompt = prompt.Compose(snapshot)
	draft.Content, err = p.generator.Generate(ctx, draft.Prompt)
	if err != nil {
		return nil, err
	}

	if draft.AutoRefresh {
		// Captured for the operator only, nothing schedules a refresh.
		p.logger.Info("auto-refresh requested but no scheduler is configured", zap.String("url", req.URL))
		draft.Notices = append(draft.Notices, domain.NoticeAutoRefresh)
	}

	draft.CreatedAt = p.now().UTC()
	draft.UpdatedAt = draft.CreatedAt
	if err := p.drafts.Save(ctx, draft); err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}

	p.logger.Info("draft ready",
		zap.String("draft_id", draft.ID), zap.String("url", req.URL), zap.String("source", string(source)))
	return draft, nil
}

// Draft returns a stored draft.
func (p *Pipeline) Draft(ctx context.Context, id string) (*domain.Draft, error) {
	return p.drafts.Get(ctx, id)
}

// Edit replaces the review text of a stored draft.
func (p *Pipeline) Edit(ctx context.Context, id, content string) (*domain.Draft, error) {
	draft, err := p.drafts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	draft.Content = content
	draft.UpdatedAt = p.now().UTC()
	if err := p.drafts.Save(ctx, draft); err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}
	return draft, nil
}

// Publish sends a stored draft to the content API. The draft text is left as
// it was whatever the outcome, so a failed publish can be edited and retried.
func (p *Pipeline) Publish(ctx context.Context, id string, opts domain.PublishOptions) (*domain.PublishResult, error) {
	draft, err := p.drafts.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	title := opts.Title
	if title == "" {
		title = draft.Title()
	}

	result, err := p.PublishContent(ctx, title, draft.Content, opts)
	if err != nil {
		return result, err
	}

	draft.PostID = result.PostID
	draft.UpdatedAt = p.now().UTC()
	if err := p.drafts.Save(ctx, draft); err != nil {
		// The post exists remotely; losing the id locally is not worth failing over.
		p.logger.Warn("failed to record post id on draft", zap.String("draft_id", id), zap.Error(err))
	}
	return result, nil
}

// PublishContent creates one post from title and content. Any answer other
// than 201 is returned together with a *domain.PublishError.
func (p *Pipeline) PublishContent(ctx context.Context, title, content string, opts domain.PublishOptions) (*domain.PublishResult, error) {
	category, err := p.publisher.ResolveCategory(ctx, opts.Category)
	if err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrPublish, err)
	}

	result, err := p.publisher.Publish(ctx, publisher.PostRequest{
		Title:    title,
		Content:  content,
		Category: category,
		Tags:     publisher.ParseTags(opts.Tags),
		Draft:    opts.SaveAsDraft,
	})
	if err != nil {
		return nil, err
	}
	if result.StatusCode != http.StatusCreated {
		p.logger.Warn("publish failed", zap.String("title", title), zap.Int("status_code", result.StatusCode))
		return result, &domain.PublishError{StatusCode: result.StatusCode}
	}
	return result, nil
}
