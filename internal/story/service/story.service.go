package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"telyourstory/internal/feed"
	"telyourstory/internal/story/model"
	"telyourstory/pkg/logger"

	"github.com/google/uuid"
)

var (
	ErrUnauthorized      = errors.New("unauthorized: sign in to publish")
	ErrForbidden         = errors.New("forbidden: only the author can edit this story")
	ErrNotFound          = errors.New("story not found")
	ErrPublishInProgress = errors.New("a publish is already in progress")
	ErrStore             = errors.New("store error")
)

// ValidationError reports a missing draft field before any I/O happens.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return e.Field + " is required"
}

// Tags are fixed per case; there is no tag editor.
var (
	createTags = []string{"New", "Story"}
	updateTags = []string{"Story", "Edited"}
)

// StoryStore is what the workflow needs from the stories collection.
type StoryStore interface {
	Insert(id string, p model.StoryPayload) error
	GetByID(id string) (model.Story, error)
	Update(id string, p model.StoryPayload) error
}

// BlobStore uploads a cover image and returns its stable retrieval URL.
type BlobStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// BrowseCache is told after every successful publish that its list is
// stale, so the next browse request sees the new story.
type BrowseCache interface {
	Invalidate()
}

type StoryService struct {
	Repo  StoryStore
	Blobs BlobStore
	Feed  *feed.Hub
	Cache BrowseCache

	// One in-flight publish per composer, keyed by user id.
	inflight sync.Map
}

func NewStoryService(repo StoryStore, blobs BlobStore, hub *feed.Hub) *StoryService {
	return &StoryService{Repo: repo, Blobs: blobs, Feed: hub}
}

// Publish turns a draft plus the current session into a persisted story.
// It performs at most one blob upload and one document write, in that order,
// and never writes the document when the upload failed. A failed attempt may
// orphan an uploaded blob; nothing cleans that up here.
func (s *StoryService) Publish(ctx context.Context, sess model.Session, draft model.Draft) (model.PublishResult, error) {
	// Double-submit guard: a second publish from the same composer while
	// one is in flight is rejected before any store call.
	if _, busy := s.inflight.LoadOrStore(sess.UserID, struct{}{}); busy {
		return model.PublishResult{}, ErrPublishInProgress
	}
	defer s.inflight.Delete(sess.UserID)

	if draft.Title == "" {
		return model.PublishResult{}, &ValidationError{Field: "title"}
	}
	if draft.Content == "" {
		return model.PublishResult{}, &ValidationError{Field: "content"}
	}
	if !sess.Authenticated() {
		return model.PublishResult{}, ErrUnauthorized
	}

	updating := draft.TargetID != ""
	if updating {
		existing, err := s.Repo.GetByID(draft.TargetID)
		if errors.Is(err, sql.ErrNoRows) {
			return model.PublishResult{}, ErrNotFound
		}
		if err != nil {
			return model.PublishResult{}, fmt.Errorf("%w: load update target: %v", ErrStore, err)
		}
		// Stories without an author id predate accounts; nobody owns them.
		if existing.AuthorID == "" || existing.AuthorID != sess.UserID {
			return model.PublishResult{}, ErrForbidden
		}
	}

	var image string
	switch {
	case draft.LocalImage != nil:
		// Key is scoped by user and made unique per upload so successive
		// covers never collide.
		key := fmt.Sprintf("covers/%s/%d-%s", sess.UserID, time.Now().UnixNano(), draft.LocalImage.Filename)
		url, err := s.Blobs.Upload(ctx, key, draft.LocalImage.Data, draft.LocalImage.ContentType)
		if err != nil {
			return model.PublishResult{}, fmt.Errorf("%w: upload cover: %v", ErrStore, err)
		}
		image = url
	case draft.ExistingImageURL != "":
		image = draft.ExistingImageURL
	}

	category := draft.Category
	if !category.IsValid() {
		category = model.CategoryLife
	}

	payload := model.StoryPayload{
		Title:    draft.Title,
		Content:  draft.Content,
		Excerpt:  model.Excerpt(draft.Content),
		Author:   sess.DisplayName(),
		AuthorID: sess.UserID,
		Category: category,
		Tags:     createTags,
		Image:    image,
	}

	storyID := draft.TargetID
	if updating {
		payload.Tags = updateTags
		if err := s.Repo.Update(draft.TargetID, payload); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return model.PublishResult{}, ErrNotFound
			}
			return model.PublishResult{}, fmt.Errorf("%w: update story: %v", ErrStore, err)
		}
	} else {
		storyID = uuid.NewString()
		if err := s.Repo.Insert(storyID, payload); err != nil {
			return model.PublishResult{}, fmt.Errorf("%w: insert story: %v", ErrStore, err)
		}
	}

	if s.Cache != nil {
		s.Cache.Invalidate()
	}

	result := model.PublishResult{StoryID: storyID, Created: !updating}
	s.announce(result, payload)
	return result, nil
}

// announce pushes the publish onto the live feed. Best effort: a full or
// absent hub never fails the publish.
func (s *StoryService) announce(result model.PublishResult, payload model.StoryPayload) {
	if s.Feed == nil {
		return
	}
	ev := feed.Event{
		Type:    feed.StoryPublishedType,
		StoryID: result.StoryID,
		Title:   payload.Title,
		Author:  payload.Author,
		Created: result.Created,
	}
	select {
	case s.Feed.Broadcast <- ev:
	default:
		logger.Sugar.Warnf("Feed hub busy, dropping publish event for story %s", result.StoryID)
	}
}
