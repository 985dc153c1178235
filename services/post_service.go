package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rpupo63/blog-admin-backend/errs"
	"github.com/rpupo63/blog-admin-backend/events"
	"github.com/rpupo63/blog-admin-backend/models"
	"github.com/rpupo63/blog-admin-backend/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// CoverPrefix is the blob-store prefix cover images are stored under
const CoverPrefix = "uploads"

// PostStore persists posts and their tag associations
type PostStore interface {
	FindBySlug(ctx context.Context, slug string) (*models.Post, error)
	FindAll(ctx context.Context) ([]*models.Post, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Insert(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, post *models.Post, changes models.PostChanges) error
	Delete(ctx context.Context, post *models.Post) error
	AttachTags(ctx context.Context, post *models.Post, tagIDs []uuid.UUID) error
	SyncTags(ctx context.Context, post *models.Post, tagIDs []uuid.UUID) error
	DetachTags(ctx context.Context, post *models.Post) error
}

type TagStore interface {
	FindAll(ctx context.Context) ([]*models.Tag, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Tag, error)
}

// Transactor runs fn so that every store call made with the ctx it receives
// commits or rolls back together.
type Transactor interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// PostInput is the data submitted by the create and update forms.
// A nil TagIDs means the tags field was not sent.
type PostInput struct {
	Title      string
	Content    string
	TagIDs     []uuid.UUID
	CoverImage *storage.Upload
}

func (in PostInput) normalized() PostInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	return in
}

// CreateForm is the data the create form needs
type CreateForm struct {
	Tags []*models.Tag `json:"tags"`
}

// EditForm is the data the edit form needs
type EditForm struct {
	Post *models.Post  `json:"post"`
	Tags []*models.Tag `json:"tags"`
}

type PostService struct {
	posts     PostStore
	tags      TagStore
	blobs     storage.Storage
	tx        Transactor
	publisher events.Publisher
	logger    zerolog.Logger
}

func NewPostService(posts PostStore, tags TagStore, blobs storage.Storage, tx Transactor, publisher events.Publisher) *PostService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &PostService{
		posts:     posts,
		tags:      tags,
		blobs:     blobs,
		tx:        tx,
		publisher: publisher,
		logger:    log.With().Str("service", "posts").Logger(),
	}
}

// List returns every post, newest first
func (s *PostService) List(ctx context.Context) ([]*models.Post, error) {
	return s.posts.FindAll(ctx)
}

// Show returns the post with the given slug
func (s *PostService) Show(ctx context.Context, slug string) (*models.Post, error) {
	return s.posts.FindBySlug(ctx, slug)
}

func (s *PostService) CreateFormData(ctx context.Context) (*CreateForm, error) {
	tags, err := s.tags.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return &CreateForm{Tags: tags}, nil
}

func (s *PostService) EditFormData(ctx context.Context, slug string) (*EditForm, error) {
	post, err := s.posts.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	tags, err := s.tags.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return &EditForm{Post: post, Tags: tags}, nil
}

// Create stores a new post owned by userID and attaches the submitted tags.
// The cover image is ignored here; it can only be set through Update.
func (s *PostService) Create(ctx context.Context, userID string, in PostInput) (*models.Post, error) {
	if userID == "" {
		return nil, errs.NewUnauthorizedError("no current user")
	}
	in = in.normalized()
	if err := s.validateInput(ctx, in, false); err != nil {
		return nil, err
	}

	slug, err := GenerateSlug(ctx, in.Title, s.slugTaken)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:   in.Title,
		Content: in.Content,
		Slug:    slug,
		UserID:  userID,
	}

	err = s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.posts.Insert(ctx, post); err != nil {
			return err
		}
		if in.TagIDs != nil {
			return s.posts.AttachTags(ctx, post, in.TagIDs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	created, err := s.posts.FindBySlug(ctx, post.Slug)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("slug", created.Slug).Str("userID", userID).Msg("Post created")
	s.publish(ctx, events.TypePostCreated, created, "")
	return created, nil
}

/*
Update applies in to the post stored under slug.

Order of effects:
  - the old cover blob is deleted (failures are logged) and the new one stored
  - the slug is regenerated only when the title changed
  - the row update and the tag sync commit together

A nil or empty TagIDs clears every association. When the row update fails,
the freshly stored cover blob is removed again.
*/
func (s *PostService) Update(ctx context.Context, slug string, in PostInput) (*models.Post, error) {
	in = in.normalized()
	if err := s.validateInput(ctx, in, true); err != nil {
		return nil, err
	}

	post, err := s.posts.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	previousSlug := post.Slug

	changes := models.PostChanges{
		Title:    in.Title,
		Content:  in.Content,
		Slug:     post.Slug,
		CoverImg: post.CoverImg,
	}

	var newKey string
	if in.CoverImage != nil {
		if post.CoverImg != nil && *post.CoverImg != "" {
			if err := s.blobs.Delete(ctx, *post.CoverImg); err != nil {
				s.logger.Warn().Err(err).Str("key", *post.CoverImg).Str("slug", slug).Msg("Failed to delete previous cover image")
			}
		}

		key, err := s.blobs.Put(ctx, CoverPrefix, *in.CoverImage)
		if err != nil {
			return nil, errs.NewStorageError("store", CoverPrefix, err)
		}
		newKey = key
		changes.CoverImg = &newKey
	}

	if in.Title != post.Title {
		changes.Slug, err = GenerateSlug(ctx, in.Title, s.slugTaken)
		if err != nil {
			s.discardBlob(ctx, newKey)
			return nil, err
		}
	}

	err = s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.posts.Update(ctx, post, changes); err != nil {
			return err
		}
		return s.posts.SyncTags(ctx, post, in.TagIDs)
	})
	if err != nil {
		s.discardBlob(ctx, newKey)
		return nil, err
	}

	updated, err := s.posts.FindBySlug(ctx, changes.Slug)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("slug", updated.Slug).Str("previousSlug", previousSlug).Msg("Post updated")
	s.publish(ctx, events.TypePostUpdated, updated, previousSlug)
	return updated, nil
}

// Destroy detaches every tag from the post and deletes it. The cover blob is
// removed after the commit.
func (s *PostService) Destroy(ctx context.Context, slug string) error {
	post, err := s.posts.FindBySlug(ctx, slug)
	if err != nil {
		return err
	}

	err = s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.posts.DetachTags(ctx, post); err != nil {
			return err
		}
		return s.posts.Delete(ctx, post)
	})
	if err != nil {
		return err
	}

	if post.CoverImg != nil {
		s.discardBlob(ctx, *post.CoverImg)
	}

	s.logger.Info().Str("slug", slug).Msg("Post deleted")
	s.publish(ctx, events.TypePostDeleted, post, "")
	return nil
}

// reservedSlugs would be shadowed by static admin routes
var reservedSlugs = map[string]bool{"create": true}

func (s *PostService) slugTaken(ctx context.Context, slug string) (bool, error) {
	if reservedSlugs[slug] {
		return true, nil
	}
	return s.posts.SlugExists(ctx, slug)
}

// discardBlob deletes key, logging instead of failing
func (s *PostService) discardBlob(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.blobs.Delete(ctx, key); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Failed to delete blob")
	}
}

func (s *PostService) publish(ctx context.Context, eventType string, post *models.Post, previousSlug string) {
	e := events.NewPostEvent(eventType, events.PostPayload{
		PostID:       post.ID,
		Slug:         post.Slug,
		PreviousSlug: previousSlug,
		Title:        post.Title,
		UserID:       post.UserID,
	})
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Error().Err(err).Str("type", eventType).Str("slug", post.Slug).Msg("Failed to publish event")
	}
}
