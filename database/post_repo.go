package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rpupo63/blog-admin-backend/errs"
	"github.com/rpupo63/blog-admin-backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostRepo struct {
	db *gorm.DB
}

func NewPostRepo(db *gorm.DB) *PostRepo {
	return &PostRepo{db}
}

func tagsByName(db *gorm.DB) *gorm.DB {
	return db.Order("name ASC")
}

// FindBySlug returns the post with the given slug and its tags, read from the primary
func (r *PostRepo) FindBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var post models.Post
	err := primary(ctx, r.db).Preload("Tags", tagsByName).Where("slug = ?", slug).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewNotFound("post")
	}
	if err != nil {
		return nil, errs.NewDatabaseError("find", "post", err)
	}
	return &post, nil
}

// FindAll returns every post with its tags, newest first. It may be served by a replica.
func (r *PostRepo) FindAll(ctx context.Context) ([]*models.Post, error) {
	var posts []*models.Post
	err := conn(ctx, r.db).Preload("Tags", tagsByName).Order("created_at DESC").Find(&posts).Error
	if err != nil {
		return nil, errs.NewDatabaseError("find", "posts", err)
	}
	return posts, nil
}

// SlugExists reports whether any post already uses slug
func (r *PostRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := primary(ctx, r.db).Model(&models.Post{}).Where("slug = ?", slug).Count(&count).Error
	if err != nil {
		return false, errs.NewDatabaseError("check slug of", "post", err)
	}
	return count > 0, nil
}

// Insert stores a new post. Associations on post are ignored; use AttachTags.
func (r *PostRepo) Insert(ctx context.Context, post *models.Post) error {
	return RunInTransaction(ctx, r.db, func(ctx context.Context) error {
		if err := conn(ctx, r.db).Omit(clause.Associations).Create(post).Error; err != nil {
			return errs.NewDatabaseError("create", "post", err)
		}
		return nil
	})
}

// Update writes changes to the post row and mirrors them onto post
func (r *PostRepo) Update(ctx context.Context, post *models.Post, changes models.PostChanges) error {
	return RunInTransaction(ctx, r.db, func(ctx context.Context) error {
		result := conn(ctx, r.db).Model(&models.Post{}).Where("id = ?", post.ID).Updates(map[string]any{
			"title":     changes.Title,
			"content":   changes.Content,
			"slug":      changes.Slug,
			"cover_img": changes.CoverImg,
		})
		if result.Error != nil {
			return errs.NewDatabaseError("update", "post", result.Error)
		}
		if result.RowsAffected == 0 {
			return errs.NewNotFound("post")
		}

		post.Title = changes.Title
		post.Content = changes.Content
		post.Slug = changes.Slug
		post.CoverImg = changes.CoverImg
		return nil
	})
}

// Delete removes the post row. Tag associations must be detached first.
func (r *PostRepo) Delete(ctx context.Context, post *models.Post) error {
	return RunInTransaction(ctx, r.db, func(ctx context.Context) error {
		result := conn(ctx, r.db).Where("id = ?", post.ID).Delete(&models.Post{})
		if result.Error != nil {
			return errs.NewDatabaseError("delete", "post", result.Error)
		}
		if result.RowsAffected == 0 {
			return errs.NewNotFound("post")
		}
		return nil
	})
}

// AttachTags adds associations to tagIDs, keeping existing ones
func (r *PostRepo) AttachTags(ctx context.Context, post *models.Post, tagIDs []uuid.UUID) error {
	tagIDs = uniqueIDs(tagIDs)
	if len(tagIDs) == 0 {
		return nil
	}

	return RunInTransaction(ctx, r.db, func(ctx context.Context) error {
		rows := make([]models.PostTag, 0, len(tagIDs))
		for _, tagID := range tagIDs {
			rows = append(rows, models.PostTag{PostID: post.ID, TagID: tagID})
		}

		err := conn(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
		if err != nil {
			return errs.NewDatabaseError("attach tags to", "post", err)
		}
		return nil
	})
}

// SyncTags makes tagIDs the exact association set of post. An empty list clears it.
func (r *PostRepo) SyncTags(ctx context.Context, post *models.Post, tagIDs []uuid.UUID) error {
	tagIDs = uniqueIDs(tagIDs)
	if len(tagIDs) == 0 {
		return r.DetachTags(ctx, post)
	}

	return RunInTransaction(ctx, r.db, func(ctx context.Context) error {
		err := conn(ctx, r.db).
			Where("post_id = ? AND tag_id NOT IN ?", post.ID, tagIDs).
			Delete(&models.PostTag{}).Error
		if err != nil {
			return errs.NewDatabaseError("sync tags of", "post", err)
		}
		return r.AttachTags(ctx, post, tagIDs)
	})
}

// DetachTags removes every tag association of post
func (r *PostRepo) DetachTags(ctx context.Context, post *models.Post) error {
	return RunInTransaction(ctx, r.db, func(ctx context.Context) error {
		err := conn(ctx, r.db).Where("post_id = ?", post.ID).Delete(&models.PostTag{}).Error
		if err != nil {
			return errs.NewDatabaseError("detach tags from", "post", err)
		}
		return nil
	})
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
