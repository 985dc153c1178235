package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/rpupo63/blog-admin-backend/errs"
	"github.com/rpupo63/blog-admin-backend/models"
	"gorm.io/gorm"
)

type TagRepo struct {
	db *gorm.DB
}

func NewTagRepo(db *gorm.DB) *TagRepo {
	return &TagRepo{db}
}

// FindAll returns all tags ordered by name
func (r *TagRepo) FindAll(ctx context.Context) ([]*models.Tag, error) {
	var tags []*models.Tag
	if err := conn(ctx, r.db).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, errs.NewDatabaseError("find", "tags", err)
	}
	return tags, nil
}

// FindByIDs returns the tags whose id is in ids. Unknown ids are skipped.
func (r *TagRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Tag, error) {
	tags := make([]*models.Tag, 0, len(ids))
	if len(ids) == 0 {
		return tags, nil
	}
	if err := primary(ctx, r.db).Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, errs.NewDatabaseError("find", "tags", err)
	}
	return tags, nil
}

// Create inserts a new tag into the database
func (r *TagRepo) Create(ctx context.Context, tag *models.Tag) error {
	return RunInTransaction(ctx, r.db, func(ctx context.Context) error {
		if err := conn(ctx, r.db).Create(tag).Error; err != nil {
			return errs.NewDatabaseError("create", "tag", err)
		}
		return nil
	})
}
