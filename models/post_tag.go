package models

import (
	"time"

	"github.com/google/uuid"
)

// PostTag is the join row between a post and a tag. The composite primary key
// rules out duplicate pairs.
type PostTag struct {
	PostID    uuid.UUID `json:"postId" db:"post_id" gorm:"type:uuid;primaryKey"`
	TagID     uuid.UUID `json:"tagId" db:"tag_id" gorm:"type:uuid;primaryKey;index:idx_post_tags_tag_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

func (PostTag) TableName() string {
	return "post_tags"
}
