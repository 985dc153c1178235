package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post is a blog post administered through the admin surface.
// Slug is unique across all posts and only changes when Title changes.
type Post struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Title     string    `json:"title" db:"title" gorm:"type:text;not null"`
	Content   string    `json:"content" db:"content" gorm:"type:text;not null"`
	Slug      string    `json:"slug" db:"slug" gorm:"type:text;not null;uniqueIndex:idx_posts_slug"`
	CoverImg  *string   `json:"coverImg,omitempty" db:"cover_img" gorm:"type:text"`
	UserID    string    `json:"userId" db:"user_id" gorm:"type:text;not null;index:idx_posts_user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at" gorm:"not null;index:idx_posts_created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at" gorm:"not null"`
	Tags      []Tag     `json:"tags" gorm:"many2many:post_tags"`
}

// BeforeCreate assigns the primary key so the same models work on stores
// without a uuid default.
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TagIDs returns the ids of the tags currently loaded on the post.
func (p *Post) TagIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(p.Tags))
	for _, tag := range p.Tags {
		ids = append(ids, tag.ID)
	}
	return ids
}

// PostChanges holds the mutable columns of a post for an update.
type PostChanges struct {
	Title    string
	Content  string
	Slug     string
	CoverImg *string
}
