package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypePostCreated = "post.created"
	TypePostUpdated = "post.updated"
	TypePostDeleted = "post.deleted"
)

type PostPayload struct {
	PostID       uuid.UUID `json:"post_id"`
	Slug         string    `json:"slug"`
	PreviousSlug string    `json:"previous_slug,omitempty"`
	Title        string    `json:"title"`
	UserID       string    `json:"user_id"`
}

type PostEvent struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   PostPayload `json:"payload"`
}

func NewPostEvent(eventType string, payload PostPayload) PostEvent {
	return PostEvent{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}
