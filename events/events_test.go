package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

func TestEncode(t *testing.T) {
	id := uuid.New()
	e := NewPostEvent(TypePostUpdated, PostPayload{
		PostID:       id,
		Slug:         "new-slug",
		PreviousSlug: "old-slug",
		Title:        "New title",
		UserID:       "user-1",
	})

	msg, err := Encode(e)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if msg.ContentType != "application/json" || msg.DeliveryMode != amqp.Persistent {
		t.Errorf("unexpected publishing headers: %+v", msg)
	}
	if msg.Type != TypePostUpdated {
		t.Errorf("Type = %q", msg.Type)
	}

	var body map[string]any
	if err := json.Unmarshal(msg.Body, &body); err != nil {
		t.Fatalf("body is not json: %v", err)
	}
	if body["type"] != TypePostUpdated {
		t.Errorf("type = %v", body["type"])
	}
	payload, ok := body["payload"].(map[string]any)
	if !ok {
		t.Fatalf("payload missing: %v", body)
	}
	if payload["post_id"] != id.String() || payload["previous_slug"] != "old-slug" {
		t.Errorf("payload = %v", payload)
	}
}

func TestEncode_OmitsEmptyPreviousSlug(t *testing.T) {
	msg, err := Encode(NewPostEvent(TypePostCreated, PostPayload{PostID: uuid.New(), Slug: "s"}))
	if err != nil {
		t.Fatal(err)
	}
	var body struct {
		Payload map[string]any `json:"payload"`
	}
	if err := json.Unmarshal(msg.Body, &body); err != nil {
		t.Fatal(err)
	}
	if _, ok := body.Payload["previous_slug"]; ok {
		t.Error("previous_slug should be omitted on create")
	}
}

func TestNewPostEvent_UsesUTC(t *testing.T) {
	e := NewPostEvent(TypePostDeleted, PostPayload{})
	if e.Timestamp.Location().String() != "UTC" {
		t.Errorf("timestamp location = %v", e.Timestamp.Location())
	}
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	if err := p.Publish(context.Background(), PostEvent{}); err != nil {
		t.Errorf("Publish = %v", err)
	}
}

func TestRabbitMQPublisher_ClosedPublisherRefuses(t *testing.T) {
	p := &RabbitMQPublisher{}
	if err := p.Close(); err != nil {
		t.Fatalf("Close on empty publisher: %v", err)
	}
	err := p.Publish(context.Background(), NewPostEvent(TypePostCreated, PostPayload{}))
	if !errors.Is(err, ErrPublisherClosed) {
		t.Errorf("err = %v, want ErrPublisherClosed", err)
	}
}
