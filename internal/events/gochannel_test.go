package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"
)

func TestChannelEventPublisher_PublishSubscribe(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping pub/sub test in short mode")
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	publisher := NewChannelEventPublisher(logger)
	defer publisher.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	topic := DiscussionTopic(42)
	messages, err := publisher.Subscribe(ctx, topic)
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	evt := NewEvent(EventNewMessage, map[string]string{"content": "doors open at 6"})
	if err := publisher.Publish(ctx, topic, evt); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case msg := <-messages:
		if msg.Metadata.Get("event_type") != EventNewMessage {
			t.Errorf("expected event_type %s, got %s", EventNewMessage, msg.Metadata.Get("event_type"))
		}

		var received Event
		if err := json.Unmarshal(msg.Payload, &received); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		if received.ID != evt.ID || received.Type != EventNewMessage {
			t.Errorf("unexpected envelope: %+v", received)
		}
		msg.Ack()
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestChannelEventPublisher_SubscriberIsolation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping pub/sub test in short mode")
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	publisher := NewChannelEventPublisher(logger)
	defer publisher.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eventA, err := publisher.Subscribe(ctx, DiscussionTopic(1))
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	eventB, err := publisher.Subscribe(ctx, DiscussionTopic(2))
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	if err := publisher.Publish(ctx, DiscussionTopic(1), NewEvent(EventNewMessage, nil)); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case msg := <-eventA:
		msg.Ack()
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting on topic 1")
	}

	select {
	case <-eventB:
		t.Fatal("message leaked across topics")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestMockEventPublisher(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	mock := NewMockEventPublisher(logger)

	ctx := context.Background()
	if err := mock.Publish(ctx, DomainTopic, NewEvent(EventStatusChanged, nil)); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if err := mock.Publish(ctx, DiscussionTopic(7), NewEvent(EventNewMessage, nil)); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	published := mock.GetPublishedEvents()
	if len(published) != 2 {
		t.Fatalf("expected 2 events, got %d", len(published))
	}
	if published[0].Type != EventStatusChanged {
		t.Errorf("expected %s first, got %s", EventStatusChanged, published[0].Type)
	}

	topics := mock.GetPublishedTopics()
	if len(topics) != 2 || topics[1] != DiscussionTopic(7) {
		t.Errorf("unexpected topics: %v", topics)
	}

	mock.ClearEvents()
	if len(mock.GetPublishedEvents()) != 0 {
		t.Error("expected events cleared")
	}
}
