package events

import (
	"context"
	"log/slog"
	"sync"
)

// MockEventPublisher records events in memory for tests
type MockEventPublisher struct {
	mu     sync.Mutex
	events []*Event
	topics []string
	logger *slog.Logger
}

func NewMockEventPublisher(logger *slog.Logger) *MockEventPublisher {
	return &MockEventPublisher{logger: logger}
}

func (m *MockEventPublisher) Publish(ctx context.Context, topic string, event *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = append(m.events, event)
	m.topics = append(m.topics, topic)

	m.logger.Debug("Mock publish",
		"event_type", event.Type,
		"topic", topic)

	return nil
}

// GetPublishedEvents returns a snapshot of everything published so far
func (m *MockEventPublisher) GetPublishedEvents() []*Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := make([]*Event, len(m.events))
	copy(snapshot, m.events)
	return snapshot
}

// GetPublishedTopics returns the topics in publish order
func (m *MockEventPublisher) GetPublishedTopics() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := make([]string, len(m.topics))
	copy(snapshot, m.topics)
	return snapshot
}

// ClearEvents drops everything recorded so far
func (m *MockEventPublisher) ClearEvents() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = nil
	m.topics = nil
}

func (m *MockEventPublisher) Close() error {
	return nil
}
