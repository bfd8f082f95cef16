package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// ChannelEventPublisher is the in-process relay used for discussion
// broadcasts. Subscribers attach per topic; every subscriber of a topic gets
// every message published to it.
type ChannelEventPublisher struct {
	pubSub *gochannel.GoChannel
	logger *slog.Logger
}

func NewChannelEventPublisher(logger *slog.Logger) *ChannelEventPublisher {
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer: 256,
		},
		watermill.NewSlogLogger(logger),
	)

	return &ChannelEventPublisher{
		pubSub: pubSub,
		logger: logger,
	}
}

func (p *ChannelEventPublisher) Publish(ctx context.Context, topic string, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("event_type", event.Type)

	if err := p.pubSub.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.Type, err)
	}

	return nil
}

// Subscribe attaches a listener to a topic. The returned channel closes when
// ctx is cancelled.
func (p *ChannelEventPublisher) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	messages, err := p.pubSub.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}
	return messages, nil
}

func (p *ChannelEventPublisher) Close() error {
	return p.pubSub.Close()
}
