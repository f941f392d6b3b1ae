package publisher

import (
	"context"

	"gocloud.dev/pubsub"

	apperrors "github.com/allisson/studygroups/internal/errors"

	// Register the in-memory driver for mem:// topic URLs
	_ "gocloud.dev/pubsub/mempubsub"
)

// PubSubPublisher sends messages to a Go CDK topic opened from a URL such as
// mem://studygroups-events.
type PubSubPublisher struct {
	topic *pubsub.Topic
}

// NewPubSubPublisher opens the topic behind topicURL.
func NewPubSubPublisher(ctx context.Context, topicURL string) (*PubSubPublisher, error) {
	topic, err := pubsub.OpenTopic(ctx, topicURL)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to open pubsub topic")
	}
	return NewPubSubPublisherWithTopic(topic), nil
}

// NewPubSubPublisherWithTopic wraps an already opened topic.
func NewPubSubPublisherWithTopic(topic *pubsub.Topic) *PubSubPublisher {
	return &PubSubPublisher{topic: topic}
}

// Publish sends the payload with the event metadata.
func (p *PubSubPublisher) Publish(ctx context.Context, msg Message) error {
	if err := p.topic.Send(ctx, &pubsub.Message{Body: msg.Payload, Metadata: msg.headers()}); err != nil {
		return apperrors.Wrap(err, "failed to send pubsub message")
	}
	return nil
}

// Close flushes pending sends and shuts the topic down.
func (p *PubSubPublisher) Close() error {
	return p.topic.Shutdown(context.Background())
}
