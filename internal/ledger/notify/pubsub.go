package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"
)

// PubSubSender publishes messages to a Google Pub/Sub topic consumed by the
// mailer.
type PubSubSender struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

// NewPubSubSender connects to projectID and binds topicID.
func NewPubSubSender(ctx context.Context, projectID, topicID string) (*PubSubSender, error) {
	if projectID == "" || topicID == "" {
		return nil, fmt.Errorf("pubsub sender: project and topic are required")
	}
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Pub/Sub client: %w", err)
	}
	return &PubSubSender{client: client, topic: client.Topic(topicID)}, nil
}

// Send publishes msg and waits for the server acknowledgement.
func (s *PubSubSender) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	result := s.topic.Publish(ctx, &pubsub.Message{
		Data:       payload,
		Attributes: map[string]string{"kind": string(msg.Kind)},
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("failed to publish %s notification: %w", msg.Kind, err)
	}
	return nil
}

// Close flushes pending publishes and releases the client.
func (s *PubSubSender) Close() error {
	s.topic.Stop()
	return s.client.Close()
}
