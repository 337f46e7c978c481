package pubsub

import (
	"context"
	"os"
	"testing"
	"time"

	"vouchy/internal/config"

	ps "cloud.google.com/go/pubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func TestNewPublisherInvalidProject(t *testing.T) {
	cfg := &config.Config{GCPProjectID: ""}
	_, err := NewPublisher(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	id, err := p.Publish(context.Background(), "plan-events", []byte("{}"))
	assert.NoError(t, err)
	assert.Empty(t, id)
}

func TestTopicHandlesAreReused(t *testing.T) {
	ctx := context.Background()
	client, err := ps.NewClient(ctx, "test-project", option.WithoutAuthentication(), option.WithEndpoint("localhost:1"))
	require.NoError(t, err)
	pub := &PubSubPublisher{client: client, topics: make(map[string]*ps.Topic)}

	first := pub.topic("plan-events")
	assert.Same(t, first, pub.topic("plan-events"))
	assert.NotSame(t, first, pub.topic("other-events"))
	assert.Len(t, pub.topics, 2)

	require.NoError(t, pub.Close())
	assert.Empty(t, pub.topics)
}

func TestPublishWithEmulator(t *testing.T) {
	if os.Getenv("PUBSUB_EMULATOR_HOST") == "" {
		t.Skip("PUBSUB_EMULATOR_HOST is not set, skip emulator integration test")
	}

	ctx := context.Background()
	pub, err := NewPublisher(ctx, &config.Config{GCPProjectID: "test-project"})
	require.NoError(t, err)
	defer pub.Close()

	topic, err := pub.client.CreateTopic(ctx, "plan-events")
	require.NoError(t, err)
	sub, err := pub.client.CreateSubscription(ctx, "plan-events-sub", ps.SubscriptionConfig{Topic: topic})
	require.NoError(t, err)

	msgID, err := pub.Publish(ctx, "plan-events", []byte(`{"plan":"pro"}`))
	require.NoError(t, err)
	assert.NotEmpty(t, msgID)

	_, err = pub.Publish(ctx, "plan-events", []byte(`{"plan":"pro"}`))
	require.NoError(t, err)
	assert.Len(t, pub.topics, 1)
	assert.Same(t, pub.topic("plan-events"), pub.topic("plan-events"))

	recvCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	c := make(chan []byte, 1)
	go func() {
		_ = sub.Receive(recvCtx, func(ctx context.Context, m *ps.Message) {
			c <- m.Data
			m.Ack()
			cancel()
		})
	}()

	select {
	case data := <-c:
		assert.Equal(t, `{"plan":"pro"}`, string(data))
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for message from emulator subscription")
	}
}
