//go:build integration

package producer_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"authgate/internal/platform/kafka/producer"
	audit "authgate/pkg/platform/audit"
	"authgate/pkg/testutil/containers"
)

func TestProducer_WritesSecurityEvents(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := containers.NewRedpandaContainer(t)
	const topic = "authgate.security.test"
	broker.CreateTopic(t, topic)

	p, err := producer.New([]string{broker.Broker}, topic)
	require.NoError(t, err)
	defer p.Close()
	require.NoError(t, p.Ping(ctx))

	event := audit.SecurityEvent{
		Timestamp: time.Now().UTC().Truncate(time.Millisecond),
		Subject:   "user-1",
		Action:    string(audit.EventRefreshReuseDetected),
		Severity:  audit.SeverityCritical,
	}
	require.NoError(t, p.Write(ctx, []audit.SecurityEvent{event}))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker.Broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.Empty(t, fetches.Errors())
	records := fetches.Records()
	require.Len(t, records, 1)

	assert.Equal(t, "user-1", string(records[0].Key))
	var got audit.SecurityEvent
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	assert.Equal(t, event.Action, got.Action)
	assert.Equal(t, audit.SeverityCritical, got.Severity)
}
