//go:build integration

package events_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"beam/internal/events"
	"beam/internal/platform/config"
	"beam/pkg/domain"
	"beam/pkg/testutil/containers"
)

func TestKafkaPublisherRoundTrip(t *testing.T) {
	broker := containers.NewRedpanda(t)
	logger := slog.Default()

	pub, err := events.NewKafka(config.KafkaConfig{
		Brokers: []string{broker},
		Topic:   "beam.registration.events",
	}, logger)
	require.NoError(t, err)

	companyID := domain.NewCompanyID()
	pub.Publish(context.Background(), events.Event{
		Type:      events.TypeRegistrationInitialized,
		CompanyID: companyID,
		At:        time.Now().UTC(),
		Details:   map[string]string{"country": "AE"},
	})
	pub.Close() // flushes the async produce

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker),
		kgo.ConsumeTopics("beam.registration.events"),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	fetches := consumer.PollFetches(ctx)
	require.NoError(t, fetches.Err())

	records := fetches.Records()
	require.Len(t, records, 1)
	assert.Equal(t, string(companyID), string(records[0].Key))

	var got events.Event
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	assert.Equal(t, events.TypeRegistrationInitialized, got.Type)
	assert.Equal(t, companyID, got.CompanyID)
	assert.Equal(t, "AE", got.Details["country"])
}
