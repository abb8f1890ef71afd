package kafka_middleware

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"venuebook/pkg/kafka"
	"venuebook/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func TestMetrics_CountsOutcomes(t *testing.T) {
	m := NewMetrics()
	mw := m.Consumer()
	ok := func(ctx context.Context, msg kafka.Message) error { return nil }
	fail := func(ctx context.Context, msg kafka.Message) error { return errors.New("boom") }

	assert.NoError(t, mw(context.Background(), kafka.Message{}, ok))
	assert.NoError(t, mw(context.Background(), kafka.Message{}, ok))
	assert.Error(t, mw(context.Background(), kafka.Message{}, fail))

	s := m.Snapshot()
	assert.EqualValues(t, 2, s.Succeeded)
	assert.EqualValues(t, 1, s.Failed)
}

func TestMetrics_EmptySnapshot(t *testing.T) {
	assert.Zero(t, NewMetrics().Snapshot().AvgDuration)
}

func TestLoggingConsumerMiddleware_PassesErrorThrough(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: "info", Format: logger.JSON, Output: &buf, Service: "test"})
	want := errors.New("mail provider down")

	err := LoggingConsumerMiddleware(log)(context.Background(),
		kafka.Message{Topic: "reservation-notifications", Headers: map[string]string{kafka.HeaderEventID: "e1"}},
		func(ctx context.Context, msg kafka.Message) error { return want },
	)

	assert.ErrorIs(t, err, want)
	assert.Contains(t, buf.String(), "Failed to process message")
	assert.Contains(t, buf.String(), "e1")
}
