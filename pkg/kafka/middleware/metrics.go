package kafka_middleware

import (
	"context"
	"sync/atomic"
	"time"
	"venuebook/pkg/kafka"
)

// Metrics counts message outcomes for one producer or consumer.
type Metrics struct {
	succeeded atomic.Int64
	failed    atomic.Int64
	totalNs   atomic.Int64
}

type Snapshot struct {
	Succeeded   int64
	Failed      int64
	AvgDuration time.Duration
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) observe(start time.Time, err error) {
	m.totalNs.Add(int64(time.Since(start)))
	if err != nil {
		m.failed.Add(1)
	} else {
		m.succeeded.Add(1)
	}
}

func (m *Metrics) Snapshot() Snapshot {
	s := Snapshot{
		Succeeded: m.succeeded.Load(),
		Failed:    m.failed.Load(),
	}
	if n := s.Succeeded + s.Failed; n > 0 {
		s.AvgDuration = time.Duration(m.totalNs.Load() / n)
	}
	return s
}

func (m *Metrics) Producer() kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		m.observe(start, err)
		return err
	}
}

func (m *Metrics) Consumer() kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		m.observe(start, err)
		return err
	}
}
