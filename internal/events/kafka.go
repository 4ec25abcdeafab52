package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"claimchain/internal/platform/kafka/producer"
	"claimchain/internal/platform/metrics"
	"claimchain/pkg/platform/circuit"
	"claimchain/pkg/requestcontext"
)

// MessageProducer is the subset of *producer.Producer used for publishing.
type MessageProducer interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

// KafkaPublisher writes events to a Kafka topic in the background. Events
// are keyed by aggregate id so each aggregate's history stays ordered
// within a partition.
type KafkaPublisher struct {
	producer MessageProducer
	topic    string
	timeout  time.Duration
	breaker  *circuit.Breaker
	logger   *slog.Logger
	metrics  *metrics.Metrics

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

type Option func(*KafkaPublisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *KafkaPublisher) { p.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *KafkaPublisher) { p.metrics = m }
}

// WithTimeout bounds a single delivery. Default is 5s.
func WithTimeout(d time.Duration) Option {
	return func(p *KafkaPublisher) {
		if d > 0 {
			p.timeout = d
		}
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(p *KafkaPublisher) { p.breaker = b }
}

func NewKafkaPublisher(prod MessageProducer, topic string, opts ...Option) *KafkaPublisher {
	p := &KafkaPublisher{
		producer: prod,
		topic:    topic,
		timeout:  5 * time.Second,
		breaker:  circuit.New("event_publisher", circuit.WithCoolDown(30*time.Second)),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type envelope struct {
	Type          Type           `json:"type"`
	AggregateType string         `json:"aggregate_type"`
	AggregateID   string         `json:"aggregate_id"`
	RequestID     string         `json:"request_id,omitempty"`
	OccurredAt    time.Time      `json:"occurred_at"`
	Data          map[string]any `json:"data,omitempty"`
}

// Publish never blocks on the broker. Events published after Close are dropped.
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	if !p.breaker.Allow() {
		p.metrics.IncrementEventPublished(string(event.Type), metrics.OutcomeDropped)
		return
	}

	payload, err := json.Marshal(envelope(event))
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to encode lifecycle event", "type", event.Type, "error", err)
		p.metrics.IncrementEventPublished(string(event.Type), metrics.OutcomeFailure)
		return
	}
	msg := &producer.Message{
		Topic: p.topic,
		Key:   []byte(event.AggregateID),
		Value: payload,
		Headers: map[string]string{
			"event_type":     string(event.Type),
			"aggregate_type": event.AggregateType,
			"aggregate_id":   event.AggregateID,
		},
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.metrics.IncrementEventPublished(string(event.Type), metrics.OutcomeDropped)
		p.logger.WarnContext(ctx, "lifecycle event dropped after close",
			"type", event.Type, "aggregate_id", event.AggregateID)
		return
	}
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		p.deliver(context.WithoutCancel(ctx), event, msg)
	}()
}

func (p *KafkaPublisher) deliver(ctx context.Context, event Event, msg *producer.Message) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.producer.Produce(ctx, msg); err != nil {
		change := p.breaker.RecordFailure()
		p.metrics.IncrementEventPublished(string(event.Type), metrics.OutcomeFailure)
		p.logger.WarnContext(ctx, "failed to publish lifecycle event",
			"type", event.Type,
			"aggregate_id", event.AggregateID,
			"error", err,
		)
		if change.Opened {
			p.logger.ErrorContext(ctx, "circuit breaker opened", "circuit", p.breaker.Name())
		}
		return
	}
	p.breaker.RecordSuccess()
	p.metrics.IncrementEventPublished(string(event.Type), metrics.OutcomeSuccess)
}

// Close stops accepting events and waits for in-flight deliveries. It does
// not close the producer.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.wg.Wait()
	return nil
}
