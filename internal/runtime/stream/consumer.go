// Package stream is the Kafka side of busflow: a consumer that parses,
// retries, forwards and acknowledges records one partition at a time, and a
// publisher for the push path.
package stream

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/drblury/busflow/internal/runtime/config"
	errspkg "github.com/drblury/busflow/internal/runtime/errors"
	"github.com/drblury/busflow/internal/runtime/handoff"
	"github.com/drblury/busflow/internal/runtime/logging"
	"github.com/drblury/busflow/internal/runtime/metadata"
)

const (
	tracerName = "github.com/drblury/busflow/stream"

	parseInitialBackoff = time.Second
	parseMaxBackoff     = time.Minute
	nackResendSleep     = 500 * time.Millisecond
)

// SubscriberFactory allows overriding the subscriber creation for testing.
var SubscriberFactory = func(cfg kafka.SubscriberConfig, logger watermill.LoggerAdapter) (message.Subscriber, error) {
	return kafka.NewSubscriber(cfg, logger)
}

// SleepFunc waits for d or until ctx ends.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type options struct {
	logger     logging.ServiceLogger
	metrics    *Metrics
	sleep      SleepFunc
	maxBackoff time.Duration
}

// Option customises a Consumer or Publisher.
type Option func(*options)

// WithLogger routes adapter and Watermill logs through log.
func WithLogger(log logging.ServiceLogger) Option {
	return func(o *options) { o.logger = log }
}

// WithMetrics records counters on m instead of the default collectors.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithSleep replaces the backoff sleep, mainly for tests.
func WithSleep(fn SleepFunc) Option {
	return func(o *options) { o.sleep = fn }
}

// WithMaxBackoff caps the parse retry interval.
func WithMaxBackoff(d time.Duration) Option {
	return func(o *options) { o.maxBackoff = d }
}

func buildOptions(cfg config.Config, opts []Option) options {
	o := options{sleep: sleepContext, maxBackoff: parseMaxBackoff}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = logging.OrNop(o.logger)
	if o.metrics == nil && cfg.MetricsEnabled {
		o.metrics = DefaultMetrics()
	}
	return o
}

// Consumer subscribes to a set of topics and feeds parsed records into a
// handoff queue. A record is acknowledged only once it is in the queue, or
// once parse retries are exhausted and it is dropped.
type Consumer[T any] struct {
	subscriber message.Subscriber
	out        *handoff.Queue[IncomingMessage[T]]
	parse      ParseFunc[T]
	topics     []string
	maxRetries int
	opts       options
	tracer     trace.Tracer
}

// NewConsumer builds a consumer that JSON-decodes record bodies into T.
func NewConsumer[T any](cfg config.Config, out *handoff.Queue[IncomingMessage[T]], opts ...Option) (*Consumer[T], error) {
	return NewConsumerWithParser(cfg, out, ParseJSON[T], opts...)
}

// NewConsumerWithParser builds a consumer with a custom parse step.
func NewConsumerWithParser[T any](cfg config.Config, out *handoff.Queue[IncomingMessage[T]], parse ParseFunc[T], opts ...Option) (*Consumer[T], error) {
	if out == nil {
		return nil, errspkg.ErrQueueRequired
	}
	if len(cfg.KafkaTopics) == 0 {
		return nil, errspkg.ErrTopicRequired
	}
	if parse == nil {
		parse = ParseJSON[T]
	}

	sec, err := cfg.KafkaSecurity()
	if err != nil {
		var cce *errspkg.ClientCreationError
		if errors.As(err, &cce) {
			cce.Client = "kafka consumer"
		}
		return nil, err
	}

	o := buildOptions(cfg, opts)
	subscriber, err := SubscriberFactory(
		kafka.SubscriberConfig{
			Brokers:               cfg.KafkaBrokers,
			Unmarshaler:           recordUnmarshaler{},
			OverwriteSaramaConfig: newConsumerSaramaConfig(cfg, sec),
			ConsumerGroup:         cfg.KafkaConsumerGroup,
			NackResendSleep:       nackResendSleep,
		},
		logging.NewWatermillAdapter(o.logger),
	)
	if err != nil {
		return nil, &errspkg.ClientCreationError{Client: "kafka consumer", Reason: "create subscriber", Err: err}
	}

	maxRetries := cfg.KafkaMaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}

	return &Consumer[T]{
		subscriber: subscriber,
		out:        out,
		parse:      parse,
		topics:     append([]string(nil), cfg.KafkaTopics...),
		maxRetries: maxRetries,
		opts:       o,
		tracer:     otel.Tracer(tracerName),
	}, nil
}

// Topics returns the subscribed topics.
func (c *Consumer[T]) Topics() []string {
	return append([]string(nil), c.topics...)
}

// Run consumes every topic on its own goroutine until ctx is cancelled or a
// subscription fails. Records within a topic are handled strictly in order.
func (c *Consumer[T]) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, topic := range c.topics {
		g.Go(func() error {
			messages, err := c.subscriber.Subscribe(ctx, topic)
			if err != nil {
				return fmt.Errorf("busflow: subscribe to %s: %w", topic, err)
			}
			c.consume(ctx, topic, messages)
			return nil
		})
	}
	return g.Wait()
}

// Close releases the underlying subscriber.
func (c *Consumer[T]) Close() error {
	return c.subscriber.Close()
}

func (c *Consumer[T]) consume(ctx context.Context, topic string, messages <-chan *message.Message) {
	log := c.opts.logger.With(logging.LogFields{"topic": topic})
	log.Info("consuming topic", nil)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				log.Info("subscription closed", nil)
				return
			}
			c.handle(ctx, topic, msg)
		}
	}
}

func (c *Consumer[T]) handle(ctx context.Context, topic string, msg *message.Message) {
	partition, _ := kafka.MessagePartitionFromCtx(msg.Context())
	offset, _ := kafka.MessagePartitionOffsetFromCtx(msg.Context())

	log := c.opts.logger.With(logging.LogFields{
		"topic":      topic,
		"partition":  partition,
		"offset":     offset,
		"message_id": msg.UUID,
	})

	_, span := c.tracer.Start(msg.Context(), "busflow.stream.consume",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination.name", topic),
			attribute.Int64("messaging.kafka.partition", int64(partition)),
			attribute.Int64("messaging.kafka.offset", offset),
			attribute.String("messaging.message.id", msg.UUID),
		),
	)
	defer span.End()

	c.opts.metrics.recordReceived(topic)

	incoming, err := c.parseWithRetry(ctx, topic, msg, log)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, errspkg.ErrMaxRetriesExceeded) {
			// No dead-letter sink: acknowledge so the partition moves on.
			log.Error("dropping record after parse retries ran out", err, nil)
			span.SetStatus(codes.Error, "dropped")
			c.opts.metrics.recordDropped(topic)
			msg.Ack()
			return
		}
		log.Info("stopped while retrying, leaving record unacknowledged", logging.LogFields{"reason": err.Error()})
		span.SetStatus(codes.Error, "interrupted")
		msg.Nack()
		return
	}

	if err := c.out.Push(ctx, incoming); err != nil {
		log.Error("forward failed, leaving record unacknowledged for redelivery", err, nil)
		span.RecordError(err)
		span.SetStatus(codes.Error, "forward failed")
		c.opts.metrics.recordForwardFailure(topic, forwardFailureReason(err))
		msg.Nack()
		return
	}

	msg.Ack()
	c.opts.metrics.recordForwarded(topic)
	span.SetStatus(codes.Ok, "")
	log.Debug("record forwarded", nil)
}

// parseWithRetry makes up to maxRetries parse attempts, sleeping 1s, 2s, 4s...
// between them. It never sleeps after the last attempt.
func (c *Consumer[T]) parseWithRetry(ctx context.Context, topic string, msg *message.Message, log logging.ServiceLogger) (IncomingMessage[T], error) {
	headers := metadata.FromWatermill(msg.Metadata)
	policy := &backoff.ExponentialBackOff{
		InitialInterval:     parseInitialBackoff,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         c.opts.maxBackoff,
	}
	policy.Reset()

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		payload, err := c.parse(headers, msg.Payload)
		if err == nil {
			return IncomingMessage[T]{Headers: headers, Payload: payload}, nil
		}
		lastErr = err
		c.opts.metrics.recordParseFailure(topic)

		if attempt == c.maxRetries {
			break
		}
		wait := policy.NextBackOff()
		log.Debug("parse failed, retrying", logging.LogFields{
			"attempt": attempt,
			"backoff": wait.String(),
			"error":   err.Error(),
		})
		if err := c.opts.sleep(ctx, wait); err != nil {
			return IncomingMessage[T]{}, err
		}
	}
	return IncomingMessage[T]{}, fmt.Errorf("%w after %d attempts: %w", errspkg.ErrMaxRetriesExceeded, c.maxRetries, lastErr)
}

func forwardFailureReason(err error) string {
	switch {
	case errors.Is(err, errspkg.ErrQueueFull):
		return "full"
	case errors.Is(err, errspkg.ErrQueueClosed):
		return "closed"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	}
	return "other"
}
