package stream

import (
	"context"
	"errors"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/drblury/busflow/internal/runtime/config"
	"github.com/drblury/busflow/internal/runtime/envelope"
	errspkg "github.com/drblury/busflow/internal/runtime/errors"
	"github.com/drblury/busflow/internal/runtime/ids"
	"github.com/drblury/busflow/internal/runtime/logging"
)

const (
	// HeaderSource names the publishing service on every record.
	HeaderSource = "source"

	partitionKeyMetadata = "partition_key"
)

// PublisherFactory allows overriding the publisher creation for testing.
var PublisherFactory = func(cfg kafka.PublisherConfig, logger watermill.LoggerAdapter) (message.Publisher, error) {
	return kafka.NewPublisher(cfg, logger)
}

// Publisher sends records under a partition key. It is safe for concurrent
// use. Failures surface as *errors.DeliveryError; there is no retrying beyond
// the Kafka client's own.
type Publisher struct {
	publisher    message.Publisher
	defaultTopic string
	source       string
	opts         options
	tracer       trace.Tracer
}

func partitionKey(_ string, msg *message.Message) (string, error) {
	return msg.Metadata.Get(partitionKeyMetadata), nil
}

// NewPublisher builds a Kafka publisher. Publish sends to
// cfg.KafkaPublishTopic; use PublishTo for other topics.
func NewPublisher(cfg config.Config, opts ...Option) (*Publisher, error) {
	sec, err := cfg.KafkaSecurity()
	if err != nil {
		var cce *errspkg.ClientCreationError
		if errors.As(err, &cce) {
			cce.Client = "kafka publisher"
		}
		return nil, err
	}

	o := buildOptions(cfg, opts)
	publisher, err := PublisherFactory(
		kafka.PublisherConfig{
			Brokers:               cfg.KafkaBrokers,
			Marshaler:             kafka.NewWithPartitioningMarshaler(partitionKey),
			OverwriteSaramaConfig: newProducerSaramaConfig(cfg, sec),
		},
		logging.NewWatermillAdapter(o.logger),
	)
	if err != nil {
		return nil, &errspkg.ClientCreationError{Client: "kafka publisher", Reason: "create publisher", Err: err}
	}

	source := cfg.KafkaPublisherSource
	if source == "" {
		source = "busflow"
	}
	return &Publisher{
		publisher:    publisher,
		defaultTopic: cfg.KafkaPublishTopic,
		source:       source,
		opts:         o,
		tracer:       otel.Tracer(tracerName),
	}, nil
}

// Publish sends body to the default topic under key.
func (p *Publisher) Publish(ctx context.Context, key string, body []byte) error {
	return p.PublishTo(ctx, p.defaultTopic, key, body)
}

// PublishEnvelope validates and encodes env, then publishes it to the default
// topic. Validation failures are returned as *envelope.ValidationError.
func (p *Publisher) PublishEnvelope(ctx context.Context, key string, env envelope.Envelope) error {
	if err := env.Validate(); err != nil {
		return err
	}
	body, err := envelope.Encode(env)
	if err != nil {
		return err
	}
	return p.Publish(ctx, key, body)
}

// PublishTo sends body to topic under key.
func (p *Publisher) PublishTo(ctx context.Context, topic, key string, body []byte) error {
	if p == nil || p.publisher == nil {
		return errspkg.ErrPublisherRequired
	}
	if topic == "" {
		return errspkg.ErrTopicRequired
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, span := p.tracer.Start(ctx, "busflow.stream.publish",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination.name", topic),
			attribute.String("messaging.kafka.message.key", key),
		),
	)
	defer span.End()

	if err := ctx.Err(); err != nil {
		return p.fail(span, topic, key, err)
	}

	msg := message.NewMessage(ids.CreateULID(), body)
	msg.Metadata.Set(HeaderSource, p.source)
	msg.Metadata.Set(partitionKeyMetadata, key)
	msg.SetContext(ctx)
	span.SetAttributes(attribute.String("messaging.message.id", msg.UUID))

	if err := p.publisher.Publish(topic, msg); err != nil {
		return p.fail(span, topic, key, err)
	}

	p.opts.metrics.recordPublished(topic, "ok")
	span.SetStatus(codes.Ok, "")
	return nil
}

func (p *Publisher) fail(span trace.Span, topic, key string, err error) error {
	p.opts.metrics.recordPublished(topic, "error")
	span.RecordError(err)
	span.SetStatus(codes.Error, "publish failed")
	p.opts.logger.Error("publish failed", err, logging.LogFields{"topic": topic, "key": key})
	return &errspkg.DeliveryError{Topic: topic, Key: key, Err: err}
}

// Close flushes and releases the underlying producer.
func (p *Publisher) Close() error {
	return p.publisher.Close()
}
