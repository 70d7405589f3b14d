// Package queue is the point-to-point side of busflow: send, receive and
// explicit delete against named SQS queues.
package queue

import (
	"context"
	"net/url"
	"strings"
	"time"

	wmsqs "github.com/ThreeDotsLabs/watermill-aws/sqs"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	smithyendpoints "github.com/aws/smithy-go/endpoints"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/drblury/busflow/internal/runtime/config"
	errspkg "github.com/drblury/busflow/internal/runtime/errors"
	"github.com/drblury/busflow/internal/runtime/logging"
)

const (
	tracerName = "github.com/drblury/busflow/queue"

	// maxBatch is the most messages a single SQS receive may return.
	maxBatch = 10

	attributeTypeString = "String"
)

// API is the subset of *sqs.Client the adapter uses.
type API interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// ConfigLoader allows overriding the AWS config loader for testing.
var ConfigLoader = awsconfig.LoadDefaultConfig

// APIFactory allows overriding the SQS client creation for testing.
var APIFactory = func(cfg aws.Config, optFns ...func(*sqs.Options)) API {
	return sqs.NewFromConfig(cfg, optFns...)
}

// Message is one outgoing record. Attributes are sent as String message
// attributes. Group and DeduplicationID only apply to FIFO queues.
type Message struct {
	Body            string
	Attributes      map[string]string
	Group           string
	DeduplicationID string
}

// Client talks to queues under one endpoint. It holds no per-call state and is
// safe for concurrent use.
type Client struct {
	api           API
	endpoint      string
	receiveBuffer int
	waitTime      time.Duration
	log           logging.ServiceLogger
	tracer        trace.Tracer
}

// New loads the AWS configuration described by cfg and builds a client on it.
// AWS_ENDPOINT, when set, overrides the SQS endpoint (LocalStack and friends).
func New(ctx context.Context, cfg config.Config, log logging.ServiceLogger) (*Client, error) {
	log = logging.OrNop(log)

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.AWSRegion != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.AWSRegion))
	}
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		log.Info("using static AWS credentials from config", nil)
		opts = append(opts, awsconfig.WithCredentialsProvider(staticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey)))
	}

	awsCfg, err := ConfigLoader(ctx, opts...)
	if err != nil {
		return nil, &errspkg.ClientCreationError{Client: "sqs", Reason: "load aws config", Err: err}
	}
	if cfg.AWSRegion != "" {
		awsCfg.Region = cfg.AWSRegion
	}

	var sqsOpts []func(*sqs.Options)
	if cfg.AWSEndpoint != "" {
		endpoint, err := url.Parse(cfg.AWSEndpoint)
		if err != nil {
			return nil, &errspkg.ClientCreationError{Client: "sqs", Reason: "parse AWS_ENDPOINT", Err: err}
		}
		sqsOpts = append(sqsOpts, sqs.WithEndpointResolverV2(wmsqs.OverrideEndpointResolver{
			Endpoint: smithyendpoints.Endpoint{URI: *endpoint},
		}))
	}

	log.Info("created SQS client", logging.LogFields{
		"region":          awsCfg.Region,
		"custom_endpoint": cfg.AWSEndpoint != "",
	})
	return NewWithAPI(APIFactory(awsCfg, sqsOpts...), cfg, log)
}

// NewWithAPI builds a client on an existing SQS API implementation.
func NewWithAPI(api API, cfg config.Config, log logging.ServiceLogger) (*Client, error) {
	if api == nil {
		return nil, &errspkg.ClientCreationError{Client: "sqs", Reason: "sqs api is required"}
	}
	if cfg.SQSQueueEndpoint == "" {
		return nil, &errspkg.ClientCreationError{Client: "sqs", Reason: "SQS_QUEUE_ENDPOINT is required"}
	}
	buffer := cfg.SQSReceiveBuffer
	if buffer < 1 {
		buffer = 1
	}
	return &Client{
		api:           api,
		endpoint:      strings.TrimRight(cfg.SQSQueueEndpoint, "/"),
		receiveBuffer: buffer,
		waitTime:      cfg.SQSWaitTime,
		log:           logging.OrNop(log),
		tracer:        otel.Tracer(tracerName),
	}, nil
}

// QueueURL composes "{endpoint}/{name}".
func (c *Client) QueueURL(name string) string {
	return c.endpoint + "/" + name
}

// Send posts msg to the named queue and returns the broker-assigned id.
func (c *Client) Send(ctx context.Context, queue string, msg Message) (string, error) {
	ctx, span, queueURL, err := c.begin(ctx, "send", queue, trace.SpanKindProducer)
	defer span.End()
	if err != nil {
		return "", err
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(queueURL),
		MessageBody: aws.String(msg.Body),
	}
	if len(msg.Attributes) > 0 {
		input.MessageAttributes = make(map[string]types.MessageAttributeValue, len(msg.Attributes))
		for k, v := range msg.Attributes {
			input.MessageAttributes[k] = types.MessageAttributeValue{
				DataType:    aws.String(attributeTypeString),
				StringValue: aws.String(v),
			}
		}
	}
	if msg.Group != "" {
		input.MessageGroupId = aws.String(msg.Group)
	}
	if msg.DeduplicationID != "" {
		input.MessageDeduplicationId = aws.String(msg.DeduplicationID)
	}

	out, err := c.api.SendMessage(ctx, input)
	if err != nil {
		return "", c.fail(span, "send", queueURL, err)
	}

	id := aws.ToString(out.MessageId)
	span.SetAttributes(attribute.String("messaging.message.id", id))
	span.SetStatus(codes.Ok, "")
	c.log.Debug("message sent", logging.LogFields{"queue": queue, "message_id": id})
	return id, nil
}

// Receive polls the named queue once and returns a channel carrying every
// record of that poll, unmodified. The channel holds at most SQS_RECEIVE_BUFFER
// records and is closed once the batch is delivered or ctx ends. Records not
// passed to Delete reappear after the queue's visibility timeout.
func (c *Client) Receive(ctx context.Context, queue string) (<-chan types.Message, error) {
	ctx, span, queueURL, err := c.begin(ctx, "receive", queue, trace.SpanKindConsumer)
	defer span.End()
	if err != nil {
		return nil, err
	}

	out, err := c.api.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:              aws.String(queueURL),
		MaxNumberOfMessages:   int32(min(c.receiveBuffer, maxBatch)),
		WaitTimeSeconds:       int32(c.waitTime / time.Second),
		MessageAttributeNames: []string{"All"},
	})
	if err != nil {
		return nil, c.fail(span, "receive", queueURL, err)
	}

	span.SetAttributes(attribute.Int("messaging.batch.message_count", len(out.Messages)))
	span.SetStatus(codes.Ok, "")
	c.log.Debug("messages received", logging.LogFields{"queue": queue, "count": len(out.Messages)})

	records := make(chan types.Message, c.receiveBuffer)
	go func(batch []types.Message) {
		defer close(records)
		for _, m := range batch {
			select {
			case records <- m:
			case <-ctx.Done():
				return
			}
		}
	}(out.Messages)
	return records, nil
}

// Delete acknowledges a received record by its receipt handle.
func (c *Client) Delete(ctx context.Context, queue, receiptHandle string) error {
	ctx, span, queueURL, err := c.begin(ctx, "delete", queue, trace.SpanKindClient)
	defer span.End()
	if err != nil {
		return err
	}
	if receiptHandle == "" {
		return c.fail(span, "delete", queueURL, errspkg.ErrReceiptHandleNeeded)
	}

	if _, err := c.api.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(queueURL),
		ReceiptHandle: aws.String(receiptHandle),
	}); err != nil {
		return c.fail(span, "delete", queueURL, err)
	}

	span.SetStatus(codes.Ok, "")
	c.log.Debug("message deleted", logging.LogFields{"queue": queue})
	return nil
}

func (c *Client) begin(ctx context.Context, op, queue string, kind trace.SpanKind) (context.Context, trace.Span, string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := c.tracer.Start(ctx, "busflow.queue."+op,
		trace.WithSpanKind(kind),
		trace.WithAttributes(
			attribute.String("messaging.system", "aws_sqs"),
			attribute.String("messaging.destination.name", queue),
		),
	)
	if queue == "" {
		return ctx, span, "", c.fail(span, op, "", errspkg.ErrQueueNameRequired)
	}
	return ctx, span, c.QueueURL(queue), nil
}

func (c *Client) fail(span trace.Span, op, queueURL string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, op+" failed")
	c.log.Error("queue operation failed", err, logging.LogFields{"op": op, "queue": queueURL})
	return &errspkg.QueueError{Op: op, Queue: queueURL, Err: err}
}

func staticCredentialsProvider(accessKeyID, secretAccessKey string) aws.CredentialsProvider {
	return aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
		return aws.Credentials{
			AccessKeyID:     accessKeyID,
			SecretAccessKey: secretAccessKey,
			Source:          "busflow",
		}, nil
	})
}
