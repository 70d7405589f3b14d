package busflow

import (
	"context"
	"errors"

	configpkg "github.com/drblury/busflow/internal/runtime/config"
	"github.com/drblury/busflow/internal/runtime/envelope"
	errspkg "github.com/drblury/busflow/internal/runtime/errors"
	"github.com/drblury/busflow/internal/runtime/handoff"
	idspkg "github.com/drblury/busflow/internal/runtime/ids"
	jsoncodec "github.com/drblury/busflow/internal/runtime/jsoncodec"
	loggingpkg "github.com/drblury/busflow/internal/runtime/logging"
	metadatapkg "github.com/drblury/busflow/internal/runtime/metadata"
	queuepkg "github.com/drblury/busflow/internal/runtime/queue"
	"github.com/drblury/busflow/internal/runtime/stream"
)

type (
	Config = configpkg.Config

	Envelope         = envelope.Envelope
	EnvelopeMetadata = envelope.Metadata
	EnvelopeOption   = envelope.Option
	Payload          = envelope.Payload
	PayloadKind      = envelope.PayloadKind
	Raw              = envelope.Raw
	ValidationError  = envelope.ValidationError

	InstructionType  = envelope.InstructionType
	EventType        = envelope.EventType
	TransactionType  = envelope.TransactionType
	PaymentDirection = envelope.PaymentDirection

	PaymentPayload            = envelope.PaymentPayload
	StatusUpdatePayload       = envelope.StatusUpdatePayload
	CorrectionPayload         = envelope.CorrectionPayload
	TransactionPayload        = envelope.TransactionPayload
	BankPaymentRequestPayload = envelope.BankPaymentRequestPayload
	ChainPaymentPayload       = envelope.ChainPaymentPayload
	UpdateProfilePayload      = envelope.UpdateProfilePayload
	MintPayload               = envelope.MintPayload
	BurnPayload               = envelope.BurnPayload

	NewTransactionEventPayload        = envelope.NewTransactionEventPayload
	TransactionStatusEventPayload     = envelope.TransactionStatusEventPayload
	PaymentEventPayload               = envelope.PaymentEventPayload
	BankPaymentEventPayload           = envelope.BankPaymentEventPayload
	ProfileEventPayload               = envelope.ProfileEventPayload
	NewUserEventPayload               = envelope.NewUserEventPayload
	KycEventPayload                   = envelope.KycEventPayload
	PasswordResetEventPayload         = envelope.PasswordResetEventPayload
	VerificationRequestedEventPayload = envelope.VerificationRequestedEventPayload

	IncomingMessage[T any] = stream.IncomingMessage[T]
	ParseFunc[T any]       = stream.ParseFunc[T]
	Consumer[T any]        = stream.Consumer[T]
	Publisher              = stream.Publisher
	StreamOption           = stream.Option
	StreamMetrics          = stream.Metrics

	HandoffQueue[T any] = handoff.Queue[T]
	HandoffPolicy       = handoff.Policy

	QueueClient  = queuepkg.Client
	QueueMessage = queuepkg.Message

	Metadata = metadatapkg.Metadata

	LogFields     = loggingpkg.LogFields
	ServiceLogger = loggingpkg.ServiceLogger

	DecodeError         = errspkg.DecodeError
	ClientCreationError = errspkg.ClientCreationError
	DeliveryError       = errspkg.DeliveryError
	QueueError          = errspkg.QueueError
)

const (
	InstructionPayment            = envelope.InstructionPayment
	InstructionStatusUpdate       = envelope.InstructionStatusUpdate
	InstructionCorrection         = envelope.InstructionCorrection
	InstructionTransaction        = envelope.InstructionTransaction
	InstructionBankPaymentRequest = envelope.InstructionBankPaymentRequest
	InstructionChainPayment       = envelope.InstructionChainPayment
	InstructionUpdateProfile      = envelope.InstructionUpdateProfile
	InstructionMint               = envelope.InstructionMint
	InstructionBurn               = envelope.InstructionBurn

	EventNewTransaction          = envelope.EventNewTransaction
	EventTransactionStatusUpdate = envelope.EventTransactionStatusUpdate
	EventPayment                 = envelope.EventPayment
	EventBankPayment             = envelope.EventBankPayment
	EventNewProfile              = envelope.EventNewProfile
	EventNewUser                 = envelope.EventNewUser
	EventVerificationRequested   = envelope.EventVerificationRequested
	EventPasswordResetRequested  = envelope.EventPasswordResetRequested
	EventKyc                     = envelope.EventKyc

	TransactionDeposit  = envelope.TransactionDeposit
	TransactionWithdraw = envelope.TransactionWithdraw
	TransactionTransfer = envelope.TransactionTransfer

	DirectionInbound  = envelope.DirectionInbound
	DirectionOutbound = envelope.DirectionOutbound
	DirectionBoth     = envelope.DirectionBoth

	// Block makes a full handoff queue wait for space.
	Block = handoff.Block
	// NonBlocking makes a full handoff queue refuse the record at once.
	NonBlocking = handoff.NonBlocking

	HeaderSource = stream.HeaderSource
)

var (
	LoadConfig        = configpkg.FromEnv
	LoadConfigFromMap = configpkg.FromMap
	ValidateConfig    = configpkg.ValidateConfig

	NewEnvelope = envelope.NewEnvelope
	Create      = envelope.Create
	NewMetadata = envelope.NewMetadata

	WithInstruction    = envelope.WithInstruction
	WithEvent          = envelope.WithEvent
	WithIPAddress      = envelope.WithIPAddress
	WithIdempotencyKey = envelope.WithIdempotencyKey
	WithCreatedAt      = envelope.WithCreatedAt

	Encode        = envelope.Encode
	EncodeString  = envelope.EncodeString
	Decode        = envelope.Decode
	DecodePayload = envelope.DecodePayload

	ParsePaymentDirection = envelope.ParsePaymentDirection

	NewPublisher      = stream.NewPublisher
	NewStreamMetrics  = stream.NewMetrics
	WithLogger        = stream.WithLogger
	WithMetrics       = stream.WithMetrics
	WithMaxBackoff    = stream.WithMaxBackoff
	NewQueueClient    = queuepkg.New
	NewQueueClientAPI = queuepkg.NewWithAPI

	NewSlogServiceLogger = loggingpkg.NewSlogServiceLogger
	NewNopServiceLogger  = loggingpkg.NewNopServiceLogger

	NewHeaders = metadatapkg.New

	CreateULID        = idspkg.CreateULID
	NewIdempotencyKey = idspkg.NewIdempotencyKey

	Marshal   = jsoncodec.Marshal
	Unmarshal = jsoncodec.Unmarshal

	ErrPublisherRequired   = errspkg.ErrPublisherRequired
	ErrTopicRequired       = errspkg.ErrTopicRequired
	ErrQueueRequired       = errspkg.ErrQueueRequired
	ErrQueueNameRequired   = errspkg.ErrQueueNameRequired
	ErrQueueClosed         = errspkg.ErrQueueClosed
	ErrQueueFull           = errspkg.ErrQueueFull
	ErrMaxRetriesExceeded  = errspkg.ErrMaxRetriesExceeded
	ErrReceiptHandleNeeded = errspkg.ErrReceiptHandleNeeded
)

// NewPayload validates p and returns it.
func NewPayload[P Payload](p P) (P, error) {
	return envelope.NewPayload(p)
}

// NewHandoffQueue creates the bounded queue a Consumer forwards into.
func NewHandoffQueue[T any](capacity int, policy HandoffPolicy) *HandoffQueue[T] {
	return handoff.New[T](capacity, policy)
}

// NewConsumer builds a Kafka consumer that JSON-decodes record bodies into T.
func NewConsumer[T any](cfg Config, out *HandoffQueue[IncomingMessage[T]], opts ...StreamOption) (*Consumer[T], error) {
	return stream.NewConsumer(cfg, out, opts...)
}

// NewConsumerWithParser builds a Kafka consumer with a custom parse step.
func NewConsumerWithParser[T any](cfg Config, out *HandoffQueue[IncomingMessage[T]], parse ParseFunc[T], opts ...StreamOption) (*Consumer[T], error) {
	return stream.NewConsumerWithParser(cfg, out, parse, opts...)
}

// NewEnvelopeConsumer builds a Kafka consumer whose records are busflow
// envelopes. Envelopes are decoded but not validated.
func NewEnvelopeConsumer(cfg Config, out *HandoffQueue[IncomingMessage[Envelope]], opts ...StreamOption) (*Consumer[Envelope], error) {
	return stream.NewConsumerWithParser(cfg, out, func(_ Metadata, body []byte) (Envelope, error) {
		return envelope.Decode(body)
	}, opts...)
}

// ServeHandoff receives from q and calls handle for each item until ctx ends or
// q is closed and drained. A handler error stops the loop and is returned.
func ServeHandoff[T any](ctx context.Context, q *HandoffQueue[T], handle func(context.Context, T) error) error {
	for {
		item, err := q.Receive(ctx)
		if err != nil {
			if errors.Is(err, ErrQueueClosed) {
				return nil
			}
			return err
		}
		if err := handle(ctx, item); err != nil {
			return err
		}
	}
}
