package errors

import (
	sterrors "errors"
	"fmt"
)

var (
	ErrPublisherRequired   = sterrors.New("busflow: publisher is required")
	ErrSubscriberRequired  = sterrors.New("busflow: subscriber is required")
	ErrTopicRequired       = sterrors.New("busflow: topic is required")
	ErrQueueRequired       = sterrors.New("busflow: handoff queue is required")
	ErrQueueNameRequired   = sterrors.New("busflow: queue name is required")
	ErrQueueClosed         = sterrors.New("busflow: handoff queue is closed")
	ErrQueueFull           = sterrors.New("busflow: handoff queue is full")
	ErrMaxRetriesExceeded  = sterrors.New("busflow: max retries exceeded")
	ErrReceiptHandleNeeded = sterrors.New("busflow: receipt handle is required")
)

// DecodeError reports a wire payload that could not be parsed. Field names the
// offending key path, for example "meta_data" or "payload.currency".
type DecodeError struct {
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("busflow: failed to decode message: %v", e.Err)
	}
	return fmt.Sprintf("busflow: failed to decode %s: %v", e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ClientCreationError is returned when a broker client cannot be configured.
// It is fatal: the adapter cannot start without fixing the configuration.
type ClientCreationError struct {
	Client string
	Reason string
	Err    error
}

func (e *ClientCreationError) Error() string {
	msg := fmt.Sprintf("busflow: failed to create %s client: %s", e.Client, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ClientCreationError) Unwrap() error {
	return e.Err
}

// DeliveryError wraps a publish failure reported by the broker transport.
type DeliveryError struct {
	Topic string
	Key   string
	Err   error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("busflow: failed to deliver message to %s (key %q): %v", e.Topic, e.Key, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// QueueError wraps a failed point-to-point queue operation.
type QueueError struct {
	Op    string
	Queue string
	Err   error
}

func (e *QueueError) Error() string {
	return fmt.Sprintf("busflow: queue %s on %s failed: %v", e.Op, e.Queue, e.Err)
}

func (e *QueueError) Unwrap() error {
	return e.Err
}
