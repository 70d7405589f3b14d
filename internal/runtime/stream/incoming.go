package stream

import (
	"fmt"

	"github.com/IBM/sarama"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/drblury/busflow/internal/runtime/ids"
	"github.com/drblury/busflow/internal/runtime/jsoncodec"
	"github.com/drblury/busflow/internal/runtime/metadata"
)

// watermillUUIDHeader is the header watermill-kafka publishers use for the
// message id.
const watermillUUIDHeader = "_watermill_message_uuid"

// IncomingMessage is one parsed broker record: its normalised headers and the
// decoded body.
type IncomingMessage[T any] struct {
	Headers metadata.Metadata `json:"headers"`
	Payload T                 `json:"payload"`
}

func (m IncomingMessage[T]) String() string {
	s, err := jsoncodec.MarshalString(m)
	if err != nil {
		return fmt.Sprintf("IncomingMessage(%v)", err)
	}
	return s
}

// ParseFunc turns a record's headers and body into T.
type ParseFunc[T any] func(headers metadata.Metadata, body []byte) (T, error)

// ParseJSON decodes the body as JSON into T.
func ParseJSON[T any](_ metadata.Metadata, body []byte) (T, error) {
	var v T
	if err := jsoncodec.Unmarshal(body, &v); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// recordUnmarshaler converts sarama records into Watermill messages, keeping
// every header with nil or blank values mapped to "".
type recordUnmarshaler struct{}

func (recordUnmarshaler) Unmarshal(rec *sarama.ConsumerMessage) (*message.Message, error) {
	headers := metadata.FromRecordHeaders(rec.Headers)

	id := headers.Get(watermillUUIDHeader)
	if id == "" {
		id = ids.CreateULID()
	}
	delete(headers, watermillUUIDHeader)

	msg := message.NewMessage(id, rec.Value)
	msg.Metadata = metadata.ToWatermill(headers)
	return msg, nil
}
