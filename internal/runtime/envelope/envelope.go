package envelope

import (
	"fmt"
	"time"

	"github.com/drblury/busflow/internal/runtime/ids"
)

// Envelope pairs one Metadata with one Payload. It is the unit that travels
// over both broker adapters.
type Envelope struct {
	Metadata Metadata
	Payload  Payload
}

// NewEnvelope pairs md and payload and validates the result.
func NewEnvelope(md Metadata, payload Payload) (Envelope, error) {
	env := Envelope{Metadata: md, Payload: payload}
	if err := env.Validate(); err != nil {
		return Envelope{}, err
	}
	return env, nil
}

// Create builds an envelope stamped with the current UTC time and a fresh
// idempotency key. Options may override both and must set exactly one of
// WithInstruction or WithEvent.
func Create(source string, payload Payload, token string, opts ...Option) (Envelope, error) {
	md := Metadata{
		Source:         source,
		CreatedAt:      FormatCreatedAt(time.Now()),
		Token:          token,
		IdempotencyKey: ids.NewIdempotencyKey(),
	}
	for _, opt := range opts {
		opt(&md)
	}
	if err := md.Validate(); err != nil {
		return Envelope{}, err
	}
	return NewEnvelope(md, payload)
}

// Validate checks the metadata and that the payload shape matches the declared
// tag. Raw payloads match every tag. Payload field rules are not re-run here;
// use NewPayload when building a payload.
func (e Envelope) Validate() error {
	if err := e.Metadata.Validate(); err != nil {
		return err
	}
	if e.Payload == nil {
		return ruleViolation("Envelope", "payload")
	}
	if e.Payload.Kind() == KindRaw {
		return nil
	}

	tagName, tag := "event", e.Metadata.Event.String()
	expected, ok := PayloadKindForEvent(e.Metadata.Event)
	if e.Metadata.InstructionType != "" {
		tagName, tag = "instruction_type", e.Metadata.InstructionType.String()
		expected, ok = PayloadKindForInstruction(e.Metadata.InstructionType)
	}
	if !ok {
		return ruleViolation("Envelope", fmt.Sprintf("unknown %s %s", tagName, tag))
	}
	if got := e.Payload.Kind(); got != expected {
		return ruleViolation("Envelope", fmt.Sprintf("%s %s requires %s, got %s", tagName, tag, expected, got))
	}
	return nil
}

// String renders the envelope in its wire form with the token masked.
// Encoding failures are shown inline instead of panicking.
func (e Envelope) String() string {
	if e.Metadata.Token != "" {
		e.Metadata.Token = "***REDACTED***"
	}
	s, err := EncodeString(e)
	if err != nil {
		return fmt.Sprintf("envelope(%v)", err)
	}
	return s
}
