package envelope

import (
	"time"
)

// CreatedAtLayout is the wire format of Metadata.CreatedAt: RFC 3339 in UTC
// with second precision and a Z suffix.
const CreatedAtLayout = "2006-01-02T15:04:05Z"

// Metadata describes who sent an envelope, when, and what kind of message it
// carries. Exactly one of InstructionType and Event is set on a valid value.
// Optional fields use "" for absent and are omitted on the wire.
type Metadata struct {
	Source          string          `json:"source"`
	CreatedAt       string          `json:"created_at"`
	Token           string          `json:"token"`
	IdempotencyKey  string          `json:"idempotency_key"`
	InstructionType InstructionType `json:"instruction_type,omitempty"`
	Event           EventType       `json:"event,omitempty"`
	IPAddress       string          `json:"ip_address,omitempty"`
}

// Option customises Metadata built by NewMetadata or Create.
type Option func(*Metadata)

// WithInstruction tags the envelope as an instruction.
func WithInstruction(t InstructionType) Option {
	return func(m *Metadata) { m.InstructionType = t }
}

// WithEvent tags the envelope as an event.
func WithEvent(t EventType) Option {
	return func(m *Metadata) { m.Event = t }
}

// WithIPAddress records the originating client address. The value is not
// checked.
func WithIPAddress(ip string) Option {
	return func(m *Metadata) { m.IPAddress = ip }
}

// WithIdempotencyKey overrides the generated idempotency key.
func WithIdempotencyKey(key string) Option {
	return func(m *Metadata) { m.IdempotencyKey = key }
}

// WithCreatedAt overrides the creation timestamp.
func WithCreatedAt(t time.Time) Option {
	return func(m *Metadata) { m.CreatedAt = FormatCreatedAt(t) }
}

// FormatCreatedAt renders t in the CreatedAt wire format.
func FormatCreatedAt(t time.Time) string {
	return t.UTC().Format(CreatedAtLayout)
}

// NewMetadata builds and validates Metadata.
func NewMetadata(source, createdAt, token, idempotencyKey string, opts ...Option) (Metadata, error) {
	md := Metadata{
		Source:         source,
		CreatedAt:      createdAt,
		Token:          token,
		IdempotencyKey: idempotencyKey,
	}
	for _, opt := range opts {
		opt(&md)
	}
	if err := md.Validate(); err != nil {
		return Metadata{}, err
	}
	return md, nil
}

// Validate checks required fields first, then the instruction/event exclusivity.
func (m Metadata) Validate() error {
	if err := requireFields("Metadata",
		field{"source", m.Source},
		field{"created_at", m.CreatedAt},
		field{"token", m.Token},
		field{"idempotency_key", m.IdempotencyKey},
	); err != nil {
		return err
	}

	hasInstruction := m.InstructionType != ""
	hasEvent := m.Event != ""
	switch {
	case !hasInstruction && !hasEvent:
		return ruleViolation("Metadata", "either instruction_type or event must be provided")
	case hasInstruction && hasEvent:
		return ruleViolation("Metadata", "cannot specify both instruction_type and event")
	}
	return nil
}

// Tag returns the wire name of whichever discriminant is set.
func (m Metadata) Tag() string {
	if m.InstructionType != "" {
		return m.InstructionType.String()
	}
	return m.Event.String()
}
