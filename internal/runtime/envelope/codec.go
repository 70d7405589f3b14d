package envelope

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	errspkg "github.com/drblury/busflow/internal/runtime/errors"
	"github.com/drblury/busflow/internal/runtime/jsoncodec"
)

var (
	errMissingField = errors.New("required field is missing")
	errNotObject    = errors.New("expected a JSON object")
	errNoVariant    = errors.New("payload matches no known variant")
	errUnknownKind  = errors.New("unknown payload kind")
	errNilPayload   = errors.New("payload is nil")
	nullLiteral     = []byte("null")
)

type wireEnvelope struct {
	MetaData Metadata `json:"meta_data"`
	Payload  Payload  `json:"payload"`
}

// Encode renders e as {"meta_data": ..., "payload": ...}. A Raw payload is
// written as a JSON string.
func Encode(e Envelope) ([]byte, error) {
	if e.Payload == nil {
		return nil, errNilPayload
	}
	return jsoncodec.Marshal(wireEnvelope{MetaData: e.Metadata, Payload: e.Payload})
}

// EncodeString is Encode returning a string.
func EncodeString(e Envelope) (string, error) {
	data, err := Encode(e)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (e Envelope) MarshalJSON() ([]byte, error) {
	return Encode(e)
}

func (e *Envelope) UnmarshalJSON(data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	*e = decoded
	return nil
}

// Decode parses data into an Envelope. The payload shape is chosen by, in
// order: a JSON string (Raw), the instruction_type tag, the event tag, and
// finally the first variant in declaration order that accepts the object.
// Decode never calls Validate. Every failure is an *errors.DecodeError.
func Decode(data []byte) (Envelope, error) {
	var top map[string]json.RawMessage
	if err := jsoncodec.Unmarshal(data, &top); err != nil {
		return Envelope{}, &errspkg.DecodeError{Err: err}
	}

	metaRaw, ok := top["meta_data"]
	if !ok || isNull(metaRaw) {
		return Envelope{}, &errspkg.DecodeError{Field: "meta_data", Err: errMissingField}
	}
	payloadRaw, ok := top["payload"]
	if !ok || isNull(payloadRaw) {
		return Envelope{}, &errspkg.DecodeError{Field: "payload", Err: errMissingField}
	}

	var md Metadata
	if err := decodeStrict(metaRaw, &md, "meta_data"); err != nil {
		return Envelope{}, err
	}

	payload, err := decodePayload(md, payloadRaw)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Metadata: md, Payload: payload}, nil
}

func decodePayload(md Metadata, raw json.RawMessage) (Payload, error) {
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := jsoncodec.Unmarshal(trimmed, &s); err != nil {
			return nil, &errspkg.DecodeError{Field: "payload", Err: err}
		}
		return Raw(s), nil
	}

	if md.InstructionType != "" {
		kind, _ := PayloadKindForInstruction(md.InstructionType)
		return decodeKind(kind, raw)
	}
	if md.Event != "" {
		kind, _ := PayloadKindForEvent(md.Event)
		return decodeKind(kind, raw)
	}

	for _, kind := range AllPayloadKinds() {
		if p, err := decodeKind(kind, raw); err == nil {
			return p, nil
		}
	}
	return nil, &errspkg.DecodeError{Field: "payload", Err: errNoVariant}
}

// DecodePayload decodes raw as the given kind with the same strictness as
// Decode.
func DecodePayload(kind PayloadKind, raw []byte) (Payload, error) {
	if kind == KindRaw {
		var s string
		if err := jsoncodec.Unmarshal(raw, &s); err != nil {
			return nil, &errspkg.DecodeError{Field: "payload", Err: err}
		}
		return Raw(s), nil
	}
	return decodeKind(kind, raw)
}

func decodeKind(kind PayloadKind, raw json.RawMessage) (Payload, error) {
	switch kind {
	case KindPayment:
		return decodeVariant[PaymentPayload](raw)
	case KindStatusUpdate:
		return decodeVariant[StatusUpdatePayload](raw)
	case KindCorrection:
		return decodeVariant[CorrectionPayload](raw)
	case KindTransaction:
		return decodeVariant[TransactionPayload](raw)
	case KindBankPaymentRequest:
		return decodeVariant[BankPaymentRequestPayload](raw)
	case KindChainPayment:
		return decodeVariant[ChainPaymentPayload](raw)
	case KindUpdateProfile:
		return decodeVariant[UpdateProfilePayload](raw)
	case KindMint:
		return decodeVariant[MintPayload](raw)
	case KindBurn:
		return decodeVariant[BurnPayload](raw)
	case KindNewTransaction:
		return decodeVariant[NewTransactionEventPayload](raw)
	case KindTransactionStatus:
		return decodeVariant[TransactionStatusEventPayload](raw)
	case KindPaymentEvent:
		return decodeVariant[PaymentEventPayload](raw)
	case KindBankPayment:
		return decodeVariant[BankPaymentEventPayload](raw)
	case KindProfile:
		return decodeVariant[ProfileEventPayload](raw)
	case KindNewUser:
		return decodeVariant[NewUserEventPayload](raw)
	case KindKyc:
		return decodeVariant[KycEventPayload](raw)
	case KindPasswordReset:
		return decodeVariant[PasswordResetEventPayload](raw)
	case KindVerificationRequested:
		return decodeVariant[VerificationRequestedEventPayload](raw)
	}
	return nil, &errspkg.DecodeError{Field: "payload", Err: fmt.Errorf("%w: %s", errUnknownKind, kind)}
}

func decodeVariant[P Payload](raw json.RawMessage) (Payload, error) {
	var p P
	if err := decodeStrict(raw, &p, "payload"); err != nil {
		return nil, err
	}
	return p, nil
}

// decodeStrict unmarshals an object into v after checking that every field
// without omitempty is present and not null. Unknown keys are ignored.
func decodeStrict(raw json.RawMessage, v any, path string) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return &errspkg.DecodeError{Field: path, Err: errNotObject}
	}

	var keys map[string]json.RawMessage
	if err := jsoncodec.Unmarshal(trimmed, &keys); err != nil {
		return &errspkg.DecodeError{Field: path, Err: err}
	}
	for _, name := range requiredKeys(reflect.TypeOf(v).Elem()) {
		if value, ok := keys[name]; !ok || isNull(value) {
			return &errspkg.DecodeError{Field: path + "." + name, Err: errMissingField}
		}
	}

	if err := jsoncodec.Unmarshal(trimmed, v); err != nil {
		return &errspkg.DecodeError{Field: path, Err: err}
	}
	return nil
}

// requiredKeys lists the JSON names of struct fields tagged without omitempty.
func requiredKeys(t reflect.Type) []string {
	keys := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		tag, ok := t.Field(i).Tag.Lookup("json")
		if !ok || tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		if strings.Contains(opts, "omitempty") {
			continue
		}
		keys = append(keys, name)
	}
	return keys
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), nullLiteral)
}
