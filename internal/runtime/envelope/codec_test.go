package envelope

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errspkg "github.com/drblury/busflow/internal/runtime/errors"
)

const paymentWire = `{
	"meta_data": {
		"source": "bank-gateway",
		"created_at": "2024-03-09T14:05:07Z",
		"token": "tok",
		"idempotency_key": "key-1",
		"instruction_type": "PAYMENT"
	},
	"payload": {
		"external_reference": "ext-1",
		"currency": "EUR",
		"value": "10.50",
		"source": "bank",
		"direction": "INBOUND",
		"reference": "ref-1",
		"unexpected": {"nested": true}
	}
}`

func TestRoundTripEveryVariant(t *testing.T) {
	for kind, p := range samplePayloads() {
		t.Run(kind.String(), func(t *testing.T) {
			env := Envelope{Metadata: sampleMetadata(tagOptionFor(kind), WithIPAddress("10.0.0.1")), Payload: p}

			data, err := Encode(env)
			require.NoError(t, err)

			decoded, err := Decode(data)
			require.NoError(t, err)
			assert.Equal(t, env, decoded)
		})
	}
}

func TestEncodeShape(t *testing.T) {
	env := Envelope{
		Metadata: sampleMetadata(WithInstruction(InstructionStatusUpdate)),
		Payload:  StatusUpdatePayload{Reference: "ref", Status: "DONE"},
	}
	data, err := Encode(env)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"meta_data": {
			"source": "ledger-service",
			"created_at": "2024-03-09T14:05:07Z",
			"token": "service-token",
			"idempotency_key": "5f0c7a1e-8f0e-4c1b-9a57-2f4a0a9f3d11",
			"instruction_type": "STATUS_UPDATE"
		},
		"payload": {"reference": "ref", "status": "DONE"}
	}`, string(data))
}

func TestEncodeRawAsString(t *testing.T) {
	env := Envelope{Metadata: sampleMetadata(WithEvent(EventNewUser)), Payload: Raw(`{"not":"parsed"}`)}
	s, err := EncodeString(env)
	require.NoError(t, err)

	var top map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(s), &top))
	assert.Len(t, top, 2)
	assert.JSONEq(t, `"{\"not\":\"parsed\"}"`, string(top["payload"]))
}

func TestEncodeRejectsNilPayload(t *testing.T) {
	_, err := Encode(Envelope{Metadata: sampleMetadata(WithEvent(EventNewUser))})
	assert.Error(t, err)
}

func TestDecodeIgnoresUnknownKeys(t *testing.T) {
	env, err := Decode([]byte(paymentWire))
	require.NoError(t, err)

	p, ok := env.Payload.(PaymentPayload)
	require.True(t, ok)
	assert.Equal(t, DirectionInbound, p.Direction)
	assert.Empty(t, p.PayerName)
	assert.NoError(t, env.Validate())
}

func TestDecodeStringPayloadIsRawEvenWithTag(t *testing.T) {
	data := `{"meta_data":{"source":"s","created_at":"c","token":"t","idempotency_key":"k","instruction_type":"PAYMENT"},"payload":"free text"}`
	env, err := Decode([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, Raw("free text"), env.Payload)
}

func TestDecodeUsesEventTable(t *testing.T) {
	data := `{"meta_data":{"source":"s","created_at":"c","token":"t","idempotency_key":"k","event":"NEW_USER"},
		"payload":{"title":"welcome","identifier":"user-1"}}`
	env, err := Decode([]byte(data))
	require.NoError(t, err)
	// Same shape as ProfileEventPayload; the tag decides.
	assert.Equal(t, NewUserEventPayload{Title: "welcome", Identifier: "user-1"}, env.Payload)
}

func TestDecodeBestEffortWithoutTag(t *testing.T) {
	meta := `{"source":"s","created_at":"c","token":"t","idempotency_key":"k"}`

	env, err := Decode([]byte(`{"meta_data":` + meta + `,"payload":{"reference":"r","status":"s"}}`))
	require.NoError(t, err)
	assert.Equal(t, StatusUpdatePayload{Reference: "r", Status: "s"}, env.Payload)

	// UpdateProfilePayload has no required keys, so it absorbs any object no
	// earlier variant accepted.
	env, err = Decode([]byte(`{"meta_data":` + meta + `,"payload":{"title":"t","identifier":"i"}}`))
	require.NoError(t, err)
	assert.Equal(t, UpdateProfilePayload{}, env.Payload)

	_, err = Decode([]byte(`{"meta_data":` + meta + `,"payload":42}`))
	var derr *errspkg.DecodeError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "payload", derr.Field)
}

func TestDecodeErrors(t *testing.T) {
	meta := `{"source":"s","created_at":"c","token":"t","idempotency_key":"k","instruction_type":"MINT"}`
	tests := []struct {
		name      string
		data      string
		wantField string
	}{
		{"not json", `{"meta_data":`, ""},
		{"array", `[]`, ""},
		{"missing meta_data", `{"payload":"x"}`, "meta_data"},
		{"null meta_data", `{"meta_data":null,"payload":"x"}`, "meta_data"},
		{"missing payload", `{"meta_data":` + meta + `}`, "payload"},
		{"meta_data not object", `{"meta_data":"x","payload":"x"}`, "meta_data"},
		{"missing metadata key", `{"meta_data":{"source":"s","created_at":"c","token":"t"},"payload":"x"}`, "meta_data.idempotency_key"},
		{"unknown instruction", `{"meta_data":{"source":"s","created_at":"c","token":"t","idempotency_key":"k","instruction_type":"REFUND"},"payload":"x"}`, "meta_data"},
		{"missing payload key", `{"meta_data":` + meta + `,"payload":{"value":"1","reference":"r","chain":"c"}}`, "payload.currency"},
		{"null payload key", `{"meta_data":` + meta + `,"payload":{"value":"1","currency":null,"reference":"r","chain":"c"}}`, "payload.currency"},
		{"wrong type", `{"meta_data":` + meta + `,"payload":{"value":1,"currency":"EUR","reference":"r","chain":"c"}}`, "payload"},
		{"payload array", `{"meta_data":` + meta + `,"payload":[1,2]}`, "payload"},
		{"bad enum in payload", `{"meta_data":{"source":"s","created_at":"c","token":"t","idempotency_key":"k","event":"NEW_TRANSACTION"},
			"payload":{"created_at":"c","kind":"REFUND","reference":"r","source":"s"}}`, "payload"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			var derr *errspkg.DecodeError
			require.ErrorAs(t, err, &derr)
			assert.Equal(t, tt.wantField, derr.Field)
		})
	}
}

func TestDecodeDoesNotValidate(t *testing.T) {
	data := `{"meta_data":{"source":"s","created_at":"c","token":"t","idempotency_key":"k","instruction_type":"MINT","event":"NEW_USER"},
		"payload":{"value":" ","currency":"EUR","reference":"r","chain":"c"}}`
	env, err := Decode([]byte(data))
	require.NoError(t, err)
	assert.Error(t, env.Validate())
	assert.Error(t, env.Payload.Validate())
}

func TestEnvelopeJSONMethods(t *testing.T) {
	type record struct {
		Envelope Envelope `json:"envelope"`
	}
	in := record{Envelope: Envelope{Metadata: sampleMetadata(WithInstruction(InstructionBurn)), Payload: samplePayloads()[KindBurn]}}

	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out record
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)

	var broken Envelope
	assert.Error(t, json.Unmarshal([]byte(`{"meta_data":{}}`), &broken))
}

func TestDecodePayload(t *testing.T) {
	p, err := DecodePayload(KindChainPayment, []byte(`{"chain":"c","hash":"h","reference":"r","status":"s"}`))
	require.NoError(t, err)
	assert.Equal(t, ChainPaymentPayload{Chain: "c", Hash: "h", Reference: "r", Status: "s"}, p)

	raw, err := DecodePayload(KindRaw, []byte(`"hello"`))
	require.NoError(t, err)
	assert.Equal(t, Raw("hello"), raw)

	_, err = DecodePayload(PayloadKind(0), []byte(`{}`))
	assert.ErrorIs(t, err, errUnknownKind)
}

func TestEveryKindHasADecoder(t *testing.T) {
	for _, kind := range AllPayloadKinds() {
		_, err := decodeKind(kind, json.RawMessage(`{}`))
		assert.NotErrorIs(t, err, errUnknownKind, kind.String())
	}
}
