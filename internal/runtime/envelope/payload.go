package envelope

import "fmt"

// PayloadKind identifies a concrete payload shape.
type PayloadKind int

const (
	KindPayment PayloadKind = iota + 1
	KindStatusUpdate
	KindCorrection
	KindTransaction
	KindBankPaymentRequest
	KindChainPayment
	KindUpdateProfile
	KindMint
	KindBurn

	KindNewTransaction
	KindTransactionStatus
	KindPaymentEvent
	KindBankPayment
	KindProfile
	KindNewUser
	KindKyc
	KindPasswordReset
	KindVerificationRequested

	KindRaw
)

var payloadKindNames = [...]string{
	KindPayment:               "PaymentPayload",
	KindStatusUpdate:          "StatusUpdatePayload",
	KindCorrection:            "CorrectionPayload",
	KindTransaction:           "TransactionPayload",
	KindBankPaymentRequest:    "BankPaymentRequestPayload",
	KindChainPayment:          "ChainPaymentPayload",
	KindUpdateProfile:         "UpdateProfilePayload",
	KindMint:                  "MintPayload",
	KindBurn:                  "BurnPayload",
	KindNewTransaction:        "NewTransactionEventPayload",
	KindTransactionStatus:     "TransactionStatusEventPayload",
	KindPaymentEvent:          "PaymentEventPayload",
	KindBankPayment:           "BankPaymentEventPayload",
	KindProfile:               "ProfileEventPayload",
	KindNewUser:               "NewUserEventPayload",
	KindKyc:                   "KycEventPayload",
	KindPasswordReset:         "PasswordResetEventPayload",
	KindVerificationRequested: "VerificationRequestedEventPayload",
	KindRaw:                   "Raw",
}

func (k PayloadKind) String() string {
	if k > 0 && int(k) < len(payloadKindNames) {
		return payloadKindNames[k]
	}
	return fmt.Sprintf("PayloadKind(%d)", int(k))
}

// AllPayloadKinds lists every structured kind in declaration order. Raw is
// excluded because it is never matched structurally.
func AllPayloadKinds() []PayloadKind {
	kinds := make([]PayloadKind, 0, int(KindRaw)-1)
	for k := KindPayment; k < KindRaw; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// Payload is the closed set of message bodies. Only types in this package
// implement it.
type Payload interface {
	Kind() PayloadKind
	Validate() error
	isPayload()
}

// NewPayload validates p and returns it, so callers get a checked value in
// one step:
//
//	p, err := envelope.NewPayload(envelope.MintPayload{...})
func NewPayload[P Payload](p P) (P, error) {
	if err := p.Validate(); err != nil {
		var zero P
		return zero, err
	}
	return p, nil
}

// Raw is an uninterpreted string body. It is never validated.
type Raw string

func (Raw) Kind() PayloadKind { return KindRaw }
func (Raw) Validate() error   { return nil }
func (Raw) isPayload()        {}

// PayloadKindForInstruction returns the payload kind an instruction carries.
func PayloadKindForInstruction(t InstructionType) (PayloadKind, bool) {
	switch t {
	case InstructionPayment:
		return KindPayment, true
	case InstructionStatusUpdate:
		return KindStatusUpdate, true
	case InstructionCorrection:
		return KindCorrection, true
	case InstructionTransaction:
		return KindTransaction, true
	case InstructionBankPaymentRequest:
		return KindBankPaymentRequest, true
	case InstructionChainPayment:
		return KindChainPayment, true
	case InstructionUpdateProfile:
		return KindUpdateProfile, true
	case InstructionMint:
		return KindMint, true
	case InstructionBurn:
		return KindBurn, true
	}
	return 0, false
}

// PayloadKindForEvent returns the payload kind an event carries.
func PayloadKindForEvent(t EventType) (PayloadKind, bool) {
	switch t {
	case EventNewTransaction:
		return KindNewTransaction, true
	case EventTransactionStatusUpdate:
		return KindTransactionStatus, true
	case EventPayment:
		return KindPaymentEvent, true
	case EventBankPayment:
		return KindBankPayment, true
	case EventNewProfile:
		return KindProfile, true
	case EventNewUser:
		return KindNewUser, true
	case EventKyc:
		return KindKyc, true
	case EventPasswordResetRequested:
		return KindPasswordReset, true
	case EventVerificationRequested:
		return KindVerificationRequested, true
	}
	return 0, false
}

func init() {
	for _, t := range AllInstructionTypes() {
		if _, ok := PayloadKindForInstruction(t); !ok {
			panic(fmt.Sprintf("envelope: instruction_type %s has no payload kind", t))
		}
	}
	for _, t := range AllEventTypes() {
		if _, ok := PayloadKindForEvent(t); !ok {
			panic(fmt.Sprintf("envelope: event %s has no payload kind", t))
		}
	}
}
