package envelope

import (
	"fmt"
	"strings"
)

// InstructionType tags an envelope that asks a service to do something.
type InstructionType string

const (
	InstructionPayment            InstructionType = "PAYMENT"
	InstructionStatusUpdate       InstructionType = "STATUS_UPDATE"
	InstructionCorrection         InstructionType = "CORRECTION"
	InstructionTransaction        InstructionType = "TRANSACTION"
	InstructionBankPaymentRequest InstructionType = "BANK_PAYMENT_REQUEST"
	InstructionChainPayment       InstructionType = "CHAIN_PAYMENT"
	InstructionUpdateProfile      InstructionType = "UPDATE_PROFILE"
	InstructionMint               InstructionType = "MINT"
	InstructionBurn               InstructionType = "BURN"
)

// AllInstructionTypes lists every instruction tag in declaration order.
func AllInstructionTypes() []InstructionType {
	return []InstructionType{
		InstructionPayment,
		InstructionStatusUpdate,
		InstructionCorrection,
		InstructionTransaction,
		InstructionBankPaymentRequest,
		InstructionChainPayment,
		InstructionUpdateProfile,
		InstructionMint,
		InstructionBurn,
	}
}

func (t InstructionType) String() string { return string(t) }

// Valid reports whether t is one of the declared instruction tags.
func (t InstructionType) Valid() bool {
	_, ok := PayloadKindForInstruction(t)
	return ok
}

func (t InstructionType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("unknown instruction_type %q", string(t))
	}
	return []byte(t), nil
}

func (t *InstructionType) UnmarshalText(text []byte) error {
	parsed := InstructionType(text)
	if !parsed.Valid() {
		return fmt.Errorf("unknown instruction_type %q", string(text))
	}
	*t = parsed
	return nil
}

// EventType tags an envelope that notifies about something that happened.
type EventType string

const (
	EventNewTransaction          EventType = "NEW_TRANSACTION"
	EventTransactionStatusUpdate EventType = "TRANSACTION_STATUS_UPDATE"
	EventPayment                 EventType = "PAYMENT"
	EventBankPayment             EventType = "BANK_PAYMENT"
	EventNewProfile              EventType = "NEW_PROFILE"
	EventNewUser                 EventType = "NEW_USER"
	EventVerificationRequested   EventType = "VERIFICATION_REQUESTED"
	EventPasswordResetRequested  EventType = "PASSWORD_RESET_REQUESTED"
	EventKyc                     EventType = "KYC_EVENT"
)

// AllEventTypes lists every event tag in declaration order.
func AllEventTypes() []EventType {
	return []EventType{
		EventNewTransaction,
		EventTransactionStatusUpdate,
		EventPayment,
		EventBankPayment,
		EventNewProfile,
		EventNewUser,
		EventVerificationRequested,
		EventPasswordResetRequested,
		EventKyc,
	}
}

func (t EventType) String() string { return string(t) }

// Valid reports whether t is one of the declared event tags.
func (t EventType) Valid() bool {
	_, ok := PayloadKindForEvent(t)
	return ok
}

func (t EventType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("unknown event %q", string(t))
	}
	return []byte(t), nil
}

func (t *EventType) UnmarshalText(text []byte) error {
	parsed := EventType(text)
	if !parsed.Valid() {
		return fmt.Errorf("unknown event %q", string(text))
	}
	*t = parsed
	return nil
}

// TransactionType is the business kind of a ledger transaction.
type TransactionType string

const (
	TransactionDeposit  TransactionType = "DEPOSIT"
	TransactionWithdraw TransactionType = "WITHDRAW"
	TransactionTransfer TransactionType = "TRANSFER"
)

// AllTransactionTypes lists every transaction type in declaration order.
func AllTransactionTypes() []TransactionType {
	return []TransactionType{TransactionDeposit, TransactionWithdraw, TransactionTransfer}
}

func (t TransactionType) String() string { return string(t) }

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionDeposit, TransactionWithdraw, TransactionTransfer:
		return true
	}
	return false
}

func (t TransactionType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("unknown transaction type %q", string(t))
	}
	return []byte(t), nil
}

func (t *TransactionType) UnmarshalText(text []byte) error {
	parsed := TransactionType(text)
	if !parsed.Valid() {
		return fmt.Errorf("unknown transaction type %q", string(text))
	}
	*t = parsed
	return nil
}

// PaymentDirection tells whether money flows into or out of the platform.
type PaymentDirection string

const (
	DirectionInbound  PaymentDirection = "INBOUND"
	DirectionOutbound PaymentDirection = "OUTBOUND"
	DirectionBoth     PaymentDirection = "BOTH"
)

// DefaultPaymentDirection is used when a caller has no direction to state.
const DefaultPaymentDirection = DirectionInbound

// AllPaymentDirections lists every direction in declaration order.
func AllPaymentDirections() []PaymentDirection {
	return []PaymentDirection{DirectionInbound, DirectionOutbound, DirectionBoth}
}

func (d PaymentDirection) String() string { return string(d) }

func (d PaymentDirection) Valid() bool {
	switch d {
	case DirectionInbound, DirectionOutbound, DirectionBoth:
		return true
	}
	return false
}

func (d PaymentDirection) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("unknown payment direction %q", string(d))
	}
	return []byte(d), nil
}

func (d *PaymentDirection) UnmarshalText(text []byte) error {
	parsed := PaymentDirection(text)
	if !parsed.Valid() {
		return fmt.Errorf("unknown payment direction %q", string(text))
	}
	*d = parsed
	return nil
}

// ParsePaymentDirection accepts any letter case and optional surrounding
// double quotes, so `"outbound"` and OUTBOUND both parse.
func ParsePaymentDirection(s string) (PaymentDirection, error) {
	d := PaymentDirection(strings.ToUpper(strings.Trim(strings.TrimSpace(s), `"`)))
	if !d.Valid() {
		return "", fmt.Errorf("unknown payment direction %q", s)
	}
	return d, nil
}
