package envelope

import "strings"

// PaymentPayload instructs the ledger to book a payment.
type PaymentPayload struct {
	ExternalReference string           `json:"external_reference"`
	PayerName         string           `json:"payer_name,omitempty"`
	Currency          string           `json:"currency"`
	Value             string           `json:"value"`
	Source            string           `json:"source"`
	Direction         PaymentDirection `json:"direction"`
	Reference         string           `json:"reference"`
	BankAccountNumber string           `json:"bank_account_number,omitempty"`
}

func (PaymentPayload) Kind() PayloadKind { return KindPayment }
func (PaymentPayload) isPayload()        {}

func (p PaymentPayload) Validate() error {
	return requireFields("PaymentPayload",
		field{"external_reference", p.ExternalReference},
		field{"currency", p.Currency},
		field{"value", p.Value},
		field{"source", p.Source},
		field{"direction", string(p.Direction)},
		field{"reference", p.Reference},
	)
}

// StatusUpdatePayload moves an existing transaction to a new status.
type StatusUpdatePayload struct {
	Reference     string `json:"reference"`
	Status        string `json:"status"`
	Message       string `json:"message,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`
}

func (StatusUpdatePayload) Kind() PayloadKind { return KindStatusUpdate }
func (StatusUpdatePayload) isPayload()        {}

func (p StatusUpdatePayload) Validate() error {
	return requireFields("StatusUpdatePayload",
		field{"reference", p.Reference},
		field{"status", p.Status},
	)
}

// CorrectionPayload adjusts the value of a booked transaction.
type CorrectionPayload struct {
	Reference string `json:"reference"`
	Value     string `json:"value"`
	Message   string `json:"message"`
	Currency  string `json:"currency"`
	Source    string `json:"source"`
}

func (CorrectionPayload) Kind() PayloadKind { return KindCorrection }
func (CorrectionPayload) isPayload()        {}

func (p CorrectionPayload) Validate() error {
	return requireFields("CorrectionPayload",
		field{"reference", p.Reference},
		field{"value", p.Value},
		field{"message", p.Message},
		field{"currency", p.Currency},
		field{"source", p.Source},
	)
}

// TransactionPayload opens a new ledger transaction. Deposits must name the
// payer and withdrawals the payee.
type TransactionPayload struct {
	ExternalReference string          `json:"external_reference"`
	Source            string          `json:"source"`
	Reference         string          `json:"reference"`
	FirstName         string          `json:"first_name"`
	LastName          string          `json:"last_name"`
	TransactionType   TransactionType `json:"transaction_type"`
	Status            string          `json:"status"`
	IncomingCurrency  string          `json:"incoming_currency"`
	OutgoingCurrency  string          `json:"outgoing_currency"`
	Value             string          `json:"value"`
	Fee               string          `json:"fee"`
	Payer             string          `json:"payer,omitempty"`
	Payee             string          `json:"payee,omitempty"`
}

func (TransactionPayload) Kind() PayloadKind { return KindTransaction }
func (TransactionPayload) isPayload()        {}

// Validate checks the type-specific party first, then the required fields.
func (p TransactionPayload) Validate() error {
	switch p.TransactionType {
	case TransactionDeposit:
		if isBlank(p.Payer) {
			return ruleViolation("TransactionPayload", "payer (required for DEPOSIT transactions)")
		}
	case TransactionWithdraw:
		if isBlank(p.Payee) {
			return ruleViolation("TransactionPayload", "payee (required for WITHDRAW transactions)")
		}
	}

	return requireFields("TransactionPayload",
		field{"external_reference", p.ExternalReference},
		field{"source", p.Source},
		field{"reference", p.Reference},
		field{"first_name", p.FirstName},
		field{"last_name", p.LastName},
		field{"transaction_type", string(p.TransactionType)},
		field{"status", p.Status},
		field{"incoming_currency", p.IncomingCurrency},
		field{"outgoing_currency", p.OutgoingCurrency},
		field{"value", p.Value},
		field{"fee", p.Fee},
	)
}

// BankPaymentRequestPayload asks the banking gateway to pay out to a profile.
type BankPaymentRequestPayload struct {
	Reference string `json:"reference"`
	Value     string `json:"value"`
	Currency  string `json:"currency"`
	ProfileID string `json:"profile_id"`
	Message   string `json:"message,omitempty"`
}

func (BankPaymentRequestPayload) Kind() PayloadKind { return KindBankPaymentRequest }
func (BankPaymentRequestPayload) isPayload()        {}

func (p BankPaymentRequestPayload) Validate() error {
	return requireFields("BankPaymentRequestPayload",
		field{"reference", p.Reference},
		field{"value", p.Value},
		field{"currency", p.Currency},
		field{"profile_id", p.ProfileID},
	)
}

// ChainPaymentPayload reports an on-chain transfer back to an anchor.
type ChainPaymentPayload struct {
	Chain         string `json:"chain"`
	Hash          string `json:"hash"`
	Reference     string `json:"reference"`
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id,omitempty"`
}

func (ChainPaymentPayload) Kind() PayloadKind { return KindChainPayment }
func (ChainPaymentPayload) isPayload()        {}

func (p ChainPaymentPayload) Validate() error {
	return requireFields("ChainPaymentPayload",
		field{"chain", p.Chain},
		field{"hash", p.Hash},
		field{"reference", p.Reference},
		field{"status", p.Status},
	)
}

// UpdateProfilePayload patches a profile. Every field is optional.
type UpdateProfilePayload struct {
	AddressLine1      string `json:"address_line_1,omitempty"`
	AddressLine2      string `json:"address_line_2,omitempty"`
	BankAccountNumber string `json:"bank_account_number,omitempty"`
	BankNumber        string `json:"bank_number,omitempty"`
	TaxID             string `json:"tax_id,omitempty"`
	TaxIDName         string `json:"tax_id_name,omitempty"`
	IDCountryCode     string `json:"id_country_code,omitempty"`
	SuspendedAt       string `json:"suspended_at,omitempty"`
	DeletedAt         string `json:"deleted_at,omitempty"`
}

func (UpdateProfilePayload) Kind() PayloadKind { return KindUpdateProfile }
func (UpdateProfilePayload) isPayload()        {}
func (UpdateProfilePayload) Validate() error   { return nil }

// IsEmpty reports whether the patch changes nothing.
func (p UpdateProfilePayload) IsEmpty() bool {
	return strings.TrimSpace(p.AddressLine1+p.AddressLine2+p.BankAccountNumber+p.BankNumber+
		p.TaxID+p.TaxIDName+p.IDCountryCode+p.SuspendedAt+p.DeletedAt) == ""
}

// MintPayload converts fiat into a crypto asset.
type MintPayload struct {
	Value     string `json:"value"`
	Currency  string `json:"currency"`
	Reference string `json:"reference"`
	Chain     string `json:"chain"`
	Message   string `json:"message,omitempty"`
}

func (MintPayload) Kind() PayloadKind { return KindMint }
func (MintPayload) isPayload()        {}

func (p MintPayload) Validate() error {
	return requireFields("MintPayload",
		field{"value", p.Value},
		field{"currency", p.Currency},
		field{"reference", p.Reference},
		field{"chain", p.Chain},
	)
}

// BurnPayload converts a crypto asset back into fiat.
type BurnPayload struct {
	Value     string `json:"value"`
	Currency  string `json:"currency"`
	Reference string `json:"reference"`
	Chain     string `json:"chain"`
	Message   string `json:"message,omitempty"`
}

func (BurnPayload) Kind() PayloadKind { return KindBurn }
func (BurnPayload) isPayload()        {}

func (p BurnPayload) Validate() error {
	return requireFields("BurnPayload",
		field{"value", p.Value},
		field{"currency", p.Currency},
		field{"reference", p.Reference},
		field{"chain", p.Chain},
	)
}
