package envelope

import "strings"

// NewTransactionEventPayload announces that a transaction was opened.
type NewTransactionEventPayload struct {
	CreatedAt       string          `json:"created_at"`
	TransactionKind TransactionType `json:"kind"`
	Reference       string          `json:"reference"`
	Source          string          `json:"source"`
}

func (NewTransactionEventPayload) Kind() PayloadKind { return KindNewTransaction }
func (NewTransactionEventPayload) isPayload()        {}

func (p NewTransactionEventPayload) Validate() error {
	return requireFields("NewTransactionEventPayload",
		field{"created_at", p.CreatedAt},
		field{"kind", string(p.TransactionKind)},
		field{"reference", p.Reference},
		field{"source", p.Source},
	)
}

// TransactionStatusEventPayload announces a transaction status change.
type TransactionStatusEventPayload struct {
	ExternalReference string `json:"external_reference,omitempty"`
	Reference         string `json:"reference"`
	Status            string `json:"status"`
}

func (TransactionStatusEventPayload) Kind() PayloadKind { return KindTransactionStatus }
func (TransactionStatusEventPayload) isPayload()        {}

func (p TransactionStatusEventPayload) Validate() error {
	return requireFields("TransactionStatusEventPayload",
		field{"reference", p.Reference},
		field{"status", p.Status},
	)
}

// PaymentEventPayload announces that a payment was received.
type PaymentEventPayload struct {
	ExternalReference string `json:"external_reference"`
	Reference         string `json:"reference,omitempty"`
	Source            string `json:"source"`
}

func (PaymentEventPayload) Kind() PayloadKind { return KindPaymentEvent }
func (PaymentEventPayload) isPayload()        {}

func (p PaymentEventPayload) Validate() error {
	return requireFields("PaymentEventPayload",
		field{"external_reference", p.ExternalReference},
		field{"source", p.Source},
	)
}

// BankPaymentEventPayload reports the outcome of a bank payment request.
type BankPaymentEventPayload struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	Reference     string `json:"reference"`
	Message       string `json:"message,omitempty"`
}

func (BankPaymentEventPayload) Kind() PayloadKind { return KindBankPayment }
func (BankPaymentEventPayload) isPayload()        {}

func (p BankPaymentEventPayload) Validate() error {
	return requireFields("BankPaymentEventPayload",
		field{"transaction_id", p.TransactionID},
		field{"status", p.Status},
		field{"reference", p.Reference},
	)
}

// ProfileEventPayload announces a new profile.
type ProfileEventPayload struct {
	Title      string `json:"title"`
	Identifier string `json:"identifier"`
}

func (ProfileEventPayload) Kind() PayloadKind { return KindProfile }
func (ProfileEventPayload) isPayload()        {}

func (p ProfileEventPayload) Validate() error {
	return requireFields("ProfileEventPayload",
		field{"title", p.Title},
		field{"identifier", p.Identifier},
	)
}

// NewUserEventPayload announces a new user account.
type NewUserEventPayload struct {
	Title      string `json:"title"`
	Identifier string `json:"identifier"`
}

func (NewUserEventPayload) Kind() PayloadKind { return KindNewUser }
func (NewUserEventPayload) isPayload()        {}

func (p NewUserEventPayload) Validate() error {
	return requireFields("NewUserEventPayload",
		field{"title", p.Title},
		field{"identifier", p.Identifier},
	)
}

// KycEventPayload relays a KYC provider review. A completed review must carry
// its result.
type KycEventPayload struct {
	Title        string `json:"title"`
	Identifier   string `json:"identifier"`
	ReviewStatus string `json:"review_status,omitempty"`
	ReviewResult string `json:"review_result,omitempty"`
}

func (KycEventPayload) Kind() PayloadKind { return KindKyc }
func (KycEventPayload) isPayload()        {}

func (p KycEventPayload) Validate() error {
	if err := requireFields("KycEventPayload",
		field{"title", p.Title},
		field{"identifier", p.Identifier},
	); err != nil {
		return err
	}
	if strings.EqualFold(p.ReviewStatus, "completed") && isBlank(p.ReviewResult) {
		return ruleViolation("KycEventPayload", "review_result must be provided if review_status is completed")
	}
	return nil
}

// PasswordResetEventPayload asks the mailer to send a password reset.
type PasswordResetEventPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
}

func (PasswordResetEventPayload) Kind() PayloadKind { return KindPasswordReset }
func (PasswordResetEventPayload) isPayload()        {}

func (p PasswordResetEventPayload) Validate() error {
	return requireFields("PasswordResetEventPayload",
		field{"to", p.To},
		field{"subject", p.Subject},
	)
}

// VerificationRequestedEventPayload asks the mailer to send a verification.
type VerificationRequestedEventPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
}

func (VerificationRequestedEventPayload) Kind() PayloadKind { return KindVerificationRequested }
func (VerificationRequestedEventPayload) isPayload()        {}

func (p VerificationRequestedEventPayload) Validate() error {
	return requireFields("VerificationRequestedEventPayload",
		field{"to", p.To},
		field{"subject", p.Subject},
	)
}
