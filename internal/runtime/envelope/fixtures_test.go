package envelope

import "time"

var fixedTime = time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

// samplePayloads returns one fully populated, valid value per structured kind.
func samplePayloads() map[PayloadKind]Payload {
	return map[PayloadKind]Payload{
		KindPayment: PaymentPayload{
			ExternalReference: "ext-1", PayerName: "Ada Lovelace", Currency: "EUR", Value: "10.50",
			Source: "bank", Direction: DirectionOutbound, Reference: "ref-1", BankAccountNumber: "DE89370400440532013000",
		},
		KindStatusUpdate: StatusUpdatePayload{Reference: "ref-2", Status: "SETTLED", Message: "ok", TransactionID: "tx-2"},
		KindCorrection:   CorrectionPayload{Reference: "ref-3", Value: "-1.00", Message: "fee refund", Currency: "EUR", Source: "ops"},
		KindTransaction: TransactionPayload{
			ExternalReference: "ext-4", Source: "anchor", Reference: "ref-4", FirstName: "Ada", LastName: "Lovelace",
			TransactionType: TransactionDeposit, Status: "PENDING", IncomingCurrency: "EUR", OutgoingCurrency: "USDC",
			Value: "100", Fee: "0.5", Payer: "Ada Lovelace", Payee: "wallet-1",
		},
		KindBankPaymentRequest: BankPaymentRequestPayload{Reference: "ref-5", Value: "20", Currency: "EUR", ProfileID: "prof-5", Message: "payout"},
		KindChainPayment:       ChainPaymentPayload{Chain: "stellar", Hash: "0xabc", Reference: "ref-6", Status: "CONFIRMED", TransactionID: "tx-6"},
		KindUpdateProfile: UpdateProfilePayload{
			AddressLine1: "1 Main St", AddressLine2: "Apt 2", BankAccountNumber: "123", BankNumber: "456",
			TaxID: "TX1", TaxIDName: "VAT", IDCountryCode: "DE", SuspendedAt: "2024-01-01T00:00:00Z", DeletedAt: "2024-02-01T00:00:00Z",
		},
		KindMint:                  MintPayload{Value: "5", Currency: "EURC", Reference: "ref-8", Chain: "stellar", Message: "mint"},
		KindBurn:                  BurnPayload{Value: "5", Currency: "EURC", Reference: "ref-9", Chain: "stellar", Message: "burn"},
		KindNewTransaction:        NewTransactionEventPayload{CreatedAt: "2024-03-09T14:05:07Z", TransactionKind: TransactionWithdraw, Reference: "ref-10", Source: "ledger"},
		KindTransactionStatus:     TransactionStatusEventPayload{ExternalReference: "ext-11", Reference: "ref-11", Status: "DONE"},
		KindPaymentEvent:          PaymentEventPayload{ExternalReference: "ext-12", Reference: "ref-12", Source: "bank"},
		KindBankPayment:           BankPaymentEventPayload{TransactionID: "tx-13", Status: "PAID", Reference: "ref-13", Message: "done"},
		KindProfile:               ProfileEventPayload{Title: "profile created", Identifier: "prof-14"},
		KindNewUser:               NewUserEventPayload{Title: "user created", Identifier: "user-15"},
		KindKyc:                   KycEventPayload{Title: "kyc", Identifier: "user-16", ReviewStatus: "completed", ReviewResult: "GREEN"},
		KindPasswordReset:         PasswordResetEventPayload{To: "ada@example.com", Subject: "Reset your password"},
		KindVerificationRequested: VerificationRequestedEventPayload{To: "ada@example.com", Subject: "Verify your email"},
	}
}

// tagOptionFor returns the metadata option whose tag expects kind.
func tagOptionFor(kind PayloadKind) Option {
	for _, t := range AllInstructionTypes() {
		if k, _ := PayloadKindForInstruction(t); k == kind {
			return WithInstruction(t)
		}
	}
	for _, t := range AllEventTypes() {
		if k, _ := PayloadKindForEvent(t); k == kind {
			return WithEvent(t)
		}
	}
	return nil
}

func sampleMetadata(opts ...Option) Metadata {
	md := Metadata{
		Source:         "ledger-service",
		CreatedAt:      FormatCreatedAt(fixedTime),
		Token:          "service-token",
		IdempotencyKey: "5f0c7a1e-8f0e-4c1b-9a57-2f4a0a9f3d11",
	}
	for _, opt := range opts {
		opt(&md)
	}
	return md
}
