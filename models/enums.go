package models

import (
	"encoding/json"
	"errors"
	"strconv"
)

type EntryKind string

const (
	EntryKindCredit EntryKind = "CREDIT"
	EntryKindDebit  EntryKind = "DEBIT"
)

func (t EntryKind) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(string(t))), nil
}

func (t *EntryKind) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return errors.New("entry kind must be string")
	}
	switch str {
	case "CREDIT":
		*t = EntryKindCredit
	case "DEBIT":
		*t = EntryKindDebit
	default:
		return errors.New("invalid entry kind")
	}
	return nil
}

// EntryOrigin makes bootstrap and manual entries structurally
// distinguishable instead of matching description text.
type EntryOrigin string

const (
	EntryOriginOpeningBalance   EntryOrigin = "OPENING_BALANCE"
	EntryOriginManualAdjustment EntryOrigin = "MANUAL_ADJUSTMENT"
	EntryOriginPaymentDebit     EntryOrigin = "PAYMENT_DEBIT"
)

func (t EntryOrigin) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(string(t))), nil
}

func (t *EntryOrigin) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return errors.New("entry origin must be string")
	}
	switch str {
	case "OPENING_BALANCE":
		*t = EntryOriginOpeningBalance
	case "MANUAL_ADJUSTMENT":
		*t = EntryOriginManualAdjustment
	case "PAYMENT_DEBIT":
		*t = EntryOriginPaymentDebit
	default:
		return errors.New("invalid entry origin")
	}
	return nil
}

type FundingSourceType string

const (
	FundingSourceTypeSavings  FundingSourceType = "SAVINGS"
	FundingSourceTypeBankLoan FundingSourceType = "BANK_LOAN"
	FundingSourceTypeFamily   FundingSourceType = "FAMILY"
	FundingSourceTypeSale     FundingSourceType = "SALE"
	FundingSourceTypeOther    FundingSourceType = "OTHER"
)

type ExpenseStatus string

const (
	ExpenseStatusUnpaid  ExpenseStatus = "UNPAID"
	ExpenseStatusPartial ExpenseStatus = "PARTIAL"
	ExpenseStatusPaid    ExpenseStatus = "PAID"
)

type ExpenseType string

const (
	ExpenseTypeMaterial ExpenseType = "MATERIAL"
	ExpenseTypeLabor    ExpenseType = "LABOR"
	ExpenseTypeFees     ExpenseType = "FEES"
	ExpenseTypeGovt     ExpenseType = "GOVT"
	ExpenseTypeOther    ExpenseType = "OTHER"
)

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCheck        PaymentMethod = "CHECK"
	PaymentMethodUpi          PaymentMethod = "UPI"
	PaymentMethodOther        PaymentMethod = "OTHER"
)

func (t *PaymentMethod) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return errors.New("payment method must be string")
	}
	switch str {
	case "CASH":
		*t = PaymentMethodCash
	case "BANK_TRANSFER":
		*t = PaymentMethodBankTransfer
	case "CHECK":
		*t = PaymentMethodCheck
	case "UPI":
		*t = PaymentMethodUpi
	case "OTHER":
		*t = PaymentMethodOther
	default:
		return errors.New("invalid payment method")
	}
	return nil
}

type TransactionKind string

const (
	TransactionKindReceipt     TransactionKind = "RECEIPT"
	TransactionKindConsumption TransactionKind = "CONSUMPTION"
	TransactionKindReturn      TransactionKind = "RETURN"
	TransactionKindWastage     TransactionKind = "WASTAGE"
)

func (t *TransactionKind) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return errors.New("transaction kind must be string")
	}
	switch str {
	case "RECEIPT":
		*t = TransactionKindReceipt
	case "CONSUMPTION":
		*t = TransactionKindConsumption
	case "RETURN":
		*t = TransactionKindReturn
	case "WASTAGE":
		*t = TransactionKindWastage
	default:
		return errors.New("invalid transaction kind")
	}
	return nil
}

// IsOutgoing reports whether the kind draws stock down.
func (t TransactionKind) IsOutgoing() bool {
	return t == TransactionKindConsumption || t == TransactionKindWastage
}

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusReceived  TransactionStatus = "RECEIVED"
	TransactionStatusCancelled TransactionStatus = "CANCELLED"
)

func (t *TransactionStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return errors.New("transaction status must be string")
	}
	switch str {
	case "PENDING":
		*t = TransactionStatusPending
	case "RECEIVED":
		*t = TransactionStatusReceived
	case "CANCELLED":
		*t = TransactionStatusCancelled
	default:
		return errors.New("invalid transaction status")
	}
	return nil
}

type MaterialUnit string

const (
	MaterialUnitTipper  MaterialUnit = "TIPPER"
	MaterialUnitTractor MaterialUnit = "TRACTOR"
	MaterialUnitBora    MaterialUnit = "BORA"
	MaterialUnitBundle  MaterialUnit = "BUNDLE"
	MaterialUnitPcs     MaterialUnit = "PCS"
	MaterialUnitKg      MaterialUnit = "KG"
	MaterialUnitTon     MaterialUnit = "TON"
	MaterialUnitLiter   MaterialUnit = "LITER"
	MaterialUnitSqft    MaterialUnit = "SQFT"
	MaterialUnitCft     MaterialUnit = "CFT"
	MaterialUnitTruck   MaterialUnit = "TRUCK"
)
