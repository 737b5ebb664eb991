package domain

import (
	"errors"
	"time"
)

var (
	// ErrTransactionNotFound indicates that the transaction is not found.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrInvalidAmount indicates invalid amount.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrNegativeAmount indicates negative amount.
	ErrNegativeAmount = errors.New("negative amount")
	// ErrInsufficientBalance indicates that the account does not have sufficient balance.
	ErrInsufficientBalance = errors.New("insufficient funds")
	// ErrInvalidOwner indicates that the user is unauthorized to transfer money from the account.
	ErrInvalidOwner = errors.New("unauthorized owner")
	// ErrCurrencyMismatch indicates that transfer accounts have different currencies.
	ErrCurrencyMismatch = errors.New("accounts currency mismatch")
	// ErrUnsupportedCurrency indicates a currency outside of the supported set.
	ErrUnsupportedCurrency = errors.New("unsupported currency")
)

// Constants for all transaction statuses.
//
// Status transitions are monotonic: pending is the only non-terminal state.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusRejected  = "rejected"
)

// Constants for all transaction directions.
const (
	DirectionInternal = "internal"
	DirectionOutgoing = "outgoing"
	DirectionIncoming = "incoming"
)

// Transaction is the ledger audit record of a money movement.
//
// Accounts are referenced by routing number so that records survive for
// accounts held at other banks. ReceiverName stays empty until the receiving
// side confirms the credit.
type Transaction struct {
	ID            int64     `json:"id"`
	TransactionID string    `json:"transaction_id"`
	AccountFrom   string    `json:"account_from"`
	AccountTo     string    `json:"account_to"`
	Amount        string    `json:"amount"` // must be positive
	Currency      string    `json:"currency"`
	Explanation   string    `json:"explanation"`
	SenderName    string    `json:"sender_name"`
	ReceiverName  string    `json:"receiver_name,omitempty"`
	Status        string    `json:"status"`
	Direction     string    `json:"direction"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// CreateTransactionParams is the input data for a transfer request.
type CreateTransactionParams struct {
	AccountFrom string `json:"account_from"`
	AccountTo   string `json:"account_to"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Explanation string `json:"explanation"`
}

// InternalTransferParams is the input data for the internal transfer transaction.
type InternalTransferParams struct {
	AccountFrom  string
	AccountTo    string
	Amount       string
	Currency     string
	Explanation  string
	SenderName   string
	ReceiverName string
}

// InboundCreditParams is the input data for crediting an incoming interbank transfer.
type InboundCreditParams struct {
	AccountFrom  string
	AccountTo    string
	Amount       string
	Currency     string
	Explanation  string
	SenderName   string
	ReceiverName string
}

// ReserveOutgoingParams is the input data for the pending record of an
// outgoing interbank transfer. No balance is touched at reservation time.
type ReserveOutgoingParams struct {
	AccountFrom string
	AccountTo   string
	Amount      string
	Currency    string
	Explanation string
	SenderName  string
}
