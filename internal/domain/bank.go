package domain

import (
	"errors"
	"time"
)

var (
	// ErrBankNotFound indicates that the registry has no record for the prefix.
	ErrBankNotFound = errors.New("bank not found")
	// ErrRegistryUnavailable indicates a connectivity failure reaching the central bank registry.
	ErrRegistryUnavailable = errors.New("central bank registry unavailable")
	// ErrCounterpartyUnavailable indicates a connectivity failure reaching the counterparty bank.
	ErrCounterpartyUnavailable = errors.New("counterparty bank unavailable")
	// ErrCounterpartyRejected indicates that the counterparty bank refused the transfer.
	ErrCounterpartyRejected = errors.New("transfer rejected by counterparty bank")
)

// Constants for all bank statuses.
const (
	BankActive   = "active"
	BankInactive = "inactive"
)

// Bank is a directory entry for a counterparty bank.
//
// Entries are created lazily on the first successful inbound assertion from
// an unknown prefix, or explicitly via registration.
type Bank struct {
	ID             int32     `json:"id"`
	Prefix         string    `json:"prefix"`
	Name           string    `json:"name"`
	TransactionURL string    `json:"transactionUrl"`
	JWKSURL        string    `json:"jwksUrl"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}
