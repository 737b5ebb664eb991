// Package domain provides defenitions of all entities.
package domain

import (
	"errors"
	"time"
)

var (
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountOwnerMismatch indicates that the account belongs to another user.
	ErrAccountOwnerMismatch = errors.New("account does not belong to the user")
	// ErrOwnerNotFound indicates that the owner for the account is not found.
	ErrOwnerNotFound = errors.New("owner not found")
)

// Constants for all account statuses.
const (
	AccountActive   = "active"
	AccountInactive = "inactive"
	AccountBlocked  = "blocked"
)

// Account holds user balance data for a specific currency.
//
// Number is the bank-prefixed routing number and is globally unique across
// banks. OwnerName is the owner's display name resolved from the users table.
type Account struct {
	ID        int32     `json:"id"`
	Number    string    `json:"account_number"`
	Owner     string    `json:"owner"`
	OwnerName string    `json:"owner_name"`
	Balance   string    `json:"balance"`
	Currency  string    `json:"currency"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
