package domain

import "errors"

var (
	// ErrInvalidAssertion indicates a malformed or undecodable transfer assertion.
	ErrInvalidAssertion = errors.New("invalid transfer assertion")
	// ErrWrongRecipient indicates an assertion addressed to another bank.
	ErrWrongRecipient = errors.New("assertion addressed to another bank")
	// ErrUnknownSenderBank indicates an assertion from a prefix the registry does not know.
	ErrUnknownSenderBank = errors.New("sender bank is not registered")
	// ErrInvalidSignature indicates an assertion that failed signature or expiry checks.
	ErrInvalidSignature = errors.New("invalid assertion signature")
)

// AssertionPayload is the claims set of a signed interbank transfer
// assertion. It is a wire artifact: created per outgoing transfer, verified
// once by the receiver and never persisted.
type AssertionPayload struct {
	AccountFrom string `json:"accountFrom"`
	AccountTo   string `json:"accountTo"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Explanation string `json:"explanation"`
	SenderName  string `json:"senderName"`
}
