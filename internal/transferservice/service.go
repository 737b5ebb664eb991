// Package transferservice manages business logic layer of transfers.
//
// A transfer is internal when the destination account carries this bank's
// routing prefix and interbank otherwise. Interbank transfers follow the
// reserve, sign, deliver, settle order: the source account is debited only
// after the counterparty bank has confirmed the credit.
package transferservice

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/brigita/brigitabank/internal/accountdelivery"
	"github.com/brigita/brigitabank/internal/domain"
	"github.com/brigita/brigitabank/pkg/currencypkg"
	"github.com/brigita/brigitabank/pkg/errorspkg"
)

// Ledger provides data access layer interface needed by transfer service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package transferservice
type Ledger interface {
	InternalTransfer(ctx context.Context, arg domain.InternalTransferParams) (domain.Transaction, error)
	ReserveOutgoing(ctx context.Context, arg domain.ReserveOutgoingParams) (domain.Transaction, error)
	CompleteOutgoing(ctx context.Context, transactionID, receiverName string) (domain.Transaction, error)
	FailOutgoing(ctx context.Context, transactionID, cause string) (domain.Transaction, error)
	ListByAccount(ctx context.Context, accountNumber string, limit, offset int32) ([]domain.Transaction, error)
}

// Registry resolves counterparty banks by routing prefix.
type Registry interface {
	ResolveBankByPrefix(ctx context.Context, prefix string) (domain.Bank, error)
}

// Signer issues signed transfer assertions.
type Signer interface {
	Sign(payload domain.AssertionPayload) (string, error)
}

// Courier delivers signed assertions to counterparty banks.
type Courier interface {
	SendAssertion(ctx context.Context, transactionURL, token string) (string, error)
}

// Service facilitates transfer service layer logic.
type Service struct {
	ledger         Ledger
	accountService accountdelivery.Service
	registry       Registry
	signer         Signer
	courier        Courier
	bankPrefix     string
}

// New returns transfer service struct to manage transfer bussines logic.
func New(ledger Ledger, as accountdelivery.Service, registry Registry, signer Signer, courier Courier, bankPrefix string) *Service {
	return &Service{
		ledger:         ledger,
		accountService: as,
		registry:       registry,
		signer:         signer,
		courier:        courier,
		bankPrefix:     bankPrefix,
	}
}

// validRequest checks amount, ownership, funds and currency against the
// source account. The funds check here is advisory: the database constraint
// is the authority under concurrent debits.
func (s *Service) validRequest(ctx context.Context, fromUsername string, arg domain.CreateTransactionParams) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	var fromAccount domain.Account

	amountDecimal, err := decimal.NewFromString(arg.Amount)
	if err != nil {
		l.Info().Err(err).Send()
		return fromAccount, domain.ErrInvalidAmount
	}

	if amountDecimal.LessThanOrEqual(decimal.Zero) {
		return fromAccount, domain.ErrNegativeAmount
	}

	if !currencypkg.IsSupportedCurrency(arg.Currency) {
		return fromAccount, domain.ErrUnsupportedCurrency
	}

	fromAccount, err = s.accountService.GetByNumber(ctx, arg.AccountFrom)
	if err != nil {
		l.Info().Err(err).Send()
		return fromAccount, err
	}

	if fromAccount.Owner != fromUsername {
		return fromAccount, domain.ErrInvalidOwner
	}

	if fromAccount.Currency != arg.Currency {
		return fromAccount, domain.ErrCurrencyMismatch
	}

	currentBalance, err := decimal.NewFromString(fromAccount.Balance)
	if err != nil {
		l.Error().Err(err).Send()
		return fromAccount, errorspkg.ErrInternal
	}

	if currentBalance.LessThan(amountDecimal) {
		return fromAccount, domain.ErrInsufficientBalance
	}

	return fromAccount, nil
}

// Create validates the transfer request and routes it to the internal or
// the interbank path based on the destination account prefix.
func (s *Service) Create(ctx context.Context, fromUsername string, arg domain.CreateTransactionParams) (domain.Transaction, error) {
	fromAccount, err := s.validRequest(ctx, fromUsername, arg)
	if err != nil {
		return domain.Transaction{}, err
	}

	if strings.HasPrefix(arg.AccountTo, s.bankPrefix) {
		return s.internalTransfer(ctx, fromAccount, arg)
	}

	return s.interbankTransfer(ctx, fromAccount, arg)
}

func (s *Service) internalTransfer(ctx context.Context, fromAccount domain.Account, arg domain.CreateTransactionParams) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	toAccount, err := s.accountService.GetByNumber(ctx, arg.AccountTo)
	if err != nil {
		l.Info().Err(err).Send()
		return domain.Transaction{}, err
	}

	if toAccount.Currency != arg.Currency {
		return domain.Transaction{}, domain.ErrCurrencyMismatch
	}

	return s.ledger.InternalTransfer(ctx, domain.InternalTransferParams{
		AccountFrom:  arg.AccountFrom,
		AccountTo:    arg.AccountTo,
		Amount:       arg.Amount,
		Currency:     arg.Currency,
		Explanation:  arg.Explanation,
		SenderName:   fromAccount.OwnerName,
		ReceiverName: toAccount.OwnerName,
	})
}

func (s *Service) interbankTransfer(ctx context.Context, fromAccount domain.Account, arg domain.CreateTransactionParams) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	if len(arg.AccountTo) <= len(s.bankPrefix) {
		return domain.Transaction{}, domain.ErrAccountNotFound
	}

	destinationPrefix := arg.AccountTo[:len(s.bankPrefix)]

	bank, err := s.registry.ResolveBankByPrefix(ctx, destinationPrefix)
	if err != nil {
		l.Info().Err(err).Str("prefix", destinationPrefix).Send()
		return domain.Transaction{}, err
	}

	reserved, err := s.ledger.ReserveOutgoing(ctx, domain.ReserveOutgoingParams{
		AccountFrom: arg.AccountFrom,
		AccountTo:   arg.AccountTo,
		Amount:      arg.Amount,
		Currency:    arg.Currency,
		Explanation: arg.Explanation,
		SenderName:  fromAccount.OwnerName,
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	token, err := s.signer.Sign(domain.AssertionPayload{
		AccountFrom: arg.AccountFrom,
		AccountTo:   arg.AccountTo,
		Amount:      arg.Amount,
		Currency:    arg.Currency,
		Explanation: arg.Explanation,
		SenderName:  fromAccount.OwnerName,
	})
	if err != nil {
		l.Error().Err(err).Send()
		s.markFailed(ctx, reserved.TransactionID, err)

		return domain.Transaction{}, errorspkg.ErrInternal
	}

	receiverName, err := s.courier.SendAssertion(ctx, bank.TransactionURL, token)
	if err != nil {
		s.markFailed(ctx, reserved.TransactionID, err)
		return domain.Transaction{}, err
	}

	completed, err := s.ledger.CompleteOutgoing(ctx, reserved.TransactionID, receiverName)
	if err != nil {
		// The counterparty already credited: record the failure cause but
		// keep the error so the caller sees the debit did not happen.
		s.markFailed(ctx, reserved.TransactionID, err)
		return domain.Transaction{}, err
	}

	return completed, nil
}

func (s *Service) markFailed(ctx context.Context, transactionID string, cause error) {
	l := zerolog.Ctx(ctx)

	if _, err := s.ledger.FailOutgoing(ctx, transactionID, cause.Error()); err != nil {
		l.Error().Err(err).Str("transaction_id", transactionID).Msg("marking transfer failed")
	}
}

// ListByAccount returns the transaction history of an account owned by the
// given user.
func (s *Service) ListByAccount(ctx context.Context, username, accountNumber string, pageSize, pageID int32) ([]domain.Transaction, error) {
	account, err := s.accountService.GetByNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}

	if account.Owner != username {
		return nil, domain.ErrInvalidOwner
	}

	limit := pageSize
	offset := (pageID - 1) * pageSize

	return s.ledger.ListByAccount(ctx, accountNumber, limit, offset)
}
