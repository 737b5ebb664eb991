// Package settlementservice manages business logic layer of incoming
// interbank settlements.
//
// An incoming settlement is a signed transfer assertion delivered by a
// counterparty bank. The assertion is decoded without trust to locate the
// destination account and the sender bank, the signature is then verified
// against the sender's published key set, and only after that the
// destination account is credited.
package settlementservice

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/brigita/brigitabank/internal/accountdelivery"
	"github.com/brigita/brigitabank/internal/domain"
)

// Codec decodes and verifies signed transfer assertions.
//
//go:generate mockgen -source service.go -destination service_mock.go -package settlementservice
type Codec interface {
	DecodeUnverified(token string) (domain.AssertionPayload, error)
	Verify(ctx context.Context, token, jwksURL string) bool
}

// Ledger provides data access layer interface needed by settlement service layer.
type Ledger interface {
	InboundCredit(ctx context.Context, arg domain.InboundCreditParams) (domain.Transaction, error)
}

// BankDirectory is the local cache of counterparty banks.
type BankDirectory interface {
	GetByPrefix(ctx context.Context, prefix string) (domain.Bank, error)
	Upsert(ctx context.Context, bank domain.Bank) (domain.Bank, error)
}

// Registry resolves counterparty banks by routing prefix.
type Registry interface {
	ResolveBankByPrefix(ctx context.Context, prefix string) (domain.Bank, error)
}

// Service facilitates settlement service layer logic.
type Service struct {
	codec          Codec
	ledger         Ledger
	accountService accountdelivery.Service
	banks          BankDirectory
	registry       Registry
	bankPrefix     string
}

// New returns settlement service struct to manage incoming settlements.
func New(codec Codec, ledger Ledger, as accountdelivery.Service, banks BankDirectory, registry Registry, bankPrefix string) *Service {
	return &Service{
		codec:          codec,
		ledger:         ledger,
		accountService: as,
		banks:          banks,
		registry:       registry,
		bankPrefix:     bankPrefix,
	}
}

// Process settles an incoming transfer assertion and returns the name of the
// credited account's owner. The payload is treated as untrusted routing data
// until the signature check against the sender bank's key set passes.
func (s *Service) Process(ctx context.Context, token string) (string, error) {
	l := zerolog.Ctx(ctx)

	payload, err := s.codec.DecodeUnverified(token)
	if err != nil {
		l.Info().Err(err).Send()
		return "", err
	}

	if err := validPayload(payload, s.bankPrefix); err != nil {
		return "", err
	}

	account, err := s.accountService.GetByNumber(ctx, payload.AccountTo)
	if err != nil {
		l.Info().Err(err).Str("account_to", payload.AccountTo).Send()
		return "", err
	}

	if account.Currency != payload.Currency {
		return "", domain.ErrCurrencyMismatch
	}

	senderPrefix := payload.AccountFrom[:len(s.bankPrefix)]

	bank, err := s.senderBank(ctx, senderPrefix)
	if err != nil {
		return "", err
	}

	if !s.codec.Verify(ctx, token, bank.JWKSURL) {
		l.Warn().Str("sender_prefix", senderPrefix).Msg("assertion signature rejected")
		return "", domain.ErrInvalidSignature
	}

	_, err = s.ledger.InboundCredit(ctx, domain.InboundCreditParams{
		AccountFrom:  payload.AccountFrom,
		AccountTo:    payload.AccountTo,
		Amount:       payload.Amount,
		Currency:     payload.Currency,
		Explanation:  payload.Explanation,
		SenderName:   payload.SenderName,
		ReceiverName: account.OwnerName,
	})
	if err != nil {
		return "", err
	}

	return account.OwnerName, nil
}

// validPayload checks the routing and amount fields of a decoded assertion
// before any trust is established.
func validPayload(payload domain.AssertionPayload, bankPrefix string) error {
	amountDecimal, err := decimal.NewFromString(payload.Amount)
	if err != nil {
		return domain.ErrInvalidAmount
	}

	if amountDecimal.LessThanOrEqual(decimal.Zero) {
		return domain.ErrNegativeAmount
	}

	if len(payload.AccountTo) <= len(bankPrefix) || payload.AccountTo[:len(bankPrefix)] != bankPrefix {
		return domain.ErrWrongRecipient
	}

	if len(payload.AccountFrom) <= len(bankPrefix) {
		return domain.ErrInvalidAssertion
	}

	return nil
}

// senderBank locates the sender bank by routing prefix, consulting the
// central registry and refreshing the local directory when the prefix is not
// yet cached.
func (s *Service) senderBank(ctx context.Context, prefix string) (domain.Bank, error) {
	l := zerolog.Ctx(ctx)

	bank, err := s.banks.GetByPrefix(ctx, prefix)
	if err == nil {
		return bank, nil
	}

	if !errors.Is(err, domain.ErrBankNotFound) {
		return domain.Bank{}, err
	}

	bank, err = s.registry.ResolveBankByPrefix(ctx, prefix)
	if err != nil {
		if errors.Is(err, domain.ErrBankNotFound) {
			return domain.Bank{}, domain.ErrUnknownSenderBank
		}

		l.Info().Err(err).Str("prefix", prefix).Send()

		return domain.Bank{}, err
	}

	cached, err := s.banks.Upsert(ctx, bank)
	if err != nil {
		// The resolved bank is still usable for this settlement even if
		// caching it failed.
		l.Error().Err(err).Str("prefix", prefix).Msg("caching sender bank")
		return bank, nil
	}

	return cached, nil
}
