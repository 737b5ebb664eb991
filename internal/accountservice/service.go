// Package accountservice manages business logic layer of accounts.
package accountservice

import (
	"context"

	"github.com/brigita/brigitabank/internal/domain"
	"github.com/brigita/brigitabank/pkg/randompkg"
)

// Every new account opens with a small starter balance.
const openingBalance = "30.00"

// Repo provides data access layer interface needed by account service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package accountservice
type Repo interface {
	Create(ctx context.Context, owner, accountNumber, balance, currency string) (domain.Account, error)
	GetByNumber(ctx context.Context, accountNumber string) (domain.Account, error)
	List(ctx context.Context, owner string, limit, offset int32) ([]domain.Account, error)
}

// Service facilitates account service layer logic.
type Service struct {
	repo       Repo
	bankPrefix string
}

// New returns account service struct to manage account bussines logic.
func New(ar Repo, bankPrefix string) *Service {
	return &Service{
		repo:       ar,
		bankPrefix: bankPrefix,
	}
}

// Create opens an account for the given owner and currency. The account
// number carries the bank's routing prefix so other banks can route to it.
func (s *Service) Create(ctx context.Context, owner, currency string) (domain.Account, error) {
	accountNumber := randompkg.AccountNumber(s.bankPrefix)

	account, err := s.repo.Create(ctx, owner, accountNumber, openingBalance, currency)
	if err != nil {
		return account, err
	}

	return account, nil
}

// GetByNumber returns the account with the given routing number.
func (s *Service) GetByNumber(ctx context.Context, accountNumber string) (domain.Account, error) {
	account, err := s.repo.GetByNumber(ctx, accountNumber)
	if err != nil {
		return account, err
	}

	return account, nil
}

// List returns accounts that are owned by the given user.
func (s *Service) List(ctx context.Context, owner string, pageSize, pageID int32) ([]domain.Account, error) {
	limit := pageSize
	offset := (pageID - 1) * pageSize

	accounts, err := s.repo.List(ctx, owner, limit, offset)
	if err != nil {
		return nil, err
	}

	return accounts, err
}
