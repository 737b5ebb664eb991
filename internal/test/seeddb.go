// Package test provides shared test helpers.
package test

import (
	"context"
	"testing"

	"github.com/brigita/brigitabank/internal/accountrepo"
	"github.com/brigita/brigitabank/internal/bankrepo"
	"github.com/brigita/brigitabank/internal/domain"
	"github.com/brigita/brigitabank/internal/userrepo"
	"github.com/brigita/brigitabank/pkg/dbpkg"
	"github.com/brigita/brigitabank/pkg/passpkg"
	"github.com/brigita/brigitabank/pkg/randompkg"
)

// SeedUser creates random User inside a test transaction.
func SeedUser(t *testing.T, tx dbpkg.SQLInterface) domain.User {
	t.Helper()

	hashedPassword, err := passpkg.Hash(randompkg.String(32))
	if err != nil {
		t.Fatalf("passpkg.Hash(randompkg.String(32)) returned error: %v", err)
	}

	arg := domain.CreateUserParams{
		Username:       randompkg.Owner(),
		HashedPassword: hashedPassword,
		FullName:       randompkg.String(10),
		Email:          randompkg.Email(),
	}

	userRepo := userrepo.NewRepoPGS(tx)
	user, err := userRepo.Create(context.Background(), arg)

	if err != nil {
		t.Fatalf("userRepo.Create(context.Background(), %+v) returned error: %v", arg, err)
	}

	return user
}

// SeedAccount creates an account with the given balance and currency inside
// a test transaction.
func SeedAccount(t *testing.T, tx dbpkg.SQLInterface, username, balance, currency string) domain.Account {
	t.Helper()

	accountRepo := accountrepo.NewRepoPGS(tx)

	accountNumber := randompkg.AccountNumber(BankPrefix)

	account, err := accountRepo.Create(context.Background(), username, accountNumber, balance, currency)
	if err != nil {
		stmt := `accountRepo.Create(context.Background(), %v, %v, %v, %v) returned error: %v`
		t.Fatalf(stmt, username, accountNumber, balance, currency, err)
	}

	return account
}

// SeedAccountWith1000Balance creates an account with 1000 on balance inside
// a test transaction.
func SeedAccountWith1000Balance(t *testing.T, tx dbpkg.SQLInterface, username, currency string) domain.Account {
	t.Helper()

	return SeedAccount(t, tx, username, "1000", currency)
}

// SeedBank records a counterparty bank inside a test transaction.
func SeedBank(t *testing.T, tx dbpkg.SQLInterface, bank domain.Bank) domain.Bank {
	t.Helper()

	bankRepo := bankrepo.NewRepoPGS(tx)

	seeded, err := bankRepo.Upsert(context.Background(), bank)
	if err != nil {
		t.Fatalf("bankRepo.Upsert(context.Background(), %+v) returned error: %v", bank, err)
	}

	return seeded
}
