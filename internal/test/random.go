package test

import (
	"time"

	"github.com/brigita/brigitabank/internal/domain"
	"github.com/brigita/brigitabank/pkg/randompkg"
)

// BankPrefix is the routing prefix used by seeded test data.
const BankPrefix = "843"

// RandomAccount returns random account owned by the given owner.
func RandomAccount(owner string) domain.Account {
	return domain.Account{
		ID:        randompkg.IntBetween(1, 100),
		Number:    randompkg.AccountNumber(BankPrefix),
		Owner:     owner,
		Balance:   randompkg.MoneyAmountBetween(1000, 10_000),
		Currency:  randompkg.Currency(),
		Status:    domain.AccountActive,
		CreatedAt: time.Now().Truncate(time.Second).UTC(),
	}
}

// RandomBank returns a random counterparty bank directory entry.
func RandomBank(prefix string) domain.Bank {
	return domain.Bank{
		Prefix:         prefix,
		Name:           "Bank " + randompkg.String(6),
		TransactionURL: "https://" + randompkg.String(8) + ".example.com/transactions/b2b",
		JWKSURL:        "https://" + randompkg.String(8) + ".example.com/keys",
		Status:         domain.BankActive,
	}
}
