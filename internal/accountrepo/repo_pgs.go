// Package accountrepo manages repository layer of accounts.
package accountrepo

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/brigita/brigitabank/internal/domain"
	"github.com/brigita/brigitabank/pkg/dbpkg"
	"github.com/brigita/brigitabank/pkg/errorspkg"
)

// RepoPGS facilitates account repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns account RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const addBalanceQuery = `
UPDATE accounts
SET balance = balance + $1
WHERE account_number = $2
RETURNING id, account_number, owner, balance, currency, status, created_at
`

// AddBalance changes the account's balance and returns the changed account.
//
// The check-and-apply is a single statement: the accounts_balance_check
// constraint rejects any update that would drive the balance negative, so
// two concurrent debits cannot both pass against a stale read.
func (r *RepoPGS) AddBalance(ctx context.Context, amount, accountNumber string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, addBalanceQuery, amount, accountNumber)

	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.Number,
		&a.Owner,
		&a.Balance,
		&a.Currency,
		&a.Status,
		&a.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return a, domain.ErrAccountNotFound
		}

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "accounts_balance_check" {
				return a, domain.ErrInsufficientBalance
			}
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const createQuery = `
INSERT INTO
    accounts (account_number, owner, balance, currency, status)
VALUES
    ($1, $2, $3, $4, $5)
RETURNING id, account_number, owner, balance, currency, status, created_at
`

// Create creates the account and then returns it.
func (r *RepoPGS) Create(ctx context.Context, owner, accountNumber, balance, currency string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery, accountNumber, owner, balance, currency, domain.AccountActive)

	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.Number,
		&a.Owner,
		&a.Balance,
		&a.Currency,
		&a.Status,
		&a.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "accounts_owner_fkey" {
				return a, domain.ErrOwnerNotFound
			}
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const getByNumberQuery = `
SELECT
	a.id, a.account_number, a.owner, u.full_name, a.balance, a.currency, a.status, a.created_at
FROM accounts a
JOIN users u ON u.username = a.owner
WHERE a.account_number = $1
`

// GetByNumber returns the account with the given routing number, with the
// owner's display name resolved.
func (r *RepoPGS) GetByNumber(ctx context.Context, accountNumber string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getByNumberQuery, accountNumber)

	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.Number,
		&a.Owner,
		&a.OwnerName,
		&a.Balance,
		&a.Currency,
		&a.Status,
		&a.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return a, domain.ErrAccountNotFound
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const listAccounts = `
SELECT
	a.id, a.account_number, a.owner, u.full_name, a.balance, a.currency, a.status, a.created_at
FROM accounts a
JOIN users u ON u.username = a.owner
WHERE a.owner = $1
ORDER BY a.id
LIMIT $2 OFFSET $3
`

// List returns the specified number of accounts for the given user.
func (r *RepoPGS) List(ctx context.Context, owner string, limit, offset int32) ([]domain.Account, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listAccounts, owner, limit, offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Account{}

	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(&a.ID, &a.Number, &a.Owner, &a.OwnerName, &a.Balance, &a.Currency, &a.Status, &a.CreatedAt); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, a)
	}

	if err := rows.Close(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}
