// Package bankrepo manages the local directory of counterparty banks.
package bankrepo

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/brigita/brigitabank/internal/domain"
	"github.com/brigita/brigitabank/pkg/dbpkg"
	"github.com/brigita/brigitabank/pkg/errorspkg"
)

// RepoPGS facilitates bank repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns bank RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const getByPrefixQuery = `
SELECT
	id, prefix, name, transaction_url, jwks_url, status, created_at
FROM banks
WHERE prefix = $1
`

// GetByPrefix returns the bank with the given routing prefix.
func (r *RepoPGS) GetByPrefix(ctx context.Context, prefix string) (domain.Bank, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getByPrefixQuery, prefix)

	var b domain.Bank

	err := row.Scan(
		&b.ID,
		&b.Prefix,
		&b.Name,
		&b.TransactionURL,
		&b.JWKSURL,
		&b.Status,
		&b.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return b, domain.ErrBankNotFound
		}

		l.Error().Err(err).Send()

		return b, errorspkg.ErrInternal
	}

	return b, nil
}

const upsertQuery = `
INSERT INTO
    banks (prefix, name, transaction_url, jwks_url, status)
VALUES
    ($1, $2, $3, $4, $5)
ON CONFLICT (prefix) DO UPDATE SET
    name = EXCLUDED.name,
    transaction_url = EXCLUDED.transaction_url,
    jwks_url = EXCLUDED.jwks_url,
    status = EXCLUDED.status
RETURNING id, prefix, name, transaction_url, jwks_url, status, created_at
`

// Upsert records a counterparty bank, refreshing its endpoints when the
// prefix is already known. Used to lazily populate the directory from
// registry lookups.
func (r *RepoPGS) Upsert(ctx context.Context, bank domain.Bank) (domain.Bank, error) {
	l := zerolog.Ctx(ctx)

	status := bank.Status
	if status == "" {
		status = domain.BankActive
	}

	row := r.db.QueryRowContext(ctx, upsertQuery,
		bank.Prefix,
		bank.Name,
		bank.TransactionURL,
		bank.JWKSURL,
		status,
	)

	var b domain.Bank

	err := row.Scan(
		&b.ID,
		&b.Prefix,
		&b.Name,
		&b.TransactionURL,
		&b.JWKSURL,
		&b.Status,
		&b.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()
		return b, errorspkg.ErrInternal
	}

	return b, nil
}
