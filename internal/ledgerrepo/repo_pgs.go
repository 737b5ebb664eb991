// Package ledgerrepo manages the transactional ledger: every balance
// mutation and its audit record happen inside a single database
// transaction, so a failure at any step leaves zero mutation behind.
package ledgerrepo

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/brigita/brigitabank/internal/accountrepo"
	"github.com/brigita/brigitabank/internal/domain"
	"github.com/brigita/brigitabank/pkg/dbpkg"
	"github.com/brigita/brigitabank/pkg/errorspkg"
)

// RepoPGS facilitates ledger repository layer logic.
type RepoPGS struct {
	db   dbpkg.SQLInterface
	conn *sql.DB
}

// NewRepoPGS returns ledger RepoPGS with a connection to start transactions.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{
		db:   db,
		conn: db,
	}
}

// NewTxRepoPGS returns ledger RepoPGS bound to an existing transaction.
func NewTxRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const insertQuery = `
INSERT INTO
    transactions (transaction_id, account_from, account_to, amount, currency,
                  explanation, sender_name, receiver_name, status, direction)
VALUES
    ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10)
RETURNING id, transaction_id, account_from, account_to, amount, currency,
          explanation, sender_name, COALESCE(receiver_name, ''), status, direction,
          COALESCE(error_message, ''), created_at
`

type insertParams struct {
	accountFrom  string
	accountTo    string
	amount       string
	currency     string
	explanation  string
	senderName   string
	receiverName string
	status       string
	direction    string
}

func (r *RepoPGS) insert(ctx context.Context, db dbpkg.SQLInterface, arg insertParams) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	row := db.QueryRowContext(ctx, insertQuery,
		uuid.NewString(),
		arg.accountFrom,
		arg.accountTo,
		arg.amount,
		arg.currency,
		arg.explanation,
		arg.senderName,
		arg.receiverName,
		arg.status,
		arg.direction,
	)

	t, err := scanTransaction(row)
	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "transactions_amount_check" {
				return t, domain.ErrInvalidAmount
			}
		}

		return t, errorspkg.ErrInternal
	}

	return t, nil
}

// InternalTransfer moves money between two local accounts.
//
// Debit, credit and the audit record are one atomic unit; the debit is a
// conditional update so insufficient funds abort the unit with no mutation.
func (r *RepoPGS) InternalTransfer(ctx context.Context, arg domain.InternalTransferParams) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	var result domain.Transaction

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	defer func() {
		_ = tx.Rollback()
	}()

	accounts := accountrepo.NewRepoPGS(tx)

	// To avoid deadlocks execute balance updates in consistent account order.
	first, firstAmount := arg.AccountFrom, "-"+arg.Amount
	second, secondAmount := arg.AccountTo, arg.Amount

	if second < first {
		first, second = second, first
		firstAmount, secondAmount = secondAmount, firstAmount
	}

	if _, err = accounts.AddBalance(ctx, firstAmount, first); err != nil {
		return result, err
	}

	if _, err = accounts.AddBalance(ctx, secondAmount, second); err != nil {
		return result, err
	}

	result, err = r.insert(ctx, tx, insertParams{
		accountFrom:  arg.AccountFrom,
		accountTo:    arg.AccountTo,
		amount:       arg.Amount,
		currency:     arg.Currency,
		explanation:  arg.Explanation,
		senderName:   arg.SenderName,
		receiverName: arg.ReceiverName,
		status:       domain.StatusCompleted,
		direction:    domain.DirectionInternal,
	})
	if err != nil {
		return result, err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	return result, nil
}

// InboundCredit applies a verified incoming interbank transfer: the credit
// and the completed incoming record are one atomic unit.
func (r *RepoPGS) InboundCredit(ctx context.Context, arg domain.InboundCreditParams) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	var result domain.Transaction

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	defer func() {
		_ = tx.Rollback()
	}()

	accounts := accountrepo.NewRepoPGS(tx)

	if _, err = accounts.AddBalance(ctx, arg.Amount, arg.AccountTo); err != nil {
		return result, err
	}

	result, err = r.insert(ctx, tx, insertParams{
		accountFrom:  arg.AccountFrom,
		accountTo:    arg.AccountTo,
		amount:       arg.Amount,
		currency:     arg.Currency,
		explanation:  arg.Explanation,
		senderName:   arg.SenderName,
		receiverName: arg.ReceiverName,
		status:       domain.StatusCompleted,
		direction:    domain.DirectionIncoming,
	})
	if err != nil {
		return result, err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	return result, nil
}

// ReserveOutgoing records a pending outgoing transfer without touching any
// balance. The debit happens only in CompleteOutgoing, after the
// counterparty bank has confirmed the credit.
func (r *RepoPGS) ReserveOutgoing(ctx context.Context, arg domain.ReserveOutgoingParams) (domain.Transaction, error) {
	return r.insert(ctx, r.db, insertParams{
		accountFrom: arg.AccountFrom,
		accountTo:   arg.AccountTo,
		amount:      arg.Amount,
		currency:    arg.Currency,
		explanation: arg.Explanation,
		senderName:  arg.SenderName,
		status:      domain.StatusPending,
		direction:   domain.DirectionOutgoing,
	})
}

const completeQuery = `
UPDATE transactions
SET status = $2, receiver_name = $3
WHERE transaction_id = $1 AND status = 'pending'
RETURNING id, transaction_id, account_from, account_to, amount, currency,
          explanation, sender_name, COALESCE(receiver_name, ''), status, direction,
          COALESCE(error_message, ''), created_at
`

// CompleteOutgoing debits the source account and marks the pending record
// completed in one atomic unit. Only pending records can complete: status
// transitions are monotonic.
func (r *RepoPGS) CompleteOutgoing(ctx context.Context, transactionID, receiverName string) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	var result domain.Transaction

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	defer func() {
		_ = tx.Rollback()
	}()

	row := tx.QueryRowContext(ctx, completeQuery, transactionID, domain.StatusCompleted, receiverName)

	result, err = scanTransaction(row)
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return result, domain.ErrTransactionNotFound
		}

		return result, errorspkg.ErrInternal
	}

	accounts := accountrepo.NewRepoPGS(tx)

	if _, err = accounts.AddBalance(ctx, "-"+result.Amount, result.AccountFrom); err != nil {
		return domain.Transaction{}, err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	return result, nil
}

const failQuery = `
UPDATE transactions
SET status = $2, error_message = $3
WHERE transaction_id = $1 AND status = 'pending'
RETURNING id, transaction_id, account_from, account_to, amount, currency,
          explanation, sender_name, COALESCE(receiver_name, ''), status, direction,
          COALESCE(error_message, ''), created_at
`

// FailOutgoing marks a pending outgoing record failed with the given cause.
// No balance was reserved, so no balance changes here.
func (r *RepoPGS) FailOutgoing(ctx context.Context, transactionID, cause string) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, failQuery, transactionID, domain.StatusFailed, cause)

	t, err := scanTransaction(row)
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return t, domain.ErrTransactionNotFound
		}

		return t, errorspkg.ErrInternal
	}

	return t, nil
}

const getQuery = `
SELECT
	id, transaction_id, account_from, account_to, amount, currency,
	explanation, sender_name, COALESCE(receiver_name, ''), status, direction,
	COALESCE(error_message, ''), created_at
FROM transactions
WHERE transaction_id = $1
`

// Get returns the transaction with the given transaction id.
func (r *RepoPGS) Get(ctx context.Context, transactionID string) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getQuery, transactionID)

	t, err := scanTransaction(row)
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return t, domain.ErrTransactionNotFound
		}

		return t, errorspkg.ErrInternal
	}

	return t, nil
}

const listByAccountQuery = `
SELECT
	id, transaction_id, account_from, account_to, amount, currency,
	explanation, sender_name, COALESCE(receiver_name, ''), status, direction,
	COALESCE(error_message, ''), created_at
FROM transactions
WHERE
    account_from = $1 OR account_to = $1
ORDER BY id DESC
LIMIT $2 OFFSET $3
`

// ListByAccount returns the transactions touching the given account number.
func (r *RepoPGS) ListByAccount(ctx context.Context, accountNumber string, limit, offset int32) ([]domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listByAccountQuery, accountNumber, limit, offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Transaction{}

	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(
			&t.ID,
			&t.TransactionID,
			&t.AccountFrom,
			&t.AccountTo,
			&t.Amount,
			&t.Currency,
			&t.Explanation,
			&t.SenderName,
			&t.ReceiverName,
			&t.Status,
			&t.Direction,
			&t.ErrorMessage,
			&t.CreatedAt,
		); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, t)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

func scanTransaction(row *sql.Row) (domain.Transaction, error) {
	var t domain.Transaction

	err := row.Scan(
		&t.ID,
		&t.TransactionID,
		&t.AccountFrom,
		&t.AccountTo,
		&t.Amount,
		&t.Currency,
		&t.Explanation,
		&t.SenderName,
		&t.ReceiverName,
		&t.Status,
		&t.Direction,
		&t.ErrorMessage,
		&t.CreatedAt,
	)

	return t, err
}
