//go:build integration

package ledgerrepo_test

import (
	"context"
	"database/sql"
	"log"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"

	"github.com/brigita/brigitabank/internal/accountrepo"
	"github.com/brigita/brigitabank/internal/domain"
	"github.com/brigita/brigitabank/internal/integrationtest"
	"github.com/brigita/brigitabank/internal/ledgerrepo"
	"github.com/brigita/brigitabank/internal/middleware"
	"github.com/brigita/brigitabank/internal/test"
	"github.com/brigita/brigitabank/pkg/configpkg"
	"github.com/brigita/brigitabank/pkg/currencypkg"
	"github.com/brigita/brigitabank/pkg/dbpkg"
	"github.com/brigita/brigitabank/pkg/randompkg"
)

var (
	dbDriver string
	dbSource string
	ctx      context.Context
)

func TestMain(m *testing.M) {
	config, err := configpkg.Load("../../configs")
	if err != nil {
		log.Fatal("cannot load config:", err)
	}

	dbDriver = config.DBDriver
	dbSource = config.DBSource

	logger := middleware.CreateLogger(config)
	ctx = logger.WithContext(context.Background())

	os.Exit(m.Run())
}

func seedReserved(t *testing.T, r *ledgerrepo.RepoPGS, accountFrom, senderName, amount string) domain.Transaction {
	t.Helper()

	arg := domain.ReserveOutgoingParams{
		AccountFrom: accountFrom,
		AccountTo:   randompkg.AccountNumber("511"),
		Amount:      amount,
		Currency:    currencypkg.EUR,
		Explanation: "invoice",
		SenderName:  senderName,
	}

	reserved, err := r.ReserveOutgoing(ctx, arg)
	if err != nil {
		t.Fatalf("ledgerRepo.ReserveOutgoing(ctx, %+v) returned error: %v", arg, err)
	}

	return reserved
}

func balanceOf(t *testing.T, db dbpkg.SQLInterface, accountNumber string) decimal.Decimal {
	t.Helper()

	account, err := accountrepo.NewRepoPGS(db).GetByNumber(ctx, accountNumber)
	if err != nil {
		t.Fatalf("accountRepo.GetByNumber(ctx, %v) returned error: %v", accountNumber, err)
	}

	balance, err := decimal.NewFromString(account.Balance)
	if err != nil {
		t.Fatalf("decimal.NewFromString(%v) returned error: %v", account.Balance, err)
	}

	return balance
}

func TestReserveOutgoing(t *testing.T) {
	testCases := []struct {
		name    string
		amount  string
		wantErr error
	}{
		{
			name:   "OK",
			amount: "100",
		},
		{
			name:    "InvalidAmount",
			amount:  "0",
			wantErr: domain.ErrInvalidAmount,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			tx := dbpkg.SetupTX(t, dbDriver, dbSource)

			user := test.SeedUser(t, tx)
			account := test.SeedAccountWith1000Balance(t, tx, user.Username, currencypkg.EUR)

			ledgerRepo := ledgerrepo.NewTxRepoPGS(tx)

			arg := domain.ReserveOutgoingParams{
				AccountFrom: account.Number,
				AccountTo:   randompkg.AccountNumber("511"),
				Amount:      tc.amount,
				Currency:    currencypkg.EUR,
				Explanation: "invoice",
				SenderName:  user.FullName,
			}

			got, err := ledgerRepo.ReserveOutgoing(ctx, arg)
			if err != nil {
				if err == tc.wantErr {
					return
				}
				t.Fatalf("ledgerRepo.ReserveOutgoing(ctx, %+v) returned error: %v", arg, err)
			}

			want := domain.Transaction{
				AccountFrom: arg.AccountFrom,
				AccountTo:   arg.AccountTo,
				Amount:      arg.Amount,
				Currency:    arg.Currency,
				Explanation: arg.Explanation,
				SenderName:  arg.SenderName,
				Status:      domain.StatusPending,
				Direction:   domain.DirectionOutgoing,
				CreatedAt:   time.Now().UTC().Truncate(time.Second),
			}

			ignoreFields := cmpopts.IgnoreFields(domain.Transaction{}, "ID", "TransactionID")
			compareCreatedAt := cmpopts.EquateApproxTime(time.Second)
			if diff := cmp.Diff(want, got, ignoreFields, compareCreatedAt); diff != "" {
				t.Errorf("ledgerRepo.ReserveOutgoing(ctx, %+v) returned unexpected difference (-want +got):\n%s", arg, diff)
			}

			if got.TransactionID == "" {
				t.Error(`got.TransactionID = "", want non-empty`)
			}

			// Reservation must not touch the balance.
			if balance := balanceOf(t, tx, account.Number); !balance.Equal(decimal.NewFromInt(1000)) {
				t.Errorf("balance after reservation = %v, want 1000", balance)
			}
		})
	}
}

func TestFailOutgoing(t *testing.T) {
	t.Run("OK", func(t *testing.T) {
		tx := dbpkg.SetupTX(t, dbDriver, dbSource)

		user := test.SeedUser(t, tx)
		account := test.SeedAccountWith1000Balance(t, tx, user.Username, currencypkg.EUR)

		ledgerRepo := ledgerrepo.NewTxRepoPGS(tx)
		reserved := seedReserved(t, ledgerRepo, account.Number, user.FullName, "100")

		got, err := ledgerRepo.FailOutgoing(ctx, reserved.TransactionID, "counterparty unreachable")
		if err != nil {
			t.Fatalf("ledgerRepo.FailOutgoing(ctx, %v) returned error: %v", reserved.TransactionID, err)
		}

		if got.Status != domain.StatusFailed {
			t.Errorf("got.Status = %v, want %v", got.Status, domain.StatusFailed)
		}

		if got.ErrorMessage != "counterparty unreachable" {
			t.Errorf("got.ErrorMessage = %v, want counterparty unreachable", got.ErrorMessage)
		}

		if balance := balanceOf(t, tx, account.Number); !balance.Equal(decimal.NewFromInt(1000)) {
			t.Errorf("balance after failure = %v, want 1000", balance)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		tx := dbpkg.SetupTX(t, dbDriver, dbSource)

		ledgerRepo := ledgerrepo.NewTxRepoPGS(tx)

		_, err := ledgerRepo.FailOutgoing(ctx, "b3a4f0d0-0000-0000-0000-000000000000", "cause")
		if err != domain.ErrTransactionNotFound {
			t.Errorf("ledgerRepo.FailOutgoing error = %v, want %v", err, domain.ErrTransactionNotFound)
		}
	})

	t.Run("AlreadyFailed", func(t *testing.T) {
		tx := dbpkg.SetupTX(t, dbDriver, dbSource)

		user := test.SeedUser(t, tx)
		account := test.SeedAccountWith1000Balance(t, tx, user.Username, currencypkg.EUR)

		ledgerRepo := ledgerrepo.NewTxRepoPGS(tx)
		reserved := seedReserved(t, ledgerRepo, account.Number, user.FullName, "100")

		if _, err := ledgerRepo.FailOutgoing(ctx, reserved.TransactionID, "first cause"); err != nil {
			t.Fatalf("ledgerRepo.FailOutgoing(ctx, %v) returned error: %v", reserved.TransactionID, err)
		}

		// Status transitions are monotonic: a settled record cannot change again.
		_, err := ledgerRepo.FailOutgoing(ctx, reserved.TransactionID, "second cause")
		if err != domain.ErrTransactionNotFound {
			t.Errorf("ledgerRepo.FailOutgoing error = %v, want %v", err, domain.ErrTransactionNotFound)
		}
	})
}

func TestGet(t *testing.T) {
	t.Run("OK", func(t *testing.T) {
		tx := dbpkg.SetupTX(t, dbDriver, dbSource)

		user := test.SeedUser(t, tx)
		account := test.SeedAccountWith1000Balance(t, tx, user.Username, currencypkg.EUR)

		ledgerRepo := ledgerrepo.NewTxRepoPGS(tx)
		want := seedReserved(t, ledgerRepo, account.Number, user.FullName, "100")

		got, err := ledgerRepo.Get(ctx, want.TransactionID)
		if err != nil {
			t.Fatalf("ledgerRepo.Get(ctx, %v) returned error: %v", want.TransactionID, err)
		}

		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("ledgerRepo.Get(ctx, %v) returned unexpected difference (-want +got):\n%s", want.TransactionID, diff)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		tx := dbpkg.SetupTX(t, dbDriver, dbSource)

		ledgerRepo := ledgerrepo.NewTxRepoPGS(tx)

		_, err := ledgerRepo.Get(ctx, "b3a4f0d0-0000-0000-0000-000000000000")
		if err != domain.ErrTransactionNotFound {
			t.Errorf("ledgerRepo.Get error = %v, want %v", err, domain.ErrTransactionNotFound)
		}
	})
}

func TestListByAccount(t *testing.T) {
	tx := dbpkg.SetupTX(t, dbDriver, dbSource)

	user := test.SeedUser(t, tx)
	account := test.SeedAccountWith1000Balance(t, tx, user.Username, currencypkg.EUR)

	ledgerRepo := ledgerrepo.NewTxRepoPGS(tx)

	const count = 5

	seeded := make([]domain.Transaction, count)
	for i := range seeded {
		seeded[i] = seedReserved(t, ledgerRepo, account.Number, user.FullName, "10")
	}

	testCases := []struct {
		name   string
		limit  int32
		offset int32
		want   []domain.Transaction
	}{
		{
			name:  "ListAll",
			limit: 100,
			want:  []domain.Transaction{seeded[4], seeded[3], seeded[2], seeded[1], seeded[0]},
		},
		{
			name:  "Limit2",
			limit: 2,
			want:  []domain.Transaction{seeded[4], seeded[3]},
		},
		{
			name:   "Limit2Offset2",
			limit:  2,
			offset: 2,
			want:   []domain.Transaction{seeded[2], seeded[1]},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			got, err := ledgerRepo.ListByAccount(ctx, account.Number, tc.limit, tc.offset)
			if err != nil {
				t.Fatalf("ledgerRepo.ListByAccount(ctx, %v, %v, %v) returned error: %v",
					account.Number, tc.limit, tc.offset, err)
			}

			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("ledgerRepo.ListByAccount returned unexpected difference (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInternalTransfer(t *testing.T) {
	db := integrationtest.SetupDB(t, dbDriver, dbSource)

	user1 := test.SeedUser(t, db)
	account1 := test.SeedAccountWith1000Balance(t, db, user1.Username, currencypkg.EUR)
	user2 := test.SeedUser(t, db)
	account2 := test.SeedAccountWith1000Balance(t, db, user2.Username, currencypkg.EUR)

	ledgerRepo := ledgerrepo.NewRepoPGS(db)

	arg := domain.InternalTransferParams{
		AccountFrom:  account1.Number,
		AccountTo:    account2.Number,
		Amount:       "100",
		Currency:     currencypkg.EUR,
		Explanation:  "rent",
		SenderName:   user1.FullName,
		ReceiverName: user2.FullName,
	}

	got, err := ledgerRepo.InternalTransfer(ctx, arg)
	if err != nil {
		t.Fatalf("ledgerRepo.InternalTransfer(ctx, %+v) returned error: %v", arg, err)
	}

	if got.Status != domain.StatusCompleted {
		t.Errorf("got.Status = %v, want %v", got.Status, domain.StatusCompleted)
	}

	if got.Direction != domain.DirectionInternal {
		t.Errorf("got.Direction = %v, want %v", got.Direction, domain.DirectionInternal)
	}

	// Money is conserved: the debit and the credit are equal.
	if balance := balanceOf(t, db, account1.Number); !balance.Equal(decimal.NewFromInt(900)) {
		t.Errorf("sender balance = %v, want 900", balance)
	}

	if balance := balanceOf(t, db, account2.Number); !balance.Equal(decimal.NewFromInt(1100)) {
		t.Errorf("receiver balance = %v, want 1100", balance)
	}
}

func TestInternalTransferInsufficientBalance(t *testing.T) {
	db := integrationtest.SetupDB(t, dbDriver, dbSource)

	user1 := test.SeedUser(t, db)
	account1 := test.SeedAccountWith1000Balance(t, db, user1.Username, currencypkg.EUR)
	user2 := test.SeedUser(t, db)
	account2 := test.SeedAccountWith1000Balance(t, db, user2.Username, currencypkg.EUR)

	ledgerRepo := ledgerrepo.NewRepoPGS(db)

	arg := domain.InternalTransferParams{
		AccountFrom:  account1.Number,
		AccountTo:    account2.Number,
		Amount:       "2000",
		Currency:     currencypkg.EUR,
		Explanation:  "rent",
		SenderName:   user1.FullName,
		ReceiverName: user2.FullName,
	}

	_, err := ledgerRepo.InternalTransfer(ctx, arg)
	if err != domain.ErrInsufficientBalance {
		t.Fatalf("ledgerRepo.InternalTransfer error = %v, want %v", err, domain.ErrInsufficientBalance)
	}

	// A failed unit leaves zero mutation behind.
	if balance := balanceOf(t, db, account1.Number); !balance.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("sender balance = %v, want 1000", balance)
	}

	if balance := balanceOf(t, db, account2.Number); !balance.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("receiver balance = %v, want 1000", balance)
	}

	transactions, err := ledgerRepo.ListByAccount(ctx, account1.Number, 10, 0)
	if err != nil {
		t.Fatalf("ledgerRepo.ListByAccount(ctx, %v, 10, 0) returned error: %v", account1.Number, err)
	}

	if len(transactions) != 0 {
		t.Errorf("len(transactions) = %v, want 0", len(transactions))
	}
}

func TestInternalTransferConcurrent(t *testing.T) {
	db := integrationtest.SetupDB(t, dbDriver, dbSource)

	user1 := test.SeedUser(t, db)
	account1 := test.SeedAccountWith1000Balance(t, db, user1.Username, currencypkg.EUR)
	user2 := test.SeedUser(t, db)
	account2 := test.SeedAccountWith1000Balance(t, db, user2.Username, currencypkg.EUR)

	ledgerRepo := ledgerrepo.NewRepoPGS(db)

	// Opposite directions provoke deadlocks unless balance updates are ordered.
	n := 10
	amount := "10"
	errs := make(chan error)

	for i := 0; i < n; i++ {
		accountFrom, accountTo := account1.Number, account2.Number
		senderName, receiverName := user1.FullName, user2.FullName

		if i%2 == 0 {
			accountFrom, accountTo = accountTo, accountFrom
			senderName, receiverName = receiverName, senderName
		}

		arg := domain.InternalTransferParams{
			AccountFrom:  accountFrom,
			AccountTo:    accountTo,
			Amount:       amount,
			Currency:     currencypkg.EUR,
			SenderName:   senderName,
			ReceiverName: receiverName,
		}

		go func() {
			_, err := ledgerRepo.InternalTransfer(ctx, arg)
			errs <- err
		}()
	}

	for i := 0; i < n; i++ {
		if err := <-errs; err != nil {
			t.Errorf("ledgerRepo.InternalTransfer returned error: %v", err)
		}
	}

	if balance := balanceOf(t, db, account1.Number); !balance.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("account1 balance = %v, want 1000", balance)
	}

	if balance := balanceOf(t, db, account2.Number); !balance.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("account2 balance = %v, want 1000", balance)
	}
}

func TestInboundCredit(t *testing.T) {
	db := integrationtest.SetupDB(t, dbDriver, dbSource)

	user := test.SeedUser(t, db)
	account := test.SeedAccountWith1000Balance(t, db, user.Username, currencypkg.EUR)

	ledgerRepo := ledgerrepo.NewRepoPGS(db)

	arg := domain.InboundCreditParams{
		AccountFrom:  randompkg.AccountNumber("511"),
		AccountTo:    account.Number,
		Amount:       "250.50",
		Currency:     currencypkg.EUR,
		Explanation:  "consulting fee",
		SenderName:   "Remote Sender",
		ReceiverName: user.FullName,
	}

	got, err := ledgerRepo.InboundCredit(ctx, arg)
	if err != nil {
		t.Fatalf("ledgerRepo.InboundCredit(ctx, %+v) returned error: %v", arg, err)
	}

	if got.Status != domain.StatusCompleted {
		t.Errorf("got.Status = %v, want %v", got.Status, domain.StatusCompleted)
	}

	if got.Direction != domain.DirectionIncoming {
		t.Errorf("got.Direction = %v, want %v", got.Direction, domain.DirectionIncoming)
	}

	if got.ReceiverName != user.FullName {
		t.Errorf("got.ReceiverName = %v, want %v", got.ReceiverName, user.FullName)
	}

	want := decimal.NewFromInt(1000).Add(decimal.RequireFromString("250.50"))
	if balance := balanceOf(t, db, account.Number); !balance.Equal(want) {
		t.Errorf("balance after credit = %v, want %v", balance, want)
	}
}

func TestCompleteOutgoing(t *testing.T) {
	t.Run("OK", func(t *testing.T) {
		db := integrationtest.SetupDB(t, dbDriver, dbSource)

		user := test.SeedUser(t, db)
		account := test.SeedAccountWith1000Balance(t, db, user.Username, currencypkg.EUR)

		ledgerRepo := ledgerrepo.NewRepoPGS(db)
		reserved := seedReserved(t, ledgerRepo, account.Number, user.FullName, "100")

		got, err := ledgerRepo.CompleteOutgoing(ctx, reserved.TransactionID, "Remote Receiver")
		if err != nil {
			t.Fatalf("ledgerRepo.CompleteOutgoing(ctx, %v) returned error: %v", reserved.TransactionID, err)
		}

		if got.Status != domain.StatusCompleted {
			t.Errorf("got.Status = %v, want %v", got.Status, domain.StatusCompleted)
		}

		if got.ReceiverName != "Remote Receiver" {
			t.Errorf("got.ReceiverName = %v, want Remote Receiver", got.ReceiverName)
		}

		if balance := balanceOf(t, db, account.Number); !balance.Equal(decimal.NewFromInt(900)) {
			t.Errorf("balance after completion = %v, want 900", balance)
		}

		// Completion is final: the same record cannot settle twice.
		_, err = ledgerRepo.CompleteOutgoing(ctx, reserved.TransactionID, "Remote Receiver")
		if err != domain.ErrTransactionNotFound {
			t.Errorf("ledgerRepo.CompleteOutgoing error = %v, want %v", err, domain.ErrTransactionNotFound)
		}
	})

	t.Run("InsufficientBalance", func(t *testing.T) {
		db := integrationtest.SetupDB(t, dbDriver, dbSource)

		user := test.SeedUser(t, db)
		account := test.SeedAccountWith1000Balance(t, db, user.Username, currencypkg.EUR)

		ledgerRepo := ledgerrepo.NewRepoPGS(db)
		reserved := seedReserved(t, ledgerRepo, account.Number, user.FullName, "2000")

		_, err := ledgerRepo.CompleteOutgoing(ctx, reserved.TransactionID, "Remote Receiver")
		if err != domain.ErrInsufficientBalance {
			t.Fatalf("ledgerRepo.CompleteOutgoing error = %v, want %v", err, domain.ErrInsufficientBalance)
		}

		// The debit failed, so the whole unit rolled back: record still pending,
		// balance untouched.
		pending, err := ledgerRepo.Get(ctx, reserved.TransactionID)
		if err != nil {
			t.Fatalf("ledgerRepo.Get(ctx, %v) returned error: %v", reserved.TransactionID, err)
		}

		if pending.Status != domain.StatusPending {
			t.Errorf("pending.Status = %v, want %v", pending.Status, domain.StatusPending)
		}

		if balance := balanceOf(t, db, account.Number); !balance.Equal(decimal.NewFromInt(1000)) {
			t.Errorf("balance = %v, want 1000", balance)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		db := integrationtest.SetupDB(t, dbDriver, dbSource)

		ledgerRepo := ledgerrepo.NewRepoPGS(db)

		_, err := ledgerRepo.CompleteOutgoing(ctx, "b3a4f0d0-0000-0000-0000-000000000000", "Remote Receiver")
		if err != domain.ErrTransactionNotFound {
			t.Errorf("ledgerRepo.CompleteOutgoing error = %v, want %v", err, domain.ErrTransactionNotFound)
		}
	})
}
