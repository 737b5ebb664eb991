//go:build integration

package sessionrepo_test

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"

	"github.com/brigita/brigitabank/internal/domain"
	"github.com/brigita/brigitabank/internal/middleware"
	"github.com/brigita/brigitabank/internal/sessionrepo"
	"github.com/brigita/brigitabank/internal/test"
	"github.com/brigita/brigitabank/pkg/configpkg"
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

func sessionParams(username string) domain.CreateSessionParams {
	return domain.CreateSessionParams{
		ID:           uuid.New(),
		Username:     username,
		RefreshToken: randompkg.String(64),
		UserAgent:    "Go-http-client/1.1",
		ClientIP:     "127.0.0.1",
		ExpiresAt:    time.Now().Add(time.Hour).UTC().Truncate(time.Second),
	}
}

func TestCreate(t *testing.T) {
	t.Run("OK", func(t *testing.T) {
		tx := dbpkg.SetupTX(t, dbDriver, dbSource)

		user := test.SeedUser(t, tx)
		sessionRepo := sessionrepo.NewRepoPGS(tx)

		arg := sessionParams(user.Username)

		got, err := sessionRepo.Create(ctx, arg)
		if err != nil {
			t.Fatalf("sessionRepo.Create(ctx, %+v) returned error: %v", arg, err)
		}

		want := domain.Session{
			ID:           arg.ID,
			Username:     arg.Username,
			RefreshToken: arg.RefreshToken,
			UserAgent:    arg.UserAgent,
			ClientIP:     arg.ClientIP,
			ExpiresAt:    arg.ExpiresAt,
			CreatedAt:    time.Now().UTC().Truncate(time.Second),
		}

		compareTimes := cmpopts.EquateApproxTime(time.Second)
		if diff := cmp.Diff(want, got, compareTimes); diff != "" {
			t.Errorf("sessionRepo.Create(ctx, %+v) returned unexpected difference (-want +got):\n%s", arg, diff)
		}
	})

	t.Run("ErrUserNotFound", func(t *testing.T) {
		tx := dbpkg.SetupTX(t, dbDriver, dbSource)

		sessionRepo := sessionrepo.NewRepoPGS(tx)

		arg := sessionParams("nosuchuser")

		_, err := sessionRepo.Create(ctx, arg)
		if err != domain.ErrUserNotFound {
			t.Errorf("sessionRepo.Create error = %v, want %v", err, domain.ErrUserNotFound)
		}
	})
}

func TestGet(t *testing.T) {
	t.Run("OK", func(t *testing.T) {
		tx := dbpkg.SetupTX(t, dbDriver, dbSource)

		user := test.SeedUser(t, tx)
		sessionRepo := sessionrepo.NewRepoPGS(tx)

		want, err := sessionRepo.Create(ctx, sessionParams(user.Username))
		if err != nil {
			t.Fatalf("sessionRepo.Create returned error: %v", err)
		}

		got, err := sessionRepo.Get(ctx, want.ID)
		if err != nil {
			t.Fatalf("sessionRepo.Get(ctx, %v) returned error: %v", want.ID, err)
		}

		compareTimes := cmpopts.EquateApproxTime(time.Second)
		if diff := cmp.Diff(want, got, compareTimes); diff != "" {
			t.Errorf("sessionRepo.Get(ctx, %v) returned unexpected difference (-want +got):\n%s", want.ID, diff)
		}
	})

	t.Run("ErrSessionNotFound", func(t *testing.T) {
		tx := dbpkg.SetupTX(t, dbDriver, dbSource)

		sessionRepo := sessionrepo.NewRepoPGS(tx)

		_, err := sessionRepo.Get(ctx, uuid.New())
		if err != domain.ErrSessionNotFound {
			t.Errorf("sessionRepo.Get error = %v, want %v", err, domain.ErrSessionNotFound)
		}
	})
}
