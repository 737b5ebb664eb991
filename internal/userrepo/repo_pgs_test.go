//go:build integration

package userrepo_test

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/brigita/brigitabank/internal/domain"
	"github.com/brigita/brigitabank/internal/middleware"
	"github.com/brigita/brigitabank/internal/test"
	"github.com/brigita/brigitabank/internal/userrepo"
	"github.com/brigita/brigitabank/pkg/configpkg"
	"github.com/brigita/brigitabank/pkg/dbpkg"
	"github.com/brigita/brigitabank/pkg/passpkg"
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

func TestCreate(t *testing.T) {
	hashedPassword, err := passpkg.Hash(randompkg.String(32))
	if err != nil {
		t.Fatalf("passpkg.Hash(randompkg.String(32)) returned error: %v", err)
	}

	testCases := []struct {
		name    string
		arg     func(tx dbpkg.SQLInterface) domain.CreateUserParams
		wantErr error
	}{
		{
			name: "OK",
			arg: func(tx dbpkg.SQLInterface) domain.CreateUserParams {
				return domain.CreateUserParams{
					Username:       randompkg.Owner(),
					HashedPassword: hashedPassword,
					FullName:       randompkg.String(10),
					Email:          randompkg.Email(),
				}
			},
		},
		{
			name: "ErrUsernameAlreadyExists",
			arg: func(tx dbpkg.SQLInterface) domain.CreateUserParams {
				user := test.SeedUser(t, tx)

				return domain.CreateUserParams{
					Username:       user.Username,
					HashedPassword: hashedPassword,
					FullName:       randompkg.String(10),
					Email:          randompkg.Email(),
				}
			},
			wantErr: domain.ErrUsernameAlreadyExists,
		},
		{
			name: "ErrEmailALreadyExists",
			arg: func(tx dbpkg.SQLInterface) domain.CreateUserParams {
				user := test.SeedUser(t, tx)

				return domain.CreateUserParams{
					Username:       randompkg.Owner(),
					HashedPassword: hashedPassword,
					FullName:       randompkg.String(10),
					Email:          user.Email,
				}
			},
			wantErr: domain.ErrEmailALreadyExists,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			tx := dbpkg.SetupTX(t, dbDriver, dbSource)
			arg := tc.arg(tx)
			userRepo := userrepo.NewRepoPGS(tx)

			got, err := userRepo.Create(ctx, arg)
			if err != nil {
				if err == tc.wantErr {
					return
				}
				t.Fatalf("userRepo.Create(ctx, %+v) returned error: %v", arg, err)
			}

			want := domain.User{
				Username:       arg.Username,
				HashedPassword: arg.HashedPassword,
				FullName:       arg.FullName,
				Email:          arg.Email,
				CreatedAt:      time.Now().UTC().Truncate(time.Second),
			}

			ignoreFields := cmpopts.IgnoreFields(domain.User{}, "PasswordChangedAt")
			compareCreatedAt := cmpopts.EquateApproxTime(time.Second)
			if diff := cmp.Diff(want, got, ignoreFields, compareCreatedAt); diff != "" {
				t.Errorf("userRepo.Create(ctx, %+v) returned unexpected difference (-want +got):\n%s", arg, diff)
			}
		})
	}
}

func TestGet(t *testing.T) {
	t.Run("OK", func(t *testing.T) {
		tx := dbpkg.SetupTX(t, dbDriver, dbSource)

		want := test.SeedUser(t, tx)
		userRepo := userrepo.NewRepoPGS(tx)

		got, err := userRepo.Get(ctx, want.Username)
		if err != nil {
			t.Fatalf("userRepo.Get(ctx, %v) returned error: %v", want.Username, err)
		}

		compareCreatedAt := cmpopts.EquateApproxTime(time.Second)
		if diff := cmp.Diff(want, got, compareCreatedAt); diff != "" {
			t.Errorf("userRepo.Get(ctx, %v) returned unexpected difference (-want +got):\n%s", want.Username, diff)
		}
	})

	t.Run("ErrUserNotFound", func(t *testing.T) {
		tx := dbpkg.SetupTX(t, dbDriver, dbSource)

		userRepo := userrepo.NewRepoPGS(tx)

		_, err := userRepo.Get(ctx, "nosuchuser")
		if err != domain.ErrUserNotFound {
			t.Errorf("userRepo.Get error = %v, want %v", err, domain.ErrUserNotFound)
		}
	})
}
