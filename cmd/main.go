// Package main provides the API to manage users, accounts and interbank
// money transfers.
package main

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/brigita/brigitabank/cmd/httpserver"
	"github.com/brigita/brigitabank/internal/middleware"
	"github.com/brigita/brigitabank/internal/registry"
	"github.com/brigita/brigitabank/pkg/configpkg"
	"github.com/brigita/brigitabank/pkg/dbpkg"

	_ "github.com/lib/pq"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.CreateLogger(config)

	db, err := dbpkg.Setup(config.DBDriver, config.DBSource)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot connect to database")
	}

	server, err := httpserver.New(db, logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	ctx := logger.WithContext(context.Background())

	// Registration is best effort: a bank that cannot reach the central
	// registry can still serve internal transfers.
	_, err = server.Registry.RegisterSelf(ctx, registry.RegisterParams{
		Name:           config.BankName,
		Prefix:         config.BankPrefix,
		TransactionURL: config.BankTransactionURL,
		JWKSURL:        config.BankJWKSURL,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("cannot register with central bank")
	}

	logger.Info().Msg("BANK API SERVER HAS STARTED")

	err = server.Engine.Run(config.ServerAddress)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot start server")
	}
}
