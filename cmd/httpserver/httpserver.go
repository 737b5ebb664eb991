// Package httpserver manages server creation and api routing.
package httpserver

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/brigita/brigitabank/internal/accountdelivery"
	"github.com/brigita/brigitabank/internal/accountrepo"
	"github.com/brigita/brigitabank/internal/accountservice"
	"github.com/brigita/brigitabank/internal/assertion"
	"github.com/brigita/brigitabank/internal/bankrepo"
	"github.com/brigita/brigitabank/internal/counterparty"
	"github.com/brigita/brigitabank/internal/keyring"
	"github.com/brigita/brigitabank/internal/ledgerrepo"
	"github.com/brigita/brigitabank/internal/middleware"
	"github.com/brigita/brigitabank/internal/registry"
	"github.com/brigita/brigitabank/internal/sessiondelivery"
	"github.com/brigita/brigitabank/internal/sessionrepo"
	"github.com/brigita/brigitabank/internal/sessionservice"
	"github.com/brigita/brigitabank/internal/settlementdelivery"
	"github.com/brigita/brigitabank/internal/settlementservice"
	"github.com/brigita/brigitabank/internal/transferdelivery"
	"github.com/brigita/brigitabank/internal/transferservice"
	"github.com/brigita/brigitabank/internal/userdelivery"
	"github.com/brigita/brigitabank/internal/userrepo"
	"github.com/brigita/brigitabank/internal/userservice"
	"github.com/brigita/brigitabank/pkg/configpkg"
	"github.com/brigita/brigitabank/pkg/currencypkg"
	"github.com/brigita/brigitabank/pkg/tokenpkg"
)

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB       *sql.DB
	Engine   *gin.Engine
	Config   configpkg.Config
	Registry *registry.Client
	Keys     *keyring.Ring
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// New creates Server type with instantiated domains and routes.
func New(conn *sql.DB, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	userRepo := userrepo.NewRepoPGS(conn)
	accountRepo := accountrepo.NewRepoPGS(conn)
	ledgerRepo := ledgerrepo.NewRepoPGS(conn)
	sessionRepo := sessionrepo.NewRepoPGS(conn)
	bankRepo := bankrepo.NewRepoPGS(conn)

	tokenMaker, err := tokenpkg.NewPasetoMaker(config.TokenSymmetricKey)
	if err != nil {
		return nil, errors.New("cannot create token maker")
	}

	ring, err := keyring.Load(config.KeysDir)
	if err != nil {
		return nil, err
	}

	codec := assertion.New(ring, config.AssertionTTL, config.InterbankTimeout)
	registryClient := registry.New(config.CentralBankURL, config.CentralBankAPIKey, config.InterbankTimeout)
	courier := counterparty.New(config.InterbankTimeout)

	userService := userservice.New(userRepo)
	accountService := accountservice.New(accountRepo, config.BankPrefix)
	transferService := transferservice.New(ledgerRepo, accountService, registryClient, codec, courier, config.BankPrefix)
	settlementService := settlementservice.New(codec, ledgerRepo, accountService, bankRepo, registryClient, config.BankPrefix)
	sessionService, err := sessionservice.New(sessionRepo, config, tokenMaker)

	if err != nil {
		return nil, errors.New("cannot initialize session service")
	}

	userHandler := userdelivery.NewHandler(userService, sessionService)
	accountHandler := accountdelivery.NewHandler(accountService)
	transferHandler := transferdelivery.NewHandler(transferService)
	sessionHandler := sessiondelivery.NewHandler(sessionService)
	settlementHandler := settlementdelivery.NewHandler(settlementService, ring)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())

	engine.POST("/users", userHandler.Create)
	engine.POST("/users/login", userHandler.Login)
	engine.POST("/sessions", sessionHandler.RenewAccessToken)

	// Interbank wire boundary: authenticated by assertion signature, not by
	// user session.
	engine.POST("/transactions/b2b", settlementHandler.Settle)
	engine.GET("/keys", settlementHandler.Keys)

	authRoutes := engine.Group("/").Use(middleware.AuthMiddleware(sessionService.TokenMaker))

	authRoutes.POST("/accounts", accountHandler.Create)
	authRoutes.GET("/accounts/:account_number", accountHandler.Get)
	authRoutes.GET("/accounts", accountHandler.List)

	authRoutes.POST("/transfers", transferHandler.Create)
	authRoutes.GET("/transfers", transferHandler.List)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		err := v.RegisterValidation("currency", currencypkg.ValidCurrency)
		if err != nil {
			return nil, errors.New("cannot register currency validator")
		}
	}

	server := &Server{
		DB:       conn,
		Engine:   engine,
		Config:   config,
		Registry: registryClient,
		Keys:     ring,
	}

	return server, nil
}
