// Package settlementdelivery manages delivery layer of incoming interbank
// settlements and key discovery.
//
// Unlike the user-facing handlers the bodies here are part of the interbank
// wire contract: errors carry a message field and a successful settlement
// answers with the receiver's name.
package settlementdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/brigita/brigitabank/internal/domain"
	"github.com/brigita/brigitabank/internal/keyring"
	"github.com/brigita/brigitabank/pkg/errorspkg"
	"github.com/brigita/brigitabank/pkg/jsonresponse"
)

// Service provides service layer interface needed by settlement delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package settlementdelivery
type Service interface {
	Process(ctx context.Context, token string) (string, error)
}

// KeyPublisher exposes the bank's public key discovery document.
type KeyPublisher interface {
	JWKS() keyring.JWKS
}

// Handler facilitates settlement delivery layer logic.
type Handler struct {
	service Service
	keys    KeyPublisher
}

// NewHandler returns settlement handler.
func NewHandler(ss Service, keys KeyPublisher) *Handler {
	return &Handler{
		service: ss,
		keys:    keys,
	}
}

type settleRequest struct {
	Token string `json:"token" binding:"required"`
}

type settleResponse struct {
	ReceiverName string `json:"receiverName"`
}

// Settle handles an incoming transfer assertion from a counterparty bank.
func (h *Handler) Settle(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req settleRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Message(domain.ErrInvalidAssertion))

		return
	}

	receiverName, err := h.service.Process(ctx, req.Token)
	if err != nil {
		gctx.JSON(statusFromError(err), jsonresponse.Message(publicError(err)))
		return
	}

	gctx.JSON(http.StatusOK, settleResponse{ReceiverName: receiverName})
}

// Keys handles http request for the bank's public key set.
func (h *Handler) Keys(gctx *gin.Context) {
	gctx.JSON(http.StatusOK, h.keys.JWKS())
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidAssertion),
		errors.Is(err, domain.ErrInvalidSignature),
		errors.Is(err, domain.ErrWrongRecipient),
		errors.Is(err, domain.ErrUnknownSenderBank),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrNegativeAmount),
		errors.Is(err, domain.ErrCurrencyMismatch),
		errors.Is(err, domain.ErrUnsupportedCurrency):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRegistryUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func publicError(err error) error {
	if statusFromError(err) == http.StatusInternalServerError {
		return errorspkg.ErrInternal
	}

	return err
}
