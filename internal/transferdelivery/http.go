// Package transferdelivery manages delivery layer of transfers.
package transferdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/brigita/brigitabank/internal/domain"
	"github.com/brigita/brigitabank/internal/middleware"
	"github.com/brigita/brigitabank/pkg/errorspkg"
	"github.com/brigita/brigitabank/pkg/jsonresponse"
	"github.com/brigita/brigitabank/pkg/tokenpkg"
)

// Service provides service layer interface needed by transfer delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transferdelivery
type Service interface {
	Create(ctx context.Context, fromUsername string, arg domain.CreateTransactionParams) (domain.Transaction, error)
	ListByAccount(ctx context.Context, username, accountNumber string, pageSize, pageID int32) ([]domain.Transaction, error)
}

// Handler facilitates transfer delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns transfer handler.
func NewHandler(ts Service) *Handler {
	return &Handler{service: ts}
}

type createRequest struct {
	AccountFrom string `json:"account_from" binding:"required"`
	AccountTo   string `json:"account_to" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
	Currency    string `json:"currency" binding:"required,currency"`
	Explanation string `json:"explanation"`
}

type data struct {
	Transaction domain.Transaction `json:"transaction"`
}
type response struct {
	Data data `json:"data,omitempty"`
}

// Create handles http request to create a transfer.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		var (
			ve     validator.ValidationErrors
			errMsg string
		)

		if errors.As(err, &ve) {
			field := ve[0]
			errMsg = field.Field() + jsonresponse.GetErrorMsg(field)
		}

		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Response{Error: errMsg})

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	arg := domain.CreateTransactionParams{
		AccountFrom: req.AccountFrom,
		AccountTo:   req.AccountTo,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Explanation: req.Explanation,
	}

	transaction, err := h.service.Create(ctx, authPayload.Username, arg)
	if err != nil {
		gctx.JSON(statusFromError(err), jsonresponse.Error(publicError(err)))
		return
	}

	res := response{
		Data: data{transaction},
	}

	gctx.JSON(http.StatusOK, res)
}

type listRequest struct {
	AccountNumber string `form:"account_number" binding:"required"`
	PageID        int32  `form:"page_id" binding:"required,min=1"`
	PageSize      int32  `form:"page_size" binding:"required,min=1,max=100"`
}

type dataTransactions struct {
	Transactions []domain.Transaction `json:"transactions"`
}
type responseTransactions struct {
	Data dataTransactions `json:"data,omitempty"`
}

// List handles http request to list the transaction history of an account.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		var (
			ve     validator.ValidationErrors
			errMsg string
		)

		if errors.As(err, &ve) {
			field := ve[0]
			errMsg = field.Field() + jsonresponse.GetErrorMsg(field)
		}

		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Response{Error: errMsg})

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	transactions, err := h.service.ListByAccount(ctx, authPayload.Username, req.AccountNumber, req.PageSize, req.PageID)
	if err != nil {
		gctx.JSON(statusFromError(err), jsonresponse.Error(publicError(err)))
		return
	}

	res := responseTransactions{
		Data: dataTransactions{transactions},
	}

	gctx.JSON(http.StatusOK, res)
}

// statusFromError maps transfer service errors onto http status codes.
// Insufficient funds gets 402 so that clients can distinguish it from
// validation failures; counterparty and registry outages surface as 502
// because retrying may succeed.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrNegativeAmount),
		errors.Is(err, domain.ErrUnsupportedCurrency),
		errors.Is(err, domain.ErrCurrencyMismatch):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientBalance):
		return http.StatusPaymentRequired
	case errors.Is(err, domain.ErrInvalidOwner):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrBankNotFound),
		errors.Is(err, domain.ErrTransactionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRegistryUnavailable),
		errors.Is(err, domain.ErrCounterpartyUnavailable),
		errors.Is(err, domain.ErrCounterpartyRejected):
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
