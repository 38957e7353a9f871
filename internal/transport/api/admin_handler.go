package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/azorastack/market/internal/domain"
	"github.com/azorastack/market/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type AdminHandler struct {
	withdrawalSvs WithdrawalServicer
	orderSvs      OrderServicer
	paymentSvs    PaymentServicer
}

func NewAdminHandler(withdrawalSvs WithdrawalServicer, orderSvs OrderServicer, paymentSvs PaymentServicer) *AdminHandler {
	return &AdminHandler{
		withdrawalSvs: withdrawalSvs,
		orderSvs:      orderSvs,
		paymentSvs:    paymentSvs,
	}
}

// PendingWithdrawals GET RouteGroup + AdminWithdrawalsRoute. The payout
// queue: unreviewed requests plus approved ones not yet paid out.
func (h *AdminHandler) PendingWithdrawals(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	withdrawals, err := h.withdrawalSvs.PendingReview(ctx)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	response := make([]WithdrawalResponse, len(withdrawals))
	for i := range withdrawals {
		response[i] = newWithdrawalResponse(&withdrawals[i])
	}
	c.JSON(http.StatusOK, response)
}

type WithdrawalReviewParams struct {
	Approve bool   `json:"approve"`
	Notes   string `binding:"max=500" json:"notes"`
}

// ReviewWithdrawal POST RouteGroup + AdminWithdrawalReviewRoute. Resolves a
// PENDING withdrawal; a rejected one is refunded in the same transaction.
func (h *AdminHandler) ReviewWithdrawal(c *gin.Context) {
	withdrawalID, ok := getIDParam(c, "id")
	if !ok {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	var params WithdrawalReviewParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	withdrawal, err := h.withdrawalSvs.Review(ctx, service.ReviewArgs{
		WithdrawalID: withdrawalID,
		AdminID:      getUserIDFromContext(c),
		Approve:      params.Approve,
		Notes:        params.Notes,
	})
	if err != nil {
		h.abortWithStateError(c, err)
		return
	}
	c.JSON(http.StatusOK, newWithdrawalResponse(withdrawal))
}

type WithdrawalCompleteParams struct {
	TransactionID string `binding:"required,min=1,max=100" json:"transaction_id"`
	PaymentProof  string `binding:"omitempty,max=500"      json:"payment_proof"`
}

// CompleteWithdrawal POST RouteGroup + AdminWithdrawalCompleteRoute. Records
// the bank transfer reference for an approved payout.
func (h *AdminHandler) CompleteWithdrawal(c *gin.Context) {
	withdrawalID, ok := getIDParam(c, "id")
	if !ok {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	var params WithdrawalCompleteParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		var valErrs validator.ValidationErrors
		if errors.As(bindErr, &valErrs) {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": valErrs.Error()})
			return
		}
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	withdrawal, err := h.withdrawalSvs.Complete(ctx, service.CompleteArgs{
		WithdrawalID:  withdrawalID,
		AdminID:       getUserIDFromContext(c),
		TransactionID: params.TransactionID,
		PaymentProof:  params.PaymentProof,
	})
	if err != nil {
		h.abortWithStateError(c, err)
		return
	}
	c.JSON(http.StatusOK, newWithdrawalResponse(withdrawal))
}

type ManualOrderParams struct {
	BuyerID   int64  `binding:"required,gt=0"        json:"buyer_id"`
	ProjectID int64  `binding:"required,gt=0"        json:"project_id"`
	PaymentID string `binding:"omitempty,max=100"    json:"payment_id"`
}

// ManualOrder POST RouteGroup + AdminOrderManualRoute. Records an offline
// sale: the order is created on the buyer's behalf and confirmed in the same
// request, crediting the seller like any gateway payment.
func (h *AdminHandler) ManualOrder(c *gin.Context) {
	var params ManualOrderParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}
	if params.PaymentID == "" {
		params.PaymentID = "manual"
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	order, createErr := h.orderSvs.Create(ctx, params.BuyerID, params.ProjectID, "manual")
	if createErr != nil {
		h.abortWithStateError(c, createErr)
		return
	}

	confirmed, confirmErr := h.paymentSvs.ConfirmPayment(ctx, order.ID, params.PaymentID)
	if confirmErr != nil {
		h.abortWithStateError(c, confirmErr)
		return
	}

	c.JSON(http.StatusCreated, newOrderResponse(confirmed))
}

func (h *AdminHandler) abortWithStateError(c *gin.Context, err error) {
	var stateErr *domain.InvalidStateError
	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		c.AbortWithStatus(http.StatusNotFound)
	case errors.As(err, &stateErr):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": stateErr.Error()})
	default:
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
	}
}
