package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/azorastack/market/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type WalletHandler struct {
	walletSvs WalletServicer
}

func NewWalletHandler(walletSvs WalletServicer) *WalletHandler {
	return &WalletHandler{
		walletSvs: walletSvs,
	}
}

type BalanceResponse struct {
	Balance       decimal.Decimal `json:"balance"`
	LedgerBalance decimal.Decimal `json:"ledger_balance"`
}

// Balance GET RouteGroup + WalletBalanceRoute. Returns the wallet balance
// next to the signed ledger sum; the two differing means the ledger drifted.
func (h *WalletHandler) Balance(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	balance, err := h.walletSvs.Balance(ctx, getUserIDFromContext(c))
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}
	c.JSON(http.StatusOK, BalanceResponse{
		Balance:       balance.Available,
		LedgerBalance: balance.LedgerTotal,
	})
}

type TransactionResponse struct {
	ID            int64                    `json:"id"`
	Type          domain.TransactionType   `json:"type"`
	Source        domain.TransactionSource `json:"source"`
	Amount        decimal.Decimal          `json:"amount"`
	BalanceBefore decimal.Decimal          `json:"balance_before"`
	BalanceAfter  decimal.Decimal          `json:"balance_after"`
	Description   string                   `json:"description"`
	CreatedAt     time.Time                `json:"created_at"`
}

// Transactions GET RouteGroup + WalletTransactionsRoute.
func (h *WalletHandler) Transactions(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	transactions, total, err := h.walletSvs.Transactions(ctx, getUserIDFromContext(c), getPageFromQuery(c))
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	response := make([]TransactionResponse, len(transactions))
	for i, t := range transactions {
		response[i] = TransactionResponse{
			ID:            t.ID,
			Type:          t.Type,
			Source:        t.Source,
			Amount:        t.Amount,
			BalanceBefore: t.BalanceBefore,
			BalanceAfter:  t.BalanceAfter,
			Description:   t.Description,
			CreatedAt:     t.CreatedAt,
		}
	}
	c.JSON(http.StatusOK, gin.H{"transactions": response, "total": total})
}

type WithdrawalRequestParams struct {
	Amount decimal.Decimal `binding:"required" json:"amount"`
}

type WithdrawalResponse struct {
	ID               int64                       `json:"id"`
	WithdrawalNumber string                      `json:"withdrawal_number"`
	Amount           decimal.Decimal             `json:"amount"`
	Status           domain.WithdrawalStatusType `json:"status"`
	ReviewNotes      string                      `json:"review_notes,omitempty"`
	TransactionID    string                      `json:"transaction_id,omitempty"`
	CreatedAt        time.Time                   `json:"created_at"`
	CompletedAt      *time.Time                  `json:"completed_at,omitempty"`
}

// RequestWithdrawal POST RouteGroup + WalletWithdrawalsRoute.
func (h *WalletHandler) RequestWithdrawal(c *gin.Context) {
	var params WithdrawalRequestParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}
	if params.Amount.LessThanOrEqual(decimal.Zero) {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "amount must be positive"})
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	withdrawal, err := h.walletSvs.RequestWithdrawal(ctx, getUserIDFromContext(c), params.Amount)
	if err != nil {
		var belowMin *domain.BelowMinimumError
		switch {
		case errors.As(err, &belowMin):
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": belowMin.Error()})
		case errors.Is(err, domain.ErrInsufficientBalance):
			c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{"error": "insufficient balance"})
		case errors.Is(err, domain.ErrIncompleteBankDetails):
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "bank details are incomplete"})
		default:
			_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		}
		return
	}

	c.JSON(http.StatusCreated, newWithdrawalResponse(withdrawal))
}

// Withdrawals GET RouteGroup + WalletWithdrawalsRoute.
func (h *WalletHandler) Withdrawals(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	withdrawals, err := h.walletSvs.Withdrawals(ctx, getUserIDFromContext(c), getPageFromQuery(c))
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	if len(withdrawals) == 0 {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}

	response := make([]WithdrawalResponse, len(withdrawals))
	for i := range withdrawals {
		response[i] = newWithdrawalResponse(&withdrawals[i])
	}
	c.JSON(http.StatusOK, response)
}

func newWithdrawalResponse(withdrawal *domain.Withdrawal) WithdrawalResponse {
	return WithdrawalResponse{
		ID:               withdrawal.ID,
		WithdrawalNumber: withdrawal.WithdrawalNumber,
		Amount:           withdrawal.Amount,
		Status:           withdrawal.Status,
		ReviewNotes:      withdrawal.ReviewNotes,
		TransactionID:    withdrawal.TransactionID,
		CreatedAt:        withdrawal.CreatedAt,
		CompletedAt:      withdrawal.CompletedAt,
	}
}
