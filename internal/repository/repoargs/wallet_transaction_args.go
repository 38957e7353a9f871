package repoargs

import (
	"github.com/azorastack/market/internal/domain"
	"github.com/shopspring/decimal"
)

type WalletTransactionCreate struct {
	UserID        int64
	Type          domain.TransactionType
	Source        domain.TransactionSource
	Amount        decimal.Decimal
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	OrderID       *int64
	WithdrawalID  *int64
	Description   string
}
