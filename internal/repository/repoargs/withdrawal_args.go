package repoargs

import (
	"time"

	"github.com/azorastack/market/internal/domain"
	"github.com/shopspring/decimal"
)

type WithdrawalCreate struct {
	WithdrawalNumber string
	SellerID         int64
	Amount           decimal.Decimal
	BankSnapshot     domain.BankDetails
}

// WithdrawalReview transitions a PENDING withdrawal to either APPROVED or
// REJECTED. RejectedAt is set on the reject branch only.
type WithdrawalReview struct {
	WithdrawalID int64
	Status       domain.WithdrawalStatusType
	ReviewedBy   int64
	ReviewedAt   time.Time
	RejectedAt   *time.Time
	ReviewNotes  string
}

type WithdrawalComplete struct {
	WithdrawalID  int64
	TransactionID string
	PaymentProof  string
	CompletedAt   time.Time
}
