package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID            int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Email         string
	Password      string
	Name          string
	Role          RoleType
	WalletBalance decimal.Decimal
	BankDetails   BankDetails
}

// BankDetails is the payout destination on a user profile. A copy of it is
// snapshotted onto every withdrawal at request time, so later profile edits
// never change a request already filed.
type BankDetails struct {
	BankName          string `json:"bank_name"`
	AccountNumber     string `json:"account_number"`
	IFSCCode          string `json:"ifsc_code"`
	AccountHolderName string `json:"account_holder_name"`
	UPIID             string `json:"upi_id,omitempty"`
}

// Complete reports whether the details suffice for a payout. UPI is optional.
func (b BankDetails) Complete() bool {
	return b.BankName != "" && b.AccountNumber != "" && b.IFSCCode != "" && b.AccountHolderName != ""
}

type Project struct {
	ID         int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
	SellerID   int64
	Title      string
	Price      decimal.Decimal
	Status     ProjectStatusType
	SalesCount int64
}

// Order is a single purchase attempt. The money fields are computed once at
// creation from the commission rate in effect at that moment and are never
// re-derived: PlatformCommission + SellerEarning == ProjectPrice.
type Order struct {
	ID                 int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
	OrderNumber        string
	BuyerID            int64
	ProjectID          int64
	SellerID           int64
	ProjectTitle       string
	ProjectPrice       decimal.Decimal
	PlatformCommission decimal.Decimal
	SellerEarning      decimal.Decimal
	CommissionRate     decimal.Decimal
	Status             OrderStatusType
	PaymentGateway     string
	PaymentOrderID     string
	PaymentID          string
	PaidAt             *time.Time
}

// WalletTransaction is an append-only ledger entry. BalanceAfter always
// equals BalanceBefore plus the signed Amount (credit positive, debit
// negative); rows are immutable once written.
type WalletTransaction struct {
	ID            int64
	CreatedAt     time.Time
	UserID        int64
	Type          TransactionType
	Source        TransactionSource
	Amount        decimal.Decimal
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	OrderID       *int64
	WithdrawalID  *int64
	Description   string
}

type Withdrawal struct {
	ID               int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
	WithdrawalNumber string
	SellerID         int64
	Amount           decimal.Decimal
	BankSnapshot     BankDetails
	Status           WithdrawalStatusType
	ReviewedBy       *int64
	ReviewedAt       *time.Time
	RejectedAt       *time.Time
	CompletedAt      *time.Time
	ReviewNotes      string
	TransactionID    string
	PaymentProof     string
}

type Setting struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

type AuditLog struct {
	ID         int64
	CreatedAt  time.Time
	UserID     int64
	Action     string
	EntityType string
	EntityID   int64
	Changes    []byte
}
