package service

import (
	"context"

	"github.com/azorastack/market/internal/domain"
	"github.com/azorastack/market/internal/repository/repoargs"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

type UserRepository interface {
	CreateUser(ctx context.Context, args repoargs.CreateUser) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	BalanceForUpdate(ctx context.Context, userID int64) (decimal.Decimal, error)
	UpdateBalance(ctx context.Context, userID int64, balance decimal.Decimal) error
	UpdateBankDetails(ctx context.Context, userID int64, details domain.BankDetails) error
}

type ProjectRepository interface {
	Create(ctx context.Context, args repoargs.CreateProject) (*domain.Project, error)
	FindByID(ctx context.Context, id int64) (*domain.Project, error)
	UpdateStatus(ctx context.Context, id int64, status domain.ProjectStatusType) (*domain.Project, error)
	IncrementSalesCount(ctx context.Context, id int64) error
	ListApproved(ctx context.Context, page repoargs.Page) ([]domain.Project, error)
}

type OrderRepository interface {
	Create(ctx context.Context, args repoargs.CreateOrder) (*domain.Order, error)
	FindByID(ctx context.Context, id int64) (*domain.Order, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*domain.Order, error)
	FindByPaymentOrderID(ctx context.Context, paymentOrderID string) (*domain.Order, error)
	SetPaymentOrderID(ctx context.Context, id int64, paymentOrderID string) error
	MarkCompleted(ctx context.Context, args repoargs.MarkOrderCompleted) error
	MarkPaymentFailed(ctx context.Context, id int64) error
	GetByBuyerID(ctx context.Context, buyerID int64) ([]domain.Order, error)
}

type WalletTransactionRepository interface {
	Create(ctx context.Context, args repoargs.WalletTransactionCreate) (*domain.WalletTransaction, error)
	GetByUserID(ctx context.Context, userID int64, page repoargs.Page) ([]domain.WalletTransaction, int64, error)
	SumSignedByUserID(ctx context.Context, userID int64) (decimal.Decimal, error)
}

type WithdrawalRepository interface {
	Create(ctx context.Context, args repoargs.WithdrawalCreate) (*domain.Withdrawal, error)
	FindByID(ctx context.Context, id int64) (*domain.Withdrawal, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*domain.Withdrawal, error)
	GetBySellerID(ctx context.Context, sellerID int64, page repoargs.Page) ([]domain.Withdrawal, error)
	GetPendingReview(ctx context.Context) ([]domain.Withdrawal, error)
	UpdateReviewed(ctx context.Context, args repoargs.WithdrawalReview) (*domain.Withdrawal, error)
	MarkCompleted(ctx context.Context, args repoargs.WithdrawalComplete) (*domain.Withdrawal, error)
}

type AuditLogRepository interface {
	Create(ctx context.Context, args repoargs.AuditLogCreate) error
}

// SettingsProvider hands out the platform settings current at call time.
// Implemented by settings.Cache.
type SettingsProvider interface {
	CommissionRate(ctx context.Context) (decimal.Decimal, error)
	MinimumWithdrawal(ctx context.Context) (decimal.Decimal, error)
}
