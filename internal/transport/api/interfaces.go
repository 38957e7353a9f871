package api

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/azorastack/market/internal/domain"
	"github.com/azorastack/market/internal/repository/repoargs"
	"github.com/azorastack/market/internal/service"
)

// interfaces below exist for the handler mocks only.

type UserServicer interface {
	Register(ctx context.Context, args service.RegisterUserArgs) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	UpdateBankDetails(ctx context.Context, userID int64, details domain.BankDetails) error
}

type ProjectServicer interface {
	Create(ctx context.Context, sellerID int64, title string, price decimal.Decimal) (*domain.Project, error)
	FindByID(ctx context.Context, id int64) (*domain.Project, error)
	ListApproved(ctx context.Context, page repoargs.Page) ([]domain.Project, error)
	Moderate(ctx context.Context, projectID, adminID int64, approve bool) (*domain.Project, error)
}

type OrderServicer interface {
	Create(ctx context.Context, buyerID, projectID int64, paymentGateway string) (*domain.Order, error)
	AttachPaymentOrder(ctx context.Context, orderID int64, paymentOrderID string) error
	FindByID(ctx context.Context, id int64) (*domain.Order, error)
	GetByBuyerID(ctx context.Context, buyerID int64) ([]domain.Order, error)
}

type PaymentServicer interface {
	ConfirmPayment(ctx context.Context, orderID int64, paymentID string) (*domain.Order, error)
	FailPayment(ctx context.Context, orderID int64) error
	HandleGatewayEvent(ctx context.Context, event service.GatewayEvent) error
}

type WalletServicer interface {
	Balance(ctx context.Context, userID int64) (service.BalanceSummary, error)
	Transactions(ctx context.Context, userID int64, page repoargs.Page) ([]domain.WalletTransaction, int64, error)
	Withdrawals(ctx context.Context, sellerID int64, page repoargs.Page) ([]domain.Withdrawal, error)
	RequestWithdrawal(ctx context.Context, sellerID int64, amount decimal.Decimal) (*domain.Withdrawal, error)
}

type SettingsServicer interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
}

type WithdrawalServicer interface {
	PendingReview(ctx context.Context) ([]domain.Withdrawal, error)
	FindByID(ctx context.Context, id int64) (*domain.Withdrawal, error)
	Review(ctx context.Context, args service.ReviewArgs) (*domain.Withdrawal, error)
	Complete(ctx context.Context, args service.CompleteArgs) (*domain.Withdrawal, error)
}
