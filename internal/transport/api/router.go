package api

import (
	"time"

	"github.com/azorastack/market/internal/metrics"
	"github.com/azorastack/market/internal/transport/api/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	DefaultServiceTimeout = 3 * time.Second
)

const (
	RouteGroup       = "/api"
	RegisterRoute    = "/user/register"
	LoginRoute       = "/user/login"
	BankDetailsRoute = "/user/bank-details"

	ProjectsRoute = "/projects"
	OrdersRoute   = "/orders"

	PaymentsWebhookRoute = "/payments/webhook"

	WalletBalanceRoute      = "/wallet/balance"
	WalletTransactionsRoute = "/wallet/transactions"
	WalletWithdrawalsRoute  = "/wallet/withdrawals"

	AdminWithdrawalsRoute        = "/admin/withdrawals"
	AdminWithdrawalReviewRoute   = "/admin/withdrawals/:id/review"
	AdminWithdrawalCompleteRoute = "/admin/withdrawals/:id/complete"
	AdminProjectModerateRoute    = "/admin/projects/:id/moderate"
	AdminOrderManualRoute        = "/admin/orders/manual"
	AdminSettingRoute            = "/admin/settings/:key"

	MetricsRoute = "/metrics"
)

type RouterArgs struct {
	Logger            *logrus.Logger
	UserService       UserServicer
	ProjectService    ProjectServicer
	OrderService      OrderServicer
	PaymentService    PaymentServicer
	WalletService     WalletServicer
	WithdrawalService WithdrawalServicer
	Settings          SettingsServicer
	JWTSecretKey      []byte
	WebhookSecretKey  []byte
}

func New(args RouterArgs) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if args.Logger != nil {
		r.Use(middlewares.Logger(args.Logger))
	}
	r.Use(middlewares.Errors())
	r.Use(middlewares.Metrics())

	authHandler := NewAuthHandler(args.UserService, args.JWTSecretKey)
	projectsHandler := NewProjectsHandler(args.ProjectService)
	ordersHandler := NewOrdersHandler(args.OrderService)
	paymentsHandler := NewPaymentsHandler(args.PaymentService, args.WebhookSecretKey)
	walletHandler := NewWalletHandler(args.WalletService)
	adminHandler := NewAdminHandler(args.WithdrawalService, args.OrderService, args.PaymentService)
	settingsHandler := NewSettingsHandler(args.Settings)

	r.GET(MetricsRoute, gin.WrapH(metrics.Handler()))

	api := r.Group(RouteGroup)

	api.POST(RegisterRoute, middlewares.NonAuthRequired(args.JWTSecretKey), authHandler.Register)
	api.POST(LoginRoute, middlewares.NonAuthRequired(args.JWTSecretKey), authHandler.Login)

	// the gateway signs the webhook instead of carrying a user token
	api.POST(PaymentsWebhookRoute, paymentsHandler.Webhook)

	api.GET(ProjectsRoute, projectsHandler.Index)

	api.Use(middlewares.AuthRequired(args.JWTSecretKey))
	// every route below requires an authorized user.
	api.PUT(BankDetailsRoute, authHandler.UpdateBankDetails)

	api.POST(ProjectsRoute, projectsHandler.Create)

	api.POST(OrdersRoute, ordersHandler.Create)
	api.GET(OrdersRoute, ordersHandler.Index)

	api.GET(WalletBalanceRoute, walletHandler.Balance)
	api.GET(WalletTransactionsRoute, walletHandler.Transactions)
	api.POST(WalletWithdrawalsRoute, walletHandler.RequestWithdrawal)
	api.GET(WalletWithdrawalsRoute, walletHandler.Withdrawals)

	admin := api.Group("", middlewares.AdminRequired())
	admin.GET(AdminWithdrawalsRoute, adminHandler.PendingWithdrawals)
	admin.POST(AdminWithdrawalReviewRoute, adminHandler.ReviewWithdrawal)
	admin.POST(AdminWithdrawalCompleteRoute, adminHandler.CompleteWithdrawal)
	admin.POST(AdminProjectModerateRoute, projectsHandler.Moderate)
	admin.POST(AdminOrderManualRoute, adminHandler.ManualOrder)
	admin.GET(AdminSettingRoute, settingsHandler.Show)
	admin.PUT(AdminSettingRoute, settingsHandler.Update)

	return r
}
