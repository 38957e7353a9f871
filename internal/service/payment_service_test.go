package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/azorastack/market/internal/domain"
	"github.com/azorastack/market/internal/notify"
	notifymocks "github.com/azorastack/market/internal/notify/mocks"
	"github.com/azorastack/market/internal/repository/repoargs"
	"github.com/azorastack/market/internal/service/mocks"
	"github.com/azorastack/market/pkg/uow"
	uowmocks "github.com/azorastack/market/pkg/uow/mocks"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
)

type PaymentServiceTestSuite struct {
	suite.Suite
	mockCtrl        *gomock.Controller
	mockUOW         *uowmocks.MockUOW
	mockTX          *uowmocks.MockTX
	mockOrderRepo   *mocks.MockOrderRepository
	mockUserRepo    *mocks.MockUserRepository
	mockProjectRepo *mocks.MockProjectRepository
	mockWalletRepo  *mocks.MockWalletTransactionRepository
	mockAuditRepo   *mocks.MockAuditLogRepository
	mockNotifier    *notifymocks.MockNotifier
	paymentService  *PaymentService
}

func TestPaymentServiceSuite(t *testing.T) {
	suite.Run(t, new(PaymentServiceTestSuite))
}

func (s *PaymentServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockTX = uowmocks.NewMockTX(s.mockCtrl)
	s.mockOrderRepo = mocks.NewMockOrderRepository(s.mockCtrl)
	s.mockUserRepo = mocks.NewMockUserRepository(s.mockCtrl)
	s.mockProjectRepo = mocks.NewMockProjectRepository(s.mockCtrl)
	s.mockWalletRepo = mocks.NewMockWalletTransactionRepository(s.mockCtrl)
	s.mockAuditRepo = mocks.NewMockAuditLogRepository(s.mockCtrl)
	s.mockNotifier = notifymocks.NewMockNotifier(s.mockCtrl)

	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.OrderRepoName)).
		Return(s.mockOrderRepo, nil).AnyTimes()
	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.UserRepoName)).
		Return(s.mockUserRepo, nil).AnyTimes()

	log := logrus.New()
	paymentService, servErr := NewPaymentService(s.mockUOW, s.mockNotifier, log)
	s.Require().NoError(servErr)
	s.paymentService = paymentService
}

func (s *PaymentServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *PaymentServiceTestSuite) expectTxRepos() {
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.OrderRepoName)).
		Return(s.mockOrderRepo, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.UserRepoName)).
		Return(s.mockUserRepo, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.ProjectRepoName)).
		Return(s.mockProjectRepo, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.WalletTransactionRepoName)).
		Return(s.mockWalletRepo, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.AuditLogRepoName)).
		Return(s.mockAuditRepo, nil).AnyTimes()
}

func (s *PaymentServiceTestSuite) expectDo() {
	s.mockUOW.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context, uow.TX) error) error {
			return fn(ctx, s.mockTX)
		})
}

func testOrder() *domain.Order {
	return &domain.Order{
		ID:                 1,
		OrderNumber:        "AZR-1A2B3C4D5E6F",
		BuyerID:            10,
		ProjectID:          5,
		SellerID:           20,
		ProjectTitle:       "CRM Starter Kit",
		ProjectPrice:       decimal.NewFromInt(10000),
		PlatformCommission: decimal.NewFromInt(5000),
		SellerEarning:      decimal.NewFromInt(5000),
		CommissionRate:     decimal.NewFromInt(50),
		Status:             domain.OrderStatusCreated,
	}
}

func (s *PaymentServiceTestSuite) TestConfirmPayment() {
	order := testOrder()

	s.expectDo()
	s.expectTxRepos()

	s.mockOrderRepo.EXPECT().
		FindByIDForUpdate(gomock.Any(), order.ID).
		Return(order, nil)

	s.mockOrderRepo.EXPECT().
		MarkCompleted(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.MarkOrderCompleted) error {
			s.Equal(order.ID, args.OrderID)
			s.Equal("pay_123", args.PaymentID)
			s.False(args.PaidAt.IsZero())
			return nil
		})

	// seller wallet is empty before the sale
	s.mockUserRepo.EXPECT().
		BalanceForUpdate(gomock.Any(), order.SellerID).
		Return(decimal.Zero, nil)

	s.mockUserRepo.EXPECT().
		UpdateBalance(gomock.Any(), order.SellerID, decimal.NewFromInt(5000)).
		DoAndReturn(func(_ context.Context, _ int64, balance decimal.Decimal) error {
			s.True(balance.Equal(decimal.NewFromInt(5000)))
			return nil
		})

	s.mockWalletRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.WalletTransactionCreate) (*domain.WalletTransaction, error) {
			s.Equal(order.SellerID, args.UserID)
			s.Equal(domain.TransactionCredit, args.Type)
			s.Equal(domain.SourceSale, args.Source)
			s.True(args.Amount.Equal(decimal.NewFromInt(5000)))
			s.True(args.BalanceBefore.Equal(decimal.Zero))
			s.True(args.BalanceAfter.Equal(decimal.NewFromInt(5000)))
			s.Require().NotNil(args.OrderID)
			s.Equal(order.ID, *args.OrderID)
			return &domain.WalletTransaction{ID: 1}, nil
		})

	s.mockProjectRepo.EXPECT().
		IncrementSalesCount(gomock.Any(), order.ProjectID).
		Return(nil)

	s.mockAuditRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		Return(nil)

	// post commit notifications
	s.mockUserRepo.EXPECT().FindByID(gomock.Any(), order.BuyerID).
		Return(&domain.User{ID: order.BuyerID, Email: "buyer@example.com"}, nil)
	s.mockUserRepo.EXPECT().FindByID(gomock.Any(), order.SellerID).
		Return(&domain.User{ID: order.SellerID, Email: "seller@example.com"}, nil)
	s.mockNotifier.EXPECT().Notify(gomock.Any(), gomock.Any()).
		Do(func(_ context.Context, event notify.Event) {
			s.Equal(notify.EventOrderConfirmed, event.Type)
			s.Equal("buyer@example.com", event.Recipient)
		})
	s.mockNotifier.EXPECT().Notify(gomock.Any(), gomock.Any()).
		Do(func(_ context.Context, event notify.Event) {
			s.Equal(notify.EventSaleRecorded, event.Type)
			s.Equal("seller@example.com", event.Recipient)
		})

	confirmed, err := s.paymentService.ConfirmPayment(context.Background(), order.ID, "pay_123")

	s.Require().NoError(err)
	s.Equal(domain.OrderStatusCompleted, confirmed.Status)
	s.Equal("pay_123", confirmed.PaymentID)
	s.Require().NotNil(confirmed.PaidAt)
}

func (s *PaymentServiceTestSuite) TestConfirmPaymentIdempotent() {
	paidAt := time.Now().Add(-time.Hour)
	order := testOrder()
	order.Status = domain.OrderStatusCompleted
	order.PaymentID = "pay_123"
	order.PaidAt = &paidAt

	s.expectDo()
	s.expectTxRepos()

	// already paid: nothing but the locked read may happen
	s.mockOrderRepo.EXPECT().
		FindByIDForUpdate(gomock.Any(), order.ID).
		Return(order, nil)

	confirmed, err := s.paymentService.ConfirmPayment(context.Background(), order.ID, "pay_retry")

	s.Require().NoError(err)
	s.Equal(domain.OrderStatusCompleted, confirmed.Status)
	s.Equal("pay_123", confirmed.PaymentID)
}

func (s *PaymentServiceTestSuite) TestConfirmPaymentInvalidState() {
	order := testOrder()
	order.Status = domain.OrderStatusPaymentFailed

	s.expectDo()
	s.expectTxRepos()

	s.mockOrderRepo.EXPECT().
		FindByIDForUpdate(gomock.Any(), order.ID).
		Return(order, nil)

	_, err := s.paymentService.ConfirmPayment(context.Background(), order.ID, "pay_123")

	var stateErr *domain.InvalidStateError
	s.Require().Error(err)
	s.Require().ErrorAs(err, &stateErr)
	s.Equal(string(domain.OrderStatusPaymentFailed), stateErr.Current)
}

func (s *PaymentServiceTestSuite) TestConfirmPaymentRollsBackOnLedgerError() {
	order := testOrder()
	ledgerErr := errors.New("insert failed")

	s.expectDo()
	s.expectTxRepos()

	s.mockOrderRepo.EXPECT().FindByIDForUpdate(gomock.Any(), order.ID).Return(order, nil)
	s.mockOrderRepo.EXPECT().MarkCompleted(gomock.Any(), gomock.Any()).Return(nil)
	s.mockUserRepo.EXPECT().BalanceForUpdate(gomock.Any(), order.SellerID).Return(decimal.Zero, nil)
	s.mockUserRepo.EXPECT().UpdateBalance(gomock.Any(), order.SellerID, gomock.Any()).Return(nil)
	s.mockWalletRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, ledgerErr)

	_, err := s.paymentService.ConfirmPayment(context.Background(), order.ID, "pay_123")

	s.Require().Error(err)
	s.Require().ErrorIs(err, ledgerErr)
}

func (s *PaymentServiceTestSuite) TestFailPayment() {
	s.mockOrderRepo.EXPECT().MarkPaymentFailed(gomock.Any(), int64(1)).Return(nil)

	s.Require().NoError(s.paymentService.FailPayment(context.Background(), 1))
}

func (s *PaymentServiceTestSuite) TestFailPaymentAlreadyFailed() {
	order := testOrder()
	order.Status = domain.OrderStatusPaymentFailed

	s.mockOrderRepo.EXPECT().MarkPaymentFailed(gomock.Any(), order.ID).
		Return(domain.ErrRecordNotFound)
	s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), order.ID).Return(order, nil)

	s.Require().NoError(s.paymentService.FailPayment(context.Background(), order.ID))
}

func (s *PaymentServiceTestSuite) TestFailPaymentAfterPaid() {
	order := testOrder()
	order.Status = domain.OrderStatusCompleted

	s.mockOrderRepo.EXPECT().MarkPaymentFailed(gomock.Any(), order.ID).
		Return(domain.ErrRecordNotFound)
	s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), order.ID).Return(order, nil)

	err := s.paymentService.FailPayment(context.Background(), order.ID)

	var stateErr *domain.InvalidStateError
	s.Require().Error(err)
	s.Require().ErrorAs(err, &stateErr)
}

func (s *PaymentServiceTestSuite) TestHandleGatewayEventIgnoresUnknownType() {
	err := s.paymentService.HandleGatewayEvent(context.Background(), GatewayEvent{
		Type:           "refund.created",
		PaymentOrderID: "po_1",
	})
	s.Require().NoError(err)
}

// A freshly created order must be resolvable by the gateway reference it was
// created with, all the way through settlement.
func (s *PaymentServiceTestSuite) TestGatewayEventSettlesCreatedOrder() {
	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.ProjectRepoName)).
		Return(s.mockProjectRepo, nil).AnyTimes()
	mockSettings := mocks.NewMockSettingsProvider(s.mockCtrl)

	orderService, servErr := NewOrderService(s.mockUOW, mockSettings)
	s.Require().NoError(servErr)

	project := &domain.Project{
		ID:       5,
		SellerID: 20,
		Title:    "CRM Starter Kit",
		Price:    decimal.NewFromInt(10000),
		Status:   domain.ProjectStatusApproved,
	}
	s.mockProjectRepo.EXPECT().FindByID(gomock.Any(), project.ID).Return(project, nil)
	mockSettings.EXPECT().CommissionRate(gomock.Any()).Return(decimal.NewFromInt(50), nil)

	s.mockOrderRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.CreateOrder) (*domain.Order, error) {
			return &domain.Order{
				ID:            1,
				OrderNumber:   args.OrderNumber,
				BuyerID:       args.BuyerID,
				ProjectID:     args.ProjectID,
				SellerID:      project.SellerID,
				ProjectTitle:  project.Title,
				ProjectPrice:  args.ProjectPrice,
				SellerEarning: args.SellerEarning,
				Status:        domain.OrderStatusCreated,
			}, nil
		})
	s.mockOrderRepo.EXPECT().SetPaymentOrderID(gomock.Any(), int64(1), gomock.Any()).Return(nil)

	order, createErr := orderService.Create(context.Background(), 10, project.ID, "razorpay")
	s.Require().NoError(createErr)
	s.Require().NotEmpty(order.PaymentOrderID)

	// the gateway echoes the reference back on capture
	s.mockOrderRepo.EXPECT().
		FindByPaymentOrderID(gomock.Any(), order.PaymentOrderID).
		Return(order, nil)

	s.expectDo()
	s.expectTxRepos()
	s.mockOrderRepo.EXPECT().FindByIDForUpdate(gomock.Any(), order.ID).Return(order, nil)
	s.mockOrderRepo.EXPECT().MarkCompleted(gomock.Any(), gomock.Any()).Return(nil)
	s.mockUserRepo.EXPECT().BalanceForUpdate(gomock.Any(), order.SellerID).Return(decimal.Zero, nil)
	s.mockUserRepo.EXPECT().UpdateBalance(gomock.Any(), order.SellerID, gomock.Any()).Return(nil)
	s.mockWalletRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(&domain.WalletTransaction{ID: 1}, nil)
	s.mockProjectRepo.EXPECT().IncrementSalesCount(gomock.Any(), order.ProjectID).Return(nil)
	s.mockAuditRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	s.mockUserRepo.EXPECT().FindByID(gomock.Any(), order.BuyerID).
		Return(&domain.User{ID: order.BuyerID, Email: "buyer@example.com"}, nil)
	s.mockUserRepo.EXPECT().FindByID(gomock.Any(), order.SellerID).
		Return(&domain.User{ID: order.SellerID, Email: "seller@example.com"}, nil)
	s.mockNotifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Times(2)

	err := s.paymentService.HandleGatewayEvent(context.Background(), GatewayEvent{
		Type:           GatewayEventCaptured,
		PaymentOrderID: order.PaymentOrderID,
		PaymentID:      "pay_123",
	})

	s.Require().NoError(err)
	s.Equal(domain.OrderStatusCompleted, order.Status)
	s.Equal("pay_123", order.PaymentID)
}

func (s *PaymentServiceTestSuite) TestHandleGatewayEventFailed() {
	order := testOrder()

	s.mockOrderRepo.EXPECT().FindByPaymentOrderID(gomock.Any(), "po_1").Return(order, nil)
	s.mockOrderRepo.EXPECT().MarkPaymentFailed(gomock.Any(), order.ID).Return(nil)

	err := s.paymentService.HandleGatewayEvent(context.Background(), GatewayEvent{
		Type:           GatewayEventFailed,
		PaymentOrderID: "po_1",
	})
	s.Require().NoError(err)
}
