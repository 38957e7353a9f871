package service

import (
	"context"
	"testing"

	"github.com/azorastack/market/internal/domain"
	notifymocks "github.com/azorastack/market/internal/notify/mocks"
	"github.com/azorastack/market/internal/repository/repoargs"
	"github.com/azorastack/market/internal/service/mocks"
	"github.com/azorastack/market/pkg/uow"
	uowmocks "github.com/azorastack/market/pkg/uow/mocks"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type WalletServiceTestSuite struct {
	suite.Suite
	mockCtrl           *gomock.Controller
	mockUOW            *uowmocks.MockUOW
	mockTX             *uowmocks.MockTX
	mockUserRepo       *mocks.MockUserRepository
	mockWalletRepo     *mocks.MockWalletTransactionRepository
	mockWithdrawalRepo *mocks.MockWithdrawalRepository
	mockAuditRepo      *mocks.MockAuditLogRepository
	mockSettings       *mocks.MockSettingsProvider
	mockNotifier       *notifymocks.MockNotifier
	walletService      *WalletService
}

func TestWalletServiceSuite(t *testing.T) {
	suite.Run(t, new(WalletServiceTestSuite))
}

func (s *WalletServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockTX = uowmocks.NewMockTX(s.mockCtrl)
	s.mockUserRepo = mocks.NewMockUserRepository(s.mockCtrl)
	s.mockWalletRepo = mocks.NewMockWalletTransactionRepository(s.mockCtrl)
	s.mockWithdrawalRepo = mocks.NewMockWithdrawalRepository(s.mockCtrl)
	s.mockAuditRepo = mocks.NewMockAuditLogRepository(s.mockCtrl)
	s.mockSettings = mocks.NewMockSettingsProvider(s.mockCtrl)
	s.mockNotifier = notifymocks.NewMockNotifier(s.mockCtrl)

	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.UserRepoName)).
		Return(s.mockUserRepo, nil).AnyTimes()
	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.WalletTransactionRepoName)).
		Return(s.mockWalletRepo, nil).AnyTimes()
	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.WithdrawalRepoName)).
		Return(s.mockWithdrawalRepo, nil).AnyTimes()

	walletService, servErr := NewWalletService(s.mockUOW, s.mockSettings, s.mockNotifier)
	s.Require().NoError(servErr)
	s.walletService = walletService
}

func (s *WalletServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *WalletServiceTestSuite) expectTxRepos() {
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.UserRepoName)).
		Return(s.mockUserRepo, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.WalletTransactionRepoName)).
		Return(s.mockWalletRepo, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.WithdrawalRepoName)).
		Return(s.mockWithdrawalRepo, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.AuditLogRepoName)).
		Return(s.mockAuditRepo, nil).AnyTimes()
}

func (s *WalletServiceTestSuite) expectDo() {
	s.mockUOW.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context, uow.TX) error) error {
			return fn(ctx, s.mockTX)
		})
}

func sellerWithBank(balance int64) *domain.User {
	return &domain.User{
		ID:            20,
		Email:         "seller@example.com",
		Role:          domain.RoleSeller,
		WalletBalance: decimal.NewFromInt(balance),
		BankDetails: domain.BankDetails{
			BankName:          "HDFC",
			AccountNumber:     "1234567890",
			IFSCCode:          "HDFC0001234",
			AccountHolderName: "Test Seller",
		},
	}
}

func (s *WalletServiceTestSuite) TestRequestWithdrawalBelowMinimum() {
	s.mockSettings.EXPECT().MinimumWithdrawal(gomock.Any()).
		Return(decimal.NewFromInt(300), nil)

	_, err := s.walletService.RequestWithdrawal(context.Background(), 20, decimal.NewFromInt(100))

	var belowMin *domain.BelowMinimumError
	s.Require().Error(err)
	s.Require().ErrorAs(err, &belowMin)
	s.True(belowMin.Minimum.Equal(decimal.NewFromInt(300)))
}

func (s *WalletServiceTestSuite) TestRequestWithdrawalIncompleteBankDetails() {
	seller := sellerWithBank(5000)
	seller.BankDetails.AccountNumber = ""

	s.mockSettings.EXPECT().MinimumWithdrawal(gomock.Any()).
		Return(decimal.NewFromInt(300), nil)

	s.expectDo()
	s.expectTxRepos()

	s.mockUserRepo.EXPECT().FindByID(gomock.Any(), seller.ID).Return(seller, nil)

	_, err := s.walletService.RequestWithdrawal(context.Background(), seller.ID, decimal.NewFromInt(1000))

	s.Require().ErrorIs(err, domain.ErrIncompleteBankDetails)
}

func (s *WalletServiceTestSuite) TestRequestWithdrawalInsufficientBalance() {
	seller := sellerWithBank(500)

	s.mockSettings.EXPECT().MinimumWithdrawal(gomock.Any()).
		Return(decimal.NewFromInt(300), nil)

	s.expectDo()
	s.expectTxRepos()

	s.mockUserRepo.EXPECT().FindByID(gomock.Any(), seller.ID).Return(seller, nil)
	s.mockUserRepo.EXPECT().BalanceForUpdate(gomock.Any(), seller.ID).
		Return(decimal.NewFromInt(500), nil)

	// the transaction aborts before any balance or withdrawal write
	_, err := s.walletService.RequestWithdrawal(context.Background(), seller.ID, decimal.NewFromInt(1000))

	s.Require().ErrorIs(err, domain.ErrInsufficientBalance)
}

func (s *WalletServiceTestSuite) TestRequestWithdrawal() {
	seller := sellerWithBank(5000)
	amount := decimal.NewFromInt(3000)

	s.mockSettings.EXPECT().MinimumWithdrawal(gomock.Any()).
		Return(decimal.NewFromInt(300), nil)

	s.expectDo()
	s.expectTxRepos()

	s.mockUserRepo.EXPECT().FindByID(gomock.Any(), seller.ID).Return(seller, nil)
	s.mockUserRepo.EXPECT().BalanceForUpdate(gomock.Any(), seller.ID).
		Return(decimal.NewFromInt(5000), nil)
	s.mockUserRepo.EXPECT().
		UpdateBalance(gomock.Any(), seller.ID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ int64, balance decimal.Decimal) error {
			s.True(balance.Equal(decimal.NewFromInt(2000)))
			return nil
		})

	s.mockWithdrawalRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.WithdrawalCreate) (*domain.Withdrawal, error) {
			s.Equal(seller.ID, args.SellerID)
			s.True(args.Amount.Equal(amount))
			s.Equal(seller.BankDetails, args.BankSnapshot)
			s.Contains(args.WithdrawalNumber, "WD-")
			return &domain.Withdrawal{
				ID:               7,
				WithdrawalNumber: args.WithdrawalNumber,
				SellerID:         args.SellerID,
				Amount:           args.Amount,
				BankSnapshot:     args.BankSnapshot,
				Status:           domain.WithdrawalStatusPending,
			}, nil
		})

	s.mockWalletRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.WalletTransactionCreate) (*domain.WalletTransaction, error) {
			s.Equal(domain.TransactionDebit, args.Type)
			s.Equal(domain.SourceWithdrawal, args.Source)
			s.True(args.Amount.Equal(amount))
			s.True(args.BalanceBefore.Equal(decimal.NewFromInt(5000)))
			s.True(args.BalanceAfter.Equal(decimal.NewFromInt(2000)))
			s.Require().NotNil(args.WithdrawalID)
			s.Equal(int64(7), *args.WithdrawalID)
			return &domain.WalletTransaction{ID: 1}, nil
		})

	s.mockAuditRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	s.mockNotifier.EXPECT().Notify(gomock.Any(), gomock.Any())

	withdrawal, err := s.walletService.RequestWithdrawal(context.Background(), seller.ID, amount)

	s.Require().NoError(err)
	s.Equal(domain.WithdrawalStatusPending, withdrawal.Status)
	s.True(withdrawal.Amount.Equal(amount))
}

func (s *WalletServiceTestSuite) TestBalance() {
	seller := sellerWithBank(1234)
	s.mockUserRepo.EXPECT().FindByID(gomock.Any(), seller.ID).Return(seller, nil)
	s.mockWalletRepo.EXPECT().SumSignedByUserID(gomock.Any(), seller.ID).
		Return(decimal.NewFromInt(1234), nil)

	balance, err := s.walletService.Balance(context.Background(), seller.ID)

	s.Require().NoError(err)
	s.True(balance.Available.Equal(decimal.NewFromInt(1234)))
	s.True(balance.LedgerTotal.Equal(balance.Available))
}

// A mismatch between the wallet column and the ledger sum must surface
// as-is, not be papered over by either side.
func (s *WalletServiceTestSuite) TestBalanceExposesLedgerDrift() {
	seller := sellerWithBank(1234)
	s.mockUserRepo.EXPECT().FindByID(gomock.Any(), seller.ID).Return(seller, nil)
	s.mockWalletRepo.EXPECT().SumSignedByUserID(gomock.Any(), seller.ID).
		Return(decimal.NewFromInt(1200), nil)

	balance, err := s.walletService.Balance(context.Background(), seller.ID)

	s.Require().NoError(err)
	s.True(balance.Available.Equal(decimal.NewFromInt(1234)))
	s.True(balance.LedgerTotal.Equal(decimal.NewFromInt(1200)))
}

func (s *WalletServiceTestSuite) TestTransactions() {
	page := repoargs.Page{Number: 1, Limit: 20}
	entries := []domain.WalletTransaction{
		{ID: 2, Type: domain.TransactionDebit, Source: domain.SourceWithdrawal},
		{ID: 1, Type: domain.TransactionCredit, Source: domain.SourceSale},
	}

	s.mockWalletRepo.EXPECT().
		GetByUserID(gomock.Any(), int64(20), page).
		Return(entries, int64(2), nil)

	transactions, total, err := s.walletService.Transactions(context.Background(), 20, page)

	s.Require().NoError(err)
	s.Equal(int64(2), total)
	s.Len(transactions, 2)
}
