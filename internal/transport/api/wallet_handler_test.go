package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/azorastack/market/internal/domain"
	"github.com/azorastack/market/internal/repository/repoargs"
	"github.com/azorastack/market/internal/service"
	"github.com/azorastack/market/internal/transport/api/mocks"
	"github.com/azorastack/market/internal/transport/api/testutils"
	"github.com/azorastack/market/internal/transport/api/tokens"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type WalletHandlerTestSuite struct {
	suite.Suite
	mockCtrl      *gomock.Controller
	mockWalletSvs *mocks.MockWalletServicer
	jwtSecret     []byte
	router        *gin.Engine
}

func TestWalletHandlerSuite(t *testing.T) {
	suite.Run(t, new(WalletHandlerTestSuite))
}

func (s *WalletHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.mockCtrl = gomock.NewController(s.T())
	s.mockWalletSvs = mocks.NewMockWalletServicer(s.mockCtrl)
	s.jwtSecret = []byte("jwt-test-secret")

	s.router = New(RouterArgs{
		UserService:       mocks.NewMockUserServicer(s.mockCtrl),
		ProjectService:    mocks.NewMockProjectServicer(s.mockCtrl),
		OrderService:      mocks.NewMockOrderServicer(s.mockCtrl),
		PaymentService:    mocks.NewMockPaymentServicer(s.mockCtrl),
		WalletService:     s.mockWalletSvs,
		WithdrawalService: mocks.NewMockWithdrawalServicer(s.mockCtrl),
		Settings:          mocks.NewMockSettingsServicer(s.mockCtrl),
		JWTSecretKey:      s.jwtSecret,
		WebhookSecretKey:  []byte("webhook-test-secret"),
	})
}

func (s *WalletHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *WalletHandlerTestSuite) sellerToken(userID int64) string {
	token, err := tokens.GenerateUserJWT(userID, domain.RoleSeller, time.Hour, s.jwtSecret)
	s.Require().NoError(err)
	return "Bearer " + token
}

func (s *WalletHandlerTestSuite) TestBalance() {
	s.mockWalletSvs.EXPECT().
		Balance(gomock.Any(), int64(20)).
		Return(service.BalanceSummary{
			Available:   decimal.RequireFromString("1234.50"),
			LedgerTotal: decimal.RequireFromString("1234.50"),
		}, nil)

	resp, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodGet,
		URL:    RouteGroup + WalletBalanceRoute,
	}, testutils.WithHeader("Authorization", s.sellerToken(20)))
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var body BalanceResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
	s.True(body.Balance.Equal(decimal.RequireFromString("1234.50")))
	s.True(body.LedgerBalance.Equal(body.Balance))
}

func (s *WalletHandlerTestSuite) TestBalanceWithoutToken() {
	resp, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodGet,
		URL:    RouteGroup + WalletBalanceRoute,
	})
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *WalletHandlerTestSuite) TestTransactions() {
	s.mockWalletSvs.EXPECT().
		Transactions(gomock.Any(), int64(20), repoargs.Page{Number: 2, Limit: 10}).
		Return([]domain.WalletTransaction{
			{ID: 11, Type: domain.TransactionCredit, Source: domain.SourceSale},
		}, int64(15), nil)

	resp, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodGet,
		URL:    RouteGroup + WalletTransactionsRoute + "?page=2&limit=10",
	}, testutils.WithHeader("Authorization", s.sellerToken(20)))
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var body struct {
		Transactions []TransactionResponse `json:"transactions"`
		Total        int64                 `json:"total"`
	}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
	s.Equal(int64(15), body.Total)
	s.Require().Len(body.Transactions, 1)
	s.Equal(int64(11), body.Transactions[0].ID)
}

func (s *WalletHandlerTestSuite) TestRequestWithdrawal() {
	s.mockWalletSvs.EXPECT().
		RequestWithdrawal(gomock.Any(), int64(20), gomock.Any()).
		Return(&domain.Withdrawal{
			ID:               7,
			WithdrawalNumber: "WD-9F2C41A07B3D",
			Amount:           decimal.NewFromInt(3000),
			Status:           domain.WithdrawalStatusPending,
		}, nil)

	resp, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPost,
		URL:    RouteGroup + WalletWithdrawalsRoute,
		Body:   bytes.NewBufferString(`{"amount":3000}`),
	}, testutils.WithHeader("Authorization", s.sellerToken(20)))
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	var body WithdrawalResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
	s.Equal("WD-9F2C41A07B3D", body.WithdrawalNumber)
	s.Equal(domain.WithdrawalStatusPending, body.Status)
}

func (s *WalletHandlerTestSuite) TestRequestWithdrawalBelowMinimum() {
	s.mockWalletSvs.EXPECT().
		RequestWithdrawal(gomock.Any(), int64(20), gomock.Any()).
		Return(nil, &domain.BelowMinimumError{Minimum: decimal.NewFromInt(300)})

	resp, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPost,
		URL:    RouteGroup + WalletWithdrawalsRoute,
		Body:   bytes.NewBufferString(`{"amount":100}`),
	}, testutils.WithHeader("Authorization", s.sellerToken(20)))
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnprocessableEntity, resp.StatusCode)
}

func (s *WalletHandlerTestSuite) TestRequestWithdrawalInsufficientBalance() {
	s.mockWalletSvs.EXPECT().
		RequestWithdrawal(gomock.Any(), int64(20), gomock.Any()).
		Return(nil, domain.ErrInsufficientBalance)

	resp, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPost,
		URL:    RouteGroup + WalletWithdrawalsRoute,
		Body:   bytes.NewBufferString(`{"amount":100000}`),
	}, testutils.WithHeader("Authorization", s.sellerToken(20)))
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusPaymentRequired, resp.StatusCode)
}

func (s *WalletHandlerTestSuite) TestRequestWithdrawalNegativeAmount() {
	resp, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPost,
		URL:    RouteGroup + WalletWithdrawalsRoute,
		Body:   bytes.NewBufferString(`{"amount":-50}`),
	}, testutils.WithHeader("Authorization", s.sellerToken(20)))
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnprocessableEntity, resp.StatusCode)
}

func (s *WalletHandlerTestSuite) TestWithdrawalsEmpty() {
	s.mockWalletSvs.EXPECT().
		Withdrawals(gomock.Any(), int64(20), gomock.Any()).
		Return(nil, nil)

	resp, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodGet,
		URL:    RouteGroup + WalletWithdrawalsRoute,
	}, testutils.WithHeader("Authorization", s.sellerToken(20)))
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusNoContent, resp.StatusCode)
}
