package settings

import (
	"context"
	"testing"
	"time"

	"github.com/azorastack/market/internal/domain"
	"github.com/azorastack/market/internal/service/settings/mocks"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type CacheTestSuite struct {
	suite.Suite
	mockCtrl *gomock.Controller
	mockRepo *mocks.MockRepository
	cache    *Cache
	clock    time.Time
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheTestSuite))
}

func (s *CacheTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockRepo = mocks.NewMockRepository(s.mockCtrl)
	s.clock = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.cache = New(s.mockRepo)
	s.cache.now = func() time.Time { return s.clock }
}

func (s *CacheTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *CacheTestSuite) TestGetCachesWithinTTL() {
	s.mockRepo.EXPECT().Get(gomock.Any(), KeyCommissionPercentage).
		Return(&domain.Setting{Key: KeyCommissionPercentage, Value: "30"}, nil)

	first, err := s.cache.Get(context.Background(), KeyCommissionPercentage)
	s.Require().NoError(err)
	s.Equal("30", first)

	// a second read inside the TTL window never touches the repository
	s.clock = s.clock.Add(DefaultTTL - time.Second)
	second, err := s.cache.Get(context.Background(), KeyCommissionPercentage)
	s.Require().NoError(err)
	s.Equal("30", second)
}

func (s *CacheTestSuite) TestGetRefetchesAfterTTL() {
	gomock.InOrder(
		s.mockRepo.EXPECT().Get(gomock.Any(), KeyCurrency).
			Return(&domain.Setting{Key: KeyCurrency, Value: "INR"}, nil),
		s.mockRepo.EXPECT().Get(gomock.Any(), KeyCurrency).
			Return(&domain.Setting{Key: KeyCurrency, Value: "USD"}, nil),
	)

	first, err := s.cache.Currency(context.Background())
	s.Require().NoError(err)
	s.Equal("INR", first)

	s.clock = s.clock.Add(DefaultTTL)
	second, err := s.cache.Currency(context.Background())
	s.Require().NoError(err)
	s.Equal("USD", second)
}

func (s *CacheTestSuite) TestGetFallsBackToDefault() {
	s.mockRepo.EXPECT().Get(gomock.Any(), KeyMinimumWithdrawal).
		Return(nil, domain.ErrRecordNotFound)

	minimum, err := s.cache.MinimumWithdrawal(context.Background())

	s.Require().NoError(err)
	s.True(minimum.Equal(decimal.NewFromInt(300)))
}

func (s *CacheTestSuite) TestGetUnknownKeyWithoutDefault() {
	s.mockRepo.EXPECT().Get(gomock.Any(), "no_such_key").
		Return(nil, domain.ErrRecordNotFound)

	_, err := s.cache.Get(context.Background(), "no_such_key")

	s.Require().ErrorIs(err, domain.ErrRecordNotFound)
}

func (s *CacheTestSuite) TestSetInvalidatesEntry() {
	gomock.InOrder(
		s.mockRepo.EXPECT().Get(gomock.Any(), KeyCommissionPercentage).
			Return(&domain.Setting{Key: KeyCommissionPercentage, Value: "50"}, nil),
		s.mockRepo.EXPECT().Set(gomock.Any(), KeyCommissionPercentage, "40").Return(nil),
		s.mockRepo.EXPECT().Get(gomock.Any(), KeyCommissionPercentage).
			Return(&domain.Setting{Key: KeyCommissionPercentage, Value: "40"}, nil),
	)

	rate, err := s.cache.CommissionRate(context.Background())
	s.Require().NoError(err)
	s.True(rate.Equal(decimal.NewFromInt(50)))

	s.Require().NoError(s.cache.Set(context.Background(), KeyCommissionPercentage, "40"))

	rate, err = s.cache.CommissionRate(context.Background())
	s.Require().NoError(err)
	s.True(rate.Equal(decimal.NewFromInt(40)))
}

func (s *CacheTestSuite) TestDecimalParseError() {
	s.mockRepo.EXPECT().Get(gomock.Any(), KeyCommissionPercentage).
		Return(&domain.Setting{Key: KeyCommissionPercentage, Value: "fifty"}, nil)

	_, err := s.cache.Decimal(context.Background(), KeyCommissionPercentage)

	s.Require().Error(err)
}
