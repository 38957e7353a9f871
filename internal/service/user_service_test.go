package service

import (
	"context"
	"testing"

	"github.com/azorastack/market/internal/domain"
	"github.com/azorastack/market/internal/repository/repoargs"
	"github.com/azorastack/market/internal/service/mocks"
	"github.com/azorastack/market/pkg/uow"
	uowmocks "github.com/azorastack/market/pkg/uow/mocks"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

type UserServiceTestSuite struct {
	suite.Suite
	mockCtrl     *gomock.Controller
	mockUOW      *uowmocks.MockUOW
	mockUserRepo *mocks.MockUserRepository
	userService  *UserService
}

func TestUserServiceSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}

func (s *UserServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockUserRepo = mocks.NewMockUserRepository(s.mockCtrl)

	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.UserRepoName)).
		Return(s.mockUserRepo, nil).AnyTimes()

	userService, servErr := NewUserService(s.mockUOW)
	s.Require().NoError(servErr)
	s.userService = userService
}

func (s *UserServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *UserServiceTestSuite) TestRegisterHashesPassword() {
	s.mockUserRepo.EXPECT().
		CreateUser(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.CreateUser) (*domain.User, error) {
			s.Equal("buyer@example.com", args.Email)
			s.Equal(domain.RoleBuyer, args.Role)
			s.NotEqual("secret-pass", args.Password)
			s.NoError(bcrypt.CompareHashAndPassword([]byte(args.Password), []byte("secret-pass")))
			return &domain.User{ID: 10, Email: args.Email, Role: args.Role}, nil
		})

	user, err := s.userService.Register(context.Background(), RegisterUserArgs{
		Email:    "buyer@example.com",
		Password: "secret-pass",
		Name:     "Buyer",
		Role:     domain.RoleBuyer,
	})

	s.Require().NoError(err)
	s.Equal(int64(10), user.ID)
}

func (s *UserServiceTestSuite) TestRegisterDuplicateEmail() {
	s.mockUserRepo.EXPECT().
		CreateUser(gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrDuplicateKey)

	_, err := s.userService.Register(context.Background(), RegisterUserArgs{
		Email:    "taken@example.com",
		Password: "secret-pass",
		Role:     domain.RoleBuyer,
	})

	s.Require().ErrorIs(err, domain.ErrDuplicateKey)
}

func (s *UserServiceTestSuite) TestLogin() {
	hashed, hashErr := bcrypt.GenerateFromPassword([]byte("secret-pass"), bcrypt.MinCost)
	s.Require().NoError(hashErr)

	s.mockUserRepo.EXPECT().
		FindByEmail(gomock.Any(), "buyer@example.com").
		Return(&domain.User{ID: 10, Email: "buyer@example.com", Password: string(hashed)}, nil)

	user, err := s.userService.Login(context.Background(), "buyer@example.com", "secret-pass")

	s.Require().NoError(err)
	s.Equal(int64(10), user.ID)
}

func (s *UserServiceTestSuite) TestLoginWrongPassword() {
	hashed, hashErr := bcrypt.GenerateFromPassword([]byte("secret-pass"), bcrypt.MinCost)
	s.Require().NoError(hashErr)

	s.mockUserRepo.EXPECT().
		FindByEmail(gomock.Any(), "buyer@example.com").
		Return(&domain.User{ID: 10, Password: string(hashed)}, nil)

	_, err := s.userService.Login(context.Background(), "buyer@example.com", "wrong")

	s.Require().ErrorIs(err, domain.ErrPasswordMissMatch)
}

// An unknown email must be indistinguishable from a wrong password.
func (s *UserServiceTestSuite) TestLoginUnknownEmail() {
	s.mockUserRepo.EXPECT().
		FindByEmail(gomock.Any(), "nobody@example.com").
		Return(nil, domain.ErrRecordNotFound)

	_, err := s.userService.Login(context.Background(), "nobody@example.com", "secret-pass")

	s.Require().ErrorIs(err, domain.ErrPasswordMissMatch)
}

func (s *UserServiceTestSuite) TestUpdateBankDetailsIncomplete() {
	err := s.userService.UpdateBankDetails(context.Background(), 20, domain.BankDetails{
		BankName: "HDFC",
	})

	s.Require().ErrorIs(err, domain.ErrIncompleteBankDetails)
}

func (s *UserServiceTestSuite) TestUpdateBankDetails() {
	details := domain.BankDetails{
		BankName:          "HDFC",
		AccountNumber:     "1234567890",
		IFSCCode:          "HDFC0001234",
		AccountHolderName: "Test Seller",
	}
	s.mockUserRepo.EXPECT().UpdateBankDetails(gomock.Any(), int64(20), details).Return(nil)

	s.Require().NoError(s.userService.UpdateBankDetails(context.Background(), 20, details))
}
