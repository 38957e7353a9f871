package service

import (
	"context"
	"fmt"

	"github.com/azorastack/market/internal/domain"
	"github.com/azorastack/market/internal/repository/repoargs"
	"github.com/azorastack/market/pkg/uow"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	uow      uow.UOW
	userRepo UserRepository
}

func NewUserService(u uow.UOW) (*UserService, error) {
	userRepo, userRepoErr := uow.GetRepositoryAs[UserRepository](u, uow.RepositoryName(repoargs.UserRepoName))
	if userRepoErr != nil {
		return nil, userRepoErr
	}
	return &UserService{
		uow:      u,
		userRepo: userRepo,
	}, nil
}

type RegisterUserArgs struct {
	Email    string
	Password string
	Name     string
	Role     domain.RoleType
}

// Register creates a user with a bcrypt-hashed password. A taken email
// surfaces as domain.ErrDuplicateKey.
func (s *UserService) Register(ctx context.Context, args RegisterUserArgs) (*domain.User, error) {
	hashed, hashErr := s.hashPassword(args.Password)
	if hashErr != nil {
		return nil, fmt.Errorf("registering user: %w", hashErr)
	}

	user, createErr := s.userRepo.CreateUser(ctx, repoargs.CreateUser{
		Email:    args.Email,
		Password: hashed,
		Name:     args.Name,
		Role:     args.Role,
	})
	if createErr != nil {
		return nil, fmt.Errorf("registering user: %w", createErr)
	}
	return user, nil
}

// Login returns the user when the credentials match. A wrong password and an
// unknown email both surface as domain.ErrPasswordMissMatch, so the response
// does not reveal which of the two was wrong.
func (s *UserService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	user, findErr := s.userRepo.FindByEmail(ctx, email)
	if findErr != nil {
		return nil, domain.ErrPasswordMissMatch
	}
	if !s.comparePasswords(user.Password, password) {
		return nil, domain.ErrPasswordMissMatch
	}
	return user, nil
}

func (s *UserService) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return user, nil
}

// UpdateBankDetails replaces the payout destination on the profile. Pending
// withdrawals keep the snapshot taken at request time.
func (s *UserService) UpdateBankDetails(ctx context.Context, userID int64, details domain.BankDetails) error {
	if !details.Complete() {
		return domain.ErrIncompleteBankDetails
	}
	if err := s.userRepo.UpdateBankDetails(ctx, userID, details); err != nil {
		return fmt.Errorf("updating bank details of user %d: %w", userID, err)
	}
	return nil
}

func (s *UserService) hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(bytes), nil
}

func (s *UserService) comparePasswords(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}
