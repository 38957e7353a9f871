package pgrepo

import (
	"context"

	"github.com/azorastack/market/internal/domain"
	"github.com/azorastack/market/internal/repository/repoargs"
	"github.com/azorastack/market/pkg/uow"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const userColumns = `id, created_at, updated_at, email, password, name, role, wallet_balance,
	coalesce(bank_name, ''), coalesce(account_number, ''), coalesce(ifsc_code, ''),
	coalesce(account_holder_name, ''), coalesce(upi_id, '')`

type UserRepository struct {
	db uow.DBTX
}

func NewUserRepository(db uow.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateUser(ctx context.Context, args repoargs.CreateUser) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (email, password, name, role)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		args.Email, args.Password, args.Name, args.Role)

	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "creating user with email `%s`", args.Email)
	}
	return user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "finding user by email `%s`", email)
	}
	return user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "finding user by id %d", id)
	}
	return user, nil
}

// BalanceForUpdate reads the wallet balance with a row lock. Every
// read-modify-write of the balance must go through this inside a unit of
// work, so two concurrent requests against the same wallet serialize instead
// of losing an update.
func (r *UserRepository) BalanceForUpdate(ctx context.Context, userID int64) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.db.QueryRow(ctx,
		`SELECT wallet_balance FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&balance)
	if err != nil {
		return decimal.Decimal{}, convertErr(err, "locking wallet balance of user %d", userID)
	}
	return balance, nil
}

func (r *UserRepository) UpdateBalance(ctx context.Context, userID int64, balance decimal.Decimal) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET wallet_balance = $2, updated_at = now() WHERE id = $1`, userID, balance)
	if err != nil {
		return convertErr(err, "updating wallet balance of user %d", userID)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(pgx.ErrNoRows, "updating wallet balance of user %d", userID)
	}
	return nil
}

func (r *UserRepository) UpdateBankDetails(ctx context.Context, userID int64, details domain.BankDetails) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET bank_name = $2, account_number = $3, ifsc_code = $4,
			account_holder_name = $5, upi_id = $6, updated_at = now()
		WHERE id = $1`,
		userID, details.BankName, details.AccountNumber, details.IFSCCode,
		details.AccountHolderName, details.UPIID)
	if err != nil {
		return convertErr(err, "updating bank details of user %d", userID)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(pgx.ErrNoRows, "updating bank details of user %d", userID)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.CreatedAt, &u.UpdatedAt, &u.Email, &u.Password, &u.Name, &u.Role,
		&u.WalletBalance,
		&u.BankDetails.BankName, &u.BankDetails.AccountNumber, &u.BankDetails.IFSCCode,
		&u.BankDetails.AccountHolderName, &u.BankDetails.UPIID,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
