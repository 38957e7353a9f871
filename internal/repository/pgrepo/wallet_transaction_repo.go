package pgrepo

import (
	"context"

	"github.com/azorastack/market/internal/domain"
	"github.com/azorastack/market/internal/repository/repoargs"
	"github.com/azorastack/market/pkg/uow"
	"github.com/shopspring/decimal"
)

const walletTransactionColumns = `id, created_at, user_id, type, source, amount,
	balance_before, balance_after, order_id, withdrawal_id, description`

// WalletTransactionRepository is append-only: ledger rows are inserted and
// read, never updated or deleted.
type WalletTransactionRepository struct {
	db uow.DBTX
}

func NewWalletTransactionRepository(db uow.DBTX) *WalletTransactionRepository {
	return &WalletTransactionRepository{db: db}
}

func (r *WalletTransactionRepository) Create(
	ctx context.Context,
	args repoargs.WalletTransactionCreate,
) (*domain.WalletTransaction, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO wallet_transactions (user_id, type, source, amount,
			balance_before, balance_after, order_id, withdrawal_id, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+walletTransactionColumns,
		args.UserID, args.Type, args.Source, args.Amount,
		args.BalanceBefore, args.BalanceAfter, args.OrderID, args.WithdrawalID, args.Description)

	transaction, err := scanWalletTransaction(row)
	if err != nil {
		return nil, convertErr(err, "creating wallet transaction for user %d", args.UserID)
	}
	return transaction, nil
}

func (r *WalletTransactionRepository) GetByUserID(
	ctx context.Context,
	userID int64,
	page repoargs.Page,
) ([]domain.WalletTransaction, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM wallet_transactions WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, convertErr(err, "counting wallet transactions of user %d", userID)
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+walletTransactionColumns+` FROM wallet_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`,
		userID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, convertErr(err, "listing wallet transactions of user %d", userID)
	}
	defer rows.Close()

	var transactions []domain.WalletTransaction
	for rows.Next() {
		transaction, scanErr := scanWalletTransaction(rows)
		if scanErr != nil {
			return nil, 0, convertErr(scanErr, "listing wallet transactions of user %d", userID)
		}
		transactions = append(transactions, *transaction)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, 0, convertErr(rowsErr, "listing wallet transactions of user %d", userID)
	}
	return transactions, total, nil
}

// SumSignedByUserID returns the signed sum of the user's ledger (credits
// positive, debits negative). It must equal users.wallet_balance at all
// times; the balance endpoint exposes both so drift is observable.
func (r *WalletTransactionRepository) SumSignedByUserID(ctx context.Context, userID int64) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.QueryRow(ctx, `
		SELECT coalesce(sum(CASE WHEN type = $2 THEN amount ELSE -amount END), 0)
		FROM wallet_transactions
		WHERE user_id = $1`,
		userID, domain.TransactionCredit).Scan(&sum)
	if err != nil {
		return decimal.Decimal{}, convertErr(err, "summing wallet transactions of user %d", userID)
	}
	return sum, nil
}

func scanWalletTransaction(row rowScanner) (*domain.WalletTransaction, error) {
	var t domain.WalletTransaction
	err := row.Scan(
		&t.ID, &t.CreatedAt, &t.UserID, &t.Type, &t.Source, &t.Amount,
		&t.BalanceBefore, &t.BalanceAfter, &t.OrderID, &t.WithdrawalID, &t.Description,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
