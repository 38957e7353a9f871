package pgrepo

import (
	"context"
	"encoding/json"

	"github.com/azorastack/market/internal/domain"
	"github.com/azorastack/market/internal/repository/repoargs"
	"github.com/azorastack/market/pkg/uow"
	"github.com/jackc/pgx/v5"
)

const withdrawalColumns = `id, created_at, updated_at, withdrawal_number, seller_id, amount,
	bank_snapshot, status, reviewed_by, reviewed_at, rejected_at, completed_at,
	coalesce(review_notes, ''), coalesce(transaction_id, ''), coalesce(payment_proof, '')`

type WithdrawalRepository struct {
	db uow.DBTX
}

func NewWithdrawalRepository(db uow.DBTX) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

func (r *WithdrawalRepository) Create(
	ctx context.Context,
	args repoargs.WithdrawalCreate,
) (*domain.Withdrawal, error) {
	snapshot, marshalErr := json.Marshal(args.BankSnapshot)
	if marshalErr != nil {
		return nil, convertErr(marshalErr, "marshaling bank snapshot for withdrawal `%s`", args.WithdrawalNumber)
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO withdrawals (withdrawal_number, seller_id, amount, bank_snapshot, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+withdrawalColumns,
		args.WithdrawalNumber, args.SellerID, args.Amount, snapshot, domain.WithdrawalStatusPending)

	withdrawal, err := scanWithdrawal(row)
	if err != nil {
		return nil, convertErr(err, "creating withdrawal `%s`", args.WithdrawalNumber)
	}
	return withdrawal, nil
}

func (r *WithdrawalRepository) FindByID(ctx context.Context, id int64) (*domain.Withdrawal, error) {
	row := r.db.QueryRow(ctx, `SELECT `+withdrawalColumns+` FROM withdrawals WHERE id = $1`, id)
	withdrawal, err := scanWithdrawal(row)
	if err != nil {
		return nil, convertErr(err, "finding withdrawal by id %d", id)
	}
	return withdrawal, nil
}

// FindByIDForUpdate locks the withdrawal row so the review state machine can
// check PENDING and transition without a concurrent reviewer interleaving.
func (r *WithdrawalRepository) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Withdrawal, error) {
	row := r.db.QueryRow(ctx, `SELECT `+withdrawalColumns+` FROM withdrawals WHERE id = $1 FOR UPDATE`, id)
	withdrawal, err := scanWithdrawal(row)
	if err != nil {
		return nil, convertErr(err, "locking withdrawal %d", id)
	}
	return withdrawal, nil
}

func (r *WithdrawalRepository) GetBySellerID(
	ctx context.Context,
	sellerID int64,
	page repoargs.Page,
) ([]domain.Withdrawal, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+withdrawalColumns+` FROM withdrawals
		WHERE seller_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		sellerID, page.Limit, page.Offset())
	if err != nil {
		return nil, convertErr(err, "listing withdrawals of seller %d", sellerID)
	}
	defer rows.Close()
	return collectWithdrawals(rows, sellerID)
}

// GetPendingReview returns every withdrawal the admin queue still cares
// about: unreviewed plus approved-but-unpaid, oldest first.
func (r *WithdrawalRepository) GetPendingReview(ctx context.Context) ([]domain.Withdrawal, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+withdrawalColumns+` FROM withdrawals
		WHERE status = ANY($1)
		ORDER BY created_at ASC`,
		[]string{
			string(domain.WithdrawalStatusPending),
			string(domain.WithdrawalStatusApproved),
			string(domain.WithdrawalStatusProcessing),
		})
	if err != nil {
		return nil, convertErr(err, "listing withdrawals pending review")
	}
	defer rows.Close()
	return collectWithdrawals(rows, 0)
}

// UpdateReviewed transitions PENDING to the reviewed status. The WHERE
// clause enforces the PENDING-only precondition: zero rows affected means
// the withdrawal was already reviewed (or never existed) and surfaces as
// domain.ErrRecordNotFound for the service to interpret.
func (r *WithdrawalRepository) UpdateReviewed(
	ctx context.Context,
	args repoargs.WithdrawalReview,
) (*domain.Withdrawal, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE withdrawals
		SET status = $2, reviewed_by = $3, reviewed_at = $4, rejected_at = $5,
			review_notes = $6, updated_at = now()
		WHERE id = $1 AND status = $7
		RETURNING `+withdrawalColumns,
		args.WithdrawalID, args.Status, args.ReviewedBy, args.ReviewedAt, args.RejectedAt,
		args.ReviewNotes, domain.WithdrawalStatusPending)

	withdrawal, err := scanWithdrawal(row)
	if err != nil {
		return nil, convertErr(err, "reviewing withdrawal %d", args.WithdrawalID)
	}
	return withdrawal, nil
}

// MarkCompleted transitions APPROVED or PROCESSING to COMPLETED.
func (r *WithdrawalRepository) MarkCompleted(
	ctx context.Context,
	args repoargs.WithdrawalComplete,
) (*domain.Withdrawal, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE withdrawals
		SET status = $2, transaction_id = $3, payment_proof = $4, completed_at = $5, updated_at = now()
		WHERE id = $1 AND status = ANY($6)
		RETURNING `+withdrawalColumns,
		args.WithdrawalID, domain.WithdrawalStatusCompleted, args.TransactionID,
		args.PaymentProof, args.CompletedAt,
		[]string{string(domain.WithdrawalStatusApproved), string(domain.WithdrawalStatusProcessing)})

	withdrawal, err := scanWithdrawal(row)
	if err != nil {
		return nil, convertErr(err, "completing withdrawal %d", args.WithdrawalID)
	}
	return withdrawal, nil
}

func collectWithdrawals(rows pgx.Rows, sellerID int64) ([]domain.Withdrawal, error) {
	var withdrawals []domain.Withdrawal
	for rows.Next() {
		withdrawal, scanErr := scanWithdrawal(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scanning withdrawals of seller %d", sellerID)
		}
		withdrawals = append(withdrawals, *withdrawal)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "scanning withdrawals of seller %d", sellerID)
	}
	return withdrawals, nil
}

func scanWithdrawal(row rowScanner) (*domain.Withdrawal, error) {
	var w domain.Withdrawal
	var snapshot []byte
	err := row.Scan(
		&w.ID, &w.CreatedAt, &w.UpdatedAt, &w.WithdrawalNumber, &w.SellerID, &w.Amount,
		&snapshot, &w.Status, &w.ReviewedBy, &w.ReviewedAt, &w.RejectedAt, &w.CompletedAt,
		&w.ReviewNotes, &w.TransactionID, &w.PaymentProof,
	)
	if err != nil {
		return nil, err
	}
	if len(snapshot) > 0 {
		if unmarshalErr := json.Unmarshal(snapshot, &w.BankSnapshot); unmarshalErr != nil {
			return nil, unmarshalErr
		}
	}
	return &w, nil
}
