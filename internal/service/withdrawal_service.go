package service

import (
	"context"
	"fmt"
	"time"

	"github.com/azorastack/market/internal/domain"
	"github.com/azorastack/market/internal/metrics"
	"github.com/azorastack/market/internal/notify"
	"github.com/azorastack/market/internal/repository/repoargs"
	"github.com/azorastack/market/pkg/uow"
	"github.com/sirupsen/logrus"
)

type WithdrawalService struct {
	uow            uow.UOW
	withdrawalRepo WithdrawalRepository
	userRepo       UserRepository
	notifier       notify.Notifier
	log            *logrus.Logger
	now            func() time.Time
}

func NewWithdrawalService(u uow.UOW, notifier notify.Notifier, log *logrus.Logger) (*WithdrawalService, error) {
	withdrawalRepo, withdrawalRepoErr :=
		uow.GetRepositoryAs[WithdrawalRepository](u, uow.RepositoryName(repoargs.WithdrawalRepoName))
	if withdrawalRepoErr != nil {
		return nil, withdrawalRepoErr
	}
	userRepo, userRepoErr := uow.GetRepositoryAs[UserRepository](u, uow.RepositoryName(repoargs.UserRepoName))
	if userRepoErr != nil {
		return nil, userRepoErr
	}
	return &WithdrawalService{
		uow:            u,
		withdrawalRepo: withdrawalRepo,
		userRepo:       userRepo,
		notifier:       notifier,
		log:            log,
		now:            time.Now,
	}, nil
}

// PendingReview returns the admin payout queue, oldest first.
func (s *WithdrawalService) PendingReview(ctx context.Context) ([]domain.Withdrawal, error) {
	withdrawals, err := s.withdrawalRepo.GetPendingReview(ctx)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return withdrawals, nil
}

func (s *WithdrawalService) FindByID(ctx context.Context, id int64) (*domain.Withdrawal, error) {
	withdrawal, err := s.withdrawalRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return withdrawal, nil
}

type ReviewArgs struct {
	WithdrawalID int64
	AdminID      int64
	Approve      bool
	Notes        string
}

// Review resolves a PENDING withdrawal. Approval just flips the status, the
// money already left the wallet at request time. Rejection refunds the
// amount in the same transaction as the status change, writing a
// CREDIT/REFUND ledger entry, so a rejected request can never lose money.
// Anything but PENDING is refused, which stops two admins from resolving
// the same request.
func (s *WithdrawalService) Review(ctx context.Context, args ReviewArgs) (*domain.Withdrawal, error) {
	var withdrawal *domain.Withdrawal
	var refunded bool

	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		withdrawalRepo, repoErr := uow.GetAs[WithdrawalRepository](tx, uow.RepositoryName(repoargs.WithdrawalRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}

		locked, findErr := withdrawalRepo.FindByIDForUpdate(c, args.WithdrawalID)
		if findErr != nil {
			return findErr //nolint:wrapcheck
		}
		if locked.Status != domain.WithdrawalStatusPending {
			return domain.NewInvalidStateError("withdrawal", string(locked.Status), "already reviewed")
		}

		reviewedAt := s.now()
		review := repoargs.WithdrawalReview{
			WithdrawalID: args.WithdrawalID,
			Status:       domain.WithdrawalStatusApproved,
			ReviewedBy:   args.AdminID,
			ReviewedAt:   reviewedAt,
			ReviewNotes:  args.Notes,
		}
		action := "WITHDRAWAL_APPROVED"

		if !args.Approve {
			review.Status = domain.WithdrawalStatusRejected
			review.RejectedAt = &reviewedAt
			action = "WITHDRAWAL_REJECTED"

			if refundErr := s.refundSeller(c, tx, locked); refundErr != nil {
				return refundErr
			}
			refunded = true
		}

		var updateErr error
		withdrawal, updateErr = withdrawalRepo.UpdateReviewed(c, review)
		if updateErr != nil {
			return updateErr //nolint:wrapcheck
		}

		return writeAuditLog(c, tx, repoargs.AuditLogCreate{
			UserID:     args.AdminID,
			Action:     action,
			EntityType: "withdrawal",
			EntityID:   args.WithdrawalID,
			Changes: map[string]any{
				"status": string(review.Status),
				"notes":  args.Notes,
			},
		})
	})

	if txErr != nil {
		return nil, fmt.Errorf("reviewing withdrawal %d: %w", args.WithdrawalID, txErr)
	}

	if refunded {
		metrics.LedgerEntries.WithLabelValues(
			string(domain.TransactionCredit), string(domain.SourceRefund)).Inc()
	}
	return withdrawal, nil
}

func (s *WithdrawalService) refundSeller(ctx context.Context, tx uow.TX, withdrawal *domain.Withdrawal) error {
	userRepo, userRepoErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
	if userRepoErr != nil {
		return userRepoErr //nolint:wrapcheck
	}

	balance, balanceErr := userRepo.BalanceForUpdate(ctx, withdrawal.SellerID)
	if balanceErr != nil {
		return balanceErr //nolint:wrapcheck
	}
	newBalance := balance.Add(withdrawal.Amount)
	if updErr := userRepo.UpdateBalance(ctx, withdrawal.SellerID, newBalance); updErr != nil {
		return updErr //nolint:wrapcheck
	}

	walletRepo, walletRepoErr :=
		uow.GetAs[WalletTransactionRepository](tx, uow.RepositoryName(repoargs.WalletTransactionRepoName))
	if walletRepoErr != nil {
		return walletRepoErr //nolint:wrapcheck
	}
	_, entryErr := walletRepo.Create(ctx, repoargs.WalletTransactionCreate{
		UserID:        withdrawal.SellerID,
		Type:          domain.TransactionCredit,
		Source:        domain.SourceRefund,
		Amount:        withdrawal.Amount,
		BalanceBefore: balance,
		BalanceAfter:  newBalance,
		WithdrawalID:  &withdrawal.ID,
		Description:   fmt.Sprintf("Refund for rejected withdrawal %s", withdrawal.WithdrawalNumber),
	})
	return entryErr //nolint:wrapcheck
}

type CompleteArgs struct {
	WithdrawalID  int64
	AdminID       int64
	TransactionID string
	PaymentProof  string
}

// Complete records that the payout was sent. Only APPROVED or PROCESSING
// withdrawals qualify.
func (s *WithdrawalService) Complete(ctx context.Context, args CompleteArgs) (*domain.Withdrawal, error) {
	var withdrawal *domain.Withdrawal

	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		withdrawalRepo, repoErr := uow.GetAs[WithdrawalRepository](tx, uow.RepositoryName(repoargs.WithdrawalRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}

		locked, findErr := withdrawalRepo.FindByIDForUpdate(c, args.WithdrawalID)
		if findErr != nil {
			return findErr //nolint:wrapcheck
		}
		if locked.Status != domain.WithdrawalStatusApproved && locked.Status != domain.WithdrawalStatusProcessing {
			return domain.NewInvalidStateError("withdrawal", string(locked.Status), "cannot be completed")
		}

		var completeErr error
		withdrawal, completeErr = withdrawalRepo.MarkCompleted(c, repoargs.WithdrawalComplete{
			WithdrawalID:  args.WithdrawalID,
			TransactionID: args.TransactionID,
			PaymentProof:  args.PaymentProof,
			CompletedAt:   s.now(),
		})
		if completeErr != nil {
			return completeErr //nolint:wrapcheck
		}

		return writeAuditLog(c, tx, repoargs.AuditLogCreate{
			UserID:     args.AdminID,
			Action:     "WITHDRAWAL_COMPLETED",
			EntityType: "withdrawal",
			EntityID:   args.WithdrawalID,
			Changes:    map[string]any{"transaction_id": args.TransactionID},
		})
	})

	if txErr != nil {
		return nil, fmt.Errorf("completing withdrawal %d: %w", args.WithdrawalID, txErr)
	}

	s.notifyCompleted(ctx, withdrawal)
	return withdrawal, nil
}

func (s *WithdrawalService) notifyCompleted(ctx context.Context, withdrawal *domain.Withdrawal) {
	seller, err := s.userRepo.FindByID(ctx, withdrawal.SellerID)
	if err != nil {
		s.log.WithError(err).WithField("withdrawal_id", withdrawal.ID).Warn("skipping payout notification")
		return
	}
	s.notifier.Notify(ctx, notify.Event{
		Type:      notify.EventWithdrawalCompleted,
		Recipient: seller.Email,
		Data: map[string]any{
			"withdrawal_number": withdrawal.WithdrawalNumber,
			"amount":            withdrawal.Amount.String(),
			"transaction_id":    withdrawal.TransactionID,
		},
	})
}
