package service

import (
	"context"
	"fmt"

	"github.com/azorastack/market/internal/domain"
	"github.com/azorastack/market/internal/metrics"
	"github.com/azorastack/market/internal/notify"
	"github.com/azorastack/market/internal/repository/repoargs"
	"github.com/azorastack/market/pkg/uow"
	"github.com/shopspring/decimal"
)

type WalletService struct {
	uow            uow.UOW
	userRepo       UserRepository
	walletRepo     WalletTransactionRepository
	withdrawalRepo WithdrawalRepository
	settings       SettingsProvider
	notifier       notify.Notifier
}

func NewWalletService(u uow.UOW, settings SettingsProvider, notifier notify.Notifier) (*WalletService, error) {
	userRepo, userRepoErr := uow.GetRepositoryAs[UserRepository](u, uow.RepositoryName(repoargs.UserRepoName))
	if userRepoErr != nil {
		return nil, userRepoErr
	}
	walletRepo, walletRepoErr :=
		uow.GetRepositoryAs[WalletTransactionRepository](u, uow.RepositoryName(repoargs.WalletTransactionRepoName))
	if walletRepoErr != nil {
		return nil, walletRepoErr
	}
	withdrawalRepo, withdrawalRepoErr :=
		uow.GetRepositoryAs[WithdrawalRepository](u, uow.RepositoryName(repoargs.WithdrawalRepoName))
	if withdrawalRepoErr != nil {
		return nil, withdrawalRepoErr
	}
	return &WalletService{
		uow:            u,
		userRepo:       userRepo,
		walletRepo:     walletRepo,
		withdrawalRepo: withdrawalRepo,
		settings:       settings,
		notifier:       notifier,
	}, nil
}

// BalanceSummary pairs the materialized wallet balance with the signed sum
// of the ledger. The two must always agree; returning both makes drift
// observable from the outside.
type BalanceSummary struct {
	Available   decimal.Decimal
	LedgerTotal decimal.Decimal
}

func (s *WalletService) Balance(ctx context.Context, userID int64) (BalanceSummary, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return BalanceSummary{}, err //nolint:wrapcheck
	}
	ledger, sumErr := s.walletRepo.SumSignedByUserID(ctx, userID)
	if sumErr != nil {
		return BalanceSummary{}, sumErr //nolint:wrapcheck
	}
	return BalanceSummary{
		Available:   user.WalletBalance,
		LedgerTotal: ledger,
	}, nil
}

// Transactions returns one page of the user's ledger, newest first, plus the
// total number of entries.
func (s *WalletService) Transactions(
	ctx context.Context,
	userID int64,
	page repoargs.Page,
) ([]domain.WalletTransaction, int64, error) {
	transactions, total, err := s.walletRepo.GetByUserID(ctx, userID, page)
	if err != nil {
		return nil, 0, err //nolint:wrapcheck
	}
	return transactions, total, nil
}

func (s *WalletService) Withdrawals(
	ctx context.Context,
	sellerID int64,
	page repoargs.Page,
) ([]domain.Withdrawal, error) {
	withdrawals, err := s.withdrawalRepo.GetBySellerID(ctx, sellerID, page)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return withdrawals, nil
}

// RequestWithdrawal debits the wallet the moment the request is filed: the
// amount moves out of the balance into the PENDING withdrawal, so it cannot
// be requested twice. The profile bank details are snapshotted onto the
// request. The balance row stays locked from the check to the debit, which
// is what makes two concurrent requests against one balance impossible to
// both succeed.
func (s *WalletService) RequestWithdrawal(
	ctx context.Context,
	sellerID int64,
	amount decimal.Decimal,
) (*domain.Withdrawal, error) {
	minimum, minErr := s.settings.MinimumWithdrawal(ctx)
	if minErr != nil {
		return nil, fmt.Errorf("requesting withdrawal: %w", minErr)
	}
	if amount.LessThan(minimum) {
		return nil, &domain.BelowMinimumError{Minimum: minimum}
	}

	var withdrawal *domain.Withdrawal
	var recipient string

	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		userRepo, userRepoErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
		if userRepoErr != nil {
			return userRepoErr //nolint:wrapcheck
		}

		user, userErr := userRepo.FindByID(c, sellerID)
		if userErr != nil {
			return userErr //nolint:wrapcheck
		}
		if !user.BankDetails.Complete() {
			return domain.ErrIncompleteBankDetails
		}
		recipient = user.Email

		balance, balanceErr := userRepo.BalanceForUpdate(c, sellerID)
		if balanceErr != nil {
			return balanceErr //nolint:wrapcheck
		}
		if balance.LessThan(amount) {
			return domain.ErrInsufficientBalance
		}

		newBalance := balance.Sub(amount)
		if updErr := userRepo.UpdateBalance(c, sellerID, newBalance); updErr != nil {
			return updErr //nolint:wrapcheck
		}

		withdrawalRepo, withdrawalRepoErr :=
			uow.GetAs[WithdrawalRepository](tx, uow.RepositoryName(repoargs.WithdrawalRepoName))
		if withdrawalRepoErr != nil {
			return withdrawalRepoErr //nolint:wrapcheck
		}

		var createErr error
		withdrawal, createErr = withdrawalRepo.Create(c, repoargs.WithdrawalCreate{
			WithdrawalNumber: generateNumber(withdrawalNumberPrefix),
			SellerID:         sellerID,
			Amount:           amount,
			BankSnapshot:     user.BankDetails,
		})
		if createErr != nil {
			return createErr //nolint:wrapcheck
		}

		walletRepo, walletRepoErr :=
			uow.GetAs[WalletTransactionRepository](tx, uow.RepositoryName(repoargs.WalletTransactionRepoName))
		if walletRepoErr != nil {
			return walletRepoErr //nolint:wrapcheck
		}
		if _, entryErr := walletRepo.Create(c, repoargs.WalletTransactionCreate{
			UserID:        sellerID,
			Type:          domain.TransactionDebit,
			Source:        domain.SourceWithdrawal,
			Amount:        amount,
			BalanceBefore: balance,
			BalanceAfter:  newBalance,
			WithdrawalID:  &withdrawal.ID,
			Description:   fmt.Sprintf("Withdrawal request %s", withdrawal.WithdrawalNumber),
		}); entryErr != nil {
			return entryErr //nolint:wrapcheck
		}

		return writeAuditLog(c, tx, repoargs.AuditLogCreate{
			UserID:     sellerID,
			Action:     "WITHDRAWAL_REQUESTED",
			EntityType: "withdrawal",
			EntityID:   withdrawal.ID,
			Changes:    map[string]any{"amount": amount.String()},
		})
	})

	if txErr != nil {
		return nil, fmt.Errorf("requesting withdrawal: %w", txErr)
	}

	metrics.LedgerEntries.WithLabelValues(
		string(domain.TransactionDebit), string(domain.SourceWithdrawal)).Inc()
	s.notifier.Notify(ctx, notify.Event{
		Type:      notify.EventWithdrawalRequested,
		Recipient: recipient,
		Data: map[string]any{
			"withdrawal_number": withdrawal.WithdrawalNumber,
			"amount":            amount.String(),
		},
	})
	return withdrawal, nil
}
