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

// Gateway webhook event types this service reacts to. Everything else is
// acknowledged and dropped.
const (
	GatewayEventCaptured = "payment.captured"
	GatewayEventFailed   = "payment.failed"
)

type GatewayEvent struct {
	Type           string
	PaymentOrderID string
	PaymentID      string
}

type PaymentService struct {
	uow       uow.UOW
	orderRepo OrderRepository
	userRepo  UserRepository
	notifier  notify.Notifier
	log       *logrus.Logger
	now       func() time.Time
}

func NewPaymentService(u uow.UOW, notifier notify.Notifier, log *logrus.Logger) (*PaymentService, error) {
	orderRepo, orderRepoErr := uow.GetRepositoryAs[OrderRepository](u, uow.RepositoryName(repoargs.OrderRepoName))
	if orderRepoErr != nil {
		return nil, orderRepoErr
	}
	userRepo, userRepoErr := uow.GetRepositoryAs[UserRepository](u, uow.RepositoryName(repoargs.UserRepoName))
	if userRepoErr != nil {
		return nil, userRepoErr
	}
	return &PaymentService{
		uow:       u,
		orderRepo: orderRepo,
		userRepo:  userRepo,
		notifier:  notifier,
		log:       log,
		now:       time.Now,
	}, nil
}

// ConfirmPayment settles an order in one transaction: the order flips to
// COMPLETED, the seller wallet is credited with the earning, a CREDIT/SALE
// ledger entry is written, the project sales counter is bumped and the audit
// trail gets a row. Either all of it commits or none of it does.
//
// Confirming an already paid order is a no-op returning the order as-is, so
// a gateway retrying its webhook cannot credit the seller twice. The order
// row is locked for the duration of the transaction, which serializes
// concurrent confirmations of the same order.
func (s *PaymentService) ConfirmPayment(ctx context.Context, orderID int64, paymentID string) (*domain.Order, error) {
	var order *domain.Order
	var settled bool

	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		orderRepo, orderRepoErr := uow.GetAs[OrderRepository](tx, uow.RepositoryName(repoargs.OrderRepoName))
		if orderRepoErr != nil {
			return orderRepoErr //nolint:wrapcheck
		}

		locked, findErr := orderRepo.FindByIDForUpdate(c, orderID)
		if findErr != nil {
			return findErr //nolint:wrapcheck
		}
		if locked.Status.Paid() {
			order = locked
			return nil
		}
		if locked.Status != domain.OrderStatusCreated {
			return domain.NewInvalidStateError("order", string(locked.Status), "cannot be confirmed")
		}

		paidAt := s.now()
		if markErr := orderRepo.MarkCompleted(c, repoargs.MarkOrderCompleted{
			OrderID:   orderID,
			PaymentID: paymentID,
			PaidAt:    paidAt,
		}); markErr != nil {
			return markErr //nolint:wrapcheck
		}

		if creditErr := s.creditSeller(c, tx, locked); creditErr != nil {
			return creditErr
		}

		projectRepo, projectRepoErr := uow.GetAs[ProjectRepository](tx, uow.RepositoryName(repoargs.ProjectRepoName))
		if projectRepoErr != nil {
			return projectRepoErr //nolint:wrapcheck
		}
		if incErr := projectRepo.IncrementSalesCount(c, locked.ProjectID); incErr != nil {
			return incErr //nolint:wrapcheck
		}

		if auditErr := writeAuditLog(c, tx, repoargs.AuditLogCreate{
			UserID:     locked.BuyerID,
			Action:     "ORDER_COMPLETED",
			EntityType: "order",
			EntityID:   orderID,
			Changes: map[string]any{
				"status":     string(domain.OrderStatusCompleted),
				"payment_id": paymentID,
			},
		}); auditErr != nil {
			return auditErr
		}

		locked.Status = domain.OrderStatusCompleted
		locked.PaymentID = paymentID
		locked.PaidAt = &paidAt
		order = locked
		settled = true
		return nil
	})

	if txErr != nil {
		metrics.ConfirmationsFailed.Inc()
		return nil, fmt.Errorf("confirming payment of order %d: %w", orderID, txErr)
	}

	if settled {
		metrics.OrdersCompleted.Inc()
		metrics.LedgerEntries.WithLabelValues(
			string(domain.TransactionCredit), string(domain.SourceSale)).Inc()
		s.notifyConfirmed(ctx, order)
	}
	return order, nil
}

// creditSeller moves the earning onto the seller wallet and writes the
// matching ledger entry. The balance row is locked first, so the
// before/after pair in the entry is exact even under concurrent operations
// on the same wallet.
func (s *PaymentService) creditSeller(ctx context.Context, tx uow.TX, order *domain.Order) error {
	userRepo, userRepoErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
	if userRepoErr != nil {
		return userRepoErr //nolint:wrapcheck
	}

	balance, balanceErr := userRepo.BalanceForUpdate(ctx, order.SellerID)
	if balanceErr != nil {
		return balanceErr //nolint:wrapcheck
	}
	newBalance := balance.Add(order.SellerEarning)
	if updErr := userRepo.UpdateBalance(ctx, order.SellerID, newBalance); updErr != nil {
		return updErr //nolint:wrapcheck
	}

	walletRepo, walletRepoErr :=
		uow.GetAs[WalletTransactionRepository](tx, uow.RepositoryName(repoargs.WalletTransactionRepoName))
	if walletRepoErr != nil {
		return walletRepoErr //nolint:wrapcheck
	}

	_, entryErr := walletRepo.Create(ctx, repoargs.WalletTransactionCreate{
		UserID:        order.SellerID,
		Type:          domain.TransactionCredit,
		Source:        domain.SourceSale,
		Amount:        order.SellerEarning,
		BalanceBefore: balance,
		BalanceAfter:  newBalance,
		OrderID:       &order.ID,
		Description:   fmt.Sprintf("Sale of %s (%s)", order.ProjectTitle, order.OrderNumber),
	})
	return entryErr //nolint:wrapcheck
}

// FailPayment marks an unpaid order as PAYMENT_FAILED. Failing an order that
// already failed is a no-op; failing a paid order is an error, money has
// moved.
func (s *PaymentService) FailPayment(ctx context.Context, orderID int64) error {
	failErr := s.orderRepo.MarkPaymentFailed(ctx, orderID)
	if failErr == nil {
		return nil
	}

	order, findErr := s.orderRepo.FindByID(ctx, orderID)
	if findErr != nil {
		return fmt.Errorf("failing payment of order %d: %w", orderID, findErr)
	}
	if order.Status == domain.OrderStatusPaymentFailed {
		return nil
	}
	if order.Status.Paid() {
		return domain.NewInvalidStateError("order", string(order.Status), "cannot be failed after payment")
	}
	return fmt.Errorf("failing payment of order %d: %w", orderID, failErr)
}

// HandleGatewayEvent routes a webhook event to the matching order by the
// gateway-side reference. Unknown event types are ignored.
func (s *PaymentService) HandleGatewayEvent(ctx context.Context, event GatewayEvent) error {
	if event.Type != GatewayEventCaptured && event.Type != GatewayEventFailed {
		s.log.WithField("type", event.Type).Debug("ignoring gateway event")
		return nil
	}

	order, findErr := s.orderRepo.FindByPaymentOrderID(ctx, event.PaymentOrderID)
	if findErr != nil {
		return fmt.Errorf("resolving gateway event `%s`: %w", event.PaymentOrderID, findErr)
	}

	switch event.Type {
	case GatewayEventCaptured:
		_, err := s.ConfirmPayment(ctx, order.ID, event.PaymentID)
		return err
	case GatewayEventFailed:
		return s.FailPayment(ctx, order.ID)
	}
	return nil
}

func (s *PaymentService) notifyConfirmed(ctx context.Context, order *domain.Order) {
	data := map[string]any{
		"order_number": order.OrderNumber,
		"project":      order.ProjectTitle,
		"amount":       order.ProjectPrice.String(),
		"earning":      order.SellerEarning.String(),
	}

	if buyer, err := s.userRepo.FindByID(ctx, order.BuyerID); err == nil {
		s.notifier.Notify(ctx, notify.Event{
			Type:      notify.EventOrderConfirmed,
			Recipient: buyer.Email,
			Data:      data,
		})
	} else {
		s.log.WithError(err).WithField("order_id", order.ID).Warn("skipping buyer notification")
	}

	if seller, err := s.userRepo.FindByID(ctx, order.SellerID); err == nil {
		s.notifier.Notify(ctx, notify.Event{
			Type:      notify.EventSaleRecorded,
			Recipient: seller.Email,
			Data:      data,
		})
	} else {
		s.log.WithError(err).WithField("order_id", order.ID).Warn("skipping seller notification")
	}
}
