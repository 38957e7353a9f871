package service

import (
	"context"
	"fmt"

	"github.com/azorastack/market/internal/domain"
	"github.com/azorastack/market/internal/repository/repoargs"
	"github.com/azorastack/market/pkg/uow"
)

type OrderService struct {
	uow         uow.UOW
	orderRepo   OrderRepository
	projectRepo ProjectRepository
	settings    SettingsProvider
}

func NewOrderService(u uow.UOW, settings SettingsProvider) (*OrderService, error) {
	orderRepo, orderRepoErr := uow.GetRepositoryAs[OrderRepository](u, uow.RepositoryName(repoargs.OrderRepoName))
	if orderRepoErr != nil {
		return nil, orderRepoErr
	}
	projectRepo, projectRepoErr := uow.GetRepositoryAs[ProjectRepository](u, uow.RepositoryName(repoargs.ProjectRepoName))
	if projectRepoErr != nil {
		return nil, projectRepoErr
	}
	return &OrderService{
		uow:         u,
		orderRepo:   orderRepo,
		projectRepo: projectRepo,
		settings:    settings,
	}, nil
}

// Create opens an order for an approved project. The commission rate in
// effect right now is copied onto the order together with the computed split,
// so a later rate change never alters what this sale pays out.
func (s *OrderService) Create(
	ctx context.Context,
	buyerID int64,
	projectID int64,
	paymentGateway string,
) (*domain.Order, error) {
	project, projectErr := s.projectRepo.FindByID(ctx, projectID)
	if projectErr != nil {
		return nil, fmt.Errorf("creating order: %w", projectErr)
	}
	if project.Status != domain.ProjectStatusApproved {
		return nil, domain.NewInvalidStateError("project", string(project.Status), "not open for purchase")
	}
	if project.SellerID == buyerID {
		return nil, domain.NewInvalidStateError("project", string(project.Status), "seller cannot purchase own project")
	}

	rate, rateErr := s.settings.CommissionRate(ctx)
	if rateErr != nil {
		return nil, fmt.Errorf("creating order: %w", rateErr)
	}
	commission, earning := splitCommission(project.Price, rate)

	order, createErr := s.orderRepo.Create(ctx, repoargs.CreateOrder{
		OrderNumber:        generateNumber(orderNumberPrefix),
		BuyerID:            buyerID,
		ProjectID:          projectID,
		ProjectPrice:       project.Price,
		PlatformCommission: commission,
		SellerEarning:      earning,
		CommissionRate:     rate,
		PaymentGateway:     paymentGateway,
	})
	if createErr != nil {
		return nil, fmt.Errorf("creating order: %w", createErr)
	}

	// the gateway reference travels to checkout and back on webhook events
	paymentOrderID := generatePaymentOrderID()
	if attachErr := s.AttachPaymentOrder(ctx, order.ID, paymentOrderID); attachErr != nil {
		return nil, attachErr
	}
	order.PaymentOrderID = paymentOrderID
	return order, nil
}

// AttachPaymentOrder stores the gateway-side order reference so webhook
// events can be matched back to the order.
func (s *OrderService) AttachPaymentOrder(ctx context.Context, orderID int64, paymentOrderID string) error {
	if err := s.orderRepo.SetPaymentOrderID(ctx, orderID, paymentOrderID); err != nil {
		return fmt.Errorf("attaching payment order to order %d: %w", orderID, err)
	}
	return nil
}

func (s *OrderService) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return order, nil
}

// GetByBuyerID returns the buyer's orders, newest first.
func (s *OrderService) GetByBuyerID(ctx context.Context, buyerID int64) ([]domain.Order, error) {
	orders, err := s.orderRepo.GetByBuyerID(ctx, buyerID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return orders, nil
}
