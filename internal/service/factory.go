package service

import (
	"fmt"

	"github.com/azorastack/market/internal/notify"
	"github.com/azorastack/market/pkg/uow"
	"github.com/sirupsen/logrus"
)

type AppServices struct {
	UserService       *UserService
	ProjectService    *ProjectService
	OrderService      *OrderService
	PaymentService    *PaymentService
	WalletService     *WalletService
	WithdrawalService *WithdrawalService
}

func Factory(
	unitOfWork uow.UOW,
	settings SettingsProvider,
	notifier notify.Notifier,
	log *logrus.Logger,
) (*AppServices, error) {
	userService, userServiceErr := NewUserService(unitOfWork)
	if userServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", userServiceErr.Error())
	}

	projectService, projectServiceErr := NewProjectService(unitOfWork)
	if projectServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", projectServiceErr.Error())
	}

	orderService, orderServiceErr := NewOrderService(unitOfWork, settings)
	if orderServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", orderServiceErr.Error())
	}

	paymentService, paymentServiceErr := NewPaymentService(unitOfWork, notifier, log)
	if paymentServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", paymentServiceErr.Error())
	}

	walletService, walletServiceErr := NewWalletService(unitOfWork, settings, notifier)
	if walletServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", walletServiceErr.Error())
	}

	withdrawalService, withdrawalServiceErr := NewWithdrawalService(unitOfWork, notifier, log)
	if withdrawalServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", withdrawalServiceErr.Error())
	}

	return &AppServices{
		UserService:       userService,
		ProjectService:    projectService,
		OrderService:      orderService,
		PaymentService:    paymentService,
		WalletService:     walletService,
		WithdrawalService: withdrawalService,
	}, nil
}
