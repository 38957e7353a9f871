package repoargs

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateOrder struct {
	OrderNumber        string
	BuyerID            int64
	ProjectID          int64
	ProjectPrice       decimal.Decimal
	PlatformCommission decimal.Decimal
	SellerEarning      decimal.Decimal
	CommissionRate     decimal.Decimal
	PaymentGateway     string
}

type MarkOrderCompleted struct {
	OrderID   int64
	PaymentID string
	PaidAt    time.Time
}
