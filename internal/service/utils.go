package service

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	orderNumberPrefix      = "AZR"
	withdrawalNumberPrefix = "WD"
)

var oneHundred = decimal.NewFromInt(100)

// generateNumber builds a human-readable reference like AZR-9F2C41A07B3D.
func generateNumber(prefix string) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "-" + strings.ToUpper(raw[:12])
}

// generatePaymentOrderID builds the gateway-facing order reference, e.g.
// po_9f2c41a07b3d. It is handed to the gateway at checkout and comes back on
// webhook events, which is how an event maps back to its order.
func generatePaymentOrderID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "po_" + raw[:12]
}

// splitCommission divides a sale price into the platform commission and the
// seller earning. The commission is rounded to 2 decimal places and the
// earning is the remainder, so the two always sum back to the price exactly.
func splitCommission(price, rate decimal.Decimal) (commission, earning decimal.Decimal) {
	commission = price.Mul(rate).Div(oneHundred).Round(2)
	earning = price.Sub(commission)
	return commission, earning
}
