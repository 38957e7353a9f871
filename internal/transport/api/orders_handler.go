package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/azorastack/market/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type OrdersHandler struct {
	orderSvs OrderServicer
}

func NewOrdersHandler(orderSvs OrderServicer) *OrdersHandler {
	return &OrdersHandler{
		orderSvs: orderSvs,
	}
}

type OrderCreateParams struct {
	ProjectID      int64  `binding:"required,gt=0"                  json:"project_id"`
	PaymentGateway string `binding:"omitempty,oneof=razorpay manual" json:"payment_gateway"`
}

type OrderResponse struct {
	ID                 int64                  `json:"id"`
	OrderNumber        string                 `json:"order_number"`
	ProjectID          int64                  `json:"project_id"`
	ProjectTitle       string                 `json:"project_title"`
	ProjectPrice       decimal.Decimal        `json:"project_price"`
	PlatformCommission decimal.Decimal        `json:"platform_commission"`
	SellerEarning      decimal.Decimal        `json:"seller_earning"`
	CommissionRate     decimal.Decimal        `json:"commission_rate"`
	Status             domain.OrderStatusType `json:"status"`
	PaymentOrderID     string                 `json:"payment_order_id,omitempty"`
	PaidAt             *time.Time             `json:"paid_at,omitempty"`
	CreatedAt          time.Time              `json:"created_at"`
}

// Create POST RouteGroup + OrdersRoute. Opens an order with the commission
// split snapshotted at this moment.
func (o *OrdersHandler) Create(c *gin.Context) {
	var params OrderCreateParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}
	if params.PaymentGateway == "" {
		params.PaymentGateway = "razorpay"
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	order, createErr := o.orderSvs.Create(reqCtx, getUserIDFromContext(c), params.ProjectID, params.PaymentGateway)
	if createErr != nil {
		var stateErr *domain.InvalidStateError
		switch {
		case errors.Is(createErr, domain.ErrRecordNotFound):
			c.AbortWithStatus(http.StatusNotFound)
		case errors.As(createErr, &stateErr):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": stateErr.Error()})
		default:
			_ = c.AbortWithError(http.StatusInternalServerError, createErr).SetType(gin.ErrorTypePrivate)
		}
		return
	}

	c.JSON(http.StatusCreated, newOrderResponse(order))
}

// Index GET RouteGroup + OrdersRoute. Lists the buyer's orders newest first.
func (o *OrdersHandler) Index(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	orders, err := o.orderSvs.GetByBuyerID(reqCtx, getUserIDFromContext(c))
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	if len(orders) == 0 {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}

	response := make([]OrderResponse, len(orders))
	for i := range orders {
		response[i] = newOrderResponse(&orders[i])
	}
	c.JSON(http.StatusOK, response)
}

func newOrderResponse(order *domain.Order) OrderResponse {
	return OrderResponse{
		ID:                 order.ID,
		OrderNumber:        order.OrderNumber,
		ProjectID:          order.ProjectID,
		ProjectTitle:       order.ProjectTitle,
		ProjectPrice:       order.ProjectPrice,
		PlatformCommission: order.PlatformCommission,
		SellerEarning:      order.SellerEarning,
		CommissionRate:     order.CommissionRate,
		Status:             order.Status,
		PaymentOrderID:     order.PaymentOrderID,
		PaidAt:             order.PaidAt,
		CreatedAt:          order.CreatedAt,
	}
}
