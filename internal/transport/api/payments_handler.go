package api

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/azorastack/market/internal/domain"
	"github.com/azorastack/market/internal/service"
	"github.com/gin-gonic/gin"
)

// WebhookSignatureHeader carries the hex HMAC-SHA256 of the raw request body
// computed by the gateway with the shared webhook secret.
const WebhookSignatureHeader = "X-Webhook-Signature"

type PaymentsHandler struct {
	paymentSvs    PaymentServicer
	webhookSecret []byte
}

func NewPaymentsHandler(paymentSvs PaymentServicer, webhookSecret []byte) *PaymentsHandler {
	return &PaymentsHandler{
		paymentSvs:    paymentSvs,
		webhookSecret: webhookSecret,
	}
}

type webhookPayload struct {
	Event          string `json:"event"`
	PaymentOrderID string `json:"payment_order_id"`
	PaymentID      string `json:"payment_id"`
}

// Webhook POST RouteGroup + PaymentsWebhookRoute. Unauthenticated: the
// signature check is the only trust anchor, so it runs before the body is
// even parsed. The endpoint answers 200 to events it does not act on, which
// keeps the gateway from retrying them forever.
func (h *PaymentsHandler) Webhook(c *gin.Context) {
	body, readErr := c.GetRawData()
	if readErr != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, readErr).SetType(gin.ErrorTypePrivate)
		return
	}

	if !h.verifySignature(body, c.GetHeader(WebhookSignatureHeader)) {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	var payload webhookPayload
	if unmarshalErr := json.Unmarshal(body, &payload); unmarshalErr != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}
	if payload.PaymentOrderID == "" {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	err := h.paymentSvs.HandleGatewayEvent(ctx, service.GatewayEvent{
		Type:           payload.Event,
		PaymentOrderID: payload.PaymentOrderID,
		PaymentID:      payload.PaymentID,
	})
	if err != nil {
		var stateErr *domain.InvalidStateError
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			c.AbortWithStatus(http.StatusNotFound)
		case errors.As(err, &stateErr):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": stateErr.Error()})
		default:
			_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		}
		return
	}

	c.AbortWithStatus(http.StatusOK)
}

func (h *PaymentsHandler) verifySignature(body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, h.webhookSecret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
