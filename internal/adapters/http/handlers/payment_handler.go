package handlers

import (
	"time"

	"svco-apply/internal/adapters/persistence/models"
	"svco-apply/internal/core/services"
	"svco-apply/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// PaymentHandler handles gateway-facing payment endpoints
type PaymentHandler struct {
	paymentService *services.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// WebhookInput mirrors the gateway's webhook form fields.
type WebhookInput struct {
	PaymentRequestID string `form:"payment_request_id" json:"payment_request_id"`
	PaymentID        string `form:"payment_id" json:"payment_id"`
	Status           string `form:"status" json:"status"`
}

// Webhook handles gateway payment confirmations
// @Summary Payment webhook
// @Description Applies a gateway confirmation; replayed and out-of-order deliveries are acknowledged without effect
// @Tags Payments
// @Accept x-www-form-urlencoded
// @Produce json
// @Param payment_request_id formData string true "Gateway payment request ID"
// @Param status formData string true "Gateway payment status"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /payments/webhook [post]
func (h *PaymentHandler) Webhook(c *fiber.Ctx) error {
	var input WebhookInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid webhook payload")
	}
	if input.PaymentRequestID == "" {
		return response.BadRequest(c, "payment_request_id is required")
	}

	// The gateway reports the payment leg only; derive the request leg from
	// it. Anything other than Credit/Failed leaves the payment pending.
	requestStatus := ""
	paymentStatus := input.Status
	switch input.Status {
	case models.PaymentStatusCredit:
		requestStatus = models.RequestStatusCompleted
	case models.PaymentStatusFailed:
		requestStatus = models.RequestStatusFailed
	}

	now := time.Now()
	payment, err := h.paymentService.ConfirmByGatewayRequestID(
		c.UserContext(), input.PaymentRequestID, requestStatus, paymentStatus, &now)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Webhook processed", payment.ToResponse())
}
