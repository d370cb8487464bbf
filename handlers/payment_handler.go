package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/anjiri1684/mentorship/models"
	"github.com/anjiri1684/mentorship/services"
	"github.com/anjiri1684/mentorship/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	signatureHeader = "X-Razorpay-Signature"
	eventIDHeader   = "X-Razorpay-Event-Id"
)

type paymentService interface {
	CreateOrder(ctx context.Context, menteeID, sessionID uuid.UUID, amount *int64) (*services.OrderResult, error)
	VerifyCallback(ctx context.Context, menteeID uuid.UUID, in services.VerifyInput) (*models.SessionPayment, error)
	HandleWebhook(ctx context.Context, body []byte, signature, eventID string) error
	GetForSession(ctx context.Context, claims *utils.Claims, sessionID uuid.UUID) (*models.SessionPayment, error)
	List(ctx context.Context, f services.PaymentFilter, page utils.Page) ([]models.SessionPayment, int64, error)
}

type payoutService interface {
	Transfer(ctx context.Context, paymentID uuid.UUID) (*models.Transfer, error)
}

type PaymentHandler struct {
	payments paymentService
	payouts  payoutService
}

func NewPaymentHandler(payments paymentService, payouts payoutService) *PaymentHandler {
	return &PaymentHandler{payments: payments, payouts: payouts}
}

type CreateOrderRequest struct {
	SessionID string `json:"session_id" validate:"required,uuid"`
	// Amount is optional; when sent it must match the session price.
	Amount *int64 `json:"amount" validate:"omitempty,gt=0"`
}

type VerifyPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id" validate:"required"`
	PaymentID string `json:"razorpay_payment_id" validate:"required"`
	Signature string `json:"razorpay_signature" validate:"required"`
}

func (h *PaymentHandler) CreateOrder(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return respondError(c, err)
	}
	var req CreateOrderRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	sessionID, _ := uuid.Parse(req.SessionID)

	order, err := h.payments.CreateOrder(c.UserContext(), claims.UserID, sessionID, req.Amount)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

func (h *PaymentHandler) Verify(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return respondError(c, err)
	}
	var req VerifyPaymentRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}

	payment, err := h.payments.VerifyCallback(c.UserContext(), claims.UserID, services.VerifyInput{
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Payment verified", "payment": payment})
}

// Webhook must see the body exactly as the gateway signed it, so it reads
// c.Body() instead of going through BodyParser.
func (h *PaymentHandler) Webhook(c *fiber.Ctx) error {
	signature := c.Get(signatureHeader)
	if signature == "" {
		return respondError(c, fmt.Errorf("%w: missing %s header", models.ErrInvalidSignature, signatureHeader))
	}

	body := append([]byte(nil), c.Body()...)
	if err := h.payments.HandleWebhook(c.UserContext(), body, signature, c.Get(eventIDHeader)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *PaymentHandler) GetForSession(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return respondError(c, err)
	}
	sessionID, err := uuidParam(c, "sessionId")
	if err != nil {
		return respondError(c, err)
	}

	payment, err := h.payments.GetForSession(c.UserContext(), claims, sessionID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(payment)
}

// List is the admin ledger. from and to are RFC3339 timestamps.
func (h *PaymentHandler) List(c *fiber.Ctx) error {
	f := services.PaymentFilter{
		Status:      c.Query("status"),
		NeedsRefund: c.QueryBool("needs_refund"),
	}
	var err error
	if f.From, err = optionalTime(c, "from"); err != nil {
		return respondError(c, err)
	}
	if f.To, err = optionalTime(c, "to"); err != nil {
		return respondError(c, err)
	}

	page := utils.ParsePage(c)
	payments, total, err := h.payments.List(c.UserContext(), f, page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(utils.Paginated(payments, total, page))
}

// RetryTransfer lets an admin push a payout that failed or never started.
func (h *PaymentHandler) RetryTransfer(c *fiber.Ctx) error {
	paymentID, err := uuidParam(c, "paymentId")
	if err != nil {
		return respondError(c, err)
	}

	transfer, err := h.payouts.Transfer(c.UserContext(), paymentID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(transfer)
}

func optionalTime(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an RFC3339 timestamp", models.ErrInvalidInput, key)
	}
	return &t, nil
}
