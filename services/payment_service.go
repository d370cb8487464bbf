package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/anjiri1684/mentorship/metrics"
	"github.com/anjiri1684/mentorship/models"
	"github.com/anjiri1684/mentorship/notifications"
	"github.com/anjiri1684/mentorship/payments"
	"github.com/anjiri1684/mentorship/utils"
	"github.com/google/uuid"
)

type PaymentGateway interface {
	KeyID() string
	CreateOrder(ctx context.Context, req payments.OrderRequest) (*payments.Order, error)
	VerifyPaymentSignature(orderID, paymentID, signature string) bool
	VerifyWebhookSignature(body []byte, signature string) bool
}

// ReceiptIssuer renders and stores a receipt, returning its public URL.
type ReceiptIssuer interface {
	Issue(ctx context.Context, p *models.SessionPayment, s *models.Session) (string, error)
}

type OrderResult struct {
	OrderID   string    `json:"order_id"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	KeyID     string    `json:"key_id"`
	SessionID uuid.UUID `json:"session_id"`
}

type VerifyInput struct {
	OrderID   string
	PaymentID string
	Signature string
}

type PaymentService struct {
	payments PaymentStore
	sessions SessionStore
	gateway  PaymentGateway
	receipts ReceiptIssuer
	notifier Notifier
	metrics  metrics.Recorder
	now      func() time.Time
}

type PaymentConfig struct {
	Payments PaymentStore
	Sessions SessionStore
	Gateway  PaymentGateway
	Receipts ReceiptIssuer
	Notifier Notifier
	Metrics  metrics.Recorder
}

func NewPaymentService(cfg PaymentConfig) *PaymentService {
	rec := cfg.Metrics
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &PaymentService{
		payments: cfg.Payments,
		sessions: cfg.Sessions,
		gateway:  cfg.Gateway,
		receipts: cfg.Receipts,
		notifier: cfg.Notifier,
		metrics:  rec,
		now:      time.Now,
	}
}

// CreateOrder opens a gateway order for the session price. amount, when
// given, must match the price exactly.
func (s *PaymentService) CreateOrder(ctx context.Context, menteeID, sessionID uuid.UUID, amount *int64) (*OrderResult, error) {
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.MenteeID != menteeID {
		return nil, fmt.Errorf("%w: only the mentee who booked the session can pay for it", models.ErrForbidden)
	}
	if session.PaymentStatus == models.PaymentStatusPaid {
		return nil, fmt.Errorf("%w: session is already paid", models.ErrConflict)
	}
	if session.Status == models.SessionCancelled {
		return nil, fmt.Errorf("%w: session is cancelled", models.ErrConflict)
	}
	if amount != nil && *amount != session.Price {
		return nil, fmt.Errorf("%w: amount %d does not match the session price %d", models.ErrInvalidInput, *amount, session.Price)
	}

	// An open order for the same amount is still valid at the gateway.
	if p := session.Payment; p != nil && p.Status == models.PaymentCreated && p.Amount == session.Price {
		return s.orderResult(p.GatewayOrderID, p.Amount, p.Currency, sessionID), nil
	}

	order, err := s.gateway.CreateOrder(ctx, payments.OrderRequest{
		Amount:   session.Price,
		Currency: session.Currency,
		Receipt:  session.ID.String(),
		Notes: map[string]string{
			"session_id": session.ID.String(),
			"mentee_id":  session.MenteeID.String(),
			"mentor_id":  session.MentorID.String(),
		},
	})
	if err != nil {
		return nil, err
	}

	payment := &models.SessionPayment{
		SessionID:      session.ID,
		MenteeID:       session.MenteeID,
		Amount:         session.Price,
		Currency:       session.Currency,
		GatewayOrderID: order.ID,
		Status:         models.PaymentCreated,
	}
	if err := s.payments.SaveOrder(ctx, payment); err != nil {
		return nil, err
	}
	s.metrics.OrderCreated()

	return s.orderResult(order.ID, session.Price, session.Currency, sessionID), nil
}

func (s *PaymentService) orderResult(orderID string, amount int64, currency string, sessionID uuid.UUID) *OrderResult {
	return &OrderResult{
		OrderID:   orderID,
		Amount:    amount,
		Currency:  currency,
		KeyID:     s.gateway.KeyID(),
		SessionID: sessionID,
	}
}

// VerifyCallback settles a payment from the checkout callback.
func (s *PaymentService) VerifyCallback(ctx context.Context, menteeID uuid.UUID, in VerifyInput) (*models.SessionPayment, error) {
	if !s.gateway.VerifyPaymentSignature(in.OrderID, in.PaymentID, in.Signature) {
		s.metrics.SignatureRejected(models.PaidViaCallback)
		return nil, fmt.Errorf("%w: payment signature mismatch", models.ErrInvalidSignature)
	}

	existing, err := s.payments.GetPaymentByOrderID(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}
	if existing.MenteeID != menteeID {
		return nil, fmt.Errorf("%w: payment belongs to another user", models.ErrForbidden)
	}

	payment, first, err := s.payments.MarkPaid(ctx, in.OrderID, in.PaymentID, in.Signature, models.PaidViaCallback, s.now())
	if err != nil {
		return nil, err
	}
	if first {
		s.settled(payment, models.PaidViaCallback)
	}
	return payment, nil
}

// HandleWebhook applies a signed gateway event. Replayed event ids and
// unhandled event types are acknowledged without processing.
func (s *PaymentService) HandleWebhook(ctx context.Context, body []byte, signature, eventID string) error {
	if !s.gateway.VerifyWebhookSignature(body, signature) {
		s.metrics.SignatureRejected(models.PaidViaWebhook)
		return fmt.Errorf("%w: webhook signature mismatch", models.ErrInvalidSignature)
	}

	ev, err := payments.ParseWebhook(body)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	if eventID != "" {
		seen, err := s.payments.WebhookEventSeen(ctx, eventID)
		if err != nil {
			return err
		}
		if seen {
			s.metrics.WebhookDuplicate()
			return nil
		}
	}

	if ev.Handled() {
		if err := s.applyEvent(ctx, ev); err != nil {
			return err
		}
	}

	if eventID != "" {
		if err := s.payments.RecordWebhookEvent(ctx, eventID, ev.Event, s.now()); err != nil && !errors.Is(err, models.ErrConflict) {
			return err
		}
	}
	return nil
}

func (s *PaymentService) applyEvent(ctx context.Context, ev *payments.WebhookEvent) error {
	if ev.OrderID == "" {
		return fmt.Errorf("%w: event %s carries no order id", models.ErrInvalidInput, ev.Event)
	}
	existing, err := s.payments.GetPaymentByOrderID(ctx, ev.OrderID)
	if err != nil {
		return err
	}

	if ev.Event == payments.EventPaymentFailed {
		_, err := s.payments.MarkFailed(ctx, ev.OrderID, ev.PaymentID, ev.FailureReason)
		return err
	}

	if ev.Amount != 0 && ev.Amount != existing.Amount {
		log.Printf("🔥 Webhook %s for order %s reports amount %d, expected %d", ev.Event, ev.OrderID, ev.Amount, existing.Amount)
		return fmt.Errorf("%w: amount mismatch for order %s", models.ErrInvalidInput, ev.OrderID)
	}

	payment, first, err := s.payments.MarkPaid(ctx, ev.OrderID, ev.PaymentID, "", models.PaidViaWebhook, s.now())
	if err != nil {
		return err
	}
	if first {
		s.settled(payment, models.PaidViaWebhook)
	}
	return nil
}

func (s *PaymentService) settled(p *models.SessionPayment, via string) {
	s.metrics.PaymentVerified(via)
	if p.NeedsRefund {
		log.Printf("🔥 Payment %s captured for cancelled session %s, flagged for refund", p.ID, p.SessionID)
		s.metrics.PaidAfterCancel()
		return
	}
	go s.afterPaid(p.ID)
}

// afterPaid runs the best-effort side effects of a settled payment.
func (s *PaymentService) afterPaid(paymentID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	payment, err := s.payments.GetPayment(ctx, paymentID)
	if err != nil {
		log.Printf("🔥 Could not load payment %s: %v", paymentID, err)
		return
	}
	session, err := s.sessions.GetSession(ctx, payment.SessionID)
	if err != nil {
		log.Printf("🔥 Could not load session %s: %v", payment.SessionID, err)
		return
	}

	notice := notifications.PaymentConfirmedNotice(session.Topic, session.StartTime, payment.Amount, payment.Currency)
	s.notifier.Notify(ctx, &session.Mentee, notice)
	s.notifier.Notify(ctx, &session.Mentor, notifications.Notice{
		Subject: "Session confirmed",
		HTML:    fmt.Sprintf("<p>%s</p>", notice.Text),
		Text:    notice.Text,
	})

	if s.receipts == nil {
		return
	}
	url, err := s.receipts.Issue(ctx, payment, session)
	if err != nil {
		log.Printf("🔥 Failed to generate receipt for payment %s: %v", payment.ID, err)
		return
	}
	if err := s.payments.SetReceiptURL(ctx, payment.ID, url); err != nil {
		log.Printf("🔥 Failed to store receipt URL for payment %s: %v", payment.ID, err)
	}
}

// GetForSession returns the payment record of a session to its participants
// and admins.
func (s *PaymentService) GetForSession(ctx context.Context, claims *utils.Claims, sessionID uuid.UUID) (*models.SessionPayment, error) {
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if claims.Role != models.RoleAdmin && !session.IsParticipant(claims.UserID) {
		return nil, fmt.Errorf("%w: you are not part of this session", models.ErrForbidden)
	}
	return s.payments.GetPaymentBySession(ctx, sessionID)
}

func (s *PaymentService) List(ctx context.Context, f PaymentFilter, page utils.Page) ([]models.SessionPayment, int64, error) {
	return s.payments.ListPayments(ctx, f, page)
}
