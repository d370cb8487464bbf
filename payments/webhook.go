package payments

import (
	"encoding/json"
	"fmt"
)

const (
	EventPaymentCaptured = "payment.captured"
	EventPaymentFailed   = "payment.failed"
	EventOrderPaid       = "order.paid"
)

type WebhookEvent struct {
	Event         string
	OrderID       string
	PaymentID     string
	Amount        int64
	FailureReason string
}

type webhookEnvelope struct {
	Event   string `json:"event"`
	Payload struct {
		Payment *struct {
			Entity struct {
				ID               string `json:"id"`
				OrderID          string `json:"order_id"`
				Amount           int64  `json:"amount"`
				ErrorDescription string `json:"error_description"`
			} `json:"entity"`
		} `json:"payment"`
		Order *struct {
			Entity struct {
				ID     string `json:"id"`
				Amount int64  `json:"amount"`
			} `json:"entity"`
		} `json:"order"`
	} `json:"payload"`
}

// ParseWebhook extracts the order and payment references from a webhook body.
// Call it only after the signature has been verified.
func ParseWebhook(body []byte) (*WebhookEvent, error) {
	var env webhookEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode webhook: %w", err)
	}
	if env.Event == "" {
		return nil, fmt.Errorf("decode webhook: missing event")
	}

	ev := &WebhookEvent{Event: env.Event}
	if p := env.Payload.Payment; p != nil {
		ev.PaymentID = p.Entity.ID
		ev.OrderID = p.Entity.OrderID
		ev.Amount = p.Entity.Amount
		ev.FailureReason = p.Entity.ErrorDescription
	}
	if o := env.Payload.Order; o != nil && o.Entity.ID != "" {
		ev.OrderID = o.Entity.ID
		if ev.Amount == 0 {
			ev.Amount = o.Entity.Amount
		}
	}
	return ev, nil
}

// Handled reports whether the event changes payment state.
func (e *WebhookEvent) Handled() bool {
	switch e.Event {
	case EventPaymentCaptured, EventOrderPaid, EventPaymentFailed:
		return true
	}
	return false
}
