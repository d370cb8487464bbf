package repository

import (
	"context"
	"errors"
	"time"

	"github.com/anjiri1684/mentorship/models"
	"github.com/anjiri1684/mentorship/services"
	"github.com/anjiri1684/mentorship/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *Store) getPayment(ctx context.Context, query string, arg interface{}) (*models.SessionPayment, error) {
	var p models.SessionPayment
	if err := s.conn(ctx).Where(query, arg).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *Store) GetPayment(ctx context.Context, id uuid.UUID) (*models.SessionPayment, error) {
	return s.getPayment(ctx, "id = ?", id)
}

func (s *Store) GetPaymentBySession(ctx context.Context, sessionID uuid.UUID) (*models.SessionPayment, error) {
	return s.getPayment(ctx, "session_id = ?", sessionID)
}

func (s *Store) GetPaymentByOrderID(ctx context.Context, orderID string) (*models.SessionPayment, error) {
	return s.getPayment(ctx, "gateway_order_id = ?", orderID)
}

func (s *Store) SaveOrder(ctx context.Context, p *models.SessionPayment) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.SessionPayment
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("session_id = ?", p.SessionID).
			First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return translate(tx.Omit("Session").Create(p).Error)
		}
		if err != nil {
			return err
		}
		if existing.Status == models.PaymentPaid {
			return models.ErrConflict
		}

		err = tx.Model(&models.SessionPayment{}).Where("id = ?", existing.ID).Updates(map[string]interface{}{
			"gateway_order_id":   p.GatewayOrderID,
			"amount":             p.Amount,
			"currency":           p.Currency,
			"status":             models.PaymentCreated,
			"gateway_payment_id": nil,
			"gateway_signature":  nil,
			"failure_reason":     nil,
		}).Error
		if err != nil {
			return translate(err)
		}
		p.ID = existing.ID
		p.CreatedAt = existing.CreatedAt
		return nil
	})
}

func (s *Store) MarkPaid(ctx context.Context, orderID, paymentID, signature, via string, at time.Time) (*models.SessionPayment, bool, error) {
	var p models.SessionPayment
	first := false

	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("gateway_order_id = ?", orderID).
			First(&p).Error; err != nil {
			return translate(err)
		}

		updates := map[string]interface{}{
			"status":             models.PaymentPaid,
			"gateway_payment_id": paymentID,
			"paid_via":           via,
			"paid_at":            at,
			"failure_reason":     nil,
		}
		if signature != "" {
			updates["gateway_signature"] = signature
		}

		res := tx.Model(&models.SessionPayment{}).
			Where("id = ? AND status <> ?", p.ID, models.PaymentPaid).
			Updates(updates)
		if res.Error != nil {
			return translate(res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}

		var session models.Session
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "status").
			First(&session, "id = ?", p.SessionID).Error; err != nil {
			return translate(err)
		}

		sessionUpdates := map[string]interface{}{"payment_status": models.PaymentStatusPaid}
		switch session.Status {
		case models.SessionScheduled:
			sessionUpdates["status"] = models.SessionConfirmed
		case models.SessionCancelled:
			if err := tx.Model(&models.SessionPayment{}).
				Where("id = ?", p.ID).
				Update("needs_refund", true).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&models.Session{}).
			Where("id = ?", p.SessionID).
			Updates(sessionUpdates).Error; err != nil {
			return err
		}

		first = true
		return tx.First(&p, "id = ?", p.ID).Error
	})
	if err != nil {
		return nil, false, err
	}
	return &p, first, nil
}

func (s *Store) MarkFailed(ctx context.Context, orderID, paymentID, reason string) (*models.SessionPayment, error) {
	var p models.SessionPayment

	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("gateway_order_id = ?", orderID).
			First(&p).Error; err != nil {
			return translate(err)
		}
		if p.Status == models.PaymentPaid {
			return nil
		}

		updates := map[string]interface{}{
			"status":         models.PaymentFailed,
			"failure_reason": reason,
		}
		if paymentID != "" {
			updates["gateway_payment_id"] = paymentID
		}
		if err := tx.Model(&models.SessionPayment{}).
			Where("id = ? AND status <> ?", p.ID, models.PaymentPaid).
			Updates(updates).Error; err != nil {
			return translate(err)
		}
		if err := tx.Model(&models.Session{}).
			Where("id = ? AND payment_status <> ?", p.SessionID, models.PaymentStatusPaid).
			Update("payment_status", models.PaymentStatusFailed).Error; err != nil {
			return err
		}
		return tx.First(&p, "id = ?", p.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) SetReceiptURL(ctx context.Context, id uuid.UUID, url string) error {
	return s.conn(ctx).Model(&models.SessionPayment{}).Where("id = ?", id).Update("receipt_url", url).Error
}

func (s *Store) WebhookEventSeen(ctx context.Context, eventID string) (bool, error) {
	var count int64
	err := s.conn(ctx).Model(&models.WebhookEvent{}).Where("event_id = ?", eventID).Count(&count).Error
	return count > 0, err
}

func (s *Store) RecordWebhookEvent(ctx context.Context, eventID, eventType string, at time.Time) error {
	ev := models.WebhookEvent{EventID: eventID, EventType: eventType, ReceivedAt: at}
	return s.conn(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&ev).Error
}

func (s *Store) ListPayments(ctx context.Context, f services.PaymentFilter, page utils.Page) ([]models.SessionPayment, int64, error) {
	q := s.conn(ctx).Model(&models.SessionPayment{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.NeedsRefund {
		q = q.Where("needs_refund = ?", true)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var payments []models.SessionPayment
	err := paginate(q, page).Order("created_at DESC").Find(&payments).Error
	return payments, total, err
}
