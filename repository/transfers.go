package repository

import (
	"context"
	"time"

	"github.com/anjiri1684/mentorship/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// maxPayoutAttempts stops the reconciliation job from retrying a transfer the
// gateway keeps rejecting. Admins can still retry it by hand.
const maxPayoutAttempts = 5

func (s *Store) GetTransferByPayment(ctx context.Context, paymentID uuid.UUID) (*models.Transfer, error) {
	var t models.Transfer
	if err := s.conn(ctx).First(&t, "payment_id = ?", paymentID).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (s *Store) CreateTransfer(ctx context.Context, t *models.Transfer) error {
	return translate(s.conn(ctx).Create(t).Error)
}

func (s *Store) ClaimTransfer(ctx context.Context, id uuid.UUID, linkedAccountID string, staleBefore time.Time) (bool, error) {
	res := s.conn(ctx).Model(&models.Transfer{}).
		Where("id = ?", id).
		Where("status IN ? OR (status = ? AND updated_at < ?)",
			[]string{models.TransferPending, models.TransferFailed}, models.TransferProcessing, staleBefore).
		Updates(map[string]interface{}{
			"status":            models.TransferProcessing,
			"linked_account_id": linkedAccountID,
			"attempts":          gorm.Expr("attempts + 1"),
		})
	return res.RowsAffected == 1, res.Error
}

func (s *Store) CompleteTransfer(ctx context.Context, id uuid.UUID, gatewayTransferID string, at time.Time) error {
	return s.conn(ctx).Model(&models.Transfer{}).
		Where("id = ? AND status = ?", id, models.TransferProcessing).
		Updates(map[string]interface{}{
			"status":              models.TransferProcessed,
			"gateway_transfer_id": gatewayTransferID,
			"processed_at":        at,
			"failure_reason":      nil,
		}).Error
}

func (s *Store) FailTransfer(ctx context.Context, id uuid.UUID, reason string) error {
	return s.conn(ctx).Model(&models.Transfer{}).
		Where("id = ? AND status = ?", id, models.TransferProcessing).
		Updates(map[string]interface{}{
			"status":         models.TransferFailed,
			"failure_reason": reason,
		}).Error
}

func (s *Store) ListPayoutCandidates(ctx context.Context, limit int, staleBefore time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.conn(ctx).Table("session_payments AS sp").
		Select("sp.id").
		Joins("JOIN sessions s ON s.id = sp.session_id").
		Joins("LEFT JOIN transfers t ON t.payment_id = sp.id").
		Where("sp.status = ? AND s.status = ?", models.PaymentPaid, models.SessionCompleted).
		Where("t.id IS NULL OR (t.attempts < ? AND (t.status IN ? OR (t.status = ? AND t.updated_at < ?)))",
			maxPayoutAttempts, []string{models.TransferPending, models.TransferFailed}, models.TransferProcessing, staleBefore).
		Order("sp.paid_at").
		Limit(limit).
		Pluck("sp.id", &ids).Error
	return ids, err
}
