package repository

import (
	"context"
	"time"

	"github.com/anjiri1684/mentorship/models"
	"github.com/anjiri1684/mentorship/services"
	"github.com/anjiri1684/mentorship/utils"
	"github.com/google/uuid"
)

type countRow struct {
	Key   string
	Count int64
}

func (s *Store) countBy(ctx context.Context, model interface{}, column string) (map[string]int64, error) {
	var rows []countRow
	err := s.conn(ctx).Model(model).
		Select(column + " AS key, COUNT(*) AS count").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Key] = r.Count
	}
	return out, nil
}

func (s *Store) Stats(ctx context.Context) (*services.PlatformStats, error) {
	stats := &services.PlatformStats{}
	var err error

	if stats.UsersByRole, err = s.countBy(ctx, &models.User{}, "role"); err != nil {
		return nil, err
	}
	if stats.SessionsByStatus, err = s.countBy(ctx, &models.Session{}, "status"); err != nil {
		return nil, err
	}

	db := s.conn(ctx)
	if err := db.Model(&models.SessionPayment{}).
		Where("status = ?", models.PaymentPaid).
		Select("COALESCE(SUM(amount), 0)").Scan(&stats.PaidRevenue).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Transfer{}).
		Where("status = ?", models.TransferProcessed).
		Select("COALESCE(SUM(amount), 0)").Scan(&stats.PaidOutToMentors).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Transfer{}).
		Where("status <> ?", models.TransferProcessed).
		Count(&stats.PendingTransfers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Review{}).Count(&stats.ReviewsSubmitted).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *Store) ListUsers(ctx context.Context, f services.UserFilter, page utils.Page) ([]models.User, int64, error) {
	q := s.conn(ctx).Model(&models.User{})
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if f.Query != "" {
		like := "%" + f.Query + "%"
		q = q.Where("email ILIKE ? OR full_name ILIKE ?", like, like)
	}
	if f.Active != nil {
		q = q.Where("is_active = ?", *f.Active)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := paginate(q, page).Order("created_at DESC").Find(&users).Error
	return users, total, err
}

func (s *Store) SetUserActive(ctx context.Context, userID uuid.UUID, active bool) error {
	res := s.conn(ctx).Model(&models.User{}).Where("id = ?", userID).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *Store) TransactionRows(ctx context.Context, from, to time.Time, each func(services.TransactionRow) error) error {
	rows, err := s.conn(ctx).Raw(`
		SELECT sp.id, sp.session_id, me.email, mo.email, sp.amount, sp.currency, sp.status,
			sp.gateway_order_id, COALESCE(sp.gateway_payment_id, ''),
			COALESCE(t.status, ''), COALESCE(t.amount, 0), sp.paid_at, sp.created_at
		FROM session_payments sp
		JOIN sessions s ON s.id = sp.session_id
		JOIN users me ON me.id = s.mentee_id
		JOIN users mo ON mo.id = s.mentor_id
		LEFT JOIN transfers t ON t.payment_id = sp.id
		WHERE sp.created_at >= ? AND sp.created_at < ?
		ORDER BY sp.created_at`, from, to).Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var r services.TransactionRow
		if err := rows.Scan(
			&r.PaymentID, &r.SessionID, &r.MenteeEmail, &r.MentorEmail, &r.Amount, &r.Currency, &r.Status,
			&r.GatewayOrderID, &r.GatewayPaymentID, &r.TransferStatus, &r.TransferAmount, &r.PaidAt, &r.CreatedAt,
		); err != nil {
			return err
		}
		if err := each(r); err != nil {
			return err
		}
	}
	return rows.Err()
}
