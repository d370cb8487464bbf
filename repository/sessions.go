package repository

import (
	"context"
	"time"

	"github.com/anjiri1684/mentorship/models"
	"github.com/anjiri1684/mentorship/services"
	"github.com/anjiri1684/mentorship/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var activeSessionStatuses = []string{models.SessionScheduled, models.SessionConfirmed}

func (s *Store) CreateSession(ctx context.Context, sess *models.Session) error {
	return translate(s.conn(ctx).Omit("Mentee", "Mentor", "Payment").Create(sess).Error)
}

func (s *Store) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	var sess models.Session
	err := s.conn(ctx).
		Preload("Mentee").
		Preload("Mentor").
		Preload("Payment").
		First(&sess, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &sess, nil
}

func (s *Store) ListSessions(ctx context.Context, f services.SessionFilter, page utils.Page) ([]models.Session, int64, error) {
	q := s.conn(ctx).Model(&models.Session{})

	if f.UserID != uuid.Nil {
		switch f.Role {
		case models.RoleMentor:
			q = q.Where("mentor_id = ?", f.UserID)
		case models.RoleParent:
			q = q.Where("mentee_id = ? OR mentee_id IN (?)", f.UserID,
				s.conn(ctx).Model(&models.MenteeProfile{}).Select("user_id").Where("parent_user_id = ?", f.UserID))
		default:
			q = q.Where("mentee_id = ?", f.UserID)
		}
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.PaymentStatus != "" {
		q = q.Where("payment_status = ?", f.PaymentStatus)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sessions []models.Session
	err := paginate(q, page).
		Preload("Mentee").
		Preload("Mentor").
		Order("start_time DESC").
		Find(&sessions).Error
	return sessions, total, err
}

func (s *Store) HasOverlap(ctx context.Context, mentorID uuid.UUID, start, end time.Time) (bool, error) {
	var count int64
	err := s.conn(ctx).Model(&models.Session{}).
		Where("mentor_id = ? AND status IN ? AND start_time < ? AND end_time > ?", mentorID, activeSessionStatuses, end, start).
		Count(&count).Error
	return count > 0, err
}

func (s *Store) TransitionSession(ctx context.Context, id uuid.UUID, from []string, to string, at time.Time) error {
	updates := map[string]interface{}{"status": to}
	if to == models.SessionCompleted {
		updates["completed_at"] = at
	}

	res := s.conn(ctx).Model(&models.Session{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return s.missingOr(ctx, &models.Session{}, id, models.ErrInvalidStateTransition)
	}
	return nil
}

func (s *Store) SetMeetingLink(ctx context.Context, id uuid.UUID, link string) error {
	res := s.conn(ctx).Model(&models.Session{}).Where("id = ?", id).Update("meeting_link", link)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteUnpaidSession(ctx context.Context, id uuid.UUID) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND payment_status <> ?", id, models.PaymentStatusPaid).Delete(&models.Session{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return s.missingOrTx(tx, &models.Session{}, id, models.ErrConflict)
		}
		return tx.Where("session_id = ? AND status <> ?", id, models.PaymentPaid).Delete(&models.SessionPayment{}).Error
	})
}

func (s *Store) ListDueReminders(ctx context.Context, from, to time.Time) ([]models.Session, error) {
	var sessions []models.Session
	err := s.conn(ctx).
		Preload("Mentee").
		Preload("Mentor").
		Where("status = ? AND reminder_sent_at IS NULL AND start_time BETWEEN ? AND ?", models.SessionConfirmed, from, to).
		Find(&sessions).Error
	return sessions, err
}

func (s *Store) MarkReminded(ctx context.Context, id uuid.UUID, at time.Time) error {
	return s.conn(ctx).Model(&models.Session{}).
		Where("id = ? AND reminder_sent_at IS NULL", id).
		Update("reminder_sent_at", at).Error
}

func (s *Store) ExpireUnpaid(ctx context.Context, startedBefore time.Time) (int64, error) {
	res := s.conn(ctx).Model(&models.Session{}).
		Where("status = ? AND payment_status <> ? AND start_time < ?", models.SessionScheduled, models.PaymentStatusPaid, startedBefore).
		Updates(map[string]interface{}{
			"status":         models.SessionCancelled,
			"payment_status": models.PaymentStatusFailed,
		})
	return res.RowsAffected, res.Error
}

// missingOr distinguishes a row that does not exist from one that exists but
// did not match a conditional update.
func (s *Store) missingOr(ctx context.Context, model interface{}, id uuid.UUID, otherwise error) error {
	return s.missingOrTx(s.conn(ctx), model, id, otherwise)
}

func (s *Store) missingOrTx(tx *gorm.DB, model interface{}, id uuid.UUID, otherwise error) error {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return models.ErrNotFound
	}
	return otherwise
}
