package repository

import (
	"context"

	"github.com/anjiri1684/mentorship/models"
	"github.com/anjiri1684/mentorship/services"
	"github.com/google/uuid"
)

func (s *Store) CreateInterest(ctx context.Context, i *models.MentorshipInterest) error {
	return translate(s.conn(ctx).Omit("Mentee", "Mentor").Create(i).Error)
}

func (s *Store) GetInterest(ctx context.Context, id uuid.UUID) (*models.MentorshipInterest, error) {
	var i models.MentorshipInterest
	if err := s.conn(ctx).Preload("Mentee").Preload("Mentor").First(&i, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &i, nil
}

func (s *Store) ListInterests(ctx context.Context, f services.InterestFilter) ([]models.MentorshipInterest, error) {
	q := s.conn(ctx).Model(&models.MentorshipInterest{})
	if f.MenteeID != nil {
		q = q.Where("mentee_id = ?", *f.MenteeID).Preload("Mentor")
	}
	if f.MentorID != nil {
		q = q.Where("mentor_id = ?", *f.MentorID).Preload("Mentee")
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var interests []models.MentorshipInterest
	err := q.Order("created_at DESC").Find(&interests).Error
	return interests, err
}

func (s *Store) HasPendingInterest(ctx context.Context, menteeID, mentorID uuid.UUID) (bool, error) {
	var count int64
	err := s.conn(ctx).Model(&models.MentorshipInterest{}).
		Where("mentee_id = ? AND mentor_id = ? AND status = ?", menteeID, mentorID, models.InterestPending).
		Count(&count).Error
	return count > 0, err
}

func (s *Store) RespondInterest(ctx context.Context, id uuid.UUID, status string) error {
	res := s.conn(ctx).Model(&models.MentorshipInterest{}).
		Where("id = ? AND status = ?", id, models.InterestPending).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return s.missingOr(ctx, &models.MentorshipInterest{}, id, models.ErrInvalidStateTransition)
	}
	return nil
}

func (s *Store) DeleteInterest(ctx context.Context, id uuid.UUID) error {
	res := s.conn(ctx).Where("id = ?", id).Delete(&models.MentorshipInterest{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}
