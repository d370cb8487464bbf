package repository

import (
	"context"

	"github.com/anjiri1684/mentorship/models"
	"github.com/anjiri1684/mentorship/services"
	"github.com/anjiri1684/mentorship/utils"
	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

func (s *Store) GetMentorProfile(ctx context.Context, userID uuid.UUID) (*models.MentorProfile, error) {
	var p models.MentorProfile
	if err := s.conn(ctx).Preload("User").First(&p, "user_id = ?", userID).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *Store) SaveMentorProfile(ctx context.Context, p *models.MentorProfile) error {
	return translate(s.conn(ctx).Omit(clause.Associations).Save(p).Error)
}

func (s *Store) ListMentors(ctx context.Context, f services.MentorFilter, page utils.Page) ([]models.MentorProfile, int64, error) {
	q := s.conn(ctx).Model(&models.MentorProfile{}).
		Joins("JOIN users ON users.id = mentor_profiles.user_id").
		Where("users.role = ? AND users.is_active = ?", models.RoleMentor, true)

	if f.Query != "" {
		like := "%" + f.Query + "%"
		q = q.Where("users.full_name ILIKE ? OR mentor_profiles.headline ILIKE ?", like, like)
	}
	if f.Expertise != "" {
		q = q.Where("mentor_profiles.expertise ILIKE ?", "%"+f.Expertise+"%")
	}
	if f.MaxHourlyRate > 0 {
		q = q.Where("mentor_profiles.hourly_rate <= ?", f.MaxHourlyRate)
	}
	if f.MinRating > 0 {
		q = q.Where("mentor_profiles.avg_rating >= ?", f.MinRating)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var mentors []models.MentorProfile
	err := paginate(q, page).
		Preload("User").
		Order("mentor_profiles.avg_rating DESC, mentor_profiles.review_count DESC").
		Find(&mentors).Error
	return mentors, total, err
}

func (s *Store) GetMenteeProfile(ctx context.Context, userID uuid.UUID) (*models.MenteeProfile, error) {
	var p models.MenteeProfile
	if err := s.conn(ctx).First(&p, "user_id = ?", userID).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *Store) SaveMenteeProfile(ctx context.Context, p *models.MenteeProfile) error {
	return translate(s.conn(ctx).Omit(clause.Associations).Save(p).Error)
}
