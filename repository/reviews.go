package repository

import (
	"context"

	"github.com/anjiri1684/mentorship/models"
	"github.com/anjiri1684/mentorship/utils"
	"github.com/google/uuid"
)

func (s *Store) CreateReview(ctx context.Context, r *models.Review) error {
	return translate(s.conn(ctx).Omit("Mentee").Create(r).Error)
}

func (s *Store) GetReview(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var r models.Review
	if err := s.conn(ctx).First(&r, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

func (s *Store) ListReviewsByMentor(ctx context.Context, mentorID uuid.UUID, page utils.Page) ([]models.Review, int64, error) {
	q := s.conn(ctx).Model(&models.Review{}).Where("mentor_id = ?", mentorID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reviews []models.Review
	err := paginate(q, page).Preload("Mentee").Order("created_at DESC").Find(&reviews).Error
	return reviews, total, err
}

func (s *Store) DeleteReview(ctx context.Context, id uuid.UUID) error {
	res := s.conn(ctx).Where("id = ?", id).Delete(&models.Review{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *Store) RefreshMentorRating(ctx context.Context, mentorID uuid.UUID) error {
	return s.conn(ctx).Exec(`
		UPDATE mentor_profiles SET
			avg_rating = COALESCE((SELECT AVG(rating) FROM reviews WHERE mentor_id = ?), 0),
			review_count = (SELECT COUNT(*) FROM reviews WHERE mentor_id = ?)
		WHERE user_id = ?`, mentorID, mentorID, mentorID).Error
}
