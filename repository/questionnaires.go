package repository

import (
	"context"

	"github.com/anjiri1684/mentorship/models"
	"github.com/anjiri1684/mentorship/utils"
	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

func (s *Store) UpsertQuestionnaire(ctx context.Context, r *models.QuestionnaireResponse) error {
	err := s.conn(ctx).Omit("User").Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"role", "answers", "submitted_at", "updated_at"}),
	}).Create(r).Error
	return translate(err)
}

func (s *Store) GetQuestionnaireByUser(ctx context.Context, userID uuid.UUID) (*models.QuestionnaireResponse, error) {
	var r models.QuestionnaireResponse
	if err := s.conn(ctx).First(&r, "user_id = ?", userID).Error; err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

func (s *Store) ListQuestionnaires(ctx context.Context, role string, page utils.Page) ([]models.QuestionnaireResponse, int64, error) {
	q := s.conn(ctx).Model(&models.QuestionnaireResponse{})
	if role != "" {
		q = q.Where("role = ?", role)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var responses []models.QuestionnaireResponse
	err := paginate(q, page).Preload("User").Order("submitted_at DESC").Find(&responses).Error
	return responses, total, err
}
