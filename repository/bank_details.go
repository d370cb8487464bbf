package repository

import (
	"context"

	"github.com/anjiri1684/mentorship/models"
	"github.com/google/uuid"
)

func (s *Store) GetBankDetails(ctx context.Context, mentorID uuid.UUID) (*models.BankDetails, error) {
	var b models.BankDetails
	if err := s.conn(ctx).First(&b, "mentor_id = ?", mentorID).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (s *Store) CreateBankDetails(ctx context.Context, b *models.BankDetails) error {
	return translate(s.conn(ctx).Create(b).Error)
}

func (s *Store) SaveBankDetails(ctx context.Context, b *models.BankDetails) error {
	return translate(s.conn(ctx).Save(b).Error)
}

func (s *Store) DeleteBankDetails(ctx context.Context, mentorID uuid.UUID) error {
	res := s.conn(ctx).Where("mentor_id = ?", mentorID).Delete(&models.BankDetails{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}
