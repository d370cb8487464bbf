package repository

import (
	"context"
	"strings"

	"github.com/anjiri1684/mentorship/models"
	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return translate(s.conn(ctx).Create(u).Error)
}

func (s *Store) SaveUser(ctx context.Context, u *models.User) error {
	return translate(s.conn(ctx).Omit(clause.Associations).Save(u).Error)
}

func (s *Store) getUser(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var u models.User
	if err := s.conn(ctx).Where(query, arg).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.getUser(ctx, "id = ?", id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (s *Store) GetUserByFirebaseUID(ctx context.Context, uid string) (*models.User, error) {
	return s.getUser(ctx, "firebase_uid = ?", uid)
}

func (s *Store) GetUserByGoogleSub(ctx context.Context, sub string) (*models.User, error) {
	return s.getUser(ctx, "google_sub = ?", sub)
}

func (s *Store) GetUserByResetToken(ctx context.Context, token string) (*models.User, error) {
	return s.getUser(ctx, "reset_password_token = ?", token)
}
