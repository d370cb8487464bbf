package repository

import (
	"context"
	"time"

	"github.com/anjiri1684/mentorship/models"
	"github.com/anjiri1684/mentorship/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (s *Store) ListConversations(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := s.conn(ctx).
		Joins("JOIN conversation_participants cp ON cp.conversation_id = conversations.id").
		Where("cp.user_id = ?", userID).
		Preload("Participants").
		Order("conversations.updated_at DESC").
		Find(&conversations).Error
	return conversations, err
}

func (s *Store) FindConversationBetween(ctx context.Context, a, b uuid.UUID) (*models.Conversation, error) {
	shared := s.conn(ctx).Table("conversation_participants").
		Select("conversation_id").
		Where("user_id IN ?", []uuid.UUID{a, b}).
		Group("conversation_id").
		Having("COUNT(DISTINCT user_id) = 2")

	var conv models.Conversation
	if err := s.conn(ctx).Preload("Participants").Where("id IN (?)", shared).First(&conv).Error; err != nil {
		return nil, translate(err)
	}
	return &conv, nil
}

func (s *Store) CreateConversation(ctx context.Context, a, b uuid.UUID) (*models.Conversation, error) {
	conv := models.Conversation{
		Participants: []*models.User{{ID: a}, {ID: b}},
	}
	if err := s.conn(ctx).Omit("Participants.*").Create(&conv).Error; err != nil {
		return nil, translate(err)
	}
	return s.GetConversation(ctx, conv.ID)
}

func (s *Store) GetConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	var conv models.Conversation
	if err := s.conn(ctx).Preload("Participants").First(&conv, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &conv, nil
}

func (s *Store) CreateMessage(ctx context.Context, m *models.Message) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return translate(err)
		}
		return tx.Model(&models.Conversation{}).Where("id = ?", m.ConversationID).Update("updated_at", m.CreatedAt).Error
	})
}

func (s *Store) ListMessages(ctx context.Context, conversationID uuid.UUID, page utils.Page) ([]models.Message, int64, error) {
	q := s.conn(ctx).Model(&models.Message{}).Where("conversation_id = ?", conversationID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var messages []models.Message
	err := paginate(q, page).Order("created_at DESC").Find(&messages).Error
	return messages, total, err
}

func (s *Store) MarkMessagesRead(ctx context.Context, conversationID, readerID uuid.UUID, at time.Time) error {
	return s.conn(ctx).Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND read_at IS NULL", conversationID, readerID).
		Update("read_at", at).Error
}
