package services

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/anjiri1684/mentorship/models"
	"github.com/anjiri1684/mentorship/notifications"
	"github.com/anjiri1684/mentorship/utils"
	"github.com/google/uuid"
)

const maxMessageLength = 4000

// Deliverer pushes realtime events to a user's open sockets.
type Deliverer interface {
	SendToUser(userID uuid.UUID, eventType string, data interface{})
}

type ChatService struct {
	chats       ChatStore
	users       UserStore
	hub         Deliverer
	notifier    Notifier
	frontendURL string
	now         func() time.Time
}

func NewChatService(chats ChatStore, users UserStore, hub Deliverer, notifier Notifier, frontendURL string) *ChatService {
	return &ChatService{
		chats:       chats,
		users:       users,
		hub:         hub,
		notifier:    notifier,
		frontendURL: frontendURL,
		now:         time.Now,
	}
}

func (s *ChatService) ListConversations(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	return s.chats.ListConversations(ctx, userID)
}

// StartConversation returns the existing conversation between the two users
// or creates it.
func (s *ChatService) StartConversation(ctx context.Context, userID, otherID uuid.UUID) (*models.Conversation, bool, error) {
	if userID == otherID {
		return nil, false, fmt.Errorf("%w: you cannot start a conversation with yourself", models.ErrInvalidInput)
	}
	other, err := s.users.GetUserByID(ctx, otherID)
	if err != nil {
		return nil, false, err
	}
	if !other.IsActive {
		return nil, false, fmt.Errorf("%w: user not found", models.ErrNotFound)
	}

	conv, err := s.chats.FindConversationBetween(ctx, userID, otherID)
	if err == nil {
		return conv, false, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, false, err
	}

	conv, err = s.chats.CreateConversation(ctx, userID, otherID)
	if err != nil {
		return nil, false, err
	}
	return conv, true, nil
}

func (s *ChatService) participantConversation(ctx context.Context, userID, conversationID uuid.UUID) (*models.Conversation, error) {
	conv, err := s.chats.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, fmt.Errorf("%w: you are not part of this conversation", models.ErrForbidden)
	}
	return conv, nil
}

// ListMessages returns a page of messages, newest first, and marks the
// other participant's messages as read.
func (s *ChatService) ListMessages(ctx context.Context, userID, conversationID uuid.UUID, page utils.Page) ([]models.Message, int64, error) {
	if _, err := s.participantConversation(ctx, userID, conversationID); err != nil {
		return nil, 0, err
	}
	messages, total, err := s.chats.ListMessages(ctx, conversationID, page)
	if err != nil {
		return nil, 0, err
	}
	if err := s.chats.MarkMessagesRead(ctx, conversationID, userID, s.now()); err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

// SendMessage stores a message, pushes it to both participants' sockets and
// notifies the recipient by email and WhatsApp when they are offline.
func (s *ChatService) SendMessage(ctx context.Context, senderID, conversationID uuid.UUID, content string) (*models.Message, error) {
	content = utils.SanitizeText(content)
	if content == "" {
		return nil, fmt.Errorf("%w: message cannot be empty", models.ErrInvalidInput)
	}
	if utf8.RuneCountInString(content) > maxMessageLength {
		return nil, fmt.Errorf("%w: message is longer than %d characters", models.ErrInvalidInput, maxMessageLength)
	}

	conv, err := s.participantConversation(ctx, senderID, conversationID)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		CreatedAt:      s.now(),
	}
	if err := s.chats.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	recipient := conv.Other(senderID)
	s.hub.SendToUser(senderID, "new_message", msg)
	if recipient == nil {
		return msg, nil
	}
	s.hub.SendToUser(recipient.ID, "new_message", msg)

	senderName := "Someone"
	if sender := conv.Other(recipient.ID); sender != nil {
		senderName = sender.FullName
	}
	link := fmt.Sprintf("%s/messages/%s", s.frontendURL, conversationID)
	to := *recipient
	go s.notifier.NotifyIfOffline(context.Background(), &to, notifications.NewMessageNotice(senderName, content, link))

	return msg, nil
}
