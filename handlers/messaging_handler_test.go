package handlers

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/anjiri1684/mentorship/models"
	"github.com/anjiri1684/mentorship/utils"
	"github.com/anjiri1684/mentorship/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChatService struct {
	conversation *models.Conversation
	created      bool
	message      *models.Message
	err          error

	lastUser    uuid.UUID
	lastOther   uuid.UUID
	lastConv    uuid.UUID
	lastContent string
}

func (s *stubChatService) ListConversations(_ context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	s.lastUser = userID
	if s.conversation == nil {
		return nil, s.err
	}
	return []models.Conversation{*s.conversation}, s.err
}

func (s *stubChatService) StartConversation(_ context.Context, userID, otherID uuid.UUID) (*models.Conversation, bool, error) {
	s.lastUser = userID
	s.lastOther = otherID
	return s.conversation, s.created, s.err
}

func (s *stubChatService) ListMessages(_ context.Context, userID, convID uuid.UUID, _ utils.Page) ([]models.Message, int64, error) {
	s.lastUser = userID
	s.lastConv = convID
	return nil, 0, s.err
}

func (s *stubChatService) SendMessage(_ context.Context, senderID, convID uuid.UUID, content string) (*models.Message, error) {
	s.lastUser = senderID
	s.lastConv = convID
	s.lastContent = content
	return s.message, s.err
}

type noopHub struct{}

func (noopHub) Register(*websocket.Client) bool { return true }
func (noopHub) Unregister(*websocket.Client)    {}

func newMessagingApp(svc *stubChatService) *fiber.App {
	h := NewMessagingHandler(svc, utils.NewTokenManager("secret", 0), noopHub{})
	app := newTestApp(menteeClaims())
	app.Get("/conversations", h.ListConversations)
	app.Post("/conversations", h.StartConversation)
	app.Get("/conversations/:conversationId/messages", h.ListMessages)
	app.Post("/conversations/:conversationId/messages", h.SendMessage)
	return app
}

func TestStartConversationCreated(t *testing.T) {
	svc := &stubChatService{conversation: &models.Conversation{ID: uuid.New()}, created: true}
	app := newMessagingApp(svc)

	resp := doJSON(t, app, "POST", "/conversations", StartConversationRequest{RecipientID: mentorID.String()})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, menteeID, svc.lastUser)
	assert.Equal(t, mentorID, svc.lastOther)
}

func TestStartConversationExisting(t *testing.T) {
	svc := &stubChatService{conversation: &models.Conversation{ID: uuid.New()}}
	app := newMessagingApp(svc)

	resp := doJSON(t, app, "POST", "/conversations", StartConversationRequest{RecipientID: mentorID.String()})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestStartConversationRequiresRecipient(t *testing.T) {
	svc := &stubChatService{}
	app := newMessagingApp(svc)

	resp := doJSON(t, app, "POST", "/conversations", StartConversationRequest{RecipientID: "bob"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, uuid.Nil, svc.lastUser)
}

func TestListMessagesNonParticipant(t *testing.T) {
	svc := &stubChatService{err: fmt.Errorf("%w: you are not part of this conversation", models.ErrForbidden)}
	app := newMessagingApp(svc)
	convID := uuid.New()

	resp := doJSON(t, app, "GET", "/conversations/"+convID.String()+"/messages", nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, convID, svc.lastConv)
}

func TestSendMessageOverREST(t *testing.T) {
	convID := uuid.New()
	svc := &stubChatService{message: &models.Message{ID: uuid.New(), ConversationID: convID, SenderID: menteeID, Content: "Thanks for today!"}}
	app := newMessagingApp(svc)

	resp := doJSON(t, app, "POST", "/conversations/"+convID.String()+"/messages", SendMessageRequest{Content: "Thanks for today!"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Thanks for today!", svc.lastContent)
	assert.Equal(t, convID, svc.lastConv)
}

func TestSocketErrorMessages(t *testing.T) {
	assert.Equal(t, "message cannot be empty", socketError(fmt.Errorf("%w: message cannot be empty", models.ErrInvalidInput)))
	assert.Equal(t, "you are not part of this conversation", socketError(fmt.Errorf("%w: you are not part of this conversation", models.ErrForbidden)))
	assert.Equal(t, "Failed to send message", socketError(errors.New("pq: connection refused")))
}
