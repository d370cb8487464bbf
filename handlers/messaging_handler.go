package handlers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/anjiri1684/mentorship/models"
	"github.com/anjiri1684/mentorship/utils"
	"github.com/anjiri1684/mentorship/websocket"
	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const wsAuthTimeout = 10 * time.Second

type chatService interface {
	ListConversations(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error)
	StartConversation(ctx context.Context, userID, otherID uuid.UUID) (*models.Conversation, bool, error)
	ListMessages(ctx context.Context, userID, conversationID uuid.UUID, page utils.Page) ([]models.Message, int64, error)
	SendMessage(ctx context.Context, senderID, conversationID uuid.UUID, content string) (*models.Message, error)
}

type tokenParser interface {
	Parse(raw string) (*utils.Claims, error)
}

type socketHub interface {
	Register(c *websocket.Client) bool
	Unregister(c *websocket.Client)
}

type MessagingHandler struct {
	chats  chatService
	tokens tokenParser
	hub    socketHub
}

func NewMessagingHandler(chats chatService, tokens tokenParser, hub socketHub) *MessagingHandler {
	return &MessagingHandler{chats: chats, tokens: tokens, hub: hub}
}

type StartConversationRequest struct {
	RecipientID string `json:"recipient_id" validate:"required,uuid"`
}

type SendMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

type authFrame struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

type inboundFrame struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id"`
	Content        string `json:"content"`
}

func (h *MessagingHandler) ListConversations(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return respondError(c, err)
	}

	conversations, err := h.chats.ListConversations(c.UserContext(), claims.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(conversations)
}

func (h *MessagingHandler) StartConversation(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return respondError(c, err)
	}
	var req StartConversationRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	otherID, _ := uuid.Parse(req.RecipientID)

	conv, created, err := h.chats.StartConversation(c.UserContext(), claims.UserID, otherID)
	if err != nil {
		return respondError(c, err)
	}
	if created {
		return c.Status(fiber.StatusCreated).JSON(conv)
	}
	return c.JSON(conv)
}

func (h *MessagingHandler) ListMessages(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return respondError(c, err)
	}
	convID, err := uuidParam(c, "conversationId")
	if err != nil {
		return respondError(c, err)
	}

	page := utils.ParsePage(c)
	messages, total, err := h.chats.ListMessages(c.UserContext(), claims.UserID, convID, page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(utils.Paginated(messages, total, page))
}

// SendMessage is the REST fallback for clients without a socket.
func (h *MessagingHandler) SendMessage(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return respondError(c, err)
	}
	convID, err := uuidParam(c, "conversationId")
	if err != nil {
		return respondError(c, err)
	}
	var req SendMessageRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}

	msg, err := h.chats.SendMessage(c.UserContext(), claims.UserID, convID, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// ServeWs authenticates the socket with its first frame, registers it with
// the hub and then turns every "message" frame into a stored chat message.
func (h *MessagingHandler) ServeWs(c *websocketcontrib.Conn) {
	defer c.Close()

	_ = c.SetReadDeadline(time.Now().Add(wsAuthTimeout))
	var auth authFrame
	if err := c.ReadJSON(&auth); err != nil || auth.Type != "auth" {
		log.Printf("WebSocket auth failed: invalid or missing auth message, error: %v", err)
		_ = c.WriteJSON(fiber.Map{"type": "error", "data": fiber.Map{"error": "Invalid or missing auth message"}})
		return
	}
	claims, err := h.tokens.Parse(auth.Token)
	if err != nil {
		log.Printf("WebSocket auth failed: %v", err)
		_ = c.WriteJSON(fiber.Map{"type": "error", "data": fiber.Map{"error": "Invalid token"}})
		return
	}
	_ = c.SetReadDeadline(time.Time{})

	client := websocket.NewClient(claims.UserID, c)
	if !h.hub.Register(client) {
		return
	}
	go client.WritePump()
	defer h.hub.Unregister(client)

	client.Send("connected", fiber.Map{"user_id": claims.UserID})

	for {
		var frame inboundFrame
		if err := c.ReadJSON(&frame); err != nil {
			if websocketcontrib.IsCloseError(err, websocketcontrib.CloseGoingAway, websocketcontrib.CloseNormalClosure) {
				log.Printf("WebSocket closed for client %s", claims.UserID)
			} else {
				log.Printf("WebSocket read error for client %s: %v", claims.UserID, err)
			}
			return
		}

		switch frame.Type {
		case "ping":
			client.Send("pong", nil)
		case "message":
			h.handleFrame(client, claims.UserID, frame)
		default:
			client.Send("error", fiber.Map{"error": "Unknown frame type"})
		}
	}
}

func (h *MessagingHandler) handleFrame(client *websocket.Client, userID uuid.UUID, frame inboundFrame) {
	convID, err := uuid.Parse(frame.ConversationID)
	if err != nil {
		client.Send("error", fiber.Map{"error": "Invalid conversation ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	// The hub echoes the stored message back to the sender's sockets.
	if _, err := h.chats.SendMessage(ctx, userID, convID, frame.Content); err != nil {
		client.Send("error", fiber.Map{"error": socketError(err)})
	}
}

func socketError(err error) string {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return errorMessage(err, e.err)
		}
	}
	log.Printf("🔥 WebSocket message failed: %v", err)
	return "Failed to send message"
}
