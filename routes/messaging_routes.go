package routes

import (
	"github.com/anjiri1684/mentorship/handlers"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func MessagingRoutes(api fiber.Router, protected fiber.Handler, h *handlers.MessagingHandler) {
	conversations := api.Group("/conversations", protected)
	conversations.Get("", h.ListConversations)
	conversations.Post("", h.StartConversation)
	conversations.Get("/:conversationId/messages", h.ListMessages)
	conversations.Post("/:conversationId/messages", h.SendMessage)

	// The socket authenticates with its first frame, not the header.
	api.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})
	api.Get("/ws", websocket.New(h.ServeWs))
}
