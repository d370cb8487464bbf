package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/anjiri1684/mentorship/models"
	"github.com/anjiri1684/mentorship/services"
	"github.com/anjiri1684/mentorship/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type sessionService interface {
	Create(ctx context.Context, menteeID uuid.UUID, in services.CreateSessionInput) (*models.Session, error)
	ListMine(ctx context.Context, claims *utils.Claims, status string, page utils.Page) ([]models.Session, int64, error)
	ListAll(ctx context.Context, f services.SessionFilter, page utils.Page) ([]models.Session, int64, error)
	Get(ctx context.Context, claims *utils.Claims, id uuid.UUID) (*models.Session, error)
	UpdateStatus(ctx context.Context, claims *utils.Claims, id uuid.UUID, in services.UpdateSessionInput) (*models.Session, error)
	Delete(ctx context.Context, menteeID, id uuid.UUID) error
}

type SessionHandler struct {
	service sessionService
}

func NewSessionHandler(service sessionService) *SessionHandler {
	return &SessionHandler{service: service}
}

type CreateSessionRequest struct {
	MentorID  string    `json:"mentor_id" validate:"required,uuid"`
	Topic     string    `json:"topic" validate:"required,max=255"`
	Notes     *string   `json:"notes" validate:"omitempty,max=2000"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
}

type UpdateSessionStatusRequest struct {
	Status      string  `json:"status" validate:"omitempty,oneof=confirmed completed cancelled"`
	MeetingLink *string `json:"meeting_link" validate:"omitempty,url"`
}

func (h *SessionHandler) Create(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return respondError(c, err)
	}
	var req CreateSessionRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	mentorID, _ := uuid.Parse(req.MentorID)

	session, err := h.service.Create(c.UserContext(), claims.UserID, services.CreateSessionInput{
		MentorID:  mentorID,
		Topic:     req.Topic,
		Notes:     req.Notes,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(session)
}

func (h *SessionHandler) ListMine(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return respondError(c, err)
	}

	page := utils.ParsePage(c)
	sessions, total, err := h.service.ListMine(c.UserContext(), claims, c.Query("status"), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(utils.Paginated(sessions, total, page))
}

// ListAll is the admin view. ?user_id= narrows it to one participant.
func (h *SessionHandler) ListAll(c *fiber.Ctx) error {
	f := services.SessionFilter{
		Status:        c.Query("status"),
		PaymentStatus: c.Query("payment_status"),
	}
	if raw := c.Query("user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return respondError(c, fmt.Errorf("%w: invalid user_id", models.ErrInvalidInput))
		}
		f.UserID = id
	}

	page := utils.ParsePage(c)
	sessions, total, err := h.service.ListAll(c.UserContext(), f, page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(utils.Paginated(sessions, total, page))
}

func (h *SessionHandler) Get(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := uuidParam(c, "sessionId")
	if err != nil {
		return respondError(c, err)
	}

	session, err := h.service.Get(c.UserContext(), claims, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(session)
}

func (h *SessionHandler) UpdateStatus(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := uuidParam(c, "sessionId")
	if err != nil {
		return respondError(c, err)
	}
	var req UpdateSessionStatusRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}

	session, err := h.service.UpdateStatus(c.UserContext(), claims, id, services.UpdateSessionInput{
		Status:      req.Status,
		MeetingLink: req.MeetingLink,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(session)
}

func (h *SessionHandler) Delete(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := uuidParam(c, "sessionId")
	if err != nil {
		return respondError(c, err)
	}

	if err := h.service.Delete(c.UserContext(), claims.UserID, id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
