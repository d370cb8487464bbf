package handlers

import (
	"context"

	"github.com/anjiri1684/mentorship/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type interestService interface {
	Create(ctx context.Context, menteeID, mentorID uuid.UUID, message string) (*models.MentorshipInterest, error)
	ListSent(ctx context.Context, menteeID uuid.UUID, status string) ([]models.MentorshipInterest, error)
	ListReceived(ctx context.Context, mentorID uuid.UUID, status string) ([]models.MentorshipInterest, error)
	Respond(ctx context.Context, mentorID, id uuid.UUID, status string) (*models.MentorshipInterest, error)
	Delete(ctx context.Context, menteeID, id uuid.UUID) error
}

type InterestHandler struct {
	service interestService
}

func NewInterestHandler(service interestService) *InterestHandler {
	return &InterestHandler{service: service}
}

type CreateInterestRequest struct {
	MentorID string `json:"mentor_id" validate:"required,uuid"`
	Message  string `json:"message" validate:"max=2000"`
}

type RespondInterestRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted declined"`
}

func (h *InterestHandler) Create(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return respondError(c, err)
	}
	var req CreateInterestRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	mentorID, _ := uuid.Parse(req.MentorID)

	interest, err := h.service.Create(c.UserContext(), claims.UserID, mentorID, req.Message)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(interest)
}

func (h *InterestHandler) ListSent(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return respondError(c, err)
	}

	interests, err := h.service.ListSent(c.UserContext(), claims.UserID, c.Query("status"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(interests)
}

func (h *InterestHandler) ListReceived(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return respondError(c, err)
	}

	interests, err := h.service.ListReceived(c.UserContext(), claims.UserID, c.Query("status"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(interests)
}

func (h *InterestHandler) Respond(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := uuidParam(c, "interestId")
	if err != nil {
		return respondError(c, err)
	}
	var req RespondInterestRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}

	interest, err := h.service.Respond(c.UserContext(), claims.UserID, id, req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(interest)
}

func (h *InterestHandler) Delete(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := uuidParam(c, "interestId")
	if err != nil {
		return respondError(c, err)
	}

	if err := h.service.Delete(c.UserContext(), claims.UserID, id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
