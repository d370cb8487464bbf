package handlers

import (
	"context"

	"github.com/anjiri1684/mentorship/models"
	"github.com/anjiri1684/mentorship/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type reviewService interface {
	Create(ctx context.Context, menteeID, sessionID uuid.UUID, rating int, comment string) (*models.Review, error)
	ListForMentor(ctx context.Context, mentorID uuid.UUID, page utils.Page) ([]models.Review, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ReviewHandler struct {
	service reviewService
}

func NewReviewHandler(service reviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

type CreateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return respondError(c, err)
	}
	sessionID, err := uuidParam(c, "sessionId")
	if err != nil {
		return respondError(c, err)
	}
	var req CreateReviewRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}

	review, err := h.service.Create(c.UserContext(), claims.UserID, sessionID, req.Rating, req.Comment)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

func (h *ReviewHandler) ListForMentor(c *fiber.Ctx) error {
	mentorID, err := uuidParam(c, "mentorId")
	if err != nil {
		return respondError(c, err)
	}

	page := utils.ParsePage(c)
	reviews, total, err := h.service.ListForMentor(c.UserContext(), mentorID, page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(utils.Paginated(reviews, total, page))
}

func (h *ReviewHandler) Delete(c *fiber.Ctx) error {
	id, err := uuidParam(c, "reviewId")
	if err != nil {
		return respondError(c, err)
	}

	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
