package handlers

import (
	"context"

	"github.com/anjiri1684/mentorship/models"
	"github.com/anjiri1684/mentorship/questionnaire"
	"github.com/anjiri1684/mentorship/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type questionnaireService interface {
	Questions(role string) (questionnaire.Set, error)
	Submit(ctx context.Context, claims *utils.Claims, answers map[string]string) (*models.QuestionnaireResponse, error)
	Mine(ctx context.Context, userID uuid.UUID) (*models.QuestionnaireResponse, error)
	ListAll(ctx context.Context, role string, page utils.Page) ([]models.QuestionnaireResponse, int64, error)
}

type QuestionnaireHandler struct {
	service questionnaireService
}

func NewQuestionnaireHandler(service questionnaireService) *QuestionnaireHandler {
	return &QuestionnaireHandler{service: service}
}

type SubmitQuestionnaireRequest struct {
	Answers map[string]string `json:"answers" validate:"required,min=1"`
}

// Questions defaults to the caller's own role.
func (h *QuestionnaireHandler) Questions(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return respondError(c, err)
	}

	set, err := h.service.Questions(c.Query("role", claims.Role))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(set)
}

func (h *QuestionnaireHandler) Submit(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return respondError(c, err)
	}
	var req SubmitQuestionnaireRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}

	resp, err := h.service.Submit(c.UserContext(), claims, req.Answers)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *QuestionnaireHandler) Mine(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return respondError(c, err)
	}

	resp, err := h.service.Mine(c.UserContext(), claims.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *QuestionnaireHandler) ListAll(c *fiber.Ctx) error {
	page := utils.ParsePage(c)
	responses, total, err := h.service.ListAll(c.UserContext(), c.Query("role"), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(utils.Paginated(responses, total, page))
}
