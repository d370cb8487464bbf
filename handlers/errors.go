package handlers

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/anjiri1684/mentorship/middleware"
	"github.com/anjiri1684/mentorship/models"
	"github.com/anjiri1684/mentorship/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var validate = validator.New()

var errorStatus = []struct {
	err    error
	status int
}{
	{models.ErrInvalidInput, fiber.StatusBadRequest},
	{models.ErrInvalidSignature, fiber.StatusBadRequest},
	{models.ErrUnauthorized, fiber.StatusUnauthorized},
	{models.ErrForbidden, fiber.StatusForbidden},
	{models.ErrNotFound, fiber.StatusNotFound},
	{models.ErrConflict, fiber.StatusConflict},
	{models.ErrInvalidStateTransition, fiber.StatusConflict},
	{models.ErrNotConfigured, fiber.StatusServiceUnavailable},
}

// respondError maps service errors onto HTTP statuses. Anything it does not
// recognise is logged and hidden behind a 500.
func respondError(c *fiber.Ctx, err error) error {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return c.Status(e.status).JSON(fiber.Map{"error": errorMessage(err, e.err)})
		}
	}
	log.Printf("🔥 %s %s failed: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
}

// errorMessage drops the "sentinel: " prefix left by fmt.Errorf("%w: ...").
func errorMessage(err, sentinel error) string {
	msg := err.Error()
	if trimmed := strings.TrimPrefix(msg, sentinel.Error()+": "); trimmed != "" {
		return trimmed
	}
	return msg
}

func bind(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return fmt.Errorf("%w: Cannot parse JSON", models.ErrInvalidInput)
	}
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %s", models.ErrInvalidInput, err.Error())
	}
	return nil
}

func uuidParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s", models.ErrInvalidInput, name)
	}
	return id, nil
}

func currentClaims(c *fiber.Ctx) (*utils.Claims, error) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return nil, models.ErrUnauthorized
	}
	return claims, nil
}
