package handlers

import (
	"context"
	"time"

	"github.com/anjiri1684/mentorship/models"
	"github.com/anjiri1684/mentorship/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type bankDetailsService interface {
	Get(ctx context.Context, mentorID uuid.UUID) (*models.BankDetails, error)
	Create(ctx context.Context, mentorID uuid.UUID, in services.BankDetailsInput) (*models.BankDetails, error)
	Update(ctx context.Context, mentorID uuid.UUID, in services.BankDetailsInput) (*models.BankDetails, error)
	Delete(ctx context.Context, mentorID uuid.UUID) error
	SetLinkedAccount(ctx context.Context, mentorID uuid.UUID, accountID string) (*models.BankDetails, error)
}

type BankDetailsHandler struct {
	service bankDetailsService
}

func NewBankDetailsHandler(service bankDetailsService) *BankDetailsHandler {
	return &BankDetailsHandler{service: service}
}

type BankDetailsRequest struct {
	AccountHolderName string  `json:"account_holder_name" validate:"required,max=255"`
	AccountNumber     string  `json:"account_number" validate:"required"`
	IFSC              string  `json:"ifsc" validate:"required"`
	BankName          *string `json:"bank_name" validate:"omitempty,max=255"`
	UPIID             *string `json:"upi_id" validate:"omitempty,max=255"`
}

type LinkedAccountRequest struct {
	LinkedAccountID string `json:"linked_account_id" validate:"required"`
}

// BankDetailsResponse never carries the full account number.
type BankDetailsResponse struct {
	ID                uuid.UUID `json:"id"`
	MentorID          uuid.UUID `json:"mentor_id"`
	AccountHolderName string    `json:"account_holder_name"`
	AccountNumber     string    `json:"account_number"`
	IFSC              string    `json:"ifsc"`
	BankName          *string   `json:"bank_name"`
	UPIID             *string   `json:"upi_id"`
	LinkedAccountID   *string   `json:"linked_account_id"`
	PayoutsEnabled    bool      `json:"payouts_enabled"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func toBankDetailsResponse(b *models.BankDetails) BankDetailsResponse {
	return BankDetailsResponse{
		ID:                b.ID,
		MentorID:          b.MentorID,
		AccountHolderName: b.AccountHolderName,
		AccountNumber:     b.MaskedAccountNumber(),
		IFSC:              b.IFSC,
		BankName:          b.BankName,
		UPIID:             b.UPIID,
		LinkedAccountID:   b.LinkedAccountID,
		PayoutsEnabled:    b.LinkedAccountID != nil && *b.LinkedAccountID != "",
		UpdatedAt:         b.UpdatedAt,
	}
}

func (r BankDetailsRequest) input() services.BankDetailsInput {
	return services.BankDetailsInput{
		AccountHolderName: r.AccountHolderName,
		AccountNumber:     r.AccountNumber,
		IFSC:              r.IFSC,
		BankName:          r.BankName,
		UPIID:             r.UPIID,
	}
}

func (h *BankDetailsHandler) Get(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return respondError(c, err)
	}

	b, err := h.service.Get(c.UserContext(), claims.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toBankDetailsResponse(b))
}

func (h *BankDetailsHandler) Create(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return respondError(c, err)
	}
	var req BankDetailsRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}

	b, err := h.service.Create(c.UserContext(), claims.UserID, req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toBankDetailsResponse(b))
}

func (h *BankDetailsHandler) Update(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return respondError(c, err)
	}
	var req BankDetailsRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}

	b, err := h.service.Update(c.UserContext(), claims.UserID, req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toBankDetailsResponse(b))
}

func (h *BankDetailsHandler) Delete(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.service.Delete(c.UserContext(), claims.UserID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SetLinkedAccount is the admin step that enables payouts for a mentor.
func (h *BankDetailsHandler) SetLinkedAccount(c *fiber.Ctx) error {
	mentorID, err := uuidParam(c, "mentorId")
	if err != nil {
		return respondError(c, err)
	}
	var req LinkedAccountRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}

	b, err := h.service.SetLinkedAccount(c.UserContext(), mentorID, req.LinkedAccountID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toBankDetailsResponse(b))
}
