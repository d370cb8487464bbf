package handlers

import (
	"context"
	"fmt"
	"strconv"

	"github.com/anjiri1684/mentorship/models"
	"github.com/anjiri1684/mentorship/services"
	"github.com/anjiri1684/mentorship/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type profileService interface {
	GetMe(ctx context.Context, userID uuid.UUID) (*models.User, error)
	UpdateMe(ctx context.Context, userID uuid.UUID, in services.UpdateUserInput) (*models.User, error)
	UpdateRole(ctx context.Context, userID uuid.UUID, role string) (*services.AuthResult, error)
	GetMentorProfile(ctx context.Context, userID uuid.UUID) (*models.MentorProfile, error)
	UpdateMentorProfile(ctx context.Context, userID uuid.UUID, in services.MentorProfileInput) (*models.MentorProfile, error)
	ListMentors(ctx context.Context, f services.MentorFilter, page utils.Page) ([]models.MentorProfile, int64, error)
	GetMentor(ctx context.Context, mentorID uuid.UUID) (*models.MentorProfile, error)
	GetMenteeProfile(ctx context.Context, userID uuid.UUID) (*models.MenteeProfile, error)
	UpdateMenteeProfile(ctx context.Context, userID uuid.UUID, in services.MenteeProfileInput) (*models.MenteeProfile, error)
}

type ProfileHandler struct {
	service profileService
}

func NewProfileHandler(service profileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

type UpdateProfileRequest struct {
	FullName          *string `json:"full_name" validate:"omitempty,max=120"`
	Phone             *string `json:"phone" validate:"omitempty,e164"`
	ProfilePictureURL *string `json:"profile_picture_url" validate:"omitempty,url"`
	TimeZone          *string `json:"time_zone" validate:"omitempty,timezone"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=mentor mentee parent"`
}

type MentorProfileRequest struct {
	Headline          *string `json:"headline" validate:"omitempty,max=255"`
	Bio               *string `json:"bio" validate:"omitempty,max=5000"`
	Expertise         *string `json:"expertise" validate:"omitempty,max=500"`
	YearsOfExperience *int    `json:"years_of_experience" validate:"omitempty,min=0,max=80"`
	HourlyRate        *int64  `json:"hourly_rate" validate:"omitempty,min=0"`
	Currency          *string `json:"currency" validate:"omitempty,len=3"`
	IsAccepting       *bool   `json:"is_accepting"`
}

type MenteeProfileRequest struct {
	School      *string `json:"school" validate:"omitempty,max=255"`
	Grade       *string `json:"grade" validate:"omitempty,max=50"`
	Interests   *string `json:"interests" validate:"omitempty,max=1000"`
	Goals       *string `json:"goals" validate:"omitempty,max=2000"`
	ParentEmail *string `json:"parent_email" validate:"omitempty,max=255"`
}

func (h *ProfileHandler) GetMe(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return respondError(c, err)
	}

	user, err := h.service.GetMe(c.UserContext(), claims.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

func (h *ProfileHandler) UpdateMe(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return respondError(c, err)
	}
	var req UpdateProfileRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}

	user, err := h.service.UpdateMe(c.UserContext(), claims.UserID, services.UpdateUserInput{
		FullName:          req.FullName,
		Phone:             req.Phone,
		ProfilePictureURL: req.ProfilePictureURL,
		TimeZone:          req.TimeZone,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

func (h *ProfileHandler) UpdateRole(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return respondError(c, err)
	}
	var req UpdateRoleRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}

	res, err := h.service.UpdateRole(c.UserContext(), claims.UserID, req.Role)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

func (h *ProfileHandler) ListMentors(c *fiber.Ctx) error {
	f := services.MentorFilter{
		Query:     c.Query("q"),
		Expertise: c.Query("expertise"),
	}
	if raw := c.Query("max_rate"); raw != "" {
		rate, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || rate < 0 {
			return respondError(c, fmt.Errorf("%w: max_rate must be a non-negative integer", models.ErrInvalidInput))
		}
		f.MaxHourlyRate = rate
	}
	if raw := c.Query("min_rating"); raw != "" {
		rating, err := strconv.ParseFloat(raw, 32)
		if err != nil || rating < 0 || rating > 5 {
			return respondError(c, fmt.Errorf("%w: min_rating must be between 0 and 5", models.ErrInvalidInput))
		}
		f.MinRating = float32(rating)
	}

	page := utils.ParsePage(c)
	mentors, total, err := h.service.ListMentors(c.UserContext(), f, page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(utils.Paginated(mentors, total, page))
}

func (h *ProfileHandler) GetMentor(c *fiber.Ctx) error {
	mentorID, err := uuidParam(c, "mentorId")
	if err != nil {
		return respondError(c, err)
	}

	mentor, err := h.service.GetMentor(c.UserContext(), mentorID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(mentor)
}

func (h *ProfileHandler) GetMentorProfile(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return respondError(c, err)
	}

	profile, err := h.service.GetMentorProfile(c.UserContext(), claims.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

func (h *ProfileHandler) UpdateMentorProfile(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return respondError(c, err)
	}
	var req MentorProfileRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}

	profile, err := h.service.UpdateMentorProfile(c.UserContext(), claims.UserID, services.MentorProfileInput{
		Headline:          req.Headline,
		Bio:               req.Bio,
		Expertise:         req.Expertise,
		YearsOfExperience: req.YearsOfExperience,
		HourlyRate:        req.HourlyRate,
		Currency:          req.Currency,
		IsAccepting:       req.IsAccepting,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

func (h *ProfileHandler) GetMenteeProfile(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return respondError(c, err)
	}

	profile, err := h.service.GetMenteeProfile(c.UserContext(), claims.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

func (h *ProfileHandler) UpdateMenteeProfile(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return respondError(c, err)
	}
	var req MenteeProfileRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}

	profile, err := h.service.UpdateMenteeProfile(c.UserContext(), claims.UserID, services.MenteeProfileInput{
		School:      req.School,
		Grade:       req.Grade,
		Interests:   req.Interests,
		Goals:       req.Goals,
		ParentEmail: req.ParentEmail,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}
