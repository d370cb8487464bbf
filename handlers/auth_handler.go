package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/anjiri1684/mentorship/models"
	"github.com/anjiri1684/mentorship/services"
	"github.com/gofiber/fiber/v2"
)

const oauthStateCookie = "oauth_state"

type authService interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.AuthResult, error)
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	LoginWithFirebase(ctx context.Context, idToken, role string) (*services.AuthResult, error)
	GoogleAuthURL() (string, string, error)
	LoginWithGoogle(ctx context.Context, code, role string) (*services.AuthResult, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type AuthHandler struct {
	service authService
}

func NewAuthHandler(service authService) *AuthHandler {
	return &AuthHandler{service: service}
}

type RegisterRequest struct {
	FullName string  `json:"full_name" validate:"required,min=2,max=120"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8,max=72"`
	Role     string  `json:"role" validate:"omitempty,oneof=mentor mentee parent"`
	Phone    *string `json:"phone" validate:"omitempty,e164"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type FirebaseLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
	Role    string `json:"role" validate:"omitempty,oneof=mentor mentee parent"`
}

type GoogleLoginRequest struct {
	Code  string `json:"code" validate:"required"`
	State string `json:"state" validate:"required"`
	Role  string `json:"role" validate:"omitempty,oneof=mentor mentee parent"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}

	res, err := h.service.Register(c.UserContext(), services.RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Phone:    req.Phone,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}

	res, err := h.service.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

func (h *AuthHandler) FirebaseLogin(c *fiber.Ctx) error {
	var req FirebaseLoginRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}

	res, err := h.service.LoginWithFirebase(c.UserContext(), req.IDToken, req.Role)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

// GoogleURL returns the consent screen URL and pins its state in a short
// lived cookie that GoogleLogin checks.
func (h *AuthHandler) GoogleURL(c *fiber.Ctx) error {
	url, state, err := h.service.GoogleAuthURL()
	if err != nil {
		return respondError(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Expires:  time.Now().Add(10 * time.Minute),
		HTTPOnly: true,
		SameSite: "Lax",
	})
	return c.JSON(fiber.Map{"url": url, "state": state})
}

func (h *AuthHandler) GoogleLogin(c *fiber.Ctx) error {
	var req GoogleLoginRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	if expected := c.Cookies(oauthStateCookie); expected != "" && expected != req.State {
		return respondError(c, fmt.Errorf("%w: oauth state mismatch", models.ErrInvalidInput))
	}

	res, err := h.service.LoginWithGoogle(c.UserContext(), req.Code, req.Role)
	if err != nil {
		return respondError(c, err)
	}
	c.ClearCookie(oauthStateCookie)
	return c.JSON(res)
}

func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req ForgotPasswordRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}

	if err := h.service.ForgotPassword(c.UserContext(), req.Email); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "If an account with that email exists, a password reset link has been sent."})
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}

	if err := h.service.ResetPassword(c.UserContext(), req.Token, req.Password); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Password has been reset successfully."})
}
