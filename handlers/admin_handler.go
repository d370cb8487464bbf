package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/anjiri1684/mentorship/models"
	"github.com/anjiri1684/mentorship/services"
	"github.com/anjiri1684/mentorship/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const reportDateLayout = "2006-01-02"

type adminService interface {
	Stats(ctx context.Context) (*services.PlatformStats, error)
	ListUsers(ctx context.Context, f services.UserFilter, page utils.Page) ([]models.User, int64, error)
	SetUserActive(ctx context.Context, adminID, userID uuid.UUID, active bool) (*models.User, error)
	TransactionsCSV(ctx context.Context, w io.Writer, from, to time.Time) error
}

type AdminHandler struct {
	service adminService
	now     func() time.Time
}

func NewAdminHandler(service adminService) *AdminHandler {
	return &AdminHandler{service: service, now: time.Now}
}

type UserStatusRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	f := services.UserFilter{
		Role:  c.Query("role"),
		Query: c.Query("q"),
	}
	if f.Role != "" && !models.ValidRole(f.Role) {
		return respondError(c, fmt.Errorf("%w: unknown role %q", models.ErrInvalidInput, f.Role))
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return respondError(c, fmt.Errorf("%w: active must be true or false", models.ErrInvalidInput))
		}
		f.Active = &active
	}

	page := utils.ParsePage(c)
	users, total, err := h.service.ListUsers(c.UserContext(), f, page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(utils.Paginated(users, total, page))
}

func (h *AdminHandler) SetUserStatus(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return respondError(c, err)
	}
	userID, err := uuidParam(c, "userId")
	if err != nil {
		return respondError(c, err)
	}
	var req UserStatusRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}

	user, err := h.service.SetUserActive(c.UserContext(), claims.UserID, userID, *req.IsActive)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// TransactionReport exports payments between start_date and end_date
// (inclusive, YYYY-MM-DD). It defaults to the last month.
func (h *AdminHandler) TransactionReport(c *fiber.Ctx) error {
	now := h.now().UTC()
	startStr := c.Query("start_date", now.AddDate(0, -1, 0).Format(reportDateLayout))
	endStr := c.Query("end_date", now.Format(reportDateLayout))

	start, err := time.Parse(reportDateLayout, startStr)
	if err != nil {
		return respondError(c, fmt.Errorf("%w: Invalid start_date format. Use YYYY-MM-DD.", models.ErrInvalidInput))
	}
	end, err := time.Parse(reportDateLayout, endStr)
	if err != nil {
		return respondError(c, fmt.Errorf("%w: Invalid end_date format. Use YYYY-MM-DD.", models.ErrInvalidInput))
	}

	var b bytes.Buffer
	if err := h.service.TransactionsCSV(c.UserContext(), &b, start, end.AddDate(0, 0, 1)); err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=\"transactions_%s_to_%s.csv\"", startStr, endStr))
	return c.Send(b.Bytes())
}
