package handlers

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/anjiri1684/mentorship/models"
	"github.com/anjiri1684/mentorship/services"
	"github.com/anjiri1684/mentorship/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdminService struct {
	stats *services.PlatformStats
	user  *models.User
	csv   string
	err   error

	lastFilter services.UserFilter
	lastAdmin  uuid.UUID
	lastUser   uuid.UUID
	lastActive bool
	lastFrom   time.Time
	lastTo     time.Time
}

func (s *stubAdminService) Stats(context.Context) (*services.PlatformStats, error) {
	return s.stats, s.err
}

func (s *stubAdminService) ListUsers(_ context.Context, f services.UserFilter, _ utils.Page) ([]models.User, int64, error) {
	s.lastFilter = f
	return nil, 0, s.err
}

func (s *stubAdminService) SetUserActive(_ context.Context, adminID, userID uuid.UUID, active bool) (*models.User, error) {
	s.lastAdmin = adminID
	s.lastUser = userID
	s.lastActive = active
	return s.user, s.err
}

func (s *stubAdminService) TransactionsCSV(_ context.Context, w io.Writer, from, to time.Time) error {
	s.lastFrom = from
	s.lastTo = to
	if s.err != nil {
		return s.err
	}
	_, err := io.WriteString(w, s.csv)
	return err
}

func newAdminApp(svc *stubAdminService) *fiber.App {
	h := NewAdminHandler(svc)
	h.now = func() time.Time { return time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC) }
	app := newTestApp(adminClaims())
	app.Get("/admin/stats", h.Stats)
	app.Get("/admin/users", h.ListUsers)
	app.Put("/admin/users/:userId/status", h.SetUserStatus)
	app.Get("/admin/reports/transactions", h.TransactionReport)
	return app
}

func TestAdminStats(t *testing.T) {
	svc := &stubAdminService{stats: &services.PlatformStats{PaidRevenue: 450000, PendingTransfers: 2}}
	app := newAdminApp(svc)

	resp := doJSON(t, app, "GET", "/admin/stats", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	decodeBody(t, resp, &body)
	assert.EqualValues(t, 450000, body["paid_revenue"])
	assert.EqualValues(t, 2, body["pending_transfers"])
}

func TestAdminListUsersFilters(t *testing.T) {
	svc := &stubAdminService{}
	app := newAdminApp(svc)

	resp := doJSON(t, app, "GET", "/admin/users?role=mentor&active=false&q=iyer", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "mentor", svc.lastFilter.Role)
	assert.Equal(t, "iyer", svc.lastFilter.Query)
	require.NotNil(t, svc.lastFilter.Active)
	assert.False(t, *svc.lastFilter.Active)

	resp = doJSON(t, app, "GET", "/admin/users?role=superuser", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSetUserStatusRequiresFlag(t *testing.T) {
	svc := &stubAdminService{}
	app := newAdminApp(svc)

	resp := doJSON(t, app, "PUT", "/admin/users/"+mentorID.String()+"/status", map[string]string{})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, uuid.Nil, svc.lastUser)
}

func TestSetUserStatusDeactivates(t *testing.T) {
	svc := &stubAdminService{user: &models.User{ID: mentorID, IsActive: false}}
	app := newAdminApp(svc)

	resp := doJSON(t, app, "PUT", "/admin/users/"+mentorID.String()+"/status", map[string]bool{"is_active": false})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, adminID, svc.lastAdmin)
	assert.Equal(t, mentorID, svc.lastUser)
	assert.False(t, svc.lastActive)
}

func TestSetUserStatusSelfDeactivation(t *testing.T) {
	svc := &stubAdminService{err: fmt.Errorf("%w: you cannot deactivate your own account", models.ErrInvalidInput)}
	app := newAdminApp(svc)

	resp := doJSON(t, app, "PUT", "/admin/users/"+adminID.String()+"/status", map[string]bool{"is_active": false})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestTransactionReportStreamsCSV(t *testing.T) {
	svc := &stubAdminService{csv: "payment_id,session_id\n"}
	app := newAdminApp(svc)

	resp := doJSON(t, app, "GET", "/admin/reports/transactions?start_date=2026-09-01&end_date=2026-09-30", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="transactions_2026-09-01_to_2026-09-30.csv"`, resp.Header.Get("Content-Disposition"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "payment_id,session_id\n", string(body))

	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), svc.lastFrom)
	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), svc.lastTo)
}

func TestTransactionReportDefaultsToLastMonth(t *testing.T) {
	svc := &stubAdminService{}
	app := newAdminApp(svc)

	resp := doJSON(t, app, "GET", "/admin/reports/transactions", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC), svc.lastFrom)
	assert.Equal(t, time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC), svc.lastTo)
}

func TestTransactionReportBadDate(t *testing.T) {
	app := newAdminApp(&stubAdminService{})

	resp := doJSON(t, app, "GET", "/admin/reports/transactions?start_date=09/01/2026", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid start_date format. Use YYYY-MM-DD.", errorBody(t, resp))
}
