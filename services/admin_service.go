package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/anjiri1684/mentorship/models"
	"github.com/anjiri1684/mentorship/utils"
	"github.com/google/uuid"
)

var transactionHeader = []string{
	"payment_id", "session_id", "mentee_email", "mentor_email", "amount", "currency", "status",
	"gateway_order_id", "gateway_payment_id", "transfer_status", "transfer_amount", "paid_at", "created_at",
}

type AdminService struct {
	store AdminStore
	users UserStore
}

func NewAdminService(store AdminStore, users UserStore) *AdminService {
	return &AdminService{store: store, users: users}
}

func (s *AdminService) Stats(ctx context.Context) (*PlatformStats, error) {
	return s.store.Stats(ctx)
}

func (s *AdminService) ListUsers(ctx context.Context, f UserFilter, page utils.Page) ([]models.User, int64, error) {
	return s.store.ListUsers(ctx, f, page)
}

func (s *AdminService) SetUserActive(ctx context.Context, adminID, userID uuid.UUID, active bool) (*models.User, error) {
	if adminID == userID && !active {
		return nil, fmt.Errorf("%w: you cannot deactivate your own account", models.ErrInvalidInput)
	}
	if err := s.store.SetUserActive(ctx, userID, active); err != nil {
		return nil, err
	}
	return s.users.GetUserByID(ctx, userID)
}

// TransactionsCSV streams payments created in [from, to) with their payout leg.
func (s *AdminService) TransactionsCSV(ctx context.Context, w io.Writer, from, to time.Time) error {
	if !to.After(from) {
		return fmt.Errorf("%w: 'to' must be after 'from'", models.ErrInvalidInput)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(transactionHeader); err != nil {
		return err
	}

	err := s.store.TransactionRows(ctx, from, to, func(r TransactionRow) error {
		paidAt := ""
		if r.PaidAt != nil {
			paidAt = r.PaidAt.UTC().Format(time.RFC3339)
		}
		return cw.Write([]string{
			r.PaymentID.String(),
			r.SessionID.String(),
			r.MenteeEmail,
			r.MentorEmail,
			strconv.FormatInt(r.Amount, 10),
			r.Currency,
			r.Status,
			r.GatewayOrderID,
			r.GatewayPaymentID,
			r.TransferStatus,
			strconv.FormatInt(r.TransferAmount, 10),
			paidAt,
			r.CreatedAt.UTC().Format(time.RFC3339),
		})
	})
	if err != nil {
		return err
	}

	cw.Flush()
	return cw.Error()
}
